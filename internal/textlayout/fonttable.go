/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package textlayout

import "sort"

// Names of the builtin font table entries. Markup picks these variants for
// <b>, <i> and both.
const (
	FontRegular    = "regular"
	FontBold       = "bold"
	FontItalic     = "italic"
	FontBoldItalic = "bold_italic"
)

// DefaultSizePt is the point size of the builtin entries.
const DefaultSizePt = 24

var builtinFonts = map[string]FontSpec{
	FontRegular:    {Family: GoFamily, SizePt: DefaultSizePt, Weight: 400},
	FontBold:       {Family: GoFamily, SizePt: DefaultSizePt, Weight: 700},
	FontItalic:     {Family: GoFamily, SizePt: DefaultSizePt, Weight: 400, Italic: true},
	FontBoldItalic: {Family: GoFamily, SizePt: DefaultSizePt, Weight: 700, Italic: true},
}

// FontTable maps font names used by runs to concrete font specs.
// Resolution precedence is Document > Global > Builtin, so a document can
// override what the user config defines.
type FontTable struct {
	// Default is used for runs without a font name.
	Default  string
	Global   map[string]FontSpec
	Document map[string]FontSpec
}

// NewFontTable creates a table with empty scopes and the builtin entries.
func NewFontTable() *FontTable {
	return &FontTable{
		Default:  FontRegular,
		Global:   map[string]FontSpec{},
		Document: map[string]FontSpec{},
	}
}

// WithGlobal returns a copy with the given entries merged into Global.
func (t *FontTable) WithGlobal(over map[string]FontSpec) *FontTable {
	cp := t.clone()
	for k, v := range over {
		cp.Global[k] = v
	}
	return cp
}

// WithDocument returns a copy with the given entries merged into Document.
func (t *FontTable) WithDocument(over map[string]FontSpec) *FontTable {
	cp := t.clone()
	for k, v := range over {
		cp.Document[k] = v
	}
	return cp
}

// Resolve returns the effective spec for name. An empty name resolves the
// table default.
func (t *FontTable) Resolve(name string) (FontSpec, bool) {
	if t == nil {
		t = NewFontTable()
	}
	if name == "" {
		name = t.Default
		if name == "" {
			name = FontRegular
		}
	}
	if s, ok := t.Document[name]; ok {
		return s, true
	}
	if s, ok := t.Global[name]; ok {
		return s, true
	}
	s, ok := builtinFonts[name]
	return s, ok
}

// Names returns every resolvable name, sorted.
func (t *FontTable) Names() []string {
	seen := map[string]bool{}
	for k := range builtinFonts {
		seen[k] = true
	}
	if t != nil {
		for k := range t.Global {
			seen[k] = true
		}
		for k := range t.Document {
			seen[k] = true
		}
	}
	out := make([]string, 0, len(seen))
	for k := range seen {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func (t *FontTable) clone() *FontTable {
	cp := &FontTable{Default: t.Default, Global: map[string]FontSpec{}, Document: map[string]FontSpec{}}
	for k, v := range t.Global {
		cp.Global[k] = v
	}
	for k, v := range t.Document {
		cp.Document[k] = v
	}
	return cp
}
