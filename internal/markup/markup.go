/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package markup turns tagged rich text into layout runs.
//
// Supported tags: color, shadow, outline, font, size, b, i, a, nobr, p,
// br (void) and img (void). Any other tag is kept only as a run tag.
// Every open tag is recorded in the tag set of the runs it encloses.
package markup

import (
	"html"
	"maps"
	"strconv"
	"strings"
	"unicode"

	"github.com/google/uuid"

	"gorichtext/internal/geom"
	"gorichtext/internal/richtext"
	"gorichtext/internal/textlayout"
)

// FontVariants names the font table entries used for each style of a font.
type FontVariants struct {
	Regular    string `yaml:"regular" toml:"regular" json:"regular"`
	Bold       string `yaml:"bold,omitempty" toml:"bold,omitempty" json:"bold,omitempty"`
	Italic     string `yaml:"italic,omitempty" toml:"italic,omitempty" json:"italic,omitempty"`
	BoldItalic string `yaml:"bold_italic,omitempty" toml:"bold_italic,omitempty" json:"bold_italic,omitempty"`
}

func (v FontVariants) pick(bold, italic bool) string {
	name := v.Regular
	switch {
	case bold && italic && v.BoldItalic != "":
		name = v.BoldItalic
	case bold && !italic && v.Bold != "":
		name = v.Bold
	case italic && !bold && v.Italic != "":
		name = v.Italic
	}
	return name
}

// DefaultFont is the key of the builtin font in Defaults.Fonts.
const DefaultFont = "default"

// Defaults is the style runs start from.
type Defaults struct {
	Font    string
	Fonts   map[string]FontVariants
	Color   geom.Color
	Shadow  geom.Color
	Outline geom.Color
	Size    float32
}

// DefaultDefaults returns black text in the builtin font table.
func DefaultDefaults() Defaults {
	return Defaults{
		Font: DefaultFont,
		Fonts: map[string]FontVariants{
			DefaultFont: {
				Regular:    textlayout.FontRegular,
				Bold:       textlayout.FontBold,
				Italic:     textlayout.FontItalic,
				BoldItalic: textlayout.FontBoldItalic,
			},
		},
		Color: geom.Black,
		Size:  1,
	}
}

func (d Defaults) withFallbacks() Defaults {
	def := DefaultDefaults()
	if d.Font == "" {
		d.Font = def.Font
	}
	if d.Fonts == nil {
		d.Fonts = def.Fonts
	}
	if d.Color.IsZero() {
		d.Color = def.Color
	}
	if d.Size <= 0 {
		d.Size = def.Size
	}
	return d
}

// Parser converts markup to runs. The zero value uses random UUIDs as run
// ids and DefaultDefaults.
type Parser struct {
	Defaults Defaults
	NewID    func() string
}

// Parse converts text with the given defaults.
func Parse(text string, d Defaults) ([]*richtext.Run, error) {
	return (&Parser{Defaults: d}).Parse(text)
}

type style struct {
	font         string
	bold, italic bool
	color        geom.Color
	shadow       geom.Color
	outline      geom.Color
	size         float32
	tags         map[string]string
	anchor       bool
	nobr         bool
}

type open struct {
	name  string
	value string
}

type builder struct {
	p       *Parser
	d       Defaults
	stack   []open
	runs    []*richtext.Run
	pending bool
}

// Parse converts text to runs, in reading order.
func (p *Parser) Parse(text string) ([]*richtext.Run, error) {
	if text == "" {
		return nil, &SyntaxError{Msg: "empty text"}
	}
	doc, err := parseDocument(text)
	if err != nil {
		return nil, err
	}
	d := p.Defaults.withFallbacks()
	b := &builder{p: p, d: d}
	for _, n := range doc.Nodes {
		if n.Text != nil {
			b.text(html.UnescapeString(*n.Text))
			continue
		}
		if err := b.tag(n.Tag); err != nil {
			return nil, err
		}
	}
	return b.runs, nil
}

func (p *Parser) id() richtext.RunID {
	if p.NewID != nil {
		return richtext.RunID(p.NewID())
	}
	return richtext.RunID(uuid.NewString())
}

func (b *builder) tag(t *tag) error {
	name := strings.ToLower(t.Name)
	value := ""
	if t.Value != nil {
		value = strings.TrimSpace(*t.Value)
	}
	if t.Close {
		return b.close(t, name)
	}
	switch name {
	case "br":
		b.lineBreak()
		return nil
	case "img":
		return b.image(t, value)
	}
	if t.selfClosing() {
		return nil
	}
	if err := validate(t, name, value); err != nil {
		return err
	}
	if name == "p" && len(b.runs) > 0 {
		b.pending = true
	}
	b.stack = append(b.stack, open{name: name, value: value})
	return nil
}

func (b *builder) close(t *tag, name string) error {
	if name == "br" || name == "img" {
		return nil
	}
	for i := len(b.stack) - 1; i >= 0; i-- {
		if b.stack[i].name != name {
			continue
		}
		b.stack = append(b.stack[:i], b.stack[i+1:]...)
		if name == "p" {
			b.pending = true
		}
		return nil
	}
	return syntaxErrorAt(t.Pos, "closing tag </%s> without matching open tag", name)
}

func validate(t *tag, name, value string) error {
	switch name {
	case "color", "shadow", "outline":
		if _, err := geom.ParseColor(value); err != nil {
			return syntaxErrorAt(t.Pos, "<%s>: %v", name, err)
		}
	case "size":
		if v, err := strconv.ParseFloat(value, 32); err != nil || v <= 0 {
			return syntaxErrorAt(t.Pos, "<size>: invalid scale %q", value)
		}
	case "font":
		if value == "" {
			return syntaxErrorAt(t.Pos, "<font> needs a name")
		}
	}
	return nil
}

func (b *builder) current() style {
	st := style{
		font:    b.d.Font,
		color:   b.d.Color,
		shadow:  b.d.Shadow,
		outline: b.d.Outline,
		size:    b.d.Size,
	}
	for _, o := range b.stack {
		if st.tags == nil {
			st.tags = map[string]string{}
		}
		st.tags[o.name] = o.value
		switch o.name {
		case "color":
			st.color, _ = geom.ParseColor(o.value)
		case "shadow":
			st.shadow, _ = geom.ParseColor(o.value)
		case "outline":
			st.outline, _ = geom.ParseColor(o.value)
		case "font":
			st.font = o.value
		case "size":
			v, _ := strconv.ParseFloat(o.value, 32)
			st.size = float32(v)
		case "b":
			st.bold = true
		case "i":
			st.italic = true
		case "a":
			st.anchor = true
		case "nobr":
			st.nobr = true
		}
	}
	return st
}

func (b *builder) fontName(st style) string {
	v, ok := b.d.Fonts[st.font]
	if !ok {
		return st.font
	}
	if name := v.pick(st.bold, st.italic); name != "" {
		return name
	}
	return st.font
}

func (b *builder) newRun(st style) *richtext.Run {
	r := &richtext.Run{
		ID:            b.p.id(),
		RelativeScale: st.size,
		Color:         st.color,
		Shadow:        st.shadow,
		Outline:       st.outline,
		Tags:          maps.Clone(st.tags),
		Anchor:        st.anchor,
		NoBreak:       st.nobr,
		ForceBreak:    b.pending,
	}
	b.pending = false
	b.runs = append(b.runs, r)
	return r
}

func (b *builder) text(s string) {
	st := b.current()
	font := b.fontName(st)
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		if i > 0 {
			b.lineBreak()
		}
		for _, w := range splitWords(line) {
			r := b.newRun(st)
			r.SourceText = w
			r.Font = font
		}
	}
}

// lineBreak ends the current line. An empty line is kept as an empty text
// run so it still takes up a line's height.
func (b *builder) lineBreak() {
	if b.pending || len(b.runs) == 0 {
		st := b.current()
		b.newRun(st).Font = b.fontName(st)
	}
	b.pending = true
}

// image handles <img=anim[,width[,height]]/>. A zero or missing size keeps
// the natural size on that axis.
func (b *builder) image(t *tag, value string) error {
	parts := strings.Split(value, ",")
	ref := &richtext.ImageRef{Anim: strings.TrimSpace(parts[0])}
	if len(parts) > 3 {
		return syntaxErrorAt(t.Pos, "<img>: too many arguments in %q", value)
	}
	dims := []*float32{&ref.Width, &ref.Height}
	for i, s := range parts[1:] {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		v, err := strconv.ParseFloat(s, 32)
		if err != nil || v < 0 {
			return syntaxErrorAt(t.Pos, "<img>: invalid size %q", s)
		}
		*dims[i] = float32(v)
	}
	st := b.current()
	r := b.newRun(st)
	r.Image = ref
	return nil
}

// splitWords cuts s into words that keep their trailing whitespace. Leading
// whitespace stays attached to the first word.
func splitWords(s string) []string {
	var out []string
	start := 0
	inSpace := false
	seenWord := false
	for i, r := range s {
		sp := unicode.IsSpace(r)
		if !sp && inSpace && seenWord {
			out = append(out, s[start:i])
			start = i
		}
		if !sp {
			seenWord = true
		}
		inSpace = sp
	}
	if start < len(s) {
		out = append(out, s[start:])
	}
	return out
}
