/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package textlayout

import (
	"fmt"
	"os"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gobolditalic"
	"golang.org/x/image/font/gofont/goitalic"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
)

// GoFamily is the family name the bundled Go fonts are registered under.
const GoFamily = "go"

// FontLibrary stores loaded OpenType fonts mapped by family/weight/italic.
// Only weight and italic are distinguished; variation axes are ignored.
type FontLibrary struct {
	mu    sync.RWMutex
	fonts map[fontKey]*opentype.Font
}

type fontKey struct {
	family string
	weight int
	italic bool
}

func NewFontLibrary() *FontLibrary { return &FontLibrary{fonts: make(map[fontKey]*opentype.Font)} }

// GoFonts returns a library holding the bundled Go fonts.
func GoFonts() *FontLibrary {
	fl := NewFontLibrary()
	for _, f := range []struct {
		weight int
		italic bool
		data   []byte
	}{
		{400, false, goregular.TTF},
		{700, false, gobold.TTF},
		{400, true, goitalic.TTF},
		{700, true, gobolditalic.TTF},
	} {
		// bundled data always parses
		_ = fl.LoadBytes(GoFamily, f.weight, f.italic, f.data)
	}
	return fl
}

// LoadTTF loads a font file into the library under the given family/weight/italic.
func (fl *FontLibrary) LoadTTF(family string, weight int, italic bool, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read font %s: %w", path, err)
	}
	if err := fl.LoadBytes(family, weight, italic, data); err != nil {
		return fmt.Errorf("font %s: %w", path, err)
	}
	return nil
}

// LoadBytes parses font data into the library.
func (fl *FontLibrary) LoadBytes(family string, weight int, italic bool, data []byte) error {
	f, err := opentype.Parse(data)
	if err != nil {
		return fmt.Errorf("parse font %s: %w", family, err)
	}
	fl.mu.Lock()
	defer fl.mu.Unlock()
	if fl.fonts == nil {
		fl.fonts = make(map[fontKey]*opentype.Font)
	}
	fl.fonts[fontKey{family: family, weight: weight, italic: italic}] = f
	return nil
}

// LoadTable loads the files referenced by a font table.
func (fl *FontLibrary) LoadTable(t *FontTable) error {
	for _, name := range t.Names() {
		spec, _ := t.Resolve(name)
		if spec.File == "" {
			continue
		}
		if err := fl.LoadTTF(spec.Family, spec.Weight, spec.Italic, spec.File); err != nil {
			return fmt.Errorf("font %q: %w", name, err)
		}
	}
	return nil
}

// Has reports whether any face of family is loaded.
func (fl *FontLibrary) Has(family string) bool {
	fl.mu.RLock()
	defer fl.mu.RUnlock()
	for k := range fl.fonts {
		if k.family == family {
			return true
		}
	}
	return false
}

func (fl *FontLibrary) find(spec FontSpec) *opentype.Font {
	if fl == nil {
		return nil
	}
	fl.mu.RLock()
	defer fl.mu.RUnlock()
	if f, ok := fl.fonts[fontKey{family: spec.Family, weight: spec.Weight, italic: spec.Italic}]; ok {
		return f
	}
	// same family, closest style
	var best *opentype.Font
	bestScore := -1
	for k, f := range fl.fonts {
		if k.family != spec.Family {
			continue
		}
		score := 0
		if k.italic == spec.Italic {
			score += 2
		}
		if (k.weight >= 600) == spec.Bold() {
			score++
		}
		if score > bestScore {
			best, bestScore = f, score
		}
	}
	return best
}

// OTProvider resolves FontSpec using a FontLibrary and falls back to another Provider.
// Kerning comes from opentype.Face through font.Drawer. Faces are cached per spec.
type OTProvider struct {
	Lib      *FontLibrary
	DPI      float64 // default 72 if zero
	Fallback Provider

	mu    sync.Mutex
	faces map[FontSpec]resolved
}

type resolved struct {
	face font.Face
	met  Metrics
}

func (p *OTProvider) Resolve(spec FontSpec) (font.Face, Metrics) {
	if spec.SizePt <= 0 {
		spec.SizePt = 12
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if r, ok := p.faces[spec]; ok {
		return r.face, r.met
	}
	dpi := p.DPI
	if dpi <= 0 {
		dpi = 72
	}
	if f := p.Lib.find(spec); f != nil {
		face, err := opentype.NewFace(f, &opentype.FaceOptions{Size: float64(spec.SizePt), DPI: dpi, Hinting: font.HintingNone})
		if err == nil {
			if p.faces == nil {
				p.faces = make(map[FontSpec]resolved)
			}
			r := resolved{face: face, met: faceMetrics(face)}
			p.faces[spec] = r
			return r.face, r.met
		}
	}
	fb := p.Fallback
	if fb == nil {
		fb = BasicProvider{}
	}
	return fb.Resolve(spec)
}
