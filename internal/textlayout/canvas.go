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

	"github.com/tdewolff/canvas"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gobolditalic"
	"golang.org/x/image/font/gofont/goitalic"
	"golang.org/x/image/font/gofont/goregular"

	"gorichtext/internal/geom"
)

// canvas reports lengths in millimetres
const ptPerMM = 72 / 25.4

// CanvasMetrics measures text through tdewolff/canvas, which shapes text
// (ligatures, complex scripts) before measuring. Sizes are in points.
type CanvasMetrics struct {
	Fonts *FontTable
	Atlas *Atlas

	mu       sync.Mutex
	families map[string]*canvas.FontFamily
}

func NewCanvasMetrics(fonts *FontTable, atlas *Atlas) (*CanvasMetrics, error) {
	m := &CanvasMetrics{Fonts: fonts, Atlas: atlas, families: map[string]*canvas.FontFamily{}}
	gof := canvas.NewFontFamily(GoFamily)
	for _, f := range []struct {
		style canvas.FontStyle
		data  []byte
	}{
		{canvas.FontRegular, goregular.TTF},
		{canvas.FontBold, gobold.TTF},
		{canvas.FontItalic, goitalic.TTF},
		{canvas.FontBold | canvas.FontItalic, gobolditalic.TTF},
	} {
		if err := gof.LoadFont(f.data, 0, f.style); err != nil {
			return nil, fmt.Errorf("load go font: %w", err)
		}
	}
	m.families[GoFamily] = gof
	for _, name := range fonts.Names() {
		spec, _ := fonts.Resolve(name)
		if spec.File == "" {
			continue
		}
		data, err := os.ReadFile(spec.File)
		if err != nil {
			return nil, fmt.Errorf("read font %s: %w", spec.File, err)
		}
		fam, ok := m.families[spec.Family]
		if !ok {
			fam = canvas.NewFontFamily(spec.Family)
			m.families[spec.Family] = fam
		}
		if err := fam.LoadFont(data, 0, canvasStyle(spec)); err != nil {
			return nil, fmt.Errorf("font %q: %w", name, err)
		}
	}
	return m, nil
}

func canvasStyle(spec FontSpec) canvas.FontStyle {
	style := canvas.FontRegular
	if spec.Bold() {
		style = canvas.FontBold
	}
	if spec.Italic {
		style |= canvas.FontItalic
	}
	return style
}

func (m *CanvasMetrics) TextMetrics(name, text string) (geom.Size, error) {
	spec, ok := m.Fonts.Resolve(name)
	if !ok {
		return geom.Size{}, fmt.Errorf("%w: %q", ErrUnknownFont, name)
	}
	if spec.SizePt <= 0 {
		spec.SizePt = 12
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	fam, ok := m.families[spec.Family]
	if !ok {
		return geom.Size{}, fmt.Errorf("%w: family %q has no loaded faces", ErrUnknownFont, spec.Family)
	}
	face := fam.Face(float64(spec.SizePt), canvas.Black, canvasStyle(spec), canvas.FontNormal)
	w := face.TextWidth(text) * ptPerMM
	h := face.Metrics().LineHeight * ptPerMM
	return geom.Size{W: float32(w), H: float32(h)}, nil
}

func (m *CanvasMetrics) FlipbookSize(anim string) (geom.Size, error) {
	return m.Atlas.Size(anim)
}
