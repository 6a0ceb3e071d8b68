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
	"strings"
	"sync"

	"github.com/jung-kurt/gofpdf"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gobolditalic"
	"golang.org/x/image/font/gofont/goitalic"
	"golang.org/x/image/font/gofont/goregular"

	"gorichtext/internal/geom"
)

var coreFamilies = map[string]string{
	"helvetica": "Helvetica", "arial": "Helvetica", "sans": "Helvetica",
	"times": "Times", "serif": "Times",
	"courier": "Courier", "mono": "Courier",
}

// PDFFont maps a spec to a gofpdf family and style string. The bundled Go
// fonts and file-backed families keep their own name; a few generic names
// map to the PDF core fonts.
func PDFFont(spec FontSpec) (family, style string) {
	family = spec.Family
	if core, ok := coreFamilies[strings.ToLower(spec.Family)]; ok {
		family = core
	}
	if spec.Bold() {
		style += "B"
	}
	if spec.Italic {
		style += "I"
	}
	return family, style
}

// PDFCoreFont reports whether spec is drawn with a PDF core font. Core
// fonts take cp1252 text; see PDFTranslator.
func PDFCoreFont(spec FontSpec) bool {
	_, ok := coreFamilies[strings.ToLower(spec.Family)]
	return ok && spec.File == ""
}

// PDFTranslator returns pdf's UTF-8 to cp1252 converter for core fonts.
// Runes outside cp1252 become '.'. The converter is not safe for
// concurrent use.
func PDFTranslator(pdf *gofpdf.Fpdf) func(string) string {
	return pdf.UnicodeTranslatorFromDescriptor("")
}

// RegisterFonts adds the bundled Go fonts and every file-backed entry of t
// to pdf, so documents measure and draw with the same faces.
func RegisterFonts(pdf *gofpdf.Fpdf, t *FontTable) error {
	pdf.AddUTF8FontFromBytes(GoFamily, "", goregular.TTF)
	pdf.AddUTF8FontFromBytes(GoFamily, "B", gobold.TTF)
	pdf.AddUTF8FontFromBytes(GoFamily, "I", goitalic.TTF)
	pdf.AddUTF8FontFromBytes(GoFamily, "BI", gobolditalic.TTF)
	for _, name := range t.Names() {
		spec, _ := t.Resolve(name)
		if spec.File == "" {
			continue
		}
		family, style := PDFFont(spec)
		pdf.AddUTF8Font(family, style, spec.File)
	}
	if err := pdf.Error(); err != nil {
		return fmt.Errorf("register pdf fonts: %w", err)
	}
	return nil
}

// PDFMetrics measures text with gofpdf font metrics, matching what the PDF
// preview draws. Sizes are in points.
type PDFMetrics struct {
	Fonts *FontTable
	Atlas *Atlas

	mu     sync.Mutex
	pdf    *gofpdf.Fpdf
	cp1252 func(string) string
}

func NewPDFMetrics(fonts *FontTable, atlas *Atlas) (*PDFMetrics, error) {
	pdf := gofpdf.New("P", "pt", "A4", "")
	if err := RegisterFonts(pdf, fonts); err != nil {
		return nil, err
	}
	return &PDFMetrics{Fonts: fonts, Atlas: atlas, pdf: pdf, cp1252: PDFTranslator(pdf)}, nil
}

func (m *PDFMetrics) TextMetrics(name, text string) (geom.Size, error) {
	spec, ok := m.Fonts.Resolve(name)
	if !ok {
		return geom.Size{}, fmt.Errorf("%w: %q", ErrUnknownFont, name)
	}
	if spec.SizePt <= 0 {
		spec.SizePt = 12
	}
	family, style := PDFFont(spec)
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pdf.SetFont(family, style, float64(spec.SizePt))
	if err := m.pdf.Error(); err != nil {
		m.pdf.ClearError()
		return geom.Size{}, fmt.Errorf("%w: %q: %v", ErrUnknownFont, name, err)
	}
	if PDFCoreFont(spec) {
		text = m.cp1252(text)
	}
	w := m.pdf.GetStringWidth(text)
	_, h := m.pdf.GetFontSize()
	return geom.Size{W: float32(w), H: float32(h)}, nil
}

func (m *PDFMetrics) FlipbookSize(anim string) (geom.Size, error) {
	return m.Atlas.Size(anim)
}
