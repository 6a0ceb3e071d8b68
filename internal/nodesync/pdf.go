/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package nodesync

import (
	"fmt"
	"io"
	"os"

	"github.com/jung-kurt/gofpdf"

	"gorichtext/internal/geom"
	"gorichtext/internal/richtext"
	"gorichtext/internal/textlayout"
)

// PDFSink records nodes and renders them onto a single PDF page sized to
// the layout area. Units are points.
type PDFSink struct {
	*Recorder
	Fonts *textlayout.FontTable
	// Margin around the area on the page.
	Margin float32
	// Guides draws the area frame and node bounds.
	Guides bool
}

func NewPDFSink(fonts *textlayout.FontTable) *PDFSink {
	if fonts == nil {
		fonts = textlayout.NewFontTable()
	}
	return &PDFSink{Recorder: NewRecorder(), Fonts: fonts, Margin: 18, Guides: true}
}

// Render writes a page showing the visible nodes. area is the layout area in
// layout coordinates (y up), as returned by AreaRect.
func (s *PDFSink) Render(w io.Writer, area geom.Rect) error {
	m := float64(s.Margin)
	pageW := float64(area.W) + 2*m
	pageH := float64(area.H) + 2*m
	pdf := gofpdf.NewCustom(&gofpdf.InitType{
		UnitStr: "pt",
		Size:    gofpdf.SizeType{Wd: pageW, Ht: pageH},
	})
	pdf.SetTitle("gorichtext preview", true)
	pdf.SetCellMargin(0)
	pdf.SetAutoPageBreak(false, 0)
	if err := textlayout.RegisterFonts(pdf, s.Fonts); err != nil {
		return err
	}
	pdf.AddPageFormat("P", gofpdf.SizeType{Wd: pageW, Ht: pageH})

	// layout space is y-up; the page is y-down from the top-left corner
	toPage := func(r geom.Rect) (x, y, w, h float64) {
		return float64(r.X-area.X) + m, float64(area.Y+area.H-(r.Y+r.H)) + m, float64(r.W), float64(r.H)
	}

	if s.Guides {
		pdf.SetLineWidth(0.3)
		setDrawColor(pdf, geom.Color{R: 0, G: 120, B: 255, A: 255})
		x, y, w, h := toPage(area)
		pdf.Rect(x, y, w, h, "D")
	}

	for _, st := range s.Visible() {
		x, y, w, h := toPage(st.Bounds())
		if st.Image != "" {
			setDrawColor(pdf, geom.Color{R: 120, G: 120, B: 120, A: 255})
			setFillColor(pdf, geom.Color{R: 230, G: 230, B: 230, A: 255})
			pdf.SetLineWidth(0.5)
			pdf.Rect(x, y, w, h, "FD")
			pdf.SetFont("Helvetica", "", 6)
			pdf.SetTextColor(90, 90, 90)
			pdf.SetXY(x, y)
			pdf.CellFormat(w, h, st.Image, "", 0, "CM", false, 0, "")
			continue
		}
		if err := s.drawText(pdf, st, x, y, w, h); err != nil {
			return err
		}
		if s.Guides {
			pdf.SetLineWidth(0.1)
			setDrawColor(pdf, geom.Color{R: 255, G: 0, B: 0, A: 255})
			pdf.Rect(x, y, w, h, "D")
		}
	}
	if err := pdf.Error(); err != nil {
		return fmt.Errorf("render pdf: %w", err)
	}
	return pdf.Output(w)
}

func (s *PDFSink) drawText(pdf *gofpdf.Fpdf, st richtext.NodeState, x, y, w, h float64) error {
	spec, ok := s.Fonts.Resolve(st.Font)
	if !ok {
		return fmt.Errorf("%w: %q", textlayout.ErrUnknownFont, st.Font)
	}
	if spec.SizePt <= 0 {
		spec.SizePt = 12
	}
	family, style := textlayout.PDFFont(spec)
	pdf.SetFont(family, style, float64(spec.SizePt*st.Scale.Y))
	text := st.Text
	if textlayout.PDFCoreFont(spec) {
		text = textlayout.PDFTranslator(pdf)(text)
	}

	cell := func(dx, dy float64, c geom.Color) {
		pdf.SetTextColor(int(c.R), int(c.G), int(c.B))
		pdf.SetXY(x+dx, y+dy)
		pdf.CellFormat(w, h, text, "", 0, "LM", false, 0, "")
	}
	if !st.Shadow.IsZero() {
		cell(1, 1, st.Shadow)
	}
	if !st.Outline.IsZero() {
		for _, d := range [][2]float64{{-0.6, 0}, {0.6, 0}, {0, -0.6}, {0, 0.6}} {
			cell(d[0], d[1], st.Outline)
		}
	}
	c := st.Color
	if c.IsZero() {
		c = geom.Black
	}
	cell(0, 0, c)
	return nil
}

// WriteFile renders to path.
func (s *PDFSink) WriteFile(path string, area geom.Rect) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := s.Render(f, area); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

// AreaRect returns the rectangle a layout area covers in layout coordinates.
// Placements are positioned relative to the area pivot.
func AreaRect(s richtext.Settings) geom.Rect {
	return geom.BoundsAt(geom.Pt{}, geom.Size{W: s.Width, H: s.Height}, s.Pivot)
}

func setDrawColor(pdf *gofpdf.Fpdf, c geom.Color) { pdf.SetDrawColor(int(c.R), int(c.G), int(c.B)) }
func setFillColor(pdf *gofpdf.Fpdf, c geom.Color) { pdf.SetFillColor(int(c.R), int(c.G), int(c.B)) }
