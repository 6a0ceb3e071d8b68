//go:build fyne && cgo

/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package nodesync

import (
	"image/color"
	"sync"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"

	"gorichtext/internal/geom"
	"gorichtext/internal/richtext"
	"gorichtext/internal/textlayout"
)

// FyneSink shows nodes as canvas objects inside a container without layout.
// Calls must happen on the Fyne main goroutine (wrap them in fyne.Do from
// other goroutines).
type FyneSink struct {
	*Recorder
	Fonts *textlayout.FontTable
	// Area is the layout area in layout coordinates; see AreaRect.
	Area geom.Rect
	// Images resolves a flipbook name to its first frame, optional.
	Images func(anim string) fyne.Resource

	Container *fyne.Container

	mu      sync.Mutex
	objects map[richtext.NodeHandle]fyne.CanvasObject
}

func NewFyneSink(fonts *textlayout.FontTable, area geom.Rect) *FyneSink {
	if fonts == nil {
		fonts = textlayout.NewFontTable()
	}
	c := container.NewWithoutLayout()
	c.Resize(fyne.NewSize(area.W, area.H))
	return &FyneSink{
		Recorder:  NewRecorder(),
		Fonts:     fonts,
		Area:      area,
		Container: c,
		objects:   map[richtext.NodeHandle]fyne.CanvasObject{},
	}
}

func (s *FyneSink) Create(st richtext.NodeState) (richtext.NodeHandle, error) {
	h, err := s.Recorder.Create(st)
	if err != nil {
		return "", err
	}
	var obj fyne.CanvasObject
	if st.Image != "" {
		var res fyne.Resource
		if s.Images != nil {
			res = s.Images(st.Image)
		}
		if res != nil {
			img := canvas.NewImageFromResource(res)
			img.FillMode = canvas.ImageFillStretch
			obj = img
		} else {
			r := canvas.NewRectangle(color.NRGBA{R: 230, G: 230, B: 230, A: 255})
			r.StrokeColor = color.NRGBA{R: 120, G: 120, B: 120, A: 255}
			r.StrokeWidth = 1
			obj = r
		}
	} else {
		obj = canvas.NewText(st.Text, toNRGBA(st.Color))
	}
	s.mu.Lock()
	s.objects[h] = obj
	s.mu.Unlock()
	s.Container.Add(obj)
	s.apply(obj, st)
	return h, nil
}

func (s *FyneSink) Update(h richtext.NodeHandle, st richtext.NodeState) error {
	if err := s.Recorder.Update(h, st); err != nil {
		return err
	}
	s.mu.Lock()
	obj := s.objects[h]
	s.mu.Unlock()
	if obj != nil {
		s.apply(obj, st)
	}
	return nil
}

func (s *FyneSink) Delete(h richtext.NodeHandle) error {
	if err := s.Recorder.Delete(h); err != nil {
		return err
	}
	s.mu.Lock()
	obj := s.objects[h]
	delete(s.objects, h)
	s.mu.Unlock()
	if obj != nil {
		s.Container.Remove(obj)
	}
	return nil
}

// Object returns the canvas object of a node.
func (s *FyneSink) Object(h richtext.NodeHandle) (fyne.CanvasObject, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	obj, ok := s.objects[h]
	return obj, ok
}

func (s *FyneSink) apply(obj fyne.CanvasObject, st richtext.NodeState) {
	b := st.Bounds()
	// container space is y-down from the area's top-left corner
	obj.Move(fyne.NewPos(b.X-s.Area.X, s.Area.Y+s.Area.H-(b.Y+b.H)))
	obj.Resize(fyne.NewSize(b.W, b.H))
	if t, ok := obj.(*canvas.Text); ok {
		t.Text = st.Text
		t.Color = toNRGBA(st.Color)
		if spec, ok := s.Fonts.Resolve(st.Font); ok {
			t.TextSize = spec.SizePt * st.Scale.Y
			t.TextStyle = fyne.TextStyle{Bold: spec.Bold(), Italic: spec.Italic}
		}
	}
	if st.Visible {
		obj.Show()
	} else {
		obj.Hide()
	}
	obj.Refresh()
}

func toNRGBA(c geom.Color) color.NRGBA {
	if c.IsZero() {
		c = geom.Black
	}
	return color.NRGBA{R: c.R, G: c.G, B: c.B, A: c.A}
}

// Show opens a window with the area and lets build sync nodes into the sink
// before the event loop starts. It blocks until the window is closed.
func Show(title string, fonts *textlayout.FontTable, area geom.Rect, build func(sink richtext.NodeSync) error) error {
	a := app.NewWithID("gorichtext")
	w := a.NewWindow(title)
	sink := NewFyneSink(fonts, area)
	if err := build(sink); err != nil {
		return err
	}
	bg := canvas.NewRectangle(color.White)
	bg.Resize(fyne.NewSize(area.W, area.H))
	content := container.NewStack(bg, sink.Container)
	w.SetContent(container.NewCenter(content))
	w.Resize(fyne.NewSize(area.W+48, area.H+48))
	w.ShowAndRun()
	return nil
}
