/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package nodesync

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"gorichtext/internal/geom"
	"gorichtext/internal/richtext"
	"gorichtext/internal/textlayout"
)

func basicMetrics() *textlayout.FaceMetrics {
	atlas := textlayout.NewAtlas()
	atlas.Add("star", geom.Size{W: 16, H: 16})
	return &textlayout.FaceMetrics{Fonts: textlayout.NewFontTable(), Provider: textlayout.BasicProvider{}, Atlas: atlas}
}

func runs() []*richtext.Run {
	return []*richtext.Run{
		{ID: "r1", SourceText: "Hello ", RelativeScale: 1},
		{ID: "r2", SourceText: "world", Color: geom.Color{R: 200, A: 255}, Shadow: geom.Black, RelativeScale: 1},
		{ID: "r3", Image: &richtext.ImageRef{Anim: "star"}, RelativeScale: 1},
	}
}

func TestRecorderLifecycle(t *testing.T) {
	r := NewRecorder()
	n := 0
	r.NewID = func() string { n++; return "h" + strconv.Itoa(n) }

	h, err := r.Create(richtext.NodeState{RunID: "a", Text: "x", Visible: true, Size: geom.Size{W: 10, H: 4}, Scale: geom.Pt{X: 1, Y: 1}})
	if err != nil || h != "h1" {
		t.Fatalf("create: %q %v", h, err)
	}
	if _, err := r.Create(richtext.NodeState{RunID: "b"}); err != nil {
		t.Fatalf("create b: %v", err)
	}
	b, ok := r.Bounds(h)
	if !ok || b.W != 10 || b.H != 4 || b.X != -5 || b.Y != -2 {
		t.Fatalf("bounds %+v %v", b, ok)
	}
	if err := r.Update(h, richtext.NodeState{RunID: "a", Visible: false}); err != nil {
		t.Fatalf("update: %v", err)
	}
	if len(r.Visible()) != 0 || len(r.States()) != 2 {
		t.Fatalf("visible=%d states=%d", len(r.Visible()), len(r.States()))
	}
	if err := r.Delete(h); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := r.Delete(h); !errors.Is(err, ErrUnknownNode) {
		t.Fatalf("expected ErrUnknownNode, got %v", err)
	}
	if err := r.Update("nope", richtext.NodeState{}); !errors.Is(err, ErrUnknownNode) {
		t.Fatalf("expected ErrUnknownNode, got %v", err)
	}
	if c := r.Counts(); c != (Counts{Created: 2, Updated: 1, Deleted: 1}) {
		t.Fatalf("counts %+v", c)
	}
	if r.Len() != 1 || r.States()[0].RunID != "b" {
		t.Fatalf("unexpected remaining nodes: %+v", r.States())
	}
}

func TestRecorderReusesNodesAcrossLayouts(t *testing.T) {
	rec := NewRecorder()
	s := richtext.DefaultSettings(300, 40)
	txt, err := richtext.New(basicMetrics(), rec, s)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	rs := runs()
	if _, err := txt.SetRuns(rs); err != nil {
		t.Fatalf("set runs: %v", err)
	}
	created := rec.Counts().Created
	if created != 3 {
		t.Fatalf("expected 3 nodes, got %d", created)
	}
	if _, err := txt.SetRuns(rs); err != nil {
		t.Fatalf("set runs again: %v", err)
	}
	if c := rec.Counts(); c.Created != created || c.Updated != 3 {
		t.Fatalf("nodes were not reused: %+v", c)
	}
	pl, _ := txt.Layout().Placement("r1")
	b, ok := txt.Nodes().Bounds("r1")
	if !ok || b != pl.Bounds() {
		t.Fatalf("registry bounds %+v differ from placement %+v", b, pl.Bounds())
	}

	if err := txt.Clear(); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if rec.Len() != 0 {
		t.Fatalf("clear left %d nodes", rec.Len())
	}
}

func TestPDFSinkRender(t *testing.T) {
	sink := NewPDFSink(nil)
	s := richtext.DefaultSettings(300, 40)
	s.Pivot = geom.PivotNW
	txt, err := richtext.New(basicMetrics(), sink, s)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if _, err := txt.SetRuns(runs()); err != nil {
		t.Fatalf("set runs: %v", err)
	}
	var buf bytes.Buffer
	if err := sink.Render(&buf, AreaRect(s)); err != nil {
		t.Fatalf("render: %v", err)
	}
	if !bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")) {
		t.Fatalf("output is not a PDF")
	}

	out := filepath.Join(t.TempDir(), "preview.pdf")
	if err := sink.WriteFile(out, AreaRect(s)); err != nil {
		t.Fatalf("write file: %v", err)
	}
	if fi, err := os.Stat(out); err != nil || fi.Size() == 0 {
		t.Fatalf("pdf file missing: %v", err)
	}
}

func TestPDFSinkUnknownFont(t *testing.T) {
	sink := NewPDFSink(nil)
	if _, err := sink.Create(richtext.NodeState{Text: "x", Font: "nope", Visible: true, Scale: geom.Pt{X: 1, Y: 1}}); err != nil {
		t.Fatalf("create: %v", err)
	}
	err := sink.Render(&bytes.Buffer{}, geom.R(0, 0, 10, 10))
	if !errors.Is(err, textlayout.ErrUnknownFont) {
		t.Fatalf("expected ErrUnknownFont, got %v", err)
	}
}

func TestAreaRect(t *testing.T) {
	s := richtext.DefaultSettings(100, 20)
	if r := AreaRect(s); r != geom.R(-50, -10, 100, 20) {
		t.Fatalf("center area %+v", r)
	}
	s.Pivot = geom.PivotNW
	if r := AreaRect(s); r != geom.R(0, -20, 100, 20) {
		t.Fatalf("nw area %+v", r)
	}
}
