/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package richtext

import (
	"errors"
	"testing"

	"gorichtext/internal/geom"
)

func TestMeasureText(t *testing.T) {
	mp := newFakeMetrics()
	pl, err := MeasureRun(mp, word("a", "Hello"), nil, DefaultSettings(100, 100))
	if err != nil {
		t.Fatalf("measure: %v", err)
	}
	if pl.Size != (geom.Size{W: 50, H: 20}) {
		t.Fatalf("size = %+v", pl.Size)
	}
	if pl.Offset != (geom.Pt{}) {
		t.Fatalf("offset = %+v", pl.Offset)
	}
}

func TestMeasureTextScales(t *testing.T) {
	mp := newFakeMetrics()
	s := DefaultSettings(100, 100)
	s.AdjustScale = 0.5
	s.TextPrefab.Scale = geom.Pt{X: 2, Y: 1}
	r := word("a", "Hi")
	r.RelativeScale = 3
	pl, err := MeasureRun(mp, r, nil, s)
	if err != nil {
		t.Fatalf("measure: %v", err)
	}
	if !near(pl.Size.W, 60) || !near(pl.Size.H, 30) {
		t.Fatalf("size = %+v, want 60x30", pl.Size)
	}
	if pl.NodeSize != (geom.Size{W: 20, H: 20}) {
		t.Fatalf("node size = %+v", pl.NodeSize)
	}
}

func TestMeasureEmptyTextKeepsHeight(t *testing.T) {
	pl, err := MeasureRun(newFakeMetrics(), word("a", ""), nil, DefaultSettings(100, 100))
	if err != nil {
		t.Fatalf("measure: %v", err)
	}
	if pl.Size.W != 0 || pl.Size.H != 20 {
		t.Fatalf("size = %+v, want 0x20", pl.Size)
	}
}

func TestMeasureKerningAgainstPrevious(t *testing.T) {
	mp := newFakeMetrics()
	pl, err := MeasureRun(mp, word("v", "V"), word("a", "A"), DefaultSettings(100, 100))
	if err != nil {
		t.Fatalf("measure: %v", err)
	}
	if pl.Size.W != 8 || pl.Offset.X != -2 {
		t.Fatalf("width %v offset %v, want 8 and -2", pl.Size.W, pl.Offset.X)
	}

	// images never contribute kerning context
	pl, err = MeasureRun(mp, word("v", "V"), image("i", "star"), DefaultSettings(100, 100))
	if err != nil {
		t.Fatalf("measure: %v", err)
	}
	if pl.Size.W != 10 || pl.Offset.X != 0 {
		t.Fatalf("after image: width %v offset %v", pl.Size.W, pl.Offset.X)
	}
}

func TestMeasureImage(t *testing.T) {
	mp := newFakeMetrics()
	cases := []struct {
		name string
		ref  ImageRef
		want geom.Size
	}{
		{"natural", ImageRef{Anim: "wide"}, geom.Size{W: 40, H: 10}},
		{"width only", ImageRef{Anim: "wide", Width: 20}, geom.Size{W: 20, H: 5}},
		{"height only", ImageRef{Anim: "wide", Height: 20}, geom.Size{W: 80, H: 20}},
		{"both", ImageRef{Anim: "wide", Width: 7, Height: 9}, geom.Size{W: 7, H: 9}},
	}
	for _, c := range cases {
		ref := c.ref
		r := &Run{ID: "i", Image: &ref, RelativeScale: 1}
		pl, err := MeasureRun(mp, r, nil, DefaultSettings(100, 100))
		if err != nil {
			t.Fatalf("%s: %v", c.name, err)
		}
		if !near(pl.Size.W, c.want.W) || !near(pl.Size.H, c.want.H) {
			t.Fatalf("%s: size = %+v, want %+v", c.name, pl.Size, c.want)
		}
	}
}

func TestMeasureImageScaleAndDefaultAnimation(t *testing.T) {
	s := DefaultSettings(100, 100)
	s.DefaultAnimation = "star"
	s.AdjustScale = 0.5
	s.ImagePrefab.Scale = geom.Pt{X: 2, Y: 2}
	r := image("i", "")
	r.RelativeScale = 1.5
	pl, err := MeasureRun(newFakeMetrics(), r, nil, s)
	if err != nil {
		t.Fatalf("measure: %v", err)
	}
	if !near(pl.Size.W, 24) || pl.Anim != "star" {
		t.Fatalf("got %+v anim %q", pl.Size, pl.Anim)
	}
}

func TestMeasureErrors(t *testing.T) {
	mp := newFakeMetrics()
	s := DefaultSettings(100, 100)

	bad := word("a", "x")
	bad.RelativeScale = 0
	if _, err := MeasureRun(mp, bad, nil, s); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("zero scale: %v", err)
	}
	if _, err := MeasureRun(mp, image("i", ""), nil, s); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("no animation: %v", err)
	}
	if _, err := MeasureRun(mp, image("i", "nope"), nil, s); !errors.Is(err, ErrMeasurement) {
		t.Fatalf("unknown animation: %v", err)
	}
	f := word("a", "x")
	f.Font = "missing"
	_, err := MeasureRun(mp, f, nil, s)
	if !errors.Is(err, ErrMeasurement) || !errors.Is(err, errNoFont) {
		t.Fatalf("missing font: %v", err)
	}
}

func TestCompatible(t *testing.T) {
	a, b := word("a", "x"), word("b", "y")
	if !compatible(a, b) {
		t.Fatalf("plain words should be compatible")
	}
	a.Tags = map[string]string{}
	if !compatible(a, b) {
		t.Fatalf("empty and absent tags should compare equal")
	}
	a.Tags = map[string]string{"a": "x"}
	b.Tags = map[string]string{"a": "y"}
	if compatible(a, b) {
		t.Fatalf("different tag values must not be compatible")
	}
	b.Tags["a"] = "x"
	b.Color = geom.White
	if compatible(a, b) {
		t.Fatalf("different colors must not be compatible")
	}
	if compatible(a, image("i", "star")) {
		t.Fatalf("images are never compatible")
	}
}
