/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package richtext

import (
	"testing"

	"gorichtext/internal/geom"
)

func TestPositionCentered(t *testing.T) {
	l, err := Compute(newFakeMetrics(), words("Hello"), DefaultSettings(200, 100))
	if err != nil {
		t.Fatalf("compute: %v", err)
	}
	if got := l.Placements[0].Position; got != (geom.Pt{}) {
		t.Fatalf("position = %+v, want origin", got)
	}
	b := l.Placements[0].Bounds()
	if b != geom.R(-25, -10, 50, 20) {
		t.Fatalf("bounds = %+v", b)
	}
}

func TestPositionTopLeft(t *testing.T) {
	s := multiline(200, 100)
	s.Pivot = geom.PivotNW
	s.TextPrefab.Pivot = geom.PivotW
	runs := words("ab ", "cd")
	runs[1].ForceBreak = true
	l, err := Compute(newFakeMetrics(), runs, s)
	if err != nil {
		t.Fatalf("compute: %v", err)
	}
	if got := l.Placements[0].Position; got != (geom.Pt{X: 0, Y: -10}) {
		t.Fatalf("first = %+v", got)
	}
	if got := l.Placements[1].Position; got != (geom.Pt{X: 0, Y: -30}) {
		t.Fatalf("second = %+v", got)
	}
}

func TestPositionRightAlignsRaggedLines(t *testing.T) {
	s := multiline(200, 100)
	s.Pivot = geom.PivotE
	runs := words("abcd ", "ef")
	runs[1].ForceBreak = true
	l, err := Compute(newFakeMetrics(), runs, s)
	if err != nil {
		t.Fatalf("compute: %v", err)
	}
	for _, pl := range l.Placements {
		if right := pl.Bounds().Max().X; !near(right, 0) {
			t.Fatalf("%s ends at %v, want 0", pl, right)
		}
	}
}

func TestPositionAdvancesAlongLine(t *testing.T) {
	s := DefaultSettings(200, 100)
	s.TextPrefab.Pivot = geom.PivotW
	l, err := Compute(newFakeMetrics(), words("ab", "cde", "f"), s)
	if err != nil {
		t.Fatalf("compute: %v", err)
	}
	want := []float32{-30, -10, 20}
	for i, pl := range l.Placements {
		if !near(pl.Position.X, want[i]) {
			t.Fatalf("run %d at %v, want %v", i, pl.Position.X, want[i])
		}
	}
}

func TestPositionAlignsMixedHeightsByPivot(t *testing.T) {
	s := DefaultSettings(200, 100)
	s.TextPrefab.Pivot = geom.PivotS
	runs := words("big", "small")
	runs[0].RelativeScale = 2
	l, err := Compute(newFakeMetrics(), runs, s)
	if err != nil {
		t.Fatalf("compute: %v", err)
	}
	a, b := l.Placements[0].Bounds(), l.Placements[1].Bounds()
	if a.Y != b.Y {
		t.Fatalf("bottoms differ: %v vs %v", a.Y, b.Y)
	}
	if l.Lines[0].Height != 40 || !near(a.Y, -20) {
		t.Fatalf("line height %v bottom %v", l.Lines[0].Height, a.Y)
	}
}

func TestPositionSnapsImages(t *testing.T) {
	s := DefaultSettings(101, 51)
	s.ImagePixelGridSnap = true
	runs := []*Run{image("i", "star"), word("a", "x")}
	runs[1].RelativeScale = 0.75
	l, err := Compute(newFakeMetrics(), runs, s)
	if err != nil {
		t.Fatalf("compute: %v", err)
	}
	p := l.Placements[0].Position
	if p.X != -4 || p.Y != geom.Round(p.Y) {
		t.Fatalf("image not snapped: %+v", p)
	}
	if got := l.Placements[1].Position.X; got != 8 {
		t.Fatalf("text x = %v", got)
	}
}
