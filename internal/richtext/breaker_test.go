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
	"reflect"
	"testing"
	"unicode/utf8"

	"gorichtext/internal/geom"
)

func TestSplitOneLine(t *testing.T) {
	l, err := Compute(newFakeMetrics(), words("Hello ", "World"), multiline(1000, 100))
	if err != nil {
		t.Fatalf("compute: %v", err)
	}
	if len(l.Lines) != 1 || len(l.Lines[0].Items) != 2 {
		t.Fatalf("lines = %v", lineTexts(l))
	}
	if l.Metrics.TextWidth != 110 || l.Lines[0].Width != 110 {
		t.Fatalf("width = %v", l.Metrics.TextWidth)
	}
}

func TestSplitWrapsAndTrims(t *testing.T) {
	l, err := Compute(newFakeMetrics(), words("  Hello ", " World"), multiline(80, 100))
	if err != nil {
		t.Fatalf("compute: %v", err)
	}
	want := [][]string{{"Hello "}, {"World"}}
	if got := lineTexts(l); !reflect.DeepEqual(got, want) {
		t.Fatalf("lines = %q, want %q", got, want)
	}
	if l.Placements[1].Run.SourceText != " World" {
		t.Fatalf("source text was mutated")
	}
	if l.Metrics.TextHeight != 40 {
		t.Fatalf("height = %v", l.Metrics.TextHeight)
	}
}

func TestSplitSingleLineNeverBreaks(t *testing.T) {
	runs := words("aaaa ", "bbbb ", "cccc")
	runs[1].ForceBreak = true
	l, err := Compute(newFakeMetrics(), runs, DefaultSettings(20, 20))
	if err != nil {
		t.Fatalf("compute: %v", err)
	}
	if len(l.Lines) != 1 || l.Metrics.TextWidth != 140 {
		t.Fatalf("lines = %q width %v", lineTexts(l), l.Metrics.TextWidth)
	}
}

func TestSplitForceBreak(t *testing.T) {
	runs := words("one ", "two ", "three")
	runs[0].ForceBreak = true
	runs[2].ForceBreak = true
	l, err := Compute(newFakeMetrics(), runs, multiline(1000, 1000))
	if err != nil {
		t.Fatalf("compute: %v", err)
	}
	want := [][]string{{"one ", "two "}, {"three"}}
	if got := lineTexts(l); !reflect.DeepEqual(got, want) {
		t.Fatalf("lines = %q, want %q", got, want)
	}
	if l.Placements[2].Line != 1 {
		t.Fatalf("line index = %d", l.Placements[2].Line)
	}
}

func TestSplitEmptyInput(t *testing.T) {
	l, err := Compute(newFakeMetrics(), nil, multiline(100, 100))
	if err != nil {
		t.Fatalf("compute: %v", err)
	}
	if len(l.Lines) != 0 || l.Metrics.TextWidth != 0 || l.Metrics.TextHeight != 0 {
		t.Fatalf("got %+v", l.Metrics)
	}
}

func TestSplitKeepsNoBreakGroupTogether(t *testing.T) {
	runs := words("aa ", "bb ", "cc")
	runs[1].NoBreak = true
	runs[2].NoBreak = true
	l, err := Compute(newFakeMetrics(), runs, multiline(70, 100))
	if err != nil {
		t.Fatalf("compute: %v", err)
	}
	want := [][]string{{"aa "}, {"bb ", "cc"}}
	if got := lineTexts(l); !reflect.DeepEqual(got, want) {
		t.Fatalf("lines = %q, want %q", got, want)
	}

	// a group wider than the area still stays on one line
	runs = words("x ", "long ", "longer ", "longest")
	for _, r := range runs[1:] {
		r.NoBreak = true
	}
	l, err = Compute(newFakeMetrics(), runs, multiline(60, 100))
	if err != nil {
		t.Fatalf("compute: %v", err)
	}
	for _, pl := range l.Placements[1:] {
		if pl.Line != 1 {
			t.Fatalf("group split: %q", lineTexts(l))
		}
	}
}

func TestSplitRejectsForceBreakInsideGroup(t *testing.T) {
	runs := words("aa ", "bb ", "cc")
	runs[1].NoBreak = true
	runs[2].NoBreak = true
	runs[2].ForceBreak = true
	_, err := Compute(newFakeMetrics(), runs, multiline(1000, 100))
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("err = %v, want ErrInvalidInput", err)
	}
}

func TestSplitIsIdempotent(t *testing.T) {
	mp := newFakeMetrics()
	runs := words(" The ", "quick ", "brown ", "fox ", "jumps")
	s := multiline(120, 200)
	a, err := Compute(mp, runs, s)
	if err != nil {
		t.Fatalf("compute: %v", err)
	}
	b, err := Compute(mp, runs, s)
	if err != nil {
		t.Fatalf("compute: %v", err)
	}
	if !reflect.DeepEqual(a.Metrics, b.Metrics) || !reflect.DeepEqual(lineTexts(a), lineTexts(b)) {
		t.Fatalf("passes differ: %q vs %q", lineTexts(a), lineTexts(b))
	}
	if runs[0].SourceText != " The " {
		t.Fatalf("source text mutated to %q", runs[0].SourceText)
	}
}

func TestLineWidthsMatchPlacements(t *testing.T) {
	runs := words("A", "V ", "lorem ", "ipsum ", "dolor ", "AV", "AV")
	s := multiline(60, 200)
	s.CombineWords = true
	runs[5].Color.R = 1
	l, err := Compute(newFakeMetrics(), runs, s)
	if err != nil {
		t.Fatalf("compute: %v", err)
	}
	for i, ln := range l.Lines {
		if len(ln.Items) == 0 {
			t.Fatalf("line %d is empty", i)
		}
		var sum float32
		for _, pl := range ln.Items {
			sum += pl.Size.W
		}
		if !near(sum, l.Metrics.Lines[i].Width) {
			t.Fatalf("line %d: items %v, metrics %v", i, sum, l.Metrics.Lines[i].Width)
		}
		if l.Metrics.TextWidth < ln.Width {
			t.Fatalf("text width %v below line %d width %v", l.Metrics.TextWidth, i, ln.Width)
		}
	}
}

func TestCombineWordsMergesCompatibleRuns(t *testing.T) {
	runs := words("A", "V", "!")
	runs[2].Color.G = 200
	s := multiline(1000, 100)
	s.CombineWords = true
	l, err := Compute(newFakeMetrics(), runs, s)
	if err != nil {
		t.Fatalf("compute: %v", err)
	}
	want := [][]string{{"AV", "!"}}
	if got := lineTexts(l); !reflect.DeepEqual(got, want) {
		t.Fatalf("lines = %q, want %q", got, want)
	}
	if !l.Placements[1].Merged || l.Placements[0].Merged {
		t.Fatalf("merge flags wrong")
	}
	if l.Lines[0].Width != 28 {
		t.Fatalf("width = %v, want 28 (kerned AV + !)", l.Lines[0].Width)
	}
}

// growingMetrics makes text taller the more runes it has.
type growingMetrics struct{ *fakeMetrics }

func (g growingMetrics) TextMetrics(font, text string) (geom.Size, error) {
	sz, err := g.fakeMetrics.TextMetrics(font, text)
	sz.H = float32(10 * utf8.RuneCountInString(text))
	return sz, err
}

func TestCombineWordsSizesAbsorbedRuns(t *testing.T) {
	s := multiline(1000, 100)
	s.CombineWords = true
	l, err := Compute(growingMetrics{newFakeMetrics()}, words("a", "b", "c"), s)
	if err != nil {
		t.Fatalf("compute: %v", err)
	}
	head := l.Placements[0]
	if head.Text != "abc" || head.Size.H != 30 {
		t.Fatalf("head = %q %+v", head.Text, head.Size)
	}
	for _, pl := range l.Placements[1:] {
		if !pl.Merged || pl.Size != (geom.Size{H: 30}) {
			t.Fatalf("absorbed %s: merged %v size %+v", pl.Run.ID, pl.Merged, pl.Size)
		}
	}
	if l.Lines[0].Height != 30 || l.Lines[0].Width != 30 {
		t.Fatalf("line = %+v", l.Lines[0])
	}
}

func TestKerningOnlyWithCombineWords(t *testing.T) {
	runs := words("A", "V")
	runs[1].Color.B = 9
	s := multiline(1000, 100)
	s.CombineWords = true
	l, err := Compute(newFakeMetrics(), runs, s)
	if err != nil {
		t.Fatalf("compute: %v", err)
	}
	if l.Metrics.TextWidth != 20 {
		t.Fatalf("incompatible runs were kerned: %v", l.Metrics.TextWidth)
	}
}

func TestLeadingAndImageHeight(t *testing.T) {
	runs := []*Run{word("a", "one"), image("i", "star"), word("b", "two")}
	runs[1].RelativeScale = 4
	runs[2].ForceBreak = true
	s := multiline(1000, 1000)
	s.TextLeading = 1.5
	l, err := Compute(newFakeMetrics(), runs, s)
	if err != nil {
		t.Fatalf("compute: %v", err)
	}
	if len(l.Lines) != 2 {
		t.Fatalf("lines = %q", lineTexts(l))
	}
	if l.Lines[0].Height != 20 {
		t.Fatalf("image raised line height to %v", l.Lines[0].Height)
	}
	if l.Lines[1].Height != 30 || l.Metrics.TextHeight != 50 {
		t.Fatalf("leading: line %v total %v", l.Lines[1].Height, l.Metrics.TextHeight)
	}
}
