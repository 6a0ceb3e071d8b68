/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package richtext

import (
	"strings"
	"unicode"

	"gorichtext/internal/geom"
)

// Line is one laid out row of placements. Runs merged into a predecessor
// are not listed.
type Line struct {
	Items  []*Placement
	Width  float32
	Height float32
}

// LineMetrics is the size of one line.
type LineMetrics struct {
	Width, Height float32
}

// LinesMetrics summarises a set of lines. TextWidth is the widest line and
// TextHeight the sum of line heights (leading applied to all but the first).
type LinesMetrics struct {
	TextWidth  float32
	TextHeight float32
	Lines      []LineMetrics
}

// split breaks runs into lines greedily. It returns the lines plus one
// placement per input run, in input order.
func split(mp MetricsProvider, runs []*Run, s *Settings) ([][]*Placement, []*Placement, error) {
	all := make([]*Placement, len(runs))
	for i, r := range runs {
		if err := validateRun(r, i); err != nil {
			return nil, nil, err
		}
		all[i] = newPlacement(r, s)
	}

	var (
		lines [][]*Placement
		cur   []*Placement
		curW  float32
	)
	for i, pl := range all {
		r := pl.Run
		inGroup := r.NoBreak && i > 0 && runs[i-1].NoBreak
		if inGroup && r.ForceBreak {
			return nil, nil, invalidf("no-break group is split by a forced break at run %d (%s)", i, r.ID)
		}

		// overflow is judged on the standalone width
		if err := measure(mp, pl, nil, s); err != nil {
			return nil, nil, err
		}
		need := pl.Size.W
		if r.NoBreak && !inGroup {
			w, err := groupTail(mp, all, i, s)
			if err != nil {
				return nil, nil, err
			}
			need += w
		}

		brk := s.Multiline && len(cur) > 0 && !inGroup &&
			(r.ForceBreak || curW+need > s.Width)

		switch {
		case brk || len(cur) == 0:
			pl.Text = strings.TrimLeftFunc(pl.Text, unicode.IsSpace)
			if err := measure(mp, pl, nil, s); err != nil {
				return nil, nil, err
			}
		case s.CombineWords && compatible(cur[len(cur)-1].Run, r):
			if err := measure(mp, pl, cur[len(cur)-1], s); err != nil {
				return nil, nil, err
			}
		}

		if brk {
			lines = append(lines, cur)
			cur, curW = nil, 0
		}
		pl.Line = len(lines)
		cur = append(cur, pl)
		curW += pl.Size.W
	}
	if len(cur) > 0 {
		lines = append(lines, cur)
	}
	return lines, all, nil
}

// groupTail measures the members of the no-break group that follow
// all[start], each in the context of its predecessor, without touching
// their placements.
func groupTail(mp MetricsProvider, all []*Placement, start int, s *Settings) (float32, error) {
	var w float32
	prev := all[start]
	for j := start + 1; j < len(all) && all[j].Run.NoBreak; j++ {
		if all[j].Run.ForceBreak {
			return 0, invalidf("no-break group is split by a forced break at run %d (%s)", j, all[j].Run.ID)
		}
		probe := *all[j]
		var ctx *Placement
		if s.CombineWords && compatible(prev.Run, probe.Run) {
			ctx = prev
		}
		if err := measure(mp, &probe, ctx, s); err != nil {
			return 0, err
		}
		w += probe.Size.W
		prev = &probe
	}
	return w, nil
}

// combine merges adjacent compatible text runs of each line into the first
// of them and re-measures the merged run as a whole.
func combine(mp MetricsProvider, lines [][]*Placement, s *Settings) error {
	for li, line := range lines {
		out := line[:0]
		var absorbed []*Placement
		for _, pl := range line {
			n := len(out)
			if n == 0 || !compatible(out[n-1].Run, pl.Run) {
				out = append(out, pl)
				absorbed = absorbed[:0]
				continue
			}
			head := out[n-1]
			head.Text += pl.Text
			pl.Merged = true
			if err := measure(mp, head, nil, s); err != nil {
				return err
			}
			// absorbed runs advance nothing and share the head's height
			absorbed = append(absorbed, pl)
			for _, a := range absorbed {
				a.Size = geom.Size{H: head.Size.H}
			}
		}
		lines[li] = out
	}
	return nil
}

func measureLines(lines [][]*Placement, s *Settings) ([]Line, LinesMetrics) {
	out := make([]Line, len(lines))
	lm := LinesMetrics{Lines: make([]LineMetrics, len(lines))}
	for i, items := range lines {
		var w, h float32
		for _, pl := range items {
			w += pl.Size.W
			// TODO: count inline image heights once hosts can opt in to
			// lines growing around tall images.
			if !pl.Run.IsImage() {
				h = max(h, pl.Size.H)
			}
		}
		if i > 0 {
			h *= s.TextLeading
		}
		out[i] = Line{Items: items, Width: w, Height: h}
		lm.Lines[i] = LineMetrics{Width: w, Height: h}
		lm.TextWidth = max(lm.TextWidth, w)
		lm.TextHeight += h
	}
	return out, lm
}
