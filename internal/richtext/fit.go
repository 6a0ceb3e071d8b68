/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package richtext

import (
	"math"

	"gorichtext/internal/geom"
)

// fitEpsilon absorbs float32 noise when comparing text and area sizes.
const fitEpsilon = 1e-4

// Layout is the result of one full pass.
type Layout struct {
	// Placements holds one entry per input run, in input order.
	Placements []*Placement
	Lines      []Line
	Metrics    LinesMetrics
	// Settings the pass ran with, AdjustScale included.
	Settings Settings
}

// Fits reports whether the laid out text lies inside the area.
func (l *Layout) Fits() bool {
	return fits(l.Metrics, &l.Settings)
}

// Placement returns the placement of the run with the given id.
func (l *Layout) Placement(id RunID) (*Placement, bool) {
	for _, pl := range l.Placements {
		if pl.Run.ID == id {
			return pl, true
		}
	}
	return nil, false
}

// FitReport describes the outcome of a fit search.
type FitReport struct {
	Scale float32
	Fits  bool
	// Passes counts the dry layout passes the search ran.
	Passes int
}

func fits(lm LinesMetrics, s *Settings) bool {
	return lm.TextWidth <= s.Width+fitEpsilon && lm.TextHeight <= s.Height+fitEpsilon
}

// pass runs measurement, line breaking, merging and positioning once at
// s.AdjustScale. It has no side effects on runs or nodes.
func pass(mp MetricsProvider, runs []*Run, s Settings) (*Layout, error) {
	raw, all, err := split(mp, runs, &s)
	if err != nil {
		return nil, err
	}
	if s.CombineWords {
		if err := combine(mp, raw, &s); err != nil {
			return nil, err
		}
	}
	lines, lm := measureLines(raw, &s)
	position(lines, lm, &s)
	return &Layout{Placements: all, Lines: lines, Metrics: lm, Settings: s}, nil
}

// Compute lays runs out once at s.AdjustScale without fitting.
func Compute(mp MetricsProvider, runs []*Run, s Settings) (*Layout, error) {
	s, err := s.normalized()
	if err != nil {
		return nil, err
	}
	return pass(mp, runs, s)
}

// Fit lays runs out and, if they overflow the area, searches for an
// adjust scale that makes them fit. Nothing is synced to nodes.
func Fit(mp MetricsProvider, runs []*Run, s Settings) (*Layout, FitReport, error) {
	s, err := s.normalized()
	if err != nil {
		return nil, FitReport{}, err
	}
	l, err := pass(mp, runs, s)
	if err != nil {
		return nil, FitReport{}, err
	}
	if l.Fits() {
		return l, FitReport{Scale: s.AdjustScale, Fits: true}, nil
	}
	var scale float32
	rep := FitReport{}
	if s.Multiline {
		scale, rep.Passes, err = searchScale(mp, runs, s, l.Metrics)
		if err != nil {
			return nil, FitReport{}, err
		}
	} else {
		if l.Metrics.TextWidth <= s.Width+fitEpsilon {
			// only too tall: a single line cannot be wrapped into shape
			return l, FitReport{Scale: s.AdjustScale, Fits: false}, nil
		}
		scale = s.AdjustScale * s.Width / l.Metrics.TextWidth
	}
	s.AdjustScale = scale
	if l, err = pass(mp, runs, s); err != nil {
		return nil, FitReport{}, err
	}
	rep.Scale = scale
	rep.Fits = l.Fits()
	return l, rep, nil
}

// searchScale is the bounded multiline search. It starts from an area
// ratio guess and then walks in fixed steps, committing as soon as the
// fit state flips or the step budget is spent.
func searchScale(mp MetricsProvider, runs []*Run, s Settings, lm LinesMetrics) (float32, int, error) {
	opt := s.Fit
	k := geom.Sqrt(s.Height / lm.TextHeight)
	if lm.TextWidth*k > s.Width {
		k = geom.Sqrt(s.Width / lm.TextWidth)
	}
	if !finite(k) {
		k = 1
	}
	scale := max(min(k, 1)*s.AdjustScale, opt.MinScale)

	passes := 0
	try := func(v float32) (bool, error) {
		passes++
		t := s
		t.AdjustScale = v
		l, err := pass(mp, runs, t)
		if err != nil {
			return false, err
		}
		return l.Fits(), nil
	}

	ok, err := try(scale)
	if err != nil {
		return 0, passes, err
	}
	step := opt.Step
	if !ok {
		step = -step
	}
	// growing, scale always holds the last fitting value; shrinking, the
	// last evaluated one
	for range opt.MaxSteps {
		next := max(scale+step, opt.MinScale)
		if ok, err = try(next); err != nil {
			return 0, passes, err
		}
		if step > 0 && !ok {
			return scale, passes, nil
		}
		scale = next
		if step < 0 && ok {
			return scale, passes, nil
		}
	}
	return scale, passes, nil
}

func finite(v float32) bool {
	f := float64(v)
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
