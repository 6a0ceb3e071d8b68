/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package richtext

import (
	"fmt"

	"gorichtext/internal/geom"
)

// MetricsProvider resolves font and image references to unscaled sizes.
// TextMetrics must return the rendered extent of text in the given font,
// FlipbookSize the natural size of an image animation.
type MetricsProvider interface {
	TextMetrics(font, text string) (geom.Size, error)
	FlipbookSize(anim string) (geom.Size, error)
}

// Placement is the transient per-pass view of a run: its working text and
// everything the measurer and positioner derived for it. Placements are
// recreated on every pass.
type Placement struct {
	Run *Run
	// Text is the working text after line-start trimming and merging.
	Text string
	// Anim is the resolved animation of an image run.
	Anim string
	Line int
	// Size is the scaled extent; Size.W is the advance used for layout.
	Size geom.Size
	// Offset is the kerning correction relative to a standalone measure.
	Offset geom.Pt
	Scale  geom.Pt
	Pivot  geom.Pt
	// Position of the run's pivot point relative to the area pivot.
	Position geom.Pt
	// NodeSize is the unscaled size to give the presentation node.
	NodeSize geom.Size
	// Merged marks runs absorbed into the preceding run of their line.
	Merged bool
}

// Bounds returns the area covered by the placement.
func (p *Placement) Bounds() geom.Rect {
	return geom.BoundsAt(p.Position, p.Size, p.Pivot)
}

func (p *Placement) String() string {
	if p.Run.IsImage() {
		return fmt.Sprintf("img(%s)@%v", p.Anim, p.Position)
	}
	return fmt.Sprintf("%q@%v", p.Text, p.Position)
}

func newPlacement(r *Run, s *Settings) *Placement {
	return &Placement{
		Run:   r,
		Text:  r.SourceText,
		Pivot: s.prefab(r).Pivot,
	}
}

// measure sizes pl in its current working text. When prev is non-nil the
// width becomes the advance pl adds after prev (pair measurement), and
// Offset.X records how far that differs from the standalone width.
func measure(mp MetricsProvider, pl, prev *Placement, s *Settings) error {
	if pl.Run.IsImage() {
		return measureImage(mp, pl, s)
	}
	r := pl.Run
	font := s.fontOf(r)
	k := r.RelativeScale * s.AdjustScale
	scale := geom.Pt{X: k * s.TextPrefab.Scale.X, Y: k * s.TextPrefab.Scale.Y}
	pl.Scale = scale
	pl.Offset = geom.Pt{}

	if pl.Text == "" {
		// an empty run still occupies a line's worth of height
		probe, err := mp.TextMetrics(font, "|")
		if err != nil {
			return measurementErr(fmt.Sprintf("font %q", font), err)
		}
		pl.NodeSize = geom.Size{H: probe.H}
		pl.Size = geom.Size{H: probe.H * scale.Y}
		return nil
	}

	m, err := mp.TextMetrics(font, pl.Text)
	if err != nil {
		return measurementErr(fmt.Sprintf("font %q", font), err)
	}
	pl.NodeSize = m
	width := m.W * scale.X
	pl.Size = geom.Size{W: width, H: m.H * scale.Y}

	if prev == nil || prev.Run.IsImage() || prev.Text == "" {
		return nil
	}
	before, err := mp.TextMetrics(font, prev.Text)
	if err != nil {
		return measurementErr(fmt.Sprintf("font %q", font), err)
	}
	pair, err := mp.TextMetrics(font, prev.Text+pl.Text)
	if err != nil {
		return measurementErr(fmt.Sprintf("font %q", font), err)
	}
	adjusted := (pair.W - before.W) * scale.X
	pl.Size.W = adjusted
	pl.Offset.X = adjusted - width
	return nil
}

func measureImage(mp MetricsProvider, pl *Placement, s *Settings) error {
	img := pl.Run.Image
	anim := img.Anim
	if anim == "" {
		anim = s.DefaultAnimation
	}
	if anim == "" {
		return invalidf("image run %q has no animation", pl.Run.ID)
	}
	pl.Anim = anim
	natural, err := mp.FlipbookSize(anim)
	if err != nil {
		return measurementErr(fmt.Sprintf("animation %q", anim), err)
	}
	size := natural
	switch {
	case img.Width > 0 && img.Height > 0:
		size = geom.Size{W: img.Width, H: img.Height}
	case img.Width > 0:
		size = geom.Size{W: img.Width, H: img.Width / natural.Aspect()}
	case img.Height > 0:
		size = geom.Size{W: img.Height * natural.Aspect(), H: img.Height}
	}
	k := pl.Run.RelativeScale * s.AdjustScale
	pl.Scale = geom.Pt{X: k * s.ImagePrefab.Scale.X, Y: k * s.ImagePrefab.Scale.Y}
	pl.Offset = geom.Pt{}
	pl.NodeSize = size
	pl.Size = size.Scale(pl.Scale)
	return nil
}

// MeasureRun sizes a single run at the given settings, optionally in the
// context of the run that precedes it on the same line.
func MeasureRun(mp MetricsProvider, r, prev *Run, s Settings) (*Placement, error) {
	s, err := s.normalized()
	if err != nil {
		return nil, err
	}
	if err := validateRun(r, 0); err != nil {
		return nil, err
	}
	pl := newPlacement(r, &s)
	var pp *Placement
	if prev != nil {
		if err := validateRun(prev, 0); err != nil {
			return nil, err
		}
		pp = newPlacement(prev, &s)
	}
	if err := measure(mp, pl, pp, &s); err != nil {
		return nil, err
	}
	return pl, nil
}

func validateRun(r *Run, i int) error {
	if r == nil {
		return invalidf("run %d is nil", i)
	}
	if r.RelativeScale <= 0 {
		return invalidf("run %d (%s) has non-positive scale %g", i, r.ID, r.RelativeScale)
	}
	return nil
}
