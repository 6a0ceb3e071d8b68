/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package richtext

import "gorichtext/internal/geom"

// Prefab describes the node template runs of one kind are created from.
type Prefab struct {
	// Scale is the template's own node scale.
	Scale geom.Pt
	// Pivot of nodes created from the template.
	Pivot geom.Pt
	// Font used for text runs that do not name one.
	Font string
}

// FitOptions bound the multiline fit search.
type FitOptions struct {
	Step     float32
	MaxSteps int
	// MinScale is the smallest adjust scale the search will try.
	MinScale float32
}

// Settings configure one layout area.
type Settings struct {
	Width, Height      float32
	Multiline          bool
	TextLeading        float32
	AdjustScale        float32
	Pivot              geom.Pt
	CombineWords       bool
	ImagePixelGridSnap bool
	// DefaultAnimation is used for image runs without an animation name.
	DefaultAnimation string
	TextPrefab       Prefab
	ImagePrefab      Prefab
	Fit              FitOptions
}

// DefaultFitOptions returns the stock search parameters.
func DefaultFitOptions() FitOptions {
	return FitOptions{Step: 0.02, MaxSteps: 10, MinScale: 0.01}
}

// DefaultSettings returns settings for a single-line area of the given size.
func DefaultSettings(width, height float32) Settings {
	return Settings{
		Width:       width,
		Height:      height,
		TextLeading: 1,
		AdjustScale: 1,
		Pivot:       geom.PivotCenter,
		TextPrefab:  Prefab{Scale: geom.Pt{X: 1, Y: 1}, Pivot: geom.PivotCenter},
		ImagePrefab: Prefab{Scale: geom.Pt{X: 1, Y: 1}, Pivot: geom.PivotCenter},
		Fit:         DefaultFitOptions(),
	}
}

// normalized fills zero values with their defaults and rejects settings
// no layout can be computed for.
func (s Settings) normalized() (Settings, error) {
	if s.Width < 0 || s.Height < 0 {
		return s, invalidf("negative area %gx%g", s.Width, s.Height)
	}
	if s.TextLeading <= 0 {
		s.TextLeading = 1
	}
	if s.AdjustScale <= 0 {
		s.AdjustScale = 1
	}
	if s.TextPrefab.Scale == (geom.Pt{}) {
		s.TextPrefab.Scale = geom.Pt{X: 1, Y: 1}
	}
	if s.ImagePrefab.Scale == (geom.Pt{}) {
		s.ImagePrefab.Scale = geom.Pt{X: 1, Y: 1}
	}
	if s.Pivot.X < -0.5 || s.Pivot.X > 0.5 || s.Pivot.Y < -0.5 || s.Pivot.Y > 0.5 {
		return s, invalidf("pivot %v outside [-0.5, 0.5]", s.Pivot)
	}
	d := DefaultFitOptions()
	if s.Fit.Step <= 0 {
		s.Fit.Step = d.Step
	}
	if s.Fit.MaxSteps <= 0 {
		s.Fit.MaxSteps = d.MaxSteps
	}
	if s.Fit.MinScale <= 0 {
		s.Fit.MinScale = d.MinScale
	}
	return s, nil
}

func (s *Settings) prefab(r *Run) Prefab {
	if r.IsImage() {
		return s.ImagePrefab
	}
	return s.TextPrefab
}

func (s *Settings) fontOf(r *Run) string {
	if r.Font != "" {
		return r.Font
	}
	return s.TextPrefab.Font
}
