/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package richtext lays out inline rich text (styled text runs and inline
// images) into wrapped lines inside a bounded area and reports per-run
// position, size and scale for an external presentation layer.
//
// The engine is split into small passes that mirror how a layout is built:
//   - measure: size of one run, with kerning against its predecessor
//   - split: greedy line breaking with no-break groups and forced breaks
//   - metrics/position: line sizes and absolute run positions under a pivot
//   - fit: rescaling the whole layout until it fits the target area
//
// Every pass works on fresh Placement values, so the input runs are never
// mutated and repeated passes over the same runs are idempotent. Node
// handles are the only state that survives a pass; see NodeRegistry.
package richtext

import (
	"maps"

	"gorichtext/internal/geom"
)

// RunID identifies a run across layout passes. It keys the node registry,
// so it must stay stable for as long as the caller keeps the run.
type RunID string

// ImageRef points at an inline image animation. Width and Height are
// optional explicit sizes in the image's own units; zero means "natural".
type ImageRef struct {
	Anim   string
	Width  float32
	Height float32
}

// Run is one atomic layout unit: either a text span or an inline image.
// Runs are treated as read-only by the engine.
type Run struct {
	ID            RunID
	SourceText    string
	Image         *ImageRef
	Font          string
	RelativeScale float32
	Color         geom.Color
	Shadow        geom.Color
	Outline       geom.Color
	Tags          map[string]string
	Anchor        bool
	NoBreak       bool
	ForceBreak    bool
}

// IsImage reports whether the run is an inline image.
func (r *Run) IsImage() bool { return r != nil && r.Image != nil }

// HasTag reports whether the run carries the given tag key.
func (r *Run) HasTag(tag string) bool {
	_, ok := r.Tags[tag]
	return ok
}

// Tag returns the value of a tag key.
func (r *Run) Tag(tag string) (string, bool) {
	v, ok := r.Tags[tag]
	return v, ok
}

// compatible reports whether b can be measured (and merged) in the context
// of a: both text, same scale, colors, font and identical tag sets. Absent
// and empty tag sets compare equal.
func compatible(a, b *Run) bool {
	if a == nil || b == nil || a.IsImage() || b.IsImage() {
		return false
	}
	return a.RelativeScale == b.RelativeScale &&
		a.Color == b.Color &&
		a.Shadow == b.Shadow &&
		a.Outline == b.Outline &&
		a.Font == b.Font &&
		maps.Equal(a.Tags, b.Tags)
}
