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
	"fmt"
	"math"
	"strings"
	"unicode/utf8"

	"gorichtext/internal/geom"
)

// fakeMetrics advances every rune by 10 units at height 20 and tightens
// each "AV" pair by 2.
type fakeMetrics struct {
	anims map[string]geom.Size
	calls int
}

var (
	errNoFont   = errors.New("no such font")
	errSinkFull = errors.New("sink full")
)

func newFakeMetrics() *fakeMetrics {
	return &fakeMetrics{anims: map[string]geom.Size{
		"star": {W: 16, H: 16},
		"wide": {W: 40, H: 10},
	}}
}

func (f *fakeMetrics) TextMetrics(font, text string) (geom.Size, error) {
	f.calls++
	if font == "missing" {
		return geom.Size{}, errNoFont
	}
	w := float32(10*utf8.RuneCountInString(text) - 2*strings.Count(text, "AV"))
	return geom.Size{W: w, H: 20}, nil
}

func (f *fakeMetrics) FlipbookSize(anim string) (geom.Size, error) {
	s, ok := f.anims[anim]
	if !ok {
		return geom.Size{}, fmt.Errorf("no animation %q", anim)
	}
	return s, nil
}

// fakeSink records node operations in memory. Create fails once the sink
// holds maxNodes nodes, when maxNodes is set.
type fakeSink struct {
	nodes    map[NodeHandle]NodeState
	maxNodes int
	next     int
	creates int
	updates int
	deletes int
}

func newFakeSink() *fakeSink { return &fakeSink{nodes: map[NodeHandle]NodeState{}} }

func (s *fakeSink) Create(st NodeState) (NodeHandle, error) {
	if s.maxNodes > 0 && len(s.nodes) >= s.maxNodes {
		return "", errSinkFull
	}
	s.next++
	s.creates++
	h := NodeHandle(fmt.Sprintf("n%d", s.next))
	s.nodes[h] = st
	return h, nil
}

func (s *fakeSink) Update(h NodeHandle, st NodeState) error {
	if _, ok := s.nodes[h]; !ok {
		return fmt.Errorf("unknown node %s", h)
	}
	s.updates++
	s.nodes[h] = st
	return nil
}

func (s *fakeSink) Delete(h NodeHandle) error {
	s.deletes++
	delete(s.nodes, h)
	return nil
}

func (s *fakeSink) Bounds(h NodeHandle) (geom.Rect, bool) {
	st, ok := s.nodes[h]
	if !ok || !st.Visible {
		return geom.Rect{}, false
	}
	return st.Bounds(), true
}

func word(id, text string) *Run {
	return &Run{ID: RunID(id), SourceText: text, RelativeScale: 1, Color: geom.Black}
}

func image(id, anim string) *Run {
	return &Run{ID: RunID(id), Image: &ImageRef{Anim: anim}, RelativeScale: 1}
}

func words(texts ...string) []*Run {
	out := make([]*Run, len(texts))
	for i, t := range texts {
		out[i] = word(fmt.Sprintf("w%d", i), t)
	}
	return out
}

func multiline(w, h float32) Settings {
	s := DefaultSettings(w, h)
	s.Multiline = true
	return s
}

func lineTexts(l *Layout) [][]string {
	out := make([][]string, len(l.Lines))
	for i, ln := range l.Lines {
		for _, pl := range ln.Items {
			out[i] = append(out[i], pl.Text)
		}
	}
	return out
}

func near(a, b float32) bool { return math.Abs(float64(a-b)) < 1e-3 }
