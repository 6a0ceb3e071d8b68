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

// LinkEvent is emitted when a hit lands on an anchor run with an "a" tag.
type LinkEvent struct {
	RunID  RunID
	Text   string
	Target string
	Point  geom.Pt
}

// Tagged returns the runs carrying tag. An empty tag selects runs without
// any tags.
func Tagged(runs []*Run, tag string) []*Run {
	var out []*Run
	for _, r := range runs {
		if tag == "" && len(r.Tags) == 0 || tag != "" && r.HasTag(tag) {
			out = append(out, r)
		}
	}
	return out
}

// Tagged returns the committed runs carrying tag.
func (t *Text) Tagged(tag string) []*Run { return Tagged(t.runs, tag) }

// Hit tests pt against the nodes of anchor runs, in run order. The first
// anchor whose node contains pt and that carries an "a" tag is reported to
// onLink. Hit returns whether an event was emitted.
func (t *Text) Hit(pt geom.Pt, onLink func(LinkEvent)) bool {
	if t.layout == nil {
		return false
	}
	for _, pl := range t.layout.Placements {
		if !pl.Run.Anchor || pl.Merged {
			continue
		}
		b, ok := t.nodes.Bounds(pl.Run.ID)
		if !ok || !b.Contains(pt) {
			continue
		}
		target, ok := pl.Run.Tag("a")
		if !ok {
			continue
		}
		if onLink != nil {
			onLink(LinkEvent{RunID: pl.Run.ID, Text: pl.Text, Target: target, Point: pt})
		}
		return true
	}
	return false
}

// Characters splits a committed text run into one placement per code
// point, positioned where each character sits inside the run. Each
// character is sized with kerning against the character before it. The
// placements are not synced; pass them to Nodes().Sync to show them.
func (t *Text) Characters(id RunID) ([]*Placement, error) {
	if t.layout == nil {
		return nil, invalidf("no committed layout")
	}
	word, ok := t.layout.Placement(id)
	if !ok {
		return nil, invalidf("run %s is not laid out", id)
	}
	return SplitCharacters(t.mp, word, t.layout.Settings)
}

// SplitCharacters is the layout-independent part of Text.Characters.
func SplitCharacters(mp MetricsProvider, word *Placement, s Settings) ([]*Placement, error) {
	chars := []rune(word.Text)
	if word.Run.IsImage() || len(chars) <= 1 {
		cp := *word
		return []*Placement{&cp}, nil
	}
	out := make([]*Placement, 0, len(chars))
	left := word.Position.X - word.Size.W*(word.Pivot.X+0.5)
	var prev *Placement
	for i, c := range chars {
		r := *word.Run
		r.ID = RunID(fmt.Sprintf("%s/%d", word.Run.ID, i))
		r.SourceText = string(c)
		pl := newPlacement(&r, &s)
		pl.Line = word.Line
		if err := measure(mp, pl, prev, &s); err != nil {
			return nil, err
		}
		prefix := &Placement{Run: word.Run, Text: string(chars[:i+1])}
		if err := measure(mp, prefix, nil, &s); err != nil {
			return nil, err
		}
		// place by left edges, then move back onto the character's pivot
		pl.Position = word.Position
		pl.Position.X = left + prefix.Size.W - pl.Size.W + pl.Size.W*(pl.Pivot.X+0.5)
		out = append(out, pl)
		prev = pl
	}
	return out, nil
}
