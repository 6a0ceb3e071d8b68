/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package document

import (
	"encoding/json"
	"io"
	"sort"

	"gorichtext/internal/geom"
	"gorichtext/internal/richtext"
)

type Point struct {
	X float32 `json:"x"`
	Y float32 `json:"y"`
}

type Extent struct {
	W float32 `json:"w"`
	H float32 `json:"h"`
}

// RunResult is the committed state of one run.
type RunResult struct {
	ID       string            `json:"id"`
	Text     string            `json:"text,omitempty"`
	Image    string            `json:"image,omitempty"`
	Line     int               `json:"line"`
	Position Point             `json:"position"`
	Size     Extent            `json:"size"`
	Scale    Point             `json:"scale"`
	Pivot    Point             `json:"pivot"`
	Color    string            `json:"color,omitempty"`
	Merged   bool              `json:"merged,omitempty"`
	Anchor   bool              `json:"anchor,omitempty"`
	Tags     map[string]string `json:"tags,omitempty"`
}

type LineResult struct {
	Width  float32  `json:"width"`
	Height float32  `json:"height"`
	Runs   []string `json:"runs"`
}

// Result is the JSON form of a committed layout.
type Result struct {
	Scale      float32      `json:"scale"`
	Fits       bool         `json:"fits"`
	Passes     int          `json:"passes"`
	TextWidth  float32      `json:"text_width"`
	TextHeight float32      `json:"text_height"`
	Lines      []LineResult `json:"lines"`
	Runs       []RunResult  `json:"runs"`
}

func pt(p geom.Pt) Point { return Point{X: p.X, Y: p.Y} }

// NewResult flattens a layout and its fit report.
func NewResult(l *richtext.Layout, rep richtext.FitReport) Result {
	res := Result{Scale: rep.Scale, Fits: rep.Fits, Passes: rep.Passes, Lines: []LineResult{}, Runs: []RunResult{}}
	if l == nil {
		return res
	}
	res.TextWidth, res.TextHeight = l.Metrics.TextWidth, l.Metrics.TextHeight
	for _, ln := range l.Lines {
		lr := LineResult{Width: ln.Width, Height: ln.Height, Runs: make([]string, 0, len(ln.Items))}
		for _, pl := range ln.Items {
			lr.Runs = append(lr.Runs, string(pl.Run.ID))
		}
		res.Lines = append(res.Lines, lr)
	}
	for _, pl := range l.Placements {
		res.Runs = append(res.Runs, NewRunResult(pl))
	}
	return res
}

func NewRunResult(pl *richtext.Placement) RunResult {
	r := pl.Run
	rr := RunResult{
		ID:       string(r.ID),
		Line:     pl.Line,
		Position: pt(pl.Position),
		Size:     Extent{W: pl.Size.W, H: pl.Size.H},
		Scale:    pt(pl.Scale),
		Pivot:    pt(pl.Pivot),
		Merged:   pl.Merged,
		Anchor:   r.Anchor,
		Tags:     r.Tags,
	}
	if r.IsImage() {
		rr.Image = pl.Anim
	} else {
		rr.Text = pl.Text
		rr.Color = r.Color.Hex()
	}
	return rr
}

// Encode writes v as indented JSON.
func Encode(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// TagSummary counts runs per tag, sorted by tag name.
type TagSummary struct {
	Tag  string   `json:"tag"`
	Runs []string `json:"runs"`
}

func Tags(runs []*richtext.Run) []TagSummary {
	by := map[string][]string{}
	for _, r := range runs {
		for k := range r.Tags {
			by[k] = append(by[k], string(r.ID))
		}
	}
	out := make([]TagSummary, 0, len(by))
	for k, ids := range by {
		out = append(out, TagSummary{Tag: k, Runs: ids})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Tag < out[j].Tag })
	return out
}
