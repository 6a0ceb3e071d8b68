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
	"log/slog"

	applog "gorichtext/internal/log"
)

// Text is a laid out rich text area bound to a presentation layer. It
// keeps the last committed layout and the node of every run it placed.
type Text struct {
	mp       MetricsProvider
	nodes    *NodeRegistry
	settings Settings
	runs     []*Run
	layout   *Layout
	report   FitReport
	log      *slog.Logger
}

// Option customises a Text.
type Option func(*Text)

// WithLogger replaces the component logger.
func WithLogger(l *slog.Logger) Option { return func(t *Text) { t.log = l } }

// New creates an empty text area.
func New(mp MetricsProvider, sink NodeSync, s Settings, opts ...Option) (*Text, error) {
	s, err := s.normalized()
	if err != nil {
		return nil, err
	}
	t := &Text{
		mp:       mp,
		nodes:    NewNodeRegistry(sink),
		settings: s,
		log:      applog.WithComponent("richtext"),
	}
	for _, o := range opts {
		o(t)
	}
	return t, nil
}

// SetRuns lays runs out, shrinks them to fit when needed and syncs nodes.
// Nodes of runs that are no longer present are deleted.
func (t *Text) SetRuns(runs []*Run) (*Layout, error) {
	l := applog.WithOperation(t.log, "set_runs")
	layout, rep, err := Fit(t.mp, runs, t.settings)
	if err != nil {
		l.Warn("layout failed", slog.Int("runs", len(runs)), slog.Any("err", err))
		return nil, err
	}
	if err := t.commit(runs, layout); err != nil {
		l.Warn("node sync failed", slog.Int("runs", len(runs)), slog.Any("err", err))
		return nil, err
	}
	t.report = rep
	keep := make(map[RunID]struct{}, len(runs))
	for _, r := range runs {
		keep[r.ID] = struct{}{}
	}
	// the new layout stays committed even if a stale node cannot be deleted
	if err := t.nodes.Retain(keep); err != nil {
		return layout, fmt.Errorf("drop stale nodes: %w", err)
	}
	l.Debug("layout committed",
		slog.Int("runs", len(runs)),
		slog.Int("lines", len(layout.Lines)),
		slog.Float64("scale", float64(rep.Scale)),
		slog.Bool("fits", rep.Fits),
		slog.Int("passes", rep.Passes))
	return layout, nil
}

// SetTextScale re-lays the current runs at a fixed adjust scale.
func (t *Text) SetTextScale(scale float32) (*Layout, error) {
	if scale <= 0 {
		return nil, invalidf("text scale %g", scale)
	}
	s := t.settings
	s.AdjustScale = scale
	layout, err := pass(t.mp, t.runs, s)
	if err != nil {
		return nil, err
	}
	if err := t.commit(t.runs, layout); err != nil {
		return nil, err
	}
	t.report = FitReport{Scale: scale, Fits: layout.Fits()}
	return layout, nil
}

// commit syncs layout into the nodes. On failure the nodes are put back
// to the previous committed layout and nothing else changes.
func (t *Text) commit(runs []*Run, layout *Layout) error {
	if err := t.nodes.Sync(layout.Placements...); err != nil {
		if t.layout != nil {
			if rerr := t.nodes.Sync(t.layout.Placements...); rerr != nil {
				err = errors.Join(err, fmt.Errorf("restore nodes: %w", rerr))
			}
		}
		return err
	}
	t.runs = runs
	t.layout = layout
	return nil
}

// Layout returns the last committed layout, or nil.
func (t *Text) Layout() *Layout { return t.layout }

// Report returns the outcome of the last fit.
func (t *Text) Report() FitReport { return t.report }

// Settings returns the normalized area settings.
func (t *Text) Settings() Settings { return t.settings }

// Runs returns the runs of the last committed layout.
func (t *Text) Runs() []*Run { return t.runs }

// Nodes exposes the node registry.
func (t *Text) Nodes() *NodeRegistry { return t.nodes }

// Clear deletes every node and forgets the current runs.
func (t *Text) Clear() error {
	err := t.nodes.Retain(nil)
	t.runs, t.layout, t.report = nil, nil, FitReport{}
	return err
}
