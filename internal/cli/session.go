/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package cli

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"gorichtext/internal/config"
	"gorichtext/internal/document"
	applog "gorichtext/internal/log"
	"gorichtext/internal/markup"
	"gorichtext/internal/metricscache"
	"gorichtext/internal/nodesync"
	"gorichtext/internal/richtext"
	"gorichtext/internal/textlayout"
)

// session is one loaded document with its committed layout.
type session struct {
	doc      *document.Document
	fonts    *textlayout.FontTable
	settings richtext.Settings
	runs     []*richtext.Run
	text     *richtext.Text
	cache    *metricscache.Cache
	close    func() error
}

func (s *session) Close() error {
	if s.close == nil {
		return nil
	}
	return s.close()
}

// metrics builds the configured provider, wrapped in a memoizing cache that
// persists to the configured store.
func (c *CLI) metrics(ctx context.Context, fonts *textlayout.FontTable) (*metricscache.Cache, func() error, error) {
	m := c.cfg.Metrics
	atlas := textlayout.NewAtlas()
	if m.Atlas != "" {
		n, err := atlas.LoadDir(m.Atlas)
		if err != nil {
			return nil, nil, fmt.Errorf("load atlas: %w", err)
		}
		c.log.Debug("atlas loaded", slog.String("dir", m.Atlas), slog.Int("flipbooks", n))
	}

	var (
		mp  richtext.MetricsProvider
		err error
	)
	switch m.Provider {
	case config.ProviderBasic:
		mp = &textlayout.FaceMetrics{Fonts: fonts, Provider: textlayout.BasicProvider{}, Atlas: atlas}
	case config.ProviderPDF:
		mp, err = textlayout.NewPDFMetrics(fonts, atlas)
	case config.ProviderCanvas:
		mp, err = textlayout.NewCanvasMetrics(fonts, atlas)
	default:
		lib := textlayout.GoFonts()
		if err = lib.LoadTable(fonts); err == nil {
			mp = textlayout.NewFaceMetrics(fonts, lib, atlas, m.DPI)
		}
	}
	if err != nil {
		return nil, nil, fmt.Errorf("%s metrics: %w", m.Provider, err)
	}

	closeFn := func() error { return nil }
	var opts []metricscache.Option
	if m.Cache != "" {
		st, err := metricscache.Open(ctx, m.Cache)
		if err != nil {
			return nil, nil, fmt.Errorf("open metrics cache: %w", err)
		}
		opts = append(opts, metricscache.WithStore(st, namespace(m, fonts)))
		closeFn = st.Close
	}
	return metricscache.New(mp, opts...), closeFn, nil
}

// namespace keys persisted measurements by provider, resolution and font set.
func namespace(m config.MetricsConfig, fonts *textlayout.FontTable) string {
	ns := m.Provider + "@" + strconv.FormatFloat(m.DPI, 'f', -1, 64)
	for _, name := range fonts.Names() {
		spec, _ := fonts.Resolve(name)
		ns += fmt.Sprintf("|%s=%s/%g/%d/%t/%s", name, spec.Family, spec.SizePt, spec.Weight, spec.Italic, spec.File)
	}
	return ns
}

// open loads a document, lays it out and commits it into the sink built by
// sink, or into a Recorder when sink is nil.
func (c *CLI) open(ctx context.Context, path string, sink func(*textlayout.FontTable, richtext.Settings) richtext.NodeSync) (*session, error) {
	doc, err := document.Load(path)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	c.crash.Document = path
	c.crash.Markup = doc.Markup
	l := applog.WithOperation(c.log, "open")
	ctx = applog.ContextWithDocument(ctx, path)

	fonts := c.cfg.FontTable().WithDocument(doc.Fonts)
	base, err := c.cfg.Settings()
	if err != nil {
		return nil, err
	}
	settings, err := doc.Settings.Apply(base)
	if err != nil {
		return nil, err
	}
	defaults, err := doc.Defaults.Apply(c.cfg.MarkupDefaults())
	if err != nil {
		return nil, err
	}
	p := markup.Parser{Defaults: defaults}
	runs, err := p.Parse(doc.Markup)
	if err != nil {
		return nil, err
	}

	cache, closeFn, err := c.metrics(ctx, fonts)
	if err != nil {
		return nil, err
	}
	var ns richtext.NodeSync = nodesync.NewRecorder()
	if sink != nil {
		ns = sink(fonts, settings)
	}
	text, err := richtext.New(cache, ns, settings, richtext.WithLogger(applog.WithComponent("richtext")))
	if err != nil {
		_ = closeFn()
		return nil, err
	}
	if _, err := text.SetRuns(runs); err != nil {
		_ = closeFn()
		return nil, err
	}
	if ts := doc.Settings.TextScale; ts != nil {
		if _, err := text.SetTextScale(*ts); err != nil {
			_ = closeFn()
			return nil, err
		}
	}
	st := cache.Stats()
	l.DebugContext(ctx, "layout committed",
		slog.Int("runs", len(runs)),
		slog.Float64("scale", float64(text.Report().Scale)),
		slog.Bool("fits", text.Report().Fits),
		slog.Int("cache_hits", st.Hits+st.StoreHits),
		slog.Int("cache_misses", st.Misses))
	return &session{doc: doc, fonts: fonts, settings: settings, runs: runs, text: text, cache: cache, close: closeFn}, nil
}
