/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package metricscache memoizes text and flipbook measurements, optionally
// persisting text measurements to SQLite or PostgreSQL so repeated layouts
// across runs skip font rasterization.
package metricscache

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"gorichtext/internal/geom"
	applog "gorichtext/internal/log"
	"gorichtext/internal/richtext"
)

const storeTimeout = 5 * time.Second

type textKey struct{ font, text string }

// Stats counts lookups served by the cache.
type Stats struct {
	Hits      int
	StoreHits int
	Misses    int
	Entries   int
}

// Cache wraps a MetricsProvider. Errors from the wrapped provider are never
// cached; a failing store is logged and bypassed.
type Cache struct {
	next  richtext.MetricsProvider
	store *SQLStore
	ns    string
	log   *slog.Logger

	mu    sync.Mutex
	text  map[textKey]geom.Size
	anims map[string]geom.Size
	stats Stats
}

type Option func(*Cache)

// WithStore persists text measurements under namespace ns. The namespace
// should identify the provider and font set, since sizes differ between them.
func WithStore(s *SQLStore, ns string) Option {
	return func(c *Cache) {
		c.store = s
		c.ns = ns
	}
}

func WithLogger(l *slog.Logger) Option { return func(c *Cache) { c.log = l } }

func New(next richtext.MetricsProvider, opts ...Option) *Cache {
	c := &Cache{
		next:  next,
		log:   applog.WithComponent("metricscache"),
		text:  map[textKey]geom.Size{},
		anims: map[string]geom.Size{},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

func (c *Cache) TextMetrics(font, text string) (geom.Size, error) {
	k := textKey{font, text}
	c.mu.Lock()
	if s, ok := c.text[k]; ok {
		c.stats.Hits++
		c.mu.Unlock()
		return s, nil
	}
	c.mu.Unlock()

	if s, ok := c.load(k); ok {
		c.mu.Lock()
		c.text[k] = s
		c.stats.StoreHits++
		c.mu.Unlock()
		return s, nil
	}

	s, err := c.next.TextMetrics(font, text)
	if err != nil {
		return geom.Size{}, err
	}
	c.mu.Lock()
	c.text[k] = s
	c.stats.Misses++
	c.mu.Unlock()
	c.save(k, s)
	return s, nil
}

func (c *Cache) FlipbookSize(anim string) (geom.Size, error) {
	c.mu.Lock()
	if s, ok := c.anims[anim]; ok {
		c.stats.Hits++
		c.mu.Unlock()
		return s, nil
	}
	c.mu.Unlock()
	s, err := c.next.FlipbookSize(anim)
	if err != nil {
		return geom.Size{}, err
	}
	c.mu.Lock()
	c.anims[anim] = s
	c.stats.Misses++
	c.mu.Unlock()
	return s, nil
}

func (c *Cache) load(k textKey) (geom.Size, bool) {
	if c.store == nil {
		return geom.Size{}, false
	}
	ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
	defer cancel()
	s, ok, err := c.store.Get(ctx, c.ns, k.font, k.text)
	if err != nil {
		applog.WithOperation(c.log, "load").Warn("metrics store lookup failed", slog.Any("err", err))
		return geom.Size{}, false
	}
	return s, ok
}

func (c *Cache) save(k textKey, s geom.Size) {
	if c.store == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
	defer cancel()
	if err := c.store.Put(ctx, c.ns, k.font, k.text, s); err != nil {
		applog.WithOperation(c.log, "save").Warn("metrics store write failed", slog.Any("err", err))
	}
}

func (c *Cache) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	st := c.stats
	st.Entries = len(c.text) + len(c.anims)
	return st
}

// Reset drops the in-memory entries. Persisted entries are kept.
func (c *Cache) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.text = map[textKey]geom.Size{}
	c.anims = map[string]geom.Size{}
	c.stats = Stats{}
}
