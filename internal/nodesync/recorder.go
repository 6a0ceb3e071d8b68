/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package nodesync provides presentation layers for richtext node sync: an
// in-memory recorder, a PDF preview and, in fyne builds, a Fyne canvas.
package nodesync

import (
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"gorichtext/internal/geom"
	"gorichtext/internal/richtext"
)

// ErrUnknownNode is returned for handles the sink never created or already deleted.
var ErrUnknownNode = errors.New("unknown node")

// Counts tallies the calls a sink received.
type Counts struct {
	Created, Updated, Deleted int
}

// Recorder keeps the last state of every node. The other sinks embed it
// for bookkeeping.
type Recorder struct {
	mu     sync.RWMutex
	nodes  map[richtext.NodeHandle]richtext.NodeState
	order  []richtext.NodeHandle
	counts Counts
	// NewID generates handles; uuid.NewString when nil.
	NewID func() string
}

func NewRecorder() *Recorder {
	return &Recorder{nodes: map[richtext.NodeHandle]richtext.NodeState{}}
}

func (r *Recorder) Create(st richtext.NodeState) (richtext.NodeHandle, error) {
	id := uuid.NewString
	if r.NewID != nil {
		id = r.NewID
	}
	h := richtext.NodeHandle(id())
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.nodes == nil {
		r.nodes = map[richtext.NodeHandle]richtext.NodeState{}
	}
	if _, dup := r.nodes[h]; dup {
		return "", fmt.Errorf("duplicate node handle %q", h)
	}
	r.nodes[h] = st
	r.order = append(r.order, h)
	r.counts.Created++
	return h, nil
}

func (r *Recorder) Update(h richtext.NodeHandle, st richtext.NodeState) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.nodes[h]; !ok {
		return fmt.Errorf("%w: %s", ErrUnknownNode, h)
	}
	r.nodes[h] = st
	r.counts.Updated++
	return nil
}

func (r *Recorder) Delete(h richtext.NodeHandle) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.nodes[h]; !ok {
		return fmt.Errorf("%w: %s", ErrUnknownNode, h)
	}
	delete(r.nodes, h)
	for i, o := range r.order {
		if o == h {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	r.counts.Deleted++
	return nil
}

func (r *Recorder) Bounds(h richtext.NodeHandle) (geom.Rect, bool) {
	st, ok := r.State(h)
	if !ok {
		return geom.Rect{}, false
	}
	return st.Bounds(), true
}

// State returns the last synced state of a node.
func (r *Recorder) State(h richtext.NodeHandle) (richtext.NodeState, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	st, ok := r.nodes[h]
	return st, ok
}

// States returns live nodes in creation order.
func (r *Recorder) States() []richtext.NodeState {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]richtext.NodeState, 0, len(r.order))
	for _, h := range r.order {
		out = append(out, r.nodes[h])
	}
	return out
}

// Visible returns the visible nodes in creation order.
func (r *Recorder) Visible() []richtext.NodeState {
	var out []richtext.NodeState
	for _, st := range r.States() {
		if st.Visible {
			out = append(out, st)
		}
	}
	return out
}

func (r *Recorder) Counts() Counts {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.counts
}

func (r *Recorder) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.nodes)
}
