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

	"gorichtext/internal/geom"
)

// NodeHandle is an opaque reference to a presentation node.
type NodeHandle string

// NodeState is everything a presentation node needs to show one run.
type NodeState struct {
	RunID    RunID
	Text     string
	Image    string
	Font     string
	Size     geom.Size
	Scale    geom.Pt
	Pivot    geom.Pt
	Position geom.Pt
	Color    geom.Color
	Shadow   geom.Color
	Outline  geom.Color
	Visible  bool
}

// Bounds returns the area the node covers on screen.
func (n NodeState) Bounds() geom.Rect {
	return geom.BoundsAt(n.Position, n.Size.Scale(n.Scale), n.Pivot)
}

// NodeSync is implemented by presentation layers.
type NodeSync interface {
	Create(st NodeState) (NodeHandle, error)
	Update(h NodeHandle, st NodeState) error
	Delete(h NodeHandle) error
	// Bounds reports the on-screen rectangle of a node.
	Bounds(h NodeHandle) (geom.Rect, bool)
}

// NodeRegistry maps run ids to the nodes created for them. Nodes are
// created the first time a run is synced and updated in place afterwards.
type NodeRegistry struct {
	sink    NodeSync
	handles map[RunID]NodeHandle
}

func NewNodeRegistry(sink NodeSync) *NodeRegistry {
	return &NodeRegistry{sink: sink, handles: map[RunID]NodeHandle{}}
}

// Handle returns the node of a run, if one was created.
func (r *NodeRegistry) Handle(id RunID) (NodeHandle, bool) {
	h, ok := r.handles[id]
	return h, ok
}

// Len returns the number of live nodes.
func (r *NodeRegistry) Len() int { return len(r.handles) }

// Bounds returns the on-screen rectangle of a run's node.
func (r *NodeRegistry) Bounds(id RunID) (geom.Rect, bool) {
	h, ok := r.handles[id]
	if !ok {
		return geom.Rect{}, false
	}
	return r.sink.Bounds(h)
}

// Sync pushes placements to their nodes. Merged placements only hide a
// node that already exists. When a create or update fails, the nodes this
// call created are deleted again; updates already applied are not undone.
func (r *NodeRegistry) Sync(pls ...*Placement) error {
	var created []RunID
	fail := func(err error) error {
		for _, id := range created {
			err = errors.Join(err, r.Forget(id))
		}
		return err
	}
	for _, pl := range pls {
		st := stateOf(pl)
		h, ok := r.handles[pl.Run.ID]
		switch {
		case ok:
			if err := r.sink.Update(h, st); err != nil {
				return fail(fmt.Errorf("update node for run %s: %w", pl.Run.ID, err))
			}
		case pl.Merged:
		default:
			nh, err := r.sink.Create(st)
			if err != nil {
				return fail(fmt.Errorf("create node for run %s: %w", pl.Run.ID, err))
			}
			r.handles[pl.Run.ID] = nh
			created = append(created, pl.Run.ID)
		}
	}
	return nil
}

// Forget deletes the node of a run and drops it from the registry.
func (r *NodeRegistry) Forget(id RunID) error {
	h, ok := r.handles[id]
	if !ok {
		return nil
	}
	delete(r.handles, id)
	return r.sink.Delete(h)
}

// Retain forgets every node whose run is not in keep.
func (r *NodeRegistry) Retain(keep map[RunID]struct{}) error {
	var errs []error
	for id := range r.handles {
		if _, ok := keep[id]; ok {
			continue
		}
		if err := r.Forget(id); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func stateOf(pl *Placement) NodeState {
	r := pl.Run
	st := NodeState{
		RunID:    r.ID,
		Font:     r.Font,
		Size:     pl.NodeSize,
		Scale:    pl.Scale,
		Pivot:    pl.Pivot,
		Position: pl.Position,
		Color:    r.Color,
		Shadow:   r.Shadow,
		Outline:  r.Outline,
		Visible:  !pl.Merged,
	}
	if r.IsImage() {
		st.Image = pl.Anim
	} else {
		st.Text = pl.Text
	}
	return st
}
