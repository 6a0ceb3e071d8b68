/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package geom

// Basic 2D geometry shared by the layout engine and its collaborators.
// Float values use float32 to match font metrics and most UI toolkits.
// The layout coordinate space has y increasing upward.

import "math"

// Pt is a 2D point.
type Pt struct{ X, Y float32 }

// Size is a width/height pair.
type Size struct{ W, H float32 }

// Rect is an axis-aligned rectangle defined by min corner and size.
type Rect struct {
	X, Y float32
	W, H float32
}

func R(x, y, w, h float32) Rect { return Rect{X: x, Y: y, W: w, H: h} }

func (r Rect) Min() Pt { return Pt{r.X, r.Y} }
func (r Rect) Max() Pt { return Pt{r.X + r.W, r.Y + r.H} }

func (r Rect) Contains(p Pt) bool {
	return p.X >= r.X && p.Y >= r.Y && p.X <= r.X+r.W && p.Y <= r.Y+r.H
}

// Inset returns a rectangle inset by dx,dy on all sides (negative grows).
func (r Rect) Inset(dx, dy float32) Rect {
	return Rect{X: r.X + dx, Y: r.Y + dy, W: r.W - 2*dx, H: r.H - 2*dy}
}

// Union returns the minimal rect containing both.
func (r Rect) Union(o Rect) Rect {
	minX := min(r.X, o.X)
	minY := min(r.Y, o.Y)
	maxX := max(r.X+r.W, o.X+o.W)
	maxY := max(r.Y+r.H, o.Y+o.H)
	return Rect{X: minX, Y: minY, W: maxX - minX, H: maxY - minY}
}

// Scale multiplies both dimensions component-wise.
func (s Size) Scale(k Pt) Size { return Size{W: s.W * k.X, H: s.H * k.Y} }

// Aspect returns W/H, or 1 for a degenerate size.
func (s Size) Aspect() float32 {
	if s.H == 0 {
		return 1
	}
	return s.W / s.H
}

// BoundsAt returns the rectangle covered by a box of the given size whose
// pivot point sits at pos. Pivot components are offsets in [-0.5, 0.5].
func BoundsAt(pos Pt, size Size, pivot Pt) Rect {
	return Rect{
		X: pos.X - size.W*(pivot.X+0.5),
		Y: pos.Y - size.H*(pivot.Y+0.5),
		W: size.W,
		H: size.H,
	}
}

// FloatRound rounds v to n decimal places deterministically.
func FloatRound(v float32, places int) float32 {
	if places < 0 {
		return v
	}
	pow := float32(math.Pow(10, float64(places)))
	return float32(math.Round(float64(v*pow))) / pow
}

// Round rounds v to the nearest integer.
func Round(v float32) float32 { return float32(math.Round(float64(v))) }

// Sqrt is math.Sqrt for float32 values.
func Sqrt(v float32) float32 { return float32(math.Sqrt(float64(v))) }
