/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package richtext

import "gorichtext/internal/geom"

// position assigns absolute positions to every visible placement. The
// origin is the area's pivot point, y grows upward and lines are stacked
// top to bottom.
func position(lines []Line, lm LinesMetrics, s *Settings) {
	pv := s.Pivot
	top := (s.Height-lm.TextHeight)*(pv.Y-0.5) - s.Height*(pv.Y-0.5)
	for _, ln := range lines {
		x := (s.Width-ln.Width)*(pv.X+0.5) - s.Width*(pv.X+0.5)
		for _, pl := range ln.Items {
			rp := pl.Pivot
			w, h := pl.Size.W, pl.Size.H
			px := x + pl.Offset.X + w*(rp.X+0.5)
			py := top + pl.Offset.Y + h*(rp.Y-0.5)
			// align the run inside the line box by its own pivot
			py -= (h - ln.Height) * (rp.Y - 0.5)
			if s.ImagePixelGridSnap && pl.Run.IsImage() {
				px, py = geom.Round(px), geom.Round(py)
			}
			pl.Position = geom.Pt{X: px, Y: py}
			x += w
		}
		top -= ln.Height
	}
}
