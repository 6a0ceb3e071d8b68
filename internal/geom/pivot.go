/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package geom

import (
	"fmt"
	"strings"
)

// Pivot offsets follow the convention of the presentation layer: each
// component lies in [-0.5, 0.5], (0,0) is the center and y points up.
var (
	PivotCenter = Pt{0, 0}
	PivotN      = Pt{0, 0.5}
	PivotNE     = Pt{0.5, 0.5}
	PivotE      = Pt{0.5, 0}
	PivotSE     = Pt{0.5, -0.5}
	PivotS      = Pt{0, -0.5}
	PivotSW     = Pt{-0.5, -0.5}
	PivotW      = Pt{-0.5, 0}
	PivotNW     = Pt{-0.5, 0.5}
)

var pivotNames = map[string]Pt{
	"center": PivotCenter,
	"n":      PivotN,
	"ne":     PivotNE,
	"e":      PivotE,
	"se":     PivotSE,
	"s":      PivotS,
	"sw":     PivotSW,
	"w":      PivotW,
	"nw":     PivotNW,
}

// ParsePivot resolves a compass name ("center", "n", "nw", ...). Aliases
// "left", "right", "top" and "bottom" map to W, E, N and S.
func ParsePivot(name string) (Pt, error) {
	n := strings.ToLower(strings.TrimSpace(name))
	switch n {
	case "", "middle":
		n = "center"
	case "left":
		n = "w"
	case "right":
		n = "e"
	case "top":
		n = "n"
	case "bottom":
		n = "s"
	}
	p, ok := pivotNames[n]
	if !ok {
		return Pt{}, fmt.Errorf("unknown pivot %q", name)
	}
	return p, nil
}
