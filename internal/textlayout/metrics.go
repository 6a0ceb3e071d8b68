/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package textlayout

import (
	"fmt"

	"gorichtext/internal/geom"
)

// FaceMetrics measures text with font.Face based providers. Font names are
// looked up in Fonts; images come from Atlas.
type FaceMetrics struct {
	Fonts    *FontTable
	Provider Provider
	Atlas    *Atlas
}

// NewFaceMetrics returns metrics backed by the bundled Go fonts plus lib.
func NewFaceMetrics(fonts *FontTable, lib *FontLibrary, atlas *Atlas, dpi float64) *FaceMetrics {
	if lib == nil {
		lib = GoFonts()
	}
	return &FaceMetrics{Fonts: fonts, Provider: &OTProvider{Lib: lib, DPI: dpi}, Atlas: atlas}
}

func (m *FaceMetrics) TextMetrics(name, text string) (geom.Size, error) {
	spec, ok := m.Fonts.Resolve(name)
	if !ok {
		return geom.Size{}, fmt.Errorf("%w: %q", ErrUnknownFont, name)
	}
	w, h := Measure(m.Provider, spec, text)
	return geom.Size{W: w, H: h}, nil
}

func (m *FaceMetrics) FlipbookSize(anim string) (geom.Size, error) {
	return m.Atlas.Size(anim)
}
