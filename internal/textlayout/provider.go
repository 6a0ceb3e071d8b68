/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package textlayout resolves font and image references to sizes for the
// layout engine. Every measurement backend is exposed as a
// richtext.MetricsProvider.
package textlayout

import (
	"errors"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

var (
	ErrUnknownFont      = errors.New("unknown font")
	ErrUnknownAnimation = errors.New("unknown animation")
)

// FontSpec describes a requested font.
type FontSpec struct {
	Family string  `yaml:"family" toml:"family" json:"family"`
	SizePt float32 `yaml:"size" toml:"size" json:"size"`
	Weight int     `yaml:"weight,omitempty" toml:"weight,omitempty" json:"weight,omitempty"` // 100..900
	Italic bool    `yaml:"italic,omitempty" toml:"italic,omitempty" json:"italic,omitempty"`
	// File optionally points at a TTF/OTF file for the family.
	File string `yaml:"file,omitempty" toml:"file,omitempty" json:"file,omitempty"`
}

// Bold reports whether the spec asks for a bold weight.
func (s FontSpec) Bold() bool { return s.Weight >= 600 }

// Metrics provides font metrics in pixels for the resolved face.
type Metrics struct {
	Ascent, Descent, LineGap float32
}

// Provider maps FontSpec to a concrete font.Face.
type Provider interface {
	Resolve(FontSpec) (font.Face, Metrics)
}

// BasicProvider uses x/image/basicfont Face7x13 for deterministic tests.
type BasicProvider struct{}

func (BasicProvider) Resolve(FontSpec) (font.Face, Metrics) {
	f := basicfont.Face7x13
	return f, faceMetrics(f)
}

func faceMetrics(f font.Face) Metrics {
	m := f.Metrics()
	return Metrics{
		Ascent:  float32(m.Ascent.Round()),
		Descent: float32(m.Descent.Round()),
		LineGap: float32(m.Height.Round() - m.Ascent.Round() - m.Descent.Round()),
	}
}

func toFloat(v fixed.Int26_6) float32 { return float32(v) / 64 }

// Measure returns the advance width of text set in spec (kerning included)
// and the height of one line of it.
func Measure(provider Provider, spec FontSpec, text string) (w, h float32) {
	if provider == nil {
		provider = BasicProvider{}
	}
	face, met := provider.Resolve(spec)
	w = toFloat(font.MeasureString(face, text))
	return w, met.Ascent + met.Descent
}
