/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package document loads layout documents (markup plus settings) from JSON
// or YAML, validates them against an embedded JSON Schema and encodes
// layout results as JSON.
package document

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	gojsonschema "github.com/xeipuuv/gojsonschema"
	"gopkg.in/yaml.v3"

	"gorichtext/internal/geom"
	"gorichtext/internal/markup"
	"gorichtext/internal/richtext"
	"gorichtext/internal/textlayout"
)

//go:embed schema/document.schema.json
var schemaJSON []byte

// Schema returns the JSON Schema documents are validated against.
func Schema() []byte { return append([]byte(nil), schemaJSON...) }

type FitDoc struct {
	Step     float32 `json:"step,omitempty" yaml:"step,omitempty"`
	MaxSteps int     `json:"max_steps,omitempty" yaml:"max_steps,omitempty"`
	MinScale float32 `json:"min_scale,omitempty" yaml:"min_scale,omitempty"`
}

// SettingsDoc overrides configured settings; nil fields keep the base value.
type SettingsDoc struct {
	Width              *float32 `json:"width,omitempty" yaml:"width,omitempty"`
	Height             *float32 `json:"height,omitempty" yaml:"height,omitempty"`
	Multiline          *bool    `json:"multiline,omitempty" yaml:"multiline,omitempty"`
	TextLeading        *float32 `json:"text_leading,omitempty" yaml:"text_leading,omitempty"`
	AdjustScale        *float32 `json:"adjust_scale,omitempty" yaml:"adjust_scale,omitempty"`
	Pivot              string   `json:"pivot,omitempty" yaml:"pivot,omitempty"`
	CombineWords       *bool    `json:"combine_words,omitempty" yaml:"combine_words,omitempty"`
	ImagePixelGridSnap *bool    `json:"image_pixel_grid_snap,omitempty" yaml:"image_pixel_grid_snap,omitempty"`
	DefaultAnimation   string   `json:"default_animation,omitempty" yaml:"default_animation,omitempty"`
	// TextScale, when set, lays out at this scale instead of fitting.
	TextScale *float32 `json:"text_scale,omitempty" yaml:"text_scale,omitempty"`
	Fit       *FitDoc  `json:"fit,omitempty" yaml:"fit,omitempty"`
}

type DefaultsDoc struct {
	Font     string                         `json:"font,omitempty" yaml:"font,omitempty"`
	Color    string                         `json:"color,omitempty" yaml:"color,omitempty"`
	Shadow   string                         `json:"shadow,omitempty" yaml:"shadow,omitempty"`
	Outline  string                         `json:"outline,omitempty" yaml:"outline,omitempty"`
	Size     float32                        `json:"size,omitempty" yaml:"size,omitempty"`
	Families map[string]markup.FontVariants `json:"families,omitempty" yaml:"families,omitempty"`
}

// Document is one layout request.
type Document struct {
	Markup   string                         `json:"markup" yaml:"markup"`
	Settings SettingsDoc                    `json:"settings,omitempty" yaml:"settings,omitempty"`
	Defaults DefaultsDoc                    `json:"defaults,omitempty" yaml:"defaults,omitempty"`
	Fonts    map[string]textlayout.FontSpec `json:"fonts,omitempty" yaml:"fonts,omitempty"`
}

// ValidationError lists schema violations.
type ValidationError struct {
	Errors []string
}

func (e *ValidationError) Error() string {
	return "document invalid: " + strings.Join(e.Errors, "; ")
}

func (e *ValidationError) Unwrap() error { return richtext.ErrInvalidInput }

// Load reads a document. Files ending in .yaml or .yml are YAML, everything
// else is JSON.
func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return ParseYAML(data)
	default:
		return ParseJSON(data)
	}
}

// ParseYAML converts YAML to JSON, then validates and decodes it.
func ParseYAML(data []byte) (*Document, error) {
	var v any
	if err := yaml.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("%w: yaml: %v", richtext.ErrInvalidInput, err)
	}
	js, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("%w: yaml to json: %v", richtext.ErrInvalidInput, err)
	}
	return ParseJSON(js)
}

func ParseJSON(data []byte) (*Document, error) {
	if err := Validate(data); err != nil {
		return nil, err
	}
	var d Document
	if err := json.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("%w: json: %v", richtext.ErrInvalidInput, err)
	}
	return &d, nil
}

// Validate checks JSON bytes against the document schema.
func Validate(data []byte) error {
	res, err := gojsonschema.Validate(gojsonschema.NewBytesLoader(schemaJSON), gojsonschema.NewBytesLoader(data))
	if err != nil {
		return fmt.Errorf("%w: %v", richtext.ErrInvalidInput, err)
	}
	if res.Valid() {
		return nil
	}
	ve := &ValidationError{}
	for _, e := range res.Errors() {
		ve.Errors = append(ve.Errors, e.String())
	}
	return ve
}

// Apply overlays the document settings on base.
func (s SettingsDoc) Apply(base richtext.Settings) (richtext.Settings, error) {
	if s.Width != nil {
		base.Width = *s.Width
	}
	if s.Height != nil {
		base.Height = *s.Height
	}
	if s.Multiline != nil {
		base.Multiline = *s.Multiline
	}
	if s.TextLeading != nil {
		base.TextLeading = *s.TextLeading
	}
	if s.AdjustScale != nil {
		base.AdjustScale = *s.AdjustScale
	}
	if s.Pivot != "" {
		pv, err := geom.ParsePivot(s.Pivot)
		if err != nil {
			return base, fmt.Errorf("%w: settings.pivot: %v", richtext.ErrInvalidInput, err)
		}
		base.Pivot = pv
	}
	if s.CombineWords != nil {
		base.CombineWords = *s.CombineWords
	}
	if s.ImagePixelGridSnap != nil {
		base.ImagePixelGridSnap = *s.ImagePixelGridSnap
	}
	if s.DefaultAnimation != "" {
		base.DefaultAnimation = s.DefaultAnimation
	}
	if f := s.Fit; f != nil {
		if f.Step > 0 {
			base.Fit.Step = f.Step
		}
		if f.MaxSteps > 0 {
			base.Fit.MaxSteps = f.MaxSteps
		}
		if f.MinScale > 0 {
			base.Fit.MinScale = f.MinScale
		}
	}
	return base, nil
}

// Apply overlays the document defaults on base.
func (d DefaultsDoc) Apply(base markup.Defaults) (markup.Defaults, error) {
	var errs []error
	color := func(field, v string, dst *geom.Color) {
		if v == "" {
			return
		}
		c, err := geom.ParseColor(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("defaults.%s: %w", field, err))
			return
		}
		*dst = c
	}
	color("color", d.Color, &base.Color)
	color("shadow", d.Shadow, &base.Shadow)
	color("outline", d.Outline, &base.Outline)
	if err := errors.Join(errs...); err != nil {
		return base, fmt.Errorf("%w: %v", richtext.ErrInvalidInput, err)
	}
	if d.Font != "" {
		base.Font = d.Font
	}
	if d.Size > 0 {
		base.Size = d.Size
	}
	if len(d.Families) > 0 {
		fonts := make(map[string]markup.FontVariants, len(base.Fonts)+len(d.Families))
		for k, v := range base.Fonts {
			fonts[k] = v
		}
		for k, v := range d.Families {
			fonts[k] = v
		}
		base.Fonts = fonts
	}
	return base, nil
}
