/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"gorichtext/internal/geom"
	"gorichtext/internal/markup"
	"gorichtext/internal/richtext"
	"gorichtext/internal/textlayout"
)

// AppConfig is the user-editable configuration, persisted as YAML in the user
// scope. Environment variables are read-only overrides applied at load time.
//
// config_version: bump when the structure changes in a backward-incompatible way.

type FitConfig struct {
	Step     float32 `yaml:"step" toml:"step"`
	MaxSteps int     `yaml:"max_steps" toml:"max_steps"`
	MinScale float32 `yaml:"min_scale" toml:"min_scale"`
}

type LayoutConfig struct {
	Width              float32   `yaml:"width" toml:"width"`
	Height             float32   `yaml:"height" toml:"height"`
	Multiline          bool      `yaml:"multiline" toml:"multiline"`
	TextLeading        float32   `yaml:"text_leading" toml:"text_leading"`
	CombineWords       bool      `yaml:"combine_words" toml:"combine_words"`
	ImagePixelGridSnap bool      `yaml:"image_pixel_grid_snap" toml:"image_pixel_grid_snap"`
	Pivot              string    `yaml:"pivot" toml:"pivot"` // named pivot: center, nw, e, ...
	DefaultAnimation   string    `yaml:"default_animation" toml:"default_animation"`
	Fit                FitConfig `yaml:"fit" toml:"fit"`
}

type FontsConfig struct {
	// Default names the table entry used by runs without a font.
	Default string                         `yaml:"default" toml:"default"`
	Table   map[string]textlayout.FontSpec `yaml:"table,omitempty" toml:"table,omitempty"`
	// Families maps markup font names to their style variants.
	Families map[string]markup.FontVariants `yaml:"families,omitempty" toml:"families,omitempty"`
}

type MetricsConfig struct {
	Provider string  `yaml:"provider" toml:"provider"` // opentype | basic | pdf | canvas
	DPI      float64 `yaml:"dpi" toml:"dpi"`
	// Cache is a SQLite path or postgres:// URL; empty disables persistence.
	Cache string `yaml:"cache" toml:"cache"`
	// Atlas is a directory of flipbook images.
	Atlas string `yaml:"atlas" toml:"atlas"`
}

type LoggingConfig struct {
	Level  string `yaml:"level" toml:"level"`
	Format string `yaml:"format" toml:"format"`
	Source bool   `yaml:"source" toml:"source"`
	File   string `yaml:"file" toml:"file"`
}

type AppConfig struct {
	ConfigVersion int           `yaml:"config_version" toml:"config_version"`
	Layout        LayoutConfig  `yaml:"layout" toml:"layout"`
	Fonts         FontsConfig   `yaml:"fonts" toml:"fonts"`
	Metrics       MetricsConfig `yaml:"metrics" toml:"metrics"`
	Logging       LoggingConfig `yaml:"logging" toml:"logging"`
}

// Metrics provider names.
const (
	ProviderOpenType = "opentype"
	ProviderBasic    = "basic"
	ProviderPDF      = "pdf"
	ProviderCanvas   = "canvas"
)

// Defaults returns the application defaults.
func Defaults() AppConfig {
	fit := richtext.DefaultFitOptions()
	return AppConfig{
		ConfigVersion: 1,
		Layout: LayoutConfig{
			Width:        400,
			Height:       100,
			TextLeading:  1,
			CombineWords: true,
			Pivot:        "center",
			Fit:          FitConfig{Step: fit.Step, MaxSteps: fit.MaxSteps, MinScale: fit.MinScale},
		},
		Fonts:   FontsConfig{Default: textlayout.FontRegular},
		Metrics: MetricsConfig{Provider: ProviderOpenType, DPI: 72},
		Logging: LoggingConfig{Level: "info", Format: "console"},
	}
}

// Env var names used as overrides.
const (
	EnvWidth     = "GRT_WIDTH"
	EnvHeight    = "GRT_HEIGHT"
	EnvMultiline = "GRT_MULTILINE"
	EnvProvider  = "GRT_PROVIDER"
	EnvDPI       = "GRT_DPI"
	EnvCache     = "GRT_CACHE"
	EnvAtlas     = "GRT_ATLAS"
	// EnvLogLevel Logging envs
	EnvLogLevel  = "GRT_LOG_LEVEL"
	EnvLogFormat = "GRT_LOG_FORMAT"
	EnvLogSource = "GRT_LOG_SOURCE"
	EnvLogFile   = "GRT_LOG_FILE"
)

// ConfigPath returns the per-user config file path.
func ConfigPath() (string, error) {
	var base string
	switch runtime.GOOS {
	case "windows":
		base = os.Getenv("AppData")
		if base == "" { // fallback
			base = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
		base = filepath.Join(base, "GoRichText")
	case "darwin":
		base = filepath.Join(os.Getenv("HOME"), "Library", "Application Support", "GoRichText")
	default: // linux and others
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			base = filepath.Join(xdg, "gorichtext")
		} else {
			base = filepath.Join(os.Getenv("HOME"), ".config", "gorichtext")
		}
	}
	if base == "" {
		return "", errors.New("cannot resolve config directory")
	}
	return filepath.Join(base, "config.yaml"), nil
}

// Load reads the user config file if present and applies env overrides.
// A missing file is not an error.
func Load() (AppConfig, error) {
	path, err := ConfigPath()
	if err != nil {
		cfg := Defaults()
		applyEnvOverrides(&cfg)
		return cfg, err
	}
	cfg, err := LoadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		cfg = Defaults()
		applyEnvOverrides(&cfg)
		return cfg, nil
	}
	return cfg, err
}

// LoadFile reads path over the defaults. Files ending in .toml are decoded
// as TOML, everything else as YAML.
func LoadFile(path string) (AppConfig, error) {
	cfg := Defaults()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		if _, err := toml.Decode(string(data), &cfg); err != nil {
			return Defaults(), fmt.Errorf("parse %s: %w", path, err)
		}
	} else if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Defaults(), fmt.Errorf("parse %s: %w", path, err)
	}
	normalize(&cfg)
	applyEnvOverrides(&cfg)
	return cfg, nil
}

// Save writes the config as YAML to the per-user path.
func Save(cfg AppConfig) error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	return SaveFile(path, cfg)
}

func SaveFile(path string, cfg AppConfig) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	var (
		data []byte
		err  error
	)
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		var b strings.Builder
		err = toml.NewEncoder(&b).Encode(cfg)
		data = []byte(b.String())
	} else {
		data, err = yaml.Marshal(cfg)
	}
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}

func normalize(cfg *AppConfig) {
	cfg.Metrics.Provider = strings.ToLower(strings.TrimSpace(cfg.Metrics.Provider))
	if cfg.Metrics.Provider == "" {
		cfg.Metrics.Provider = ProviderOpenType
	}
	cfg.Logging.Level = strings.ToLower(strings.TrimSpace(cfg.Logging.Level))
	cfg.Logging.Format = strings.ToLower(strings.TrimSpace(cfg.Logging.Format))
	cfg.Logging.File = strings.TrimSpace(cfg.Logging.File)
	if strings.TrimSpace(cfg.Fonts.Default) == "" {
		cfg.Fonts.Default = textlayout.FontRegular
	}
}

func truthy(v string) bool {
	lv := strings.ToLower(v)
	return lv == "1" || lv == "true" || lv == "on" || lv == "yes"
}

func applyEnvOverrides(cfg *AppConfig) {
	if v := strings.TrimSpace(os.Getenv(EnvWidth)); v != "" {
		if f, err := strconv.ParseFloat(v, 32); err == nil {
			cfg.Layout.Width = float32(f)
		}
	}
	if v := strings.TrimSpace(os.Getenv(EnvHeight)); v != "" {
		if f, err := strconv.ParseFloat(v, 32); err == nil {
			cfg.Layout.Height = float32(f)
		}
	}
	if v := strings.TrimSpace(os.Getenv(EnvMultiline)); v != "" {
		cfg.Layout.Multiline = truthy(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvProvider)); v != "" {
		cfg.Metrics.Provider = strings.ToLower(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvDPI)); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f > 0 {
			cfg.Metrics.DPI = f
		}
	}
	if v := strings.TrimSpace(os.Getenv(EnvCache)); v != "" {
		cfg.Metrics.Cache = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvAtlas)); v != "" {
		cfg.Metrics.Atlas = v
	}
	// logging overrides
	if v := strings.TrimSpace(os.Getenv(EnvLogLevel)); v != "" {
		cfg.Logging.Level = strings.ToLower(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogFormat)); v != "" {
		cfg.Logging.Format = strings.ToLower(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogSource)); v != "" {
		cfg.Logging.Source = truthy(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogFile)); v != "" {
		cfg.Logging.File = v
	}
}

var envKeys = map[string]string{
	"layout.width":     EnvWidth,
	"layout.height":    EnvHeight,
	"layout.multiline": EnvMultiline,
	"metrics.provider": EnvProvider,
	"metrics.dpi":      EnvDPI,
	"metrics.cache":    EnvCache,
	"metrics.atlas":    EnvAtlas,
	"logging.level":    EnvLogLevel,
	"logging.format":   EnvLogFormat,
	"logging.source":   EnvLogSource,
	"logging.file":     EnvLogFile,
}

// EnvOverrideFor returns the env var name if the field is overridden by environment variables.
func EnvOverrideFor(key string) (string, bool) {
	env, ok := envKeys[key]
	if !ok || os.Getenv(env) == "" {
		return "", false
	}
	return env, true
}

// Settings converts the layout section into engine settings.
func (c AppConfig) Settings() (richtext.Settings, error) {
	l := c.Layout
	pv, err := geom.ParsePivot(l.Pivot)
	if err != nil {
		return richtext.Settings{}, fmt.Errorf("layout.pivot: %w", err)
	}
	s := richtext.DefaultSettings(l.Width, l.Height)
	s.Multiline = l.Multiline
	s.TextLeading = l.TextLeading
	s.CombineWords = l.CombineWords
	s.ImagePixelGridSnap = l.ImagePixelGridSnap
	s.Pivot = pv
	s.DefaultAnimation = l.DefaultAnimation
	s.Fit = richtext.FitOptions{Step: l.Fit.Step, MaxSteps: l.Fit.MaxSteps, MinScale: l.Fit.MinScale}
	return s, nil
}

// FontTable builds the global font scope from the fonts section.
func (c AppConfig) FontTable() *textlayout.FontTable {
	t := textlayout.NewFontTable().WithGlobal(c.Fonts.Table)
	if c.Fonts.Default != "" {
		t.Default = c.Fonts.Default
	}
	return t
}

// MarkupDefaults returns the markup defaults extended by configured families.
func (c AppConfig) MarkupDefaults() markup.Defaults {
	d := markup.DefaultDefaults()
	for name, v := range c.Fonts.Families {
		d.Fonts[name] = v
	}
	return d
}
