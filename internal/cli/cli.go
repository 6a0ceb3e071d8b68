/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package cli implements the gorichtext command tree.
package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"gorichtext/internal/config"
	"gorichtext/internal/crash"
	applog "gorichtext/internal/log"
	"gorichtext/internal/version"
)

// CLI holds global flags and the loaded configuration for one invocation.
type CLI struct {
	cfgPath  string
	provider string
	cacheDSN string
	verbose  bool

	cfg   config.AppConfig
	log   *slog.Logger
	crash *crash.Context
}

// New returns a CLI. cc, when not nil, is filled with the document being
// processed so a crash report can name it.
func New(cc *crash.Context) *CLI {
	if cc == nil {
		cc = &crash.Context{}
	}
	return &CLI{cfg: config.Defaults(), crash: cc, log: applog.WithComponent("cli")}
}

// RootCommand builds the command tree.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "gorichtext",
		Short:         "Lay out inline rich text into a bounded area",
		Long:          `gorichtext parses rich-text markup into runs, breaks them into lines, positions them inside an area and fits the text scale to it.`,
		Version:       version.String(),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.setup()
		},
	}
	root.SetVersionTemplate("gorichtext {{.Version}}\n")

	pf := root.PersistentFlags()
	pf.StringVar(&c.cfgPath, "config", "", "config file (.yaml or .toml); defaults to the per-user config")
	pf.StringVar(&c.provider, "provider", "", "metrics provider: opentype, basic, pdf or canvas")
	pf.StringVar(&c.cacheDSN, "cache", "", "metrics cache: SQLite file path or postgres:// URL")
	pf.BoolVarP(&c.verbose, "verbose", "v", false, "enable verbose logging")

	root.AddCommand(
		c.layoutCommand(),
		c.fitCommand(),
		c.hitCommand(),
		c.tagsCommand(),
		c.charsCommand(),
		c.previewCommand(),
		c.viewCommand(),
		c.cacheCommand(),
		c.schemaCommand(),
		c.versionCommand(),
	)
	return root
}

// Execute runs the command tree with args.
func (c *CLI) Execute(ctx context.Context, args []string, out io.Writer) error {
	root := c.RootCommand()
	root.SetArgs(args)
	root.SetOut(out)
	return root.ExecuteContext(ctx)
}

func (c *CLI) setup() error {
	var (
		cfg config.AppConfig
		err error
	)
	if c.cfgPath != "" {
		cfg, err = config.LoadFile(c.cfgPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if c.provider != "" {
		cfg.Metrics.Provider = strings.ToLower(strings.TrimSpace(c.provider))
	}
	if c.cacheDSN != "" {
		cfg.Metrics.Cache = c.cacheDSN
	}
	switch cfg.Metrics.Provider {
	case config.ProviderOpenType, config.ProviderBasic, config.ProviderPDF, config.ProviderCanvas:
	default:
		return fmt.Errorf("unknown metrics provider %q", cfg.Metrics.Provider)
	}
	c.cfg = cfg

	applog.Init(applog.Options{
		Level:     cfg.Logging.Level,
		Format:    cfg.Logging.Format,
		AddSource: cfg.Logging.Source,
		File:      cfg.Logging.File,
	})
	if c.verbose {
		applog.SetLevel("debug")
	}
	c.log = applog.WithComponent("cli")
	c.log.Debug("config loaded",
		slog.String("provider", cfg.Metrics.Provider),
		slog.Bool("cache", cfg.Metrics.Cache != ""))
	return nil
}
