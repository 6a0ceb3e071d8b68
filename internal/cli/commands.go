/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package cli

import (
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/spf13/cobra"

	"gorichtext/internal/document"
	"gorichtext/internal/geom"
	"gorichtext/internal/metricscache"
	"gorichtext/internal/nodesync"
	"gorichtext/internal/richtext"
	"gorichtext/internal/textlayout"
	"gorichtext/internal/version"
)

func (c *CLI) layoutCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "layout FILE",
		Short: "Lay out a document and print runs, lines and metrics as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := c.open(cmd.Context(), args[0], nil)
			if err != nil {
				return err
			}
			defer s.Close()
			return document.Encode(cmd.OutOrStdout(), document.NewResult(s.text.Layout(), s.text.Report()))
		},
	}
}

func (c *CLI) fitCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "fit FILE",
		Short: "Print the fit report of a document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := c.open(cmd.Context(), args[0], nil)
			if err != nil {
				return err
			}
			defer s.Close()
			rep := s.text.Report()
			m := s.text.Layout().Metrics
			return document.Encode(cmd.OutOrStdout(), map[string]any{
				"scale":       rep.Scale,
				"fits":        rep.Fits,
				"passes":      rep.Passes,
				"text_width":  m.TextWidth,
				"text_height": m.TextHeight,
				"lines":       len(m.Lines),
				"area":        document.Extent{W: s.settings.Width, H: s.settings.Height},
			})
		},
	}
}

func (c *CLI) hitCommand() *cobra.Command {
	var x, y float32
	cmd := &cobra.Command{
		Use:   "hit FILE",
		Short: "Report the link under a point (layout coordinates, y up)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := c.open(cmd.Context(), args[0], nil)
			if err != nil {
				return err
			}
			defer s.Close()
			var ev *richtext.LinkEvent
			s.text.Hit(geom.Pt{X: x, Y: y}, func(e richtext.LinkEvent) { ev = &e })
			if ev == nil {
				return document.Encode(cmd.OutOrStdout(), map[string]any{"hit": false})
			}
			return document.Encode(cmd.OutOrStdout(), map[string]any{
				"hit":    true,
				"run":    string(ev.RunID),
				"text":   ev.Text,
				"target": ev.Target,
			})
		},
	}
	cmd.Flags().Float32Var(&x, "x", 0, "x coordinate")
	cmd.Flags().Float32Var(&y, "y", 0, "y coordinate")
	return cmd
}

func (c *CLI) tagsCommand() *cobra.Command {
	var tag string
	cmd := &cobra.Command{
		Use:   "tags FILE",
		Short: "List tags and the runs carrying them",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := c.open(cmd.Context(), args[0], nil)
			if err != nil {
				return err
			}
			defer s.Close()
			if !cmd.Flags().Changed("tag") {
				return document.Encode(cmd.OutOrStdout(), document.Tags(s.runs))
			}
			out := []document.RunResult{}
			for _, r := range s.text.Tagged(tag) {
				if pl, ok := s.text.Layout().Placement(r.ID); ok {
					out = append(out, document.NewRunResult(pl))
				}
			}
			return document.Encode(cmd.OutOrStdout(), out)
		},
	}
	cmd.Flags().StringVar(&tag, "tag", "", "only runs with this tag; empty selects untagged runs")
	return cmd
}

func (c *CLI) charsCommand() *cobra.Command {
	var run string
	cmd := &cobra.Command{
		Use:   "chars FILE",
		Short: "Split one run into per-character placements",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := c.open(cmd.Context(), args[0], nil)
			if err != nil {
				return err
			}
			defer s.Close()
			id, err := s.runID(run)
			if err != nil {
				return err
			}
			pls, err := s.text.Characters(id)
			if err != nil {
				return err
			}
			out := make([]document.RunResult, 0, len(pls))
			for _, pl := range pls {
				out = append(out, document.NewRunResult(pl))
			}
			return document.Encode(cmd.OutOrStdout(), out)
		},
	}
	cmd.Flags().StringVar(&run, "run", "0", "run index or id")
	return cmd
}

// runID accepts a run index or id.
func (s *session) runID(v string) (richtext.RunID, error) {
	if i, err := strconv.Atoi(v); err == nil {
		if i < 0 || i >= len(s.runs) {
			return "", fmt.Errorf("%w: run index %d out of range [0,%d)", richtext.ErrInvalidInput, i, len(s.runs))
		}
		return s.runs[i].ID, nil
	}
	for _, r := range s.runs {
		if string(r.ID) == v {
			return r.ID, nil
		}
	}
	return "", fmt.Errorf("%w: no run %q", richtext.ErrInvalidInput, v)
}

func (c *CLI) previewCommand() *cobra.Command {
	var out string
	var guides bool
	cmd := &cobra.Command{
		Use:   "preview FILE",
		Short: "Render the committed layout to a PDF",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var sink *nodesync.PDFSink
			s, err := c.open(cmd.Context(), args[0], func(fonts *textlayout.FontTable, _ richtext.Settings) richtext.NodeSync {
				sink = nodesync.NewPDFSink(fonts)
				sink.Guides = guides
				return sink
			})
			if err != nil {
				return err
			}
			defer s.Close()
			if err := sink.WriteFile(out, nodesync.AreaRect(s.settings)); err != nil {
				return fmt.Errorf("write preview: %w", err)
			}
			c.log.Info("preview written", slog.String("path", out))
			_, err = fmt.Fprintln(cmd.OutOrStdout(), out)
			return err
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "preview.pdf", "output PDF path")
	cmd.Flags().BoolVar(&guides, "guides", true, "draw the area frame and run bounds")
	return cmd
}

func (c *CLI) viewCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "view FILE",
		Short: "Show the layout in a window (requires a fyne build)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := c.cfg
			base, err := cfg.Settings()
			if err != nil {
				return err
			}
			doc, err := document.Load(args[0])
			if err != nil {
				return err
			}
			settings, err := doc.Settings.Apply(base)
			if err != nil {
				return err
			}
			fonts := cfg.FontTable().WithDocument(doc.Fonts)
			return nodesync.Show("gorichtext: "+args[0], fonts, nodesync.AreaRect(settings), func(sink richtext.NodeSync) error {
				s, err := c.open(cmd.Context(), args[0], func(*textlayout.FontTable, richtext.Settings) richtext.NodeSync { return sink })
				if err != nil {
					return err
				}
				return s.Close()
			})
		},
	}
}

func (c *CLI) cacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the persistent metrics cache",
	}
	cmd.AddCommand(c.cacheStatsCommand(), c.cacheClearCommand())
	return cmd
}

func (c *CLI) openStore(cmd *cobra.Command) (*metricscache.SQLStore, error) {
	if c.cfg.Metrics.Cache == "" {
		return nil, errors.New("no metrics cache configured (use --cache or metrics.cache)")
	}
	return metricscache.Open(cmd.Context(), c.cfg.Metrics.Cache)
}

func (c *CLI) cacheStatsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Print cache entry counts",
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := c.openStore(cmd)
			if err != nil {
				return err
			}
			defer st.Close()
			stats, err := st.Stats(cmd.Context())
			if err != nil {
				return err
			}
			return document.Encode(cmd.OutOrStdout(), map[string]any{
				"driver":     st.Driver(),
				"entries":    stats.Entries,
				"namespaces": stats.Namespaces,
			})
		},
	}
}

func (c *CLI) cacheClearCommand() *cobra.Command {
	var ns string
	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete cached measurements",
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := c.openStore(cmd)
			if err != nil {
				return err
			}
			defer st.Close()
			n, err := st.Clear(cmd.Context(), ns)
			if err != nil {
				return err
			}
			c.log.Info("metrics cache cleared", slog.Int64("rows", n))
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "Cleared %d cached entries\n", n)
			return err
		},
	}
	cmd.Flags().StringVar(&ns, "namespace", "", "only clear this namespace")
	return cmd
}

func (c *CLI) schemaCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "schema",
		Short: "Print the JSON Schema of layout documents",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := cmd.OutOrStdout().Write(document.Schema())
			return err
		},
	}
}

func (c *CLI) versionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := fmt.Fprintln(cmd.OutOrStdout(), version.String())
			return err
		},
	}
}
