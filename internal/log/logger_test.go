/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package log

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func readJSONLines(t *testing.T, path string) []map[string]any {
	t.Helper()
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	var out []map[string]any
	for _, line := range strings.Split(string(b), "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		var m map[string]any
		if err := json.Unmarshal([]byte(line), &m); err != nil {
			t.Fatalf("unmarshal %q: %v", line, err)
		}
		out = append(out, m)
	}
	return out
}

func TestFileLogCarriesDocumentAndLevel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gorichtext.log")
	Init(Options{Level: "info", Format: "json", File: path})
	t.Cleanup(func() { Init(Options{Level: "info"}) })

	ctx := ContextWithDocument(context.Background(), "docs/title.yaml")
	l := WithOperation(WithComponent("richtext"), "set_runs")
	l.DebugContext(ctx, "filtered")
	SetLevel("debug")
	l.DebugContext(ctx, "layout committed")

	lines := readJSONLines(t, path)
	if len(lines) != 1 {
		t.Fatalf("got %d log lines, want 1: %v", len(lines), lines)
	}
	m := lines[0]
	want := map[string]string{
		"msg":       "layout committed",
		"app":       "gorichtext",
		"component": "richtext",
		"op":        "set_runs",
		"doc":       "docs/title.yaml",
		"level":     "DEBUG",
	}
	for k, v := range want {
		if m[k] != v {
			t.Fatalf("%s = %v, want %q (line %v)", k, m[k], v, m)
		}
	}
	if _, ok := m["ver"].(string); !ok {
		t.Fatalf("missing ver attr: %v", m)
	}
}

func TestLogWithoutDocumentHasNoDocAttr(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plain.log")
	Init(Options{Level: "info", Format: "json", File: path})
	t.Cleanup(func() { Init(Options{Level: "info"}) })

	WithComponent("cli").InfoContext(context.Background(), "cache cleared")
	lines := readJSONLines(t, path)
	if len(lines) != 1 {
		t.Fatalf("got %d log lines", len(lines))
	}
	if _, ok := lines[0]["doc"]; ok {
		t.Fatalf("unexpected doc attr: %v", lines[0])
	}
}
