/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package markup

import (
	"errors"
	"fmt"
	"reflect"
	"testing"

	"gorichtext/internal/geom"
	"gorichtext/internal/richtext"
	"gorichtext/internal/textlayout"
)

func parse(t *testing.T, text string) []*richtext.Run {
	t.Helper()
	n := 0
	p := &Parser{Defaults: DefaultDefaults(), NewID: func() string { n++; return fmt.Sprintf("r%d", n) }}
	runs, err := p.Parse(text)
	if err != nil {
		t.Fatalf("parse %q: %v", text, err)
	}
	return runs
}

func texts(runs []*richtext.Run) []string {
	out := make([]string, len(runs))
	for i, r := range runs {
		if r.IsImage() {
			out[i] = "img:" + r.Image.Anim
			continue
		}
		out[i] = r.SourceText
	}
	return out
}

func TestParsePlainWords(t *testing.T) {
	runs := parse(t, "  Hello big  world ")
	want := []string{"  Hello ", "big  ", "world "}
	if got := texts(runs); !reflect.DeepEqual(got, want) {
		t.Fatalf("words = %q, want %q", got, want)
	}
	r := runs[0]
	if r.ID != "r1" || r.Font != textlayout.FontRegular || r.RelativeScale != 1 || r.Color != geom.Black {
		t.Fatalf("defaults not applied: %+v", r)
	}
	if r.Tags != nil || r.Anchor || r.NoBreak || r.ForceBreak {
		t.Fatalf("unexpected flags: %+v", r)
	}
}

func TestParseStyles(t *testing.T) {
	runs := parse(t, "<color=red>a <b>b <i>c</i></b></color><size=2>d</size>")
	if len(runs) != 4 {
		t.Fatalf("runs = %q", texts(runs))
	}
	red := geom.Color{R: 255, A: 255}
	if runs[0].Color != red || runs[1].Color != red || runs[3].Color != geom.Black {
		t.Fatalf("colors: %v %v %v", runs[0].Color, runs[1].Color, runs[3].Color)
	}
	if runs[0].Font != textlayout.FontRegular || runs[1].Font != textlayout.FontBold || runs[2].Font != textlayout.FontBoldItalic {
		t.Fatalf("fonts: %q %q %q", runs[0].Font, runs[1].Font, runs[2].Font)
	}
	if runs[3].RelativeScale != 2 {
		t.Fatalf("size = %v", runs[3].RelativeScale)
	}
	want := map[string]string{"color": "red", "b": "", "i": ""}
	if !reflect.DeepEqual(runs[2].Tags, want) {
		t.Fatalf("tags = %v", runs[2].Tags)
	}
}

func TestParseShadowOutlineAndFont(t *testing.T) {
	d := DefaultDefaults()
	d.Fonts["title"] = FontVariants{Regular: "title-regular", Bold: "title-bold"}
	runs, err := Parse("<shadow=#000000aa><outline=#fff><font=title>x <b>y</b></font></outline></shadow><font=raw>z</font>", d)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if runs[0].Shadow != (geom.Color{A: 0xaa}) || runs[0].Outline != geom.White {
		t.Fatalf("shadow %v outline %v", runs[0].Shadow, runs[0].Outline)
	}
	if runs[0].Font != "title-regular" || runs[1].Font != "title-bold" {
		t.Fatalf("fonts %q %q", runs[0].Font, runs[1].Font)
	}
	if runs[2].Font != "raw" {
		t.Fatalf("unknown font keys are used as-is, got %q", runs[2].Font)
	}
}

func TestParseLinksAndNoBreak(t *testing.T) {
	runs := parse(t, "see <a=https://example.com/x>the docs</a> <nobr>keep together</nobr>")
	if got := texts(runs); !reflect.DeepEqual(got, []string{"see ", "the ", "docs", " ", "keep ", "together"}) {
		t.Fatalf("words = %q", got)
	}
	for _, r := range runs[1:3] {
		if !r.Anchor || r.Tags["a"] != "https://example.com/x" {
			t.Fatalf("link run %+v", r)
		}
	}
	if runs[3].Anchor {
		t.Fatalf("anchor leaked past </a>")
	}
	if !runs[4].NoBreak || !runs[5].NoBreak || runs[3].NoBreak {
		t.Fatalf("nobr flags wrong")
	}
}

func TestParseBreaks(t *testing.T) {
	runs := parse(t, "one<br/>two\nthree <p>para</p>tail")
	got := map[string]bool{}
	for _, r := range runs {
		got[r.SourceText] = r.ForceBreak
	}
	want := map[string]bool{"one": false, "two": true, "three ": true, "para": true, "tail": true}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("breaks = %v, want %v", got, want)
	}
}

func TestParseBlankLines(t *testing.T) {
	mp := &textlayout.FaceMetrics{Fonts: textlayout.NewFontTable(), Provider: textlayout.BasicProvider{}, Atlas: textlayout.NewAtlas()}
	cases := []struct {
		in    string
		texts []string
	}{
		{"a\n\nb", []string{"a", "", "b"}},
		{"a<br/><br/>b", []string{"a", "", "b"}},
		{"<br/>b", []string{"", "b"}},
		{"a\nb", []string{"a", "b"}},
	}
	for _, c := range cases {
		runs := parse(t, c.in)
		if got := texts(runs); !reflect.DeepEqual(got, c.texts) {
			t.Fatalf("%q: runs = %q, want %q", c.in, got, c.texts)
		}
		for i, r := range runs[1:] {
			if !r.ForceBreak {
				t.Fatalf("%q: run %d does not start a line", c.in, i+1)
			}
		}
		s := richtext.DefaultSettings(400, 400)
		s.Multiline = true
		l, err := richtext.Compute(mp, runs, s)
		if err != nil {
			t.Fatalf("%q: layout: %v", c.in, err)
		}
		if len(l.Lines) != len(c.texts) || l.Metrics.TextHeight != float32(13*len(c.texts)) {
			t.Fatalf("%q: %d lines, height %v", c.in, len(l.Lines), l.Metrics.TextHeight)
		}
	}
}

func TestParseImages(t *testing.T) {
	runs := parse(t, "a <size=2><img=star/><img=coin,16/><img=gem,,8></size>")
	if got := texts(runs); !reflect.DeepEqual(got, []string{"a ", "img:star", "img:coin", "img:gem"}) {
		t.Fatalf("runs = %q", got)
	}
	if runs[1].RelativeScale != 2 || runs[1].Font != "" {
		t.Fatalf("image style %+v", runs[1])
	}
	if *runs[2].Image != (richtext.ImageRef{Anim: "coin", Width: 16}) {
		t.Fatalf("coin = %+v", runs[2].Image)
	}
	if *runs[3].Image != (richtext.ImageRef{Anim: "gem", Height: 8}) {
		t.Fatalf("gem = %+v", runs[3].Image)
	}
}

func TestParseUnknownTagsAndEntities(t *testing.T) {
	runs := parse(t, "<wave=3>1 &lt; 2</wave> a < b")
	if got := texts(runs); !reflect.DeepEqual(got, []string{"1 ", "< ", "2", " a ", "< ", "b"}) {
		t.Fatalf("words = %q", got)
	}
	if v, ok := runs[0].Tags["wave"]; !ok || v != "3" {
		t.Fatalf("unknown tag not recorded: %v", runs[0].Tags)
	}
	if runs[3].Tags != nil {
		t.Fatalf("tags leaked: %v", runs[3].Tags)
	}
}

func TestParseIDsAreUnique(t *testing.T) {
	runs, err := Parse("a b c", Defaults{})
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	seen := map[richtext.RunID]bool{}
	for _, r := range runs {
		if r.ID == "" || seen[r.ID] {
			t.Fatalf("bad id %q", r.ID)
		}
		seen[r.ID] = true
	}
	if runs[0].Color != geom.Black || runs[0].Font != textlayout.FontRegular {
		t.Fatalf("zero defaults not filled: %+v", runs[0])
	}
}

func TestParseErrors(t *testing.T) {
	cases := []string{
		"",
		"a</b>",
		"<color=nope>x</color>",
		"<size=-1>x</size>",
		"<size=big>x</size>",
		"<img=a,b/>",
		"<img=a,1,2,3/>",
		"<color=>x",
		"dangling <",
	}
	for _, c := range cases {
		_, err := Parse(c, DefaultDefaults())
		if err == nil {
			t.Fatalf("%q: expected error", c)
		}
		var se *SyntaxError
		if !errors.As(err, &se) || !errors.Is(err, richtext.ErrInvalidInput) {
			t.Fatalf("%q: error %v is not a syntax error", c, err)
		}
	}
}

func TestSyntaxErrorPosition(t *testing.T) {
	_, err := Parse("ok\nthen </x>", DefaultDefaults())
	var se *SyntaxError
	if !errors.As(err, &se) {
		t.Fatalf("err = %v", err)
	}
	if se.Line != 2 {
		t.Fatalf("line = %d, want 2", se.Line)
	}
}
