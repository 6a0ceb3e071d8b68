/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package textlayout

import (
	"reflect"
	"testing"
)

func TestFontTable_ResolvePrecedence(t *testing.T) {
	ft := NewFontTable()
	b, ok := ft.Resolve(FontBold)
	if !ok || b.Weight != 700 || b.Family != GoFamily {
		t.Fatalf("builtin bold = %+v, %v", b, ok)
	}

	ft = ft.WithGlobal(map[string]FontSpec{FontBold: {Family: "serif", SizePt: 18, Weight: 700}})
	got, _ := ft.Resolve(FontBold)
	if got.Family != "serif" {
		t.Fatalf("global override not applied: %+v", got)
	}

	ft = ft.WithDocument(map[string]FontSpec{FontBold: {Family: "mono", SizePt: 10, Weight: 800}})
	got, _ = ft.Resolve(FontBold)
	if got.Family != "mono" || got.SizePt != 10 {
		t.Fatalf("document override not applied: %+v", got)
	}
}

func TestFontTable_DefaultAndUnknown(t *testing.T) {
	ft := NewFontTable()
	s, ok := ft.Resolve("")
	if !ok || s != builtinFonts[FontRegular] {
		t.Fatalf("default = %+v", s)
	}
	ft.Default = FontItalic
	if s, _ := ft.Resolve(""); !s.Italic {
		t.Fatalf("default name not honored: %+v", s)
	}
	if _, ok := ft.Resolve("nope"); ok {
		t.Fatalf("unexpected resolve of unknown font")
	}
	var nilTable *FontTable
	if _, ok := nilTable.Resolve(FontRegular); !ok {
		t.Fatalf("nil table should still resolve builtins")
	}
}

func TestFontTable_WithDoesNotMutate(t *testing.T) {
	base := NewFontTable()
	_ = base.WithDocument(map[string]FontSpec{"title": {Family: GoFamily, SizePt: 40}})
	if _, ok := base.Resolve("title"); ok {
		t.Fatalf("WithDocument mutated the receiver")
	}
}

func TestFontTable_Names(t *testing.T) {
	ft := NewFontTable().WithDocument(map[string]FontSpec{"title": {Family: GoFamily, SizePt: 40}})
	want := []string{FontBold, FontBoldItalic, FontItalic, FontRegular, "title"}
	if got := ft.Names(); !reflect.DeepEqual(got, want) {
		t.Fatalf("names = %v, want %v", got, want)
	}
}
