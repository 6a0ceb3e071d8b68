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

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"

	"gorichtext/internal/richtext"
)

var (
	// Text never swallows a '<' that starts a tag, so "a < b" stays text
	// while "<b>" opens a tag.
	markupLexer = lexer.MustStateful(lexer.Rules{
		"Root": {
			{Name: "Text", Pattern: `(?:[^<]|<[^A-Za-z/])+`},
			{Name: "TagOpen", Pattern: `<`, Action: lexer.Push("Tag")},
		},
		"Tag": {
			{Name: "TagEnd", Pattern: `/?>`, Action: lexer.Pop()},
			{Name: "Slash", Pattern: `/`},
			{Name: "Eq", Pattern: `=`, Action: lexer.Push("Value")},
			{Name: "Name", Pattern: `[A-Za-z_][A-Za-z0-9_-]*`},
			{Name: "Space", Pattern: `\s+`},
		},
		"Value": {
			{Name: "Value", Pattern: `(?:[^>/]|/[^>])+`, Action: lexer.Pop()},
		},
	})

	markupParser = participle.MustBuild[document](
		participle.Lexer(markupLexer),
		participle.Elide("Space"),
	)
)

type document struct {
	Nodes []*node `parser:"@@*"`
}

type node struct {
	Tag  *tag    `parser:"  TagOpen @@"`
	Text *string `parser:"| @Text"`
}

type tag struct {
	Pos   lexer.Position
	Close bool    `parser:"@Slash?"`
	Name  string  `parser:"@Name"`
	Value *string `parser:"( Eq @Value )?"`
	End   string  `parser:"@TagEnd"`
}

func (t *tag) selfClosing() bool { return t.End == "/>" }

// SyntaxError reports malformed markup. It matches richtext.ErrInvalidInput
// under errors.Is.
type SyntaxError struct {
	Line, Column int
	Msg          string
}

func (e *SyntaxError) Error() string {
	if e.Line == 0 {
		return "markup: " + e.Msg
	}
	return fmt.Sprintf("markup %d:%d: %s", e.Line, e.Column, e.Msg)
}

func (e *SyntaxError) Unwrap() error { return richtext.ErrInvalidInput }

func syntaxErrorAt(pos lexer.Position, format string, args ...any) *SyntaxError {
	return &SyntaxError{Line: pos.Line, Column: pos.Column, Msg: fmt.Sprintf(format, args...)}
}

func parseDocument(text string) (*document, error) {
	doc, err := markupParser.ParseString("", text)
	if err != nil {
		var perr participle.Error
		if errors.As(err, &perr) {
			return nil, syntaxErrorAt(perr.Position(), "%s", perr.Message())
		}
		return nil, &SyntaxError{Msg: err.Error()}
	}
	return doc, nil
}
