/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package fountain

import "strings"

// Indent widths in columns of leading space, approximating a Courier screenplay page.
const (
	HeaderIndent        = 0
	ActionIndent        = 0
	DialogueIndent      = 10
	ParentheticalIndent = 16
	CharacterIndent     = 22
	TransitionIndent    = 42
)

// Columns returns the indent width for t.
func Columns(t ElementType) int {
	switch t {
	case Transition:
		return TransitionIndent
	case Character:
		return CharacterIndent
	case Parenthetical:
		return ParentheticalIndent
	case Dialogue:
		return DialogueIndent
	case Header:
		return HeaderIndent
	default:
		return ActionIndent
	}
}

// Indent returns the leading spaces used for t.
func Indent(t ElementType) string { return strings.Repeat(" ", Columns(t)) }

// Render re-indents every line by its classified type. Existing indentation is discarded,
// blank lines stay blank, and every output line ends in "\n", so the result has as many lines
// as the input.
func Render(lines []string) string {
	var b strings.Builder
	b.Grow(len(lines) * 32)
	walk(lines, func(s step) {
		if !s.blank {
			b.WriteString(Indent(s.elem.Type))
			b.WriteString(s.elem.Content)
		}
		b.WriteByte('\n')
	})
	return b.String()
}

// RenderText renders the lines of text.
func RenderText(text string) string { return Render(Lines(text)) }

// RenderElements lays out already classified elements, one per line, without blank lines.
func RenderElements(elements []Element) string {
	var b strings.Builder
	for _, el := range elements {
		b.WriteString(Indent(el.Type))
		b.WriteString(el.Content)
		b.WriteByte('\n')
	}
	return b.String()
}

// StripIndent trims every line of text, producing the bare form written to .fountain files.
func StripIndent(text string) string {
	var b strings.Builder
	b.Grow(len(text))
	for _, l := range Lines(text) {
		b.WriteString(strings.TrimSpace(l))
		b.WriteByte('\n')
	}
	return b.String()
}
