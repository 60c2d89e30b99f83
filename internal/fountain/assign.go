/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * Licensed under the Apache License, Version 2.0.
 */

package fountain

import "strings"

// FormatLineAs rewrites a single line as element type t regardless of context.
// The body is trimmed and loses all leading "(" and trailing ")" characters, then:
//   - Header: upper-cased, no indent
//   - Action: as typed, no indent
//   - Character: upper-cased, character indent
//   - Dialogue: as typed, dialogue indent
//   - Parenthetical: wrapped in parentheses, parenthetical indent
//   - Transition: upper-cased, transition indent
func FormatLineAs(t ElementType, body string) string {
	content := cleanLine(body)
	switch t {
	case Header, Character, Transition:
		content = strings.ToUpper(content)
	case Parenthetical:
		content = "(" + content + ")"
	}
	return Indent(t) + content
}

func cleanLine(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimLeft(s, "(")
	s = strings.TrimRight(s, ")")
	return strings.TrimSpace(s)
}
