/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package fountain

import "strings"

// lineFacts is what a line exposes to the line after it.
// cue is the character rule evaluated against the line's own predecessor, independent of the
// type the line was finally given (an upper-case "CUT TO:" after a blank is still a cue here).
type lineFacts struct {
	blank bool
	cue   bool
	paren bool
}

// step is one source line after classification. Blank lines carry no element.
type step struct {
	blank bool
	elem  Element
}

// walk classifies lines in a single pass. The window is the previous line's facts, which
// already fold in the blank state of the line before it.
//
// Precedence: Header, Transition, Character (after a blank), Parenthetical, Dialogue, Action.
func walk(lines []string, visit func(step)) {
	// No previous line counts as blank.
	prev := lineFacts{blank: true}
	for i, raw := range lines {
		s := strings.TrimSpace(raw)
		if s == "" {
			visit(step{blank: true})
			prev = lineFacts{blank: true}
			continue
		}
		cur := lineFacts{
			cue:   IsCharacter(s) && prev.blank,
			paren: IsParenthetical(s),
		}
		el := Element{Type: Action, Content: s, Line: i + 1}
		switch {
		case IsSceneHeader(s):
			el.Type = Header
		case IsTransition(s):
			el.Type = Transition
			if strings.HasPrefix(s, ">") {
				el.Content = strings.TrimSpace(s[1:])
			}
		case cur.cue:
			el.Type = Character
		case cur.paren:
			el.Type = Parenthetical
		case !prev.blank && (prev.cue || prev.paren):
			el.Type = Dialogue
		}
		visit(step{elem: el})
		prev = cur
	}
}

// Classify assigns an element type to every non-blank line. Blank lines are dropped; the
// order of the result follows the input.
func Classify(lines []string) []Element {
	out := make([]Element, 0, len(lines))
	walk(lines, func(s step) {
		if !s.blank {
			out = append(out, s.elem)
		}
	})
	return out
}

// ClassifyText splits text into lines and classifies them.
func ClassifyText(text string) []Element { return Classify(Lines(text)) }

// Lines splits text on "\n", "\r\n" or "\r". A trailing line break does not produce an extra
// empty line; empty text yields no lines.
func Lines(text string) []string {
	if text == "" {
		return nil
	}
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	text = strings.TrimSuffix(text, "\n")
	return strings.Split(text, "\n")
}
