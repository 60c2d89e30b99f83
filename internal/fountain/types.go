/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package fountain

import (
	"fmt"
	"strings"
)

// ElementType is the kind assigned to a non-blank screenplay line.
type ElementType int

const (
	Action ElementType = iota
	Header
	Character
	Dialogue
	Parenthetical
	Transition
)

// ElementTypes lists every element type in declaration order.
var ElementTypes = []ElementType{Header, Action, Character, Dialogue, Parenthetical, Transition}

func (t ElementType) String() string {
	switch t {
	case Action:
		return "ACTION"
	case Header:
		return "HEADER"
	case Character:
		return "CHARACTER"
	case Dialogue:
		return "DIALOGUE"
	case Parenthetical:
		return "PARENTHETICAL"
	case Transition:
		return "TRANSITION"
	default:
		return fmt.Sprintf("ElementType(%d)", int(t))
	}
}

// ParseElementType maps a case-insensitive name like "header" or "PARENTHETICAL" to its type.
// "scene" is accepted as an alias for Header.
func ParseElementType(s string) (ElementType, error) {
	name := strings.ToUpper(strings.TrimSpace(s))
	if name == "SCENE" {
		return Header, nil
	}
	for _, t := range ElementTypes {
		if t.String() == name {
			return t, nil
		}
	}
	return Action, fmt.Errorf("unknown element type %q", s)
}

// Element is one classified line.
// Content is the trimmed line; for a Transition any leading ">" marker is removed.
// Line is the 1-based line number in the source.
type Element struct {
	Type    ElementType
	Content string
	Line    int
}
