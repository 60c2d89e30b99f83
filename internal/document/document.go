/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package document owns the editing surface around the fountain engine: named text buffers,
// the store that holds them, and the commands a writer triggers (format, save, import, export,
// scene sync). The engine itself never touches a buffer; it gets a text snapshot and returns
// a new one, and this package swaps it in.
package document

import (
	"strings"

	"screenwriter/internal/fountain"
)

// FountainExt is the file extension that marks a buffer as a screenplay.
const FountainExt = ".fountain"

// Document is a named text buffer.
// Path links the buffer to a file on disk; it is empty for unsaved buffers.
// Formatted is set once the buffer has been rendered, so the open hook formats it only once.
type Document struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Path      string `json:"path,omitempty"`
	Text      string `json:"-"`
	Formatted bool   `json:"formatted"`
	Dirty     bool   `json:"-"`
}

// Lines returns the buffer split into lines.
func (d *Document) Lines() []string { return fountain.Lines(d.Text) }

// IsFountain reports whether the buffer name or linked path ends in .fountain.
func (d *Document) IsFountain() bool {
	return hasFountainExt(d.Name) || (d.Path != "" && hasFountainExt(d.Path))
}

func hasFountainExt(s string) bool { return strings.HasSuffix(strings.ToLower(s), FountainExt) }

// Clone returns a copy that shares nothing with d.
func (d *Document) Clone() *Document {
	c := *d
	return &c
}
