/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package fountain

import "testing"

func TestFormatLineAs(t *testing.T) {
	cases := []struct {
		t    ElementType
		in   string
		want string
	}{
		{Header, "  int. house - day ", "INT. HOUSE - DAY"},
		{Action, "  walks in ) ", "walks in"},
		{Action, "She Smiles.", "She Smiles."},
		{Character, " (john) ", sp(22) + "JOHN"},
		{Dialogue, "   Hello, you. ", sp(10) + "Hello, you."},
		{Parenthetical, "((beat))", sp(16) + "(beat)"},
		{Parenthetical, "  quietly ", sp(16) + "(quietly)"},
		{Transition, "cut to:", sp(42) + "CUT TO:"},
	}
	for _, c := range cases {
		if got := FormatLineAs(c.t, c.in); got != c.want {
			t.Fatalf("FormatLineAs(%v, %q) = %q, want %q", c.t, c.in, got, c.want)
		}
	}
}

func TestFormatLineAsThenRender(t *testing.T) {
	// A cue and its line written by hand render back to the same text.
	lines := []string{"", FormatLineAs(Character, "ann"), FormatLineAs(Dialogue, "Go.")}
	got := Render(lines)
	want := "\n" + lines[1] + "\n" + lines[2] + "\n"
	if got != want {
		t.Fatalf("Render = %q, want %q", got, want)
	}
}
