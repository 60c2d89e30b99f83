/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package outline

import "testing"

func TestBuildScenesAndSpeeches(t *testing.T) {
	input := `INT. KITCHEN - NIGHT

Rain hammers the window. @storm

ALICE (V.O.)
(quietly)
Hello, world!
(beat)
Goodbye.

CUT TO:

EXT. PARK - DAY

BOB
Hi, Alice. @callback
`
	o := FromText(input)
	if len(o.Scenes) != 2 {
		t.Fatalf("expected 2 scenes, got %d: %+v", len(o.Scenes), o.Scenes)
	}
	s0 := o.Scenes[0]
	if s0.Title != "INT. KITCHEN - NIGHT" || s0.Line != 1 {
		t.Fatalf("unexpected scene 1: %q line %d", s0.Title, s0.Line)
	}
	if len(s0.Actions) != 1 || len(s0.Transitions) != 1 || s0.Transitions[0] != "CUT TO:" {
		t.Fatalf("unexpected scene 1 body: %+v", s0)
	}
	if len(s0.Speeches) != 1 {
		t.Fatalf("expected 1 speech, got %+v", s0.Speeches)
	}
	sp := s0.Speeches[0]
	if sp.Character != "ALICE" || sp.Extension != "(V.O.)" || sp.Line != 5 {
		t.Fatalf("unexpected cue: %+v", sp)
	}
	if len(sp.Parentheticals) != 2 || sp.Parentheticals[0] != "(quietly)" {
		t.Fatalf("unexpected parentheticals: %+v", sp.Parentheticals)
	}
	if sp.Text != "Hello, world!\nGoodbye." {
		t.Fatalf("unexpected dialogue text: %q", sp.Text)
	}
	if len(s0.Tags) != 1 || s0.Tags[0] != "storm" {
		t.Fatalf("unexpected scene tags: %v", s0.Tags)
	}
	s1 := o.Scenes[1]
	if s1.Title != "EXT. PARK - DAY" || len(s1.Speeches) != 1 || s1.Speeches[0].Character != "BOB" {
		t.Fatalf("unexpected scene 2: %+v", s1)
	}
	if len(s1.Speeches[0].Tags) != 1 || s1.Speeches[0].Tags[0] != "callback" {
		t.Fatalf("unexpected speech tags: %v", s1.Speeches[0].Tags)
	}
}

func TestUntitledLeadIn(t *testing.T) {
	o := FromText("A cold open.\n\nINT. HALL - DAY\n")
	if len(o.Scenes) != 2 || o.Scenes[0].Title != UntitledScene || o.Scenes[0].Line != 0 {
		t.Fatalf("expected an untitled lead-in scene, got %+v", o.Scenes)
	}
	if len(FromText("").Scenes) != 0 {
		t.Fatalf("empty text should have no scenes")
	}
}

func TestCharacters(t *testing.T) {
	o := FromText(`INT. A - DAY

BOB
One two three.

ALICE
Hi.

BOB
Four.

EXT. B - DAY

ALICE
Bye now.
`)
	got := o.Characters()
	if len(got) != 2 {
		t.Fatalf("expected 2 characters, got %+v", got)
	}
	if got[0].Name != "BOB" || got[0].Speeches != 2 || got[0].Words != 4 || got[0].Scenes != 1 {
		t.Fatalf("unexpected BOB stats: %+v", got[0])
	}
	if got[1].Name != "ALICE" || got[1].Speeches != 2 || got[1].Words != 3 || got[1].Scenes != 2 {
		t.Fatalf("unexpected ALICE stats: %+v", got[1])
	}
}
