/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package fountain

import (
	"errors"
	"strings"
	"testing"
)

func TestSyncScenesDedup(t *testing.T) {
	els := Classify([]string{"INT. HOUSE - DAY", "", "INT. HOUSE - DAY", "", "EXT. PARK - NIGHT"})
	reg := NewMemoryRegistry()
	n, err := SyncScenes(els, reg)
	if err != nil {
		t.Fatalf("SyncScenes error: %v", err)
	}
	if n != 2 {
		t.Fatalf("created %d scenes, want 2", n)
	}
	names := reg.Names()
	if len(names) != 2 || names[0] != "INT. HOUSE - DAY" || names[1] != "EXT. PARK - NIGHT" {
		t.Fatalf("unexpected registry: %q", names)
	}
	// Running again adds nothing.
	if n, err := SyncScenes(els, reg); err != nil || n != 0 {
		t.Fatalf("second sync = %d, %v", n, err)
	}
}

func TestSyncScenesSkipsKnownAndIsCaseSensitive(t *testing.T) {
	els := Classify([]string{"INT. HOUSE - DAY", "INT. House - Day", "EXT. PARK"})
	reg := NewMemoryRegistry("INT. HOUSE - DAY")
	n, err := SyncScenes(els, reg)
	if err != nil {
		t.Fatalf("SyncScenes error: %v", err)
	}
	if n != 2 {
		t.Fatalf("created %d scenes, want 2", n)
	}
}

func TestSyncScenesNoHeaders(t *testing.T) {
	els := Classify([]string{"", "JOHN", "Hi."})
	n, err := SyncScenes(els, NewMemoryRegistry())
	if !errors.Is(err, ErrNoHeadersFound) || n != 0 {
		t.Fatalf("SyncScenes = %d, %v; want 0, ErrNoHeadersFound", n, err)
	}
}

func TestSceneNameTruncates(t *testing.T) {
	long := "INT. " + strings.Repeat("É", 80)
	name := SceneName("  " + long + "  ")
	if n := len([]rune(name)); n != MaxSceneNameLen {
		t.Fatalf("SceneName length = %d, want %d", n, MaxSceneNameLen)
	}
	if !strings.HasPrefix(name, "INT. ÉÉ") {
		t.Fatalf("unexpected name %q", name)
	}
	if SceneName("EXT. PARK") != "EXT. PARK" {
		t.Fatalf("short names must pass through")
	}
}

func TestSyncScenesTruncatedNamesCollapse(t *testing.T) {
	base := "INT. " + strings.Repeat("A", 70)
	els := []Element{{Type: Header, Content: base + " - DAY"}, {Type: Header, Content: base + " - NIGHT"}}
	n, err := SyncScenes(els, NewMemoryRegistry())
	if err != nil || n != 1 {
		t.Fatalf("SyncScenes = %d, %v; want 1", n, err)
	}
}

type failingRegistry struct{ MemoryRegistry }

func (f *failingRegistry) Add(string) error { return errors.New("registry offline") }

func TestSyncScenesRegistryError(t *testing.T) {
	els := Classify([]string{"INT. LAB - DAY"})
	if _, err := SyncScenes(els, &failingRegistry{}); err == nil || !strings.Contains(err.Error(), "offline") {
		t.Fatalf("expected registry error, got %v", err)
	}
}
