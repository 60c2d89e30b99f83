/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package storage

import (
	"context"
	"errors"
	"os"
	"strings"
	"testing"

	"screenwriter/internal/document"
)

func newStore(t *testing.T) (*WorkspaceStore, string) {
	t.Helper()
	root := t.TempDir()
	ws, err := InitWorkspace(root, "Store Test")
	if err != nil {
		t.Fatalf("InitWorkspace error: %v", err)
	}
	return NewWorkspaceStore(ws), root
}

func TestWorkspaceStorePersistsAcrossOpen(t *testing.T) {
	s, root := newStore(t)
	d, err := s.Create("pilot.fountain", "INT. HOUSE - DAY\n")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	d.Path = "/scripts/pilot.fountain"
	d.Formatted = true
	d.Text = "INT. HOUSE - NIGHT\n"
	if err := s.Save(d); err != nil {
		t.Fatalf("Save: %v", err)
	}

	ws, err := Open(root)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	got, err := NewWorkspaceStore(ws).Load(d.ID)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.Text != "INT. HOUSE - NIGHT\n" || got.Path != "/scripts/pilot.fountain" || !got.Formatted {
		t.Fatalf("unexpected document: %+v", got)
	}
	manifest, _ := os.ReadFile(ws.ManifestPath)
	if strings.Contains(string(manifest), "HOUSE") {
		t.Fatalf("buffer text leaked into manifest:\n%s", manifest)
	}
}

func TestWorkspaceStoreUnknownID(t *testing.T) {
	s, _ := newStore(t)
	if _, err := s.Load("nope"); !errors.Is(err, document.ErrNoActiveDocument) {
		t.Fatalf("expected ErrNoActiveDocument, got %v", err)
	}
	if err := s.Save(&document.Document{ID: "nope"}); !errors.Is(err, document.ErrNoActiveDocument) {
		t.Fatalf("expected ErrNoActiveDocument, got %v", err)
	}
	if err := s.Save(nil); !errors.Is(err, document.ErrNoActiveDocument) {
		t.Fatalf("expected ErrNoActiveDocument for nil, got %v", err)
	}
}

func TestWorkspaceStoreListSorted(t *testing.T) {
	s, _ := newStore(t)
	for _, n := range []string{"b.fountain", "a.fountain", "notes.txt"} {
		if _, err := s.Create(n, n); err != nil {
			t.Fatalf("Create %s: %v", n, err)
		}
	}
	list, err := s.List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(list) != 3 || list[0].Name != "a.fountain" || list[2].Name != "notes.txt" || list[1].Text != "b.fountain" {
		t.Fatalf("unexpected list: %+v", list)
	}
}

func TestWorkspaceStoreOpenRunsHooks(t *testing.T) {
	s, _ := newStore(t)
	d, _ := s.Create("pilot.fountain", "raw")
	var calls int
	s.OnOpened(func(doc *document.Document) {
		calls++
		doc.Text = "hooked"
		if err := s.Save(doc); err != nil {
			t.Errorf("save in hook: %v", err)
		}
	})
	if _, err := s.Load(d.ID); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if calls != 0 {
		t.Fatalf("Load must not fire hooks")
	}
	got, err := s.Open(d.ID)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if calls != 1 || got.Text != "hooked" {
		t.Fatalf("Open: calls=%d text=%q", calls, got.Text)
	}
}

func TestWorkspaceStoreWithService(t *testing.T) {
	s, _ := newStore(t)
	svc, err := document.NewService(s, NewFiles(s.Workspace()), document.Options{AutoFormat: true})
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	d, _ := s.Create("pilot.fountain", "JOHN\nHello.\n")
	got, err := svc.Open(context.Background(), d.ID)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	want := strings.Repeat(" ", 22) + "JOHN\n" + strings.Repeat(" ", 10) + "Hello.\n"
	if got.Text != want || !got.Formatted {
		t.Fatalf("auto-format through workspace store: %+v", got)
	}
}
