/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package storage

import (
	"archive/zip"
	"path/filepath"
	"testing"
)

func TestBundleRoundTrip(t *testing.T) {
	s, _ := newStore(t)
	rendered := "INT. HOUSE - DAY\n\n                      JOHN\n          Hello there.\n"
	d, err := s.Create("pilot.fountain", rendered)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	d.Path = "/elsewhere/pilot.fountain"
	d.Formatted = true
	if err := s.Save(d); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if _, err := s.Create("notes", "just notes\n"); err != nil {
		t.Fatalf("Create: %v", err)
	}

	zipPath := filepath.Join(t.TempDir(), "out", "pilot.zip")
	n, err := ExportBundle(s.Workspace(), zipPath)
	if err != nil {
		t.Fatalf("ExportBundle: %v", err)
	}
	if n != 2 {
		t.Fatalf("expected 2 documents bundled, got %d", n)
	}

	zr, err := zip.OpenReader(zipPath)
	if err != nil {
		t.Fatalf("open zip: %v", err)
	}
	entries := map[string]*zip.File{}
	for _, f := range zr.File {
		entries[f.Name] = f
	}
	for _, want := range []string{bundleReadme, ManifestFileName, "scripts/pilot.fountain", "scripts/notes.fountain"} {
		if _, ok := entries[want]; !ok {
			t.Fatalf("bundle misses %s", want)
		}
	}
	bare, err := readZipFile(entries["scripts/pilot.fountain"])
	if err != nil {
		t.Fatalf("read script: %v", err)
	}
	if string(bare) != "INT. HOUSE - DAY\n\nJOHN\nHello there.\n" {
		t.Fatalf("bundled script should be unindented, got %q", bare)
	}
	_ = zr.Close()

	root := filepath.Join(t.TempDir(), "copy")
	ws, err := ImportBundle(root, zipPath)
	if err != nil {
		t.Fatalf("ImportBundle: %v", err)
	}
	if ws.Manifest.Name != "Store Test" || len(ws.Manifest.Documents) != 2 {
		t.Fatalf("unexpected imported manifest: %+v", ws.Manifest)
	}
	reopened, err := Open(root)
	if err != nil {
		t.Fatalf("Open imported: %v", err)
	}
	got, err := NewWorkspaceStore(reopened).Load(d.ID)
	if err != nil {
		t.Fatalf("Load imported: %v", err)
	}
	if got.Text != rendered || !got.Formatted || got.Path != "" {
		t.Fatalf("imported buffer mismatch: %+v", got)
	}

	if _, err := ImportBundle(root, zipPath); err == nil {
		t.Fatalf("importing over an existing workspace should fail")
	}
}
