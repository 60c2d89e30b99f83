/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package storage

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"screenwriter/internal/document"
)

func TestInitWorkspaceCreatesStructureAndManifest(t *testing.T) {
	root := t.TempDir()
	ws, err := InitWorkspace(root, "Pilot")
	if err != nil {
		t.Fatalf("InitWorkspace error: %v", err)
	}
	b, err := os.ReadFile(ws.ManifestPath)
	if err != nil {
		t.Fatalf("read manifest: %v", err)
	}
	var got Manifest
	if err := json.Unmarshal(b, &got); err != nil {
		t.Fatalf("unmarshal manifest: %v", err)
	}
	if got.Name != "Pilot" || got.Version != manifestVersion || got.Documents == nil {
		t.Fatalf("unexpected manifest: %+v", got)
	}
	for _, d := range []string{BuffersDirName, ExportsDirName, BackupsDirName} {
		p := filepath.Join(root, d)
		if fi, err := os.Stat(p); err != nil || !fi.IsDir() {
			t.Fatalf("expected directory %s to exist", p)
		}
	}
}

func TestInitWorkspaceDefaultsNameToDir(t *testing.T) {
	root := filepath.Join(t.TempDir(), "season-one")
	ws, err := InitWorkspace(root, "  ")
	if err != nil {
		t.Fatalf("InitWorkspace error: %v", err)
	}
	if ws.Manifest.Name != "season-one" {
		t.Fatalf("name = %q", ws.Manifest.Name)
	}
	if _, err := InitWorkspace("", "x"); err == nil {
		t.Fatalf("expected error for empty root")
	}
}

func TestSaveCreatesTimestampedBackup(t *testing.T) {
	root := t.TempDir()
	ws, err := InitWorkspace(root, "Backup Test")
	if err != nil {
		t.Fatalf("InitWorkspace error: %v", err)
	}
	ws.Manifest.Name = "changed"
	if err := Save(ws); err != nil {
		t.Fatalf("Save error: %v", err)
	}
	ents, err := os.ReadDir(filepath.Join(root, BackupsDirName))
	if err != nil {
		t.Fatalf("read backups dir: %v", err)
	}
	var bakCount int
	for _, e := range ents {
		name := e.Name()
		if strings.HasPrefix(name, ManifestFileName+".") && strings.HasSuffix(name, ".bak") {
			bakCount++
		}
	}
	if bakCount == 0 {
		t.Fatalf("expected at least one backup file, found 0")
	}
}

func TestOpenFallsBackToBackup(t *testing.T) {
	root := t.TempDir()
	ws, err := InitWorkspace(root, "Recover")
	if err != nil {
		t.Fatalf("InitWorkspace error: %v", err)
	}
	ws.Manifest.Documents = append(ws.Manifest.Documents, &document.Document{ID: "a", Name: "pilot.fountain"})
	if err := Save(ws); err != nil {
		t.Fatalf("Save error: %v", err)
	}
	// The previous manifest (empty) is now the latest backup; save again so it holds "a".
	if err := Save(ws); err != nil {
		t.Fatalf("Save error: %v", err)
	}
	if err := os.WriteFile(ws.ManifestPath, []byte("{not json"), 0o644); err != nil {
		t.Fatalf("corrupt manifest: %v", err)
	}
	got, err := Open(root)
	if err != nil {
		t.Fatalf("Open error: %v", err)
	}
	if len(got.Manifest.Documents) != 1 || got.Manifest.Documents[0].ID != "a" {
		t.Fatalf("backup not used: %+v", got.Manifest)
	}
}

func TestOpenWithoutManifestOrBackupFails(t *testing.T) {
	if _, err := Open(t.TempDir()); err == nil {
		t.Fatalf("expected error for empty directory")
	}
}

func TestManifestConformsToSchema(t *testing.T) {
	root := t.TempDir()
	ws, err := InitWorkspace(root, "Schema Test")
	if err != nil {
		t.Fatalf("InitWorkspace error: %v", err)
	}
	data, err := os.ReadFile(ws.ManifestPath)
	if err != nil {
		t.Fatalf("read manifest: %v", err)
	}
	if err := ValidateManifest(data); err != nil {
		t.Fatalf("manifest does not conform to schema: %v", err)
	}
}

func TestValidateManifestRejectsBadDocuments(t *testing.T) {
	bad := []string{
		`{"version": 1, "name": "x"}`,
		`{"version": 1, "name": "x", "documents": [{"name": "no id"}]}`,
		`{"version": 1, "name": "x", "documents": [{"id": "a", "name": "n", "text": "leaked"}]}`,
		`{"version": 0, "name": "x", "documents": []}`,
	}
	for _, s := range bad {
		if err := ValidateManifest([]byte(s)); err == nil {
			t.Fatalf("expected schema error for %s", s)
		}
	}
}
