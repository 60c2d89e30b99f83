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
	"errors"
	"fmt"
	"io"
	"math/rand"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"screenwriter/internal/document"
)

const (
	ManifestFileName = "workspace.json"
	BuffersDirName   = "buffers"
	BackupsDirName   = "backups"
	ExportsDirName   = "exports"

	manifestVersion = 1
)

var standardSubDirs = []string{
	BuffersDirName,
	ExportsDirName,
	BackupsDirName,
}

// Manifest is the canonical description of a workspace. Buffer text is not part of it.
type Manifest struct {
	Version   int                  `json:"version"`
	Name      string               `json:"name"`
	Documents []*document.Document `json:"documents"`
}

// Workspace keeps track of the workspace state loaded/saved from disk.
// Root is the workspace directory containing workspace.json and subfolders.
type Workspace struct {
	Root         string
	ManifestPath string
	Manifest     Manifest
}

// BuffersDir returns the directory holding buffer text.
func (ws *Workspace) BuffersDir() string { return filepath.Join(ws.Root, BuffersDirName) }

// BackupsDir returns the directory holding manifest, file and crash backups.
func (ws *Workspace) BackupsDir() string { return filepath.Join(ws.Root, BackupsDirName) }

// BufferPath returns the text file of buffer id.
func (ws *Workspace) BufferPath(id string) string {
	return filepath.Join(ws.BuffersDir(), id+".txt")
}

// InitWorkspace creates a new workspace at root (creating it if it doesn't exist),
// scaffolds the standard subfolders, and writes an empty manifest transactionally.
func InitWorkspace(root, name string) (*Workspace, error) {
	if strings.TrimSpace(root) == "" {
		return nil, errors.New("root path is required")
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create workspace root: %w", err)
	}
	if err := scaffold(root); err != nil {
		return nil, err
	}
	if strings.TrimSpace(name) == "" {
		name = filepath.Base(root)
	}
	ws := &Workspace{
		Root:         root,
		ManifestPath: filepath.Join(root, ManifestFileName),
		Manifest:     Manifest{Version: manifestVersion, Name: name, Documents: []*document.Document{}},
	}
	if err := Save(ws); err != nil {
		return nil, err
	}
	return ws, nil
}

func scaffold(root string) error {
	for _, d := range standardSubDirs {
		if err := os.MkdirAll(filepath.Join(root, d), 0o755); err != nil {
			return fmt.Errorf("create subdir %s: %w", d, err)
		}
	}
	return nil
}

// Open loads an existing workspace from root.
// If the current manifest cannot be read, parsed or validated, the latest backup is used.
func Open(root string) (*Workspace, error) {
	mpath := filepath.Join(root, ManifestFileName)
	b, err := os.ReadFile(mpath)
	if err != nil {
		m, berr := openFromLatestBackup(root)
		if berr != nil {
			return nil, fmt.Errorf("open manifest: %w; backup attempt: %v", err, berr)
		}
		return &Workspace{Root: root, ManifestPath: mpath, Manifest: *m}, nil
	}
	m, perr := parseManifest(b)
	if perr != nil {
		bm, berr := openFromLatestBackup(root)
		if berr != nil {
			return nil, fmt.Errorf("parse manifest: %w; backup attempt: %v", perr, berr)
		}
		return &Workspace{Root: root, ManifestPath: mpath, Manifest: *bm}, nil
	}
	return &Workspace{Root: root, ManifestPath: mpath, Manifest: *m}, nil
}

func parseManifest(b []byte) (*Manifest, error) {
	if err := ValidateManifest(b); err != nil {
		return nil, err
	}
	var m Manifest
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, err
	}
	if m.Documents == nil {
		m.Documents = []*document.Document{}
	}
	return &m, nil
}

// Save writes the manifest to disk with transactional semantics
// and a timestamped backup of the previous manifest (if present).
func Save(ws *Workspace) error {
	if ws == nil {
		return errors.New("nil Workspace")
	}
	if ws.Root == "" || ws.ManifestPath == "" {
		return errors.New("invalid Workspace: missing paths")
	}
	if ws.Manifest.Version == 0 {
		ws.Manifest.Version = manifestVersion
	}
	if ws.Manifest.Documents == nil {
		ws.Manifest.Documents = []*document.Document{}
	}
	data, err := json.MarshalIndent(ws.Manifest, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal manifest: %w", err)
	}
	data = append(data, '\n')
	if err := ValidateManifest(data); err != nil {
		return err
	}

	bdir := ws.BackupsDir()
	if err := os.MkdirAll(bdir, 0o755); err != nil {
		return fmt.Errorf("ensure backups dir: %w", err)
	}
	if _, statErr := os.Stat(ws.ManifestPath); statErr == nil {
		bpath := filepath.Join(bdir, fmt.Sprintf("%s.%s.bak", ManifestFileName, backupStamp()))
		if cerr := copyFile(ws.ManifestPath, bpath); cerr != nil {
			return fmt.Errorf("backup current manifest: %w", cerr)
		}
	}
	if err := replaceFile(ws.ManifestPath, data); err != nil {
		return fmt.Errorf("replace manifest: %w", err)
	}
	return nil
}

// AutosaveCrashSnapshot writes the in-memory manifest to a crash snapshot in the backups
// directory without touching workspace.json, and returns its path.
func AutosaveCrashSnapshot(ws *Workspace) (string, error) {
	if ws == nil || ws.Root == "" {
		return "", errors.New("invalid Workspace: missing root")
	}
	data, err := json.MarshalIndent(ws.Manifest, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal manifest: %w", err)
	}
	bdir := ws.BackupsDir()
	if err := os.MkdirAll(bdir, 0o755); err != nil {
		return "", fmt.Errorf("ensure backups dir: %w", err)
	}
	path := filepath.Join(bdir, fmt.Sprintf("crash-%s.%s", backupStamp(), ManifestFileName))
	if err := writeFileSync(path, append(data, '\n')); err != nil {
		return "", err
	}
	return path, nil
}

// backupStamp sorts lexicographically in time order.
func backupStamp() string { return time.Now().Format("20060102-150405.000000000") }

// replaceFile writes data to a temp file next to path and renames it over path.
func replaceFile(path string, data []byte) error {
	dir := filepath.Dir(path)
	temp := filepath.Join(dir, fmt.Sprintf(".%s.tmp-%d-%d", filepath.Base(path), os.Getpid(), rand.Int()))
	if err := writeFileSync(temp, data); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}
	// On Windows, replace by removing destination first if needed
	if _, err := os.Stat(path); err == nil {
		_ = os.Remove(path)
	}
	if err := os.Rename(temp, path); err != nil {
		_ = os.Remove(temp)
		return err
	}
	return nil
}

// writeFileSync writes data to a file, ensures it is flushed to disk.
func writeFileSync(path string, data []byte) (err error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	if _, err := f.Write(data); err != nil {
		return err
	}
	return f.Sync()
}

// copyFile copies a file from src to dst (overwrites dst if exists).
func copyFile(src, dst string) (err error) {
	sf, err := os.Open(src)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := sf.Close(); err == nil {
			err = cerr
		}
	}()
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}
	df, err := os.OpenFile(dst, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := df.Close(); err == nil {
			err = cerr
		}
	}()
	if _, err := io.Copy(df, sf); err != nil {
		return err
	}
	return df.Sync()
}

// openFromLatestBackup tries the timestamped manifest backups from newest to oldest.
func openFromLatestBackup(root string) (*Manifest, error) {
	bdir := filepath.Join(root, BackupsDirName)
	ents, err := os.ReadDir(bdir)
	if err != nil {
		return nil, fmt.Errorf("read backups dir: %w", err)
	}
	var candidates []string
	for _, e := range ents {
		name := e.Name()
		if strings.HasPrefix(name, ManifestFileName+".") && strings.HasSuffix(name, ".bak") {
			candidates = append(candidates, filepath.Join(bdir, name))
		}
	}
	if len(candidates) == 0 {
		return nil, errors.New("no backups found")
	}
	sort.Sort(sort.Reverse(sort.StringSlice(candidates)))
	var lastErr error
	for _, c := range candidates {
		b, err := os.ReadFile(c)
		if err != nil {
			lastErr = fmt.Errorf("read backup: %w", err)
			continue
		}
		m, err := parseManifest(b)
		if err != nil {
			lastErr = fmt.Errorf("parse backup %s: %w", filepath.Base(c), err)
			continue
		}
		return m, nil
	}
	return nil, lastErr
}
