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
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"screenwriter/internal/document"
	"screenwriter/internal/fountain"
	applog "screenwriter/internal/log"
)

const (
	bundleReadme     = "bundle.txt"
	bundleScriptsDir = "scripts"
)

// ExportBundle zips the manifest, every buffer and a bare .fountain copy of each buffer (under
// scripts/) into destZip. It returns the number of buffers written.
func ExportBundle(ws *Workspace, destZip string) (int, error) {
	l := applog.WithOperation(applog.WithComponent("storage"), "bundle_export").With(slog.String("root", ws.Root))
	if strings.TrimSpace(destZip) == "" {
		return 0, errors.New("bundle path is required")
	}
	manifest, err := os.ReadFile(ws.ManifestPath)
	if err != nil {
		return 0, fmt.Errorf("read manifest: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(destZip), 0o755); err != nil {
		return 0, fmt.Errorf("ensure bundle dir: %w", err)
	}
	zf, err := os.Create(destZip)
	if err != nil {
		return 0, fmt.Errorf("create bundle: %w", err)
	}
	defer func() { _ = zf.Close() }()
	zw := zip.NewWriter(zf)

	add := func(name string, data []byte) error {
		w, err := zw.Create(name)
		if err != nil {
			return err
		}
		_, err = w.Write(data)
		return err
	}

	readme := fmt.Sprintf("%s workspace bundle\nCreated: %s\nWorkspace: %s\nDocuments: %d\n",
		applog.AppName, time.Now().Format(time.RFC3339), ws.Manifest.Name, len(ws.Manifest.Documents))
	if err := add(bundleReadme, []byte(readme)); err != nil {
		return 0, fmt.Errorf("add readme: %w", err)
	}
	if err := add(ManifestFileName, manifest); err != nil {
		return 0, fmt.Errorf("add manifest: %w", err)
	}
	used := map[string]bool{}
	n := 0
	for _, d := range ws.Manifest.Documents {
		text, err := readBuffer(ws, d.ID)
		if err != nil {
			return n, err
		}
		if err := add(BuffersDirName+"/"+d.ID+".txt", []byte(text)); err != nil {
			return n, fmt.Errorf("add buffer %s: %w", d.ID, err)
		}
		name := scriptName(d)
		if used[name] {
			name = d.ID + "-" + name
		}
		used[name] = true
		if err := add(bundleScriptsDir+"/"+name, []byte(fountain.StripIndent(text))); err != nil {
			return n, fmt.Errorf("add script %s: %w", name, err)
		}
		n++
	}
	if err := zw.Close(); err != nil {
		l.Error("bundle write failed", slog.Any("err", err))
		return n, fmt.Errorf("finish bundle: %w", err)
	}
	l.Info("bundle exported", slog.Int("documents", n), slog.String("zip", destZip))
	return n, nil
}

func scriptName(d *document.Document) string {
	name := filepath.Base(strings.ReplaceAll(d.Name, "\\", "/"))
	if name == "" || name == "." || name == "/" {
		name = d.ID
	}
	if !strings.HasSuffix(strings.ToLower(name), document.FountainExt) {
		name += document.FountainExt
	}
	return name
}

// ImportBundle unpacks a bundle into a new workspace at root. Linked paths are dropped since
// they point into the machine that made the bundle. root must not hold a workspace yet.
func ImportBundle(root, zipPath string) (*Workspace, error) {
	l := applog.WithOperation(applog.WithComponent("storage"), "bundle_import").With(slog.String("root", root))
	if _, err := os.Stat(filepath.Join(root, ManifestFileName)); err == nil {
		return nil, fmt.Errorf("%s already holds a workspace", root)
	}
	r, err := zip.OpenReader(zipPath)
	if err != nil {
		return nil, fmt.Errorf("open bundle: %w", err)
	}
	defer func() { _ = r.Close() }()

	files := map[string]*zip.File{}
	for _, f := range r.File {
		files[f.Name] = f
	}
	mf, ok := files[ManifestFileName]
	if !ok {
		return nil, errors.New("bundle has no manifest")
	}
	raw, err := readZipFile(mf)
	if err != nil {
		return nil, err
	}
	m, err := parseManifest(raw)
	if err != nil {
		return nil, fmt.Errorf("bundle manifest: %w", err)
	}

	ws, err := InitWorkspace(root, m.Name)
	if err != nil {
		return nil, err
	}
	for _, d := range m.Documents {
		if d.ID != filepath.Base(d.ID) || strings.ContainsAny(d.ID, `/\`) {
			return nil, fmt.Errorf("bundle document id %q is not a plain name", d.ID)
		}
		var text []byte
		if f, ok := files[BuffersDirName+"/"+d.ID+".txt"]; ok {
			if text, err = readZipFile(f); err != nil {
				return nil, err
			}
		}
		if err := replaceFile(ws.BufferPath(d.ID), text); err != nil {
			return nil, fmt.Errorf("write buffer %s: %w", d.ID, err)
		}
		d.Path = ""
	}
	ws.Manifest.Documents = m.Documents
	if err := Save(ws); err != nil {
		return nil, err
	}
	l.Info("bundle imported", slog.Int("documents", len(m.Documents)), slog.String("zip", zipPath))
	return ws, nil
}

func readZipFile(f *zip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", f.Name, err)
	}
	defer func() { _ = rc.Close() }()
	b, err := io.ReadAll(io.LimitReader(rc, 64<<20))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", f.Name, err)
	}
	return b, nil
}
