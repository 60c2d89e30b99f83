/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package storage

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/ulikunitz/xz"

	applog "screenwriter/internal/log"
)

const (
	backupExt = ".xz"
	utf8BOM   = "\ufeff"
)

// ErrNotUTF8 is returned when a script file is not valid UTF-8.
var ErrNotUTF8 = errors.New("file is not valid UTF-8")

// Files reads and writes script files on disk. It implements document.Files.
// When BackupDir is set, WriteText first stores the replaced content there, xz-compressed.
type Files struct {
	BackupDir string
}

// NewFiles returns Files that back up into the workspace backups directory.
func NewFiles(ws *Workspace) *Files {
	if ws == nil {
		return &Files{}
	}
	return &Files{BackupDir: ws.BackupsDir()}
}

// ReadText reads a UTF-8 file and drops a leading byte order mark.
func (f *Files) ReadText(path string) (string, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	if !utf8.Valid(b) {
		return "", fmt.Errorf("%s: %w", path, ErrNotUTF8)
	}
	return strings.TrimPrefix(string(b), utf8BOM), nil
}

// WriteText replaces path with text atomically.
func (f *Files) WriteText(path, text string) error {
	l := applog.WithOperation(applog.WithComponent("storage"), "write_text").With(slog.String("path", path))
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	if f.BackupDir != "" {
		if err := f.backup(path); err != nil {
			l.Error("backup failed", slog.Any("err", err))
			return fmt.Errorf("backup %s: %w", path, err)
		}
	}
	if err := replaceFile(path, []byte(text)); err != nil {
		return err
	}
	l.Debug("written", slog.Int("bytes", len(text)))
	return nil
}

func (f *Files) backup(path string) error {
	old, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}
	if err := os.MkdirAll(f.BackupDir, 0o755); err != nil {
		return err
	}
	var buf bytes.Buffer
	w, err := xz.NewWriter(&buf)
	if err != nil {
		return err
	}
	if _, err := w.Write(old); err != nil {
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}
	name := fmt.Sprintf("%s.%s%s", filepath.Base(path), backupStamp(), backupExt)
	return writeFileSync(filepath.Join(f.BackupDir, name), buf.Bytes())
}

// Backups lists the compressed backups of path, newest first.
func (f *Files) Backups(path string) ([]string, error) {
	if f.BackupDir == "" {
		return nil, nil
	}
	ents, err := os.ReadDir(f.BackupDir)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	prefix := filepath.Base(path) + "."
	var out []string
	for _, e := range ents {
		if n := e.Name(); strings.HasPrefix(n, prefix) && strings.HasSuffix(n, backupExt) {
			out = append(out, filepath.Join(f.BackupDir, n))
		}
	}
	sort.Sort(sort.Reverse(sort.StringSlice(out)))
	return out, nil
}

// ReadBackup decompresses one backup file.
func ReadBackup(backupPath string) (string, error) {
	fh, err := os.Open(backupPath)
	if err != nil {
		return "", err
	}
	defer fh.Close()
	r, err := xz.NewReader(fh)
	if err != nil {
		return "", fmt.Errorf("open xz stream: %w", err)
	}
	b, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("decompress %s: %w", filepath.Base(backupPath), err)
	}
	return string(b), nil
}

// Restore writes the newest backup of path back over it. The content being replaced is itself
// backed up first.
func (f *Files) Restore(path string) error {
	list, err := f.Backups(path)
	if err != nil {
		return err
	}
	if len(list) == 0 {
		return fmt.Errorf("no backups of %s", filepath.Base(path))
	}
	text, err := ReadBackup(list[0])
	if err != nil {
		return err
	}
	return f.WriteText(path, text)
}
