/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package crash

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"screenwriter/internal/storage"
)

func TestWriteReportCreatesFileInTemp(t *testing.T) {
	path, err := writeReport(nil, "boom", []byte("stacktrace"))
	if err != nil {
		t.Fatalf("writeReport error: %v", err)
	}
	defer os.Remove(path)
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read report: %v", err)
	}
	s := string(b)
	if !strings.Contains(s, "screenwriter crash report") {
		t.Fatalf("report header missing")
	}
	if !strings.Contains(s, "Panic: boom") {
		t.Fatalf("panic content missing: %s", s)
	}
}

func TestRecoverWritesReportAndSnapshot(t *testing.T) {
	oldStderr := os.Stderr
	r, w, _ := os.Pipe()
	os.Stderr = w
	defer func() {
		_ = w.Close()
		os.Stderr = oldStderr
		_, _ = io.Copy(io.Discard, r)
	}()

	code := 0
	oldExit := exitFn
	exitFn = func(c int) { code = c }
	defer func() { exitFn = oldExit }()

	ws, err := storage.InitWorkspace(t.TempDir(), "Crash")
	if err != nil {
		t.Fatalf("InitWorkspace: %v", err)
	}
	func() {
		defer Recover(ws)
		panic("kaboom")
	}()

	if code != 2 {
		t.Fatalf("expected exit code 2, got %d", code)
	}
	files, _ := os.ReadDir(ws.BackupsDir())
	var report, snapshot string
	for _, f := range files {
		switch n := f.Name(); {
		case strings.HasSuffix(n, ".log"):
			report = filepath.Join(ws.BackupsDir(), n)
		case strings.HasSuffix(n, storage.ManifestFileName):
			snapshot = n
		}
	}
	if report == "" || snapshot == "" {
		t.Fatalf("missing report (%q) or snapshot (%q)", report, snapshot)
	}
	b, _ := os.ReadFile(report)
	if !strings.Contains(string(b), "Panic: kaboom") || !strings.Contains(string(b), "Workspace: ") {
		t.Fatalf("unexpected report: %s", b)
	}
}
