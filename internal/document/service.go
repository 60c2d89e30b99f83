/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package document

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/zeebo/blake3"

	"screenwriter/internal/fountain"
	applog "screenwriter/internal/log"
)

// Options configures a Service.
type Options struct {
	// AutoFormat registers HandleOpened on the store so .fountain buffers are formatted the
	// first time they are opened.
	AutoFormat bool
	// CacheSize bounds the render cache; 0 picks a default.
	CacheSize int
}

// Service runs the writer-facing commands against a Store.
type Service struct {
	store Store
	files Files
	cache *lru.Cache[[32]byte, string]
	log   *slog.Logger
}

// NewService wires a store and a file boundary. files may be nil when no command that reads
// or writes files is used.
func NewService(store Store, files Files, opts Options) (*Service, error) {
	if store == nil {
		return nil, errors.New("document store is required")
	}
	size := opts.CacheSize
	if size <= 0 {
		size = 128
	}
	cache, err := lru.New[[32]byte, string](size)
	if err != nil {
		return nil, fmt.Errorf("render cache: %w", err)
	}
	s := &Service{store: store, files: files, cache: cache, log: applog.WithComponent("document")}
	if opts.AutoFormat {
		store.OnOpened(s.HandleOpened)
	}
	return s, nil
}

// Render formats text, reusing an earlier result for identical input.
func (s *Service) Render(text string) string {
	key := blake3.Sum256([]byte(text))
	if out, ok := s.cache.Get(key); ok {
		return out
	}
	out := fountain.RenderText(text)
	s.cache.Add(key, out)
	return out
}

func (s *Service) get(id string) (*Document, error) {
	if strings.TrimSpace(id) == "" {
		return nil, ErrNoActiveDocument
	}
	return s.store.Load(id)
}

// Classify returns the typed elements of a buffer.
func (s *Service) Classify(ctx context.Context, id string) ([]fountain.Element, error) {
	doc, err := s.get(id)
	if err != nil {
		return nil, err
	}
	return fountain.ClassifyText(doc.Text), nil
}

// FormatDocument re-renders the whole buffer and marks it formatted.
func (s *Service) FormatDocument(ctx context.Context, id string) (*Document, error) {
	l := applog.WithOperation(s.log, "format")
	doc, err := s.get(id)
	if err != nil {
		return nil, err
	}
	s.format(doc)
	if err := s.store.Save(doc); err != nil {
		l.ErrorContext(applog.WithDocumentContext(ctx, doc.ID), "store save failed", slog.Any("err", err))
		return nil, err
	}
	l.InfoContext(applog.WithDocumentContext(ctx, doc.ID), "document formatted", slog.String("name", doc.Name))
	return doc, nil
}

func (s *Service) format(doc *Document) {
	out := s.Render(doc.Text)
	if out != doc.Text {
		doc.Text = out
		doc.Dirty = true
	}
	doc.Formatted = true
}

// FormatLine rewrites line index (0-based) of a buffer as element type t.
func (s *Service) FormatLine(ctx context.Context, id string, index int, t fountain.ElementType) (*Document, error) {
	doc, err := s.get(id)
	if err != nil {
		return nil, err
	}
	lines := doc.Lines()
	if index < 0 || index >= len(lines) {
		return nil, fmt.Errorf("%w: %d of %d", ErrLineOutOfRange, index, len(lines))
	}
	lines[index] = fountain.FormatLineAs(t, lines[index])
	text := strings.Join(lines, "\n")
	if strings.HasSuffix(doc.Text, "\n") {
		text += "\n"
	}
	doc.Text = text
	doc.Dirty = true
	if err := s.store.Save(doc); err != nil {
		return nil, err
	}
	applog.WithOperation(s.log, "format_line").DebugContext(applog.WithDocumentContext(ctx, doc.ID), "line formatted",
		slog.Int("line", index+1), slog.String("type", t.String()))
	return doc, nil
}

// Save writes the buffer to its linked file with all indentation stripped.
// The buffer text itself is not changed; on success it is no longer dirty.
func (s *Service) Save(ctx context.Context, id string) (*Document, error) {
	l := applog.WithOperation(s.log, "save")
	doc, err := s.get(id)
	if err != nil {
		return nil, err
	}
	if doc.Path == "" {
		return nil, ErrNoLinkedPath
	}
	if err := s.write(doc.Path, doc.Text); err != nil {
		l.ErrorContext(applog.WithDocumentContext(ctx, doc.ID), "save failed", slog.Any("err", err))
		return nil, err
	}
	doc.Dirty = false
	if err := s.store.Save(doc); err != nil {
		return nil, err
	}
	l.InfoContext(applog.WithDocumentContext(ctx, doc.ID), "saved", slog.String("path", doc.Path))
	return doc, nil
}

// Export writes the stripped buffer to path, adding the .fountain extension when missing.
// It returns the path written.
func (s *Service) Export(ctx context.Context, id, path string) (string, error) {
	l := applog.WithOperation(s.log, "export")
	doc, err := s.get(id)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(path) == "" {
		return "", errors.New("export path is required")
	}
	if !hasFountainExt(path) {
		path += FountainExt
	}
	if err := s.write(path, doc.Text); err != nil {
		l.ErrorContext(applog.WithDocumentContext(ctx, doc.ID), "export failed", slog.Any("err", err))
		return "", err
	}
	l.InfoContext(applog.WithDocumentContext(ctx, doc.ID), "exported", slog.String("path", path))
	return path, nil
}

func (s *Service) write(path, text string) error {
	if s.files == nil {
		return &FileWriteError{Path: path, Err: errors.New("no file access configured")}
	}
	if err := s.files.WriteText(path, fountain.StripIndent(text)); err != nil {
		return &FileWriteError{Path: path, Err: err}
	}
	return nil
}

// Import reads a .fountain file into a new buffer named after the file, links the buffer to
// the file and formats it.
func (s *Service) Import(ctx context.Context, path string) (*Document, error) {
	l := applog.WithOperation(s.log, "import").With(slog.String("path", path))
	if s.files == nil {
		return nil, errors.New("no file access configured")
	}
	text, err := s.files.ReadText(path)
	if err != nil {
		l.Error("read failed", slog.Any("err", err))
		return nil, fmt.Errorf("import %s: %w", path, err)
	}
	doc, err := s.store.Create(filepath.Base(path), text)
	if err != nil {
		return nil, err
	}
	doc.Path = path
	s.format(doc)
	doc.Dirty = false
	if err := s.store.Save(doc); err != nil {
		return nil, err
	}
	l.InfoContext(applog.WithDocumentContext(ctx, doc.ID), "imported", slog.Int("lines", len(doc.Lines())))
	return doc, nil
}

// HandleOpened is the open hook: a .fountain buffer that was never formatted gets formatted
// and flagged, so later opens leave it alone.
func (s *Service) HandleOpened(doc *Document) {
	if doc == nil || doc.Formatted || !doc.IsFountain() {
		return
	}
	s.format(doc)
	l := applog.WithOperation(s.log, "on_open")
	if err := s.store.Save(doc); err != nil {
		l.Error("store save failed", slog.String("doc", doc.ID), slog.Any("err", err))
		return
	}
	l.Info("auto-formatted", slog.String("doc", doc.ID), slog.String("name", doc.Name))
}

// Open opens one buffer, running the open hooks.
func (s *Service) Open(ctx context.Context, id string) (*Document, error) {
	if strings.TrimSpace(id) == "" {
		return nil, ErrNoActiveDocument
	}
	return s.store.Open(id)
}

// OpenAll opens every buffer, running the open hooks on each, and returns them.
func (s *Service) OpenAll(ctx context.Context) ([]*Document, error) {
	list, err := s.store.List()
	if err != nil {
		return nil, err
	}
	out := make([]*Document, 0, len(list))
	for _, d := range list {
		doc, err := s.store.Open(d.ID)
		if err != nil {
			return out, err
		}
		out = append(out, doc)
	}
	return out, nil
}

// SyncScenes registers every new scene header of a buffer in reg and returns how many were
// added. A script without headers returns fountain.ErrNoHeadersFound, logged as a warning.
func (s *Service) SyncScenes(ctx context.Context, id string, reg fountain.SceneRegistry) (int, error) {
	l := applog.WithOperation(s.log, "sync_scenes")
	doc, err := s.get(id)
	if err != nil {
		return 0, err
	}
	ctx = applog.WithDocumentContext(ctx, doc.ID)
	n, err := fountain.SyncScenes(fountain.ClassifyText(doc.Text), reg)
	switch {
	case errors.Is(err, fountain.ErrNoHeadersFound):
		l.WarnContext(ctx, "no scene headers found")
		return 0, err
	case err != nil:
		l.ErrorContext(ctx, "scene sync failed", slog.Int("created", n), slog.Any("err", err))
		return n, err
	}
	l.InfoContext(ctx, "scenes synced", slog.Int("created", n))
	return n, nil
}
