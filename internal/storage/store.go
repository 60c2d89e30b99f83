/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package storage

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"sync"

	"screenwriter/internal/document"
	applog "screenwriter/internal/log"
)

// WorkspaceStore keeps buffers in a workspace: metadata in the manifest, text in buffers/<id>.txt.
// It implements document.Store.
type WorkspaceStore struct {
	document.Hooks
	mu  sync.Mutex
	ws  *Workspace
	log *slog.Logger
}

var _ document.Store = (*WorkspaceStore)(nil)

// NewWorkspaceStore wraps an opened workspace.
func NewWorkspaceStore(ws *Workspace) *WorkspaceStore {
	return &WorkspaceStore{ws: ws, log: applog.WithComponent("storage").With(slog.String("root", ws.Root))}
}

// Workspace returns the underlying workspace.
func (s *WorkspaceStore) Workspace() *Workspace { return s.ws }

func (s *WorkspaceStore) Create(name, text string) (*document.Document, error) {
	d := &document.Document{ID: document.NewID(), Name: name, Text: text}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.writeBuffer(d); err != nil {
		return nil, err
	}
	s.ws.Manifest.Documents = append(s.ws.Manifest.Documents, meta(d))
	if err := Save(s.ws); err != nil {
		s.ws.Manifest.Documents = s.ws.Manifest.Documents[:len(s.ws.Manifest.Documents)-1]
		_ = os.Remove(s.ws.BufferPath(d.ID))
		return nil, err
	}
	s.log.Debug("buffer created", slog.String("doc", d.ID), slog.String("name", name))
	return d, nil
}

func (s *WorkspaceStore) Load(id string) (*document.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load(id)
}

func (s *WorkspaceStore) load(id string) (*document.Document, error) {
	_, m := s.find(id)
	if m == nil {
		return nil, fmt.Errorf("%w: %s", document.ErrNoActiveDocument, id)
	}
	b, err := os.ReadFile(s.ws.BufferPath(id))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("read buffer %s: %w", id, err)
	}
	d := m.Clone()
	d.Text = string(b)
	return d, nil
}

func (s *WorkspaceStore) Open(id string) (*document.Document, error) {
	d, err := s.Load(id)
	if err != nil {
		return nil, err
	}
	s.Fire(d)
	// Hooks may have saved a new version.
	return s.Load(id)
}

// Save writes the buffer text and, when its metadata changed, the manifest.
func (s *WorkspaceStore) Save(doc *document.Document) error {
	if doc == nil || doc.ID == "" {
		return document.ErrNoActiveDocument
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	i, m := s.find(doc.ID)
	if m == nil {
		return fmt.Errorf("%w: %s", document.ErrNoActiveDocument, doc.ID)
	}
	if err := s.writeBuffer(doc); err != nil {
		return err
	}
	next := meta(doc)
	if *next == *m {
		return nil
	}
	s.ws.Manifest.Documents[i] = next
	if err := Save(s.ws); err != nil {
		s.ws.Manifest.Documents[i] = m
		return err
	}
	return nil
}

// List returns all buffers ordered by name, text included. It does not fire hooks.
func (s *WorkspaceStore) List() ([]*document.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*document.Document, 0, len(s.ws.Manifest.Documents))
	for _, m := range s.ws.Manifest.Documents {
		d, err := s.load(m.ID)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (s *WorkspaceStore) find(id string) (int, *document.Document) {
	for i, m := range s.ws.Manifest.Documents {
		if m.ID == id {
			return i, m
		}
	}
	return -1, nil
}

func (s *WorkspaceStore) writeBuffer(d *document.Document) error {
	if err := os.MkdirAll(s.ws.BuffersDir(), 0o755); err != nil {
		return fmt.Errorf("ensure buffers dir: %w", err)
	}
	if err := replaceFile(s.ws.BufferPath(d.ID), []byte(d.Text)); err != nil {
		return fmt.Errorf("write buffer %s: %w", d.ID, err)
	}
	return nil
}

// meta is the manifest entry for d: everything but text and dirty state.
func meta(d *document.Document) *document.Document {
	return &document.Document{ID: d.ID, Name: d.Name, Path: d.Path, Formatted: d.Formatted}
}
