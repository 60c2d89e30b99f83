/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package document

import (
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"
)

// Store holds the buffers.
// Load hands out a copy; Open does the same and then runs the OnOpened hooks on that copy.
// Save replaces the stored buffer.
type Store interface {
	Create(name, text string) (*Document, error)
	Load(id string) (*Document, error)
	Open(id string) (*Document, error)
	Save(doc *Document) error
	List() ([]*Document, error)
	OnOpened(fn func(*Document))
}

// Files is the file boundary used by import, export and save.
type Files interface {
	ReadText(path string) (string, error)
	WriteText(path, text string) error
}

// Hooks keeps opened callbacks for Store implementations.
type Hooks struct {
	mu  sync.Mutex
	fns []func(*Document)
}

// OnOpened registers fn to run each time a document is loaded.
func (h *Hooks) OnOpened(fn func(*Document)) {
	h.mu.Lock()
	h.fns = append(h.fns, fn)
	h.mu.Unlock()
}

// Fire calls every registered hook with doc, in registration order.
func (h *Hooks) Fire(doc *Document) {
	h.mu.Lock()
	fns := append(([]func(*Document))(nil), h.fns...)
	h.mu.Unlock()
	for _, fn := range fns {
		fn(doc)
	}
}

// NewID returns a fresh document id.
func NewID() string { return uuid.NewString() }

// MemStore keeps buffers in memory.
type MemStore struct {
	Hooks
	mu   sync.RWMutex
	docs map[string]*Document
}

func NewMemStore() *MemStore { return &MemStore{docs: map[string]*Document{}} }

func (s *MemStore) Create(name, text string) (*Document, error) {
	d := &Document{ID: NewID(), Name: name, Text: text}
	s.mu.Lock()
	s.docs[d.ID] = d.Clone()
	s.mu.Unlock()
	return d, nil
}

func (s *MemStore) Load(id string) (*Document, error) {
	s.mu.RLock()
	d, ok := s.docs[id]
	s.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNoActiveDocument, id)
	}
	return d.Clone(), nil
}

func (s *MemStore) Open(id string) (*Document, error) {
	d, err := s.Load(id)
	if err != nil {
		return nil, err
	}
	s.Fire(d)
	return d, nil
}

func (s *MemStore) Save(doc *Document) error {
	if doc == nil || doc.ID == "" {
		return ErrNoActiveDocument
	}
	s.mu.Lock()
	s.docs[doc.ID] = doc.Clone()
	s.mu.Unlock()
	return nil
}

// List returns copies of all buffers ordered by name. It does not fire hooks.
func (s *MemStore) List() ([]*Document, error) {
	s.mu.RLock()
	out := make([]*Document, 0, len(s.docs))
	for _, d := range s.docs {
		out = append(out, d.Clone())
	}
	s.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}
