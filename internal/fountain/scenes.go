/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package fountain

import (
	"errors"
	"strings"
	"sync"
)

// MaxSceneNameLen is the longest scene identifier a registry receives, in characters.
const MaxSceneNameLen = 63

// ErrNoHeadersFound is returned by SyncScenes when the script has no scene headers.
// It is a warning: nothing was created and nothing is broken.
var ErrNoHeadersFound = errors.New("no scene headers found")

// SceneRegistry is the set of named scenes kept by the host.
type SceneRegistry interface {
	Has(name string) (bool, error)
	Add(name string) error
}

// SceneName turns header content into a scene identifier: trimmed and cut to MaxSceneNameLen.
func SceneName(content string) string {
	s := strings.TrimSpace(content)
	r := []rune(s)
	if len(r) > MaxSceneNameLen {
		return string(r[:MaxSceneNameLen])
	}
	return s
}

// SceneHeaders returns the content of every Header element in order, duplicates included.
func SceneHeaders(elements []Element) []string {
	var out []string
	for _, el := range elements {
		if el.Type == Header {
			out = append(out, el.Content)
		}
	}
	return out
}

// SyncScenes adds one scene per distinct header name not already in reg and returns how many
// were added. Names compare exactly, case included.
func SyncScenes(elements []Element, reg SceneRegistry) (int, error) {
	headers := SceneHeaders(elements)
	if len(headers) == 0 {
		return 0, ErrNoHeadersFound
	}
	created := 0
	seen := make(map[string]struct{}, len(headers))
	for _, h := range headers {
		name := SceneName(h)
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		exists, err := reg.Has(name)
		if err != nil {
			return created, err
		}
		if exists {
			continue
		}
		if err := reg.Add(name); err != nil {
			return created, err
		}
		created++
	}
	return created, nil
}

// MemoryRegistry is a SceneRegistry held in memory. The zero value is ready to use.
type MemoryRegistry struct {
	mu    sync.Mutex
	names []string
	set   map[string]struct{}
}

// NewMemoryRegistry returns a registry seeded with existing names.
func NewMemoryRegistry(existing ...string) *MemoryRegistry {
	r := &MemoryRegistry{}
	for _, n := range existing {
		_ = r.Add(n)
	}
	return r
}

func (r *MemoryRegistry) Has(name string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.set[name]
	return ok, nil
}

func (r *MemoryRegistry) Add(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.set == nil {
		r.set = map[string]struct{}{}
	}
	if _, ok := r.set[name]; ok {
		return nil
	}
	r.set[name] = struct{}{}
	r.names = append(r.names, name)
	return nil
}

// Names returns the registered names in insertion order.
func (r *MemoryRegistry) Names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.names...)
}
