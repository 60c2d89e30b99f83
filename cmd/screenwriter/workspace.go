/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"screenwriter/internal/backend"
	"screenwriter/internal/document"
	"screenwriter/internal/storage"
)

// session is an opened workspace with its index and document service.
type session struct {
	ws    *storage.Workspace
	store *storage.WorkspaceStore
	files *storage.Files
	ix    *storage.Index
	svc   *document.Service
}

func (a *app) workspaceDir(dir string) (string, error) {
	if strings.TrimSpace(dir) == "" {
		dir = a.cfg.General.Workspace
	}
	if strings.TrimSpace(dir) == "" {
		return "", errors.New("workspace directory is required (argument or SCW_WORKSPACE)")
	}
	return filepath.Abs(dir)
}

// openSession opens the workspace at dir, repairing its index first when it is corrupt.
func (a *app) openSession(dir string) (*session, error) {
	root, err := a.workspaceDir(dir)
	if err != nil {
		return nil, err
	}
	ws, err := storage.Open(root)
	if err != nil {
		return nil, err
	}
	if rebuilt, err := storage.DetectAndRebuildIndex(a.ctx, ws); err != nil {
		return nil, err
	} else if rebuilt {
		a.log.Warn("index was corrupt and has been rebuilt", slog.String("root", root))
	}
	if err := storage.BuildIndexIfEmpty(a.ctx, ws); err != nil {
		return nil, err
	}
	ix, err := storage.OpenIndex(root)
	if err != nil {
		return nil, err
	}
	store := storage.NewWorkspaceStore(ws)
	files := storage.NewFiles(ws)
	svc, err := document.NewService(store, files, document.Options{
		AutoFormat: a.cfg.General.AutoFormat,
		CacheSize:  a.cfg.General.RenderCacheSize,
	})
	if err != nil {
		_ = ix.Close()
		return nil, err
	}
	return &session{ws: ws, store: store, files: files, ix: ix, svc: svc}, nil
}

func (s *session) Close() error { return s.ix.Close() }

// registry returns the scene registry selected by the registry driver. release frees what the
// registry holds and is never nil.
func (a *app) registry(ctx context.Context, ix *storage.Index) (reg backend.Registry, release func(), err error) {
	nop := func() {}
	switch a.cfg.Registry.Driver {
	case "", "sqlite":
		return ix.Scenes(ctx), nop, nil
	case "memory":
		return backend.NewMemory(), nop, nil
	case "postgres":
		db, err := a.openPG(ctx)
		if err != nil {
			return nil, nop, err
		}
		return backend.NewPGRegistry(ctx, db), func() { _ = db.Close() }, nil
	case "http":
		if a.cfg.Registry.URL == "" {
			return nil, nop, errors.New("registry url is required for the http driver (SCW_REGISTRY_URL)")
		}
		return backend.NewClient(a.cfg.Registry.URL, a.cfg.Registry.Token).Registry(ctx), nop, nil
	}
	return nil, nop, fmt.Errorf("unknown registry driver %q", a.cfg.Registry.Driver)
}
