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
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"screenwriter/internal/backend"
	"screenwriter/internal/crash"
	"screenwriter/internal/document"
	"screenwriter/internal/export"
	"screenwriter/internal/fountain"
	"screenwriter/internal/outline"
	"screenwriter/internal/storage"
	"screenwriter/internal/version"
)

type VersionCmd struct{}

func (c *VersionCmd) Run(a *app) error {
	_, err := fmt.Fprintln(a.out, "screenwriter", version.String())
	return err
}

// scratch returns a service over an in-memory store, for commands that work on a single file.
func scratch(autoFormat bool) (*document.Service, error) {
	return document.NewService(document.NewMemStore(), &storage.Files{}, document.Options{AutoFormat: autoFormat})
}

type ClassifyCmd struct {
	File string `arg:"" help:"Script file" type:"existingfile"`
	JSON bool   `help:"One JSON object per element"`
}

func (c *ClassifyCmd) Run(a *app) error {
	text, err := (&storage.Files{}).ReadText(c.File)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(a.out)
	for _, e := range fountain.ClassifyText(text) {
		if c.JSON {
			if err := enc.Encode(map[string]any{"line": e.Line, "type": e.Type.String(), "content": e.Content}); err != nil {
				return err
			}
			continue
		}
		if _, err := fmt.Fprintf(a.out, "%5d  %-13s  %s\n", e.Line, e.Type, e.Content); err != nil {
			return err
		}
	}
	return nil
}

type FormatCmd struct {
	File string `arg:"" help:"Script file" type:"existingfile"`
	Out  string `short:"o" help:"Write the formatted script here instead of stdout" type:"path"`
}

func (c *FormatCmd) Run(a *app) error {
	svc, err := scratch(false)
	if err != nil {
		return err
	}
	doc, err := svc.Import(a.ctx, c.File)
	if err != nil {
		return err
	}
	if c.Out == "" {
		_, err = fmt.Fprint(a.out, doc.Text)
		return err
	}
	return (&storage.Files{}).WriteText(c.Out, doc.Text)
}

type LineCmd struct {
	File  string `arg:"" help:"Script file" type:"existingfile"`
	N     int    `arg:"" help:"Line number, starting at 1"`
	Type  string `arg:"" help:"HEADER, ACTION, CHARACTER, DIALOGUE, PARENTHETICAL or TRANSITION"`
	Write bool   `help:"Save the result back to the file (indentation stripped)"`
}

func (c *LineCmd) Run(a *app) error {
	t, err := fountain.ParseElementType(c.Type)
	if err != nil {
		return err
	}
	svc, err := scratch(false)
	if err != nil {
		return err
	}
	doc, err := svc.Import(a.ctx, c.File)
	if err != nil {
		return err
	}
	doc, err = svc.FormatLine(a.ctx, doc.ID, c.N-1, t)
	if err != nil {
		return err
	}
	if c.Write {
		_, err = svc.Save(a.ctx, doc.ID)
		return err
	}
	_, err = fmt.Fprint(a.out, doc.Text)
	return err
}

type OutlineCmd struct {
	File       string `arg:"" help:"Script file" type:"existingfile"`
	Characters bool   `help:"Print per-character totals instead of scenes"`
}

func (c *OutlineCmd) Run(a *app) error {
	text, err := (&storage.Files{}).ReadText(c.File)
	if err != nil {
		return err
	}
	o := outline.FromText(text)
	if c.Characters {
		for _, st := range o.Characters() {
			_, _ = fmt.Fprintf(a.out, "%-24s %3d speeches %5d words %3d scenes\n", st.Name, st.Speeches, st.Words, st.Scenes)
		}
		return nil
	}
	for i, sc := range o.Scenes {
		_, _ = fmt.Fprintf(a.out, "%3d. %s\n", i+1, sc.Title)
		for _, sp := range sc.Speeches {
			first, _, _ := strings.Cut(sp.Text, "\n")
			_, _ = fmt.Fprintf(a.out, "       %s: %s\n", sp.Character, first)
		}
		if len(sc.Tags) > 0 {
			_, _ = fmt.Fprintf(a.out, "       tags: %s\n", strings.Join(sc.Tags, ", "))
		}
	}
	return nil
}

type PDFCmd struct {
	File        string `arg:"" help:"Script file" type:"existingfile"`
	Out         string `arg:"" help:"PDF output path" type:"path"`
	Title       string `help:"Document title"`
	Author      string `help:"Document author"`
	PageSize    string `default:"letter" enum:"letter,a4" help:"Page size"`
	PageNumbers bool   `default:"true" negatable:"" help:"Number pages from page 2"`
}

func (c *PDFCmd) Run(a *app) error {
	text, err := (&storage.Files{}).ReadText(c.File)
	if err != nil {
		return err
	}
	title := c.Title
	if title == "" {
		title = strings.TrimSuffix(filepath.Base(c.File), filepath.Ext(c.File))
	}
	pages, err := export.ExportPDF(text, c.Out, export.PDFOptions{
		Title: title, Author: c.Author, PageSize: c.PageSize, PageNumbers: c.PageNumbers,
	})
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(a.out, "Wrote %s (%d pages)\n", c.Out, pages)
	return err
}

type InitCmd struct {
	Dir  string `arg:"" help:"Workspace directory" type:"path"`
	Name string `help:"Workspace name (defaults to the directory name)"`
}

func (c *InitCmd) Run(a *app) error {
	abs, err := filepath.Abs(c.Dir)
	if err != nil {
		return err
	}
	ws, err := storage.InitWorkspace(abs, c.Name)
	if err != nil {
		return err
	}
	defer crash.Recover(ws)
	ix, err := storage.OpenIndex(ws.Root)
	if err != nil {
		return err
	}
	_ = ix.Close()
	a.log.Info("workspace created", slog.String("root", ws.Root), slog.String("name", ws.Manifest.Name))
	_, err = fmt.Fprintln(a.out, "Created workspace at", ws.Root)
	return err
}

type ImportCmd struct {
	Dir  string `arg:"" help:"Workspace directory" type:"path"`
	File string `arg:"" help:".fountain file" type:"existingfile"`
}

func (c *ImportCmd) Run(a *app) error {
	s, err := a.openSession(c.Dir)
	if err != nil {
		return err
	}
	defer s.Close()
	defer crash.Recover(s.ws)
	abs, err := filepath.Abs(c.File)
	if err != nil {
		return err
	}
	doc, err := s.svc.Import(a.ctx, abs)
	if err != nil {
		return err
	}
	if err := s.ix.IndexDocument(a.ctx, doc.ID, fountain.ClassifyText(doc.Text)); err != nil {
		return err
	}
	_, err = fmt.Fprintf(a.out, "%s\t%s\n", doc.ID, doc.Name)
	return err
}

type ExportCmd struct {
	Dir string `arg:"" help:"Workspace directory" type:"path"`
	ID  string `arg:"" help:"Buffer id"`
	Out string `arg:"" help:"Output path; .fountain is added when missing" type:"path"`
}

func (c *ExportCmd) Run(a *app) error {
	s, err := a.openSession(c.Dir)
	if err != nil {
		return err
	}
	defer s.Close()
	defer crash.Recover(s.ws)
	path, err := s.svc.Export(a.ctx, c.ID, c.Out)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(a.out, "Exported to", path)
	return err
}

type SaveCmd struct {
	Dir string `arg:"" help:"Workspace directory" type:"path"`
	ID  string `arg:"" help:"Buffer id"`
}

func (c *SaveCmd) Run(a *app) error {
	s, err := a.openSession(c.Dir)
	if err != nil {
		return err
	}
	defer s.Close()
	defer crash.Recover(s.ws)
	doc, err := s.svc.Save(a.ctx, c.ID)
	if err != nil {
		return err
	}
	if err := s.ix.IndexDocument(a.ctx, doc.ID, fountain.ClassifyText(doc.Text)); err != nil {
		return err
	}
	if _, err := s.ix.SaveSnapshot(a.ctx, doc.ID, doc.Text, time.Now()); err != nil {
		return err
	}
	if _, err := s.ix.PruneSnapshots(a.ctx, doc.ID, a.cfg.General.SnapshotKeep); err != nil {
		a.log.Warn("snapshot prune failed", slog.Any("err", err))
	}
	_, err = fmt.Fprintln(a.out, "Saved", doc.Path)
	return err
}

type OpenCmd struct {
	Dir string `arg:"" optional:"" help:"Workspace directory (defaults to SCW_WORKSPACE)" type:"path"`
}

func (c *OpenCmd) Run(a *app) error {
	s, err := a.openSession(c.Dir)
	if err != nil {
		return err
	}
	defer s.Close()
	defer crash.Recover(s.ws)
	docs, err := s.svc.OpenAll(a.ctx)
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintf(a.out, "Workspace: %s (%s)\n", s.ws.Manifest.Name, s.ws.Root)
	for _, d := range docs {
		if err := s.ix.IndexDocument(a.ctx, d.ID, fountain.ClassifyText(d.Text)); err != nil {
			return err
		}
		mark := " "
		if d.Formatted {
			mark = "F"
		}
		if _, err := fmt.Fprintf(a.out, "%s  %s  %-30s %s\n", mark, d.ID, d.Name, d.Path); err != nil {
			return err
		}
	}
	return nil
}

type ScenesCmd struct {
	Dir  string `arg:"" help:"Workspace directory" type:"path"`
	ID   string `arg:"" help:"Buffer id"`
	List bool   `help:"Print every registered scene afterwards"`
}

func (c *ScenesCmd) Run(a *app) error {
	s, err := a.openSession(c.Dir)
	if err != nil {
		return err
	}
	defer s.Close()
	defer crash.Recover(s.ws)
	reg, release, err := a.registry(a.ctx, s.ix)
	if err != nil {
		return err
	}
	defer release()
	n, err := s.svc.SyncScenes(a.ctx, c.ID, reg)
	if errors.Is(err, fountain.ErrNoHeadersFound) {
		_, err = fmt.Fprintln(a.out, "No scene headers found.")
		return err
	}
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintf(a.out, "Created %d scene(s)\n", n)
	if !c.List {
		return nil
	}
	names, err := reg.Names()
	if err != nil {
		return err
	}
	for _, name := range names {
		_, _ = fmt.Fprintln(a.out, " ", name)
	}
	return nil
}

type SearchCmd struct {
	Dir    string   `arg:"" help:"Workspace directory" type:"path"`
	Query  string   `arg:"" help:"Words to find"`
	Type   []string `short:"t" help:"Restrict to element types (repeatable)"`
	Doc    string   `help:"Restrict to one buffer id"`
	Raw    bool     `help:"Pass the query to the search engine unquoted"`
	Limit  int      `default:"50"`
	Offset int      `default:"0"`
	Remote bool     `help:"Search the shared Postgres index instead of the workspace"`
}

func (c *SearchCmd) Run(a *app) error {
	s, err := a.openSession(c.Dir)
	if err != nil {
		return err
	}
	defer s.Close()
	defer crash.Recover(s.ws)
	types := make([]string, 0, len(c.Type))
	for _, t := range c.Type {
		et, err := fountain.ParseElementType(t)
		if err != nil {
			return err
		}
		types = append(types, et.String())
	}
	q := storage.SearchQuery{Text: c.Query, Raw: c.Raw, Types: types, DocID: c.Doc, Limit: c.Limit, Offset: c.Offset}
	var res []storage.SearchResult
	if c.Remote {
		db, err := a.openPG(a.ctx)
		if err != nil {
			return err
		}
		defer db.Close()
		res, err = backend.SearchPG(a.ctx, db, s.ws.Manifest.Name, q)
		if err != nil {
			return err
		}
	} else {
		res, err = s.ix.Search(a.ctx, q)
		if err != nil {
			return err
		}
	}
	for _, r := range res {
		if _, err := fmt.Fprintf(a.out, "%s:%d  %-13s  %s\n", r.DocID, r.Line, r.Type, r.Snippet); err != nil {
			return err
		}
	}
	return nil
}

type SnapshotsCmd struct {
	Dir    string `arg:"" help:"Workspace directory" type:"path"`
	ID     string `arg:"" help:"Buffer id"`
	Limit  int    `default:"20"`
	Latest bool   `help:"Print the text of the newest snapshot"`
}

func (c *SnapshotsCmd) Run(a *app) error {
	s, err := a.openSession(c.Dir)
	if err != nil {
		return err
	}
	defer s.Close()
	defer crash.Recover(s.ws)
	if c.Latest {
		snap, ok, err := s.ix.LatestSnapshot(a.ctx, c.ID)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("no snapshots of %s", c.ID)
		}
		_, err = fmt.Fprint(a.out, snap.Text)
		return err
	}
	list, err := s.ix.ListSnapshots(a.ctx, c.ID, c.Limit)
	if err != nil {
		return err
	}
	for _, snap := range list {
		lines := len(fountain.Lines(snap.Text))
		if _, err := fmt.Fprintf(a.out, "%s  %d lines\n", snap.TS.Local().Format(time.DateTime), lines); err != nil {
			return err
		}
	}
	return nil
}

type RestoreCmd struct {
	Dir  string `arg:"" help:"Workspace directory" type:"path"`
	Path string `arg:"" help:"Script file whose backup to restore" type:"path"`
	List bool   `help:"Only list the backups, newest first"`
}

func (c *RestoreCmd) Run(a *app) error {
	root, err := a.workspaceDir(c.Dir)
	if err != nil {
		return err
	}
	ws, err := storage.Open(root)
	if err != nil {
		return err
	}
	defer crash.Recover(ws)
	files := storage.NewFiles(ws)
	if c.List {
		list, err := files.Backups(c.Path)
		if err != nil {
			return err
		}
		for _, b := range list {
			_, _ = fmt.Fprintln(a.out, b)
		}
		return nil
	}
	if err := files.Restore(c.Path); err != nil {
		return err
	}
	_, err = fmt.Fprintln(a.out, "Restored", c.Path)
	return err
}

type ReindexCmd struct {
	Dir string `arg:"" help:"Workspace directory" type:"path"`
}

func (c *ReindexCmd) Run(a *app) error {
	root, err := a.workspaceDir(c.Dir)
	if err != nil {
		return err
	}
	ws, err := storage.Open(root)
	if err != nil {
		return err
	}
	defer crash.Recover(ws)
	if err := storage.RebuildIndex(a.ctx, ws); err != nil {
		return err
	}
	_, err = fmt.Fprintln(a.out, "Index rebuilt")
	return err
}

type BundleCmd struct {
	Dir string `arg:"" help:"Workspace directory" type:"path"`
	Out string `arg:"" help:"Zip file to write" type:"path"`
}

func (c *BundleCmd) Run(a *app) error {
	root, err := a.workspaceDir(c.Dir)
	if err != nil {
		return err
	}
	ws, err := storage.Open(root)
	if err != nil {
		return err
	}
	defer crash.Recover(ws)
	n, err := storage.ExportBundle(ws, c.Out)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(a.out, "Bundled %d document(s) into %s\n", n, c.Out)
	return err
}

type UnbundleCmd struct {
	Zip string `arg:"" help:"Bundle to unpack" type:"existingfile"`
	Dir string `arg:"" help:"New workspace directory" type:"path"`
}

func (c *UnbundleCmd) Run(a *app) error {
	abs, err := filepath.Abs(c.Dir)
	if err != nil {
		return err
	}
	ws, err := storage.ImportBundle(abs, c.Zip)
	if err != nil {
		return err
	}
	defer crash.Recover(ws)
	if err := storage.RebuildIndex(a.ctx, ws); err != nil {
		return err
	}
	_, err = fmt.Fprintf(a.out, "Unpacked %d document(s) into %s\n", len(ws.Manifest.Documents), ws.Root)
	return err
}

func (a *app) openPG(ctx context.Context) (*sql.DB, error) {
	if a.cfg.Registry.DSN == "" {
		return nil, errors.New("postgres DSN is required (SCW_PG_DSN or keyring)")
	}
	return backend.Open(ctx, a.cfg.Registry.DSN)
}

type PublishCmd struct {
	Dir string `arg:"" help:"Workspace directory" type:"path"`
	ID  string `arg:"" help:"Buffer id"`
}

func (c *PublishCmd) Run(a *app) error {
	s, err := a.openSession(c.Dir)
	if err != nil {
		return err
	}
	defer s.Close()
	defer crash.Recover(s.ws)
	doc, err := s.store.Load(c.ID)
	if err != nil {
		return err
	}
	db, err := a.openPG(a.ctx)
	if err != nil {
		return err
	}
	defer db.Close()
	els := fountain.ClassifyText(doc.Text)
	if err := backend.PublishDocument(a.ctx, db, s.ws.Manifest.Name, doc.ID, els); err != nil {
		return err
	}
	_, err = fmt.Fprintf(a.out, "Published %d elements of %s\n", len(els), doc.Name)
	return err
}

type ServeCmd struct {
	Addr   string `help:"Listen address (defaults to server.addr)"`
	Memory bool   `help:"Keep scenes in memory instead of Postgres"`
}

func (c *ServeCmd) Run(a *app) error {
	addr := c.Addr
	if addr == "" {
		addr = a.cfg.Server.Addr
	}
	if c.Memory || a.cfg.Registry.Driver == "memory" {
		mem := backend.NewMemory()
		srv := backend.NewServer(func(context.Context) backend.Registry { return mem }, nil, a.cfg.Server.Secret)
		return srv.Run(a.ctx, addr)
	}
	db, err := a.openPG(a.ctx)
	if err != nil {
		return err
	}
	defer db.Close()
	return backend.Serve(a.ctx, db, addr, a.cfg.Server.Secret)
}

type TokenCmd struct {
	Subject string        `default:"dev" help:"Token subject"`
	TTL     time.Duration `default:"1h" help:"Token lifetime"`
}

func (c *TokenCmd) Run(a *app) error {
	if a.cfg.Registry.URL == "" {
		return errors.New("registry url is required (SCW_REGISTRY_URL)")
	}
	tok, err := backend.NewClient(a.cfg.Registry.URL, "").RequestToken(a.ctx, c.Subject, c.TTL)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(a.out, tok)
	return err
}
