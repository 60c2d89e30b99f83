/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package backend

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"screenwriter/internal/fountain"
	"screenwriter/internal/storage"
)

// PublishDocument replaces the published elements of one buffer of a workspace.
func PublishDocument(ctx context.Context, db *sql.DB, workspace, docID string, elements []fountain.Element) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM elements WHERE workspace = $1 AND doc_id = $2`, workspace, docID); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("clear elements: %w", err)
	}
	ins, err := tx.PrepareContext(ctx, `INSERT INTO elements(workspace, doc_id, line, type, text) VALUES ($1, $2, $3, $4, $5)`)
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer func() { _ = ins.Close() }()
	for _, el := range elements {
		if _, err := ins.ExecContext(ctx, workspace, docID, el.Line, el.Type.String(), el.Content); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("insert element: %w", err)
		}
	}
	return tx.Commit()
}

// SearchPG executes a search over the published elements of a workspace using tsvector and
// returns results as storage.SearchResult, so local and shared search read the same.
func SearchPG(ctx context.Context, db *sql.DB, workspace string, q storage.SearchQuery) ([]storage.SearchResult, error) {
	var (
		args []any
		b    strings.Builder
	)
	place := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}
	if text := strings.TrimSpace(q.Text); text != "" {
		tq := place(text)
		b.WriteString("SELECT e.doc_id, e.line, e.type, e.text, ")
		b.WriteString("COALESCE(ts_headline('simple', e.text, plainto_tsquery('simple', " + tq + "), 'StartSel=[, StopSel=], MaxFragments=1, MaxWords=12'), '') ")
		b.WriteString("FROM elements e WHERE e.workspace = " + place(workspace) + " AND e.search_vector @@ plainto_tsquery('simple', " + tq + ") ")
	} else {
		b.WriteString("SELECT e.doc_id, e.line, e.type, e.text, '' ")
		b.WriteString("FROM elements e WHERE e.workspace = " + place(workspace) + " ")
	}
	if len(q.Types) > 0 {
		types := make([]string, len(q.Types))
		for i, t := range q.Types {
			types[i] = strings.ToUpper(strings.TrimSpace(t))
		}
		b.WriteString(" AND e.type = ANY (" + place(types) + ") ")
	}
	if s := strings.TrimSpace(q.DocID); s != "" {
		b.WriteString(" AND e.doc_id = " + place(s) + " ")
	}
	limit := q.Limit
	if limit <= 0 {
		limit = 100
	}
	offset := q.Offset
	if offset < 0 {
		offset = 0
	}
	b.WriteString(" ORDER BY e.doc_id, e.line ")
	b.WriteString(" LIMIT " + place(limit) + " OFFSET " + place(offset))

	rows, err := db.QueryContext(ctx, b.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("search pg query: %w", err)
	}
	defer func() { _ = rows.Close() }()
	var out []storage.SearchResult
	for rows.Next() {
		var r storage.SearchResult
		if err := rows.Scan(&r.DocID, &r.Line, &r.Type, &r.Text, &r.Snippet); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
