/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
)

// SearchQuery describes a search over indexed elements.
// Text is matched with SQLite FTS5. Unless Raw is set every word is quoted, so punctuation such
// as the colon in "CUT TO:" is matched literally instead of being read as FTS syntax.
// Types restricts to element type names (HEADER, CHARACTER, ...). DocID restricts to one buffer.
// Limit/Offset implement pagination; reasonable defaults applied if zero.
type SearchQuery struct {
	Text   string
	Raw    bool
	Types  []string
	DocID  string
	Limit  int
	Offset int
}

// SearchResult is a single matching line. Snippet marks matches with [ ] when Text was used.
type SearchResult struct {
	DocID   string
	Line    int
	Type    string
	Text    string
	Snippet string
}

// Search opens the workspace index at root and runs q.
func Search(ctx context.Context, root string, q SearchQuery) ([]SearchResult, error) {
	if strings.TrimSpace(root) == "" {
		return nil, errors.New("workspace root is required")
	}
	db, err := InitOrOpenIndex(root)
	if err != nil {
		return nil, err
	}
	defer db.Close()
	return searchDB(ctx, db, q)
}

// Search runs q against the index.
func (ix *Index) Search(ctx context.Context, q SearchQuery) ([]SearchResult, error) {
	return searchDB(ctx, ix.db, q)
}

func searchDB(ctx context.Context, db *sql.DB, q SearchQuery) ([]SearchResult, error) {
	var args []any
	var sb strings.Builder
	match := strings.TrimSpace(q.Text)
	if match != "" && !q.Raw {
		match = quoteTerms(match)
	}
	if match != "" {
		sb.WriteString("SELECT e.doc_id, e.line, e.type, e.text, snippet(fts_elements, 0, '[', ']', '...', 10)\n")
		sb.WriteString("FROM fts_elements JOIN elements e ON fts_elements.rowid = e.id\n")
		sb.WriteString("WHERE fts_elements MATCH ?\n")
		args = append(args, match)
	} else {
		sb.WriteString("SELECT e.doc_id, e.line, e.type, e.text, ''\n")
		sb.WriteString("FROM elements e\nWHERE 1=1\n")
	}
	if len(q.Types) > 0 {
		sb.WriteString(" AND e.type IN (" + placeholders(len(q.Types)) + ")\n")
		for _, t := range q.Types {
			args = append(args, strings.ToUpper(strings.TrimSpace(t)))
		}
	}
	if s := strings.TrimSpace(q.DocID); s != "" {
		sb.WriteString(" AND e.doc_id = ?\n")
		args = append(args, s)
	}
	limit := q.Limit
	if limit <= 0 {
		limit = 100
	}
	if q.Offset < 0 {
		q.Offset = 0
	}
	sb.WriteString("ORDER BY e.doc_id, e.line\n")
	sb.WriteString("LIMIT ? OFFSET ?")
	args = append(args, limit, q.Offset)

	rows, err := db.QueryContext(ctx, sb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("search query: %w", err)
	}
	defer rows.Close()
	var out []SearchResult
	for rows.Next() {
		var r SearchResult
		var sn sql.NullString
		if err := rows.Scan(&r.DocID, &r.Line, &r.Type, &r.Text, &sn); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		if sn.Valid {
			r.Snippet = sn.String
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// quoteTerms turns free text into an FTS5 query that matches every word as a literal string.
func quoteTerms(s string) string {
	fields := strings.Fields(s)
	for i, f := range fields {
		fields[i] = `"` + strings.ReplaceAll(f, `"`, `""`) + `"`
	}
	return strings.Join(fields, " ")
}

func placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	b := strings.Builder{}
	for i := 0; i < n; i++ {
		if i > 0 {
			b.WriteString(",")
		}
		b.WriteString("?")
	}
	return b.String()
}
