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
	"time"

	"screenwriter/internal/fountain"
)

// language=SQL
// dialect=SQLite
const hasSceneSQL = `SELECT 1 FROM scenes WHERE name = ?`

// language=SQL
// dialect=SQLite
const insertSceneSQL = `INSERT INTO scenes(name, created_at) VALUES (?, ?)`

// language=SQL
// dialect=SQLite
const listScenesSQL = `SELECT name FROM scenes ORDER BY rowid`

// SceneRegistry is the workspace scene registry kept in the index. It implements
// fountain.SceneRegistry; lookups are exact and case-sensitive.
type SceneRegistry struct {
	ctx context.Context
	db  *sql.DB
}

var _ fountain.SceneRegistry = (*SceneRegistry)(nil)

// Scenes returns the registry bound to ctx.
func (ix *Index) Scenes(ctx context.Context) *SceneRegistry {
	return &SceneRegistry{ctx: ctx, db: ix.db}
}

func (r *SceneRegistry) Has(name string) (bool, error) {
	var one int
	err := r.db.QueryRowContext(r.ctx, hasSceneSQL, name).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("lookup scene: %w", err)
	}
	return true, nil
}

func (r *SceneRegistry) Add(name string) error {
	if _, err := r.db.ExecContext(r.ctx, insertSceneSQL, name, time.Now().UTC().Format(time.RFC3339Nano)); err != nil {
		return fmt.Errorf("add scene %q: %w", name, err)
	}
	return nil
}

// Names returns every registered scene in registration order.
func (r *SceneRegistry) Names() ([]string, error) {
	rows, err := r.db.QueryContext(r.ctx, listScenesSQL)
	if err != nil {
		return nil, fmt.Errorf("list scenes: %w", err)
	}
	defer rows.Close()
	var out []string
	for rows.Next() {
		var n string
		if err := rows.Scan(&n); err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, rows.Err()
}
