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
	"errors"
	"fmt"

	"screenwriter/internal/fountain"
)

// Registry is a scene registry that can also list its names.
type Registry interface {
	fountain.SceneRegistry
	Names() ([]string, error)
}

// Memory adapts a fountain.MemoryRegistry. Its names live only as long as the process.
type Memory struct{ *fountain.MemoryRegistry }

var _ Registry = Memory{}

func NewMemory(existing ...string) Memory { return Memory{fountain.NewMemoryRegistry(existing...)} }

func (m Memory) Names() ([]string, error) { return m.MemoryRegistry.Names(), nil }

// PGRegistry is the shared scene registry in Postgres. It implements fountain.SceneRegistry;
// every call runs under the context it was created with.
type PGRegistry struct {
	ctx context.Context
	db  *sql.DB
}

var _ Registry = (*PGRegistry)(nil)

func NewPGRegistry(ctx context.Context, db *sql.DB) *PGRegistry {
	return &PGRegistry{ctx: ctx, db: db}
}

func (r *PGRegistry) Has(name string) (bool, error) {
	var one int
	err := r.db.QueryRowContext(r.ctx, `SELECT 1 FROM scenes WHERE name = $1`, name).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("lookup scene: %w", err)
	}
	return true, nil
}

func (r *PGRegistry) Add(name string) error {
	if _, err := r.db.ExecContext(r.ctx, `INSERT INTO scenes(name) VALUES ($1)`, name); err != nil {
		return fmt.Errorf("add scene %q: %w", name, err)
	}
	return nil
}

// Names lists the registered scenes in registration order.
func (r *PGRegistry) Names() ([]string, error) {
	rows, err := r.db.QueryContext(r.ctx, `SELECT name FROM scenes ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list scenes: %w", err)
	}
	defer func() { _ = rows.Close() }()
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
