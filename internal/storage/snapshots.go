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
	"time"
)

// language=SQL
// dialect=SQLite
const insertScriptSnapshotSQL = `INSERT INTO script_snapshots(doc_id, ts, text) VALUES (?, ?, ?)`

// language=SQL
// dialect=SQLite
const selectLatestScriptSnapshotSQL = `SELECT ts, text FROM script_snapshots WHERE doc_id = ? ORDER BY ts DESC, id DESC LIMIT 1`

// language=SQL
// dialect=SQLite
const listScriptSnapshotsSQL = `SELECT ts, text FROM script_snapshots WHERE doc_id = ? ORDER BY ts DESC, id DESC LIMIT ?`

// language=SQL
// dialect=SQLite
const pruneOldScriptSnapshotsSQL = `DELETE FROM script_snapshots WHERE doc_id = ? AND id NOT IN (
	SELECT id FROM script_snapshots WHERE doc_id = ? ORDER BY ts DESC, id DESC LIMIT ?
)`

// snapshotTimeLayout has a fixed width so timestamps sort as text.
const snapshotTimeLayout = "2006-01-02T15:04:05.000000000Z"

// Snapshot is one saved version of a buffer's text.
type Snapshot struct {
	TS   time.Time
	Text string
}

// SaveSnapshot stores text as the newest version of docID unless it equals the latest one.
// It reports whether a row was written.
// The index is derived data; this history is for change tracking, not canonical storage.
func (ix *Index) SaveSnapshot(ctx context.Context, docID, text string, ts time.Time) (bool, error) {
	latest, ok, err := ix.LatestSnapshot(ctx, docID)
	if err != nil {
		return false, err
	}
	if ok && latest.Text == text {
		return false, nil
	}
	if _, err := ix.db.ExecContext(ctx, insertScriptSnapshotSQL, docID, ts.UTC().Format(snapshotTimeLayout), text); err != nil {
		return false, err
	}
	return true, nil
}

// LatestSnapshot returns the newest snapshot of docID; ok is false when there is none.
func (ix *Index) LatestSnapshot(ctx context.Context, docID string) (Snapshot, bool, error) {
	var tsStr, txt string
	err := ix.db.QueryRowContext(ctx, selectLatestScriptSnapshotSQL, docID).Scan(&tsStr, &txt)
	if errors.Is(err, sql.ErrNoRows) {
		return Snapshot{}, false, nil
	}
	if err != nil {
		return Snapshot{}, false, err
	}
	ts, _ := time.Parse(snapshotTimeLayout, tsStr)
	return Snapshot{TS: ts, Text: txt}, true, nil
}

// ListSnapshots returns up to limit most recent snapshots of docID, newest first.
func (ix *Index) ListSnapshots(ctx context.Context, docID string, limit int) ([]Snapshot, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := ix.db.QueryContext(ctx, listScriptSnapshotsSQL, docID, limit)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var out []Snapshot
	for rows.Next() {
		var tsStr, txt string
		if err := rows.Scan(&tsStr, &txt); err != nil {
			return nil, err
		}
		ts, _ := time.Parse(snapshotTimeLayout, tsStr)
		out = append(out, Snapshot{TS: ts, Text: txt})
	}
	return out, rows.Err()
}

// PruneSnapshots keeps at most keepLast snapshots of docID and deletes older ones.
func (ix *Index) PruneSnapshots(ctx context.Context, docID string, keepLast int) (int64, error) {
	if keepLast <= 0 {
		return 0, nil
	}
	res, err := ix.db.ExecContext(ctx, pruneOldScriptSnapshotsSQL, docID, docID, keepLast)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
