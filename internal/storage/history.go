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
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/cockroachdb/errors"
	_ "modernc.org/sqlite"

	applog "goteleprompter/internal/log"
)

const (
	HistoryDirName  = ".gtp"
	HistoryFileName = "history.sqlite"
	historyVersion  = 1
)

// Session is one finished playback run.
type Session struct {
	ID              string
	Title           string
	Entries         int
	Shown           int
	TotalSeconds    float64
	IntervalSeconds float64
	Reason          string
	StartedAt       time.Time
	EndedAt         time.Time
}

// History persists sessions in SQLite.
type History struct {
	db   *sql.DB
	path string
}

// OpenHistory opens or creates the history database below dir.
func OpenHistory(dir string) (*History, error) {
	if dir == "" {
		dir = "."
	}
	hdir := filepath.Join(dir, HistoryDirName)
	if err := os.MkdirAll(hdir, 0o755); err != nil {
		return nil, errors.Wrap(err, "create history dir")
	}
	path := filepath.Join(hdir, HistoryFileName)
	dsn := fmt.Sprintf("file:%s?cache=shared&_pragma=busy_timeout(5000)", filepath.ToSlash(path))
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, errors.Wrap(err, "open history db")
	}
	db.SetMaxOpenConns(1)
	if _, err := db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, "enable WAL")
	}
	if err := migrate(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	applog.WithComponent("storage").Debug("history opened", slog.String("path", path))
	return &History{db: db, path: path}, nil
}

// Path returns the database file path.
func (h *History) Path() string { return h.path }

func migrate(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS meta (key TEXT PRIMARY KEY, value TEXT NOT NULL);`,
		`CREATE TABLE IF NOT EXISTS sessions (
			id TEXT PRIMARY KEY,
			title TEXT NOT NULL,
			entries INTEGER NOT NULL,
			shown INTEGER NOT NULL,
			total_seconds REAL NOT NULL,
			interval_seconds REAL NOT NULL,
			reason TEXT NOT NULL,
			started_at TEXT NOT NULL,
			ended_at TEXT NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS sessions_started ON sessions(started_at);`,
	}
	for _, s := range stmts {
		if _, err := db.Exec(s); err != nil {
			return errors.Wrap(err, "migrate history")
		}
	}
	var v int
	err := db.QueryRow(`SELECT CAST(value AS INTEGER) FROM meta WHERE key='version'`).Scan(&v)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		_, err = db.Exec(`INSERT INTO meta(key, value) VALUES('version', ?)`, fmt.Sprint(historyVersion))
		return errors.Wrap(err, "write history version")
	case err != nil:
		return errors.Wrap(err, "read history version")
	case v > historyVersion:
		return errors.Newf("history schema version %d is newer than supported %d", v, historyVersion)
	}
	return nil
}

// Record stores a session. Recording the same ID twice replaces the row.
func (h *History) Record(ctx context.Context, s Session) error {
	if s.ID == "" {
		return errors.New("session without id")
	}
	_, err := h.db.ExecContext(ctx, `INSERT OR REPLACE INTO sessions
		(id, title, entries, shown, total_seconds, interval_seconds, reason, started_at, ended_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		s.ID, s.Title, s.Entries, s.Shown, s.TotalSeconds, s.IntervalSeconds, s.Reason,
		s.StartedAt.UTC().Format(time.RFC3339Nano), s.EndedAt.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return errors.Wrap(err, "record session")
	}
	return nil
}

// Recent returns up to limit sessions, newest first. limit <= 0 means 20.
func (h *History) Recent(ctx context.Context, limit int) ([]Session, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := h.db.QueryContext(ctx, `SELECT id, title, entries, shown, total_seconds, interval_seconds, reason, started_at, ended_at
		FROM sessions ORDER BY started_at DESC, id LIMIT ?`, limit)
	if err != nil {
		return nil, errors.Wrap(err, "query sessions")
	}
	defer rows.Close()
	var out []Session
	for rows.Next() {
		var s Session
		var started, ended string
		if err := rows.Scan(&s.ID, &s.Title, &s.Entries, &s.Shown, &s.TotalSeconds, &s.IntervalSeconds, &s.Reason, &started, &ended); err != nil {
			return nil, errors.Wrap(err, "scan session")
		}
		s.StartedAt, _ = time.Parse(time.RFC3339Nano, started)
		s.EndedAt, _ = time.Parse(time.RFC3339Nano, ended)
		out = append(out, s)
	}
	return out, errors.Wrap(rows.Err(), "iterate sessions")
}

// Close closes the database.
func (h *History) Close() error {
	if h == nil || h.db == nil {
		return nil
	}
	return h.db.Close()
}
