package storage

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/awantoch/geminiproxy/logger"
)

// SqliteStorage implements Storage using SQLite as the backend.
type SqliteStorage struct {
	sqlStorage
}

var _ Storage = (*SqliteStorage)(nil)

func NewSqliteStorage(ctx context.Context, dsn string) (*SqliteStorage, error) {
	// Only create parent directories for file-backed databases.
	if dsn != ":memory:" && dsn != "" && !strings.HasPrefix(dsn, "file:") {
		dir := filepath.Dir(dsn)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, logger.Errorf("failed to create db directory %q: %w", dir, err)
		}
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	if dsn == ":memory:" {
		// Each pooled connection would otherwise get its own empty database.
		db.SetMaxOpenConns(1)
	}
	s := &SqliteStorage{sqlStorage{
		db: db,
		insertStmt: `
INSERT INTO exchanges (id, request_id, model, status, outcome, duration_ns, at_ms, error)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		listStmt: `
SELECT id, request_id, model, status, outcome, duration_ns, at_ms, error
FROM exchanges ORDER BY at_ms DESC, rowid DESC LIMIT ?`,
	}}
	if err := s.migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}
