package storage

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"
)

// PostgresStorage implements Storage on PostgreSQL via lib/pq.
type PostgresStorage struct {
	sqlStorage
}

var _ Storage = (*PostgresStorage)(nil)

func NewPostgresStorage(ctx context.Context, dsn string) (*PostgresStorage, error) {
	if dsn == "" {
		return nil, fmt.Errorf("postgres storage requires a dsn")
	}
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}
	s := &PostgresStorage{sqlStorage{
		db: db,
		insertStmt: `
INSERT INTO exchanges (id, request_id, model, status, outcome, duration_ns, at_ms, error)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		// LIMIT ALL is spelled NULL in postgres; a negative limit is an error.
		listStmt: `
SELECT id, request_id, model, status, outcome, duration_ns, at_ms, error
FROM exchanges ORDER BY at_ms DESC LIMIT NULLIF($1, -1)`,
	}}
	if err := s.migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}
