package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/awantoch/geminiproxy/model"
)

// sqlStorage holds the queries shared by the sqlite and postgres backends.
// Only the placeholder syntax differs.
type sqlStorage struct {
	db         *sql.DB
	insertStmt string
	listStmt   string
}

const createExchangesTable = `
CREATE TABLE IF NOT EXISTS exchanges (
	id TEXT PRIMARY KEY,
	request_id TEXT NOT NULL,
	model TEXT,
	status INTEGER NOT NULL,
	outcome TEXT NOT NULL,
	duration_ns BIGINT NOT NULL,
	at_ms BIGINT NOT NULL,
	error TEXT
);
CREATE INDEX IF NOT EXISTS exchanges_at_idx ON exchanges (at_ms);
`

func (s *sqlStorage) migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, createExchangesTable); err != nil {
		return fmt.Errorf("failed to create exchanges table: %w", err)
	}
	return nil
}

func (s *sqlStorage) Record(ctx context.Context, ex *model.Exchange) error {
	_, err := s.db.ExecContext(ctx, s.insertStmt,
		ex.ID.String(),
		ex.RequestID,
		ex.Model,
		ex.Status,
		string(ex.Outcome),
		int64(ex.Duration),
		ex.At.UnixMilli(),
		ex.Error,
	)
	if err != nil {
		return fmt.Errorf("failed to save exchange %s: %w", ex.ID, err)
	}
	return nil
}

func (s *sqlStorage) List(ctx context.Context, limit int) ([]*model.Exchange, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.QueryContext(ctx, s.listStmt, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list exchanges: %w", err)
	}
	defer rows.Close()

	var out []*model.Exchange
	for rows.Next() {
		var (
			id, outcome      string
			modelName, errS  sql.NullString
			durationNs, atMs int64
			ex               model.Exchange
		)
		if err := rows.Scan(&id, &ex.RequestID, &modelName, &ex.Status, &outcome, &durationNs, &atMs, &errS); err != nil {
			return nil, err
		}
		parsed, err := uuid.Parse(id)
		if err != nil {
			return nil, fmt.Errorf("invalid exchange id %q: %w", id, err)
		}
		ex.ID = parsed
		ex.Model = modelName.String
		ex.Outcome = model.Outcome(outcome)
		ex.Duration = time.Duration(durationNs)
		ex.At = time.UnixMilli(atMs).UTC()
		ex.Error = errS.String
		out = append(out, &ex)
	}
	return out, rows.Err()
}

func (s *sqlStorage) Close() error {
	return s.db.Close()
}
