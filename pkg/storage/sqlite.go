package storage

import (
	"context"
	"database/sql"
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"
	_ "github.com/mattn/go-sqlite3"

	"github.com/goliatone/go-viewbuilder/pkg/model"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS views (
	id TEXT PRIMARY KEY,
	body TEXT NOT NULL,
	updated_at TIMESTAMP NOT NULL
);`

// SQLite stores schemas in a single views table.
type SQLite struct {
	db *sql.DB
}

// NewSQLite opens dsn (a file path or ":memory:") and ensures the table exists.
func NewSQLite(ctx context.Context, dsn string) (*SQLite, error) {
	if strings.TrimSpace(dsn) == "" {
		return nil, goerr.New("sqlite dsn is required")
	}
	if !strings.Contains(dsn, "?") && dsn != ":memory:" {
		dsn += "?_journal_mode=WAL&_busy_timeout=5000"
	}
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to open sqlite database", goerr.V("dsn", dsn))
	}
	// A single connection keeps ":memory:" databases shared across calls.
	db.SetMaxOpenConns(1)
	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		_ = db.Close()
		return nil, goerr.Wrap(err, "failed to create views table")
	}
	return &SQLite{db: db}, nil
}

func (s *SQLite) Save(ctx context.Context, id string, schema *model.ViewSchema) error {
	if err := ValidateID(id); err != nil {
		return err
	}
	data, err := encode(schema)
	if err != nil {
		return goerr.Wrap(err, "failed to encode view", goerr.V("id", id))
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO views (id, body, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET body = excluded.body, updated_at = excluded.updated_at`,
		id, string(data), time.Now().UTC())
	if err != nil {
		return goerr.Wrap(err, "failed to save view", goerr.V("id", id))
	}
	return nil
}

func (s *SQLite) Load(ctx context.Context, id string) (*model.ViewSchema, error) {
	if err := ValidateID(id); err != nil {
		return nil, err
	}
	var body string
	err := s.db.QueryRowContext(ctx, `SELECT body FROM views WHERE id = ?`, id).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, goerr.Wrap(err, "failed to load view", goerr.V("id", id))
	}
	schema, err := decode([]byte(body))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to decode view", goerr.V("id", id))
	}
	return schema, nil
}

func (s *SQLite) List(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id FROM views`)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list views")
	}
	defer rows.Close()

	ids := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, goerr.Wrap(err, "failed to scan view id")
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, goerr.Wrap(err, "failed to iterate views")
	}
	sort.Strings(ids)
	return ids, nil
}

func (s *SQLite) Delete(ctx context.Context, id string) error {
	if err := ValidateID(id); err != nil {
		return err
	}
	if _, err := s.db.ExecContext(ctx, `DELETE FROM views WHERE id = ?`, id); err != nil {
		return goerr.Wrap(err, "failed to delete view", goerr.V("id", id))
	}
	return nil
}

// Close closes the database.
func (s *SQLite) Close() error {
	return s.db.Close()
}
