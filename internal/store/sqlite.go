package store

import (
	"context"
	"database/sql"

	_ "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"
)

const sqliteSchema = `CREATE TABLE IF NOT EXISTS kv (
	key   TEXT PRIMARY KEY,
	value TEXT NOT NULL
)`

// SQLite stores keys in a single-table sqlite database.
type SQLite struct {
	db *sql.DB
}

// NewSQLite opens the database file at path and ensures the schema exists.
func NewSQLite(ctx context.Context, path string) (*SQLite, error) {
	if path == "" {
		return nil, errors.New("sqlite store: empty path")
	}
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, errors.Wrap(err, "open sqlite")
	}
	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "init schema")
	}
	return &SQLite{db: db}, nil
}

func (s *SQLite) Get(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := s.db.QueryRowContext(ctx, "SELECT value FROM kv WHERE key=?", key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, errors.Wrapf(err, "sqlite get %q", key)
	}
	return value, true, nil
}

func (s *SQLite) Put(ctx context.Context, entries map[string]string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "begin tx")
	}
	for k, v := range entries {
		if _, err := tx.ExecContext(ctx, "INSERT OR REPLACE INTO kv(key, value) VALUES(?,?)", k, v); err != nil {
			_ = tx.Rollback()
			return errors.Wrapf(err, "sqlite put %q", k)
		}
	}
	return errors.Wrap(tx.Commit(), "commit")
}

func (s *SQLite) Close() error { return s.db.Close() }
