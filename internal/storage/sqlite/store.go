// Package sqlite stores attendance data in a single SQLite file. Timestamps are
// kept as 'YYYY-MM-DD HH:MM:SS' wall-clock text in the business timezone.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"
)

const (
	dateLayout      = "2006-01-02"
	timestampLayout = "2006-01-02 15:04:05"
)

const schema = `
CREATE TABLE IF NOT EXISTS employees (
	id            TEXT PRIMARY KEY,
	display_name  TEXT NOT NULL DEFAULT '',
	department    TEXT NOT NULL DEFAULT '',
	role          TEXT NOT NULL,
	password_hash TEXT NOT NULL,
	created_at    TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS attendance (
	employee_id              TEXT NOT NULL,
	date                     TEXT NOT NULL,
	scheduled_start_time     TEXT,
	scheduled_end_time       TEXT,
	scheduled_break_duration INTEGER,
	start_time               TEXT,
	end_time                 TEXT,
	break_duration           INTEGER,
	manual_work_time         INTEGER,
	leave_type               TEXT,
	note                     TEXT,
	work_tag                 TEXT,
	PRIMARY KEY (employee_id, date)
);

CREATE TABLE IF NOT EXISTS annual_plans (
	employee_id  TEXT NOT NULL,
	year         INTEGER NOT NULL,
	annual_hours INTEGER NOT NULL,
	PRIMARY KEY (employee_id, year)
);
`

// Store owns the database handle and hands out repositories
type Store struct {
	db     *sql.DB
	loc    *time.Location
	logger *zap.Logger
}

// Open opens (creating if needed) the database at path and applies the schema.
// Use ":memory:" for an in-memory database.
func Open(path string, loc *time.Location, logger *zap.Logger) (*Store, error) {
	db, err := sql.Open("sqlite3", path+"?_foreign_keys=on&_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// SQLite allows one writer; a single connection also keeps ":memory:" databases alive.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	logger.Info("SQLite database opened", zap.String("path", path))

	return &Store{db: db, loc: loc, logger: logger}, nil
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping checks the connection
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Queryer is satisfied by both *sql.DB and *sql.Tx
type Queryer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type txKey struct{}

func (s *Store) queryer(ctx context.Context) Queryer {
	if tx, ok := ctx.Value(txKey{}).(*sql.Tx); ok {
		return tx
	}
	return s.db
}

// WithinTransaction runs fn in a transaction. Nested calls join the outer one.
func (s *Store) WithinTransaction(ctx context.Context, fn func(context.Context) error) (err error) {
	if fn == nil {
		return nil
	}
	if _, ok := ctx.Value(txKey{}).(*sql.Tx); ok {
		return fn(ctx)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(context.WithValue(ctx, txKey{}, tx)); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return errors.Join(err, fmt.Errorf("failed to rollback: %w", rbErr))
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func (s *Store) formatTimestamp(t *time.Time) sql.NullString {
	if t == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: t.In(s.loc).Format(timestampLayout), Valid: true}
}

func (s *Store) parseTimestamp(v sql.NullString) (*time.Time, error) {
	if !v.Valid || v.String == "" {
		return nil, nil
	}
	t, err := time.ParseInLocation(timestampLayout, v.String, s.loc)
	if err != nil {
		return nil, fmt.Errorf("failed to parse timestamp %q: %w", v.String, err)
	}
	return &t, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullInt(n *int) sql.NullInt64 {
	if n == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*n), Valid: true}
}

func intPtr(v sql.NullInt64) *int {
	if !v.Valid {
		return nil
	}
	n := int(v.Int64)
	return &n
}
