// Package store persists the catalog, recipes, stock registers and orders in SQLite.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
)

// ErrNotFound is returned when an update or delete targets a missing row.
var ErrNotFound = errors.New("not found")

// Store implements the durable snapshot store on top of database/sql.
type Store struct {
	db      *sql.DB
	builder squirrel.StatementBuilderType
}

// New creates a Store over an opened, migrated database.
func New(db *sql.DB) *Store {
	return &Store{
		db:      db,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Question),
	}
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

type querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

func exec(ctx context.Context, e execer, q squirrel.Sqlizer) (sql.Result, error) {
	query, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}
	return e.ExecContext(ctx, query, args...)
}

func query(ctx context.Context, qr querier, q squirrel.Sqlizer) (*sql.Rows, error) {
	stmt, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}
	return qr.QueryContext(ctx, stmt, args...)
}

// mustAffect turns a zero-row update or delete into ErrNotFound.
func mustAffect(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// Ping checks that the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}
