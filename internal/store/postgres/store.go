// Package postgres is the pgx-backed core.Store.
package postgres

import (
	"context"
	"errors"
	"fmt"

	"quote-to-cash/internal/core"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Store persists documents in the q2c_* tables. Customer snapshots and line
// items are JSONB; money is NUMERIC.
type Store struct {
	pool *pgxpool.Pool
}

var _ core.Store = (*Store)(nil)

func New(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// pgxQuerier is satisfied by both *pgxpool.Pool and pgx.Tx.
type pgxQuerier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// rowScanner is satisfied by both pgx.Row and pgx.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func wrapNotFound(err error, kind, id string) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("%s %s: %w", kind, id, core.ErrNotFound)
	}
	return fmt.Errorf("failed to load %s %s: %w", kind, id, err)
}

// execOne runs a write that must touch exactly one row.
func execOne(ctx context.Context, q pgxQuerier, kind, id, sql string, args ...any) error {
	tag, err := q.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("failed to write %s %s: %w", kind, id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%s %s: %w", kind, id, core.ErrNotFound)
	}
	return nil
}

// update runs load → fn → save inside one transaction holding the row lock.
func update[T any](ctx context.Context, s *Store, load func(pgx.Tx) (*T, error), fn func(*T) error, save func(pgx.Tx, *T) error) (*T, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	v, err := load(tx)
	if err != nil {
		return nil, err
	}
	if err := fn(v); err != nil {
		return nil, err
	}
	if err := save(tx, v); err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit: %w", err)
	}
	return v, nil
}

func itemsOrEmpty(items []core.LineItem) []core.LineItem {
	if items == nil {
		return []core.LineItem{}
	}
	return items
}

// ── Sequences ────────────────────────────────────────────────────────────────

// NextSequence increments the (kind, year) counter atomically. Numbers are
// gapless as long as the surrounding create succeeds.
func (s *Store) NextSequence(ctx context.Context, kind core.DocumentKind, year int) (int64, error) {
	var n int64
	err := s.pool.QueryRow(ctx, `
		INSERT INTO q2c_document_sequences (kind, year, last_number)
		VALUES ($1, $2, 1)
		ON CONFLICT (kind, year) DO UPDATE
		SET last_number = q2c_document_sequences.last_number + 1
		RETURNING last_number
	`, string(kind), year).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to advance %s sequence for %d: %w", kind, year, err)
	}
	return n, nil
}
