package builder

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/marshallshelly/booksales/pkg/registry"
	"github.com/marshallshelly/booksales/pkg/runtime"
	"github.com/marshallshelly/booksales/pkg/schema"
)

// Beginner starts transactions. *runtime.DB satisfies it.
type Beginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// Session stages inserts and runs queries inside a single transaction that
// is opened on first use. Staged rows are flushed before every query, so
// reads through the session see them. Nothing is durable until Commit.
//
// A Session is not safe for concurrent use.
type Session struct {
	db      Beginner
	reg     *registry.Registry
	tx      pgx.Tx
	pending []staged
	flushed int
	closed  bool
}

type staged struct {
	table *schema.TableMetadata
	sql   string
	args  []any
}

// NewSession creates a session over db for models known to reg.
func NewSession(db Beginner, reg *registry.Registry) *Session {
	return &Session{db: db, reg: reg}
}

// DB returns a query builder that runs through the session.
func (s *Session) DB() *DB {
	return New(s, s.reg)
}

// Add stages model for insertion. The row is captured immediately; later
// changes to model are not seen.
func (s *Session) Add(model any) error {
	if s.closed {
		return runtime.ErrSessionClosed
	}
	table, err := s.reg.Of(model)
	if err != nil {
		return err
	}
	sql, args, err := buildInsert(table, model)
	if err != nil {
		return err
	}
	s.pending = append(s.pending, staged{table: table, sql: sql, args: args})
	return nil
}

// Pending returns the number of staged rows not yet sent to the database.
func (s *Session) Pending() int {
	return len(s.pending)
}

// Flushed returns the number of rows written inside the open transaction.
func (s *Session) Flushed() int {
	return s.flushed
}

// Flush sends staged rows to the database inside the session transaction.
// A failed flush rolls the whole transaction back and discards the rows.
func (s *Session) Flush(ctx context.Context) error {
	if s.closed {
		return runtime.ErrSessionClosed
	}
	if len(s.pending) == 0 {
		return nil
	}
	if err := s.begin(ctx); err != nil {
		return err
	}

	batch := &pgx.Batch{}
	for _, row := range s.pending {
		batch.Queue(row.sql, row.args...)
	}

	results := s.tx.SendBatch(ctx, batch)
	for _, row := range s.pending {
		if _, err := results.Exec(); err != nil {
			_ = results.Close()
			s.abort(ctx)
			return &runtime.QueryError{Query: row.sql, Err: runtime.Classify(err)}
		}
	}
	if err := results.Close(); err != nil {
		s.abort(ctx)
		return fmt.Errorf("failed to close batch: %w", err)
	}

	s.flushed += len(s.pending)
	s.pending = nil
	return nil
}

// Commit flushes staged rows and commits the transaction. The session can
// be used again afterwards; a new transaction opens on next use.
func (s *Session) Commit(ctx context.Context) error {
	if err := s.Flush(ctx); err != nil {
		return err
	}
	if s.tx == nil {
		return nil
	}
	err := s.tx.Commit(ctx)
	s.tx = nil
	s.flushed = 0
	if err != nil {
		return fmt.Errorf("failed to commit transaction: %w", runtime.Classify(err))
	}
	return nil
}

// Rollback discards staged rows and everything written in the open
// transaction.
func (s *Session) Rollback(ctx context.Context) error {
	if s.closed {
		return runtime.ErrSessionClosed
	}
	s.pending = nil
	s.flushed = 0
	if s.tx == nil {
		return nil
	}
	err := s.tx.Rollback(ctx)
	s.tx = nil
	if err != nil && !errors.Is(err, pgx.ErrTxClosed) {
		return fmt.Errorf("failed to rollback transaction: %w", err)
	}
	return nil
}

// Close rolls back anything uncommitted and marks the session unusable.
// Closing twice is a no-op.
func (s *Session) Close(ctx context.Context) error {
	if s.closed {
		return nil
	}
	err := s.Rollback(ctx)
	s.closed = true
	return err
}

// Exec flushes, then executes sql in the session transaction.
func (s *Session) Exec(ctx context.Context, sql string, args ...any) (int64, error) {
	if err := s.prepare(ctx); err != nil {
		return 0, err
	}
	tag, err := s.tx.Exec(ctx, sql, args...)
	if err != nil {
		return 0, &runtime.QueryError{Query: sql, Err: runtime.Classify(err)}
	}
	return tag.RowsAffected(), nil
}

// Query flushes, then runs sql in the session transaction.
func (s *Session) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	if err := s.prepare(ctx); err != nil {
		return nil, err
	}
	rows, err := s.tx.Query(ctx, sql, args...)
	if err != nil {
		return nil, &runtime.QueryError{Query: sql, Err: err}
	}
	return rows, nil
}

// QueryRow flushes, then runs sql in the session transaction. Flush errors
// surface from Scan.
func (s *Session) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	if err := s.prepare(ctx); err != nil {
		return errRow{err: err}
	}
	return s.tx.QueryRow(ctx, sql, args...)
}

func (s *Session) prepare(ctx context.Context) error {
	if err := s.Flush(ctx); err != nil {
		return err
	}
	return s.begin(ctx)
}

func (s *Session) begin(ctx context.Context) error {
	if s.closed {
		return runtime.ErrSessionClosed
	}
	if s.tx != nil {
		return nil
	}
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	s.tx = tx
	return nil
}

func (s *Session) abort(ctx context.Context) {
	if s.tx != nil {
		_ = s.tx.Rollback(ctx)
	}
	s.tx = nil
	s.pending = nil
	s.flushed = 0
}

type errRow struct{ err error }

func (r errRow) Scan(...any) error { return r.err }
