package builder

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/marshallshelly/booksales/pkg/models"
	"github.com/marshallshelly/booksales/pkg/runtime"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeTx records what a Session sends. Methods a Session never calls are
// left to the embedded nil interface.
type fakeTx struct {
	pgx.Tx
	batches    [][]string
	execs      []string
	failAt     int // index in the next batch that fails; -1 for none
	failErr    error
	committed  bool
	rolledBack bool
}

func (tx *fakeTx) SendBatch(_ context.Context, b *pgx.Batch) pgx.BatchResults {
	var sqls []string
	for _, q := range b.QueuedQueries {
		sqls = append(sqls, q.SQL)
	}
	tx.batches = append(tx.batches, sqls)
	return &fakeResults{n: b.Len(), failAt: tx.failAt, err: tx.failErr}
}

func (tx *fakeTx) Exec(_ context.Context, sql string, _ ...any) (pgconn.CommandTag, error) {
	tx.execs = append(tx.execs, sql)
	return pgconn.NewCommandTag("UPDATE 1"), nil
}

func (tx *fakeTx) Commit(context.Context) error {
	tx.committed = true
	return nil
}

func (tx *fakeTx) Rollback(context.Context) error {
	tx.rolledBack = true
	return nil
}

type fakeResults struct {
	pgx.BatchResults
	n, i   int
	failAt int
	err    error
}

func (r *fakeResults) Exec() (pgconn.CommandTag, error) {
	defer func() { r.i++ }()
	if r.i == r.failAt {
		return pgconn.CommandTag{}, r.err
	}
	return pgconn.NewCommandTag("INSERT 0 1"), nil
}

func (r *fakeResults) Close() error { return nil }

type fakeBeginner struct {
	txs []*fakeTx
	err error
}

func (b *fakeBeginner) Begin(context.Context) (pgx.Tx, error) {
	if b.err != nil {
		return nil, b.err
	}
	tx := &fakeTx{failAt: -1}
	b.txs = append(b.txs, tx)
	return tx, nil
}

func TestSession_AddAndCommit(t *testing.T) {
	ctx := context.Background()
	db := &fakeBeginner{}
	s := NewSession(db, models.MustRegistry())

	require.NoError(t, s.Add(models.Publisher{ID: 1, Name: new("Acme")}))
	require.NoError(t, s.Add(&models.Book{ID: 1, Title: "Go Fast", PublisherID: 1}))
	assert.Equal(t, 2, s.Pending())
	assert.Empty(t, db.txs, "no transaction before first flush")

	require.NoError(t, s.Commit(ctx))
	require.Len(t, db.txs, 1)

	tx := db.txs[0]
	assert.True(t, tx.committed)
	assert.Equal(t, [][]string{{
		"INSERT INTO publisher (id, name) VALUES ($1, $2)",
		"INSERT INTO book (id, title, id_publisher) VALUES ($1, $2, $3)",
	}}, tx.batches)
	assert.Zero(t, s.Pending())
}

func TestSession_AutoflushBeforeQuery(t *testing.T) {
	ctx := context.Background()
	db := &fakeBeginner{}
	s := NewSession(db, models.MustRegistry())

	require.NoError(t, s.Add(models.Shop{ID: 1, Name: new("Downtown")}))
	_, err := s.Exec(ctx, "UPDATE shop SET name = $1", "Uptown")
	require.NoError(t, err)

	tx := db.txs[0]
	require.Len(t, tx.batches, 1, "staged rows flushed before the statement")
	assert.Equal(t, []string{"UPDATE shop SET name = $1"}, tx.execs)
	assert.Equal(t, 1, s.Flushed())
	assert.False(t, tx.committed)
}

func TestSession_AddUnregistered(t *testing.T) {
	s := NewSession(&fakeBeginner{}, models.MustRegistry())
	err := s.Add(unregistered{ID: 1})
	assert.True(t, errors.Is(err, runtime.ErrNotRegistered), "got %v", err)
	assert.Zero(t, s.Pending())
}

func TestSession_FlushFailureRollsBack(t *testing.T) {
	ctx := context.Background()
	db := &fakeBeginner{}
	s := NewSession(db, models.MustRegistry())

	require.NoError(t, s.Add(models.Book{ID: 1, Title: "Orphan", PublisherID: 42}))
	require.NoError(t, s.begin(ctx))
	db.txs[0].failAt = 0
	db.txs[0].failErr = &pgconn.PgError{Code: "23503", TableName: "book"}

	err := s.Flush(ctx)
	require.Error(t, err)
	assert.True(t, errors.Is(err, runtime.ErrForeignKeyViolation), "got %v", err)
	assert.True(t, db.txs[0].rolledBack)
	assert.Zero(t, s.Pending())

	// Next use opens a fresh transaction.
	require.NoError(t, s.Add(models.Shop{ID: 1, Name: new("Downtown")}))
	require.NoError(t, s.Commit(ctx))
	assert.Len(t, db.txs, 2)
}

func TestSession_Close(t *testing.T) {
	ctx := context.Background()
	db := &fakeBeginner{}
	s := NewSession(db, models.MustRegistry())

	require.NoError(t, s.Add(models.Shop{ID: 1, Name: new("Downtown")}))
	require.NoError(t, s.Flush(ctx))
	require.NoError(t, s.Close(ctx))
	assert.True(t, db.txs[0].rolledBack)
	assert.False(t, db.txs[0].committed)

	assert.ErrorIs(t, s.Add(models.Shop{ID: 2, Name: new("Uptown")}), runtime.ErrSessionClosed)
	assert.ErrorIs(t, s.Commit(ctx), runtime.ErrSessionClosed)
	assert.ErrorIs(t, s.QueryRow(ctx, "SELECT 1").Scan(), runtime.ErrSessionClosed)
	assert.NoError(t, s.Close(ctx))
}

func TestSession_BeginError(t *testing.T) {
	s := NewSession(&fakeBeginner{err: errors.New("connection refused")}, models.MustRegistry())
	require.NoError(t, s.Add(models.Shop{ID: 1, Name: new("Downtown")}))
	assert.Error(t, s.Commit(context.Background()))
}
