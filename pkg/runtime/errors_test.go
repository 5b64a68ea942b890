package runtime

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		code string
		kind error
	}{
		{"unique", "23505", ErrDuplicateKey},
		{"foreign key", "23503", ErrForeignKeyViolation},
		{"not null", "23502", ErrNotNullViolation},
		{"too long", "22001", ErrValueTooLong},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pgErr := &pgconn.PgError{
				Code:           tt.code,
				TableName:      "book",
				ConstraintName: "fk_book_id_publisher_publisher",
				Detail:         "Key (id_publisher)=(7) is not present",
			}
			err := Classify(fmt.Errorf("flush: %w", pgErr))

			var ce *ConstraintError
			require.ErrorAs(t, err, &ce)
			assert.ErrorIs(t, err, tt.kind)
			assert.ErrorIs(t, err, pgErr)
			assert.Equal(t, "book", ce.Table)
			assert.Contains(t, err.Error(), "fk_book_id_publisher_publisher")
		})
	}

	t.Run("other codes pass through", func(t *testing.T) {
		pgErr := &pgconn.PgError{Code: "42601"}
		assert.Same(t, error(pgErr), Classify(pgErr))
	})

	t.Run("non pg errors pass through", func(t *testing.T) {
		plain := errors.New("boom")
		assert.Equal(t, plain, Classify(plain))
	})
}

func TestIsOperational(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"connection failure", &pgconn.PgError{Code: "08006"}, true},
		{"too many connections", &pgconn.PgError{Code: "53300"}, true},
		{"admin shutdown", &pgconn.PgError{Code: "57P01"}, true},
		{"syntax error", &pgconn.PgError{Code: "42601"}, false},
		{"duplicate table", &pgconn.PgError{Code: "42P07"}, false},
		{"deadline", fmt.Errorf("create: %w", context.DeadlineExceeded), true},
		{"plain", errors.New("boom"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsOperational(tt.err))
		})
	}
}

func TestValidationError(t *testing.T) {
	err := &ValidationError{Index: 3, Model: "sale", Field: "price", Message: "not a number"}
	assert.Equal(t, "validation error on record 3 (sale) field price: not a number", err.Error())

	err = &ValidationError{Index: -1, Field: "name", Message: "required"}
	assert.Equal(t, "validation error on field name: required", err.Error())
}

func TestConfig_ConnString(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
		want string
	}{
		{
			name: "all fields",
			cfg:  Config{Host: "db", Port: 5433, User: "u", Password: "p", Database: "book_db", SSLMode: "disable", ConnectTimeout: 5 * time.Second},
			want: "host=db port=5433 user=u password=p dbname=book_db sslmode=disable connect_timeout=5 application_name=booksales",
		},
		{
			name: "empty fields left to the environment",
			cfg:  Config{Database: "book_db"},
			want: "dbname=book_db application_name=booksales",
		},
		{
			name: "quoted password",
			cfg:  Config{Host: "db", Password: `it's a secret`},
			want: `host=db password='it\'s a secret' application_name=booksales`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.cfg.ConnString())
		})
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, "book_db", cfg.Database)
	assert.Contains(t, cfg.ConnString(), "host=localhost port=5432")
	assert.NotContains(t, cfg.ConnString(), "password=")
}
