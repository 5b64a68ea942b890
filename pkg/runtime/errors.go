// Package runtime provides the database handle and error types shared by
// the other packages.
package runtime

import (
	"context"
	"errors"
	"fmt"
	"net"

	"github.com/jackc/pgx/v5/pgconn"
)

// Lookup and registration errors.
var (
	ErrNotFound      = errors.New("record not found")
	ErrInvalidModel  = errors.New("invalid model")
	ErrNotRegistered = errors.New("model not registered")
	ErrNoPrimaryKey  = errors.New("no primary key defined")
	ErrSessionClosed = errors.New("session already closed")
)

// Integrity violations reported by the store. Classify wraps them in a
// ConstraintError.
var (
	ErrDuplicateKey        = errors.New("duplicate key value")
	ErrForeignKeyViolation = errors.New("foreign key violation")
	ErrNotNullViolation    = errors.New("not null violation")
	ErrValueTooLong        = errors.New("value too long")
)

// violations maps SQLSTATE codes to the integrity error they signal.
var violations = map[string]error{
	"23505": ErrDuplicateKey,
	"23503": ErrForeignKeyViolation,
	"23502": ErrNotNullViolation,
	"22001": ErrValueTooLong,
}

// ValidationError is a data-file value that failed conversion or a rule.
type ValidationError struct {
	Index   int // record position, -1 when unknown
	Model   string
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Index < 0 {
		return fmt.Sprintf("validation error on field %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation error on record %d (%s) field %s: %s", e.Index, e.Model, e.Field, e.Message)
}

// QueryError carries the SQL that failed.
type QueryError struct {
	Query string
	Err   error
}

func (e *QueryError) Error() string {
	return fmt.Sprintf("query error: %v\nQuery: %s", e.Err, e.Query)
}

func (e *QueryError) Unwrap() error { return e.Err }

// ConstraintError is a store-level integrity violation. errors.Is matches
// both Kind and the wrapped driver error.
type ConstraintError struct {
	Kind       error
	Table      string
	Constraint string
	Detail     string
	Err        error
}

func (e *ConstraintError) Error() string {
	msg := e.Kind.Error()
	if e.Table != "" {
		msg += " on table " + e.Table
	}
	if e.Constraint != "" {
		msg += " (" + e.Constraint + ")"
	}
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	return msg
}

func (e *ConstraintError) Unwrap() []error {
	return []error{e.Kind, e.Err}
}

// Classify wraps PostgreSQL integrity violations in a ConstraintError and
// returns every other error unchanged.
func Classify(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}
	kind, ok := violations[pgErr.Code]
	if !ok {
		return err
	}
	return &ConstraintError{
		Kind:       kind,
		Table:      pgErr.TableName,
		Constraint: pgErr.ConstraintName,
		Detail:     pgErr.Detail,
		Err:        err,
	}
}

// operationalClasses are SQLSTATE classes for failures of the server or the
// link to it: connection exception, insufficient resources, operator
// intervention and system error.
var operationalClasses = map[string]bool{"08": true, "53": true, "57": true, "58": true}

// IsOperational reports whether err is a connectivity or server-side
// failure rather than a problem with the statement itself.
func IsOperational(err error) bool {
	if err == nil {
		return false
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return len(pgErr.Code) >= 2 && operationalClasses[pgErr.Code[:2]]
	}

	var (
		connectErr *pgconn.ConnectError
		netErr     net.Error
	)
	return errors.As(err, &connectErr) ||
		errors.As(err, &netErr) ||
		errors.Is(err, context.DeadlineExceeded) ||
		pgconn.SafeToRetry(err)
}
