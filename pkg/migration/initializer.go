package migration

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/marshallshelly/booksales/pkg/registry"
	"github.com/marshallshelly/booksales/pkg/runtime"
)

// Store is what the Initializer needs from a connection. *runtime.DB
// satisfies it.
type Store interface {
	Queryer
	Begin(ctx context.Context) (pgx.Tx, error)
}

// Initializer creates the registered tables in an empty database.
type Initializer struct {
	db           Store
	reg          *registry.Registry
	planner      *Planner
	introspector *Introspector
}

// NewInitializer creates an Initializer for the tables in reg.
func NewInitializer(db Store, reg *registry.Registry) *Initializer {
	return &Initializer{
		db:           db,
		reg:          reg,
		planner:      NewPlanner(),
		introspector: NewIntrospector(db),
	}
}

// ExistingTables lists base tables in the public schema.
func (i *Initializer) ExistingTables(ctx context.Context) ([]string, error) {
	return i.introspector.TableNames(ctx)
}

// Initialize creates every registered table when the database has no tables
// at all. If any table exists it reports what it found and changes nothing,
// so repeated calls are safe.
//
// Operational store failures during creation are captured in the result
// with StatusFailed and a nil error. Any other failure is returned.
func (i *Initializer) Initialize(ctx context.Context) (*InitResult, error) {
	tables, err := i.reg.Tables()
	if err != nil {
		return nil, err
	}

	existing, err := i.ExistingTables(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list existing tables: %w", err)
	}

	result := &InitResult{Existing: existing}
	if len(existing) > 0 {
		result.Status, result.Missing = classify(existing, tables)
		return result, nil
	}

	for _, table := range tables {
		result.Missing = append(result.Missing, table.Name)
	}

	if err := i.create(ctx); err != nil {
		if runtime.IsOperational(err) {
			result.Status = StatusFailed
			result.Err = err
			return result, nil
		}
		return nil, err
	}

	result.Status = StatusCreated
	result.Created = result.Missing
	return result, nil
}

// create runs every CREATE TABLE in one transaction, parents first.
func (i *Initializer) create(ctx context.Context) error {
	tables, err := i.reg.Tables()
	if err != nil {
		return err
	}

	tx, err := i.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	for _, table := range tables {
		sql := i.planner.CreateTableSQL(table)
		if _, err := tx.Exec(ctx, sql); err != nil {
			return fmt.Errorf("failed to create table %s: %w", table.Name, &runtime.QueryError{Query: sql, Err: err})
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit schema: %w", err)
	}
	return nil
}
