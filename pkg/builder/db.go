package builder

import (
	"reflect"
	"sync"

	"github.com/marshallshelly/booksales/pkg/registry"
	"github.com/marshallshelly/booksales/pkg/schema"
)

// DB binds a Querier to the registry its models live in.
type DB struct {
	q   Querier
	reg *registry.Registry
}

// New creates a new query builder DB.
func New(q Querier, reg *registry.Registry) *DB {
	return &DB{q: q, reg: reg}
}

// Querier returns the underlying Querier.
func (d *DB) Querier() Querier {
	return d.q
}

// Registry returns the model registry.
func (d *DB) Registry() *registry.Registry {
	return d.reg
}

// Select creates a new type-safe SELECT query over T's registered table.
// Usage: builder.Select[models.Publisher](db).Where(...).First(ctx)
func Select[T any](d *DB) *SelectQuery[T] {
	table, err := d.reg.Get(reflect.TypeFor[T]())
	if err != nil {
		return &SelectQuery[T]{q: d.q, err: err}
	}
	return &SelectQuery[T]{
		q:       d.q,
		table:   table,
		from:    table.Name,
		columns: qualify(table.Name, table.ColumnNames()),
	}
}

// Project creates a SELECT query that scans into T, a row shape that is
// not a registered table. T's po tags name the result columns; from names
// the table the query starts at. Callers normally set Columns with aliases
// matching T's tags.
func Project[T any](d *DB, from string) *SelectQuery[T] {
	projectionsMu.Lock()
	table, err := projections.Parse(reflect.TypeFor[T]())
	projectionsMu.Unlock()
	if err != nil {
		return &SelectQuery[T]{q: d.q, err: err}
	}
	return &SelectQuery[T]{
		q:       d.q,
		table:   table,
		from:    from,
		columns: table.ColumnNames(),
	}
}

// projections caches row shapes used with Project.
var (
	projections   = schema.NewParser()
	projectionsMu sync.Mutex
)

// Insert creates a new type-safe INSERT query.
// Usage: builder.Insert[models.Book](db).Values(book).Exec(ctx)
func Insert[T any](d *DB) *InsertQuery[T] {
	table, err := d.reg.Get(reflect.TypeFor[T]())
	return &InsertQuery[T]{
		q:     d.q,
		table: table,
		err:   err,
	}
}

func qualify(table string, columns []string) []string {
	out := make([]string, len(columns))
	for i, col := range columns {
		out[i] = table + "." + col
	}
	return out
}
