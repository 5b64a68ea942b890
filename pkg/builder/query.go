// Package builder provides a small type-safe query builder and a staging
// session for PostgreSQL.
package builder

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/marshallshelly/booksales/pkg/schema"
)

// Querier is anything that can run SQL: *runtime.DB, a *Session.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (int64, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Query is anything that renders to SQL with positional arguments.
type Query interface {
	ToSQL() (sql string, args []any, err error)
}

// SelectQuery selects rows scanned into T.
type SelectQuery[T any] struct {
	q       Querier
	table   *schema.TableMetadata // shape of T
	from    string
	err     error
	columns []string
	where   []Condition
	joins   []Join
	orderBy []OrderBy
	limit   *int
}

// Condition is one WHERE predicate, or a parenthesised Group of them.
// Logic joins it to the previous condition.
type Condition struct {
	Column   string
	Operator Operator
	Value    any
	Logic    LogicOperator
	Not      bool
	Group    []Condition
}

// Join is one JOIN clause; Condition is the raw ON expression.
type Join struct {
	Type      JoinType
	Table     string
	Condition string
}

// OrderBy is one sort key.
type OrderBy struct {
	Column    string
	Direction OrderDirection
}

// Operator is a comparison operator.
type Operator string

const (
	OpEqual              Operator = "="
	OpNotEqual           Operator = "!="
	OpGreaterThan        Operator = ">"
	OpGreaterThanOrEqual Operator = ">="
	OpLessThan           Operator = "<"
	OpLessThanOrEqual    Operator = "<="
	OpIn                 Operator = "IN"
	OpLike               Operator = "LIKE"
	OpIsNull             Operator = "IS NULL"
	OpIsNotNull          Operator = "IS NOT NULL"
)

// LogicOperator joins conditions.
type LogicOperator string

const (
	LogicAnd LogicOperator = "AND"
	LogicOr  LogicOperator = "OR"
)

// JoinType is the JOIN keyword.
type JoinType string

const (
	InnerJoin JoinType = "INNER JOIN"
	LeftJoin  JoinType = "LEFT JOIN"
)

// OrderDirection is ASC or DESC.
type OrderDirection string

const (
	Asc  OrderDirection = "ASC"
	Desc OrderDirection = "DESC"
)
