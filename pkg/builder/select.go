package builder

import (
	"context"
	"strconv"
	"strings"

	"github.com/marshallshelly/booksales/pkg/runtime"
)

// Columns replaces the select list.
func (q *SelectQuery[T]) Columns(cols ...string) *SelectQuery[T] {
	q.columns = cols
	return q
}

// Where appends conditions. Each condition's Logic joins it to the one
// before it.
func (q *SelectQuery[T]) Where(conditions ...Condition) *SelectQuery[T] {
	q.where = append(q.where, conditions...)
	return q
}

// OrderByAsc sorts by column ascending, after any earlier sort keys.
func (q *SelectQuery[T]) OrderByAsc(column string) *SelectQuery[T] {
	q.orderBy = append(q.orderBy, OrderBy{Column: column, Direction: Asc})
	return q
}

// OrderByDesc sorts by column descending, after any earlier sort keys.
func (q *SelectQuery[T]) OrderByDesc(column string) *SelectQuery[T] {
	q.orderBy = append(q.orderBy, OrderBy{Column: column, Direction: Desc})
	return q
}

func (q *SelectQuery[T]) Limit(n int) *SelectQuery[T] {
	q.limit = &n
	return q
}

// InnerJoin joins table ON on.
func (q *SelectQuery[T]) InnerJoin(table, on string) *SelectQuery[T] {
	q.joins = append(q.joins, Join{Type: InnerJoin, Table: table, Condition: on})
	return q
}

// LeftJoin left-joins table ON on.
func (q *SelectQuery[T]) LeftJoin(table, on string) *SelectQuery[T] {
	q.joins = append(q.joins, Join{Type: LeftJoin, Table: table, Condition: on})
	return q
}

// ToSQL renders the statement and its positional arguments.
func (q *SelectQuery[T]) ToSQL() (string, []any, error) {
	if q.err != nil {
		return "", nil, q.err
	}

	where, args, err := NewWhereBuilder().Add(q.where...).Build()
	if err != nil {
		return "", nil, err
	}

	clauses := []string{"SELECT", "*", "FROM", q.from}
	if len(q.columns) > 0 {
		clauses[1] = strings.Join(q.columns, ", ")
	}
	for _, j := range q.joins {
		clauses = append(clauses, string(j.Type), j.Table, "ON", j.Condition)
	}
	if where != "" {
		clauses = append(clauses, where)
	}
	if len(q.orderBy) > 0 {
		keys := make([]string, len(q.orderBy))
		for i, o := range q.orderBy {
			keys[i] = o.Column + " " + string(o.Direction)
		}
		clauses = append(clauses, "ORDER BY", strings.Join(keys, ", "))
	}
	if q.limit != nil {
		clauses = append(clauses, "LIMIT", strconv.Itoa(*q.limit))
	}
	return strings.Join(clauses, " "), args, nil
}

// All runs the query and scans every row into a T.
func (q *SelectQuery[T]) All(ctx context.Context) ([]T, error) {
	sql, args, err := q.ToSQL()
	if err != nil {
		return nil, err
	}

	rows, err := q.q.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	results, err := collectRows[T](rows, q.table)
	if err == nil {
		err = rows.Err()
	}
	if err != nil {
		return nil, &runtime.QueryError{Query: sql, Err: err}
	}
	return results, nil
}

// First returns the first row, or runtime.ErrNotFound when there is none.
func (q *SelectQuery[T]) First(ctx context.Context) (*T, error) {
	results, err := q.Limit(1).All(ctx)
	switch {
	case err != nil:
		return nil, err
	case len(results) == 0:
		return nil, runtime.ErrNotFound
	}
	return &results[0], nil
}
