package builder

import (
	"context"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/marshallshelly/booksales/pkg/schema"
)

// InsertQuery inserts one or more rows of T in a single statement.
type InsertQuery[T any] struct {
	q         Querier
	table     *schema.TableMetadata
	err       error
	values    []T
	returning []string
}

// Values appends rows to insert.
func (q *InsertQuery[T]) Values(values ...T) *InsertQuery[T] {
	q.values = append(q.values, values...)
	return q
}

// Returning sets the RETURNING column list.
func (q *InsertQuery[T]) Returning(columns ...string) *InsertQuery[T] {
	q.returning = columns
	return q
}

// ToSQL renders a multi-row INSERT. Every row must produce the same column
// list, which matters only for columns with a DEFAULT.
func (q *InsertQuery[T]) ToSQL() (string, []any, error) {
	if q.err != nil {
		return "", nil, q.err
	}
	if q.table == nil {
		return "", nil, fmt.Errorf("table metadata not available")
	}
	if len(q.values) == 0 {
		return "", nil, fmt.Errorf("no values to insert into %s", q.table.Name)
	}

	var (
		columns []string
		rows    = make([]string, len(q.values))
		args    []any
	)
	for i, val := range q.values {
		rowColumns, rowValues, err := structToValues(val, q.table)
		if err != nil {
			return "", nil, fmt.Errorf("row %d: %w", i, err)
		}
		if i == 0 {
			columns = rowColumns
		} else if !slices.Equal(rowColumns, columns) {
			return "", nil, fmt.Errorf("row %d sets columns (%s), row 0 sets (%s)",
				i, strings.Join(rowColumns, ", "), strings.Join(columns, ", "))
		}
		rows[i] = placeholders(len(args)+1, len(rowValues))
		args = append(args, rowValues...)
	}

	sql := insertPrefix(q.table.Name, columns) + strings.Join(rows, ", ")
	if len(q.returning) > 0 {
		sql += " RETURNING " + strings.Join(q.returning, ", ")
	}
	return sql, args, nil
}

// Exec runs the INSERT and returns the number of rows inserted.
func (q *InsertQuery[T]) Exec(ctx context.Context) (int64, error) {
	sql, args, err := q.ToSQL()
	if err != nil {
		return 0, err
	}
	return q.q.Exec(ctx, sql, args...)
}

// buildInsert renders a single-row INSERT for a model of table's type. The
// row is captured now; later changes to model are not seen.
func buildInsert(table *schema.TableMetadata, model any) (string, []any, error) {
	columns, values, err := structToValues(model, table)
	if err != nil {
		return "", nil, err
	}
	return insertPrefix(table.Name, columns) + placeholders(1, len(values)), values, nil
}

func insertPrefix(table string, columns []string) string {
	return "INSERT INTO " + table + " (" + strings.Join(columns, ", ") + ") VALUES "
}

// placeholders renders "($start, ..., $start+n-1)".
func placeholders(start, n int) string {
	var b strings.Builder
	b.WriteByte('(')
	for i := range n {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteByte('$')
		b.WriteString(strconv.Itoa(start + i))
	}
	b.WriteByte(')')
	return b.String()
}
