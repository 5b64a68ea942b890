package builder

import (
	"fmt"
	"reflect"

	"github.com/jackc/pgx/v5"
	"github.com/marshallshelly/booksales/pkg/schema"
)

// rowPlan maps result columns to struct fields. It is built once from the
// first row's field descriptions and reused for the rest of the result.
type rowPlan struct {
	fields []int // struct field index per result column, -1 to discard
}

func newRowPlan(columns []string, table *schema.TableMetadata) (*rowPlan, error) {
	if table.GoType == nil || table.GoType.Kind() != reflect.Struct {
		return nil, fmt.Errorf("table %s has no struct type to scan into", table.Name)
	}

	byColumn := make(map[string]int, len(table.Columns))
	for _, col := range table.Columns {
		sf, ok := table.GoType.FieldByName(col.GoField)
		if !ok || len(sf.Index) != 1 {
			continue
		}
		byColumn[col.Name] = sf.Index[0]
	}

	plan := &rowPlan{fields: make([]int, len(columns))}
	for i, name := range columns {
		idx, ok := byColumn[name]
		if !ok {
			idx = -1
		}
		plan.fields[i] = idx
	}
	return plan, nil
}

func columnNames(rows pgx.Rows) []string {
	fds := rows.FieldDescriptions()
	names := make([]string, len(fds))
	for i, fd := range fds {
		names[i] = fd.Name
	}
	return names
}

// scan reads the current row into dest, which must point at a value of the
// planned struct type.
func (p *rowPlan) scan(rows pgx.Row, dest reflect.Value) error {
	var discard any
	targets := make([]any, len(p.fields))
	for i, idx := range p.fields {
		if idx < 0 {
			targets[i] = &discard
			continue
		}
		targets[i] = dest.Field(idx).Addr().Interface()
	}

	if err := rows.Scan(targets...); err != nil {
		return fmt.Errorf("failed to scan row: %w", err)
	}
	return nil
}

// collectRows scans every remaining row of rows into a []T.
func collectRows[T any](rows pgx.Rows, table *schema.TableMetadata) ([]T, error) {
	var (
		plan    *rowPlan
		results []T
	)
	for rows.Next() {
		if plan == nil {
			var err error
			if plan, err = newRowPlan(columnNames(rows), table); err != nil {
				return nil, err
			}
		}

		var item T
		if err := plan.scan(rows, reflect.ValueOf(&item).Elem()); err != nil {
			return nil, err
		}
		results = append(results, item)
	}
	return results, nil
}

// structToValues converts a struct to column names and values in column
// order. Primary keys are always included: every table here takes
// caller-assigned identifiers.
func structToValues(model any, table *schema.TableMetadata) ([]string, []any, error) {
	v := reflect.ValueOf(model)
	for v.Kind() == reflect.Pointer {
		if v.IsNil() {
			return nil, nil, fmt.Errorf("model must not be a nil pointer")
		}
		v = v.Elem()
	}
	if v.Type() != table.GoType {
		return nil, nil, fmt.Errorf("model %s does not match table %s", v.Type(), table.Name)
	}

	columns := make([]string, 0, len(table.Columns))
	values := make([]any, 0, len(table.Columns))
	for _, col := range table.Columns {
		field := v.FieldByName(col.GoField)
		if !field.IsValid() {
			continue
		}
		// Zero-valued fields backed by a database default are left to it.
		if col.Default != nil && field.IsZero() {
			continue
		}
		columns = append(columns, col.Name)
		values = append(values, field.Interface())
	}
	return columns, values, nil
}
