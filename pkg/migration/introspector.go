package migration

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/marshallshelly/booksales/pkg/schema"
)

// Queryer is the read side of a connection. *runtime.DB satisfies it.
type Queryer interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// Introspector reads table definitions back from the public schema.
type Introspector struct {
	db Queryer
}

// NewIntrospector returns an Introspector over db.
func NewIntrospector(db Queryer) *Introspector {
	return &Introspector{db: db}
}

const tableNamesSQL = `SELECT tablename::text FROM pg_catalog.pg_tables
WHERE schemaname = 'public'
ORDER BY tablename`

// TableNames lists tables in the public schema, sorted by name.
func (i *Introspector) TableNames(ctx context.Context) ([]string, error) {
	rows, err := i.db.Query(ctx, tableNamesSQL)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowTo[string])
}

// IntrospectTable reads the columns, primary key, foreign keys and UNIQUE
// constraints of one table. Single-column UNIQUE constraints also set
// Unique on their column.
func (i *Introspector) IntrospectTable(ctx context.Context, name string) (*schema.TableMetadata, error) {
	table := &schema.TableMetadata{Name: name}

	var err error
	if table.Columns, err = i.columns(ctx, name); err != nil {
		return nil, fmt.Errorf("read columns of %s: %w", name, err)
	}
	if err := i.constraints(ctx, table); err != nil {
		return nil, fmt.Errorf("read constraints of %s: %w", name, err)
	}
	return table, nil
}

const columnsSQL = `SELECT a.attname::text,
       format_type(a.atttypid, a.atttypmod),
       NOT a.attnotnull,
       pg_get_expr(d.adbin, d.adrelid)
FROM pg_catalog.pg_attribute a
JOIN pg_catalog.pg_class rel ON rel.oid = a.attrelid
JOIN pg_catalog.pg_namespace nsp ON nsp.oid = rel.relnamespace
LEFT JOIN pg_catalog.pg_attrdef d ON d.adrelid = a.attrelid AND d.adnum = a.attnum
WHERE nsp.nspname = 'public' AND rel.relname = $1
  AND a.attnum > 0 AND NOT a.attisdropped
ORDER BY a.attnum`

func (i *Introspector) columns(ctx context.Context, table string) ([]schema.ColumnMetadata, error) {
	rows, err := i.db.Query(ctx, columnsSQL, table)
	if err != nil {
		return nil, err
	}
	position := 0
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (schema.ColumnMetadata, error) {
		col := schema.ColumnMetadata{Position: position}
		var sqlType string
		if err := row.Scan(&col.Name, &sqlType, &col.Nullable, &col.Default); err != nil {
			return col, err
		}
		col.SQLType = shortTypeName(sqlType)
		position++
		return col, nil
	})
}

// constraintsSQL returns primary key, foreign key and unique constraints with
// their columns in key order. Referenced columns are empty except for
// foreign keys.
const constraintsSQL = `SELECT con.conname::text,
       con.contype::text,
       ARRAY(SELECT a.attname::text
             FROM unnest(con.conkey) WITH ORDINALITY AS k(attnum, n)
             JOIN pg_catalog.pg_attribute a ON a.attrelid = con.conrelid AND a.attnum = k.attnum
             ORDER BY k.n),
       coalesce(ref.relname::text, ''),
       ARRAY(SELECT a.attname::text
             FROM unnest(con.confkey) WITH ORDINALITY AS k(attnum, n)
             JOIN pg_catalog.pg_attribute a ON a.attrelid = con.confrelid AND a.attnum = k.attnum
             ORDER BY k.n),
       con.confupdtype::text,
       con.confdeltype::text
FROM pg_catalog.pg_constraint con
JOIN pg_catalog.pg_class rel ON rel.oid = con.conrelid
JOIN pg_catalog.pg_namespace nsp ON nsp.oid = rel.relnamespace
LEFT JOIN pg_catalog.pg_class ref ON ref.oid = con.confrelid
WHERE nsp.nspname = 'public' AND rel.relname = $1
  AND con.contype IN ('p', 'f', 'u')
ORDER BY con.conname`

type constraintRow struct {
	name       string
	kind       string
	columns    []string
	refTable   string
	refColumns []string
	onUpdate   string
	onDelete   string
}

func (i *Introspector) constraints(ctx context.Context, table *schema.TableMetadata) error {
	rows, err := i.db.Query(ctx, constraintsSQL, table.Name)
	if err != nil {
		return err
	}
	found, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (constraintRow, error) {
		var c constraintRow
		err := row.Scan(&c.name, &c.kind, &c.columns, &c.refTable, &c.refColumns, &c.onUpdate, &c.onDelete)
		return c, err
	})
	if err != nil {
		return err
	}

	for _, c := range found {
		switch c.kind {
		case "p":
			table.PrimaryKey = &schema.PrimaryKeyMetadata{Name: c.name, Columns: c.columns}
		case "f":
			table.ForeignKeys = append(table.ForeignKeys, schema.ForeignKeyMetadata{
				Name:              c.name,
				Columns:           c.columns,
				ReferencedTable:   c.refTable,
				ReferencedColumns: c.refColumns,
				OnUpdate:          actionCodes[c.onUpdate],
				OnDelete:          actionCodes[c.onDelete],
			})
		case "u":
			table.Constraints = append(table.Constraints, schema.ConstraintMetadata{
				Name:    c.name,
				Type:    schema.UniqueConstraint,
				Columns: c.columns,
			})
			if len(c.columns) == 1 {
				if col := table.GetColumnByName(c.columns[0]); col != nil {
					col.Unique = true
				}
			}
		}
	}
	return nil
}

// actionCodes maps pg_constraint.confupdtype/confdeltype to actions.
var actionCodes = map[string]schema.ReferenceAction{
	"a": schema.NoAction,
	"r": schema.Restrict,
	"c": schema.Cascade,
	"n": schema.SetNull,
	"d": schema.SetDefault,
}

var typeAbbrev = strings.NewReplacer(
	"character varying", "varchar",
	"character", "char",
	"timestamp with time zone", "timestamptz",
	"timestamp without time zone", "timestamp",
)

// shortTypeName rewrites format_type output into the spelling used in
// struct tags, e.g. "character varying(40)" becomes "varchar(40)".
func shortTypeName(t string) string {
	return typeAbbrev.Replace(t)
}
