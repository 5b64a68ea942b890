package migration

import (
	"strings"

	"github.com/marshallshelly/booksales/pkg/schema"
)

// PlannerOptions configures DDL generation.
type PlannerOptions struct {
	// IfNotExists writes CREATE TABLE IF NOT EXISTS.
	IfNotExists bool
}

// Planner renders CREATE TABLE statements from table metadata.
type Planner struct {
	options PlannerOptions
}

// NewPlanner returns a Planner with default options.
func NewPlanner() *Planner {
	return NewPlannerWithOptions(PlannerOptions{})
}

// NewPlannerWithOptions returns a Planner with opts.
func NewPlannerWithOptions(opts PlannerOptions) *Planner {
	return &Planner{options: opts}
}

// SchemaSQL renders a script creating tables in the order given, one
// statement per paragraph.
func (p *Planner) SchemaSQL(tables []*schema.TableMetadata) string {
	var b strings.Builder
	for i, table := range tables {
		if i > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(p.CreateTableSQL(table))
	}
	b.WriteByte('\n')
	return b.String()
}

// CreateTableSQL renders one CREATE TABLE statement. Single-column primary
// keys and UNIQUE constraints are written on the column; composite ones
// become table constraints.
func (p *Planner) CreateTableSQL(table *schema.TableMetadata) string {
	var inlinePK string
	pk := table.PrimaryKey
	if pk != nil && len(pk.Columns) == 1 {
		inlinePK = pk.Columns[0]
	}

	var body []string
	for _, col := range table.Columns {
		body = append(body, columnDDL(col, col.Name == inlinePK))
	}
	if pk != nil && len(pk.Columns) > 1 {
		body = append(body, "CONSTRAINT "+pk.Name+" PRIMARY KEY ("+strings.Join(pk.Columns, ", ")+")")
	}
	for _, fk := range table.ForeignKeys {
		body = append(body, foreignKeyDDL(fk))
	}
	for _, c := range table.Constraints {
		switch {
		case c.Type == schema.CheckConstraint:
			body = append(body, "CONSTRAINT "+c.Name+" CHECK "+c.Expression)
		case c.Type == schema.UniqueConstraint && len(c.Columns) > 1:
			body = append(body, "CONSTRAINT "+c.Name+" UNIQUE ("+strings.Join(c.Columns, ", ")+")")
		}
	}

	var b strings.Builder
	b.WriteString("CREATE TABLE ")
	if p.options.IfNotExists {
		b.WriteString("IF NOT EXISTS ")
	}
	b.WriteString(table.Name)
	b.WriteString(" (\n    ")
	b.WriteString(strings.Join(body, ",\n    "))
	b.WriteString("\n);")
	return b.String()
}

func columnDDL(col schema.ColumnMetadata, primaryKey bool) string {
	def := col.Name + " " + col.SQLType
	if !col.Nullable {
		def += " NOT NULL"
	}
	if col.Default != nil {
		def += " DEFAULT " + *col.Default
	}
	if col.Unique {
		def += " UNIQUE"
	}
	if primaryKey {
		def += " PRIMARY KEY"
	}
	return def
}

func foreignKeyDDL(fk schema.ForeignKeyMetadata) string {
	def := "CONSTRAINT " + fk.Name +
		" FOREIGN KEY (" + strings.Join(fk.Columns, ", ") + ")" +
		" REFERENCES " + fk.ReferencedTable + " (" + strings.Join(fk.ReferencedColumns, ", ") + ")"
	if hasAction(fk.OnDelete) {
		def += " ON DELETE " + string(fk.OnDelete)
	}
	if hasAction(fk.OnUpdate) {
		def += " ON UPDATE " + string(fk.OnUpdate)
	}
	return def
}

func hasAction(a schema.ReferenceAction) bool {
	return a != "" && a != schema.NoAction
}
