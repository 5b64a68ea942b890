package schema

import "reflect"

// TableMetadata describes a table derived from a tagged Go struct.
type TableMetadata struct {
	Name        string
	GoType      reflect.Type
	Columns     []ColumnMetadata
	PrimaryKey  *PrimaryKeyMetadata
	ForeignKeys []ForeignKeyMetadata
	Constraints []ConstraintMetadata
}

// ColumnMetadata describes a single column.
type ColumnMetadata struct {
	Name     string
	GoField  string
	GoType   reflect.Type
	SQLType  string
	Nullable bool
	Unique   bool
	Default  *string
	Position int
}

// PrimaryKeyMetadata describes a primary key constraint.
type PrimaryKeyMetadata struct {
	Name    string
	Columns []string
}

// ForeignKeyMetadata describes a foreign key constraint.
type ForeignKeyMetadata struct {
	Name              string
	Columns           []string
	ReferencedTable   string
	ReferencedColumns []string
	OnDelete          ReferenceAction
	OnUpdate          ReferenceAction
}

// ConstraintType identifies the kind of a table constraint.
type ConstraintType string

const (
	// UniqueConstraint is a UNIQUE constraint.
	UniqueConstraint ConstraintType = "UNIQUE"
	// CheckConstraint is a CHECK constraint.
	CheckConstraint ConstraintType = "CHECK"
)

// ConstraintMetadata describes a UNIQUE or CHECK constraint.
type ConstraintMetadata struct {
	Name       string
	Type       ConstraintType
	Columns    []string
	Expression string
}

// ReferenceAction is the ON DELETE / ON UPDATE behaviour of a foreign key.
type ReferenceAction string

const (
	NoAction   ReferenceAction = "NO ACTION"
	Restrict   ReferenceAction = "RESTRICT"
	Cascade    ReferenceAction = "CASCADE"
	SetNull    ReferenceAction = "SET NULL"
	SetDefault ReferenceAction = "SET DEFAULT"
)

// GetColumnByName returns the column with the given SQL name, or nil.
func (t *TableMetadata) GetColumnByName(name string) *ColumnMetadata {
	for i := range t.Columns {
		if t.Columns[i].Name == name {
			return &t.Columns[i]
		}
	}
	return nil
}

// GetColumnByField returns the column mapped to the given Go field, or nil.
func (t *TableMetadata) GetColumnByField(field string) *ColumnMetadata {
	for i := range t.Columns {
		if t.Columns[i].GoField == field {
			return &t.Columns[i]
		}
	}
	return nil
}

// ColumnNames returns the SQL column names in declaration order.
func (t *TableMetadata) ColumnNames() []string {
	names := make([]string, len(t.Columns))
	for i, col := range t.Columns {
		names[i] = col.Name
	}
	return names
}

// References returns the distinct tables this table points at through
// foreign keys, excluding self references.
func (t *TableMetadata) References() []string {
	var refs []string
	seen := make(map[string]bool)
	for _, fk := range t.ForeignKeys {
		if fk.ReferencedTable == t.Name || seen[fk.ReferencedTable] {
			continue
		}
		seen[fk.ReferencedTable] = true
		refs = append(refs, fk.ReferencedTable)
	}
	return refs
}
