package schema

import (
	"fmt"
	"iter"
	"reflect"
	"strings"
)

// TableNamer lets a model override its table name.
type TableNamer interface {
	TableName() string
}

// Parser derives TableMetadata from tagged structs and caches the result per
// type. It is not safe for concurrent use.
type Parser struct {
	types *TypeMapper
	seen  map[reflect.Type]*TableMetadata
}

// NewParser returns a Parser using DefaultTypeMapper.
func NewParser() *Parser {
	return &Parser{types: DefaultTypeMapper, seen: map[reflect.Type]*TableMetadata{}}
}

// Parse returns the table for a struct type or pointer to one. Fields
// without a tag, or tagged "-", are skipped.
func (p *Parser) Parse(t reflect.Type) (*TableMetadata, error) {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return nil, fmt.Errorf("model must be a struct, got %s", t.Kind())
	}
	if table, ok := p.seen[t]; ok {
		return table, nil
	}

	table := &TableMetadata{Name: tableName(t), GoType: t}
	for field := range fieldsOf(t) {
		raw := field.Tag.Get(TagKey)
		if raw == "" || raw == "-" {
			continue
		}
		if err := p.addField(table, field, raw); err != nil {
			return nil, fmt.Errorf("field %s: %w", field.Name, err)
		}
	}
	if len(table.Columns) == 0 {
		return nil, fmt.Errorf("model %s has no %s-tagged fields", t.Name(), TagKey)
	}

	p.seen[t] = table
	return table, nil
}

// fieldsOf yields the exported fields of t.
func fieldsOf(t reflect.Type) iter.Seq[reflect.StructField] {
	return func(yield func(reflect.StructField) bool) {
		for i := range t.NumField() {
			if f := t.Field(i); f.IsExported() && !yield(f) {
				return
			}
		}
	}
}

func (p *Parser) addField(table *TableMetadata, field reflect.StructField, raw string) error {
	tag, err := parseColumnTag(raw)
	if err != nil {
		return err
	}

	col := ColumnMetadata{
		Name:     tag.Name,
		GoField:  field.Name,
		GoType:   field.Type,
		SQLType:  tag.sqlType(),
		Nullable: IsNullable(field.Type) || !(tag.Has("notNull") || tag.Has("primaryKey")),
		Unique:   tag.Has("unique"),
		Position: len(table.Columns),
	}
	if col.SQLType == "" {
		col.SQLType = p.types.GoTypeToPostgreSQL(field.Type)
	}
	if def := tag.Get("default"); def != "" {
		if err := ValidateDefaultValue(def); err != nil {
			return err
		}
		col.Default = &def
	}

	if tag.Has("primaryKey") {
		if table.PrimaryKey == nil {
			table.PrimaryKey = &PrimaryKeyMetadata{Name: table.Name + "_pkey"}
		}
		table.PrimaryKey.Columns = append(table.PrimaryKey.Columns, col.Name)
	}
	if col.Unique {
		table.Constraints = append(table.Constraints, ConstraintMetadata{
			Name:    table.Name + "_" + col.Name + "_key",
			Type:    UniqueConstraint,
			Columns: []string{col.Name},
		})
	}
	if ref := tag.Get("fk"); ref != "" {
		refTable, refColumn, ok := splitReference(ref)
		if !ok {
			return fmt.Errorf("invalid foreign key reference %q", ref)
		}
		table.ForeignKeys = append(table.ForeignKeys, ForeignKeyMetadata{
			Name:              "fk_" + table.Name + "_" + col.Name + "_" + refTable,
			Columns:           []string{col.Name},
			ReferencedTable:   refTable,
			ReferencedColumns: []string{refColumn},
			OnDelete:          referenceAction(tag.Get("onDelete")),
			OnUpdate:          referenceAction(tag.Get("onUpdate")),
		})
	}

	table.Columns = append(table.Columns, col)
	return nil
}

// tableName is TableName() when the model implements TableNamer and returns
// a non-empty name, otherwise the snake_cased struct name.
func tableName(t reflect.Type) string {
	if namer, ok := reflect.New(t).Interface().(TableNamer); ok {
		if name := namer.TableName(); name != "" {
			return name
		}
	}
	return toSnakeCase(t.Name())
}

// splitReference accepts "table(column)" or "table.column".
func splitReference(ref string) (table, column string, ok bool) {
	if open := strings.IndexByte(ref, '('); open > 0 && strings.HasSuffix(ref, ")") {
		table, column = ref[:open], ref[open+1:len(ref)-1]
	} else {
		table, column, _ = strings.Cut(ref, ".")
	}
	return table, column, table != "" && column != ""
}
