// Package schema turns po-tagged Go structs into table metadata.
package schema

import (
	"database/sql"
	"reflect"
	"time"
)

// nullTypes are the database/sql wrappers and the column type each stores.
var nullTypes = map[reflect.Type]string{
	reflect.TypeFor[sql.NullString]():  "text",
	reflect.TypeFor[sql.NullInt64]():   "bigint",
	reflect.TypeFor[sql.NullInt32]():   "integer",
	reflect.TypeFor[sql.NullFloat64](): "double precision",
	reflect.TypeFor[sql.NullBool]():    "boolean",
	reflect.TypeFor[sql.NullTime]():    "timestamp with time zone",
}

var kindTypes = map[reflect.Kind]string{
	reflect.Bool:    "boolean",
	reflect.Int8:    "smallint",
	reflect.Int16:   "smallint",
	reflect.Uint8:   "smallint",
	reflect.Int32:   "integer",
	reflect.Int:     "integer",
	reflect.Uint16:  "integer",
	reflect.Int64:   "bigint",
	reflect.Uint32:  "bigint",
	reflect.Uint64:  "bigint",
	reflect.Float32: "real",
	reflect.Float64: "double precision",
	reflect.String:  "text",
}

var timeType = reflect.TypeFor[time.Time]()

// TypeMapper picks a column type for fields whose tag names none.
type TypeMapper struct {
	custom map[reflect.Type]string
}

// NewTypeMapper creates a TypeMapper with only the built-in mappings.
func NewTypeMapper() *TypeMapper {
	return &TypeMapper{custom: make(map[reflect.Type]string)}
}

// RegisterType overrides the column type for goType.
func (tm *TypeMapper) RegisterType(goType reflect.Type, pgType string) {
	tm.custom[goType] = pgType
}

// GoTypeToPostgreSQL returns the column type for t, or "" when there is no
// mapping. Pointers map like their element type.
func (tm *TypeMapper) GoTypeToPostgreSQL(t reflect.Type) string {
	if pgType, ok := tm.custom[t]; ok {
		return pgType
	}
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}

	if t == timeType {
		return "timestamp with time zone"
	}
	if pgType, ok := nullTypes[t]; ok {
		return pgType
	}
	if t.Kind() == reflect.Slice && t.Elem().Kind() == reflect.Uint8 {
		return "bytea"
	}
	return kindTypes[t.Kind()]
}

// IsNullable reports whether values of t can hold NULL.
func IsNullable(t reflect.Type) bool {
	if t.Kind() == reflect.Pointer {
		return true
	}
	_, ok := nullTypes[t]
	return ok
}

// DefaultTypeMapper is used by parsers created with NewParser.
var DefaultTypeMapper = NewTypeMapper()
