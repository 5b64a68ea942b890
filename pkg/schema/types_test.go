package schema

import (
	"database/sql"
	"reflect"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTypeMapper_GoTypeToPostgreSQL(t *testing.T) {
	tm := NewTypeMapper()

	tests := []struct {
		goType reflect.Type
		want   string
	}{
		{reflect.TypeFor[bool](), "boolean"},
		{reflect.TypeFor[int16](), "smallint"},
		{reflect.TypeFor[int](), "integer"},
		{reflect.TypeFor[int64](), "bigint"},
		{reflect.TypeFor[float64](), "double precision"},
		{reflect.TypeFor[string](), "text"},
		{reflect.TypeFor[time.Time](), "timestamp with time zone"},
		{reflect.TypeFor[[]byte](), "bytea"},
		{reflect.TypeFor[sql.NullInt64](), "bigint"},
		{reflect.TypeFor[*string](), "text"},
		{reflect.TypeFor[*time.Time](), "timestamp with time zone"},
		{reflect.TypeFor[[]string](), ""},
		{reflect.TypeFor[map[string]int](), ""},
	}

	for _, tt := range tests {
		t.Run(tt.goType.String(), func(t *testing.T) {
			assert.Equal(t, tt.want, tm.GoTypeToPostgreSQL(tt.goType))
		})
	}
}

func TestTypeMapper_RegisterType(t *testing.T) {
	type money float64

	tm := NewTypeMapper()
	assert.Equal(t, "double precision", tm.GoTypeToPostgreSQL(reflect.TypeFor[money]()))

	tm.RegisterType(reflect.TypeFor[money](), "numeric(10,2)")
	assert.Equal(t, "numeric(10,2)", tm.GoTypeToPostgreSQL(reflect.TypeFor[money]()))
	assert.Empty(t, DefaultTypeMapper.custom, "registering on one mapper leaves the default alone")
}

func TestIsNullable(t *testing.T) {
	assert.True(t, IsNullable(reflect.TypeFor[*int]()))
	assert.True(t, IsNullable(reflect.TypeFor[sql.NullString]()))
	assert.True(t, IsNullable(reflect.TypeFor[sql.NullTime]()))
	assert.False(t, IsNullable(reflect.TypeFor[string]()))
	assert.False(t, IsNullable(reflect.TypeFor[time.Time]()))
}
