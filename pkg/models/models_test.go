package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRegistry(t *testing.T) {
	reg, err := NewRegistry()
	require.NoError(t, err)

	assert.Equal(t, []string{"book", "publisher", "sale", "shop", "stock"}, reg.Names())

	tables, err := reg.Tables()
	require.NoError(t, err)

	order := make([]string, len(tables))
	for i, table := range tables {
		order[i] = table.Name
	}
	assert.Equal(t, []string{"publisher", "book", "shop", "stock", "sale"}, order)
}

func TestForeignKeyEdges(t *testing.T) {
	reg := MustRegistry()

	edges := map[string][]string{
		"publisher": nil,
		"shop":      nil,
		"book":      {"id_publisher->publisher"},
		"stock":     {"id_book->book", "id_shop->shop"},
		"sale":      {"id_stock->stock"},
	}

	for name, want := range edges {
		table, err := reg.GetByName(name)
		require.NoError(t, err)

		var got []string
		for _, fk := range table.ForeignKeys {
			got = append(got, fk.Columns[0]+"->"+fk.ReferencedTable)
			assert.Equal(t, []string{"id"}, fk.ReferencedColumns)
		}
		assert.Equal(t, want, got, "table %s", name)
	}
}

func TestColumnShapes(t *testing.T) {
	reg := MustRegistry()

	publisher, err := reg.GetByName("publisher")
	require.NoError(t, err)
	name := publisher.GetColumnByName("name")
	require.NotNil(t, name)
	assert.Equal(t, "varchar(40)", name.SQLType)
	assert.True(t, name.Unique)

	book, err := reg.GetByName("book")
	require.NoError(t, err)
	title := book.GetColumnByName("title")
	require.NotNil(t, title)
	assert.False(t, title.Nullable)

	sale, err := reg.GetByName("sale")
	require.NoError(t, err)
	assert.Equal(t, []string{"id", "price", "date_sale", "id_stock", "count"}, sale.ColumnNames())
	assert.Equal(t, "date", sale.GetColumnByName("date_sale").SQLType)
	assert.Equal(t, "double precision", sale.GetColumnByName("price").SQLType)
}
