package builder

import (
	"errors"
	"testing"
	"time"

	"github.com/marshallshelly/booksales/pkg/models"
	"github.com/marshallshelly/booksales/pkg/runtime"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type saleRow struct {
	Title    string    `po:"title"`
	ShopName string    `po:"shop_name"`
	Price    float64   `po:"price"`
	DateSale time.Time `po:"date_sale"`
}

type unregistered struct {
	ID int64 `po:"id,primaryKey,integer"`
}

func TestSelectQuery_ToSQL(t *testing.T) {
	db := New(nil, models.MustRegistry()) // SQL generation only

	tests := []struct {
		name       string
		setupQuery func() Query
		wantSQL    string
		wantArgLen int
	}{
		{
			name: "simple select",
			setupQuery: func() Query {
				return Select[models.Publisher](db)
			},
			wantSQL: "SELECT publisher.id, publisher.name FROM publisher",
		},
		{
			name: "select specific columns",
			setupQuery: func() Query {
				return Select[models.Book](db).Columns("id", "title")
			},
			wantSQL: "SELECT id, title FROM book",
		},
		{
			name: "select with WHERE and LIMIT",
			setupQuery: func() Query {
				return Select[models.Publisher](db).Where(Eq("publisher.name", "Acme")).Limit(1)
			},
			wantSQL:    "SELECT publisher.id, publisher.name FROM publisher WHERE publisher.name = $1 LIMIT 1",
			wantArgLen: 1,
		},
		{
			name: "select with multiple WHERE",
			setupQuery: func() Query {
				return Select[models.Stock](db).
					Where(Eq("stock.id_book", 1)).
					Where(Gt("stock.count", 0))
			},
			wantSQL:    "SELECT stock.id, stock.id_book, stock.id_shop, stock.count FROM stock WHERE stock.id_book = $1 AND stock.count > $2",
			wantArgLen: 2,
		},
		{
			name: "select with ORDER BY",
			setupQuery: func() Query {
				return Select[models.Shop](db).Columns("name").OrderByDesc("name").OrderByAsc("id")
			},
			wantSQL: "SELECT name FROM shop ORDER BY name DESC, id ASC",
		},
		{
			name: "projection with joins",
			setupQuery: func() Query {
				return Project[saleRow](db, "sale").
					Columns("book.title AS title", "shop.name AS shop_name", "sale.price", "sale.date_sale").
					InnerJoin("stock", "sale.id_stock = stock.id").
					InnerJoin("book", "stock.id_book = book.id").
					InnerJoin("shop", "stock.id_shop = shop.id").
					Where(Eq("book.id_publisher", int64(1))).
					OrderByAsc("sale.date_sale").
					OrderByAsc("sale.id")
			},
			wantSQL: "SELECT book.title AS title, shop.name AS shop_name, sale.price, sale.date_sale FROM sale" +
				" INNER JOIN stock ON sale.id_stock = stock.id" +
				" INNER JOIN book ON stock.id_book = book.id" +
				" INNER JOIN shop ON stock.id_shop = shop.id" +
				" WHERE book.id_publisher = $1 ORDER BY sale.date_sale ASC, sale.id ASC",
			wantArgLen: 1,
		},
		{
			name: "projection default columns",
			setupQuery: func() Query {
				return Project[saleRow](db, "sale").LeftJoin("stock", "sale.id_stock = stock.id")
			},
			wantSQL: "SELECT title, shop_name, price, date_sale FROM sale LEFT JOIN stock ON sale.id_stock = stock.id",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sql, args, err := tt.setupQuery().ToSQL()
			require.NoError(t, err)
			assert.Equal(t, tt.wantSQL, sql)
			assert.Len(t, args, tt.wantArgLen)
		})
	}
}

func TestSelectQuery_Unregistered(t *testing.T) {
	db := New(nil, models.MustRegistry())

	_, _, err := Select[unregistered](db).ToSQL()
	assert.True(t, errors.Is(err, runtime.ErrNotRegistered), "got %v", err)
}

func TestInsertQuery_ToSQL(t *testing.T) {
	db := New(nil, models.MustRegistry())

	t.Run("single row", func(t *testing.T) {
		sql, args, err := Insert[models.Publisher](db).Values(models.Publisher{ID: 1, Name: new("Acme")}).ToSQL()
		require.NoError(t, err)
		assert.Equal(t, "INSERT INTO publisher (id, name) VALUES ($1, $2)", sql)
		assert.Equal(t, []any{int64(1), new("Acme")}, args)
	})

	t.Run("multiple rows with returning", func(t *testing.T) {
		sql, args, err := Insert[models.Shop](db).
			Values(models.Shop{ID: 1, Name: new("Downtown")}, models.Shop{ID: 2, Name: new("Uptown")}).
			Returning("id").
			ToSQL()
		require.NoError(t, err)
		assert.Equal(t, "INSERT INTO shop (id, name) VALUES ($1, $2), ($3, $4) RETURNING id", sql)
		assert.Len(t, args, 4)
	})

	t.Run("no values", func(t *testing.T) {
		_, _, err := Insert[models.Shop](db).ToSQL()
		assert.Error(t, err)
	})
}

func TestBuildInsert(t *testing.T) {
	reg := models.MustRegistry()
	table, err := reg.GetByName("sale")
	require.NoError(t, err)

	day := time.Date(2023, 5, 1, 0, 0, 0, 0, time.UTC)
	sql, args, err := buildInsert(table, &models.Sale{ID: 1, Price: 9.99, DateSale: day, StockID: 1, Count: 2})
	require.NoError(t, err)
	assert.Equal(t, "INSERT INTO sale (id, price, date_sale, id_stock, count) VALUES ($1, $2, $3, $4, $5)", sql)
	assert.Equal(t, []any{int64(1), 9.99, day, int64(1), int64(2)}, args)

	_, _, err = buildInsert(table, models.Book{ID: 1})
	assert.Error(t, err, "book value against sale table")

	var nilSale *models.Sale
	_, _, err = buildInsert(table, nilSale)
	assert.Error(t, err)
}

func TestPlaceholders(t *testing.T) {
	assert.Equal(t, "($1)", placeholders(1, 1))
	assert.Equal(t, "($4, $5, $6)", placeholders(4, 3))
	assert.Equal(t, "()", placeholders(1, 0))
}
