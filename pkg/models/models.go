// Package models declares the book-retail schema: publishers, books, shops,
// stock levels and sales.
package models

import (
	"time"

	"github.com/marshallshelly/booksales/pkg/registry"
)

// Publisher owns books. Name is NULL when unknown.
type Publisher struct {
	ID   int64   `po:"id,primaryKey,integer" json:"id" validate:"gt=0"`
	Name *string `po:"name,varchar(40),unique" json:"name" validate:"omitempty,max=40"`
}

// Book is a title issued by a publisher.
type Book struct {
	ID          int64  `po:"id,primaryKey,integer" json:"id" validate:"gt=0"`
	Title       string `po:"title,varchar(40),notNull" json:"title" validate:"required,max=40"`
	PublisherID int64  `po:"id_publisher,integer,notNull,fk:publisher(id)" json:"id_publisher" validate:"gt=0"`
}

// Shop sells books. Name is NULL when unknown.
type Shop struct {
	ID   int64   `po:"id,primaryKey,integer" json:"id" validate:"gt=0"`
	Name *string `po:"name,varchar(40),unique" json:"name" validate:"omitempty,max=40"`
}

// Stock is the on-hand quantity of a book at a shop.
type Stock struct {
	ID     int64 `po:"id,primaryKey,integer" json:"id" validate:"gt=0"`
	BookID int64 `po:"id_book,integer,notNull,fk:book(id)" json:"id_book" validate:"gt=0"`
	ShopID int64 `po:"id_shop,integer,notNull,fk:shop(id)" json:"id_shop" validate:"gt=0"`
	Count  int64 `po:"count,integer,notNull" json:"count" validate:"gte=0"`
}

// Sale is a single sales transaction drawn from a stock row.
// Count is the number of units sold; Price is the transaction price.
type Sale struct {
	ID       int64     `po:"id,primaryKey,integer" json:"id" validate:"gt=0"`
	Price    float64   `po:"price,double precision,notNull" json:"price" validate:"gte=0"`
	DateSale time.Time `po:"date_sale,date,notNull" json:"date_sale" validate:"required"`
	StockID  int64     `po:"id_stock,integer,notNull,fk:stock(id)" json:"id_stock" validate:"gt=0"`
	Count    int64     `po:"count,integer,notNull" json:"count" validate:"gt=0"`
}

// All returns a zero value of every model, parents first.
func All() []any {
	return []any{
		Publisher{},
		Book{},
		Shop{},
		Stock{},
		Sale{},
	}
}

// NewRegistry returns a registry holding the five book-retail tables.
func NewRegistry() (*registry.Registry, error) {
	reg := registry.NewRegistry()
	if err := reg.Register(All()...); err != nil {
		return nil, err
	}
	return reg, nil
}

// MustRegistry is like NewRegistry but panics on error. The models are
// static, so an error here is a programming mistake.
func MustRegistry() *registry.Registry {
	reg, err := NewRegistry()
	if err != nil {
		panic(err)
	}
	return reg
}
