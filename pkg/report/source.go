package report

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"time"

	"github.com/marshallshelly/booksales/pkg/builder"
	"github.com/marshallshelly/booksales/pkg/models"
	"github.com/marshallshelly/booksales/pkg/registry"
	"github.com/marshallshelly/booksales/pkg/runtime"
)

// SaleLine is one row of the publisher sales report.
type SaleLine struct {
	SaleID   int64     `po:"sale_id" json:"-"`
	Title    string    `po:"title" json:"title"`
	Shop     string    `po:"shop_name" json:"shop"`
	Price    float64   `po:"price" json:"price"`
	DateSale time.Time `po:"date_sale" json:"date_sale"`
}

// MarshalJSON writes the sale date as YYYY-MM-DD.
func (l SaleLine) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Title    string  `json:"title"`
		Shop     string  `json:"shop"`
		Price    float64 `json:"price"`
		DateSale string  `json:"date_sale"`
	}{l.Title, l.Shop, l.Price, l.DateSale.Format("2006-01-02")})
}

// Source is the data the Reporter reads.
type Source interface {
	// PublisherByID returns the publisher with the given key, or
	// runtime.ErrNotFound.
	PublisherByID(ctx context.Context, id int64) (*models.Publisher, error)
	// PublisherByName returns the first publisher with exactly this name,
	// or runtime.ErrNotFound.
	PublisherByName(ctx context.Context, name string) (*models.Publisher, error)
	// Sales returns every sale of books by the publisher.
	Sales(ctx context.Context, publisherID int64) ([]SaleLine, error)
}

// StoreSource reads from PostgreSQL through a builder.Querier.
type StoreSource struct {
	db *builder.DB
}

// NewStoreSource creates a Source over q. Passing a *builder.Session makes
// staged rows visible to the report.
func NewStoreSource(q builder.Querier, reg *registry.Registry) *StoreSource {
	return &StoreSource{db: builder.New(q, reg)}
}

// PublisherByID implements Source. Keys outside the range of the integer
// id column cannot match any row.
func (s *StoreSource) PublisherByID(ctx context.Context, id int64) (*models.Publisher, error) {
	if id > math.MaxInt32 || id < math.MinInt32 {
		return nil, runtime.ErrNotFound
	}
	return builder.Select[models.Publisher](s.db).
		Where(builder.Eq("publisher.id", id)).
		First(ctx)
}

// PublisherByName implements Source.
func (s *StoreSource) PublisherByName(ctx context.Context, name string) (*models.Publisher, error) {
	return builder.Select[models.Publisher](s.db).
		Where(builder.Eq("publisher.name", name)).
		OrderByAsc("publisher.id").
		First(ctx)
}

// Sales implements Source with a single join over sale, stock, book and shop.
func (s *StoreSource) Sales(ctx context.Context, publisherID int64) ([]SaleLine, error) {
	return SalesQuery(s.db, publisherID).All(ctx)
}

// SalesQuery builds the report query for one publisher.
func SalesQuery(db *builder.DB, publisherID int64) *builder.SelectQuery[SaleLine] {
	return builder.Project[SaleLine](db, "sale").
		Columns(
			"sale.id AS sale_id",
			"book.title AS title",
			"COALESCE(shop.name, '') AS shop_name",
			"sale.price AS price",
			"sale.date_sale AS date_sale",
		).
		InnerJoin("stock", "sale.id_stock = stock.id").
		InnerJoin("book", "stock.id_book = book.id").
		InnerJoin("shop", "stock.id_shop = shop.id").
		Where(builder.Eq("book.id_publisher", publisherID)).
		OrderByAsc("sale.date_sale").
		OrderByAsc("sale.id")
}

func isNotFound(err error) bool {
	return errors.Is(err, runtime.ErrNotFound)
}
