package loader

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/marshallshelly/booksales/pkg/models"
	"github.com/marshallshelly/booksales/pkg/runtime"
)

// Stager accepts rows for later insertion. *builder.Session satisfies it.
type Stager interface {
	Add(model any) error
}

// Option configures a Loader.
type Option func(*Loader)

// WithStrict validates every entity against its validate tags before it is
// staged.
func WithStrict() Option {
	return func(l *Loader) {
		l.validate = newValidator()
	}
}

// Loader stages records into a Stager. It never commits.
type Loader struct {
	stager   Stager
	validate *validator.Validate
}

// Result summarises a Load call.
type Result struct {
	Staged  int
	Skipped int
	// Counts is the number of staged rows per model.
	Counts map[Model]int
}

// New creates a Loader staging into stager.
func New(stager Stager, opts ...Option) *Loader {
	l := &Loader{stager: stager}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load builds one entity per record, in order, and stages it. Records with
// an unrecognised model tag are counted in Result.Skipped and otherwise
// ignored. The first conversion, validation or staging error stops the
// load; rows staged before it stay staged.
func (l *Loader) Load(records []Record) (*Result, error) {
	result := &Result{Counts: make(map[Model]int)}

	for i, rec := range records {
		model, ok := ParseModel(rec.Model)
		if !ok {
			result.Skipped++
			continue
		}

		entity, err := build(i, model, rec)
		if err != nil {
			return result, err
		}

		if l.validate != nil {
			if err := l.check(i, model, entity); err != nil {
				return result, err
			}
		}

		if err := l.stager.Add(entity); err != nil {
			return result, fmt.Errorf("record %d (%s): %w", i, model, err)
		}
		result.Staged++
		result.Counts[model]++
	}

	return result, nil
}

// build converts a record into its model struct.
func build(index int, model Model, rec Record) (any, error) {
	f := &fieldReader{index: index, model: model, fields: rec.Fields}

	var entity any
	switch model {
	case ModelPublisher:
		entity = models.Publisher{
			ID:   rec.PK,
			Name: f.NullString("name"),
		}
	case ModelBook:
		entity = models.Book{
			ID:          rec.PK,
			Title:       f.String("title"),
			PublisherID: f.Int("id_publisher"),
		}
	case ModelShop:
		entity = models.Shop{
			ID:   rec.PK,
			Name: f.NullString("name"),
		}
	case ModelStock:
		entity = models.Stock{
			ID:     rec.PK,
			BookID: f.Int("id_book"),
			ShopID: f.Int("id_shop"),
			Count:  f.Int("count"),
		}
	case ModelSale:
		entity = models.Sale{
			ID:       rec.PK,
			Price:    f.Float("price"),
			DateSale: f.Date("date_sale"),
			StockID:  f.Int("id_stock"),
			Count:    f.Int("count"),
		}
	default:
		return nil, fmt.Errorf("record %d: unhandled model %s", index, model)
	}

	if f.err != nil {
		return nil, f.err
	}
	return entity, nil
}

func (l *Loader) check(index int, model Model, entity any) error {
	err := l.validate.Struct(entity)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err
	}

	fe := verrs[0]
	msg := "failed " + fe.Tag()
	if fe.Param() != "" {
		msg += "=" + fe.Param()
	}
	return &runtime.ValidationError{
		Index:   index,
		Model:   model.String(),
		Field:   fe.Field(),
		Message: msg,
	}
}

// newValidator reports field names by their data-file key.
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}
