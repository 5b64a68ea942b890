// Package report answers "which sales did this publisher make": it resolves
// a publisher by id or name and lists its sales by title, shop, price and
// date.
package report

import (
	"context"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/marshallshelly/booksales/pkg/models"
)

// User-visible outcome messages.
const (
	MsgNotFound = "publisher not found"
	MsgNoSales  = "no sales records for this publisher"
)

// Outcome is how a report run ended.
type Outcome int

const (
	Listed Outcome = iota
	NotFound
	NoSales
	// Failed accompanies an error: the store could not answer.
	Failed
)

func (o Outcome) String() string {
	switch o {
	case Listed:
		return "listed"
	case NotFound:
		return "not_found"
	case NoSales:
		return "no_sales"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// Identifier is operator input naming a publisher.
type Identifier struct {
	ID   int64
	Name string
	ByID bool
}

// ParseIdentifier treats s as a publisher id when it parses as an integer
// and as an exact publisher name otherwise.
func ParseIdentifier(s string) Identifier {
	if id, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64); err == nil {
		return Identifier{ID: id, ByID: true}
	}
	return Identifier{Name: s}
}

func (id Identifier) String() string {
	if id.ByID {
		return strconv.FormatInt(id.ID, 10)
	}
	return strconv.Quote(id.Name)
}

// Report is the structured result of a lookup.
type Report struct {
	Identifier Identifier
	Publisher  *models.Publisher
	Outcome    Outcome
	Lines      []SaleLine
}

// Reporter resolves publishers and lists their sales.
type Reporter struct {
	src Source
}

// New creates a Reporter reading from src.
func New(src Source) *Reporter {
	return &Reporter{src: src}
}

// Lines resolves identifier and fetches its sales without printing.
// A missing publisher or an empty sales list is an Outcome, not an error.
func (r *Reporter) Lines(ctx context.Context, identifier string) (*Report, error) {
	id := ParseIdentifier(identifier)
	rep := &Report{Identifier: id}

	var (
		publisher *models.Publisher
		err       error
	)
	if id.ByID {
		publisher, err = r.src.PublisherByID(ctx, id.ID)
	} else {
		publisher, err = r.src.PublisherByName(ctx, id.Name)
	}
	if isNotFound(err) {
		rep.Outcome = NotFound
		return rep, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to resolve publisher %s: %w", id, err)
	}
	rep.Publisher = publisher

	lines, err := r.src.Sales(ctx, publisher.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to query sales for publisher %d: %w", publisher.ID, err)
	}
	if len(lines) == 0 {
		rep.Outcome = NoSales
		return rep, nil
	}

	rep.Outcome = Listed
	rep.Lines = lines
	return rep, nil
}

// Run resolves identifier and writes either one line per sale or the
// matching outcome message to w.
func (r *Reporter) Run(ctx context.Context, identifier string, w io.Writer) (Outcome, error) {
	rep, err := r.Lines(ctx, identifier)
	if err != nil {
		return Failed, err
	}
	return rep.Outcome, rep.Write(w)
}

// Write prints the report in its plain-text form.
func (rep *Report) Write(w io.Writer) error {
	switch rep.Outcome {
	case NotFound:
		_, err := fmt.Fprintln(w, MsgNotFound)
		return err
	case NoSales:
		_, err := fmt.Fprintln(w, MsgNoSales)
		return err
	}
	for _, line := range rep.Lines {
		if _, err := fmt.Fprintln(w, FormatLine(line)); err != nil {
			return err
		}
	}
	return nil
}

// FormatLine renders "title | shop | price | date".
func FormatLine(l SaleLine) string {
	return fmt.Sprintf("%s | %s | %s | %s", l.Title, l.Shop, FormatPrice(l.Price), l.DateSale.Format("2006-01-02"))
}

// FormatPrice prints the shortest decimal that round-trips, always with a
// fractional part: 9.99, 10.0. Very large or small magnitudes use exponent
// form.
func FormatPrice(p float64) string {
	switch {
	case math.IsNaN(p):
		return "nan"
	case math.IsInf(p, 1):
		return "inf"
	case math.IsInf(p, -1):
		return "-inf"
	}

	if abs := math.Abs(p); abs != 0 && (abs < 1e-4 || abs >= 1e16) {
		return strconv.FormatFloat(p, 'e', -1, 64)
	}

	s := strconv.FormatFloat(p, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}
