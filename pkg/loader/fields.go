package loader

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/marshallshelly/booksales/pkg/runtime"
)

// DateLayout is the calendar date format of date_sale.
const DateLayout = "2006-01-02"

// fieldReader pulls typed values out of a record's fields and keeps the
// first conversion failure.
type fieldReader struct {
	index  int
	model  Model
	fields map[string]any
	err    error
}

func (f *fieldReader) fail(name, format string, args ...any) {
	if f.err != nil {
		return
	}
	f.err = &runtime.ValidationError{
		Index:   f.index,
		Model:   f.model.String(),
		Field:   name,
		Message: fmt.Sprintf(format, args...),
	}
}

func (f *fieldReader) value(name string) (any, bool) {
	v, ok := f.fields[name]
	if !ok || v == nil {
		f.fail(name, "missing value")
		return nil, false
	}
	return v, true
}

func (f *fieldReader) String(name string) string {
	v, ok := f.value(name)
	if !ok {
		return ""
	}
	s, ok := v.(string)
	if !ok {
		f.fail(name, "expected string, got %T", v)
		return ""
	}
	return s
}

// NullString is String for nullable columns: an explicit null gives nil.
// The key itself must still be present.
func (f *fieldReader) NullString(name string) *string {
	v, present := f.fields[name]
	if present && v == nil {
		return nil
	}
	s := f.String(name)
	if f.err != nil {
		return nil
	}
	return &s
}

func (f *fieldReader) Int(name string) int64 {
	v, ok := f.value(name)
	if !ok {
		return 0
	}
	n, err := toInt64(v)
	if err != nil {
		f.fail(name, "%v", err)
	}
	return n
}

// Float converts like a float() call: numbers and numeric strings.
func (f *fieldReader) Float(name string) float64 {
	v, ok := f.value(name)
	if !ok {
		return 0
	}
	n, err := toFloat64(v)
	if err != nil {
		f.fail(name, "%v", err)
	}
	return n
}

func (f *fieldReader) Date(name string) time.Time {
	v, ok := f.value(name)
	if !ok {
		return time.Time{}
	}
	switch d := v.(type) {
	case time.Time:
		return truncateDate(d)
	case string:
		s := strings.TrimSpace(d)
		if t, err := time.Parse(DateLayout, s); err == nil {
			return t
		}
		if t, err := time.Parse(time.RFC3339, s); err == nil {
			return truncateDate(t)
		}
		f.fail(name, "invalid date %q, want YYYY-MM-DD", d)
	default:
		f.fail(name, "expected date, got %T", v)
	}
	return time.Time{}
}

func truncateDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func toInt64(v any) (int64, error) {
	switch n := v.(type) {
	case int:
		return int64(n), nil
	case int64:
		return n, nil
	case uint64:
		if n > math.MaxInt64 {
			return 0, fmt.Errorf("integer %d out of range", n)
		}
		return int64(n), nil
	case float64:
		return floatToInt(n)
	case json.Number:
		if i, err := n.Int64(); err == nil {
			return i, nil
		}
		fl, err := n.Float64()
		if err != nil {
			return 0, fmt.Errorf("invalid integer %q", n)
		}
		return floatToInt(fl)
	case string:
		i, err := strconv.ParseInt(strings.TrimSpace(n), 10, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid integer %q", n)
		}
		return i, nil
	default:
		return 0, fmt.Errorf("expected integer, got %T", v)
	}
}

func floatToInt(f float64) (int64, error) {
	if f != math.Trunc(f) || f > math.MaxInt64 || f < math.MinInt64 {
		return 0, fmt.Errorf("expected integer, got %v", f)
	}
	return int64(f), nil
}

func toFloat64(v any) (float64, error) {
	switch n := v.(type) {
	case float64:
		return n, nil
	case int:
		return float64(n), nil
	case int64:
		return float64(n), nil
	case uint64:
		return float64(n), nil
	case json.Number:
		f, err := n.Float64()
		if err != nil {
			return 0, fmt.Errorf("invalid number %q", n)
		}
		return f, nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0, fmt.Errorf("invalid number %q", n)
		}
		return f, nil
	default:
		return 0, fmt.Errorf("expected number, got %T", v)
	}
}
