package schema

import (
	"fmt"
	"strings"
)

// TagKey is the struct tag read by the parser, as in `po:"name,integer"`.
const TagKey = "po"

// columnTag is a parsed tag value of the form
// "column,flag,option(value),key:value".
type columnTag struct {
	Name string
	opts map[string]string
}

func parseColumnTag(raw string) (columnTag, error) {
	parts := splitTopLevel(raw)
	if len(parts) == 0 || parts[0] == "" {
		return columnTag{}, fmt.Errorf("empty tag value")
	}

	tag := columnTag{Name: parts[0], opts: make(map[string]string, len(parts)-1)}
	for _, part := range parts[1:] {
		key, value, err := splitOption(part)
		if err != nil {
			return columnTag{}, err
		}
		tag.opts[key] = value
	}
	return tag, nil
}

// splitOption handles "flag", "option(value)" and "key:value". The colon form
// wins when it comes before any parenthesis so fk:book(id) stays intact.
func splitOption(part string) (string, string, error) {
	colon := strings.IndexByte(part, ':')
	paren := strings.IndexByte(part, '(')
	switch {
	case colon >= 0 && (paren < 0 || colon < paren):
		return part[:colon], part[colon+1:], nil
	case paren >= 0:
		if part[len(part)-1] != ')' {
			return "", "", fmt.Errorf("invalid option format: %s", part)
		}
		return part[:paren], part[paren+1 : len(part)-1], nil
	default:
		return part, "", nil
	}
}

// Has reports whether the option is present, with or without a value.
func (t columnTag) Has(key string) bool {
	_, ok := t.opts[key]
	return ok
}

// Get returns the option value, or "" when absent.
func (t columnTag) Get(key string) string {
	return t.opts[key]
}

// sqlTypes are the column types a tag may name directly. Order matters only
// when a tag names more than one.
var sqlTypes = []string{
	"varchar", "text", "char",
	"smallint", "integer", "bigint",
	"numeric", "decimal", "real", "double precision",
	"boolean",
	"date", "timestamptz", "timestamp",
}

// sqlType returns the explicit column type, including any size modifier.
func (t columnTag) sqlType() string {
	for _, name := range sqlTypes {
		mod, ok := t.opts[name]
		if !ok {
			continue
		}
		if mod == "" {
			return name
		}
		return name + "(" + mod + ")"
	}
	return ""
}

// splitTopLevel splits on commas outside parentheses and trims each part.
func splitTopLevel(s string) []string {
	var (
		parts []string
		depth int
		start int
	)
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '(':
			depth++
		case ')':
			depth--
		case ',':
			if depth == 0 {
				parts = append(parts, strings.TrimSpace(s[start:i]))
				start = i + 1
			}
		}
	}
	if start < len(s) {
		parts = append(parts, strings.TrimSpace(s[start:]))
	}
	return parts
}

// toSnakeCase turns PascalCase into snake_case.
func toSnakeCase(s string) string {
	var b strings.Builder
	b.Grow(len(s) + 4)
	for i, r := range s {
		if 'A' <= r && r <= 'Z' {
			if i > 0 {
				b.WriteByte('_')
			}
			r += 'a' - 'A'
		}
		b.WriteRune(r)
	}
	return b.String()
}

// referenceAction maps an onDelete/onUpdate tag value to a ReferenceAction.
// Unrecognised values mean NO ACTION.
func referenceAction(v string) ReferenceAction {
	v = strings.ToUpper(strings.TrimSpace(v))
	for _, a := range []ReferenceAction{Cascade, Restrict, SetNull, SetDefault} {
		if v == string(a) || v == strings.ReplaceAll(string(a), " ", "") {
			return a
		}
	}
	return NoAction
}
