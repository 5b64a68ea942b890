package schema

import (
	"fmt"
	"strings"
)

// misspelled maps DEFAULT expressions that PostgreSQL rejects to the form it
// accepts.
var misspelled = map[string]string{
	"CURRENT TIMESTAMP": "CURRENT_TIMESTAMP",
	"CURRENT TIME":      "CURRENT_TIME",
	"CURRENT DATE":      "CURRENT_DATE",
	"NOW ()":            "NOW()",
}

// ValidateDefaultValue rejects DEFAULT expressions that are obviously not
// valid SQL: misspelled keywords, a bare function name without parentheses,
// or an unterminated string literal.
func ValidateDefaultValue(defaultVal string) error {
	trimmed := strings.TrimSpace(defaultVal)
	upper := strings.ToUpper(trimmed)

	for wrong, right := range misspelled {
		if strings.Contains(upper, wrong) {
			return fmt.Errorf("invalid default %q: use %s instead of %s", defaultVal, right, wrong)
		}
	}

	if strings.Count(trimmed, "'")%2 != 0 {
		return fmt.Errorf("invalid default %q: unterminated string literal", defaultVal)
	}

	if strings.HasSuffix(upper, "RANDOM") || strings.HasSuffix(upper, "NOW") {
		return fmt.Errorf("invalid default %q: missing parentheses, use %s()", defaultVal, trimmed)
	}

	return nil
}
