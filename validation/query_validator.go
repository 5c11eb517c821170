// Package validation provides input validation for user queries.
package validation

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

// MaxQueryRunes bounds accepted query length. Questions run longer than
// catalog names, but unbounded input is a memory hazard.
const MaxQueryRunes = 500

// InvalidQueryError reports a rejected query. It is recoverable: the
// caller gets a structured failure response, nothing is processed.
type InvalidQueryError struct {
	Reason string
}

func (e *InvalidQueryError) Error() string {
	return fmt.Sprintf("invalid query: %s", e.Reason)
}

// Pre-compiled patterns, compiled once at package initialization.
var (
	// Letters (accents included), digits, whitespace and the
	// punctuation French questions actually use.
	queryRegex = regexp.MustCompile(`^[\p{L}\p{N}\s\-\.\+'’,;:!\?%/()°]+$`)

	// Injection markers checked as substrings; strings.Contains is far
	// cheaper than regex for these.
	dangerousPatterns = []string{
		"<script", "</script>", "javascript:", "onload=", "onerror=",
		"eval(", "expression(", "@import",
		"union select", "drop table", "delete from", "insert into",
		"../", "..\\", "%2e%2e", "file://",
		"{$ne:", "{$gt:", "{$where:", "{$regex:",
	}
)

// QueryValidator validates free-text query input.
type QueryValidator struct {
	maxRunes int
}

// NewQueryValidator creates a validator with the default length cap.
func NewQueryValidator() *QueryValidator {
	return &QueryValidator{maxRunes: MaxQueryRunes}
}

// ValidateQuery rejects empty, oversized or suspicious query text.
func (v *QueryValidator) ValidateQuery(query string) error {
	trimmed := strings.TrimSpace(query)
	if trimmed == "" {
		return &InvalidQueryError{Reason: "query is empty"}
	}

	if utf8.RuneCountInString(trimmed) > v.maxRunes {
		return &InvalidQueryError{Reason: fmt.Sprintf("query exceeds %d characters", v.maxRunes)}
	}

	lower := strings.ToLower(trimmed)
	for _, pattern := range dangerousPatterns {
		if strings.Contains(lower, pattern) {
			return &InvalidQueryError{Reason: "query contains disallowed content"}
		}
	}

	if !queryRegex.MatchString(trimmed) {
		return &InvalidQueryError{Reason: "query contains unsupported characters"}
	}

	return nil
}
