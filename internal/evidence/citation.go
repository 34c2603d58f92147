package evidence

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"
)

const snippetLimit = 100

// Citation renders a record's provenance as "Page N in doc: 'snippet'".
func Citation(r Record) string {
	snippet := r.snippet
	if utf8.RuneCountInString(snippet) > snippetLimit {
		runes := []rune(snippet)
		snippet = string(runes[:snippetLimit]) + "..."
	}

	doc := r.document
	if doc == "" {
		doc = "unknown document"
	}

	if r.page > 0 {
		return fmt.Sprintf("Page %d in %s: '%s'", r.page, doc, snippet)
	}
	return fmt.Sprintf("%s: '%s'", doc, snippet)
}

// ParseAcademicYear extracts the starting year from "2024-25", "2024-2025",
// or "2024".
func ParseAcademicYear(s string) (int, error) {
	s = strings.TrimSpace(s)
	head, _, _ := strings.Cut(s, "-")

	year, err := strconv.Atoi(strings.TrimSpace(head))
	if err != nil {
		return 0, fmt.Errorf("invalid academic year %q", s)
	}
	if year < 1900 || year > 2200 {
		return 0, fmt.Errorf("academic year %d out of range", year)
	}
	return year, nil
}
