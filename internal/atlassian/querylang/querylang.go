// Package querylang implements the structured-query auto-detection shared
// by the Jira/Confluence search handlers and the unified search engine: a
// query string that already looks like JQL/CQL is passed through verbatim,
// otherwise it is wrapped in a default free-text search.
package querylang

import "strings"

// IsStructured reports whether input already looks like a JQL/CQL
// expression: it contains an operator (=, ~), a boolean conjunction
// (" AND ", " OR "), an ORDER BY clause, or opens with one of the
// well-known field keywords.
func IsStructured(input string) bool {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return false
	}
	if strings.Contains(trimmed, "=") || strings.Contains(trimmed, "~") {
		return true
	}
	upper := strings.ToUpper(trimmed)
	if strings.Contains(upper, " AND ") || strings.Contains(upper, " OR ") || strings.Contains(upper, "ORDER BY") {
		return true
	}
	for _, keyword := range []string{"PROJECT", "STATUS", "TYPE", "SPACE"} {
		if strings.HasPrefix(upper, keyword) {
			return true
		}
	}
	return false
}

// escapeQuotes escapes double quotes for embedding inside a JQL/CQL string
// literal.
func escapeQuotes(s string) string {
	return strings.ReplaceAll(s, `"`, `\"`)
}

// JQLOrDefault returns input unchanged if it is already structured JQL,
// otherwise wraps it as a free-text search ordered by most recently updated.
func JQLOrDefault(input string) string {
	trimmed := strings.TrimSpace(input)
	if IsStructured(trimmed) {
		return trimmed
	}
	return `text ~ "` + escapeQuotes(trimmed) + `" ORDER BY updated DESC`
}

// CQLOrDefault returns input unchanged if it is already structured CQL,
// otherwise wraps it as a free-text search ordered by most recently
// modified.
func CQLOrDefault(input string) string {
	trimmed := strings.TrimSpace(input)
	if IsStructured(trimmed) {
		return trimmed
	}
	return `text ~ "` + escapeQuotes(trimmed) + `" ORDER BY lastModified DESC`
}
