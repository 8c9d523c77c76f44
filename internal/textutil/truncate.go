// Package textutil holds small, pure string-formatting helpers shared
// across the HTTP transport and the unified search formatters.
package textutil

import (
	"net/url"
	"strings"
)

// Truncate returns s unchanged if it is already within limit; otherwise it
// is cut to limit-3 characters with an ellipsis appended. Idempotent:
// Truncate(Truncate(s, n), n) == Truncate(s, n).
func Truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	if limit <= 3 {
		if limit < 0 {
			limit = 0
		}
		return string(runes[:limit])
	}
	return string(runes[:limit-3]) + "..."
}

// QueryEscape percent-encodes s for use in a URL query string the same way
// url.QueryEscape does, except spaces come out as the literal "%20" rather
// than "+". The Jira/Confluence/Bitbucket REST APIs accept either, but the
// spec's worked examples are bit-exact against "%20".
func QueryEscape(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}
