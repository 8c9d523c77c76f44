package confluence

import (
	"html"
	"regexp"
	"strings"

	md "github.com/JohannesKaufmann/html-to-markdown"

	"github.com/ternarybob/arbor"
)

var (
	tagPattern   = regexp.MustCompile(`<[^>]*>`)
	spacePattern = regexp.MustCompile(`\s+`)
)

// stripHTMLTags removes HTML tags, collapses whitespace, and decodes
// entities. Used only as a fallback when markdown conversion itself fails.
func stripHTMLTags(htmlStr string) string {
	stripped := tagPattern.ReplaceAllString(htmlStr, "")
	cleaned := spacePattern.ReplaceAllString(stripped, " ")
	return strings.TrimSpace(html.UnescapeString(cleaned))
}

// renderStorageFormat converts Confluence's storage-format HTML body to
// Markdown. On conversion failure, or when conversion yields empty output
// for non-empty input, falls back to a plain tag-stripped rendering rather
// than surfacing raw HTML to the caller.
func renderStorageFormat(htmlBody string, logger arbor.ILogger) string {
	if htmlBody == "" {
		return ""
	}

	converter := md.NewConverter("", true, nil)
	converted, err := converter.ConvertString(htmlBody)
	if err != nil {
		if logger != nil {
			logger.Warn().Err(err).Msg("confluence storage format to markdown conversion failed, using fallback")
		}
		return stripHTMLTags(htmlBody)
	}

	trimmed := strings.TrimSpace(converted)
	if trimmed == "" {
		if logger != nil {
			logger.Warn().Msg("confluence markdown conversion produced empty output, applying fallback strip")
		}
		return stripHTMLTags(htmlBody)
	}
	return trimmed
}
