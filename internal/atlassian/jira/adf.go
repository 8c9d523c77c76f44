package jira

import "github.com/ternarybob/atlassian-mcp/internal/jsonx"

// buildADFDocument wraps plain text in the minimal Atlassian Document
// Format envelope Jira's v3 API requires for description and comment
// bodies: a doc containing one paragraph containing one text node. The text
// itself is JSON-escaped but the line breaks a caller passed in are kept as
// \n inside that single text node - Jira renders embedded newlines within a
// paragraph node as-is.
func buildADFDocument(text string) string {
	return `{"type":"doc","version":1,"content":[{"type":"paragraph","content":[{"type":"text","text":"` +
		jsonx.EscapeString(text) + `"}]}]}`
}

// wrapADFField embeds an ADF document as the value of fieldName inside a
// single-field JSON object, e.g. {"body": <doc>}.
func wrapADFField(fieldName, text string) string {
	return `{"` + fieldName + `":` + buildADFDocument(text) + `}`
}
