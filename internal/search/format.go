package search

import (
	"fmt"
	"strings"

	"github.com/ternarybob/atlassian-mcp/internal/jsonx"
	"github.com/ternarybob/atlassian-mcp/internal/textutil"
)

const (
	jiraSummaryTruncateLen       = 55
	confluenceExcerptTruncateLen = 100
)

// formatJiraResults renders a Jira search response body as a Markdown
// table: | Key | Summary | Status | Type |. Missing fields render as "-".
func formatJiraResults(body string) (section string, total int) {
	total = jsonx.IntAt(body, "total", 0)
	issues := jsonx.ArrayBlocks(body, "issues")

	var sb strings.Builder
	sb.WriteString("| Key | Summary | Status | Type |\n")
	sb.WriteString("| --- | --- | --- | --- |\n")
	for _, issue := range issues {
		key := jsonx.StringOrDefault(issue, "key", "-")
		summary := orDash(jsonx.Navigate(issue, "fields", "summary"))
		summary = textutil.Truncate(summary, jiraSummaryTruncateLen)
		status := orDash(jsonx.Navigate(issue, "fields", "status", "name"))
		issueType := orDash(jsonx.Navigate(issue, "fields", "issuetype", "name"))
		sb.WriteString(fmt.Sprintf("| %s | %s | %s | %s |\n", key, summary, status, issueType))
	}
	return sb.String(), total
}

// formatConfluenceResults renders a Confluence CQL search response as a
// bulleted list: **title** [spaceKey] — lastModified, with an optional
// blockquote excerpt truncated to 100 chars.
func formatConfluenceResults(body string) (section string, total int) {
	total = jsonx.IntAt(body, "totalSize", jsonx.IntAt(body, "size", 0))
	results := jsonx.ArrayBlocks(body, "results")

	var sb strings.Builder
	for _, r := range results {
		title := orDash(jsonx.StringOrDefault(r, "title", ""))
		spaceKey := orDash(jsonx.Navigate(r, "space", "key"))
		lastModified := orDash(jsonx.StringOrDefault(r, "lastModified", ""))
		sb.WriteString(fmt.Sprintf("- **%s** [%s] — %s\n", title, spaceKey, lastModified))

		excerpt := jsonx.StringOrDefault(r, "excerpt", "")
		if excerpt != "" {
			sb.WriteString("  > " + textutil.Truncate(excerpt, confluenceExcerptTruncateLen) + "\n")
		}
	}
	return sb.String(), total
}

// formatBitbucketResults renders a Bitbucket code search response as a
// bulleted file list: `file/path` in **repository-name**.
func formatBitbucketResults(body string) (section string, total int) {
	values := jsonx.ArrayBlocks(body, "values")
	total = len(values)

	var sb strings.Builder
	for _, v := range values {
		path := orDash(jsonx.Navigate(v, "file", "path"))
		repoName := orDash(jsonx.Navigate(v, "file", "commit", "repository", "name"))
		sb.WriteString(fmt.Sprintf("- `%s` in **%s**\n", path, repoName))
	}
	return sb.String(), total
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}
