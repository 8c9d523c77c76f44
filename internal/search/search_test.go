package search

import (
	"context"
	"net/http"
	"net/http/httptest"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ternarybob/atlassian-mcp/internal/atlassian/auth"
	"github.com/ternarybob/atlassian-mcp/internal/atlassian/bitbucket"
	"github.com/ternarybob/atlassian-mcp/internal/atlassian/confluence"
	"github.com/ternarybob/atlassian-mcp/internal/atlassian/jira"
	"github.com/ternarybob/atlassian-mcp/internal/atlassian/transport"
	"github.com/ternarybob/atlassian-mcp/internal/jsonx"
)

func newConn(t *testing.T, handler http.HandlerFunc) *auth.ConnectionConfig {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	creds, err := auth.NewCredentials(auth.AuthModeAPIToken, "a@b.c", "xyz")
	require.NoError(t, err)
	conn, err := auth.NewConnectionConfig(server.URL, creds, 30)
	require.NoError(t, err)
	return conn
}

func TestHandleRequiresQuery(t *testing.T) {
	e := NewEngine(nil, nil, nil, nil)
	resp := e.handle(context.Background(), jsonx.ExtractArgumentMap("{}"))
	assert.True(t, resp.IsError)
}

func TestHandleReturnsNoResultsWhenNoProductsConfigured(t *testing.T) {
	e := NewEngine(nil, nil, nil, nil)
	resp := e.handle(context.Background(), jsonx.ExtractArgumentMap(`{"query":"anything"}`))
	require.False(t, resp.IsError)
	assert.Contains(t, resp.Text(), `No results found for: "anything"`)
}

func TestHandlePartialFailureRendersFailedSectionAndTalliesSuccessfulBranch(t *testing.T) {
	tr := transport.New(5*time.Second, nil)

	jiraConn := newConn(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte("boom"))
	})
	confluenceConn := newConn(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"totalSize":2,"results":[{"title":"Page A","space":{"key":"DEV"},"lastModified":"2026-01-01"},{"title":"Page B","space":{"key":"DEV"},"lastModified":"2026-01-02"}]}`))
	})

	e := NewEngine(jira.NewClient(jiraConn, tr), confluence.NewClient(confluenceConn, tr, nil), nil, nil)
	resp := e.handle(context.Background(), jsonx.ExtractArgumentMap(`{"query":"login timeout"}`))

	require.False(t, resp.IsError)
	text := resp.Text()
	assert.Regexp(t, regexp.MustCompile(`_Search failed: .*_`), text)
	assert.Contains(t, text, "### Jira")
	assert.Contains(t, text, "### Confluence Pages (2 found)")
	assert.Equal(t, 2, resp.ItemCount)
}

func TestHandleBitbucketOnlyRunsWhenWorkspaceProvided(t *testing.T) {
	var called bool
	tr := transport.New(5*time.Second, nil)
	bitbucketConn := newConn(t, func(w http.ResponseWriter, r *http.Request) {
		called = true
		w.Write([]byte(`{"values":[]}`))
	})

	e := NewEngine(nil, nil, bitbucket.NewClient(bitbucketConn, tr), nil)

	resp := e.handle(context.Background(), jsonx.ExtractArgumentMap(`{"query":"foo","products":"bitbucket"}`))
	require.False(t, resp.IsError)
	assert.False(t, called, "bitbucket branch should not run without a workspace argument")
	assert.Contains(t, resp.Text(), "No results found")

	resp2 := e.handle(context.Background(), jsonx.ExtractArgumentMap(`{"query":"foo","products":"bitbucket","workspace":"ws"}`))
	require.False(t, resp2.IsError)
	assert.True(t, called)
	assert.Contains(t, resp2.Text(), "No results found")
}

func TestFormatJiraResultsTruncatesSummaryAt55Chars(t *testing.T) {
	longSummary := "This is a very long summary that definitely exceeds fifty five characters in length"
	body := `{"total":1,"issues":[{"key":"ABC-1","fields":{"summary":"` + longSummary + `","status":{"name":"Open"},"issuetype":{"name":"Bug"}}}]}`
	section, total := formatJiraResults(body)
	assert.Equal(t, 1, total)
	for _, line := range []string{"ABC-1", "Open", "Bug"} {
		assert.Contains(t, section, line)
	}
	assert.NotContains(t, section, longSummary)
}
