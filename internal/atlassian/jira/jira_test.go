package jira

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ternarybob/atlassian-mcp/internal/atlassian/auth"
	"github.com/ternarybob/atlassian-mcp/internal/atlassian/transport"
	"github.com/ternarybob/atlassian-mcp/internal/jsonx"
	"github.com/ternarybob/atlassian-mcp/internal/mcpserver"
)

func TestBuildADFDocumentRoundTrip(t *testing.T) {
	doc := buildADFDocument("Line 1\nLine 2\"quoted\"")
	assert.Contains(t, doc, `"type":"doc"`)
	assert.Contains(t, doc, `"version":1`)
	decoded := jsonx.ExtractAdfText(doc)
	assert.Equal(t, "Line 1\nLine 2\"quoted\"", decoded)
}

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	creds, err := auth.NewCredentials(auth.AuthModeAPIToken, "a@b.c", "xyz")
	require.NoError(t, err)
	conn, err := auth.NewConnectionConfig(server.URL, creds, 30)
	require.NoError(t, err)
	tr := transport.New(5*time.Second, nil)
	return NewClient(conn, tr)
}

func TestHandleSearchIssuesRequiresQuery(t *testing.T) {
	handler := handleSearchIssues(nil)
	resp := handler(context.Background(), jsonx.ExtractArgumentMap("{}"))
	assert.True(t, resp.IsError)
	assert.Contains(t, resp.Text(), "Missing required argument: 'query'")
}

func TestHandleSearchIssuesWrapsFreeTextQuery(t *testing.T) {
	var gotQuery string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		w.Write([]byte(`{"total":0,"issues":[]}`))
	})

	handler := handleSearchIssues(client)
	_ = handler(context.Background(), jsonx.ExtractArgumentMap(`{"query":"login timeout"}`))
	assert.Contains(t, gotQuery, "text%20~%20%22login%20timeout%22%20ORDER%20BY%20updated%20DESC")
}

func TestHandleSearchIssuesPassesStructuredJQLVerbatim(t *testing.T) {
	var gotQuery string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		w.Write([]byte(`{"total":2,"issues":[]}`))
	})

	handler := handleSearchIssues(client)
	resp := handler(context.Background(), jsonx.ExtractArgumentMap(`{"query":"project = FOO AND status = Done"}`))
	assert.False(t, resp.IsError)
	assert.Equal(t, 2, resp.ItemCount)
	assert.Contains(t, gotQuery, "project%20%3D%20FOO%20AND%20status%20%3D%20Done")
}

func TestHandleGetIssueRequiresIssueKey(t *testing.T) {
	handler := handleGetIssue(nil)
	resp := handler(context.Background(), jsonx.ExtractArgumentMap("{}"))
	assert.True(t, resp.IsError)
}

func TestHandleAddCommentWrapsADFEnvelope(t *testing.T) {
	var gotBody string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		buf := make([]byte, 4096)
		n, _ := r.Body.Read(buf)
		gotBody = string(buf[:n])
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"id":"10001"}`))
	})

	handler := handleAddComment(client)
	resp := handler(context.Background(), jsonx.ExtractArgumentMap(`{"issueKey":"PROJ-1","comment":"Line 1\nLine 2\"quoted\""}`))
	require.False(t, resp.IsError)
	assert.Contains(t, gotBody, `"type":"doc"`)
	assert.Contains(t, gotBody, `"version":1`)
	decoded := jsonx.ExtractAdfText(gotBody)
	assert.Equal(t, "Line 1\nLine 2\"quoted\"", decoded)
}

func TestHandleCreateIssueRejectsBlankSummaryViaValidation(t *testing.T) {
	handler := handleCreateIssue(nil)
	resp := handler(context.Background(), jsonx.ExtractArgumentMap(`{"projectKey":"PROJ","summary":""}`))
	assert.True(t, resp.IsError)
	assert.Contains(t, resp.Text(), "Invalid arguments")
}

func TestRegisterWithUnavailableReasonReturnsConfigError(t *testing.T) {
	registry := mcpserver.NewRegistry()
	Register(registry, nil, "ATLASSIAN_BASE_URL is not configured")

	handler, ok := registry.Lookup("jira_search_issues")
	require.True(t, ok)
	resp := handler(context.Background(), jsonx.ExtractArgumentMap(`{"query":"x"}`))
	assert.True(t, resp.IsError)
	assert.Contains(t, resp.Text(), "not configured")
}

func TestRegisterRegistersAllElevenTools(t *testing.T) {
	registry := mcpserver.NewRegistry()
	Register(registry, nil, "unconfigured")
	assert.Len(t, registry.Tools(), 11)
}
