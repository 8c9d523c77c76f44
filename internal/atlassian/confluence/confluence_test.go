package confluence

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

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	creds, err := auth.NewCredentials(auth.AuthModeAPIToken, "a@b.c", "xyz")
	require.NoError(t, err)
	conn, err := auth.NewConnectionConfig(server.URL, creds, 30)
	require.NoError(t, err)
	tr := transport.New(5*time.Second, nil)
	return NewClient(conn, tr, nil)
}

func TestStripHTMLTagsCollapsesAndUnescapes(t *testing.T) {
	got := stripHTMLTags("<p>Hello&nbsp;<b>World</b></p>")
	assert.Equal(t, "Hello World", got)
}

func TestRenderStorageFormatConvertsToMarkdown(t *testing.T) {
	got := renderStorageFormat("<h1>Title</h1><p>Body text</p>", nil)
	assert.Contains(t, got, "Title")
	assert.Contains(t, got, "Body text")
}

func TestHandleSearchRequiresQuery(t *testing.T) {
	handler := handleSearch(nil)
	resp := handler(context.Background(), jsonx.ExtractArgumentMap("{}"))
	assert.True(t, resp.IsError)
}

func TestHandleSearchTalliesTotalSize(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"totalSize":3,"results":[]}`))
	})
	handler := handleSearch(client)
	resp := handler(context.Background(), jsonx.ExtractArgumentMap(`{"query":"login timeout"}`))
	require.False(t, resp.IsError)
	assert.Equal(t, 3, resp.ItemCount)
}

func TestHandleGetPageRendersMarkdownFromStorage(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"title":"My Page","body":{"storage":{"value":"<p>Hello</p>"}}}`))
	})
	handler := handleGetPage(client)
	resp := handler(context.Background(), jsonx.ExtractArgumentMap(`{"pageId":"123"}`))
	require.False(t, resp.IsError)
	assert.Contains(t, resp.Text(), "My Page")
	assert.Contains(t, resp.Text(), "Hello")
}

func TestHandleUpdatePageIncrementsVersion(t *testing.T) {
	var gotBody string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		buf := make([]byte, 4096)
		n, _ := r.Body.Read(buf)
		gotBody = string(buf[:n])
		w.Write([]byte(`{"id":"123"}`))
	})
	handler := handleUpdatePage(client)
	resp := handler(context.Background(), jsonx.ExtractArgumentMap(`{"pageId":"123","title":"New Title","version":1}`))
	require.False(t, resp.IsError)
	assert.Contains(t, gotBody, `"number":2`)
}

func TestHandleGetPageChildrenRendersMarkdownForEachChild(t *testing.T) {
	var gotPath string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.String()
		w.Write([]byte(`{"results":[{"title":"Child A","body":{"storage":{"value":"<p>A body</p>"}}},{"title":"Child B","body":{"storage":{"value":"<p>B body</p>"}}}]}`))
	})
	handler := handleGetPageChildren(client)
	resp := handler(context.Background(), jsonx.ExtractArgumentMap(`{"pageId":"123"}`))
	require.False(t, resp.IsError)
	assert.Contains(t, gotPath, "body-format=storage")
	assert.Equal(t, 2, resp.ItemCount)
	assert.Contains(t, resp.Text(), "Child A")
	assert.Contains(t, resp.Text(), "A body")
	assert.Contains(t, resp.Text(), "Child B")
	assert.Contains(t, resp.Text(), "B body")
}

func TestHandleCreatePageRequiresTitle(t *testing.T) {
	handler := handleCreatePage(nil)
	resp := handler(context.Background(), jsonx.ExtractArgumentMap(`{"spaceId":"DEV"}`))
	assert.True(t, resp.IsError)
}

func TestHandleCreatePageRejectsBlankTitleViaValidation(t *testing.T) {
	handler := handleCreatePage(nil)
	resp := handler(context.Background(), jsonx.ExtractArgumentMap(`{"spaceId":"DEV","title":""}`))
	assert.True(t, resp.IsError)
	assert.Contains(t, resp.Text(), "Invalid arguments")
}

func TestRegisterWithUnavailableReasonReturnsConfigError(t *testing.T) {
	registry := mcpserver.NewRegistry()
	Register(registry, nil, "ATLASSIAN_BASE_URL is not configured")

	handler, ok := registry.Lookup("confluence_search")
	require.True(t, ok)
	resp := handler(context.Background(), jsonx.ExtractArgumentMap(`{"query":"x"}`))
	assert.True(t, resp.IsError)
}

func TestRegisterRegistersAllSevenTools(t *testing.T) {
	registry := mcpserver.NewRegistry()
	Register(registry, nil, "unconfigured")
	assert.Len(t, registry.Tools(), 7)
}
