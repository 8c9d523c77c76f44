// Package confluence implements the Confluence REST v2 (pages/spaces) + v1
// (CQL content search) client and the 7 confluence_* tool handlers.
package confluence

import (
	"context"
	"fmt"
	"net/url"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/atlassian-mcp/internal/atlassian/auth"
	"github.com/ternarybob/atlassian-mcp/internal/atlassian/transport"
	"github.com/ternarybob/atlassian-mcp/internal/textutil"
)

// Client wraps one Confluence connection's base URL, credentials, and the
// shared transport. Confluence shares an Atlassian Cloud site with Jira, so
// callers typically pass the same ConnectionConfig used for jira.Client.
type Client struct {
	conn      *auth.ConnectionConfig
	transport *transport.Transport
	logger    arbor.ILogger
}

// NewClient builds a Confluence client over conn using the shared transport.
func NewClient(conn *auth.ConnectionConfig, t *transport.Transport, logger arbor.ILogger) *Client {
	return &Client{conn: conn, transport: t, logger: logger}
}

func (c *Client) get(ctx context.Context, path string) (string, error) {
	return c.transport.Get(ctx, c.conn.BuildURL(path), c.conn.Credentials())
}

func (c *Client) post(ctx context.Context, path, body string) (string, error) {
	return c.transport.Post(ctx, c.conn.BuildURL(path), body, c.conn.Credentials())
}

func (c *Client) put(ctx context.Context, path, body string) (string, error) {
	return c.transport.Put(ctx, c.conn.BuildURL(path), body, c.conn.Credentials())
}

func (c *Client) delete(ctx context.Context, path string) error {
	_, err := c.transport.Delete(ctx, c.conn.BuildURL(path), c.conn.Credentials())
	return err
}

// SearchCQL runs a CQL search against the v1 content search endpoint.
func (c *Client) SearchCQL(ctx context.Context, cql string, limit int) (string, error) {
	path := fmt.Sprintf("/rest/api/content/search?cql=%s&limit=%d", textutil.QueryEscape(cql), limit)
	return c.get(ctx, path)
}

// GetPage fetches a page's storage-format body by id.
func (c *Client) GetPage(ctx context.Context, pageID string) (string, error) {
	return c.get(ctx, "/api/v2/pages/"+url.PathEscape(pageID)+"?body-format=storage")
}

// CreatePage creates a new page from a pre-built request body.
func (c *Client) CreatePage(ctx context.Context, body string) (string, error) {
	return c.post(ctx, "/api/v2/pages", body)
}

// UpdatePage applies an update to an existing page.
func (c *Client) UpdatePage(ctx context.Context, pageID, body string) (string, error) {
	return c.put(ctx, "/api/v2/pages/"+url.PathEscape(pageID), body)
}

// ListSpaces lists all spaces visible to the credential.
func (c *Client) ListSpaces(ctx context.Context) (string, error) {
	return c.get(ctx, "/api/v2/spaces")
}

// GetPageChildren lists a page's direct children, each with its
// storage-format body so handleGetPageChildren can render Markdown for
// every child the same way handleGetPage does for a single page.
func (c *Client) GetPageChildren(ctx context.Context, pageID string) (string, error) {
	return c.get(ctx, "/api/v2/pages/"+url.PathEscape(pageID)+"/children?body-format=storage")
}

// DeletePage deletes a page by id.
func (c *Client) DeletePage(ctx context.Context, pageID string) error {
	return c.delete(ctx, "/api/v2/pages/"+url.PathEscape(pageID))
}
