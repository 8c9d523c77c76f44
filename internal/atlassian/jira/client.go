// Package jira implements the Jira REST v3 + Agile v1 client and the 11
// jira_* tool handlers. The client never parses a response body - every
// method returns the raw JSON text, which the unified search engine and the
// tool handlers read through jsonx instead.
package jira

import (
	"context"
	"fmt"
	"net/url"

	"github.com/ternarybob/atlassian-mcp/internal/atlassian/auth"
	"github.com/ternarybob/atlassian-mcp/internal/atlassian/transport"
	"github.com/ternarybob/atlassian-mcp/internal/textutil"
)

// Client wraps one Jira connection's base URL, credentials, and the shared
// transport.
type Client struct {
	conn      *auth.ConnectionConfig
	transport *transport.Transport
}

// NewClient builds a Jira client over conn using the shared transport.
func NewClient(conn *auth.ConnectionConfig, t *transport.Transport) *Client {
	return &Client{conn: conn, transport: t}
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

// SearchIssues runs a JQL search via the Agile-free search endpoint.
func (c *Client) SearchIssues(ctx context.Context, jql string, maxResults int) (string, error) {
	path := fmt.Sprintf("/rest/api/3/search?jql=%s&maxResults=%d", textutil.QueryEscape(jql), maxResults)
	return c.get(ctx, path)
}

// GetIssue fetches a single issue by key.
func (c *Client) GetIssue(ctx context.Context, issueKey string) (string, error) {
	return c.get(ctx, "/rest/api/3/issue/"+url.PathEscape(issueKey))
}

// CreateIssue creates an issue from a pre-built request body.
func (c *Client) CreateIssue(ctx context.Context, body string) (string, error) {
	return c.post(ctx, "/rest/api/3/issue", body)
}

// UpdateIssue applies a partial update to an issue.
func (c *Client) UpdateIssue(ctx context.Context, issueKey, body string) (string, error) {
	return c.put(ctx, "/rest/api/3/issue/"+url.PathEscape(issueKey), body)
}

// Transitions lists the transitions available for an issue.
func (c *Client) Transitions(ctx context.Context, issueKey string) (string, error) {
	return c.get(ctx, "/rest/api/3/issue/"+url.PathEscape(issueKey)+"/transitions")
}

// TransitionIssue applies a transition by id.
func (c *Client) TransitionIssue(ctx context.Context, issueKey, body string) (string, error) {
	_, err := c.post(ctx, "/rest/api/3/issue/"+url.PathEscape(issueKey)+"/transitions", body)
	return "", err
}

// ListProjects lists all projects visible to the credential.
func (c *Client) ListProjects(ctx context.Context) (string, error) {
	return c.get(ctx, "/rest/api/3/project")
}

// SearchUsers resolves a free-text name or email to candidate account ids.
func (c *Client) SearchUsers(ctx context.Context, query string) (string, error) {
	return c.get(ctx, "/rest/api/3/user/search?query="+textutil.QueryEscape(query))
}

// AddComment posts a comment body (already ADF-wrapped) to an issue.
func (c *Client) AddComment(ctx context.Context, issueKey, body string) (string, error) {
	return c.post(ctx, "/rest/api/3/issue/"+url.PathEscape(issueKey)+"/comment", body)
}

// GetComments lists an issue's comments.
func (c *Client) GetComments(ctx context.Context, issueKey string) (string, error) {
	return c.get(ctx, "/rest/api/3/issue/"+url.PathEscape(issueKey)+"/comment")
}

// AssignIssue sets an issue's assignee by account id.
func (c *Client) AssignIssue(ctx context.Context, issueKey, body string) (string, error) {
	_, err := c.put(ctx, "/rest/api/3/issue/"+url.PathEscape(issueKey)+"/assignee", body)
	return "", err
}

// GetActiveSprint returns the active sprint for a board.
func (c *Client) GetActiveSprint(ctx context.Context, boardID string) (string, error) {
	return c.get(ctx, "/rest/agile/1.0/board/"+url.PathEscape(boardID)+"/sprint?state=active")
}

// GetSprintIssues returns the active sprint's issues for a board.
func (c *Client) GetSprintIssues(ctx context.Context, boardID string, maxResults int) (string, error) {
	path := fmt.Sprintf("/rest/agile/1.0/board/%s/issue?state=active&maxResults=%d", url.PathEscape(boardID), maxResults)
	return c.get(ctx, path)
}
