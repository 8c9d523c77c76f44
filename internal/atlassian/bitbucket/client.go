// Package bitbucket implements the Bitbucket Cloud API 2.0 client and the 8
// bitbucket_* tool handlers. Pagination uses pagelen, Bitbucket Cloud's
// native page-size parameter.
package bitbucket

import (
	"context"
	"fmt"
	"net/url"

	"github.com/ternarybob/atlassian-mcp/internal/atlassian/auth"
	"github.com/ternarybob/atlassian-mcp/internal/atlassian/transport"
	"github.com/ternarybob/atlassian-mcp/internal/textutil"
)

// Client wraps one Bitbucket connection's base URL, credentials, and the
// shared transport.
type Client struct {
	conn      *auth.ConnectionConfig
	transport *transport.Transport
}

// NewClient builds a Bitbucket client over conn using the shared transport.
func NewClient(conn *auth.ConnectionConfig, t *transport.Transport) *Client {
	return &Client{conn: conn, transport: t}
}

func (c *Client) get(ctx context.Context, path string) (string, error) {
	return c.transport.Get(ctx, c.conn.BuildURL(path), c.conn.Credentials())
}

func (c *Client) post(ctx context.Context, path, body string) (string, error) {
	return c.transport.Post(ctx, c.conn.BuildURL(path), body, c.conn.Credentials())
}

// ListRepos lists repositories in a workspace.
func (c *Client) ListRepos(ctx context.Context, workspace string, pageLen int) (string, error) {
	path := fmt.Sprintf("/2.0/repositories/%s?pagelen=%d", url.PathEscape(workspace), pageLen)
	return c.get(ctx, path)
}

// GetRepo fetches a single repository.
func (c *Client) GetRepo(ctx context.Context, workspace, repoSlug string) (string, error) {
	return c.get(ctx, "/2.0/repositories/"+url.PathEscape(workspace)+"/"+url.PathEscape(repoSlug))
}

// ListPullRequests lists pull requests for a repository, optionally
// filtered by state.
func (c *Client) ListPullRequests(ctx context.Context, workspace, repoSlug string, pageLen int, state string) (string, error) {
	path := fmt.Sprintf("/2.0/repositories/%s/%s/pullrequests?pagelen=%d", url.PathEscape(workspace), url.PathEscape(repoSlug), pageLen)
	if state != "" {
		path += "&state=" + textutil.QueryEscape(state)
	}
	return c.get(ctx, path)
}

// GetPullRequest fetches a single pull request by id.
func (c *Client) GetPullRequest(ctx context.Context, workspace, repoSlug, prID string) (string, error) {
	path := "/2.0/repositories/" + url.PathEscape(workspace) + "/" + url.PathEscape(repoSlug) + "/pullrequests/" + url.PathEscape(prID)
	return c.get(ctx, path)
}

// SearchCode runs a code search across a workspace.
func (c *Client) SearchCode(ctx context.Context, workspace, query string) (string, error) {
	path := "/2.0/workspaces/" + url.PathEscape(workspace) + "/search/code?search_query=" + textutil.QueryEscape(query)
	return c.get(ctx, path)
}

// CreatePullRequest opens a new pull request from a pre-built request body.
func (c *Client) CreatePullRequest(ctx context.Context, workspace, repoSlug, body string) (string, error) {
	path := "/2.0/repositories/" + url.PathEscape(workspace) + "/" + url.PathEscape(repoSlug) + "/pullrequests"
	return c.post(ctx, path, body)
}

// ListBranches lists a repository's branches.
func (c *Client) ListBranches(ctx context.Context, workspace, repoSlug string, pageLen int) (string, error) {
	path := fmt.Sprintf("/2.0/repositories/%s/%s/refs/branches?pagelen=%d", url.PathEscape(workspace), url.PathEscape(repoSlug), pageLen)
	return c.get(ctx, path)
}

// GetCommits lists a repository's commits.
func (c *Client) GetCommits(ctx context.Context, workspace, repoSlug string, pageLen int, include string) (string, error) {
	path := fmt.Sprintf("/2.0/repositories/%s/%s/commits?pagelen=%d", url.PathEscape(workspace), url.PathEscape(repoSlug), pageLen)
	if include != "" {
		path += "&include=" + textutil.QueryEscape(include)
	}
	return c.get(ctx, path)
}
