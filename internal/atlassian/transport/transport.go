// Package transport implements the single shared, thread-safe HTTP
// transport every product client sends requests through. It attaches auth
// and content headers, never retries, and wraps non-2xx responses in a
// RemoteError carrying a truncated body for diagnostics.
package transport

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/atlassian-mcp/internal/atlassian/auth"
	"github.com/ternarybob/atlassian-mcp/internal/textutil"
)

const maxErrorBodyLen = 500

// RemoteError wraps a non-2xx HTTP response from an Atlassian product API.
type RemoteError struct {
	Status int
	Method string
	URL    string
	Body   string
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("remote error: %s %s returned status %d: %s", e.Method, e.URL, e.Status, e.Body)
}

// Transport is the shared *http.Client wrapper. Safe for concurrent use -
// product clients and the unified search fan-out all share one instance.
type Transport struct {
	client *http.Client
	logger arbor.ILogger
}

// New builds a Transport with the given request timeout as a client-level
// default. Per-request timeouts are still governed by the caller's context.
func New(timeout time.Duration, logger arbor.ILogger) *Transport {
	return &Transport{
		client: &http.Client{Timeout: timeout},
		logger: logger,
	}
}

// Do sends an HTTP request carrying creds' Authorization header. On a 2xx
// response it returns the raw body as a string, unparsed. On a non-2xx
// response it returns a *RemoteError with the body truncated to 500
// characters.
// Never retries.
func (t *Transport) Do(ctx context.Context, method, url string, body io.Reader, creds *auth.Credentials) (string, error) {
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if creds != nil {
		req.Header.Set("Authorization", creds.AuthorizationHeader())
	}

	if t.logger != nil {
		t.logger.Debug().Str("method", method).Str("url", url).Msg("atlassian request")
	}

	resp, err := t.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response body: %w", err)
	}
	text := string(raw)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		truncated := textutil.Truncate(text, maxErrorBodyLen)
		if t.logger != nil {
			t.logger.Warn().Str("method", method).Str("url", url).Int("status", resp.StatusCode).Msg("atlassian request returned non-2xx")
		}
		return "", &RemoteError{Status: resp.StatusCode, Method: method, URL: url, Body: truncated}
	}

	return text, nil
}

// Get issues a GET request.
func (t *Transport) Get(ctx context.Context, url string, creds *auth.Credentials) (string, error) {
	return t.Do(ctx, http.MethodGet, url, nil, creds)
}

// Post issues a POST request with the given JSON body.
func (t *Transport) Post(ctx context.Context, url, jsonBody string, creds *auth.Credentials) (string, error) {
	return t.Do(ctx, http.MethodPost, url, stringReader(jsonBody), creds)
}

// Put issues a PUT request with the given JSON body.
func (t *Transport) Put(ctx context.Context, url, jsonBody string, creds *auth.Credentials) (string, error) {
	return t.Do(ctx, http.MethodPut, url, stringReader(jsonBody), creds)
}

// Delete issues a DELETE request with no body.
func (t *Transport) Delete(ctx context.Context, url string, creds *auth.Credentials) (string, error) {
	return t.Do(ctx, http.MethodDelete, url, nil, creds)
}

func stringReader(s string) io.Reader {
	if s == "" {
		return nil
	}
	return strings.NewReader(s)
}
