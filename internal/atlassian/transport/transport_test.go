package transport

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ternarybob/atlassian-mcp/internal/atlassian/auth"
)

func testCreds(t *testing.T) *auth.Credentials {
	t.Helper()
	creds, err := auth.NewCredentials(auth.AuthModeAPIToken, "a@b.c", "xyz")
	require.NoError(t, err)
	return creds
}

func TestDoAttachesAuthorizationHeaderAndReturnsBody(t *testing.T) {
	var gotAuth, gotAccept string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotAccept = r.Header.Get("Accept")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"ok":true}`))
	}))
	defer server.Close()

	tr := New(5*time.Second, nil)
	body, err := tr.Get(context.Background(), server.URL, testCreds(t))
	require.NoError(t, err)
	assert.Equal(t, `{"ok":true}`, body)
	assert.Equal(t, "Basic YUBiLmM6eHl6", gotAuth)
	assert.Equal(t, "application/json", gotAccept)
}

func TestPostSetsContentType(t *testing.T) {
	var gotContentType, gotBody string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotContentType = r.Header.Get("Content-Type")
		buf := make([]byte, 64)
		n, _ := r.Body.Read(buf)
		gotBody = string(buf[:n])
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"id":1}`))
	}))
	defer server.Close()

	tr := New(5*time.Second, nil)
	body, err := tr.Post(context.Background(), server.URL, `{"x":1}`, testCreds(t))
	require.NoError(t, err)
	assert.Equal(t, `{"id":1}`, body)
	assert.Equal(t, "application/json", gotContentType)
	assert.Equal(t, `{"x":1}`, gotBody)
}

func TestDoWrapsNon2xxInRemoteError(t *testing.T) {
	longBody := strings.Repeat("x", 800)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(longBody))
	}))
	defer server.Close()

	tr := New(5*time.Second, nil)
	_, err := tr.Get(context.Background(), server.URL, testCreds(t))
	require.Error(t, err)

	var remoteErr *RemoteError
	require.ErrorAs(t, err, &remoteErr)
	assert.Equal(t, http.StatusInternalServerError, remoteErr.Status)
	assert.Equal(t, http.MethodGet, remoteErr.Method)
	assert.LessOrEqual(t, len(remoteErr.Body), 500)
	assert.True(t, strings.HasSuffix(remoteErr.Body, "..."))
}

func TestDeleteUsesDeleteMethod(t *testing.T) {
	var gotMethod string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	tr := New(5*time.Second, nil)
	_, err := tr.Delete(context.Background(), server.URL, testCreds(t))
	require.NoError(t, err)
	assert.Equal(t, http.MethodDelete, gotMethod)
}
