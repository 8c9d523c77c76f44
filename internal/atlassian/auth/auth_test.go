package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthorizationHeaderApiToken(t *testing.T) {
	creds, err := NewCredentials(AuthModeAPIToken, "a@b.c", "xyz")
	require.NoError(t, err)
	assert.Equal(t, "Basic YUBiLmM6eHl6", creds.AuthorizationHeader())
}

func TestAuthorizationHeaderPAT(t *testing.T) {
	creds, err := NewCredentials(AuthModePAT, "", "sometoken")
	require.NoError(t, err)
	assert.Equal(t, "Bearer sometoken", creds.AuthorizationHeader())
}

func TestNewCredentialsRejectsBlankSecret(t *testing.T) {
	_, err := NewCredentials(AuthModePAT, "", "")
	require.Error(t, err)
}

func TestNewCredentialsRequiresEmailForApiToken(t *testing.T) {
	_, err := NewCredentials(AuthModeAPIToken, "", "secret")
	require.Error(t, err)
}

func TestCredentialsStringRedactsSecret(t *testing.T) {
	creds, err := NewCredentials(AuthModeAPIToken, "a@b.c", "supersecret")
	require.NoError(t, err)
	s := creds.String()
	assert.NotContains(t, s, "supersecret")
	assert.Contains(t, s, "***")
}

func TestParseAuthMode(t *testing.T) {
	mode, err := ParseAuthMode("apiToken")
	require.NoError(t, err)
	assert.Equal(t, AuthModeAPIToken, mode)

	mode, err = ParseAuthMode("pat")
	require.NoError(t, err)
	assert.Equal(t, AuthModePAT, mode)

	_, err = ParseAuthMode("bogus")
	require.Error(t, err)
}

func TestBuildUrlNormalization(t *testing.T) {
	creds, err := NewCredentials(AuthModePAT, "", "token")
	require.NoError(t, err)

	cases := []struct {
		baseURL string
		path    string
		want    string
	}{
		{"https://example.atlassian.net", "/rest/api/3/issue/ABC-1", "https://example.atlassian.net/rest/api/3/issue/ABC-1"},
		{"https://example.atlassian.net/", "/rest/api/3/issue/ABC-1", "https://example.atlassian.net/rest/api/3/issue/ABC-1"},
		{"https://example.atlassian.net", "rest/api/3/project", "https://example.atlassian.net/rest/api/3/project"},
		{"https://example.atlassian.net///", "rest/api/3/project", "https://example.atlassian.net/rest/api/3/project"},
	}
	for _, tc := range cases {
		conn, err := NewConnectionConfig(tc.baseURL, creds, 30)
		require.NoError(t, err)
		assert.Equal(t, tc.want, conn.BuildURL(tc.path))
	}
}

func TestNewConnectionConfigDefaultsTimeout(t *testing.T) {
	creds, err := NewCredentials(AuthModePAT, "", "token")
	require.NoError(t, err)

	conn, err := NewConnectionConfig("https://example.atlassian.net", creds, 0)
	require.NoError(t, err)
	assert.Equal(t, 30, conn.TimeoutSeconds())
}

func TestNewConnectionConfigRejectsOutOfRangeTimeout(t *testing.T) {
	creds, err := NewCredentials(AuthModePAT, "", "token")
	require.NoError(t, err)

	_, err = NewConnectionConfig("https://example.atlassian.net", creds, 301)
	require.Error(t, err)

	_, err = NewConnectionConfig("https://example.atlassian.net", creds, -1)
	require.Error(t, err)
}

func TestNewConnectionConfigRejectsBlankBaseURL(t *testing.T) {
	creds, err := NewCredentials(AuthModePAT, "", "token")
	require.NoError(t, err)

	_, err = NewConnectionConfig("   ", creds, 30)
	require.Error(t, err)
}
