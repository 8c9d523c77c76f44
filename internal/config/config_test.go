package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearAtlassianEnv(t *testing.T) {
	t.Helper()
	vars := []string{
		"ATLASSIAN_BASE_URL", "ATLASSIAN_BITBUCKET_BASE_URL", "ATLASSIAN_AUTH_MODE",
		"ATLASSIAN_EMAIL", "ATLASSIAN_TOKEN", "ATLASSIAN_TIMEOUT_SECONDS",
		"ATLASSIAN_ENABLED_PRODUCTS", "ATLASSIAN_CONFIG_DIR",
	}
	for _, v := range vars {
		old, had := os.LookupEnv(v)
		os.Unsetenv(v)
		t.Cleanup(func() {
			if had {
				os.Setenv(v, old)
			} else {
				os.Unsetenv(v)
			}
		})
	}
}

func TestNewDefaultConfigTimeoutAndProducts(t *testing.T) {
	cfg := NewDefaultConfig()
	assert.Equal(t, 30, cfg.TimeoutSeconds)
	assert.Equal(t, defaultBitbucketBaseURL, cfg.BitbucketBaseURL)
	assert.ElementsMatch(t, []string{"jira", "confluence", "bitbucket"}, cfg.EnabledProducts)
}

func TestLoadSkipsMissingFiles(t *testing.T) {
	clearAtlassianEnv(t)
	cfg, err := Load(filepath.Join(t.TempDir(), "does-not-exist.toml"))
	require.NoError(t, err)
	assert.Equal(t, 30, cfg.TimeoutSeconds)
}

func TestLoadMergesSharedThenLocalFile(t *testing.T) {
	clearAtlassianEnv(t)
	dir := t.TempDir()
	shared := filepath.Join(dir, "shared.toml")
	local := filepath.Join(dir, "local.toml")

	require.NoError(t, os.WriteFile(shared, []byte(`baseUrl = "https://shared.atlassian.net"
timeoutSeconds = 45
`), 0644))
	require.NoError(t, os.WriteFile(local, []byte(`baseUrl = "https://local.atlassian.net"
`), 0644))

	cfg, err := Load(shared, local)
	require.NoError(t, err)
	assert.Equal(t, "https://local.atlassian.net", cfg.BaseURL)
	assert.Equal(t, 45, cfg.TimeoutSeconds)
}

func TestEnvOverridesTakePrecedenceOverFiles(t *testing.T) {
	clearAtlassianEnv(t)
	dir := t.TempDir()
	shared := filepath.Join(dir, "shared.toml")
	require.NoError(t, os.WriteFile(shared, []byte(`baseUrl = "https://file.atlassian.net"
timeoutSeconds = 45
`), 0644))

	os.Setenv("ATLASSIAN_BASE_URL", "https://env.atlassian.net")
	os.Setenv("ATLASSIAN_TIMEOUT_SECONDS", "90")
	os.Setenv("ATLASSIAN_ENABLED_PRODUCTS", "jira, bitbucket")

	cfg, err := Load(shared)
	require.NoError(t, err)
	assert.Equal(t, "https://env.atlassian.net", cfg.BaseURL)
	assert.Equal(t, 90, cfg.TimeoutSeconds)
	assert.Equal(t, []string{"jira", "bitbucket"}, cfg.EnabledProducts)
}

func TestResolveSucceedsWithCompleteConfig(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.BaseURL = "https://example.atlassian.net"
	cfg.Email = "a@b.c"
	cfg.Token = "xyz"

	resolved := Resolve(cfg)
	require.NoError(t, resolved.ConfigError)
	require.NotNil(t, resolved.JiraConn)
	require.NotNil(t, resolved.ConfluenceConn)
	require.NotNil(t, resolved.BitbucketConn)
	assert.True(t, resolved.Enabled("jira"))
	assert.Equal(t, "Basic YUBiLmM6eHl6", resolved.JiraConn.Credentials().AuthorizationHeader())
}

func TestResolveReportsUnconfiguredModeWhenBaseURLMissing(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Email = "a@b.c"
	cfg.Token = "xyz"

	resolved := Resolve(cfg)
	require.Error(t, resolved.ConfigError)
	assert.Nil(t, resolved.JiraConn)
	assert.Contains(t, resolved.ConfigError.Error(), "ATLASSIAN_BASE_URL")
}

func TestResolveReportsUnconfiguredModeWhenCredentialsMissing(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.BaseURL = "https://example.atlassian.net"

	resolved := Resolve(cfg)
	require.Error(t, resolved.ConfigError)
	assert.Nil(t, resolved.JiraConn)
}

func TestResolveRejectsBadAuthMode(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.BaseURL = "https://example.atlassian.net"
	cfg.Email = "a@b.c"
	cfg.Token = "xyz"
	cfg.AuthMode = "bogus"

	resolved := Resolve(cfg)
	require.Error(t, resolved.ConfigError)
	assert.Contains(t, resolved.ConfigError.Error(), "ATLASSIAN_AUTH_MODE")
}
