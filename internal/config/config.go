// Package config implements the layered configuration loader: compiled
// defaults, overridden by an optional shared file, overridden by an
// optional local file, overridden last by ATLASSIAN_* environment
// variables. On validation failure Resolve reports a human-readable cause
// instead of erroring outright, so the server can start in unconfigured
// mode (registry served, every tool call fails with a clear message).
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"github.com/ternarybob/atlassian-mcp/internal/atlassian/auth"
)

const defaultBitbucketBaseURL = "https://api.bitbucket.org"

// Config is the flat property bag loaded from files and environment
// variables, prior to validation. Field names mirror the "Key (file)"
// column of the recognized options table.
type Config struct {
	BaseURL          string   `toml:"baseUrl"`
	BitbucketBaseURL string   `toml:"bitbucketBaseUrl"`
	AuthMode         string   `toml:"authMode"`
	Email            string   `toml:"email"`
	Token            string   `toml:"token"`
	TimeoutSeconds   int      `toml:"timeoutSeconds"`
	EnabledProducts  []string `toml:"enabledProducts"`
	ConfigDir        string   `toml:"configDir"`
}

// NewDefaultConfig returns the compiled defaults: 30s timeout, Bitbucket
// Cloud's public API root, and all three products enabled.
func NewDefaultConfig() *Config {
	return &Config{
		BitbucketBaseURL: defaultBitbucketBaseURL,
		AuthMode:         "apiToken",
		TimeoutSeconds:   30,
		EnabledProducts:  []string{"jira", "confluence", "bitbucket"},
	}
}

// SharedFileName and LocalFileName are the two optional TOML files layered
// on top of the compiled defaults, in that order.
const (
	SharedFileName = "atlassian.toml"
	LocalFileName  = "atlassian.local.toml"
)

// DefaultFilePaths returns the shared-then-local file paths under dir (or
// the process's working directory if dir is "").
func DefaultFilePaths(dir string) []string {
	if dir == "" {
		dir = "."
	}
	return []string{
		filepath.Join(dir, SharedFileName),
		filepath.Join(dir, LocalFileName),
	}
}

// Load starts from the compiled defaults, merges each file in paths in
// order (later files override earlier ones; a missing file is skipped, not
// an error), and finally applies environment variable overrides.
func Load(paths ...string) (*Config, error) {
	cfg := NewDefaultConfig()

	for _, path := range paths {
		if path == "" {
			continue
		}
		data, err := os.ReadFile(path)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, fmt.Errorf("read config file %s: %w", path, err)
		}
		if err := toml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config file %s: %w", path, err)
		}
	}

	applyEnvOverrides(cfg)

	// configDir may itself have been set by an env override; re-derive and
	// re-layer the file search if so. This keeps ATLASSIAN_CONFIG_DIR
	// usable even when it is only ever set via environment.
	if cfg.ConfigDir != "" {
		for _, path := range DefaultFilePaths(cfg.ConfigDir) {
			data, err := os.ReadFile(path)
			if err != nil {
				continue
			}
			if err := toml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse config file %s: %w", path, err)
			}
		}
		applyEnvOverrides(cfg)
	}

	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("ATLASSIAN_BASE_URL"); v != "" {
		cfg.BaseURL = v
	}
	if v := os.Getenv("ATLASSIAN_BITBUCKET_BASE_URL"); v != "" {
		cfg.BitbucketBaseURL = v
	}
	if v := os.Getenv("ATLASSIAN_AUTH_MODE"); v != "" {
		cfg.AuthMode = v
	}
	if v := os.Getenv("ATLASSIAN_EMAIL"); v != "" {
		cfg.Email = v
	}
	if v := os.Getenv("ATLASSIAN_TOKEN"); v != "" {
		cfg.Token = v
	}
	if v := os.Getenv("ATLASSIAN_TIMEOUT_SECONDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.TimeoutSeconds = n
		}
	}
	if v := os.Getenv("ATLASSIAN_ENABLED_PRODUCTS"); v != "" {
		cfg.EnabledProducts = splitCSV(v)
	}
	if v := os.Getenv("ATLASSIAN_CONFIG_DIR"); v != "" {
		cfg.ConfigDir = v
	}
}

func splitCSV(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		trimmed := strings.TrimSpace(p)
		if trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// Resolved is the fully validated, ready-to-use form of Config: built
// ConnectionConfigs per product plus the enabled-product set. ConfigError
// is non-nil when validation failed - the caller should start in
// unconfigured mode rather than abort.
type Resolved struct {
	JiraConn       *auth.ConnectionConfig
	ConfluenceConn *auth.ConnectionConfig
	BitbucketConn  *auth.ConnectionConfig
	EnabledProducts map[string]bool
	AuthModeName   string
	ConfigError    error
}

// Enabled reports whether product (lowercase: "jira", "confluence",
// "bitbucket") is in the enabled set.
func (r *Resolved) Enabled(product string) bool {
	return r.EnabledProducts[strings.ToLower(product)]
}

// Resolve validates cfg and builds the ConnectionConfig values every
// product client needs. On any validation failure it returns a Resolved
// with ConfigError set and partially-populated connections (nil where
// construction failed) rather than returning an error - callers use this to
// drive the unconfigured-mode fallback.
func Resolve(cfg *Config) *Resolved {
	enabled := map[string]bool{}
	for _, p := range cfg.EnabledProducts {
		enabled[strings.ToLower(strings.TrimSpace(p))] = true
	}

	result := &Resolved{EnabledProducts: enabled, AuthModeName: cfg.AuthMode}

	mode, err := auth.ParseAuthMode(cfg.AuthMode)
	if err != nil {
		result.ConfigError = fmt.Errorf("%w (set ATLASSIAN_AUTH_MODE to \"apiToken\" or \"pat\")", err)
		return result
	}

	if cfg.BaseURL == "" {
		result.ConfigError = fmt.Errorf("ATLASSIAN_BASE_URL is not configured (set it, or add baseUrl to %s/%s)", SharedFileName, LocalFileName)
		return result
	}

	creds, err := auth.NewCredentials(mode, cfg.Email, cfg.Token)
	if err != nil {
		result.ConfigError = fmt.Errorf("%w (set ATLASSIAN_EMAIL and ATLASSIAN_TOKEN)", err)
		return result
	}

	jiraConn, err := auth.NewConnectionConfig(cfg.BaseURL, creds, cfg.TimeoutSeconds)
	if err != nil {
		result.ConfigError = err
		return result
	}
	result.JiraConn = jiraConn
	result.ConfluenceConn = jiraConn // Jira and Confluence share one Atlassian Cloud site.

	bitbucketBase := cfg.BitbucketBaseURL
	if bitbucketBase == "" {
		bitbucketBase = defaultBitbucketBaseURL
	}
	bitbucketConn, err := auth.NewConnectionConfig(bitbucketBase, creds, cfg.TimeoutSeconds)
	if err != nil {
		result.ConfigError = err
		return result
	}
	result.BitbucketConn = bitbucketConn

	return result
}
