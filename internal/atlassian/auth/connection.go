package auth

import "strings"

const (
	minTimeoutSeconds     = 1
	maxTimeoutSeconds     = 300
	defaultTimeoutSeconds = 30
)

// ConnectionConfig is an immutable record of a product's base URL,
// credentials, and request timeout. Constructed once at startup and
// read-only for the process lifetime.
type ConnectionConfig struct {
	baseURL        string
	credentials    *Credentials
	timeoutSeconds int
}

// NewConnectionConfig validates and constructs a ConnectionConfig.
// timeoutSeconds of 0 is treated as "use the default" (30s); any other
// value outside [1, 300] is a construction-time error.
func NewConnectionConfig(baseURL string, credentials *Credentials, timeoutSeconds int) (*ConnectionConfig, error) {
	trimmed := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if trimmed == "" {
		return nil, &InvalidConfiguration{Reason: "base URL must not be blank"}
	}
	if credentials == nil {
		return nil, &InvalidConfiguration{Reason: "credentials must not be nil"}
	}

	timeout := timeoutSeconds
	if timeout == 0 {
		timeout = defaultTimeoutSeconds
	}
	if timeout < minTimeoutSeconds || timeout > maxTimeoutSeconds {
		return nil, &InvalidConfiguration{Reason: "timeoutSeconds must be between 1 and 300"}
	}

	return &ConnectionConfig{baseURL: trimmed, credentials: credentials, timeoutSeconds: timeout}, nil
}

// BaseURL returns the trailing-slash-stripped base URL.
func (c *ConnectionConfig) BaseURL() string { return c.baseURL }

// Credentials returns the active credentials.
func (c *ConnectionConfig) Credentials() *Credentials { return c.credentials }

// TimeoutSeconds returns the configured request timeout.
func (c *ConnectionConfig) TimeoutSeconds() int { return c.timeoutSeconds }

// BuildURL concatenates the base URL with apiPath, inserting a single "/"
// between them if apiPath doesn't already start with one.
func (c *ConnectionConfig) BuildURL(apiPath string) string {
	if strings.HasPrefix(apiPath, "/") {
		return c.baseURL + apiPath
	}
	return c.baseURL + "/" + apiPath
}
