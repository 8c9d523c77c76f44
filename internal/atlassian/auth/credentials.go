// Package auth models the two immutable value records the rest of the
// gateway depends on for every outbound request: Credentials (auth mode +
// secret, with header synthesis) and ConnectionConfig (base URL + timeout +
// credentials). Both are validated in their constructors, which return an
// error rather than ever admitting an invalid value into the system.
package auth

import (
	"encoding/base64"
	"fmt"
	"strings"
)

// AuthMode is a closed enumeration of the two credential shapes the gateway
// understands.
type AuthMode int

const (
	// AuthModeAPIToken is Basic auth: email + API token.
	AuthModeAPIToken AuthMode = iota
	// AuthModePAT is Bearer auth: a personal access token, no email.
	AuthModePAT
)

func (m AuthMode) String() string {
	switch m {
	case AuthModeAPIToken:
		return "apiToken"
	case AuthModePAT:
		return "pat"
	default:
		return "unknown"
	}
}

// ParseAuthMode converts a config/env string ("apiToken" or "pat", case
// insensitive) to an AuthMode.
func ParseAuthMode(s string) (AuthMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "apitoken", "api_token", "basic", "":
		return AuthModeAPIToken, nil
	case "pat", "bearer", "personalaccesstoken":
		return AuthModePAT, nil
	default:
		return AuthModeAPIToken, &InvalidConfiguration{Reason: fmt.Sprintf("unrecognized auth mode %q (expected \"apiToken\" or \"pat\")", s)}
	}
}

// InvalidConfiguration is returned by smart constructors when a value fails
// validation at construction time. No component downstream of startup
// observes this error type directly.
type InvalidConfiguration struct {
	Reason string
}

func (e *InvalidConfiguration) Error() string {
	return "invalid configuration: " + e.Reason
}

// Credentials is an immutable record of an auth mode and its secret. The
// secret is never exposed by String()/GoString() - only "***" is.
type Credentials struct {
	email  string
	secret string
	mode   AuthMode
}

// NewCredentials validates and constructs a Credentials value.
// Invariant: mode == AuthModeAPIToken requires a nonblank email.
// Invariant: secret must always be nonblank.
func NewCredentials(mode AuthMode, email, secret string) (*Credentials, error) {
	if strings.TrimSpace(secret) == "" {
		return nil, &InvalidConfiguration{Reason: "credential secret must not be blank"}
	}
	if mode == AuthModeAPIToken && strings.TrimSpace(email) == "" {
		return nil, &InvalidConfiguration{Reason: "email is required for apiToken auth mode"}
	}
	return &Credentials{email: email, secret: secret, mode: mode}, nil
}

// Mode returns the credential's auth mode.
func (c *Credentials) Mode() AuthMode { return c.mode }

// Email returns the configured email (empty for PAT credentials).
func (c *Credentials) Email() string { return c.email }

// AuthorizationHeader synthesizes the Authorization header value for this
// credential: "Basic base64(email:secret)" for ApiToken, "Bearer secret"
// for PAT.
func (c *Credentials) AuthorizationHeader() string {
	switch c.mode {
	case AuthModePAT:
		return "Bearer " + c.secret
	default:
		raw := c.email + ":" + c.secret
		return "Basic " + base64.StdEncoding.EncodeToString([]byte(raw))
	}
}

// String redacts the secret - safe to pass to a logger or %v.
func (c *Credentials) String() string {
	return fmt.Sprintf("Credentials{mode=%s, email=%s, secret=***}", c.mode, c.email)
}

// GoString redacts the secret for %#v formatting too.
func (c *Credentials) GoString() string {
	return c.String()
}
