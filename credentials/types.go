package credentials

import (
	"strings"
	"time"
)

// ServiceCredentialPrefix marks a bearer value as a non-expiring service
// credential rather than a user session token.
const ServiceCredentialPrefix = "sk_service_"

// Kind classifies a validated bearer credential.
type Kind string

const (
	KindUser    Kind = "user"
	KindService Kind = "service"
)

// TokenInfo is the token endpoint response format as defined in RFC 6749.
// Returned from both the password login and the code exchange.
type TokenInfo struct {
	// AccessToken is the opaque bearer token.
	// Usage: Include in Authorization header: "Bearer <access_token>"
	AccessToken string `json:"access_token"`

	// TokenType indicates how to use the access token (always "Bearer").
	TokenType string `json:"token_type"`

	// ExpiresIn is the lifetime in seconds of the access token.
	ExpiresIn int `json:"expires_in"`

	// Scope is the comma-delimited scope list carried by the token, if any.
	Scope string `json:"scope,omitempty"`
}

// Session is a short-lived bearer credential bound to a logged-in principal.
// Expiry is lazy: sessions are checked at validation time, never swept.
type Session struct {
	Token     string
	Principal string
	Scopes    []string
	CreatedAt time.Time
	ExpiresAt time.Time
	Active    bool
}

// ServiceCredential is a non-expiring bearer credential for automation
// callers. The credential value doubles as its identifier.
type ServiceCredential struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Scopes      []string  `json:"permissions"`
	CreatedAt   time.Time `json:"created_at"`
}

// Client is a statically registered OAuth2 client.
type Client struct {
	ID           string   `json:"id"`
	Secret       string   `json:"secret"`
	Name         string   `json:"name"`
	RedirectURIs []string `json:"redirectURIs"`
	Scopes       []string `json:"scopes"`
}

// HasRedirectURI checks the URI against the client's registered set.
func (c *Client) HasRedirectURI(uri string) bool {
	for _, u := range c.RedirectURIs {
		if u == uri {
			return true
		}
	}
	return false
}

// AuthorizationCode is a single-use, short-lived code issued when a user
// approves the consent screen. Consumed exactly once during exchange.
type AuthorizationCode struct {
	Code      string
	ClientID  string
	Scopes    []string
	Principal string
	CreatedAt time.Time
	ExpiresAt time.Time
	Used      bool
}

// Info describes a validated bearer credential.
type Info struct {
	Kind      Kind
	Principal string    // set for user sessions
	Name      string    // set for service credentials
	Scopes    []string
	ExpiresAt time.Time // zero for service credentials
}

// SplitScopes parses a comma-delimited scope list.
func SplitScopes(scope string) []string {
	if scope == "" {
		return nil
	}
	var scopes []string
	for _, s := range strings.Split(scope, ",") {
		if s = strings.TrimSpace(s); s != "" {
			scopes = append(scopes, s)
		}
	}
	return scopes
}

// JoinScopes renders a scope set in the comma-delimited wire form.
func JoinScopes(scopes []string) string {
	return strings.Join(scopes, ",")
}
