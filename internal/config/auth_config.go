package config

import (
	"strings"
	"time"
)

type AuthConfig interface {
	GetSessionLifetime() time.Duration
	GetAuthCodeTimeout() time.Duration
	GetTokenGenerationLength() int
	GetLoginRatePerSecond() float64
	GetLoginBurst() int
	GetSeedUsers() []SeedUser
	GetSeedClients() []SeedClient
}

// SeedUser is a password principal registered at boot. Dev defaults mirror
// the demo users the service has always shipped with.
type SeedUser struct {
	Username string
	Password string
}

// SeedClient is a statically registered OAuth2 client. Clients are
// configuration, not runtime state.
type SeedClient struct {
	ID           string
	Secret       string
	Name         string
	RedirectURIs []string
	Scopes       []string
}

type Auth struct{}

var _ AuthConfig = Auth{}

func (Auth) GetSessionLifetime() time.Duration {
	return 1 * time.Hour
}

func (Auth) GetAuthCodeTimeout() time.Duration {
	return 10 * time.Minute
}

func (Auth) GetTokenGenerationLength() int {
	return 32 // 32 bytes = 256 bits
}

func (Auth) GetLoginRatePerSecond() float64 {
	return 5
}

func (Auth) GetLoginBurst() int {
	return 10
}

// GetSeedUsers parses LOGIN_USERS ("user:password,user:password").
func (Auth) GetSeedUsers() []SeedUser {
	raw := GetEnv("LOGIN_USERS", "admin:password123,user1:pass123")
	var seeds []SeedUser
	for _, pair := range strings.Split(raw, ",") {
		parts := strings.SplitN(strings.TrimSpace(pair), ":", 2)
		if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
			continue
		}
		seeds = append(seeds, SeedUser{Username: parts[0], Password: parts[1]})
	}
	return seeds
}

func (Auth) GetSeedClients() []SeedClient {
	return []SeedClient{
		{
			ID:     GetEnv("OAUTH_CLIENT_ID", "scim_client_001"),
			Secret: GetEnv("OAUTH_CLIENT_SECRET", "secret_scim_001"),
			Name:   "SCIM Sync Client",
			RedirectURIs: []string{
				GetEnv("OAUTH_REDIRECT_URI", "http://127.0.0.1:9000/oauth/callback"),
			},
			Scopes: []string{"users:read", "users:write"},
		},
	}
}
