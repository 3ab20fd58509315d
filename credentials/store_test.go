package credentials_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/jrsteele09/go-scim-gateway/credentials"
	apperrors "github.com/jrsteele09/go-scim-gateway/internal/errors"
)

const (
	testClientID     = "scim_client_001"
	testClientSecret = "secret_scim_001"
	testRedirectURI  = "http://127.0.0.1:9000/oauth/callback"
	testPrincipal    = "admin"
)

// testClock is an injectable clock that tests can advance.
type testClock struct {
	now time.Time
}

func (c *testClock) Now() time.Time { return c.now }

func (c *testClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func setupStore(t *testing.T) (*credentials.Store, *testClock) {
	t.Helper()
	clock := &testClock{now: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
	store := credentials.NewStore(credentials.WithNowTime(clock.Now))
	store.RegisterClient(credentials.Client{
		ID:           testClientID,
		Secret:       testClientSecret,
		Name:         "SCIM Sync Client",
		RedirectURIs: []string{testRedirectURI},
		Scopes:       []string{"users:read", "users:write"},
	})
	return store, clock
}

func TestIssueSessionThenValidate(t *testing.T) {
	store, _ := setupStore(t)

	tokenInfo, err := store.IssueSession(testPrincipal)
	require.NoError(t, err)
	require.NotEmpty(t, tokenInfo.AccessToken)
	require.Equal(t, "Bearer", tokenInfo.TokenType)
	require.Equal(t, 3600, tokenInfo.ExpiresIn)

	info, err := store.Validate(tokenInfo.AccessToken)
	require.NoError(t, err)
	require.Equal(t, credentials.KindUser, info.Kind)
	require.Equal(t, testPrincipal, info.Principal)
}

func TestValidateExpiredSession(t *testing.T) {
	store, clock := setupStore(t)

	tokenInfo, err := store.IssueSession(testPrincipal)
	require.NoError(t, err)

	// Valid at the expiry instant itself, invalid strictly after it.
	clock.Advance(1 * time.Hour)
	_, err = store.Validate(tokenInfo.AccessToken)
	require.NoError(t, err)

	clock.Advance(1 * time.Second)
	_, err = store.Validate(tokenInfo.AccessToken)
	require.ErrorIs(t, err, apperrors.ErrInvalidCredential)
}

func TestRevokeSemantics(t *testing.T) {
	store, _ := setupStore(t)

	tokenInfo, err := store.IssueSession(testPrincipal)
	require.NoError(t, err)
	other, err := store.IssueSession("user1")
	require.NoError(t, err)

	// First revoke of a known token returns true, anything after false.
	require.True(t, store.Revoke(tokenInfo.AccessToken))
	require.False(t, store.Revoke(tokenInfo.AccessToken))
	require.False(t, store.Revoke("never-issued"))

	_, err = store.Validate(tokenInfo.AccessToken)
	require.ErrorIs(t, err, apperrors.ErrInvalidCredential)

	// Other tokens are unaffected.
	info, err := store.Validate(other.AccessToken)
	require.NoError(t, err)
	require.Equal(t, "user1", info.Principal)
}

func TestServiceCredentialNeverExpires(t *testing.T) {
	store, clock := setupStore(t)

	cred, err := store.RegisterServiceCredential("scim-sync", "automated sync job", []string{"users:read", "users:write"})
	require.NoError(t, err)
	require.True(t, len(cred.ID) > len(credentials.ServiceCredentialPrefix))

	clock.Advance(24 * 365 * time.Hour)

	info, err := store.Validate(cred.ID)
	require.NoError(t, err)
	require.Equal(t, credentials.KindService, info.Kind)
	require.Equal(t, "scim-sync", info.Name)
	require.Equal(t, []string{"users:read", "users:write"}, info.Scopes)
}

func TestValidateUnknownServiceCredential(t *testing.T) {
	store, _ := setupStore(t)

	_, err := store.Validate(credentials.ServiceCredentialPrefix + "not-registered")
	require.ErrorIs(t, err, apperrors.ErrInvalidCredential)
}

func TestListServiceCredentials(t *testing.T) {
	store, _ := setupStore(t)

	_, err := store.RegisterServiceCredential("sync-a", "", []string{"users:read"})
	require.NoError(t, err)
	_, err = store.RegisterServiceCredential("sync-b", "", []string{"users:write"})
	require.NoError(t, err)

	creds := store.ListServiceCredentials()
	require.Len(t, creds, 2)
	names := []string{creds[0].Name, creds[1].Name}
	require.ElementsMatch(t, []string{"sync-a", "sync-b"}, names)
}

func TestBeginConsentUnknownClient(t *testing.T) {
	store, _ := setupStore(t)

	_, err := store.BeginConsent("no-such-client", []string{"users:read"}, testPrincipal)
	require.ErrorIs(t, err, apperrors.ErrInvalidClient)
}

func TestExchangeCodeFlow(t *testing.T) {
	store, _ := setupStore(t)

	code, err := store.BeginConsent(testClientID, []string{"users:read", "users:write"}, testPrincipal)
	require.NoError(t, err)

	// Wrong secret fails without consuming the code.
	_, err = store.ExchangeCode(code, testClientID, "wrong-secret")
	require.ErrorIs(t, err, apperrors.ErrCodeExchangeFailed)

	tokenInfo, err := store.ExchangeCode(code, testClientID, testClientSecret)
	require.NoError(t, err)
	require.Equal(t, "users:read,users:write", tokenInfo.Scope)

	info, err := store.Validate(tokenInfo.AccessToken)
	require.NoError(t, err)
	require.Equal(t, testPrincipal, info.Principal)
	require.Equal(t, []string{"users:read", "users:write"}, info.Scopes)

	// Code reuse after a successful exchange must fail deterministically.
	_, err = store.ExchangeCode(code, testClientID, testClientSecret)
	require.ErrorIs(t, err, apperrors.ErrCodeExchangeFailed)
}

func TestExchangeCodeExpired(t *testing.T) {
	store, clock := setupStore(t)

	code, err := store.BeginConsent(testClientID, []string{"users:read"}, testPrincipal)
	require.NoError(t, err)

	clock.Advance(11 * time.Minute)

	_, err = store.ExchangeCode(code, testClientID, testClientSecret)
	require.ErrorIs(t, err, apperrors.ErrCodeExchangeFailed)
}

func TestExchangeCodeDifferentClient(t *testing.T) {
	store, _ := setupStore(t)
	store.RegisterClient(credentials.Client{ID: "clientB", Secret: "secretB"})

	code, err := store.BeginConsent(testClientID, []string{"users:read"}, testPrincipal)
	require.NoError(t, err)

	_, err = store.ExchangeCode(code, "clientB", "secretB")
	require.ErrorIs(t, err, apperrors.ErrCodeExchangeFailed)
}

func TestScopeRoundTrip(t *testing.T) {
	require.Equal(t, []string{"users:read", "users:write"}, credentials.SplitScopes("users:read, users:write"))
	require.Nil(t, credentials.SplitScopes(""))
	require.Equal(t, "a,b", credentials.JoinScopes([]string{"a", "b"}))
}
