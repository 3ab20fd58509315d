package credentials

import (
	"crypto/rand"
	"encoding/base64"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/pkg/errors"

	apperrors "github.com/jrsteele09/go-scim-gateway/internal/errors"
)

const (
	tokenGenerationLength  = 32
	defaultSessionLifetime = 1 * time.Hour
	defaultCodeTimeout     = 10 * time.Minute
)

// Store owns all live credential state: session tokens, revocation markers,
// service credentials, OAuth clients, and authorization codes. State is
// process-lifetime only; all mutating operations are atomic with respect to
// each other.
type Store struct {
	mu           sync.RWMutex
	sessions     map[string]*Session
	revoked      map[string]struct{}
	serviceCreds map[string]*ServiceCredential
	clients      map[string]*Client
	codes        map[string]*AuthorizationCode

	nowTime         func() time.Time // injectable for testing
	sessionLifetime time.Duration
	codeTimeout     time.Duration
}

// StoreOption defines a function type to modify the Store instance.
type StoreOption func(*Store)

// WithNowTime sets the now time function (primarily for testing)
func WithNowTime(nowFunc func() time.Time) StoreOption {
	return func(s *Store) {
		s.nowTime = nowFunc
	}
}

// WithSessionLifetime overrides the default session token lifetime.
func WithSessionLifetime(lifetime time.Duration) StoreOption {
	return func(s *Store) {
		if lifetime > 0 {
			s.sessionLifetime = lifetime
		}
	}
}

// WithCodeTimeout overrides the default authorization code lifetime.
func WithCodeTimeout(timeout time.Duration) StoreOption {
	return func(s *Store) {
		if timeout > 0 {
			s.codeTimeout = timeout
		}
	}
}

// NewStore initializes an empty credential store.
func NewStore(options ...StoreOption) *Store {
	s := &Store{
		sessions:        make(map[string]*Session),
		revoked:         make(map[string]struct{}),
		serviceCreds:    make(map[string]*ServiceCredential),
		clients:         make(map[string]*Client),
		codes:           make(map[string]*AuthorizationCode),
		nowTime:         time.Now,
		sessionLifetime: defaultSessionLifetime,
		codeTimeout:     defaultCodeTimeout,
	}
	for _, opt := range options {
		opt(s)
	}
	return s
}

// RegisterClient registers an OAuth2 client. Clients are configuration;
// they are registered at boot, not created at runtime.
func (s *Store) RegisterClient(client Client) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := client
	s.clients[client.ID] = &c
}

// Client returns a registered OAuth2 client by ID.
func (s *Store) Client(clientID string) (*Client, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	client, ok := s.clients[clientID]
	if !ok {
		return nil, errors.Wrap(apperrors.ErrInvalidClient, "[Store.Client] unknown client "+clientID)
	}
	c := *client
	return &c, nil
}

// IssueSession generates a new session token for the principal. The token
// is cryptographically random and carries the default lifetime.
func (s *Store) IssueSession(principal string, scopes ...string) (TokenInfo, error) {
	token, err := generateToken()
	if err != nil {
		return TokenInfo{}, errors.Wrap(err, "[Store.IssueSession] generateToken")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.nowTime()
	s.sessions[token] = &Session{
		Token:     token,
		Principal: principal,
		Scopes:    scopes,
		CreatedAt: now,
		ExpiresAt: now.Add(s.sessionLifetime),
		Active:    true,
	}

	return TokenInfo{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresIn:   int(s.sessionLifetime.Seconds()),
		Scope:       JoinScopes(scopes),
	}, nil
}

// Validate classifies a bearer value as a user session or a service
// credential. Side-effect free: expired sessions are reported invalid but
// never removed here (lazy expiry only).
func (s *Store) Validate(token string) (*Info, error) {
	if token == "" {
		return nil, errors.Wrap(apperrors.ErrInvalidCredential, "[Store.Validate] empty token")
	}

	if strings.HasPrefix(token, ServiceCredentialPrefix) {
		return s.validateServiceCredential(token)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, isRevoked := s.revoked[token]; isRevoked {
		return nil, errors.Wrap(apperrors.ErrInvalidCredential, "[Store.Validate] token revoked")
	}
	session, ok := s.sessions[token]
	if !ok {
		return nil, errors.Wrap(apperrors.ErrInvalidCredential, "[Store.Validate] unknown token")
	}
	if s.nowTime().After(session.ExpiresAt) {
		return nil, errors.Wrap(apperrors.ErrInvalidCredential, "[Store.Validate] token expired")
	}

	return &Info{
		Kind:      KindUser,
		Principal: session.Principal,
		Scopes:    session.Scopes,
		ExpiresAt: session.ExpiresAt,
	}, nil
}

func (s *Store) validateServiceCredential(token string) (*Info, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	cred, ok := s.serviceCreds[token]
	if !ok {
		return nil, errors.Wrap(apperrors.ErrInvalidCredential, "[Store.Validate] unknown service credential")
	}
	return &Info{
		Kind:   KindService,
		Name:   cred.Name,
		Scopes: cred.Scopes,
	}, nil
}

// Revoke marks a known session token as revoked. Returns true only on the
// first successful revoke; repeated revokes of the same token and revokes of
// unknown tokens return false.
func (s *Store) Revoke(token string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.sessions[token]
	if !ok {
		return false
	}
	if _, alreadyRevoked := s.revoked[token]; alreadyRevoked {
		return false
	}
	session.Active = false
	s.revoked[token] = struct{}{}
	return true
}

// RegisterServiceCredential creates a new non-expiring service credential.
// The returned identifier is the bearer value itself.
func (s *Store) RegisterServiceCredential(name, description string, scopes []string) (*ServiceCredential, error) {
	id := ServiceCredentialPrefix + strings.ToLower(ulid.Make().String())

	s.mu.Lock()
	defer s.mu.Unlock()

	cred := &ServiceCredential{
		ID:          id,
		Name:        name,
		Description: description,
		Scopes:      append([]string(nil), scopes...),
		CreatedAt:   s.nowTime(),
	}
	s.serviceCreds[id] = cred

	c := *cred
	return &c, nil
}

// ListServiceCredentials returns summaries of all registered service
// credentials.
func (s *Store) ListServiceCredentials() []ServiceCredential {
	s.mu.RLock()
	defer s.mu.RUnlock()

	creds := make([]ServiceCredential, 0, len(s.serviceCreds))
	for _, cred := range s.serviceCreds {
		creds = append(creds, *cred)
	}
	return creds
}

// BeginConsent issues a single-use authorization code for an approved
// consent. The client must be registered; the code expires after the
// configured timeout.
func (s *Store) BeginConsent(clientID string, scopes []string, principal string) (string, error) {
	code, err := generateToken()
	if err != nil {
		return "", errors.Wrap(err, "[Store.BeginConsent] generateToken")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.clients[clientID]; !ok {
		return "", errors.Wrap(apperrors.ErrInvalidClient, "[Store.BeginConsent] unknown client "+clientID)
	}

	now := s.nowTime()
	s.codes[code] = &AuthorizationCode{
		Code:      code,
		ClientID:  clientID,
		Scopes:    append([]string(nil), scopes...),
		Principal: principal,
		CreatedAt: now,
		ExpiresAt: now.Add(s.codeTimeout),
	}
	return code, nil
}

// ExchangeCode trades an authorization code for a session token. The code
// is marked used before the token is issued, so a second exchange with
// identical arguments fails deterministically even though the first
// succeeded.
func (s *Store) ExchangeCode(code, clientID, clientSecret string) (TokenInfo, error) {
	s.mu.Lock()

	authCode, ok := s.codes[code]
	if !ok {
		s.mu.Unlock()
		return TokenInfo{}, errors.Wrap(apperrors.ErrCodeExchangeFailed, "[Store.ExchangeCode] unknown code")
	}
	if authCode.Used {
		s.mu.Unlock()
		return TokenInfo{}, errors.Wrap(apperrors.ErrCodeExchangeFailed, "[Store.ExchangeCode] code already used")
	}
	if s.nowTime().After(authCode.ExpiresAt) {
		s.mu.Unlock()
		return TokenInfo{}, errors.Wrap(apperrors.ErrCodeExchangeFailed, "[Store.ExchangeCode] code expired")
	}
	if authCode.ClientID != clientID {
		s.mu.Unlock()
		return TokenInfo{}, errors.Wrap(apperrors.ErrCodeExchangeFailed, "[Store.ExchangeCode] code issued to a different client")
	}
	client, ok := s.clients[clientID]
	if !ok || client.Secret != clientSecret {
		s.mu.Unlock()
		return TokenInfo{}, errors.Wrap(apperrors.ErrCodeExchangeFailed, "[Store.ExchangeCode] client secret incorrect")
	}

	// Permanently consumed, even though the resulting token is new.
	authCode.Used = true
	principal := authCode.Principal
	scopes := append([]string(nil), authCode.Scopes...)
	s.mu.Unlock()

	tokenInfo, err := s.IssueSession(principal, scopes...)
	if err != nil {
		return TokenInfo{}, errors.Wrap(err, "[Store.ExchangeCode] IssueSession")
	}
	return tokenInfo, nil
}

func generateToken() (string, error) {
	bytes := make([]byte, tokenGenerationLength)
	if _, err := rand.Read(bytes); err != nil {
		return "", errors.Wrap(err, "rand.Read")
	}
	return base64.URLEncoding.EncodeToString(bytes), nil
}
