// Package authn classifies inbound bearer credentials against the
// credential store so that handlers can apply kind-specific policy.
package authn

import (
	"github.com/pkg/errors"

	"github.com/jrsteele09/go-scim-gateway/credentials"
	apperrors "github.com/jrsteele09/go-scim-gateway/internal/errors"
)

// Credential is the result of authenticating a bearer value.
type Credential struct {
	Kind      credentials.Kind
	Principal string   // user kind
	Name      string   // service kind
	Scopes    []string
}

// IsUser reports whether the credential belongs to a logged-in principal.
func (c Credential) IsUser() bool {
	return c.Kind == credentials.KindUser
}

// Authenticator validates bearer credentials. Side-effect free; callable on
// every protected request without mutating state.
type Authenticator struct {
	store *credentials.Store
}

func New(store *credentials.Store) *Authenticator {
	return &Authenticator{store: store}
}

// Authenticate resolves a bearer value to a user session or a service
// credential. An empty value fails with ErrUnauthenticated; anything the
// store rejects fails with ErrInvalidCredential.
func (a *Authenticator) Authenticate(bearer string) (Credential, error) {
	if bearer == "" {
		return Credential{}, errors.Wrap(apperrors.ErrUnauthenticated, "[Authenticator.Authenticate] empty bearer value")
	}

	info, err := a.store.Validate(bearer)
	if err != nil {
		return Credential{}, errors.Wrap(err, "[Authenticator.Authenticate] store.Validate")
	}

	return Credential{
		Kind:      info.Kind,
		Principal: info.Principal,
		Name:      info.Name,
		Scopes:    info.Scopes,
	}, nil
}
