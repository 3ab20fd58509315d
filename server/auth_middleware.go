package server

import (
	"net/http"
	"strings"

	"github.com/jrsteele09/go-scim-gateway/authn"
)

// bearerFromRequest extracts the bearer value from the Authorization header.
// Returns "" when the header is absent or not a bearer scheme.
func bearerFromRequest(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

// RequireAuth rejects requests whose bearer value the credential store does
// not recognise, and stores the resolved credential on the request context.
func (s *Server) RequireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cred, err := s.authn.Authenticate(bearerFromRequest(r))
		if err != nil {
			writeError(w, http.StatusUnauthorized, "invalid or expired token")
			return
		}
		next(w, r.WithContext(authn.WithCredential(r.Context(), cred)))
	}
}
