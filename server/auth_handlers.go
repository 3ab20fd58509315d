package server

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"

	"github.com/jrsteele09/go-scim-gateway/authn"
	"github.com/jrsteele09/go-scim-gateway/credentials"
)

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type serviceTokenRequest struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Permissions []string `json:"permissions"`
}

// LoginHandler exchanges a username/password pair for a session token.
func (s *Server) LoginHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !s.limiter.Allow() {
			writeError(w, http.StatusTooManyRequests, "too many login attempts")
			return
		}

		var req loginRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if req.Username == "" || req.Password == "" {
			writeError(w, http.StatusBadRequest, "username and password are required")
			return
		}

		hash, ok := s.passwords[req.Username]
		if !ok || bcrypt.CompareHashAndPassword(hash, []byte(req.Password)) != nil {
			log.Warn().Str("username", req.Username).Msg("login rejected")
			writeError(w, http.StatusUnauthorized, "invalid username or password")
			return
		}

		token, err := s.store.IssueSession(req.Username)
		if err != nil {
			log.Error().Err(err).Msg("session issue failed")
			writeError(w, http.StatusInternalServerError, "failed to issue session")
			return
		}

		writeJSON(w, http.StatusOK, token)
	}
}

// ValidateHandler reports who the presented bearer belongs to.
func (s *Server) ValidateHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cred, ok := authn.CredentialFrom(r.Context())
		if !ok {
			writeError(w, http.StatusUnauthorized, "no credential")
			return
		}

		if cred.IsUser() {
			writeJSON(w, http.StatusOK, map[string]any{
				"valid":   true,
				"user_id": cred.Principal,
			})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"valid":       true,
			"service":     cred.Name,
			"permissions": cred.Scopes,
		})
	}
}

// RevokeHandler revokes the presented bearer. Revoking a token that was
// already revoked, or that the store never issued, is a 404.
func (s *Server) RevokeHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := bearerFromRequest(r)
		if token == "" {
			writeError(w, http.StatusUnauthorized, "missing bearer token")
			return
		}
		if !s.store.Revoke(token) {
			writeError(w, http.StatusNotFound, "token not found")
			return
		}
		writeJSON(w, http.StatusOK, map[string]bool{"revoked": true})
	}
}

// ServiceTokenRegisterHandler mints a non-expiring service credential.
// Only logged-in principals may manage service credentials.
func (s *Server) ServiceTokenRegisterHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cred, ok := authn.CredentialFrom(r.Context())
		if !ok || !cred.IsUser() {
			writeError(w, http.StatusForbidden, "service credential management requires a user session")
			return
		}

		var req serviceTokenRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if req.Name == "" {
			writeError(w, http.StatusBadRequest, "name is required")
			return
		}

		serviceCred, err := s.store.RegisterServiceCredential(req.Name, req.Description, req.Permissions)
		if err != nil {
			log.Error().Err(err).Str("name", req.Name).Msg("service credential registration failed")
			writeError(w, http.StatusInternalServerError, "failed to register service credential")
			return
		}

		log.Info().Str("name", serviceCred.Name).Str("requestedBy", cred.Principal).Msg("service credential registered")
		writeJSON(w, http.StatusCreated, serviceCred)
	}
}

// ServiceTokenListHandler lists registered service credential summaries.
func (s *Server) ServiceTokenListHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cred, ok := authn.CredentialFrom(r.Context())
		if !ok || !cred.IsUser() {
			writeError(w, http.StatusForbidden, "service credential management requires a user session")
			return
		}

		list := s.store.ListServiceCredentials()
		if list == nil {
			list = []credentials.ServiceCredential{}
		}
		writeJSON(w, http.StatusOK, map[string]any{"tokens": list})
	}
}
