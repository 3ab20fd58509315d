package server

import (
	"encoding/json"
	"html/template"
	"net/http"
	"net/url"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/jrsteele09/go-scim-gateway/credentials"
	apperrors "github.com/jrsteele09/go-scim-gateway/internal/errors"
)

// fallbackPrincipal is used when a consent approval arrives without a
// logged-in session, as happens in the loopback provisioning flow.
const fallbackPrincipal = "oauth_user"

var consentTemplate = template.Must(template.New("consent").Parse(`<!DOCTYPE html>
<html>
<head><title>Authorize {{.ClientName}}</title></head>
<body>
	<h1>Authorization Request</h1>
	<p><strong>{{.ClientName}}</strong> is requesting access to:</p>
	<ul>
	{{range .Scopes}}<li>{{.}}</li>{{end}}
	</ul>
	<form method="POST" action="{{.ConsentPath}}">
		<input type="hidden" name="client_id" value="{{.ClientID}}">
		<input type="hidden" name="redirect_uri" value="{{.RedirectURI}}">
		<input type="hidden" name="scope" value="{{.Scope}}">
		<input type="hidden" name="state" value="{{.State}}">
		<button type="submit" name="action" value="approve">Approve</button>
		<button type="submit" name="action" value="deny">Deny</button>
	</form>
</body>
</html>`))

type consentPage struct {
	ClientID    string
	ClientName  string
	RedirectURI string
	Scope       string
	Scopes      []string
	State       string
	ConsentPath string
}

// validateAuthorizeParams resolves the client and checks the redirect URI
// against its registered set. An absent redirect URI falls back to the
// client's registered one. Failures here must never redirect.
func (s *Server) validateAuthorizeParams(clientID, redirectURI string) (*credentials.Client, string, error) {
	if clientID == "" {
		return nil, "", errors.Wrap(apperrors.ErrValidation, "[Server.validateAuthorizeParams] client_id is required")
	}
	client, err := s.store.Client(clientID)
	if err != nil {
		return nil, "", errors.Wrap(err, "[Server.validateAuthorizeParams] store.Client")
	}
	if redirectURI == "" {
		if len(client.RedirectURIs) == 0 {
			return nil, "", errors.Wrap(apperrors.ErrInvalidRedirectURI, "[Server.validateAuthorizeParams] client has no registered redirect URI")
		}
		return client, client.RedirectURIs[0], nil
	}
	if !client.HasRedirectURI(redirectURI) {
		return nil, "", errors.Wrap(apperrors.ErrInvalidRedirectURI, "[Server.validateAuthorizeParams] "+redirectURI)
	}
	return client, redirectURI, nil
}

// AuthorizeHandler begins the authorization-code flow by rendering the
// consent page. Unknown clients and unregistered redirect URIs fail with a
// direct error response before any code exists.
func (s *Server) AuthorizeHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query()
		client, redirectURI, err := s.validateAuthorizeParams(query.Get("client_id"), query.Get("redirect_uri"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid authorization request")
			return
		}

		scope := query.Get("scope")
		w.Header().Set("Content-Type", contentTypeHTML)
		err = consentTemplate.Execute(w, consentPage{
			ClientID:    client.ID,
			ClientName:  client.Name,
			RedirectURI: redirectURI,
			Scope:       scope,
			Scopes:      credentials.SplitScopes(scope),
			State:       query.Get("state"),
			ConsentPath: RouteOAuth2Consent,
		})
		if err != nil {
			log.Error().Err(err).Msg("consent template execution failed")
		}
	}
}

// ConsentHandler handles the consent form submission. Approval issues a
// single-use authorization code and redirects back to the client; denial
// redirects with error=access_denied.
func (s *Server) ConsentHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			writeError(w, http.StatusBadRequest, "invalid form submission")
			return
		}

		client, redirectURI, err := s.validateAuthorizeParams(r.FormValue("client_id"), r.FormValue("redirect_uri"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid consent submission")
			return
		}

		state := r.FormValue("state")
		if r.FormValue("action") != "approve" {
			redirect, _ := url.Parse(redirectURI)
			q := redirect.Query()
			q.Set("error", "access_denied")
			if state != "" {
				q.Set("state", state)
			}
			redirect.RawQuery = q.Encode()
			http.Redirect(w, r, redirect.String(), http.StatusSeeOther)
			return
		}

		principal := fallbackPrincipal
		if cred, err := s.authn.Authenticate(bearerFromRequest(r)); err == nil && cred.IsUser() {
			principal = cred.Principal
		}

		code, err := s.store.BeginConsent(client.ID, credentials.SplitScopes(r.FormValue("scope")), principal)
		if err != nil {
			log.Error().Err(err).Str("clientID", client.ID).Msg("authorization code issue failed")
			writeError(w, http.StatusInternalServerError, "failed to issue authorization code")
			return
		}

		redirect, _ := url.Parse(redirectURI)
		q := redirect.Query()
		q.Set("code", code)
		if state != "" {
			q.Set("state", state)
		}
		redirect.RawQuery = q.Encode()
		http.Redirect(w, r, redirect.String(), http.StatusSeeOther)
	}
}

type accessRequest struct {
	Code         string `json:"code"`
	ClientID     string `json:"client_id"`
	ClientSecret string `json:"client_secret"`
}

// AccessHandler exchanges an authorization code for an access token.
// Accepts form encoding per RFC 6749 and JSON for convenience.
func (s *Server) AccessHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req, err := parseAccessRequest(r)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if req.Code == "" || req.ClientID == "" || req.ClientSecret == "" {
			writeError(w, http.StatusBadRequest, "code, client_id and client_secret are required")
			return
		}

		token, err := s.store.ExchangeCode(req.Code, req.ClientID, req.ClientSecret)
		if err != nil {
			log.Warn().Str("clientID", req.ClientID).Msg("code exchange rejected")
			writeError(w, http.StatusUnauthorized, "invalid_grant")
			return
		}

		writeJSON(w, http.StatusOK, token)
	}
}

func parseAccessRequest(r *http.Request) (accessRequest, error) {
	contentType := r.Header.Get("Content-Type")
	if contentType == "application/json" || contentType == contentTypeJSON {
		var req accessRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			return accessRequest{}, errors.Wrap(err, "[parseAccessRequest] json decode")
		}
		return req, nil
	}

	if err := r.ParseForm(); err != nil {
		return accessRequest{}, errors.Wrap(err, "[parseAccessRequest] parse form")
	}
	return accessRequest{
		Code:         r.FormValue("code"),
		ClientID:     r.FormValue("client_id"),
		ClientSecret: r.FormValue("client_secret"),
	}, nil
}
