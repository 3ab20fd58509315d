// Package server exposes the HTTP surface: password login and token
// lifecycle, the OAuth2 authorization-code flow, and the SCIM user API with
// asynchronous mirror replication.
package server

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/time/rate"

	"github.com/jrsteele09/go-scim-gateway/authn"
	"github.com/jrsteele09/go-scim-gateway/credentials"
	"github.com/jrsteele09/go-scim-gateway/internal/config"
	"github.com/jrsteele09/go-scim-gateway/replication"
	"github.com/jrsteele09/go-scim-gateway/scim"
	"github.com/jrsteele09/go-scim-gateway/users"
)

type Server struct {
	env        string // Environment (e.g., "DEV", "production")
	mux        *http.ServeMux
	routes     []string
	config     config.Config
	store      *credentials.Store
	authn      *authn.Authenticator
	repo       users.Repo
	translator *scim.Translator
	dispatcher *replication.Dispatcher
	limiter    *rate.Limiter
	passwords  map[string][]byte // username -> bcrypt hash
}

// New assembles the server: password principals are bcrypt-hashed from the
// seed config, OAuth clients are registered with the credential store, and
// routes are bound. A nil dispatcher disables replication.
func New(cfg config.Config, store *credentials.Store, repo users.Repo, dispatcher *replication.Dispatcher) (*Server, error) {
	s := &Server{
		env:        cfg.GetEnv(),
		mux:        http.NewServeMux(),
		config:     cfg,
		store:      store,
		authn:      authn.New(store),
		repo:       repo,
		translator: scim.NewTranslator(cfg.GetResourceLocationBase()),
		dispatcher: dispatcher,
		limiter:    rate.NewLimiter(rate.Limit(cfg.GetLoginRatePerSecond()), cfg.GetLoginBurst()),
		passwords:  make(map[string][]byte),
	}

	for _, seed := range cfg.GetSeedUsers() {
		hash, err := bcrypt.GenerateFromPassword([]byte(seed.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("[Server New] failed to hash seed password for %q: %w", seed.Username, err)
		}
		s.passwords[seed.Username] = hash
	}

	for _, seed := range cfg.GetSeedClients() {
		store.RegisterClient(credentials.Client{
			ID:           seed.ID,
			Secret:       seed.Secret,
			Name:         seed.Name,
			RedirectURIs: seed.RedirectURIs,
			Scopes:       seed.Scopes,
		})
	}

	s.initRoutes()
	s.logRoutes()

	return s, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *Server) RegisterRouteHandler(pattern string, handler http.Handler) {
	s.routes = append(s.routes, pattern)
	s.mux.Handle(pattern, handler)
}

func (s *Server) RegisterRouteFunc(pattern string, handler func(http.ResponseWriter, *http.Request)) {
	s.routes = append(s.routes, pattern)
	s.mux.HandleFunc(pattern, handler)
}

func (s *Server) logRoutes() {
	if s.env != "DEV" {
		return // Skip logging in non-development environments
	}
	for _, route := range s.routes {
		parts := strings.SplitN(route, " ", 2)
		if len(parts) > 1 {
			log.Info().Str("method", parts[0]).Str("path", parts[1]).Msg("route")
		} else {
			log.Info().Str("path", parts[0]).Msg("route")
		}
	}
}
