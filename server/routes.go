package server

import (
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func (s *Server) initRoutes() {
	s.RegisterRouteFunc("GET "+RouteIndex, s.IndexHandler())
	s.RegisterRouteFunc("GET "+RouteHealthz, s.HealthzHandler())
	s.RegisterRouteHandler("GET "+RouteMetrics, promhttp.Handler())

	// Token lifecycle
	s.RegisterRouteHandler("POST "+RouteAuthLogin, ChainMiddleware(s.LoginHandler(), s.APIMiddleware()...))
	s.RegisterRouteHandler("GET "+RouteAuthValidate, ChainMiddleware(s.ValidateHandler(), s.ProtectedAPIMiddleware()...))
	s.RegisterRouteHandler("POST "+RouteAuthRevoke, ChainMiddleware(s.RevokeHandler(), s.APIMiddleware()...))
	s.RegisterRouteHandler("POST "+RouteServiceTokens, ChainMiddleware(s.ServiceTokenRegisterHandler(), s.ProtectedAPIMiddleware()...))
	s.RegisterRouteHandler("GET "+RouteServiceTokens, ChainMiddleware(s.ServiceTokenListHandler(), s.ProtectedAPIMiddleware()...))

	// OAuth2 authorization-code flow
	s.RegisterRouteHandler("GET "+RouteOAuth2Authorize, ChainMiddleware(s.AuthorizeHandler(), s.APIMiddleware()...))
	s.RegisterRouteHandler("POST "+RouteOAuth2Consent, ChainMiddleware(s.ConsentHandler(), s.APIMiddleware()...))
	s.RegisterRouteHandler("POST "+RouteOAuth2Access, ChainMiddleware(s.AccessHandler(), s.APIMiddleware()...))

	// SCIM user API
	s.RegisterRouteHandler("GET "+RouteSCIMUsers, ChainMiddleware(s.SCIMUsersListHandler(), s.ProtectedAPIMiddleware()...))
	s.RegisterRouteHandler("POST "+RouteSCIMUsers, ChainMiddleware(s.SCIMUserCreateHandler(), s.ProtectedAPIMiddleware()...))
	s.RegisterRouteHandler("GET "+RouteSCIMUser, ChainMiddleware(s.SCIMUserGetHandler(), s.ProtectedAPIMiddleware()...))
	s.RegisterRouteHandler("PUT "+RouteSCIMUser, ChainMiddleware(s.SCIMUserReplaceHandler(), s.ProtectedAPIMiddleware()...))
	s.RegisterRouteHandler("PATCH "+RouteSCIMUser, ChainMiddleware(s.SCIMUserPatchHandler(), s.ProtectedAPIMiddleware()...))
	s.RegisterRouteHandler("DELETE "+RouteSCIMUser, ChainMiddleware(s.SCIMUserDeleteHandler(), s.ProtectedAPIMiddleware()...))
}
