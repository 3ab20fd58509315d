package server

const (
	RouteIndex   = "/"
	RouteHealthz = "/healthz"
	RouteMetrics = "/metrics"

	RouteAuthLogin     = "/auth/login"
	RouteAuthValidate  = "/auth/validate"
	RouteAuthRevoke    = "/auth/revoke"
	RouteServiceTokens = "/auth/service-tokens"

	RouteOAuth2Authorize = "/oauth/v2/authorize"
	RouteOAuth2Consent   = "/oauth/v2/consent"
	RouteOAuth2Access    = "/oauth/v2/access"

	RouteSCIMUsers = "/scim/v2/Users"
	RouteSCIMUser  = "/scim/v2/Users/{userID}"
)
