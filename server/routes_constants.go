package server

// Route patterns for the portal gateway. The {tenant} wildcard is the
// explicit route parameter the resolver prefers over host inspection.
const (
	RouteHealthz = "/healthz"
	RouteMetrics = "/metrics"

	RouteTenantInfo = "/{tenant}/portal/"

	RouteAuthLogin          = "/{tenant}/portal/auth/login"
	RouteAuthRegister       = "/{tenant}/portal/auth/register"
	RouteAuthLogout         = "/{tenant}/portal/auth/logout"
	RouteAuthForgotPassword = "/{tenant}/portal/auth/forgot-password"
	RouteAuthSession        = "/{tenant}/portal/auth/session"

	RouteDashboard = "/{tenant}/portal/dashboard"
	RouteProfile   = "/{tenant}/portal/profile"

	RouteServiceRequests       = "/{tenant}/support/requests"
	RouteServiceRequest        = "/{tenant}/support/requests/{id}"
	RouteServiceRequestComment = "/{tenant}/support/requests/{id}/comments"
)
