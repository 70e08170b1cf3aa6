package server

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func (s *Server) initRoutes() {
	s.RegisterRouteFunc("GET "+RouteHealthz, s.HealthzHandler())
	s.RegisterRouteHandler("GET "+RouteMetrics, promhttp.Handler())

	// Tenant metadata
	s.RegisterRouteHandler("GET "+RouteTenantInfo, ChainMiddleware(s.TenantInfoHandler(), s.PageMiddleware()...))

	// Auth actions are rate limited per tenant
	s.RegisterRouteHandler("POST "+RouteAuthLogin, ChainMiddleware(s.LoginHandler(), s.PageMiddleware(s.RateLimitMiddleware)...))
	s.RegisterRouteHandler("POST "+RouteAuthRegister, ChainMiddleware(s.RegisterHandler(), s.PageMiddleware(s.RateLimitMiddleware)...))
	s.RegisterRouteHandler("POST "+RouteAuthForgotPassword, ChainMiddleware(s.ForgotPasswordHandler(), s.PageMiddleware(s.RateLimitMiddleware)...))
	s.RegisterRouteHandler("POST "+RouteAuthLogout, ChainMiddleware(s.LogoutHandler(), s.PageMiddleware()...))
	s.RegisterRouteHandler("GET "+RouteAuthSession, ChainMiddleware(s.SessionHandler(), s.PageMiddleware()...))

	// Authenticated portal data
	s.RegisterRouteHandler("GET "+RouteDashboard, ChainMiddleware(s.DashboardHandler(), s.PageMiddleware()...))
	s.RegisterRouteHandler("GET "+RouteProfile, ChainMiddleware(s.ProfileHandler(), s.PageMiddleware()...))
	s.RegisterRouteHandler("PUT "+RouteProfile, ChainMiddleware(s.ProfileHandler(), s.PageMiddleware()...))

	// Support requests
	s.RegisterRouteHandler("GET "+RouteServiceRequests, ChainMiddleware(s.ServiceRequestsHandler(), s.PageMiddleware()...))
	s.RegisterRouteHandler("POST "+RouteServiceRequests, ChainMiddleware(s.ServiceRequestsHandler(), s.PageMiddleware()...))
	s.RegisterRouteHandler("GET "+RouteServiceRequest, ChainMiddleware(s.ServiceRequestHandler(), s.PageMiddleware()...))
	s.RegisterRouteHandler("POST "+RouteServiceRequestComment, ChainMiddleware(s.AddCommentHandler(), s.PageMiddleware()...))
}

// Routes lists every registered pattern, mainly for startup logging.
func (s *Server) Routes() []string {
	routes := make([]string, len(s.routes))
	copy(routes, s.routes)
	return routes
}

var _ http.Handler = (*Server)(nil)
