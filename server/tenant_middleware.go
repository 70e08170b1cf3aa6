package server

import (
	"net/http"
	"strings"

	"github.com/accesswash/portal/tenants"
)

// TenantHeader carries the resolved tenant to downstream rendering. It is
// guaranteed present on every page request that passes through the edge
// filter; consumers must still tolerate its absence and fall back to
// URL-derived resolution.
const TenantHeader = "x-tenant"

// Paths served without tenant resolution: API passthrough, static assets,
// and gateway-internal endpoints. Endpoint paths match exactly so names
// like /healthzz still resolve a tenant.
var (
	exemptPrefixes = []string{
		"/api/",
		"/static/",
		"/_/",
	}
	exemptPaths = []string{
		RouteHealthz,
		RouteMetrics,
		"/favicon.ico",
	}
)

// TenantMiddleware is the edge routing filter. It runs before any page
// handler, derives the tenant from the request host or path, and stamps it
// on both the request and the response. It never blocks or fails the
// request - malformed hosts degrade to the default tenant silently.
func (s *Server) TenantMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if isExemptPath(r.URL.Path) {
			next(w, r)
			return
		}

		tenantID := tenants.FromHost(r.Host, r.URL.Path, s.config.PlatformDomain)
		r.Header.Set(TenantHeader, tenantID)
		w.Header().Set(TenantHeader, tenantID)

		next(w, r)
	}
}

func isExemptPath(path string) bool {
	for _, exact := range exemptPaths {
		if path == exact {
			return true
		}
	}
	for _, prefix := range exemptPrefixes {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}

// requestTenant resolves the active tenant for a handler. The explicit
// route parameter wins; the header stamped by the edge filter is the
// fallback, then URL-derived resolution.
func requestTenant(r *http.Request) string {
	if tenantID := r.PathValue("tenant"); tenantID != "" {
		return tenantID
	}
	if tenantID := r.Header.Get(TenantHeader); tenantID != "" {
		return tenantID
	}
	segments := strings.Split(strings.TrimPrefix(r.URL.Path, "/"), "/")
	return tenants.Resolve("", segments)
}
