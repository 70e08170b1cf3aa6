// Package server is the portal gateway edge: it resolves the active tenant
// before anything else runs, builds the per-request session store and
// tenant-bound API client, and exposes the portal's JSON endpoints.
package server

import (
	"net/http"
	"sync"

	"github.com/accesswash/portal"
	"github.com/accesswash/portal/internal/config"
	"github.com/accesswash/portal/internal/metrics"
	"github.com/accesswash/portal/session"
	"github.com/accesswash/portal/session/cookiestore"
	"github.com/accesswash/portal/session/redisstore"
	"github.com/accesswash/portal/tenants"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

// deviceCookieName holds the opaque browser identifier used when sessions
// live server-side in Redis.
const deviceCookieName = "accesswash_device"

type Server struct {
	mux        *http.ServeMux
	routes     []string
	config     *config.Config
	log        zerolog.Logger
	metrics    *metrics.Metrics
	tenantRepo tenants.Repo
	redis      *redis.Client
	backendURL string // when set, all tenants talk to this base URL (tests, single-backend dev)

	limiterLock sync.Mutex
	limiters    map[string]*rate.Limiter
}

type Option func(*Server)

// WithLogger sets the structured logger.
func WithLogger(log zerolog.Logger) Option {
	return func(s *Server) { s.log = log }
}

// WithMetrics sets the metrics collection; nil disables it.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Server) { s.metrics = m }
}

// WithTenantRepo sets the tenant registry backing the tenant info endpoint.
func WithTenantRepo(repo tenants.Repo) Option {
	return func(s *Server) { s.tenantRepo = repo }
}

// WithRedis switches session persistence from cookies to server-side Redis
// keyed by an opaque device cookie.
func WithRedis(client *redis.Client) Option {
	return func(s *Server) { s.redis = client }
}

// WithBackendURL overrides per-tenant base URL derivation with a fixed
// backend address.
func WithBackendURL(baseURL string) Option {
	return func(s *Server) { s.backendURL = baseURL }
}

func New(cfg *config.Config, options ...Option) (*Server, error) {
	if cfg == nil {
		return nil, errors.New("[server.New] config is required")
	}

	s := &Server{
		mux:      http.NewServeMux(),
		config:   cfg,
		log:      zerolog.Nop(),
		metrics:  metrics.New(prometheus.NewRegistry()),
		limiters: make(map[string]*rate.Limiter),
	}
	for _, opt := range options {
		opt(s)
	}

	s.initRoutes()
	return s, nil
}

// ServeHTTP runs the edge routing filter ahead of route matching so every
// request carries its tenant before any handler sees it.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.TenantMiddleware(s.mux.ServeHTTP)(w, r)
}

func (s *Server) RegisterRouteHandler(pattern string, handler http.Handler) {
	s.routes = append(s.routes, pattern)
	s.mux.Handle(pattern, handler)
}

func (s *Server) RegisterRouteFunc(pattern string, handler func(http.ResponseWriter, *http.Request)) {
	s.routes = append(s.routes, pattern)
	s.mux.HandleFunc(pattern, handler)
}

// sessionStore builds the tenant session store for one request: Redis with
// an opaque device cookie when configured, browser cookies otherwise.
func (s *Server) sessionStore(w http.ResponseWriter, r *http.Request) session.Store {
	if s.redis != nil {
		return redisstore.New(s.redis, s.deviceID(w, r),
			redisstore.WithTTL(s.config.SessionTTL),
			redisstore.WithLogger(s.log),
		)
	}
	return cookiestore.New(w, r,
		cookiestore.WithTTL(s.config.SessionTTL),
		cookiestore.WithSecure(s.config.IsProduction()),
		cookiestore.WithLogger(s.log),
	)
}

// portalClient builds the tenant-bound API client for one request. The
// navigator issues at most one redirect to the tenant's login page if the
// backend rejects the session.
func (s *Server) portalClient(w http.ResponseWriter, r *http.Request, tenantID string) (*portal.Client, *redirectNavigator) {
	nav := &redirectNavigator{w: w, r: r}

	options := []portal.Option{
		portal.WithEnvironment(portal.Environment(s.config.Env), s.config.PlatformDomain, s.config.LocalAPIPort),
		portal.WithTimeout(s.config.RequestTimeout),
		portal.WithSessionTTL(s.config.SessionTTL),
		portal.WithNavigator(nav),
		portal.WithLogger(s.log),
		portal.WithMetrics(s.metrics),
	}
	if s.backendURL != "" {
		options = append(options, portal.WithBaseURL(s.backendURL))
	}

	return portal.New(tenantID, s.sessionStore(w, r), options...), nav
}

// deviceID reads the opaque device cookie, minting one on first contact.
func (s *Server) deviceID(w http.ResponseWriter, r *http.Request) string {
	if cookie, err := r.Cookie(deviceCookieName); err == nil && cookie.Value != "" {
		return cookie.Value
	}

	id := uuid.NewString()
	http.SetCookie(w, &http.Cookie{
		Name:     deviceCookieName,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		Secure:   s.config.IsProduction(),
		SameSite: http.SameSiteStrictMode,
		MaxAge:   int(session.DefaultTTL.Seconds()),
	})
	return id
}

// authLimiter returns the per-tenant rate limiter for auth endpoints.
func (s *Server) authLimiter(tenantID string) *rate.Limiter {
	s.limiterLock.Lock()
	defer s.limiterLock.Unlock()

	limiter, ok := s.limiters[tenantID]
	if !ok {
		limiter = rate.NewLimiter(rate.Limit(s.config.AuthRatePerSec), s.config.AuthRateBurst)
		s.limiters[tenantID] = limiter
	}
	return limiter
}

// redirectNavigator adapts the portal client's forced navigation to an HTTP
// redirect, issued at most once per request.
type redirectNavigator struct {
	w    http.ResponseWriter
	r    *http.Request
	done bool
}

func (n *redirectNavigator) Navigate(url string) {
	if n.done {
		return
	}
	n.done = true
	http.Redirect(n.w, n.r, url, http.StatusSeeOther)
}
