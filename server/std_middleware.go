package server

import (
	"net/http"
	"strconv"
	"time"

	"github.com/accesswash/portal"
	"github.com/google/uuid"
)

// ChainMiddleware applies middleware in reverse order so the first listed
// runs outermost.
func ChainMiddleware(routeFunction http.HandlerFunc, mw ...func(http.HandlerFunc) http.HandlerFunc) http.HandlerFunc {
	chainedHandler := routeFunction
	for i := len(mw) - 1; i >= 0; i-- {
		chainedHandler = mw[i](chainedHandler)
	}
	return chainedHandler
}

// PageMiddleware is the standard chain for tenant-scoped routes. The
// tenant filter itself runs earlier, around the whole mux.
func (s *Server) PageMiddleware(mw ...func(http.HandlerFunc) http.HandlerFunc) []func(http.HandlerFunc) http.HandlerFunc {
	chained := []func(http.HandlerFunc) http.HandlerFunc{
		s.RequestIDMiddleware,
		s.LoggingMiddleware,
		s.RecoverMiddleware,
		s.MetricsMiddleware,
	}
	return append(chained, mw...)
}

// statusWriter captures the response status code for logging and metrics.
type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

// RequestIDMiddleware stamps each request with an id for log correlation.
func (s *Server) RequestIDMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get("X-Request-Id")
		if requestID == "" {
			requestID = uuid.NewString()
			r.Header.Set("X-Request-Id", requestID)
		}
		w.Header().Set("X-Request-Id", requestID)
		next(w, r)
	}
}

// LoggingMiddleware logs each request with tenant, status, and latency.
func (s *Server) LoggingMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}

		next(sw, r)

		s.log.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Str("tenant", r.Header.Get(TenantHeader)).
			Str("request_id", r.Header.Get("X-Request-Id")).
			Int("status", sw.status).
			Dur("duration", time.Since(start)).
			Msg("handled request")
	}
}

// RecoverMiddleware converts handler panics into 500 responses.
func (s *Server) RecoverMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				s.log.Error().
					Interface("panic", rec).
					Str("path", r.URL.Path).
					Msg("recovered from handler panic")
				http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			}
		}()
		next(w, r)
	}
}

// MetricsMiddleware records request counts and latency per tenant.
func (s *Server) MetricsMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.metrics == nil {
			next(w, r)
			return
		}

		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}

		next(sw, r)

		tenantID := r.Header.Get(TenantHeader)
		s.metrics.RequestsTotal.WithLabelValues(tenantID, strconv.Itoa(sw.status)).Inc()
		s.metrics.RequestDuration.WithLabelValues(tenantID).Observe(time.Since(start).Seconds())
	}
}

// RateLimitMiddleware throttles auth endpoints per tenant.
func (s *Server) RateLimitMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tenantID := requestTenant(r)
		if !s.authLimiter(tenantID).Allow() {
			if s.metrics != nil {
				s.metrics.RateLimitedTotal.Inc()
			}
			writeError(w, &portal.Error{
				Message:    "Too many attempts. Please wait a moment and try again.",
				StatusCode: http.StatusTooManyRequests,
			})
			return
		}
		next(w, r)
	}
}
