// Package cookiestore persists tenant sessions in the browser's cookie jar.
// Two cookies per tenant: the bearer token and a base64url-encoded JSON
// snapshot of the customer.
package cookiestore

import (
	"encoding/base64"
	"encoding/json"
	"net/http"
	"time"

	"github.com/accesswash/portal/customers"
	"github.com/accesswash/portal/internal/errors"
	"github.com/accesswash/portal/session"
	"github.com/rs/zerolog"
)

var _ session.Store = (*Store)(nil)

// Store reads session cookies from the current request and writes them to
// its response. Construct one per request.
type Store struct {
	w      http.ResponseWriter
	r      *http.Request
	ttl    time.Duration
	secure bool
	log    zerolog.Logger
	now    func() time.Time
}

type Option func(*Store)

// WithTTL overrides the 7-day cookie lifetime.
func WithTTL(ttl time.Duration) Option {
	return func(s *Store) { s.ttl = ttl }
}

// WithSecure marks cookies Secure. Enable in production.
func WithSecure(secure bool) Option {
	return func(s *Store) { s.secure = secure }
}

// WithLogger sets the diagnostic sink for swallowed storage failures.
func WithLogger(log zerolog.Logger) Option {
	return func(s *Store) { s.log = log }
}

// WithNow sets the clock (primarily for testing).
func WithNow(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

func New(w http.ResponseWriter, r *http.Request, options ...Option) *Store {
	s := &Store{
		w:      w,
		r:      r,
		ttl:    session.DefaultTTL,
		log:    zerolog.Nop(),
		now:    time.Now,
	}
	for _, opt := range options {
		opt(s)
	}
	return s
}

// Save writes both tenant cookies with the configured TTL. A session
// without a customer snapshot expires any snapshot cookie left from an
// earlier save, so a token-only session never loads as authenticated.
func (s *Store) Save(tenantID string, sess session.Session) error {
	maxAge := int(s.ttl / time.Second)
	s.setCookie(session.TokenKey(tenantID), sess.AccessToken, maxAge)

	if sess.Customer == nil {
		s.setCookie(session.CustomerKey(tenantID), "", -1)
		return nil
	}

	snapshot, err := json.Marshal(sess.Customer)
	if err != nil {
		return err
	}
	s.setCookie(session.CustomerKey(tenantID), base64.RawURLEncoding.EncodeToString(snapshot), maxAge)
	return nil
}

// Load reads the tenant's cookies. Absent, corrupt, or expired state
// degrades to (zero, false); corruption is logged, never raised.
func (s *Store) Load(tenantID string) (session.Session, bool) {
	token := s.cookieValue(session.TokenKey(tenantID))
	if token == "" {
		return session.Session{}, false
	}

	if session.TokenExpired(token, s.now()) {
		s.log.Debug().Err(errors.ErrSessionExpired).Str("tenant", tenantID).Msg("stored token expired, treating as no session")
		return session.Session{}, false
	}

	sess := session.Session{AccessToken: token}

	encoded := s.cookieValue(session.CustomerKey(tenantID))
	if encoded == "" {
		return sess, true
	}

	raw, err := base64.RawURLEncoding.DecodeString(encoded)
	if err != nil {
		s.log.Warn().Err(errors.Wrapf(errors.ErrStorageCorrupt, "[cookiestore.Load] %s", err)).
			Str("tenant", tenantID).Msg("customer cookie is not valid base64, ignoring")
		return sess, true
	}
	if len(raw) == 0 || string(raw) == "null" {
		return sess, true
	}

	customer := &customers.Customer{}
	if err := json.Unmarshal(raw, customer); err != nil {
		s.log.Warn().Err(errors.Wrapf(errors.ErrStorageCorrupt, "[cookiestore.Load] %s", err)).
			Str("tenant", tenantID).Msg("customer cookie is not valid JSON, ignoring")
		return sess, true
	}

	sess.Customer = customer
	return sess, true
}

// Clear expires both tenant cookies.
func (s *Store) Clear(tenantID string) error {
	s.setCookie(session.TokenKey(tenantID), "", -1)
	s.setCookie(session.CustomerKey(tenantID), "", -1)
	return nil
}

func (s *Store) setCookie(name, value string, maxAge int) {
	http.SetCookie(s.w, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteStrictMode,
		MaxAge:   maxAge,
	})
}

func (s *Store) cookieValue(name string) string {
	cookie, err := s.r.Cookie(name)
	if err != nil {
		return ""
	}
	return cookie.Value
}
