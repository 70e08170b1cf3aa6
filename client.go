// Package portal is the per-tenant client for the AccessWash backend API.
//
// One Client is constructed per tenant and is immutable; when the tenant
// changes, callers build a new Client rather than mutating an existing one.
// Every networked operation goes through the same pipeline: attach the
// tenant's bearer token, execute with a fixed timeout, unwrap the response
// envelope, and normalize any failure into *Error.
package portal

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/accesswash/portal/customers"
	"github.com/accesswash/portal/internal/errors"
	"github.com/accesswash/portal/internal/metrics"
	"github.com/accesswash/portal/session"
	"github.com/rs/zerolog"
)

// DefaultTimeout bounds every backend call. No retries are attempted.
const DefaultTimeout = 10 * time.Second

// Navigator performs the forced navigation to the tenant's login page when
// a session is invalidated. In the edge server this issues an HTTP
// redirect; tests inject a recorder.
type Navigator interface {
	Navigate(url string)
}

// NavigatorFunc adapts a function to the Navigator interface.
type NavigatorFunc func(url string)

func (f NavigatorFunc) Navigate(url string) { f(url) }

// Client executes all backend calls for a single tenant.
type Client struct {
	tenant  string
	baseURL string
	http    *http.Client
	store   session.Store
	nav     Navigator
	log     zerolog.Logger
	ttl     time.Duration
	now     func() time.Time
	metrics *metrics.Metrics
}

type Option func(*Client)

// WithEnvironment derives the base URL for the given environment instead
// of the development default.
func WithEnvironment(environment Environment, platformDomain string, localPort int) Option {
	return func(c *Client) {
		c.baseURL = ResolveBaseURL(c.tenant, environment, platformDomain, localPort)
	}
}

// WithBaseURL overrides base URL derivation entirely (tests, tunnels).
func WithBaseURL(baseURL string) Option {
	return func(c *Client) { c.baseURL = baseURL }
}

// WithTimeout overrides the per-call timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) { c.http.Timeout = timeout }
}

// WithNavigator sets the post-invalidation navigation side effect.
func WithNavigator(nav Navigator) Option {
	return func(c *Client) { c.nav = nav }
}

// WithLogger sets the diagnostic sink for swallowed failures.
func WithLogger(log zerolog.Logger) Option {
	return func(c *Client) { c.log = log }
}

// WithSessionTTL overrides the lifetime stamped on persisted sessions.
func WithSessionTTL(ttl time.Duration) Option {
	return func(c *Client) { c.ttl = ttl }
}

// WithNowTime sets the clock (primarily for testing).
func WithNowTime(now func() time.Time) Option {
	return func(c *Client) { c.now = now }
}

// WithMetrics records per-operation outcomes.
func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Client) { c.metrics = m }
}

// New builds the client for one tenant backed by the given session store.
func New(tenant string, store session.Store, options ...Option) *Client {
	c := &Client{
		tenant:  tenant,
		baseURL: ResolveBaseURL(tenant, EnvDevelopment, DefaultPlatformDomain, DefaultLocalPort),
		http:    &http.Client{Timeout: DefaultTimeout},
		store:   store,
		nav:     NavigatorFunc(func(string) {}),
		log:     zerolog.Nop(),
		ttl:     session.DefaultTTL,
		now:     time.Now,
	}
	for _, opt := range options {
		opt(c)
	}
	return c
}

// Tenant returns the tenant this client is bound to.
func (c *Client) Tenant() string { return c.tenant }

// BaseURL returns the derived backend base URL.
func (c *Client) BaseURL() string { return c.baseURL }

// Login authenticates the customer and persists the session on success.
func (c *Client) Login(ctx context.Context, creds Credentials) (*customers.Customer, error) {
	var payload authPayload
	if err := c.do(ctx, "login", http.MethodPost, "/portal/auth/login/", creds, &payload); err != nil {
		return nil, err
	}
	if err := c.persistSession(payload); err != nil {
		return nil, err
	}
	return &payload.Customer, nil
}

// Register creates a new customer login. Same persistence contract as Login.
func (c *Client) Register(ctx context.Context, data Registration) (*customers.Customer, error) {
	var payload authPayload
	if err := c.do(ctx, "register", http.MethodPost, "/portal/auth/register/", data, &payload); err != nil {
		return nil, err
	}
	if err := c.persistSession(payload); err != nil {
		return nil, err
	}
	return &payload.Customer, nil
}

// Logout notifies the backend best-effort and then unconditionally clears
// the local session. It never fails.
func (c *Client) Logout(ctx context.Context) error {
	if err := c.do(ctx, "logout", http.MethodPost, "/portal/auth/logout/", nil, nil); err != nil {
		c.log.Debug().Err(err).Str("tenant", c.tenant).Msg("logout notification failed, clearing session anyway")
	}
	if err := c.store.Clear(c.tenant); err != nil {
		c.log.Warn().Err(err).Str("tenant", c.tenant).Msg("session clear failed during logout")
	}
	return nil
}

// ForgotPassword requests a password-reset email. Fire-and-forget on the
// backend side; a rejected request surfaces its message.
func (c *Client) ForgotPassword(ctx context.Context, email string) error {
	body := map[string]string{"email": email}
	return c.do(ctx, "forgot_password", http.MethodPost, "/portal/auth/forgot-password/", body, nil)
}

// Dashboard fetches the authenticated landing-page summary.
func (c *Client) Dashboard(ctx context.Context) (*Dashboard, error) {
	var out Dashboard
	if err := c.do(ctx, "dashboard", http.MethodGet, "/portal/dashboard/", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Profile fetches the current customer profile from the backend.
func (c *Client) Profile(ctx context.Context) (*customers.Customer, error) {
	var out customers.Customer
	if err := c.do(ctx, "profile", http.MethodGet, "/portal/profile/", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateProfile applies a partial profile change and, on success, refreshes
// the cached customer snapshot. On failure the previous snapshot is left
// untouched.
func (c *Client) UpdateProfile(ctx context.Context, data ProfileUpdate) (*customers.Customer, error) {
	var out customers.Customer
	if err := c.do(ctx, "update_profile", http.MethodPut, "/portal/profile/", data, &out); err != nil {
		return nil, err
	}

	if sess, ok := c.store.Load(c.tenant); ok {
		sess.Customer = &out
		if err := c.store.Save(c.tenant, sess); err != nil {
			c.log.Warn().Err(err).Str("tenant", c.tenant).Msg("failed to refresh cached customer snapshot")
		}
	}
	return &out, nil
}

// ServiceRequests lists the customer's support tickets.
func (c *Client) ServiceRequests(ctx context.Context) ([]ServiceRequest, error) {
	var out []ServiceRequest
	if err := c.do(ctx, "service_requests", http.MethodGet, "/support/requests/", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ServiceRequest fetches one support ticket with its comment thread.
func (c *Client) ServiceRequest(ctx context.Context, id string) (*ServiceRequest, error) {
	var out ServiceRequest
	if err := c.do(ctx, "service_request", http.MethodGet, "/support/requests/"+id+"/", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateServiceRequest opens a new support ticket.
func (c *Client) CreateServiceRequest(ctx context.Context, data ServiceRequestInput) (*ServiceRequest, error) {
	var out ServiceRequest
	if err := c.do(ctx, "create_service_request", http.MethodPost, "/support/requests/", data, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// AddComment appends a comment to a support ticket's thread.
func (c *Client) AddComment(ctx context.Context, requestID, comment string) (*Comment, error) {
	body := map[string]string{"comment": comment}
	var out Comment
	if err := c.do(ctx, "add_comment", http.MethodPost, "/support/requests/"+requestID+"/comments/", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CurrentCustomer synchronously reads the cached customer snapshot. It
// returns nil when the session is absent or unreadable; no network call.
func (c *Client) CurrentCustomer() *customers.Customer {
	sess, ok := c.store.Load(c.tenant)
	if !ok {
		return nil
	}
	return sess.Customer
}

// IsAuthenticated is true iff both a token and a cached customer are
// present for this tenant.
func (c *Client) IsAuthenticated() bool {
	sess, ok := c.store.Load(c.tenant)
	return ok && sess.Authenticated()
}

// do runs one backend call through the shared pipeline. out, when non-nil,
// receives the envelope's data section.
func (c *Client) do(ctx context.Context, op, method, path string, body, out any) error {
	err := c.exec(ctx, method, path, body, out)
	c.record(op, err)
	return err
}

func (c *Client) exec(ctx context.Context, method, path string, body, out any) error {
	var reader *bytes.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return &Error{Message: DefaultErrorMessage}
		}
		reader = bytes.NewReader(encoded)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return &Error{Message: DefaultErrorMessage}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	if sess, ok := c.store.Load(c.tenant); ok && sess.AccessToken != "" {
		req.Header.Set("Authorization", "Bearer "+sess.AccessToken)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return normalizeNetworkError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		c.log.Debug().Err(errors.ErrUnauthorized).Str("tenant", c.tenant).Msg("backend rejected session, invalidating")
		c.invalidateSession()
		return &Error{
			Message:    "Your session has expired. Please log in again.",
			StatusCode: http.StatusUnauthorized,
		}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return normalizeHTTPError(resp.StatusCode, resp.Body)
	}

	env := decodeEnvelope(resp.Body)
	if env == nil {
		return &Error{Message: "Unexpected response from the service.", StatusCode: resp.StatusCode}
	}
	if !env.Success {
		e := &Error{Message: env.Message, StatusCode: resp.StatusCode, Fields: env.Errors}
		if e.Message == "" {
			e.Message = DefaultErrorMessage
		}
		return e
	}

	if out != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return &Error{Message: "Unexpected response from the service.", StatusCode: resp.StatusCode}
		}
	}
	return nil
}

// invalidateSession clears all tenant-scoped storage and forces navigation
// to the tenant's login page. This is the sole automatic invalidation
// trigger.
func (c *Client) invalidateSession() {
	if err := c.store.Clear(c.tenant); err != nil {
		c.log.Warn().Err(err).Str("tenant", c.tenant).Msg("session clear failed after 401")
	}
	if c.metrics != nil {
		c.metrics.SessionInvalidations.Inc()
	}
	c.nav.Navigate(LoginPath(c.tenant))
}

func (c *Client) persistSession(payload authPayload) error {
	customer := payload.Customer
	sess := session.Session{
		AccessToken: payload.Token,
		Customer:    &customer,
		ExpiresAt:   c.now().Add(c.ttl),
	}
	if err := c.store.Save(c.tenant, sess); err != nil {
		c.log.Error().Err(err).Str("tenant", c.tenant).Msg("failed to persist session")
		return &Error{Message: "Could not save your session. Please try again."}
	}
	return nil
}

func (c *Client) record(op string, err error) {
	if c.metrics == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	c.metrics.ClientRequestsTotal.WithLabelValues(op, outcome).Inc()
}
