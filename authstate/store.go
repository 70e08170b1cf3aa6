// Package authstate is the process-wide reactive container for a tenant's
// authentication state. All UI surfaces read from one Store; it never holds
// more than one tenant's state at a time, and every mutating action takes
// the tenant explicitly so behavior stays independent of ambient request
// context.
package authstate

import (
	"context"
	"sync"

	"github.com/accesswash/portal"
	"github.com/accesswash/portal/customers"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// Status is the auth state machine's current phase.
type Status string

const (
	StatusIdle            Status = "idle"
	StatusLoading         Status = "loading"
	StatusAuthenticated   Status = "authenticated"
	StatusUnauthenticated Status = "unauthenticated"
)

// State is a point-in-time snapshot of the container.
type State struct {
	Tenant   string
	Status   Status
	Customer *customers.Customer
	Err      string // Retained until cleared or a new action begins
}

// IsAuthenticated is true iff the store is authenticated and holds a cached
// customer for the active tenant.
func (s State) IsAuthenticated() bool {
	return s.Status == StatusAuthenticated && s.Customer != nil
}

// API is the slice of the portal client the store drives. *portal.Client
// satisfies it; tests inject fakes.
type API interface {
	Login(ctx context.Context, creds portal.Credentials) (*customers.Customer, error)
	Register(ctx context.Context, data portal.Registration) (*customers.Customer, error)
	Logout(ctx context.Context) error
	ForgotPassword(ctx context.Context, email string) error
	CurrentCustomer() *customers.Customer
	IsAuthenticated() bool
}

// ClientFactory builds the tenant-bound API for an action. The store never
// caches clients across tenants.
type ClientFactory func(tenantID string) API

// Store is the auth session container. Actions may race (two concurrent
// actions on the same tenant resolve last-writer-wins); the store guards
// its state with a mutex but performs no request cancellation.
type Store struct {
	mu      sync.Mutex
	state   State
	clients ClientFactory
	log     zerolog.Logger
}

// StoreOption modifies the Store at construction.
type StoreOption func(*Store)

// WithLogger sets the diagnostic sink for swallowed failures.
func WithLogger(log zerolog.Logger) StoreOption {
	return func(s *Store) { s.log = log }
}

// New creates the auth state container.
func New(clients ClientFactory, options ...StoreOption) (*Store, error) {
	if clients == nil {
		return nil, errors.New("[authstate.New] client factory is required")
	}

	s := &Store{
		state:   State{Status: StatusIdle},
		clients: clients,
		log:     zerolog.Nop(),
	}
	for _, opt := range options {
		opt(s)
	}
	return s, nil
}

// Snapshot returns a copy of the current state.
func (s *Store) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// LoadFromStorage initializes state for a tenant from persisted storage
// without a network round-trip. It does not pass through the loading state.
func (s *Store) LoadFromStorage(tenantID string) State {
	api := s.clients(tenantID)
	customer := api.CurrentCustomer()
	authenticated := api.IsAuthenticated()

	s.mu.Lock()
	defer s.mu.Unlock()

	s.state = State{Tenant: tenantID}
	if authenticated {
		s.state.Status = StatusAuthenticated
		s.state.Customer = customer
	} else {
		s.state.Status = StatusUnauthenticated
	}
	return s.state
}

// Login authenticates against the tenant's backend and caches the returned
// customer on success.
func (s *Store) Login(ctx context.Context, tenantID string, creds portal.Credentials) error {
	s.begin(tenantID)

	customer, err := s.clients(tenantID).Login(ctx, creds)
	s.settle(tenantID, customer, err)
	return err
}

// Register signs the customer up and caches the returned customer on
// success.
func (s *Store) Register(ctx context.Context, tenantID string, data portal.Registration) error {
	s.begin(tenantID)

	customer, err := s.clients(tenantID).Register(ctx, data)
	s.settle(tenantID, customer, err)
	return err
}

// Logout always transitions to unauthenticated with no error, regardless of
// the remote outcome. The remote notification is best-effort.
func (s *Store) Logout(ctx context.Context, tenantID string) {
	s.begin(tenantID)

	if err := s.clients(tenantID).Logout(ctx); err != nil {
		// Logout is defined to always succeed locally.
		s.log.Debug().Err(err).Str("tenant", tenantID).Msg("remote logout failed")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = State{Tenant: tenantID, Status: StatusUnauthenticated}
}

// ForgotPassword requests a reset email. Failure surfaces the backend's
// message; success leaves any cached customer untouched.
func (s *Store) ForgotPassword(ctx context.Context, tenantID, email string) error {
	s.begin(tenantID)

	err := s.clients(tenantID).ForgotPassword(ctx, email)

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state.Customer != nil && err == nil {
		s.state.Status = StatusAuthenticated
	} else {
		s.state.Status = StatusUnauthenticated
	}
	if err != nil {
		s.state.Err = err.Error()
	}
	return err
}

// ClearError drops a retained error message without other state changes.
func (s *Store) ClearError() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Err = ""
}

// Reset returns the container to its initial empty state. Callers must
// invoke it (or LoadFromStorage) whenever the active tenant changes.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = State{Status: StatusIdle}
}

// begin stamps the loading state for an action, wiping state left over from
// a different tenant first.
func (s *Store) begin(tenantID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state.Tenant != tenantID {
		s.state = State{Tenant: tenantID}
	}
	s.state.Status = StatusLoading
	s.state.Err = ""
}

// settle records an auth action's outcome: authenticated with the returned
// customer, or unauthenticated with the retained error message.
func (s *Store) settle(tenantID string, customer *customers.Customer, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err != nil {
		s.state = State{Tenant: tenantID, Status: StatusUnauthenticated, Err: err.Error()}
		return
	}
	s.state = State{Tenant: tenantID, Status: StatusAuthenticated, Customer: customer}
}
