// Package session defines the per-tenant authentication session and the
// storage contract it is persisted through. One session exists per
// (store, tenant) pair; sessions are never shared across tenants.
package session

import (
	"time"

	"github.com/accesswash/portal/customers"
	"github.com/golang-jwt/jwt/v5"
)

const (
	// TokenCookiePrefix and CustomerCookiePrefix namespace the persisted
	// artifacts by tenant, e.g. "accesswash_token_utility1".
	TokenCookiePrefix    = "accesswash_token_"
	CustomerCookiePrefix = "accesswash_customer_"

	// DefaultTTL is how long a persisted session lives.
	DefaultTTL = 7 * 24 * time.Hour
)

// TokenKey returns the storage key holding the bearer token for a tenant.
func TokenKey(tenantID string) string {
	return TokenCookiePrefix + tenantID
}

// CustomerKey returns the storage key holding the cached customer snapshot
// for a tenant.
func CustomerKey(tenantID string) string {
	return CustomerCookiePrefix + tenantID
}

// Session is the (access token, cached customer) pair persisted per tenant.
type Session struct {
	AccessToken string              `json:"access_token"`
	Customer    *customers.Customer `json:"customer,omitempty"`
	ExpiresAt   time.Time           `json:"expires_at,omitempty"`
}

// IsExpired returns true if the session has expired. A zero ExpiresAt means
// the store's own TTL governs the lifetime.
func (s Session) IsExpired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && now.After(s.ExpiresAt)
}

// Authenticated reports whether both a token and a cached customer are
// present - the invariant behind every IsAuthenticated check.
func (s Session) Authenticated() bool {
	return s.AccessToken != "" && s.Customer != nil
}

// Store is the tenant-scoped persistence contract. Implementations must
// never let an operation scoped to one tenant read or clear another
// tenant's session.
//
// Reads degrade: a corrupt or absent session loads as (zero, false), never
// as an error surfaced to the caller.
type Store interface {
	Save(tenantID string, s Session) error
	Load(tenantID string) (Session, bool)
	Clear(tenantID string) error
}

// TokenExpired reports whether token is a JWT whose exp claim has passed.
// Opaque or unparseable tokens return false - their validity is the
// backend's call, not ours.
func TokenExpired(token string, now time.Time) bool {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return exp.Before(now)
}
