package customers

import (
	"strings"
	"time"
)

// Customer is the canonical profile record owned by the backend.
// The portal only ever holds a cached, read-only snapshot of it inside the
// tenant session; treat it as possibly stale and re-fetch before profile
// operations.
type Customer struct {
	ID        string `json:"id,omitempty"`
	Email     string `json:"email,omitempty"`
	Phone     string `json:"phone_number,omitempty"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`

	// Account linkage
	AccountNumber   string `json:"account_number,omitempty"`
	MeterNumber     string `json:"meter_number,omitempty"`
	PropertyAddress string `json:"property_address,omitempty"`

	EmailVerified bool `json:"email_verified,omitempty"`
	PhoneVerified bool `json:"phone_verified,omitempty"`

	DateJoined time.Time  `json:"date_joined,omitempty"`
	LastLogin  *time.Time `json:"last_login,omitempty"`
}

// FullName returns the customer's display name, falling back to the email
// address when no name is on record.
func (c *Customer) FullName() string {
	name := strings.TrimSpace(c.FirstName + " " + c.LastName)
	if name == "" {
		return c.Email
	}
	return name
}

// Verified reports whether the customer completed identity verification on
// at least one channel.
func (c *Customer) Verified() bool {
	return c.EmailVerified || c.PhoneVerified
}
