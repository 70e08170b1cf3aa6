package portal

import (
	"time"

	"github.com/accesswash/portal/customers"
)

// Credentials is the login input.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Registration is the sign-up input. AccountNumber links the new login to
// an existing utility account.
type Registration struct {
	Email         string `json:"email"`
	Password      string `json:"password"`
	FirstName     string `json:"first_name"`
	LastName      string `json:"last_name"`
	Phone         string `json:"phone_number,omitempty"`
	AccountNumber string `json:"account_number,omitempty"`
}

// ProfileUpdate carries a partial profile change; nil fields are left
// untouched by the backend.
type ProfileUpdate struct {
	FirstName       *string `json:"first_name,omitempty"`
	LastName        *string `json:"last_name,omitempty"`
	Phone           *string `json:"phone_number,omitempty"`
	PropertyAddress *string `json:"property_address,omitempty"`
}

// Dashboard is the landing-page summary for an authenticated customer.
type Dashboard struct {
	Customer       customers.Customer `json:"customer"`
	AccountBalance float64            `json:"account_balance"`
	LastPaymentAt  *time.Time         `json:"last_payment_at,omitempty"`
	OpenRequests   int                `json:"open_requests"`
	Announcements  []Announcement     `json:"announcements,omitempty"`
}

// Announcement is a tenant-wide notice (outages, maintenance windows).
type Announcement struct {
	Title    string    `json:"title"`
	Body     string    `json:"body"`
	PostedAt time.Time `json:"posted_at"`
}

// ServiceRequest is a customer support ticket (leaks, billing disputes,
// meter issues).
type ServiceRequest struct {
	ID          string    `json:"id"`
	Category    string    `json:"category"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	Comments    []Comment `json:"comments,omitempty"`
}

// ServiceRequestInput creates a new ServiceRequest.
type ServiceRequestInput struct {
	Category    string `json:"category"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

// Comment is one entry in a service request's thread.
type Comment struct {
	ID        string    `json:"id"`
	Author    string    `json:"author"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"created_at"`
}

// authPayload is the data section of a successful login/register response.
type authPayload struct {
	Token    string             `json:"token"`
	Customer customers.Customer `json:"customer"`
}
