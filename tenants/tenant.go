package tenants

// Default is the fallback tenant used whenever no tenant signal is present
// in the request. It always exists on the platform.
const Default = "demo"

// Tenant represents one utility organization on the platform.
// Each tenant is identified by its subdomain label and has isolated
// data and session state.
type Tenant struct {
	ID     string `json:"id"`     // Subdomain label (e.g., "utility1")
	Name   string `json:"name"`   // Display name (e.g., "Utility One Water")
	Domain string `json:"domain"` // Full host serving this tenant (e.g., "utility1.accesswash.org")
}
