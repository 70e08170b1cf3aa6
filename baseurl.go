package portal

import "fmt"

// Environment selects how tenant base URLs are derived.
type Environment string

const (
	EnvDevelopment Environment = "development"
	EnvProduction  Environment = "production"

	// DefaultPlatformDomain is the root domain every tenant hangs off.
	DefaultPlatformDomain = "accesswash.org"

	// DefaultLocalPort is where the backend listens in local development.
	DefaultLocalPort = 8000
)

// ResolveBaseURL derives the backend base URL for a tenant. It is a pure
// function of its inputs so it can be unit-tested without any request
// context: local development talks to an explicit port on the tenant host,
// production goes through HTTPS and the /api prefix.
func ResolveBaseURL(tenant string, environment Environment, platformDomain string, localPort int) string {
	if platformDomain == "" {
		platformDomain = DefaultPlatformDomain
	}
	if environment == EnvProduction {
		return fmt.Sprintf("https://%s.%s/api", tenant, platformDomain)
	}
	if localPort <= 0 {
		localPort = DefaultLocalPort
	}
	return fmt.Sprintf("http://%s.%s:%d", tenant, platformDomain, localPort)
}

// LoginPath returns the tenant's login page, the navigation target after a
// session is invalidated.
func LoginPath(tenant string) string {
	return fmt.Sprintf("/%s/portal/auth/login", tenant)
}
