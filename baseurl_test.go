package portal_test

import (
	"testing"

	"github.com/accesswash/portal"
	"github.com/stretchr/testify/require"
)

func TestResolveBaseURL(t *testing.T) {
	tests := []struct {
		name        string
		tenant      string
		environment portal.Environment
		domain      string
		port        int
		want        string
	}{
		{
			name:        "production",
			tenant:      "utility1",
			environment: portal.EnvProduction,
			domain:      "accesswash.org",
			want:        "https://utility1.accesswash.org/api",
		},
		{
			name:        "development",
			tenant:      "acme",
			environment: portal.EnvDevelopment,
			domain:      "accesswash.org",
			port:        8000,
			want:        "http://acme.accesswash.org:8000",
		},
		{
			name:        "development defaults port",
			tenant:      "acme",
			environment: portal.EnvDevelopment,
			domain:      "accesswash.org",
			want:        "http://acme.accesswash.org:8000",
		},
		{
			name:        "empty domain falls back to platform default",
			tenant:      "demo",
			environment: portal.EnvProduction,
			want:        "https://demo.accesswash.org/api",
		},
		{
			name:        "custom domain and port",
			tenant:      "demo",
			environment: portal.EnvDevelopment,
			domain:      "water.test",
			port:        9000,
			want:        "http://demo.water.test:9000",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := portal.ResolveBaseURL(tt.tenant, tt.environment, tt.domain, tt.port)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestResolveBaseURLIsPure(t *testing.T) {
	first := portal.ResolveBaseURL("acme", portal.EnvProduction, "accesswash.org", 0)
	for i := 0; i < 5; i++ {
		require.Equal(t, first, portal.ResolveBaseURL("acme", portal.EnvProduction, "accesswash.org", 0))
	}
}

func TestLoginPath(t *testing.T) {
	require.Equal(t, "/acme/portal/auth/login", portal.LoginPath("acme"))
}
