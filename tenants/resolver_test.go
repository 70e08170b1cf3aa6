package tenants_test

import (
	"testing"

	"github.com/accesswash/portal/tenants"
	"github.com/stretchr/testify/require"
)

const platformDomain = "accesswash.org"

func TestResolve(t *testing.T) {
	tests := []struct {
		name       string
		routeParam string
		segments   []string
		want       string
	}{
		{
			name:       "route param wins",
			routeParam: "utility1",
			segments:   []string{"acme", "portal"},
			want:       "utility1",
		},
		{
			name:     "first path segment",
			segments: []string{"acme", "portal", "dashboard"},
			want:     "acme",
		},
		{
			name:     "skips empty segments",
			segments: []string{"", "acme"},
			want:     "acme",
		},
		{
			name:     "no signal falls back to default",
			segments: []string{},
			want:     tenants.Default,
		},
		{
			name: "nil segments fall back to default",
			want: tenants.Default,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, tenants.Resolve(tt.routeParam, tt.segments))
		})
	}
}

func TestResolveIsStable(t *testing.T) {
	// Identical inputs must always produce identical output.
	first := tenants.Resolve("", []string{"acme", "portal"})
	for i := 0; i < 10; i++ {
		require.Equal(t, first, tenants.Resolve("", []string{"acme", "portal"}))
	}
}

func TestFromHost(t *testing.T) {
	tests := []struct {
		name string
		host string
		path string
		want string
	}{
		{
			name: "platform subdomain",
			host: "utility1.accesswash.org",
			path: "/portal/dashboard",
			want: "utility1",
		},
		{
			name: "platform subdomain with port",
			host: "utility1.accesswash.org:443",
			path: "/",
			want: "utility1",
		},
		{
			name: "localhost uses first path segment",
			host: "localhost:3000",
			path: "/acme/portal/dashboard",
			want: "acme",
		},
		{
			name: "localhost skips api segment",
			host: "localhost:3000",
			path: "/api/acme/portal",
			want: "acme",
		},
		{
			name: "root path falls back to default",
			host: "localhost:3000",
			path: "/",
			want: tenants.Default,
		},
		{
			name: "bare platform domain falls back to default",
			host: "accesswash.org",
			path: "/",
			want: tenants.Default,
		},
		{
			name: "www is not a tenant",
			host: "www.accesswash.org",
			path: "/",
			want: tenants.Default,
		},
		{
			name: "unrelated host uses path",
			host: "portal.internal",
			path: "/utility2/portal",
			want: "utility2",
		},
		{
			name: "garbage host degrades to default",
			host: ":::",
			path: "",
			want: tenants.Default,
		},
		{
			name: "mixed case host is normalized",
			host: "Utility1.AccessWash.org",
			path: "/",
			want: "utility1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, tenants.FromHost(tt.host, tt.path, platformDomain))
		})
	}
}
