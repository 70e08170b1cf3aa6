package tenants

import "strings"

// Resolve derives the active tenant from an explicit route parameter and
// the current URL path segments. The route parameter wins; otherwise the
// first non-empty path segment is used; otherwise the Default tenant.
// Resolve is pure and never fails - absence of signal degrades to Default.
func Resolve(routeParam string, segments []string) string {
	if routeParam != "" {
		return routeParam
	}
	for _, seg := range segments {
		if seg != "" {
			return seg
		}
	}
	return Default
}

// FromHost derives the tenant from a request's Host header and path.
//
// Hosts under the platform root domain resolve to their subdomain label.
// Local-development hosts resolve to the first non-"api" path segment.
// Anything malformed degrades silently to the Default tenant.
func FromHost(host, path, platformDomain string) string {
	host = strings.ToLower(strings.TrimSpace(host))

	// Strip the port, if any.
	if idx := strings.Index(host, ":"); idx != -1 {
		host = host[:idx]
	}

	if platformDomain != "" && host != platformDomain && strings.HasSuffix(host, "."+platformDomain) {
		label, _, _ := strings.Cut(host, ".")
		if label != "" && label != "www" {
			return label
		}
		return Default
	}

	if seg := firstPathSegment(path); seg != "" {
		return seg
	}
	return Default
}

// firstPathSegment returns the first path segment that can name a tenant,
// skipping the reserved "api" prefix.
func firstPathSegment(path string) string {
	for _, seg := range strings.Split(path, "/") {
		if seg == "" || seg == "api" {
			continue
		}
		return seg
	}
	return ""
}
