package absolute

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"absolute/pkg/sites"
)

// ErrMissingDomain means a value used as a site has no domain attribute.
var ErrMissingDomain = errors.New("site has no domain")

// Settings are the process-wide options consulted when building URLs.
type Settings struct {
	// Protocol overrides the scheme of site URLs when non-empty.
	Protocol string
	// SitesEnabled turns on the SITE_ROOT context variables.
	SitesEnabled bool
}

// SiteLookup returns the current site for a request host ("" outside a request).
type SiteLookup interface {
	Current(ctx context.Context, host string) (sites.Site, error)
}

// Scheme is "https" for TLS requests and "http" otherwise.
func Scheme(req Request) string {
	if req.IsSecure() {
		return "https"
	}
	return "http"
}

// AbsoluteURL prefixes path with the request's scheme and authority.
func AbsoluteURL(req Request, path string) string {
	return req.BuildAbsoluteURI(path)
}

// SiteProtocol picks the scheme for site URLs: the configured override, then
// the request's TLS state, then plain http. req may be nil.
func SiteProtocol(s Settings, req Request) string {
	if s.Protocol != "" {
		return s.Protocol
	}
	if req != nil {
		return Scheme(req)
	}
	return "http"
}

// SiteURL joins protocol, domain and path.
func SiteURL(protocol, domain, path string) string {
	return joinRoot(protocol, domain, path)
}

// joinRoot keeps exactly one slash between authority and path.
func joinRoot(scheme, authority, path string) string {
	authority = strings.TrimRight(authority, "/")
	if path != "" && !strings.HasPrefix(path, "/") && !strings.HasPrefix(path, "?") {
		path = "/" + path
	}
	if strings.HasPrefix(path, "/") {
		path = "/" + strings.TrimLeft(path, "/")
	}
	return scheme + "://" + authority + path
}

type domainer interface{ SiteDomain() string }

// SiteDomain extracts the domain of a site-like value.
func SiteDomain(v any) (string, error) {
	switch s := v.(type) {
	case nil:
	case domainer:
		if rv := reflect.ValueOf(s); rv.Kind() == reflect.Pointer && rv.IsNil() {
			break
		}
		return s.SiteDomain(), nil
	case map[string]string:
		if d := s["domain"]; d != "" {
			return d, nil
		}
	case map[string]any:
		if d, ok := s["domain"].(string); ok && d != "" {
			return d, nil
		}
	}
	return "", fmt.Errorf("%w: %T", ErrMissingDomain, v)
}

// ContextVars returns the root URLs exposed to templates: ABSOLUTE_ROOT and
// ABSOLUTE_ROOT_URL always, SITE_ROOT and SITE_ROOT_URL when sites are enabled.
func ContextVars(ctx context.Context, req Request, s Settings, lookup SiteLookup) (map[string]string, error) {
	rootURL := req.BuildAbsoluteURI("/")
	vars := map[string]string{
		"ABSOLUTE_ROOT":     strings.TrimSuffix(rootURL, "/"),
		"ABSOLUTE_ROOT_URL": rootURL,
	}
	if !s.SitesEnabled {
		return vars, nil
	}
	site, err := lookup.Current(ctx, req.Host())
	if err != nil {
		return nil, fmt.Errorf("current site: %w", err)
	}
	root := Scheme(req) + "://" + strings.TrimRight(site.Domain, "/")
	vars["SITE_ROOT"] = root
	vars["SITE_ROOT_URL"] = root + "/"
	return vars, nil
}
