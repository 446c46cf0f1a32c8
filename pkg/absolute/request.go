// Package absolute builds fully-qualified URLs from request or site roots.
package absolute

import (
	"context"
	"net/http"
	"net/url"
	"strings"
)

// Request is the part of an incoming request needed to build absolute URLs.
type Request interface {
	IsSecure() bool
	Host() string
	// BuildAbsoluteURI resolves location against the current request URL.
	BuildAbsoluteURI(location string) string
}

// HTTPRequest adapts *http.Request.
type HTTPRequest struct {
	R *http.Request
	// TrustForwardedProto treats X-Forwarded-Proto: https as a TLS request.
	TrustForwardedProto bool
}

func FromHTTP(r *http.Request, trustForwardedProto bool) HTTPRequest {
	return HTTPRequest{R: r, TrustForwardedProto: trustForwardedProto}
}

func (h HTTPRequest) IsSecure() bool {
	if h.R.TLS != nil {
		return true
	}
	if h.TrustForwardedProto {
		proto := h.R.Header.Get("X-Forwarded-Proto")
		if i := strings.IndexByte(proto, ','); i >= 0 {
			proto = proto[:i]
		}
		return strings.EqualFold(strings.TrimSpace(proto), "https")
	}
	return false
}

func (h HTTPRequest) Host() string {
	if h.R.Host != "" {
		return h.R.Host
	}
	return h.R.URL.Host
}

// Context returns the request's context so lookups made while rendering
// observe its cancellation.
func (h HTTPRequest) Context() context.Context {
	return h.R.Context()
}

func (h HTTPRequest) BuildAbsoluteURI(location string) string {
	current := &url.URL{
		Scheme:   Scheme(h),
		Host:     h.Host(),
		Path:     h.R.URL.Path,
		RawPath:  h.R.URL.RawPath,
		RawQuery: h.R.URL.RawQuery,
	}
	if location == "" {
		return current.String()
	}
	ref, err := url.Parse(location)
	if err != nil {
		return joinRoot(current.Scheme, current.Host, location)
	}
	if ref.IsAbs() {
		return ref.String()
	}
	// "//x" would otherwise be read as a network-path reference to host x.
	if strings.HasPrefix(location, "//") {
		return joinRoot(current.Scheme, current.Host, location)
	}
	return current.ResolveReference(ref).String()
}
