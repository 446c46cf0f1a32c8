package sites

import (
	"context"
	"errors"
	"fmt"
	"net"
)

// Registry selects the current site. With SiteID set, the current site is
// fixed; otherwise it is looked up by request host. When Enabled is false
// no lookup happens and the request host itself is the site.
type Registry struct {
	Provider Provider
	SiteID   string
	Enabled  bool
}

func NewRegistry(prov Provider, siteID string, enabled bool) *Registry {
	return &Registry{Provider: prov, SiteID: siteID, Enabled: enabled}
}

// Current returns the current site. host may be empty when rendering outside
// a request cycle.
func (r *Registry) Current(ctx context.Context, host string) (Site, error) {
	if r == nil || !r.Enabled {
		if host == "" {
			return Site{}, ErrNoCurrentSite
		}
		return RequestSite(host), nil
	}
	if r.SiteID != "" {
		s, err := r.Provider.SiteByID(ctx, r.SiteID)
		if err != nil {
			return Site{}, fmt.Errorf("site id %q: %w", r.SiteID, err)
		}
		return s, nil
	}
	if host == "" {
		return Site{}, ErrNoCurrentSite
	}
	s, err := r.Provider.SiteByHost(ctx, host)
	if err == nil {
		return s, nil
	}
	if !errors.Is(err, ErrSiteNotFound) {
		return Site{}, err
	}
	// Fall back to the host without its port.
	if h, _, splitErr := net.SplitHostPort(host); splitErr == nil && h != host {
		if s, err = r.Provider.SiteByHost(ctx, h); err == nil {
			return s, nil
		}
	}
	return Site{}, fmt.Errorf("site host %q: %w", host, err)
}
