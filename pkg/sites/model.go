package sites

import "errors"

// Site maps a logical site to the domain it is served from.
type Site struct {
	ID     string `json:"id" yaml:"id"`
	Domain string `json:"domain" yaml:"domain"` // authority, host[:port]
	Name   string `json:"name" yaml:"name"`
}

// SiteDomain exposes the domain attribute used when building site URLs.
func (s Site) SiteDomain() string { return s.Domain }

// RequestSite stands in for a registry entry when the multi-site registry is
// disabled: both domain and name are the request host.
func RequestSite(host string) Site {
	return Site{Domain: host, Name: host}
}

var (
	ErrSiteNotFound  = errors.New("site not found")
	ErrNoCurrentSite = errors.New("no current site: neither site id nor request host available")
)
