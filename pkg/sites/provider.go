package sites

import (
	"context"
)

type Provider interface {
	// Resolve site by its primary key.
	SiteByID(ctx context.Context, id string) (Site, error)
	// Resolve site from the incoming host.
	SiteByHost(ctx context.Context, host string) (Site, error)
	// All registered sites, ordered by id.
	ListSites(ctx context.Context) ([]Site, error)
}
