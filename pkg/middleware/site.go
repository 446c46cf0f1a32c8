// pkg/middleware/site.go
package middleware

import (
	"context"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"absolute/pkg/absolute"
	"absolute/pkg/problems"
	"absolute/pkg/sites"
)

type ctxSiteKey struct{}

// WithSite resolves the current site for every request and stores it in the
// request context.
func WithSite(lookup absolute.SiteLookup, log *zap.SugaredLogger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Allow health/metrics without site context
			switch r.URL.Path {
			case "/healthz", "/metrics":
				next.ServeHTTP(w, r)
				return
			}
			s, err := lookup.Current(r.Context(), r.Host)
			if err != nil {
				if errors.Is(err, sites.ErrSiteNotFound) {
					problems.Write(w, r, http.StatusNotFound, "unknown-site", "no site is registered for "+r.Host)
					return
				}
				log.Errorw("resolve site", "host", r.Host, "err", err)
				problems.Write(w, r, http.StatusInternalServerError, "site-lookup-failed", "")
				return
			}
			ctx := context.WithValue(r.Context(), ctxSiteKey{}, s)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func SiteFrom(ctx context.Context) (sites.Site, bool) {
	s, ok := ctx.Value(ctxSiteKey{}).(sites.Site)
	return s, ok
}
