package sites

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

var cacheLookups = prometheus.NewCounterVec(prometheus.CounterOpts{
	Namespace: "absolute",
	Name:      "site_cache_lookups_total",
	Help:      "Site registry lookups served through the Redis cache, by result.",
}, []string{"result"})

func init() {
	prometheus.MustRegister(cacheLookups)
}

// cachedProvider memoises SiteByID / SiteByHost in Redis. Misses are not
// cached so that newly registered sites become visible immediately.
type cachedProvider struct {
	next   Provider
	client *redis.Client
	ttl    time.Duration
	log    *zap.SugaredLogger
}

// NewCachedProvider wraps next with a Redis cache. A nil client returns next.
func NewCachedProvider(next Provider, client *redis.Client, ttl time.Duration, log *zap.SugaredLogger) Provider {
	if client == nil {
		return next
	}
	return &cachedProvider{next: next, client: client, ttl: ttl, log: log}
}

func (c *cachedProvider) SiteByID(ctx context.Context, id string) (Site, error) {
	return c.lookup(ctx, "absolute:site:id:"+id, func() (Site, error) { return c.next.SiteByID(ctx, id) })
}

func (c *cachedProvider) SiteByHost(ctx context.Context, host string) (Site, error) {
	key := "absolute:site:host:" + strings.ToLower(host)
	return c.lookup(ctx, key, func() (Site, error) { return c.next.SiteByHost(ctx, host) })
}

func (c *cachedProvider) ListSites(ctx context.Context) ([]Site, error) {
	return c.next.ListSites(ctx)
}

func (c *cachedProvider) lookup(ctx context.Context, key string, load func() (Site, error)) (Site, error) {
	raw, err := c.client.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var s Site
		if jerr := json.Unmarshal(raw, &s); jerr == nil {
			cacheLookups.WithLabelValues("hit").Inc()
			return s, nil
		}
		c.log.Warnw("discarding undecodable site cache entry", "key", key)
	case !errors.Is(err, redis.Nil):
		// Redis trouble degrades to direct lookups.
		c.log.Warnw("site cache get", "key", key, "err", err)
		cacheLookups.WithLabelValues("error").Inc()
		return load()
	}
	cacheLookups.WithLabelValues("miss").Inc()
	s, err := load()
	if err != nil {
		return Site{}, err
	}
	if b, jerr := json.Marshal(s); jerr == nil {
		if serr := c.client.Set(ctx, key, b, c.ttl).Err(); serr != nil {
			c.log.Warnw("site cache set", "key", key, "err", serr)
		}
	}
	return s, nil
}
