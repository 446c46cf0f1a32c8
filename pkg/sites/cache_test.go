package sites

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNewCachedProviderWithoutClient(t *testing.T) {
	p := newTestProvider()
	assert.Same(t, p, NewCachedProvider(p, nil, time.Minute, zap.NewNop().Sugar()))
}

// Runs against a real Redis when REDIS_URL is set.
func TestCachedProviderRedis(t *testing.T) {
	url := os.Getenv("REDIS_URL")
	if url == "" {
		t.Skip("REDIS_URL not set")
	}
	opts, err := redis.ParseURL(url)
	require.NoError(t, err)
	client := redis.NewClient(opts)
	defer client.Close()

	ctx := context.Background()
	mem := newTestProvider()
	p := NewCachedProvider(mem, client, time.Minute, zap.NewNop().Sugar())
	require.NoError(t, client.Del(ctx, "absolute:site:id:2", "absolute:site:host:foo.com").Err())

	s, err := p.SiteByID(ctx, "2")
	require.NoError(t, err)
	assert.Equal(t, "foo.com", s.Domain)

	// served from cache even after the backing entry changes
	mem.Add(Site{ID: "2", Domain: "changed.com"})
	s, err = p.SiteByID(ctx, "2")
	require.NoError(t, err)
	assert.Equal(t, "foo.com", s.Domain)

	_, err = p.SiteByHost(ctx, "nowhere.example")
	assert.ErrorIs(t, err, ErrSiteNotFound)
}
