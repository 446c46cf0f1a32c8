package app

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"absolute/pkg/config"
)

func TestAppInMemory(t *testing.T) {
	t.Setenv("SITE_SEED_JSON", `[{"id":"1","domain":"example.com","name":"Example"}]`)
	cfg := config.Config{SitesEnabled: true, SiteID: "1"}

	a, err := New(context.Background(), cfg, zap.NewNop().Sugar())
	require.NoError(t, err)
	defer a.Close()

	h, err := a.Handler()
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "http://testserver/healthz", nil))
	assert.Equal(t, "ok", rec.Body.String())

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "http://testserver/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "http://testserver/test", nil))
	assert.Contains(t, rec.Body.String(), "http://testserver/test")
	assert.NotEmpty(t, rec.Header().Get("X-Request-Id"))

	path, err := a.Router.Reverse("article", []any{2024, "x"}, nil)
	require.NoError(t, err)
	assert.Equal(t, "/articles/2024/x", path)
}

func TestAppBadSeed(t *testing.T) {
	t.Setenv("SITE_SEED_JSON", `not json`)
	_, err := New(context.Background(), config.Config{SitesEnabled: true}, zap.NewNop().Sugar())
	assert.Error(t, err)
}
