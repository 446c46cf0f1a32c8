package absolute

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"absolute/pkg/sites"
)

func newRegistry(enabled bool) *sites.Registry {
	prov := sites.NewMemoryProvider(zap.NewNop().Sugar(), sites.DefaultSite)
	return sites.NewRegistry(prov, "1", enabled)
}

func TestContextVarsPlain(t *testing.T) {
	req := FromHTTP(httptest.NewRequest(http.MethodGet, "http://testserver/", nil), false)

	vars, err := ContextVars(context.Background(), req, Settings{}, newRegistry(false))
	require.NoError(t, err)
	assert.Equal(t, "http://testserver", vars["ABSOLUTE_ROOT"])
	assert.Equal(t, "http://testserver/", vars["ABSOLUTE_ROOT_URL"])
	assert.NotContains(t, vars, "SITE_ROOT")
	assert.NotContains(t, vars, "SITE_ROOT_URL")
}

func TestContextVarsSecureWithSites(t *testing.T) {
	req := FromHTTP(httptest.NewRequest(http.MethodGet, "https://testserver/any/path", nil), false)

	vars, err := ContextVars(context.Background(), req, Settings{SitesEnabled: true}, newRegistry(true))
	require.NoError(t, err)
	assert.Equal(t, "https://testserver", vars["ABSOLUTE_ROOT"])
	assert.Equal(t, "https://testserver/", vars["ABSOLUTE_ROOT_URL"])
	assert.Equal(t, "https://example.com", vars["SITE_ROOT"])
	assert.Equal(t, "https://example.com/", vars["SITE_ROOT_URL"])
}

type failingLookup struct{}

func (failingLookup) Current(context.Context, string) (sites.Site, error) {
	return sites.Site{}, sites.ErrSiteNotFound
}

func TestContextVarsLookupError(t *testing.T) {
	req := FromHTTP(httptest.NewRequest(http.MethodGet, "http://testserver/", nil), false)
	_, err := ContextVars(context.Background(), req, Settings{SitesEnabled: true}, failingLookup{})
	assert.ErrorIs(t, err, sites.ErrSiteNotFound)
}

func TestSiteProtocol(t *testing.T) {
	secure := FromHTTP(httptest.NewRequest(http.MethodGet, "https://testserver/", nil), false)
	plain := FromHTTP(httptest.NewRequest(http.MethodGet, "http://testserver/", nil), false)

	assert.Equal(t, "xxx", SiteProtocol(Settings{Protocol: "xxx"}, secure))
	assert.Equal(t, "https", SiteProtocol(Settings{}, secure))
	assert.Equal(t, "http", SiteProtocol(Settings{}, plain))
	assert.Equal(t, "http", SiteProtocol(Settings{}, nil))
}

func TestSiteURL(t *testing.T) {
	assert.Equal(t, "http://foo.com/test", SiteURL("http", "foo.com", "/test"))
	assert.Equal(t, "http://foo.com/test", SiteURL("http", "foo.com/", "//test"))
	assert.Equal(t, "http://foo.com/test", SiteURL("http", "foo.com", "test"))
	assert.Equal(t, "http://foo.com?x=1", SiteURL("http", "foo.com", "?x=1"))
	assert.Equal(t, "xxx://foo.com", SiteURL("xxx", "foo.com", ""))
}

func TestAbsoluteURL(t *testing.T) {
	req := FromHTTP(httptest.NewRequest(http.MethodGet, "http://testserver/", nil), false)
	assert.Equal(t, "http://testserver/test", AbsoluteURL(req, "/test"))
}

func TestSiteDomain(t *testing.T) {
	site := sites.Site{ID: "2", Domain: "foo.com"}
	var nilSite *sites.Site

	ok := []any{site, &site, map[string]string{"domain": "foo.com"}, map[string]any{"domain": "foo.com"}}
	for _, v := range ok {
		d, err := SiteDomain(v)
		require.NoError(t, err)
		assert.Equal(t, "foo.com", d)
	}

	missing := []any{
		nil, nilSite, "foo.com", struct{ Name string }{"x"},
		map[string]any{"name": "foo"},
		map[string]any{"domain": nil},
		map[string]any{"domain": 42},
		map[string]string{"domain": ""},
	}
	for _, v := range missing {
		_, err := SiteDomain(v)
		assert.True(t, errors.Is(err, ErrMissingDomain), "%#v", v)
	}
}
