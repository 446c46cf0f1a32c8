package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"absolute/internal/app"
	"absolute/pkg/config"
	"absolute/pkg/tags"
	"absolute/pkg/urls"
)

func testOpener(t *testing.T, cfg config.Config) opener {
	t.Helper()
	t.Setenv("SITE_SEED_JSON", `[{"id":"1","domain":"example.com","name":"Example"},{"id":"2","domain":"foo.com","name":"Foo"}]`)
	return func(*cobra.Command) (*app.App, error) {
		a, err := app.New(context.Background(), cfg, zap.NewNop().Sugar())
		if err != nil {
			return nil, err
		}
		_, err = a.Handler()
		return a, err
	}
}

func run(t *testing.T, cmd *cobra.Command, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func writeTemplate(t *testing.T, src string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "t.txt")
	require.NoError(t, os.WriteFile(path, []byte(src), 0o644))
	return path
}

func TestRenderWithoutRequest(t *testing.T) {
	open := testOpener(t, config.Config{SitesEnabled: true, SiteID: "1"})
	path := writeTemplate(t, `{% site "test_url" %}`)

	out, err := run(t, renderCommand(open), path)
	require.NoError(t, err)
	assert.Equal(t, "http://example.com/test", out)
}

func TestRenderProtocolOverride(t *testing.T) {
	open := testOpener(t, config.Config{SitesEnabled: true, SiteID: "1", URLProtocol: "xxx"})
	path := writeTemplate(t, `{% site "test_url" %}`)

	out, err := run(t, renderCommand(open), path)
	require.NoError(t, err)
	assert.Equal(t, "xxx://example.com/test", out)
}

func TestRenderWithHost(t *testing.T) {
	open := testOpener(t, config.Config{SitesEnabled: true, SiteID: "1"})
	path := writeTemplate(t, `{% absolute "article" 2024 slug %} {{ SITE_ROOT_URL }}`)

	out, err := run(t, renderCommand(open), path, "--host", "testserver", "--secure", "--var", "slug=hi")
	require.NoError(t, err)
	assert.Equal(t, "https://testserver/articles/2024/hi https://example.com/", out)
}

func TestRenderUndefinedVariable(t *testing.T) {
	open := testOpener(t, config.Config{SitesEnabled: true, SiteID: "1"})
	path := writeTemplate(t, `{% site "article" year=2024 slug=slug %}`)

	out, err := run(t, renderCommand(open), path)
	assert.ErrorIs(t, err, urls.ErrNoReverseMatch)
	assert.NotContains(t, out, "articles")
}

func TestRenderSyntaxError(t *testing.T) {
	open := testOpener(t, config.Config{SitesEnabled: true, SiteID: "1"})
	path := writeTemplate(t, `{% site %}`)

	_, err := run(t, renderCommand(open), path)
	assert.ErrorIs(t, err, tags.ErrSyntax)
}

func TestRenderBadVar(t *testing.T) {
	open := testOpener(t, config.Config{SitesEnabled: true, SiteID: "1"})
	path := writeTemplate(t, "x")
	_, err := run(t, renderCommand(open), path, "--var", "novalue")
	assert.ErrorContains(t, err, "want key=value")
}

func TestReverse(t *testing.T) {
	open := testOpener(t, config.Config{SitesEnabled: true, SiteID: "1"})

	out, err := run(t, reverseCommand(open), "article", "year=2024", "slug=x")
	require.NoError(t, err)
	assert.Equal(t, "http://example.com/articles/2024/x\n", out)

	out, err = run(t, reverseCommand(open), "test_url", "--site", "2")
	require.NoError(t, err)
	assert.Equal(t, "http://foo.com/test\n", out)

	_, err = run(t, reverseCommand(open), "nope")
	assert.Error(t, err)
}

func TestSites(t *testing.T) {
	open := testOpener(t, config.Config{SitesEnabled: true, SiteID: "1"})
	out, err := run(t, sitesCommand(open))
	require.NoError(t, err)
	assert.Contains(t, out, "example.com")
	assert.Contains(t, out, "foo.com")
}

func TestSitesQuery(t *testing.T) {
	open := testOpener(t, config.Config{SitesEnabled: true, SiteID: "1"})
	out, err := run(t, sitesCommand(open), "--query", "[?id=='2'].domain | [0]")
	require.NoError(t, err)
	assert.Equal(t, "\"foo.com\"\n", out)

	_, err = run(t, sitesCommand(open), "--query", "[?")
	assert.ErrorContains(t, err, "--query")
}
