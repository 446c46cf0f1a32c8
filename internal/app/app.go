package app

import (
	"context"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"absolute/internal/pages"
	"absolute/pkg/absolute"
	"absolute/pkg/config"
	"absolute/pkg/db"
	"absolute/pkg/middleware"
	"absolute/pkg/sites"
	"absolute/pkg/tags"
	"absolute/pkg/urls"
)

// App is the application container shared by the service and the CLI.
//
// Keep it lean: shared deps and config only.
// Request-scoped work should use context.
type App struct {
	Log      *zap.SugaredLogger
	Config   config.Config
	Settings absolute.Settings
	Provider sites.Provider
	Sites    *sites.Registry
	Router   *urls.Router
	Tags     *tags.Library

	pool  *pgxpool.Pool
	redis *redis.Client
}

// New connects the optional backends, builds the site registry and the
// named route table. Routes are registered by Handler.
func New(ctx context.Context, cfg config.Config, log *zap.SugaredLogger) (*App, error) {
	a := &App{
		Log:    log,
		Config: cfg,
		Settings: absolute.Settings{
			Protocol:     cfg.URLProtocol,
			SitesEnabled: cfg.SitesEnabled,
		},
	}
	var err error
	if a.pool, err = db.Connect(ctx, cfg, log); err != nil {
		return nil, err
	}
	if a.redis, err = db.Redis(ctx, cfg, log); err != nil {
		a.Close()
		return nil, err
	}

	var prov sites.Provider
	if a.pool != nil {
		if err := sites.EnsureSchema(ctx, a.pool); err != nil {
			a.Close()
			return nil, fmt.Errorf("site schema: %w", err)
		}
		seed, err := sites.LoadSeed(cfg.SiteSeedFile)
		if err != nil {
			a.Close()
			return nil, err
		}
		if err := sites.SeedSites(ctx, a.pool, seed); err != nil {
			log.Warnw("seed sites", "err", err)
		}
		prov = sites.NewPostgresProvider(a.pool, log)
	} else {
		mem, err := sites.NewMemoryProviderFromEnv(log, cfg.SiteSeedFile)
		if err != nil {
			a.Close()
			return nil, err
		}
		prov = mem
	}
	a.Provider = sites.NewCachedProvider(prov, a.redis, cfg.SiteCacheTTL, log)
	a.Sites = sites.NewRegistry(a.Provider, cfg.SiteID, cfg.SitesEnabled)
	a.Router = urls.NewRouter(chi.NewRouter())
	loader, err := pages.Loader(cfg.TemplatesDir)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.Tags = tags.NewLibrary(a.Router, a.Settings, a.Sites, loader)
	return a, nil
}

// Handler installs middlewares and routes on the app router.
func (a *App) Handler() (http.Handler, error) {
	r := a.Router
	r.Use(middleware.RequestID())
	r.Use(middleware.Recover(a.Log))
	r.Use(middleware.DebugWriteHeader(a.Log))
	r.Use(middleware.Tracing("absolute", a.Log))
	r.Use(middleware.WithSite(a.Sites, a.Log))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) { _, _ = w.Write([]byte("ok")) })
	r.Get("/metrics", promhttp.Handler().ServeHTTP)

	err := pages.RegisterRoutes(r, pages.Deps{
		Log:        a.Log,
		Tags:       a.Tags,
		Sites:      a.Sites,
		Settings:   a.Settings,
		TrustProxy: a.Config.SecureProxyHeader,
	})
	if err != nil {
		return nil, err
	}
	return r, nil
}

// Close releases the database pool and the cache client.
func (a *App) Close() {
	if a.pool != nil {
		a.pool.Close()
	}
	if a.redis != nil {
		_ = a.redis.Close()
	}
}
