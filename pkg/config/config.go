// pkg/config/config.go
package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Env      string
	HTTPAddr string

	// Explicit protocol for site URLs; empty means derive it from the request.
	URLProtocol string

	// Multi-site registry
	SitesEnabled bool
	SiteID       string // fixed current site; empty -> resolve by request host. Defaults to "1" without a seed.
	SiteSeedJSON string
	SiteSeedFile string
	SiteCacheTTL time.Duration

	// Trust X-Forwarded-Proto from the fronting proxy when deciding https.
	SecureProxyHeader bool

	TemplatesDir string

	// Redis & Postgres
	RedisURL    string
	DatabaseURL string
}

func Load() Config {
	_ = godotenv.Load()
	// The default site "1" only exists when no seed is supplied.
	defaultSiteID := "1"
	if env("SITE_SEED_JSON", "") != "" || env("SITE_SEED_FILE", "") != "" {
		defaultSiteID = ""
	}
	cfg := Config{
		Env:               env("ABSOLUTE_ENV", "dev"),
		HTTPAddr:          env("ABSOLUTE_HTTP_ADDR", ":8080"),
		URLProtocol:       env("ABSOLUTE_URL_PROTOCOL", ""),
		SitesEnabled:      envBool("SITES_ENABLED", true),
		SiteID:            envOpt("SITE_ID", defaultSiteID),
		SiteSeedJSON:      env("SITE_SEED_JSON", ""),
		SiteSeedFile:      env("SITE_SEED_FILE", ""),
		SiteCacheTTL:      envDur("SITE_CACHE_TTL_SEC", 300) * time.Second,
		SecureProxyHeader: envBool("SECURE_PROXY_SSL_HEADER", false),
		TemplatesDir:      env("TEMPLATES_DIR", ""),
		RedisURL:          env("REDIS_URL", ""),
		DatabaseURL:       env("DATABASE_URL", ""),
	}
	if cfg.SitesEnabled && cfg.DatabaseURL == "" {
		log.Println("[WARN] DATABASE_URL not set — using in-memory site provider")
	}
	return cfg
}

func env(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

// envOpt distinguishes unset from explicitly empty.
func envOpt(k, def string) string {
	if v, ok := os.LookupEnv(k); ok {
		return v
	}
	return def
}
func envBool(k string, def bool) bool {
	if v := os.Getenv(k); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return def
		}
		return b
	}
	return def
}
func envDur(k string, def int) time.Duration {
	if v := os.Getenv(k); v != "" {
		i, err := strconv.Atoi(v)
		if err != nil {
			return time.Duration(def)
		}
		return time.Duration(i)
	}
	return time.Duration(def)
}
