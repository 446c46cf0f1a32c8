// pkg/db/db.go
package db

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"absolute/pkg/config"
)

const pingTimeout = 5 * time.Second

// Connect opens the site database. It returns nil, nil when DATABASE_URL is unset.
func Connect(ctx context.Context, cfg config.Config, log *zap.SugaredLogger) (*pgxpool.Pool, error) {
	if cfg.DatabaseURL == "" {
		return nil, nil
	}
	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("pg connect: %w", err)
	}
	pctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := pool.Ping(pctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pg ping: %w", err)
	}
	log.Infow("postgres ready", "host", redactDSN(cfg.DatabaseURL))
	return pool, nil
}

// Redis opens the site cache. It returns nil, nil when REDIS_URL is unset.
func Redis(ctx context.Context, cfg config.Config, log *zap.SugaredLogger) (*redis.Client, error) {
	if cfg.RedisURL == "" {
		return nil, nil
	}
	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("redis parse: %w", err)
	}
	cli := redis.NewClient(opts)
	pctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := cli.Ping(pctx).Err(); err != nil {
		_ = cli.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	log.Infow("redis ready", "addr", opts.Addr)
	return cli, nil
}

func MustConnect(cfg config.Config, log *zap.SugaredLogger) *pgxpool.Pool {
	pool, err := Connect(context.Background(), cfg, log)
	if err != nil {
		log.Fatalw("postgres", "err", err)
	}
	return pool
}

func MustRedis(cfg config.Config, log *zap.SugaredLogger) *redis.Client {
	cli, err := Redis(context.Background(), cfg, log)
	if err != nil {
		log.Fatalw("redis", "err", err)
	}
	return cli
}

func redactDSN(dsn string) string {
	if i := strings.LastIndex(dsn, "@"); i > 0 {
		return "***@" + dsn[i+1:]
	}
	return dsn
}
