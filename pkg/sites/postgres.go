// pkg/sites/postgres.go
package sites

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// pgProvider implements Provider backed by PostgreSQL.
type pgProvider struct {
	dbPool *pgxpool.Pool      // Connection pool to PostgreSQL
	log    *zap.SugaredLogger // Logger for diagnostic output
}

// NewPostgresProvider constructs a PostgreSQL-backed site provider.
func NewPostgresProvider(dbPool *pgxpool.Pool, log *zap.SugaredLogger) Provider {
	return &pgProvider{dbPool: dbPool, log: log}
}

// EnsureSchema creates the sites table if it does not already exist.
// Safe to call repeatedly (idempotent).
func EnsureSchema(ctx context.Context, dbPool *pgxpool.Pool) error {
	_, err := dbPool.Exec(ctx, `
CREATE TABLE IF NOT EXISTS sites (
  id text PRIMARY KEY,
  domain text NOT NULL,
  name text NOT NULL DEFAULT ''
);
CREATE UNIQUE INDEX IF NOT EXISTS sites_domain_idx ON sites(lower(domain));
`)
	return err
}

// SeedSites upserts the given sites, keyed by id.
func SeedSites(ctx context.Context, dbPool *pgxpool.Pool, seed []Site) error {
	if len(seed) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, s := range seed {
		batch.Queue(`INSERT INTO sites(id,domain,name) VALUES ($1,$2,$3)
		  ON CONFLICT (id) DO UPDATE SET domain=EXCLUDED.domain,name=EXCLUDED.name`, s.ID, s.Domain, s.Name)
	}
	return dbPool.SendBatch(ctx, batch).Close()
}

// SiteByID fetches a site by its primary key.
func (p *pgProvider) SiteByID(ctx context.Context, id string) (Site, error) {
	row := p.dbPool.QueryRow(ctx, `SELECT id,domain,name FROM sites WHERE id=$1`, id)
	return p.scan(row)
}

// SiteByHost fetches a site using its domain, case-insensitively.
func (p *pgProvider) SiteByHost(ctx context.Context, host string) (Site, error) {
	row := p.dbPool.QueryRow(ctx, `SELECT id,domain,name FROM sites WHERE lower(domain)=lower($1)`, host)
	return p.scan(row)
}

func (p *pgProvider) ListSites(ctx context.Context) ([]Site, error) {
	rows, err := p.dbPool.Query(ctx, `SELECT id,domain,name FROM sites ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Site
	for rows.Next() {
		var s Site
		if err := rows.Scan(&s.ID, &s.Domain, &s.Name); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (p *pgProvider) scan(row pgx.Row) (Site, error) {
	var s Site
	if err := row.Scan(&s.ID, &s.Domain, &s.Name); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Site{}, ErrSiteNotFound
		}
		p.log.Warnw("site lookup failed", "err", err)
		return Site{}, err
	}
	return s, nil
}
