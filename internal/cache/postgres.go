package cache

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib"

	"tripnav/internal/model"
)

// Postgres caches distance pairs in a shared table so a fleet of instances
// reuses each other's provider calls.
type Postgres struct {
	db *sql.DB
}

func NewPostgres(dsn string) (*Postgres, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	p := &Postgres{db: db}
	if err := p.migrate(context.Background()); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *Postgres) migrate(ctx context.Context) error {
	_, err := p.db.ExecContext(ctx, `
	CREATE TABLE IF NOT EXISTS distance_cache (
		origin       TEXT NOT NULL,
		destination  TEXT NOT NULL,
		distance_km  DOUBLE PRECISION NOT NULL,
		duration_min INTEGER NOT NULL,
		PRIMARY KEY (origin, destination)
	);`)
	if err != nil {
		return fmt.Errorf("migrate distance_cache: %w", err)
	}
	return nil
}

// Ping probes the backing database for readiness checks.
func (p *Postgres) Ping(ctx context.Context) error { return p.db.PingContext(ctx) }

func (p *Postgres) GetMany(ctx context.Context, keys []string) (map[string]model.DistanceInfo, error) {
	out := make(map[string]model.DistanceInfo, len(keys))
	if len(keys) == 0 {
		return out, nil
	}
	origins := make([]string, 0, len(keys))
	dests := make([]string, 0, len(keys))
	for _, k := range keys {
		o, d, ok := splitKey(k)
		if !ok {
			continue
		}
		origins = append(origins, o)
		dests = append(dests, d)
	}
	rows, err := p.db.QueryContext(ctx, `
	SELECT origin, destination, distance_km, duration_min
	FROM distance_cache
	WHERE (origin, destination) IN (
		SELECT UNNEST($1::text[]), UNNEST($2::text[])
	);`, origins, dests)
	if err != nil {
		return nil, fmt.Errorf("query distance_cache: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var o, d string
		var km float64
		var mins int
		if err := rows.Scan(&o, &d, &km, &mins); err != nil {
			return nil, fmt.Errorf("scan distance_cache: %w", err)
		}
		out[model.MatrixKey(o, d)] = model.DistanceInfo{DistanceKm: km, DurationMinutes: mins}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate distance_cache: %w", err)
	}
	return out, nil
}

func (p *Postgres) PutMany(ctx context.Context, entries map[string]model.DistanceInfo) error {
	if len(entries) == 0 {
		return nil
	}
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("distance cache begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()
	stmt, err := tx.PrepareContext(ctx, `
	INSERT INTO distance_cache (origin, destination, distance_km, duration_min)
	VALUES ($1, $2, $3, $4)
	ON CONFLICT (origin, destination) DO UPDATE
	SET distance_km = EXCLUDED.distance_km,
		duration_min = EXCLUDED.duration_min;`)
	if err != nil {
		return fmt.Errorf("distance cache prepare: %w", err)
	}
	defer stmt.Close()
	for k, info := range entries {
		o, d, ok := splitKey(k)
		if !ok {
			return fmt.Errorf("distance cache: malformed key %q", k)
		}
		if _, err := stmt.ExecContext(ctx, o, d, info.DistanceKm, info.DurationMinutes); err != nil {
			return fmt.Errorf("distance cache insert %q: %w", k, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("distance cache commit: %w", err)
	}
	return nil
}

func splitKey(key string) (origin, destination string, ok bool) {
	i := strings.IndexByte(key, '|')
	if i <= 0 || i == len(key)-1 {
		return "", "", false
	}
	return key[:i], key[i+1:], true
}
