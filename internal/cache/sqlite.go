package cache

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "modernc.org/sqlite"

	"tripnav/internal/model"
)

// Sqlite caches distance pairs in a local file. It is the single-instance
// default when no shared backend is configured.
type Sqlite struct {
	db *sql.DB
}

func NewSqlite(path string) (*Sqlite, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	// modernc/sqlite is not safe for concurrent writers on one connection.
	db.SetMaxOpenConns(1)
	s := &Sqlite{db: db}
	if err := s.migrate(context.Background()); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Sqlite) migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
	CREATE TABLE IF NOT EXISTS distance_cache (
		origin       TEXT NOT NULL,
		destination  TEXT NOT NULL,
		distance_km  REAL NOT NULL,
		duration_min INTEGER NOT NULL,
		PRIMARY KEY (origin, destination)
	);`)
	if err != nil {
		return fmt.Errorf("migrate distance_cache: %w", err)
	}
	return nil
}

// Ping probes the backing database for readiness checks.
func (s *Sqlite) Ping(ctx context.Context) error { return s.db.PingContext(ctx) }

func (s *Sqlite) GetMany(ctx context.Context, keys []string) (map[string]model.DistanceInfo, error) {
	out := make(map[string]model.DistanceInfo, len(keys))
	if len(keys) == 0 {
		return out, nil
	}
	ph := make([]string, 0, len(keys))
	args := make([]any, 0, len(keys))
	for _, k := range keys {
		if _, _, ok := splitKey(k); !ok {
			continue
		}
		ph = append(ph, "?")
		args = append(args, k)
	}
	if len(args) == 0 {
		return out, nil
	}
	q := fmt.Sprintf(`
	SELECT origin, destination, distance_km, duration_min
	FROM distance_cache
	WHERE origin || '|' || destination IN (%s);`, strings.Join(ph, ","))
	rows, err := s.db.QueryContext(ctx, q, args...)
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

func (s *Sqlite) PutMany(ctx context.Context, entries map[string]model.DistanceInfo) error {
	if len(entries) == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("distance cache begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()
	stmt, err := tx.PrepareContext(ctx, `
	INSERT INTO distance_cache (origin, destination, distance_km, duration_min)
	VALUES (?, ?, ?, ?)
	ON CONFLICT (origin, destination) DO UPDATE
	SET distance_km = excluded.distance_km,
		duration_min = excluded.duration_min;`)
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
