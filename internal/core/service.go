package core

import (
	"context"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Service owns the import pipeline: preview, confirm, batch import, and
// the session queries. Safe for concurrent use.
type Service struct {
	pool     *pgxpool.Pool
	log      *slog.Logger
	previews *previewCache
	now      func() time.Time // injectable clock for activation tests
}

// Options tune the preview cache. Zero values fall back to the
// package defaults.
type Options struct {
	PreviewTTL      time.Duration
	PreviewCapacity int
}

// NewService creates an import service on top of a pgx pool.
func NewService(pool *pgxpool.Pool, log *slog.Logger, opts Options) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{
		pool:     pool,
		log:      log,
		previews: newPreviewCache(opts.PreviewTTL, opts.PreviewCapacity),
		now:      time.Now,
	}
}

// sessionExists reports whether a session for (year, season) is already
// on record.
func (s *Service) sessionExists(ctx context.Context, year int, season string) (bool, error) {
	return sessionExists(ctx, s.pool, year, season)
}

func sessionExists(ctx context.Context, db DBTX, year int, season string) (bool, error) {
	var exists bool
	err := db.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM sessions WHERE year = $1 AND season = $2)`,
		year, season,
	).Scan(&exists)
	return exists, err
}

// familyNames returns every family name on record, for the classifier.
func (s *Service) familyNames(ctx context.Context) ([]string, error) {
	rows, err := s.pool.Query(ctx, `SELECT name FROM category_families ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var n string
		if err := rows.Scan(&n); err != nil {
			return nil, err
		}
		names = append(names, n)
	}
	return names, rows.Err()
}
