package core

// sessions.go is the read/delete surface over committed sessions.
// Re-importing a term requires deleting the existing session first;
// the delete cascades to categories, daily records, observations, and
// text entries, while families survive for the next import to link.

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// SessionSummary is one committed session with its row counts.
type SessionSummary struct {
	ID            int64  `json:"id"`
	Year          int    `json:"year"`
	Season        string `json:"season"`
	Label         string `json:"label"`
	StartDate     string `json:"start_date,omitempty"`
	EndDate       string `json:"end_date,omitempty"`
	IsActive      bool   `json:"is_active"`
	SourceFile    string `json:"source_file,omitempty"`
	CategoryCount int    `json:"category_count"`
	RecordCount   int    `json:"record_count"`
}

// ErrSessionNotFound reports a lookup for an unknown session id.
var ErrSessionNotFound = errors.New("session not found")

const sessionSummaryQuery = `
SELECT s.id, s.year, s.season, s.label,
       COALESCE(s.start_date, ''), COALESCE(s.end_date, ''),
       s.is_active, COALESCE(s.source_file, ''),
       (SELECT COUNT(*) FROM categories c WHERE c.session_id = s.id),
       (SELECT COUNT(*) FROM daily_records d WHERE d.session_id = s.id)
FROM sessions s`

// ListSessions returns every session newest term first.
func (s *Service) ListSessions(ctx context.Context) ([]SessionSummary, error) {
	rows, err := s.pool.Query(ctx, sessionSummaryQuery+`
ORDER BY s.year DESC, s.season DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	sessions := []SessionSummary{}
	for rows.Next() {
		var sum SessionSummary
		if err := rows.Scan(
			&sum.ID, &sum.Year, &sum.Season, &sum.Label,
			&sum.StartDate, &sum.EndDate, &sum.IsActive, &sum.SourceFile,
			&sum.CategoryCount, &sum.RecordCount,
		); err != nil {
			return nil, err
		}
		sessions = append(sessions, sum)
	}
	return sessions, rows.Err()
}

// GetSession returns one session by id.
func (s *Service) GetSession(ctx context.Context, id int64) (*SessionSummary, error) {
	var sum SessionSummary
	err := s.pool.QueryRow(ctx, sessionSummaryQuery+`
WHERE s.id = $1`, id).Scan(
		&sum.ID, &sum.Year, &sum.Season, &sum.Label,
		&sum.StartDate, &sum.EndDate, &sum.IsActive, &sum.SourceFile,
		&sum.CategoryCount, &sum.RecordCount,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: %d", ErrSessionNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	return &sum, nil
}

// DeleteSession removes a session and, through the cascade, all of its
// categories, daily records, observations, and text entries.
func (s *Service) DeleteSession(ctx context.Context, id int64) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM sessions WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: %d", ErrSessionNotFound, id)
	}
	s.log.Info("session deleted", "session_id", id)
	return nil
}

// Ping verifies database connectivity, for health checks.
func (s *Service) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}
