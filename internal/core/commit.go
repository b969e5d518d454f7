package core

// commit.go turns a cached parse into persisted rows.
//
// The whole write is one transaction. The duplicate pre-check inside it
// narrows the preview/confirm race but the database constraints are the
// authoritative arbiter: a 23505 at write time maps to DuplicateSession
// or CommitConflict and rolls back everything.

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
)

// uniqueViolation is the PostgreSQL error code for a unique constraint
// violation.
const uniqueViolation = "23505"

// Confirm consumes a preview token and commits the cached parse as one
// atomic write. An unknown, expired, or already-consumed token fails
// with ErrPreviewExpired. On transient database failure the entry is
// restored so the caller may retry without re-uploading.
func (s *Service) Confirm(ctx context.Context, previewID string) (*CommitResult, error) {
	parsed, ok := s.previews.take(previewID)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrPreviewExpired, previewID)
	}

	result, err := s.commit(ctx, parsed)
	if err != nil {
		if !errors.Is(err, ErrDuplicateSession) && !errors.Is(err, ErrCommitConflict) {
			s.previews.restore(previewID, parsed)
		}
		return nil, err
	}

	s.log.Info("import committed",
		"session_id", result.SessionID,
		"session", result.SessionLabel,
		"categories", result.CategoriesCreated,
		"daily_records", result.DailyRecordsCreated,
		"observations", result.ObservationsCreated,
		"text_entries", result.TextEntriesCreated)

	return result, nil
}

func (s *Service) commit(ctx context.Context, p *parsedImport) (*CommitResult, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	// Re-check: a second import may have landed since the preview.
	exists, err := sessionExists(ctx, tx, p.Year, p.Season)
	if err != nil {
		return nil, fmt.Errorf("check session: %w", err)
	}
	if exists {
		return nil, fmt.Errorf("%w: %s", ErrDuplicateSession, p.Label)
	}

	isActive := shouldActivate(p.StartDate, p.EndDate, s.now().Format("2006-01-02"))

	var sessionID int64
	err = tx.QueryRow(ctx,
		`INSERT INTO sessions (year, season, label, start_date, end_date, is_active, source_file)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING id`,
		p.Year, p.Season, p.Label, nullable(p.StartDate), nullable(p.EndDate), isActive, p.StudyFile,
	).Scan(&sessionID)
	if err != nil {
		return nil, mapWriteError(err)
	}

	if isActive {
		_, err = tx.Exec(ctx,
			`UPDATE sessions SET is_active = FALSE WHERE id <> $1 AND is_active`,
			sessionID)
		if err != nil {
			return nil, mapWriteError(err)
		}
	}

	// Get-or-create families, deduplicated per commit through familyIDs
	// so the same new candidate key is created once.
	familyIDs := make(map[string]int64)
	categoryIDs := make(map[string]int64)

	for i, c := range p.Categories {
		familyID, ok := familyIDs[c.FamilyKey]
		if !ok {
			familyID, err = getOrCreateFamily(ctx, tx, c.FamilyKey, c.FamilyType)
			if err != nil {
				return nil, mapWriteError(err)
			}
			familyIDs[c.FamilyKey] = familyID
		}

		var catID int64
		err = tx.QueryRow(ctx,
			`INSERT INTO categories (session_id, name, display_name, family_id, position)
			 VALUES ($1, $2, $3, $4, $5)
			 RETURNING id`,
			sessionID, c.MergeKey, c.DisplayName, familyID, i,
		).Scan(&catID)
		if err != nil {
			return nil, mapWriteError(err)
		}
		categoryIDs[c.MergeKey] = catID
	}

	observations := 0
	for _, day := range p.Days {
		var recordID int64
		err = tx.QueryRow(ctx,
			`INSERT INTO daily_records (session_id, date, day_of_week, week_number, total_minutes)
			 VALUES ($1, $2, $3, $4, $5)
			 RETURNING id`,
			sessionID, day.Date, day.DayOfWeek, day.WeekNumber, day.Total,
		).Scan(&recordID)
		if err != nil {
			return nil, mapWriteError(err)
		}

		for _, key := range sortedKeys(day.Minutes) {
			minutes := day.Minutes[key]
			if minutes <= 0 {
				continue
			}
			catID, ok := categoryIDs[key]
			if !ok {
				continue
			}
			_, err = tx.Exec(ctx,
				`INSERT INTO observations (daily_record_id, category_id, minutes, source)
				 VALUES ($1, $2, $3, 'import')`,
				recordID, catID, minutes)
			if err != nil {
				return nil, mapWriteError(err)
			}
			observations++
		}
	}

	for _, te := range p.TextEntries {
		_, err = tx.Exec(ctx,
			`INSERT INTO text_entries (session_id, date, location, notes, study_materials)
			 VALUES ($1, $2, $3, $4, $5)`,
			sessionID, te.Date, nullable(te.Location), nullable(te.Notes), nullable(te.StudyMaterials))
		if err != nil {
			return nil, mapWriteError(err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, mapWriteError(err)
	}

	return &CommitResult{
		SessionID:           sessionID,
		SessionLabel:        p.Label,
		IsActive:            isActive,
		CategoriesCreated:   len(p.Categories),
		DailyRecordsCreated: len(p.Days),
		ObservationsCreated: observations,
		TextEntriesCreated:  len(p.TextEntries),
	}, nil
}

// getOrCreateFamily returns the id of the family named key, inserting
// it when missing. The insert races with concurrent commits; on a
// unique violation the existing row is read back.
func getOrCreateFamily(ctx context.Context, db DBTX, key, ftype string) (int64, error) {
	var id int64
	err := db.QueryRow(ctx,
		`SELECT id FROM category_families WHERE name = $1`, key).Scan(&id)
	if err == nil {
		return id, nil
	}

	if ftype == "" {
		ftype = FamilyTypeOther
	}
	err = db.QueryRow(ctx,
		`INSERT INTO category_families (name, display_name, family_type)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name
		 RETURNING id`,
		key, familyDisplayName(key), ftype,
	).Scan(&id)
	return id, err
}

// familyDisplayName title-cases a family key: "machine_learning" shows
// as "Machine Learning".
func familyDisplayName(key string) string {
	words := strings.Split(key, "_")
	for i, w := range words {
		if w == "" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

// mapWriteError classifies a database write error. Unique violations on
// the session key are duplicate sessions; any other violation is a
// commit conflict. Everything else passes through.
func mapWriteError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		if strings.Contains(pgErr.ConstraintName, "sessions") {
			return fmt.Errorf("%w: %v", ErrDuplicateSession, err)
		}
		return fmt.Errorf("%w: %v", ErrCommitConflict, err)
	}
	return err
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
