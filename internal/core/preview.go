package core

// preview.go composes the reader, normalizer, classifier, and session
// resolver into the dry-run parse. Parsing is pure; the only side
// effect of a preview is the cache insert under the returned token.

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// Preview parses an uploaded study file (plus optional text file) and
// returns the dry-run result. Nothing is written; the full parse is
// cached under the returned preview token until confirmed or expired.
func (s *Service) Preview(ctx context.Context, study FileUpload, text *FileUpload) (*PreviewResult, error) {
	parsed, err := parseImport(study, text)
	if err != nil {
		return nil, err
	}

	exists, err := s.sessionExists(ctx, parsed.Year, parsed.Season)
	if err != nil {
		return nil, fmt.Errorf("check session: %w", err)
	}
	if exists {
		return nil, fmt.Errorf("%w: %s", ErrDuplicateSession, parsed.Label)
	}

	existing, err := s.familyNames(ctx)
	if err != nil {
		return nil, fmt.Errorf("load families: %w", err)
	}
	classifyCategories(parsed, existing)

	token := uuid.NewString()
	s.previews.put(token, parsed)

	s.log.Info("import preview built",
		"preview_id", token,
		"session", parsed.Label,
		"rows", len(parsed.Days),
		"categories", len(parsed.Categories),
		"warnings", len(parsed.Warnings))

	return buildPreviewResult(token, parsed), nil
}

// parseImport is the pure parse: bytes in, parsedImport out. It never
// touches the database or the cache.
func parseImport(study FileUpload, text *FileUpload) (*parsedImport, error) {
	id, err := parseFilename(study.Name)
	if err != nil {
		return nil, err
	}

	t, err := readTable(study.Data)
	if err != nil {
		return nil, err
	}
	if len(t.Rows) == 0 {
		return nil, fmt.Errorf("%w: no data rows", ErrMalformedCSV)
	}

	p := &parsedImport{
		Year:      id.Year,
		Season:    id.Season,
		Label:     sessionLabel(id.Year, id.Season),
		StudyFile: study.Name,
		Warnings:  append([]string(nil), t.Warnings...),
	}

	plans := ComputeMergePlan(t.Header)
	for _, plan := range plans {
		p.Categories = append(p.Categories, categoryPlan{
			MergeKey:      plan.MergeKey,
			DisplayName:   plan.DisplayName,
			SourceColumns: plan.SourceColumns,
		})
	}

	parseStudyRows(p, t, plans)

	if text != nil && len(text.Data) > 0 {
		if err := parseTextFile(p, *text); err != nil {
			return nil, err
		}
	}

	return p, nil
}

// parseStudyRows aggregates the data rows into one dayPlan per date,
// merging duplicate-key columns and duplicate-date rows by summation.
func parseStudyRows(p *parsedImport, t *table, plans []MergePlan) {
	dateIdx := t.columnIndex("date")
	if dateIdx < 0 {
		dateIdx = 0 // convention: the date leads
	}
	dayIdx := t.columnIndex("day")
	weekIdx := t.columnIndex("week")

	// Column position → merge key, for every contributing source column.
	keyByCol := make(map[int]string)
	for _, plan := range plans {
		for _, src := range plan.SourceColumns {
			for ci, h := range t.Header {
				if h == src {
					keyByCol[ci] = plan.MergeKey
				}
			}
		}
	}

	byDate := make(map[string]*dayPlan)
	duplicateRows := 0

	for ri, row := range t.Rows {
		lineNum := ri + 2 // header is line 1 after blank-row skip

		raw := row[dateIdx]
		if raw == "" {
			continue
		}
		iso, ok := parseDate(raw)
		if !ok {
			p.Warnings = append(p.Warnings,
				fmt.Sprintf("skipped unparseable date: %s", raw))
			continue
		}

		day := byDate[iso]
		if day == nil {
			day = &dayPlan{Date: iso, Minutes: make(map[string]int)}
			byDate[iso] = day
		} else {
			duplicateRows++
		}

		if dayIdx >= 0 && day.DayOfWeek == "" {
			day.DayOfWeek = normalizeDay(row[dayIdx])
		}
		if weekIdx >= 0 && day.WeekNumber == 0 {
			if w, err := strconv.Atoi(strings.TrimSpace(row[weekIdx])); err == nil && w > 0 {
				day.WeekNumber = w
			}
		}

		for ci := range row {
			key, isCategory := keyByCol[ci]
			if !isCategory {
				continue
			}
			minutes, ok := parseMinutes(row[ci])
			if !ok {
				p.Warnings = append(p.Warnings,
					fmt.Sprintf("row %d: invalid duration %q in %q treated as 0", lineNum, row[ci], t.Header[ci]))
				continue
			}
			day.Minutes[key] += minutes
		}
	}

	if duplicateRows > 0 {
		p.Warnings = append(p.Warnings,
			fmt.Sprintf("aggregated %d duplicate date rows", duplicateRows))
	}

	dates := make([]string, 0, len(byDate))
	for d := range byDate {
		dates = append(dates, d)
	}
	sort.Strings(dates)

	if len(dates) > 0 {
		p.StartDate = dates[0]
		p.EndDate = dates[len(dates)-1]
	}

	for _, d := range dates {
		day := byDate[d]
		if day.DayOfWeek == "" {
			day.DayOfWeek = dayOfWeek(d)
		}
		if day.WeekNumber == 0 {
			day.WeekNumber = weekNumber(d, p.StartDate)
		}
		for _, m := range day.Minutes {
			day.Total += m
		}
		p.Days = append(p.Days, *day)
	}
}

// parseTextFile parses the optional free-text companion file. Its
// date column is named "time" in older exports and "date" in newer
// ones. A text range disjoint from the study range is a warning, not
// an error: partial pairs still import.
func parseTextFile(p *parsedImport, text FileUpload) error {
	t, err := readTable(text.Data)
	if err != nil {
		return fmt.Errorf("text file: %w", err)
	}
	p.TextFile = text.Name
	p.Warnings = append(p.Warnings, t.Warnings...)

	dateIdx := t.columnIndex("time")
	if dateIdx < 0 {
		dateIdx = t.columnIndex("date")
	}
	if dateIdx < 0 {
		p.Warnings = append(p.Warnings, "no time column found in text file")
		return nil
	}

	locIdx := t.columnIndex("location")
	notesIdx := t.columnIndex("notes")
	matIdx := -1
	for i, h := range t.Header {
		lower := strings.ToLower(h)
		if strings.Contains(lower, "material") || strings.Contains(lower, "study") {
			matIdx = i
			break
		}
	}

	minDate, maxDate := "", ""
	for _, row := range t.Rows {
		iso, ok := parseDate(row[dateIdx])
		if !ok {
			continue
		}
		if minDate == "" || iso < minDate {
			minDate = iso
		}
		if iso > maxDate {
			maxDate = iso
		}

		entry := textEntryPlan{Date: iso}
		if locIdx >= 0 {
			entry.Location = row[locIdx]
		}
		if notesIdx >= 0 {
			entry.Notes = dropNA(row[notesIdx])
		}
		if matIdx >= 0 {
			entry.StudyMaterials = dropNA(row[matIdx])
		}
		p.TextEntries = append(p.TextEntries, entry)
	}

	if minDate != "" && p.StartDate != "" &&
		(maxDate < p.StartDate || minDate > p.EndDate) {
		p.Warnings = append(p.Warnings,
			fmt.Sprintf("text file dates %s..%s do not overlap study dates %s..%s",
				minDate, maxDate, p.StartDate, p.EndDate))
	}

	return nil
}

// dropNA blanks the N/A placeholder some exports use for empty text
// fields. Location keeps its N/A: there it records "no fixed place".
func dropNA(s string) string {
	if strings.EqualFold(strings.TrimSpace(s), "n/a") {
		return ""
	}
	return s
}

// classifyCategories runs the family classifier over every category.
// New-family proposals are deduplicated within the parse so the same
// candidate key is flagged is_new only on its first appearance.
func classifyCategories(p *parsedImport, existing []string) {
	proposed := make(map[string]bool)
	for i := range p.Categories {
		c := &p.Categories[i]
		fp := ClassifyFamily(c.MergeKey, existing)
		c.FamilyKey = fp.Key
		c.FamilyType = fp.Type
		c.IsNewFamily = fp.IsNew && !proposed[fp.Key]
		if fp.IsNew {
			proposed[fp.Key] = true
		}
	}
}

func buildPreviewResult(token string, p *parsedImport) *PreviewResult {
	r := &PreviewResult{
		PreviewID:     token,
		SessionYear:   p.Year,
		SessionSeason: p.Season,
		SessionLabel:  p.Label,
		RowCount:      len(p.Days),
		TextRowCount:  len(p.TextEntries),
		Warnings:      p.Warnings,
	}
	if r.Warnings == nil {
		r.Warnings = []string{}
	}
	if p.StartDate != "" {
		r.DateRange = []string{p.StartDate, p.EndDate}
	} else {
		r.DateRange = []string{}
	}
	for _, c := range p.Categories {
		r.Categories = append(r.Categories, CategoryPreview{
			MergeKey:      c.MergeKey,
			DisplayName:   c.DisplayName,
			AutoFamily:    c.FamilyKey,
			FamilyType:    c.FamilyType,
			IsNewFamily:   c.IsNewFamily,
			SourceColumns: c.SourceColumns,
		})
	}
	return r
}
