package core

import (
	"errors"
	"reflect"
	"strings"
	"testing"
)

// ----------------------------------------------------------------------------
// parseImport Tests
// ----------------------------------------------------------------------------

func studyUpload(csv string) FileUpload {
	return FileUpload{Name: "2024_fall_study.csv", Data: []byte(csv)}
}

func TestParseImportBasic(t *testing.T) {
	study := studyUpload(
		"Date,Day,Week,Research,COGS 118C\n" +
			"1/5/24,Fri,1,30,45\n" +
			"1/6/24,Sat,1,60,0\n")

	p, err := parseImport(study, nil)
	if err != nil {
		t.Fatalf("parseImport: %v", err)
	}

	if p.Year != 2024 || p.Season != "fall" || p.Label != "Fall 2024" {
		t.Errorf("identity = %d %s %q, want 2024 fall \"Fall 2024\"", p.Year, p.Season, p.Label)
	}
	if len(p.Days) != 2 {
		t.Fatalf("days = %d, want 2", len(p.Days))
	}
	if p.StartDate != "2024-01-05" || p.EndDate != "2024-01-06" {
		t.Errorf("range = %s..%s, want 2024-01-05..2024-01-06", p.StartDate, p.EndDate)
	}

	day := p.Days[0]
	if day.DayOfWeek != "Fri" || day.WeekNumber != 1 {
		t.Errorf("day[0] = %s week %d, want Fri week 1", day.DayOfWeek, day.WeekNumber)
	}
	if day.Minutes["research"] != 30 || day.Minutes["cogs_118c"] != 45 {
		t.Errorf("day[0] minutes = %v", day.Minutes)
	}
	if day.Total != 75 {
		t.Errorf("day[0] total = %d, want 75", day.Total)
	}
}

func TestParseImportMergesDuplicateColumns(t *testing.T) {
	// Two raw headers normalize to the same merge key; their values sum.
	study := studyUpload(
		"Date,COGS 118C,cogs_118c\n" +
			"1/5/24,30,45\n")

	p, err := parseImport(study, nil)
	if err != nil {
		t.Fatalf("parseImport: %v", err)
	}

	if len(p.Categories) != 1 {
		t.Fatalf("categories = %d, want 1 after merge", len(p.Categories))
	}
	c := p.Categories[0]
	if c.MergeKey != "cogs_118c" {
		t.Errorf("merge key = %q, want cogs_118c", c.MergeKey)
	}
	if want := []string{"COGS 118C", "cogs_118c"}; !reflect.DeepEqual(c.SourceColumns, want) {
		t.Errorf("source columns = %v, want %v", c.SourceColumns, want)
	}
	if got := p.Days[0].Minutes["cogs_118c"]; got != 75 {
		t.Errorf("merged minutes = %d, want 30+45", got)
	}
}

func TestParseImportAggregatesDuplicateDates(t *testing.T) {
	study := studyUpload(
		"Date,Day,Research\n" +
			"1/5/24,Fri,30\n" +
			"1/5/24,,45\n")

	p, err := parseImport(study, nil)
	if err != nil {
		t.Fatalf("parseImport: %v", err)
	}

	if len(p.Days) != 1 {
		t.Fatalf("days = %d, want 1 after aggregation", len(p.Days))
	}
	if got := p.Days[0].Minutes["research"]; got != 75 {
		t.Errorf("aggregated minutes = %d, want 75", got)
	}
	if p.Days[0].DayOfWeek != "Fri" {
		t.Errorf("day = %q, want first non-empty value Fri", p.Days[0].DayOfWeek)
	}
	if !hasWarning(p.Warnings, "duplicate date") {
		t.Errorf("warnings = %v, want duplicate-date aggregation warning", p.Warnings)
	}
}

func TestParseImportInvalidDuration(t *testing.T) {
	study := studyUpload(
		"Date,Research,Gym\n" +
			"1/5/24,abc,45\n" +
			"1/6/24,-10,15\n")

	p, err := parseImport(study, nil)
	if err != nil {
		t.Fatalf("parseImport: %v", err)
	}

	// Rows still import; bad cells count as zero.
	if len(p.Days) != 2 {
		t.Fatalf("days = %d, want 2", len(p.Days))
	}
	if got := p.Days[0].Minutes["research"]; got != 0 {
		t.Errorf("invalid cell minutes = %d, want 0", got)
	}
	if got := p.Days[0].Minutes["gym"]; got != 45 {
		t.Errorf("valid cell minutes = %d, want 45", got)
	}

	invalid := 0
	for _, w := range p.Warnings {
		if strings.Contains(w, "invalid duration") {
			invalid++
		}
	}
	if invalid != 2 {
		t.Errorf("invalid duration warnings = %d, want 2: %v", invalid, p.Warnings)
	}
}

func TestParseImportWeekFallback(t *testing.T) {
	// No week column: weeks are 1-based 7-day offsets from the start.
	study := studyUpload(
		"Date,Research\n" +
			"2024-01-01,30\n" +
			"2024-01-06,30\n" +
			"2024-01-08,30\n")

	p, err := parseImport(study, nil)
	if err != nil {
		t.Fatalf("parseImport: %v", err)
	}

	weeks := []int{p.Days[0].WeekNumber, p.Days[1].WeekNumber, p.Days[2].WeekNumber}
	if want := []int{1, 1, 2}; !reflect.DeepEqual(weeks, want) {
		t.Errorf("weeks = %v, want %v", weeks, want)
	}
	if p.Days[0].DayOfWeek != "Mon" {
		t.Errorf("derived day = %q, want Mon", p.Days[0].DayOfWeek)
	}
}

func TestParseImportSkipsUnparseableDates(t *testing.T) {
	study := studyUpload(
		"Date,Research\n" +
			"nonsense,30\n" +
			"1/5/24,60\n")

	p, err := parseImport(study, nil)
	if err != nil {
		t.Fatalf("parseImport: %v", err)
	}
	if len(p.Days) != 1 {
		t.Errorf("days = %d, want 1", len(p.Days))
	}
	if !hasWarning(p.Warnings, "unparseable date") {
		t.Errorf("warnings = %v, want unparseable date warning", p.Warnings)
	}
}

func TestParseImportErrors(t *testing.T) {
	tests := []struct {
		name    string
		file    FileUpload
		wantErr error
	}{
		{
			name:    "bad filename",
			file:    FileUpload{Name: "timesheet.csv", Data: []byte("Date,X\n1/5/24,1\n")},
			wantErr: ErrUnparsableFilename,
		},
		{
			name:    "empty file",
			file:    FileUpload{Name: "2024_fall_study.csv", Data: nil},
			wantErr: ErrMalformedCSV,
		},
		{
			name:    "header only",
			file:    FileUpload{Name: "2024_fall_study.csv", Data: []byte("Date,Research\n")},
			wantErr: ErrMalformedCSV,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseImport(tt.file, nil)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("err = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestParseImportDeterministic(t *testing.T) {
	study := studyUpload(
		"Date,Research,COGS 118C,cogs 118c,Gym\n" +
			"1/5/24,30,45,bad,15\n" +
			"1/6/24,60,xyz,30,0\n" +
			"1/6/24,10,5,5,5\n")

	first, err := parseImport(study, nil)
	if err != nil {
		t.Fatalf("parseImport: %v", err)
	}
	for i := 0; i < 10; i++ {
		again, err := parseImport(study, nil)
		if err != nil {
			t.Fatalf("parseImport run %d: %v", i, err)
		}
		if !reflect.DeepEqual(first, again) {
			t.Fatalf("run %d differs:\nfirst: %+v\nagain: %+v", i, first, again)
		}
	}
}

// ----------------------------------------------------------------------------
// Text File Tests
// ----------------------------------------------------------------------------

func TestParseImportTextFile(t *testing.T) {
	study := studyUpload("Date,Research\n1/5/24,30\n1/6/24,60\n")
	text := &FileUpload{
		Name: "2024_fall_text.csv",
		Data: []byte(
			"Time,Location,Notes,Study Materials\n" +
				"1/5/24,Library,Read ch. 3,Textbook\n" +
				"1/6/24,N/A,N/A,N/A\n"),
	}

	p, err := parseImport(study, text)
	if err != nil {
		t.Fatalf("parseImport: %v", err)
	}

	if len(p.TextEntries) != 2 {
		t.Fatalf("text entries = %d, want 2", len(p.TextEntries))
	}

	first := p.TextEntries[0]
	if first.Date != "2024-01-05" || first.Location != "Library" ||
		first.Notes != "Read ch. 3" || first.StudyMaterials != "Textbook" {
		t.Errorf("entry[0] = %+v", first)
	}

	// N/A blanks notes and materials but location is kept as data.
	second := p.TextEntries[1]
	if second.Notes != "" || second.StudyMaterials != "" {
		t.Errorf("entry[1] N/A fields not blanked: %+v", second)
	}
	if second.Location != "N/A" {
		t.Errorf("entry[1] location = %q, want N/A kept", second.Location)
	}
}

func TestParseImportTextRangeMismatch(t *testing.T) {
	study := studyUpload("Date,Research\n1/5/24,30\n")
	text := &FileUpload{
		Name: "2024_fall_text.csv",
		Data: []byte("Time,Notes\n6/1/24,far away\n"),
	}

	p, err := parseImport(study, text)
	if err != nil {
		t.Fatalf("parseImport: %v", err)
	}
	if !hasWarning(p.Warnings, "do not overlap") {
		t.Errorf("warnings = %v, want range mismatch warning", p.Warnings)
	}
}

// ----------------------------------------------------------------------------
// classifyCategories Tests
// ----------------------------------------------------------------------------

func TestClassifyCategoriesDedupesProposals(t *testing.T) {
	p := &parsedImport{
		Categories: []categoryPlan{
			{MergeKey: "pottery_fa24"},
			{MergeKey: "pottery_sp25"},
			{MergeKey: "research"},
		},
	}

	classifyCategories(p, []string{"research"})

	if !p.Categories[0].IsNewFamily {
		t.Error("first pottery category should propose a new family")
	}
	if p.Categories[1].IsNewFamily {
		t.Error("second pottery category repeats the proposal, want is_new=false")
	}
	if p.Categories[0].FamilyKey != "pottery" || p.Categories[1].FamilyKey != "pottery" {
		t.Errorf("family keys = %q, %q, want pottery for both",
			p.Categories[0].FamilyKey, p.Categories[1].FamilyKey)
	}
	if p.Categories[2].IsNewFamily || p.Categories[2].FamilyKey != "research" {
		t.Errorf("existing family link = %+v", p.Categories[2])
	}
}

// ----------------------------------------------------------------------------
// buildPreviewResult Tests
// ----------------------------------------------------------------------------

func TestBuildPreviewResult(t *testing.T) {
	study := studyUpload("Date,Research,COGS 118C\n1/5/24,30,45\n1/6/24,60,0\n")

	p, err := parseImport(study, nil)
	if err != nil {
		t.Fatalf("parseImport: %v", err)
	}
	classifyCategories(p, nil)

	r := buildPreviewResult("tok-1", p)

	if r.PreviewID != "tok-1" {
		t.Errorf("preview id = %q", r.PreviewID)
	}
	if r.RowCount != 2 {
		t.Errorf("row count = %d, want 2", r.RowCount)
	}
	if want := []string{"2024-01-05", "2024-01-06"}; !reflect.DeepEqual(r.DateRange, want) {
		t.Errorf("date range = %v, want %v", r.DateRange, want)
	}
	if len(r.Categories) != 2 {
		t.Fatalf("categories = %d, want 2", len(r.Categories))
	}
	if r.Categories[1].FamilyType != FamilyTypeCourse {
		t.Errorf("cogs_118c family type = %q, want course", r.Categories[1].FamilyType)
	}
	if r.Warnings == nil {
		t.Error("warnings should be empty slice, not nil")
	}
}

// sum(observation minutes) per day always equals the day total that the
// commit writes to total_minutes.
func TestDayTotalsMatchObservationSums(t *testing.T) {
	study := studyUpload(
		"Date,Research,COGS 118C,cogs_118c,Gym\n" +
			"1/5/24,30,45,15,0\n" +
			"1/6/24,0,0,0,0\n" +
			"1/7/24,10,20,30,40\n")

	p, err := parseImport(study, nil)
	if err != nil {
		t.Fatalf("parseImport: %v", err)
	}

	for _, day := range p.Days {
		sum := 0
		for _, m := range day.Minutes {
			if m > 0 { // only positive minutes become observations
				sum += m
			}
		}
		if sum != day.Total {
			t.Errorf("day %s: observation sum %d != total %d", day.Date, sum, day.Total)
		}
	}
}

func hasWarning(warnings []string, substr string) bool {
	for _, w := range warnings {
		if strings.Contains(w, substr) {
			return true
		}
	}
	return false
}
