package core

import (
	"errors"
	"testing"
)

// ----------------------------------------------------------------------------
// parseFilename Tests
// ----------------------------------------------------------------------------

func TestParseFilename(t *testing.T) {
	tests := []struct {
		name       string
		input      string
		wantYear   int
		wantSeason string
		wantKind   string
		wantErr    bool
	}{
		{
			name:       "study file",
			input:      "2024_fall_study.csv",
			wantYear:   2024,
			wantSeason: "fall",
			wantKind:   "study",
		},
		{
			name:       "text file",
			input:      "2023_winter_text.csv",
			wantYear:   2023,
			wantSeason: "winter",
			wantKind:   "text",
		},
		{
			name:       "uppercase accepted",
			input:      "2024_FALL_STUDY.CSV",
			wantYear:   2024,
			wantSeason: "fall",
			wantKind:   "study",
		},
		{
			name:       "leading path ignored",
			input:      "data/exports/2025_spring_study.csv",
			wantYear:   2025,
			wantSeason: "spring",
			wantKind:   "study",
		},

		// Rejected names
		{name: "missing kind", input: "2024_fall.csv", wantErr: true},
		{name: "bad season", input: "2024_autumn_study.csv", wantErr: true},
		{name: "two digit year", input: "24_fall_study.csv", wantErr: true},
		{name: "wrong extension", input: "2024_fall_study.xlsx", wantErr: true},
		{name: "freeform name", input: "timesheet.csv", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseFilename(tt.input)
			if tt.wantErr {
				if !errors.Is(err, ErrUnparsableFilename) {
					t.Errorf("err = %v, want ErrUnparsableFilename", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("parseFilename(%q): %v", tt.input, err)
			}
			if got.Year != tt.wantYear || got.Season != tt.wantSeason || got.Kind != tt.wantKind {
				t.Errorf("parseFilename(%q) = %+v, want {%d %s %s}",
					tt.input, got, tt.wantYear, tt.wantSeason, tt.wantKind)
			}
		})
	}
}

// ----------------------------------------------------------------------------
// sessionLabel / shouldActivate Tests
// ----------------------------------------------------------------------------

func TestSessionLabel(t *testing.T) {
	if got := sessionLabel(2024, "fall"); got != "Fall 2024" {
		t.Errorf("sessionLabel = %q, want %q", got, "Fall 2024")
	}
	if got := sessionLabel(2025, "summer"); got != "Summer 2025" {
		t.Errorf("sessionLabel = %q, want %q", got, "Summer 2025")
	}
}

func TestShouldActivate(t *testing.T) {
	tests := []struct {
		name  string
		start string
		end   string
		today string
		want  bool
	}{
		{name: "today inside range", start: "2026-01-10", end: "2026-01-20", today: "2026-01-15", want: true},
		{name: "today at start", start: "2026-01-10", end: "2026-01-20", today: "2026-01-10", want: true},
		{name: "today at end", start: "2026-01-10", end: "2026-01-20", today: "2026-01-20", want: true},
		{name: "today before range", start: "2026-01-10", end: "2026-01-20", today: "2026-01-09", want: false},
		{name: "today after range", start: "2026-01-10", end: "2026-01-20", today: "2026-02-01", want: false},
		{name: "empty range", start: "", end: "", today: "2026-01-15", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := shouldActivate(tt.start, tt.end, tt.today); got != tt.want {
				t.Errorf("shouldActivate(%q, %q, %q) = %v, want %v",
					tt.start, tt.end, tt.today, got, tt.want)
			}
		})
	}
}
