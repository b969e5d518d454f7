package core

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DBTX is the interface for database operations.
// Satisfied by both *pgxpool.Pool and pgx.Tx.
type DBTX interface {
	Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error)
	Query(context.Context, string, ...interface{}) (pgx.Rows, error)
	QueryRow(context.Context, string, ...interface{}) pgx.Row
}

// FileUpload is a raw uploaded file: its name carries the term identity,
// its bytes carry the tabular data.
type FileUpload struct {
	Name string
	Data []byte
}

// CategoryPreview describes one normalized category as it would be
// created on confirm.
type CategoryPreview struct {
	MergeKey      string   `json:"merge_key"`
	DisplayName   string   `json:"display_name"`
	AutoFamily    string   `json:"auto_family"`
	FamilyType    string   `json:"family_type"`
	IsNewFamily   bool     `json:"is_new_family"`
	SourceColumns []string `json:"source_columns"`
}

// PreviewResult is the read-only dry-run result returned to the caller.
// The full parse is cached under PreviewID until confirmed or expired.
type PreviewResult struct {
	PreviewID     string            `json:"preview_id"`
	SessionYear   int               `json:"session_year"`
	SessionSeason string            `json:"session_season"`
	SessionLabel  string            `json:"session_label"`
	RowCount      int               `json:"row_count"`
	DateRange     []string          `json:"date_range"`
	Categories    []CategoryPreview `json:"categories"`
	TextRowCount  int               `json:"text_row_count"`
	Warnings      []string          `json:"warnings"`
}

// CommitResult summarizes a successful confirm.
type CommitResult struct {
	SessionID           int64  `json:"session_id"`
	SessionLabel        string `json:"session_label"`
	IsActive            bool   `json:"is_active"`
	CategoriesCreated   int    `json:"categories_created"`
	DailyRecordsCreated int    `json:"daily_records_created"`
	ObservationsCreated int    `json:"observations_created"`
	TextEntriesCreated  int    `json:"text_entries_created"`
}

// BatchFileError records one failed file in a batch import.
type BatchFileError struct {
	File  string `json:"file"`
	Error string `json:"error"`
}

// BatchResult aggregates a directory import. Per-file failures never
// abort the rest of the batch.
type BatchResult struct {
	Imported int              `json:"imported"`
	Errors   []BatchFileError `json:"errors"`
	Sessions []CommitResult   `json:"sessions"`
}

// categoryPlan is the commit-side view of one normalized category.
type categoryPlan struct {
	MergeKey      string
	DisplayName   string
	FamilyKey     string // candidate family key, never empty
	FamilyType    string
	IsNewFamily   bool
	SourceColumns []string
}

// dayPlan is the commit-side view of one source date: merged minutes per
// category key plus the structural columns carried from the source.
type dayPlan struct {
	Date       string // YYYY-MM-DD
	DayOfWeek  string
	WeekNumber int // 0 when absent from source; filled in by finalize
	Minutes    map[string]int
	Total      int
}

// textEntryPlan is one parsed row of the optional text file.
type textEntryPlan struct {
	Date           string
	Location       string
	Notes          string
	StudyMaterials string
}

// parsedImport is the fully parsed intermediate structure cached between
// preview and confirm. It is immutable after finalize.
type parsedImport struct {
	Year        int
	Season      string
	Label       string
	StudyFile   string
	TextFile    string
	Categories  []categoryPlan
	Days        []dayPlan // sorted ascending by date
	TextEntries []textEntryPlan
	StartDate   string
	EndDate     string
	Warnings    []string
}
