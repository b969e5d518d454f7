// Package core provides the business logic for timesheet CSV import.
//
// This package is the heart of the importer, containing all domain logic
// independent of any transport layer. It can be used by web handlers,
// CLI tools, or tests without modification.
//
// # Pipeline
//
// An import runs through a fixed pipeline:
//
//  1. The tabular reader parses raw CSV bytes into a header and ordered
//     rows, tolerating BOMs, invalid UTF-8, and ragged rows.
//  2. The column normalizer folds raw category headers into stable merge
//     keys, summing columns that resolve to the same key.
//  3. The family classifier proposes a cross-term family for each
//     normalized category.
//  4. The session resolver derives the term identity (year, season) from
//     the source filename.
//  5. [Service.Preview] composes the above read-only and caches the parse
//     under an opaque preview token.
//  6. [Service.Confirm] consumes the token and commits the parse as one
//     atomic transaction.
//
// # Error Handling
//
// File- and identity-level anomalies (no header row, unparsable filename,
// duplicate term) are fatal and surface as sentinel errors such as
// [ErrMalformedCSV] and [ErrDuplicateSession]. Cell- and row-level
// anomalies are recovered locally and reported as ordered warnings on the
// preview so it stays maximally informative. Technical errors are mapped
// to user-facing messages with support codes via [MapError].
package core
