package core

// errors.go defines the sentinel error kinds of the import pipeline and
// the mapping from technical errors to user-facing messages.
//
// The split follows the recovery model: file- and identity-level
// anomalies are fatal sentinels, while cell- and row-level anomalies are
// recovered locally and reported as preview warnings.

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for the import pipeline. Callers match them with
// errors.Is; the web layer maps them to HTTP status codes.
var (
	// ErrMalformedCSV means no parseable header row was found.
	ErrMalformedCSV = errors.New("malformed csv")

	// ErrUnparsableFilename means the filename does not match the
	// {year}_{season}_study.csv naming convention.
	ErrUnparsableFilename = errors.New("unparsable filename")

	// ErrDuplicateSession means a session with the same (year, season)
	// already exists. Imports never merge into an existing session.
	ErrDuplicateSession = errors.New("duplicate session")

	// ErrPreviewExpired means the preview token is unknown, timed out,
	// or was already consumed by a previous confirm.
	ErrPreviewExpired = errors.New("preview not found or expired")

	// ErrCommitConflict means a uniqueness constraint fired at write
	// time for anything other than the session key. The transaction is
	// rolled back in full.
	ErrCommitConflict = errors.New("commit conflict")
)

// UserMessage provides user-friendly error information with actionable
// guidance and a code for support reference.
type UserMessage struct {
	Message string // What happened (user-friendly)
	Action  string // What to do about it
	Code    string // Error code for support reference
}

// errorPattern defines a pattern to match and its corresponding user message.
type errorPattern struct {
	pattern string
	msg     UserMessage
}

// errorPatterns maps technical error substrings (case-insensitive) to
// user messages. The first matching pattern wins, so specific patterns
// come before general ones.
var errorPatterns = []errorPattern{
	{
		pattern: "malformed csv",
		msg: UserMessage{
			Message: "The file is not a parseable CSV",
			Action:  "Ensure the file has a header row and comma-separated values",
			Code:    "IMP001",
		},
	},
	{
		pattern: "unparsable filename",
		msg: UserMessage{
			Message: "The filename does not identify a term",
			Action:  "Name the file like 2024_fall_study.csv",
			Code:    "IMP002",
		},
	},
	{
		pattern: "duplicate session",
		msg: UserMessage{
			Message: "A session for this term already exists",
			Action:  "Delete the existing session before re-importing",
			Code:    "IMP003",
		},
	},
	{
		pattern: "preview not found",
		msg: UserMessage{
			Message: "The preview has expired or was already confirmed",
			Action:  "Upload the file again to get a fresh preview",
			Code:    "IMP004",
		},
	},
	{
		pattern: "commit conflict",
		msg: UserMessage{
			Message: "Another import changed the data between preview and confirm",
			Action:  "Re-run the preview and confirm again",
			Code:    "IMP005",
		},
	},
	{
		pattern: "unique constraint",
		msg: UserMessage{
			Message: "A duplicate value was rejected by the database",
			Action:  "Re-run the preview and confirm again",
			Code:    "DB001",
		},
	},
	{
		pattern: "foreign key",
		msg: UserMessage{
			Message: "A referenced record does not exist",
			Action:  "Please try again or contact support",
			Code:    "DB002",
		},
	},
	{
		pattern: "connection refused",
		msg: UserMessage{
			Message: "Unable to connect to the database",
			Action:  "Please try again in a few moments",
			Code:    "DB003",
		},
	},
	{
		pattern: "timeout",
		msg: UserMessage{
			Message: "The operation timed out",
			Action:  "Try a smaller file or try again later",
			Code:    "DB004",
		},
	},
	{
		pattern: "file too large",
		msg: UserMessage{
			Message: "The file exceeds the maximum size limit",
			Action:  "Split the file or raise IMPORT_MAX_FILE_SIZE",
			Code:    "FILE001",
		},
	},
	{
		pattern: "empty file",
		msg: UserMessage{
			Message: "The uploaded file is empty",
			Action:  "Upload a CSV file with data rows",
			Code:    "FILE002",
		},
	},
	{
		pattern: "no file provided",
		msg: UserMessage{
			Message: "No file was selected",
			Action:  "Select a study CSV file to upload",
			Code:    "FILE003",
		},
	},
}

// defaultMessage is the fallback when no pattern matches. Support staff
// should check application logs for the original technical error.
var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again or contact support",
	Code:    "ERR000",
}

// MapError converts a technical error to a user-friendly message.
// It searches through known error patterns (case-insensitive) and
// returns the first match, or the ERR000 fallback.
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	errStr := strings.ToLower(err.Error())

	for _, ep := range errorPatterns {
		if strings.Contains(errStr, ep.pattern) {
			return ep.msg
		}
	}

	return defaultMessage
}

// FormatUserError creates a formatted error string for display:
// "Message (Code: XXX). Action".
func FormatUserError(err error) string {
	msg := MapError(err)
	if msg.Message == "" {
		return ""
	}
	return fmt.Sprintf("%s (Code: %s). %s", msg.Message, msg.Code, msg.Action)
}
