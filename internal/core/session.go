package core

// session.go derives term identity from source filenames.

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// filenameRe captures year, season, and kind from the naming convention
// {year}_{season}_{study|text}.csv.
var filenameRe = regexp.MustCompile(`(?i)^(\d{4})_(fall|winter|spring|summer)_(study|text)\.csv$`)

// termIdentity is the session identity carried by a source filename.
type termIdentity struct {
	Year   int
	Season string // lowercase
	Kind   string // "study" or "text"
}

// parseFilename derives the term identity from a source filename.
// Only the base name matters; any leading path is ignored. Returns
// ErrUnparsableFilename when the name does not follow the convention.
func parseFilename(name string) (termIdentity, error) {
	base := name
	if i := strings.LastIndexAny(base, `/\`); i >= 0 {
		base = base[i+1:]
	}

	m := filenameRe.FindStringSubmatch(base)
	if m == nil {
		return termIdentity{}, fmt.Errorf("%w: %q", ErrUnparsableFilename, base)
	}

	year, err := strconv.Atoi(m[1])
	if err != nil {
		return termIdentity{}, fmt.Errorf("%w: %q", ErrUnparsableFilename, base)
	}

	return termIdentity{
		Year:   year,
		Season: strings.ToLower(m[2]),
		Kind:   strings.ToLower(m[3]),
	}, nil
}

// sessionLabel builds the default display label, "Fall 2024".
func sessionLabel(year int, season string) string {
	if season == "" {
		return strconv.Itoa(year)
	}
	return strings.ToUpper(season[:1]) + season[1:] + " " + strconv.Itoa(year)
}

// shouldActivate reports whether a session spanning [start, end] covers
// today. Dates are ISO strings, so string comparison is date order.
func shouldActivate(start, end, today string) bool {
	return start != "" && end != "" && start <= today && today <= end
}
