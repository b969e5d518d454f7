package core

// normalize.go folds raw category column headers into stable merge keys.
//
// The same activity shows up under different spellings across terms:
// "COGS 118C", "cogs_118c", "Research (min)". All of them must resolve
// to one category so a re-exported file lands on the same identity.

import (
	"regexp"
	"strings"
)

// structuralColumns are reserved column names carrying row structure
// rather than category minutes.
var structuralColumns = map[string]bool{
	"week":  true,
	"date":  true,
	"day":   true,
	"type":  true,
	"total": true,
}

var (
	// parentheticalRe matches parenthetical annotations like "(min)".
	parentheticalRe = regexp.MustCompile(`\([^)]*\)`)

	// unitWordRe matches a trailing unit word on a header.
	unitWordRe = regexp.MustCompile(`(?i)[\s_]+(min|mins|minutes|hrs|hours)$`)

	// nonAlnumRe matches runs of non-alphanumeric characters.
	nonAlnumRe = regexp.MustCompile(`[^a-z0-9]+`)

	// courseKeyRe matches a merge key shaped like a course code:
	// two to five letters, optional separator, two or three digits,
	// optional section letter ("cogs_118c", "math20b").
	courseKeyRe = regexp.MustCompile(`^([a-z]{2,5})_?(\d{2,3}[a-z]?)$`)
)

// MergePlan groups the raw columns that fold into one category.
type MergePlan struct {
	MergeKey      string
	DisplayName   string
	SourceColumns []string
}

// NormalizeHeader converts a raw category header into a stable
// (mergeKey, displayName) pair.
//
// The merge key is the header with parenthetical annotations and
// trailing unit words stripped, lowercased, with non-alphanumeric runs
// collapsed to a single underscore. Headers that differ only in casing,
// spacing, or punctuation produce the same key. Course-code keys get a
// canonical "DEPT 000X" display name so "COGS 118C" and "cogs_118c"
// render identically.
func NormalizeHeader(raw string) (mergeKey, displayName string) {
	clean := parentheticalRe.ReplaceAllString(raw, " ")
	clean = unitWordRe.ReplaceAllString(clean, "")
	clean = strings.Join(strings.Fields(clean), " ")

	mergeKey = strings.ToLower(clean)
	mergeKey = nonAlnumRe.ReplaceAllString(mergeKey, "_")
	mergeKey = strings.Trim(mergeKey, "_")

	if m := courseKeyRe.FindStringSubmatch(mergeKey); m != nil {
		displayName = strings.ToUpper(m[1]) + " " + strings.ToUpper(m[2])
		return mergeKey, displayName
	}

	return mergeKey, clean
}

// ComputeMergePlan groups raw column headers by merge key, preserving
// first-seen order. Structural columns (date, day, week, type, total)
// and headers that normalize to nothing are excluded.
func ComputeMergePlan(headers []string) []MergePlan {
	var plans []MergePlan
	index := make(map[string]int)

	for _, raw := range headers {
		if structuralColumns[strings.ToLower(strings.TrimSpace(raw))] {
			continue
		}

		key, display := NormalizeHeader(raw)
		if key == "" {
			continue
		}

		if i, ok := index[key]; ok {
			plans[i].SourceColumns = append(plans[i].SourceColumns, raw)
			continue
		}

		index[key] = len(plans)
		plans = append(plans, MergePlan{
			MergeKey:      key,
			DisplayName:   display,
			SourceColumns: []string{raw},
		})
	}

	return plans
}

// parseMinutes parses a cell as a non-negative integer minute count.
// Empty cells are 0 with ok=true; non-numeric or negative cells are 0
// with ok=false so the caller can record an invalid-duration warning.
func parseMinutes(cell string) (minutes int, ok bool) {
	cell = strings.TrimSpace(cell)
	if cell == "" {
		return 0, true
	}

	neg := false
	i := 0
	if cell[0] == '-' {
		neg = true
		i = 1
	} else if cell[0] == '+' {
		i = 1
	}
	if i >= len(cell) {
		return 0, false
	}

	n := 0
	for ; i < len(cell); i++ {
		c := cell[i]
		if c == '.' {
			// Accept a decimal tail only if it is all digits; the
			// fractional minutes are dropped.
			for _, d := range cell[i+1:] {
				if d < '0' || d > '9' {
					return 0, false
				}
			}
			break
		}
		if c < '0' || c > '9' {
			return 0, false
		}
		n = n*10 + int(c-'0')
	}

	if neg {
		return 0, false
	}
	return n, true
}
