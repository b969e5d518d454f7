package core

// dates.go normalizes the date and day-of-week values found in exported
// timesheets. Exports span years of changing habits: US slashes with
// 2- and 4-digit years, ISO dashes, spelled-out days, three-letter
// abbreviations.

import (
	"strings"
	"time"
)

// TwoDigitYearPivot defines how 2-digit years are interpreted. Years
// that would land more than this many years in the future are assumed
// to be in the previous century.
var TwoDigitYearPivot = 20

// Date layouts split by year format for proper 2-digit year handling.
var (
	fourDigitYearLayouts = []string{
		"2006-01-02", "2006/01/02", "2006.01.02",
		"1/2/2006", "01/02/2006", "1-2-2006", "01-02-2006",
		"Jan 2, 2006", "2 Jan 2006",
	}
	twoDigitYearLayouts = []string{
		"1/2/06", "01/02/06", "1-2-06", "1.2.06",
	}
)

// dayNames normalizes day-of-week spellings to a three-letter title
// case form.
var dayNames = map[string]string{
	"mon": "Mon", "monday": "Mon",
	"tue": "Tue", "tues": "Tue", "tuesday": "Tue",
	"wed": "Wed", "wednesday": "Wed",
	"thu": "Thu", "thur": "Thu", "thurs": "Thu", "thursday": "Thu",
	"fri": "Fri", "friday": "Fri",
	"sat": "Sat", "saturday": "Sat",
	"sun": "Sun", "sunday": "Sun",
}

// parseDate normalizes a source date to ISO YYYY-MM-DD.
// 4-digit-year layouts are tried first because they are unambiguous;
// 2-digit years are pivoted so "1/5/99" is 1999, not 2099.
func parseDate(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", false
	}

	for _, layout := range fourDigitYearLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format("2006-01-02"), true
		}
	}

	pivotYear := time.Now().Year() + TwoDigitYearPivot
	for _, layout := range twoDigitYearLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			if t.Year() > pivotYear {
				t = t.AddDate(-100, 0, 0)
			}
			return t.Format("2006-01-02"), true
		}
	}

	return "", false
}

// normalizeDay maps a day-of-week cell to its three-letter form.
// Unknown spellings fall back to the title-cased first three letters.
func normalizeDay(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	if d, ok := dayNames[strings.ToLower(s)]; ok {
		return d
	}
	if len(s) > 3 {
		s = s[:3]
	}
	return strings.ToUpper(s[:1]) + strings.ToLower(s[1:])
}

// dayOfWeek derives the three-letter day name from an ISO date.
func dayOfWeek(isoDate string) string {
	t, err := time.Parse("2006-01-02", isoDate)
	if err != nil {
		return ""
	}
	return t.Format("Mon")
}

// weekNumber computes the 1-based 7-day offset of a date from the
// session start. Used when the source carries no week column.
func weekNumber(isoDate, startDate string) int {
	t, err := time.Parse("2006-01-02", isoDate)
	if err != nil {
		return 1
	}
	start, err := time.Parse("2006-01-02", startDate)
	if err != nil {
		return 1
	}
	days := int(t.Sub(start).Hours() / 24)
	if days < 0 {
		return 1
	}
	return days/7 + 1
}
