package constants

import (
	"strings"
	"time"
)

type Weekday string

const (
	Monday    Weekday = "Monday"
	Tuesday   Weekday = "Tuesday"
	Wednesday Weekday = "Wednesday"
	Thursday  Weekday = "Thursday"
	Friday    Weekday = "Friday"
	Saturday  Weekday = "Saturday"
	Sunday    Weekday = "Sunday"
)

var allWeekdays = []Weekday{
	Monday,
	Tuesday,
	Wednesday,
	Thursday,
	Friday,
	Saturday,
	Sunday,
}

// DefaultWeekdays is assumed when a schedule block names no days.
var DefaultWeekdays = []Weekday{Monday, Tuesday, Wednesday, Thursday, Friday}

func AllWeekdays() []Weekday {
	return append([]Weekday(nil), allWeekdays...)
}

func AsStringSlice(days []Weekday) []string {
	result := make([]string, len(days))
	for i, d := range days {
		result[i] = string(d)
	}
	return result
}

// CanonicalWeekday maps full names, common abbreviations and plurals to the
// canonical weekday name.
func CanonicalWeekday(input string) (Weekday, bool) {
	normalized := strings.ToLower(strings.TrimSpace(input))
	normalized = strings.TrimSuffix(normalized, ".")
	if normalized == "" {
		return "", false
	}

	synonyms := map[string]Weekday{
		"mon": Monday, "mo": Monday, "m": Monday,
		"tue": Tuesday, "tues": Tuesday, "tu": Tuesday,
		"wed": Wednesday, "weds": Wednesday, "we": Wednesday, "w": Wednesday,
		"thu": Thursday, "thur": Thursday, "thurs": Thursday, "th": Thursday, "r": Thursday,
		"fri": Friday, "fr": Friday, "f": Friday,
		"sat": Saturday, "sa": Saturday,
		"sun": Sunday, "su": Sunday,
	}
	if d, ok := synonyms[normalized]; ok {
		return d, true
	}

	for _, d := range allWeekdays {
		lower := strings.ToLower(string(d))
		if normalized == lower || normalized == lower+"s" {
			return d, true
		}
	}
	return "", false
}

// TimeWeekday converts to the time package's numbering (Sunday = 0).
func (d Weekday) TimeWeekday() (time.Weekday, bool) {
	for i, w := range allWeekdays {
		if w == d {
			return time.Weekday((i + 1) % 7), true
		}
	}
	return time.Sunday, false
}
