package llm

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/joseph-ayodele/schedule-ingest/constants"
)

var (
	reClock    = regexp.MustCompile(`^(\d{1,2})[:.h](\d{2})(?::\d{2})?\s*([AaPp])?\.?\s*(?:[Mm]\.?)?$`)
	reHourOnly = regexp.MustCompile(`^(\d{1,2})\s*([AaPp])\.?\s*[Mm]\.?$`)
	reMilitary = regexp.MustCompile(`^(\d{2})(\d{2})$`)
	reDaySplit = regexp.MustCompile(`[\s,;/&|+]+`)
	reRoomNum  = regexp.MustCompile(`^[A-Za-z]?-?(\d{3,4})[A-Za-z]?$`)
)

// CanonicalTime converts common clock spellings to 24-hour HH:MM.
func CanonicalTime(s string) (string, bool) {
	s = strings.TrimSpace(s)
	var hour, minute int
	var meridiem string

	if m := reClock.FindStringSubmatch(s); m != nil {
		hour, _ = strconv.Atoi(m[1])
		minute, _ = strconv.Atoi(m[2])
		meridiem = strings.ToLower(m[3])
	} else if m := reHourOnly.FindStringSubmatch(s); m != nil {
		hour, _ = strconv.Atoi(m[1])
		meridiem = strings.ToLower(m[2])
	} else if m := reMilitary.FindStringSubmatch(s); m != nil {
		hour, _ = strconv.Atoi(m[1])
		minute, _ = strconv.Atoi(m[2])
	} else {
		return "", false
	}

	switch meridiem {
	case "a", "p":
		if hour < 1 || hour > 12 {
			return "", false
		}
		if hour == 12 {
			hour = 0
		}
		if meridiem == "p" {
			hour += 12
		}
	}
	if hour > 23 || minute > 59 {
		return "", false
	}
	return fmt.Sprintf("%02d:%02d", hour, minute), true
}

// CanonicalDays maps a model's days value (array or delimited string) to
// distinct canonical weekday names in first-seen order. Unknown tokens are
// dropped.
func CanonicalDays(v any) []any {
	var tokens []string
	switch t := v.(type) {
	case []any:
		for _, item := range t {
			if s, ok := item.(string); ok {
				tokens = append(tokens, reDaySplit.Split(s, -1)...)
			}
		}
	case string:
		tokens = reDaySplit.Split(t, -1)
	}

	seen := make(map[constants.Weekday]struct{}, 7)
	out := make([]any, 0, len(tokens))
	for _, tok := range tokens {
		if strings.EqualFold(tok, "and") {
			continue
		}
		d, ok := constants.CanonicalWeekday(tok)
		if !ok {
			continue
		}
		if _, dup := seen[d]; dup {
			continue
		}
		seen[d] = struct{}{}
		out = append(out, string(d))
	}
	return out
}

// FloorFromRoom derives a floor from a 3 or 4 digit room number ("301" -> "3").
func FloorFromRoom(room string) (string, bool) {
	m := reRoomNum.FindStringSubmatch(strings.TrimSpace(room))
	if m == nil {
		return "", false
	}
	digits := m[1]
	floor := strings.TrimLeft(digits[:len(digits)-2], "0")
	if floor == "" {
		return "", false
	}
	return floor, true
}
