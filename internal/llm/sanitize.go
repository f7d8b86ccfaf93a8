package llm

import (
	"maps"
	"strconv"
	"strings"
)

var allowedKeys = map[string]struct{}{
	"course_name": {}, "course_code": {}, "professor": {}, "room_number": {},
	"building": {}, "floor": {}, "start_time": {}, "end_time": {},
	"days_of_week": {}, "notes": {},
}

// keyAliases maps names models commonly use instead of ours. Earlier entries
// win when several aliases of the same key are present.
var keyAliases = [][2]string{
	{"name", "course_name"},
	{"title", "course_name"},
	{"course", "course_name"},
	{"code", "course_code"},
	{"instructor", "professor"},
	{"teacher", "professor"},
	{"room", "room_number"},
	{"start", "start_time"},
	{"end", "end_time"},
	{"days", "days_of_week"},
	{"day", "days_of_week"},
	{"description", "notes"},
}

// sanitizeRecord makes one decoded element schema-friendly without inventing
// values: aliases are renamed, strings trimmed, empty optionals and unknown
// keys removed, times and days canonicalized.
func sanitizeRecord(m map[string]any) {
	for _, alias := range keyAliases {
		from, to := alias[0], alias[1]
		if v, ok := m[from]; ok {
			if _, exists := m[to]; !exists {
				m[to] = v
			}
			delete(m, from)
		}
	}

	for k := range maps.Clone(m) {
		if _, ok := allowedKeys[k]; !ok {
			delete(m, k)
		}
	}

	for k, v := range maps.Clone(m) {
		if k == "days_of_week" {
			continue
		}
		switch t := v.(type) {
		case string:
			s := strings.TrimSpace(t)
			if s == "" || strings.EqualFold(s, "null") || strings.EqualFold(s, "n/a") {
				delete(m, k)
			} else {
				m[k] = s
			}
		case float64:
			m[k] = strconv.FormatFloat(t, 'f', -1, 64)
		default:
			delete(m, k)
		}
	}

	for _, k := range []string{"start_time", "end_time"} {
		if s, ok := m[k].(string); ok {
			if t, ok := CanonicalTime(s); ok {
				m[k] = t
			}
		}
	}

	if v, ok := m["days_of_week"]; ok {
		days := CanonicalDays(v)
		if len(days) == 0 {
			delete(m, "days_of_week")
		} else {
			m["days_of_week"] = days
		}
	}

	if _, ok := m["floor"]; !ok {
		if room, ok := m["room_number"].(string); ok {
			if floor, ok := FloorFromRoom(room); ok {
				m["floor"] = floor
			}
		}
	}
}
