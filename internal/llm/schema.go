package llm

import (
	"github.com/joseph-ayodele/schedule-ingest/constants"
)

const hhmmPattern = `^([01]\d|2[0-3]):[0-5]\d$`

// optionalFields are the string fields a record may omit.
var optionalFields = []string{"course_code", "professor", "room_number", "building", "floor", "notes"}

// BuildClassJSONSchema returns the JSON-Schema for one normalized class record.
func BuildClassJSONSchema() map[string]any {
	props := map[string]any{
		"course_name": map[string]any{"type": "string", "minLength": 1, "pattern": `\S`},
		"start_time":  map[string]any{"type": "string", "pattern": hhmmPattern},
		"end_time":    map[string]any{"type": "string", "pattern": hhmmPattern},
		"days_of_week": map[string]any{
			"type":        "array",
			"minItems":    1,
			"uniqueItems": true,
			"items": map[string]any{
				"type": "string",
				"enum": constants.AsStringSlice(constants.AllWeekdays()),
			},
		},
	}
	for _, k := range optionalFields {
		props[k] = map[string]any{"type": "string", "minLength": 1}
	}

	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties":           props,
		"required":             []string{"course_name", "start_time", "end_time", "days_of_week"},
	}
}
