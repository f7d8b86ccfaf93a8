package llm

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/joseph-ayodele/schedule-ingest/internal/entity"
)

var (
	ErrNotJSON  = errors.New("model output is not valid JSON")
	ErrNotArray = errors.New("model output is not a JSON array")
)

var (
	reLeadingFence  = regexp.MustCompile("^\\s*```[A-Za-z0-9_+-]*[ \\t]*\\r?\\n?")
	reTrailingFence = regexp.MustCompile("\\r?\\n?[ \\t]*```\\s*$")
)

// StripCodeFence removes a Markdown code fence wrapping the whole text.
func StripCodeFence(s string) string {
	s = reLeadingFence.ReplaceAllString(s, "")
	s = reTrailingFence.ReplaceAllString(s, "")
	return strings.TrimSpace(s)
}

// NormalizeResponse turns raw model output into class records. It fails only
// when the output is not a JSON array; elements that do not satisfy the record
// invariant are dropped and counted.
func NormalizeResponse(raw string) ([]entity.ParsedClass, int, error) {
	items, err := decodeArray(StripCodeFence(raw))
	if err != nil {
		return nil, 0, err
	}

	out := make([]entity.ParsedClass, 0, len(items))
	dropped := 0
	for _, item := range items {
		rec, ok := item.(map[string]any)
		if !ok {
			dropped++
			continue
		}
		sanitizeRecord(rec)
		if err := validateClass(rec); err != nil {
			dropped++
			continue
		}
		pc, err := toParsedClass(rec)
		if err != nil {
			dropped++
			continue
		}
		out = append(out, pc)
	}
	return out, dropped, nil
}

func decodeArray(text string) ([]any, error) {
	var v any
	if err := json.Unmarshal([]byte(text), &v); err != nil {
		// Models sometimes wrap the array in prose; retry on the outermost
		// brackets, unless an object opens before them.
		start, end := strings.Index(text, "["), strings.LastIndex(text, "]")
		if start < 0 || end <= start {
			return nil, fmt.Errorf("%w: %v", ErrNotJSON, err)
		}
		if strings.Contains(text[:start], "{") {
			return nil, ErrNotArray
		}
		if err2 := json.Unmarshal([]byte(text[start:end+1]), &v); err2 != nil {
			return nil, fmt.Errorf("%w: %v", ErrNotJSON, err)
		}
	}
	items, ok := v.([]any)
	if !ok {
		return nil, ErrNotArray
	}
	return items, nil
}

func toParsedClass(rec map[string]any) (entity.ParsedClass, error) {
	var pc entity.ParsedClass
	b, err := json.Marshal(rec)
	if err != nil {
		return pc, err
	}
	if err := json.Unmarshal(b, &pc); err != nil {
		return pc, err
	}
	return pc, nil
}
