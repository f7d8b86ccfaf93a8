// Package heuristic extracts class records from plain text without any model.
// Output depends only on the input text.
package heuristic

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/joseph-ayodele/schedule-ingest/constants"
	"github.com/joseph-ayodele/schedule-ingest/internal/entity"
)

const (
	// BufferCap is the number of lines a candidate block may span.
	BufferCap = 10
	// PlaceholderName is used when the block's first line is only a time range.
	PlaceholderName = "Untitled Class"
)

// reTimeRange has no trailing word boundary so "9:00-10:00am" still matches;
// timeRange rejects a match followed by another digit.
var reTimeRange = regexp.MustCompile(`\b([01]?\d|2[0-3]):([0-5]\d)\s*-\s*([01]?\d|2[0-3]):([0-5]\d)`)

// timeRange returns the first H:MM-H:MM range on line as
// [match, startHour, startMin, endHour, endMin], or nil.
func timeRange(line string) []string {
	for _, idx := range reTimeRange.FindAllStringSubmatchIndex(line, -1) {
		if end := idx[1]; end < len(line) && line[end] >= '0' && line[end] <= '9' {
			continue
		}
		m := make([]string, 5)
		for i := range m {
			m[i] = line[idx[2*i]:idx[2*i+1]]
		}
		return m
	}
	return nil
}

// Parse groups lines into blocks that end on a time-range line and emits one
// record per block. A block never holds more than BufferCap lines, its
// time-range line included. When the buffer is full, a further line without a
// time range is discarded together with it; a time-range line instead starts
// a fresh block of its own.
func Parse(text string) []entity.ParsedClass {
	out := []entity.ParsedClass{}
	var buf []string

	for _, line := range splitLines(text) {
		m := timeRange(line)
		if len(buf) == BufferCap {
			buf = nil
			if m == nil {
				continue
			}
		}
		buf = append(buf, line)
		if m == nil {
			continue
		}

		out = append(out, entity.ParsedClass{
			CourseName: courseName(buf[0], m[0]),
			StartTime:  clock(m[1], m[2]),
			EndTime:    clock(m[3], m[4]),
			DaysOfWeek: daysFromBlock(buf),
		})
		buf = nil
	}
	return out
}

func splitLines(text string) []string {
	raw := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
	lines := make([]string, 0, len(raw))
	for _, l := range raw {
		if l = strings.TrimSpace(strings.TrimSuffix(l, "\r")); l != "" {
			lines = append(lines, l)
		}
	}
	return lines
}

func clock(h, m string) string {
	hour, _ := strconv.Atoi(h)
	return fmt.Sprintf("%02d:%s", hour, m)
}

func courseName(first, match string) string {
	name := strings.TrimSpace(strings.Replace(first, match, "", 1))
	if name == "" {
		return PlaceholderName
	}
	return name
}

// daysFromBlock returns the weekdays named on the first line that names any,
// in the order they appear on that line.
func daysFromBlock(buf []string) []string {
	for _, line := range buf {
		if days := weekdaysOnLine(line); len(days) > 0 {
			return days
		}
	}
	return constants.AsStringSlice(constants.DefaultWeekdays)
}

func weekdaysOnLine(line string) []string {
	lower := strings.ToLower(line)

	type hit struct {
		pos int
		day constants.Weekday
	}
	var hits []hit
	for _, d := range constants.AllWeekdays() {
		if i := strings.Index(lower, strings.ToLower(string(d))); i >= 0 {
			hits = append(hits, hit{pos: i, day: d})
		}
	}
	sort.Slice(hits, func(i, j int) bool { return hits[i].pos < hits[j].pos })

	days := make([]string, 0, len(hits))
	for _, h := range hits {
		days = append(days, string(h.day))
	}
	return days
}
