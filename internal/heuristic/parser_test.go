package heuristic

import (
	"fmt"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/schedule-ingest/internal/entity"
)

var weekdays = []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday"}

func TestParseNamedDays(t *testing.T) {
	got := Parse("CS101 Intro to Programming\nMonday Wednesday Friday\n09:00-10:30\n")

	want := []entity.ParsedClass{{
		CourseName: "CS101 Intro to Programming",
		StartTime:  "09:00",
		EndTime:    "10:30",
		DaysOfWeek: []string{"Monday", "Wednesday", "Friday"},
	}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("mismatch (-want +got):\n%s", diff)
	}
}

func TestParseDefaultsToWeekdays(t *testing.T) {
	got := Parse("Organic Chemistry\nRoom 204\n13:00 - 14:15")
	require.Len(t, got, 1)
	assert.Equal(t, "Organic Chemistry", got[0].CourseName)
	assert.Equal(t, "13:00", got[0].StartTime)
	assert.Equal(t, "14:15", got[0].EndTime)
	assert.Equal(t, weekdays, got[0].DaysOfWeek)
}

func TestParseMultipleBlocks(t *testing.T) {
	text := `
  History 201
  tuesday / THURSDAY
  8:00-9:15

  Art Studio 8:30-11:30
  Saturday
`
	got := Parse(text)
	require.Len(t, got, 2)

	assert.Equal(t, "History 201", got[0].CourseName)
	assert.Equal(t, "08:00", got[0].StartTime)
	assert.Equal(t, []string{"Tuesday", "Thursday"}, got[0].DaysOfWeek)

	// The time line is also the first line; Saturday comes after the
	// terminator and belongs to no block.
	assert.Equal(t, "Art Studio", got[1].CourseName)
	assert.Equal(t, "08:30", got[1].StartTime)
	assert.Equal(t, "11:30", got[1].EndTime)
	assert.Equal(t, weekdays, got[1].DaysOfWeek)
}

func TestParseDaysInLineOrder(t *testing.T) {
	got := Parse("Lab\nFriday and Monday, then friday again\n10:00-12:00")
	require.Len(t, got, 1)
	assert.Equal(t, []string{"Friday", "Monday"}, got[0].DaysOfWeek)
}

func TestParseFirstLineBecomesName(t *testing.T) {
	got := Parse("FALL 2024 SCHEDULE\nCalculus I\nMonday\n09:00-09:50")
	require.Len(t, got, 1)
	assert.Equal(t, "FALL 2024 SCHEDULE", got[0].CourseName)
}

func TestParsePlaceholderName(t *testing.T) {
	got := Parse("10:00-11:00")
	require.Len(t, got, 1)
	assert.Equal(t, PlaceholderName, got[0].CourseName)
	assert.Equal(t, weekdays, got[0].DaysOfWeek)
}

func TestParseDiscardsOverlongBlock(t *testing.T) {
	var b strings.Builder
	b.WriteString("Preamble Monday\n")
	for i := 0; i < BufferCap; i++ {
		fmt.Fprintf(&b, "filler %d\n", i)
	}
	b.WriteString("Physics\n11:00-12:00\n")

	got := Parse(b.String())
	require.Len(t, got, 1)
	assert.Equal(t, "Physics", got[0].CourseName)
	assert.Equal(t, weekdays, got[0].DaysOfWeek, "weekday line was discarded with the buffer")
}

func TestParseTimeLineAfterFullBufferStartsNewBlock(t *testing.T) {
	var b strings.Builder
	for i := 0; i < BufferCap; i++ {
		fmt.Fprintf(&b, "filler line %d Monday\n", i)
	}
	b.WriteString("09:00-10:00\n")

	got := Parse(b.String())
	require.Len(t, got, 1)
	assert.Equal(t, PlaceholderName, got[0].CourseName)
	assert.Equal(t, weekdays, got[0].DaysOfWeek)
	assert.Equal(t, "09:00", got[0].StartTime)
}

func TestParseBlockAtCapIsKept(t *testing.T) {
	var b strings.Builder
	for i := 0; i < BufferCap-1; i++ {
		fmt.Fprintf(&b, "filler line %d\n", i)
	}
	b.WriteString("09:00-10:00\n")

	got := Parse(b.String())
	require.Len(t, got, 1)
	assert.Equal(t, "filler line 0", got[0].CourseName)
}

func TestParseMeridiemSuffix(t *testing.T) {
	got := Parse("Math\nTuesday\n9:00-10:00am\nHistory\n10:30-11:45PM\n")
	require.Len(t, got, 2)
	assert.Equal(t, "Math", got[0].CourseName)
	assert.Equal(t, "09:00", got[0].StartTime)
	assert.Equal(t, "10:00", got[0].EndTime)
	assert.Equal(t, []string{"Tuesday"}, got[0].DaysOfWeek)
	assert.Equal(t, "History", got[1].CourseName)
	assert.Equal(t, "10:30", got[1].StartTime)
	assert.Equal(t, "11:45", got[1].EndTime)
}

func TestParseRejectsTrailingDigit(t *testing.T) {
	assert.Empty(t, Parse("Lab\n09:00-10:305\n"))
}

func TestParseNoTimeRange(t *testing.T) {
	got := Parse("Nothing here\nMonday\n9am to 10am\n25:00-26:00\n")
	assert.NotNil(t, got)
	assert.Empty(t, got)
	assert.Empty(t, Parse(""))
}

func TestParseIsDeterministic(t *testing.T) {
	text := "A\nMonday Tuesday\n1:00-2:00\nB\n3:05-4:10\nC Sunday 22:00-23:30"
	first := Parse(text)
	for i := 0; i < 20; i++ {
		if diff := cmp.Diff(first, Parse(text)); diff != "" {
			t.Fatalf("run %d differs:\n%s", i, diff)
		}
	}
	for _, c := range first {
		assert.Regexp(t, `^([01]\d|2[0-3]):[0-5]\d$`, c.StartTime)
		assert.Regexp(t, `^([01]\d|2[0-3]):[0-5]\d$`, c.EndTime)
		assert.NotEmpty(t, c.CourseName)
		assert.NotEmpty(t, c.DaysOfWeek)
	}
}
