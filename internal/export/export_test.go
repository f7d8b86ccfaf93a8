package export

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	ics "github.com/arran4/golang-ical"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/joseph-ayodele/schedule-ingest/internal/entity"
)

func newTestService() *Service {
	s := NewService(slog.New(slog.NewTextHandler(io.Discard, nil)))
	s.now = func() time.Time { return time.Date(2025, 8, 30, 12, 0, 0, 0, time.UTC) }
	return s
}

func classes() []entity.ParsedClass {
	return []entity.ParsedClass{
		{
			CourseName: "Intro to Programming",
			CourseCode: "CS101",
			Professor:  "Dr. Smith",
			Building:   "Science Hall",
			RoomNumber: "204",
			StartTime:  "09:00",
			EndTime:    "10:30",
			DaysOfWeek: []string{"Monday", "Wednesday", "Friday"},
		},
		{
			CourseName: "Calculus I",
			StartTime:  "08:00",
			EndTime:    "09:15",
			DaysOfWeek: []string{"Tuesday", "Thursday"},
		},
	}
}

func TestClassesXLSX(t *testing.T) {
	data, err := newTestService().ClassesXLSX(context.Background(), classes())
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(classesSheet)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "Course", rows[0][0])
	assert.Equal(t, []string{"Intro to Programming", "CS101", "Monday, Wednesday, Friday", "09:00", "10:30", "Dr. Smith", "Science Hall 204"}, rows[1])

	week, err := f.GetRows(weekSheet)
	require.NoError(t, err)
	assert.Equal(t, "Monday", week[0][0])
	assert.Equal(t, "09:00-10:30 Intro to Programming", week[1][0])
	assert.Equal(t, "08:00-09:15 Calculus I", week[1][1])
}

func TestClassesICS(t *testing.T) {
	data, skipped, err := newTestService().ClassesICS(context.Background(), classes(), ICSOptions{Weeks: 2, Name: "Fall"})
	require.NoError(t, err)
	assert.Zero(t, skipped)

	out := string(data)
	assert.Contains(t, out, "RRULE:FREQ=WEEKLY;BYDAY=MO,WE,FR;UNTIL=20250913T235959Z")
	assert.Contains(t, out, "RRULE:FREQ=WEEKLY;BYDAY=TU,TH;")
	// 2025-08-30 is a Saturday; the first Monday is 1 September.
	assert.Contains(t, out, "DTSTART:20250901T090000Z")
	assert.Contains(t, out, "DTSTART:20250902T080000Z")
	assert.Contains(t, out, "TRIGGER:-PT15M")
	assert.Contains(t, out, "X-WR-CALNAME:Fall")

	cal, err := ics.ParseCalendar(strings.NewReader(out))
	require.NoError(t, err)
	events := cal.Events()
	require.Len(t, events, 2)
	assert.Equal(t, "Intro to Programming", events[0].GetProperty(ics.ComponentPropertySummary).Value)
	assert.Equal(t, "Science Hall 204", events[0].GetProperty(ics.ComponentPropertyLocation).Value)
}

func TestClassesICSStableUID(t *testing.T) {
	s := newTestService()
	a, _, err := s.ClassesICS(context.Background(), classes()[:1], ICSOptions{})
	require.NoError(t, err)
	b, _, err := s.ClassesICS(context.Background(), classes()[:1], ICSOptions{})
	require.NoError(t, err)
	assert.Equal(t, string(a), string(b))
}

func TestClassesICSSkipsUnreadableClasses(t *testing.T) {
	bad := []entity.ParsedClass{
		{CourseName: "No days", StartTime: "09:00", EndTime: "10:00", DaysOfWeek: []string{"Someday"}},
		{CourseName: "Bad time", StartTime: "9am", EndTime: "10:00", DaysOfWeek: []string{"Monday"}},
	}
	_, skipped, err := newTestService().ClassesICS(context.Background(), bad, ICSOptions{})
	require.NoError(t, err)
	assert.Equal(t, 2, skipped)
}

func TestFirstOccurrenceInZone(t *testing.T) {
	loc := time.FixedZone("EST", -5*3600)
	from := time.Date(2025, 9, 3, 22, 0, 0, 0, loc) // Wednesday
	start, end, byDay, err := firstOccurrence(classes()[1], from, loc)
	require.NoError(t, err)
	assert.Equal(t, "TU,TH", byDay)
	assert.Equal(t, time.Date(2025, 9, 4, 8, 0, 0, 0, loc), start)
	assert.Equal(t, time.Date(2025, 9, 4, 9, 15, 0, 0, loc), end)
}
