package export

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	ics "github.com/arran4/golang-ical"
	"github.com/google/uuid"

	"github.com/joseph-ayodele/schedule-ingest/constants"
	"github.com/joseph-ayodele/schedule-ingest/internal/entity"
)

// DefaultReminder matches the class reminder lead time of the mobile app.
const DefaultReminder = 15 * time.Minute

// DefaultWeeks is one semester.
const DefaultWeeks = 16

var icsDayCodes = map[time.Weekday]string{
	time.Monday:    "MO",
	time.Tuesday:   "TU",
	time.Wednesday: "WE",
	time.Thursday:  "TH",
	time.Friday:    "FR",
	time.Saturday:  "SA",
	time.Sunday:    "SU",
}

// ICSOptions controls calendar generation. Zero values pick sensible
// defaults: UTC, starting today, 16 weeks, a 15 minute reminder.
type ICSOptions struct {
	Location *time.Location
	From     time.Time
	Weeks    int
	Reminder time.Duration
	Name     string
}

// ClassesICS returns an iCalendar document with one weekly recurring event per
// class. Classes whose days or times cannot be read are skipped and counted.
func (s *Service) ClassesICS(ctx context.Context, classes []entity.ParsedClass, opts ICSOptions) ([]byte, int, error) {
	if err := ctx.Err(); err != nil {
		return nil, 0, err
	}
	loc := opts.Location
	if loc == nil {
		loc = time.UTC
	}
	from := opts.From
	if from.IsZero() {
		from = s.now()
	}
	from = from.In(loc)
	if opts.Weeks <= 0 {
		opts.Weeks = DefaultWeeks
	}
	if opts.Reminder <= 0 {
		opts.Reminder = DefaultReminder
	}
	until := time.Date(from.Year(), from.Month(), from.Day(), 23, 59, 59, 0, loc).AddDate(0, 0, 7*opts.Weeks)

	cal := ics.NewCalendarFor("schedule-ingest")
	cal.SetMethod(ics.MethodPublish)
	if opts.Name != "" {
		cal.SetXWRCalName(opts.Name)
	}
	if loc != time.UTC {
		cal.SetXWRTimezone(loc.String())
	}

	stamp := s.now()
	skipped := 0
	for _, c := range classes {
		first, end, byDay, err := firstOccurrence(c, from, loc)
		if err != nil {
			s.logger.Warn("export.ics.skip_class", "course", c.CourseName, "error", err)
			skipped++
			continue
		}

		event := cal.AddEvent(eventUID(c))
		event.SetDtStampTime(stamp)
		if loc == time.UTC {
			event.SetStartAt(first)
			event.SetEndAt(end)
		} else {
			event.SetProperty(ics.ComponentPropertyDtStart, first.Format("20060102T150405"), ics.WithTZID(loc.String()))
			event.SetProperty(ics.ComponentPropertyDtEnd, end.Format("20060102T150405"), ics.WithTZID(loc.String()))
		}
		event.AddRrule(fmt.Sprintf("FREQ=WEEKLY;BYDAY=%s;UNTIL=%s", byDay, until.UTC().Format("20060102T150405Z")))
		event.SetSummary(c.CourseName)
		if where := c.Location(); where != "" {
			event.SetLocation(where)
		}
		if desc := describe(c); desc != "" {
			event.SetDescription(desc)
		}

		alarm := event.AddAlarm()
		alarm.SetAction(ics.ActionDisplay)
		alarm.SetTrigger(fmt.Sprintf("-PT%dM", int(opts.Reminder.Minutes())))
		alarm.SetProperty(ics.ComponentPropertyDescription, c.CourseName+" starts at "+c.StartTime)
	}

	var b strings.Builder
	if err := cal.SerializeTo(&b); err != nil {
		return nil, skipped, fmt.Errorf("ics write: %w", err)
	}
	s.logger.Info("export.ics.ok", "events", len(classes)-skipped, "skipped", skipped)
	return []byte(b.String()), skipped, nil
}

// firstOccurrence finds the first class meeting on or after from and returns
// its start, end and the BYDAY list.
func firstOccurrence(c entity.ParsedClass, from time.Time, loc *time.Location) (time.Time, time.Time, string, error) {
	startClock, err := time.Parse("15:04", c.StartTime)
	if err != nil {
		return time.Time{}, time.Time{}, "", fmt.Errorf("start_time: %w", err)
	}
	endClock, err := time.Parse("15:04", c.EndTime)
	if err != nil {
		return time.Time{}, time.Time{}, "", fmt.Errorf("end_time: %w", err)
	}

	meets := map[time.Weekday]bool{}
	var codes []string
	for _, name := range c.DaysOfWeek {
		d, ok := constants.CanonicalWeekday(name)
		if !ok {
			continue
		}
		wd, _ := d.TimeWeekday()
		if !meets[wd] {
			meets[wd] = true
			codes = append(codes, icsDayCodes[wd])
		}
	}
	if len(codes) == 0 {
		return time.Time{}, time.Time{}, "", errors.New("no recognised weekday")
	}

	day := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, loc)
	for !meets[day.Weekday()] {
		day = day.AddDate(0, 0, 1)
	}
	start := time.Date(day.Year(), day.Month(), day.Day(), startClock.Hour(), startClock.Minute(), 0, 0, loc)
	end := time.Date(day.Year(), day.Month(), day.Day(), endClock.Hour(), endClock.Minute(), 0, 0, loc)
	if !end.After(start) {
		end = end.AddDate(0, 0, 1)
	}
	return start, end, strings.Join(codes, ","), nil
}

func describe(c entity.ParsedClass) string {
	var parts []string
	if c.CourseCode != "" {
		parts = append(parts, "Code: "+c.CourseCode)
	}
	if c.Professor != "" {
		parts = append(parts, "Professor: "+c.Professor)
	}
	if c.Notes != "" {
		parts = append(parts, c.Notes)
	}
	return strings.Join(parts, "\n")
}

var uidNamespace = uuid.MustParse("6f0c7a52-3f3e-4c1b-9d8e-2b7f4a1c9e10")

// eventUID is stable for the same class so re-imports update events in place.
func eventUID(c entity.ParsedClass) string {
	key := strings.Join([]string{c.CourseName, c.CourseCode, c.StartTime, c.EndTime, strings.Join(c.DaysOfWeek, ",")}, "|")
	return uuid.NewSHA1(uidNamespace, []byte(key)).String() + "@schedule-ingest"
}
