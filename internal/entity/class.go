package entity

import (
	"time"

	"github.com/google/uuid"
)

// ParsedClass is one weekly class session extracted from an uploaded schedule.
type ParsedClass struct {
	CourseName string   `json:"course_name"`
	CourseCode string   `json:"course_code,omitempty"`
	Professor  string   `json:"professor,omitempty"`
	RoomNumber string   `json:"room_number,omitempty"`
	Building   string   `json:"building,omitempty"`
	Floor      string   `json:"floor,omitempty"`
	StartTime  string   `json:"start_time"` // HH:MM, 24h
	EndTime    string   `json:"end_time"`   // HH:MM, 24h
	DaysOfWeek []string `json:"days_of_week"`
	Notes      string   `json:"notes,omitempty"`
}

// Location joins building, room and floor for display.
func (c ParsedClass) Location() string {
	loc := c.Building
	if c.RoomNumber != "" {
		if loc != "" {
			loc += " "
		}
		loc += c.RoomNumber
	}
	if c.Floor != "" {
		if loc != "" {
			loc += ", "
		}
		loc += "Floor " + c.Floor
	}
	return loc
}

// ParseResult is returned by one parse call.
type ParseResult struct {
	Classes  []ParsedClass `json:"classes"`
	Warnings []string      `json:"warnings"`
}

// NewParseResult returns a result whose slices marshal as [] rather than null.
func NewParseResult() ParseResult {
	return ParseResult{Classes: []ParsedClass{}, Warnings: []string{}}
}

// SavedClass is a ParsedClass persisted under a schedule.
type SavedClass struct {
	ID         uuid.UUID `json:"id"`
	ScheduleID string    `json:"schedule_id"`
	ParsedClass
	CreatedAt time.Time `json:"created_at"`
}
