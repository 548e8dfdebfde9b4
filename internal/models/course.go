package models

import "time"

// DayOfWeek names a weekday using the short form stored on meetings.
type DayOfWeek string

const (
	DayMonday    DayOfWeek = "Mon"
	DayTuesday   DayOfWeek = "Tue"
	DayWednesday DayOfWeek = "Wed"
	DayThursday  DayOfWeek = "Thu"
	DayFriday    DayOfWeek = "Fri"
	DaySaturday  DayOfWeek = "Sat"
	DaySunday    DayOfWeek = "Sun"
)

// Weekdays lists the days that participate in free-day, gap and spread
// accounting. Weekend meetings are stored but never counted.
var Weekdays = []DayOfWeek{DayMonday, DayTuesday, DayWednesday, DayThursday, DayFriday}

// ValidDay reports whether the value is one of the seven day constants.
func ValidDay(d DayOfWeek) bool {
	switch d {
	case DayMonday, DayTuesday, DayWednesday, DayThursday, DayFriday, DaySaturday, DaySunday:
		return true
	}
	return false
}

// IsWeekday reports whether the day participates in schedule statistics.
func (d DayOfWeek) IsWeekday() bool {
	switch d {
	case DayMonday, DayTuesday, DayWednesday, DayThursday, DayFriday:
		return true
	}
	return false
}

// MeetingType tags the pedagogical kind of a weekly time block.
type MeetingType string

const (
	MeetingLecture    MeetingType = "LECTURE"
	MeetingLab        MeetingType = "LAB"
	MeetingRecitation MeetingType = "RECITATION"
)

// Meeting is one contiguous weekly time block owned by a section.
// StartMinute and EndMinute are minutes from midnight (0-1439).
type Meeting struct {
	ID          string      `db:"id" json:"id"`
	SectionID   string      `db:"section_id" json:"section_id"`
	Day         DayOfWeek   `db:"day_of_week" json:"day"`
	StartMinute int         `db:"start_minute" json:"start_minute"`
	EndMinute   int         `db:"end_minute" json:"end_minute"`
	Location    *string     `db:"location" json:"location,omitempty"`
	Type        MeetingType `db:"type" json:"type"`
	CreatedAt   time.Time   `db:"created_at" json:"created_at"`
}

// Section is one offered instance of a course. A section with no meetings is
// a valid fully-asynchronous choice and never conflicts with anything.
type Section struct {
	ID         string    `db:"id" json:"id"`
	CourseID   string    `db:"course_id" json:"course_id"`
	Name       string    `db:"name" json:"name"`
	Instructor *string   `db:"instructor" json:"instructor,omitempty"`
	Capacity   *int      `db:"capacity" json:"capacity,omitempty"`
	IsOnline   bool      `db:"is_online" json:"is_online"`
	Meetings   []Meeting `db:"-" json:"meetings"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time `db:"updated_at" json:"updated_at"`
}

// Course is a subject requiring exactly one section per generated schedule.
type Course struct {
	ID        string    `db:"id" json:"id"`
	TermID    string    `db:"term_id" json:"term_id"`
	Code      string    `db:"code" json:"code"`
	Name      string    `db:"name" json:"name"`
	Credits   int       `db:"credits" json:"credits"`
	Required  bool      `db:"required" json:"required"`
	Color     string    `db:"color" json:"color"`
	IsOnline  bool      `db:"is_online" json:"is_online"`
	Sections  []Section `db:"-" json:"sections"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// CourseColors is the palette cycled through when new courses are created
// without an explicit color.
var CourseColors = []string{
	"#DBEAFE",
	"#FEE2E2",
	"#D1FAE5",
	"#FEF3C7",
	"#E9D5FF",
	"#CFFAFE",
	"#FCE7F3",
	"#F3F4F6",
}
