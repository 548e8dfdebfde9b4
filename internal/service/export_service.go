package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/uniplanner/uniplanner-api/internal/models"
	appErrors "github.com/uniplanner/uniplanner-api/pkg/errors"
	"github.com/uniplanner/uniplanner-api/pkg/export"
)

type scheduleDetailProvider interface {
	ScheduleDetail(ctx context.Context, resultSetID, scheduleID string) (models.GeneratedSchedule, []models.Course, string, error)
}

// ExportService renders a generated schedule as CSV, PDF or iCalendar.
type ExportService struct {
	planner scheduleDetailProvider
	csv     *export.CSVExporter
	pdf     *export.PDFExporter
	ics     *export.ICSExporter
	logger  *zap.Logger
	now     func() time.Time
}

// NewExportService constructs an export service.
func NewExportService(planner scheduleDetailProvider, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportService{
		planner: planner,
		csv:     export.NewCSVExporter(),
		pdf:     export.NewPDFExporter(),
		ics:     export.NewICSExporter(),
		logger:  logger,
		now:     time.Now,
	}
}

// ExportResult bundles rendered bytes with transport metadata.
type ExportResult struct {
	Payload     []byte
	ContentType string
	Filename    string
}

// Export renders one schedule from a stored result set in the given format.
func (s *ExportService) Export(ctx context.Context, resultSetID, scheduleID, format string) (*ExportResult, error) {
	schedule, courses, termName, err := s.planner.ScheduleDetail(ctx, resultSetID, scheduleID)
	if err != nil {
		return nil, err
	}

	switch strings.ToLower(format) {
	case "csv":
		payload, renderErr := s.csv.Render(scheduleDataset(schedule, courses))
		if renderErr != nil {
			return nil, appErrors.Wrap(renderErr, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv")
		}
		return &ExportResult{Payload: payload, ContentType: "text/csv", Filename: fmt.Sprintf("schedule-%s.csv", schedule.ID)}, nil
	case "pdf":
		payload, renderErr := s.pdf.Render(scheduleDataset(schedule, courses), termName, scheduleSummary(schedule))
		if renderErr != nil {
			return nil, appErrors.Wrap(renderErr, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render pdf")
		}
		return &ExportResult{Payload: payload, ContentType: "application/pdf", Filename: fmt.Sprintf("schedule-%s.pdf", schedule.ID)}, nil
	case "ics":
		payload, renderErr := s.ics.Render(termName, s.scheduleEvents(schedule, courses))
		if renderErr != nil {
			return nil, appErrors.Wrap(renderErr, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render calendar")
		}
		return &ExportResult{Payload: payload, ContentType: "text/calendar", Filename: fmt.Sprintf("schedule-%s.ics", schedule.ID)}, nil
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported export format %q", format))
	}
}

// scheduleRow is one meeting resolved against its course and section.
type scheduleRow struct {
	course  models.Course
	section models.Section
	meeting models.Meeting
}

func scheduleRows(schedule models.GeneratedSchedule, courses []models.Course) []scheduleRow {
	selected := make(map[string]bool, len(schedule.SectionIDs))
	for _, id := range schedule.SectionIDs {
		selected[id] = true
	}

	var rows []scheduleRow
	for _, course := range courses {
		for _, section := range course.Sections {
			if !selected[section.ID] {
				continue
			}
			for _, meeting := range section.Meetings {
				rows = append(rows, scheduleRow{course: course, section: section, meeting: meeting})
			}
		}
	}
	sort.SliceStable(rows, func(i, j int) bool {
		di, dj := dayOrder(rows[i].meeting.Day), dayOrder(rows[j].meeting.Day)
		if di != dj {
			return di < dj
		}
		return rows[i].meeting.StartMinute < rows[j].meeting.StartMinute
	})
	return rows
}

func scheduleDataset(schedule models.GeneratedSchedule, courses []models.Course) export.Dataset {
	headers := []string{"Day", "Start", "End", "Course", "Section", "Type", "Instructor", "Location"}
	rows := make([]map[string]string, 0)
	for _, row := range scheduleRows(schedule, courses) {
		instructor := ""
		if row.section.Instructor != nil {
			instructor = *row.section.Instructor
		}
		location := ""
		if row.meeting.Location != nil {
			location = *row.meeting.Location
		}
		rows = append(rows, map[string]string{
			"Day":        string(row.meeting.Day),
			"Start":      minutesToClock(row.meeting.StartMinute),
			"End":        minutesToClock(row.meeting.EndMinute),
			"Course":     fmt.Sprintf("%s %s", row.course.Code, row.course.Name),
			"Section":    row.section.Name,
			"Type":       string(row.meeting.Type),
			"Instructor": instructor,
			"Location":   location,
		})
	}
	return export.Dataset{Headers: headers, Rows: rows}
}

func scheduleSummary(schedule models.GeneratedSchedule) []export.SummaryLine {
	return []export.SummaryLine{
		{Label: "Score", Value: fmt.Sprintf("%d", schedule.Score)},
		{Label: "Free days", Value: fmt.Sprintf("%d", schedule.Stats.FreeDays)},
		{Label: "Total gaps", Value: fmt.Sprintf("%d min", schedule.Stats.TotalGaps)},
		{Label: "Earliest start", Value: minutesToClock(schedule.Stats.EarliestStart)},
		{Label: "Latest end", Value: minutesToClock(schedule.Stats.LatestEnd)},
		{Label: "Time on campus", Value: fmt.Sprintf("%d min", schedule.Stats.TotalSpread)},
	}
}

// scheduleEvents lays the weekly meetings onto the next calendar week and
// repeats them for a 16 week semester.
func (s *ExportService) scheduleEvents(schedule models.GeneratedSchedule, courses []models.Course) []export.Event {
	monday := nextMonday(s.now())
	var events []export.Event
	for i, row := range scheduleRows(schedule, courses) {
		day := monday.AddDate(0, 0, dayOrder(row.meeting.Day))
		start := day.Add(time.Duration(row.meeting.StartMinute) * time.Minute)
		end := day.Add(time.Duration(row.meeting.EndMinute) * time.Minute)
		instructor := ""
		if row.section.Instructor != nil {
			instructor = *row.section.Instructor
		}
		location := ""
		if row.meeting.Location != nil {
			location = *row.meeting.Location
		}
		events = append(events, export.Event{
			UID:         fmt.Sprintf("%d-%s@uniplanner", i+1, schedule.ID),
			Summary:     fmt.Sprintf("%s - %s", row.course.Name, row.section.Name),
			Description: fmt.Sprintf("Section: %s\nInstructor: %s", row.section.Name, instructor),
			Location:    location,
			Start:       start,
			End:         end,
			RepeatWeeks: 16,
		})
	}
	return events
}

var weekdayOrder = map[models.DayOfWeek]int{
	models.DayMonday:    0,
	models.DayTuesday:   1,
	models.DayWednesday: 2,
	models.DayThursday:  3,
	models.DayFriday:    4,
	models.DaySaturday:  5,
	models.DaySunday:    6,
}

func dayOrder(d models.DayOfWeek) int {
	return weekdayOrder[d]
}

func minutesToClock(minutes int) string {
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

func nextMonday(from time.Time) time.Time {
	day := from
	daysAhead := (int(time.Monday) - int(from.Weekday()) + 7) % 7
	if daysAhead == 0 {
		daysAhead = 7
	}
	day = day.AddDate(0, 0, daysAhead)
	return time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
}
