package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/uniplanner/uniplanner-api/internal/models"
	appErrors "github.com/uniplanner/uniplanner-api/pkg/errors"
)

type detailProviderStub struct {
	schedule models.GeneratedSchedule
	courses  []models.Course
	termName string
	err      error
}

func (s detailProviderStub) ScheduleDetail(ctx context.Context, resultSetID, scheduleID string) (models.GeneratedSchedule, []models.Course, string, error) {
	if s.err != nil {
		return models.GeneratedSchedule{}, nil, "", s.err
	}
	return s.schedule, s.courses, s.termName, nil
}

func exportFixture() detailProviderStub {
	room := "B201"
	instructor := "Dr. Kaya"
	courses := []models.Course{
		{
			ID: "math", Code: "MATH101", Name: "Calculus I",
			Sections: []models.Section{
				{
					ID: "math-a", Name: "A", Instructor: &instructor,
					Meetings: []models.Meeting{
						{Day: models.DayMonday, StartMinute: 540, EndMinute: 660, Location: &room, Type: models.MeetingLecture},
					},
				},
			},
		},
	}
	return detailProviderStub{
		schedule: models.GeneratedSchedule{
			ID:         "sched-1",
			SectionIDs: []string{"math-a"},
			Score:      180,
			Stats:      models.ScheduleStats{FreeDays: 4, EarliestStart: 540, LatestEnd: 660, TotalSpread: 120},
		},
		courses:  courses,
		termName: "Fall 2026",
	}
}

func TestExportCSV(t *testing.T) {
	service := NewExportService(exportFixture(), zap.NewNop())

	result, err := service.Export(context.Background(), "rs-1", "sched-1", "csv")
	require.NoError(t, err)
	assert.Equal(t, "text/csv", result.ContentType)
	assert.Equal(t, "schedule-sched-1.csv", result.Filename)

	body := string(result.Payload)
	assert.Contains(t, body, "Day,Start,End,Course,Section,Type,Instructor,Location")
	assert.Contains(t, body, "Mon,09:00,11:00,MATH101 Calculus I,A,LECTURE,Dr. Kaya,B201")
}

func TestExportICS(t *testing.T) {
	service := NewExportService(exportFixture(), zap.NewNop())
	service.now = func() time.Time {
		return time.Date(2026, time.August, 28, 12, 0, 0, 0, time.UTC)
	}

	result, err := service.Export(context.Background(), "rs-1", "sched-1", "ics")
	require.NoError(t, err)
	assert.Equal(t, "text/calendar", result.ContentType)

	body := string(result.Payload)
	assert.True(t, strings.HasPrefix(body, "BEGIN:VCALENDAR\r\n"))
	assert.Contains(t, body, "X-WR-CALNAME:Fall 2026")
	assert.Contains(t, body, "SUMMARY:Calculus I - A")
	assert.Contains(t, body, "DTSTART:20260831T090000")
	assert.Contains(t, body, "DTEND:20260831T110000")
	assert.Contains(t, body, "RRULE:FREQ=WEEKLY;COUNT=16")
	assert.Contains(t, body, "END:VCALENDAR")
}

func TestExportPDF(t *testing.T) {
	service := NewExportService(exportFixture(), zap.NewNop())

	result, err := service.Export(context.Background(), "rs-1", "sched-1", "pdf")
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", result.ContentType)
	assert.True(t, strings.HasPrefix(string(result.Payload), "%PDF"))
}

func TestExportUnsupportedFormat(t *testing.T) {
	service := NewExportService(exportFixture(), zap.NewNop())

	_, err := service.Export(context.Background(), "rs-1", "sched-1", "xlsx")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestExportExpiredResultSet(t *testing.T) {
	provider := detailProviderStub{err: appErrors.Clone(appErrors.ErrResultSetExpired, "")}
	service := NewExportService(provider, zap.NewNop())

	_, err := service.Export(context.Background(), "rs-1", "sched-1", "csv")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrResultSetExpired.Code, appErrors.FromError(err).Code)
}
