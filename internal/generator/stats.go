package generator

import (
	"sort"

	"github.com/uniplanner/uniplanner-api/internal/models"
)

// ComputeStats derives the weekly summary for a set of meetings. Only Mon-Fri
// meetings participate; weekend meetings are tolerated but ignored. An empty
// meeting set is a fully-free week: five free days and zeroed time bounds.
func ComputeStats(meetings []models.Meeting) models.ScheduleStats {
	if len(meetings) == 0 {
		return models.ScheduleStats{FreeDays: 5}
	}

	byDay := make(map[models.DayOfWeek][]models.Meeting, len(models.Weekdays))
	for _, meeting := range meetings {
		if !meeting.Day.IsWeekday() {
			continue
		}
		byDay[meeting.Day] = append(byDay[meeting.Day], meeting)
	}

	stats := models.ScheduleStats{}
	earliest := -1

	for _, day := range models.Weekdays {
		dayMeetings := byDay[day]
		if len(dayMeetings) == 0 {
			stats.FreeDays++
			continue
		}

		sort.SliceStable(dayMeetings, func(i, j int) bool {
			return dayMeetings[i].StartMinute < dayMeetings[j].StartMinute
		})

		dayStart := dayMeetings[0].StartMinute
		dayEnd := endMinute(dayMeetings[len(dayMeetings)-1])

		if earliest == -1 || dayStart < earliest {
			earliest = dayStart
		}
		if dayEnd > stats.LatestEnd {
			stats.LatestEnd = dayEnd
		}
		if dayEnd > dayStart {
			stats.TotalSpread += dayEnd - dayStart
		}

		for i := 1; i < len(dayMeetings); i++ {
			gap := dayMeetings[i].StartMinute - endMinute(dayMeetings[i-1])
			if gap > 0 {
				stats.TotalGaps += gap
			}
		}
	}

	if earliest >= 0 {
		stats.EarliestStart = earliest
	}

	return stats
}

// endMinute guards against malformed meetings where end precedes start:
// such a meeting behaves as zero-duration instead of corrupting gap and
// spread accounting.
func endMinute(m models.Meeting) int {
	if m.EndMinute < m.StartMinute {
		return m.StartMinute
	}
	return m.EndMinute
}
