package generator

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/uniplanner/uniplanner-api/internal/models"
)

func TestComputeStatsEmpty(t *testing.T) {
	stats := ComputeStats(nil)
	assert.Equal(t, models.ScheduleStats{TotalGaps: 0, FreeDays: 5, EarliestStart: 0, LatestEnd: 0, TotalSpread: 0}, stats)
}

func TestComputeStatsSingleDay(t *testing.T) {
	stats := ComputeStats([]models.Meeting{
		meeting(models.DayMonday, 9*60, 10*60),
		meeting(models.DayMonday, 11*60, 12*60),
	})

	assert.Equal(t, 60, stats.TotalGaps)
	assert.Equal(t, 4, stats.FreeDays)
	assert.Equal(t, 9*60, stats.EarliestStart)
	assert.Equal(t, 12*60, stats.LatestEnd)
	assert.Equal(t, 180, stats.TotalSpread)
}

func TestComputeStatsMultipleDays(t *testing.T) {
	stats := ComputeStats([]models.Meeting{
		meeting(models.DayTuesday, 13*60, 15*60),
		meeting(models.DayMonday, 8*60+30, 10*60),
		meeting(models.DayMonday, 10*60, 11*60),
		meeting(models.DayThursday, 16*60, 18*60),
	})

	assert.Equal(t, 0, stats.TotalGaps)
	assert.Equal(t, 2, stats.FreeDays)
	assert.Equal(t, 8*60+30, stats.EarliestStart)
	assert.Equal(t, 18*60, stats.LatestEnd)
	// Mon 150 + Tue 120 + Thu 120.
	assert.Equal(t, 390, stats.TotalSpread)
}

func TestComputeStatsIgnoresWeekendMeetings(t *testing.T) {
	stats := ComputeStats([]models.Meeting{
		meeting(models.DaySaturday, 9*60, 12*60),
		meeting(models.DaySunday, 9*60, 12*60),
	})

	assert.Equal(t, models.ScheduleStats{FreeDays: 5}, stats)
}

func TestComputeStatsOverlappingMeetingsNeverProduceNegativeGaps(t *testing.T) {
	stats := ComputeStats([]models.Meeting{
		meeting(models.DayWednesday, 9*60, 11*60),
		meeting(models.DayWednesday, 10*60, 12*60),
	})

	assert.Equal(t, 0, stats.TotalGaps)
	assert.Equal(t, 3*60, stats.TotalSpread)
}

func TestComputeStatsMalformedMeetingTreatedAsZeroDuration(t *testing.T) {
	stats := ComputeStats([]models.Meeting{
		meeting(models.DayMonday, 10*60, 9*60),
	})

	assert.Equal(t, 0, stats.TotalGaps)
	assert.Equal(t, 4, stats.FreeDays)
	assert.Equal(t, 10*60, stats.EarliestStart)
	assert.Equal(t, 10*60, stats.LatestEnd)
	assert.Equal(t, 0, stats.TotalSpread)
}
