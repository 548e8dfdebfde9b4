package generator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/uniplanner/uniplanner-api/internal/models"
)

func meeting(day models.DayOfWeek, start, end int) models.Meeting {
	return models.Meeting{Day: day, StartMinute: start, EndMinute: end, Type: models.MeetingLecture}
}

func section(id string, meetings ...models.Meeting) models.Section {
	for i := range meetings {
		meetings[i].SectionID = id
	}
	return models.Section{ID: id, Name: id, Meetings: meetings}
}

func course(id string, sections ...models.Section) models.Course {
	for i := range sections {
		sections[i].CourseID = id
	}
	return models.Course{ID: id, Code: id, Sections: sections}
}

func intPtr(v int) *int { return &v }

func defaultEngine() *Engine {
	return New(Config{})
}

func TestGenerateTwoCoursesAllCombinations(t *testing.T) {
	courses := []models.Course{
		course("A",
			section("A1", meeting(models.DayMonday, 9*60, 10*60)),
			section("A2", meeting(models.DayMonday, 10*60, 11*60)),
		),
		course("B",
			section("B1", meeting(models.DayTuesday, 9*60, 10*60)),
		),
	}

	results, _ := defaultEngine().Generate(courses, models.ScheduleFilters{}, models.DefaultScoreWeights(), 0)
	require.Len(t, results, 2)

	seen := map[string]bool{}
	for _, sched := range results {
		require.Len(t, sched.SectionIDs, 2)
		assert.Contains(t, sched.SectionIDs, "B1")
		// Mon and Tue are occupied in every combination, Wed-Fri stay free.
		assert.Equal(t, 3, sched.Stats.FreeDays)
		assert.False(t, sched.Pinned)
		for _, id := range sched.SectionIDs {
			seen[id] = true
		}
	}
	assert.True(t, seen["A1"])
	assert.True(t, seen["A2"])
}

func TestGenerateRejectsOverlappingOnlyCombination(t *testing.T) {
	courses := []models.Course{
		course("A", section("A1", meeting(models.DayMonday, 9*60, 10*60))),
		course("B", section("B1", meeting(models.DayMonday, 9*60+30, 10*60+30))),
	}

	results, _ := defaultEngine().Generate(courses, models.ScheduleFilters{}, models.DefaultScoreWeights(), 0)
	assert.Empty(t, results)
}

func TestGenerateBackToBackMeetingsDoNotConflict(t *testing.T) {
	courses := []models.Course{
		course("A", section("A1", meeting(models.DayMonday, 9*60, 10*60))),
		course("B", section("B1", meeting(models.DayMonday, 10*60, 11*60))),
	}

	results, _ := defaultEngine().Generate(courses, models.ScheduleFilters{}, models.DefaultScoreWeights(), 0)
	require.Len(t, results, 1)
	assert.Zero(t, results[0].Stats.TotalGaps)
}

func TestGenerateAsyncSectionProducesFullyFreeWeek(t *testing.T) {
	courses := []models.Course{course("A", section("A1"))}

	results, _ := defaultEngine().Generate(courses, models.ScheduleFilters{}, models.DefaultScoreWeights(), 0)
	require.Len(t, results, 1)
	assert.Equal(t, models.ScheduleStats{TotalGaps: 0, FreeDays: 5, EarliestStart: 0, LatestEnd: 0, TotalSpread: 0}, results[0].Stats)
}

func TestGenerateEmptyCourseListYieldsDegenerateSchedule(t *testing.T) {
	results, _ := defaultEngine().Generate(nil, models.ScheduleFilters{}, models.DefaultScoreWeights(), 0)
	require.Len(t, results, 1)
	assert.Empty(t, results[0].SectionIDs)
	assert.Equal(t, 5, results[0].Stats.FreeDays)
}

func TestGenerateCourseWithoutSectionsIsUnsatisfiable(t *testing.T) {
	courses := []models.Course{
		course("A", section("A1", meeting(models.DayMonday, 9*60, 10*60))),
		course("B"),
	}

	results, _ := defaultEngine().Generate(courses, models.ScheduleFilters{}, models.DefaultScoreWeights(), 0)
	assert.Empty(t, results)
}

func TestGenerateNoOverlapInvariant(t *testing.T) {
	courses := []models.Course{
		course("A",
			section("A1", meeting(models.DayMonday, 9*60, 11*60), meeting(models.DayWednesday, 9*60, 11*60)),
			section("A2", meeting(models.DayTuesday, 9*60, 11*60)),
		),
		course("B",
			section("B1", meeting(models.DayMonday, 10*60, 12*60)),
			section("B2", meeting(models.DayWednesday, 13*60, 15*60)),
		),
		course("C",
			section("C1", meeting(models.DayTuesday, 10*60, 12*60)),
			section("C2", meeting(models.DayFriday, 8*60, 10*60)),
		),
	}

	sectionsByID := map[string]models.Section{}
	for _, c := range courses {
		for _, s := range c.Sections {
			sectionsByID[s.ID] = s
		}
	}

	results, _ := defaultEngine().Generate(courses, models.ScheduleFilters{}, models.DefaultScoreWeights(), 0)
	require.NotEmpty(t, results)

	for _, sched := range results {
		var all []models.Meeting
		for _, id := range sched.SectionIDs {
			all = append(all, sectionsByID[id].Meetings...)
		}
		for i := 0; i < len(all); i++ {
			for j := i + 1; j < len(all); j++ {
				assert.False(t, meetingsOverlap(all[i], all[j]),
					"schedule %v contains overlapping meetings", sched.SectionIDs)
			}
		}
	}
}

func TestGenerateOneSectionPerCourseInvariant(t *testing.T) {
	courses := []models.Course{
		course("A", section("A1"), section("A2")),
		course("B", section("B1")),
		course("C", section("C1"), section("C2"), section("C3")),
	}
	owner := map[string]string{
		"A1": "A", "A2": "A", "B1": "B", "C1": "C", "C2": "C", "C3": "C",
	}

	results, _ := defaultEngine().Generate(courses, models.ScheduleFilters{}, models.DefaultScoreWeights(), 0)
	require.Len(t, results, 6)

	for _, sched := range results {
		chosen := map[string]int{}
		for _, id := range sched.SectionIDs {
			chosen[owner[id]]++
		}
		assert.Equal(t, map[string]int{"A": 1, "B": 1, "C": 1}, chosen)
	}
}

func TestGenerateEarlyFilters(t *testing.T) {
	base := []models.Course{
		course("A",
			section("A1", meeting(models.DayMonday, 8*60, 9*60)),
			section("A2", meeting(models.DayMonday, 10*60, 11*60)),
		),
	}

	tests := []struct {
		name     string
		filters  models.ScheduleFilters
		expected []string
	}{
		{
			name:     "earliest start drops morning section",
			filters:  models.ScheduleFilters{EarliestStart: intPtr(9 * 60)},
			expected: []string{"A2"},
		},
		{
			name:     "latest end drops later section",
			filters:  models.ScheduleFilters{LatestEnd: intPtr(10 * 60)},
			expected: []string{"A1"},
		},
		{
			name:     "required free day drops both",
			filters:  models.ScheduleFilters{FreeDays: []models.DayOfWeek{models.DayMonday}},
			expected: nil,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			results, _ := defaultEngine().Generate(base, tc.filters, models.DefaultScoreWeights(), 0)
			require.Len(t, results, len(tc.expected))
			for i, want := range tc.expected {
				assert.Equal(t, []string{want}, results[i].SectionIDs)
			}
		})
	}
}

func TestGenerateLunchBreakFilter(t *testing.T) {
	courses := []models.Course{
		course("A",
			section("A1", meeting(models.DayMonday, 11*60+30, 12*60+30)),
			section("A2", meeting(models.DayMonday, 13*60, 14*60)),
		),
	}

	results, _ := defaultEngine().Generate(courses, models.ScheduleFilters{LunchBreak: true}, models.DefaultScoreWeights(), 0)
	require.Len(t, results, 1)
	assert.Equal(t, []string{"A2"}, results[0].SectionIDs)
}

func TestGenerateLatestEndExemptsOnlineSections(t *testing.T) {
	online := section("A1", meeting(models.DayMonday, 18*60, 20*60))
	online.IsOnline = true
	courses := []models.Course{course("A", online)}
	filters := models.ScheduleFilters{LatestEnd: intPtr(17 * 60)}

	results, _ := defaultEngine().Generate(courses, filters, models.DefaultScoreWeights(), 0)
	require.Len(t, results, 1)

	strict := New(Config{LatestEndAppliesOnline: true})
	strictResults, _ := strict.Generate(courses, filters, models.DefaultScoreWeights(), 0)
	assert.Empty(t, strictResults)
}

func TestGeneratePostFilterMaxGap(t *testing.T) {
	// The only non-overlapping pairing leaves a 30 minute gap on Monday.
	courses := []models.Course{
		course("A", section("A1", meeting(models.DayMonday, 9*60, 10*60))),
		course("B", section("B1", meeting(models.DayMonday, 10*60+30, 11*60+30))),
	}

	engine := defaultEngine()
	unfiltered, _ := engine.Generate(courses, models.ScheduleFilters{}, models.DefaultScoreWeights(), 0)
	require.Len(t, unfiltered, 1)
	require.Equal(t, 30, unfiltered[0].Stats.TotalGaps)

	filtered, _ := engine.Generate(courses, models.ScheduleFilters{MaxGap: intPtr(0)}, models.DefaultScoreWeights(), 0)
	assert.Empty(t, filtered)
}

func TestGeneratePostFilterMinFreeDays(t *testing.T) {
	courses := []models.Course{
		course("A",
			section("A1", meeting(models.DayMonday, 9*60, 10*60), meeting(models.DayTuesday, 9*60, 10*60)),
			section("A2", meeting(models.DayMonday, 9*60, 10*60)),
		),
	}

	results, _ := defaultEngine().Generate(courses, models.ScheduleFilters{MinFreeDays: 4}, models.DefaultScoreWeights(), 0)
	require.Len(t, results, 1)
	assert.Equal(t, []string{"A2"}, results[0].SectionIDs)
}

func TestGenerateHonoursResultCap(t *testing.T) {
	// 3 * 3 * 3 = 27 conflict-free combinations across distinct days.
	courses := []models.Course{
		course("A", section("A1", meeting(models.DayMonday, 8*60, 9*60)), section("A2", meeting(models.DayMonday, 9*60, 10*60)), section("A3", meeting(models.DayMonday, 10*60, 11*60))),
		course("B", section("B1", meeting(models.DayTuesday, 8*60, 9*60)), section("B2", meeting(models.DayTuesday, 9*60, 10*60)), section("B3", meeting(models.DayTuesday, 10*60, 11*60))),
		course("C", section("C1", meeting(models.DayWednesday, 8*60, 9*60)), section("C2", meeting(models.DayWednesday, 9*60, 10*60)), section("C3", meeting(models.DayWednesday, 10*60, 11*60))),
	}

	capped, truncated := defaultEngine().Generate(courses, models.ScheduleFilters{}, models.DefaultScoreWeights(), 10)
	assert.Len(t, capped, 10)
	assert.True(t, truncated)

	full, truncated := defaultEngine().Generate(courses, models.ScheduleFilters{}, models.DefaultScoreWeights(), 0)
	assert.Len(t, full, 27)
	assert.False(t, truncated)
}

func TestGenerateExactCapIsNotTruncated(t *testing.T) {
	// Two combinations exist; a cap of two fits them all, so the search
	// completes rather than stopping short.
	courses := []models.Course{
		course("A",
			section("A1", meeting(models.DayMonday, 9*60, 10*60)),
			section("A2", meeting(models.DayMonday, 10*60, 11*60)),
		),
	}

	results, truncated := defaultEngine().Generate(courses, models.ScheduleFilters{}, models.DefaultScoreWeights(), 2)
	assert.Len(t, results, 2)
	assert.False(t, truncated)
}

func TestGenerateDeterministic(t *testing.T) {
	courses := []models.Course{
		course("A", section("A1", meeting(models.DayMonday, 9*60, 10*60)), section("A2", meeting(models.DayMonday, 10*60, 11*60))),
		course("B", section("B1", meeting(models.DayTuesday, 9*60, 10*60)), section("B2", meeting(models.DayTuesday, 10*60, 11*60))),
	}

	engine := defaultEngine()
	first, _ := engine.Generate(courses, models.ScheduleFilters{}, models.DefaultScoreWeights(), 0)
	second, _ := engine.Generate(courses, models.ScheduleFilters{}, models.DefaultScoreWeights(), 0)
	assert.Equal(t, first, second)
}

func TestGenerateSortedByDescendingScore(t *testing.T) {
	courses := []models.Course{
		course("A",
			// Spread over two days versus one compact day: scores differ.
			section("A1", meeting(models.DayMonday, 9*60, 10*60), meeting(models.DayTuesday, 9*60, 10*60)),
			section("A2", meeting(models.DayMonday, 9*60, 10*60)),
		),
		course("B", section("B1")),
	}

	results, _ := defaultEngine().Generate(courses, models.ScheduleFilters{}, models.DefaultScoreWeights(), 0)
	require.Len(t, results, 2)
	for i := 1; i < len(results); i++ {
		assert.GreaterOrEqual(t, results[i-1].Score, results[i].Score)
	}
	assert.Contains(t, results[0].SectionIDs, "A2")
}

func TestGenerateDoesNotMutateInput(t *testing.T) {
	courses := []models.Course{
		course("Wide", section("W1"), section("W2"), section("W3")),
		course("Narrow", section("N1")),
	}

	defaultEngine().Generate(courses, models.ScheduleFilters{}, models.DefaultScoreWeights(), 0)
	assert.Equal(t, "Wide", courses[0].ID)
	assert.Equal(t, "Narrow", courses[1].ID)
}

func TestGenerateFilterComplianceOnReturnedSchedules(t *testing.T) {
	courses := []models.Course{
		course("A",
			section("A1", meeting(models.DayMonday, 8*60, 9*60)),
			section("A2", meeting(models.DayTuesday, 10*60, 11*60)),
			section("A3", meeting(models.DayFriday, 9*60, 10*60)),
		),
		course("B",
			section("B1", meeting(models.DayTuesday, 11*60, 12*60)),
			section("B2", meeting(models.DayFriday, 13*60, 14*60)),
		),
	}
	filters := models.ScheduleFilters{
		EarliestStart: intPtr(9 * 60),
		FreeDays:      []models.DayOfWeek{models.DayFriday},
		MinFreeDays:   3,
	}

	sectionsByID := map[string]models.Section{}
	for _, c := range courses {
		for _, s := range c.Sections {
			sectionsByID[s.ID] = s
		}
	}

	results, _ := defaultEngine().Generate(courses, filters, models.DefaultScoreWeights(), 0)
	require.NotEmpty(t, results)
	for _, sched := range results {
		assert.GreaterOrEqual(t, sched.Stats.FreeDays, 3)
		for _, id := range sched.SectionIDs {
			for _, m := range sectionsByID[id].Meetings {
				assert.GreaterOrEqual(t, m.StartMinute, 9*60)
				assert.NotEqual(t, models.DayFriday, m.Day)
			}
		}
	}
}
