// Package generator enumerates every conflict-free way to pick one section
// per course and ranks the resulting weekly schedules. It is a pure function
// of its inputs: no I/O, no goroutines, no mutation of the course list.
package generator

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"strings"

	"github.com/uniplanner/uniplanner-api/internal/models"
)

const (
	// DefaultMaxResults caps the result buffer when the caller passes no cap.
	DefaultMaxResults = 1000

	lunchStartMinute = 12 * 60
	lunchEndMinute   = 13 * 60
)

// Config governs engine policy.
type Config struct {
	// LatestEndAppliesOnline extends the latest-end filter to online
	// sections. Default false: sections of online courses (or sections
	// flagged online themselves) are exempt from the end-of-day cutoff.
	LatestEndAppliesOnline bool
	Score                  ScoreConfig
}

// Engine runs the combination search. Safe for concurrent use; every call
// allocates its own search state.
type Engine struct {
	cfg Config
}

// New constructs an engine, filling zero score constants with defaults.
func New(cfg Config) *Engine {
	cfg.Score = cfg.Score.withDefaults()
	return &Engine{cfg: cfg}
}

// Generate walks the Cartesian product of course section choices with
// depth-first backtracking and returns at most maxResults complete,
// conflict-free schedules sorted by descending score. The second return
// value reports whether the search stopped at the cap with branches still
// unexplored; an enumeration that finishes with exactly maxResults
// schedules is not truncated.
//
// Boundary policy: a course with zero sections makes the request
// unsatisfiable and yields an empty list. An empty course list yields the
// single degenerate empty schedule (subject to post filters). The cap
// truncates in discovery order, so a capped result is the first-found set
// under the fixed ordering, not a global top-N.
func (e *Engine) Generate(courses []models.Course, filters models.ScheduleFilters, weights models.ScoreWeights, maxResults int) ([]models.GeneratedSchedule, bool) {
	if maxResults <= 0 {
		maxResults = DefaultMaxResults
	}

	// Fewest sections first shrinks the explored tree without changing the
	// result set. Stable so equal-width courses keep their input order.
	ordered := make([]models.Course, len(courses))
	copy(ordered, courses)
	sort.SliceStable(ordered, func(i, j int) bool {
		return len(ordered[i].Sections) < len(ordered[j].Sections)
	})

	state := &searchState{
		engine:     e,
		courses:    ordered,
		filters:    filters,
		blockedDay: daySet(filters.FreeDays),
		coefs:      e.cfg.Score.coefficients(weights),
		maxResults: maxResults,
	}
	state.descend(0)

	sortByScore(state.results)
	return state.results, state.truncated
}

type searchState struct {
	engine     *Engine
	courses    []models.Course
	filters    models.ScheduleFilters
	blockedDay map[models.DayOfWeek]bool
	coefs      coefficients
	maxResults int

	selection []string
	committed []models.Meeting
	results   []models.GeneratedSchedule
	truncated bool
}

func (s *searchState) descend(courseIdx int) {
	if len(s.results) >= s.maxResults {
		s.truncated = true
		return
	}
	if courseIdx >= len(s.courses) {
		s.capture()
		return
	}

	course := s.courses[courseIdx]
	for i := range course.Sections {
		section := &course.Sections[i]
		if !s.admissible(course, section) {
			continue
		}
		if s.overlapsCommitted(section.Meetings) {
			continue
		}

		// The commitment set is restored to its recorded length on every
		// return path, so sibling branches never observe leaked meetings.
		mark := len(s.committed)
		s.selection = append(s.selection, section.ID)
		s.committed = append(s.committed, section.Meetings...)

		s.descend(courseIdx + 1)

		s.committed = s.committed[:mark]
		s.selection = s.selection[:len(s.selection)-1]
	}
}

// admissible applies the per-section early filters. A section with zero
// meetings always passes.
func (s *searchState) admissible(course models.Course, section *models.Section) bool {
	latestEndExempt := (course.IsOnline || section.IsOnline) && !s.engine.cfg.LatestEndAppliesOnline

	for _, meeting := range section.Meetings {
		if s.filters.EarliestStart != nil && meeting.StartMinute < *s.filters.EarliestStart {
			return false
		}
		if s.filters.LatestEnd != nil && !latestEndExempt && meeting.EndMinute > *s.filters.LatestEnd {
			return false
		}
		if s.blockedDay[meeting.Day] {
			return false
		}
		if s.filters.LunchBreak && rangesOverlap(meeting.StartMinute, meeting.EndMinute, lunchStartMinute, lunchEndMinute) {
			return false
		}
	}
	return true
}

func (s *searchState) overlapsCommitted(meetings []models.Meeting) bool {
	for _, meeting := range meetings {
		for _, committed := range s.committed {
			if meetingsOverlap(meeting, committed) {
				return true
			}
		}
	}
	return false
}

// capture turns the current complete selection into a candidate, applying
// the post-hoc filters before it joins the result buffer.
func (s *searchState) capture() {
	stats := ComputeStats(s.committed)

	if stats.FreeDays < s.filters.MinFreeDays {
		return
	}
	if s.filters.MaxGap != nil && stats.TotalGaps > *s.filters.MaxGap {
		return
	}

	sectionIDs := make([]string, len(s.selection))
	copy(sectionIDs, s.selection)

	s.results = append(s.results, models.GeneratedSchedule{
		ID:         scheduleID(sectionIDs),
		SectionIDs: sectionIDs,
		Score:      s.engine.score(stats, s.coefs),
		Stats:      stats,
	})
}

func meetingsOverlap(a, b models.Meeting) bool {
	if a.Day != b.Day {
		return false
	}
	return rangesOverlap(a.StartMinute, a.EndMinute, b.StartMinute, b.EndMinute)
}

func rangesOverlap(start1, end1, start2, end2 int) bool {
	return start1 < end2 && start2 < end1
}

func daySet(days []models.DayOfWeek) map[models.DayOfWeek]bool {
	set := make(map[models.DayOfWeek]bool, len(days))
	for _, day := range days {
		set[day] = true
	}
	return set
}

// scheduleID derives a stable identifier from the chosen sections, keeping
// generation deterministic end to end.
func scheduleID(sectionIDs []string) string {
	sum := sha256.Sum256([]byte(strings.Join(sectionIDs, "|")))
	return hex.EncodeToString(sum[:8])
}
