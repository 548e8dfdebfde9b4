package models

import (
	"time"

	"github.com/jmoiron/sqlx/types"
)

// ScheduleFilters holds the hard constraints applied during generation.
// Nil pointer fields mean "not set".
type ScheduleFilters struct {
	EarliestStart *int        `json:"earliest_start"`
	LatestEnd     *int        `json:"latest_end"`
	FreeDays      []DayOfWeek `json:"free_days"`
	MaxGap        *int        `json:"max_gap"`
	LunchBreak    bool        `json:"lunch_break"`
	MinFreeDays   int         `json:"min_free_days"`
}

// ScoreWeights are the four 0-100 sliders controlling schedule ranking.
type ScoreWeights struct {
	FreeDays  int `json:"free_days" validate:"min=0,max=100"`
	LateStart int `json:"late_start" validate:"min=0,max=100"`
	Gaps      int `json:"gaps" validate:"min=0,max=100"`
	Spread    int `json:"spread" validate:"min=0,max=100"`
}

// DefaultScoreWeights mirrors the slider positions new users start with.
func DefaultScoreWeights() ScoreWeights {
	return ScoreWeights{FreeDays: 80, LateStart: 50, Gaps: 40, Spread: 30}
}

// ScheduleStats is the derived weekly summary for one candidate schedule.
// All values are minutes except FreeDays.
type ScheduleStats struct {
	TotalGaps     int `json:"total_gaps"`
	FreeDays      int `json:"free_days"`
	EarliestStart int `json:"earliest_start"`
	LatestEnd     int `json:"latest_end"`
	TotalSpread   int `json:"total_spread"`
}

// GeneratedSchedule is one complete, conflict-free assignment of exactly one
// section per course. Produced only by the generator; Pinned is a UI flag the
// engine never toggles.
type GeneratedSchedule struct {
	ID         string        `json:"id"`
	SectionIDs []string      `json:"section_ids"`
	Score      int           `json:"score"`
	Stats      ScheduleStats `json:"stats"`
	Pinned     bool          `json:"pinned"`
}

// PlannerPreference persists a student's filters and weights per term.
type PlannerPreference struct {
	ID        string         `db:"id" json:"id"`
	TermID    string         `db:"term_id" json:"term_id"`
	Filters   types.JSONText `db:"filters" json:"filters"`
	Weights   types.JSONText `db:"weights" json:"weights"`
	CreatedAt time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt time.Time      `db:"updated_at" json:"updated_at"`
}
