package dto

import (
	"time"

	"github.com/uniplanner/uniplanner-api/internal/models"
)

// ScheduleFiltersRequest carries the hard constraints for a generation run.
// Minute fields are minutes from midnight.
type ScheduleFiltersRequest struct {
	EarliestStart *int     `json:"earliestStart" validate:"omitempty,min=0,max=1439"`
	LatestEnd     *int     `json:"latestEnd" validate:"omitempty,min=0,max=1439"`
	FreeDays      []string `json:"freeDays" validate:"omitempty,dive,oneof=Mon Tue Wed Thu Fri Sat Sun"`
	MaxGap        *int     `json:"maxGap" validate:"omitempty,min=0"`
	LunchBreak    bool     `json:"lunchBreak"`
	MinFreeDays   int      `json:"minFreeDays" validate:"min=0,max=5"`
}

// ToModel converts the request form into the engine filter value.
func (r ScheduleFiltersRequest) ToModel() models.ScheduleFilters {
	days := make([]models.DayOfWeek, 0, len(r.FreeDays))
	for _, day := range r.FreeDays {
		days = append(days, models.DayOfWeek(day))
	}
	return models.ScheduleFilters{
		EarliestStart: r.EarliestStart,
		LatestEnd:     r.LatestEnd,
		FreeDays:      days,
		MaxGap:        r.MaxGap,
		LunchBreak:    r.LunchBreak,
		MinFreeDays:   r.MinFreeDays,
	}
}

// ScoreWeightsRequest carries the four ranking sliders.
type ScoreWeightsRequest struct {
	FreeDays  int `json:"freeDays" validate:"min=0,max=100"`
	LateStart int `json:"lateStart" validate:"min=0,max=100"`
	Gaps      int `json:"gaps" validate:"min=0,max=100"`
	Spread    int `json:"spread" validate:"min=0,max=100"`
}

// ToModel converts the request form into the engine weight value.
func (r ScoreWeightsRequest) ToModel() models.ScoreWeights {
	return models.ScoreWeights{
		FreeDays:  r.FreeDays,
		LateStart: r.LateStart,
		Gaps:      r.Gaps,
		Spread:    r.Spread,
	}
}

// GenerateRequest asks for all conflict-free combinations of a term's courses.
type GenerateRequest struct {
	TermID     string                 `json:"termId" validate:"required"`
	Filters    ScheduleFiltersRequest `json:"filters"`
	Weights    *ScoreWeightsRequest   `json:"weights" validate:"omitempty"`
	MaxResults int                    `json:"maxResults" validate:"omitempty,min=1"`
}

// GenerateResponse returns the ranked result set.
type GenerateResponse struct {
	ResultSetID string                     `json:"resultSetId"`
	TermID      string                     `json:"termId"`
	Total       int                        `json:"total"`
	Truncated   bool                       `json:"truncated"`
	Cached      bool                       `json:"cached"`
	DurationMs  int64                      `json:"durationMs"`
	Schedules   []models.GeneratedSchedule `json:"schedules"`
}

// RescoreRequest re-ranks a stored result set under new weights.
type RescoreRequest struct {
	ResultSetID string              `json:"resultSetId" validate:"required"`
	Weights     ScoreWeightsRequest `json:"weights"`
}

// ResultSetSummary describes a stored result set without its schedules.
type ResultSetSummary struct {
	ResultSetID string    `json:"resultSetId"`
	TermID      string    `json:"termId"`
	TermName    string    `json:"termName"`
	Total       int       `json:"total"`
	Truncated   bool      `json:"truncated"`
	RequestedAt time.Time `json:"requestedAt"`
}

// ResultSetResponse is a page of schedules from a stored result set.
type ResultSetResponse struct {
	ResultSetID string                     `json:"resultSetId"`
	TermID      string                     `json:"termId"`
	Total       int                        `json:"total"`
	Truncated   bool                       `json:"truncated"`
	Schedules   []models.GeneratedSchedule `json:"schedules"`
}
