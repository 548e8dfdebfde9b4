package dto

// SavePreferenceRequest stores the student's filters and weights for a term.
type SavePreferenceRequest struct {
	TermID  string                 `json:"termId" validate:"required"`
	Filters ScheduleFiltersRequest `json:"filters"`
	Weights ScoreWeightsRequest    `json:"weights"`
}

// PreferenceResponse returns stored planner preferences.
type PreferenceResponse struct {
	TermID  string                 `json:"termId"`
	Filters ScheduleFiltersRequest `json:"filters"`
	Weights ScoreWeightsRequest    `json:"weights"`
}
