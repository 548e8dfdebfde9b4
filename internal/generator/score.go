package generator

import (
	"math"
	"sort"

	"github.com/uniplanner/uniplanner-api/internal/models"
)

// ScoreConfig holds the policy constants behind the four weight sliders.
// A ceiling is the per-unit coefficient a slider reaches at 100; the slider
// value scales linearly towards it. BaselineStartMinute is the start-of-day
// reference for the late-start bonus.
type ScoreConfig struct {
	BaselineStartMinute int
	FreeDayCeiling      float64
	LateStartCeiling    float64
	GapCeiling          float64
	SpreadCeiling       float64
}

// DefaultScoreConfig returns ceilings calibrated so the default sliders
// (80/50/40/30) yield +100 per free day, +2 per minute started after 08:00,
// -0.5 per gap minute and -0.3 per spread minute.
func DefaultScoreConfig() ScoreConfig {
	return ScoreConfig{
		BaselineStartMinute: 480,
		FreeDayCeiling:      125,
		LateStartCeiling:    4,
		GapCeiling:          1.25,
		SpreadCeiling:       1,
	}
}

func (c ScoreConfig) withDefaults() ScoreConfig {
	def := DefaultScoreConfig()
	if c.BaselineStartMinute <= 0 {
		c.BaselineStartMinute = def.BaselineStartMinute
	}
	if c.FreeDayCeiling <= 0 {
		c.FreeDayCeiling = def.FreeDayCeiling
	}
	if c.LateStartCeiling <= 0 {
		c.LateStartCeiling = def.LateStartCeiling
	}
	if c.GapCeiling <= 0 {
		c.GapCeiling = def.GapCeiling
	}
	if c.SpreadCeiling <= 0 {
		c.SpreadCeiling = def.SpreadCeiling
	}
	return c
}

// coefficients is the slider set rescaled to per-unit values.
type coefficients struct {
	freeDay   float64
	lateStart float64
	gap       float64
	spread    float64
}

func (c ScoreConfig) coefficients(weights models.ScoreWeights) coefficients {
	return coefficients{
		freeDay:   float64(clampSlider(weights.FreeDays)) / 100 * c.FreeDayCeiling,
		lateStart: float64(clampSlider(weights.LateStart)) / 100 * c.LateStartCeiling,
		gap:       float64(clampSlider(weights.Gaps)) / 100 * c.GapCeiling,
		spread:    float64(clampSlider(weights.Spread)) / 100 * c.SpreadCeiling,
	}
}

func clampSlider(v int) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

// score reduces a stats tuple to a single integer under the given
// coefficients. Free days and late starts reward, gaps and spread penalise.
func (e *Engine) score(stats models.ScheduleStats, coefs coefficients) int {
	total := float64(stats.FreeDays) * coefs.freeDay

	if late := stats.EarliestStart - e.cfg.Score.BaselineStartMinute; late > 0 {
		total += float64(late) * coefs.lateStart
	}

	total -= float64(stats.TotalGaps) * coefs.gap
	total -= float64(stats.TotalSpread) * coefs.spread

	return int(math.Round(total))
}

// Score computes the weighted score for a stats tuple.
func (e *Engine) Score(stats models.ScheduleStats, weights models.ScoreWeights) int {
	return e.score(stats, e.cfg.Score.coefficients(weights))
}

// Rescore recomputes scores from the retained stats of previously generated
// schedules and returns the list re-sorted by descending score. The search is
// not re-run and stats are untouched; pin flags survive. The input slice is
// not mutated.
func (e *Engine) Rescore(schedules []models.GeneratedSchedule, weights models.ScoreWeights) []models.GeneratedSchedule {
	coefs := e.cfg.Score.coefficients(weights)
	rescored := make([]models.GeneratedSchedule, len(schedules))
	for i, sched := range schedules {
		sched.Score = e.score(sched.Stats, coefs)
		rescored[i] = sched
	}
	sortByScore(rescored)
	return rescored
}

// sortByScore orders schedules by descending score, stable on prior order.
func sortByScore(schedules []models.GeneratedSchedule) {
	sort.SliceStable(schedules, func(i, j int) bool {
		return schedules[i].Score > schedules[j].Score
	})
}
