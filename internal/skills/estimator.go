package skills

import (
	"math"
	"time"

	"github.com/practice-coach/backend/internal/models"
)

const (
	DefaultHalfLifeDays = 30.0
)

// DefaultDifficultyWeights returns a new table scaling an attempt by how
// hard its problem was. Only used when the estimator runs with
// DifficultyWeighted.
func DefaultDifficultyWeights() map[models.Difficulty]float64 {
	return map[models.Difficulty]float64{
		models.DifficultyEasy:   1.0,
		models.DifficultyMedium: 1.5,
		models.DifficultyHard:   2.0,
	}
}

func copyTable(table map[models.Difficulty]float64) map[models.Difficulty]float64 {
	out := make(map[models.Difficulty]float64, len(table))
	for d, v := range table {
		out[d] = v
	}
	return out
}

// WeightStrategy turns an attempt's recency weight into the weight the
// attempt contributes to each of its concepts.
type WeightStrategy func(rec models.AttemptRecord, recency float64) float64

// RecencyOnly weighs attempts by recency alone.
func RecencyOnly(_ models.AttemptRecord, recency float64) float64 {
	return recency
}

// DifficultyWeighted multiplies recency by the difficulty factor from table.
// Difficulties missing from the table count as 1.0. table is copied.
func DifficultyWeighted(table map[models.Difficulty]float64) WeightStrategy {
	table = copyTable(table)
	return func(rec models.AttemptRecord, recency float64) float64 {
		factor, ok := table[rec.Difficulty]
		if !ok {
			factor = 1.0
		}
		return factor * recency
	}
}

type EstimatorConfig struct {
	// HalfLifeDays is the age at which an attempt counts half as much as
	// one made today.
	HalfLifeDays float64
	// ClampFuture treats attempts dated after now as made today. When false
	// they get a weight above 1.
	ClampFuture bool
	Weight      WeightStrategy
}

func DefaultEstimatorConfig() EstimatorConfig {
	return EstimatorConfig{
		HalfLifeDays: DefaultHalfLifeDays,
		ClampFuture:  true,
		Weight:       RecencyOnly,
	}
}

// Estimator computes per-concept mastery as a recency-weighted pass rate.
type Estimator struct {
	cfg EstimatorConfig
}

func NewEstimator(cfg EstimatorConfig) *Estimator {
	if cfg.HalfLifeDays <= 0 {
		cfg.HalfLifeDays = DefaultHalfLifeDays
	}
	if cfg.Weight == nil {
		cfg.Weight = RecencyOnly
	}
	return &Estimator{cfg: cfg}
}

// DaysAgo returns the whole days elapsed between ts and now, rounded down.
// It is negative for timestamps after now.
func DaysAgo(now, ts time.Time) int {
	return int(math.Floor(now.Sub(ts).Hours() / 24))
}

// RecencyWeight returns exp(-ln2 * daysAgo / halfLife): 1.0 today, 0.5 at
// one half-life.
func (e *Estimator) RecencyWeight(daysAgo int) float64 {
	if daysAgo < 0 && e.cfg.ClampFuture {
		daysAgo = 0
	}
	return math.Exp(-math.Ln2 * float64(daysAgo) / e.cfg.HalfLifeDays)
}

// Estimate returns concept -> mastery in [0,1], rounded to 3 decimals.
// Concepts that no attempt references are absent from the result.
func (e *Estimator) Estimate(records []models.AttemptRecord, now time.Time) map[string]float64 {
	result := make(map[string]float64)
	if len(records) == 0 {
		return result
	}

	scoreSum := make(map[string]float64)
	weightSum := make(map[string]float64)

	for _, rec := range records {
		recency := e.RecencyWeight(DaysAgo(now, rec.Timestamp))
		weight := e.cfg.Weight(rec, recency)

		var outcome float64
		if rec.Passed {
			outcome = 1.0
		}

		for _, concept := range rec.Concepts {
			scoreSum[concept] += outcome * weight
			weightSum[concept] += weight
		}
	}

	for concept, total := range scoreSum {
		w := weightSum[concept]
		if w <= 0 {
			continue
		}
		result[concept] = round3(total / w)
	}
	return result
}

func round3(x float64) float64 {
	return math.Round(x*1000) / 1000
}
