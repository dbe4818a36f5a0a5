package skills

import (
	"fmt"
	"sort"

	"github.com/practice-coach/backend/internal/models"
)

const DefaultUnseenSkill = 0.5

// DefaultDifficultyBonus returns a new table nudging easier problems up
// the list.
func DefaultDifficultyBonus() map[models.Difficulty]float64 {
	return map[models.Difficulty]float64{
		models.DifficultyEasy:   0.10,
		models.DifficultyMedium: 0.05,
		models.DifficultyHard:   0.0,
	}
}

type RankerConfig struct {
	// UnseenSkill is the mastery assumed for concepts the user never tried.
	UnseenSkill     float64
	DifficultyBonus map[models.Difficulty]float64
}

func DefaultRankerConfig() RankerConfig {
	return RankerConfig{
		UnseenSkill:     DefaultUnseenSkill,
		DifficultyBonus: DefaultDifficultyBonus(),
	}
}

// Ranker orders unattempted problems by the average skill gap of their
// concepts.
type Ranker struct {
	cfg RankerConfig
}

// NewRanker copies cfg.DifficultyBonus; later changes to the caller's map
// do not affect the ranker.
func NewRanker(cfg RankerConfig) *Ranker {
	if cfg.DifficultyBonus == nil {
		cfg.DifficultyBonus = DefaultDifficultyBonus()
	} else {
		cfg.DifficultyBonus = copyTable(cfg.DifficultyBonus)
	}
	return &Ranker{cfg: cfg}
}

// Score returns avg(1 - skill) over the problem's concepts plus the
// difficulty bonus. ok is false for problems without concepts.
func (r *Ranker) Score(skills map[string]float64, p models.Problem) (score float64, ok bool) {
	if len(p.Concepts) == 0 {
		return 0, false
	}

	var totalGap float64
	for _, concept := range p.Concepts {
		skill, seen := skills[concept]
		if !seen {
			skill = r.cfg.UnseenSkill
		}
		totalGap += 1 - skill
	}
	avgGap := totalGap / float64(len(p.Concepts))

	return avgGap + r.cfg.DifficultyBonus[p.Difficulty], true
}

// Rank scores candidates and returns at most k of them, highest score
// first. Equal scores keep candidate order. A user without skills gets no
// recommendations.
func (r *Ranker) Rank(skills map[string]float64, candidates []models.Problem, k int) []models.Recommendation {
	recs := []models.Recommendation{}
	if k <= 0 || len(skills) == 0 {
		return recs
	}

	for _, p := range candidates {
		score, ok := r.Score(skills, p)
		if !ok {
			continue
		}
		recs = append(recs, models.Recommendation{
			ProblemID:  p.ProblemID,
			Title:      p.Title,
			Difficulty: p.Difficulty,
			Concepts:   p.Concepts,
			Reason:     Reason(p.Concepts[0], score),
			Score:      score,
		})
	}

	sort.SliceStable(recs, func(i, j int) bool {
		return recs[i].Score > recs[j].Score
	})

	if len(recs) > k {
		recs = recs[:k]
	}
	return recs
}

func Reason(concept string, score float64) string {
	return fmt.Sprintf("Targets weak concepts like %s. Skill gap score: %.2f", concept, score)
}
