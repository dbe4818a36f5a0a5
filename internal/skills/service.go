package skills

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/practice-coach/backend/internal/config"
	"github.com/practice-coach/backend/internal/models"
	"github.com/practice-coach/backend/internal/platform/logger"
)

// Source is the read side of the attempt/problem store.
type Source interface {
	FetchAttemptsWithConcepts(ctx context.Context, userID string) ([]models.AttemptRecord, error)
	FetchUnattemptedProblems(ctx context.Context, userID string) ([]models.Problem, error)
}

type Service struct {
	source    Source
	estimator *Estimator
	ranker    *Ranker
	log       *logger.Logger
	now       func() time.Time
}

func NewService(source Source, estimator *Estimator, ranker *Ranker, log *logger.Logger) *Service {
	return &Service{
		source:    source,
		estimator: estimator,
		ranker:    ranker,
		log:       log.With("component", "skills"),
		now:       time.Now,
	}
}

// NewServiceFromConfig builds the estimator and ranker from scoring settings.
func NewServiceFromConfig(source Source, sc config.ScoringConfig, log *logger.Logger) *Service {
	estCfg := EstimatorConfig{
		HalfLifeDays: sc.HalfLifeDays,
		ClampFuture:  sc.ClampFutureAttempts,
		Weight:       RecencyOnly,
	}
	if sc.Weighting == config.WeightingDifficulty {
		estCfg.Weight = DifficultyWeighted(sc.DifficultyWeights)
	}

	log.Info("skills service configured",
		"half_life_days", sc.HalfLifeDays,
		"clamp_future", sc.ClampFutureAttempts,
		"weighting", sc.Weighting,
		"unseen_skill", sc.UnseenSkill,
	)

	return NewService(source,
		NewEstimator(estCfg),
		NewRanker(RankerConfig{UnseenSkill: sc.UnseenSkill, DifficultyBonus: sc.DifficultyBonus}),
		log,
	)
}

// SetClock replaces the time source used to stamp each request.
func (s *Service) SetClock(now func() time.Time) {
	s.now = now
}

// EstimateSkills returns concept -> mastery for userID. Users without
// attempts get an empty map.
func (s *Service) EstimateSkills(ctx context.Context, userID string) (map[string]float64, error) {
	return s.estimateAt(ctx, userID, s.now())
}

func (s *Service) estimateAt(ctx context.Context, userID string, now time.Time) (map[string]float64, error) {
	records, err := s.source.FetchAttemptsWithConcepts(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("estimate skills: %w", err)
	}
	skills := s.estimator.Estimate(records, now)
	s.log.Debug("skills estimated", "user_id", userID, "attempts", len(records), "concepts", len(skills))
	return skills, nil
}

// Recommend returns up to k unattempted problems for userID, weakest
// concepts first. Users without history get no recommendations.
func (s *Service) Recommend(ctx context.Context, userID string, k int) ([]models.Recommendation, error) {
	if k <= 0 {
		return []models.Recommendation{}, nil
	}

	skills, err := s.estimateAt(ctx, userID, s.now())
	if err != nil {
		return nil, err
	}
	if len(skills) == 0 {
		return []models.Recommendation{}, nil
	}

	candidates, err := s.source.FetchUnattemptedProblems(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("recommend: %w", err)
	}

	recs := s.ranker.Rank(skills, candidates, k)
	s.log.Debug("recommendations ranked", "user_id", userID, "candidates", len(candidates), "returned", len(recs))
	return recs, nil
}

// SkillReport returns the user's skills ordered weakest first, ties broken
// by concept name.
func (s *Service) SkillReport(ctx context.Context, userID string) ([]models.ConceptSkill, error) {
	skills, err := s.EstimateSkills(ctx, userID)
	if err != nil {
		return nil, err
	}

	report := make([]models.ConceptSkill, 0, len(skills))
	for concept, mastery := range skills {
		report = append(report, models.ConceptSkill{Concept: concept, Mastery: mastery})
	}
	sort.Slice(report, func(i, j int) bool {
		if report[i].Mastery != report[j].Mastery {
			return report[i].Mastery < report[j].Mastery
		}
		return report[i].Concept < report[j].Concept
	})
	return report, nil
}
