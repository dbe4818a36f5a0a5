package skills

import (
	"context"
	"fmt"
	"math"

	"github.com/practice-coach/backend/internal/models"
	"github.com/practice-coach/backend/internal/platform/logger"
)

const (
	defaultHistoryPageSize = 20
	maxHistoryPageSize     = 50
	recentTrendDays        = 14
)

// HistoryReader is the store side of attempt history.
type HistoryReader interface {
	AttemptHistory(ctx context.Context, userID string, passed *bool, limit, offset int) ([]models.HistoryItem, int, error)
	HistoryStats(ctx context.Context, userID string) (*models.HistoryStatsResponse, error)
}

type HistoryService struct {
	reader HistoryReader
	log    *logger.Logger
}

func NewHistoryService(reader HistoryReader, log *logger.Logger) *HistoryService {
	return &HistoryService{reader: reader, log: log.With("component", "history")}
}

// GetUserHistory returns one page of userID's attempts, newest first.
func (s *HistoryService) GetUserHistory(ctx context.Context, userID string, req models.HistoryListRequest) (*models.HistoryListResponse, error) {
	if req.Page <= 0 {
		req.Page = 1
	}
	if req.PageSize <= 0 {
		req.PageSize = defaultHistoryPageSize
	}
	if req.PageSize > maxHistoryPageSize {
		req.PageSize = maxHistoryPageSize
	}

	items, total, err := s.reader.AttemptHistory(ctx, userID, req.Passed, req.PageSize, (req.Page-1)*req.PageSize)
	if err != nil {
		return nil, fmt.Errorf("get history: %w", err)
	}
	if items == nil {
		items = []models.HistoryItem{}
	}
	return &models.HistoryListResponse{
		UserID:   userID,
		Attempts: items,
		Total:    total,
		Page:     req.Page,
		PageSize: req.PageSize,
	}, nil
}

func (s *HistoryService) GetUserHistoryStats(ctx context.Context, userID string) (*models.HistoryStatsResponse, error) {
	stats, err := s.reader.HistoryStats(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get history stats: %w", err)
	}
	stats.UserID = userID
	return stats, nil
}

// ── Store ───────────────────────────────────────────────

type historyRow struct {
	ProblemID  string `db:"problem_id"`
	Title      string `db:"title"`
	Difficulty int    `db:"difficulty"`
	Timestamp  string `db:"ts"`
	Outcome    int    `db:"outcome"`
	Attempts   int    `db:"attempts"`
	Minutes    int    `db:"minutes"`
}

type accuracyRow struct {
	Key      string `db:"bucket"`
	Attempts int    `db:"attempts"`
	Passed   int    `db:"passed"`
	Minutes  int    `db:"minutes"`
}

// AttemptHistory returns up to limit attempts of userID, newest first,
// and the total matching count. passed filters on outcome when non-nil.
func (s *Store) AttemptHistory(ctx context.Context, userID string, passed *bool, limit, offset int) ([]models.HistoryItem, int, error) {
	where := "WHERE a.user_id = ?"
	args := []interface{}{userID}
	if passed != nil {
		where += " AND a.outcome = ?"
		args = append(args, boolToOutcome(*passed))
	}

	var total int
	if err := s.db.GetContext(ctx, &total, s.db.Rebind(
		`SELECT COUNT(*) FROM attempts a `+where), args...); err != nil {
		return nil, 0, fmt.Errorf("count history: %w", err)
	}

	var rows []historyRow
	err := s.db.SelectContext(ctx, &rows, s.db.Rebind(
		`SELECT a.problem_id, COALESCE(p.title, '') AS title, COALESCE(p.difficulty, 0) AS difficulty,
		        a.ts, a.outcome, a.attempts, a.minutes
		 FROM attempts a
		 LEFT JOIN problems p ON a.problem_id = p.problem_id
		 `+where+`
		 ORDER BY a.ts DESC, a.id DESC
		 LIMIT ? OFFSET ?`),
		append(args, limit, offset)...,
	)
	if err != nil {
		return nil, 0, fmt.Errorf("get history: %w", err)
	}

	items := make([]models.HistoryItem, 0, len(rows))
	for _, r := range rows {
		ts, err := ParseTimestamp(r.Timestamp)
		if err != nil {
			return nil, 0, fmt.Errorf("get history: %w", err)
		}
		items = append(items, models.HistoryItem{
			ProblemID:    r.ProblemID,
			Title:        r.Title,
			Difficulty:   models.Difficulty(r.Difficulty),
			Passed:       r.Outcome == 1,
			AttemptCount: r.Attempts,
			MinutesSpent: r.Minutes,
			AttemptedAt:  ts,
		})
	}
	return items, total, nil
}

// HistoryStats aggregates userID's attempts overall, per difficulty and
// per day over the most recent active days.
func (s *Store) HistoryStats(ctx context.Context, userID string) (*models.HistoryStatsResponse, error) {
	stats := &models.HistoryStatsResponse{RecentTrend: []models.DailyAccuracy{}}

	var byDifficulty []accuracyRow
	err := s.db.SelectContext(ctx, &byDifficulty, s.db.Rebind(
		`SELECT CAST(COALESCE(p.difficulty, 0) AS TEXT) AS bucket,
		        COUNT(*) AS attempts,
		        COALESCE(SUM(a.outcome), 0) AS passed,
		        COALESCE(SUM(a.minutes), 0) AS minutes
		 FROM attempts a
		 LEFT JOIN problems p ON a.problem_id = p.problem_id
		 WHERE a.user_id = ?
		 GROUP BY COALESCE(p.difficulty, 0)`),
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("history stats by difficulty: %w", err)
	}

	for _, r := range byDifficulty {
		stats.TotalAttempts += r.Attempts
		stats.TotalPassed += r.Passed
		stats.MinutesSpent += r.Minutes

		stat := models.AccuracyStat{Attempts: r.Attempts, Passed: r.Passed, PassRate: passRate(r.Passed, r.Attempts)}
		switch r.Key {
		case "1":
			stats.DifficultyStats.Easy = stat
		case "2":
			stats.DifficultyStats.Medium = stat
		case "3":
			stats.DifficultyStats.Hard = stat
		}
	}
	stats.PassRate = passRate(stats.TotalPassed, stats.TotalAttempts)

	if err := s.db.GetContext(ctx, &stats.ProblemsAttempted, s.db.Rebind(
		`SELECT COUNT(DISTINCT problem_id) FROM attempts WHERE user_id = ?`), userID); err != nil {
		return nil, fmt.Errorf("history stats problems: %w", err)
	}

	var byDay []accuracyRow
	err = s.db.SelectContext(ctx, &byDay, s.db.Rebind(
		`SELECT SUBSTR(a.ts, 1, 10) AS bucket,
		        COUNT(*) AS attempts,
		        COALESCE(SUM(a.outcome), 0) AS passed,
		        COALESCE(SUM(a.minutes), 0) AS minutes
		 FROM attempts a
		 WHERE a.user_id = ?
		 GROUP BY SUBSTR(a.ts, 1, 10)
		 ORDER BY bucket DESC
		 LIMIT ?`),
		userID, recentTrendDays,
	)
	if err != nil {
		return nil, fmt.Errorf("history stats trend: %w", err)
	}

	// oldest first
	for i := len(byDay) - 1; i >= 0; i-- {
		r := byDay[i]
		stats.RecentTrend = append(stats.RecentTrend, models.DailyAccuracy{
			Date:     r.Key,
			Attempts: r.Attempts,
			Passed:   r.Passed,
			PassRate: passRate(r.Passed, r.Attempts),
		})
	}
	return stats, nil
}

func passRate(passed, total int) float64 {
	if total == 0 {
		return 0
	}
	return math.Round(float64(passed)/float64(total)*1000) / 1000
}

func boolToOutcome(passed bool) int {
	if passed {
		return 1
	}
	return 0
}
