package models

import "time"

// ── History Types ────────────────────────────────────────

type HistoryItem struct {
	ProblemID    string     `json:"problem_id"`
	Title        string     `json:"title"`
	Difficulty   Difficulty `json:"difficulty"`
	Passed       bool       `json:"passed"`
	AttemptCount int        `json:"attempt_count"`
	MinutesSpent int        `json:"minutes_spent"`
	AttemptedAt  time.Time  `json:"attempted_at"`
}

// ── Request Types ────────────────────────────────────────

type HistoryListRequest struct {
	Passed   *bool `json:"passed"`
	Page     int   `json:"page"`
	PageSize int   `json:"page_size"`
}

// ── Response Types ────────────────────────────────────────

type HistoryListResponse struct {
	UserID   string        `json:"user_id"`
	Attempts []HistoryItem `json:"attempts"`
	Total    int           `json:"total"`
	Page     int           `json:"page"`
	PageSize int           `json:"page_size"`
}

type HistoryStatsResponse struct {
	UserID            string              `json:"user_id"`
	TotalAttempts     int                 `json:"total_attempts"`
	TotalPassed       int                 `json:"total_passed"`
	PassRate          float64             `json:"pass_rate"`
	MinutesSpent      int                 `json:"minutes_spent"`
	ProblemsAttempted int                 `json:"problems_attempted"`
	DifficultyStats   DifficultyBreakdown `json:"difficulty_stats"`
	RecentTrend       []DailyAccuracy     `json:"recent_trend"`
}

type DifficultyBreakdown struct {
	Easy   AccuracyStat `json:"easy"`
	Medium AccuracyStat `json:"medium"`
	Hard   AccuracyStat `json:"hard"`
}

type AccuracyStat struct {
	Attempts int     `json:"attempts"`
	Passed   int     `json:"passed"`
	PassRate float64 `json:"pass_rate"`
}

type DailyAccuracy struct {
	Date     string  `json:"date"`
	Attempts int     `json:"attempts"`
	Passed   int     `json:"passed"`
	PassRate float64 `json:"pass_rate"`
}
