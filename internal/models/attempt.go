package models

import "time"

// Attempt is one recorded try at a problem. Attempts are written once at
// ingestion and never updated.
type Attempt struct {
	UserID       string    `json:"user_id"`
	ProblemID    string    `json:"problem_id"`
	Timestamp    time.Time `json:"timestamp"`
	Passed       bool      `json:"passed"`
	AttemptCount int       `json:"attempts"`
	MinutesSpent int       `json:"time_spent_minutes"`
}

// AttemptRecord is an attempt joined with the concepts and difficulty of
// the problem it was made on.
type AttemptRecord struct {
	Concepts   []string
	Passed     bool
	Timestamp  time.Time
	Difficulty Difficulty
}
