package models

// ── Skill Types ──────────────────────────────────────────

type ConceptSkill struct {
	Concept string  `json:"concept"`
	Mastery float64 `json:"mastery"`
}

type Recommendation struct {
	ProblemID  string     `json:"problem_id"`
	Title      string     `json:"title"`
	Difficulty Difficulty `json:"difficulty"`
	Concepts   []string   `json:"concepts"`
	Reason     string     `json:"reason"`
	Score      float64    `json:"score"`
}

// ── Response Types ───────────────────────────────────────

type SkillsResponse struct {
	UserID string             `json:"user_id"`
	Skills map[string]float64 `json:"skills"`
}

type SkillReportResponse struct {
	UserID string         `json:"user_id"`
	Skills []ConceptSkill `json:"skills"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}
