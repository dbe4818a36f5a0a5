package models

type Difficulty int

const (
	DifficultyEasy   Difficulty = 1
	DifficultyMedium Difficulty = 2
	DifficultyHard   Difficulty = 3
)

func (d Difficulty) String() string {
	switch d {
	case DifficultyEasy:
		return "easy"
	case DifficultyMedium:
		return "medium"
	case DifficultyHard:
		return "hard"
	default:
		return "unknown"
	}
}

// Problem is a practice problem in the catalog. Concepts keeps the order it
// was stored in; the first tag names the problem in recommendation reasons.
type Problem struct {
	ProblemID  string     `json:"problem_id"`
	Title      string     `json:"title"`
	Difficulty Difficulty `json:"difficulty"`
	Concepts   []string   `json:"concepts"`
}

type ProblemListResponse struct {
	Problems []Problem `json:"problems"`
	Total    int       `json:"total"`
}
