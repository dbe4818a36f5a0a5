package skills

import (
	"testing"

	"github.com/practice-coach/backend/internal/models"
)

func problem(id string, difficulty models.Difficulty, concepts ...string) models.Problem {
	return models.Problem{
		ProblemID:  id,
		Title:      "Problem " + id,
		Difficulty: difficulty,
		Concepts:   concepts,
	}
}

func TestScore(t *testing.T) {
	r := NewRanker(DefaultRankerConfig())
	skills := map[string]float64{"arrays": 1.0, "graphs": 0.2}

	tests := []struct {
		name string
		p    models.Problem
		want float64
	}{
		{"mastered easy", problem("1", models.DifficultyEasy, "arrays"), 0.10},
		{"weak hard", problem("2", models.DifficultyHard, "graphs"), 0.8},
		{"unseen medium", problem("3", models.DifficultyMedium, "dp"), 0.55},
		{"mixed concepts", problem("4", models.DifficultyHard, "arrays", "graphs"), 0.4},
		{"unknown difficulty", problem("5", 9, "graphs"), 0.8},
	}

	for _, tt := range tests {
		got, ok := r.Score(skills, tt.p)
		if !ok {
			t.Errorf("%s: expected problem to be scorable", tt.name)
			continue
		}
		if !almostEqual(got, tt.want) {
			t.Errorf("%s: Score = %f, want %f", tt.name, got, tt.want)
		}
	}
}

func TestScore_NoConcepts(t *testing.T) {
	r := NewRanker(DefaultRankerConfig())
	if _, ok := r.Score(map[string]float64{"arrays": 0.5}, problem("1", models.DifficultyEasy)); ok {
		t.Error("expected problem without concepts to be unscorable")
	}
}

func TestRank_MasteredConceptExample(t *testing.T) {
	r := NewRanker(DefaultRankerConfig())

	recs := r.Rank(map[string]float64{"arrays": 1.0},
		[]models.Problem{problem("two-sum", models.DifficultyEasy, "arrays")}, 5)

	if len(recs) != 1 {
		t.Fatalf("expected 1 recommendation, got %d", len(recs))
	}
	if !almostEqual(recs[0].Score, 0.10) {
		t.Errorf("score = %f, want 0.10", recs[0].Score)
	}
	want := "Targets weak concepts like arrays. Skill gap score: 0.10"
	if recs[0].Reason != want {
		t.Errorf("reason = %q, want %q", recs[0].Reason, want)
	}
	if recs[0].ProblemID != "two-sum" || recs[0].Title != "Problem two-sum" {
		t.Errorf("unexpected recommendation %+v", recs[0])
	}
}

func TestRank_SortedAndCapped(t *testing.T) {
	r := NewRanker(DefaultRankerConfig())
	skills := map[string]float64{"arrays": 0.9, "graphs": 0.1, "dp": 0.5}
	candidates := []models.Problem{
		problem("a", models.DifficultyHard, "arrays"), // 0.1
		problem("b", models.DifficultyHard, "graphs"), // 0.9
		problem("c", models.DifficultyEasy, "dp"),     // 0.6
		problem("d", models.DifficultyMedium, "dp"),   // 0.55
	}

	recs := r.Rank(skills, candidates, 3)
	if len(recs) != 3 {
		t.Fatalf("expected 3 recommendations, got %d", len(recs))
	}

	wantOrder := []string{"b", "c", "d"}
	for i, id := range wantOrder {
		if recs[i].ProblemID != id {
			t.Errorf("position %d: got %s, want %s", i, recs[i].ProblemID, id)
		}
	}
	for i := 1; i < len(recs); i++ {
		if recs[i].Score > recs[i-1].Score {
			t.Errorf("recommendations not sorted: %f before %f", recs[i-1].Score, recs[i].Score)
		}
	}
}

func TestRank_TiesKeepCandidateOrder(t *testing.T) {
	r := NewRanker(DefaultRankerConfig())
	skills := map[string]float64{"arrays": 0.4}
	candidates := []models.Problem{
		problem("first", models.DifficultyMedium, "arrays"),
		problem("second", models.DifficultyMedium, "arrays"),
		problem("third", models.DifficultyMedium, "arrays"),
	}

	recs := r.Rank(skills, candidates, 2)
	if len(recs) != 2 {
		t.Fatalf("expected 2 recommendations, got %d", len(recs))
	}
	if recs[0].ProblemID != "first" || recs[1].ProblemID != "second" {
		t.Errorf("tie order = [%s %s], want [first second]", recs[0].ProblemID, recs[1].ProblemID)
	}
}

func TestRank_SkipsProblemsWithoutConcepts(t *testing.T) {
	r := NewRanker(DefaultRankerConfig())
	skills := map[string]float64{"arrays": 0.0}
	candidates := []models.Problem{
		problem("empty", models.DifficultyEasy),
		problem("arr", models.DifficultyHard, "arrays"),
	}

	for _, k := range []int{1, 2, 10} {
		recs := r.Rank(skills, candidates, k)
		if len(recs) != 1 {
			t.Errorf("k=%d: expected 1 recommendation, got %d", k, len(recs))
		}
		for _, rec := range recs {
			if rec.ProblemID == "empty" {
				t.Errorf("k=%d: problem without concepts was recommended", k)
			}
		}
	}
}

func TestRank_DegenerateInputs(t *testing.T) {
	r := NewRanker(DefaultRankerConfig())
	candidates := []models.Problem{problem("a", models.DifficultyEasy, "arrays")}

	tests := []struct {
		name   string
		skills map[string]float64
		k      int
	}{
		{"no skills", map[string]float64{}, 5},
		{"nil skills", nil, 5},
		{"zero k", map[string]float64{"arrays": 0.5}, 0},
		{"negative k", map[string]float64{"arrays": 0.5}, -3},
	}

	for _, tt := range tests {
		recs := r.Rank(tt.skills, candidates, tt.k)
		if recs == nil {
			t.Errorf("%s: expected empty slice, got nil", tt.name)
		}
		if len(recs) != 0 {
			t.Errorf("%s: expected no recommendations, got %d", tt.name, len(recs))
		}
	}
}

func TestRank_FewerCandidatesThanK(t *testing.T) {
	r := NewRanker(DefaultRankerConfig())
	recs := r.Rank(map[string]float64{"arrays": 0.5},
		[]models.Problem{problem("a", models.DifficultyEasy, "arrays"), problem("b", models.DifficultyHard, "dp")}, 10)
	if len(recs) != 2 {
		t.Errorf("expected 2 recommendations, got %d", len(recs))
	}
}

func TestRank_CustomConfig(t *testing.T) {
	r := NewRanker(RankerConfig{
		UnseenSkill:     0.0,
		DifficultyBonus: map[models.Difficulty]float64{models.DifficultyHard: 0.3},
	})

	got, _ := r.Score(map[string]float64{"arrays": 1.0}, problem("a", models.DifficultyHard, "dp"))
	if !almostEqual(got, 1.3) {
		t.Errorf("Score = %f, want 1.3", got)
	}
}

func TestReason(t *testing.T) {
	got := Reason("graphs", 0.876)
	want := "Targets weak concepts like graphs. Skill gap score: 0.88"
	if got != want {
		t.Errorf("Reason = %q, want %q", got, want)
	}
}

func TestNewRanker_OwnsBonusTable(t *testing.T) {
	cfg := DefaultRankerConfig()
	r := NewRanker(cfg)
	cfg.DifficultyBonus[models.DifficultyEasy] = 5

	score, _ := r.Score(map[string]float64{"arrays": 1.0}, problem("p", models.DifficultyEasy, "arrays"))
	if !almostEqual(score, 0.10) {
		t.Errorf("score after caller mutation = %f, want 0.10", score)
	}

	DefaultDifficultyBonus()[models.DifficultyEasy] = 5
	if got := DefaultDifficultyBonus()[models.DifficultyEasy]; got != 0.10 {
		t.Errorf("DefaultDifficultyBonus()[easy] = %f, want 0.10", got)
	}
	if got := DefaultRankerConfig().DifficultyBonus[models.DifficultyEasy]; got != 0.10 {
		t.Errorf("DefaultRankerConfig bonus[easy] = %f, want 0.10", got)
	}
}
