package skills

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/practice-coach/backend/internal/models"
	"github.com/practice-coach/backend/internal/platform/logger"
)

type fakeCatalog struct {
	problems []models.Problem
	err      error
}

func (f fakeCatalog) ListProblems(context.Context) ([]models.Problem, error) {
	return f.problems, f.err
}

func newTestRouter(src Source, catalog Catalog) *mux.Router {
	h := NewHandler(newTestService(src), catalog, logger.NewNop(), 5)
	r := mux.NewRouter()
	h.RegisterRoutes(r)
	return r
}

func serve(r http.Handler, target string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func manyCandidates(n int) []models.Problem {
	out := make([]models.Problem, n)
	for i := range out {
		out[i] = problem(string(rune('a'+i)), models.DifficultyMedium, "graphs")
	}
	return out
}

func TestHandler_GetSkills(t *testing.T) {
	src := &fakeSource{
		attempts: map[string][]models.AttemptRecord{"me": {attempt(true, 0, "arrays")}},
	}
	rec := serve(newTestRouter(src, fakeCatalog{}), "/skills/me")

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var resp models.SkillsResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.UserID != "me" || resp.Skills["arrays"] != 1.0 {
		t.Errorf("unexpected response: %+v", resp)
	}
}

func TestHandler_GetSkillsUnknownUser(t *testing.T) {
	rec := serve(newTestRouter(&fakeSource{}, fakeCatalog{}), "/skills/ghost")

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	want := `{"user_id":"ghost","skills":{}}` + "\n"
	if rec.Body.String() != want {
		t.Errorf("body = %q, want %q", rec.Body.String(), want)
	}
}

func TestHandler_Recommend(t *testing.T) {
	src := &fakeSource{
		attempts: map[string][]models.AttemptRecord{"me": {attempt(false, 0, "graphs")}},
		unseen:   map[string][]models.Problem{"me": manyCandidates(8)},
	}
	router := newTestRouter(src, fakeCatalog{})

	tests := []struct {
		target string
		want   int
	}{
		{"/recommend/me", 5},
		{"/recommend/me?k=3", 3},
		{"/recommend/me?k=20", 8},
		{"/recommend/me?k=0", 0},
		{"/recommend/me?k=-2", 0},
	}

	for _, tt := range tests {
		rec := serve(router, tt.target)
		if rec.Code != http.StatusOK {
			t.Errorf("%s: status = %d, want 200", tt.target, rec.Code)
			continue
		}
		var recs []models.Recommendation
		if err := json.NewDecoder(rec.Body).Decode(&recs); err != nil {
			t.Errorf("%s: decode: %v", tt.target, err)
			continue
		}
		if recs == nil {
			t.Errorf("%s: expected a JSON array, got null", tt.target)
		}
		if len(recs) != tt.want {
			t.Errorf("%s: got %d recommendations, want %d", tt.target, len(recs), tt.want)
		}
	}
}

func TestHandler_RecommendInvalidK(t *testing.T) {
	rec := serve(newTestRouter(&fakeSource{}, fakeCatalog{}), "/recommend/me?k=lots")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestHandler_StorageFailure(t *testing.T) {
	router := newTestRouter(&fakeSource{attemptErr: errors.New("disk I/O error")}, fakeCatalog{err: errors.New("disk I/O error")})

	for _, target := range []string{"/skills/me", "/skills/me/report", "/recommend/me", "/problems"} {
		rec := serve(router, target)
		if rec.Code != http.StatusInternalServerError {
			t.Errorf("%s: status = %d, want 500", target, rec.Code)
		}
		var resp models.ErrorResponse
		if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil || resp.Error == "" {
			t.Errorf("%s: expected error body, got %q (%v)", target, rec.Body.String(), err)
		}
	}
}

func TestHandler_GetSkillReport(t *testing.T) {
	src := &fakeSource{
		attempts: map[string][]models.AttemptRecord{
			"me": {attempt(true, 0, "arrays"), attempt(false, 0, "graphs")},
		},
	}
	rec := serve(newTestRouter(src, fakeCatalog{}), "/skills/me/report")

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var resp models.SkillReportResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Skills) != 2 || resp.Skills[0].Concept != "graphs" {
		t.Errorf("unexpected report: %+v", resp)
	}
}

func TestHandler_ListProblems(t *testing.T) {
	catalog := fakeCatalog{problems: []models.Problem{
		problem("p1", models.DifficultyEasy, "arrays"),
		problem("p2", models.DifficultyHard, "graphs"),
	}}
	rec := serve(newTestRouter(&fakeSource{}, catalog), "/problems")

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var resp models.ProblemListResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Total != 2 || resp.Problems[1].Difficulty != models.DifficultyHard {
		t.Errorf("unexpected response: %+v", resp)
	}
}
