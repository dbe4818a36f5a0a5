package skills

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/practice-coach/backend/internal/models"
	"github.com/practice-coach/backend/internal/platform/logger"
)

// Catalog lists every problem in the store.
type Catalog interface {
	ListProblems(ctx context.Context) ([]models.Problem, error)
}

type Handler struct {
	service  *Service
	history  *HistoryService
	catalog  Catalog
	log      *logger.Logger
	defaultK int
}

func NewHandler(service *Service, catalog Catalog, log *logger.Logger, defaultK int) *Handler {
	if defaultK <= 0 {
		defaultK = 5
	}
	return &Handler{
		service:  service,
		catalog:  catalog,
		log:      log.With("component", "handler"),
		defaultK: defaultK,
	}
}

// SetHistoryService enables the attempt history endpoints.
func (h *Handler) SetHistoryService(hs *HistoryService) {
	h.history = hs
}

func (h *Handler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/skills/{user_id}", h.GetSkills).Methods("GET")
	r.HandleFunc("/skills/{user_id}/report", h.GetSkillReport).Methods("GET")
	r.HandleFunc("/recommend/{user_id}", h.Recommend).Methods("GET")
	r.HandleFunc("/problems", h.ListProblems).Methods("GET")
}

func (h *Handler) GetSkills(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)["user_id"]

	skills, err := h.service.EstimateSkills(r.Context(), userID)
	if err != nil {
		h.log.Error("GetSkills failed", "user_id", userID, "error", err)
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, models.SkillsResponse{UserID: userID, Skills: skills})
}

func (h *Handler) GetSkillReport(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)["user_id"]

	report, err := h.service.SkillReport(r.Context(), userID)
	if err != nil {
		h.log.Error("GetSkillReport failed", "user_id", userID, "error", err)
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, models.SkillReportResponse{UserID: userID, Skills: report})
}

func (h *Handler) Recommend(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)["user_id"]

	k := h.defaultK
	if s := r.URL.Query().Get("k"); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "k must be an integer"})
			return
		}
		k = v
	}

	recs, err := h.service.Recommend(r.Context(), userID, k)
	if err != nil {
		h.log.Error("Recommend failed", "user_id", userID, "k", k, "error", err)
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, recs)
}

func (h *Handler) ListProblems(w http.ResponseWriter, r *http.Request) {
	problems, err := h.catalog.ListProblems(r.Context())
	if err != nil {
		h.log.Error("ListProblems failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to list problems"})
		return
	}

	writeJSON(w, http.StatusOK, models.ProblemListResponse{Problems: problems, Total: len(problems)})
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
