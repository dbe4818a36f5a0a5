package skills

import (
	"net/http"
	"net/url"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/practice-coach/backend/internal/models"
)

// RegisterHistoryRoutes registers the attempt history endpoints. The handler
// must have a history service set.
func (h *Handler) RegisterHistoryRoutes(r *mux.Router) {
	r.HandleFunc("/history/{user_id}", h.GetHistory).Methods("GET")
	r.HandleFunc("/history/{user_id}/stats", h.GetHistoryStats).Methods("GET")
}

func (h *Handler) GetHistory(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)["user_id"]
	query := r.URL.Query()

	req := models.HistoryListRequest{
		Passed:   queryBoolPtr(query, "passed"),
		Page:     intQueryParam(query, "page", 1),
		PageSize: intQueryParam(query, "page_size", defaultHistoryPageSize),
	}

	resp, err := h.history.GetUserHistory(r.Context(), userID, req)
	if err != nil {
		h.log.Error("GetHistory failed", "user_id", userID, "error", err)
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to get history"})
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) GetHistoryStats(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)["user_id"]

	stats, err := h.history.GetUserHistoryStats(r.Context(), userID)
	if err != nil {
		h.log.Error("GetHistoryStats failed", "user_id", userID, "error", err)
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to get history stats"})
		return
	}

	writeJSON(w, http.StatusOK, stats)
}

func intQueryParam(query url.Values, key string, defaultVal int) int {
	s := query.Get(key)
	if s == "" {
		return defaultVal
	}
	v, err := strconv.Atoi(s)
	if err != nil || v < 0 {
		return defaultVal
	}
	return v
}

func queryBoolPtr(query url.Values, key string) *bool {
	v := query.Get(key)
	if v == "" {
		return nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return nil
	}
	return &b
}
