package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"rockola/services/history"
)

type HistoryHandler struct {
	Service *history.Service
}

func NewHistoryHandler(s *history.Service) *HistoryHandler {
	return &HistoryHandler{Service: s}
}

// Recent handles GET /api/history?limit=.
func (h *HistoryHandler) Recent(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			limit = n
		}
	}
	plays, err := h.Service.Recent(r.Context(), limit)
	if err != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(plays)
}

// Coins handles GET /api/history/coins?sinceHours=, defaulting to the last
// 24 hours of drawer activity.
func (h *HistoryHandler) Coins(w http.ResponseWriter, r *http.Request) {
	hours := 24
	if raw := r.URL.Query().Get("sinceHours"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			hours = n
		}
	}
	summary, err := h.Service.CoinsSince(r.Context(), time.Now().Add(-time.Duration(hours)*time.Hour))
	if err != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(summary)
}
