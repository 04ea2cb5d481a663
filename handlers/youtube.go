package handlers

import (
	"encoding/json"
	"net/http"

	"rockola/services/youtube"
)

type YouTubeHandler struct {
	Service *youtube.Service
}

func NewYouTubeHandler(s *youtube.Service) *YouTubeHandler {
	return &YouTubeHandler{Service: s}
}

// Trending handles GET /api/youtube/trending.
func (h *YouTubeHandler) Trending(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(h.Service.Trending(r.Context()))
}

// Search handles GET /api/youtube/search?q=.
func (h *YouTubeHandler) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	if q == "" {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]string{"error": "q parameter is required"})
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(h.Service.Search(r.Context(), q))
}

// Suggest handles GET /api/youtube/suggest?q=.
func (h *YouTubeHandler) Suggest(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(h.Service.Suggest(r.Context(), r.URL.Query().Get("q")))
}
