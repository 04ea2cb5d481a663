package handlers

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"

	"rockola/config"
	"rockola/models"
	"rockola/services/indexer"
	"rockola/services/library"
)

type MediaHandler struct {
	Library *library.Service
	Indexer *indexer.Service
	Manager *config.Manager
}

func NewMediaHandler(lib *library.Service, idx *indexer.Service, m *config.Manager) *MediaHandler {
	return &MediaHandler{Library: lib, Indexer: idx, Manager: m}
}

// Search handles GET /api/media with type, genre, artist, search and limit
// query parameters.
func (h *MediaHandler) Search(w http.ResponseWriter, r *http.Request) {
	q := models.SearchQuery{
		Type:   models.MediaType(r.URL.Query().Get("type")),
		Genre:  r.URL.Query().Get("genre"),
		Artist: r.URL.Query().Get("artist"),
		Text:   r.URL.Query().Get("search"),
	}
	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 0 {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(map[string]string{"error": "invalid limit"})
			return
		}
		q.Limit = limit
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(h.Library.Search(q))
}

// Genres handles GET /api/media/genres.
func (h *MediaHandler) Genres(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(h.Library.Genres())
}

// Artists handles GET /api/media/artists. The genre parameter is optional;
// without it the whole audio catalog is aggregated.
func (h *MediaHandler) Artists(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(h.Library.Artists(r.URL.Query().Get("genre")))
}

// Rescan handles POST /api/media/rescan: walks the configured roots and
// swaps the catalog in whole.
func (h *MediaHandler) Rescan(w http.ResponseWriter, r *http.Request) {
	cfg, err := h.Manager.Load()
	if err != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
		return
	}

	entries, err := h.Indexer.Scan(r.Context(), indexer.RootsFromSettings(cfg))
	if err != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
		return
	}
	h.Library.Replace(entries)
	log.Printf("[media] rescan complete: %d entries", len(entries))

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]int{"entries": len(entries)})
}
