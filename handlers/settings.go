package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"rockola/config"
	"rockola/services/credits"
	"rockola/services/idle"
	"rockola/services/youtube"
)

type SettingsHandler struct {
	Manager *config.Manager

	CreditsService *credits.Service
	IdleService    *idle.Service
	YouTubeService *youtube.Service
}

func NewSettingsHandler(m *config.Manager) *SettingsHandler {
	return &SettingsHandler{Manager: m}
}

// SetCreditsService wires the ledger for pricing hot reload.
func (h *SettingsHandler) SetCreditsService(s *credits.Service) {
	h.CreditsService = s
}

// SetIdleService wires the idle scheduler for timeout hot reload.
func (h *SettingsHandler) SetIdleService(s *idle.Service) {
	h.IdleService = s
}

// SetYouTubeService wires the remote metadata client for API key reload.
func (h *SettingsHandler) SetYouTubeService(s *youtube.Service) {
	h.YouTubeService = s
}

func (h *SettingsHandler) GetSettings(w http.ResponseWriter, r *http.Request) {
	s, err := h.Manager.Load()
	if err != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(s)
}

// PutSettings merges the submitted document over the stored one, so partial
// updates and unknown keys (keyBindings and other frontend-owned state) are
// both handled by the same path.
func (h *SettingsHandler) PutSettings(w http.ResponseWriter, r *http.Request) {
	var overlay map[string]interface{}
	if err := json.NewDecoder(r.Body).Decode(&overlay); err != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
		return
	}

	s, err := h.Manager.Merge(overlay)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, config.ErrNoIdleSources) {
			status = http.StatusUnprocessableEntity
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
		return
	}

	h.reloadServices(s)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(s)
}

// reloadServices pushes the new settings into services that cache them.
func (h *SettingsHandler) reloadServices(s config.Settings) {
	if h.CreditsService != nil {
		h.CreditsService.ApplySettings(s)
		log.Printf("[settings] reloaded pricing (coin=%d, song=%d, admin=%v)", s.CreditsPerCoin, s.PricePerSong, s.AdminMode)
	}
	if h.IdleService != nil {
		h.IdleService.ApplySettings(s)
		log.Printf("[settings] reloaded idle scheduler (sources=%v)", s.IdleSources)
	}
	if h.YouTubeService != nil {
		h.YouTubeService.SetAPIKey(s.YouTubeAPIKey)
	}
}
