package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"rockola/services/events"
	"rockola/services/idle"
	"rockola/services/library"
)

type HealthHandler struct {
	Library *library.Service
	Idle    *idle.Service
	Hub     *events.Hub
}

func NewHealthHandler(lib *library.Service, i *idle.Service, hub *events.Hub) *HealthHandler {
	return &HealthHandler{Library: lib, Idle: i, Hub: hub}
}

// Health handles GET /api/health.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	count, scannedAt := h.Library.Count()
	resp := map[string]interface{}{
		"status": "ok",
		"library": map[string]interface{}{
			"entries":   count,
			"scannedAt": scannedAt.Format(time.RFC3339),
		},
	}
	if h.Idle != nil {
		resp["idleState"] = h.Idle.State()
	}
	if h.Hub != nil {
		resp["screens"] = h.Hub.ClientCount()
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}
