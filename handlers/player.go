package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"rockola/models"
	"rockola/services/idle"
	"rockola/services/library"
	"rockola/services/player"
)

type PlayerHandler struct {
	Player  *player.Service
	Library *library.Service
	Idle    *idle.Service
}

func NewPlayerHandler(p *player.Service, lib *library.Service, i *idle.Service) *PlayerHandler {
	return &PlayerHandler{Player: p, Library: lib, Idle: i}
}

// EnqueueRequest selects either a library entry or a remote video.
type EnqueueRequest struct {
	Kind    models.TrackKind    `json:"kind"`
	MediaID int                 `json:"mediaId,omitempty"`
	Video   *models.RemoteVideo `json:"video,omitempty"`
}

// EnqueueResponse reports the outcome together with the resulting state.
type EnqueueResponse struct {
	Status player.EnqueueStatus `json:"status"`
	State  models.PlayerState   `json:"state"`
}

// State handles GET /api/player/state.
func (h *PlayerHandler) State(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(h.Player.Snapshot())
}

// Enqueue handles POST /api/player/enqueue.
func (h *PlayerHandler) Enqueue(w http.ResponseWriter, r *http.Request) {
	var req EnqueueRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
		return
	}

	var track models.Track
	switch req.Kind {
	case models.TrackKindLocal:
		entry, ok := h.Library.EntryByID(req.MediaID)
		if !ok {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusNotFound)
			json.NewEncoder(w).Encode(map[string]string{"error": "media not found"})
			return
		}
		track = models.NewLocalTrack(entry)
	case models.TrackKindStreamed:
		if req.Video == nil || req.Video.RemoteID == "" {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(map[string]string{"error": "video with remoteId is required"})
			return
		}
		track = models.NewStreamedTrack(*req.Video)
	default:
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]string{"error": "unknown track kind"})
		return
	}

	status := h.Player.Enqueue(track)
	httpStatus := http.StatusOK
	switch status {
	case player.EnqueueDuplicate:
		httpStatus = http.StatusConflict
	case player.EnqueueNoCredit:
		httpStatus = http.StatusPaymentRequired
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(httpStatus)
	json.NewEncoder(w).Encode(EnqueueResponse{Status: status, State: h.Player.Snapshot()})
}

// Next handles POST /api/player/next, reported by the kiosk when the
// current track ends or is skipped.
func (h *PlayerHandler) Next(w http.ResponseWriter, r *http.Request) {
	h.Player.Advance()
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(h.Player.Snapshot())
}

// RemoveQueued handles DELETE /api/player/queue/{id}.
func (h *PlayerHandler) RemoveQueued(w http.ResponseWriter, r *http.Request) {
	if err := h.Player.Remove(mux.Vars(r)["id"]); err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, player.ErrTrackNotQueued) {
			status = http.StatusNotFound
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(h.Player.Snapshot())
}

// Coin handles POST /api/player/coin.
func (h *PlayerHandler) Coin(w http.ResponseWriter, r *http.Request) {
	st := h.Player.InsertCoin()
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(st)
}

// PlaybackError handles POST /api/player/error, sent when the current
// track fails to load or play. The advance happens after a grace delay.
func (h *PlayerHandler) PlaybackError(w http.ResponseWriter, r *http.Request) {
	h.Player.ReportPlaybackFailure()
	w.WriteHeader(http.StatusNoContent)
}

// Nav handles POST /api/player/nav, the kiosk's navigation heartbeat.
func (h *PlayerHandler) Nav(w http.ResponseWriter, r *http.Request) {
	if h.Idle != nil {
		h.Idle.Nav()
	}
	w.WriteHeader(http.StatusNoContent)
}

// Pause handles POST /api/player/pause with {"paused": bool}.
func (h *PlayerHandler) Pause(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Paused bool `json:"paused"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
		return
	}
	h.Player.SetPaused(req.Paused)
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(h.Player.Snapshot())
}

// Tick handles POST /api/player/tick. The kiosk calls it once per second of
// streamed playback; an optional seconds field batches missed ticks.
func (h *PlayerHandler) Tick(w http.ResponseWriter, r *http.Request) {
	seconds := 1
	if raw := r.URL.Query().Get("seconds"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 && n <= 60 {
			seconds = n
		}
	}
	for i := 0; i < seconds; i++ {
		h.Player.Tick()
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(h.Player.Snapshot())
}
