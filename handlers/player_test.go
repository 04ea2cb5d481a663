package handlers_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"

	"rockola/config"
	"rockola/handlers"
	"rockola/models"
	"rockola/services/credits"
	"rockola/services/player"
)

type nopHistory struct{}

func (nopHistory) RecordPlay(models.PlayRecord) error { return nil }
func (nopHistory) RecordCoin(models.CoinRecord) error { return nil }

func newPlayerRig(t *testing.T) (*mux.Router, *player.Service) {
	t.Helper()
	cfg := config.DefaultSettings()
	cfg.CreditsPerCoin = 3
	cfg.PricePerSong = 1
	cfg.AdminMode = false

	p := player.NewService(credits.NewService(cfg), nopHistory{})
	h := handlers.NewPlayerHandler(p, seededLibrary(), nil)

	r := mux.NewRouter()
	r.HandleFunc("/api/player/state", h.State).Methods(http.MethodGet)
	r.HandleFunc("/api/player/enqueue", h.Enqueue).Methods(http.MethodPost)
	r.HandleFunc("/api/player/next", h.Next).Methods(http.MethodPost)
	r.HandleFunc("/api/player/queue/{id}", h.RemoveQueued).Methods(http.MethodDelete)
	r.HandleFunc("/api/player/coin", h.Coin).Methods(http.MethodPost)
	r.HandleFunc("/api/player/pause", h.Pause).Methods(http.MethodPost)
	return r, p
}

func doJSON(t *testing.T, r *mux.Router, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	return rr
}

func TestEnqueueWithoutCredits(t *testing.T) {
	r, _ := newPlayerRig(t)

	rr := doJSON(t, r, http.MethodPost, "/api/player/enqueue", handlers.EnqueueRequest{Kind: models.TrackKindLocal, MediaID: 1})
	if rr.Code != http.StatusPaymentRequired {
		t.Fatalf("expected 402, got %d", rr.Code)
	}
	var resp handlers.EnqueueResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Status != player.EnqueueNoCredit {
		t.Fatalf("expected noCredit status, got %s", resp.Status)
	}
	if resp.State.Current != nil {
		t.Fatal("rejected selection must not mutate the player")
	}
}

func TestEnqueueFlow(t *testing.T) {
	r, _ := newPlayerRig(t)

	rr := doJSON(t, r, http.MethodPost, "/api/player/coin", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("coin: expected 200, got %d", rr.Code)
	}

	rr = doJSON(t, r, http.MethodPost, "/api/player/enqueue", handlers.EnqueueRequest{Kind: models.TrackKindLocal, MediaID: 1})
	if rr.Code != http.StatusOK {
		t.Fatalf("enqueue: expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	var resp handlers.EnqueueResponse
	json.NewDecoder(rr.Body).Decode(&resp)
	if resp.Status != player.EnqueuePlayingNow {
		t.Fatalf("expected playingNow, got %s", resp.Status)
	}
	if resp.State.Credits != 2 {
		t.Fatalf("expected 2 credits left, got %d", resp.State.Credits)
	}

	// Same id again is a duplicate and must not charge
	rr = doJSON(t, r, http.MethodPost, "/api/player/enqueue", handlers.EnqueueRequest{Kind: models.TrackKindLocal, MediaID: 1})
	if rr.Code != http.StatusConflict {
		t.Fatalf("duplicate: expected 409, got %d", rr.Code)
	}
	json.NewDecoder(rr.Body).Decode(&resp)
	if resp.State.Credits != 2 {
		t.Fatalf("duplicate must not charge, credits=%d", resp.State.Credits)
	}

	// A second selection lands in the pending queue
	rr = doJSON(t, r, http.MethodPost, "/api/player/enqueue", handlers.EnqueueRequest{Kind: models.TrackKindLocal, MediaID: 2})
	json.NewDecoder(rr.Body).Decode(&resp)
	if resp.Status != player.EnqueueAccepted || len(resp.State.Queue) != 1 {
		t.Fatalf("expected accepted with one queued, got %s / %d", resp.Status, len(resp.State.Queue))
	}

	// Advance promotes the head
	rr = doJSON(t, r, http.MethodPost, "/api/player/next", nil)
	var st models.PlayerState
	json.NewDecoder(rr.Body).Decode(&st)
	if st.Current == nil || st.Current.ID != "2" || len(st.Queue) != 0 {
		t.Fatalf("advance did not promote the head: %+v", st)
	}
}

func TestEnqueueUnknownMedia(t *testing.T) {
	r, _ := newPlayerRig(t)

	rr := doJSON(t, r, http.MethodPost, "/api/player/enqueue", handlers.EnqueueRequest{Kind: models.TrackKindLocal, MediaID: 999})
	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rr.Code)
	}
}

func TestEnqueueStreamedRequiresVideo(t *testing.T) {
	r, _ := newPlayerRig(t)

	rr := doJSON(t, r, http.MethodPost, "/api/player/enqueue", handlers.EnqueueRequest{Kind: models.TrackKindStreamed})
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
}

func TestRemoveUnknownQueued(t *testing.T) {
	r, _ := newPlayerRig(t)

	rr := doJSON(t, r, http.MethodDelete, "/api/player/queue/42", nil)
	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rr.Code)
	}
}

func TestPauseRoundTrip(t *testing.T) {
	r, _ := newPlayerRig(t)

	rr := doJSON(t, r, http.MethodPost, "/api/player/pause", map[string]bool{"paused": true})
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	var st models.PlayerState
	json.NewDecoder(rr.Body).Decode(&st)
	if !st.Paused {
		t.Fatal("expected paused state")
	}
}
