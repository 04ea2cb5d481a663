package events_test

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"rockola/models"
	"rockola/services/events"
)

func TestHubSeedsAndBroadcasts(t *testing.T) {
	state := models.PlayerState{Credits: 2, Queue: []models.Track{}}
	hub := events.NewHub(func() models.PlayerState { return state })

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go hub.Run(ctx)

	srv := httptest.NewServer(hub)
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	// The first frame is the seeded snapshot.
	var seed struct {
		Type  string             `json:"type"`
		State models.PlayerState `json:"state"`
	}
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	if _, payload, err := conn.ReadMessage(); err != nil {
		t.Fatalf("read seed: %v", err)
	} else if err := json.Unmarshal(payload, &seed); err != nil {
		t.Fatalf("decode seed: %v", err)
	}
	if seed.Type != "playerState" || seed.State.Credits != 2 {
		t.Fatalf("bad seed frame: %+v", seed)
	}

	hub.PlayerChanged(models.PlayerState{Credits: 5, Queue: []models.Track{}})

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	if _, payload, err := conn.ReadMessage(); err != nil {
		t.Fatalf("read broadcast: %v", err)
	} else if err := json.Unmarshal(payload, &seed); err != nil {
		t.Fatalf("decode broadcast: %v", err)
	}
	if seed.State.Credits != 5 {
		t.Fatalf("broadcast state not delivered: %+v", seed)
	}
}
