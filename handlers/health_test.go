package handlers_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"rockola/handlers"
)

func TestHealthReportsLibraryCount(t *testing.T) {
	h := handlers.NewHealthHandler(seededLibrary(), nil, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	rr := httptest.NewRecorder()
	h.Health(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	var resp struct {
		Status  string `json:"status"`
		Library struct {
			Entries int `json:"entries"`
		} `json:"library"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Status != "ok" || resp.Library.Entries != 3 {
		t.Fatalf("unexpected health payload: %+v", resp)
	}
}
