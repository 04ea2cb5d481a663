package handlers_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"rockola/config"
	"rockola/handlers"
)

func newSettingsHandler(t *testing.T) *handlers.SettingsHandler {
	t.Helper()
	manager := config.NewManager(filepath.Join(t.TempDir(), "settings.json"))
	if _, err := manager.Load(); err != nil {
		t.Fatalf("load settings: %v", err)
	}
	return handlers.NewSettingsHandler(manager)
}

func TestPutSettingsMergesPartialUpdate(t *testing.T) {
	h := newSettingsHandler(t)

	body := bytes.NewBufferString(`{"creditsPerCoin": 5, "keyBindings": {"coin": "F9"}}`)
	req := httptest.NewRequest(http.MethodPut, "/api/settings", body)
	rr := httptest.NewRecorder()
	h.PutSettings(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	var s config.Settings
	if err := json.NewDecoder(rr.Body).Decode(&s); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if s.CreditsPerCoin != 5 {
		t.Fatalf("expected creditsPerCoin 5, got %d", s.CreditsPerCoin)
	}

	// The untouched fields keep their defaults
	getReq := httptest.NewRequest(http.MethodGet, "/api/settings", nil)
	getRR := httptest.NewRecorder()
	h.GetSettings(getRR, getReq)
	var after config.Settings
	if err := json.NewDecoder(getRR.Body).Decode(&after); err != nil {
		t.Fatalf("decode settings: %v", err)
	}
	if after.PricePerSong != config.DefaultSettings().PricePerSong {
		t.Fatalf("partial update clobbered pricePerSong: %d", after.PricePerSong)
	}
}

func TestPutSettingsRejectsEmptyIdleSources(t *testing.T) {
	h := newSettingsHandler(t)

	body := bytes.NewBufferString(`{"idleSources": []}`)
	req := httptest.NewRequest(http.MethodPut, "/api/settings", body)
	rr := httptest.NewRecorder()
	h.PutSettings(rr, req)

	if rr.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", rr.Code)
	}
}

func TestPutSettingsRejectsMalformedBody(t *testing.T) {
	h := newSettingsHandler(t)

	req := httptest.NewRequest(http.MethodPut, "/api/settings", bytes.NewBufferString("{"))
	rr := httptest.NewRecorder()
	h.PutSettings(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
}
