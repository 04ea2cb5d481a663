package handlers_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/gorilla/mux"
	"github.com/spf13/afero"

	"rockola/config"
	"rockola/handlers"
	"rockola/models"
	"rockola/services/indexer"
	"rockola/services/library"
)

func seededLibrary() *library.Service {
	lib := library.NewService()
	lib.Replace([]models.MediaEntry{
		{ID: 1, Type: models.MediaTypeAudio, Genre: "Cumbia", Artist: "Grupo5", Title: "Cariñito", Filename: "106 - Grupo5 - Cariñito.mp3", Path: "/music/Cumbia/106 - Grupo5 - Cariñito.mp3"},
		{ID: 2, Type: models.MediaTypeAudio, Genre: "Rock", Artist: "Soda Stereo", Title: "Persiana Americana", Filename: "Soda Stereo - Persiana Americana.mp3", Path: "/music/Rock/Soda Stereo - Persiana Americana.mp3"},
		{ID: 3, Type: models.MediaTypeVideo, Genre: "Salsa", Artist: models.ArtistUnknown, Title: "Llorarás", Filename: "Llorarás.mp4", Path: "/video/Salsa/Llorarás.mp4"},
	})
	return lib
}

func TestMediaSearchFilters(t *testing.T) {
	h := handlers.NewMediaHandler(seededLibrary(), nil, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/media?type=audio&genre=Cumbia", nil)
	rr := httptest.NewRecorder()
	h.Search(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	var got []models.MediaEntry
	if err := json.NewDecoder(rr.Body).Decode(&got); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(got) != 1 || got[0].Title != "Cariñito" {
		t.Fatalf("unexpected results: %+v", got)
	}
}

func TestMediaSearchRejectsBadLimit(t *testing.T) {
	h := handlers.NewMediaHandler(seededLibrary(), nil, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/media?limit=bogus", nil)
	rr := httptest.NewRecorder()
	h.Search(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
}

func TestMediaArtistsGenreOptional(t *testing.T) {
	h := handlers.NewMediaHandler(seededLibrary(), nil, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/media/artists", nil)
	rr := httptest.NewRecorder()
	h.Artists(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	var got []models.ArtistSummary
	if err := json.NewDecoder(rr.Body).Decode(&got); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	// Audio artists across every genre; the video entry and the unknown
	// sentinel don't count.
	if len(got) != 2 {
		t.Fatalf("expected 2 artists, got %+v", got)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/media/artists?genre=Cumbia", nil)
	rr = httptest.NewRecorder()
	h.Artists(rr, req)
	if err := json.NewDecoder(rr.Body).Decode(&got); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(got) != 1 || got[0].Name != "Grupo5" {
		t.Fatalf("genre filter failed: %+v", got)
	}
}

func TestMediaRescanSwapsCatalog(t *testing.T) {
	fsys := afero.NewMemMapFs()
	afero.WriteFile(fsys, "/music/Cumbia/01 - Armonía 10 - Vete.mp3", []byte("x"), 0644)
	afero.WriteFile(fsys, "/music/Cumbia/02 - Armonía 10 - Mujer.mp3", []byte("x"), 0644)

	manager := config.NewManager(filepath.Join(t.TempDir(), "settings.json"))
	if _, err := manager.Load(); err != nil {
		t.Fatalf("load settings: %v", err)
	}
	if _, err := manager.Merge(map[string]interface{}{
		"audioPath":   "/music",
		"videoPath":   "",
		"karaokePath": "",
	}); err != nil {
		t.Fatalf("merge settings: %v", err)
	}

	lib := library.NewService()
	h := handlers.NewMediaHandler(lib, indexer.NewService(fsys), manager)

	r := mux.NewRouter()
	r.HandleFunc("/api/media/rescan", h.Rescan).Methods(http.MethodPost)

	req := httptest.NewRequest(http.MethodPost, "/api/media/rescan", nil)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	var resp map[string]int
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp["entries"] != 2 {
		t.Fatalf("expected 2 entries, got %d", resp["entries"])
	}
	if count, _ := lib.Count(); count != 2 {
		t.Fatalf("library not swapped, count=%d", count)
	}
}
