package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/dhowden/tag"
	"github.com/spf13/afero"

	"rockola/models"
	"rockola/services/library"
)

type CoverHandler struct {
	Library *library.Service
	FS      afero.Fs
}

func NewCoverHandler(lib *library.Service, fsys afero.Fs) *CoverHandler {
	return &CoverHandler{Library: lib, FS: fsys}
}

// Cover handles GET /api/media/{id}/cover. Embedded tag artwork wins over
// the folder image.
func (h *CoverHandler) Cover(w http.ResponseWriter, r *http.Request) {
	sh := StreamHandler{Library: h.Library, FS: h.FS}
	entry, ok := sh.lookup(w, r)
	if !ok {
		return
	}

	if entry.Type == models.MediaTypeAudio && h.serveEmbedded(w, entry.Path) {
		return
	}
	if entry.Artwork != "" && serveArtwork(w, r, h.FS, entry.Artwork) {
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusNotFound)
	json.NewEncoder(w).Encode(map[string]string{"error": "no cover available"})
}

// serveEmbedded writes the picture embedded in the file's tags, if any.
func (h *CoverHandler) serveEmbedded(w http.ResponseWriter, path string) bool {
	f, err := h.FS.Open(path)
	if err != nil {
		return false
	}
	defer f.Close()

	meta, err := tag.ReadFrom(f)
	if err != nil {
		return false
	}
	pic := meta.Picture()
	if pic == nil || len(pic.Data) == 0 {
		return false
	}

	ct := pic.MIMEType
	if ct == "" {
		ct = http.DetectContentType(pic.Data)
	}
	w.Header().Set("Content-Type", ct)
	w.Header().Set("Cache-Control", "public, max-age=86400")
	w.Write(pic.Data)
	return true
}
