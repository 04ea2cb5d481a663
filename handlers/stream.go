package handlers

import (
	"encoding/json"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/gorilla/mux"
	"github.com/spf13/afero"

	"rockola/models"
	"rockola/services/library"
)

// mimeByExt covers the formats the scanner indexes; anything else is
// sniffed from content.
var mimeByExt = map[string]string{
	".mp3":  "audio/mpeg",
	".wav":  "audio/wav",
	".flac": "audio/flac",
	".ogg":  "audio/ogg",
	".m4a":  "audio/mp4",
	".wma":  "audio/x-ms-wma",
	".mp4":  "video/mp4",
	".avi":  "video/x-msvideo",
	".mkv":  "video/x-matroska",
	".webm": "video/webm",
	".mov":  "video/quicktime",
	".cdg":  "application/octet-stream",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".webp": "image/webp",
}

type StreamHandler struct {
	Library *library.Service
	FS      afero.Fs
}

func NewStreamHandler(lib *library.Service, fsys afero.Fs) *StreamHandler {
	return &StreamHandler{Library: lib, FS: fsys}
}

// Stream handles GET /api/media/{id}/stream with byte-range support, so the
// kiosk player can seek.
func (h *StreamHandler) Stream(w http.ResponseWriter, r *http.Request) {
	entry, ok := h.lookup(w, r)
	if !ok {
		return
	}

	f, err := h.FS.Open(entry.Path)
	if err != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(map[string]string{"error": "media file not found"})
		return
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
		return
	}

	w.Header().Set("Content-Type", contentTypeFor(entry.Path, f))
	w.Header().Set("Accept-Ranges", "bytes")
	http.ServeContent(w, r, entry.Filename, info.ModTime(), f)
}

func (h *StreamHandler) lookup(w http.ResponseWriter, r *http.Request) (models.MediaEntry, bool) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]string{"error": "invalid media id"})
		return models.MediaEntry{}, false
	}
	entry, found := h.Library.EntryByID(id)
	if !found {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(map[string]string{"error": "media not found"})
		return models.MediaEntry{}, false
	}
	return entry, true
}

// contentTypeFor resolves the content type from the extension map, falling
// back to sniffing the file head. The reader is rewound afterwards.
func contentTypeFor(path string, f afero.File) string {
	if ct, ok := mimeByExt[strings.ToLower(filepath.Ext(path))]; ok {
		return ct
	}
	mt, err := mimetype.DetectReader(f)
	if _, seekErr := f.Seek(0, 0); seekErr != nil || err != nil {
		return "application/octet-stream"
	}
	return mt.String()
}

// ServeArtwork streams a folder artwork file with a day of cache, shared by
// the cover and artist endpoints.
func serveArtwork(w http.ResponseWriter, r *http.Request, fsys afero.Fs, path string) bool {
	f, err := fsys.Open(path)
	if err != nil {
		return false
	}
	defer f.Close()
	info, err := f.Stat()
	if err != nil {
		return false
	}
	w.Header().Set("Content-Type", contentTypeFor(path, f))
	w.Header().Set("Cache-Control", "public, max-age=86400")
	http.ServeContent(w, r, filepath.Base(path), info.ModTime(), f)
	return true
}
