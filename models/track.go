package models

import (
	"strconv"

	"github.com/google/uuid"
)

// TrackKind discriminates the playable track variants.
type TrackKind string

const (
	TrackKindLocal    TrackKind = "local"    // file from the indexed library
	TrackKindStreamed TrackKind = "streamed" // remote video, metered by time
	TrackKindFiller   TrackKind = "filler"   // injected by the idle scheduler
)

// Track is a queued playable item. Kind selects which reference fields are
// populated: local and filler tracks carry a library entry, streamed and
// filler tracks may carry a remote id instead.
type Track struct {
	ID     string    `json:"id"`
	Kind   TrackKind `json:"kind"`
	Title  string    `json:"title"`
	Artist string    `json:"artist,omitempty"`

	// Library-backed fields.
	MediaID   int       `json:"mediaId,omitempty"`
	MediaType MediaType `json:"mediaType,omitempty"`
	Path      string    `json:"path,omitempty"`
	Artwork   string    `json:"artwork,omitempty"`
	Duration  float64   `json:"duration,omitempty"`

	// Remote-backed fields.
	RemoteID     string `json:"remoteId,omitempty"`
	ThumbnailURL string `json:"thumbnailUrl,omitempty"`

	// Disposable marks idle filler: excluded from duplicate checks, never
	// charged, and displaced immediately by a real enqueue.
	Disposable bool `json:"disposable"`
}

// IsStreamed reports whether playback of this track is time-metered.
func (t Track) IsStreamed() bool {
	return t.Kind == TrackKindStreamed
}

// NewLocalTrack builds a charged track from a library entry. The track id is
// the entry id, so enqueueing the same entry twice is detectable.
func NewLocalTrack(e MediaEntry) Track {
	return Track{
		ID:        strconv.Itoa(e.ID),
		Kind:      TrackKindLocal,
		Title:     e.Title,
		Artist:    e.Artist,
		MediaID:   e.ID,
		MediaType: e.Type,
		Path:      e.Path,
		Artwork:   e.Artwork,
		Duration:  e.Duration,
	}
}

// NewStreamedTrack builds a charged track from a remote video. The remote id
// doubles as the track id.
func NewStreamedTrack(v RemoteVideo) Track {
	return Track{
		ID:           v.RemoteID,
		Kind:         TrackKindStreamed,
		Title:        v.Title,
		Artist:       v.Channel,
		RemoteID:     v.RemoteID,
		ThumbnailURL: v.ThumbnailURL,
	}
}

// NewFillerFromEntry builds a disposable filler track from a library entry.
// Fillers get a fresh uuid so they never collide with real track ids.
func NewFillerFromEntry(e MediaEntry) Track {
	t := NewLocalTrack(e)
	t.ID = uuid.NewString()
	t.Kind = TrackKindFiller
	t.Disposable = true
	return t
}

// NewFillerFromRemote builds a disposable filler track from a remote video.
func NewFillerFromRemote(v RemoteVideo) Track {
	t := NewStreamedTrack(v)
	t.ID = uuid.NewString()
	t.Kind = TrackKindFiller
	t.Disposable = true
	return t
}
