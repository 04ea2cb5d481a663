package models

// MediaType classifies an indexed library file.
type MediaType string

const (
	MediaTypeAudio   MediaType = "audio"
	MediaTypeVideo   MediaType = "video"
	MediaTypeKaraoke MediaType = "karaoke"
)

// Sentinel values used when the scanner cannot derive a field from the path.
const (
	GenreUnclassified = "Unclassified"
	ArtistUnknown     = "Unknown"
)

// MediaEntry is one indexed file in the local library. IDs are ordinals
// assigned per scan, starting at 1.
type MediaEntry struct {
	ID        int       `json:"id"`
	Type      MediaType `json:"type"`
	Genre     string    `json:"genre"`
	Artist    string    `json:"artist"`
	Title     string    `json:"title"`
	Filename  string    `json:"filename"`
	Path      string    `json:"path"`              // absolute path on disk
	Extension string    `json:"extension"`         // lowered, with the leading dot
	Size      int64     `json:"size"`              // bytes
	Artwork   string    `json:"artwork,omitempty"` // folder artwork path, if any
	Duration  float64   `json:"duration"`          // seconds, 0 when the probe failed
}

// ArtistSummary aggregates a single artist within a genre.
type ArtistSummary struct {
	Name       string `json:"name"`
	TrackCount int    `json:"trackCount"`
	Artwork    string `json:"artwork,omitempty"` // first artwork seen for this artist
}

// SearchQuery narrows a library search. Zero-value fields are ignored.
type SearchQuery struct {
	Type   MediaType `json:"type,omitempty"`
	Genre  string    `json:"genre,omitempty"`
	Artist string    `json:"artist,omitempty"`
	Text   string    `json:"search,omitempty"` // case-insensitive substring over title, artist and filename
	Limit  int       `json:"limit,omitempty"`
}

// RemoteVideo is a normalized remote (YouTube) result. Labels are already
// formatted for display so the kiosk never touches raw API values.
type RemoteVideo struct {
	RemoteID       string `json:"remoteId"`
	Title          string `json:"title"`
	Channel        string `json:"channel"`
	DurationLabel  string `json:"durationLabel"`
	ViewsLabel     string `json:"viewsLabel"`
	PublishedLabel string `json:"publishedLabel"`
	ThumbnailURL   string `json:"thumbnailUrl"`
}
