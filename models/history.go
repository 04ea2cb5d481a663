package models

import "time"

// PlayRecord is one row of playback history.
type PlayRecord struct {
	ID        int64     `json:"id"`
	TrackID   string    `json:"trackId"`
	Kind      TrackKind `json:"kind"`
	Title     string    `json:"title"`
	Artist    string    `json:"artist,omitempty"`
	StartedAt time.Time `json:"startedAt"`
}

// CoinRecord is one coin insertion, kept for the admin accounting screen.
type CoinRecord struct {
	ID         int64     `json:"id"`
	Credits    int       `json:"credits"` // credits granted by this coin
	InsertedAt time.Time `json:"insertedAt"`
}
