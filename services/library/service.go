// Package library holds the in-memory media catalog. The catalog is an
// immutable snapshot: a rescan builds a fresh one and swaps it in whole, so
// readers never observe a partially rebuilt index.
package library

import (
	"math/rand"
	"sort"
	"strings"
	"sync"
	"time"

	"rockola/models"
)

// snapshot is one immutable generation of the catalog.
type snapshot struct {
	entries   []models.MediaEntry
	byID      map[int]models.MediaEntry
	scannedAt time.Time
}

// Service serves catalog reads and accepts whole-catalog replacements.
type Service struct {
	mu   sync.RWMutex
	snap *snapshot
}

func NewService() *Service {
	return &Service{snap: &snapshot{byID: map[int]models.MediaEntry{}}}
}

// Replace swaps in a freshly scanned catalog.
func (s *Service) Replace(entries []models.MediaEntry) {
	byID := make(map[int]models.MediaEntry, len(entries))
	for _, e := range entries {
		byID[e.ID] = e
	}
	next := &snapshot{entries: entries, byID: byID, scannedAt: time.Now()}

	s.mu.Lock()
	s.snap = next
	s.mu.Unlock()
}

func (s *Service) current() *snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap
}

// Count returns the number of indexed entries and when they were scanned.
func (s *Service) Count() (int, time.Time) {
	snap := s.current()
	return len(snap.entries), snap.scannedAt
}

// EntryByID looks up a single catalog entry.
func (s *Service) EntryByID(id int) (models.MediaEntry, bool) {
	e, ok := s.current().byID[id]
	return e, ok
}

// Search filters the catalog. Filters apply in order: type, genre, artist,
// then a case-insensitive substring match of Text against title, artist and
// filename. A positive Limit stops the scan early.
func (s *Service) Search(q models.SearchQuery) []models.MediaEntry {
	snap := s.current()
	text := strings.ToLower(strings.TrimSpace(q.Text))

	results := []models.MediaEntry{}
	for _, e := range snap.entries {
		if q.Type != "" && e.Type != q.Type {
			continue
		}
		if q.Genre != "" && e.Genre != q.Genre {
			continue
		}
		if q.Artist != "" && e.Artist != q.Artist {
			continue
		}
		if text != "" && !matchesText(e, text) {
			continue
		}
		results = append(results, e)
		if q.Limit > 0 && len(results) >= q.Limit {
			break
		}
	}
	return results
}

func matchesText(e models.MediaEntry, text string) bool {
	return strings.Contains(strings.ToLower(e.Title), text) ||
		strings.Contains(strings.ToLower(e.Artist), text) ||
		strings.Contains(strings.ToLower(e.Filename), text)
}

// Genres lists the genres of audio entries, sorted, excluding the
// unclassified sentinel.
func (s *Service) Genres() []string {
	snap := s.current()
	seen := map[string]struct{}{}
	for _, e := range snap.entries {
		if e.Type != models.MediaTypeAudio {
			continue
		}
		if e.Genre == models.GenreUnclassified {
			continue
		}
		seen[e.Genre] = struct{}{}
	}
	genres := make([]string, 0, len(seen))
	for g := range seen {
		genres = append(genres, g)
	}
	sort.Strings(genres)
	return genres
}

// Artists aggregates audio entries per artist: track count plus the first
// artwork seen, sorted by name. An empty genre aggregates the whole catalog.
// The unknown-artist sentinel never shows up as a browsable artist.
func (s *Service) Artists(genre string) []models.ArtistSummary {
	snap := s.current()
	byName := map[string]*models.ArtistSummary{}
	order := []string{}
	for _, e := range snap.entries {
		if e.Type != models.MediaTypeAudio {
			continue
		}
		if genre != "" && e.Genre != genre {
			continue
		}
		if e.Artist == models.ArtistUnknown {
			continue
		}
		a, ok := byName[e.Artist]
		if !ok {
			a = &models.ArtistSummary{Name: e.Artist}
			byName[e.Artist] = a
			order = append(order, e.Artist)
		}
		a.TrackCount++
		if a.Artwork == "" && e.Artwork != "" {
			a.Artwork = e.Artwork
		}
	}

	artists := make([]models.ArtistSummary, 0, len(order))
	for _, name := range order {
		artists = append(artists, *byName[name])
	}
	sort.Slice(artists, func(i, j int) bool {
		return strings.ToLower(artists[i].Name) < strings.ToLower(artists[j].Name)
	})
	return artists
}

// Random picks a random entry of the given type, for idle filler.
func (s *Service) Random(t models.MediaType) (models.MediaEntry, bool) {
	snap := s.current()
	candidates := []models.MediaEntry{}
	for _, e := range snap.entries {
		if e.Type == t {
			candidates = append(candidates, e)
		}
	}
	if len(candidates) == 0 {
		return models.MediaEntry{}, false
	}
	return candidates[rand.Intn(len(candidates))], true
}
