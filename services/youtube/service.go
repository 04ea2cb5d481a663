// Package youtube proxies remote video metadata for the kiosk. Results are
// normalized to display-ready labels and cached; any upstream failure
// degrades to an empty result so the kiosk never shows an error screen.
package youtube

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/avast/retry-go/v4"

	"rockola/models"
)

const (
	defaultAPIBaseURL     = "https://www.googleapis.com/youtube/v3"
	defaultSuggestBaseURL = "https://suggestqueries.google.com/complete/search"

	cacheTTL       = 30 * time.Minute
	maxSuggestions = 8
	maxResults     = 20
)

type cacheEntry struct {
	videos    []models.RemoteVideo
	expiresAt time.Time
}

// Service is the remote metadata client.
type Service struct {
	apiKey         string
	apiBaseURL     string
	suggestBaseURL string
	httpc          *http.Client

	mu    sync.Mutex
	cache map[string]cacheEntry
}

func NewService(apiKey string, httpc *http.Client) *Service {
	if httpc == nil {
		httpc = &http.Client{Timeout: 15 * time.Second}
	}
	return &Service{
		apiKey:         strings.TrimSpace(apiKey),
		apiBaseURL:     defaultAPIBaseURL,
		suggestBaseURL: defaultSuggestBaseURL,
		httpc:          httpc,
		cache:          map[string]cacheEntry{},
	}
}

// SetAPIKey swaps the key on a settings reload.
func (s *Service) SetAPIKey(key string) {
	s.mu.Lock()
	s.apiKey = strings.TrimSpace(key)
	s.cache = map[string]cacheEntry{}
	s.mu.Unlock()
}

// Trending returns the popular music videos for the kiosk home screen.
// Failures return an empty slice.
func (s *Service) Trending(ctx context.Context) []models.RemoteVideo {
	return s.cached(ctx, "trending", func(ctx context.Context) ([]models.RemoteVideo, error) {
		q := url.Values{}
		q.Set("part", "snippet,contentDetails,statistics,status")
		q.Set("chart", "mostPopular")
		q.Set("videoCategoryId", "10") // music
		q.Set("maxResults", fmt.Sprint(maxResults))
		var resp videoListResponse
		if err := s.doGET(ctx, s.apiBaseURL+"/videos", q, &resp); err != nil {
			return nil, err
		}
		return normalizeVideos(resp.Items), nil
	})
}

// Search looks up embeddable videos matching the query. Failures return an
// empty slice.
func (s *Service) Search(ctx context.Context, query string) []models.RemoteVideo {
	query = strings.TrimSpace(query)
	if query == "" {
		return []models.RemoteVideo{}
	}
	return s.cached(ctx, "search:"+strings.ToLower(query), func(ctx context.Context) ([]models.RemoteVideo, error) {
		q := url.Values{}
		q.Set("part", "snippet")
		q.Set("type", "video")
		q.Set("videoEmbeddable", "true")
		q.Set("maxResults", fmt.Sprint(maxResults))
		q.Set("q", query)
		var sr searchListResponse
		if err := s.doGET(ctx, s.apiBaseURL+"/search", q, &sr); err != nil {
			return nil, err
		}

		ids := make([]string, 0, len(sr.Items))
		for _, item := range sr.Items {
			if item.ID.VideoID != "" {
				ids = append(ids, item.ID.VideoID)
			}
		}
		if len(ids) == 0 {
			return []models.RemoteVideo{}, nil
		}

		// A second call fills in duration, views and embeddable status.
		q = url.Values{}
		q.Set("part", "snippet,contentDetails,statistics,status")
		q.Set("id", strings.Join(ids, ","))
		var vr videoListResponse
		if err := s.doGET(ctx, s.apiBaseURL+"/videos", q, &vr); err != nil {
			return nil, err
		}
		return normalizeVideos(vr.Items), nil
	})
}

// Suggest returns up to eight search suggestions. Failures return an empty
// slice.
func (s *Service) Suggest(ctx context.Context, query string) []string {
	query = strings.TrimSpace(query)
	if query == "" {
		return []string{}
	}

	q := url.Values{}
	q.Set("client", "firefox")
	q.Set("ds", "yt")
	q.Set("q", query)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.suggestBaseURL+"?"+q.Encode(), nil)
	if err != nil {
		return []string{}
	}
	resp, err := s.httpc.Do(req)
	if err != nil {
		log.Printf("[youtube] suggest: %v", err)
		return []string{}
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		log.Printf("[youtube] suggest: status %d", resp.StatusCode)
		return []string{}
	}

	// The payload is ["query", ["suggestion", ...], ...].
	var payload []json.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil || len(payload) < 2 {
		return []string{}
	}
	var suggestions []string
	if err := json.Unmarshal(payload[1], &suggestions); err != nil {
		return []string{}
	}
	if len(suggestions) > maxSuggestions {
		suggestions = suggestions[:maxSuggestions]
	}
	return suggestions
}

// cached serves from the TTL cache or fetches and stores. A fetch error is
// logged and degrades to an empty result without caching.
func (s *Service) cached(ctx context.Context, key string, fetch func(context.Context) ([]models.RemoteVideo, error)) []models.RemoteVideo {
	s.mu.Lock()
	if s.apiKey == "" {
		s.mu.Unlock()
		return []models.RemoteVideo{}
	}
	if entry, ok := s.cache[key]; ok && time.Now().Before(entry.expiresAt) {
		s.mu.Unlock()
		return entry.videos
	}
	s.mu.Unlock()

	videos, err := fetch(ctx)
	if err != nil {
		log.Printf("[youtube] %s: %v", key, err)
		return []models.RemoteVideo{}
	}

	s.mu.Lock()
	s.cache[key] = cacheEntry{videos: videos, expiresAt: time.Now().Add(cacheTTL)}
	s.mu.Unlock()
	return videos
}

func (s *Service) doGET(ctx context.Context, endpoint string, q url.Values, v any) error {
	return retry.Do(
		func() error {
			// Read the key per attempt so a settings reload mid-retry
			// takes effect immediately.
			s.mu.Lock()
			q.Set("key", s.apiKey)
			s.mu.Unlock()
			target := endpoint + "?" + q.Encode()

			req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
			if err != nil {
				return retry.Unrecoverable(err)
			}
			resp, err := s.httpc.Do(req)
			if err != nil {
				return err
			}
			defer resp.Body.Close()
			if resp.StatusCode == http.StatusForbidden || resp.StatusCode == http.StatusBadRequest {
				return retry.Unrecoverable(fmt.Errorf("youtube request failed: %s", resp.Status))
			}
			if resp.StatusCode != http.StatusOK {
				return fmt.Errorf("youtube request failed: %s", resp.Status)
			}
			return json.NewDecoder(resp.Body).Decode(v)
		},
		retry.Context(ctx),
		retry.Attempts(3),
		retry.Delay(300*time.Millisecond),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
	)
}

// API response shapes, trimmed to the fields the kiosk needs.

type searchListResponse struct {
	Items []struct {
		ID struct {
			VideoID string `json:"videoId"`
		} `json:"id"`
	} `json:"items"`
}

type videoListResponse struct {
	Items []videoResource `json:"items"`
}

type videoResource struct {
	ID      string `json:"id"`
	Snippet struct {
		Title        string `json:"title"`
		ChannelTitle string `json:"channelTitle"`
		PublishedAt  string `json:"publishedAt"`
		Thumbnails   struct {
			Medium struct {
				URL string `json:"url"`
			} `json:"medium"`
			High struct {
				URL string `json:"url"`
			} `json:"high"`
		} `json:"thumbnails"`
	} `json:"snippet"`
	ContentDetails struct {
		Duration string `json:"duration"`
	} `json:"contentDetails"`
	Statistics struct {
		ViewCount string `json:"viewCount"`
	} `json:"statistics"`
	Status struct {
		Embeddable bool `json:"embeddable"`
	} `json:"status"`
}

// normalizeVideos maps raw resources to display-ready entries, dropping
// anything that cannot be embedded in the kiosk player.
func normalizeVideos(items []videoResource) []models.RemoteVideo {
	videos := make([]models.RemoteVideo, 0, len(items))
	for _, item := range items {
		if !item.Status.Embeddable || item.ID == "" {
			continue
		}
		thumb := item.Snippet.Thumbnails.High.URL
		if thumb == "" {
			thumb = item.Snippet.Thumbnails.Medium.URL
		}
		videos = append(videos, models.RemoteVideo{
			RemoteID:       item.ID,
			Title:          item.Snippet.Title,
			Channel:        item.Snippet.ChannelTitle,
			DurationLabel:  FormatDuration(item.ContentDetails.Duration),
			ViewsLabel:     FormatViews(item.Statistics.ViewCount),
			PublishedLabel: FormatPublished(item.Snippet.PublishedAt, time.Now()),
			ThumbnailURL:   thumb,
		})
	}
	return videos
}
