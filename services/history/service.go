// Package history records what the jukebox played and what went into the
// coin drawer. Recording is fire-and-forget for the player; only the admin
// queries surface errors.
package history

import (
	"context"
	"time"

	"rockola/models"
)

// Store is the persistence surface, backed by the sqlite database.
type Store interface {
	InsertPlay(ctx context.Context, rec models.PlayRecord) error
	InsertCoin(ctx context.Context, rec models.CoinRecord) error
	RecentPlays(ctx context.Context, limit int) ([]models.PlayRecord, error)
	CoinSummary(ctx context.Context, since time.Time) (coins, credits int, err error)
}

// Summary is the admin accounting view.
type Summary struct {
	Coins   int `json:"coins"`
	Credits int `json:"credits"`
}

// Service wraps the store with the timeouts the coordinator expects.
type Service struct {
	store   Store
	timeout time.Duration
}

func NewService(store Store) *Service {
	return &Service{store: store, timeout: 5 * time.Second}
}

// RecordPlay persists one play. Called synchronously from the coordinator,
// so it carries its own timeout.
func (s *Service) RecordPlay(rec models.PlayRecord) error {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()
	return s.store.InsertPlay(ctx, rec)
}

// RecordCoin persists one coin insertion.
func (s *Service) RecordCoin(rec models.CoinRecord) error {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()
	return s.store.InsertCoin(ctx, rec)
}

// Recent lists the latest plays for the admin screen.
func (s *Service) Recent(ctx context.Context, limit int) ([]models.PlayRecord, error) {
	return s.store.RecentPlays(ctx, limit)
}

// CoinsSince totals the drawer since the given time.
func (s *Service) CoinsSince(ctx context.Context, since time.Time) (Summary, error) {
	coins, credits, err := s.store.CoinSummary(ctx, since)
	if err != nil {
		return Summary{}, err
	}
	return Summary{Coins: coins, Credits: credits}, nil
}
