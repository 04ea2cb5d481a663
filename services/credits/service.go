// Package credits owns the coin ledger and the time meter for streamed
// playback. Balances only change through this service.
package credits

import (
	"log"
	"sync"

	"rockola/config"
)

// Service is the credit ledger. All mutations are atomic with respect to
// each other; callers never read-modify-write a balance themselves.
type Service struct {
	mu sync.Mutex

	credits       int
	streamSeconds int // remaining metered seconds for streamed playback

	adminMode          bool
	creditsPerCoin     int
	pricePerSong       int
	ytMinutesPerCredit int
}

func NewService(cfg config.Settings) *Service {
	s := &Service{}
	s.ApplySettings(cfg)
	return s
}

// ApplySettings refreshes pricing without touching balances.
func (s *Service) ApplySettings(cfg config.Settings) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.adminMode = cfg.AdminMode
	s.creditsPerCoin = cfg.CreditsPerCoin
	s.pricePerSong = cfg.PricePerSong
	s.ytMinutesPerCredit = cfg.YtMinutesPerCredit
}

// InsertCoin credits one coin and returns the granted credits and the new
// balance.
func (s *Service) InsertCoin() (granted, balance int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.credits += s.creditsPerCoin
	log.Printf("[credits] coin inserted: +%d, balance %d", s.creditsPerCoin, s.credits)
	return s.creditsPerCoin, s.credits
}

// Balance returns the current credit balance.
func (s *Service) Balance() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.credits
}

// AdminMode reports whether charging is bypassed.
func (s *Service) AdminMode() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.adminMode
}

// ChargeTrack charges one local track. In admin mode it succeeds without
// mutating the balance. The balance never goes negative.
func (s *Service) ChargeTrack() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.consumeLocked(s.pricePerSong)
}

// ChargeStreamed charges a streamed enqueue. While metered time remains the
// enqueue is free and the meter is not topped up; otherwise one song price
// is consumed and the meter refills to ytMinutesPerCredit worth of seconds.
func (s *Service) ChargeStreamed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.adminMode {
		return true
	}
	if s.streamSeconds > 0 {
		return true
	}
	if !s.consumeLocked(s.pricePerSong) {
		return false
	}
	s.streamSeconds = s.ytMinutesPerCredit * 60
	log.Printf("[credits] stream meter refilled to %ds", s.streamSeconds)
	return true
}

// StreamSeconds returns the remaining metered seconds.
func (s *Service) StreamSeconds() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.streamSeconds
}

// TickStream burns one metered second and reports whether the meter just
// ran out. Admin mode and an already-empty meter are no-ops.
func (s *Service) TickStream() (expired bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.adminMode || s.streamSeconds <= 0 {
		return false
	}
	s.streamSeconds--
	return s.streamSeconds == 0
}

func (s *Service) consumeLocked(cost int) bool {
	if s.adminMode {
		return true
	}
	if s.credits < cost {
		return false
	}
	s.credits -= cost
	return true
}
