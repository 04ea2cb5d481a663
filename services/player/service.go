// Package player is the coordinator that owns the playback state: the
// current track, the pending FIFO queue and the pause flag. Every mutation
// goes through this service, which charges the ledger before accepting work
// and fans state snapshots out to observers.
package player

import (
	"errors"
	"log"
	"sync"
	"time"

	"rockola/models"
)

var ErrTrackNotQueued = errors.New("track is not in the pending queue")

// EnqueueStatus is the outcome of an enqueue attempt.
type EnqueueStatus string

const (
	EnqueueAccepted   EnqueueStatus = "accepted"   // appended behind the current track
	EnqueuePlayingNow EnqueueStatus = "playingNow" // became the current track immediately
	EnqueueDuplicate  EnqueueStatus = "duplicate"  // same id already current or pending
	EnqueueNoCredit   EnqueueStatus = "noCredit"   // ledger rejected the charge
)

// Ledger is the credit surface the coordinator charges against.
type Ledger interface {
	ChargeTrack() bool
	ChargeStreamed() bool
	TickStream() bool
	InsertCoin() (granted, balance int)
	Balance() int
	AdminMode() bool
	StreamSeconds() int
}

// HistoryRecorder persists plays and coin insertions. Failures are logged,
// never surfaced to the kiosk.
type HistoryRecorder interface {
	RecordPlay(rec models.PlayRecord) error
	RecordCoin(rec models.CoinRecord) error
}

// Observer is notified after every state change, outside the lock.
type Observer interface {
	PlayerChanged(st models.PlayerState)
}

// failureAdvanceDelay is the grace period between a reported playback
// failure and the automatic advance, so transient errors can resolve.
const failureAdvanceDelay = 2 * time.Second

// Service is the playback coordinator.
type Service struct {
	mu        sync.Mutex
	current   *models.Track
	pending   []models.Track
	paused    bool
	failDelay time.Duration
	failTimer *time.Timer

	ledger  Ledger
	history HistoryRecorder

	obsMu     sync.RWMutex
	observers []Observer
}

func NewService(ledger Ledger, history HistoryRecorder) *Service {
	return &Service{ledger: ledger, history: history, failDelay: failureAdvanceDelay}
}

// AddObserver registers a state listener. Observers are called after the
// mutation completes, never under the lock.
func (s *Service) AddObserver(o Observer) {
	s.obsMu.Lock()
	s.observers = append(s.observers, o)
	s.obsMu.Unlock()
}

// Enqueue charges and queues a track. Duplicate ids are rejected before any
// charge; a disposable filler occupying the player is displaced immediately.
func (s *Service) Enqueue(t models.Track) EnqueueStatus {
	s.mu.Lock()
	if s.isQueuedLocked(t.ID) {
		s.mu.Unlock()
		return EnqueueDuplicate
	}

	var charged bool
	if t.IsStreamed() {
		charged = s.ledger.ChargeStreamed()
	} else {
		charged = s.ledger.ChargeTrack()
	}
	if !charged {
		s.mu.Unlock()
		return EnqueueNoCredit
	}

	status := EnqueueAccepted
	if s.current == nil || s.current.Disposable {
		s.cancelFailureLocked()
		s.current = &t
		s.paused = false
		status = EnqueuePlayingNow
		s.recordPlayLocked(t)
	} else {
		s.pending = append(s.pending, t)
	}
	st := s.snapshotLocked()
	s.mu.Unlock()

	log.Printf("[player] enqueue %s (%s): %s", t.ID, t.Kind, status)
	s.notify(st)
	return status
}

// isQueuedLocked reports whether id is already current or pending.
// Disposable filler never blocks a real selection.
func (s *Service) isQueuedLocked(id string) bool {
	if s.current != nil && !s.current.Disposable && s.current.ID == id {
		return true
	}
	for _, q := range s.pending {
		if q.ID == id {
			return true
		}
	}
	return false
}

// Advance promotes the head of the pending queue, or clears the player when
// nothing is waiting. It returns the new current track, if any.
func (s *Service) Advance() *models.Track {
	s.mu.Lock()
	cur, st := s.advanceLocked()
	s.mu.Unlock()

	s.notify(st)
	return cur
}

func (s *Service) advanceLocked() (*models.Track, models.PlayerState) {
	s.cancelFailureLocked()
	if len(s.pending) > 0 {
		next := s.pending[0]
		s.pending = s.pending[1:]
		s.current = &next
		s.recordPlayLocked(next)
	} else {
		s.current = nil
	}
	s.paused = false
	return s.current, s.snapshotLocked()
}

// ReportPlaybackFailure handles the kiosk reporting that the current track
// cannot play. The player advances after a short grace delay; anything that
// changes the current track first cancels the pending advance.
func (s *Service) ReportPlaybackFailure() {
	s.mu.Lock()
	if s.current == nil || s.failTimer != nil {
		s.mu.Unlock()
		return
	}
	id := s.current.ID
	s.failTimer = time.AfterFunc(s.failDelay, func() { s.failureAdvance(id) })
	s.mu.Unlock()

	log.Printf("[player] playback failure on %s, advancing in %s", id, s.failDelay)
}

// failureAdvance fires from the failure timer. The id guard makes a fired
// timer that lost the race against a manual advance a no-op.
func (s *Service) failureAdvance(id string) {
	s.mu.Lock()
	s.failTimer = nil
	if s.current == nil || s.current.ID != id {
		s.mu.Unlock()
		return
	}
	_, st := s.advanceLocked()
	s.mu.Unlock()

	s.notify(st)
}

func (s *Service) cancelFailureLocked() {
	if s.failTimer != nil {
		s.failTimer.Stop()
		s.failTimer = nil
	}
}

// Remove drops a pending track. The current track cannot be removed.
func (s *Service) Remove(id string) error {
	s.mu.Lock()
	idx := -1
	for i, q := range s.pending {
		if q.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		s.mu.Unlock()
		return ErrTrackNotQueued
	}
	s.pending = append(s.pending[:idx], s.pending[idx+1:]...)
	st := s.snapshotLocked()
	s.mu.Unlock()

	s.notify(st)
	return nil
}

// InsertCoin credits a coin and records it.
func (s *Service) InsertCoin() models.PlayerState {
	granted, _ := s.ledger.InsertCoin()
	if s.history != nil {
		if err := s.history.RecordCoin(models.CoinRecord{Credits: granted, InsertedAt: time.Now()}); err != nil {
			log.Printf("[player] record coin: %v", err)
		}
	}
	st := s.Snapshot()
	s.notify(st)
	return st
}

// SetPaused flips the pause flag for the current track.
func (s *Service) SetPaused(paused bool) {
	s.mu.Lock()
	changed := s.paused != paused && s.current != nil
	if s.current != nil {
		s.paused = paused
	}
	st := s.snapshotLocked()
	s.mu.Unlock()

	if changed {
		s.notify(st)
	}
}

// Tick burns one metered second. When the meter runs out while a streamed
// track is playing, the player advances.
func (s *Service) Tick() {
	expired := s.ledger.TickStream()
	if !expired {
		return
	}
	s.mu.Lock()
	streamedCurrent := s.current != nil && s.current.IsStreamed()
	s.mu.Unlock()
	if streamedCurrent {
		log.Printf("[player] stream meter exhausted, advancing")
		s.Advance()
	}
}

// PlayFiller puts a disposable filler on an otherwise empty player. It
// refuses to displace real content or a non-empty queue.
func (s *Service) PlayFiller(t models.Track) bool {
	if !t.Disposable {
		return false
	}
	s.mu.Lock()
	if (s.current != nil && !s.current.Disposable) || len(s.pending) > 0 {
		s.mu.Unlock()
		return false
	}
	s.cancelFailureLocked()
	s.current = &t
	s.paused = false
	s.recordPlayLocked(t)
	st := s.snapshotLocked()
	s.mu.Unlock()

	s.notify(st)
	return true
}

// StopFiller clears the player if a disposable filler is current.
func (s *Service) StopFiller() {
	s.mu.Lock()
	if s.current == nil || !s.current.Disposable {
		s.mu.Unlock()
		return
	}
	s.cancelFailureLocked()
	s.current = nil
	st := s.snapshotLocked()
	s.mu.Unlock()

	s.notify(st)
}

// Snapshot returns a copy of the full player state.
func (s *Service) Snapshot() models.PlayerState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Service) snapshotLocked() models.PlayerState {
	st := models.PlayerState{
		Queue:             make([]models.Track, len(s.pending)),
		Credits:           s.ledger.Balance(),
		AdminMode:         s.ledger.AdminMode(),
		StreamSecondsLeft: s.ledger.StreamSeconds(),
		Paused:            s.paused,
	}
	copy(st.Queue, s.pending)
	if s.current != nil {
		cur := *s.current
		st.Current = &cur
		st.IdleFilling = cur.Disposable
	}
	return st
}

func (s *Service) recordPlayLocked(t models.Track) {
	if s.history == nil {
		return
	}
	rec := models.PlayRecord{TrackID: t.ID, Kind: t.Kind, Title: t.Title, Artist: t.Artist, StartedAt: time.Now()}
	if err := s.history.RecordPlay(rec); err != nil {
		log.Printf("[player] record play: %v", err)
	}
}

func (s *Service) notify(st models.PlayerState) {
	s.obsMu.RLock()
	observers := make([]Observer, len(s.observers))
	copy(observers, s.observers)
	s.obsMu.RUnlock()
	for _, o := range observers {
		o.PlayerChanged(st)
	}
}
