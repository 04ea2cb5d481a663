// Package idle keeps the jukebox alive when nobody is picking songs. After
// a period with no real playback it injects disposable filler tracks, one
// preview at a time, until a real selection takes over.
package idle

import (
	"context"
	"log"
	"math/rand"
	"sync"
	"time"

	"rockola/config"
	"rockola/models"
)

// State of the scheduler.
type State string

const (
	StateDormant State = "dormant" // waiting out the idle timeout
	StateFilling State = "filling" // injecting filler previews
)

const (
	retryBackoff      = 5 * time.Second // after a failed pick or quick failure
	quickFailureLimit = 3 * time.Second // filler dying sooner counts as broken
)

// PlayerControl is the slice of the coordinator the scheduler drives.
type PlayerControl interface {
	Snapshot() models.PlayerState
	PlayFiller(t models.Track) bool
	StopFiller()
}

// LibraryPicker supplies random local tracks per source.
type LibraryPicker interface {
	Random(t models.MediaType) (models.MediaEntry, bool)
}

// RemotePicker supplies remote candidates for the youtube source.
type RemotePicker interface {
	Trending(ctx context.Context) []models.RemoteVideo
}

type eventKind int

const (
	evPlayerChanged eventKind = iota
	evNav
	evDormantTimeout
	evPreviewTimeout
	evRetryTimeout
)

type event struct {
	kind eventKind
	st   models.PlayerState
}

// Service is the idle scheduler. All state transitions happen on the run
// goroutine; the public surface only posts events.
type Service struct {
	player  PlayerControl
	library LibraryPicker
	remote  RemotePicker

	cfgMu sync.RWMutex
	cfg   config.Settings

	mu      sync.Mutex
	running bool
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	events  chan event

	// Run-goroutine state. Timers are explicit handles so every transition
	// can cancel exactly what it armed.
	state           State
	dormantTimer    *time.Timer
	previewTimer    *time.Timer
	retryTimer      *time.Timer
	fillerStartedAt time.Time
}

func NewService(player PlayerControl, library LibraryPicker, remote RemotePicker, cfg config.Settings) *Service {
	return &Service{
		player:  player,
		library: library,
		remote:  remote,
		cfg:     cfg,
		events:  make(chan event, 32),
		state:   StateDormant,
	}
}

// ApplySettings refreshes timeouts and sources on a settings reload.
func (s *Service) ApplySettings(cfg config.Settings) {
	s.cfgMu.Lock()
	s.cfg = cfg
	s.cfgMu.Unlock()
}

func (s *Service) settings() config.Settings {
	s.cfgMu.RLock()
	defer s.cfgMu.RUnlock()
	return s.cfg
}

// Start launches the run loop and arms the first dormant timer.
func (s *Service) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return
	}
	s.ctx, s.cancel = context.WithCancel(ctx)
	s.running = true
	s.wg.Add(1)
	go s.run()
	log.Printf("[idle] scheduler started")

	s.post(event{kind: evPlayerChanged, st: s.player.Snapshot()})
}

// Stop cancels every timer and waits for the run loop to exit.
func (s *Service) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	s.cancel()
	s.mu.Unlock()

	s.wg.Wait()
	log.Printf("[idle] scheduler stopped")
}

// PlayerChanged implements the coordinator observer.
func (s *Service) PlayerChanged(st models.PlayerState) {
	s.post(event{kind: evPlayerChanged, st: st})
}

// Nav reports user navigation input.
func (s *Service) Nav() {
	s.post(event{kind: evNav})
}

// State reports the scheduler state, for the admin surface.
func (s *Service) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Service) post(ev event) {
	s.mu.Lock()
	running := s.running
	s.mu.Unlock()
	if !running {
		return
	}
	select {
	case s.events <- ev:
	default:
		log.Printf("[idle] event dropped")
	}
}

func (s *Service) run() {
	defer s.wg.Done()
	defer s.cancelTimers()

	for {
		select {
		case <-s.ctx.Done():
			return
		case ev := <-s.events:
			s.handle(ev)
		}
	}
}

func (s *Service) handle(ev event) {
	switch ev.kind {
	case evPlayerChanged:
		s.onPlayerChanged(ev.st)
	case evNav:
		s.onNav()
	case evDormantTimeout:
		s.startFilling()
	case evPreviewTimeout:
		s.nextFiller(false)
	case evRetryTimeout:
		if s.state == StateFilling {
			s.nextFiller(true)
		}
	}
}

func (s *Service) onPlayerChanged(st models.PlayerState) {
	switch {
	case st.Current != nil && !st.IdleFilling:
		// Real playback. Filling, if active, lost the player already.
		s.setState(StateDormant)
		s.cancelTimers()
		if st.Paused {
			s.armDormant(st)
		}
	case st.Current == nil:
		// Notifications are queued; trust only the live state before
		// treating the player as empty.
		if live := s.player.Snapshot(); live.Current != nil {
			return
		}
		if s.state == StateFilling {
			// The filler finished on its own; chain the next one, backing
			// off if it died almost immediately.
			quick := !s.fillerStartedAt.IsZero() && time.Since(s.fillerStartedAt) < quickFailureLimit
			if quick {
				log.Printf("[idle] filler failed quickly, backing off")
				s.armRetry()
			} else {
				s.nextFiller(true)
			}
			return
		}
		s.armDormant(st)
	default:
		// A filler we injected is playing; the preview timer is in charge.
	}
}

func (s *Service) onNav() {
	cfg := s.settings()
	if s.state == StateFilling {
		if !cfg.IdleStopOnNav {
			return
		}
		log.Printf("[idle] navigation input, stopping idle playback")
		s.setState(StateDormant)
		s.cancelTimers()
		s.player.StopFiller()
		// StopFiller triggers a player change that re-arms the timer.
		return
	}
	// Activity while dormant restarts the countdown.
	st := s.player.Snapshot()
	if st.Current == nil || st.Paused {
		s.armDormant(st)
	}
}

// armDormant schedules the transition into filling, choosing the timeout
// from the player situation: paused real content, credits waiting, or a
// fully idle kiosk.
func (s *Service) armDormant(st models.PlayerState) {
	cfg := s.settings()
	var d time.Duration
	switch {
	case st.Current != nil && st.Paused && !st.IdleFilling:
		d = time.Duration(cfg.IdleTimeoutPausedSec) * time.Second
	case st.Credits > 0:
		d = time.Duration(cfg.IdleTimeoutCreditsMin) * time.Minute
	default:
		d = time.Duration(cfg.IdleTimeoutMin) * time.Minute
	}
	s.cancelTimers()
	s.dormantTimer = time.AfterFunc(d, func() { s.post(event{kind: evDormantTimeout}) })
}

func (s *Service) startFilling() {
	st := s.player.Snapshot()
	if st.Current != nil && !st.IdleFilling {
		// A selection arrived while the timer was running.
		s.armDormant(st)
		return
	}
	s.setState(StateFilling)
	s.nextFiller(true)
}

// nextFiller picks a random source, then a random track from it, and hands
// it to the player. A failed pick retries after the backoff.
func (s *Service) nextFiller(fresh bool) {
	if s.state != StateFilling {
		return
	}
	if !fresh {
		// Preview cap reached: cut the running filler first.
		s.player.StopFiller()
	}

	track, ok := s.pickFiller()
	if !ok {
		log.Printf("[idle] no filler available, retrying in %s", retryBackoff)
		s.armRetry()
		return
	}
	if !s.player.PlayFiller(track) {
		// Real content won the race.
		s.setState(StateDormant)
		s.cancelTimers()
		return
	}
	s.fillerStartedAt = time.Now()

	cfg := s.settings()
	s.cancelPreview()
	s.previewTimer = time.AfterFunc(time.Duration(cfg.IdleDurationSec)*time.Second, func() {
		s.post(event{kind: evPreviewTimeout})
	})
}

func (s *Service) pickFiller() (models.Track, bool) {
	cfg := s.settings()
	if len(cfg.IdleSources) == 0 {
		return models.Track{}, false
	}
	source := cfg.IdleSources[rand.Intn(len(cfg.IdleSources))]
	switch source {
	case "audio":
		if e, ok := s.library.Random(models.MediaTypeAudio); ok {
			return models.NewFillerFromEntry(e), true
		}
	case "video":
		if e, ok := s.library.Random(models.MediaTypeVideo); ok {
			return models.NewFillerFromEntry(e), true
		}
	case "youtube":
		if videos := s.remote.Trending(s.ctx); len(videos) > 0 {
			return models.NewFillerFromRemote(videos[rand.Intn(len(videos))]), true
		}
	}
	return models.Track{}, false
}

func (s *Service) armRetry() {
	s.cancelRetry()
	s.retryTimer = time.AfterFunc(retryBackoff, func() { s.post(event{kind: evRetryTimeout}) })
}

func (s *Service) setState(st State) {
	s.mu.Lock()
	s.state = st
	s.mu.Unlock()
}

func (s *Service) cancelTimers() {
	if s.dormantTimer != nil {
		s.dormantTimer.Stop()
		s.dormantTimer = nil
	}
	s.cancelPreview()
	s.cancelRetry()
}

func (s *Service) cancelPreview() {
	if s.previewTimer != nil {
		s.previewTimer.Stop()
		s.previewTimer = nil
	}
}

func (s *Service) cancelRetry() {
	if s.retryTimer != nil {
		s.retryTimer.Stop()
		s.retryTimer = nil
	}
}
