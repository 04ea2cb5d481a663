package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

var ErrNoIdleSources = errors.New("at least one idle source must remain enabled")

// Settings represents the kiosk configuration persisted to disk. The file is
// a flat JSON document; keys this struct does not know about (custom
// keyBindings entries, frontend-only flags) are preserved across saves.
type Settings struct {
	// Library roots. Empty roots are skipped by the scanner.
	AudioPath   string `json:"audioPath"`
	VideoPath   string `json:"videoPath"`
	KaraokePath string `json:"karaokePath"`

	// Credit economy.
	CreditsPerCoin     int  `json:"creditsPerCoin"`
	PricePerSong       int  `json:"pricePerSong"`
	YtMinutesPerCredit int  `json:"ytMinutesPerCredit"`
	AdminMode          bool `json:"adminMode"`

	// Idle autoplay.
	IdleTimeoutMin        int      `json:"idleTimeoutMin"`        // minutes, no credits
	IdleTimeoutCreditsMin int      `json:"idleTimeoutCreditsMin"` // minutes, credits available
	IdleTimeoutPausedSec  int      `json:"idleTimeoutPausedSec"`  // seconds, real content paused
	IdleDurationSec       int      `json:"idleDurationSec"`       // filler preview cap
	IdleSources           []string `json:"idleSources"`           // audio | video | youtube
	IdleStopOnNav         bool     `json:"idleStopOnNav"`

	SelectionAlertSec int `json:"selectionAlertSec"`

	// Remote video lookups. An empty key disables the youtube surface.
	YouTubeAPIKey string `json:"youtubeApiKey"`

	// Key bindings are owned by the kiosk frontend; the backend only stores
	// and merges them.
	KeyBindings map[string]string `json:"keyBindings,omitempty"`

	Server  ServerSettings  `json:"server"`
	History HistorySettings `json:"history"`
	Log     LogConfig       `json:"log"`
}

type ServerSettings struct {
	Host string `json:"host"`
	Port int    `json:"port"`
}

// HistorySettings defines the play-history database location.
type HistorySettings struct {
	Path string `json:"path"`
}

// LogConfig represents logging configuration.
type LogConfig struct {
	File       string `json:"file"`
	Level      string `json:"level"`
	MaxSize    int    `json:"maxSize"`
	MaxAge     int    `json:"maxAge"`
	MaxBackups int    `json:"maxBackups"`
	Compress   bool   `json:"compress"`
}

// DefaultSettings returns sane defaults for a fresh install.
func DefaultSettings() Settings {
	return Settings{
		AudioPath:             "media/audio",
		VideoPath:             "media/video",
		KaraokePath:           "media/karaoke",
		CreditsPerCoin:        3,
		PricePerSong:          1,
		YtMinutesPerCredit:    12,
		AdminMode:             false,
		IdleTimeoutMin:        2,
		IdleTimeoutCreditsMin: 3,
		IdleTimeoutPausedSec:  60,
		IdleDurationSec:       25,
		IdleSources:           []string{"audio", "video", "youtube"},
		IdleStopOnNav:         false,
		SelectionAlertSec:     20,
		Server:                ServerSettings{Host: "0.0.0.0", Port: 4280},
		History:               HistorySettings{Path: "cache/history.db"},
		Log: LogConfig{
			File:       "cache/logs/backend.log",
			Level:      "info",
			MaxSize:    50,
			MaxBackups: 3,
			MaxAge:     7,
			Compress:   true,
		},
	}
}

// Validate rejects settings the player cannot run with.
func (s Settings) Validate() error {
	if len(s.IdleSources) == 0 {
		return ErrNoIdleSources
	}
	for _, src := range s.IdleSources {
		switch src {
		case "audio", "video", "youtube":
		default:
			return fmt.Errorf("unknown idle source %q", src)
		}
	}
	if s.CreditsPerCoin < 1 {
		return errors.New("creditsPerCoin must be at least 1")
	}
	if s.PricePerSong < 1 {
		return errors.New("pricePerSong must be at least 1")
	}
	return nil
}

// Manager loads and persists settings to a JSON file.
type Manager struct {
	path string
}

func NewManager(configPath string) *Manager {
	return &Manager{path: configPath}
}

func (m *Manager) EnsureDir() error {
	dir := filepath.Dir(m.path)
	if dir == "." || dir == "" {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}

// Load reads settings.json from disk or creates defaults if missing.
func (m *Manager) Load() (Settings, error) {
	raw, err := m.loadRaw()
	if err != nil {
		return Settings{}, err
	}
	if raw == nil {
		defaults := DefaultSettings()
		if err := m.Save(defaults); err != nil {
			return Settings{}, err
		}
		return defaults, nil
	}

	migrateRaw(raw)

	buf, err := json.Marshal(raw)
	if err != nil {
		return Settings{}, err
	}
	s := DefaultSettings()
	if err := json.Unmarshal(buf, &s); err != nil {
		return Settings{}, err
	}
	return s, nil
}

// Merge overlays a partial raw document onto the stored file and persists
// the result. Keys absent from the overlay are untouched, so frontend-owned
// keys (keyBindings, display flags) survive backend saves.
func (m *Manager) Merge(overlay map[string]interface{}) (Settings, error) {
	raw, err := m.loadRaw()
	if err != nil {
		return Settings{}, err
	}
	if raw == nil {
		raw = map[string]interface{}{}
		defaults := DefaultSettings()
		buf, err := json.Marshal(defaults)
		if err != nil {
			return Settings{}, err
		}
		if err := json.Unmarshal(buf, &raw); err != nil {
			return Settings{}, err
		}
	}
	for k, v := range overlay {
		raw[k] = v
	}
	migrateRaw(raw)

	buf, err := json.Marshal(raw)
	if err != nil {
		return Settings{}, err
	}
	s := DefaultSettings()
	if err := json.Unmarshal(buf, &s); err != nil {
		return Settings{}, err
	}
	if err := s.Validate(); err != nil {
		return Settings{}, err
	}
	if err := m.saveRaw(raw); err != nil {
		return Settings{}, err
	}
	return s, nil
}

// loadRaw returns the stored document as a raw map, or nil if the file does
// not exist yet.
func (m *Manager) loadRaw() (map[string]interface{}, error) {
	if m.path == "" {
		return nil, errors.New("config path not set")
	}
	if _, err := os.Stat(m.path); errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	f, err := os.Open(m.path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var raw map[string]interface{}
	if err := json.NewDecoder(f).Decode(&raw); err != nil {
		return nil, err
	}
	return raw, nil
}

// migrateRaw upgrades documents written by older releases in place.
func migrateRaw(raw map[string]interface{}) {
	// Early releases stored a single timeout under "idleTimeout".
	if v, ok := raw["idleTimeout"]; ok {
		if _, has := raw["idleTimeoutMin"]; !has {
			raw["idleTimeoutMin"] = v
		}
		delete(raw, "idleTimeout")
	}
	// "youtube" used to be implied; documents without idleSources get the
	// full set rather than an empty list.
	if _, ok := raw["idleSources"]; !ok {
		raw["idleSources"] = []interface{}{"audio", "video", "youtube"}
	}
}

// Save writes the provided settings to disk, merging over the stored
// document so unknown keys survive.
func (m *Manager) Save(s Settings) error {
	buf, err := json.Marshal(s)
	if err != nil {
		return err
	}
	overlay := map[string]interface{}{}
	if err := json.Unmarshal(buf, &overlay); err != nil {
		return err
	}
	raw, err := m.loadRaw()
	if err != nil {
		return err
	}
	if raw == nil {
		raw = map[string]interface{}{}
	}
	for k, v := range overlay {
		raw[k] = v
	}
	return m.saveRaw(raw)
}

// saveRaw writes the raw document atomically.
func (m *Manager) saveRaw(raw map[string]interface{}) error {
	if m.path == "" {
		return errors.New("config path not set")
	}
	if err := m.EnsureDir(); err != nil {
		return err
	}
	tmp := m.path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(raw); err != nil {
		f.Close()
		_ = os.Remove(tmp)
		return err
	}
	if err := f.Sync(); err != nil {
		f.Close()
		_ = os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, m.path)
}
