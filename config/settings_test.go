package config_test

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"rockola/config"
)

func TestLoadCreatesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	m := config.NewManager(path)

	s, err := m.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if s.CreditsPerCoin != 3 || s.YtMinutesPerCredit != 12 {
		t.Fatalf("unexpected defaults: %+v", s)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("defaults were not persisted: %v", err)
	}
}

func TestMergePreservesUnknownKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	doc := map[string]interface{}{
		"creditsPerCoin": 5,
		"idleSources":    []string{"audio"},
		"keyBindings":    map[string]string{"coin": "F9", "next": "F10"},
		"customTheme":    "neon",
	}
	writeJSON(t, path, doc)

	m := config.NewManager(path)
	s, err := m.Merge(map[string]interface{}{"pricePerSong": 2})
	if err != nil {
		t.Fatalf("Merge: %v", err)
	}
	if s.CreditsPerCoin != 5 || s.PricePerSong != 2 {
		t.Fatalf("merge lost known keys: %+v", s)
	}
	if s.KeyBindings["coin"] != "F9" {
		t.Fatalf("keyBindings not preserved: %+v", s.KeyBindings)
	}

	raw := readJSON(t, path)
	if raw["customTheme"] != "neon" {
		t.Fatalf("unknown key dropped from stored document: %v", raw)
	}
}

func TestMergeRejectsEmptyIdleSources(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	m := config.NewManager(path)
	if _, err := m.Load(); err != nil {
		t.Fatalf("Load: %v", err)
	}

	_, err := m.Merge(map[string]interface{}{"idleSources": []string{}})
	if !errors.Is(err, config.ErrNoIdleSources) {
		t.Fatalf("expected ErrNoIdleSources, got %v", err)
	}

	// The stored document must be untouched after a rejected merge.
	s, err := m.Load()
	if err != nil {
		t.Fatalf("Load after rejected merge: %v", err)
	}
	if len(s.IdleSources) != 3 {
		t.Fatalf("idle sources mutated by rejected merge: %v", s.IdleSources)
	}
}

func TestLoadMigratesLegacyIdleTimeout(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	writeJSON(t, path, map[string]interface{}{"idleTimeout": 7})

	m := config.NewManager(path)
	s, err := m.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if s.IdleTimeoutMin != 7 {
		t.Fatalf("legacy idleTimeout not migrated, got %d", s.IdleTimeoutMin)
	}
	if len(s.IdleSources) == 0 {
		t.Fatalf("missing idleSources should default to the full set")
	}
}

func writeJSON(t *testing.T, path string, v interface{}) {
	t.Helper()
	buf, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if err := os.WriteFile(path, buf, 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
}

func readJSON(t *testing.T, path string) map[string]interface{} {
	t.Helper()
	buf, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	var raw map[string]interface{}
	if err := json.Unmarshal(buf, &raw); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	return raw
}
