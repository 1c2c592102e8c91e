package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "hanoi.yaml")
	if err := os.WriteFile(path, []byte(body), 0600); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	t.Setenv("MQTT_URL", "")
	path := writeConfig(t, "version: 1\n")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Puzzle.DiskCount != 3 {
		t.Errorf("expected disk_count 3, got %d", cfg.Puzzle.DiskCount)
	}
	if cfg.Puzzle.MaxDisks != 10 {
		t.Errorf("expected max_disks 10, got %d", cfg.Puzzle.MaxDisks)
	}
	if cfg.Timing.AutoMoveDelay != 4*time.Second {
		t.Errorf("expected auto_move_delay 4s, got %s", cfg.Timing.AutoMoveDelay)
	}
	if cfg.Timing.MessageDuration != 3*time.Second {
		t.Errorf("expected message_duration 3s, got %s", cfg.Timing.MessageDuration)
	}
	if cfg.Timing.WinMessageDelay != 300*time.Millisecond {
		t.Errorf("expected win_message_delay 300ms, got %s", cfg.Timing.WinMessageDelay)
	}
	if cfg.Network.UIPort != 8080 {
		t.Errorf("expected ui_port 8080, got %d", cfg.Network.UIPort)
	}
	if cfg.MQTT.URL != "tcp://localhost:1883" {
		t.Errorf("unexpected mqtt url %q", cfg.MQTT.URL)
	}
}

func TestLoadFullFile(t *testing.T) {
	t.Setenv("MQTT_URL", "tcp://broker:1883")
	path := writeConfig(t, `version: 1
room:
  id: lobby
  name: Lobby Tower
puzzle:
  disk_count: 5
  max_disks: 8
timing:
  auto_move_delay: 500ms
network:
  ui_port: 9090
mqtt:
  enabled: true
  topic_prefix: towers
postgres:
  enabled: true
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Room.ID != "lobby" || cfg.Puzzle.DiskCount != 5 || cfg.Puzzle.MaxDisks != 8 {
		t.Errorf("unexpected puzzle section: %+v %+v", cfg.Room, cfg.Puzzle)
	}
	if cfg.Timing.AutoMoveDelay != 500*time.Millisecond {
		t.Errorf("expected 500ms, got %s", cfg.Timing.AutoMoveDelay)
	}
	if !cfg.MQTT.Enabled || cfg.MQTT.TopicPrefix != "towers" || cfg.MQTT.URL != "tcp://broker:1883" {
		t.Errorf("unexpected mqtt section: %+v", cfg.MQTT)
	}
	if !cfg.Postgres.Enabled {
		t.Error("expected postgres enabled")
	}
}

func TestLoadRejectsVersion(t *testing.T) {
	path := writeConfig(t, "version: 2\n")
	if _, err := Load(path); err == nil {
		t.Error("expected error for version 2")
	}
}

func TestLoadRejectsDiskCount(t *testing.T) {
	path := writeConfig(t, "version: 1\npuzzle:\n  disk_count: 12\n")
	if _, err := Load(path); err == nil {
		t.Error("expected error for disk_count above max_disks")
	}

	path = writeConfig(t, "version: 1\npuzzle:\n  disk_count: -1\n")
	if _, err := Load(path); err == nil {
		t.Error("expected error for negative disk_count")
	}
}

func TestLoadOrDefaultMissingFile(t *testing.T) {
	cfg, err := LoadOrDefault(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Puzzle.DiskCount != 3 {
		t.Errorf("expected default config, got %+v", cfg.Puzzle)
	}
}

func TestPathFromEnv(t *testing.T) {
	t.Setenv("HANOI_CONFIG", "/etc/hanoi/custom.yaml")
	if Path() != "/etc/hanoi/custom.yaml" {
		t.Errorf("unexpected path %q", Path())
	}
	t.Setenv("HANOI_CONFIG", "")
	if Path() != DefaultPath {
		t.Errorf("expected default path, got %q", Path())
	}
}
