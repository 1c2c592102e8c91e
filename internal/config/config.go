package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultPath is used when HANOI_CONFIG is not set.
const DefaultPath = "hanoi.yaml"

type Config struct {
	Version int `yaml:"version"`
	Room    struct {
		ID   string `yaml:"id"`
		Name string `yaml:"name"`
	} `yaml:"room"`
	Puzzle struct {
		DiskCount int `yaml:"disk_count"`
		MaxDisks  int `yaml:"max_disks"`
	} `yaml:"puzzle"`
	Timing struct {
		AutoMoveDelay   time.Duration `yaml:"auto_move_delay"`
		MessageDuration time.Duration `yaml:"message_duration"`
		WinMessageDelay time.Duration `yaml:"win_message_delay"`
	} `yaml:"timing"`
	Network struct {
		UIPort int `yaml:"ui_port"`
	} `yaml:"network"`
	MQTT struct {
		Enabled     bool   `yaml:"enabled"`
		URL         string `yaml:"url"`
		TopicPrefix string `yaml:"topic_prefix"`
	} `yaml:"mqtt"`
	Postgres struct {
		Enabled bool `yaml:"enabled"`
	} `yaml:"postgres"`
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	cfg := &Config{Version: 1}
	cfg.applyDefaults()
	return cfg
}

// Path returns HANOI_CONFIG or DefaultPath.
func Path() string {
	if p := os.Getenv("HANOI_CONFIG"); p != "" {
		return p
	}
	return DefaultPath
}

func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, err
	}

	if cfg.Version != 1 {
		return nil, fmt.Errorf("unsupported hanoi.yaml version: %d", cfg.Version)
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// LoadOrDefault loads path, falling back to Default when the file is missing.
func LoadOrDefault(path string) (*Config, error) {
	cfg, err := Load(path)
	if os.IsNotExist(err) {
		return Default(), nil
	}
	return cfg, err
}

func (c *Config) applyDefaults() {
	if c.Room.ID == "" {
		c.Room.ID = "hanoi"
	}
	if c.Room.Name == "" {
		c.Room.Name = "Tower of Hanoi"
	}
	if c.Puzzle.DiskCount == 0 {
		c.Puzzle.DiskCount = 3
	}
	if c.Puzzle.MaxDisks == 0 {
		c.Puzzle.MaxDisks = 10
	}
	if c.Timing.AutoMoveDelay == 0 {
		c.Timing.AutoMoveDelay = 4 * time.Second
	}
	if c.Timing.MessageDuration == 0 {
		c.Timing.MessageDuration = 3 * time.Second
	}
	if c.Timing.WinMessageDelay == 0 {
		c.Timing.WinMessageDelay = 300 * time.Millisecond
	}
	if c.Network.UIPort == 0 {
		c.Network.UIPort = 8080
	}
	if url := os.Getenv("MQTT_URL"); url != "" {
		c.MQTT.URL = url
	}
	if c.MQTT.URL == "" {
		c.MQTT.URL = "tcp://localhost:1883"
	}
	if c.MQTT.TopicPrefix == "" {
		c.MQTT.TopicPrefix = "hanoi"
	}
}

// Validate checks the ranges the puzzle depends on.
func (c *Config) Validate() error {
	if c.Puzzle.MaxDisks < 1 {
		return fmt.Errorf("puzzle.max_disks must be at least 1, got %d", c.Puzzle.MaxDisks)
	}
	if c.Puzzle.DiskCount < 1 || c.Puzzle.DiskCount > c.Puzzle.MaxDisks {
		return fmt.Errorf("puzzle.disk_count must be within 1..%d, got %d", c.Puzzle.MaxDisks, c.Puzzle.DiskCount)
	}
	if c.Timing.AutoMoveDelay < 0 || c.Timing.MessageDuration < 0 || c.Timing.WinMessageDelay < 0 {
		return fmt.Errorf("timing values must not be negative")
	}
	if c.Network.UIPort < 1 || c.Network.UIPort > 65535 {
		return fmt.Errorf("network.ui_port out of range: %d", c.Network.UIPort)
	}
	return nil
}
