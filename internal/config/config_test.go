package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaults(t *testing.T) {
	cfg := Default()
	if cfg.Farm.GridSize != 8 || cfg.Farm.Occupancy != 0.75 {
		t.Errorf("farm defaults = %+v", cfg.Farm)
	}
	want := TimersConfig{
		WeatherDrift:    30 * time.Second,
		AutoIrrigation:  600 * time.Second,
		Analysis:        300 * time.Second,
		Snapshot:        10 * time.Second,
		NotificationTTL: 5 * time.Second,
	}
	if cfg.Timers != want {
		t.Errorf("timers = %+v, want %+v", cfg.Timers, want)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults do not validate: %v", err)
	}
	start, end, err := cfg.Season.Bounds()
	if err != nil {
		t.Fatal(err)
	}
	if start != time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC) || end != time.Date(2024, 11, 30, 0, 0, 0, 0, time.UTC) {
		t.Errorf("season = %s..%s", start, end)
	}
}

func TestLoadFileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "farm.yaml")
	data := "farm:\n  grid_size: 4\ntimers:\n  snapshot: 2s\nmqtt:\n  host: broker\n"
	if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("RABBITMQ_PORT", "1884")
	t.Setenv("WEATHER_LAT", "45,5")
	t.Setenv("FARM_SEED", "not-a-number")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Farm.GridSize != 4 || cfg.Timers.Snapshot != 2*time.Second {
		t.Errorf("file overrides not applied: %+v %+v", cfg.Farm, cfg.Timers)
	}
	if cfg.Timers.WeatherDrift != 30*time.Second {
		t.Errorf("unset timer lost its default: %s", cfg.Timers.WeatherDrift)
	}
	if cfg.MQTT.Host != "broker" || cfg.MQTT.Port != 1884 {
		t.Errorf("mqtt = %+v", cfg.MQTT)
	}
	if cfg.Weather.Latitude != 45.5 {
		t.Errorf("latitude = %v, want 45.5", cfg.Weather.Latitude)
	}
	if cfg.Farm.Seed != 0 {
		t.Errorf("bad FARM_SEED should keep the default, got %d", cfg.Farm.Seed)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"grid", func(c *Config) { c.Farm.GridSize = 0 }},
		{"occupancy", func(c *Config) { c.Farm.Occupancy = 1.5 }},
		{"timer", func(c *Config) { c.Timers.Analysis = 0 }},
		{"season order", func(c *Config) { c.Season.End = "2024-01-01" }},
		{"season format", func(c *Config) { c.Season.Start = "01/03/2024" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected a validation error")
			}
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected an error for a missing file")
	}
}
