// Package config loads the farm service configuration: embedded defaults,
// an optional YAML file, then environment overrides.
package config

import (
	_ "embed"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

const dateLayout = "2006-01-02"

type Config struct {
	Farm    FarmConfig    `yaml:"farm"`
	Timers  TimersConfig  `yaml:"timers"`
	Season  SeasonConfig  `yaml:"season"`
	Weather WeatherConfig `yaml:"weather"`
	HTTP    AddrConfig    `yaml:"http"`
	GRPC    AddrConfig    `yaml:"grpc"`
	DB      DBConfig      `yaml:"db"`
	MQTT    MQTTConfig    `yaml:"mqtt"`
}

type FarmConfig struct {
	GridSize  int     `yaml:"grid_size"`
	Occupancy float64 `yaml:"occupancy"` // probability a cell is planted
	Seed      int64   `yaml:"seed"`
}

// TimersConfig holds the periods of the background loops.
type TimersConfig struct {
	WeatherDrift    time.Duration `yaml:"weather_drift"`
	AutoIrrigation  time.Duration `yaml:"auto_irrigation"`
	Analysis        time.Duration `yaml:"analysis"`
	Snapshot        time.Duration `yaml:"snapshot"`
	NotificationTTL time.Duration `yaml:"notification_ttl"`
}

type SeasonConfig struct {
	Start string `yaml:"start"`
	End   string `yaml:"end"`
}

// Bounds parses the season dates.
func (s SeasonConfig) Bounds() (start, end time.Time, err error) {
	if start, err = time.Parse(dateLayout, s.Start); err != nil {
		return start, end, fmt.Errorf("season start: %w", err)
	}
	if end, err = time.Parse(dateLayout, s.End); err != nil {
		return start, end, fmt.Errorf("season end: %w", err)
	}
	if !end.After(start) {
		return start, end, fmt.Errorf("season end %s is not after start %s", s.End, s.Start)
	}
	return start, end, nil
}

type WeatherConfig struct {
	Latitude  float64       `yaml:"latitude"`
	Longitude float64       `yaml:"longitude"`
	PowerURL  string        `yaml:"power_url"`
	Timeout   time.Duration `yaml:"timeout"`
	Days      int           `yaml:"days"` // lookback window of the daily query
}

type AddrConfig struct {
	Addr string `yaml:"addr"`
}

type DBConfig struct {
	Path string `yaml:"path"`
}

type MQTTConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	ClientID string `yaml:"client_id"`
}

// Default returns the embedded defaults.
func Default() *Config {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		panic(fmt.Sprintf("config: embedded defaults: %v", err))
	}
	return cfg
}

// Load reads the defaults, overlays the file at path (if any) and applies
// the environment overrides.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}
	cfg.applyEnv()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	c.Farm.GridSize = getenvInt("FARM_GRID_SIZE", c.Farm.GridSize)
	c.Farm.Occupancy = getenvFloat("FARM_OCCUPANCY", c.Farm.Occupancy)
	c.Farm.Seed = int64(getenvInt("FARM_SEED", int(c.Farm.Seed)))

	c.Timers.Snapshot = getenvDuration("SNAPSHOT_INTERVAL", c.Timers.Snapshot)
	c.Timers.AutoIrrigation = getenvDuration("AUTO_IRRIGATION_INTERVAL", c.Timers.AutoIrrigation)

	c.Weather.Latitude = getenvFloat("WEATHER_LAT", c.Weather.Latitude)
	c.Weather.Longitude = getenvFloat("WEATHER_LON", c.Weather.Longitude)
	c.Weather.PowerURL = getenv("POWER_URL", c.Weather.PowerURL)

	c.HTTP.Addr = getenv("HTTP_ADDR", c.HTTP.Addr)
	c.GRPC.Addr = getenv("GRPC_ADDR", c.GRPC.Addr)
	c.DB.Path = getenv("FARM_DB_PATH", c.DB.Path)

	c.MQTT.Host = getenv("RABBITMQ_HOST", c.MQTT.Host)
	c.MQTT.Port = getenvInt("RABBITMQ_PORT", c.MQTT.Port)
	c.MQTT.User = getenv("RABBITMQ_USER", c.MQTT.User)
	c.MQTT.Password = getenv("RABBITMQ_PASSWORD", c.MQTT.Password)
	c.MQTT.ClientID = getenv("HOSTNAME", c.MQTT.ClientID)
}

// Validate rejects values the simulation cannot run with.
func (c *Config) Validate() error {
	if c.Farm.GridSize <= 0 {
		return fmt.Errorf("config: grid_size must be positive, got %d", c.Farm.GridSize)
	}
	if c.Farm.Occupancy <= 0 || c.Farm.Occupancy > 1 {
		return fmt.Errorf("config: occupancy must be in (0,1], got %v", c.Farm.Occupancy)
	}
	for name, d := range map[string]time.Duration{
		"weather_drift":    c.Timers.WeatherDrift,
		"auto_irrigation":  c.Timers.AutoIrrigation,
		"analysis":         c.Timers.Analysis,
		"snapshot":         c.Timers.Snapshot,
		"notification_ttl": c.Timers.NotificationTTL,
	} {
		if d <= 0 {
			return fmt.Errorf("config: timer %s must be positive, got %s", name, d)
		}
	}
	if _, _, err := c.Season.Bounds(); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}

func getenv(k, d string) string {
	if v := strings.TrimSpace(os.Getenv(k)); v != "" {
		return v
	}
	return d
}

func getenvInt(k string, d int) int {
	if v := strings.TrimSpace(os.Getenv(k)); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return d
}

func getenvFloat(k string, d float64) float64 {
	v := strings.TrimSpace(os.Getenv(k))
	if v == "" {
		return d
	}
	f, err := strconv.ParseFloat(strings.ReplaceAll(v, ",", "."), 64)
	if err != nil {
		return d
	}
	return f
}

func getenvDuration(k string, d time.Duration) time.Duration {
	if v := strings.TrimSpace(os.Getenv(k)); v != "" {
		if dur, err := time.ParseDuration(v); err == nil {
			return dur
		}
	}
	return d
}
