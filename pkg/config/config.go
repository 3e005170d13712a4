package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"altimeter/pkg/baro"
)

// Environment overrides.
const (
	EnvDBPath   = "ALTIMETER_DB_PATH"
	EnvListen   = "ALTIMETER_LISTEN"
	EnvKollsman = "ALTIMETER_KOLLSMAN"
)

// Sensor providers.
const (
	SensorSynthetic = "synthetic"
	SensorReplay    = "replay"
)

// Config holds the application configuration.
type Config struct {
	Log       LogConfig       `yaml:"log"`
	DB        DBConfig        `yaml:"db"`
	Server    ServerConfig    `yaml:"server"`
	Altimeter AltimeterConfig `yaml:"altimeter"`
	Wheel     WheelConfig     `yaml:"wheel"`
	Gauge     GaugeConfig     `yaml:"gauge"`
	Sensor    SensorConfig    `yaml:"sensor"`
	Render    RenderConfig    `yaml:"render"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Server   LogSettings `yaml:"server"`
	Requests LogSettings `yaml:"requests"`
	Events   LogSettings `yaml:"events"`
}

// LogSettings holds settings for a specific logger.
type LogSettings struct {
	Path  string `yaml:"path"`
	Level string `yaml:"level"`
}

// DBConfig holds database settings.
type DBConfig struct {
	Path string `yaml:"path"`
	// Retention bounds how long recorded samples are kept.
	Retention Duration `yaml:"retention"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Address        string   `yaml:"address"`
	StreamInterval Duration `yaml:"stream_interval"`
}

// AltimeterConfig holds instrument presentation settings.
type AltimeterConfig struct {
	AltitudeUnits string   `yaml:"altitude_units"`
	PressureUnits string   `yaml:"pressure_units"`
	Kollsman      Pressure `yaml:"kollsman"`
}

// WheelConfig holds Kollsman wheel settings.
type WheelConfig struct {
	FlingEnabled   bool     `yaml:"fling_enabled"`
	RowSpacing     float64  `yaml:"row_spacing"`
	FlingDuration  Duration `yaml:"fling_duration"`
	SettleDuration Duration `yaml:"settle_duration"`
	FrameInterval  Duration `yaml:"frame_interval"`
	Width          int      `yaml:"width"`
	Height         int      `yaml:"height"`
}

// GaugeConfig holds digit gauge settings.
type GaugeConfig struct {
	FontSize float64 `yaml:"font_size"`
	Padding  float64 `yaml:"padding"`
}

// SensorConfig selects where pressure samples come from.
type SensorConfig struct {
	Provider   string          `yaml:"provider"`
	ReplayFile string          `yaml:"replay_file"`
	Pacing     bool            `yaml:"pacing"`
	Record     bool            `yaml:"record"`
	Synthetic  SyntheticConfig `yaml:"synthetic"`
}

// SyntheticConfig shapes the built-in flight profile.
type SyntheticConfig struct {
	StartAltitude Distance `yaml:"start_altitude"`
	Interval      Duration `yaml:"interval"`
	Ripple        Distance `yaml:"ripple"`
	Loop          bool     `yaml:"loop"`
}

// RenderConfig holds instrument image settings.
type RenderConfig struct {
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Log: LogConfig{
			Server: LogSettings{
				Path:  "./logs/server.log",
				Level: "INFO",
			},
			Requests: LogSettings{
				Path:  "./logs/requests.log",
				Level: "INFO",
			},
			Events: LogSettings{
				Path: "./logs/events.log",
			},
		},
		DB: DBConfig{
			Path:      "./data/altimeter.db",
			Retention: Duration(30 * Day),
		},
		Server: ServerConfig{
			Address:        "localhost:1930",
			StreamInterval: Duration(250 * time.Millisecond),
		},
		Altimeter: AltimeterConfig{
			AltitudeUnits: string(baro.Feet),
			PressureUnits: string(baro.InHg),
			Kollsman:      Pressure(baro.StandardPressure),
		},
		Wheel: WheelConfig{
			FlingEnabled:   true,
			RowSpacing:     21,
			FlingDuration:  Duration(time.Second),
			SettleDuration: Duration(250 * time.Millisecond),
			FrameInterval:  Duration(20 * time.Millisecond),
			Width:          200,
			Height:         320,
		},
		Gauge: GaugeConfig{
			FontSize: 24,
			Padding:  5,
		},
		Sensor: SensorConfig{
			Provider: SensorSynthetic,
			Pacing:   true,
			Record:   false,
			Synthetic: SyntheticConfig{
				StartAltitude: Distance(300),
				Interval:      Duration(100 * time.Millisecond),
				Ripple:        Distance(0.5),
				Loop:          true,
			},
		},
		Render: RenderConfig{
			Width:  480,
			Height: 160,
		},
	}
}

// Load loads the configuration from the given path.
// If the file does not exist, it creates it with default values.
// If the file exists, it merges defaults with existing values but does NOT
// save back to disk. A .env file next to the config is loaded into the
// environment first; environment overrides are applied last.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := godotenv.Load(filepath.Join(dir, ".env")); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Warn("Failed to load .env", "error", err)
	}

	if _, err := os.Stat(path); err == nil {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	} else if err := Save(path, cfg); err != nil {
		return nil, fmt.Errorf("failed to save config file: %w", err)
	}

	if err := applyEnv(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) error {
	if v := os.Getenv(EnvDBPath); v != "" {
		cfg.DB.Path = v
	}
	if v := os.Getenv(EnvListen); v != "" {
		cfg.Server.Address = v
	}
	if v := os.Getenv(EnvKollsman); v != "" {
		mb, err := ParsePressure(v)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", EnvKollsman, err)
		}
		cfg.Altimeter.Kollsman = Pressure(mb)
	}
	return nil
}

// Validate checks enum fields and ranges.
func (c *Config) Validate() error {
	if !baro.AltitudeUnit(c.Altimeter.AltitudeUnits).Valid() {
		return fmt.Errorf("invalid altitude_units '%s': must be feet or meters", c.Altimeter.AltitudeUnits)
	}
	if !baro.PressureUnit(c.Altimeter.PressureUnits).Valid() {
		return fmt.Errorf("invalid pressure_units '%s': must be inhg or mb", c.Altimeter.PressureUnits)
	}
	if c.Altimeter.Kollsman <= 0 {
		return fmt.Errorf("invalid kollsman %.2f: must be positive", float64(c.Altimeter.Kollsman))
	}
	switch c.Sensor.Provider {
	case SensorSynthetic:
	case SensorReplay:
		if c.Sensor.ReplayFile == "" {
			return fmt.Errorf("sensor provider 'replay' needs replay_file")
		}
	default:
		return fmt.Errorf("invalid sensor provider '%s': must be synthetic or replay", c.Sensor.Provider)
	}
	if c.Wheel.RowSpacing <= 0 {
		return fmt.Errorf("invalid wheel row_spacing %v", c.Wheel.RowSpacing)
	}
	if c.Render.Width <= 0 || c.Render.Height <= 0 {
		return fmt.Errorf("invalid render size %dx%d", c.Render.Width, c.Render.Height)
	}
	return nil
}

// Save writes the configuration to the path.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	header := []byte(`# Altimeter Configuration
# -----------------------
# Supported Units:
#   Duration: ns, us (or µs), ms, s, m, h, d (day), w (week)
#   Distance: m (meters), km (kilometers), nm (nautical miles), ft (feet)
#   Pressure: mb, hpa, inhg
# Environment overrides: ALTIMETER_DB_PATH, ALTIMETER_LISTEN, ALTIMETER_KOLLSMAN

`)
	data = append(header, data...)

	reAlt := regexp.MustCompile(`(?m)^(\s+)altitude_units:`)
	data = reAlt.ReplaceAll(data, []byte("${1}# Options: feet, meters\n${1}altitude_units:"))

	rePress := regexp.MustCompile(`(?m)^(\s+)pressure_units:`)
	data = rePress.ReplaceAll(data, []byte("${1}# Options: inhg, mb\n${1}pressure_units:"))

	reProvider := regexp.MustCompile(`(?m)^(\s+)provider:`)
	data = reProvider.ReplaceAll(data, []byte("${1}# Options: synthetic, replay\n${1}provider:"))

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// GenerateDefault creates a default config file at the given path.
// Returns nil if the file already exists.
func GenerateDefault(path string) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	return Save(path, DefaultConfig())
}
