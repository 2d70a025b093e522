package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the application configuration.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Log      LogConfig      `yaml:"log"`
	DB       DBConfig       `yaml:"db"`
	Assets   AssetsConfig   `yaml:"assets"`
	Editor   EditorConfig   `yaml:"editor"`
	Playback PlaybackConfig `yaml:"playback"`
	Remote   RemoteConfig   `yaml:"remote"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Address string `yaml:"address"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Server   LogSettings `yaml:"server"`
	Requests LogSettings `yaml:"requests"`
}

// LogSettings holds settings for a specific logger.
type LogSettings struct {
	Path  string `yaml:"path"`
	Level string `yaml:"level"`
}

// DBConfig holds database settings.
type DBConfig struct {
	Path string `yaml:"path"`
}

// AssetsConfig holds asset store settings.
type AssetsConfig struct {
	Dir string `yaml:"dir"`
}

// EditorConfig holds authoring-side tunables.
type EditorConfig struct {
	DefaultSegmentDuration float64 `yaml:"default_segment_duration"` // seconds
	ChainMode              bool    `yaml:"chain_mode"`
	SnapEdgePercent        float64 `yaml:"snap_edge_percent"` // segment edge snap threshold, % of image
	SnapPanPixels          float64 `yaml:"snap_pan_pixels"`   // image pan snap threshold, viewport px
	ZoomMin                float64 `yaml:"zoom_min"`
	ZoomMax                float64 `yaml:"zoom_max"`
	AutosaveDebounce       Duration `yaml:"autosave_debounce"`
	ProjectsDir            string  `yaml:"projects_dir"`
}

// PlaybackConfig holds player settings.
type PlaybackConfig struct {
	CountdownSeconds   int      `yaml:"countdown_seconds"`
	CountdownBeep      bool     `yaml:"countdown_beep"`
	CountdownPreview   bool     `yaml:"countdown_preview"`
	SpeedMin           float64  `yaml:"speed_min"`
	SpeedMax           float64  `yaml:"speed_max"`
	TickInterval       Duration `yaml:"tick_interval"`
	SeekDebounce       Duration `yaml:"seek_debounce"`
	ControlsHideDelay  Duration `yaml:"controls_hide_delay"`
	ControlsAlwaysShow bool     `yaml:"controls_always_show"`
}

// RemoteConfig holds remote-control server settings.
type RemoteConfig struct {
	Enabled bool `yaml:"enabled"`
	Port    int  `yaml:"port"` // HTTP port; the WebSocket server binds port+1
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Address: "localhost:1931",
		},
		Log: LogConfig{
			Server: LogSettings{
				Path:  "./logs/server.log",
				Level: "INFO",
			},
			Requests: LogSettings{
				Path:  "./logs/requests.log",
				Level: "INFO",
			},
		},
		DB: DBConfig{
			Path: "./data/segitelep.db",
		},
		Assets: AssetsConfig{
			Dir: "./data/global_assets",
		},
		Editor: EditorConfig{
			DefaultSegmentDuration: 5.0,
			ChainMode:              true,
			SnapEdgePercent:        1.5,
			SnapPanPixels:          24,
			ZoomMin:                0.5,
			ZoomMax:                4.0,
			AutosaveDebounce:       Duration(2 * time.Second),
			ProjectsDir:            "./data/projects",
		},
		Playback: PlaybackConfig{
			CountdownSeconds:   3,
			CountdownBeep:      true,
			CountdownPreview:   true,
			SpeedMin:           0.5,
			SpeedMax:           2.0,
			TickInterval:       Duration(16 * time.Millisecond),
			SeekDebounce:       Duration(250 * time.Millisecond),
			ControlsHideDelay:  Duration(3 * time.Second),
			ControlsAlwaysShow: false,
		},
		Remote: RemoteConfig{
			Enabled: false,
			Port:    8765,
		},
	}
}

// Load loads the configuration from the given path.
// If the file does not exist, it creates it with default values.
// If the file exists, it merges defaults with existing values but does NOT
// save back to disk (to preserve user formatting and comments).
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create config directory: %w", err)
	}

	if _, err := os.Stat(path); err == nil {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
		return cfg, nil
	}

	if err := Save(path, cfg); err != nil {
		return nil, fmt.Errorf("failed to save config file: %w", err)
	}
	return cfg, nil
}

// Save writes the configuration to the path.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	header := []byte(`# SegiTelep Configuration
# ----------------------
# Supported duration units: ns, us, ms, s, m, h

`)
	data = append(header, data...)

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
