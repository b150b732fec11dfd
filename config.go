package rsgview

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the viewer configuration, usually loaded from a YAML file and
// then adjusted by command-line flags.
type Config struct {
	// Server configures the scene-graph connection.
	Server ServerConfig `yaml:"server"`

	// Draw configures the debug-draw UDP channel.
	Draw DrawConfig `yaml:"draw"`

	// Window configures the viewer window.
	Window WindowConfig `yaml:"window"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level"`

	// Record, when set, is a file every server message is recorded to.
	Record string `yaml:"record,omitempty"`

	// Replay, when set, is a recording played back instead of connecting
	// to a server.
	Replay string `yaml:"replay,omitempty"`

	// ReplaySpeed scales replay pacing. Zero or less plays as fast as
	// messages can be applied.
	ReplaySpeed float64 `yaml:"replay_speed"`
}

// ServerConfig configures the scene-graph connection.
type ServerConfig struct {
	// Address is the simulation server's monitor endpoint, host:port.
	Address string `yaml:"address"`

	// RetryInterval is how long to wait between connection attempts.
	RetryInterval time.Duration `yaml:"retry_interval"`
}

// DrawConfig configures the debug-draw channel.
type DrawConfig struct {
	// Listen is the UDP address draw packets are received on.
	Listen string `yaml:"listen"`

	// Disabled turns the draw channel off entirely.
	Disabled bool `yaml:"disabled"`
}

// WindowConfig configures the viewer window.
type WindowConfig struct {
	// Width and Height are the initial window size in pixels.
	Width  int `yaml:"width"`
	Height int `yaml:"height"`

	// Title is the window title.
	Title string `yaml:"title"`

	// ScreenshotDir is where screenshots are written.
	ScreenshotDir string `yaml:"screenshot_dir"`

	// ShowHUD shows the match overlay at startup.
	ShowHUD bool `yaml:"show_hud"`
}

// DefaultConfig returns the configuration used when no file is given.
func DefaultConfig() Config {
	return Config{
		Server: ServerConfig{
			Address:       "localhost:3200",
			RetryInterval: 2 * time.Second,
		},
		Draw: DrawConfig{
			Listen: ":32769",
		},
		Window: WindowConfig{
			Width:         1280,
			Height:        800,
			Title:         "rsgview",
			ScreenshotDir: "screenshots",
			ShowHUD:       true,
		},
		LogLevel:    "info",
		ReplaySpeed: 1,
	}
}

// LoadConfig reads a YAML file over the defaults.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, cfg.Validate()
}

// Validate reports configuration errors.
func (c Config) Validate() error {
	var errs []error
	if c.Server.Address == "" && c.Replay == "" {
		errs = append(errs, errors.New("server.address is empty and no replay is set"))
	}
	if !c.Draw.Disabled && c.Draw.Listen == "" {
		errs = append(errs, errors.New("draw.listen is empty"))
	}
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		errs = append(errs, fmt.Errorf("window size %dx%d is not positive", c.Window.Width, c.Window.Height))
	}
	if c.Record != "" && c.Replay != "" {
		errs = append(errs, errors.New("record and replay are mutually exclusive"))
	}
	if _, err := c.SlogLevel(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// SlogLevel parses LogLevel.
func (c Config) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo, fmt.Errorf("log_level: %w", err)
	}
	return level, nil
}
