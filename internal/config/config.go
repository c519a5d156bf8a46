package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"github.com/philipparndt/gobbox/pkg/yolo"
	"gopkg.in/yaml.v3"
)

// label name files looked up in an image folder when none is configured
var labelNameFiles = []string{"classes.txt", "data.yaml", "data.yml"}

// Catch radius spaces
const (
	SpaceScene = "scene" // radius in image pixels, independent of zoom
	SpaceView  = "view"  // radius in screen pixels, divided by the zoom factor
)

// Config holds the editor settings. Fields may be loaded from a YAML file
// and overridden by command-line flags.
type Config struct {
	CatchRadius      float64 `yaml:"catch_radius"`
	CatchRadiusSpace string  `yaml:"catch_radius_space"`

	LabelsFile string   `yaml:"labels_file"`
	LabelNames []string `yaml:"label_names"`

	Splits    []string `yaml:"splits"`
	TrashDir  string   `yaml:"trash_dir"`
	ReviewDir string   `yaml:"review_dir"`

	// Largest side of the displayed image; larger images are scaled down
	PreviewSize int `yaml:"preview_size"`

	WatchDebounceMs int    `yaml:"watch_debounce_ms"`
	LogLevel        string `yaml:"log_level"`

	Detector DetectorConfig `yaml:"detector"`
}

// DetectorConfig describes the external prediction command. Arguments may
// contain {source} and {output}.
type DetectorConfig struct {
	Command   string   `yaml:"command"`
	Args      []string `yaml:"args"`
	OutputDir string   `yaml:"output_dir"`
}

// Default returns a Config populated with standard defaults
func Default() *Config {
	return &Config{
		CatchRadius:      20,
		CatchRadiusSpace: SpaceScene,
		Splits:           []string{"train", "val", "test"},
		TrashDir:         "deleted",
		ReviewDir:        "pred",
		PreviewSize:      4096,
		WatchDebounceMs:  300,
		LogLevel:         "info",
		Detector: DetectorConfig{
			Command: "yolo",
			Args: []string{
				"predict", "model=yolov8n.pt", "source={source}",
				"save_txt=True", "project={output}", "name=.", "exist_ok=True",
			},
			OutputDir: "pred",
		},
	}
}

// Validate checks the configuration for values the editor cannot work with
func (c *Config) Validate() error {
	if c.CatchRadius <= 0 {
		return fmt.Errorf("catch_radius must be positive, got %v", c.CatchRadius)
	}
	if c.CatchRadiusSpace != SpaceScene && c.CatchRadiusSpace != SpaceView {
		return fmt.Errorf("catch_radius_space must be %q or %q, got %q", SpaceScene, SpaceView, c.CatchRadiusSpace)
	}
	for _, s := range c.Splits {
		if s == "" || s != filepath.Base(s) {
			return fmt.Errorf("invalid split name %q", s)
		}
	}
	if c.WatchDebounceMs < 0 {
		return fmt.Errorf("watch_debounce_ms must not be negative")
	}
	if c.PreviewSize < 0 {
		return fmt.Errorf("preview_size must not be negative")
	}
	if _, err := ParseLevel(c.LogLevel); err != nil {
		return err
	}
	return nil
}

// WatchDebounce returns the debounce interval for label file changes
func (c *Config) WatchDebounce() time.Duration {
	return time.Duration(c.WatchDebounceMs) * time.Millisecond
}

// LabelNamesFor returns the label names used for the images in dir:
// label_names, else labels_file (relative to dir), else the first name
// file found in dir. Without any source nil is returned.
func (c *Config) LabelNamesFor(dir string) ([]string, error) {
	if len(c.LabelNames) > 0 {
		return c.LabelNames, nil
	}

	if c.LabelsFile != "" {
		path := c.LabelsFile
		if !filepath.IsAbs(path) {
			path = filepath.Join(dir, path)
		}
		return yolo.LoadLabelNames(path)
	}

	for _, name := range labelNameFiles {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil {
			return yolo.LoadLabelNames(path)
		}
	}
	return nil, nil
}

// DefaultPath returns the per-user configuration file path
func DefaultPath() string {
	return filepath.Join(xdg.ConfigHome, "gobbox", "config.yaml")
}

// Load reads the configuration from path. A missing file yields the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// Save writes the configuration to path, creating its directory
func (c *Config) Save(path string) error {
	if err := c.Validate(); err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// ParseLevel converts a log level name into a slog level
func ParseLevel(name string) (slog.Level, error) {
	switch strings.ToLower(name) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level %q", name)
	}
}
