// Package config loads and saves pitgraph settings.
//
// Paths follow the XDG Base Directory layout:
//   - Config: ~/.config/pitgraph/config.yaml
//   - State:  ~/.local/state/pitgraph/ (saved node positions)
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// AppName names the XDG subdirectories.
const AppName = "pitgraph"

// Snapshot formats.
const (
	FormatSVG = "svg"
	FormatPNG = "png"
)

// UIConfig holds terminal explorer preferences.
type UIConfig struct {
	WordWrap  int     `yaml:"word_wrap,omitempty"`  // panel wrap width, 0 = terminal width
	Theme     string  `yaml:"theme,omitempty"`      // glamour style: dark, light, notty, auto
	ListRatio float64 `yaml:"list_ratio,omitempty"` // share of the width given to the node list
}

// ExportConfig controls generated artifacts.
type ExportConfig struct {
	OutputDir      string `yaml:"output_dir,omitempty"`
	ViewerTitle    string `yaml:"viewer_title,omitempty"`
	SnapshotFormat string `yaml:"snapshot_format,omitempty"` // svg or png
}

// Config is the top-level configuration.
type Config struct {
	// PositionsPath is the saved global positions file. Empty selects the
	// default in the state directory.
	PositionsPath string `yaml:"positions_path,omitempty"`
	// DataPath loads declarations from a YAML or JSON file instead of the
	// compiled dataset.
	DataPath string `yaml:"data_path,omitempty"`
	// PublicAsSource lets a Public node act as a data-flow source in the
	// data-flow focus.
	PublicAsSource bool `yaml:"public_as_source,omitempty"`

	UI     UIConfig     `yaml:"ui,omitempty"`
	Export ExportConfig `yaml:"export,omitempty"`
}

// DefaultConfig returns the settings used when no file exists.
func DefaultConfig() Config {
	return Config{
		UI: UIConfig{
			Theme:     "auto",
			ListRatio: 0.4,
		},
		Export: ExportConfig{
			OutputDir:      "pitgraph-export",
			ViewerTitle:    "RGES-PIT Data Flow",
			SnapshotFormat: FormatSVG,
		},
	}
}

func xdgDir(env string, fallback ...string) string {
	if dir := os.Getenv(env); dir != "" {
		return filepath.Join(dir, AppName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(append(append([]string{home}, fallback...), AppName)...)
}

// ConfigDir returns the XDG config directory.
func ConfigDir() string { return xdgDir("XDG_CONFIG_HOME", ".config") }

// StateDir returns the XDG state directory.
func StateDir() string { return xdgDir("XDG_STATE_HOME", ".local", "state") }

// ConfigPath returns the full path to config.yaml, or "" when the home
// directory is unknown.
func ConfigPath() string {
	dir := ConfigDir()
	if dir == "" {
		return ""
	}
	return filepath.Join(dir, "config.yaml")
}

// DefaultPositionsPath is where positions are kept when the config names
// none.
func DefaultPositionsPath() string {
	dir := StateDir()
	if dir == "" {
		return "positions.json"
	}
	return filepath.Join(dir, "positions.json")
}

// Positions returns the effective positions file path.
func (c Config) Positions() string {
	if c.PositionsPath != "" {
		return c.PositionsPath
	}
	return DefaultPositionsPath()
}

// Load reads the config from the XDG config directory.
func Load() (Config, error) {
	path := ConfigPath()
	if path == "" {
		return DefaultConfig(), nil
	}
	return LoadFrom(path)
}

// LoadFrom reads the config at path. A missing file yields DefaultConfig.
func LoadFrom(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("%s: %w", path, err)
	}

	cfg.PositionsPath = expandHome(cfg.PositionsPath)
	cfg.DataPath = expandHome(cfg.DataPath)
	cfg.Export.OutputDir = expandHome(cfg.Export.OutputDir)
	return cfg, nil
}

// Validate rejects values no component can honor.
func (c Config) Validate() error {
	switch strings.ToLower(c.Export.SnapshotFormat) {
	case "", FormatSVG, FormatPNG:
	default:
		return fmt.Errorf("snapshot_format %q: want svg or png", c.Export.SnapshotFormat)
	}
	if c.UI.ListRatio < 0 || c.UI.ListRatio >= 1 {
		return fmt.Errorf("ui.list_ratio %v: want a value in [0, 1)", c.UI.ListRatio)
	}
	if c.UI.WordWrap < 0 {
		return fmt.Errorf("ui.word_wrap %d: must not be negative", c.UI.WordWrap)
	}
	return nil
}

// Save writes cfg to the XDG config directory.
func Save(cfg Config) error {
	path := ConfigPath()
	if path == "" {
		return fmt.Errorf("cannot determine config directory")
	}
	return SaveTo(cfg, path)
}

// SaveTo writes cfg to path.
func SaveTo(cfg Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

func expandHome(path string) string {
	if !strings.HasPrefix(path, "~") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[1:])
}
