// Package config handles loading and saving gc configuration.
//
// Configuration follows the XDG Base Directory specification:
//   - Config:  ~/.config/gc/config.yaml
//   - State:   ~/.local/state/gc/ (debug log, last export)
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/vanderheijden86/gridchart/pkg/model"
	"github.com/vanderheijden86/gridchart/pkg/theme"
)

// ExportConfig controls chart image export.
type ExportConfig struct {
	Width  int    `yaml:"width,omitempty"`
	Height int    `yaml:"height,omitempty"`
	Format string `yaml:"format,omitempty"` // png or svg
	Dir    string `yaml:"dir,omitempty"`    // Output directory for exported images
	Marker string `yaml:"marker,omitempty"` // Marker shape for line/scatter charts
}

// UIConfig holds UI preference settings.
type UIConfig struct {
	SplitRatio float64 `yaml:"split_ratio,omitempty"` // Grid/chart split (0.2-0.8)
	ShowPanel  bool    `yaml:"show_panel,omitempty"`  // Column side panel visible at start
}

// DataConfig controls data source handling.
type DataConfig struct {
	Watch        bool          `yaml:"watch,omitempty"`
	PollInterval time.Duration `yaml:"poll_interval,omitempty"`
}

// Config is the top-level configuration for gc.
type Config struct {
	// ChartThemes is the ordered list of themes offered in the theme picker.
	ChartThemes         []string            `yaml:"chart_themes,omitempty"`
	CustomThemes        []theme.CustomTheme `yaml:"custom_themes,omitempty"`
	DefaultChartType    model.ChartType     `yaml:"default_chart_type,omitempty"`
	DefaultTheme        string              `yaml:"default_theme,omitempty"`
	SuppressChartRanges bool                `yaml:"suppress_chart_ranges,omitempty"`
	Export              ExportConfig        `yaml:"export,omitempty"`
	UI                  UIConfig            `yaml:"ui,omitempty"`
	Data                DataConfig          `yaml:"data,omitempty"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		ChartThemes:      []string{"ag-default", "ag-material", "ag-pastel", "ag-vivid", "ag-solar"},
		DefaultChartType: model.ChartGroupedColumn,
		DefaultTheme:     theme.DefaultName,
		Export: ExportConfig{
			Width:  800,
			Height: 500,
			Format: "png",
			Marker: "circle",
		},
		UI: UIConfig{
			SplitRatio: 0.5,
			ShowPanel:  true,
		},
		Data: DataConfig{
			PollInterval: 2 * time.Second,
		},
	}
}

// ConfigDir returns the XDG config directory for gc.
func ConfigDir() string {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, "gc")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "gc")
}

// StateDir returns the XDG state directory for gc.
func StateDir() string {
	if dir := os.Getenv("XDG_STATE_HOME"); dir != "" {
		return filepath.Join(dir, "gc")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".local", "state", "gc")
}

// ConfigPath returns the full path to config.yaml.
func ConfigPath() string {
	dir := ConfigDir()
	if dir == "" {
		return ""
	}
	return filepath.Join(dir, "config.yaml")
}

// Load reads the config file from the XDG config directory.
// Returns DefaultConfig if the file doesn't exist.
func Load() (Config, error) {
	path := ConfigPath()
	if path == "" {
		return DefaultConfig(), nil
	}
	return LoadFrom(path)
}

// LoadFrom reads config from a specific path.
// Returns DefaultConfig if the file doesn't exist.
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

	cfg.Export.Dir = expandHome(cfg.Export.Dir)
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks cross-field consistency.
func (c Config) Validate() error {
	if c.DefaultChartType != "" && !c.DefaultChartType.IsValid() {
		return fmt.Errorf("unknown default_chart_type %q", c.DefaultChartType)
	}
	if c.UI.SplitRatio != 0 && (c.UI.SplitRatio < 0.2 || c.UI.SplitRatio > 0.8) {
		return fmt.Errorf("ui.split_ratio must be between 0.2 and 0.8, got %v", c.UI.SplitRatio)
	}
	switch strings.ToLower(c.Export.Format) {
	case "", "png", "svg":
	default:
		return fmt.Errorf("export.format must be png or svg, got %q", c.Export.Format)
	}
	if _, err := theme.NewService(c.CustomThemes); err != nil {
		return err
	}
	known := make(map[string]bool, len(c.CustomThemes))
	for _, ct := range c.CustomThemes {
		known[ct.Name] = true
	}
	for _, name := range c.ChartThemes {
		if !theme.IsStock(name) && !known[name] {
			return fmt.Errorf("chart_themes: unknown theme %q", name)
		}
	}
	return nil
}

// Save writes the config to the XDG config directory.
func Save(cfg Config) error {
	path := ConfigPath()
	if path == "" {
		return fmt.Errorf("cannot determine config directory")
	}
	return SaveTo(cfg, path)
}

// SaveTo writes the config to a specific path.
func SaveTo(cfg Config, path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
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

// ThemeService builds the theme lookup service from the custom themes.
func (c Config) ThemeService() (*theme.Service, error) {
	return theme.NewService(c.CustomThemes)
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
