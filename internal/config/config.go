package config

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	"pdfmerge/pkg/types"

	"gopkg.in/yaml.v3"
)

// unsetDebounce marks watch.debounce_ms as absent, since zero is a valid setting.
const unsetDebounce = math.MinInt32

const (
	// RootConfigFile holds merge orders keyed by absolute root path.
	RootConfigFile = ".pdf_merger_config.json"
	// ComponentsFile holds merge orders keyed by subdirectory name.
	ComponentsFile = ".pdf_merger_components.json"
)

// Config represents the application settings.
// Merge orders themselves live in the JSON stores named under Store.
type Config struct {
	Merge struct {
		Pattern string `yaml:"pattern"` // Glob used in pattern selection
		Output  string `yaml:"output"`  // Output name template
		Mode    string `yaml:"mode"`    // pattern, per-directory or whole-root
	} `yaml:"merge"`
	Store struct {
		RootConfigs string `yaml:"root_configs"` // JSON file of merge orders keyed by root path
		Components  string `yaml:"components"`   // JSON file of merge orders keyed by subdirectory name
	} `yaml:"store"`
	History struct {
		Enabled bool   `yaml:"enabled"` // Record produced outputs
		Path    string `yaml:"path"`    // SQLite database file
		Limit   int    `yaml:"limit"`   // Default number of rows shown by `history`
	} `yaml:"history"`
	Watch struct {
		DebounceMillis int `yaml:"debounce_ms"` // Quiet period before a watch-triggered merge
	} `yaml:"watch"`
	Log struct {
		Debug bool `yaml:"debug"`
		JSON  bool `yaml:"json"`
	} `yaml:"log"`
	Theme struct {
		Name    string `yaml:"name"`    // Theme name (default, dark, light, monochrome)
		Success string `yaml:"success"` // Ready / created lines
		Warning string `yaml:"warning"` // Missing components, overwrites
		Error   string `yaml:"error"`   // Failures
		Info    string `yaml:"info"`    // Headers and paths
		Muted   string `yaml:"muted"`   // Skipped subdirectories
	} `yaml:"theme"`
}

// DefaultPath returns ~/.config/pdfmerge/config.yaml.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "pdfmerge", "config.yaml"), nil
}

// LoadConfig loads configuration from the default location
// (~/.config/pdfmerge/config.yaml).
func LoadConfig() (*Config, error) {
	path, err := DefaultPath()
	if err != nil {
		return nil, err
	}
	return LoadConfigFile(path)
}

// LoadConfigFile loads configuration from a specific file path.
// If the file doesn't exist, returns default configuration.
func LoadConfigFile(path string) (*Config, error) {
	cfg := defaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	// Unmarshal into a temporary config to preserve defaults for unset fields
	var tempCfg Config
	tempCfg.Watch.DebounceMillis = unsetDebounce
	if err := yaml.Unmarshal(data, &tempCfg); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}

	if tempCfg.Merge.Pattern != "" {
		cfg.Merge.Pattern = tempCfg.Merge.Pattern
	}
	if tempCfg.Merge.Output != "" {
		cfg.Merge.Output = tempCfg.Merge.Output
	}
	if tempCfg.Merge.Mode != "" {
		cfg.Merge.Mode = tempCfg.Merge.Mode
	}

	if tempCfg.Store.RootConfigs != "" {
		cfg.Store.RootConfigs = expandHome(tempCfg.Store.RootConfigs)
	}
	if tempCfg.Store.Components != "" {
		cfg.Store.Components = expandHome(tempCfg.Store.Components)
	}

	cfg.History.Enabled = tempCfg.History.Enabled
	if tempCfg.History.Path != "" {
		cfg.History.Path = expandHome(tempCfg.History.Path)
	}
	if tempCfg.History.Limit > 0 {
		cfg.History.Limit = tempCfg.History.Limit
	}

	if tempCfg.Watch.DebounceMillis != unsetDebounce {
		cfg.Watch.DebounceMillis = tempCfg.Watch.DebounceMillis
	}

	cfg.Log.Debug = tempCfg.Log.Debug
	cfg.Log.JSON = tempCfg.Log.JSON

	if tempCfg.Theme.Name != "" {
		cfg.ApplyTheme(tempCfg.Theme.Name)
	}
	// Explicit colours override the named theme.
	overrideColor(&cfg.Theme.Success, tempCfg.Theme.Success)
	overrideColor(&cfg.Theme.Warning, tempCfg.Theme.Warning)
	overrideColor(&cfg.Theme.Error, tempCfg.Theme.Error)
	overrideColor(&cfg.Theme.Info, tempCfg.Theme.Info)
	overrideColor(&cfg.Theme.Muted, tempCfg.Theme.Muted)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// defaultConfig returns the default configuration.
func defaultConfig() *Config {
	cfg := &Config{}

	cfg.Merge.Pattern = "*.pdf"
	cfg.Merge.Output = "{directory}_{date}.pdf"
	cfg.Merge.Mode = types.ModePattern.String()

	cfg.Store.RootConfigs = homeFile(RootConfigFile)
	cfg.Store.Components = homeFile(ComponentsFile)

	cfg.History.Enabled = false
	cfg.History.Path = homeFile(filepath.Join(".config", "pdfmerge", "history.db"))
	cfg.History.Limit = 20

	cfg.Watch.DebounceMillis = 1500

	cfg.ApplyTheme("default")
	return cfg
}

// SaveConfig saves the configuration to the specified file.
// It creates parent directories if they don't exist.
func SaveConfig(cfg *Config, path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c == nil {
		return fmt.Errorf("nil config")
	}

	if strings.TrimSpace(c.Merge.Pattern) == "" {
		return fmt.Errorf("merge pattern is required")
	}
	if strings.TrimSpace(c.Merge.Output) == "" {
		return fmt.Errorf("output template is required")
	}
	if strings.ContainsRune(c.Merge.Output, filepath.Separator) {
		return fmt.Errorf("output template must be a file name, got %q", c.Merge.Output)
	}
	if _, err := types.ParseMode(c.Merge.Mode); err != nil {
		return err
	}

	if c.Store.RootConfigs == "" || c.Store.Components == "" {
		return fmt.Errorf("store paths are required")
	}
	if filepath.Clean(c.Store.RootConfigs) == filepath.Clean(c.Store.Components) {
		return fmt.Errorf("root and component merge orders must use different files")
	}

	if c.History.Enabled && c.History.Path == "" {
		return fmt.Errorf("history path is required when history is enabled")
	}
	if c.History.Limit < 0 {
		return fmt.Errorf("history limit must be >= 0")
	}

	if c.Watch.DebounceMillis < 0 {
		return fmt.Errorf("watch debounce must be >= 0 milliseconds")
	}

	return nil
}

// SelectionMode returns the parsed merge mode.
func (c *Config) SelectionMode() types.SelectionMode {
	m, _ := types.ParseMode(c.Merge.Mode)
	return m
}

// NewTestConfig creates a configuration whose stores live under dir.
func NewTestConfig(dir string) *Config {
	cfg := defaultConfig()
	cfg.Store.RootConfigs = filepath.Join(dir, RootConfigFile)
	cfg.Store.Components = filepath.Join(dir, ComponentsFile)
	cfg.History.Path = filepath.Join(dir, "history.db")
	cfg.Watch.DebounceMillis = 50
	return cfg
}

// New creates a new configuration instance with default values.
func New() *Config {
	return defaultConfig()
}

func overrideColor(dst *string, value string) {
	if value != "" {
		*dst = value
	}
}

func homeFile(name string) string {
	home, err := os.UserHomeDir()
	if err != nil {
		return name
	}
	return filepath.Join(home, name)
}

func expandHome(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		return homeFile(strings.TrimPrefix(strings.TrimPrefix(path, "~"), "/"))
	}
	return path
}

// GetTheme returns a predefined theme configuration by name.
// If the theme doesn't exist, returns the default theme.
func GetTheme(name string) map[string]string {
	themes := map[string]map[string]string{
		"default": {
			"success": "114", // Green
			"warning": "220", // Yellow
			"error":   "196", // Red
			"info":    "39",  // Blue
			"muted":   "245", // Grey
		},
		"dark": {
			"success": "78",  // Dark Green
			"warning": "214", // Dark Yellow
			"error":   "160", // Dark Red
			"info":    "33",  // Dark Blue
			"muted":   "240", // Dark Grey
		},
		"light": {
			"success": "150", // Light Green
			"warning": "222", // Light Yellow
			"error":   "210", // Light Red
			"info":    "117", // Light Blue
			"muted":   "250", // Light Grey
		},
		"monochrome": {
			"success": "252", // White
			"warning": "248", // Grey
			"error":   "255", // Bright White
			"info":    "250", // Light Grey
			"muted":   "241", // Medium Grey
		},
	}

	if theme, exists := themes[name]; exists {
		return theme
	}

	return themes["default"]
}

// ApplyTheme sets the theme colors from a named theme.
func (c *Config) ApplyTheme(name string) {
	theme := GetTheme(name)

	c.Theme.Name = name
	c.Theme.Success = theme["success"]
	c.Theme.Warning = theme["warning"]
	c.Theme.Error = theme["error"]
	c.Theme.Info = theme["info"]
	c.Theme.Muted = theme["muted"]
}

// ListThemes returns a list of available theme names.
func ListThemes() []string {
	return []string{"default", "dark", "light", "monochrome"}
}
