package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// BasicAuthConfig holds HTTP Basic Auth credentials for the API.
type BasicAuthConfig struct {
	Username string `yaml:"username" json:"username"`
	Password string `yaml:"password" json:"password"`
}

// SourceConfig describes the school calendar widget to scrape.
type SourceConfig struct {
	// BaseURL is the widget's AJAX fragment endpoint, up to but not
	// including the query string, e.g.
	// "https://menus.example-district.org/calendar/fragment".
	BaseURL string `yaml:"base_url" json:"base_url"`

	// SchoolID is the site identifier the widget expects as a query
	// parameter.
	SchoolID string `yaml:"school_id" json:"school_id"`

	// UseBrowser switches fragment retrieval to a headless Chromium
	// session for hosts that only render the widget via JavaScript.
	UseBrowser bool `yaml:"use_browser" json:"use_browser"`

	// PageURL is the full widget page to load when UseBrowser is set.
	PageURL string `yaml:"page_url,omitempty" json:"page_url,omitempty"`
}

// Config is the top-level application configuration.
type Config struct {
	// Listen is the HTTP listen address for the API.
	Listen string `yaml:"listen" json:"listen"`

	// Timezone is the IANA timezone the school operates in; all scrape
	// target dates are computed in this zone.
	Timezone string `yaml:"timezone" json:"timezone"`

	// RefreshCron is a cron-style schedule string (e.g. "0 5 * * *")
	// for periodic scrape runs.
	RefreshCron string `yaml:"refresh" json:"refresh"`

	// Meals lists which meal types to scrape. Valid values:
	// "breakfast", "lunch", "snack".
	Meals []string `yaml:"meals" json:"meals"`

	// DataDir is the base directory for menu snapshots and the HTTP
	// fetch cache.
	DataDir string `yaml:"data_dir" json:"data_dir"`

	// LogLevel is the minimum log level ("debug", "info", "warn", "error").
	LogLevel string `yaml:"log_level" json:"log_level"`

	Source SourceConfig `yaml:"source" json:"source"`

	// BasicAuth, if non-nil, enables HTTP Basic Authentication on all
	// endpoints except /health.
	BasicAuth *BasicAuthConfig `yaml:"basic_auth,omitempty" json:"basic_auth,omitempty"`
}

// DefaultConfig returns an in-memory default configuration.
func DefaultConfig() *Config {
	return &Config{
		Listen:      "127.0.0.1:8080",
		Timezone:    "America/Chicago",
		RefreshCron: "0 5 * * *",
		Meals:       []string{"breakfast", "lunch", "snack"},
		DataDir:     "./var/menucal",
		LogLevel:    "info",
		Source:      SourceConfig{},
		BasicAuth:   nil,
	}
}

// Normalize fills in missing/zero values with sensible defaults so that
// partially-filled configs still behave correctly.
func (c *Config) Normalize() {
	if c.Listen == "" {
		c.Listen = "127.0.0.1:8080"
	}
	if c.Timezone == "" {
		c.Timezone = "America/Chicago"
	}
	if c.RefreshCron == "" {
		c.RefreshCron = "0 5 * * *"
	}
	if len(c.Meals) == 0 {
		c.Meals = []string{"breakfast", "lunch", "snack"}
	}
	if c.DataDir == "" {
		c.DataDir = "./var/menucal"
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
}

// Load loads configuration from the given YAML path.
//
// If the file does not exist, a default config is written there (0600,
// parent dir created) and returned.
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, errors.New("config path is empty")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			cfg := DefaultConfig()
			if err := Save(path, cfg); err != nil {
				// Return cfg with the error so the caller can decide.
				return cfg, err
			}
			return cfg, nil
		}
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	cfg.Normalize()

	return &cfg, nil
}

// Save writes the given configuration to the specified path atomically
// (temp file + rename) with 0600 permissions.
func Save(path string, cfg *Config) error {
	if path == "" {
		return errors.New("config path is empty")
	}
	if cfg == nil {
		return errors.New("config is nil")
	}

	cfg.Normalize()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".menucal-config-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}

	if err := os.Chmod(tmpName, 0o600); err != nil {
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		return err
	}

	return nil
}

// Save delegates to the package-level Save function.
func (c *Config) Save(path string) error {
	return Save(path, c)
}
