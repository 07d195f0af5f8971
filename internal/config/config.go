package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

type Config struct {
	// Catalog API access (required)
	Catalog CatalogConfig `koanf:"catalog"`

	// Fetch pacing tunables
	Pacing PacingConfig `koanf:"pacing"`

	// Followed artists shown in the sidebar
	Artists []ArtistRef `koanf:"artists"`
}

// CatalogConfig holds catalog API configuration.
type CatalogConfig struct {
	BaseURL string `koanf:"base_url"` // e.g., "https://catalog.example.com/v1"
}

// PacingConfig holds the rate-limit avoidance tunables for discography
// fetching. Zero values fall back to the documented defaults.
type PacingConfig struct {
	MaxPages              int `koanf:"max_pages"`               // albums pages per fetch (default: 2)
	PageSize              int `koanf:"page_size"`               // items per page (1-50, default: 50)
	PageDelaySeconds      int `koanf:"page_delay_seconds"`      // wait before each page (default: 5)
	HydrationDelaySeconds int `koanf:"hydration_delay_seconds"` // wait before a detail fetch (default: 30)
}

// ArtistRef identifies one followed artist.
type ArtistRef struct {
	ID   string `koanf:"id"`
	Name string `koanf:"name"`
}

func Load() (*Config, error) {
	k := koanf.New(".")

	// Try config files in order of priority (last wins)
	configPaths := getConfigPaths()

	for _, path := range configPaths {
		if _, err := os.Stat(path); err == nil {
			if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
				return nil, err
			}
		}
	}

	cfg := &Config{}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, err
	}

	// Normalize catalog URL (remove trailing slash)
	cfg.Catalog.BaseURL = strings.TrimSuffix(cfg.Catalog.BaseURL, "/")

	return cfg, nil
}

func getConfigPaths() []string {
	paths := []string{}

	// 1. $XDG_CONFIG_HOME/encore/config.toml
	paths = append(paths, filepath.Join(xdg.ConfigHome, "encore", "config.toml"))

	// 2. ./config.toml (pwd, highest priority)
	paths = append(paths, "config.toml")

	return paths
}

// HasCatalogConfig returns true if catalog API access is configured.
func (c *Config) HasCatalogConfig() bool {
	return c.Catalog.BaseURL != ""
}

// GetPacingConfig returns the pacing configuration with defaults applied.
func (c *Config) GetPacingConfig() PacingConfig {
	cfg := c.Pacing

	// Apply defaults
	if cfg.MaxPages <= 0 {
		cfg.MaxPages = 2
	}
	if cfg.PageSize <= 0 || cfg.PageSize > 50 {
		cfg.PageSize = 50
	}
	if cfg.PageDelaySeconds <= 0 {
		cfg.PageDelaySeconds = 5
	}
	if cfg.HydrationDelaySeconds <= 0 {
		cfg.HydrationDelaySeconds = 30
	}

	return cfg
}
