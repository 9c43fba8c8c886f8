package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// DirName is the per-user directory holding the config, database and caches.
const DirName = ".card-binder"

// Config represents the application configuration.
type Config struct {
	// Card catalog source
	Catalog CatalogConfig `toml:"catalog"`

	// HTTP server
	Server ServerConfig `toml:"server"`

	// Ownership database
	Storage StorageConfig `toml:"storage"`

	// Image proxy cache
	Images ImagesConfig `toml:"images"`

	// Application configuration
	App AppConfig `toml:"app"`
}

// CatalogConfig controls which sets are loaded and how the API is called.
type CatalogConfig struct {
	SetCodes    []string `toml:"set_codes"`    // Sets to load, in display order
	APIBaseURL  string   `toml:"api_base_url"` // Scryfall API root
	PageTimeout string   `toml:"page_timeout"` // Bound on one page request (e.g., "30s")
	RateLimit   string   `toml:"rate_limit"`   // Minimum gap between requests (e.g., "100ms")
	UserAgent   string   `toml:"user_agent"`   // Sent with every API request
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Port        int  `toml:"port"`         // Listen port
	OpenBrowser bool `toml:"open_browser"` // Open the binder page on start
}

// StorageConfig contains database settings.
type StorageConfig struct {
	DBPath string `toml:"db_path"` // SQLite file; empty means ~/.card-binder/binder.db
}

// ImagesConfig contains image cache settings.
type ImagesConfig struct {
	CacheDir  string `toml:"cache_dir"`   // Empty means ~/.card-binder/image-cache
	MaxSizeMB int    `toml:"max_size_mb"` // 0 = unlimited
	Timeout   string `toml:"timeout"`     // Download timeout (e.g., "30s")
}

// AppConfig contains general application settings.
type AppConfig struct {
	DebugMode bool `toml:"debug_mode"` // Enable debug logging
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Catalog: CatalogConfig{
			SetCodes:    []string{"fin", "fic", "fca", "tfin"},
			APIBaseURL:  "https://api.scryfall.com",
			PageTimeout: "30s",
			RateLimit:   "100ms",
			UserAgent:   "CardBinder/1.0",
		},
		Server: ServerConfig{
			Port:        8080,
			OpenBrowser: false,
		},
		Storage: StorageConfig{
			DBPath: "",
		},
		Images: ImagesConfig{
			CacheDir:  "",
			MaxSizeMB: 500,
			Timeout:   "30s",
		},
		App: AppConfig{
			DebugMode: false,
		},
	}
}

// Dir returns ~/.card-binder.
func Dir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home directory: %w", err)
	}
	return filepath.Join(homeDir, DirName), nil
}

// DefaultPath returns the path to the configuration file.
func DefaultPath() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// Load loads the configuration from path, or from DefaultPath when path is
// empty. Returns the default config if the file doesn't exist. Keys missing
// from the file keep their default values.
func Load(path string) (*Config, error) {
	if path == "" {
		var err error
		if path, err = DefaultPath(); err != nil {
			return nil, err
		}
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return DefaultConfig(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	config := DefaultConfig()
	defaultSets := config.Catalog.SetCodes
	config.Catalog.SetCodes = nil
	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("parse config file: %w", err)
	}
	if config.Catalog.SetCodes == nil {
		config.Catalog.SetCodes = defaultSets
	}

	return config, nil
}

// Save writes the configuration to path, or to DefaultPath when path is empty.
func (c *Config) Save(path string) error {
	if path == "" {
		var err error
		if path, err = DefaultPath(); err != nil {
			return err
		}
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	data, err := toml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}

	return nil
}

// Validate validates the configuration values.
func (c *Config) Validate() error {
	if len(c.Catalog.SetCodes) == 0 {
		return fmt.Errorf("catalog set_codes cannot be empty")
	}
	for _, code := range c.Catalog.SetCodes {
		if code == "" {
			return fmt.Errorf("catalog set_codes contains an empty code")
		}
	}

	if _, err := c.PageTimeout(); err != nil {
		return fmt.Errorf("invalid page timeout %q: %w", c.Catalog.PageTimeout, err)
	}

	if _, err := c.RateLimit(); err != nil {
		return fmt.Errorf("invalid rate limit %q: %w", c.Catalog.RateLimit, err)
	}

	if _, err := c.ImageTimeout(); err != nil {
		return fmt.Errorf("invalid image timeout %q: %w", c.Images.Timeout, err)
	}

	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server port out of range: %d", c.Server.Port)
	}

	if c.Images.MaxSizeMB < 0 {
		return fmt.Errorf("image cache max size cannot be negative: %d", c.Images.MaxSizeMB)
	}

	return nil
}

// PageTimeout returns the per-page request timeout.
func (c *Config) PageTimeout() (time.Duration, error) {
	return positiveDuration(c.Catalog.PageTimeout)
}

// RateLimit returns the minimum gap between API requests.
func (c *Config) RateLimit() (time.Duration, error) {
	return positiveDuration(c.Catalog.RateLimit)
}

// ImageTimeout returns the image download timeout.
func (c *Config) ImageTimeout() (time.Duration, error) {
	return positiveDuration(c.Images.Timeout)
}

func positiveDuration(s string) (time.Duration, error) {
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, err
	}
	if d <= 0 {
		return 0, fmt.Errorf("duration must be positive")
	}
	return d, nil
}

// DatabasePath resolves the SQLite path.
func (c *Config) DatabasePath() (string, error) {
	if c.Storage.DBPath != "" {
		return c.Storage.DBPath, nil
	}
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "binder.db"), nil
}

// ImageCacheDir resolves the image cache directory.
func (c *Config) ImageCacheDir() (string, error) {
	if c.Images.CacheDir != "" {
		return c.Images.CacheDir, nil
	}
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "image-cache"), nil
}
