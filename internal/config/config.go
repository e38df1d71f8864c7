package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds the client configuration. Environment variables are parsed
// from the QUOTETERM_ prefix, e.g. QUOTETERM_API_BASE_URL.
type Config struct {
	// APIBaseURL is the origin of the quotation backend.
	APIBaseURL string `envconfig:"API_BASE_URL" default:"http://127.0.0.1:5000"`

	// Timeout bounds every backend request so a hung request surfaces as a
	// load error instead of an eternal spinner.
	Timeout time.Duration `envconfig:"TIMEOUT" default:"30s"`

	// ConfigDir holds the session cookie file and the log file.
	// Defaults to ~/.config/quoteterm.
	ConfigDir string `envconfig:"CONFIG_DIR"`

	// AuthPollInterval is how often the client re-checks auth status while
	// waiting for the browser sign-in to complete.
	AuthPollInterval time.Duration `envconfig:"AUTH_POLL_INTERVAL" default:"2s"`
}

// Load reads a .env file if present, then the environment.
func Load() (*Config, error) {
	_ = godotenv.Load() // best effort; env vars win anyway

	var cfg Config
	if err := envconfig.Process("QUOTETERM", &cfg); err != nil {
		return nil, fmt.Errorf("process environment: %w", err)
	}
	if err := cfg.resolveDefaults(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) resolveDefaults() error {
	u, err := url.Parse(c.APIBaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("invalid API base URL %q", c.APIBaseURL)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got %s", c.Timeout)
	}
	if c.ConfigDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("determine home directory: %w", err)
		}
		c.ConfigDir = filepath.Join(home, ".config", "quoteterm")
	}
	return nil
}

// CookiePath is where the backend session cookie is persisted between runs.
func (c *Config) CookiePath() string {
	return filepath.Join(c.ConfigDir, "cookies.json")
}

// LogPath is the log file location. The TUI owns stdout, so logs go to a file.
func (c *Config) LogPath() string {
	return filepath.Join(c.ConfigDir, "quoteterm.log")
}
