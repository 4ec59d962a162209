package config

import (
	"fmt"
	"log"
	"net/url"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/ethan-dean/todue/internal/todo"
)

// Config holds all environment-based configuration for todue.
type Config struct {
	// ServerURL is the REST API root (the /api prefix is appended).
	ServerURL string `env:"TODUE_SERVER_URL" envDefault:"http://localhost:8080"`

	// WebsocketURL is the push channel endpoint. Derived from ServerURL
	// when empty (http -> ws scheme, /ws path).
	WebsocketURL string `env:"TODUE_WS_URL"`

	// Account credentials (required).
	Email    string `env:"TODUE_EMAIL"`
	Password string `env:"TODUE_PASSWORD"`

	// ViewDays is the day-view width: 1, 3, 5 or 7 columns.
	ViewDays int `env:"TODUE_VIEW_DAYS" envDefault:"1"`

	// AnchorDate overrides the selected date (YYYY-MM-DD). Defaults to
	// today in the local timezone.
	AnchorDate string `env:"TODUE_ANCHOR_DATE"`

	// CachePath is the bucket snapshot database. Defaults to
	// ~/.todue/cache.db.
	CachePath string `env:"TODUE_CACHE_PATH"`

	// LogFile receives structured logs. The terminal UI owns stdout, so
	// logs go to a file. Defaults to ~/.todue/todue.log.
	LogFile string `env:"TODUE_LOG_FILE"`

	// Environment controls log format
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
}

// warnInsecureEnvFile checks whether the .env file (if present) has
// overly permissive permissions. On Unix systems, group or world
// readable files risk exposing credentials to other users.
func warnInsecureEnvFile() {
	if runtime.GOOS == "windows" {
		return
	}

	info, err := os.Stat(".env")
	if err != nil {
		return // file does not exist, nothing to check
	}

	mode := info.Mode().Perm()
	if mode&0o077 != 0 {
		log.Printf("WARNING: .env file has insecure permissions %04o; recommended 0600", mode)
	}
}

// Load reads configuration from environment variables.
// It first attempts to load a .env file if present, then parses env vars.
func Load() (*Config, error) {
	_ = godotenv.Load()

	warnInsecureEnvFile()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	if cfg.AnchorDate == "" {
		cfg.AnchorDate = todo.DateKey(time.Now())
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	if cfg.WebsocketURL == "" {
		derived, err := deriveWebsocketURL(cfg.ServerURL)
		if err != nil {
			return nil, err
		}

		cfg.WebsocketURL = derived
	}

	if cfg.CachePath == "" {
		path, err := defaultStatePath("cache.db")
		if err != nil {
			return nil, err
		}

		cfg.CachePath = path
	}

	if cfg.LogFile == "" {
		path, err := defaultStatePath("todue.log")
		if err != nil {
			return nil, err
		}

		cfg.LogFile = path
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.Email == "" {
		return fmt.Errorf("TODUE_EMAIL is required")
	}

	if c.Password == "" {
		return fmt.Errorf("TODUE_PASSWORD is required")
	}

	u, err := url.Parse(c.ServerURL)
	if err != nil {
		return fmt.Errorf("invalid TODUE_SERVER_URL: %w", err)
	}

	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("TODUE_SERVER_URL must use http or https (got %q)", u.Scheme)
	}

	switch c.ViewDays {
	case 1, 3, 5, 7:
	default:
		return fmt.Errorf("TODUE_VIEW_DAYS must be 1, 3, 5 or 7 (got %d)", c.ViewDays)
	}

	if _, err := todo.ParseDateKey(c.AnchorDate); err != nil {
		return fmt.Errorf("invalid TODUE_ANCHOR_DATE: %w", err)
	}

	return nil
}

// APIBaseURL returns the REST root including the /api prefix.
func (c *Config) APIBaseURL() string {
	return strings.TrimRight(c.ServerURL, "/") + "/api"
}

// deriveWebsocketURL maps the server URL onto the push endpoint:
// http://host -> ws://host/ws, https://host -> wss://host/ws.
func deriveWebsocketURL(serverURL string) (string, error) {
	u, err := url.Parse(serverURL)
	if err != nil {
		return "", fmt.Errorf("deriving websocket url: %w", err)
	}

	switch u.Scheme {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	default:
		return "", fmt.Errorf("deriving websocket url: unsupported scheme %q", u.Scheme)
	}

	u.Path = strings.TrimRight(u.Path, "/") + "/ws"

	return u.String(), nil
}

// defaultStatePath returns ~/.todue/<name>.
func defaultStatePath(name string) (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("determining home directory: %w", err)
	}

	return filepath.Join(home, ".todue", name), nil
}

// IsProduction returns true when the environment is set to production.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}
