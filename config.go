package chefbook

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/gommon/log"

	"github.com/eringen/chefbook/cooking"
)

// SiteConfig holds all configuration for a chefbook site.
type SiteConfig struct {
	Name        string // Site name (default "Chefbook")
	URL         string // Canonical URL (default "http://localhost:5000")
	Description string // Site description for RSS and meta tags

	Addr         string // Listen address (default ":5000")
	DatabasePath string // SQLite path (default "data/recipes.db")

	SessionSecret string // Required: session encryption secret
	CookieSecure  bool   // Set true for HTTPS

	CacheTTL   time.Duration // Recipe cache TTL (default 5min)
	LogLevel   string        // debug, info, warn, error or off (default "info")
	SaveLimit  int           // Saves per IP per SaveWindow (default 20)
	SaveWindow time.Duration // default 1min

	CookingIdle time.Duration // Idle cooking sessions are closed after this (default 2h)
}

func (c *SiteConfig) setDefaults() {
	if c.Name == "" {
		c.Name = "Chefbook"
	}
	if c.URL == "" {
		c.URL = "http://localhost:5000"
	}
	if c.Description == "" {
		c.Description = "Recipes saved from the kitchen."
	}
	if c.Addr == "" {
		c.Addr = ":5000"
	}
	if c.DatabasePath == "" {
		c.DatabasePath = "data/recipes.db"
	}
	if c.CacheTTL == 0 {
		c.CacheTTL = 5 * time.Minute
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.SaveLimit <= 0 {
		c.SaveLimit = 20
	}
	if c.SaveWindow == 0 {
		c.SaveWindow = time.Minute
	}
	if c.CookingIdle == 0 {
		c.CookingIdle = 2 * time.Hour
	}
}

// LoadConfig reads the configuration from the environment. A .env file in
// the working directory is loaded first when present.
func LoadConfig() (SiteConfig, error) {
	_ = godotenv.Load()

	cfg := SiteConfig{
		Name:          os.Getenv("SITE_NAME"),
		URL:           strings.TrimRight(os.Getenv("SITE_URL"), "/"),
		Description:   os.Getenv("SITE_DESCRIPTION"),
		Addr:          os.Getenv("ADDR"),
		DatabasePath:  os.Getenv("DATABASE_PATH"),
		SessionSecret: os.Getenv("SESSION_SECRET"),
		LogLevel:      os.Getenv("LOG_LEVEL"),
	}
	if v := os.Getenv("COOKIE_SECURE"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return cfg, fmt.Errorf("COOKIE_SECURE: %w", err)
		}
		cfg.CookieSecure = b
	}
	if v := os.Getenv("CACHE_TTL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return cfg, fmt.Errorf("CACHE_TTL: %w", err)
		}
		cfg.CacheTTL = d
	}
	if v := os.Getenv("COOKING_IDLE_TTL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return cfg, fmt.Errorf("COOKING_IDLE_TTL: %w", err)
		}
		cfg.CookingIdle = d
	}
	if v := os.Getenv("SAVE_LIMIT"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return cfg, fmt.Errorf("SAVE_LIMIT: %w", err)
		}
		cfg.SaveLimit = n
	}
	cfg.setDefaults()
	return cfg, nil
}

// EnvOr returns the value of the environment variable key, or fallback if empty.
func EnvOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// logLevel maps a LOG_LEVEL name onto the echo logger's levels.
func logLevel(name string) log.Lvl {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		return log.DEBUG
	case "warn", "warning":
		return log.WARN
	case "error":
		return log.ERROR
	case "off", "none":
		return log.OFF
	default:
		return log.INFO
	}
}

// Option configures additional App behavior.
type Option func(*App)

// WithCustomRoutes registers additional routes on the Echo instance.
// The callback receives the App before the server starts.
func WithCustomRoutes(fn func(*App)) Option {
	return func(a *App) {
		a.customRoutes = append(a.customRoutes, fn)
	}
}

// WithStaticDir sets the directory for static assets (default "public").
func WithStaticDir(dir string) Option {
	return func(a *App) {
		a.staticDir = dir
	}
}

// WithTimerOptions applies options to every cooking timer the app creates.
func WithTimerOptions(opts ...cooking.TimerOption) Option {
	return func(a *App) {
		a.timerOpts = append(a.timerOpts, opts...)
	}
}
