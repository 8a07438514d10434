package lizechat

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// SiteConfig holds all configuration for a lizechat site. Fields are read
// from LIZECHAT_* environment variables by LoadConfig.
type SiteConfig struct {
	Name        string `env:"SITE_NAME"`        // Site name (default "Lize Chat")
	URL         string `env:"SITE_URL"`         // Canonical URL (default "http://localhost:3000")
	Description string `env:"SITE_DESCRIPTION"` // Site description for RSS
	Author      string `env:"SITE_AUTHOR"`

	ContentDir   string `env:"CONTENT_DIR"`   // Collection folders live here (default "src/content")
	Strict       bool   `env:"STRICT"`        // Fail the load on any invalid entry
	DatabasePath string `env:"DATABASE_PATH"` // SQLite index path (default "data/content.db")

	Addr          string `env:"ADDR"`           // Listen address (default ":3000")
	AdminPassword string `env:"ADMIN_PASSWORD"` // Required by serve
	SessionSecret string `env:"SESSION_SECRET"` // Required by serve
	CookieSecure  bool   `env:"COOKIE_SECURE"`  // Set true for HTTPS

	EntryCacheTTL time.Duration `env:"CACHE_TTL"` // Entry cache TTL (default 5min)
	LogLevel      string        `env:"LOG_LEVEL"` // debug, info, warn, error (default "info")
}

// LoadConfig reads the environment into a SiteConfig and fills defaults.
func LoadConfig() (SiteConfig, error) {
	var cfg SiteConfig
	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: "LIZECHAT_"}); err != nil {
		return SiteConfig{}, fmt.Errorf("lizechat: parse env: %w", err)
	}
	cfg.setDefaults()
	return cfg, nil
}

func (c *SiteConfig) setDefaults() {
	if c.Name == "" {
		c.Name = "Lize Chat"
	}
	if c.URL == "" {
		c.URL = "http://localhost:3000"
	}
	if c.ContentDir == "" {
		c.ContentDir = "src/content"
	}
	if c.DatabasePath == "" {
		c.DatabasePath = "data/content.db"
	}
	if c.Addr == "" {
		c.Addr = ":3000"
	}
	if c.EntryCacheTTL == 0 {
		c.EntryCacheTTL = 5 * time.Minute
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
}

// Option configures additional App behavior.
type Option func(*App)

// WithRegistry replaces the default collection registry.
func WithRegistry(r *Registry) Option {
	return func(a *App) {
		a.Registry = r
	}
}

// WithTheme replaces the default theme.
func WithTheme(t Theme) Option {
	return func(a *App) {
		a.Theme = t
	}
}
