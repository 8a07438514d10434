// Package lizechat declares the content collections and theme of the Lize
// Chat site and provides the tooling around them: front-matter validation
// with date coercion, a folder-convention loader, front-matter repair, a
// SQLite entry index and a small JSON inspection service.
package lizechat

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/gommon/log"
)

// App wires the registry, loader, index store, cache and HTTP service.
type App struct {
	Config   SiteConfig
	Echo     *echo.Echo
	Registry *Registry
	Theme    Theme
	Loader   *Loader
	Store    *Store
	Cache    *EntryCache
	Logger   *log.Logger

	loginLimiter *LoginLimiter
}

// New creates an App with the given configuration.
func New(cfg SiteConfig, opts ...Option) *App {
	cfg.setDefaults()

	a := &App{
		Config:   cfg,
		Echo:     echo.New(),
		Registry: DefaultRegistry(),
		Theme:    DefaultTheme(),
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.Logger == nil {
		a.Logger = NewLogger(os.Stderr, cfg.LogLevel)
	}
	a.Echo.HideBanner = true
	a.Echo.Logger = a.Logger
	a.Loader = NewLoader(a.Config, a.Registry, a.Logger)
	return a
}

// WithLogger replaces the default stderr logger.
func WithLogger(l *log.Logger) Option {
	return func(a *App) {
		a.Logger = l
	}
}

// Init opens the index, loads content into it and registers middleware and
// routes. Start calls it; tests call it directly.
func (a *App) Init(ctx context.Context) error {
	if a.Config.AdminPassword == "" {
		return errors.New("lizechat: AdminPassword is required")
	}
	if a.Config.SessionSecret == "" {
		return errors.New("lizechat: SessionSecret is required")
	}
	if err := a.Theme.Validate(); err != nil {
		return err
	}

	store, err := NewStore(a.Config.DatabasePath, a.Registry)
	if err != nil {
		return fmt.Errorf("lizechat: init store: %w", err)
	}
	a.Store = store
	a.Cache = NewEntryCache(a.Store, a.Config.EntryCacheTTL)
	a.loginLimiter = NewLoginLimiter(5, time.Minute)

	if _, err := a.Reindex(ctx); err != nil {
		return err
	}

	a.setupMiddleware()
	a.setupRoutes()
	return nil
}

// Start initializes the app and serves until ctx is cancelled.
func (a *App) Start(ctx context.Context) error {
	if err := a.Init(ctx); err != nil {
		return err
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := a.Echo.Shutdown(shutdownCtx); err != nil {
			a.Logger.Errorf("shutdown: %v", err)
		}
	}()
	if err := a.Echo.Start(a.Config.Addr); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Reindex loads every collection from disk and replaces the indexed entries.
func (a *App) Reindex(ctx context.Context) (*Catalog, error) {
	cat, err := a.Loader.Load(ctx)
	if err != nil {
		return nil, err
	}
	for _, name := range a.Registry.Names() {
		if err := a.Store.ReplaceCollection(name, cat.Entries[name]); err != nil {
			return nil, fmt.Errorf("lizechat: index %s: %w", name, err)
		}
	}
	if a.Cache != nil {
		a.Cache.Invalidate()
	}
	return cat, nil
}

func (a *App) setupRoutes() {
	e := a.Echo

	e.GET("/feed.xml", a.handleFeed)
	e.GET("/sitemap.xml", a.handleSitemap)

	api := e.Group("/api")
	api.GET("/collections", a.handleCollections)
	api.GET("/collections/:name", a.handleCollection)
	api.GET("/collections/:name/entries", a.handleEntries)
	api.GET("/collections/:name/entries/:slug", a.handleEntry)
	api.GET("/tags", a.handleTags)
	api.GET("/theme", a.handleTheme)

	e.POST("/admin/login/", a.handleAdminLogin)
	e.POST("/admin/logout/", handleAdminLogout)
	e.POST("/admin/reindex/", a.handleAdminReindex)
	e.DELETE("/admin/entries/:name/:slug/", a.handleAdminDelete)
}

// Close cleans up resources. Call this when the app is shutting down.
func (a *App) Close() error {
	if a.loginLimiter != nil {
		a.loginLimiter.Stop()
	}
	if a.Store != nil {
		return a.Store.Close()
	}
	return nil
}
