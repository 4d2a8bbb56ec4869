// Package pubsite is a Markdown-driven blog server built with Go, Echo, and templ.
// Posts and author profiles are Markdown documents with front-matter; every
// content load validates them, indexes the valid ones in SQLite and reports
// the rest.
//
// Users provide their own templ templates via the ViewFuncs struct,
// and pubsite handles all the handler logic, middleware, and database operations.
package pubsite

import (
	"context"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/a-h/templ"
	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
	"go.uber.org/multierr"

	"github.com/eringen/pubsite/markdown"
)

// ViewFuncs holds user-provided templ components that the framework calls
// when rendering pages.
type ViewFuncs struct {
	Home           func(page HomePage) templ.Component
	Post           func(page PostPage) templ.Component
	Tag            func(page TagPage) templ.Component
	Author         func(page AuthorPage) templ.Component
	AdminLogin     func(showError bool, csrfToken string) templ.Component
	AdminDashboard func(page DashboardPage) templ.Component
	NotFound       func() templ.Component
	ServerError    func() templ.Component
}

// App is the central pubsite application. It wires together the content
// loader, store, caches, handlers, middleware, and user-provided templates.
type App struct {
	Config  SiteConfig
	Echo    *echo.Echo
	Store   *Store
	Cache   *PostCache
	Bodies  *BodyCache
	Images  *ImageVariants
	Views   ViewFuncs
	Metrics *Metrics

	log          *logrus.Logger
	loginLimiter *LoginLimiter
	contentFS    fs.FS
	now          func() time.Time
	customRoutes []func(*App)
	staticDir    string

	reportMu sync.RWMutex
	report   Report
}

// New creates a new pubsite App with the given configuration and view functions.
func New(cfg SiteConfig, views ViewFuncs, opts ...Option) *App {
	cfg.setDefaults()

	a := &App{
		Config:    cfg,
		Echo:      echo.New(),
		Views:     views,
		Metrics:   NewMetrics(),
		log:       logrus.StandardLogger(),
		now:       time.Now,
		staticDir: "public",
	}

	for _, opt := range opts {
		opt(a)
	}
	if a.contentFS == nil {
		a.contentFS = os.DirFS(a.Config.ContentDir)
	}
	a.Echo.HideBanner = true

	return a
}

// Init opens the store, loads the content and registers middleware and
// routes. Start calls it; tests call it directly and drive a.Echo.
func (a *App) Init(ctx context.Context) error {
	if a.Config.AdminPassword == "" {
		return fmt.Errorf("pubsite: AdminPassword is required")
	}
	if a.Config.SessionSecret == "" {
		return fmt.Errorf("pubsite: SessionSecret is required")
	}

	store, err := NewStore(a.Config.DatabasePath)
	if err != nil {
		return fmt.Errorf("pubsite: init store: %w", err)
	}
	a.Store = store

	a.Cache = NewPostCache(a.Store, a.Config.PostCacheTTL, a.cutoff)
	a.Bodies = NewBodyCache(a.Config.BodyCacheSize, markdown.NewRenderer(markdown.Options{
		AllowHTML: a.Config.AllowHTML,
	}))
	a.Images = NewImageVariants(a.Config.ImageCacheSize)
	a.loginLimiter = NewLoginLimiter(5, time.Minute)

	if _, err := a.Reload(ctx); err != nil {
		return fmt.Errorf("pubsite: load content: %w", err)
	}

	a.setupMiddleware()
	a.setupRoutes()
	for _, fn := range a.customRoutes {
		fn(a)
	}
	return nil
}

// Start initializes the app and serves until the server is shut down.
func (a *App) Start() error {
	if err := a.Init(context.Background()); err != nil {
		return err
	}
	a.log.WithField("addr", a.Config.Addr).Info("pubsite listening")
	if err := a.Echo.Start(a.Config.Addr); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Reload loads the content directory again and swaps the published set.
// A failed reload leaves the previous set in place.
func (a *App) Reload(ctx context.Context) (Report, error) {
	start := time.Now()
	res, err := LoadContent(ctx, a.contentFS, a.Config, a.log)
	if err == nil {
		err = a.Store.Replace(ctx, res.Posts, res.Authors)
	}
	a.Metrics.HistReloadDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		a.Metrics.CounterReloads.WithLabelValues("error").Inc()
		a.log.WithError(err).Error("content reload failed")
		return Report{}, err
	}

	a.Cache.Invalidate()
	a.Bodies.Clear()
	a.Images.Clear()
	for _, c := range res.Report.Collections {
		a.Metrics.observeCollection(c.Name, c.Valid, len(c.Rejected))
	}
	a.Metrics.CounterReloads.WithLabelValues("ok").Inc()

	a.reportMu.Lock()
	a.report = res.Report
	a.reportMu.Unlock()

	a.log.WithFields(logrus.Fields{
		"posts":    len(res.Posts),
		"authors":  len(res.Authors),
		"rejected": res.Report.RejectedCount(),
		"duration": res.Report.Duration,
	}).Info("content loaded")
	return res.Report, nil
}

// LastReport returns the report of the last successful load.
func (a *App) LastReport() Report {
	a.reportMu.RLock()
	defer a.reportMu.RUnlock()
	return a.report
}

// cutoff is the latest publication time that counts as published now.
func (a *App) cutoff() time.Time {
	return a.now().Add(a.Config.ScheduledPostMargin)
}

// Shutdown stops the server gracefully and releases resources.
func (a *App) Shutdown(ctx context.Context) error {
	return multierr.Combine(a.Echo.Shutdown(ctx), a.Close())
}

// Close cleans up resources. Call this when the app is shutting down.
func (a *App) Close() error {
	var err error
	if a.loginLimiter != nil {
		a.loginLimiter.Stop()
	}
	if a.Store != nil {
		err = multierr.Append(err, a.Store.Close())
	}
	return err
}

// EnvOr returns the value of the environment variable key, or fallback if empty.
func EnvOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// MustEnv returns the value of the environment variable key, or fatally exits if empty.
func MustEnv(key string) string {
	v := os.Getenv(key)
	if v == "" {
		logrus.Fatalf("pubsite: required environment variable %s is not set", key)
	}
	return v
}
