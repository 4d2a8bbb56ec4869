package main

import (
	"context"
	"errors"
	"flag"
	"io/fs"
	"os"
	"os/signal"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/eringen/pubsite"
	"github.com/eringen/pubsite/internal/logging"
	"github.com/eringen/pubsite/views"
)

// loadConfig reads path when it exists and applies environment overrides.
// A missing file at the default path is not an error.
func loadConfig(path string, explicit bool) (pubsite.SiteConfig, error) {
	var cfg pubsite.SiteConfig
	if _, err := os.Stat(path); err == nil {
		cfg, err = pubsite.LoadConfig(path)
		if err != nil {
			return pubsite.SiteConfig{}, err
		}
	} else if explicit || !errors.Is(err, fs.ErrNotExist) {
		return pubsite.SiteConfig{}, err
	}
	cfg.URL = pubsite.EnvOr("SITE_URL", cfg.URL)
	cfg.Addr = pubsite.EnvOr("ADDR", cfg.Addr)
	cfg.DatabasePath = pubsite.EnvOr("DATABASE_PATH", cfg.DatabasePath)
	cfg.AdminPassword = os.Getenv("ADMIN_PASSWORD")
	cfg.SessionSecret = os.Getenv("ADMIN_SESSION_SECRET")
	return cfg, nil
}

func runServe(args []string) error {
	fset := flag.NewFlagSet("serve", flag.ExitOnError)
	configPath := fset.String("config", "site.toml", "path of the TOML config file")
	if err := fset.Parse(args); err != nil {
		return err
	}

	cfg, err := loadConfig(*configPath, flagSet(fset, "config"))
	if err != nil {
		return err
	}

	logging.Setup(logging.LoggerSetupParams{
		LogFileName:   cfg.Log.File,
		LogToStdout:   cfg.Log.ToStdout,
		LogLevel:      cfg.Log.Level,
		LogFormatJSON: cfg.Log.JSON,
	})

	app := pubsite.New(cfg, views.Default(), pubsite.WithLogger(log.StandardLogger()))

	errc := make(chan error, 1)
	go func() {
		errc <- app.Start()
	}()

	signalChan := make(chan os.Signal, 1)
	signal.Notify(signalChan, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errc:
		if closeErr := app.Close(); closeErr != nil {
			log.Errorf("close: %s", closeErr)
		}
		return err
	case sig := <-signalChan:
		log.Infof("signal [%s] received, shutting down", sig)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := app.Shutdown(ctx); err != nil {
		return err
	}
	log.Info("server shut down")
	return nil
}

func flagSet(fset *flag.FlagSet, name string) bool {
	set := false
	fset.Visit(func(f *flag.Flag) {
		if f.Name == name {
			set = true
		}
	})
	return set
}
