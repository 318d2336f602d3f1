package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"jobboard/internal/config"
	"jobboard/internal/handler"
	"jobboard/pkg/api"
	"jobboard/pkg/logger"
	"jobboard/pkg/query"
	"jobboard/pkg/render"
)

const sweepInterval = time.Minute

type Application struct {
	configPath string
	debug      bool
}

func main() {
	app := &Application{}

	flag.StringVar(&app.configPath, "config", "config/dev.yaml", "Configuration file path")
	flag.BoolVar(&app.debug, "debug", false, "Enable debug mode")
	flag.Parse()

	if err := app.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Application failed: %v\n", err)
		os.Exit(1)
	}
}

func (app *Application) Run() error {
	cfg, err := config.NewManager().Load(app.configPath)
	if err != nil {
		return err
	}
	if app.debug {
		cfg.Logger.Level = "debug"
	}
	logger.SetLogger(logger.New(cfg.Logger))
	log := logger.WithField("component", "main")

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	client := api.NewClient(cfg.Scraper.ClientConfig())

	controllerOpts := []query.Option{query.WithFetchTimeout(time.Duration(cfg.Scraper.TimeoutMs) * time.Millisecond)}
	if cfg.UI.AsyncFetch {
		controllerOpts = append(controllerOpts, query.WithAsyncFetch())
	}
	sessions := handler.NewSessionStore(func() *query.Controller {
		return query.NewController(client, controllerOpts...)
	})
	go sessions.RunSweeper(ctx, cfg.UI.SessionTTL(), sweepInterval, func(removed int) {
		log.WithField("removed", removed).Debug("Idle sessions swept")
	})

	h := handler.NewController(sessions, render.NewHTMLRenderer(cfg.UI.RefreshSeconds), client)
	server := handler.NewApp(h)

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- server.Listen(cfg.Server.Addr())
	}()

	log.WithFields(map[string]interface{}{
		"addr":        cfg.Server.Addr(),
		"scraper":     client.Endpoint(),
		"async_fetch": cfg.UI.AsyncFetch,
	}).Info("Server started")

	select {
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("server stopped: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("Shutdown signal received")
	shutdownTimeout := time.Duration(cfg.Server.ShutdownTimeoutMs) * time.Millisecond
	if err := server.ShutdownWithTimeout(shutdownTimeout); err != nil {
		log.WithError(err).Warn("Server did not shut down cleanly")
	}

	done := make(chan struct{})
	go func() {
		sessions.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(shutdownTimeout):
		log.Warn("Gave up waiting for in-flight fetches")
	}

	log.Info("Server stopped")
	return nil
}
