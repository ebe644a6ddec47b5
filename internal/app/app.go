// Package app initializes and orchestrates the main components of the Hybrid Warden application.
// It owns the lifecycle of the HTTP server and the review worker pool.
package app

import (
	"context"
	"log/slog"

	"github.com/sevigo/hybrid-warden/internal/config"
	"github.com/sevigo/hybrid-warden/internal/jobs"
	"github.com/sevigo/hybrid-warden/internal/server"
)

// App holds the main application components.
type App struct {
	ctx        context.Context
	cfg        *config.Config
	server     *server.Server
	dispatcher *jobs.Dispatcher
	logger     *slog.Logger
}

// NewApp assembles an application from already constructed components.
func NewApp(ctx context.Context, cfg *config.Config, srv *server.Server, dispatcher *jobs.Dispatcher, logger *slog.Logger) *App {
	logger.Info("Hybrid Warden application initialized",
		"max_workers", cfg.Server.MaxWorkers,
		"queue_size", cfg.Server.QueueSize,
		"threshold", cfg.Detector.Threshold,
		"extensions", cfg.Detector.Extensions,
		"database", cfg.Database.Enabled(),
		"slack", cfg.Slack.WebhookURL != "",
	)
	return &App{
		ctx:        ctx,
		cfg:        cfg,
		server:     srv,
		dispatcher: dispatcher,
		logger:     logger,
	}
}

// Start runs the HTTP server. It blocks until the server stops.
func (a *App) Start() error {
	a.logger.Info("starting Hybrid Warden",
		"server_port", a.cfg.Server.Port,
		"max_workers", a.cfg.Server.MaxWorkers)

	err := a.server.Start()
	if err != nil {
		a.logger.Error("failed to start HTTP server", "error", err)
		return err
	}

	return nil
}

// Stop shuts down the application cleanly. The database, if any, is closed by the
// cleanup function returned together with the App.
func (a *App) Stop() error {
	a.logger.Info("shutting down Hybrid Warden services")

	// Stop the HTTP server first to prevent new incoming requests.
	serverErr := a.server.Stop()
	if serverErr != nil {
		a.logger.Error("error during HTTP server shutdown", "error", serverErr)
	}

	// Let queued and in-flight jobs finish.
	a.dispatcher.Stop()

	if serverErr != nil {
		a.logger.Error("Hybrid Warden stopped with errors", "error", serverErr)
		return serverErr
	}

	a.logger.Info("Hybrid Warden stopped successfully")
	return nil
}
