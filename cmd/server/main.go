package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/sevigo/hybrid-warden/internal/wire"
)

func main() {
	if err := run(); err != nil {
		slog.Error("hybrid warden exited", "error", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// A missing or invalid model fails here, before the listener opens.
	app, cleanup, err := wire.InitializeApp(ctx)
	if err != nil {
		return fmt.Errorf("failed to initialize application: %w", err)
	}
	defer cleanup()

	serveErr := make(chan error, 1)
	go func() { serveErr <- app.Start() }()

	var runErr error
	select {
	case <-ctx.Done():
		slog.Info("shutdown signal received")
	case runErr = <-serveErr:
		if runErr != nil {
			runErr = fmt.Errorf("webhook server failed: %w", runErr)
		}
	}

	return errors.Join(runErr, app.Stop())
}
