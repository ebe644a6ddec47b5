package app

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/sevigo/hybrid-warden/internal/config"
	"github.com/sevigo/hybrid-warden/internal/db"
	"github.com/sevigo/hybrid-warden/internal/detector"
	"github.com/sevigo/hybrid-warden/internal/github"
	"github.com/sevigo/hybrid-warden/internal/jobs"
	"github.com/sevigo/hybrid-warden/internal/notify"
	"github.com/sevigo/hybrid-warden/internal/storage"
)

// ErrNoDatabase is returned by OpenStore when no database is configured.
var ErrNoDatabase = errors.New("no database configured (set database.host, or database.driver=sqlite with database.path)")

// CLI bundles what the command line tools share. The database is opened on demand so
// commands that do not need it work without one.
type CLI struct {
	Config   *config.Config
	Logger   *slog.Logger
	Engine   *detector.Engine
	Notifier notify.Notifier
}

// NewCLI bundles the dependencies built by the CLI injector.
func NewCLI(cfg *config.Config, logger *slog.Logger, engine *detector.Engine, notifier notify.Notifier) *CLI {
	return &CLI{
		Config:   cfg,
		Logger:   logger,
		Engine:   engine,
		Notifier: notifier,
	}
}

// OpenStore connects to the configured database and applies migrations.
func (c *CLI) OpenStore() (storage.Store, func(), error) {
	if !c.Config.Database.Enabled() {
		return nil, func() {}, ErrNoDatabase
	}
	conn, cleanup, err := db.NewDatabase(&c.Config.Database, c.Logger)
	if err != nil {
		return nil, func() {}, fmt.Errorf("failed to open database: %w", err)
	}
	return storage.NewStore(conn.DB), cleanup, nil
}

// NewReviewJob builds a review job for a one-off run. A nil notifier disables notifications
// and a nil recorder logs the records instead of storing them.
func (c *CLI) NewReviewJob(clients github.ClientFactory, notifier notify.Notifier, recorder storage.Recorder) *jobs.ReviewJob {
	if notifier == nil {
		notifier = notify.NewNoopNotifier(c.Logger)
	}
	if recorder == nil {
		recorder = storage.NewLogRecorder(c.Logger)
	}
	return jobs.NewReviewJob(c.Config, c.Engine, clients, notifier, recorder, nil, c.Logger)
}
