package wire

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/google/wire"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/sevigo/hybrid-warden/internal/app"
	"github.com/sevigo/hybrid-warden/internal/classifier"
	"github.com/sevigo/hybrid-warden/internal/config"
	"github.com/sevigo/hybrid-warden/internal/core"
	"github.com/sevigo/hybrid-warden/internal/db"
	"github.com/sevigo/hybrid-warden/internal/detector"
	"github.com/sevigo/hybrid-warden/internal/github"
	"github.com/sevigo/hybrid-warden/internal/jobs"
	"github.com/sevigo/hybrid-warden/internal/logger"
	"github.com/sevigo/hybrid-warden/internal/metrics"
	"github.com/sevigo/hybrid-warden/internal/notify"
	"github.com/sevigo/hybrid-warden/internal/rules"
	"github.com/sevigo/hybrid-warden/internal/server"
	"github.com/sevigo/hybrid-warden/internal/server/handler"
	"github.com/sevigo/hybrid-warden/internal/storage"
)

// DetectorSet builds the detection engine: the rule table and the model are loaded once
// and shared by every job.
var DetectorSet = wire.NewSet(
	rules.DefaultTable,
	rules.NewAnalyzer,
	provideModel,
	detector.NewEngine,
	wire.Bind(new(detector.StaticAnalyzer), new(*rules.Analyzer)),
	wire.Bind(new(detector.Classifier), new(*classifier.Model)),
)

var AppSet = wire.NewSet(
	provideServerConfig,
	provideSlogLogger,
	DetectorSet,
	provideClientFactory,
	notify.NewNotifier,
	provideSlackConfig,
	provideRecorder,
	provideRegistry,
	provideMetrics,
	jobs.NewReviewJob,
	provideDispatcher,
	handler.NewWebhookHandler,
	provideRouter,
	server.NewServer,
	app.NewApp,
	wire.Bind(new(jobs.FileAnalyzer), new(*detector.Engine)),
	wire.Bind(new(core.Job), new(*jobs.ReviewJob)),
	wire.Bind(new(core.JobDispatcher), new(*jobs.Dispatcher)),
)

var CLISet = wire.NewSet(
	provideCLIConfig,
	provideSlogLogger,
	DetectorSet,
	notify.NewNotifier,
	provideSlackConfig,
	app.NewCLI,
)

func provideServerConfig() (*config.Config, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.ValidateForServer(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func provideCLIConfig() (*config.Config, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.ValidateForCLI(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func provideSlogLogger(cfg *config.Config) *slog.Logger {
	return logger.NewLogger(cfg.Logging, nil)
}

func provideSlackConfig(cfg *config.Config) config.SlackConfig {
	return cfg.Slack
}

// provideModel loads the classifier artifact. A missing or invalid artifact stops startup.
func provideModel(cfg *config.Config, logger *slog.Logger) (*classifier.Model, error) {
	model, err := classifier.LoadModel(cfg.Detector.ModelPath, cfg.Detector.Threshold)
	if err != nil {
		return nil, err
	}
	logger.Info("classifier model loaded",
		"path", cfg.Detector.ModelPath,
		"vocabulary", model.VocabularySize(),
		"threshold", model.Threshold(),
	)
	return model, nil
}

func provideClientFactory(cfg *config.Config, logger *slog.Logger) github.ClientFactory {
	return github.NewClientFactory(cfg.GitHub, logger)
}

// provideRecorder stores analysis records in the configured database, or logs them
// when there is none.
func provideRecorder(cfg *config.Config, logger *slog.Logger) (storage.Recorder, func(), error) {
	if !cfg.Database.Enabled() {
		logger.Info("no database configured, analysis records will be logged")
		return storage.NewLogRecorder(logger), func() {}, nil
	}
	conn, cleanup, err := db.NewDatabase(&cfg.Database, logger)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return storage.NewStore(conn.DB), cleanup, nil
}

func provideRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

func provideMetrics(reg *prometheus.Registry) *metrics.Metrics {
	return metrics.New(reg)
}

func provideDispatcher(cfg *config.Config, job core.Job, logger *slog.Logger) *jobs.Dispatcher {
	return jobs.NewDispatcher(job, cfg.Server.MaxWorkers, cfg.Server.QueueSize, logger)
}

func provideRouter(webhook *handler.WebhookHandler, reg *prometheus.Registry) http.Handler {
	return server.NewRouter(webhook, reg)
}
