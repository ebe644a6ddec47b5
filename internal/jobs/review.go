package jobs

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/sevigo/hybrid-warden/internal/config"
	"github.com/sevigo/hybrid-warden/internal/core"
	"github.com/sevigo/hybrid-warden/internal/detector"
	"github.com/sevigo/hybrid-warden/internal/github"
	"github.com/sevigo/hybrid-warden/internal/metrics"
	"github.com/sevigo/hybrid-warden/internal/notify"
	"github.com/sevigo/hybrid-warden/internal/storage"
)

const defaultCollaboratorTimeout = 15 * time.Second

// FileAnalyzer produces a severity judgment for one file.
type FileAnalyzer interface {
	AnalyzeFile(path, code string) core.FileAnalysisResult
}

// ReviewJob analyzes the changed files of a pull request and reports the result.
// It holds no per-event state and may run many events concurrently.
type ReviewJob struct {
	cfg      config.DetectorConfig
	analyzer FileAnalyzer
	clients  github.ClientFactory
	notifier notify.Notifier
	recorder storage.Recorder
	metrics  *metrics.Metrics
	logger   *slog.Logger
	now      func() time.Time
}

// NewReviewJob creates a new ReviewJob. Metrics may be nil.
func NewReviewJob(
	cfg *config.Config,
	analyzer FileAnalyzer,
	clients github.ClientFactory,
	notifier notify.Notifier,
	recorder storage.Recorder,
	m *metrics.Metrics,
	logger *slog.Logger,
) *ReviewJob {
	if cfg == nil {
		panic("config cannot be nil")
	}
	if analyzer == nil {
		panic("analyzer cannot be nil")
	}
	if clients == nil {
		panic("client factory cannot be nil")
	}
	if notifier == nil {
		panic("notifier cannot be nil")
	}
	if recorder == nil {
		panic("recorder cannot be nil")
	}
	if logger == nil {
		panic("logger cannot be nil")
	}
	return &ReviewJob{
		cfg:      cfg.Detector,
		analyzer: analyzer,
		clients:  clients,
		notifier: notifier,
		recorder: recorder,
		metrics:  m,
		logger:   logger,
		now:      time.Now,
	}
}

// Run implements core.Job. Only a job that could not list the changed files returns an error;
// failures of best-effort steps are logged and recorded in the outcome.
func (j *ReviewJob) Run(ctx context.Context, event *core.ReviewEvent) error {
	outcome := j.Process(ctx, event)
	if outcome.State == core.StateFailed {
		return outcome.Err
	}
	return nil
}

// Process drives one event from Fetching to a terminal state and returns what happened.
func (j *ReviewJob) Process(ctx context.Context, event *core.ReviewEvent) (outcome *core.Outcome) {
	start := time.Now()
	defer func() {
		j.metrics.ObserveOutcome(outcome, time.Since(start))
	}()

	if err := event.Validate(); err != nil {
		return j.fail(event, fmt.Errorf("input validation failed: %w", err))
	}
	logger := j.logger.With("repo", event.RepoFullName, "pr", event.PRNumber, "delivery", event.DeliveryID)
	logger.Info("starting review job", "state", core.StateFetching, "head", event.HeadSHA)

	authCtx, cancel := context.WithTimeout(ctx, j.timeout())
	client, err := j.clients.ForEvent(authCtx, event)
	cancel()
	if err != nil {
		return j.fail(event, fmt.Errorf("failed to create GitHub client: %w", err))
	}

	targets, err := j.fetchTargets(ctx, client, event, logger)
	if err != nil {
		return j.fail(event, err)
	}

	if len(targets) == 0 {
		logger.Info("no relevant files changed", "state", core.StateNoTarget)
		report := core.NewReviewReport(event, nil)
		body := github.RenderNoTarget(event, j.cfg.Extensions)
		step := j.runStep(ctx, core.StateReporting, logger, func(ctx context.Context) error {
			return client.CreateComment(ctx, event.RepoOwner, event.RepoName, event.PRNumber, body)
		})
		return &core.Outcome{State: core.StateNoTarget, Report: report, Steps: []core.StepResult{step}}
	}

	logger.Info("analyzing files", "state", core.StateAnalyzing, "count", len(targets))
	results := j.analyzeFiles(ctx, client, event, targets, logger)

	report := core.NewReviewReport(event, results)
	j.logSummary(logger, report)

	steps := make([]core.StepResult, 0, 3)

	body := github.RenderReport(report)
	steps = append(steps, j.runStep(ctx, core.StateReporting, logger, func(ctx context.Context) error {
		return client.CreateComment(ctx, event.RepoOwner, event.RepoName, event.PRNumber, body)
	}))

	if report.OverallSeverity == core.SeverityHigh {
		summary := notify.NewSummary(event, report)
		steps = append(steps, j.runStep(ctx, core.StateNotifying, logger, func(ctx context.Context) error {
			return j.notifier.PostSummary(ctx, summary)
		}))
	} else {
		steps = append(steps, core.StepResult{Step: core.StateNotifying, Skipped: true})
	}

	records := storage.RecordsFromReport(event, report, j.now())
	steps = append(steps, j.runStep(ctx, core.StateRecording, logger, func(ctx context.Context) error {
		return j.recorder.Record(ctx, records)
	}))

	logger.Info("review job completed", "state", core.StateDone, "overall", report.OverallSeverity, "duration", time.Since(start))
	return &core.Outcome{State: core.StateDone, Report: report, Steps: steps}
}

// fetchTargets lists the changed files and keeps the ones to analyze, in listing order.
func (j *ReviewJob) fetchTargets(ctx context.Context, client github.Client, event *core.ReviewEvent, logger *slog.Logger) ([]github.ChangedFile, error) {
	repoCfg := j.loadRepoConfig(ctx, client, event, logger)

	listCtx, cancel := context.WithTimeout(ctx, j.timeout())
	defer cancel()
	files, err := client.ListChangedFiles(listCtx, event.RepoOwner, event.RepoName, event.PRNumber)
	if err != nil {
		return nil, fmt.Errorf("failed to list changed files: %w", err)
	}

	var targets []github.ChangedFile
	for _, f := range files {
		switch {
		case f.Removed():
			continue
		case !j.cfg.Matches(f.Path):
			continue
		case repoCfg.Excludes(f.Path):
			logger.Debug("file excluded by repository config", "file", f.Path)
			continue
		}
		targets = append(targets, f)
	}
	return targets, nil
}

// loadRepoConfig reads the repository's own configuration at the head commit.
// Any problem falls back to the defaults.
func (j *ReviewJob) loadRepoConfig(ctx context.Context, client github.Client, event *core.ReviewEvent, logger *slog.Logger) *core.RepoConfig {
	if j.cfg.RepoConfigPath == "" {
		return core.DefaultRepoConfig()
	}

	fetchCtx, cancel := context.WithTimeout(ctx, j.timeout())
	defer cancel()
	content, err := client.GetFileContent(fetchCtx, event.RepoOwner, event.RepoName, event.HeadSHA, j.cfg.RepoConfigPath)
	if err != nil {
		if !errors.Is(err, github.ErrFileNotFound) {
			logger.Warn("failed to fetch repository config, using defaults", "path", j.cfg.RepoConfigPath, "error", err)
		}
		return core.DefaultRepoConfig()
	}

	repoCfg, err := config.ParseRepoConfig([]byte(content))
	if err != nil {
		logger.Warn("invalid repository config, using defaults", "path", j.cfg.RepoConfigPath, "error", err)
		return core.DefaultRepoConfig()
	}
	return repoCfg
}

// analyzeFiles fetches and analyzes every target concurrently. Results keep the order of targets.
func (j *ReviewJob) analyzeFiles(ctx context.Context, client github.Client, event *core.ReviewEvent, targets []github.ChangedFile, logger *slog.Logger) []core.FileAnalysisResult {
	results := make([]core.FileAnalysisResult, len(targets))

	var g errgroup.Group
	g.SetLimit(max(j.cfg.FileConcurrency, 1))

	for i, target := range targets {
		g.Go(func() error {
			results[i] = j.analyzeFile(ctx, client, event, target.Path, logger)
			return nil
		})
	}
	_ = g.Wait()

	return results
}

func (j *ReviewJob) analyzeFile(ctx context.Context, client github.Client, event *core.ReviewEvent, path string, logger *slog.Logger) (result core.FileAnalysisResult) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("analysis panicked", "file", path, "panic", r)
			result = detector.Unanalyzed(path, fmt.Errorf("analysis failed: %v", r))
		}
	}()

	fetchCtx, cancel := context.WithTimeout(ctx, j.timeout())
	defer cancel()

	content, err := client.GetFileContent(fetchCtx, event.RepoOwner, event.RepoName, event.HeadSHA, path)
	if err != nil {
		logger.Warn("failed to fetch file, marking unanalyzed", "file", path, "error", err)
		return detector.Unanalyzed(path, err)
	}

	result = j.analyzer.AnalyzeFile(path, content)
	logger.Debug("file analyzed", "file", path, "severity", result.Severity, "findings", len(result.Findings), "ml_probability", result.Score.Probability)
	return result
}

// runStep runs a best-effort side effect bounded by the collaborator timeout.
func (j *ReviewJob) runStep(ctx context.Context, step core.State, logger *slog.Logger, fn func(context.Context) error) core.StepResult {
	stepCtx, cancel := context.WithTimeout(ctx, j.timeout())
	defer cancel()

	logger.Debug("running step", "state", step)
	if err := fn(stepCtx); err != nil {
		logger.Error("step failed", "state", step, "error", err)
		return core.StepResult{Step: step, Err: err}
	}
	return core.StepResult{Step: step}
}

func (j *ReviewJob) timeout() time.Duration {
	if j.cfg.CollaboratorTimeout <= 0 {
		return defaultCollaboratorTimeout
	}
	return j.cfg.CollaboratorTimeout
}

func (j *ReviewJob) fail(event *core.ReviewEvent, err error) *core.Outcome {
	attrs := []any{"state", core.StateFailed, "error", err}
	if event != nil {
		attrs = append(attrs, "repo", event.RepoFullName, "pr", event.PRNumber)
	}
	j.logger.Error("review job failed", attrs...)
	return &core.Outcome{State: core.StateFailed, Err: err}
}

// logSummary writes the console summary of a review, one line per file.
func (j *ReviewJob) logSummary(logger *slog.Logger, report *core.ReviewReport) {
	for _, f := range report.Files {
		if !f.Analyzed {
			logger.Warn("file not analyzed", "file", f.FilePath, "error", f.Error)
			continue
		}
		logger.Info("file result",
			"file", f.FilePath,
			"severity", f.Severity,
			"static_categories", f.StaticCategories(),
			"ml_probability", f.Score.Probability,
		)
	}
	logger.Info("review aggregated", "state", core.StateAggregating, "overall", report.OverallSeverity, "files", len(report.Files))
}
