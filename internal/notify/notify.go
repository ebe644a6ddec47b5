// Package notify sends review summaries to a chat channel.
package notify

import (
	"context"
	"log/slog"

	"github.com/sevigo/hybrid-warden/internal/core"
)

// FileSummary describes one High severity file in a notification.
type FileSummary struct {
	Path        string
	StaticCount int
	Categories  []core.Category
	Probability float64
}

// Summary is the content of a chat notification for one review.
type Summary struct {
	RepoFullName string
	PRNumber     int
	PRTitle      string
	HeadSHA      string
	Overall      core.Severity
	HighFiles    []FileSummary
}

// NewSummary extracts the High severity files of a report, in report order.
func NewSummary(event *core.ReviewEvent, report *core.ReviewReport) Summary {
	s := Summary{
		RepoFullName: report.RepoFullName,
		PRNumber:     report.PRNumber,
		HeadSHA:      report.HeadSHA,
		Overall:      report.OverallSeverity,
	}
	if event != nil {
		s.PRTitle = event.PRTitle
	}
	for _, f := range report.FilesWithSeverity(core.SeverityHigh) {
		s.HighFiles = append(s.HighFiles, FileSummary{
			Path:        f.FilePath,
			StaticCount: len(f.Findings),
			Categories:  f.StaticCategories(),
			Probability: f.Score.Probability,
		})
	}
	return s
}

// Notifier posts review summaries.
//
//go:generate mockgen -destination=../mocks/mock_notifier.go -package=mocks . Notifier
type Notifier interface {
	PostSummary(ctx context.Context, summary Summary) error
}

type noopNotifier struct {
	logger *slog.Logger
}

// NewNoopNotifier returns a Notifier that only logs. It is used when no chat webhook is configured.
func NewNoopNotifier(logger *slog.Logger) Notifier {
	return &noopNotifier{logger: logger}
}

func (n *noopNotifier) PostSummary(_ context.Context, summary Summary) error {
	n.logger.Debug("chat notifications disabled, skipping summary",
		"repo", summary.RepoFullName, "pr", summary.PRNumber, "high_files", len(summary.HighFiles))
	return nil
}
