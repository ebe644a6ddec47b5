package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v5"

	"github.com/sevigo/hybrid-warden/internal/config"
)

const defaultSlackTimeout = 10 * time.Second

// SlackNotifier posts summaries to a Slack incoming webhook.
type SlackNotifier struct {
	webhookURL      string
	channel         string
	httpClient      *http.Client
	maxTries        uint
	initialInterval time.Duration
	logger          *slog.Logger
}

// SlackOption customizes a SlackNotifier.
type SlackOption func(*SlackNotifier)

// WithHTTPClient replaces the HTTP client used to reach Slack.
func WithHTTPClient(c *http.Client) SlackOption {
	return func(n *SlackNotifier) { n.httpClient = c }
}

// WithRetryInterval sets the first delay between retries.
func WithRetryInterval(d time.Duration) SlackOption {
	return func(n *SlackNotifier) { n.initialInterval = d }
}

// NewSlackNotifier creates a notifier for the given Slack configuration.
func NewSlackNotifier(cfg config.SlackConfig, logger *slog.Logger, opts ...SlackOption) *SlackNotifier {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultSlackTimeout
	}
	retries := cfg.MaxRetries
	if retries < 0 {
		retries = 0
	}
	n := &SlackNotifier{
		webhookURL:      cfg.WebhookURL,
		channel:         cfg.Channel,
		httpClient:      &http.Client{Timeout: timeout},
		maxTries:        uint(retries) + 1,
		initialInterval: time.Second,
		logger:          logger,
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// NewNotifier returns a SlackNotifier when a webhook URL is configured and a no-op notifier otherwise.
func NewNotifier(cfg config.SlackConfig, logger *slog.Logger) Notifier {
	if cfg.WebhookURL == "" {
		return NewNoopNotifier(logger)
	}
	return NewSlackNotifier(cfg, logger)
}

// PostSummary sends the summary, retrying on network errors and 5xx responses.
func (n *SlackNotifier) PostSummary(ctx context.Context, summary Summary) error {
	body, err := n.payload(summary)
	if err != nil {
		return fmt.Errorf("format slack payload: %w", err)
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = n.initialInterval

	_, err = backoff.Retry(ctx, func() (struct{}, error) {
		return struct{}{}, n.send(ctx, body)
	},
		backoff.WithBackOff(b),
		backoff.WithMaxTries(n.maxTries),
		backoff.WithNotify(func(err error, next time.Duration) {
			n.logger.Warn("slack notification failed, retrying", "repo", summary.RepoFullName, "pr", summary.PRNumber, "retry_in", next, "error", err)
		}),
	)
	if err != nil {
		return fmt.Errorf("post slack summary: %w", err)
	}
	n.logger.Info("slack summary posted", "repo", summary.RepoFullName, "pr", summary.PRNumber, "high_files", len(summary.HighFiles))
	return nil
}

func (n *SlackNotifier) send(ctx context.Context, body []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.webhookURL, bytes.NewReader(body))
	if err != nil {
		return backoff.Permanent(fmt.Errorf("create request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return nil
	case resp.StatusCode >= 500:
		return fmt.Errorf("slack returned %d", resp.StatusCode)
	default:
		return backoff.Permanent(fmt.Errorf("slack returned %d", resp.StatusCode))
	}
}

func (n *SlackNotifier) payload(s Summary) ([]byte, error) {
	text := SummaryText(s)

	fields := []any{
		map[string]any{"type": "mrkdwn", "text": fmt.Sprintf("*Repository:* %s", s.RepoFullName)},
		map[string]any{"type": "mrkdwn", "text": fmt.Sprintf("*Pull request:* #%d", s.PRNumber)},
		map[string]any{"type": "mrkdwn", "text": fmt.Sprintf("*Overall severity:* %s", s.Overall)},
		map[string]any{"type": "mrkdwn", "text": fmt.Sprintf("*High files:* %d", len(s.HighFiles))},
	}

	var lines []string
	for _, f := range s.HighFiles {
		lines = append(lines, fileLine(f))
	}

	blocks := []any{
		map[string]any{
			"type": "header",
			"text": map[string]any{"type": "plain_text", "text": "Hybrid Warden: high severity pull request"},
		},
		map[string]any{"type": "section", "fields": fields},
	}
	if len(lines) > 0 {
		blocks = append(blocks, map[string]any{
			"type": "section",
			"text": map[string]any{"type": "mrkdwn", "text": strings.Join(lines, "\n")},
		})
	}

	payload := map[string]any{
		"text":   text,
		"blocks": blocks,
	}
	if n.channel != "" {
		payload["channel"] = n.channel
	}
	return json.Marshal(payload)
}

// SummaryText renders the plain-text fallback of a summary.
func SummaryText(s Summary) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "High severity vulnerabilities detected in %s PR #%d", s.RepoFullName, s.PRNumber)
	if s.PRTitle != "" {
		fmt.Fprintf(&sb, " (%s)", s.PRTitle)
	}
	sb.WriteString(":")
	for _, f := range s.HighFiles {
		sb.WriteString("\n")
		sb.WriteString(fileLine(f))
	}
	return sb.String()
}

func fileLine(f FileSummary) string {
	return fmt.Sprintf("• `%s`: %d static issue(s), ML probability %.2f", f.Path, f.StaticCount, f.Probability)
}
