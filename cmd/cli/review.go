package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/sevigo/hybrid-warden/internal/app"
	"github.com/sevigo/hybrid-warden/internal/core"
	"github.com/sevigo/hybrid-warden/internal/github"
	"github.com/sevigo/hybrid-warden/internal/gitutil"
	"github.com/sevigo/hybrid-warden/internal/notify"
	"github.com/sevigo/hybrid-warden/internal/storage"
)

var (
	reviewPost   bool
	reviewFailOn string
)

var reviewCmd = &cobra.Command{
	Use:   "review [pr-url]",
	Short: "Run the detection pipeline for a GitHub Pull Request",
	Long: `Run the detection pipeline for a GitHub Pull Request.

The review command lists the PR's changed files, analyzes them at the head commit and
prints the report. Nothing is written to GitHub, Slack or the database unless --post is given.

Examples:
  warden-cli review https://github.com/owner/repo/pull/123
  warden-cli review --post owner/repo#123`,
	Args: cobra.ExactArgs(1),
	RunE: runReview,
}

func init() { //nolint:gochecknoinits // Cobra command registration
	reviewCmd.Flags().BoolVar(&reviewPost, "post", false, "Post the PR comment, send the notification and store the records")
	reviewCmd.Flags().StringVar(&reviewFailOn, "fail-on", "", "Exit non-zero when the overall severity reaches this level (medium, high)")
	rootCmd.AddCommand(reviewCmd)
}

// previewClient keeps comments instead of posting them.
type previewClient struct {
	github.Client
	comments []string
}

func (c *previewClient) CreateComment(_ context.Context, _, _ string, _ int, body string) error {
	c.comments = append(c.comments, body)
	return nil
}

func runReview(_ *cobra.Command, args []string) error {
	ctx := context.Background()
	start := time.Now()

	if _, _, err := parseFailOn(reviewFailOn); err != nil {
		return err
	}
	ref, err := gitutil.ParsePullRequest(args[0])
	if err != nil {
		return fmt.Errorf("invalid PR URL: %w\n\nExpected format: https://github.com/owner/repo/pull/123", err)
	}

	titleColor.Println("🛡️  Hybrid Warden - PR Review")
	dimColor.Printf("   Target: %s\n\n", ref)

	cli, err := initCLI(ctx)
	if err != nil {
		return err
	}
	if cli.Config.GitHub.Token == "" {
		return errors.New("GITHUB_TOKEN is not set\n\nTip: Set GITHUB_TOKEN or pass --github-token")
	}
	ghClient := github.NewPATClient(ctx, cli.Config.GitHub.Token, cli.Logger)

	pr, err := ghClient.GetPullRequest(ctx, ref.Owner, ref.Repo, ref.Number)
	if err != nil {
		return fmt.Errorf("failed to fetch PR: %w\n\nTip: Check that the PR exists and your token has access", err)
	}
	dimColor.Printf("   PR #%d: %s\n", pr.GetNumber(), pr.GetTitle())
	dimColor.Printf("   Head SHA: %s\n\n", pr.GetHead().GetSHA())

	event := &core.ReviewEvent{
		DeliveryID:   "cli-" + uuid.NewString(),
		Action:       core.ActionSynchronize,
		RepoOwner:    ref.Owner,
		RepoName:     ref.Repo,
		RepoFullName: ref.FullName(),
		PRNumber:     ref.Number,
		PRTitle:      pr.GetTitle(),
		HeadSHA:      pr.GetHead().GetSHA(),
		Sender:       pr.GetUser().GetLogin(),
	}

	preview := &previewClient{Client: ghClient}
	var (
		client   github.Client = preview
		notifier notify.Notifier
		recorder storage.Recorder
	)
	if reviewPost {
		client = ghClient
		notifier = cli.Notifier
		store, cleanup, err := cli.OpenStore()
		switch {
		case errors.Is(err, app.ErrNoDatabase):
			warnColor.Println("   No database configured, records will only be logged")
		case err != nil:
			return err
		default:
			defer cleanup()
			recorder = store
		}
	}

	job := cli.NewReviewJob(github.StaticClientFactory{Client: client}, notifier, recorder)
	outcome := job.Process(ctx, event)
	if outcome.State == core.StateFailed {
		return fmt.Errorf("review failed: %w", outcome.Err)
	}

	printOutcome(outcome, preview.comments)
	dimColor.Printf("\n⏱️  Total time: %s\n", time.Since(start).Round(time.Millisecond))
	return checkFailOn(reviewFailOn, outcome.Report.OverallSeverity)
}
