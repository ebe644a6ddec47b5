package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sevigo/hybrid-warden/internal/app"
	"github.com/sevigo/hybrid-warden/internal/core"
	"github.com/sevigo/hybrid-warden/internal/github"
	"github.com/sevigo/hybrid-warden/internal/gitutil"
	"github.com/sevigo/hybrid-warden/internal/notify"
	"github.com/sevigo/hybrid-warden/internal/storage"
)

var (
	scanBase   string
	scanHead   string
	scanNotify bool
	scanRecord bool
	scanFailOn string
)

var scanCmd = &cobra.Command{
	Use:   "scan [path]",
	Short: "Scan the changes between two commits of a local git repository",
	Long: `Runs the detection pipeline on the files changed between --base and --head of the
repository at path, as if they were a pull request.

Examples:
  warden-cli scan . --base main --head HEAD
  warden-cli scan ../service --base HEAD~3 --fail-on high`,
	Args: cobra.ExactArgs(1),
	RunE: runScan,
}

func init() { //nolint:gochecknoinits // Cobra command registration
	scanCmd.Flags().StringVar(&scanBase, "base", "HEAD~1", "Base revision")
	scanCmd.Flags().StringVar(&scanHead, "head", "HEAD", "Head revision")
	scanCmd.Flags().BoolVar(&scanNotify, "notify", false, "Send the Slack notification for High results")
	scanCmd.Flags().BoolVar(&scanRecord, "record", false, "Store the analysis records in the database")
	scanCmd.Flags().StringVar(&scanFailOn, "fail-on", "", "Exit non-zero when the overall severity reaches this level (medium, high)")
	rootCmd.AddCommand(scanCmd)
}

func runScan(_ *cobra.Command, args []string) error {
	ctx := context.Background()
	if _, _, err := parseFailOn(scanFailOn); err != nil {
		return err
	}

	cli, err := initCLI(ctx)
	if err != nil {
		return err
	}

	src, err := gitutil.OpenLocalSource(args[0], scanBase, scanHead, cli.Logger)
	if err != nil {
		return err
	}
	event := src.Event()

	titleColor.Println("🛡️  Hybrid Warden - Local Scan")
	dimColor.Printf("   Repository: %s\n", args[0])
	dimColor.Printf("   Diff: %s..%s\n\n", src.BaseSHA()[:7], src.HeadSHA()[:7])

	var (
		notifier notify.Notifier
		recorder storage.Recorder
	)
	if scanNotify {
		notifier = cli.Notifier
	}
	if scanRecord {
		store, cleanup, err := cli.OpenStore()
		if err != nil {
			if errors.Is(err, app.ErrNoDatabase) {
				return fmt.Errorf("--record needs a database: %w", err)
			}
			return err
		}
		defer cleanup()
		recorder = store
	}

	job := cli.NewReviewJob(github.StaticClientFactory{Client: src}, notifier, recorder)
	outcome := job.Process(ctx, event)
	if outcome.State == core.StateFailed {
		return fmt.Errorf("scan failed: %w", outcome.Err)
	}

	for _, r := range outcome.Report.Files {
		printResult(r)
	}
	fmt.Println()
	printOutcome(outcome, src.Comments())
	return checkFailOn(scanFailOn, outcome.Report.OverallSeverity)
}
