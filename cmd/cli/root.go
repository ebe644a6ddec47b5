package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sevigo/hybrid-warden/internal/app"
	"github.com/sevigo/hybrid-warden/internal/wire"
)

var githubToken string

var rootCmd = &cobra.Command{
	Use:   "warden-cli",
	Short: "warden-cli is the command-line interface for Hybrid Warden.",
	Long: `A CLI for running the Hybrid Warden vulnerability detector outside the webhook server:
analyze local files, review a GitHub pull request, scan a local git diff, or inspect
stored analysis records.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() { //nolint:gochecknoinits // Cobra's init function for command registration
	rootCmd.PersistentFlags().StringVarP(&githubToken, "github-token", "t", "", "GitHub token (overrides github.token / GITHUB_TOKEN)")
}

// initCLI wires the shared dependencies and applies command line overrides.
func initCLI(ctx context.Context) (*app.CLI, error) {
	cli, err := wire.InitializeCLI(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize: %w\n\nTip: Check that your config.yaml exists and detector.model_path points to a model", err)
	}
	if githubToken != "" {
		cli.Config.GitHub.Token = githubToken
	}
	return cli, nil
}
