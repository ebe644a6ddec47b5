package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/sevigo/hybrid-warden/internal/core"
	"github.com/sevigo/hybrid-warden/internal/detector"
)

var (
	analyzeJSON   bool
	analyzeFailOn string
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze [file...]",
	Short: "Run the hybrid detector on local files",
	Long: `Runs the static rules and the classifier on each file and prints the fused severity.

Examples:
  warden-cli analyze app/views.py app/db.py
  warden-cli analyze --json --fail-on high $(git diff --name-only main -- '*.py')`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAnalyze,
}

func init() { //nolint:gochecknoinits // Cobra command registration
	analyzeCmd.Flags().BoolVar(&analyzeJSON, "json", false, "Output results as JSON")
	analyzeCmd.Flags().StringVar(&analyzeFailOn, "fail-on", "", "Exit non-zero when the overall severity reaches this level (medium, high)")
	rootCmd.AddCommand(analyzeCmd)
}

func runAnalyze(_ *cobra.Command, args []string) error {
	if _, _, err := parseFailOn(analyzeFailOn); err != nil {
		return err
	}
	cli, err := initCLI(context.Background())
	if err != nil {
		return err
	}

	results := make([]core.FileAnalysisResult, 0, len(args))
	for _, path := range args {
		code, err := os.ReadFile(path)
		if err != nil {
			results = append(results, detector.Unanalyzed(path, err))
			continue
		}
		results = append(results, cli.Engine.AnalyzeFile(path, string(code)))
	}
	overall := core.OverallSeverity(results)

	if analyzeJSON {
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(results); err != nil {
			return fmt.Errorf("failed to encode results: %w", err)
		}
		return checkFailOn(analyzeFailOn, overall)
	}

	titleColor.Println("🛡️  Hybrid Warden - File Analysis")
	dimColor.Printf("   Threshold: %.2f\n\n", cli.Engine.Threshold())
	for _, r := range results {
		printResult(r)
	}
	fmt.Println()
	boldColor.Print("Overall: ")
	printSeverityBadge(core.FileAnalysisResult{Analyzed: true, Severity: overall})
	fmt.Println()

	return checkFailOn(analyzeFailOn, overall)
}
