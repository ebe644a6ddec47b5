package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/fatih/color"

	"github.com/sevigo/hybrid-warden/internal/core"
)

// Color definitions
var (
	titleColor   = color.New(color.FgCyan, color.Bold)
	successColor = color.New(color.FgGreen)
	warnColor    = color.New(color.FgYellow)
	errorColor   = color.New(color.FgRed)
	dimColor     = color.New(color.FgHiBlack)
	boldColor    = color.New(color.Bold)
)

var errSeverityThreshold = errors.New("severity threshold reached")

func printSeverityBadge(result core.FileAnalysisResult) {
	if !result.Analyzed {
		color.New(color.BgWhite, color.FgBlack).Print(" N/A ")
		return
	}
	switch result.Severity {
	case core.SeverityHigh:
		color.New(color.BgRed, color.FgWhite, color.Bold).Printf(" %s ", result.Severity)
	case core.SeverityMedium:
		color.New(color.BgYellow, color.FgBlack).Printf(" %s ", result.Severity)
	default:
		color.New(color.BgGreen, color.FgWhite).Printf(" %s ", result.Severity)
	}
}

func severityColor(severity string) *color.Color {
	switch severity {
	case core.SeverityHigh.String():
		return errorColor
	case core.SeverityMedium.String():
		return warnColor
	case core.SeveritySafe.String():
		return successColor
	default:
		return dimColor
	}
}

func printResult(result core.FileAnalysisResult) {
	printSeverityBadge(result)
	boldColor.Printf(" %s\n", result.FilePath)
	if !result.Analyzed {
		errorColor.Printf("   %s\n", result.Error)
		return
	}
	dimColor.Printf("   %s\n", result.Explanation)
	for _, f := range result.Findings {
		dimColor.Printf("   ├── %s:%d:%d ", result.FilePath, f.Line, f.Column)
		fmt.Printf("%s ", f.RuleID)
		dimColor.Printf("%s\n", f.Snippet)
	}
}

// renderMarkdown renders a report for the terminal, falling back to the raw markdown.
func renderMarkdown(md string) string {
	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(120),
	)
	if err != nil {
		return md
	}
	out, err := renderer.Render(md)
	if err != nil {
		return md
	}
	return out
}

func printOutcome(outcome *core.Outcome, comments []string) {
	for _, body := range comments {
		fmt.Print(renderMarkdown(body))
	}
	for _, step := range outcome.Steps {
		switch {
		case step.Skipped:
			dimColor.Printf("   %s: skipped\n", step.Step)
		case step.Err != nil:
			warnColor.Printf("   %s: failed: %v\n", step.Step, step.Err)
		default:
			successColor.Printf("   %s: ok\n", step.Step)
		}
	}
}

// parseFailOn turns the --fail-on flag into a severity; empty disables the check.
func parseFailOn(value string) (core.Severity, bool, error) {
	if strings.TrimSpace(value) == "" {
		return core.SeveritySafe, false, nil
	}
	s, err := core.ParseSeverity(value)
	if err != nil {
		return core.SeveritySafe, false, fmt.Errorf("invalid --fail-on value: %w", err)
	}
	return s, true, nil
}

func checkFailOn(failOn string, overall core.Severity) error {
	threshold, enabled, err := parseFailOn(failOn)
	if err != nil || !enabled {
		return err
	}
	if overall >= threshold {
		return fmt.Errorf("%w: overall severity %s", errSeverityThreshold, overall)
	}
	return nil
}
