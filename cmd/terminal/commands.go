package main

import (
	"context"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sevigo/hybrid-warden/internal/app"
	"github.com/sevigo/hybrid-warden/internal/core"
	"github.com/sevigo/hybrid-warden/internal/detector"
	"github.com/sevigo/hybrid-warden/internal/github"
	"github.com/sevigo/hybrid-warden/internal/gitutil"
	"github.com/sevigo/hybrid-warden/internal/wire"
)

func initializeCLICmd() tea.Cmd {
	return func() tea.Msg {
		cli, err := wire.InitializeCLI(context.Background())
		if err != nil {
			return cliInitializedMsg{err: err}
		}
		return cliInitializedMsg{cli: cli}
	}
}

func analyzeFilesCmd(cli *app.CLI, paths []string) tea.Cmd {
	return func() tea.Msg {
		results := make([]core.FileAnalysisResult, 0, len(paths))
		for _, path := range paths {
			code, err := os.ReadFile(path)
			if err != nil {
				results = append(results, detector.Unanalyzed(path, err))
				continue
			}
			results = append(results, cli.Engine.AnalyzeFile(path, string(code)))
		}
		return analyzeCompleteMsg{results: results}
	}
}

// scanRepoCmd runs the review pipeline on a local diff. Nothing leaves the machine:
// the notifier and recorder are the CLI defaults.
func scanRepoCmd(cli *app.CLI, path, base, head string) tea.Cmd {
	return func() tea.Msg {
		src, err := gitutil.OpenLocalSource(path, base, head, cli.Logger)
		if err != nil {
			return scanCompleteMsg{repoPath: path, err: err}
		}

		job := cli.NewReviewJob(github.StaticClientFactory{Client: src}, nil, nil)
		outcome := job.Process(context.Background(), src.Event())
		if outcome.State == core.StateFailed {
			return scanCompleteMsg{repoPath: path, err: outcome.Err}
		}

		var comment string
		if comments := src.Comments(); len(comments) > 0 {
			comment = comments[len(comments)-1]
		}
		return scanCompleteMsg{
			repoPath: path,
			diff:     fmt.Sprintf("%s..%s", src.BaseSHA()[:7], src.HeadSHA()[:7]),
			outcome:  outcome,
			comment:  comment,
		}
	}
}

func loadHistoryCmd(cli *app.CLI, repoFullName string, prNumber int) tea.Cmd {
	return func() tea.Msg {
		store, cleanup, err := cli.OpenStore()
		if err != nil {
			return historyLoadedMsg{repoFullName: repoFullName, err: err}
		}
		defer cleanup()

		records, err := store.ListRecords(context.Background(), repoFullName, prNumber, 20)
		return historyLoadedMsg{repoFullName: repoFullName, records: records, err: err}
	}
}
