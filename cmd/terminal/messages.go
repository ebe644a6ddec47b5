package main

import (
	"github.com/sevigo/hybrid-warden/internal/app"
	"github.com/sevigo/hybrid-warden/internal/core"
	"github.com/sevigo/hybrid-warden/internal/storage"
)

// Indicates that the detector and its collaborators have been initialized.
type cliInitializedMsg struct {
	cli *app.CLI
	err error
}

// Results of /analyze, in argument order.
type analyzeCompleteMsg struct {
	results []core.FileAnalysisResult
}

// Indicates that a local diff scan has completed.
type scanCompleteMsg struct {
	repoPath string
	diff     string
	outcome  *core.Outcome
	comment  string
	err      error
}

type historyLoadedMsg struct {
	repoFullName string
	records      []storage.AnalysisRecord
	err          error
}

// A generic error message for reporting failures from commands.
type errorMsg struct{ err error }

func (e errorMsg) Error() string {
	return e.err.Error()
}
