package github

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sevigo/hybrid-warden/internal/core"
)

func sampleReport() *core.ReviewReport {
	event := &core.ReviewEvent{RepoFullName: "octo/app", PRNumber: 12, HeadSHA: "0123456789abcdef"}
	return core.NewReviewReport(event, []core.FileAnalysisResult{
		{
			FilePath: "app/views.py",
			Findings: []core.StaticFinding{
				{RuleID: "dynamic-eval", Category: core.CategoryUnsafeDynamicExec, Line: 4, Snippet: "return eval(user_input)"},
			},
			Score:       core.MLScore{Probability: 0.9},
			Severity:    core.SeverityHigh,
			Explanation: "static: unsafe_dynamic_exec; ml probability 0.90 at or above threshold 0.50",
			Analyzed:    true,
		},
		{
			FilePath: "app/util.py",
			Score:    core.MLScore{Probability: 0.1},
			Severity: core.SeveritySafe,
			Analyzed: true,
		},
		{
			FilePath: "app/big.py",
			Analyzed: false,
			Error:    "context deadline exceeded",
		},
	})
}

func TestRenderReport(t *testing.T) {
	out := RenderReport(sampleReport())

	for _, want := range []string{
		reportTitle,
		"[!NOTE]",
		"does not certify",
		"**Repository:** `octo/app`",
		"**Pull request:** #12",
		"**Commit:** `0123456`",
		"**Overall severity:** 🔴 High",
		"Analyzed 2 file(s): 1 high, 0 medium, 1 safe, 1 not analyzed.",
		"| `app/views.py` | 🔴 High | unsafe_dynamic_exec | 0.90 |",
		"| `app/util.py` | 🟢 Safe | none | 0.10 |",
		"| `app/big.py` | ⚪ Not analyzed | - | - |",
		"| `dynamic-eval` | 4 | `return eval(user_input)` |",
		"> This file could not be analyzed: context deadline exceeded",
	} {
		assert.Contains(t, out, want)
	}

	assert.Less(t, strings.Index(out, "### 🔴 `app/views.py`"), strings.Index(out, "### 🟢 `app/util.py`"),
		"file sections must keep report order")
}

func TestRenderReportIsDeterministic(t *testing.T) {
	assert.Equal(t, RenderReport(sampleReport()), RenderReport(sampleReport()))
}

func TestRenderReportEmpty(t *testing.T) {
	report := core.NewReviewReport(&core.ReviewEvent{RepoFullName: "octo/app", PRNumber: 1, HeadSHA: "abc"}, nil)
	out := RenderReport(report)
	assert.Contains(t, out, "**Overall severity:** 🟢 Safe")
	assert.Contains(t, out, "No relevant files")
	assert.NotContains(t, out, "| File |")
}

func TestRenderNoTarget(t *testing.T) {
	out := RenderNoTarget(&core.ReviewEvent{HeadSHA: "fedcba9876543210"}, []string{".py"})
	assert.Contains(t, out, "No relevant files (.py)")
	assert.Contains(t, out, "`fedcba9`")
}

func TestCellSnippet(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "plain", in: "x = eval(y)", want: "x = eval(y)"},
		{name: "backticks replaced", in: "run(`ls`)", want: "run('ls')"},
		{name: "pipes escaped", in: "a | b", want: "a \\| b"},
		{name: "whitespace collapsed", in: "a\t\tb\n c", want: "a b c"},
		{name: "truncated", in: strings.Repeat("x", 130), want: strings.Repeat("x", 120) + "..."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, cellSnippet(tt.in))
		})
	}
}
