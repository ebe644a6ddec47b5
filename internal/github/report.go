package github

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/sevigo/hybrid-warden/internal/core"
)

const reportTitle = "## 🛡️ Hybrid Warden Security Report"

const reportDisclaimer = "> [!NOTE]\n" +
	"> This report combines a static rule analyzer with a machine-learning classifier. " +
	"It is decision support for reviewers: findings can be false positives, and a Safe " +
	"result does not certify the change as secure."

const maxSnippetRunes = 120

// severityBadge returns a colored marker for a severity.
func severityBadge(s core.Severity) string {
	switch s {
	case core.SeverityHigh:
		return "🔴 High"
	case core.SeverityMedium:
		return "🟡 Medium"
	default:
		return "🟢 Safe"
	}
}

const unanalyzedBadge = "⚪ Not analyzed"

// RenderReport formats a review report as a pull request comment.
// The output depends only on the report, so identical reports render identically.
func RenderReport(report *core.ReviewReport) string {
	var sb strings.Builder

	sb.WriteString(reportTitle + "\n\n")
	sb.WriteString(reportDisclaimer + "\n\n")
	writeHeader(&sb, report)

	if len(report.Files) == 0 {
		sb.WriteString("No relevant files were changed in this pull request.\n")
		return sb.String()
	}

	sb.WriteString("| File | Severity | Static categories | ML probability |\n")
	sb.WriteString("|---|---|---|---|\n")
	for _, f := range report.Files {
		if !f.Analyzed {
			fmt.Fprintf(&sb, "| `%s` | %s | - | - |\n", f.FilePath, unanalyzedBadge)
			continue
		}
		fmt.Fprintf(&sb, "| `%s` | %s | %s | %.2f |\n",
			f.FilePath, severityBadge(f.Severity), categoryList(f.StaticCategories()), f.Score.Probability)
	}
	sb.WriteString("\n")

	for _, f := range report.Files {
		writeFileSection(&sb, f)
	}

	return sb.String()
}

// RenderNoTarget formats the comment posted when a pull request changes no analyzable files.
func RenderNoTarget(event *core.ReviewEvent, extensions []string) string {
	var sb strings.Builder
	sb.WriteString(reportTitle + "\n\n")
	fmt.Fprintf(&sb, "No relevant files (%s) were changed in this pull request at `%s`, so nothing was analyzed.\n",
		strings.Join(extensions, ", "), shortSHA(event.HeadSHA))
	return sb.String()
}

func writeHeader(sb *strings.Builder, report *core.ReviewReport) {
	fmt.Fprintf(sb, "**Repository:** `%s` · **Pull request:** #%d · **Commit:** `%s`\n\n",
		report.RepoFullName, report.PRNumber, shortSHA(report.HeadSHA))
	fmt.Fprintf(sb, "**Overall severity:** %s\n\n", severityBadge(report.OverallSeverity))

	if len(report.Files) == 0 {
		return
	}
	high := len(report.FilesWithSeverity(core.SeverityHigh))
	medium := len(report.FilesWithSeverity(core.SeverityMedium))
	safe := len(report.FilesWithSeverity(core.SeveritySafe))
	fmt.Fprintf(sb, "Analyzed %d file(s): %d high, %d medium, %d safe", high+medium+safe, high, medium, safe)
	if n := len(report.Unanalyzed()); n > 0 {
		fmt.Fprintf(sb, ", %d not analyzed", n)
	}
	sb.WriteString(".\n\n")
}

func writeFileSection(sb *strings.Builder, f core.FileAnalysisResult) {
	if !f.Analyzed {
		fmt.Fprintf(sb, "### %s `%s`\n\n", unanalyzedBadge, f.FilePath)
		sb.WriteString("> [!WARNING]\n")
		fmt.Fprintf(sb, "> This file could not be analyzed: %s\n\n", oneLine(f.Error))
		return
	}

	fmt.Fprintf(sb, "### %s `%s`\n\n", severityBadge(f.Severity), f.FilePath)
	fmt.Fprintf(sb, "- **Static categories:** %s\n", categoryList(f.StaticCategories()))
	fmt.Fprintf(sb, "- **ML probability:** %.2f\n", f.Score.Probability)
	if f.Explanation != "" {
		fmt.Fprintf(sb, "- **Explanation:** %s\n", f.Explanation)
	}
	sb.WriteString("\n")

	if len(f.Findings) == 0 {
		return
	}
	sb.WriteString("| Rule | Line | Snippet |\n")
	sb.WriteString("|---|---|---|\n")
	for _, finding := range f.Findings {
		fmt.Fprintf(sb, "| `%s` | %d | `%s` |\n", finding.RuleID, finding.Line, cellSnippet(finding.Snippet))
	}
	sb.WriteString("\n")
}

func categoryList(categories []core.Category) string {
	if len(categories) == 0 {
		return "none"
	}
	names := make([]string, len(categories))
	for i, c := range categories {
		names[i] = string(c)
	}
	return strings.Join(names, ", ")
}

// cellSnippet makes a snippet safe to place inside an inline code span in a table cell.
func cellSnippet(s string) string {
	s = strings.NewReplacer("`", "'", "|", "\\|").Replace(oneLine(s))
	if utf8.RuneCountInString(s) > maxSnippetRunes {
		s = string([]rune(s)[:maxSnippetRunes]) + "..."
	}
	return s
}

func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func shortSHA(sha string) string {
	if len(sha) > 7 {
		return sha[:7]
	}
	return sha
}
