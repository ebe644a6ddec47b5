package core

import "slices"

// StaticFinding is a single match of a static rule inside a file.
type StaticFinding struct {
	RuleID   string   `json:"rule_id"`
	Category Category `json:"category"`
	Line     int      `json:"line"`   // 1-based
	Column   int      `json:"column"` // 1-based byte offset within the line
	Match    string   `json:"match"`
	Snippet  string   `json:"snippet"`
}

// MLScore is the classifier output for one file.
type MLScore struct {
	Probability float64 `json:"probability"`
}

// FileAnalysisResult is the outcome of analyzing one changed file.
// A result with Analyzed set to false carries no severity judgment: the file
// could not be fetched or scored and Error explains why.
type FileAnalysisResult struct {
	FilePath    string          `json:"file_path"`
	Findings    []StaticFinding `json:"static_findings"`
	Score       MLScore         `json:"ml_score"`
	Severity    Severity        `json:"severity"`
	Explanation string          `json:"explanation"`
	Analyzed    bool            `json:"analyzed"`
	Error       string          `json:"error,omitempty"`
}

// StaticCategories returns the distinct categories of the findings in canonical order.
func (r FileAnalysisResult) StaticCategories() []Category {
	return FindingCategories(r.Findings)
}

// FindingCategories returns the distinct categories present in findings,
// ordered as in Categories.
func FindingCategories(findings []StaticFinding) []Category {
	seen := make(map[Category]bool, len(findings))
	for _, f := range findings {
		seen[f.Category] = true
	}
	var out []Category
	for _, c := range Categories() {
		if seen[c] {
			out = append(out, c)
		}
	}
	return out
}

// ReviewReport aggregates the per-file results of one review event.
type ReviewReport struct {
	RepoFullName    string               `json:"repository"`
	PRNumber        int                  `json:"request_number"`
	HeadSHA         string               `json:"head_commit"`
	Files           []FileAnalysisResult `json:"file_results"`
	OverallSeverity Severity             `json:"overall_severity"`
}

// NewReviewReport builds a report and computes its overall severity.
// Files keep the order they were given in.
func NewReviewReport(event *ReviewEvent, files []FileAnalysisResult) *ReviewReport {
	return &ReviewReport{
		RepoFullName:    event.RepoFullName,
		PRNumber:        event.PRNumber,
		HeadSHA:         event.HeadSHA,
		Files:           slices.Clone(files),
		OverallSeverity: OverallSeverity(files),
	}
}

// OverallSeverity is the maximum severity over the analyzed files, Safe when there are none.
// Unanalyzed files do not contribute.
func OverallSeverity(files []FileAnalysisResult) Severity {
	overall := SeveritySafe
	for _, f := range files {
		if !f.Analyzed {
			continue
		}
		overall = MaxSeverity(overall, f.Severity)
	}
	return overall
}

// FilesWithSeverity returns the analyzed files whose severity equals s.
func (r *ReviewReport) FilesWithSeverity(s Severity) []FileAnalysisResult {
	var out []FileAnalysisResult
	for _, f := range r.Files {
		if f.Analyzed && f.Severity == s {
			out = append(out, f)
		}
	}
	return out
}

// Unanalyzed returns the files that could not be analyzed.
func (r *ReviewReport) Unanalyzed() []FileAnalysisResult {
	var out []FileAnalysisResult
	for _, f := range r.Files {
		if !f.Analyzed {
			out = append(out, f)
		}
	}
	return out
}
