// Package storage persists one analysis record per analyzed file.
package storage

import (
	"time"

	"github.com/lib/pq"

	"github.com/sevigo/hybrid-warden/internal/core"
)

// AnalysisRecord is the stored form of one file result.
type AnalysisRecord struct {
	ID               int64          `db:"id" json:"-"`
	DeliveryID       string         `db:"delivery_id" json:"delivery_id,omitempty"`
	Timestamp        time.Time      `db:"recorded_at" json:"timestamp"`
	Repository       string         `db:"repository" json:"repository"`
	RequestNumber    int            `db:"request_number" json:"request_number"`
	HeadSHA          string         `db:"head_sha" json:"head_sha"`
	FilePath         string         `db:"file_path" json:"file_path"`
	Severity         string         `db:"severity" json:"severity"`
	StaticCategories pq.StringArray `db:"static_categories" json:"static_categories"`
	StaticCount      int            `db:"static_count" json:"static_count"`
	MLProbability    float64        `db:"ml_probability" json:"ml_probability"`
	Analyzed         bool           `db:"analyzed" json:"analyzed"`
	Error            string         `db:"error" json:"error,omitempty"`
}

// UnanalyzedSeverity is stored for files that carry no severity judgment.
const UnanalyzedSeverity = "Unanalyzed"

// RecordsFromReport builds one record per file of the report, all stamped with now.
func RecordsFromReport(event *core.ReviewEvent, report *core.ReviewReport, now time.Time) []AnalysisRecord {
	records := make([]AnalysisRecord, 0, len(report.Files))
	for _, f := range report.Files {
		categories := pq.StringArray{}
		for _, c := range f.StaticCategories() {
			categories = append(categories, string(c))
		}

		severity := f.Severity.String()
		if !f.Analyzed {
			severity = UnanalyzedSeverity
		}

		rec := AnalysisRecord{
			Timestamp:        now.UTC(),
			Repository:       report.RepoFullName,
			RequestNumber:    report.PRNumber,
			HeadSHA:          report.HeadSHA,
			FilePath:         f.FilePath,
			Severity:         severity,
			StaticCategories: categories,
			StaticCount:      len(f.Findings),
			MLProbability:    f.Score.Probability,
			Analyzed:         f.Analyzed,
			Error:            f.Error,
		}
		if event != nil {
			rec.DeliveryID = event.DeliveryID
		}
		records = append(records, rec)
	}
	return records
}
