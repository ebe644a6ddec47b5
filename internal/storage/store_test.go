package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sevigo/hybrid-warden/internal/config"
	"github.com/sevigo/hybrid-warden/internal/core"
	"github.com/sevigo/hybrid-warden/internal/db"
)

func sampleReport() (*core.ReviewEvent, *core.ReviewReport) {
	event := &core.ReviewEvent{DeliveryID: "d-1", RepoFullName: "octo/app", PRNumber: 3, HeadSHA: "abc123"}
	report := core.NewReviewReport(event, []core.FileAnalysisResult{
		{
			FilePath: "a.py", Severity: core.SeverityHigh, Analyzed: true,
			Findings: []core.StaticFinding{{RuleID: "dynamic-eval", Category: core.CategoryUnsafeDynamicExec}},
			Score:    core.MLScore{Probability: 0.9},
		},
		{FilePath: "b.py", Severity: core.SeveritySafe, Analyzed: true, Score: core.MLScore{Probability: 0.1}},
		{FilePath: "c.py", Analyzed: false, Error: "timeout"},
	})
	return event, report
}

func TestRecordsFromReport(t *testing.T) {
	event, report := sampleReport()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	records := RecordsFromReport(event, report, now)
	require.Len(t, records, 3)

	assert.Equal(t, "d-1", records[0].DeliveryID)
	assert.Equal(t, "octo/app", records[0].Repository)
	assert.Equal(t, 3, records[0].RequestNumber)
	assert.Equal(t, "High", records[0].Severity)
	assert.Equal(t, []string{"unsafe_dynamic_exec"}, []string(records[0].StaticCategories))
	assert.Equal(t, 1, records[0].StaticCount)
	assert.True(t, records[0].Timestamp.Equal(now))

	assert.Equal(t, "Safe", records[1].Severity)
	assert.Empty(t, records[1].StaticCategories)

	assert.Equal(t, UnanalyzedSeverity, records[2].Severity)
	assert.False(t, records[2].Analyzed)
	assert.Equal(t, "timeout", records[2].Error)
}

func TestRecordJSONFields(t *testing.T) {
	event, report := sampleReport()
	raw, err := json.Marshal(RecordsFromReport(event, report, time.Unix(0, 0))[0])
	require.NoError(t, err)

	var fields map[string]any
	require.NoError(t, json.Unmarshal(raw, &fields))
	for _, key := range []string{"timestamp", "repository", "request_number", "head_sha", "file_path",
		"severity", "static_categories", "ml_probability", "analyzed"} {
		assert.Contains(t, fields, key)
	}
}

func TestSQLStoreRoundTrip(t *testing.T) {
	database, cleanup, err := db.NewDatabase(&config.DBConfig{
		Driver: config.DriverSQLite,
		Path:   filepath.Join(t.TempDir(), "records.db"),
	}, slog.New(slog.DiscardHandler))
	require.NoError(t, err)
	defer cleanup()

	store := NewStore(database.DB)
	ctx := context.Background()
	event, report := sampleReport()
	now := time.Now().UTC().Truncate(time.Second)

	require.NoError(t, store.Record(ctx, RecordsFromReport(event, report, now)))
	require.NoError(t, store.Record(ctx, nil))

	records, err := store.ListRecords(ctx, "octo/app", 3, 10)
	require.NoError(t, err)
	require.Len(t, records, 3)

	byFile := make(map[string]AnalysisRecord)
	for _, r := range records {
		byFile[r.FilePath] = r
	}
	assert.Equal(t, "High", byFile["a.py"].Severity)
	assert.Equal(t, []string{"unsafe_dynamic_exec"}, []string(byFile["a.py"].StaticCategories))
	assert.InDelta(t, 0.9, byFile["a.py"].MLProbability, 1e-9)
	assert.True(t, byFile["a.py"].Analyzed)
	assert.False(t, byFile["c.py"].Analyzed)
	assert.Equal(t, "timeout", byFile["c.py"].Error)

	others, err := store.ListRecords(ctx, "octo/app", 4, 10)
	require.NoError(t, err)
	assert.Empty(t, others)

	limited, err := store.ListRecords(ctx, "octo/app", 0, 2)
	require.NoError(t, err)
	assert.Len(t, limited, 2)
}

func TestLogRecorder(t *testing.T) {
	var buf bytes.Buffer
	recorder := NewLogRecorder(slog.New(slog.NewJSONHandler(&buf, nil)))
	event, report := sampleReport()

	require.NoError(t, recorder.Record(context.Background(), RecordsFromReport(event, report, time.Now())))

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.Len(t, lines, 3)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(lines[0], &entry))
	assert.Equal(t, "analysis record", entry["msg"])
	assert.Equal(t, "a.py", entry["file"])
	assert.Equal(t, "High", entry["severity"])
	assert.Equal(t, true, entry["analyzed"])
}
