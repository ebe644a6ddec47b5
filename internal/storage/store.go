package storage

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jmoiron/sqlx"
)

// Recorder accepts analysis records. Implementations must be safe for concurrent use.
//
//go:generate mockgen -destination=../mocks/mock_recorder.go -package=mocks . Recorder
type Recorder interface {
	Record(ctx context.Context, records []AnalysisRecord) error
}

// Store is a Recorder that can also read records back.
type Store interface {
	Recorder
	ListRecords(ctx context.Context, repository string, requestNumber, limit int) ([]AnalysisRecord, error)
}

type sqlStore struct {
	db *sqlx.DB
}

// NewStore creates a new Store
func NewStore(db *sqlx.DB) Store {
	return &sqlStore{db: db}
}

const insertRecord = `INSERT INTO analysis_records
	(delivery_id, recorded_at, repository, request_number, head_sha, file_path, severity,
	 static_categories, static_count, ml_probability, analyzed, error)
VALUES
	(:delivery_id, :recorded_at, :repository, :request_number, :head_sha, :file_path, :severity,
	 :static_categories, :static_count, :ml_probability, :analyzed, :error)`

// Record inserts all records in one transaction.
func (s *sqlStore) Record(ctx context.Context, records []AnalysisRecord) error {
	if len(records) == 0 {
		return nil
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for i := range records {
		if _, err := tx.NamedExecContext(ctx, insertRecord, &records[i]); err != nil {
			return fmt.Errorf("failed to insert record for %s: %w", records[i].FilePath, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit records: %w", err)
	}
	return nil
}

// ListRecords returns the newest records for a repository, optionally limited to one
// pull request when requestNumber is positive.
func (s *sqlStore) ListRecords(ctx context.Context, repository string, requestNumber, limit int) ([]AnalysisRecord, error) {
	if limit <= 0 {
		limit = 50
	}

	query := `SELECT id, delivery_id, recorded_at, repository, request_number, head_sha, file_path,
		severity, static_categories, static_count, ml_probability, analyzed, error
		FROM analysis_records WHERE repository = ?`
	args := []any{repository}
	if requestNumber > 0 {
		query += ` AND request_number = ?`
		args = append(args, requestNumber)
	}
	query += ` ORDER BY recorded_at DESC, id DESC LIMIT ?`
	args = append(args, limit)

	var records []AnalysisRecord
	if err := s.db.SelectContext(ctx, &records, s.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("failed to list records for %s: %w", repository, err)
	}
	return records, nil
}

type logRecorder struct {
	logger *slog.Logger
}

// NewLogRecorder returns a Recorder that writes every record as a structured log entry.
// It is used when no database is configured.
func NewLogRecorder(logger *slog.Logger) Recorder {
	return &logRecorder{logger: logger}
}

func (r *logRecorder) Record(ctx context.Context, records []AnalysisRecord) error {
	for _, rec := range records {
		r.logger.InfoContext(ctx, "analysis record",
			"timestamp", rec.Timestamp,
			"repo", rec.Repository,
			"pr", rec.RequestNumber,
			"head_sha", rec.HeadSHA,
			"file", rec.FilePath,
			"severity", rec.Severity,
			"static_categories", []string(rec.StaticCategories),
			"ml_probability", rec.MLProbability,
			"analyzed", rec.Analyzed,
		)
	}
	return nil
}
