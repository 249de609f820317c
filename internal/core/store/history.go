package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/voxgate/voxgate/internal/core"
)

// RecordTranscription appends a history entry for a transcription attempt.
func (s *Store) RecordTranscription(ctx context.Context, record core.TranscriptionRecord) error {
	if s == nil || s.DB == nil {
		return errors.New("store is not initialized")
	}

	if ctx == nil {
		ctx = context.Background()
	}

	if strings.TrimSpace(record.RequestID) == "" {
		return errors.New("request id is required")
	}

	createdAt := record.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	_, err := s.DB.ExecContext(ctx, `
		INSERT INTO transcriptions (request_id, language, text_chars, duration_ms, status, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, record.RequestID, record.Language, record.TextChars, record.Duration.Milliseconds(), string(record.Status), createdAt.Unix())
	if err != nil {
		return fmt.Errorf("record transcription: %w", err)
	}

	return nil
}

// RecentTranscriptions returns up to limit history entries, newest first.
func (s *Store) RecentTranscriptions(ctx context.Context, limit int) ([]core.TranscriptionRecord, error) {
	if s == nil || s.DB == nil {
		return nil, errors.New("store is not initialized")
	}

	if ctx == nil {
		ctx = context.Background()
	}

	if limit <= 0 {
		limit = 20
	}

	rows, err := s.DB.QueryContext(ctx, `
		SELECT id, request_id, language, text_chars, duration_ms, status, created_at
		FROM transcriptions
		ORDER BY created_at DESC, id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("list transcriptions: %w", err)
	}
	defer rows.Close() // nolint:errcheck // read-only cursor

	var records []core.TranscriptionRecord
	for rows.Next() {
		var (
			record     core.TranscriptionRecord
			durationMs int64
			status     string
			createdAt  int64
		)
		if err := rows.Scan(&record.ID, &record.RequestID, &record.Language, &record.TextChars, &durationMs, &status, &createdAt); err != nil {
			return nil, fmt.Errorf("scan transcription: %w", err)
		}
		record.Duration = time.Duration(durationMs) * time.Millisecond
		record.Status = core.TranscriptionStatus(status)
		record.CreatedAt = time.Unix(createdAt, 0).UTC()
		records = append(records, record)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list transcriptions: %w", err)
	}

	return records, nil
}

// PruneTranscriptions removes entries older than the retention window and
// returns the number deleted.
func (s *Store) PruneTranscriptions(ctx context.Context, olderThan time.Time) (int64, error) {
	if s == nil || s.DB == nil {
		return 0, errors.New("store is not initialized")
	}

	if ctx == nil {
		ctx = context.Background()
	}

	result, err := s.DB.ExecContext(ctx, `
		DELETE FROM transcriptions WHERE created_at < ?
	`, olderThan.Unix())
	if err != nil {
		return 0, fmt.Errorf("prune transcriptions: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return 0, nil // nolint:nilerr // count is informational
	}
	return affected, nil
}
