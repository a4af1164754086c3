package clickhouse

import (
	"context"
	"fmt"
	"time"

	"tradeproof/internal/domain"
	"tradeproof/internal/storage"
)

// ExtractionLogStore implements storage.ExtractionLogStore using ClickHouse.
// The log is append-only batch telemetry; MergeTree duplicates are
// acceptable and never checked.
type ExtractionLogStore struct {
	conn *Conn
}

// NewExtractionLogStore creates a new ExtractionLogStore.
func NewExtractionLogStore(conn *Conn) *ExtractionLogStore {
	return &ExtractionLogStore{conn: conn}
}

// Compile-time interface check.
var _ storage.ExtractionLogStore = (*ExtractionLogStore)(nil)

// InsertBatch appends the outcomes of one batch run.
func (s *ExtractionLogStore) InsertBatch(ctx context.Context, runID string, at time.Time, outcomes []domain.ImageOutcome) error {
	if len(outcomes) == 0 {
		return nil
	}
	if runID == "" {
		return storage.ErrInvalidInput
	}

	batch, err := s.conn.PrepareBatch(ctx, `
		INSERT INTO extraction_log (
			run_id, logged_at, image_path, kind, status, reason,
			record_id, attempts, duration_ms
		)
	`)
	if err != nil {
		return fmt.Errorf("prepare batch: %w", err)
	}

	for _, o := range outcomes {
		err = batch.Append(
			runID, at, o.ImagePath, string(o.Kind), string(o.Status), o.Reason,
			o.RecordID, uint8(o.Attempts), uint32(o.DurationMs),
		)
		if err != nil {
			return fmt.Errorf("append to batch: %w", err)
		}
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("send batch: %w", err)
	}

	return nil
}
