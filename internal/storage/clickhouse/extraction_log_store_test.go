package clickhouse

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"tradeproof/internal/domain"
	"tradeproof/internal/storage"
)

func TestExtractionLogStore_InsertBatch(t *testing.T) {
	conn, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewExtractionLogStore(conn)
	ctx := context.Background()

	at := time.Date(2024, 3, 15, 14, 30, 0, 0, time.UTC)
	outcomes := []domain.ImageOutcome{
		{
			ImagePath:  "signals/btc.png",
			Kind:       domain.KindSignal,
			Status:     domain.OutcomeSuccess,
			RecordID:   "rec1",
			Attempts:   1,
			DurationMs: 420,
		},
		{
			ImagePath:  "results/eth.png",
			Kind:       domain.KindResult,
			Status:     domain.OutcomeSkipped,
			Reason:     domain.SkipReasonCorrupted,
			Attempts:   0,
			DurationMs: 3,
		},
		{
			ImagePath:  "results/sol.png",
			Kind:       domain.KindResult,
			Status:     domain.OutcomeFailed,
			Reason:     "ocr timeout",
			Attempts:   3,
			DurationMs: 9000,
		},
	}

	require.NoError(t, store.InsertBatch(ctx, "run-1", at, outcomes))

	rows, err := conn.Query(ctx, `
		SELECT image_path, kind, status, reason, record_id, attempts, duration_ms
		FROM extraction_log
		WHERE run_id = 'run-1'
		ORDER BY image_path
	`)
	require.NoError(t, err)
	defer rows.Close()

	type logRow struct {
		path, kind, status, reason, recordID string
		attempts                             uint8
		durationMs                           uint32
	}
	var got []logRow
	for rows.Next() {
		var r logRow
		require.NoError(t, rows.Scan(&r.path, &r.kind, &r.status, &r.reason, &r.recordID, &r.attempts, &r.durationMs))
		got = append(got, r)
	}
	require.NoError(t, rows.Err())
	require.Len(t, got, 3)

	require.Equal(t, "results/eth.png", got[0].path)
	require.Equal(t, string(domain.OutcomeSkipped), got[0].status)
	require.Equal(t, domain.SkipReasonCorrupted, got[0].reason)

	require.Equal(t, "results/sol.png", got[1].path)
	require.Equal(t, string(domain.OutcomeFailed), got[1].status)
	require.Equal(t, uint8(3), got[1].attempts)

	require.Equal(t, "signals/btc.png", got[2].path)
	require.Equal(t, string(domain.OutcomeSuccess), got[2].status)
	require.Equal(t, "rec1", got[2].recordID)
	require.Equal(t, uint32(420), got[2].durationMs)
}

func TestExtractionLogStore_EmptyBatchIsNoop(t *testing.T) {
	conn, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewExtractionLogStore(conn)
	require.NoError(t, store.InsertBatch(context.Background(), "run-1", time.Now(), nil))
}

func TestExtractionLogStore_EmptyRunID(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	// Validation fires before any connection use.
	store := NewExtractionLogStore(nil)
	err := store.InsertBatch(context.Background(), "", time.Now(), []domain.ImageOutcome{{ImagePath: "x.png"}})
	require.ErrorIs(t, err, storage.ErrInvalidInput)
}
