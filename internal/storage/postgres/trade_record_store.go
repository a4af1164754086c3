package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"tradeproof/internal/domain"
	"tradeproof/internal/storage"
)

// TradeRecordStore implements storage.TradeRecordStore using PostgreSQL.
type TradeRecordStore struct {
	pool *Pool
}

// NewTradeRecordStore creates a new TradeRecordStore.
func NewTradeRecordStore(pool *Pool) *TradeRecordStore {
	return &TradeRecordStore{pool: pool}
}

// Compile-time interface check.
var _ storage.TradeRecordStore = (*TradeRecordStore)(nil)

const tradeRecordInsert = `
	INSERT INTO trade_records (
		trade_id, coin_symbol, entry_price, exit_price, roi_percent, status,
		signal_timestamp, result_timestamp, match_confidence,
		signal_source, result_source
	) VALUES (
		$1, $2, $3, $4, $5, $6,
		$7, $8, $9,
		$10, $11
	)
`

const tradeRecordColumns = `
	trade_id, coin_symbol, entry_price, exit_price, roi_percent, status,
	signal_timestamp, result_timestamp, match_confidence,
	signal_source, result_source
`

// roiDescOrder places trades with the highest ROI first and those without
// an ROI last, matching the report ordering.
const roiDescOrder = ` ORDER BY roi_percent DESC NULLS LAST, trade_id ASC`

// Insert adds a new trade. Returns ErrDuplicateKey if trade_id exists.
func (s *TradeRecordStore) Insert(ctx context.Context, t *domain.TradeRecord) error {
	if t == nil || t.TradeID == "" {
		return storage.ErrInvalidInput
	}

	_, err := s.pool.Exec(ctx, tradeRecordInsert,
		t.TradeID, t.CoinSymbol, t.EntryPrice, t.ExitPrice, t.ROIPercent, string(t.Status),
		t.SignalTimestamp, t.ResultTimestamp, t.MatchConfidence,
		t.SignalSource, t.ResultSource,
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("insert trade record: %w", err)
	}
	return nil
}

// InsertBulk adds multiple trades atomically. Fails entire batch on any duplicate.
func (s *TradeRecordStore) InsertBulk(ctx context.Context, trades []*domain.TradeRecord) error {
	if len(trades) == 0 {
		return nil
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, t := range trades {
		if t == nil || t.TradeID == "" {
			return storage.ErrInvalidInput
		}
		_, err := tx.Exec(ctx, tradeRecordInsert,
			t.TradeID, t.CoinSymbol, t.EntryPrice, t.ExitPrice, t.ROIPercent, string(t.Status),
			t.SignalTimestamp, t.ResultTimestamp, t.MatchConfidence,
			t.SignalSource, t.ResultSource,
		)
		if err != nil {
			if isDuplicateKeyError(err) {
				return storage.ErrDuplicateKey
			}
			return fmt.Errorf("insert trade record: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// GetByID retrieves a trade by its ID. Returns ErrNotFound if not exists.
func (s *TradeRecordStore) GetByID(ctx context.Context, tradeID string) (*domain.TradeRecord, error) {
	query := `SELECT ` + tradeRecordColumns + ` FROM trade_records WHERE trade_id = $1`

	row := s.pool.QueryRow(ctx, query, tradeID)
	t, err := scanTradeRecord(row)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get trade record: %w", err)
	}
	return t, nil
}

// GetBySymbol retrieves all trades for a coin symbol, ordered by ROI DESC.
func (s *TradeRecordStore) GetBySymbol(ctx context.Context, symbol string) ([]*domain.TradeRecord, error) {
	query := `SELECT ` + tradeRecordColumns + ` FROM trade_records WHERE coin_symbol = $1` + roiDescOrder

	rows, err := s.pool.Query(ctx, query, symbol)
	if err != nil {
		return nil, fmt.Errorf("query trade records by symbol: %w", err)
	}
	defer rows.Close()

	return scanTradeRecords(rows)
}

// GetByStatus retrieves all trades with the given outcome, ordered by ROI DESC.
func (s *TradeRecordStore) GetByStatus(ctx context.Context, status domain.TradeStatus) ([]*domain.TradeRecord, error) {
	query := `SELECT ` + tradeRecordColumns + ` FROM trade_records WHERE status = $1` + roiDescOrder

	rows, err := s.pool.Query(ctx, query, string(status))
	if err != nil {
		return nil, fmt.Errorf("query trade records by status: %w", err)
	}
	defer rows.Close()

	return scanTradeRecords(rows)
}

// scanTradeRecord scans a single row into a TradeRecord.
func scanTradeRecord(row pgx.Row) (*domain.TradeRecord, error) {
	var t domain.TradeRecord
	var status string

	err := row.Scan(
		&t.TradeID, &t.CoinSymbol, &t.EntryPrice, &t.ExitPrice, &t.ROIPercent, &status,
		&t.SignalTimestamp, &t.ResultTimestamp, &t.MatchConfidence,
		&t.SignalSource, &t.ResultSource,
	)
	if err != nil {
		return nil, err
	}

	t.Status = domain.TradeStatus(status)
	return &t, nil
}

// scanTradeRecords scans all rows into TradeRecords.
func scanTradeRecords(rows pgx.Rows) ([]*domain.TradeRecord, error) {
	var result []*domain.TradeRecord
	for rows.Next() {
		t, err := scanTradeRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan trade record: %w", err)
		}
		result = append(result, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate trade records: %w", err)
	}
	return result, nil
}
