package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"tradeproof/internal/domain"
	"tradeproof/internal/storage"
)

// CandidateRecordStore implements storage.CandidateRecordStore using PostgreSQL.
type CandidateRecordStore struct {
	pool *Pool
}

// NewCandidateRecordStore creates a new CandidateRecordStore.
func NewCandidateRecordStore(pool *Pool) *CandidateRecordStore {
	return &CandidateRecordStore{pool: pool}
}

// Compile-time interface check.
var _ storage.CandidateRecordStore = (*CandidateRecordStore)(nil)

const candidateRecordInsert = `
	INSERT INTO candidate_records (
		record_id, kind, coin_symbol, price, roi_percent, extracted_at,
		status, source_image, image_hash, confidence, low_confidence
	) VALUES (
		$1, $2, $3, $4, $5, $6,
		$7, $8, $9, $10, $11
	)
`

const candidateRecordColumns = `
	record_id, kind, coin_symbol, price, roi_percent, extracted_at,
	status, source_image, image_hash, confidence, low_confidence
`

// Insert adds a new candidate record. Returns ErrDuplicateKey if record_id exists.
func (s *CandidateRecordStore) Insert(ctx context.Context, r *domain.CandidateRecord) error {
	if r == nil || r.RecordID == "" {
		return storage.ErrInvalidInput
	}

	_, err := s.pool.Exec(ctx, candidateRecordInsert,
		r.RecordID, string(r.Kind), r.CoinSymbol, r.Price, r.ROIPercent, r.Timestamp,
		string(r.Status), r.SourceImage, r.ImageHash, r.Confidence, r.LowConfidence,
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("insert candidate record: %w", err)
	}
	return nil
}

// InsertBulk adds multiple records atomically. Fails entire batch on any duplicate.
func (s *CandidateRecordStore) InsertBulk(ctx context.Context, records []*domain.CandidateRecord) error {
	if len(records) == 0 {
		return nil
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, r := range records {
		if r == nil || r.RecordID == "" {
			return storage.ErrInvalidInput
		}
		_, err := tx.Exec(ctx, candidateRecordInsert,
			r.RecordID, string(r.Kind), r.CoinSymbol, r.Price, r.ROIPercent, r.Timestamp,
			string(r.Status), r.SourceImage, r.ImageHash, r.Confidence, r.LowConfidence,
		)
		if err != nil {
			if isDuplicateKeyError(err) {
				return storage.ErrDuplicateKey
			}
			return fmt.Errorf("insert candidate record: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// GetByID retrieves a record by its ID. Returns ErrNotFound if not exists.
func (s *CandidateRecordStore) GetByID(ctx context.Context, recordID string) (*domain.CandidateRecord, error) {
	query := `SELECT ` + candidateRecordColumns + ` FROM candidate_records WHERE record_id = $1`

	row := s.pool.QueryRow(ctx, query, recordID)
	r, err := scanCandidateRecord(row)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get candidate record: %w", err)
	}
	return r, nil
}

// GetByKind retrieves all records of a kind, ordered by source image path ASC.
func (s *CandidateRecordStore) GetByKind(ctx context.Context, kind domain.RecordKind) ([]*domain.CandidateRecord, error) {
	query := `SELECT ` + candidateRecordColumns + `
		FROM candidate_records WHERE kind = $1 ORDER BY source_image ASC`

	rows, err := s.pool.Query(ctx, query, string(kind))
	if err != nil {
		return nil, fmt.Errorf("query candidate records by kind: %w", err)
	}
	defer rows.Close()

	return scanCandidateRecords(rows)
}

// GetBySymbol retrieves all records for a coin symbol, ordered by source image path ASC.
func (s *CandidateRecordStore) GetBySymbol(ctx context.Context, symbol string) ([]*domain.CandidateRecord, error) {
	query := `SELECT ` + candidateRecordColumns + `
		FROM candidate_records WHERE coin_symbol = $1 ORDER BY source_image ASC`

	rows, err := s.pool.Query(ctx, query, symbol)
	if err != nil {
		return nil, fmt.Errorf("query candidate records by symbol: %w", err)
	}
	defer rows.Close()

	return scanCandidateRecords(rows)
}

// scanCandidateRecord scans a single row into a CandidateRecord.
func scanCandidateRecord(row pgx.Row) (*domain.CandidateRecord, error) {
	var r domain.CandidateRecord
	var kind, status string

	err := row.Scan(
		&r.RecordID, &kind, &r.CoinSymbol, &r.Price, &r.ROIPercent, &r.Timestamp,
		&status, &r.SourceImage, &r.ImageHash, &r.Confidence, &r.LowConfidence,
	)
	if err != nil {
		return nil, err
	}

	r.Kind = domain.RecordKind(kind)
	r.Status = domain.TradeStatus(status)
	return &r, nil
}

// scanCandidateRecords scans all rows into CandidateRecords.
func scanCandidateRecords(rows pgx.Rows) ([]*domain.CandidateRecord, error) {
	var result []*domain.CandidateRecord
	for rows.Next() {
		r, err := scanCandidateRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan candidate record: %w", err)
		}
		result = append(result, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate candidate records: %w", err)
	}
	return result, nil
}
