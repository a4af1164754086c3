package storage

import (
	"context"
	"time"

	"tradeproof/internal/domain"
)

// CandidateRecordStore provides access to candidate_records storage.
type CandidateRecordStore interface {
	// Insert adds a new candidate record. Returns ErrDuplicateKey if record_id exists.
	Insert(ctx context.Context, r *domain.CandidateRecord) error

	// InsertBulk adds multiple records atomically. Fails entire batch on any duplicate.
	InsertBulk(ctx context.Context, records []*domain.CandidateRecord) error

	// GetByID retrieves a record by its ID. Returns ErrNotFound if not exists.
	GetByID(ctx context.Context, recordID string) (*domain.CandidateRecord, error)

	// GetByKind retrieves all records of a kind, ordered by source image path ASC.
	GetByKind(ctx context.Context, kind domain.RecordKind) ([]*domain.CandidateRecord, error)

	// GetBySymbol retrieves all records for a coin symbol, ordered by source image path ASC.
	GetBySymbol(ctx context.Context, symbol string) ([]*domain.CandidateRecord, error)
}

// TradeRecordStore provides access to trade_records storage.
type TradeRecordStore interface {
	// Insert adds a new trade. Returns ErrDuplicateKey if trade_id exists.
	Insert(ctx context.Context, t *domain.TradeRecord) error

	// InsertBulk adds multiple trades atomically. Fails entire batch on any duplicate.
	InsertBulk(ctx context.Context, trades []*domain.TradeRecord) error

	// GetByID retrieves a trade by its ID. Returns ErrNotFound if not exists.
	GetByID(ctx context.Context, tradeID string) (*domain.TradeRecord, error)

	// GetBySymbol retrieves all trades for a coin symbol, ordered by ROI DESC.
	GetBySymbol(ctx context.Context, symbol string) ([]*domain.TradeRecord, error)

	// GetByStatus retrieves all trades with the given outcome, ordered by ROI DESC.
	GetByStatus(ctx context.Context, status domain.TradeStatus) ([]*domain.TradeRecord, error)
}

// ExtractionLogStore records per-image pipeline telemetry for later
// analysis of OCR quality and throughput.
type ExtractionLogStore interface {
	// InsertBatch appends the outcomes of one batch run.
	InsertBatch(ctx context.Context, runID string, at time.Time, outcomes []domain.ImageOutcome) error
}
