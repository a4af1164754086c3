// Package archive pushes one run's output into record stores. It only
// speaks the storage interfaces, so the same path serves the in-memory
// default and the Postgres backend.
package archive

import (
	"context"
	"fmt"

	"tradeproof/internal/batch"
	"tradeproof/internal/domain"
	"tradeproof/internal/match"
	"tradeproof/internal/storage"
)

// Sink writes candidate and trade records. Stores are append-only, so
// re-archiving the same screenshots surfaces ErrDuplicateKey.
type Sink struct {
	candidates storage.CandidateRecordStore
	trades     storage.TradeRecordStore
}

// NewSink creates a Sink over the given stores.
func NewSink(candidates storage.CandidateRecordStore, trades storage.TradeRecordStore) *Sink {
	return &Sink{candidates: candidates, trades: trades}
}

// Store archives every extracted record and matched trade from one run.
// Low-confidence records are archived too; the low_confidence flag keeps
// them distinguishable from matchable ones.
func (s *Sink) Store(ctx context.Context, run *batch.RunResult, matched *match.Result) error {
	var candidates []*domain.CandidateRecord
	for _, group := range [][]domain.CandidateRecord{run.Signals, run.Results, run.LowConfidence} {
		for i := range group {
			candidates = append(candidates, &group[i])
		}
	}
	if len(candidates) > 0 {
		if err := s.candidates.InsertBulk(ctx, candidates); err != nil {
			return fmt.Errorf("insert candidate records: %w", err)
		}
	}

	if len(matched.Trades) > 0 {
		trades := make([]*domain.TradeRecord, len(matched.Trades))
		for i := range matched.Trades {
			trades[i] = &matched.Trades[i]
		}
		if err := s.trades.InsertBulk(ctx, trades); err != nil {
			return fmt.Errorf("insert trade records: %w", err)
		}
	}

	return nil
}
