package memory

import (
	"context"
	"sort"
	"sync"

	"tradeproof/internal/domain"
	"tradeproof/internal/storage"
)

// TradeRecordStore is an in-memory implementation of storage.TradeRecordStore.
type TradeRecordStore struct {
	mu   sync.RWMutex
	data map[string]*domain.TradeRecord // keyed by trade_id
}

// NewTradeRecordStore creates a new in-memory trade record store.
func NewTradeRecordStore() *TradeRecordStore {
	return &TradeRecordStore{
		data: make(map[string]*domain.TradeRecord),
	}
}

// Insert adds a new trade. Returns ErrDuplicateKey if trade_id exists.
func (s *TradeRecordStore) Insert(_ context.Context, t *domain.TradeRecord) error {
	if t == nil || t.TradeID == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.data[t.TradeID]; exists {
		return storage.ErrDuplicateKey
	}

	copy := *t
	s.data[t.TradeID] = &copy
	return nil
}

// InsertBulk adds multiple trades atomically. Fails entire batch on any duplicate.
func (s *TradeRecordStore) InsertBulk(_ context.Context, trades []*domain.TradeRecord) error {
	if len(trades) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	batchKeys := make(map[string]struct{}, len(trades))
	for _, t := range trades {
		if t == nil || t.TradeID == "" {
			return storage.ErrInvalidInput
		}
		if _, exists := s.data[t.TradeID]; exists {
			return storage.ErrDuplicateKey
		}
		if _, exists := batchKeys[t.TradeID]; exists {
			return storage.ErrDuplicateKey
		}
		batchKeys[t.TradeID] = struct{}{}
	}

	for _, t := range trades {
		copy := *t
		s.data[t.TradeID] = &copy
	}

	return nil
}

// GetByID retrieves a trade by its ID. Returns ErrNotFound if not exists.
func (s *TradeRecordStore) GetByID(_ context.Context, tradeID string) (*domain.TradeRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, exists := s.data[tradeID]
	if !exists {
		return nil, storage.ErrNotFound
	}

	copy := *t
	return &copy, nil
}

// GetBySymbol retrieves all trades for a coin symbol, ordered by ROI DESC.
func (s *TradeRecordStore) GetBySymbol(_ context.Context, symbol string) ([]*domain.TradeRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.TradeRecord
	for _, t := range s.data {
		if t.CoinSymbol == symbol {
			copy := *t
			result = append(result, &copy)
		}
	}

	sortByROIDesc(result)
	return result, nil
}

// GetByStatus retrieves all trades with the given outcome, ordered by ROI DESC.
func (s *TradeRecordStore) GetByStatus(_ context.Context, status domain.TradeStatus) ([]*domain.TradeRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.TradeRecord
	for _, t := range s.data {
		if t.Status == status {
			copy := *t
			result = append(result, &copy)
		}
	}

	sortByROIDesc(result)
	return result, nil
}

// sortByROIDesc orders trades by ROI descending with nil ROI last, ties
// broken by trade_id for stable output.
func sortByROIDesc(trades []*domain.TradeRecord) {
	sort.Slice(trades, func(i, j int) bool {
		a, b := trades[i].ROIPercent, trades[j].ROIPercent
		switch {
		case a == nil && b == nil:
			return trades[i].TradeID < trades[j].TradeID
		case a == nil:
			return false
		case b == nil:
			return true
		case *a != *b:
			return *a > *b
		default:
			return trades[i].TradeID < trades[j].TradeID
		}
	})
}

var _ storage.TradeRecordStore = (*TradeRecordStore)(nil)
