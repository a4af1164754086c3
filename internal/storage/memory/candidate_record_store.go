package memory

import (
	"context"
	"sort"
	"sync"

	"tradeproof/internal/domain"
	"tradeproof/internal/storage"
)

// CandidateRecordStore is an in-memory implementation of storage.CandidateRecordStore.
type CandidateRecordStore struct {
	mu   sync.RWMutex
	data map[string]*domain.CandidateRecord // keyed by record_id
}

// NewCandidateRecordStore creates a new in-memory candidate record store.
func NewCandidateRecordStore() *CandidateRecordStore {
	return &CandidateRecordStore{
		data: make(map[string]*domain.CandidateRecord),
	}
}

// Insert adds a new candidate record. Returns ErrDuplicateKey if record_id exists.
func (s *CandidateRecordStore) Insert(_ context.Context, r *domain.CandidateRecord) error {
	if r == nil || r.RecordID == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.data[r.RecordID]; exists {
		return storage.ErrDuplicateKey
	}

	copy := *r
	s.data[r.RecordID] = &copy
	return nil
}

// InsertBulk adds multiple records atomically. Fails entire batch on any duplicate.
func (s *CandidateRecordStore) InsertBulk(_ context.Context, records []*domain.CandidateRecord) error {
	if len(records) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	batchKeys := make(map[string]struct{}, len(records))
	for _, r := range records {
		if r == nil || r.RecordID == "" {
			return storage.ErrInvalidInput
		}
		if _, exists := s.data[r.RecordID]; exists {
			return storage.ErrDuplicateKey
		}
		if _, exists := batchKeys[r.RecordID]; exists {
			return storage.ErrDuplicateKey
		}
		batchKeys[r.RecordID] = struct{}{}
	}

	for _, r := range records {
		copy := *r
		s.data[r.RecordID] = &copy
	}

	return nil
}

// GetByID retrieves a record by its ID. Returns ErrNotFound if not exists.
func (s *CandidateRecordStore) GetByID(_ context.Context, recordID string) (*domain.CandidateRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, exists := s.data[recordID]
	if !exists {
		return nil, storage.ErrNotFound
	}

	copy := *r
	return &copy, nil
}

// GetByKind retrieves all records of a kind, ordered by source image path ASC.
func (s *CandidateRecordStore) GetByKind(_ context.Context, kind domain.RecordKind) ([]*domain.CandidateRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.CandidateRecord
	for _, r := range s.data {
		if r.Kind == kind {
			copy := *r
			result = append(result, &copy)
		}
	}

	sortBySourceImage(result)
	return result, nil
}

// GetBySymbol retrieves all records for a coin symbol, ordered by source image path ASC.
func (s *CandidateRecordStore) GetBySymbol(_ context.Context, symbol string) ([]*domain.CandidateRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.CandidateRecord
	for _, r := range s.data {
		if r.CoinSymbol == symbol {
			copy := *r
			result = append(result, &copy)
		}
	}

	sortBySourceImage(result)
	return result, nil
}

func sortBySourceImage(records []*domain.CandidateRecord) {
	sort.Slice(records, func(i, j int) bool {
		return records[i].SourceImage < records[j].SourceImage
	})
}

var _ storage.CandidateRecordStore = (*CandidateRecordStore)(nil)
