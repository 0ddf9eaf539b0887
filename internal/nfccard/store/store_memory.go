package store

import (
	"context"
	"sync"
)

// InMemoryBoltcardStore keeps records in a map for tests and local runs.
// It intentionally favors clarity over performance.
type InMemoryBoltcardStore struct {
	mu      sync.RWMutex
	records map[string]BoltcardRecord
}

func NewInMemoryBoltcardStore() *InMemoryBoltcardStore {
	return &InMemoryBoltcardStore{records: make(map[string]BoltcardRecord)}
}

// Seed inserts a record directly; only tests and fixtures call this, since
// this layer never creates boltcard rows on its own.
func (s *InMemoryBoltcardStore) Seed(record BoltcardRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[key(record.UserDUID, record.CardID)] = record
}

func (s *InMemoryBoltcardStore) FindByUserAndCard(_ context.Context, userDUID, cardID string) (BoltcardRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if record, ok := s.records[key(userDUID, cardID)]; ok {
		return record, nil
	}
	return BoltcardRecord{}, ErrNotFound
}

func (s *InMemoryBoltcardStore) Update(_ context.Context, record BoltcardRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	k := key(record.UserDUID, record.CardID)
	if _, ok := s.records[k]; !ok {
		return ErrNotFound
	}
	s.records[k] = record
	return nil
}

func key(userDUID, cardID string) string {
	return userDUID + "/" + cardID
}
