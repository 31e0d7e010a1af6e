// Package infra holds the in-memory notification store.
package infra

import (
	"context"
	"sync"

	"subtrack/internal/modules/notification/domain"
)

type MemoryStore struct {
	mu   sync.Mutex
	byID map[string][]domain.Notification // keyed by user id, newest first
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{byID: make(map[string][]domain.Notification)}
}

func (s *MemoryStore) ListByUser(_ context.Context, userID string) ([]domain.Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	list := s.byID[userID]
	out := make([]domain.Notification, len(list))
	copy(out, list)
	return out, nil
}

func (s *MemoryStore) Insert(_ context.Context, userID string, n domain.Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.byID[userID] = append([]domain.Notification{n}, s.byID[userID]...)
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, userID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	list := s.byID[userID]
	for i, n := range list {
		if n.ID == id {
			s.byID[userID] = append(list[:i], list[i+1:]...)
			return nil
		}
	}
	return nil
}

func (s *MemoryStore) DeleteAll(_ context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.byID, userID)
	return nil
}
