package infra

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"subtrack/internal/modules/signup/domain"
	"subtrack/internal/platform/apperr"
)

// DraftStore keeps in-flight wizards in memory. Drafts are never
// persisted mid-flow; abandoned ones are swept after the TTL.
type DraftStore struct {
	mu     sync.RWMutex
	byID   map[string]*domain.Wizard
	ttl    time.Duration
	stopCh chan struct{}
}

func NewDraftStore(ttl time.Duration) *DraftStore {
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	s := &DraftStore{
		byID:   make(map[string]*domain.Wizard),
		ttl:    ttl,
		stopCh: make(chan struct{}),
	}
	go s.sweep()
	return s
}

func (s *DraftStore) Create() *domain.Wizard {
	w := domain.NewWizard(uuid.New().String())
	s.mu.Lock()
	defer s.mu.Unlock()
	s.byID[w.ID] = w
	return w
}

func (s *DraftStore) Get(id string) (*domain.Wizard, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	w, ok := s.byID[id]
	if !ok {
		return nil, apperr.ErrNotFound
	}
	return w, nil
}

func (s *DraftStore) Delete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.byID, id)
}

func (s *DraftStore) Close() { close(s.stopCh) }

func (s *DraftStore) sweep() {
	t := time.NewTicker(time.Minute)
	defer t.Stop()
	for {
		select {
		case <-s.stopCh:
			return
		case <-t.C:
			cutoff := time.Now().UTC().Add(-s.ttl)
			s.mu.Lock()
			for id, w := range s.byID {
				if w.LastTouched().Before(cutoff) {
					delete(s.byID, id)
				}
			}
			s.mu.Unlock()
		}
	}
}
