// Package subscription keeps each user's subscription list in memory,
// mirrored against a store. All mutations flow through a per-user
// Manager which serializes them with a single in-progress flag.
package subscription

import (
	"context"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"subtrack/internal/modules/subscription/domain"
	"subtrack/internal/platform/apperr"
	"subtrack/internal/platform/observe"
)

// Store is the persistence boundary. Rows cross it untyped; Normalize
// turns them into records on the way in.
type Store interface {
	// ListByUser returns the user's rows, newest first.
	ListByUser(ctx context.Context, userID string) ([]domain.RawRecord, error)
	Insert(ctx context.Context, userID string, f domain.Form) (domain.RawRecord, error)
	Update(ctx context.Context, userID, databaseID string, f domain.Form) (domain.RawRecord, error)
	Delete(ctx context.Context, userID, databaseID string) error
}

var (
	ErrBusy      = apperr.New(apperr.CategoryConflict, "IN_PROGRESS", "Another change is still in progress, please wait")
	ErrNoRecord  = apperr.New(apperr.CategoryNotFound, "NOT_FOUND", "Subscription not found")
	ErrNotSynced = apperr.New(apperr.CategoryConflict, "NOT_SYNCED", "Subscription has not been saved yet")
)

const (
	maxRetries = 3
	retryBase  = 400 * time.Millisecond
)

// Manager owns one user's list. Reads are served from the in-memory
// mirror; every mutation goes to the store first and the mirror is
// updated from the store's canonical row.
type Manager struct {
	store   Store
	userID  string
	rec     *observe.Recorder
	sleep   func(time.Duration) // injectable for tests
	loading sync.Mutex
	busy    atomic.Bool

	mu   sync.RWMutex
	subs []domain.Subscription
}

func NewManager(store Store, userID string, rec *observe.Recorder) *Manager {
	return &Manager{store: store, userID: userID, rec: rec, sleep: time.Sleep}
}

// List returns a snapshot of the mirror, newest first.
func (m *Manager) List() []domain.Subscription {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]domain.Subscription, len(m.subs))
	copy(out, m.subs)
	return out
}

// Load refreshes the mirror from the store. Transient failures are
// retried up to maxRetries times with a doubling backoff; anything else
// fails on the first attempt. Malformed rows are dropped with a log
// line rather than failing the whole load.
func (m *Manager) Load(ctx context.Context) error {
	m.loading.Lock()
	defer m.loading.Unlock()

	start := time.Now()
	var rows []domain.RawRecord
	var err error
	for attempt := 0; ; attempt++ {
		rows, err = m.store.ListByUser(ctx, m.userID)
		if err == nil {
			break
		}
		err = apperr.Classify(err)
		if attempt >= maxRetries || !apperr.Retryable(err) {
			m.rec.Record("subscriptions.load", time.Since(start), err)
			return err
		}
		m.sleep(retryBase << attempt)
	}

	subs := make([]domain.Subscription, 0, len(rows))
	for _, raw := range rows {
		s, nerr := domain.Normalize(raw)
		if nerr != nil {
			log.Printf("subscription: dropping malformed row for user %s: %v", m.userID, nerr)
			continue
		}
		subs = append(subs, s)
	}

	if ctx.Err() != nil {
		return apperr.Classify(ctx.Err())
	}
	m.mu.Lock()
	m.subs = subs
	m.mu.Unlock()
	m.rec.Record("subscriptions.load", time.Since(start), nil)
	return nil
}

// Add validates, checks for a duplicate name against the mirror, then
// inserts. The mirror is prepended with the store's canonical row, not
// the submitted form. A second mutation while one is running fails
// fast with ErrBusy.
func (m *Manager) Add(ctx context.Context, f domain.Form) (domain.Subscription, []domain.ValidationError, error) {
	if !m.busy.CompareAndSwap(false, true) {
		return domain.Subscription{}, nil, ErrBusy
	}
	defer m.busy.Store(false)

	if verrs := domain.ValidateForm(f, m.List(), "", domain.Options{DisallowPastRenew: true}); len(verrs) > 0 {
		return domain.Subscription{}, verrs, nil
	}

	start := time.Now()
	raw, err := m.store.Insert(ctx, m.userID, f)
	if err != nil {
		cerr := apperr.Classify(err)
		m.rec.Record("subscriptions.add", time.Since(start), cerr)
		return domain.Subscription{}, nil, cerr
	}
	s, err := domain.Normalize(raw)
	if err != nil {
		cerr := apperr.Classify(err)
		m.rec.Record("subscriptions.add", time.Since(start), cerr)
		return domain.Subscription{}, nil, cerr
	}

	if ctx.Err() != nil {
		// the insert landed but the caller is gone; skip the mirror write
		return s, nil, apperr.Classify(ctx.Err())
	}
	m.mu.Lock()
	m.subs = append([]domain.Subscription{s}, m.subs...)
	m.mu.Unlock()
	m.rec.Record("subscriptions.add", time.Since(start), nil)
	return s, nil, nil
}

// Update replaces one record with the full field set. The target is
// addressed by its correlation id and must already carry a database id.
// The correlation id survives the replacement.
func (m *Manager) Update(ctx context.Context, id string, f domain.Form) (domain.Subscription, []domain.ValidationError, error) {
	if !m.busy.CompareAndSwap(false, true) {
		return domain.Subscription{}, nil, ErrBusy
	}
	defer m.busy.Store(false)

	cur, idx := m.find(id)
	if idx < 0 {
		return domain.Subscription{}, nil, ErrNoRecord
	}
	if cur.DatabaseID == "" {
		return domain.Subscription{}, nil, ErrNotSynced
	}

	if verrs := domain.ValidateForm(f, m.List(), id, domain.Options{}); len(verrs) > 0 {
		return domain.Subscription{}, verrs, nil
	}

	start := time.Now()
	raw, err := m.store.Update(ctx, m.userID, cur.DatabaseID, f)
	if err != nil {
		cerr := apperr.Classify(err)
		m.rec.Record("subscriptions.update", time.Since(start), cerr)
		return domain.Subscription{}, nil, cerr
	}
	s, err := domain.Normalize(raw)
	if err != nil {
		cerr := apperr.Classify(err)
		m.rec.Record("subscriptions.update", time.Since(start), cerr)
		return domain.Subscription{}, nil, cerr
	}
	s.ID = id // the caller keeps addressing the record by the same key

	if ctx.Err() != nil {
		return s, nil, apperr.Classify(ctx.Err())
	}
	m.mu.Lock()
	if _, i := m.findLocked(id); i >= 0 {
		m.subs[i] = s
	}
	m.mu.Unlock()
	m.rec.Record("subscriptions.update", time.Since(start), nil)
	return s, nil, nil
}

// Remove deletes at the store, then drops the record from the mirror.
func (m *Manager) Remove(ctx context.Context, id string) error {
	if !m.busy.CompareAndSwap(false, true) {
		return ErrBusy
	}
	defer m.busy.Store(false)

	cur, idx := m.find(id)
	if idx < 0 {
		return ErrNoRecord
	}
	if cur.DatabaseID == "" {
		return ErrNotSynced
	}

	start := time.Now()
	if err := m.store.Delete(ctx, m.userID, cur.DatabaseID); err != nil {
		cerr := apperr.Classify(err)
		m.rec.Record("subscriptions.remove", time.Since(start), cerr)
		return cerr
	}

	if ctx.Err() != nil {
		return apperr.Classify(ctx.Err())
	}
	m.mu.Lock()
	if _, i := m.findLocked(id); i >= 0 {
		m.subs = append(m.subs[:i], m.subs[i+1:]...)
	}
	m.mu.Unlock()
	m.rec.Record("subscriptions.remove", time.Since(start), nil)
	return nil
}

func (m *Manager) find(id string) (domain.Subscription, int) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.findLocked(id)
}

func (m *Manager) findLocked(id string) (domain.Subscription, int) {
	for i, s := range m.subs {
		if s.ID == id {
			return s, i
		}
	}
	return domain.Subscription{}, -1
}

// Registry hands out one Manager per user, created lazily on first use.
type Registry struct {
	store Store
	rec   *observe.Recorder

	mu       sync.Mutex
	managers map[string]*Manager
}

func NewRegistry(store Store, rec *observe.Recorder) *Registry {
	return &Registry{store: store, rec: rec, managers: make(map[string]*Manager)}
}

func (r *Registry) ForUser(userID string) *Manager {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.managers[userID]
	if !ok {
		m = NewManager(r.store, userID, r.rec)
		r.managers[userID] = m
	}
	return m
}
