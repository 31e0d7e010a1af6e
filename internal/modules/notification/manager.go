// Package notification keeps a per-user notification history plus the
// set of toasts currently on screen. New entries show as a toast that
// hides itself after a few seconds; the history keeps them until the
// user removes them.
package notification

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"subtrack/internal/modules/notification/domain"
)

const toastDuration = 5 * time.Second

type Manager struct {
	store  domain.Store
	userID string
	hide   time.Duration

	mu      sync.Mutex
	history []domain.Notification
	visible map[string]*time.Timer
}

func NewManager(store domain.Store, userID string) *Manager {
	return &Manager{store: store, userID: userID, hide: toastDuration, visible: make(map[string]*time.Timer)}
}

// Add prepends a notification to the history, shows it as a toast and
// persists it in the background. A store failure only costs durability,
// never the toast.
func (m *Manager) Add(typ domain.Type, title, message string) domain.Notification {
	if !domain.ValidType(typ) {
		typ = domain.TypeInfo
	}
	n := domain.Notification{
		ID:        uuid.New().String(),
		Type:      typ,
		Title:     title,
		Message:   message,
		Timestamp: time.Now(),
	}

	m.mu.Lock()
	m.history = append([]domain.Notification{n}, m.history...)
	m.visible[n.ID] = time.AfterFunc(m.hide, func() { m.hideToast(n.ID) })
	m.mu.Unlock()

	go func() {
		if err := m.store.Insert(context.Background(), m.userID, n); err != nil {
			log.Printf("notification: persist failed for user %s: %v", m.userID, err)
		}
	}()
	return n
}

func (m *Manager) hideToast(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.visible, id)
}

// Dismiss hides a toast early without touching the history.
func (m *Manager) Dismiss(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if t, ok := m.visible[id]; ok {
		t.Stop()
		delete(m.visible, id)
	}
}

// Remove deletes one notification from the store, then from the history.
// On a store failure the local state is untouched so the call can be
// retried.
func (m *Manager) Remove(ctx context.Context, id string) error {
	if err := m.store.Delete(ctx, m.userID, id); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, n := range m.history {
		if n.ID == id {
			m.history = append(m.history[:i], m.history[i+1:]...)
			break
		}
	}
	if t, ok := m.visible[id]; ok {
		t.Stop()
		delete(m.visible, id)
	}
	return nil
}

// ClearAll empties the store, then the history.
func (m *Manager) ClearAll(ctx context.Context) error {
	if err := m.store.DeleteAll(ctx, m.userID); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.history = nil
	for id, t := range m.visible {
		t.Stop()
		delete(m.visible, id)
	}
	return nil
}

// Load replaces the history with the persisted one, newest first.
func (m *Manager) Load(ctx context.Context) error {
	list, err := m.store.ListByUser(ctx, m.userID)
	if err != nil {
		return err
	}
	m.mu.Lock()
	m.history = list
	m.mu.Unlock()
	return nil
}

func (m *Manager) History() []domain.Notification {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.Notification, len(m.history))
	copy(out, m.history)
	return out
}

// Toasts returns the notifications still on screen, newest first.
func (m *Manager) Toasts() []domain.Notification {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Notification
	for _, n := range m.history {
		if _, ok := m.visible[n.ID]; ok {
			out = append(out, n)
		}
	}
	return out
}

// Registry hands out one Manager per user.
type Registry struct {
	store domain.Store

	mu       sync.Mutex
	managers map[string]*Manager
}

func NewRegistry(store domain.Store) *Registry {
	return &Registry{store: store, managers: make(map[string]*Manager)}
}

func (r *Registry) ForUser(userID string) *Manager {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.managers[userID]
	if !ok {
		m = NewManager(r.store, userID)
		r.managers[userID] = m
	}
	return m
}

// Push lets other modules report outcomes without importing this
// package's types.
func (r *Registry) Push(userID, kind, title, message string) {
	r.ForUser(userID).Add(domain.Type(kind), title, message)
}
