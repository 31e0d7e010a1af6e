package notification

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"subtrack/internal/modules/notification/domain"
)

type fakeStore struct {
	mu        sync.Mutex
	inserted  []domain.Notification
	insertErr error
	deleteErr error
	listed    []domain.Notification
}

func (f *fakeStore) ListByUser(context.Context, string) ([]domain.Notification, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.listed, nil
}

func (f *fakeStore) Insert(_ context.Context, _ string, n domain.Notification) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.insertErr != nil {
		return f.insertErr
	}
	f.inserted = append(f.inserted, n)
	return nil
}

func (f *fakeStore) Delete(context.Context, string, string) error { return f.deleteErr }
func (f *fakeStore) DeleteAll(context.Context, string) error      { return f.deleteErr }

func (f *fakeStore) insertedCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.inserted)
}

func newTestManager(store *fakeStore, hide time.Duration) *Manager {
	m := NewManager(store, "u1")
	m.hide = hide
	return m
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("condition never became true")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestAddPrependsAndShowsToast(t *testing.T) {
	store := &fakeStore{}
	m := newTestManager(store, time.Hour)

	first := m.Add(domain.TypeSuccess, "Added", "Netflix has been added")
	second := m.Add(domain.TypeError, "Failed", "Something broke")

	h := m.History()
	if len(h) != 2 || h[0].ID != second.ID || h[1].ID != first.ID {
		t.Errorf("history must be newest first, got %v", h)
	}
	if len(m.Toasts()) != 2 {
		t.Errorf("both toasts should still be visible")
	}
	waitFor(t, func() bool { return store.insertedCount() == 2 })
}

func TestToastHidesButHistoryStays(t *testing.T) {
	m := newTestManager(&fakeStore{}, 10*time.Millisecond)
	m.Add(domain.TypeInfo, "Hello", "")

	waitFor(t, func() bool { return len(m.Toasts()) == 0 })
	if len(m.History()) != 1 {
		t.Error("the hidden toast must remain in the history")
	}
}

func TestPersistFailureOnlyLogs(t *testing.T) {
	store := &fakeStore{insertErr: errors.New("network down")}
	m := newTestManager(store, time.Hour)

	n := m.Add(domain.TypeWarning, "Renewal", "Netflix renews soon")
	if n.ID == "" {
		t.Fatal("Add must succeed regardless of the store")
	}
	if len(m.History()) != 1 {
		t.Error("the notification must land in the history anyway")
	}
}

func TestUnknownTypeFallsBackToInfo(t *testing.T) {
	m := newTestManager(&fakeStore{}, time.Hour)
	if n := m.Add("shiny", "x", "y"); n.Type != domain.TypeInfo {
		t.Errorf("type = %s, want info fallback", n.Type)
	}
}

func TestRemoveAndClearAll(t *testing.T) {
	m := newTestManager(&fakeStore{}, time.Hour)
	n := m.Add(domain.TypeInfo, "a", "")
	m.Add(domain.TypeInfo, "b", "")

	if err := m.Remove(context.Background(), n.ID); err != nil {
		t.Fatal(err)
	}
	if h := m.History(); len(h) != 1 || h[0].Title != "b" {
		t.Errorf("history = %v, want only b", h)
	}

	if err := m.ClearAll(context.Background()); err != nil {
		t.Fatal(err)
	}
	if len(m.History()) != 0 || len(m.Toasts()) != 0 {
		t.Error("ClearAll must empty history and toasts")
	}
}

func TestFailedDeleteKeepsHistory(t *testing.T) {
	store := &fakeStore{deleteErr: errors.New("network down")}
	m := newTestManager(store, time.Hour)
	n := m.Add(domain.TypeInfo, "a", "")

	if err := m.Remove(context.Background(), n.ID); err == nil {
		t.Fatal("Remove must surface the store failure")
	}
	if len(m.History()) != 1 || len(m.Toasts()) != 1 {
		t.Error("a failed delete must leave history and toasts untouched")
	}

	if err := m.ClearAll(context.Background()); err == nil {
		t.Fatal("ClearAll must surface the store failure")
	}
	if len(m.History()) != 1 {
		t.Error("a failed clear must leave the history untouched")
	}
}

func TestLoadReplacesHistory(t *testing.T) {
	store := &fakeStore{listed: []domain.Notification{
		{ID: "n1", Type: domain.TypeInfo, Title: "old"},
	}}
	m := newTestManager(store, time.Hour)
	m.Add(domain.TypeInfo, "local", "")

	if err := m.Load(context.Background()); err != nil {
		t.Fatal(err)
	}
	if h := m.History(); len(h) != 1 || h[0].ID != "n1" {
		t.Errorf("history = %v, want the persisted list", h)
	}
}

func TestRegistryPush(t *testing.T) {
	store := &fakeStore{}
	r := NewRegistry(store)
	r.Push("u1", "success", "Added", "done")

	if h := r.ForUser("u1").History(); len(h) != 1 || h[0].Type != domain.TypeSuccess {
		t.Errorf("push must land in the user's history, got %v", h)
	}
	if len(r.ForUser("u2").History()) != 0 {
		t.Error("other users must not see it")
	}
}
