package subscription

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"subtrack/internal/modules/subscription/domain"
	"subtrack/internal/platform/apperr"
)

type fakeStore struct {
	rows    []domain.RawRecord
	listErr func(call int) error
	calls   struct {
		list, insert, update, delete int32
	}
	insertGate chan struct{} // when set, Insert blocks until closed
	nextID     int
}

func (f *fakeStore) ListByUser(_ context.Context, _ string) ([]domain.RawRecord, error) {
	n := atomic.AddInt32(&f.calls.list, 1)
	if f.listErr != nil {
		if err := f.listErr(int(n)); err != nil {
			return nil, err
		}
	}
	return f.rows, nil
}

func (f *fakeStore) Insert(_ context.Context, _ string, form domain.Form) (domain.RawRecord, error) {
	atomic.AddInt32(&f.calls.insert, 1)
	if f.insertGate != nil {
		<-f.insertGate
	}
	f.nextID++
	row := domain.RawRecord{
		"id":         fmt.Sprintf("db-%d", f.nextID),
		"name":       form.Name,
		"price":      form.Price,
		"currency":   form.Currency,
		"renew_date": form.RenewDate,
		"created_at": time.Now(),
	}
	f.rows = append([]domain.RawRecord{row}, f.rows...)
	return row, nil
}

func (f *fakeStore) Update(_ context.Context, _ string, dbID string, form domain.Form) (domain.RawRecord, error) {
	atomic.AddInt32(&f.calls.update, 1)
	return domain.RawRecord{
		"id": dbID, "name": form.Name, "price": form.Price,
		"currency": form.Currency, "renew_date": form.RenewDate,
	}, nil
}

func (f *fakeStore) Delete(_ context.Context, _ string, _ string) error {
	atomic.AddInt32(&f.calls.delete, 1)
	return nil
}

func validForm(name string) domain.Form {
	return domain.Form{Name: name, Price: 17000, Currency: "KRW", RenewDate: "2030-06-15"}
}

func newTestManager(store *fakeStore) *Manager {
	m := NewManager(store, "u1", nil)
	m.sleep = func(time.Duration) {}
	return m
}

func TestAddPrependsCanonicalRow(t *testing.T) {
	store := &fakeStore{}
	m := newTestManager(store)

	s, verrs, err := m.Add(context.Background(), validForm("Netflix"))
	if err != nil || len(verrs) != 0 {
		t.Fatalf("Add: verrs=%v err=%v", verrs, err)
	}
	if s.DatabaseID != "db-1" {
		t.Errorf("DatabaseID = %q, want the store's key", s.DatabaseID)
	}
	if s.ID == s.DatabaseID || s.ID == "" {
		t.Error("correlation id must be distinct from the store key")
	}

	m.Add(context.Background(), validForm("Spotify"))
	list := m.List()
	if len(list) != 2 || list[0].Name != "Spotify" {
		t.Errorf("newest entry must come first, got %v", list)
	}
}

func TestAddRejectsDuplicateNameWithoutStoreCall(t *testing.T) {
	store := &fakeStore{}
	m := newTestManager(store)
	if _, _, err := m.Add(context.Background(), validForm("Netflix")); err != nil {
		t.Fatal(err)
	}

	_, verrs, err := m.Add(context.Background(), validForm("netflix "))
	if err != nil {
		t.Fatalf("duplicate is a validation outcome, not an error: %v", err)
	}
	if len(verrs) == 0 || verrs[0].Field != "name" {
		t.Fatalf("want a name validation error, got %v", verrs)
	}
	if got := atomic.LoadInt32(&store.calls.insert); got != 1 {
		t.Errorf("store.Insert called %d times, the duplicate must never reach it", got)
	}
}

func TestConcurrentMutationFailsFast(t *testing.T) {
	store := &fakeStore{insertGate: make(chan struct{})}
	m := newTestManager(store)

	done := make(chan error, 1)
	go func() {
		_, _, err := m.Add(context.Background(), validForm("Netflix"))
		done <- err
	}()

	// wait for the first Add to reach the store
	deadline := time.After(2 * time.Second)
	for atomic.LoadInt32(&store.calls.insert) == 0 {
		select {
		case <-deadline:
			t.Fatal("first Add never reached the store")
		default:
			time.Sleep(time.Millisecond)
		}
	}

	if _, _, err := m.Add(context.Background(), validForm("Spotify")); !errors.Is(err, ErrBusy) {
		t.Errorf("second Add = %v, want ErrBusy immediately", err)
	}
	if err := m.Remove(context.Background(), "whatever"); !errors.Is(err, ErrBusy) {
		t.Errorf("Remove during Add = %v, want ErrBusy", err)
	}

	close(store.insertGate)
	if err := <-done; err != nil {
		t.Fatalf("first Add: %v", err)
	}
	if got := atomic.LoadInt32(&store.calls.insert); got != 1 {
		t.Errorf("store.Insert called %d times, want 1", got)
	}
}

func TestLoadRetriesTransientWithBackoff(t *testing.T) {
	store := &fakeStore{
		listErr: func(int) error { return errors.New("network timeout") },
	}
	m := NewManager(store, "u1", nil)
	var delays []time.Duration
	m.sleep = func(d time.Duration) { delays = append(delays, d) }

	err := m.Load(context.Background())
	if err == nil {
		t.Fatal("Load must fail after the retries are exhausted")
	}
	if got := atomic.LoadInt32(&store.calls.list); got != 4 {
		t.Errorf("store called %d times, want 1 initial + 3 retries", got)
	}
	want := []time.Duration{retryBase, retryBase * 2, retryBase * 4}
	if len(delays) != len(want) {
		t.Fatalf("delays = %v, want %v", delays, want)
	}
	for i := range want {
		if delays[i] != want[i] {
			t.Errorf("delay[%d] = %v, want %v", i, delays[i], want[i])
		}
	}
	var aerr *apperr.Error
	if !errors.As(err, &aerr) || aerr.Code != "NETWORK_ERROR" {
		t.Errorf("err = %v, want NETWORK_ERROR", err)
	}
	if aerr.Message != "Please check your connection and try again" {
		t.Errorf("message = %q, want the friendly connection message", aerr.Message)
	}
}

func TestLoadDoesNotRetryPermanentFailures(t *testing.T) {
	store := &fakeStore{
		listErr: func(int) error { return errors.New("permission denied by row-level security") },
	}
	m := newTestManager(store)

	if err := m.Load(context.Background()); err == nil {
		t.Fatal("want an error")
	}
	if got := atomic.LoadInt32(&store.calls.list); got != 1 {
		t.Errorf("store called %d times, a non-transient failure must not retry", got)
	}
}

func TestLoadRecoversMidRetry(t *testing.T) {
	store := &fakeStore{
		rows: []domain.RawRecord{{"id": "db-9", "name": "Netflix", "price": 17000.0}},
		listErr: func(call int) error {
			if call <= 2 {
				return errors.New("connection refused")
			}
			return nil
		},
	}
	m := newTestManager(store)

	if err := m.Load(context.Background()); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if list := m.List(); len(list) != 1 || list[0].DatabaseID != "db-9" {
		t.Errorf("mirror = %v, want the recovered row", m.List())
	}
}

func TestLoadDropsMalformedRows(t *testing.T) {
	store := &fakeStore{rows: []domain.RawRecord{
		{"id": "db-1", "name": "Netflix", "price": 17000.0},
		{"name": "no id", "price": 1.0},
	}}
	m := newTestManager(store)

	if err := m.Load(context.Background()); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if list := m.List(); len(list) != 1 {
		t.Errorf("malformed row must be dropped, got %v", list)
	}
}

func TestUpdateKeepsCorrelationID(t *testing.T) {
	store := &fakeStore{}
	m := newTestManager(store)
	s, _, err := m.Add(context.Background(), validForm("Netflix"))
	if err != nil {
		t.Fatal(err)
	}

	f := validForm("Netflix")
	f.Price = 19500
	got, verrs, err := m.Update(context.Background(), s.ID, f)
	if err != nil || len(verrs) != 0 {
		t.Fatalf("Update: verrs=%v err=%v", verrs, err)
	}
	if got.ID != s.ID {
		t.Errorf("correlation id changed: %q -> %q", s.ID, got.ID)
	}
	if list := m.List(); list[0].Price != 19500 {
		t.Errorf("mirror not replaced: %+v", list[0])
	}
}

func TestUpdateRequiresSyncedRecord(t *testing.T) {
	m := newTestManager(&fakeStore{})
	m.subs = []domain.Subscription{{ID: "c1", Name: "Draft"}}

	if _, _, err := m.Update(context.Background(), "c1", validForm("Draft")); !errors.Is(err, ErrNotSynced) {
		t.Errorf("err = %v, want ErrNotSynced for a record with no database id", err)
	}
	if _, _, err := m.Update(context.Background(), "nope", validForm("x")); !errors.Is(err, ErrNoRecord) {
		t.Errorf("err = %v, want ErrNoRecord", err)
	}
}

func TestRemove(t *testing.T) {
	store := &fakeStore{}
	m := newTestManager(store)
	s, _, _ := m.Add(context.Background(), validForm("Netflix"))

	if err := m.Remove(context.Background(), s.ID); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if len(m.List()) != 0 {
		t.Error("record must leave the mirror")
	}
	if got := atomic.LoadInt32(&store.calls.delete); got != 1 {
		t.Errorf("store.Delete called %d times, want 1", got)
	}
}

func TestRegistryOneManagerPerUser(t *testing.T) {
	r := NewRegistry(&fakeStore{}, nil)
	if r.ForUser("a") != r.ForUser("a") {
		t.Error("same user must get the same manager")
	}
	if r.ForUser("a") == r.ForUser("b") {
		t.Error("different users must get different managers")
	}
}
