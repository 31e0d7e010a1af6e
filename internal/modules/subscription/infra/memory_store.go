// Package infra holds the in-memory subscription store used in tests
// and local runs without a database.
package infra

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"subtrack/internal/modules/subscription/domain"
	"subtrack/internal/platform/apperr"
)

type memRow struct {
	id        string
	userID    string
	form      domain.Form
	createdAt time.Time
}

// MemoryStore mimics the database surface, including its constraint
// checks, so the manager's error mapping can be exercised without a
// running Postgres.
type MemoryStore struct {
	mu   sync.Mutex
	rows []memRow
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) ListByUser(_ context.Context, userID string) ([]domain.RawRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.RawRecord
	// rows are appended in insertion order; walk backwards for newest first
	for i := len(s.rows) - 1; i >= 0; i-- {
		if s.rows[i].userID == userID {
			out = append(out, rowToRaw(s.rows[i]))
		}
	}
	return out, nil
}

func (s *MemoryStore) Insert(_ context.Context, userID string, f domain.Form) (domain.RawRecord, error) {
	if err := checkConstraints(f); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.rows {
		if r.userID == userID && strings.EqualFold(strings.TrimSpace(r.form.Name), strings.TrimSpace(f.Name)) {
			return nil, apperr.ErrDuplicate
		}
	}
	row := memRow{id: uuid.New().String(), userID: userID, form: f, createdAt: time.Now()}
	s.rows = append(s.rows, row)
	return rowToRaw(row), nil
}

func (s *MemoryStore) Update(_ context.Context, userID, databaseID string, f domain.Form) (domain.RawRecord, error) {
	if err := checkConstraints(f); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, r := range s.rows {
		if r.id == databaseID && r.userID == userID {
			s.rows[i].form = f
			return rowToRaw(s.rows[i]), nil
		}
	}
	return nil, apperr.ErrNotFound
}

func (s *MemoryStore) Delete(_ context.Context, userID, databaseID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, r := range s.rows {
		if r.id == databaseID && r.userID == userID {
			s.rows = append(s.rows[:i], s.rows[i+1:]...)
			return nil
		}
	}
	return apperr.ErrNotFound
}

// ListRenewingWithin reports active rows renewing inside the window.
// The memory store does not know user emails; callers resolve them.
func (s *MemoryStore) ListRenewingWithin(_ context.Context, days int) ([]domain.RenewalDue, error) {
	today := time.Now().Truncate(24 * time.Hour)
	limit := today.AddDate(0, 0, days)
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.RenewalDue
	for _, r := range s.rows {
		if r.form.IsActive != nil && !*r.form.IsActive {
			continue
		}
		renew, err := time.Parse("2006-01-02", r.form.RenewDate)
		if err != nil || renew.Before(today) || renew.After(limit) {
			continue
		}
		out = append(out, domain.RenewalDue{
			UserID:    r.userID,
			Name:      r.form.Name,
			Price:     r.form.Price,
			Currency:  r.form.Currency,
			RenewDate: r.form.RenewDate,
		})
	}
	return out, nil
}

func checkConstraints(f domain.Form) error {
	if f.Price <= 0 {
		return errors.New(`new row violates check constraint "price_positive"`)
	}
	if f.PaymentDay != 0 && (f.PaymentDay < 1 || f.PaymentDay > 31) {
		return errors.New(`new row violates check constraint "payment_day_range"`)
	}
	if _, ok := domain.PriceCaps[domain.Currency(f.Currency)]; !ok {
		return fmt.Errorf(`invalid input value for currency: %q`, f.Currency)
	}
	return nil
}

func rowToRaw(r memRow) domain.RawRecord {
	active := true
	if r.form.IsActive != nil {
		active = *r.form.IsActive
	}
	raw := domain.RawRecord{
		"id":         r.id,
		"name":       r.form.Name,
		"price":      r.form.Price,
		"currency":   r.form.Currency,
		"renew_date": r.form.RenewDate,
		"is_active":  active,
		"created_at": r.createdAt,
	}
	if r.form.StartDate != "" {
		raw["start_date"] = r.form.StartDate
	}
	if r.form.PaymentDay != 0 {
		raw["payment_day"] = float64(r.form.PaymentDay)
	}
	if r.form.PaymentCard != "" {
		raw["payment_card"] = r.form.PaymentCard
	}
	if r.form.URL != "" {
		raw["url"] = r.form.URL
	}
	if r.form.Color != "" {
		raw["color"] = r.form.Color
	}
	if r.form.Category != "" {
		raw["category"] = r.form.Category
	}
	return raw
}
