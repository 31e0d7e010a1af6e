package domain

import (
	"testing"
	"time"
)

func TestNormalize(t *testing.T) {
	created := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	raw := RawRecord{
		"id":          "db-1",
		"name":        "Netflix",
		"price":       17000.0,
		"currency":    "KRW",
		"renew_date":  "2026-09-15",
		"payment_day": float64(15),
		"is_active":   true,
		"created_at":  created,
	}
	s, err := Normalize(raw)
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if s.DatabaseID != "db-1" || s.Name != "Netflix" || s.Price != 17000 {
		t.Errorf("bad normalization: %+v", s)
	}
	if s.PaymentDay != 15 {
		t.Errorf("PaymentDay = %d, want 15", s.PaymentDay)
	}
	if s.ID == "" || s.ID == s.DatabaseID {
		t.Error("correlation id must be freshly generated, distinct from the store key")
	}
	if !s.CreatedAt.Equal(created) {
		t.Errorf("CreatedAt = %v, want %v", s.CreatedAt, created)
	}
}

func TestNormalizeCoercesLooseTypes(t *testing.T) {
	raw := RawRecord{
		"id":         "db-2",
		"name":       "Spotify",
		"price":      "10900", // stores sometimes hand numerics back as strings
		"currency":   "XXX",   // unknown currency falls back
		"created_at": "2026-08-01T12:00:00Z",
	}
	s, err := Normalize(raw)
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if s.Price != 10900 {
		t.Errorf("Price = %v, want coerced 10900", s.Price)
	}
	if s.Currency != CurrencyKRW {
		t.Errorf("Currency = %s, want the KRW fallback", s.Currency)
	}
	if !s.IsActive {
		t.Error("IsActive defaults to true when absent")
	}
	if s.CreatedAt.IsZero() {
		t.Error("RFC3339 created_at string should parse")
	}
}

func TestNormalizeRejectsMalformedRows(t *testing.T) {
	if _, err := Normalize(RawRecord{"name": "x", "price": 1.0}); err == nil {
		t.Error("missing id must fail")
	}
	if _, err := Normalize(RawRecord{"id": "db-3", "price": 1.0}); err == nil {
		t.Error("missing name must fail")
	}
	if _, err := Normalize(RawRecord{"id": "db-4", "name": "x", "price": []int{1}}); err == nil {
		t.Error("uncoercible price must fail")
	}
}

func TestFreshCorrelationIDPerNormalize(t *testing.T) {
	raw := RawRecord{"id": "db-5", "name": "x", "price": 1.0}
	a, _ := Normalize(raw)
	b, _ := Normalize(raw)
	if a.ID == b.ID {
		t.Error("each load regenerates the correlation id")
	}
}
