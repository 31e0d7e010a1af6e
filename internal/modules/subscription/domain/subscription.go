package domain

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
)

type Currency string

const (
	CurrencyKRW Currency = "KRW"
	CurrencyUSD Currency = "USD"
	CurrencyEUR Currency = "EUR"
	CurrencyJPY Currency = "JPY"
)

// Per-currency price ceilings for one billing period. These mirror the
// store's check constraints; the store's verdict is the authority.
var PriceCaps = map[Currency]float64{
	CurrencyKRW: 10_000_000,
	CurrencyUSD: 10_000,
	CurrencyEUR: 10_000,
	CurrencyJPY: 1_000_000,
}

// Subscription is the internal typed record. ID is a client-local
// correlation key regenerated on every load; DatabaseID is the store's
// key and the only identifier ever sent back to it.
type Subscription struct {
	ID          string    `json:"id"`
	DatabaseID  string    `json:"database_id"`
	Name        string    `json:"name"`
	Price       float64   `json:"price"`
	Currency    Currency  `json:"currency"`
	RenewDate   string    `json:"renew_date"` // YYYY-MM-DD
	StartDate   string    `json:"start_date,omitempty"`
	PaymentDay  int       `json:"payment_day,omitempty"` // 1..31, 0 = unset
	PaymentCard string    `json:"payment_card,omitempty"`
	URL         string    `json:"url,omitempty"`
	Color       string    `json:"color"`
	Category    string    `json:"category,omitempty"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
}

// Form is the client-supplied field set for create and update. Updates
// always carry the full set; there is no partial patch.
type Form struct {
	Name        string  `json:"name" validate:"required"`
	Price       float64 `json:"price" validate:"required,gt=0"`
	Currency    string  `json:"currency" validate:"required,oneof=KRW USD EUR JPY"`
	RenewDate   string  `json:"renew_date" validate:"required"`
	StartDate   string  `json:"start_date" validate:"omitempty"`
	PaymentDay  int     `json:"payment_day" validate:"omitempty,min=1,max=31"`
	PaymentCard string  `json:"payment_card"`
	URL         string  `json:"url"`
	Color       string  `json:"color"`
	Category    string  `json:"category"`
	IsActive    *bool   `json:"is_active"`
}

// RenewalDue is one upcoming renewal, as reported by the store for the
// reminder job. Email may be empty when the store cannot resolve it.
type RenewalDue struct {
	UserID    string
	Email     string
	Name      string
	Price     float64
	Currency  string
	RenewDate string
}

// RawRecord is the untyped row shape at the store boundary. Everything
// external passes through Normalize before the rest of the code sees it.
type RawRecord map[string]any

var ErrBadRecord = errors.New("malformed subscription record")

// Normalize converts a raw store row into the internal record, coercing
// the loosely-typed fields and stamping a fresh correlation id.
func Normalize(raw RawRecord) (Subscription, error) {
	s := Subscription{ID: uuid.New().String(), IsActive: true}

	dbID, ok := rawString(raw["id"])
	if !ok || dbID == "" {
		return s, fmt.Errorf("%w: missing id", ErrBadRecord)
	}
	s.DatabaseID = dbID

	if s.Name, ok = rawString(raw["name"]); !ok || s.Name == "" {
		return s, fmt.Errorf("%w: missing name", ErrBadRecord)
	}
	price, ok := rawFloat(raw["price"])
	if !ok {
		return s, fmt.Errorf("%w: bad price", ErrBadRecord)
	}
	s.Price = price

	cur, _ := rawString(raw["currency"])
	switch Currency(cur) {
	case CurrencyKRW, CurrencyUSD, CurrencyEUR, CurrencyJPY:
		s.Currency = Currency(cur)
	default:
		s.Currency = CurrencyKRW
	}

	s.RenewDate, _ = rawString(raw["renew_date"])
	s.StartDate, _ = rawString(raw["start_date"])
	if day, ok := rawFloat(raw["payment_day"]); ok {
		s.PaymentDay = int(day)
	}
	s.PaymentCard, _ = rawString(raw["payment_card"])
	s.URL, _ = rawString(raw["url"])
	s.Color, _ = rawString(raw["color"])
	s.Category, _ = rawString(raw["category"])
	if b, ok := raw["is_active"].(bool); ok {
		s.IsActive = b
	}
	switch v := raw["created_at"].(type) {
	case time.Time:
		s.CreatedAt = v
	case string:
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			s.CreatedAt = t
		}
	}
	return s, nil
}

func rawString(v any) (string, bool) {
	s, ok := v.(string)
	return s, ok
}

func rawFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case string:
		f, err := strconv.ParseFloat(n, 64)
		return f, err == nil
	default:
		return 0, false
	}
}
