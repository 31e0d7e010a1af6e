// Package pg is the Postgres subscription store. The schema carries the
// price_positive and payment_day_range check constraints; violations
// surface as pgx errors and are classified upstream.
package pg

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"subtrack/internal/modules/subscription/domain"
)

type Store struct{ db *pgxpool.Pool }

func NewStore(db *pgxpool.Pool) *Store { return &Store{db: db} }

const subCols = `id, name, price, currency, renew_date, start_date, payment_day,
       payment_card, url, color, category, is_active, created_at`

func scanRaw(row pgx.Row) (domain.RawRecord, error) {
	var (
		id, name, currency      string
		price                   float64
		renewDate, startDate    *time.Time
		paymentDay              *int
		card, url, color, categ *string
		isActive                bool
		createdAt               time.Time
	)
	if err := row.Scan(&id, &name, &price, &currency, &renewDate, &startDate, &paymentDay,
		&card, &url, &color, &categ, &isActive, &createdAt); err != nil {
		return nil, err
	}
	raw := domain.RawRecord{
		"id":         id,
		"name":       name,
		"price":      price,
		"currency":   currency,
		"is_active":  isActive,
		"created_at": createdAt,
	}
	if renewDate != nil {
		raw["renew_date"] = renewDate.Format("2006-01-02")
	}
	if startDate != nil {
		raw["start_date"] = startDate.Format("2006-01-02")
	}
	if paymentDay != nil {
		raw["payment_day"] = float64(*paymentDay)
	}
	for k, v := range map[string]*string{
		"payment_card": card, "url": url, "color": color, "category": categ,
	} {
		if v != nil {
			raw[k] = *v
		}
	}
	return raw, nil
}

func (s *Store) ListByUser(ctx context.Context, userID string) ([]domain.RawRecord, error) {
	rows, err := s.db.Query(ctx,
		`SELECT `+subCols+` FROM subscriptions WHERE user_id = $1 ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []domain.RawRecord
	for rows.Next() {
		raw, err := scanRaw(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, raw)
	}
	return out, rows.Err()
}

func (s *Store) Insert(ctx context.Context, userID string, f domain.Form) (domain.RawRecord, error) {
	q := `
INSERT INTO subscriptions (user_id, name, price, currency, renew_date, start_date,
                           payment_day, payment_card, url, color, category, is_active)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
RETURNING ` + subCols
	row := s.db.QueryRow(ctx, q, userID, f.Name, f.Price, f.Currency,
		nilIfEmpty(f.RenewDate), nilIfEmpty(f.StartDate), nilIfZero(f.PaymentDay),
		nilIfEmpty(f.PaymentCard), nilIfEmpty(f.URL), nilIfEmpty(f.Color), nilIfEmpty(f.Category),
		activeOrDefault(f.IsActive))
	return scanRaw(row)
}

func (s *Store) Update(ctx context.Context, userID, databaseID string, f domain.Form) (domain.RawRecord, error) {
	q := `
UPDATE subscriptions SET
  name = $3, price = $4, currency = $5, renew_date = $6, start_date = $7,
  payment_day = $8, payment_card = $9, url = $10, color = $11, category = $12,
  is_active = $13, updated_at = now()
WHERE id = $1 AND user_id = $2
RETURNING ` + subCols
	row := s.db.QueryRow(ctx, q, databaseID, userID, f.Name, f.Price, f.Currency,
		nilIfEmpty(f.RenewDate), nilIfEmpty(f.StartDate), nilIfZero(f.PaymentDay),
		nilIfEmpty(f.PaymentCard), nilIfEmpty(f.URL), nilIfEmpty(f.Color), nilIfEmpty(f.Category),
		activeOrDefault(f.IsActive))
	return scanRaw(row)
}

func (s *Store) Delete(ctx context.Context, userID, databaseID string) error {
	tag, err := s.db.Exec(ctx,
		`DELETE FROM subscriptions WHERE id = $1 AND user_id = $2`, databaseID, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// ListRenewingWithin returns active rows whose renew_date falls inside
// [today, today+days], joined with the owner's email for reminders.
func (s *Store) ListRenewingWithin(ctx context.Context, days int) ([]domain.RenewalDue, error) {
	q := `
SELECT s.user_id, u.email, s.name, s.price, s.currency, s.renew_date
FROM subscriptions s
JOIN users u ON u.id = s.user_id
WHERE s.is_active AND s.renew_date BETWEEN CURRENT_DATE AND CURRENT_DATE + $1::int
ORDER BY s.renew_date`
	rows, err := s.db.Query(ctx, q, days)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []domain.RenewalDue
	for rows.Next() {
		var d domain.RenewalDue
		var renew time.Time
		if err := rows.Scan(&d.UserID, &d.Email, &d.Name, &d.Price, &d.Currency, &renew); err != nil {
			return nil, err
		}
		d.RenewDate = renew.Format("2006-01-02")
		out = append(out, d)
	}
	return out, rows.Err()
}

func nilIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func nilIfZero(n int) *int {
	if n == 0 {
		return nil
	}
	return &n
}

func activeOrDefault(b *bool) bool {
	if b == nil {
		return true
	}
	return *b
}
