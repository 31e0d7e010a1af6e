// Package pg is the Postgres notification store.
package pg

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"subtrack/internal/modules/notification/domain"
)

type Store struct{ db *pgxpool.Pool }

func NewStore(db *pgxpool.Pool) *Store { return &Store{db: db} }

func (s *Store) ListByUser(ctx context.Context, userID string) ([]domain.Notification, error) {
	rows, err := s.db.Query(ctx,
		`SELECT id, type, title, message, created_at
		 FROM notifications WHERE user_id = $1 ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []domain.Notification
	for rows.Next() {
		var n domain.Notification
		if err := rows.Scan(&n.ID, &n.Type, &n.Title, &n.Message, &n.Timestamp); err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

func (s *Store) Insert(ctx context.Context, userID string, n domain.Notification) error {
	_, err := s.db.Exec(ctx,
		`INSERT INTO notifications (id, user_id, type, title, message, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		n.ID, userID, string(n.Type), n.Title, n.Message, n.Timestamp)
	return err
}

func (s *Store) Delete(ctx context.Context, userID, id string) error {
	_, err := s.db.Exec(ctx,
		`DELETE FROM notifications WHERE id = $1 AND user_id = $2`, id, userID)
	return err
}

func (s *Store) DeleteAll(ctx context.Context, userID string) error {
	_, err := s.db.Exec(ctx, `DELETE FROM notifications WHERE user_id = $1`, userID)
	return err
}
