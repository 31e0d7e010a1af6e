package pg

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"subtrack/internal/modules/auth/domain"
)

type SessionRepo struct{ db *pgxpool.Pool }

func NewSessionRepo(db *pgxpool.Pool) *SessionRepo { return &SessionRepo{db: db} }

const sessionCols = `id, user_id, refresh_token_hash, device_name, ip_address, user_agent,
       last_active, created_at, revoked_at, expires_at`

func scanSession(row interface{ Scan(dest ...any) error }) (*domain.Session, error) {
	var s domain.Session
	if err := row.Scan(&s.ID, &s.UserID, &s.RefreshTokenHash, &s.DeviceName, &s.IPAddress,
		&s.UserAgent, &s.LastActive, &s.CreatedAt, &s.RevokedAt, &s.ExpiresAt); err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *SessionRepo) Create(s domain.Session) (*domain.Session, error) {
	var expires *time.Time
	if !s.ExpiresAt.IsZero() {
		expires = &s.ExpiresAt
	}
	q := `
INSERT INTO sessions (user_id, refresh_token_hash, device_name, ip_address, user_agent, expires_at)
VALUES ($1, $2, $3, $4, $5, COALESCE($6, now() + interval '30 days'))
RETURNING ` + sessionCols
	row := r.db.QueryRow(context.Background(), q,
		s.UserID, s.RefreshTokenHash, s.DeviceName, s.IPAddress, s.UserAgent, expires)
	return scanSession(row)
}

func (r *SessionRepo) FindByRefreshHash(hash string) (*domain.Session, error) {
	row := r.db.QueryRow(context.Background(),
		`SELECT `+sessionCols+` FROM sessions WHERE refresh_token_hash = $1`, hash)
	return scanSession(row)
}

func (r *SessionRepo) Revoke(sessionID, userID string) error {
	_, err := r.db.Exec(context.Background(),
		`UPDATE sessions SET revoked_at = COALESCE(revoked_at, now()) WHERE id = $1 AND user_id = $2`,
		sessionID, userID)
	return err
}

func (r *SessionRepo) RevokeAll(userID string) (int, error) {
	tag, err := r.db.Exec(context.Background(),
		`UPDATE sessions SET revoked_at = now() WHERE user_id = $1 AND revoked_at IS NULL`, userID)
	if err != nil {
		return 0, err
	}
	return int(tag.RowsAffected()), nil
}
