package pg

import (
	"context"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"subtrack/internal/modules/auth/domain"
)

type UserRepo struct{ db *pgxpool.Pool }

func NewUserRepo(db *pgxpool.Pool) *UserRepo { return &UserRepo{db: db} }

const userCols = `id, email, phone, first_name, last_name, password_hash,
       email_confirmed_at, agree_marketing, is_blocked, providers, created_at, updated_at`

func scanUser(row interface{ Scan(dest ...any) error }) (*domain.User, error) {
	var u domain.User
	var confirmed *time.Time
	if err := row.Scan(&u.ID, &u.Email, &u.Phone, &u.FirstName, &u.LastName, &u.PasswordHash,
		&confirmed, &u.AgreeMarketing, &u.IsBlocked, &u.Providers, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return nil, err
	}
	u.EmailConfirmedAt = confirmed
	return &u, nil
}

func (r *UserRepo) Create(p domain.CreateUserParams) (*domain.User, error) {
	ctx := context.Background()
	providers := []string{}
	var confirmedAt *time.Time
	if p.Provider != "" {
		providers = append(providers, p.Provider)
		now := time.Now().UTC()
		confirmedAt = &now
	}
	q := `
INSERT INTO users (email, phone, first_name, last_name, password_hash,
                   agree_marketing, providers, email_confirmed_at)
VALUES (LOWER($1), $2, $3, $4, $5, $6, $7, $8)
RETURNING ` + userCols
	row := r.db.QueryRow(ctx, q, p.Email, p.Phone, p.FirstName, p.LastName, p.PasswordHash,
		p.AgreeMarketing, providers, confirmedAt)
	return scanUser(row)
}

func (r *UserRepo) GetByEmail(email string) (*domain.User, error) {
	row := r.db.QueryRow(context.Background(),
		`SELECT `+userCols+` FROM users WHERE email = LOWER($1)`, strings.ToLower(email))
	return scanUser(row)
}

func (r *UserRepo) GetByID(id string) (*domain.User, error) {
	row := r.db.QueryRow(context.Background(),
		`SELECT `+userCols+` FROM users WHERE id = $1`, id)
	return scanUser(row)
}

func (r *UserRepo) ExistsByEmail(email string) (bool, error) {
	var ok bool
	err := r.db.QueryRow(context.Background(),
		`SELECT EXISTS(SELECT 1 FROM users WHERE email = LOWER($1))`, email).Scan(&ok)
	return ok, err
}

func (r *UserRepo) ConfirmEmail(userID string) error {
	_, err := r.db.Exec(context.Background(),
		`UPDATE users SET email_confirmed_at = COALESCE(email_confirmed_at, now()), updated_at = now() WHERE id = $1`,
		userID)
	return err
}

func (r *UserRepo) AddProvider(userID, provider string) error {
	_, err := r.db.Exec(context.Background(),
		`UPDATE users SET providers = array_append(providers, $2), updated_at = now()
		 WHERE id = $1 AND NOT ($2 = ANY(providers))`, userID, provider)
	return err
}

func (r *UserRepo) UpdateProfile(userID string, firstName, lastName, phone *string) error {
	q := `UPDATE users SET
	        first_name = COALESCE($2, first_name),
	        last_name  = COALESCE($3, last_name),
	        phone      = COALESCE($4, phone),
	        updated_at = now()
	      WHERE id = $1`
	_, err := r.db.Exec(context.Background(), q, userID, firstName, lastName, phone)
	return err
}

func (r *UserRepo) Delete(id string) error {
	_, err := r.db.Exec(context.Background(), `DELETE FROM users WHERE id = $1`, id)
	return err
}
