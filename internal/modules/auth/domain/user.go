package domain

import "time"

type User struct {
	ID               string
	Email            string
	Phone            *string
	FirstName        string
	LastName         string
	PasswordHash     *string
	EmailConfirmedAt *time.Time
	AgreeMarketing   bool
	IsBlocked        bool
	CreatedAt        time.Time
	UpdatedAt        time.Time
	Providers        []string
}

// EmailConfirmed reports whether the account finished e-mail verification.
func (u *User) EmailConfirmed() bool { return u.EmailConfirmedAt != nil }

type CreateUserParams struct {
	Email          string
	Phone          *string
	FirstName      string
	LastName       string
	PasswordHash   *string
	AgreeMarketing bool
	// Provider marks accounts provisioned through OAuth; those start
	// confirmed since the provider already verified the address.
	Provider string
}

type UserRepo interface {
	Create(p CreateUserParams) (*User, error)
	GetByEmail(email string) (*User, error)
	GetByID(id string) (*User, error)
	ExistsByEmail(email string) (bool, error)
	ConfirmEmail(userID string) error
	AddProvider(userID, provider string) error
	UpdateProfile(userID string, firstName, lastName, phone *string) error
	Delete(id string) error
}
