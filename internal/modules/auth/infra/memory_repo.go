package infra

import (
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"subtrack/internal/modules/auth/domain"
	"subtrack/internal/platform/apperr"
)

var (
	ErrCodeInvalid = errors.New("code_invalid")
	ErrCodeExpired = errors.New("code_expired")
)

type memUserRepo struct {
	mu      sync.RWMutex
	users   map[string]*domain.User // id -> user
	byEmail map[string]string       // email -> id
}

func NewMemUserRepo() domain.UserRepo {
	return &memUserRepo{
		users:   make(map[string]*domain.User),
		byEmail: make(map[string]string),
	}
}

func (r *memUserRepo) Create(p domain.CreateUserParams) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	email := strings.ToLower(p.Email)
	if _, ok := r.byEmail[email]; ok {
		return nil, apperr.ErrDuplicate
	}
	now := time.Now().UTC()
	u := &domain.User{
		ID:             uuid.New().String(),
		Email:          email,
		Phone:          p.Phone,
		FirstName:      p.FirstName,
		LastName:       p.LastName,
		PasswordHash:   p.PasswordHash,
		AgreeMarketing: p.AgreeMarketing,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if p.Provider != "" {
		u.Providers = []string{p.Provider}
		at := now
		u.EmailConfirmedAt = &at
	}
	r.users[u.ID] = u
	r.byEmail[email] = u.ID
	return u, nil
}

func (r *memUserRepo) GetByEmail(email string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.byEmail[strings.ToLower(email)]
	if !ok {
		return nil, apperr.ErrNotFound
	}
	cp := *r.users[id]
	return &cp, nil
}

func (r *memUserRepo) GetByID(id string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.users[id]
	if !ok {
		return nil, apperr.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *memUserRepo) ExistsByEmail(email string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.byEmail[strings.ToLower(email)]
	return ok, nil
}

func (r *memUserRepo) ConfirmEmail(userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[userID]
	if !ok {
		return apperr.ErrNotFound
	}
	if u.EmailConfirmedAt == nil {
		now := time.Now().UTC()
		u.EmailConfirmedAt = &now
	}
	u.UpdatedAt = time.Now().UTC()
	return nil
}

func (r *memUserRepo) AddProvider(userID, provider string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[userID]
	if !ok {
		return apperr.ErrNotFound
	}
	for _, p := range u.Providers {
		if p == provider {
			return nil
		}
	}
	u.Providers = append(u.Providers, provider)
	u.UpdatedAt = time.Now().UTC()
	return nil
}

func (r *memUserRepo) UpdateProfile(userID string, firstName, lastName, phone *string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[userID]
	if !ok {
		return apperr.ErrNotFound
	}
	if firstName != nil {
		u.FirstName = strings.TrimSpace(*firstName)
	}
	if lastName != nil {
		u.LastName = strings.TrimSpace(*lastName)
	}
	if phone != nil {
		u.Phone = phone
	}
	u.UpdatedAt = time.Now().UTC()
	return nil
}

func (r *memUserRepo) Delete(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return apperr.ErrNotFound
	}
	delete(r.users, id)
	delete(r.byEmail, u.Email)
	return nil
}

type memSessionRepo struct {
	mu       sync.RWMutex
	sessions map[string]*domain.Session
	byUser   map[string][]string
}

func NewMemSessionRepo() domain.SessionRepo {
	return &memSessionRepo{
		sessions: make(map[string]*domain.Session),
		byUser:   make(map[string][]string),
	}
}

func (r *memSessionRepo) Create(s domain.Session) (*domain.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s.ID == "" {
		s.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	s.CreatedAt = now
	s.LastActive = now
	if s.ExpiresAt.IsZero() {
		s.ExpiresAt = now.Add(30 * 24 * time.Hour)
	}
	cp := s
	r.sessions[s.ID] = &cp
	r.byUser[s.UserID] = append(r.byUser[s.UserID], s.ID)
	out := cp
	return &out, nil
}

func (r *memSessionRepo) FindByRefreshHash(hash string) (*domain.Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, s := range r.sessions {
		if s.RefreshTokenHash == hash {
			cp := *s
			return &cp, nil
		}
	}
	return nil, apperr.ErrNotFound
}

func (r *memSessionRepo) Revoke(sessionID, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[sessionID]
	if !ok || s.UserID != userID {
		return apperr.ErrNotFound
	}
	if s.RevokedAt == nil {
		now := time.Now().UTC()
		s.RevokedAt = &now
	}
	return nil
}

func (r *memSessionRepo) RevokeAll(userID string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	now := time.Now().UTC()
	for _, id := range r.byUser[userID] {
		if s := r.sessions[id]; s != nil && s.RevokedAt == nil {
			s.RevokedAt = &now
			n++
		}
	}
	return n, nil
}

type memCodeRepo struct {
	mu       sync.RWMutex
	codes    []domain.VerificationCode
	cooldown time.Duration
}

func NewMemCodeRepo() domain.CodeRepo {
	return &memCodeRepo{cooldown: 60 * time.Second}
}

func (r *memCodeRepo) Save(c domain.VerificationCode) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	c.CreatedAt = time.Now().UTC()
	r.codes = append(r.codes, c)
	return nil
}

func (r *memCodeRepo) Consume(userID string, kind domain.CodeKind, code string) (*domain.VerificationCode, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	// latest first
	for i := len(r.codes) - 1; i >= 0; i-- {
		c := &r.codes[i]
		if c.UserID != userID || c.Kind != kind || c.Code != code || c.ConsumedAt != nil {
			continue
		}
		if time.Now().After(c.ExpiresAt) {
			return nil, ErrCodeExpired
		}
		now := time.Now().UTC()
		c.ConsumedAt = &now
		cp := *c
		return &cp, nil
	}
	return nil, ErrCodeInvalid
}

func (r *memCodeRepo) ResendAllowed(userID string, kind domain.CodeKind) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for i := len(r.codes) - 1; i >= 0; i-- {
		c := r.codes[i]
		if c.UserID == userID && c.Kind == kind {
			return time.Since(c.CreatedAt) >= r.cooldown, nil
		}
	}
	return true, nil
}
