package domain

import (
	"context"
	"time"
)

type Type string

const (
	TypeSuccess Type = "success"
	TypeWarning Type = "warning"
	TypeError   Type = "error"
	TypeInfo    Type = "info"
)

func ValidType(t Type) bool {
	switch t {
	case TypeSuccess, TypeWarning, TypeError, TypeInfo:
		return true
	}
	return false
}

type Notification struct {
	ID        string    `json:"id"`
	Type      Type      `json:"type"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

// Store persists the notification history. Persistence is best-effort
// from the manager's point of view; the in-memory history is the one
// the user sees.
type Store interface {
	ListByUser(ctx context.Context, userID string) ([]Notification, error)
	Insert(ctx context.Context, userID string, n Notification) error
	Delete(ctx context.Context, userID, id string) error
	DeleteAll(ctx context.Context, userID string) error
}
