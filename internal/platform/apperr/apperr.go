// Package apperr converts collaborator failures into the app's user-facing
// error categories. Handlers and managers return these instead of raw
// errors, so no transport- or driver-level error crosses a module boundary.
package apperr

import (
	"errors"
	"strings"
)

type Category string

const (
	CategoryValidation Category = "validation"
	CategoryTransient  Category = "transient"
	CategoryConflict   Category = "conflict"
	CategoryAuth       Category = "auth"
	CategoryNotFound   Category = "not_found"
	CategoryConstraint Category = "constraint"
	CategoryUnknown    Category = "unknown"
)

// Error carries the category, a stable machine code and the message shown
// to the user. It wraps the underlying cause for logs.
type Error struct {
	Category Category
	Code     string
	Message  string
	cause    error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return e.Code + ": " + e.cause.Error()
	}
	return e.Code + ": " + e.Message
}

func (e *Error) Unwrap() error { return e.cause }

func New(cat Category, code, message string) *Error {
	return &Error{Category: cat, Code: code, Message: message}
}

func Wrap(cat Category, code, message string, cause error) *Error {
	return &Error{Category: cat, Code: code, Message: message, cause: cause}
}

// Validation is a field-scoped, local failure; never retried.
func Validation(field, message string) *Error {
	return &Error{Category: CategoryValidation, Code: "VALIDATION_ERROR", Message: field + ": " + message}
}

// Retryable reports whether the failure class is expected to succeed on
// retry (network blips, timeouts, 5xx).
func Retryable(err error) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Category == CategoryTransient
	}
	return false
}

// Sentinels the stores raise; Classify maps them without string matching.
var (
	ErrNotFound  = errors.New("not found")
	ErrDuplicate = errors.New("duplicate")
)

// Classify maps an arbitrary collaborator error to a categorized Error.
// Matching is by sentinel first, then by well-known message substrings —
// the store's message is the authority, the client-side rules are only a
// best-effort mirror of it.
func Classify(err error) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	switch {
	case errors.Is(err, ErrNotFound):
		return Wrap(CategoryNotFound, "NOT_FOUND", "Not found", err)
	case errors.Is(err, ErrDuplicate):
		return Wrap(CategoryConflict, "ALREADY_EXISTS", "Already exists", err)
	}

	msg := strings.ToLower(err.Error())
	switch {
	case containsAny(msg, "network", "timeout", "timed out", "fetch", "connection refused", "connection reset",
		"server error", "500", "502", "503", "504"):
		return Wrap(CategoryTransient, "NETWORK_ERROR", "Please check your connection and try again", err)
	case containsAny(msg, "duplicate", "unique constraint", "already exists", "already registered", "23505"):
		return Wrap(CategoryConflict, "ALREADY_EXISTS", "Already exists", err)
	case containsAny(msg, "unauthorized", "jwt", "token expired", "401"):
		return Wrap(CategoryAuth, "UNAUTHORIZED", "Please log in again", err)
	case containsAny(msg, "forbidden", "permission", "403", "row-level security"):
		return Wrap(CategoryAuth, "FORBIDDEN", "You do not have permission to do that", err)
	case containsAny(msg, "not found", "no rows", "404"):
		return Wrap(CategoryNotFound, "NOT_FOUND", "Not found", err)
	case containsAny(msg, "foreign key", "23503"):
		return Wrap(CategoryAuth, "SESSION_STALE", "Please log in again", err)
	// named constraints before the generic check-constraint text
	case containsAny(msg, "payment_day_range"):
		return Wrap(CategoryConstraint, "PAYMENT_DAY_INVALID", "Payment day must be between 1 and 31", err)
	case containsAny(msg, "check constraint", "23514", "price_positive"):
		return Wrap(CategoryConstraint, "PRICE_INVALID", "Price must be greater than zero", err)
	default:
		return Wrap(CategoryUnknown, "UNEXPECTED_ERROR", "Something went wrong: "+err.Error(), err)
	}
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
