package apperr

import (
	"errors"
	"fmt"
	"testing"
)

func TestClassifyCategories(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want Category
		code string
	}{
		{"timeout", errors.New("dial tcp: i/o timeout"), CategoryTransient, "NETWORK_ERROR"},
		{"5xx", errors.New("upstream returned 503"), CategoryTransient, "NETWORK_ERROR"},
		{"unique violation", errors.New(`duplicate key value violates unique constraint "subscriptions_owner_name"`), CategoryConflict, "ALREADY_EXISTS"},
		{"pg unique code", errors.New("SQLSTATE 23505"), CategoryConflict, "ALREADY_EXISTS"},
		{"unauthorized", errors.New("401 unauthorized"), CategoryAuth, "UNAUTHORIZED"},
		{"forbidden", errors.New("permission denied for table subscriptions"), CategoryAuth, "FORBIDDEN"},
		{"no rows", errors.New("no rows in result set"), CategoryNotFound, "NOT_FOUND"},
		{"foreign key", errors.New(`violates foreign key constraint "subscriptions_user_id_fkey"`), CategoryAuth, "SESSION_STALE"},
		{"check constraint", errors.New(`new row violates check constraint "price_positive"`), CategoryConstraint, "PRICE_INVALID"},
		{"payment day constraint", errors.New(`new row violates check constraint "payment_day_range"`), CategoryConstraint, "PAYMENT_DAY_INVALID"},
		{"unknown", errors.New("flux capacitor misaligned"), CategoryUnknown, "UNEXPECTED_ERROR"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Classify(tc.err)
			if got.Category != tc.want {
				t.Errorf("Category = %s, want %s", got.Category, tc.want)
			}
			if got.Code != tc.code {
				t.Errorf("Code = %s, want %s", got.Code, tc.code)
			}
		})
	}
}

func TestClassifySentinels(t *testing.T) {
	if got := Classify(fmt.Errorf("loading: %w", ErrNotFound)); got.Category != CategoryNotFound {
		t.Errorf("wrapped ErrNotFound → %s, want %s", got.Category, CategoryNotFound)
	}
	if got := Classify(ErrDuplicate); got.Category != CategoryConflict {
		t.Errorf("ErrDuplicate → %s, want %s", got.Category, CategoryConflict)
	}
}

func TestClassifyPassesThroughTypedErrors(t *testing.T) {
	orig := Validation("price", "Price must be greater than zero")
	got := Classify(fmt.Errorf("add: %w", orig))
	if got != orig {
		t.Error("Classify should unwrap to the original *Error")
	}
}

func TestRetryable(t *testing.T) {
	if !Retryable(Classify(errors.New("connection refused"))) {
		t.Error("transient error should be retryable")
	}
	if Retryable(Classify(errors.New("duplicate key"))) {
		t.Error("conflict must never be retried")
	}
	if Retryable(nil) {
		t.Error("nil is not retryable")
	}
}

func TestUnknownKeepsRawText(t *testing.T) {
	got := Classify(errors.New("flux capacitor misaligned"))
	if want := "Something went wrong: flux capacitor misaligned"; got.Message != want {
		t.Errorf("Message = %q, want %q", got.Message, want)
	}
}
