package domain

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

// ValidationError mirrors the signup module's shape: field + message,
// produced fresh per pass.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Options adjusts context-dependent rules. Editing an existing record
// may legitimately carry a renew date that has already passed.
type Options struct {
	DisallowPastRenew bool
	// Today overrides the reference date; zero means time.Now.
	Today time.Time
}

// ValidateForm checks a create/update form against the business rules
// and the caller's current list. editingID excludes the record being
// edited from the duplicate-name comparison (correlation id).
func ValidateForm(f Form, existing []Subscription, editingID string, opts Options) []ValidationError {
	var out []ValidationError
	add := func(field, msg string) { out = append(out, ValidationError{Field: field, Message: msg}) }

	name := strings.TrimSpace(f.Name)
	if name == "" {
		add("name", "Service name is required")
	} else if IsDuplicateName(name, existing, editingID) {
		add("name", "A subscription with this name already exists")
	}

	cur := Currency(f.Currency)
	if _, ok := PriceCaps[cur]; !ok {
		add("currency", "Currency must be one of KRW, USD, EUR, JPY")
		cur = ""
	}

	if f.Price <= 0 {
		add("price", "Price must be greater than zero")
	} else if cap, ok := PriceCaps[cur]; ok && f.Price > cap {
		add("price", fmt.Sprintf("Price cannot exceed %.0f %s", cap, cur))
	}

	renew, err := parseDate(f.RenewDate)
	if f.RenewDate == "" {
		add("renew_date", "Renewal date is required")
	} else if err != nil {
		add("renew_date", "Renewal date must be YYYY-MM-DD")
	} else if opts.DisallowPastRenew && renew.Before(today(opts)) {
		add("renew_date", "Renewal date cannot be in the past")
	}

	if f.StartDate != "" {
		if _, err := parseDate(f.StartDate); err != nil {
			add("start_date", "Start date must be YYYY-MM-DD")
		}
	}

	if f.PaymentDay != 0 {
		if f.PaymentDay < 1 || f.PaymentDay > 31 {
			add("payment_day", "Payment day must be between 1 and 31")
		} else if err == nil && f.RenewDate != "" {
			// bound by the actual length of the renewal month
			if max := daysInMonth(renew); f.PaymentDay > max {
				add("payment_day", fmt.Sprintf("Payment day cannot exceed %d for that month", max))
			}
		}
	}

	if f.URL != "" {
		if _, err := url.ParseRequestURI(NormalizeURL(f.URL)); err != nil {
			add("url", "URL format is invalid")
		}
	}

	return out
}

// IsDuplicateName compares case-insensitively after trimming, skipping
// the record being edited.
func IsDuplicateName(name string, existing []Subscription, editingID string) bool {
	needle := strings.ToLower(strings.TrimSpace(name))
	for _, s := range existing {
		if editingID != "" && s.ID == editingID {
			continue
		}
		if strings.ToLower(strings.TrimSpace(s.Name)) == needle {
			return true
		}
	}
	return false
}

// NormalizeURL prefixes bare hosts with https:// before validation.
func NormalizeURL(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return s
	}
	if !strings.Contains(s, "://") {
		return "https://" + s
	}
	return s
}

func parseDate(s string) (time.Time, error) {
	return time.Parse("2006-01-02", s)
}

func daysInMonth(t time.Time) int {
	// day 0 of the next month is the last day of this one
	return time.Date(t.Year(), t.Month()+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

func today(opts Options) time.Time {
	now := opts.Today
	if now.IsZero() {
		now = time.Now()
	}
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}
