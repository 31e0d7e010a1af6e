package domain

import (
	"strings"
	"testing"
	"time"
)

func fieldSet(errs []ValidationError) map[string]string {
	m := make(map[string]string, len(errs))
	for _, e := range errs {
		m[e.Field] = e.Message
	}
	return m
}

func baseForm() Form {
	return Form{
		Name:      "Netflix",
		Price:     17000,
		Currency:  "KRW",
		RenewDate: "2030-06-15",
	}
}

func TestValidateFormPasses(t *testing.T) {
	if errs := ValidateForm(baseForm(), nil, "", Options{}); len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
}

func TestDuplicateNameCaseAndWhitespaceInsensitive(t *testing.T) {
	existing := []Subscription{{ID: "c1", Name: "Netflix"}}

	f := baseForm()
	f.Name = "netflix "
	errs := ValidateForm(f, existing, "", Options{})
	if _, ok := fieldSet(errs)["name"]; !ok {
		t.Fatal("case/whitespace variant of an existing name must be rejected")
	}

	// editing the record itself is not a duplicate
	if errs := ValidateForm(f, existing, "c1", Options{}); len(errs) != 0 {
		t.Fatalf("editing the same record should pass, got %v", errs)
	}
}

func TestPriceRules(t *testing.T) {
	f := baseForm()
	f.Price = 0
	if _, ok := fieldSet(ValidateForm(f, nil, "", Options{}))["price"]; !ok {
		t.Error("zero price must fail")
	}

	f = baseForm()
	f.Price = -5
	if _, ok := fieldSet(ValidateForm(f, nil, "", Options{}))["price"]; !ok {
		t.Error("negative price must fail")
	}

	f = baseForm()
	f.Currency = "USD"
	f.Price = 10_001
	msgs := fieldSet(ValidateForm(f, nil, "", Options{}))
	if msg, ok := msgs["price"]; !ok || !strings.Contains(msg, "USD") {
		t.Errorf("over-cap USD price must fail with the cap in the message, got %v", msgs)
	}

	f.Price = 10_000
	if len(ValidateForm(f, nil, "", Options{})) != 0 {
		t.Error("price at the cap passes")
	}
}

func TestCurrencyEnum(t *testing.T) {
	f := baseForm()
	f.Currency = "GBP"
	if _, ok := fieldSet(ValidateForm(f, nil, "", Options{}))["currency"]; !ok {
		t.Error("unsupported currency must fail")
	}
}

func TestRenewDateRules(t *testing.T) {
	f := baseForm()
	f.RenewDate = ""
	if _, ok := fieldSet(ValidateForm(f, nil, "", Options{}))["renew_date"]; !ok {
		t.Error("missing renew date must fail")
	}

	f.RenewDate = "15/06/2030"
	if _, ok := fieldSet(ValidateForm(f, nil, "", Options{}))["renew_date"]; !ok {
		t.Error("non-ISO renew date must fail")
	}

	today := time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)
	f.RenewDate = "2026-08-31"
	errs := ValidateForm(f, nil, "", Options{DisallowPastRenew: true, Today: today})
	if _, ok := fieldSet(errs)["renew_date"]; !ok {
		t.Error("past renew date must fail when disallowed")
	}
	// same form passes when editing context allows past dates
	if errs := ValidateForm(f, nil, "", Options{Today: today}); len(errs) != 0 {
		t.Errorf("past renew date is fine outside create context, got %v", errs)
	}
}

func TestPaymentDayBoundedByRenewMonth(t *testing.T) {
	f := baseForm()
	f.PaymentDay = 32
	if _, ok := fieldSet(ValidateForm(f, nil, "", Options{}))["payment_day"]; !ok {
		t.Error("day 32 must fail")
	}

	f.RenewDate = "2030-02-10" // February 2030 has 28 days
	f.PaymentDay = 29
	if _, ok := fieldSet(ValidateForm(f, nil, "", Options{}))["payment_day"]; !ok {
		t.Error("day 29 in a 28-day renewal month must fail")
	}
	f.PaymentDay = 28
	if len(ValidateForm(f, nil, "", Options{})) != 0 {
		t.Error("day 28 in February passes")
	}
}

func TestURLAutoPrefix(t *testing.T) {
	if got := NormalizeURL("netflix.com"); got != "https://netflix.com" {
		t.Errorf("NormalizeURL = %q, want the https prefix added", got)
	}
	if got := NormalizeURL("http://netflix.com"); got != "http://netflix.com" {
		t.Errorf("NormalizeURL = %q, an explicit scheme is kept", got)
	}

	f := baseForm()
	f.URL = "netflix.com/account"
	if errs := ValidateForm(f, nil, "", Options{}); len(errs) != 0 {
		t.Errorf("bare host URL should validate after prefixing, got %v", errs)
	}
}
