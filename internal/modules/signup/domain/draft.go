package domain

import "fmt"

// SignupDraft accumulates the wizard's form data. It lives only for the
// signup session and is discarded on completion; nothing here is
// persisted until the verification step creates the account.
type SignupDraft struct {
	Email            string `json:"email"`
	Password         string `json:"password"`
	ConfirmPassword  string `json:"confirmPassword"`
	FirstName        string `json:"firstName"`
	LastName         string `json:"lastName"`
	PhoneNumber      string `json:"phoneNumber"`
	AgreeToTerms     bool   `json:"agreeToTerms"`
	AgreeToMarketing bool   `json:"agreeToMarketing"`
}

// SetField mutates one draft field by its wire name.
func (d *SignupDraft) SetField(field string, value any) error {
	switch field {
	case "email", "password", "confirmPassword", "firstName", "lastName", "phoneNumber":
		s, ok := value.(string)
		if !ok {
			return fmt.Errorf("field %s expects a string", field)
		}
		switch field {
		case "email":
			d.Email = s
		case "password":
			d.Password = s
		case "confirmPassword":
			d.ConfirmPassword = s
		case "firstName":
			d.FirstName = s
		case "lastName":
			d.LastName = s
		case "phoneNumber":
			d.PhoneNumber = s
		}
	case "agreeToTerms", "agreeToMarketing":
		b, ok := value.(bool)
		if !ok {
			return fmt.Errorf("field %s expects a boolean", field)
		}
		if field == "agreeToTerms" {
			d.AgreeToTerms = b
		} else {
			d.AgreeToMarketing = b
		}
	default:
		return fmt.Errorf("unknown field %q", field)
	}
	return nil
}

// Validate runs every field rule over the whole draft and returns the
// failures in field order. The step machine filters this down to the
// active step's fields for display.
func (d *SignupDraft) Validate() []ValidationError {
	var out []ValidationError
	appendIf := func(v *ValidationError) {
		if v != nil {
			out = append(out, *v)
		}
	}
	appendIf(ValidateEmail(d.Email))
	appendIf(ValidatePassword(d.Password))
	appendIf(ValidateConfirmPassword(d.Password, d.ConfirmPassword))
	appendIf(ValidateName(d.FirstName, "First name"))
	appendIf(ValidateName(d.LastName, "Last name"))
	appendIf(ValidatePhoneNumber(d.PhoneNumber))
	appendIf(ValidateTerms(d.AgreeToTerms))
	return out
}
