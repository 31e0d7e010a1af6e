// Package signup implements the multi-step signup wizard: the step
// machine and field rules live in domain; Flow drives the verification
// sub-flow against the account store and the mailer.
package signup

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	authdomain "subtrack/internal/modules/auth/domain"
	"subtrack/internal/modules/signup/domain"
	"subtrack/internal/platform/apperr"
	"subtrack/internal/platform/security"
)

// Mailer is the outbound-mail capability the flow needs.
type Mailer interface {
	SendSignupCode(ctx context.Context, to, code string) error
}

// Flow owns the verification sub-flow: account creation, code issue,
// resend, and status re-check.
type Flow struct {
	users  authdomain.UserRepo
	codes  authdomain.CodeRepo
	mailer Mailer

	codeTTL time.Duration
}

func NewFlow(users authdomain.UserRepo, codes authdomain.CodeRepo, mailer Mailer) *Flow {
	return &Flow{users: users, codes: codes, mailer: mailer, codeTTL: time.Hour}
}

// SendVerification creates the account from the wizard's draft and sends
// the first confirmation code. On success the wizard goes pending — or
// straight to verified when the account comes back already confirmed.
// On failure the wizard goes to error with a friendlier message.
func (f *Flow) SendVerification(ctx context.Context, w *domain.Wizard) error {
	d := w.Draft()

	if errs := d.Validate(); len(errs) > 0 {
		msg := errs[0].Message
		w.MarkVerificationError(msg)
		return apperr.Validation(errs[0].Field, msg)
	}

	hash, err := security.HashPassword(d.Password)
	if err != nil {
		w.MarkVerificationError(friendlySignupMessage(err))
		return apperr.Classify(err)
	}

	email := strings.ToLower(strings.TrimSpace(d.Email))
	if exists, _ := f.users.ExistsByEmail(email); exists {
		msg := friendlySignupMessage(apperr.ErrDuplicate)
		w.MarkVerificationError(msg)
		return apperr.Wrap(apperr.CategoryConflict, "ALREADY_EXISTS", msg, apperr.ErrDuplicate)
	}

	u, err := f.users.Create(authdomain.CreateUserParams{
		Email:          email,
		FirstName:      d.FirstName,
		LastName:       d.LastName,
		Phone:          optional(d.PhoneNumber),
		PasswordHash:   &hash,
		AgreeMarketing: d.AgreeToMarketing,
	})
	if err != nil {
		w.MarkVerificationError(friendlySignupMessage(err))
		return apperr.Classify(err)
	}

	if u.EmailConfirmed() {
		// provider-verified address, nothing to confirm
		w.MarkSent(true)
		return nil
	}

	if err := f.issueCode(ctx, u); err != nil {
		w.MarkVerificationError(friendlySignupMessage(err))
		return apperr.Classify(err)
	}
	w.MarkSent(false)
	return nil
}

// ResendOutcome is a tagged result: Kind tells the caller whether the
// message is informational or an error, instead of one string channel
// carrying both.
type ResendOutcome struct {
	Kind    string `json:"kind"` // "info" | "error"
	Message string `json:"message"`
}

// Resend issues a fresh code for a pending wizard. It never changes the
// pending/verified status.
func (f *Flow) Resend(ctx context.Context, w *domain.Wizard) ResendOutcome {
	if !w.Sent() {
		return ResendOutcome{Kind: "error", Message: "Send the verification email first"}
	}
	if st, _ := w.Verification(); st == domain.VerificationVerified {
		return ResendOutcome{Kind: "info", Message: "Your email is already verified"}
	}

	d := w.Draft()
	u, err := f.users.GetByEmail(d.Email)
	if err != nil || u == nil {
		return ResendOutcome{Kind: "error", Message: friendlySignupMessage(err)}
	}
	ok, _ := f.codes.ResendAllowed(u.ID, authdomain.CodeSignup)
	if !ok {
		return ResendOutcome{Kind: "error", Message: "Too many attempts. Please wait a moment and try again"}
	}
	if err := f.issueCode(ctx, u); err != nil {
		return ResendOutcome{Kind: "error", Message: friendlySignupMessage(err)}
	}
	return ResendOutcome{Kind: "info", Message: "Verification email sent again"}
}

// CheckStatus re-reads the account; a confirmation timestamp flips the
// wizard to verified. A lookup failure becomes a verification error so
// the user sees the connectivity problem.
func (f *Flow) CheckStatus(ctx context.Context, w *domain.Wizard) domain.VerificationStatus {
	if st, _ := w.Verification(); st == domain.VerificationVerified {
		return st
	}
	d := w.Draft()
	u, err := f.users.GetByEmail(d.Email)
	if err != nil || u == nil {
		e := apperr.Classify(err)
		if e != nil && e.Category == apperr.CategoryTransient {
			w.MarkVerificationError(e.Message)
		} else {
			w.MarkVerificationError("Could not check the verification status")
		}
		st, _ := w.Verification()
		return st
	}
	if u.EmailConfirmed() {
		w.MarkVerified()
	}
	st, _ := w.Verification()
	return st
}

// Confirm consumes a code sent by mail and marks the account confirmed.
func (f *Flow) Confirm(ctx context.Context, email, code string) error {
	u, err := f.users.GetByEmail(email)
	if err != nil || u == nil {
		return apperr.Classify(apperr.ErrNotFound)
	}
	if _, err := f.codes.Consume(u.ID, authdomain.CodeSignup, code); err != nil {
		return apperr.Wrap(apperr.CategoryValidation, "INVALID_CODE", "The verification code is invalid or expired", err)
	}
	return apperr.Classify(f.users.ConfirmEmail(u.ID))
}

func (f *Flow) issueCode(ctx context.Context, u *authdomain.User) error {
	code, err := security.RandomDigits(6)
	if err != nil {
		return err
	}
	if err := f.codes.Save(authdomain.VerificationCode{
		UserID:    u.ID,
		Kind:      authdomain.CodeSignup,
		Code:      code,
		ExpiresAt: time.Now().Add(f.codeTTL),
		SentTo:    u.Email,
	}); err != nil {
		return err
	}
	if f.mailer != nil {
		if err := f.mailer.SendSignupCode(ctx, u.Email, code); err != nil {
			return err
		}
	} else {
		log.Printf("signup: no mailer configured, code for %s not sent", u.Email)
	}
	return nil
}

// friendlySignupMessage maps known failure texts onto the copy shown in
// the wizard; anything unrecognized surfaces its raw message.
func friendlySignupMessage(err error) string {
	if err == nil {
		return "Something went wrong. Please try again"
	}
	if errors.Is(err, apperr.ErrDuplicate) {
		return "This email is already registered. Try signing in instead"
	}
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "already registered"), strings.Contains(msg, "duplicate"),
		strings.Contains(msg, "already exists"):
		return "This email is already registered. Try signing in instead"
	case strings.Contains(msg, "invalid email"):
		return "The email address looks invalid"
	case strings.Contains(msg, "weak password"), strings.Contains(msg, "password"):
		return "The password is too weak"
	case strings.Contains(msg, "rate limit"), strings.Contains(msg, "too many"):
		return "Too many attempts. Please wait a moment and try again"
	default:
		return err.Error()
	}
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
