package domain

import (
	"sync"
	"time"
)

type Step int

const (
	StepAccount      Step = 1
	StepPersonal     Step = 2
	StepTerms        Step = 3
	StepVerification Step = 4
	StepComplete     Step = 5
)

// StepDescriptor is derived from the current step alone; exactly one
// descriptor is current unless the wizard has finished.
type StepDescriptor struct {
	ID          int    `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	IsCompleted bool   `json:"isCompleted"`
	IsCurrent   bool   `json:"isCurrent"`
}

var stepMeta = []struct {
	id          Step
	title       string
	description string
}{
	{StepAccount, "Account", "Email and password"},
	{StepPersonal, "Personal", "Name and contact details"},
	{StepTerms, "Terms", "Terms of service"},
	{StepVerification, "Verification", "Confirm your email"},
	{StepComplete, "Complete", "You're all set"},
}

// stepFields maps each step to the draft fields it gates on. The
// verification step has no form fields; it is gated by the sub-flow
// status instead.
var stepFields = map[Step][]string{
	StepAccount:      {"email", "password", "confirmPassword"},
	StepPersonal:     {"firstName", "lastName", "phoneNumber"},
	StepTerms:        {"agreeToTerms"},
	StepVerification: {},
	StepComplete:     {},
}

type VerificationStatus string

const (
	VerificationNotSent  VerificationStatus = "not_sent"
	VerificationPending  VerificationStatus = "pending"
	VerificationVerified VerificationStatus = "verified"
	VerificationError    VerificationStatus = "error"
)

// Wizard is the signup step machine. It owns the draft for the duration
// of the signup session; all access goes through its methods.
type Wizard struct {
	mu sync.Mutex

	ID        string
	CreatedAt time.Time
	UpdatedAt time.Time

	draft   SignupDraft
	current Step

	verification    VerificationStatus
	verificationMsg string
	// sentOnce stays true after the first successful send; leaving the
	// verification step requires it even if a later resend failed.
	sentOnce bool
}

func NewWizard(id string) *Wizard {
	now := time.Now().UTC()
	return &Wizard{
		ID:           id,
		CreatedAt:    now,
		UpdatedAt:    now,
		current:      StepAccount,
		verification: VerificationNotSent,
	}
}

func (w *Wizard) Current() Step {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.current
}

// Draft returns a copy; the wizard keeps exclusive ownership.
func (w *Wizard) Draft() SignupDraft {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.draft
}

func (w *Wizard) SetField(field string, value any) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.draft.SetField(field, value); err != nil {
		return err
	}
	w.UpdatedAt = time.Now().UTC()
	return nil
}

// Errors validates the full draft.
func (w *Wizard) Errors() []ValidationError {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.draft.Validate()
}

// VisibleErrors returns only the failures belonging to the active step's
// field set, so editing a later step never surfaces a stale earlier one.
func (w *Wizard) VisibleErrors() []ValidationError {
	w.mu.Lock()
	defer w.mu.Unlock()
	return filterStep(w.draft.Validate(), w.current)
}

func filterStep(errs []ValidationError, step Step) []ValidationError {
	fields := stepFields[step]
	var out []ValidationError
	for _, e := range errs {
		for _, f := range fields {
			if e.Field == f {
				out = append(out, e)
				break
			}
		}
	}
	return out
}

// Next advances one step when the active step's gate passes. It reports
// whether the wizard moved; past Complete it never does.
func (w *Wizard) Next() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.current >= StepComplete {
		return false
	}
	if w.current == StepVerification {
		if !w.sentOnce {
			return false
		}
		if w.verification != VerificationPending && w.verification != VerificationVerified {
			return false
		}
	} else if len(filterStep(w.draft.Validate(), w.current)) > 0 {
		return false
	}
	w.current++
	w.UpdatedAt = time.Now().UTC()
	return true
}

// Back moves one step toward Account; the draft keeps its data.
func (w *Wizard) Back() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.current <= StepAccount {
		return false
	}
	w.current--
	w.UpdatedAt = time.Now().UTC()
	return true
}

// Steps derives the five descriptors from the current step.
func (w *Wizard) Steps() []StepDescriptor {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]StepDescriptor, 0, len(stepMeta))
	for _, m := range stepMeta {
		out = append(out, StepDescriptor{
			ID:          int(m.id),
			Title:       m.title,
			Description: m.description,
			IsCompleted: m.id < w.current,
			IsCurrent:   m.id == w.current,
		})
	}
	return out
}

func (w *Wizard) Verification() (VerificationStatus, string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.verification, w.verificationMsg
}

// MarkSent records a successful send; verified means the account came
// back already confirmed.
func (w *Wizard) MarkSent(verified bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.sentOnce = true
	if verified {
		w.verification = VerificationVerified
	} else {
		w.verification = VerificationPending
	}
	w.verificationMsg = ""
	w.UpdatedAt = time.Now().UTC()
}

// MarkVerified is a one-way transition for this sub-flow.
func (w *Wizard) MarkVerified() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.verification = VerificationVerified
	w.verificationMsg = ""
	w.UpdatedAt = time.Now().UTC()
}

func (w *Wizard) MarkVerificationError(msg string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.verification == VerificationVerified {
		return
	}
	w.verification = VerificationError
	w.verificationMsg = msg
	w.UpdatedAt = time.Now().UTC()
}

// ClearVerificationError returns an errored sub-flow to pending (or
// not-sent when nothing was ever sent) so the user can retry.
func (w *Wizard) ClearVerificationError() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.verification != VerificationError {
		return
	}
	if w.sentOnce {
		w.verification = VerificationPending
	} else {
		w.verification = VerificationNotSent
	}
	w.verificationMsg = ""
	w.UpdatedAt = time.Now().UTC()
}

// LastTouched is used by the draft store's TTL sweep.
func (w *Wizard) LastTouched() time.Time {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.UpdatedAt
}

// Sent reports whether at least one verification mail went out.
func (w *Wizard) Sent() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.sentOnce
}
