package signup

import (
	"context"
	"errors"
	"sync"
	"testing"

	authdomain "subtrack/internal/modules/auth/domain"
	authinfra "subtrack/internal/modules/auth/infra"
	"subtrack/internal/modules/signup/domain"
)

type fakeMailer struct {
	mu    sync.Mutex
	sends []string // recipient per call
	codes []string // code per call
	fail  error
}

func (m *fakeMailer) SendSignupCode(ctx context.Context, to, code string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail != nil {
		return m.fail
	}
	m.sends = append(m.sends, to)
	m.codes = append(m.codes, code)
	return nil
}

func (m *fakeMailer) lastCode() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.codes) == 0 {
		return ""
	}
	return m.codes[len(m.codes)-1]
}

func (m *fakeMailer) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sends)
}

func newTestFlow(mailer *fakeMailer) (*Flow, authdomain.UserRepo, authdomain.CodeRepo) {
	users := authinfra.NewMemUserRepo()
	codes := authinfra.NewMemCodeRepo()
	return NewFlow(users, codes, mailer), users, codes
}

func fillValidDraft(w *domain.Wizard) {
	w.SetField("email", "a@b.com")
	w.SetField("password", "Passw0rd")
	w.SetField("confirmPassword", "Passw0rd")
	w.SetField("firstName", "Kim")
	w.SetField("lastName", "Lee")
	w.SetField("agreeToTerms", true)
}

func TestWizardEndToEnd(t *testing.T) {
	mailer := &fakeMailer{}
	flow, _, _ := newTestFlow(mailer)
	w := domain.NewWizard("d1")
	fillValidDraft(w)

	if !w.Next() || !w.Next() || !w.Next() {
		t.Fatal("valid draft should clear the first three steps")
	}
	if w.Current() != domain.StepVerification {
		t.Fatalf("Current = %d, want %d", w.Current(), domain.StepVerification)
	}

	if err := flow.SendVerification(context.Background(), w); err != nil {
		t.Fatalf("SendVerification: %v", err)
	}
	if st, _ := w.Verification(); st != domain.VerificationPending {
		t.Fatalf("verification = %s, want pending", st)
	}
	if mailer.count() != 1 {
		t.Fatalf("mailer calls = %d, want exactly 1", mailer.count())
	}

	if !w.Next() {
		t.Fatal("pending verification should allow the final Next")
	}
	if w.Current() != domain.StepComplete {
		t.Fatalf("Current = %d, want %d after 4 Next calls", w.Current(), domain.StepComplete)
	}
}

func TestSendVerificationDuplicateEmail(t *testing.T) {
	mailer := &fakeMailer{}
	flow, users, _ := newTestFlow(mailer)
	hash := "x"
	users.Create(authdomain.CreateUserParams{Email: "a@b.com", FirstName: "K", LastName: "L", PasswordHash: &hash})

	w := domain.NewWizard("d1")
	fillValidDraft(w)
	if err := flow.SendVerification(context.Background(), w); err == nil {
		t.Fatal("SendVerification should fail for a registered address")
	}
	st, msg := w.Verification()
	if st != domain.VerificationError {
		t.Fatalf("verification = %s, want error", st)
	}
	if msg != "This email is already registered. Try signing in instead" {
		t.Errorf("message = %q, want the friendly already-registered copy", msg)
	}
	if mailer.count() != 0 {
		t.Error("no mail goes out when account creation fails")
	}
}

func TestSendVerificationSkipsCreateForKnownEmail(t *testing.T) {
	users := &countingUserRepo{UserRepo: authinfra.NewMemUserRepo()}
	flow := NewFlow(users, authinfra.NewMemCodeRepo(), &fakeMailer{})
	hash := "x"
	users.Create(authdomain.CreateUserParams{Email: "a@b.com", FirstName: "K", LastName: "L", PasswordHash: &hash})

	w := domain.NewWizard("d1")
	fillValidDraft(w)
	if err := flow.SendVerification(context.Background(), w); err == nil {
		t.Fatal("SendVerification should fail for a registered address")
	}
	if users.creates != 1 {
		t.Errorf("Create calls = %d, want only the seed; the existence check runs first", users.creates)
	}
}

func TestSendVerificationInvalidDraft(t *testing.T) {
	flow, _, _ := newTestFlow(&fakeMailer{})
	w := domain.NewWizard("d1")
	// draft left empty
	if err := flow.SendVerification(context.Background(), w); err == nil {
		t.Fatal("an invalid draft must not reach the store")
	}
	if st, _ := w.Verification(); st != domain.VerificationError {
		t.Fatal("wizard should be in the error state")
	}
}

func TestResendTaggedOutcome(t *testing.T) {
	mailer := &fakeMailer{}
	flow, _, _ := newTestFlow(mailer)
	w := domain.NewWizard("d1")
	fillValidDraft(w)

	// before any send
	out := flow.Resend(context.Background(), w)
	if out.Kind != "error" {
		t.Errorf("Kind = %s, want error before the first send", out.Kind)
	}

	if err := flow.SendVerification(context.Background(), w); err != nil {
		t.Fatalf("SendVerification: %v", err)
	}

	// cooldown: the first send was moments ago
	out = flow.Resend(context.Background(), w)
	if out.Kind != "error" {
		t.Errorf("Kind = %s, want error while the cooldown holds", out.Kind)
	}
	if st, _ := w.Verification(); st != domain.VerificationPending {
		t.Error("a failed resend must not change the pending status")
	}
}

func TestResendAfterVerifiedIsInfo(t *testing.T) {
	flow, _, _ := newTestFlow(&fakeMailer{})
	w := domain.NewWizard("d1")
	fillValidDraft(w)
	w.MarkSent(true)

	out := flow.Resend(context.Background(), w)
	if out.Kind != "info" {
		t.Errorf("Kind = %s, want info for an already-verified wizard", out.Kind)
	}
}

func TestConfirmThenCheckStatus(t *testing.T) {
	mailer := &fakeMailer{}
	flow, _, _ := newTestFlow(mailer)
	w := domain.NewWizard("d1")
	fillValidDraft(w)

	if err := flow.SendVerification(context.Background(), w); err != nil {
		t.Fatalf("SendVerification: %v", err)
	}
	if st := flow.CheckStatus(context.Background(), w); st != domain.VerificationPending {
		t.Fatalf("CheckStatus = %s, want pending before confirmation", st)
	}

	// the mail capture stands in for the user reading their inbox
	if err := flow.Confirm(context.Background(), "a@b.com", mailer.lastCode()); err != nil {
		t.Fatalf("Confirm: %v", err)
	}
	if st := flow.CheckStatus(context.Background(), w); st != domain.VerificationVerified {
		t.Fatalf("CheckStatus = %s, want verified after confirmation", st)
	}
}

func TestConfirmRejectsBadCode(t *testing.T) {
	flow, _, _ := newTestFlow(&fakeMailer{})
	w := domain.NewWizard("d1")
	fillValidDraft(w)
	if err := flow.SendVerification(context.Background(), w); err != nil {
		t.Fatalf("SendVerification: %v", err)
	}
	if err := flow.Confirm(context.Background(), "a@b.com", "999999"); err == nil {
		t.Fatal("a wrong code must not confirm the account")
	}
}

func TestCheckStatusConnectivityFailure(t *testing.T) {
	mailer := &fakeMailer{}
	users := &failingUserRepo{UserRepo: authinfra.NewMemUserRepo()}
	codes := authinfra.NewMemCodeRepo()
	flow := NewFlow(users, codes, mailer)

	w := domain.NewWizard("d1")
	fillValidDraft(w)
	if err := flow.SendVerification(context.Background(), w); err != nil {
		t.Fatalf("SendVerification: %v", err)
	}

	users.failGets = errors.New("dial tcp: connection refused")
	if st := flow.CheckStatus(context.Background(), w); st != domain.VerificationError {
		t.Fatalf("CheckStatus = %s, want error on a connectivity failure", st)
	}
}

type countingUserRepo struct {
	authdomain.UserRepo
	creates int
}

func (r *countingUserRepo) Create(p authdomain.CreateUserParams) (*authdomain.User, error) {
	r.creates++
	return r.UserRepo.Create(p)
}

type failingUserRepo struct {
	authdomain.UserRepo
	failGets error
}

func (r *failingUserRepo) GetByEmail(email string) (*authdomain.User, error) {
	if r.failGets != nil {
		return nil, r.failGets
	}
	return r.UserRepo.GetByEmail(email)
}
