// Package scheduler runs the daily renewal reminder job. Subscriptions
// renewing within the lookahead window produce a warning notification
// for their owner and, when an address is known, a reminder email.
package scheduler

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/robfig/cron/v3"

	"subtrack/internal/modules/notification"
	subdomain "subtrack/internal/modules/subscription/domain"
)

const lookaheadDays = 3

// RenewalSource reports upcoming renewals.
type RenewalSource interface {
	ListRenewingWithin(ctx context.Context, days int) ([]subdomain.RenewalDue, error)
}

// ReminderMailer sends the renewal email. Mail failures are logged and
// never block the notification.
type ReminderMailer interface {
	SendRenewalReminder(ctx context.Context, to, serviceName, renewDate string) error
}

type Scheduler struct {
	cron   *cron.Cron
	source RenewalSource
	notify *notification.Registry
	mailer ReminderMailer
}

func New(source RenewalSource, notify *notification.Registry, mailer ReminderMailer) *Scheduler {
	return &Scheduler{cron: cron.New(), source: source, notify: notify, mailer: mailer}
}

// Start registers the daily job and launches the cron loop. The spec
// string follows the standard five-field format.
func (s *Scheduler) Start(spec string) error {
	if spec == "" {
		spec = "0 9 * * *" // every day at 09:00
	}
	if _, err := s.cron.AddFunc(spec, s.RunOnce); err != nil {
		return fmt.Errorf("scheduler: %w", err)
	}
	s.cron.Start()
	return nil
}

func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}

// RunOnce performs a single reminder sweep. Exported so an operator
// can trigger it outside the cron schedule.
func (s *Scheduler) RunOnce() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	due, err := s.source.ListRenewingWithin(ctx, lookaheadDays)
	if err != nil {
		log.Printf("scheduler: listing upcoming renewals: %v", err)
		return
	}
	for _, d := range due {
		msg := fmt.Sprintf("%s renews on %s (%.0f %s)", d.Name, d.RenewDate, d.Price, d.Currency)
		s.notify.Push(d.UserID, "warning", "Upcoming renewal", msg)
		if s.mailer == nil || d.Email == "" {
			continue
		}
		if err := s.mailer.SendRenewalReminder(ctx, d.Email, d.Name, d.RenewDate); err != nil {
			log.Printf("scheduler: reminder mail to %s: %v", d.Email, err)
		}
	}
}
