package notify

import (
	"context"
	"errors"
	"log/slog"

	"github.com/havenwelfare/haven-backend/internal/models"
	"github.com/havenwelfare/haven-backend/internal/worker"
)

// Notifier composes messages and hands delivery to the worker pool. A failed
// delivery is logged by the task and never reaches the caller.
type Notifier struct {
	mailer   Mailer
	composer *Composer
	workers  worker.Submitter
}

func NewNotifier(mailer Mailer, composer *Composer, workers worker.Submitter) *Notifier {
	return &Notifier{mailer: mailer, composer: composer, workers: workers}
}

func (n *Notifier) PasswordReset(user *models.User, token string) {
	msg, err := n.composer.PasswordReset(user.Email, user.Name, token)
	if err != nil {
		slog.Error("failed to compose password reset email", "error", err)
		return
	}
	n.deliver("email:password_reset", msg)
}

func (n *Notifier) UserStatus(user *models.User, status models.UserStatus) {
	msg, ok, err := n.composer.UserStatus(user.Email, user.Name, user.Role, status)
	if err != nil {
		slog.Error("failed to compose user status email", "error", err, "status", status)
		return
	}
	if !ok {
		return
	}
	n.deliver("email:user_status", msg)
}

// DonationStatus is a no-op for anonymous donations without an email.
func (n *Notifier) DonationStatus(d *models.Donation, status models.DonationStatus, remarks *string) {
	if d.DonorEmail == nil || *d.DonorEmail == "" {
		return
	}
	msg, err := n.composer.DonationStatus(*d.DonorEmail, deref(d.DonorName), d.PatientName, d.Amount, status, deref(remarks))
	if err != nil {
		slog.Error("failed to compose donation email", "error", err, "donation_id", d.ID)
		return
	}
	n.deliver("email:donation_status", msg)
}

func (n *Notifier) deliver(name string, msg Message) {
	n.workers.Submit(worker.Task{
		Name: name,
		Run: func(ctx context.Context) error {
			err := n.mailer.Send(ctx, msg)
			if errors.Is(err, ErrNotConfigured) {
				slog.Warn("SMTP not configured, email skipped", "task", name)
				return nil
			}
			if err == nil {
				slog.Info("email sent", "task", name, "to", msg.To)
			}
			return err
		},
	})
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
