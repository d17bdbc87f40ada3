package notification

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"camp-registration-backend/config"
	"camp-registration-backend/internal/model"
)

// Confirmation describes an admitted group for the guardian's e-mail.
type Confirmation struct {
	GroupID   uuid.UUID
	Status    model.Status
	Email     string
	Guardians []string
	Origin    string
	Campers   []string
}

// Notifier sends the confirmation of a persisted group.
type Notifier interface {
	NotifyAdmission(ctx context.Context, c Confirmation) error
}

type nopNotifier struct{}

func (nopNotifier) NotifyAdmission(context.Context, Confirmation) error { return nil }

// Nop returns a Notifier that sends nothing.
func Nop() Notifier { return nopNotifier{} }

// New builds the e-mail notifier for the configured provider. An empty
// provider disables notifications.
func New(ctx context.Context, cfg *config.NotifyConfig, logger *zap.Logger) (Notifier, error) {
	var (
		mailer Mailer
		err    error
	)
	switch cfg.Provider {
	case "":
		logger.Info("notifications disabled")
		return Nop(), nil
	case "ses":
		mailer, err = NewSESMailer(ctx, cfg.SES.Region, cfg.FromEmail, cfg.FromName)
	case "smtp":
		mailer, err = NewSMTPMailer(&cfg.SMTP, cfg.FromEmail, cfg.FromName)
	default:
		return nil, fmt.Errorf("unknown notify provider %q", cfg.Provider)
	}
	if err != nil {
		return nil, err
	}

	logger.Info("notifications enabled",
		zap.String("provider", cfg.Provider),
		zap.String("from", cfg.FromEmail))
	return NewEmailNotifier(mailer), nil
}
