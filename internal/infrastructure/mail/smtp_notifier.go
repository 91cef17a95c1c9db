// Package mail implementa ports.Notifier: SMTP con gomail o solo log en desarrollo.
package mail

import (
	"context"
	"fmt"

	"gopkg.in/gomail.v2"

	"github.com/jhoicas/onboarding-api/internal/application/ports"
	"github.com/jhoicas/onboarding-api/internal/domain/entity"
	"github.com/jhoicas/onboarding-api/pkg/config"
)

var _ ports.Notifier = (*SMTPNotifier)(nil)

// dialer parte de gomail que usamos; permite sustituirla en tests.
type dialer interface {
	DialAndSend(m ...*gomail.Message) error
}

// SMTPNotifier envía correos por SMTP.
type SMTPNotifier struct {
	from   string
	dialer dialer
}

// NewSMTPNotifier construye el notificador con la configuración SMTP.
func NewSMTPNotifier(cfg config.SMTPConfig) *SMTPNotifier {
	return &SMTPNotifier{
		from:   cfg.From,
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.User, cfg.Password),
	}
}

func (n *SMTPNotifier) SendOTP(ctx context.Context, email, code string) error {
	return n.send(ctx, otpMessage(email, code))
}

func (n *SMTPNotifier) SubmissionReceived(ctx context.Context, rec *entity.OnboardingRecord) error {
	return n.send(ctx, submissionMessage(rec))
}

func (n *SMTPNotifier) DecisionMade(ctx context.Context, rec *entity.OnboardingRecord) error {
	return n.send(ctx, decisionMessage(rec))
}

// send entrega el mensaje respetando la cancelación de ctx. gomail no acepta contexto:
// si ctx termina antes, el resultado del envío se descarta.
func (n *SMTPNotifier) send(ctx context.Context, msg message) error {
	m := gomail.NewMessage()
	m.SetHeader("From", n.from)
	m.SetHeader("To", msg.To)
	m.SetHeader("Subject", msg.Subject)
	m.SetBody("text/plain", msg.Body)

	done := make(chan error, 1)
	go func() { done <- n.dialer.DialAndSend(m) }()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case err := <-done:
		if err != nil {
			return fmt.Errorf("smtp: enviar a %s: %w", msg.To, err)
		}
		return nil
	}
}
