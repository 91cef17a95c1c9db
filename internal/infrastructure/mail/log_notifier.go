package mail

import (
	"context"

	"github.com/jhoicas/onboarding-api/internal/application/ports"
	"github.com/jhoicas/onboarding-api/internal/domain/entity"
	"github.com/jhoicas/onboarding-api/pkg/logger"
)

var _ ports.Notifier = (*LogNotifier)(nil)

// LogNotifier registra los correos en el log en lugar de enviarlos. Solo para desarrollo:
// el código OTP queda en el log.
type LogNotifier struct {
	log *logger.Logger
}

// NewLogNotifier construye el notificador de desarrollo.
func NewLogNotifier(log *logger.Logger) *LogNotifier {
	return &LogNotifier{log: log}
}

func (n *LogNotifier) SendOTP(_ context.Context, email, code string) error {
	n.log.Info().Str("to", email).Str("code", code).Msg("correo OTP (no enviado)")
	return nil
}

func (n *LogNotifier) SubmissionReceived(_ context.Context, rec *entity.OnboardingRecord) error {
	msg := submissionMessage(rec)
	n.log.Info().Str("to", msg.To).Str("subject", msg.Subject).Msg("correo (no enviado)")
	return nil
}

func (n *LogNotifier) DecisionMade(_ context.Context, rec *entity.OnboardingRecord) error {
	msg := decisionMessage(rec)
	n.log.Info().Str("to", msg.To).Str("subject", msg.Subject).Str("status", string(rec.Status)).Msg("correo (no enviado)")
	return nil
}
