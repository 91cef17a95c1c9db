package ports

import (
	"context"

	"github.com/jhoicas/onboarding-api/internal/domain/entity"
)

// Notifier define el puerto de salida de correo hacia la empresa solicitante.
// SendOTP hace que cualquier Notifier sirva también como otp.Sender.
type Notifier interface {
	SendOTP(ctx context.Context, email, code string) error
	// SubmissionReceived confirma la recepción de la solicitud.
	SubmissionReceived(ctx context.Context, rec *entity.OnboardingRecord) error
	// DecisionMade informa la aprobación o el rechazo.
	DecisionMade(ctx context.Context, rec *entity.OnboardingRecord) error
}
