package ports

import (
	"context"

	"github.com/jhoicas/onboarding-api/internal/domain/entity"
)

// QuotePDFGenerator genera la cotización imprimible de un asistente.
type QuotePDFGenerator interface {
	GenerateQuotePDF(ctx context.Context, data entity.OnboardingData, quote *entity.PricingDetails) ([]byte, error)
}
