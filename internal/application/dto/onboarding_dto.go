package dto

import (
	"time"

	"github.com/jhoicas/onboarding-api/internal/domain/entity"
)

// SaveStepRequest campos de un paso del asistente. Solo se toman los del paso indicado en la URL.
type SaveStepRequest struct {
	entity.OnboardingData
}

// OTPStatus estado de la verificación del email.
type OTPStatus struct {
	State           string `json:"state"`
	Email           string `json:"email,omitempty"`
	ResendInSeconds int    `json:"resend_in_seconds"`
}

// DraftResponse asistente en curso.
type DraftResponse struct {
	ID            string                 `json:"id"`
	CurrentStep   int                    `json:"current_step"`
	Data          entity.OnboardingData  `json:"data"`
	EmailVerified bool                   `json:"email_verified"`
	OTP           OTPStatus              `json:"otp"`
	Quote         *entity.PricingDetails `json:"quote,omitempty"`
	CreatedAt     time.Time              `json:"created_at"`
	UpdatedAt     time.Time              `json:"updated_at"`
}

// QuoteRequest entrada de la vista previa de precios.
type QuoteRequest struct {
	Employees    int      `json:"employees"`
	Services     []string `json:"services"`
	PlanDuration string   `json:"plan_duration"`
}

// QuoteResponse Available=false mientras falte algún dato (no es un error).
type QuoteResponse struct {
	Available bool                   `json:"available"`
	Pricing   *entity.PricingDetails `json:"pricing,omitempty"`
}

// VerifyOTPRequest código introducido por el usuario.
type VerifyOTPRequest struct {
	Code string `json:"code"`
}

// VerifyOTPResponse resultado de la verificación.
type VerifyOTPResponse struct {
	Verified bool          `json:"verified"`
	Draft    DraftResponse `json:"draft"`
}

// SubmitPayload respuesta del servicio de alta.
type SubmitPayload struct {
	Success bool                `json:"success"`
	Data    *OnboardingResponse `json:"data,omitempty"`
	Error   string              `json:"error,omitempty"`
	Message string              `json:"message,omitempty"`
}

// SubmitResponse sobre del envío final.
type SubmitResponse struct {
	Success bool          `json:"success"`
	Payload SubmitPayload `json:"payload"`
}
