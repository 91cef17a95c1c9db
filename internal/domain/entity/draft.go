package entity

import "time"

// Pasos del asistente de alta.
const (
	StepPersonal = iota
	StepCompany
	StepEmailOTP
	StepAddress
	StepServicePlan
	StepCount
)

// Draft estado de un asistente en curso. Es la única fuente de verdad del formulario:
// cada paso escribe solo sus campos de Data.
type Draft struct {
	ID            string         `json:"id"`
	CurrentStep   int            `json:"current_step"`
	Data          OnboardingData `json:"data"`
	EmailVerified bool           `json:"email_verified"`
	VerifiedEmail string         `json:"verified_email,omitempty"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
}

// OTPVerified informa si el email actual de la empresa es el que se verificó.
func (d *Draft) OTPVerified() bool {
	return d.EmailVerified && d.VerifiedEmail != "" && d.VerifiedEmail == d.Data.CompanyEmail
}
