package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// OnboardingStatus estado del ciclo de revisión de una solicitud de alta.
type OnboardingStatus string

// Estados válidos. approved y rejected son terminales.
const (
	StatusPending     OnboardingStatus = "pending"
	StatusUnderReview OnboardingStatus = "under_review"
	StatusApproved    OnboardingStatus = "approved"
	StatusRejected    OnboardingStatus = "rejected"
)

// Servicios contratables (deben coincidir con el catálogo).
const (
	ServiceInventory = "inventory"
	ServiceAccounts  = "accounts"
	ServiceHRMS      = "hrms"
)

// OnboardingData campos que el asistente acumula paso a paso.
// Las etiquetas validate las usa el validador de pasos (ver domain/onboarding).
type OnboardingData struct {
	// Paso 0: datos personales
	FirstName string `json:"first_name" validate:"required,min=2,max=50,person_name"`
	LastName  string `json:"last_name" validate:"required,min=2,max=50,person_name"`

	// Paso 1: empresa
	CompanyName     string `json:"company_name" validate:"required,min=2,max=100"`
	CompanyEmail    string `json:"company_email" validate:"required,email"`
	CompanyMobile   string `json:"company_mobile" validate:"required,in_mobile"`
	CompanyLandline string `json:"company_landline,omitempty" validate:"omitempty,in_mobile"`
	CompanyWebsite  string `json:"company_website,omitempty" validate:"omitempty,website"`
	CompanyGST      string `json:"company_gst" validate:"required,gstin"`
	CompanyPAN      string `json:"company_pan,omitempty" validate:"omitempty,pan"`
	CompanyType     string `json:"company_type" validate:"required,company_type"`
	IndustryType    string `json:"industry_type" validate:"required,industry_type"`

	// Paso 3: dirección
	CompanyAddress string `json:"company_address" validate:"required,min=10,max=500"`
	Country        string `json:"country" validate:"required"`
	State          string `json:"state" validate:"required"`
	City           string `json:"city" validate:"required"`
	Pincode        string `json:"pincode" validate:"required,pincode"`

	// Paso 4: servicios y plan
	Employees    int      `json:"employees" validate:"required,min=1,max=10000"`
	PlanDuration string   `json:"plan_duration" validate:"required,plan_duration"`
	Services     []string `json:"services" validate:"required,min=1,unique,dive,service_id"`
}

// ContactName nombre completo de la persona de contacto.
func (d OnboardingData) ContactName() string {
	switch {
	case d.FirstName == "":
		return d.LastName
	case d.LastName == "":
		return d.FirstName
	}
	return d.FirstName + " " + d.LastName
}

// ServicePrice precio mensual de un servicio dentro de la cotización.
type ServicePrice struct {
	Service string          `json:"service"`
	Price   decimal.Decimal `json:"price"`
}

// PricingDetails cotización derivada. BasePrice, Discount y FinalPrice son mensuales y sin GST;
// PlanTotal, GSTAmount y TotalWithGST cubren la duración completa del plan.
type PricingDetails struct {
	BasePrice       decimal.Decimal `json:"base_price"`
	DiscountPercent decimal.Decimal `json:"discount_percent"`
	Discount        decimal.Decimal `json:"discount"`
	FinalPrice      decimal.Decimal `json:"final_price"`
	Breakdown       []ServicePrice  `json:"breakdown"`
	Months          int             `json:"months"`
	PlanTotal       decimal.Decimal `json:"plan_total"`
	GSTAmount       decimal.Decimal `json:"gst_amount"`
	TotalWithGST    decimal.Decimal `json:"total_with_gst"`
}

// Document adjunto de una solicitud. Verified lo marca un administrador, no se calcula aquí.
type Document struct {
	ID         string    `json:"id"`
	Type       string    `json:"type"`
	Name       string    `json:"name"`
	URL        string    `json:"url"`
	UploadDate time.Time `json:"upload_date"`
	Verified   bool      `json:"verified"`
}

// OnboardingRecord solicitud enviada por el asistente y revisada por administradores.
type OnboardingRecord struct {
	ID string
	OnboardingData
	Pricing          PricingDetails
	Status           OnboardingStatus
	AdminNotes       string
	RejectionReason  string
	RejectionDetails string
	ProcessedBy      string
	ProcessedDate    *time.Time
	SubmissionDate   time.Time
	Documents        []Document
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// StatusChange cambio condicional de estado: solo se aplica si el estado actual está en From.
type StatusChange struct {
	From             []OnboardingStatus
	To               OnboardingStatus
	AdminNotes       *string
	RejectionReason  string
	RejectionDetails string
	ProcessedBy      string
	ProcessedDate    *time.Time
	UpdatedAt        time.Time
}
