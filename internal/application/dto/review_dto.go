package dto

import (
	"time"

	"github.com/jhoicas/onboarding-api/internal/domain/entity"
)

// OnboardingResponse solicitud tal como la ve el panel.
type OnboardingResponse struct {
	ID string `json:"id"`
	entity.OnboardingData
	PricingDetails   entity.PricingDetails   `json:"pricing_details"`
	Status           entity.OnboardingStatus `json:"status"`
	AdminNotes       string                  `json:"admin_notes,omitempty"`
	RejectionReason  string                  `json:"rejection_reason,omitempty"`
	RejectionDetails string                  `json:"rejection_details,omitempty"`
	ProcessedBy      string                  `json:"processed_by,omitempty"`
	ProcessedDate    *time.Time              `json:"processed_date,omitempty"`
	SubmissionDate   time.Time               `json:"submission_date"`
	Documents        []entity.Document       `json:"documents"`
	CreatedAt        time.Time               `json:"created_at"`
	UpdatedAt        time.Time               `json:"updated_at"`
}

// ListOnboardingsRequest query params del listado. Las listas van separadas por coma;
// las fechas en formato 2006-01-02 o RFC3339.
type ListOnboardingsRequest struct {
	Status       string `query:"status"`
	From         string `query:"from"`
	To           string `query:"to"`
	BusinessType string `query:"business_type"`
	Search       string `query:"search"`
	SortBy       string `query:"sort_by"`
	Order        string `query:"order"`
	Page         int    `query:"page"`
	PageSize     int    `query:"page_size"`
}

// OnboardingPageResponse página del listado.
type OnboardingPageResponse struct {
	Items []OnboardingResponse `json:"items"`
	PageResponse
}

// SummaryResponse contadores del panel.
type SummaryResponse struct {
	Total       int `json:"total"`
	Pending     int `json:"pending"`
	UnderReview int `json:"under_review"`
	Approved    int `json:"approved"`
	Rejected    int `json:"rejected"`
}

// ApproveRequest cuerpo de aprobación.
type ApproveRequest struct {
	AdminNotes string `json:"admin_notes"`
}

// RejectRequest cuerpo de rechazo.
type RejectRequest struct {
	ReasonID   string `json:"reason_id"`
	Details    string `json:"details"`
	AdminNotes string `json:"admin_notes"`
}

// AddDocumentRequest metadatos de un documento ya subido a almacenamiento externo.
type AddDocumentRequest struct {
	Type string `json:"type"`
	Name string `json:"name"`
	URL  string `json:"url"`
}

// VerifyDocumentRequest marca o desmarca un documento como verificado.
type VerifyDocumentRequest struct {
	Verified bool `json:"verified"`
}

// NewOnboardingResponse proyecta el registro a su respuesta HTTP.
func NewOnboardingResponse(rec *entity.OnboardingRecord) *OnboardingResponse {
	if rec == nil {
		return nil
	}
	docs := rec.Documents
	if docs == nil {
		docs = []entity.Document{}
	}
	return &OnboardingResponse{
		ID:               rec.ID,
		OnboardingData:   rec.OnboardingData,
		PricingDetails:   rec.Pricing,
		Status:           rec.Status,
		AdminNotes:       rec.AdminNotes,
		RejectionReason:  rec.RejectionReason,
		RejectionDetails: rec.RejectionDetails,
		ProcessedBy:      rec.ProcessedBy,
		ProcessedDate:    rec.ProcessedDate,
		SubmissionDate:   rec.SubmissionDate,
		Documents:        docs,
		CreatedAt:        rec.CreatedAt,
		UpdatedAt:        rec.UpdatedAt,
	}
}
