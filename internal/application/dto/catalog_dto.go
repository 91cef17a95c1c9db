package dto

import "github.com/jhoicas/onboarding-api/internal/domain/catalog"

// CatalogResponse datos de referencia para poblar el asistente y el panel.
type CatalogResponse struct {
	Services         []catalog.Service         `json:"services"`
	Plans            []catalog.Plan            `json:"plans"`
	CompanyTypes     []catalog.Option          `json:"company_types"`
	IndustryTypes    []catalog.Option          `json:"industry_types"`
	RejectionReasons []catalog.RejectionReason `json:"rejection_reasons"`
	Countries        []string                  `json:"countries"`
	GSTPercent       int                       `json:"gst_percent"`
}
