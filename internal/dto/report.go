package dto

import "github.com/lmichaud/caq-advisor/internal/models"

// DossierReportResponse pairs the narrative report with the underlying
// analysis it summarises.
type DossierReportResponse struct {
	Report string                        `json:"report"`
	Result *models.DossierAnalysisResult `json:"result"`
}

// TimelineReportResponse pairs the narrative report with the scored
// timeline it summarises.
type TimelineReportResponse struct {
	Report string                         `json:"report"`
	Result *models.TimelineAnalysisResult `json:"result"`
}
