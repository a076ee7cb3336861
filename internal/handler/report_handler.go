package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/lmichaud/caq-advisor/internal/dto"
	appErrors "github.com/lmichaud/caq-advisor/pkg/errors"
	"github.com/lmichaud/caq-advisor/pkg/response"
)

type reportService interface {
	Enabled() bool
	DossierReport(ctx context.Context, consultantID string, req dto.DossierEvaluationRequest) (*dto.DossierReportResponse, error)
	TimelineReport(ctx context.Context, consultantID string, req dto.TimelineAnalysisRequest) (*dto.TimelineReportResponse, error)
}

// ReportHandler exposes the narrative report endpoints.
type ReportHandler struct {
	service reportService
}

// NewReportHandler constructs the handler.
func NewReportHandler(service reportService) *ReportHandler {
	return &ReportHandler{service: service}
}

// Dossier evaluates the dossier and renders a written advisory report.
func (h *ReportHandler) Dossier(c *gin.Context) {
	if h.service == nil || !h.service.Enabled() {
		response.Error(c, appErrors.Clone(appErrors.ErrReportUnavailable, "report generation is disabled"))
		return
	}
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req dto.DossierEvaluationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid dossier payload"))
		return
	}

	report, err := h.service.DossierReport(c.Request.Context(), claims.UserID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, report)
}

// Timeline analyzes the timeline and renders a written advisory report.
func (h *ReportHandler) Timeline(c *gin.Context) {
	if h.service == nil || !h.service.Enabled() {
		response.Error(c, appErrors.Clone(appErrors.ErrReportUnavailable, "report generation is disabled"))
		return
	}
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req dto.TimelineAnalysisRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid timeline payload"))
		return
	}

	report, err := h.service.TimelineReport(c.Request.Context(), claims.UserID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, report)
}
