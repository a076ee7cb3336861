package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/lmichaud/caq-advisor/internal/dto"
	"github.com/lmichaud/caq-advisor/internal/middleware"
	"github.com/lmichaud/caq-advisor/internal/models"
	appErrors "github.com/lmichaud/caq-advisor/pkg/errors"
	"github.com/lmichaud/caq-advisor/pkg/response"
)

type dossierService interface {
	Evaluate(ctx context.Context, consultantID string, req dto.DossierEvaluationRequest) (*models.DossierAnalysisResult, bool, error)
}

// DossierHandler wires the dossier rule engine to HTTP endpoints.
type DossierHandler struct {
	service dossierService
}

// NewDossierHandler constructs the handler.
func NewDossierHandler(service dossierService) *DossierHandler {
	return &DossierHandler{service: service}
}

// Evaluate runs the full dossier evaluation for the submitted applicant
// profile and returns the checklist with a recommendation.
func (h *DossierHandler) Evaluate(c *gin.Context) {
	if h.service == nil {
		response.Error(c, appErrors.ErrInternal)
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

	start := time.Now()
	result, cacheHit, err := h.service.Evaluate(c.Request.Context(), claims.UserID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetCacheHit(c, cacheHit)
	meta := middleware.ExtractMeta(c)
	if meta == nil {
		meta = map[string]interface{}{}
	}
	meta["processing_time_ms"] = time.Since(start).Milliseconds()
	response.JSON(c, http.StatusOK, result, meta)
}
