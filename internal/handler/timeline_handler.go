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

type timelineService interface {
	Analyze(ctx context.Context, consultantID string, req dto.TimelineAnalysisRequest) (*models.TimelineAnalysisResult, bool, error)
}

// TimelineHandler wires the timeline analyzer to HTTP endpoints.
type TimelineHandler struct {
	service timelineService
}

// NewTimelineHandler constructs the handler.
func NewTimelineHandler(service timelineService) *TimelineHandler {
	return &TimelineHandler{service: service}
}

// Analyze runs the consistency analysis over the submitted immigration
// timeline and returns per-pass findings with the global score.
func (h *TimelineHandler) Analyze(c *gin.Context) {
	if h.service == nil {
		response.Error(c, appErrors.ErrInternal)
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

	start := time.Now()
	result, cacheHit, err := h.service.Analyze(c.Request.Context(), claims.UserID, req)
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
