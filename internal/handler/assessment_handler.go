package handler

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/lmichaud/caq-advisor/internal/models"
	"github.com/lmichaud/caq-advisor/internal/repository"
	appErrors "github.com/lmichaud/caq-advisor/pkg/errors"
	"github.com/lmichaud/caq-advisor/pkg/response"
)

type assessmentReader interface {
	GetByID(ctx context.Context, id string) (*models.Assessment, error)
	List(ctx context.Context, filter repository.AssessmentFilter) ([]models.Assessment, error)
}

// AssessmentHandler serves the stored analysis history.
type AssessmentHandler struct {
	repo assessmentReader
}

// NewAssessmentHandler constructs the handler.
func NewAssessmentHandler(repo assessmentReader) *AssessmentHandler {
	return &AssessmentHandler{repo: repo}
}

// List returns past assessments for the authenticated consultant, latest
// first. Supports kind, limit and offset query parameters.
func (h *AssessmentHandler) List(c *gin.Context) {
	if h.repo == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrInternal, "assessment storage is not configured"))
		return
	}
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	filter := repository.AssessmentFilter{ConsultantID: claims.UserID}
	switch kind := strings.ToUpper(strings.TrimSpace(c.Query("kind"))); kind {
	case "":
	case string(models.AssessmentDossier), string(models.AssessmentTimeline):
		filter.Kind = models.AssessmentKind(kind)
	default:
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "kind must be DOSSIER or TIMELINE"))
		return
	}
	if raw := strings.TrimSpace(c.Query("limit")); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit <= 0 {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "limit must be a positive integer"))
			return
		}
		filter.Limit = limit
	}
	if raw := strings.TrimSpace(c.Query("offset")); raw != "" {
		offset, err := strconv.Atoi(raw)
		if err != nil || offset < 0 {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "offset must be a non-negative integer"))
			return
		}
		filter.Offset = offset
	}

	assessments, err := h.repo.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	if assessments == nil {
		assessments = []models.Assessment{}
	}
	response.JSON(c, http.StatusOK, assessments)
}

// Get returns one stored assessment including its full result payload.
func (h *AssessmentHandler) Get(c *gin.Context) {
	if h.repo == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrInternal, "assessment storage is not configured"))
		return
	}
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	id := strings.TrimSpace(c.Param("id"))
	if id == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "id is required"))
		return
	}

	assessment, err := h.repo.GetByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			response.Error(c, appErrors.Clone(appErrors.ErrNotFound, "assessment not found"))
			return
		}
		response.Error(c, err)
		return
	}
	if assessment.ConsultantID != claims.UserID {
		response.Error(c, appErrors.Clone(appErrors.ErrNotFound, "assessment not found"))
		return
	}
	response.JSON(c, http.StatusOK, assessment)
}
