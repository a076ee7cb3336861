package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/lmichaud/caq-advisor/internal/dto"
	"github.com/lmichaud/caq-advisor/internal/middleware"
	"github.com/lmichaud/caq-advisor/internal/models"
)

type fakeDossierSrv struct {
	result  *models.DossierAnalysisResult
	hit     bool
	err     error
	lastReq dto.DossierEvaluationRequest
	lastUID string
}

func (f *fakeDossierSrv) Evaluate(_ context.Context, consultantID string, req dto.DossierEvaluationRequest) (*models.DossierAnalysisResult, bool, error) {
	f.lastUID = consultantID
	f.lastReq = req
	return f.result, f.hit, f.err
}

func TestDossierHandlerRequiresAuth(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewDossierHandler(&fakeDossierSrv{})

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodPost, "/dossier/evaluate", strings.NewReader(`{}`))

	handler.Evaluate(c)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestDossierHandlerRejectsMalformedBody(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewDossierHandler(&fakeDossierSrv{})

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodPost, "/dossier/evaluate", strings.NewReader(`{not json`))
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "consultant-1"})

	handler.Evaluate(c)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDossierHandlerSuccess(t *testing.T) {
	gin.SetMode(gin.TestMode)
	service := &fakeDossierSrv{
		result: &models.DossierAnalysisResult{Recommendation: models.RecommendationAcceptable},
		hit:    true,
	}
	handler := NewDossierHandler(service)

	body := `{"category":"ADULT_FIRST_VERIFIED","studyLevel":"Collégial","studyStartDate":"2025-09-01","studyEndDate":"2027-06-15"}`
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodPost, "/dossier/evaluate", strings.NewReader(body))
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "consultant-1"})

	handler.Evaluate(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "consultant-1", service.lastUID)
	assert.Equal(t, "ADULT_FIRST_VERIFIED", service.lastReq.Category)

	var envelope responseEnvelope
	_ = json.Unmarshal(rec.Body.Bytes(), &envelope)
	assert.Equal(t, true, envelope.Meta["cache_hit"])
	assert.Equal(t, string(models.RecommendationAcceptable), envelope.Data["recommendation"])
}

type responseEnvelope struct {
	Data map[string]interface{} `json:"data"`
	Meta map[string]interface{} `json:"meta"`
}
