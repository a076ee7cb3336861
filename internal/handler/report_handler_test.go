package handler

import (
	"context"
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

type fakeReportSrv struct {
	enabled      bool
	dossierResp  *dto.DossierReportResponse
	timelineResp *dto.TimelineReportResponse
	err          error
}

func (f *fakeReportSrv) Enabled() bool { return f.enabled }

func (f *fakeReportSrv) DossierReport(context.Context, string, dto.DossierEvaluationRequest) (*dto.DossierReportResponse, error) {
	return f.dossierResp, f.err
}

func (f *fakeReportSrv) TimelineReport(context.Context, string, dto.TimelineAnalysisRequest) (*dto.TimelineReportResponse, error) {
	return f.timelineResp, f.err
}

func TestReportHandlerDisabled(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewReportHandler(&fakeReportSrv{enabled: false})

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodPost, "/reports/dossier", strings.NewReader(`{}`))
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "consultant-1"})

	handler.Dossier(c)

	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestReportHandlerTimelineSuccess(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewReportHandler(&fakeReportSrv{
		enabled:      true,
		timelineResp: &dto.TimelineReportResponse{Report: "Analyse favorable."},
	})

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodPost, "/reports/timeline", strings.NewReader(`{"events":[]}`))
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "consultant-1"})

	handler.Timeline(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Analyse favorable.")
}
