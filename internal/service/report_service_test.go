package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lmichaud/caq-advisor/internal/dto"
	"github.com/lmichaud/caq-advisor/internal/models"
	appErrors "github.com/lmichaud/caq-advisor/pkg/errors"
)

type stubGenerator struct {
	lastUserPrompt string
	reply          string
	err            error
}

func (s *stubGenerator) Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	s.lastUserPrompt = userPrompt
	if s.err != nil {
		return "", s.err
	}
	return s.reply, nil
}

type stubTimelineAnalyzer struct {
	result *models.TimelineAnalysisResult
}

func (s *stubTimelineAnalyzer) Analyze(ctx context.Context, consultantID string, req dto.TimelineAnalysisRequest) (*models.TimelineAnalysisResult, bool, error) {
	return s.result, false, nil
}

func TestReportServiceTimelineReport(t *testing.T) {
	generator := &stubGenerator{reply: "Rapport narratif."}
	analyzer := &stubTimelineAnalyzer{result: &models.TimelineAnalysisResult{
		Score:        75,
		GlobalStatus: models.TimelineAtRisk,
		AllAlerts: []models.Finding{
			{Severity: models.FindingError, Message: "Refus sans demande subséquente."},
		},
	}}
	svc := NewReportService(ReportServiceParams{
		Timelines: analyzer,
		Generator: generator,
		Enabled:   true,
	})

	resp, err := svc.TimelineReport(context.Background(), "user-1", dto.TimelineAnalysisRequest{})
	require.NoError(t, err)
	assert.Equal(t, "Rapport narratif.", resp.Report)
	assert.Equal(t, 75, resp.Result.Score)
	assert.True(t, strings.Contains(generator.lastUserPrompt, "75/100"))
	assert.True(t, strings.Contains(generator.lastUserPrompt, "Refus sans demande subséquente."))
}

func TestReportServiceDisabled(t *testing.T) {
	svc := NewReportService(ReportServiceParams{Enabled: false})

	_, err := svc.TimelineReport(context.Background(), "user-1", dto.TimelineAnalysisRequest{})
	require.Error(t, err)
	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, appErrors.ErrReportUnavailable.Code, appErr.Code)
}

func TestReportServiceGeneratorFailure(t *testing.T) {
	generator := &stubGenerator{err: errors.New("upstream timeout")}
	analyzer := &stubTimelineAnalyzer{result: &models.TimelineAnalysisResult{Score: 100, GlobalStatus: models.TimelineExemplary}}
	svc := NewReportService(ReportServiceParams{
		Timelines: analyzer,
		Generator: generator,
		Enabled:   true,
	})

	_, err := svc.TimelineReport(context.Background(), "user-1", dto.TimelineAnalysisRequest{})
	require.Error(t, err)
	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, appErrors.ErrReportUnavailable.Code, appErr.Code)
}
