package service

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/lmichaud/caq-advisor/internal/dto"
	"github.com/lmichaud/caq-advisor/internal/models"
	"github.com/lmichaud/caq-advisor/pkg/dates"
	appErrors "github.com/lmichaud/caq-advisor/pkg/errors"
)

type dossierEvaluator interface {
	Evaluate(ctx context.Context, consultantID string, req dto.DossierEvaluationRequest) (*models.DossierAnalysisResult, bool, error)
}

type timelineAnalyzer interface {
	Analyze(ctx context.Context, consultantID string, req dto.TimelineAnalysisRequest) (*models.TimelineAnalysisResult, bool, error)
}

type textGenerator interface {
	Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

const reportSystemPrompt = `Tu es un conseiller en immigration spécialisé dans le Certificat d'acceptation du Québec (CAQ) pour études.
À partir du bilan structuré fourni, rédige un rapport narratif en français destiné au candidat:
1) Un court paragraphe résumant l'état général du dossier.
2) Les points à corriger classés par gravité, avec les documents précis à fournir.
3) Les prochaines étapes recommandées.
Texte brut uniquement, pas de JSON ni de titres markdown. Utilise des tirets simples pour les listes.`

// ReportService turns analysis results into narrative consultant reports.
type ReportService struct {
	dossiers  dossierEvaluator
	timelines timelineAnalyzer
	generator textGenerator
	logger    *zap.Logger
	enabled   bool
}

// ReportServiceParams groups constructor dependencies.
type ReportServiceParams struct {
	Dossiers  dossierEvaluator
	Timelines timelineAnalyzer
	Generator textGenerator
	Logger    *zap.Logger
	Enabled   bool
}

// NewReportService constructs a ReportService.
func NewReportService(params ReportServiceParams) *ReportService {
	logger := params.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReportService{
		dossiers:  params.Dossiers,
		timelines: params.Timelines,
		generator: params.Generator,
		logger:    logger,
		enabled:   params.Enabled,
	}
}

// Enabled reports whether narrative generation is configured.
func (s *ReportService) Enabled() bool {
	return s != nil && s.enabled && s.generator != nil
}

// DossierReport evaluates the dossier and narrates the outcome.
func (s *ReportService) DossierReport(ctx context.Context, consultantID string, req dto.DossierEvaluationRequest) (*dto.DossierReportResponse, error) {
	if !s.Enabled() {
		return nil, appErrors.Clone(appErrors.ErrReportUnavailable, "report generation is disabled")
	}

	result, _, err := s.dossiers.Evaluate(ctx, consultantID, req)
	if err != nil {
		return nil, err
	}

	report, err := s.generator.Complete(ctx, reportSystemPrompt, dossierPrompt(result))
	if err != nil {
		s.logger.Warn("dossier report generation failed", zap.Error(err))
		return nil, appErrors.Wrap(err, appErrors.ErrReportUnavailable.Code, appErrors.ErrReportUnavailable.Status, "report generation failed")
	}

	return &dto.DossierReportResponse{Report: report, Result: result}, nil
}

// TimelineReport scores the timeline and narrates the outcome.
func (s *ReportService) TimelineReport(ctx context.Context, consultantID string, req dto.TimelineAnalysisRequest) (*dto.TimelineReportResponse, error) {
	if !s.Enabled() {
		return nil, appErrors.Clone(appErrors.ErrReportUnavailable, "report generation is disabled")
	}

	result, _, err := s.timelines.Analyze(ctx, consultantID, req)
	if err != nil {
		return nil, err
	}

	report, err := s.generator.Complete(ctx, reportSystemPrompt, timelinePrompt(result))
	if err != nil {
		s.logger.Warn("timeline report generation failed", zap.Error(err))
		return nil, appErrors.Wrap(err, appErrors.ErrReportUnavailable.Code, appErrors.ErrReportUnavailable.Status, "report generation failed")
	}

	return &dto.TimelineReportResponse{Report: report, Result: result}, nil
}

func dossierPrompt(result *models.DossierAnalysisResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Profil: %s — %s — %s\n", result.Summary.ProfileLabel, result.Summary.TypeLabel, result.Summary.LevelLabel)
	fmt.Fprintf(&b, "Recommandation: %s\n", result.Recommendation)
	fmt.Fprintf(&b, "Points bloquants: %d, points majeurs: %d sur %d contrôles\n",
		result.Summary.BlockingCount, result.Summary.MajorCount, result.Summary.TotalControls)
	if result.CAQWindowStart != nil && result.CAQWindowEnd != nil {
		fmt.Fprintf(&b, "Fenêtre de dépôt suggérée: du %s au %s\n",
			dates.FormatHuman(result.CAQWindowStart), dates.FormatHuman(result.CAQWindowEnd))
	}
	b.WriteString("Contrôles:\n")
	for _, control := range result.Controls {
		fmt.Fprintf(&b, "- [%s/%s] %s", control.Status, control.Severity, control.Label)
		if control.Note != "" {
			fmt.Fprintf(&b, " — %s", control.Note)
		}
		if control.LegalReference != "" {
			fmt.Fprintf(&b, " (%s)", control.LegalReference)
		}
		b.WriteString("\n")
	}
	return b.String()
}

func timelinePrompt(result *models.TimelineAnalysisResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Score de cohérence: %d/100 — statut %s\n", result.Score, result.GlobalStatus)
	b.WriteString("Constats:\n")
	if len(result.AllAlerts) == 0 {
		b.WriteString("- aucun constat, ligne du temps exemplaire\n")
	}
	for _, alert := range result.AllAlerts {
		fmt.Fprintf(&b, "- [%s] %s", alert.Severity, alert.Message)
		if alert.Date != nil {
			fmt.Fprintf(&b, " (%s)", dates.FormatHuman(alert.Date))
		}
		b.WriteString("\n")
	}
	return b.String()
}
