package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/lmichaud/caq-advisor/internal/dto"
	"github.com/lmichaud/caq-advisor/internal/engine"
	"github.com/lmichaud/caq-advisor/internal/models"
	appErrors "github.com/lmichaud/caq-advisor/pkg/errors"
)

type assessmentWriter interface {
	Create(ctx context.Context, assessment *models.Assessment) error
}

// DossierService runs dossier evaluations and records their outcomes.
type DossierService struct {
	assessments assessmentWriter
	cache       *CacheService
	metrics     *MetricsService
	validator   *validator.Validate
	logger      *zap.Logger
	now         func() time.Time
	cacheTTL    time.Duration
}

// DossierServiceParams groups constructor dependencies.
type DossierServiceParams struct {
	Assessments assessmentWriter
	Cache       *CacheService
	Metrics     *MetricsService
	Validator   *validator.Validate
	Logger      *zap.Logger
	CacheTTL    time.Duration
}

// NewDossierService constructs a DossierService.
func NewDossierService(params DossierServiceParams) *DossierService {
	logger := params.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	validate := params.Validator
	if validate == nil {
		validate = validator.New()
	}
	return &DossierService{
		assessments: params.Assessments,
		cache:       params.Cache,
		metrics:     params.Metrics,
		validator:   validate,
		logger:      logger,
		now:         time.Now,
		cacheTTL:    params.CacheTTL,
	}
}

// Evaluate validates the request, runs the rule engine and returns the
// result, indicating whether it came from cache. Persisting the outcome is
// best effort and never fails the evaluation.
func (s *DossierService) Evaluate(ctx context.Context, consultantID string, req dto.DossierEvaluationRequest) (*models.DossierAnalysisResult, bool, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid dossier payload")
	}

	key := resultCacheKey("dossier", req)
	if key != "" {
		var cached models.DossierAnalysisResult
		if hit, _ := s.cache.Get(ctx, key, &cached); hit {
			return &cached, true, nil
		}
	}

	profile := req.ToProfile()
	start := time.Now()
	result := engine.Evaluate(profile, s.now())
	if s.metrics != nil {
		s.metrics.ObserveAnalysis("dossier", string(result.Recommendation), time.Since(start))
	}

	if key != "" {
		_ = s.cache.Set(ctx, key, result, s.cacheTTL)
	}

	s.record(ctx, consultantID, result)

	return result, false, nil
}

func (s *DossierService) record(ctx context.Context, consultantID string, result *models.DossierAnalysisResult) {
	if s.assessments == nil {
		return
	}
	payload, err := json.Marshal(result)
	if err != nil {
		s.logger.Warn("marshal dossier result for storage", zap.Error(err))
		return
	}
	assessment := &models.Assessment{
		ConsultantID:  consultantID,
		Kind:          models.AssessmentDossier,
		Outcome:       string(result.Recommendation),
		BlockingCount: result.Summary.BlockingCount,
		MajorCount:    result.Summary.MajorCount,
		Result:        payload,
	}
	if err := s.assessments.Create(ctx, assessment); err != nil {
		s.logger.Warn("persist dossier assessment", zap.Error(err))
	}
}

// resultCacheKey derives a deterministic cache key from the request payload.
// An unmarshalable payload disables caching for that call.
func resultCacheKey(prefix string, payload interface{}) string {
	raw, err := json.Marshal(payload)
	if err != nil {
		return ""
	}
	sum := sha256.Sum256(raw)
	return fmt.Sprintf("analysis:%s:%s", prefix, hex.EncodeToString(sum[:]))
}
