package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/lmichaud/caq-advisor/internal/dto"
	"github.com/lmichaud/caq-advisor/internal/models"
	"github.com/lmichaud/caq-advisor/internal/timeline"
	appErrors "github.com/lmichaud/caq-advisor/pkg/errors"
)

// TimelineService scores timelines and records their outcomes.
type TimelineService struct {
	assessments assessmentWriter
	cache       *CacheService
	metrics     *MetricsService
	validator   *validator.Validate
	logger      *zap.Logger
	now         func() time.Time
	cacheTTL    time.Duration
}

// TimelineServiceParams groups constructor dependencies.
type TimelineServiceParams struct {
	Assessments assessmentWriter
	Cache       *CacheService
	Metrics     *MetricsService
	Validator   *validator.Validate
	Logger      *zap.Logger
	CacheTTL    time.Duration
}

// NewTimelineService constructs a TimelineService.
func NewTimelineService(params TimelineServiceParams) *TimelineService {
	logger := params.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	validate := params.Validator
	if validate == nil {
		validate = validator.New()
	}
	return &TimelineService{
		assessments: params.Assessments,
		cache:       params.Cache,
		metrics:     params.Metrics,
		validator:   validate,
		logger:      logger,
		now:         time.Now,
		cacheTTL:    params.CacheTTL,
	}
}

// Analyze validates the request, scores the timeline and returns the result,
// indicating whether it came from cache. Persisting the outcome is best
// effort and never fails the analysis.
func (s *TimelineService) Analyze(ctx context.Context, consultantID string, req dto.TimelineAnalysisRequest) (*models.TimelineAnalysisResult, bool, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid timeline payload")
	}

	key := resultCacheKey("timeline", req)
	if key != "" {
		var cached models.TimelineAnalysisResult
		if hit, _ := s.cache.Get(ctx, key, &cached); hit {
			return &cached, true, nil
		}
	}

	events := req.ToEvents()
	start := time.Now()
	result := timeline.Analyze(events, s.now())
	if s.metrics != nil {
		s.metrics.ObserveAnalysis("timeline", string(result.GlobalStatus), time.Since(start))
	}

	if key != "" {
		_ = s.cache.Set(ctx, key, result, s.cacheTTL)
	}

	s.record(ctx, consultantID, result)

	return result, false, nil
}

func (s *TimelineService) record(ctx context.Context, consultantID string, result *models.TimelineAnalysisResult) {
	if s.assessments == nil {
		return
	}
	payload, err := json.Marshal(result)
	if err != nil {
		s.logger.Warn("marshal timeline result for storage", zap.Error(err))
		return
	}
	score := result.Score
	assessment := &models.Assessment{
		ConsultantID: consultantID,
		Kind:         models.AssessmentTimeline,
		Outcome:      string(result.GlobalStatus),
		Score:        &score,
		Result:       payload,
	}
	if err := s.assessments.Create(ctx, assessment); err != nil {
		s.logger.Warn("persist timeline assessment", zap.Error(err))
	}
}
