package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/lmichaud/caq-advisor/internal/handler"
	"github.com/lmichaud/caq-advisor/internal/llm"
	"github.com/lmichaud/caq-advisor/internal/middleware"
	"github.com/lmichaud/caq-advisor/internal/repository"
	"github.com/lmichaud/caq-advisor/internal/service"
	"github.com/lmichaud/caq-advisor/pkg/cache"
	"github.com/lmichaud/caq-advisor/pkg/config"
	"github.com/lmichaud/caq-advisor/pkg/database"
	"github.com/lmichaud/caq-advisor/pkg/logger"
	corsmiddleware "github.com/lmichaud/caq-advisor/pkg/middleware/cors"
	reqidmiddleware "github.com/lmichaud/caq-advisor/pkg/middleware/requestid"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck
	sugar := logr.Sugar()

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		sugar.Warnw("postgres unavailable, assessment history disabled", "error", err)
		db = nil
	}
	if db != nil {
		defer db.Close() //nolint:errcheck
	}

	validate := validator.New()
	metricsSvc := service.NewMetricsService()

	var cacheSvc *service.CacheService
	if cfg.Cache.Enabled {
		redisClient, err := cache.NewRedis(cfg.Redis)
		if err != nil {
			sugar.Warnw("redis unavailable, result cache disabled", "error", err)
		} else {
			cacheRepo := repository.NewCacheRepository(redisClient, logr)
			cacheSvc = service.NewCacheService(cacheRepo, metricsSvc, cfg.Cache.TTL, logr, true)
			defer cacheRepo.Close() //nolint:errcheck
		}
	}

	var assessmentRepo *repository.AssessmentRepository
	var userRepo service.AuthUserRepository
	if db != nil {
		assessmentRepo = repository.NewAssessmentRepository(db)
		userRepo = repository.NewUserRepository(db)
	}

	authSvc := service.NewAuthService(userRepo, validate, logr, service.AuthConfig{
		Secret:     cfg.JWT.Secret,
		Expiration: cfg.JWT.Expiration,
		Issuer:     "caq-advisor",
	})

	dossierParams := service.DossierServiceParams{
		Cache:     cacheSvc,
		Metrics:   metricsSvc,
		Validator: validate,
		Logger:    logr,
		CacheTTL:  cfg.Cache.TTL,
	}
	timelineParams := service.TimelineServiceParams{
		Cache:     cacheSvc,
		Metrics:   metricsSvc,
		Validator: validate,
		Logger:    logr,
		CacheTTL:  cfg.Cache.TTL,
	}
	if assessmentRepo != nil {
		dossierParams.Assessments = assessmentRepo
		timelineParams.Assessments = assessmentRepo
	}
	dossierSvc := service.NewDossierService(dossierParams)
	timelineSvc := service.NewTimelineService(timelineParams)

	var generator *llm.Client
	if cfg.Reports.Enabled {
		generator = llm.NewClient(cfg.Reports, logr)
	}
	reportParams := service.ReportServiceParams{
		Dossiers:  dossierSvc,
		Timelines: timelineSvc,
		Logger:    logr,
		Enabled:   cfg.Reports.Enabled && generator != nil,
	}
	if generator != nil {
		reportParams.Generator = generator
	}
	reportSvc := service.NewReportService(reportParams)

	authHandler := handler.NewAuthHandler(authSvc)
	dossierHandler := handler.NewDossierHandler(dossierSvc)
	timelineHandler := handler.NewTimelineHandler(timelineSvc)
	reportHandler := handler.NewReportHandler(reportSvc)
	metricsHandler := handler.NewMetricsHandler(metricsSvc)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))
	r.Use(middleware.WithResponseMeta())

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", metricsHandler.Prometheus)

	api := r.Group(cfg.APIPrefix)
	api.POST("/auth/login", authHandler.Login)

	protected := api.Group("")
	protected.Use(middleware.JWT(authSvc))
	protected.GET("/auth/me", authHandler.Me)
	protected.POST("/dossier/evaluate", dossierHandler.Evaluate)
	protected.POST("/timeline/analyze", timelineHandler.Analyze)
	protected.POST("/reports/dossier", reportHandler.Dossier)
	protected.POST("/reports/timeline", reportHandler.Timeline)
	if assessmentRepo != nil {
		assessmentHandler := handler.NewAssessmentHandler(assessmentRepo)
		protected.GET("/assessments", assessmentHandler.List)
		protected.GET("/assessments/:id", assessmentHandler.Get)
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	server := &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		sugar.Infow("server starting", "addr", addr, "env", cfg.Env)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			sugar.Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	sugar.Infow("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		sugar.Errorw("graceful shutdown failed", "error", err)
	}
}
