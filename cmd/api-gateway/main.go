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
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/grade-analytics-api/api/swagger"
	"github.com/noah-isme/grade-analytics-api/internal/handler"
	"github.com/noah-isme/grade-analytics-api/internal/middleware"
	"github.com/noah-isme/grade-analytics-api/internal/models"
	"github.com/noah-isme/grade-analytics-api/internal/repository"
	"github.com/noah-isme/grade-analytics-api/internal/service"
	"github.com/noah-isme/grade-analytics-api/pkg/cache"
	"github.com/noah-isme/grade-analytics-api/pkg/config"
	"github.com/noah-isme/grade-analytics-api/pkg/database"
	"github.com/noah-isme/grade-analytics-api/pkg/export"
	"github.com/noah-isme/grade-analytics-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/grade-analytics-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/grade-analytics-api/pkg/middleware/requestid"
	"github.com/noah-isme/grade-analytics-api/pkg/observability"
)

// @title Grade Analytics API
// @version 1.0.0
// @description Averages, timelines and year in review statistics over user grade books.
// @BasePath /api/v1
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

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

	flush, err := observability.InitSentry(cfg.Sentry.DSN, cfg.Env, cfg.Sentry.Release)
	if err != nil {
		logr.Warn("sentry disabled", zap.Error(err))
	}
	defer flush()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPostgres(ctx, cfg.Database)
	if err != nil {
		logr.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer db.Close() //nolint:errcheck

	redisClient, err := cache.NewRedis(ctx, cfg.Redis)
	if err != nil {
		logr.Warn("redis unavailable, analytics cache disabled", zap.Error(err))
	}
	cacheRepo := repository.NewCacheRepository(redisClient, logr)
	defer cacheRepo.Close() //nolint:errcheck

	metricsSvc := service.NewMetricsService()
	cacheSvc := service.NewCacheService(cacheRepo, metricsSvc, cfg.Analytics.CacheTTL, logr, cfg.Analytics.CacheEnabled && redisClient != nil)

	years := repository.NewYearRepository(db)
	subjects := repository.NewSubjectRepository(db)
	grades := repository.NewGradeRepository(db)
	users := repository.NewUserRepository(db)
	customs := repository.NewCustomAverageRepository(db)

	averageSvc := service.NewAverageService(years, subjects, grades, customs, cacheSvc, metricsSvc, logr)
	timelineSvc := service.NewTimelineService(users, grades, subjects, grades, service.TimelineConfig{
		DefaultDays: cfg.Timeline.DefaultDays,
		MaxDays:     cfg.Timeline.MaxDays,
	}, cacheSvc, metricsSvc, logr)
	reviewSvc := service.NewYearReviewService(grades, averageSvc, service.YearReviewConfig{
		From:        cfg.YearReview.From,
		To:          cfg.YearReview.To,
		WarmWorkers: cfg.YearReview.WarmWorkers,
		WarmRetries: cfg.YearReview.WarmRetries,
		RetryDelay:  time.Second,
	}, cacheSvc, metricsSvc, logr)
	adminSvc := service.NewAdminService(service.AdminRepositories{
		Users:         users,
		Years:         years,
		Subjects:      subjects,
		SubjectCounts: subjects,
		Grades:        grades,
		GradeCounts:   grades,
	}, timelineSvc, cfg.Analytics.AdminWorkers, cacheSvc, metricsSvc, logr)
	exportSvc := service.NewExportService(reviewSvc, timelineSvc, adminSvc, logr, export.NewCSVExporter(), export.NewPDFExporter(), export.NewXLSXExporter())
	tokenSvc := service.NewTokenService(service.TokenConfig{Secret: cfg.JWT.Secret, Issuer: cfg.JWT.Issuer})

	reviewSvc.Start(ctx)
	defer reviewSvc.Stop()

	validate := validator.New()
	averageHandler := handler.NewAverageHandler(averageSvc, cacheSvc)
	timelineHandler := handler.NewTimelineHandler(timelineSvc, validate)
	reviewHandler := handler.NewYearReviewHandler(reviewSvc, exportSvc)
	adminHandler := handler.NewAdminHandler(adminSvc, timelineSvc, exportSvc, reviewSvc, validate)
	metricsHandler := handler.NewMetricsHandler(metricsSvc, map[string]handler.Check{
		"postgres": db.PingContext,
		"redis":    cacheRepo.Ping,
	})

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", metricsHandler.Ready)
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix, middleware.WithResponseMeta(), middleware.JWT(tokenSvc))
	api.GET("/me/average", averageHandler.Me)
	api.POST("/me/analytics/refresh", averageHandler.Refresh)
	api.GET("/me/timeline", timelineHandler.Me)
	api.GET("/me/year-review", reviewHandler.Me)
	api.GET("/me/year-review.pdf", reviewHandler.PDF)
	api.GET("/years/:id/average", averageHandler.Year)
	api.GET("/years/:id/subjects/averages", averageHandler.YearSubjects)
	api.GET("/custom-averages/:id/average", averageHandler.Custom)

	admin := api.Group("/admin", middleware.RequireRoles(models.RoleAdmin))
	admin.GET("/overview", adminHandler.Overview)
	admin.GET("/overview.xlsx", middleware.Audit(logr, "export_overview"), adminHandler.OverviewXLSX)
	admin.GET("/growth", adminHandler.Growth)
	admin.GET("/growth.csv", middleware.Audit(logr, "export_growth"), adminHandler.GrowthCSV)
	admin.GET("/system", metricsHandler.System)
	admin.POST("/year-review/warm", middleware.Audit(logr, "warm_year_review"), adminHandler.WarmYearReview)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Errorw("server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Error("graceful shutdown failed", zap.Error(err))
	}
	logr.Info("server stopped")
}
