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
	"go.uber.org/zap"

	_ "github.com/noah-isme/swimlink-api/api/swagger"
	"github.com/noah-isme/swimlink-api/internal/handler"
	"github.com/noah-isme/swimlink-api/internal/middleware"
	"github.com/noah-isme/swimlink-api/internal/repository"
	"github.com/noah-isme/swimlink-api/internal/service"
	"github.com/noah-isme/swimlink-api/pkg/cache"
	"github.com/noah-isme/swimlink-api/pkg/config"
	"github.com/noah-isme/swimlink-api/pkg/database"
	"github.com/noah-isme/swimlink-api/pkg/logger"
)

// @title SwimLink API
// @version 1.0.0
// @description Swim course browsing, slot selection and enrollment requests.
// @BasePath /api/v1
// @schemes http https
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

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logr); err != nil {
		logr.Fatal("server failed", zap.Error(err))
	}
}

func run(ctx context.Context, cfg *config.Config, logr *zap.Logger) error {
	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.NewPostgres(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("connect postgres: %w", err)
	}
	defer db.Close()

	redisClient, err := cache.NewRedis(ctx, cfg.Redis)
	if err != nil {
		return fmt.Errorf("connect redis (enrollment sessions need it): %w", err)
	}
	cacheRepo := repository.NewCacheRepository(redisClient, logr)
	defer cacheRepo.Close() //nolint:errcheck

	validate := validator.New()
	metrics := service.NewMetricsService()

	courseRepo := repository.NewCourseRepository(db)
	requestRepo := repository.NewEnrollmentRequestRepository(db)
	sessionRepo := repository.NewSessionRepository(cacheRepo)

	cacheSvc := service.NewCacheService(cacheRepo, metrics, cfg.Availability.CacheTTL, logr, cfg.Availability.CacheEnabled)
	parser := service.NewAvailabilityParser(service.AvailabilityParserConfig{DefaultCapacity: cfg.Enrollment.DefaultCapacity}, logr)
	courseSvc := service.NewCourseService(courseRepo, parser, cacheSvc, metrics, validate, logr, cfg.Availability.CacheTTL)

	engine := service.NewSelectionEngine(service.SelectionLimits{
		MaxTotal:  cfg.Enrollment.MaxTotalSlots,
		MaxPerDay: cfg.Enrollment.MaxSlotsPerDay,
	})
	builder := service.NewEnrollmentRequestBuilder(time.Now, cfg.Enrollment.Location())
	sessionSvc := service.NewEnrollmentSessionService(sessionRepo, courseSvc, requestRepo, engine, builder, metrics, validate, logr,
		service.EnrollmentSessionConfig{SessionTTL: cfg.Enrollment.SessionTTL, SubmitLockTTL: cfg.Enrollment.SubmitLockTTL})
	requestSvc := service.NewEnrollmentRequestService(requestRepo, metrics, validate, logr)

	authSvc := service.NewAuthService(logr, service.AuthConfig{
		AccessTokenSecret: cfg.JWT.Secret,
		Issuer:            cfg.JWT.Issuer,
		Audience:          cfg.JWT.Audience,
	})

	var limiter *middleware.RateLimiter
	if cfg.RateLimit.Enabled {
		limiter = middleware.NewRateLimiter(cfg.RateLimit.RPS, cfg.RateLimit.Burst, logr)
		go limiter.Run(ctx.Done())
	}

	h := handlers{
		courses:  handler.NewCourseHandler(courseSvc),
		sessions: handler.NewEnrollmentSessionHandler(sessionSvc),
		requests: handler.NewEnrollmentRequestHandler(requestSvc),
		metrics: handler.NewMetricsHandler(metrics.Handler(), map[string]handler.HealthCheck{
			"postgres": db.PingContext,
			"redis": func(ctx context.Context) error {
				return redisClient.Ping(ctx).Err()
			},
		}, logr),
	}
	router := newRouter(cfg, logr, authSvc, metrics, limiter, h)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logr.Info("server starting", zap.String("addr", srv.Addr), zap.String("env", cfg.Env))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logr.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
