package main

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"github.com/noah-isme/swimlink-api/internal/handler"
	"github.com/noah-isme/swimlink-api/internal/middleware"
	"github.com/noah-isme/swimlink-api/internal/models"
	"github.com/noah-isme/swimlink-api/internal/service"
	"github.com/noah-isme/swimlink-api/pkg/config"
	"github.com/noah-isme/swimlink-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/swimlink-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/swimlink-api/pkg/middleware/requestid"
)

type handlers struct {
	courses  *handler.CourseHandler
	sessions *handler.EnrollmentSessionHandler
	requests *handler.EnrollmentRequestHandler
	metrics  *handler.MetricsHandler
}

func newRouter(cfg *config.Config, logr *zap.Logger, auth middleware.TokenValidator, metrics *service.MetricsService, limiter *middleware.RateLimiter, h handlers) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins, cfg.CORS.MaxAge))
	r.Use(middleware.Metrics(metrics))

	r.GET("/health", h.metrics.Health)
	r.GET("/ready", h.metrics.Ready)
	r.GET("/metrics", h.metrics.Prometheus)
	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	throttle := func(c *gin.Context) { c.Next() }
	if limiter != nil {
		throttle = limiter.Middleware()
	}

	api := r.Group(cfg.APIPrefix)

	public := api.Group("", middleware.OptionalJWT(auth), throttle)
	public.GET("/courses", h.courses.List)
	public.GET("/courses/:id", h.courses.Get)
	public.GET("/courses/:id/availability", h.courses.Availability)

	secured := api.Group("", middleware.JWT(auth), throttle)

	instructors := secured.Group("", middleware.RequireRoles(models.RoleInstructor))
	instructors.DELETE("/courses/:id/availability/cache", h.courses.RefreshAvailability)
	instructors.GET("/courses/:id/enrollment-requests/export", h.requests.Export)

	students := secured.Group("", middleware.RequireRoles(models.RoleStudent))
	students.POST("/courses/:id/enrollment-sessions", h.sessions.Start)
	students.GET("/enrollment-sessions/:sessionId", h.sessions.Get)
	students.POST("/enrollment-sessions/:sessionId/toggle", h.sessions.Toggle)
	students.DELETE("/enrollment-sessions/:sessionId/selection", h.sessions.Clear)
	students.POST("/enrollment-sessions/:sessionId/submit", h.sessions.Submit)
	students.DELETE("/enrollment-sessions/:sessionId", h.sessions.Close)

	members := secured.Group("", middleware.RequireRoles(models.RoleStudent, models.RoleInstructor))
	members.GET("/enrollment-requests", h.requests.List)
	members.GET("/enrollment-requests/:id", h.requests.Get)
	members.PATCH("/enrollment-requests/:id/status", h.requests.UpdateStatus)

	return r
}
