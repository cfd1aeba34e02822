package api

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/wellfield/rigops/internal/auth"
	"github.com/wellfield/rigops/internal/config"
	"github.com/wellfield/rigops/internal/handler"
	"github.com/wellfield/rigops/internal/middleware"
)

// SetupRoutes registers all API routes. Health, readiness and the preset
// catalog are public; everything under /api/v1/dashboard requires a valid
// bearer token. The export endpoint is additionally rate limited because
// each request renders a full workbook.
func SetupRoutes(
	router *gin.Engine,
	cfg *config.Config,
	dashboard *handler.DashboardHandler,
	health *handler.HealthHandler,
	done <-chan struct{},
) {
	router.GET("/health", health.Health)
	router.GET("/ready", health.Ready)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := router.Group("/api/v1")
	v1.GET("/dashboard/presets", dashboard.GetPresets)

	protected := v1.Group("/dashboard")
	protected.Use(auth.Middleware(cfg.Service.JWTSecret))
	protected.GET("/snapshot", dashboard.GetSnapshot)
	protected.GET("/rigs", dashboard.GetRigPerformance)
	protected.GET("/top", dashboard.GetTopEntities)
	protected.GET("/alerts", dashboard.GetAlerts)

	exportWindow := time.Duration(cfg.Export.WindowSeconds) * time.Second
	protected.GET("/export",
		middleware.RateLimiter(cfg.Export.MaxPerMinute, exportWindow, done),
		dashboard.Export,
	)
}
