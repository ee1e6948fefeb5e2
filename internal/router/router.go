// internal/router/router.go
package router

import (
	"context"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"
	"gorm.io/gorm"

	"github.com/laihecha/tea-api/internal/config"
	"github.com/laihecha/tea-api/internal/handlers"
	"github.com/laihecha/tea-api/internal/middleware"
	"github.com/laihecha/tea-api/internal/services"
	"github.com/laihecha/tea-api/internal/utils"
)

// loginRate allows five admin login attempts per minute per IP.
var loginRate = rate.Every(12 * time.Second)

// Initialize wires services, handlers and middleware. Background janitors
// stop when ctx is cancelled.
func Initialize(ctx context.Context, db *gorm.DB, cfg *config.Config) (*gin.Engine, error) {
	storageService, err := services.NewStorageService(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	interactionService := services.NewInteractionService(db, services.SystemClock)
	teaService := services.NewTeaService(db, interactionService, services.SystemClock)
	dashboardService := services.NewDashboardService(db, teaService, services.SystemClock)
	importService := services.NewImportService(teaService)
	authService := services.NewAuthService(cfg)

	teaHandler := handlers.NewTeaHandler(teaService)
	interactionHandler := handlers.NewInteractionHandler(interactionService)
	authHandler := handlers.NewAuthHandler(authService)
	adminHandler := handlers.NewAdminHandler(teaService, storageService, importService, dashboardService)

	apiLimiter := middleware.NewRateLimiter("api", rate.Limit(cfg.RateLimit.RequestsPerSecond), cfg.RateLimit.Burst)
	loginLimiter := middleware.NewRateLimiter("login", loginRate, 5)
	go apiLimiter.Run(ctx)
	go loginLimiter.Run(ctx)

	r := gin.New()

	// Global middleware
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger())
	if cors := middleware.CORS(cfg.CORSOrigins); cors != nil {
		r.Use(cors)
	}
	r.Use(middleware.I18nMiddleware())

	r.GET("/health", func(c *gin.Context) {
		utils.OKResponse(c, nil)
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api")
	api.Use(apiLimiter.Middleware())
	{
		api.GET("/teas", teaHandler.ListTeas)
		api.GET("/teas/:id", teaHandler.GetTea)
		api.POST("/events", interactionHandler.RecordEvent)
		api.POST("/feedback", interactionHandler.SubmitFeedback)
		api.POST("/feedback/message", interactionHandler.SubmitMessage)

		admin := api.Group("/admin")
		{
			admin.POST("/login", loginLimiter.Middleware(), authHandler.Login)

			protected := admin.Group("")
			protected.Use(middleware.AdminRequired(authService))
			{
				protected.GET("/teas", adminHandler.ListTeas)
				protected.POST("/teas", adminHandler.CreateTea)
				protected.PUT("/teas/:id", adminHandler.UpdateTea)
				protected.DELETE("/teas/:id", adminHandler.DeleteTea)

				protected.POST("/upload", adminHandler.Upload)
				protected.POST("/import/excel", adminHandler.ImportExcel)
				protected.POST("/import/commit", adminHandler.ImportCommit)

				protected.GET("/dashboard/summary", adminHandler.DashboardSummary)
				protected.GET("/dashboard/rank", adminHandler.DashboardRank)
				protected.GET("/dashboard/trend", adminHandler.DashboardTrend)
			}
		}
	}

	// Uploaded covers are served by the API only when they live on local disk.
	if storageService.Local() {
		r.Static("/uploads", cfg.Upload.Dir)
	}

	return r, nil
}
