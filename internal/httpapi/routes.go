package httpapi

import (
	"log/slog"

	"github.com/gin-gonic/gin"

	"family-planner/internal/config"
	"family-planner/internal/identity"
)

// SetupRouter creates and configures the Gin router
func SetupRouter(cfg *config.Config, handler *Handler, resolver identity.Resolver, logger *slog.Logger) *gin.Engine {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// Global middleware
	router.Use(RecoveryMiddleware())
	router.Use(LoggerMiddleware(logger.With("component", "http")))
	router.Use(CORSMiddleware(cfg.Server.AllowedOrigins))

	router.GET("/health", handler.HealthCheck)
	router.GET("/metrics", handler.Metrics)
	if handler.webhook != nil {
		router.POST("/telegram/webhook", handler.TelegramWebhook)
	}

	// API v1 routes
	v1 := router.Group("/api/v1")
	v1.Use(RateLimitMiddleware(cfg.Server.RateLimitPerSec, cfg.Server.RateLimitBurst))
	v1.Use(AuthMiddleware(resolver))
	{
		list := v1.Group("/shopping/:week")
		{
			list.GET("", handler.GetShoppingList)
			list.POST("/sync", handler.SyncShoppingList)
			list.POST("/refresh", handler.SyncShoppingList)
			list.POST("/items", handler.AddItem)
			list.POST("/items/toggle", handler.ToggleItem)
			list.DELETE("/items", handler.DeleteItem)
		}

		plans := v1.Group("/plans/:week")
		{
			plans.GET("", handler.GetWeekPlan)
			plans.PUT("/slots", handler.AssignSlot)
		}
	}

	return router
}
