// Package api is the development backend: a gin server speaking the
// storefront's REST endpoints over the repository layer.
package api

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/jerseyshop/storefront/internal/api/handlers"
	"github.com/jerseyshop/storefront/internal/api/middleware"
	"github.com/jerseyshop/storefront/internal/config"
	"github.com/jerseyshop/storefront/internal/repository"
)

// NewRouter creates and configures the Gin router
func NewRouter(cfg *config.Config, repos *repository.Repositories, logger *zap.Logger) *gin.Engine {
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// Middleware
	router.Use(customRecovery(logger))
	router.Use(loggingMiddleware(logger))

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	secret := cfg.MockBackend.JWTSecret
	authRequired := middleware.AuthMiddleware(secret, repos, logger)
	adminOnly := middleware.AdminOnly()

	api := router.Group("/api")
	{
		api.POST("/auth/signup", handlers.HandleSignUp(cfg, repos, logger))
		api.POST("/auth/signin", handlers.HandleSignIn(cfg, repos, logger))

		api.GET("/stock", handlers.HandleGetStock(repos, logger))
		api.PUT("/stock/:productId", authRequired, adminOnly, handlers.HandleSetStock(repos, logger))

		orders := api.Group("/orders")
		orders.Use(authRequired)
		{
			orders.POST("/create", middleware.IdempotencyMiddleware(repos, logger), handlers.HandleCreateOrder(repos, logger))
			orders.GET("/my-orders", handlers.HandleMyOrders(repos, logger))
			orders.DELETE("/:id", handlers.HandleCancelOrder(repos, logger))

			orders.GET("", adminOnly, handlers.HandleListOrders(repos, logger))
			orders.PATCH("/:id/status", adminOnly, handlers.HandleUpdateOrderStatus(repos, logger))
		}

		messages := api.Group("/messages")
		messages.Use(authRequired)
		{
			messages.GET("/my-messages", handlers.HandleMyMessages(repos, logger))
			messages.PATCH("/:id/read", handlers.HandleMarkMessageRead(repos, logger))

			messages.GET("", adminOnly, handlers.HandleListMessages(repos, logger))
			messages.POST("", adminOnly, handlers.HandleSendMessage(repos, logger))
			messages.POST("/broadcast", adminOnly, handlers.HandleBroadcast(repos, logger))
		}

		api.GET("/users", authRequired, adminOnly, handlers.HandleListUsers(repos, logger))
	}

	return router
}

// customRecovery is a custom recovery middleware that logs panics
func customRecovery(logger *zap.Logger) gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		logger.Error("Panic recovered",
			zap.Any("error", recovered),
			zap.String("path", c.Request.URL.Path),
			zap.String("method", c.Request.Method),
		)
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"message": "internal server error",
			"details": fmt.Sprintf("%v", recovered),
		})
	})
}

// loggingMiddleware logs HTTP requests
func loggingMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.Request.URL.Path
		method := c.Request.Method

		c.Next()

		status := c.Writer.Status()
		logger.Info("HTTP request",
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status", status),
		)
	}
}
