package main

import (
	"context"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"

	"colorizer-backend/internal/shared/middleware"
	"colorizer-backend/pkg/container"
)

func SetupRouter(c *container.Container) *gin.Engine {
	router := gin.New()

	// Global middlewares
	router.Use(
		middleware.Recovery(),
		middleware.RequestID(),
		middleware.Logger(),
		middleware.CORS(),
	)

	api := router.Group("/api")
	{
		// Health check
		api.GET("/health", healthCheckHandler(c))

		setupImageRoutes(api, c)
		setupPublicRoutes(api, c)
	}

	return router
}

// ========================================
// IMAGE ROUTES (session-scoped)
// ========================================
func setupImageRoutes(api *gin.RouterGroup, c *container.Container) {
	images := api.Group("/images", middleware.Session())
	{
		images.POST("", c.ImageHandler.Upload)
		images.GET("", c.ImageHandler.List)
		images.GET("/:id", c.ImageHandler.Get)
	}
}

// ========================================
// PUBLIC ROUTES (token-based, no session)
// ========================================
func setupPublicRoutes(api *gin.RouterGroup, c *container.Container) {
	api.GET("/public/:token", c.ImageHandler.GetPublic)
}

func healthCheckHandler(appCtx *container.Container) gin.HandlerFunc {
	return func(c *gin.Context) {
		health := gin.H{
			"status":    "ok",
			"timestamp": time.Now().Format(time.RFC3339),
			"version":   appCtx.Config.App.Version,
			"services":  gin.H{},
		}

		// Check database
		dbStatus := "ok"
		if appCtx.DB == nil || appCtx.DB.Pool == nil {
			dbStatus = "disconnected"
			health["status"] = "degraded"
		} else {
			ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
			defer cancel()

			if err := appCtx.DB.HealthCheck(ctx); err != nil {
				dbStatus = fmt.Sprintf("error: %v", err)
				health["status"] = "degraded"
			}
		}

		// Check redis
		redisStatus := "ok"
		if appCtx.Cache == nil {
			redisStatus = "disconnected"
		} else {
			ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
			defer cancel()

			if err := appCtx.Cache.Ping(ctx); err != nil {
				redisStatus = fmt.Sprintf("error: %v", err)
			}
		}

		health["services"] = gin.H{
			"database": dbStatus,
			"redis":    redisStatus,
		}

		c.JSON(200, health)
	}
}
