package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/thermalytics/thermoinsights/backend/config"
	"github.com/thermalytics/thermoinsights/backend/middleware"
)

// NewRouter wires the middleware chain and the session API
func NewRouter(cfg *config.Config, sessions *SessionHandler) *gin.Engine {
	router := gin.New()

	router.Use(middleware.RequestID())
	router.Use(middleware.Recovery())
	router.Use(middleware.RequestLogger())
	router.Use(middleware.CORS())
	router.Use(middleware.NoStore())
	router.Use(middleware.RateLimit(cfg.RateLimit.Requests, cfg.RateLimit.Window()))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "ok",
			"timestamp": time.Now().Format(time.RFC3339),
		})
	})

	api := router.Group("/api")
	{
		api.POST("/sessions", sessions.Create)
	}

	protected := api.Group("/session")
	protected.Use(middleware.SessionAuth(&cfg.Session))
	{
		protected.GET("", sessions.Get)
		protected.PUT("/fields", sessions.UpdateFields)
		protected.POST("/file", sessions.UploadFile)
		protected.POST("/submit", sessions.Submit)
		protected.GET("/report", sessions.Report)
		protected.DELETE("", sessions.Delete)
	}

	return router
}
