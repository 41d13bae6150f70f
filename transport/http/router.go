package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/BartekB-it/prawda-w-sieci-verifier/metrics"
	"github.com/BartekB-it/prawda-w-sieci-verifier/service"
)

// SetupRouter sets up the Gin router.
func SetupRouter(svc *service.VerifyService, m *metrics.Metrics) *gin.Engine {
	router := gin.Default()
	router.Use(MetricsMiddleware(m))

	handlers := NewVerifyHandlers(svc)

	api := router.Group("/api")
	{
		api.GET("/check-tls", handlers.CheckTLS)
		api.POST("/create-session", handlers.CreateSession)
		api.POST("/confirm-session", handlers.ConfirmSession)
		api.GET("/session-status", handlers.SessionStatus)
	}

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return router
}
