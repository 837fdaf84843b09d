// Package routes wires the HTTP surface.
//
//   - api.go: the /v1 API and health checks
//   - web.go: index and docs
//   - routes.go: middleware, metrics and SetupAllRoutes
package routes

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/salary-parser/app/responses"
	"go.uber.org/zap"
)

// SetupMetricsRoutes exposes Prometheus metrics.
func SetupMetricsRoutes(router *gin.Engine) {
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
}

// SetupAllRoutes installs middleware and every route group.
func SetupAllRoutes(router *gin.Engine, c Controllers, logger *zap.Logger) {
	setupMiddleware(router, logger)

	SetupWebRoutes(router)
	SetupHealthRoutes(router, c.Post)
	SetupAPIRoutes(router, c)
	SetupMetricsRoutes(router)

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, responses.ErrorResponse{
			Error:   "NOT_FOUND",
			Message: "route not found",
			Details: gin.H{"path": c.Request.URL.Path, "method": c.Request.Method},
		})
	})
}

func setupMiddleware(router *gin.Engine, logger *zap.Logger) {
	router.Use(gin.Recovery())
	router.Use(requestLogger(logger))
}

// requestLogger logs each request through zap instead of gin's stdout
// logger.
func requestLogger(logger *zap.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("client_ip", c.ClientIP()))
	}
}
