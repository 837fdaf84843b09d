package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/salary-parser/app/controllers"
)

// SetupWebRoutes serves the index and a short endpoint listing.
func SetupWebRoutes(router *gin.Engine) {
	web := router.Group("/")
	{
		web.GET("/", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{
				"message": "Salary Post Parser",
				"version": controllers.Version,
				"docs":    "/docs",
			})
		})

		web.GET("/docs", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{
				"api": "Salary Post Parser API v1",
				"endpoints": map[string]string{
					"parse":            "POST /v1/posts/parse",
					"batch":            "POST /v1/posts/jobs",
					"job_status":       "GET /v1/posts/jobs/:jobID/status",
					"job_results":      "GET /v1/posts/jobs/:jobID/results?format=ndjson&gzip=1",
					"sections":         "POST /v1/posts/sections",
					"sources":          "GET /v1/sources",
					"suggest":          "GET /v1/locations/suggest?q=&country=&locale=",
					"translate":        "GET /v1/locations/translate?name=&locale=",
					"comment_tree":     "POST /v1/comments/tree",
					"cache_invalidate": "POST /v1/admin/cache/invalidate",
					"stats":            "GET /v1/admin/stats",
					"unmapped":         "GET /v1/admin/unmapped",
					"build_indexes":    "POST /v1/admin/indexes/build",
					"metrics":          "GET /metrics",
					"health":           "GET /health",
				},
			})
		})
	}
}
