package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/salary-parser/app/controllers"
)

// Controllers groups the handlers the router needs.
type Controllers struct {
	Post     *controllers.PostController
	Location *controllers.LocationController
	Comment  *controllers.CommentController
	Admin    *controllers.AdminController
}

// SetupAPIRoutes registers the /v1 API. Admin routes are skipped when no
// admin controller is wired.
func SetupAPIRoutes(router *gin.Engine, c Controllers) {
	v1 := router.Group("/v1")
	{
		posts := v1.Group("/posts")
		{
			posts.POST("/parse", c.Post.ParsePost)
			posts.POST("/jobs", c.Post.BatchParse)
			posts.GET("/jobs/:jobID/status", c.Post.GetJobStatus)
			posts.GET("/jobs/:jobID/results", c.Post.GetJobResults)
			posts.POST("/sections", c.Post.DetectSections)
		}

		locations := v1.Group("/locations")
		{
			locations.GET("/suggest", c.Location.Suggest)
			locations.GET("/translate", c.Location.Translate)
		}

		v1.POST("/comments/tree", c.Comment.BuildTree)
		v1.GET("/sources", c.Post.ListSources)

		if c.Admin != nil {
			admin := v1.Group("/admin")
			{
				admin.POST("/cache/invalidate", c.Admin.InvalidateCache)
				admin.GET("/stats", c.Admin.GetStats)
				admin.GET("/unmapped", c.Admin.ListUnmapped)
				admin.POST("/indexes/build", c.Admin.BuildIndexes)
			}
		}

		v1.GET("/health", c.Post.HealthCheck)
	}
}

// SetupHealthRoutes registers the health endpoints.
func SetupHealthRoutes(router *gin.Engine, post *controllers.PostController) {
	router.GET("/health", post.HealthCheck)
	router.GET("/ready", post.HealthCheck)
	router.GET("/live", post.HealthCheck)
}
