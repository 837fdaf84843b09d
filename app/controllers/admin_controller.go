package controllers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/salary-parser/app/requests"
	"github.com/salary-parser/app/responses"
	"github.com/salary-parser/app/services"
	"go.uber.org/zap"
)

// AdminController serves cache, index and reporting endpoints.
type AdminController struct {
	adminService *services.AdminService
	postService  *services.PostService
	cacheService services.ICacheService
	environment  string
	logger       *zap.Logger
}

// NewAdminController creates an AdminController. cacheService may be nil.
func NewAdminController(adminService *services.AdminService, postService *services.PostService, cacheService services.ICacheService, environment string, logger *zap.Logger) *AdminController {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AdminController{
		adminService: adminService,
		postService:  postService,
		cacheService: cacheService,
		environment:  environment,
		logger:       logger,
	}
}

// InvalidateCache drops cached results produced by other tables versions.
// Without ?tables_version= the running version is kept.
func (ac *AdminController) InvalidateCache(c *gin.Context) {
	if ac.cacheService == nil {
		c.JSON(http.StatusServiceUnavailable, responses.ErrorResponse{
			Error:   "CACHE_UNAVAILABLE",
			Message: "no result cache configured",
		})
		return
	}

	version := c.Query("tables_version")
	if version == "" {
		version = ac.postService.Parser().TablesVersion()
	}

	startTime := time.Now()
	if err := ac.cacheService.InvalidateByTablesVersion(c.Request.Context(), version); err != nil {
		ac.logger.Error("cache invalidation failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, responses.ErrorResponse{
			Error:   "INVALIDATE_ERROR",
			Message: "cache invalidation failed: " + err.Error(),
		})
		return
	}

	processingTime := time.Since(startTime)
	ac.logger.Info("cache invalidated",
		zap.String("kept_version", version),
		zap.Duration("duration", processingTime))

	c.JSON(http.StatusOK, responses.SuccessResponse{
		Success: true,
		Message: "cache invalidated",
		Data: map[string]interface{}{
			"tables_version":     version,
			"processing_time_ms": processingTime.Milliseconds(),
		},
	})
}

// GetStats summarises the process, its caches and its collections.
func (ac *AdminController) GetStats(c *gin.Context) {
	stats, err := ac.adminService.GetSystemStats(c.Request.Context())
	if err != nil {
		ac.logger.Error("cannot collect stats", zap.Error(err))
		c.JSON(http.StatusInternalServerError, responses.ErrorResponse{
			Error:   "STATS_ERROR",
			Message: "cannot collect stats: " + err.Error(),
		})
		return
	}

	cacheStats := &services.CacheStats{}
	if ac.cacheService != nil {
		if cs, err := ac.cacheService.GetStats(c.Request.Context()); err != nil {
			ac.logger.Warn("cannot collect cache stats", zap.Error(err))
		} else {
			cacheStats = cs
		}
	}

	sources := ac.postService.Parser().Registry().IDs()

	c.JSON(http.StatusOK, responses.SystemStatsResponse{
		CacheHitRate:   cacheStats.HitRate,
		TablesVersion:  ac.postService.Parser().TablesVersion(),
		Sources:        sources,
		JobsTracked:    ac.postService.JobsTracked(),
		PostsProcessed: ac.postService.PostsProcessed(),
		SystemInfo: responses.SystemInfo{
			Version:     Version,
			Environment: ac.environment,
			Uptime:      stats.Uptime,
			MemoryUsage: stats.MemoryUsage,
		},
		DatabaseStats: responses.DatabaseStats{
			CanonicalRecords: stats.DatabaseStats.CanonicalRecords,
			ParseCache:       stats.DatabaseStats.ParseCache,
			UnmappedValues:   stats.DatabaseStats.UnmappedValues,
		},
	})
}

// ListUnmapped reports the most frequent phrases no normalizer recognised,
// the raw material for extending the phrase tables.
func (ac *AdminController) ListUnmapped(c *gin.Context) {
	var q requests.UnmappedQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		invalidRequest(c, err)
		return
	}

	values, err := ac.adminService.ListUnmapped(c.Request.Context(), q.Family, q.MinUsage, q.Limit)
	if err != nil {
		ac.logger.Error("cannot list unmapped values", zap.Error(err))
		c.JSON(http.StatusInternalServerError, responses.ErrorResponse{
			Error:   "UNMAPPED_ERROR",
			Message: "cannot list unmapped values: " + err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, responses.UnmappedListResponse{Values: values, Total: len(values)})
}

// BuildIndexes applies the search index settings. With ?source= the newest
// records of that source are pushed again (up to ?limit=, default 1000).
func (ac *AdminController) BuildIndexes(c *gin.Context) {
	startTime := time.Now()

	if err := ac.adminService.BuildIndexes(); err != nil {
		ac.indexError(c, err)
		return
	}

	data := map[string]interface{}{}
	if source := c.Query("source"); source != "" {
		limit := 1000
		if l, err := strconv.Atoi(c.Query("limit")); err == nil && l > 0 {
			limit = l
		}
		n, err := ac.adminService.ReindexSource(c.Request.Context(), source, limit)
		if err != nil {
			ac.indexError(c, err)
			return
		}
		data["source"] = source
		data["documents_indexed"] = n
	}

	processingTime := time.Since(startTime)
	ac.logger.Info("indexes built", zap.Duration("duration", processingTime))
	data["processing_time_ms"] = processingTime.Milliseconds()

	c.JSON(http.StatusOK, responses.SuccessResponse{
		Success: true,
		Message: "indexes built",
		Data:    data,
	})
}

func (ac *AdminController) indexError(c *gin.Context, err error) {
	if errors.Is(err, services.ErrIndexUnavailable) {
		c.JSON(http.StatusServiceUnavailable, responses.ErrorResponse{
			Error:   "INDEX_UNAVAILABLE",
			Message: err.Error(),
		})
		return
	}
	ac.logger.Error("index build failed", zap.Error(err))
	c.JSON(http.StatusInternalServerError, responses.ErrorResponse{
		Error:   "BUILD_ERROR",
		Message: "index build failed: " + err.Error(),
	})
}
