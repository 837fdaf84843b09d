package controllers

import (
	"compress/gzip"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/salary-parser/app/config"
	"github.com/salary-parser/app/requests"
	"github.com/salary-parser/app/responses"
	"github.com/salary-parser/app/services"
	"github.com/salary-parser/helpers/utils"
	"github.com/salary-parser/internal/extractor"
	"github.com/salary-parser/internal/parser"
	"go.uber.org/zap"
)

// Version is reported by the health and docs endpoints.
const Version = "1.0.0"

// PostController serves post parsing and batch jobs.
type PostController struct {
	postService *services.PostService
	logger      *zap.Logger
}

// NewPostController creates a PostController.
func NewPostController(postService *services.PostService, logger *zap.Logger) *PostController {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PostController{postService: postService, logger: logger}
}

// parseError maps a parse failure to a status and error code.
func parseError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, extractor.ErrUnknownSource):
		c.JSON(http.StatusNotFound, responses.ErrorResponse{Error: "UNKNOWN_SOURCE", Message: err.Error()})
	case errors.Is(err, parser.ErrEmptyBody):
		c.JSON(http.StatusUnprocessableEntity, responses.ErrorResponse{Error: "EMPTY_BODY", Message: err.Error()})
	case errors.Is(err, context.DeadlineExceeded):
		c.JSON(http.StatusGatewayTimeout, responses.ErrorResponse{Error: "TIMEOUT", Message: "parsing took too long"})
	default:
		c.JSON(http.StatusInternalServerError, responses.ErrorResponse{Error: "PARSE_ERROR", Message: err.Error()})
	}
}

func invalidRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, responses.ErrorResponse{
		Error:   "INVALID_REQUEST",
		Message: "invalid request: " + err.Error(),
	})
}

// ParsePost parses a single post.
func (pc *PostController) ParsePost(c *gin.Context) {
	var req requests.ParsePostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidRequest(c, err)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), config.RequestTimeout())
	defer cancel()

	startTime := time.Now()
	result, cacheHit, err := pc.postService.ParsePost(ctx, req.Source, req.Body, req.Options)
	if err != nil {
		parseError(c, err)
		return
	}

	c.JSON(http.StatusOK, responses.ParsePostResponse{
		TablesVersion:    pc.postService.Parser().TablesVersion(),
		Result:           result,
		ProcessingTimeMs: time.Since(startTime).Milliseconds(),
		CacheHit:         cacheHit,
	})
}

// BatchParse queues a batch job and answers 202 with its id.
func (pc *PostController) BatchParse(c *gin.Context) {
	var req requests.BatchParseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidRequest(c, err)
		return
	}
	if max := config.C.MaxBatch; max > 0 && len(req.Bodies) > max {
		c.JSON(http.StatusBadRequest, responses.ErrorResponse{
			Error:   "TOO_MANY_POSTS",
			Message: fmt.Sprintf("a batch holds at most %d posts", max),
		})
		return
	}
	if _, err := pc.postService.Parser().Source(req.Source); err != nil {
		parseError(c, err)
		return
	}

	jobID := utils.GenerateUUID()
	pc.postService.StartBatchJob(jobID, req.Source, len(req.Bodies))

	// the job outlives the request
	go pc.postService.ProcessBatchJob(context.Background(), jobID, req.Source, req.Bodies, req.Options)

	c.JSON(http.StatusAccepted, responses.BatchParseResponse{
		JobID:            jobID,
		EstimatedSeconds: pc.postService.EstimateBatchProcessingTime(len(req.Bodies)),
		TotalPosts:       len(req.Bodies),
		Message:          "job queued",
	})
}

func (pc *PostController) jobNotFound(c *gin.Context, err error) {
	c.JSON(http.StatusNotFound, responses.ErrorResponse{
		Error:   "JOB_NOT_FOUND",
		Message: err.Error(),
	})
}

// GetJobStatus reports batch progress.
func (pc *PostController) GetJobStatus(c *gin.Context) {
	jobID := c.Param("jobID")
	status, err := pc.postService.GetJobStatus(jobID)
	if err != nil {
		pc.jobNotFound(c, err)
		return
	}

	c.JSON(http.StatusOK, responses.JobStatusResponse{
		JobID:              jobID,
		Status:             status.Status,
		Progress:           status.Progress,
		Processed:          status.Processed,
		Failed:             status.Failed,
		Total:              status.Total,
		EstimatedRemaining: status.EstimatedRemaining,
		Message:            status.Message,
	})
}

// GetJobResults returns the results of a finished job as JSON, or as
// NDJSON with ?format=ndjson (add gzip=1 to compress the stream).
func (pc *PostController) GetJobResults(c *gin.Context) {
	jobID := c.Param("jobID")

	status, err := pc.postService.GetJobStatus(jobID)
	if err != nil {
		pc.jobNotFound(c, err)
		return
	}
	if status.Status != services.JobDone {
		c.JSON(http.StatusConflict, responses.ErrorResponse{
			Error:   "JOB_RUNNING",
			Message: "job has not finished yet",
			Details: gin.H{"progress": status.Progress},
		})
		return
	}

	if c.Query("format") == "ndjson" {
		pc.streamNDJSONResults(c, jobID, c.Query("gzip") == "1")
		return
	}

	results, err := pc.postService.GetJobResults(jobID)
	if err != nil {
		pc.jobNotFound(c, err)
		return
	}

	c.JSON(http.StatusOK, responses.SuccessResponse{
		Success: true,
		Message: "job results",
		Data:    results,
	})
}

func (pc *PostController) streamNDJSONResults(c *gin.Context, jobID string, gzipEnabled bool) {
	resultChannel, err := pc.postService.GetJobResultsStream(jobID)
	if err != nil {
		pc.jobNotFound(c, err)
		return
	}

	c.Header("Content-Type", "application/x-ndjson")
	var writer gin.ResponseWriter = c.Writer
	if gzipEnabled {
		c.Header("Content-Encoding", "gzip")
		gzWriter := gzip.NewWriter(c.Writer)
		defer gzWriter.Close()
		writer = &gzipResponseWriter{ResponseWriter: c.Writer, gzWriter: gzWriter}
	}
	c.Status(http.StatusOK)

	encoder := json.NewEncoder(writer)
	for result := range resultChannel {
		if err := encoder.Encode(result); err != nil {
			pc.logger.Error("cannot encode ndjson result", zap.Error(err), zap.String("job_id", jobID))
			// drain so the producer goroutine exits
			for range resultChannel {
			}
			return
		}
		writer.Flush()
	}
}

type gzipResponseWriter struct {
	gin.ResponseWriter
	gzWriter *gzip.Writer
}

func (w *gzipResponseWriter) Write(data []byte) (int, error) {
	return w.gzWriter.Write(data)
}

func (w *gzipResponseWriter) Flush() {
	w.gzWriter.Flush()
	w.ResponseWriter.Flush()
}

// DetectSections reports which template headings a body carries.
func (pc *PostController) DetectSections(c *gin.Context) {
	var req requests.SectionsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidRequest(c, err)
		return
	}

	sections, err := pc.postService.DetectSections(req.Source, req.Body)
	if err != nil {
		parseError(c, err)
		return
	}
	c.JSON(http.StatusOK, responses.SectionsResponse{Source: req.Source, Sections: sections})
}

// ListSources describes the configured sources.
func (pc *PostController) ListSources(c *gin.Context) {
	sources := pc.postService.Sources()
	out := make([]responses.SourceInfo, 0, len(sources))
	for _, s := range sources {
		out = append(out, responses.SourceInfo{
			ID:       s.ID,
			Origin:   s.OriginLabel,
			Country:  s.CountryTag,
			Currency: s.CurrencyTag,
			FeedURL:  s.FeedURL,
			Sections: s.Sections,
			Fields:   s.FieldNames(),
		})
	}
	c.JSON(http.StatusOK, out)
}

// HealthCheck reports liveness.
func (pc *PostController) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, responses.HealthCheckResponse{
		Status:    "healthy",
		Timestamp: time.Now().Format(time.RFC3339),
		Uptime:    time.Since(pc.postService.GetStartTime()).String(),
		Version:   Version,
		Services: map[string]string{
			"parser":         "healthy",
			"tables_version": pc.postService.Parser().TablesVersion(),
		},
	})
}
