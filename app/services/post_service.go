package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/salary-parser/app/models"
	"github.com/salary-parser/app/requests"
	"github.com/salary-parser/internal/extractor"
	"github.com/salary-parser/internal/metrics"
	"github.com/salary-parser/internal/parser"
	"go.uber.org/zap"
)

// ErrJobNotFound is returned for an unknown job id.
var ErrJobNotFound = errors.New("job not found")

// Job states.
const (
	JobRunning = "running"
	JobDone    = "done"
)

// PostService parses posts for the HTTP API: single calls with an optional
// result cache, and background batch jobs tracked in memory.
type PostService struct {
	parser    *parser.PostParser
	cache     ICacheService
	logger    *zap.Logger
	startTime time.Time
	mu        sync.RWMutex

	jobs       map[string]*JobStatus
	jobResults map[string][]*models.ParseResult
	processed  int64
}

// JobStatus is the progress of one batch job.
type JobStatus struct {
	JobID              string
	Source             string
	Status             string
	Progress           float64
	Processed          int
	Failed             int
	Total              int
	EstimatedRemaining int
	Message            string
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// NewPostService creates the service. cache may be nil, which disables
// caching.
func NewPostService(p *parser.PostParser, cache ICacheService, logger *zap.Logger) *PostService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PostService{
		parser:     p,
		cache:      cache,
		logger:     logger,
		startTime:  time.Now(),
		jobs:       make(map[string]*JobStatus),
		jobResults: make(map[string][]*models.ParseResult),
	}
}

// Parser exposes the underlying pipeline.
func (ps *PostService) Parser() *parser.PostParser {
	return ps.parser
}

// ParsePost parses one body. With UseCache the result is looked up and
// stored by fingerprint; cache failures are logged and never fail the call.
func (ps *PostService) ParsePost(ctx context.Context, source, body string, opts requests.ParseOptions) (*models.ParseResult, bool, error) {
	useCache := opts.UseCache && ps.cache != nil
	var key string
	if useCache {
		key = ps.parser.Fingerprint(source, body)
		cached, found, err := ps.cache.Get(ctx, key)
		switch {
		case err != nil:
			metrics.CacheRequestsTotal.WithLabelValues("error").Inc()
			ps.logger.Warn("cache lookup failed", zap.Error(err), zap.String("key", key))
		case found:
			metrics.CacheRequestsTotal.WithLabelValues("hit").Inc()
			return cached, true, nil
		default:
			metrics.CacheRequestsTotal.WithLabelValues("miss").Inc()
		}
	}

	result, err := ps.parser.ParsePost(ctx, source, body)
	if err != nil {
		return nil, false, err
	}

	ps.mu.Lock()
	ps.processed++
	ps.mu.Unlock()

	if useCache {
		if err := ps.cache.Set(ctx, key, result); err != nil {
			ps.logger.Warn("cache store failed", zap.Error(err), zap.String("key", key))
		}
	}
	return result, false, nil
}

// DetectSections reports which section headings of source appear in body.
func (ps *PostService) DetectSections(source, body string) ([]extractor.SectionReport, error) {
	src, err := ps.parser.Source(source)
	if err != nil {
		return nil, err
	}
	return extractor.DetectSections(extractor.CleanBody(body), src), nil
}

// Sources lists the configured sources in table order.
func (ps *PostService) Sources() []*extractor.SourceConfig {
	return ps.parser.Registry().All()
}

// EstimateBatchProcessingTime returns a rough duration in seconds, at about
// 2ms per post.
func (ps *PostService) EstimateBatchProcessingTime(count int) int {
	return (count*2 + 999) / 1000
}

// StartBatchJob registers a job so its status is visible before processing
// begins.
func (ps *PostService) StartBatchJob(jobID, source string, total int) {
	now := time.Now()
	ps.mu.Lock()
	ps.jobs[jobID] = &JobStatus{
		JobID:     jobID,
		Source:    source,
		Status:    JobRunning,
		Total:     total,
		Message:   "processing",
		CreatedAt: now,
		UpdatedAt: now,
	}
	ps.mu.Unlock()
}

// ProcessBatchJob parses bodies in order and records progress. Failed items
// become failed results and the job goes on. When ctx is done the rest are
// marked failed.
func (ps *PostService) ProcessBatchJob(ctx context.Context, jobID, source string, bodies []string, opts requests.ParseOptions) {
	ps.mu.RLock()
	_, started := ps.jobs[jobID]
	ps.mu.RUnlock()
	if !started {
		ps.StartBatchJob(jobID, source, len(bodies))
	}

	metrics.JobsInFlight.Inc()
	defer metrics.JobsInFlight.Dec()

	start := time.Now()
	results := make([]*models.ParseResult, len(bodies))
	failed := 0
	for i, body := range bodies {
		var result *models.ParseResult
		if err := ctx.Err(); err != nil {
			result = models.FailedResult(source, fmt.Errorf("job stopped: %w", err))
		} else {
			var perr error
			result, _, perr = ps.ParsePost(ctx, source, body, opts)
			if perr != nil {
				ps.logger.Debug("job item failed",
					zap.String("job_id", jobID),
					zap.Int("index", i),
					zap.Error(perr))
				result = models.FailedResult(source, perr)
			}
		}
		if result.Status == models.StatusFailed {
			failed++
		}
		results[i] = result

		ps.mu.Lock()
		if job, exists := ps.jobs[jobID]; exists {
			job.Processed = i + 1
			job.Failed = failed
			job.Progress = float64(i+1) / float64(len(bodies))
			job.UpdatedAt = time.Now()
			perItem := time.Since(start) / time.Duration(i+1)
			job.EstimatedRemaining = int((perItem * time.Duration(len(bodies)-i-1)).Seconds())
		}
		ps.mu.Unlock()
	}

	ps.mu.Lock()
	ps.jobResults[jobID] = results
	if job, exists := ps.jobs[jobID]; exists {
		job.Status = JobDone
		job.Progress = 1
		job.EstimatedRemaining = 0
		job.Message = fmt.Sprintf("%d of %d posts failed", failed, len(bodies))
		job.UpdatedAt = time.Now()
	}
	ps.mu.Unlock()

	ps.logger.Info("batch job completed",
		zap.String("job_id", jobID),
		zap.String("source", source),
		zap.Int("total_posts", len(bodies)),
		zap.Int("failed", failed),
		zap.Duration("duration", time.Since(start)))
}

// GetJobStatus returns a snapshot of the job's progress.
func (ps *PostService) GetJobStatus(jobID string) (*JobStatus, error) {
	ps.mu.RLock()
	defer ps.mu.RUnlock()

	job, exists := ps.jobs[jobID]
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrJobNotFound, jobID)
	}
	snapshot := *job
	return &snapshot, nil
}

// GetJobResults returns the results of a finished job.
func (ps *PostService) GetJobResults(jobID string) ([]*models.ParseResult, error) {
	ps.mu.RLock()
	defer ps.mu.RUnlock()

	results, exists := ps.jobResults[jobID]
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrJobNotFound, jobID)
	}
	return results, nil
}

// GetJobResultsStream yields the results of a finished job one by one.
func (ps *PostService) GetJobResultsStream(jobID string) (<-chan *models.ParseResult, error) {
	results, err := ps.GetJobResults(jobID)
	if err != nil {
		return nil, err
	}

	resultChannel := make(chan *models.ParseResult, 100)
	go func() {
		defer close(resultChannel)
		for _, result := range results {
			resultChannel <- result
		}
	}()
	return resultChannel, nil
}

// GetStartTime returns when the service started.
func (ps *PostService) GetStartTime() time.Time {
	return ps.startTime
}

// CleanupFinishedJobs forgets finished jobs, and their results, last updated
// more than ttl ago. Running jobs are kept. It returns how many were dropped.
func (ps *PostService) CleanupFinishedJobs(ttl time.Duration) int {
	ps.mu.Lock()
	defer ps.mu.Unlock()

	dropped := 0
	for id, job := range ps.jobs {
		if job.Status != JobDone || time.Since(job.UpdatedAt) <= ttl {
			continue
		}
		delete(ps.jobs, id)
		delete(ps.jobResults, id)
		dropped++
	}
	return dropped
}

// StartJobCleanupWorker drops finished jobs older than ttl every interval
// until ctx is done.
func (ps *PostService) StartJobCleanupWorker(ctx context.Context, interval, ttl time.Duration) {
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if n := ps.CleanupFinishedJobs(ttl); n > 0 {
					ps.logger.Debug("finished jobs dropped", zap.Int("count", n))
				}
			}
		}
	}()
}

// JobsTracked counts jobs kept in memory, finished or not.
func (ps *PostService) JobsTracked() int {
	ps.mu.RLock()
	defer ps.mu.RUnlock()
	return len(ps.jobs)
}

// PostsProcessed counts posts parsed since start, cache hits excluded.
func (ps *PostService) PostsProcessed() int64 {
	ps.mu.RLock()
	defer ps.mu.RUnlock()
	return ps.processed
}
