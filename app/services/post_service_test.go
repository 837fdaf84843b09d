package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/salary-parser/app/models"
	"github.com/salary-parser/app/requests"
	"github.com/salary-parser/internal/extractor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostService_ParsePostUsesCache(t *testing.T) {
	ctx := context.Background()
	cache := NewCacheService(0)
	ps := NewPostService(newTestParser(t), cache, nil)
	opts := requests.ParseOptions{UseCache: true}

	first, hit, err := ps.ParsePost(ctx, "besalary", samplePost, opts)
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Equal(t, models.StatusParsed, first.Status)

	second, hit, err := ps.ParsePost(ctx, "besalary", samplePost, opts)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, first.Fingerprint, second.Fingerprint)
	assert.Equal(t, 1, cache.Size())
}

func TestPostService_ParsePostWithoutCache(t *testing.T) {
	ps := NewPostService(newTestParser(t), nil, nil)

	_, hit, err := ps.ParsePost(context.Background(), "besalary", samplePost, requests.ParseOptions{UseCache: true})
	require.NoError(t, err)
	assert.False(t, hit)

	_, _, err = ps.ParsePost(context.Background(), "nope", samplePost, requests.ParseOptions{})
	assert.True(t, errors.Is(err, extractor.ErrUnknownSource))
}

func TestPostService_BatchJob(t *testing.T) {
	ps := NewPostService(newTestParser(t), nil, nil)

	ps.StartBatchJob("job-1", "besalary", 3)
	status, err := ps.GetJobStatus("job-1")
	require.NoError(t, err)
	assert.Equal(t, JobRunning, status.Status)

	ps.ProcessBatchJob(context.Background(), "job-1", "besalary", []string{samplePost, "", "Age: 40"}, requests.ParseOptions{})

	status, err = ps.GetJobStatus("job-1")
	require.NoError(t, err)
	assert.Equal(t, JobDone, status.Status)
	assert.Equal(t, 3, status.Processed)
	assert.Equal(t, 1, status.Failed)
	assert.Equal(t, 1.0, status.Progress)

	results, err := ps.GetJobResults("job-1")
	require.NoError(t, err)
	require.Len(t, results, 3)
	assert.Equal(t, models.StatusFailed, results[1].Status)

	stream, err := ps.GetJobResultsStream("job-1")
	require.NoError(t, err)
	n := 0
	for range stream {
		n++
	}
	assert.Equal(t, 3, n)

	assert.Equal(t, 1, ps.JobsTracked())
	assert.Equal(t, int64(2), ps.PostsProcessed())
}

func TestPostService_BatchJobStoppedByContext(t *testing.T) {
	ps := NewPostService(newTestParser(t), nil, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	ps.ProcessBatchJob(ctx, "job-2", "besalary", []string{samplePost, samplePost}, requests.ParseOptions{})

	results, err := ps.GetJobResults("job-2")
	require.NoError(t, err)
	for _, r := range results {
		assert.Equal(t, models.StatusFailed, r.Status)
		assert.Contains(t, r.Error, "job stopped")
	}
}

func TestPostService_CleanupFinishedJobs(t *testing.T) {
	ps := NewPostService(newTestParser(t), nil, nil)

	ps.ProcessBatchJob(context.Background(), "old", "besalary", []string{samplePost}, requests.ParseOptions{})
	ps.ProcessBatchJob(context.Background(), "fresh", "besalary", []string{samplePost}, requests.ParseOptions{})
	ps.StartBatchJob("running", "besalary", 10)

	ps.mu.Lock()
	ps.jobs["old"].UpdatedAt = time.Now().Add(-2 * time.Hour)
	ps.jobs["running"].UpdatedAt = time.Now().Add(-2 * time.Hour)
	ps.mu.Unlock()

	assert.Equal(t, 1, ps.CleanupFinishedJobs(time.Hour))
	assert.Equal(t, 2, ps.JobsTracked())

	_, err := ps.GetJobStatus("old")
	assert.ErrorIs(t, err, ErrJobNotFound)
	_, err = ps.GetJobResults("old")
	assert.ErrorIs(t, err, ErrJobNotFound)

	_, err = ps.GetJobResults("fresh")
	assert.NoError(t, err)
	status, err := ps.GetJobStatus("running")
	require.NoError(t, err)
	assert.Equal(t, JobRunning, status.Status)
}

func TestPostService_JobCleanupWorker(t *testing.T) {
	ps := NewPostService(newTestParser(t), nil, nil)
	ps.ProcessBatchJob(context.Background(), "done", "besalary", []string{samplePost}, requests.ParseOptions{})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	ps.StartJobCleanupWorker(ctx, 10*time.Millisecond, 0)

	assert.Eventually(t, func() bool { return ps.JobsTracked() == 0 }, time.Second, 10*time.Millisecond)
}

func TestPostService_UnknownJob(t *testing.T) {
	ps := NewPostService(newTestParser(t), nil, nil)

	_, err := ps.GetJobStatus("missing")
	assert.True(t, errors.Is(err, ErrJobNotFound))
	_, err = ps.GetJobResults("missing")
	assert.True(t, errors.Is(err, ErrJobNotFound))
}

func TestPostService_DetectSections(t *testing.T) {
	ps := NewPostService(newTestParser(t), nil, nil)

	sections, err := ps.DetectSections("BESalary", samplePost)
	require.NoError(t, err)

	found := map[string]bool{}
	for _, s := range sections {
		found[s.Title] = s.Found
	}
	assert.True(t, found["PERSONALIA"])
	assert.True(t, found["SALARY"])
	assert.False(t, found["MOBILITY"])
}

func TestPostService_EstimateBatchProcessingTime(t *testing.T) {
	ps := NewPostService(newTestParser(t), nil, nil)
	assert.Equal(t, 0, ps.EstimateBatchProcessingTime(0))
	assert.Equal(t, 1, ps.EstimateBatchProcessingTime(1))
	assert.Equal(t, 10, ps.EstimateBatchProcessingTime(5000))
}
