package main

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/salary-parser/internal/feed"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrefetch_FailureDoesNotStopOtherSources(t *testing.T) {
	errFeed := errors.New("feed down")
	load := func(ctx context.Context, id string) ([]feed.Item, error) {
		if id == "broken" {
			return nil, errFeed
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		return []feed.Item{{ID: id + "-1"}}, nil
	}

	batches, errs := prefetch(context.Background(), []string{"broken", "besalary", "nlsalaris"}, 1, load)
	require.Len(t, batches, 3)
	require.Len(t, errs, 3)

	assert.ErrorIs(t, errs[0], errFeed)
	assert.Nil(t, batches[0])
	for i, id := range []string{"besalary", "nlsalaris"} {
		assert.NoError(t, errs[i+1], id)
		require.Len(t, batches[i+1], 1, id)
		assert.Equal(t, id+"-1", batches[i+1][0].ID)
	}
}

func TestPrefetch_HonoursParallelLimit(t *testing.T) {
	var running, peak atomic.Int32
	release := make(chan struct{})
	load := func(ctx context.Context, id string) ([]feed.Item, error) {
		n := running.Add(1)
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}
		<-release
		running.Add(-1)
		return nil, nil
	}

	done := make(chan struct{})
	go func() {
		prefetch(context.Background(), []string{"a", "b", "c", "d", "e"}, 2, load)
		close(done)
	}()
	close(release)
	<-done

	assert.LessOrEqual(t, peak.Load(), int32(2))
}

func TestPrefetch_ZeroParallelStillRuns(t *testing.T) {
	load := func(ctx context.Context, id string) ([]feed.Item, error) {
		return []feed.Item{{ID: id}}, nil
	}
	batches, errs := prefetch(context.Background(), []string{"a", "b"}, 0, load)
	assert.Equal(t, []error{nil, nil}, errs)
	assert.Equal(t, "b", batches[1][0].ID)
}
