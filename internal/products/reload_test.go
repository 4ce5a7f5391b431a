package products

import (
	"context"
	"errors"
	"slices"
	"sync/atomic"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// blockingSource parks every read until release is closed.
type blockingSource struct {
	stubSource
	started chan struct{}
	release chan struct{}
	once    atomic.Bool
}

func newBlockingSource(reviews []Review) *blockingSource {
	return &blockingSource{
		stubSource: stubSource{reviews: reviews},
		started:    make(chan struct{}),
		release:    make(chan struct{}),
	}
}

func (s *blockingSource) ReadReviews(ctx context.Context, limit int) ([]Review, error) {
	if s.once.CompareAndSwap(false, true) {
		close(s.started)
	}
	<-s.release
	return s.stubSource.ReadReviews(ctx, limit)
}

func TestReloader_LoadRecordsMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := NewReloadMetrics(reg)
	repo := NewRepository()
	src := &stubSource{reviews: reviewsFor("p1", 2, "p2", 1)}

	l := NewReloader(repo, src, zap.NewNop(), metrics)
	require.NoError(t, l.Load(context.Background()))

	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.Reloads.WithLabelValues(reloadOK)))
	assert.Equal(t, 2.0, testutil.ToFloat64(metrics.Products))
	assert.Equal(t, 3.0, testutil.ToFloat64(metrics.Reviews))

	src.err = errors.New("disk gone")
	require.ErrorIs(t, l.Load(context.Background()), ErrSourceUnavailable)

	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.Reloads.WithLabelValues(reloadFailed)))
	assert.Equal(t, 2.0, testutil.ToFloat64(metrics.Products), "failed reload keeps the served snapshot")
	assert.Equal(t, []string{"p1", "p2"}, repo.AvailableProducts())

	l.Clear()
	assert.Equal(t, 0.0, testutil.ToFloat64(metrics.Products))
	_, ok := repo.Stats()
	assert.False(t, ok)
}

func TestReloader_TriggerRunsInBackground(t *testing.T) {
	repo := NewRepository()
	src := newBlockingSource(reviewsFor("p1", 1))
	l := NewReloader(repo, src, nil, nil)

	id := l.Trigger()
	assert.NotEmpty(t, id)

	<-src.started
	assert.False(t, repo.HasProduct("p1"), "trigger must not wait for the load")

	close(src.release)
	l.Wait()
	assert.True(t, repo.HasProduct("p1"))
}

func TestReloader_TriggersQueueBehindRunningRead(t *testing.T) {
	repo := NewRepository()
	src := newBlockingSource(reviewsFor("p1", 1))
	l := NewReloader(repo, src, zap.NewNop(), nil)

	ids := []string{l.Trigger()}
	<-src.started
	for range 4 {
		ids = append(ids, l.Trigger())
	}

	close(src.release)
	l.Wait()

	assert.Equal(t, int32(2), src.calls.Load(), "queued triggers share one follow-up read")
	slices.Sort(ids)
	assert.Len(t, slices.Compact(ids), 5, "every trigger gets its own id")
	assert.True(t, repo.HasProduct("p1"))
}

func TestReloader_TriggerDuringReadLoadsNewerData(t *testing.T) {
	repo := NewRepository()
	src := newBlockingSource([]Review{review(1, "old", 3)})
	l := NewReloader(repo, src, zap.NewNop(), nil)

	l.Trigger()
	<-src.started

	// The running read already began; its result is stale.
	src.reviews = []Review{review(2, "new", 4)}
	l.Trigger()

	close(src.release)
	l.Wait()

	assert.Equal(t, []string{"new"}, repo.AvailableProducts())
}

func TestReloader_TriggerAfterIdleStartsNewRead(t *testing.T) {
	repo := NewRepository()
	src := &stubSource{reviews: reviewsFor("p1", 1)}
	l := NewReloader(repo, src, zap.NewNop(), nil)

	l.Trigger()
	l.Wait()
	src.reviews = reviewsFor("p2", 2)
	l.Trigger()
	l.Wait()

	assert.Equal(t, int32(2), src.calls.Load())
	assert.Equal(t, []string{"p2"}, repo.AvailableProducts())
}

func TestReloader_MetricsDescribeLoadedSnapshot(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := NewReloadMetrics(reg)
	repo := NewRepository()
	src := newBlockingSource(reviewsFor("p1", 2, "p2", 1))
	l := NewReloader(repo, src, zap.NewNop(), metrics)

	l.Trigger()
	<-src.started
	// Gauges follow the snapshot the read stored.
	l.Clear()
	close(src.release)
	l.Wait()

	assert.Equal(t, 2.0, testutil.ToFloat64(metrics.Products))
	assert.Equal(t, 3.0, testutil.ToFloat64(metrics.Reviews))
}

func TestReloader_TriggerFailureKeepsSnapshot(t *testing.T) {
	repo := NewRepository()
	src := &stubSource{reviews: reviewsFor("p1", 1)}
	l := NewReloader(repo, src, zap.NewNop(), nil)
	require.NoError(t, l.Load(context.Background()))

	src.err = errors.New("permission denied")
	l.Trigger()
	l.Wait()

	assert.Equal(t, []string{"p1"}, repo.AvailableProducts())
}
