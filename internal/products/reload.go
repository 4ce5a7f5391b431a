package products

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Reloader drives repository loads for the process: the blocking load at
// startup, background reloads requested over HTTP and the final clear.
//
// At most one background read runs at a time. Triggers that arrive while a
// read is in progress are queued and served together by one more read that
// starts after the current one finishes, so every accepted trigger is
// followed by a read that began after it.
type Reloader struct {
	repo    *Repository
	src     Source
	log     *zap.Logger
	metrics *ReloadMetrics

	mu      sync.Mutex
	running bool
	pending []string
	wg      sync.WaitGroup
}

func NewReloader(repo *Repository, src Source, log *zap.Logger, metrics *ReloadMetrics) *Reloader {
	if log == nil {
		log = zap.NewNop()
	}
	return &Reloader{repo: repo, src: src, log: log, metrics: metrics}
}

func (l *Reloader) Source() Descriptor { return l.src.Descriptor() }

// Load reloads synchronously.
func (l *Reloader) Load(ctx context.Context) error {
	return l.load(ctx, l.log)
}

// Trigger queues a background reload and returns its id. The reload is
// detached from any request context.
func (l *Reloader) Trigger() string {
	id := uuid.NewString()

	l.mu.Lock()
	defer l.mu.Unlock()

	l.pending = append(l.pending, id)
	if l.running {
		l.log.Debug("reload queued behind the running one", zap.String("reload_id", id))
		return id
	}

	l.running = true
	l.wg.Add(1)
	go l.drain()

	return id
}

// Wait blocks until every triggered reload has finished.
func (l *Reloader) Wait() {
	l.wg.Wait()
}

func (l *Reloader) Clear() {
	l.repo.Clear()
	l.metrics.cleared()
	l.log.Info("product repository cleared")
}

func (l *Reloader) drain() {
	defer l.wg.Done()

	for {
		l.mu.Lock()
		ids := l.pending
		l.pending = nil
		if len(ids) == 0 {
			l.running = false
			l.mu.Unlock()
			return
		}
		l.mu.Unlock()

		_ = l.load(context.Background(), l.log.With(zap.Strings("reload_ids", ids)))
	}
}

func (l *Reloader) load(ctx context.Context, log *zap.Logger) error {
	d := l.src.Descriptor()
	log.Info("loading reviews",
		zap.String("kind", d.Kind),
		zap.String("filename", d.Filename),
		zap.String("table", d.Table),
		zap.String("version", d.Version),
	)

	start := time.Now()
	snap, err := l.repo.load(ctx, l.src)
	took := time.Since(start)

	if err != nil {
		l.metrics.observe(took, Stats{}, err)
		log.Error("loading reviews failed, keeping previous snapshot", zap.Error(err), zap.Duration("took", took))
		return err
	}

	stats := snap.stats()
	l.metrics.observe(took, stats, nil)
	log.Info("reviews loaded",
		zap.Int("reviews", stats.Reviews),
		zap.Int("products", stats.Products),
		zap.Duration("took", took),
	)
	return nil
}
