package workers

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/camden-git/familytreebackend/logger"
	"github.com/camden-git/familytreebackend/repository"
	"github.com/camden-git/familytreebackend/search"
)

// ErrStopped is returned by Run when the backfiller is stopped first.
var ErrStopped = errors.New("backfiller stopped")

type BackfillJob struct {
	Code string
}

// BackfillResult summarizes one Run.
type BackfillResult struct {
	Queued int
	Synced int64
	Failed int64
}

// IndexBackfiller builds search entries for people that have none, one
// transaction per person.
type IndexBackfiller struct {
	JobQueue chan BackfillJob
	DB       *gorm.DB
	Sync     *search.Synchronizer
	Wg       sync.WaitGroup
	StopChan chan struct{}
	Pending  map[string]bool
	Mutex    sync.Mutex

	inflight sync.WaitGroup
	synced   atomic.Int64
	failed   atomic.Int64
	stopOnce sync.Once
	log      zerolog.Logger
}

func NewIndexBackfiller(db *gorm.DB, sync *search.Synchronizer, queueSize, numWorkers int) *IndexBackfiller {
	if numWorkers <= 0 {
		numWorkers = 1
	}
	if queueSize <= 0 {
		queueSize = 100
	}

	b := &IndexBackfiller{
		JobQueue: make(chan BackfillJob, queueSize),
		DB:       db,
		Sync:     sync,
		StopChan: make(chan struct{}),
		Pending:  make(map[string]bool),
		log:      logger.Component("backfill"),
	}

	b.Wg.Add(numWorkers)
	for i := 0; i < numWorkers; i++ {
		go b.worker(i)
	}
	b.log.Info().Int("workers", numWorkers).Int("queue_size", queueSize).Msg("started search backfill workers")

	return b
}

func (b *IndexBackfiller) worker(id int) {
	defer b.Wg.Done()
	for {
		select {
		case job, ok := <-b.JobQueue:
			if !ok {
				b.log.Debug().Int("worker", id).Msg("job queue closed")
				return
			}
			b.processJob(job)
			b.Mutex.Lock()
			delete(b.Pending, job.Code)
			b.Mutex.Unlock()
			b.inflight.Done()

		case <-b.StopChan:
			b.log.Debug().Int("worker", id).Msg("stop signal received")
			return
		}
	}
}

func (b *IndexBackfiller) processJob(job BackfillJob) {
	if err := b.Sync.SyncCode(context.Background(), b.DB, job.Code); err != nil {
		b.failed.Add(1)
		b.log.Error().Err(err).Str("code", job.Code).Msg("failed to backfill search entry")
		return
	}
	b.synced.Add(1)
}

// enqueue blocks until the job is queued, ctx ends or the backfiller stops.
func (b *IndexBackfiller) enqueue(ctx context.Context, job BackfillJob) error {
	b.Mutex.Lock()
	if b.Pending[job.Code] {
		b.Mutex.Unlock()
		return nil
	}
	b.Pending[job.Code] = true
	b.Mutex.Unlock()

	b.inflight.Add(1)
	select {
	case b.JobQueue <- job:
		return nil
	case <-ctx.Done():
		b.inflight.Done()
		return ctx.Err()
	case <-b.StopChan:
		b.inflight.Done()
		return ErrStopped
	}
}

// Run queues every person without a search entry and waits until the
// queued jobs are done.
func (b *IndexBackfiller) Run(ctx context.Context) (BackfillResult, error) {
	var res BackfillResult
	codes, err := repository.NewGormRepositories(b.DB).Search.MissingCodes(ctx)
	if err != nil {
		return res, err
	}
	if len(codes) == 0 {
		b.log.Info().Msg("search index complete, nothing to backfill")
		return res, nil
	}

	startSynced, startFailed := b.synced.Load(), b.failed.Load()
	for _, code := range codes {
		if err := b.enqueue(ctx, BackfillJob{Code: code}); err != nil {
			return res, err
		}
		res.Queued++
	}

	done := make(chan struct{})
	go func() {
		b.inflight.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
		return res, ctx.Err()
	case <-b.StopChan:
		return res, ErrStopped
	}

	res.Synced = b.synced.Load() - startSynced
	res.Failed = b.failed.Load() - startFailed
	b.log.Info().Int("queued", res.Queued).Int64("synced", res.Synced).Int64("failed", res.Failed).Msg("search backfill finished")
	return res, nil
}

func (b *IndexBackfiller) Stop() {
	b.stopOnce.Do(func() {
		b.log.Info().Msg("stopping search backfill workers")
		close(b.StopChan)
		b.Wg.Wait()
	})
}
