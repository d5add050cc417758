// Package historian drains resolved-match records from the Redis queue into
// durable storage and performs room housekeeping the engine leaves to an
// external worker.
package historian

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/codebattle/arena/internal/cache"
	"github.com/codebattle/arena/internal/models"
)

// FlushFunc persists one batch of history rows.
type FlushFunc func(ctx context.Context, entries []models.HistoryEntry) error

// SweepFunc marks rooms stuck in waiting since before the cutoff as
// abandoned, returning how many it touched.
type SweepFunc func(ctx context.Context, cutoff time.Time) (int64, error)

// Config tunes the service. Flush is required; Sweep is optional.
type Config struct {
	Redis  *redis.Client
	Queue  string
	Flush  FlushFunc
	Sweep  SweepFunc
	Logger *logrus.Logger

	BatchSize  int           // records per DB transaction
	FlushDelay time.Duration // max wait before a partial batch is flushed
	StaleAfter time.Duration // waiting-room age before the sweep flags it
	SweepEvery time.Duration
}

// Service batches queue records and flushes them transactionally. A second
// loop periodically sweeps abandoned waiting rooms.
type Service struct {
	rdb    *redis.Client
	queue  string
	flush  FlushFunc
	sweep  SweepFunc
	log    *logrus.Logger

	batchSize  int
	flushDelay time.Duration
	staleAfter time.Duration
	sweepEvery time.Duration

	batchMu sync.Mutex
	batch   []models.HistoryEntry

	ctx      context.Context
	cancelFn context.CancelFunc
	done     sync.WaitGroup
}

// New constructs a Service, filling unset knobs from environment variables or
// defaults.
func New(cfg Config) *Service {
	if cfg.Queue == "" {
		cfg.Queue = cache.QueueName()
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = getEnvInt("HISTORIAN_BATCH_SIZE", 20)
	}
	if cfg.FlushDelay <= 0 {
		cfg.FlushDelay = time.Duration(getEnvInt("HISTORIAN_FLUSH_MS", 500)) * time.Millisecond
	}
	if cfg.StaleAfter <= 0 {
		cfg.StaleAfter = time.Duration(getEnvInt("ROOM_STALE_TIMEOUT_SEC", 24*3600)) * time.Second
	}
	if cfg.SweepEvery <= 0 {
		cfg.SweepEvery = time.Minute
	}
	if cfg.Logger == nil {
		cfg.Logger = logrus.New()
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Service{
		rdb:        cfg.Redis,
		queue:      cfg.Queue,
		flush:      cfg.Flush,
		sweep:      cfg.Sweep,
		log:        cfg.Logger,
		batchSize:  cfg.BatchSize,
		flushDelay: cfg.FlushDelay,
		staleAfter: cfg.StaleAfter,
		sweepEvery: cfg.SweepEvery,
		batch:      make([]models.HistoryEntry, 0, cfg.BatchSize),
		ctx:        ctx,
		cancelFn:   cancel,
	}
}

// Run starts the drain, flush, and sweep loops and blocks until Stop is
// called.
func (s *Service) Run() {
	s.done.Add(2)
	go s.readQueueLoop()
	go s.flushLoop()
	if s.sweep != nil {
		s.done.Add(1)
		go s.sweepLoop()
	}

	s.log.WithField("queue", s.queue).Info("historian started")
	<-s.ctx.Done()
	s.done.Wait()
	s.flushBatch()
	s.log.Info("historian shut down")
}

// Stop cancels the loops; Run flushes the remaining batch before returning.
func (s *Service) Stop() {
	s.cancelFn()
}

// readQueueLoop only pops and accumulates; flushing runs in its own loop so
// a BLPop block on an idle queue never delays a partial-batch flush.
func (s *Service) readQueueLoop() {
	defer s.done.Done()

	for s.ctx.Err() == nil {
		// BLPop with a short timeout so cancellation is noticed.
		res, err := s.rdb.BLPop(s.ctx, 3*time.Second, s.queue).Result()
		if err != nil {
			if errors.Is(err, redis.Nil) || s.ctx.Err() != nil {
				continue
			}
			s.log.WithError(err).Error("BLPop failed")
			continue
		}
		if len(res) < 2 {
			continue
		}

		var rec cache.MatchRecord
		if err := json.Unmarshal([]byte(res[1]), &rec); err != nil {
			s.log.WithError(err).Warn("invalid match record on queue")
			continue
		}
		s.appendToBatch(rec.Entries)
	}
}

func (s *Service) flushLoop() {
	defer s.done.Done()
	ticker := time.NewTicker(s.flushDelay)
	defer ticker.Stop()

	for {
		select {
		case <-s.ctx.Done():
			return
		case <-ticker.C:
			s.flushBatch()
		}
	}
}

func (s *Service) appendToBatch(entries []models.HistoryEntry) {
	s.batchMu.Lock()
	s.batch = append(s.batch, entries...)
	full := len(s.batch) >= s.batchSize
	s.batchMu.Unlock()
	if full {
		s.flushBatch()
	}
}

func (s *Service) flushBatch() {
	s.batchMu.Lock()
	if len(s.batch) == 0 {
		s.batchMu.Unlock()
		return
	}
	batch := make([]models.HistoryEntry, len(s.batch))
	copy(batch, s.batch)
	s.batch = s.batch[:0]
	s.batchMu.Unlock()

	if err := s.flush(context.Background(), batch); err != nil {
		s.log.WithError(err).Error("history flush failed")
		// Re-queue in memory so the rows get another try next tick.
		s.batchMu.Lock()
		s.batch = append(batch, s.batch...)
		s.batchMu.Unlock()
		return
	}
	s.log.WithField("rows", len(batch)).Debug("flushed history batch")
}

func (s *Service) sweepLoop() {
	defer s.done.Done()
	ticker := time.NewTicker(s.sweepEvery)
	defer ticker.Stop()

	for {
		select {
		case <-s.ctx.Done():
			return
		case <-ticker.C:
			cutoff := time.Now().Add(-s.staleAfter)
			n, err := s.sweep(s.ctx, cutoff)
			if err != nil {
				s.log.WithError(err).Error("stale room sweep failed")
				continue
			}
			if n > 0 {
				s.log.WithField("rooms", n).Info("marked stale waiting rooms abandoned")
			}
		}
	}
}

func getEnvInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return i
}
