// internal/historian/service.go
package historian

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// Service drains room events from a Redis list and writes them to a Sink in
// batches. A batch is flushed when it reaches BatchSize or FlushDelay elapses.
type Service struct {
	rdb   *redis.Client
	queue string
	sink  Sink
	log   logrus.FieldLogger

	BatchSize  int
	FlushDelay time.Duration

	batchMu sync.Mutex
	batch   []RoomEvent
}

func NewService(rdb *redis.Client, queue string, sink Sink, logger logrus.FieldLogger) *Service {
	return &Service{
		rdb:        rdb,
		queue:      queue,
		sink:       sink,
		log:        logger,
		BatchSize:  20,
		FlushDelay: 500 * time.Millisecond,
	}
}

// Run pops events until ctx is cancelled, then flushes what is left.
func (s *Service) Run(ctx context.Context) error {
	s.log.WithField("queue", s.queue).Info("historian started")
	lastFlush := time.Now()

	for {
		if ctx.Err() != nil {
			// Flush with a fresh context: ctx is already done.
			flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			s.Flush(flushCtx)
			cancel()
			s.log.Info("historian shutting down")
			return nil
		}

		// BLPop with a short timeout so cancellation and periodic flushes are noticed.
		res, err := s.rdb.BLPop(ctx, time.Second, s.queue).Result()
		switch {
		case errors.Is(err, redis.Nil):
		case err != nil:
			if ctx.Err() == nil {
				s.log.WithError(err).Error("BLPop failed")
				time.Sleep(time.Second)
			}
		case len(res) == 2:
			// res[0] is the queue name and res[1] the payload.
			s.handle(ctx, res[1])
		}

		if time.Since(lastFlush) >= s.FlushDelay {
			s.Flush(ctx)
			lastFlush = time.Now()
		}
	}
}

func (s *Service) handle(ctx context.Context, payload string) {
	var ev RoomEvent
	if err := json.Unmarshal([]byte(payload), &ev); err != nil {
		s.log.WithError(err).Warn("invalid room event")
		return
	}
	s.appendToBatch(ctx, ev)
}

func (s *Service) appendToBatch(ctx context.Context, ev RoomEvent) {
	s.batchMu.Lock()
	s.batch = append(s.batch, ev)
	full := len(s.batch) >= s.BatchSize
	s.batchMu.Unlock()

	if full {
		s.Flush(ctx)
	}
}

// Flush writes the pending batch. On failure the events are put back so the
// next flush retries them.
func (s *Service) Flush(ctx context.Context) {
	s.batchMu.Lock()
	defer s.batchMu.Unlock()

	if len(s.batch) == 0 {
		return
	}
	pending := make([]RoomEvent, len(s.batch))
	copy(pending, s.batch)

	if err := s.sink.InsertEvents(ctx, pending); err != nil {
		s.log.WithError(err).WithField("count", len(pending)).Error("failed to flush room events")
		return
	}
	s.batch = s.batch[:0]
	s.log.WithField("count", len(pending)).Debug("flushed room events")
}

// Pending reports how many events wait for the next flush.
func (s *Service) Pending() int {
	s.batchMu.Lock()
	defer s.batchMu.Unlock()
	return len(s.batch)
}
