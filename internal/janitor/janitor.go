// internal/janitor/janitor.go
package janitor

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
)

// QueueExpirer drops stale waiting entries and pairing outcomes.
type QueueExpirer interface {
	Expire(ctx context.Context) (int, error)
}

// RoomReaper deletes rooms idle since cutoff.
type RoomReaper interface {
	DeleteIdle(ctx context.Context, cutoff time.Time) (int, error)
}

// Janitor periodically enforces the queue and room lifetimes.
type Janitor struct {
	Queue    QueueExpirer
	Rooms    RoomReaper
	RoomTTL  time.Duration // zero keeps rooms forever
	Interval time.Duration
	Log      logrus.FieldLogger
	Now      func() time.Time
}

// Run sweeps every Interval until ctx is cancelled. A zero Interval disables sweeping.
func (j *Janitor) Run(ctx context.Context) error {
	if j.Interval <= 0 {
		<-ctx.Done()
		return nil
	}
	ticker := time.NewTicker(j.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			j.Sweep(ctx)
		}
	}
}

// Sweep runs one expiry pass. Failures are logged and retried on the next tick.
func (j *Janitor) Sweep(ctx context.Context) {
	now := time.Now
	if j.Now != nil {
		now = j.Now
	}

	if j.Queue != nil {
		n, err := j.Queue.Expire(ctx)
		if err != nil {
			j.Log.WithError(err).Error("failed to expire waiting entries")
		} else if n > 0 {
			j.Log.WithField("count", n).Info("expired waiting entries")
		}
	}

	if j.Rooms != nil && j.RoomTTL > 0 {
		n, err := j.Rooms.DeleteIdle(ctx, now().UTC().Add(-j.RoomTTL))
		if err != nil {
			j.Log.WithError(err).Error("failed to delete idle rooms")
		} else if n > 0 {
			j.Log.WithField("count", n).Info("deleted idle rooms")
		}
	}
}
