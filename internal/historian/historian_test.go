// internal/historian/historian_test.go
package historian

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memorySink struct {
	mu      sync.Mutex
	fail    bool
	batches [][]RoomEvent
}

func (s *memorySink) InsertEvents(_ context.Context, events []RoomEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail {
		return errors.New("insert failed")
	}
	s.batches = append(s.batches, append([]RoomEvent(nil), events...))
	return nil
}

func (s *memorySink) total() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, b := range s.batches {
		n += len(b)
	}
	return n
}

func newTestService(sink Sink, batchSize int) *Service {
	logger, _ := test.NewNullLogger()
	svc := NewService(nil, "duel_events_test", sink, logger)
	svc.BatchSize = batchSize
	return svc
}

func encode(t *testing.T, ev RoomEvent) string {
	t.Helper()
	data, err := json.Marshal(ev)
	require.NoError(t, err)
	return string(data)
}

func TestBatchFlushesWhenFull(t *testing.T) {
	sink := &memorySink{}
	svc := newTestService(sink, 3)
	ctx := context.Background()
	roomID := uuid.New()

	for i := 0; i < 2; i++ {
		svc.handle(ctx, encode(t, NewRoomEvent(roomID, EventMessageSent, "alice", map[string]any{"content": "hi"})))
	}
	assert.Equal(t, 2, svc.Pending())
	assert.Zero(t, sink.total())

	svc.handle(ctx, encode(t, NewRoomEvent(roomID, EventEditorSaved, "", nil)))
	assert.Zero(t, svc.Pending())
	require.Len(t, sink.batches, 1)
	assert.Len(t, sink.batches[0], 3)
	assert.Equal(t, EventEditorSaved, sink.batches[0][2].Type)
	assert.Equal(t, roomID, sink.batches[0][0].RoomID)
}

func TestInvalidPayloadSkipped(t *testing.T) {
	sink := &memorySink{}
	svc := newTestService(sink, 10)

	svc.handle(context.Background(), "{not json")
	assert.Zero(t, svc.Pending())
}

func TestFlushFailureKeepsBatch(t *testing.T) {
	sink := &memorySink{fail: true}
	svc := newTestService(sink, 10)
	ctx := context.Background()

	svc.handle(ctx, encode(t, NewRoomEvent(uuid.New(), EventRoomCreated, "bob", nil)))
	svc.Flush(ctx)
	assert.Equal(t, 1, svc.Pending(), "failed batch is retried on the next flush")

	sink.mu.Lock()
	sink.fail = false
	sink.mu.Unlock()
	svc.Flush(ctx)
	assert.Zero(t, svc.Pending())
	assert.Equal(t, 1, sink.total())
}

func TestNewRoomEventStampsTime(t *testing.T) {
	before := time.Now().UnixMilli()
	ev := NewRoomEvent(uuid.New(), EventRoomCreated, "alice", map[string]any{"question": "Two Sum"})
	assert.GreaterOrEqual(t, ev.Timestamp, before)

	data, err := json.Marshal(ev)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"event_type":"room_created"`)
}

// TestRedisRoundTrip needs a live Redis at TEST_REDIS_ADDR.
func TestRedisRoundTrip(t *testing.T) {
	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("TEST_REDIS_ADDR not set")
	}
	rdb := redis.NewClient(&redis.Options{Addr: addr})
	defer rdb.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		t.Skipf("redis unavailable: %v", err)
	}

	queue := "duel_events_test_" + uuid.NewString()
	defer rdb.Del(context.Background(), queue)

	pub := NewRedisPublisher(rdb, queue)
	require.NoError(t, pub.Publish(ctx, NewRoomEvent(uuid.New(), EventMessageSent, "alice", nil)))

	sink := &memorySink{}
	logger, _ := test.NewNullLogger()
	svc := NewService(rdb, queue, sink, logger)
	svc.FlushDelay = 50 * time.Millisecond

	runCtx, stop := context.WithCancel(ctx)
	done := make(chan error, 1)
	go func() { done <- svc.Run(runCtx) }()

	require.Eventually(t, func() bool { return sink.total() == 1 }, 4*time.Second, 50*time.Millisecond)
	stop()
	require.NoError(t, <-done)
}
