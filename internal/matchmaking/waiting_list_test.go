package matchmaking

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jason-s-yu/dsaduel/internal/models"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func entry(name string, joined time.Time) models.WaitingEntry {
	return models.WaitingEntry{Ticket: uuid.New(), Name: name, JoinedAt: joined.UTC()}
}

// testWaitingList runs the behaviour every WaitingList must share.
func testWaitingList(t *testing.T, newList func(t *testing.T) WaitingList) {
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Millisecond)

	t.Run("fifo", func(t *testing.T) {
		l := newList(t)
		a, b := entry("alice", now), entry("bob", now)
		require.NoError(t, l.Enqueue(ctx, a))
		require.NoError(t, l.Enqueue(ctx, b))

		n, err := l.Len(ctx)
		require.NoError(t, err)
		assert.Equal(t, 2, n)

		got, ok, err := l.PopOldest(ctx)
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, a.Ticket, got.Ticket)
		assert.Equal(t, "alice", got.Name)

		got, ok, err = l.PopOldest(ctx)
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, b.Ticket, got.Ticket)

		_, ok, err = l.PopOldest(ctx)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("requeue goes to head", func(t *testing.T) {
		l := newList(t)
		a, b := entry("alice", now), entry("bob", now)
		require.NoError(t, l.Enqueue(ctx, a))
		require.NoError(t, l.Enqueue(ctx, b))

		popped, _, err := l.PopOldest(ctx)
		require.NoError(t, err)
		require.NoError(t, l.Requeue(ctx, popped))

		got, _, err := l.PopOldest(ctx)
		require.NoError(t, err)
		assert.Equal(t, a.Ticket, got.Ticket)
	})

	t.Run("lookup", func(t *testing.T) {
		l := newList(t)
		a, b := entry("alice", now), entry("bob", now)
		require.NoError(t, l.Enqueue(ctx, a))
		require.NoError(t, l.Enqueue(ctx, b))

		tk, err := l.Lookup(ctx, b.Ticket)
		require.NoError(t, err)
		assert.Equal(t, models.TicketWaiting, tk.Status)
		assert.Equal(t, 2, tk.Position)

		popped, _, err := l.PopOldest(ctx)
		require.NoError(t, err)
		roomID := uuid.New()
		require.NoError(t, l.Resolve(ctx, popped.Ticket, roomID, now))

		tk, err = l.Lookup(ctx, a.Ticket)
		require.NoError(t, err)
		assert.Equal(t, models.TicketPaired, tk.Status)
		assert.Equal(t, roomID, tk.RoomID)

		tk, err = l.Lookup(ctx, b.Ticket)
		require.NoError(t, err)
		assert.Equal(t, 1, tk.Position)

		_, err = l.Lookup(ctx, uuid.New())
		assert.True(t, errors.Is(err, models.ErrTicketNotFound))
	})

	t.Run("popped entry stays answerable", func(t *testing.T) {
		l := newList(t)
		a := entry("alice", now)
		require.NoError(t, l.Enqueue(ctx, a))

		popped, ok, err := l.PopOldest(ctx)
		require.NoError(t, err)
		require.True(t, ok)

		tk, err := l.Lookup(ctx, a.Ticket)
		require.NoError(t, err, "a ticket being paired is not gone")
		assert.Equal(t, models.TicketWaiting, tk.Status)
		assert.Zero(t, tk.Position)

		require.NoError(t, l.Requeue(ctx, popped))
		tk, err = l.Lookup(ctx, a.Ticket)
		require.NoError(t, err)
		assert.Equal(t, 1, tk.Position)

		popped, _, err = l.PopOldest(ctx)
		require.NoError(t, err)
		roomID := uuid.New()
		require.NoError(t, l.Resolve(ctx, popped.Ticket, roomID, now))
		tk, err = l.Lookup(ctx, a.Ticket)
		require.NoError(t, err)
		assert.Equal(t, models.TicketPaired, tk.Status)
		assert.Equal(t, roomID, tk.RoomID)
	})

	t.Run("expire", func(t *testing.T) {
		l := newList(t)
		stale, fresh := entry("stale", now.Add(-time.Hour)), entry("fresh", now)
		require.NoError(t, l.Enqueue(ctx, stale))
		require.NoError(t, l.Enqueue(ctx, fresh))

		n, err := l.Expire(ctx, now.Add(-10*time.Minute), now.Add(-10*time.Minute))
		require.NoError(t, err)
		assert.Equal(t, 1, n)

		_, err = l.Lookup(ctx, stale.Ticket)
		assert.ErrorIs(t, err, models.ErrTicketNotFound)

		got, ok, err := l.PopOldest(ctx)
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, fresh.Ticket, got.Ticket)
	})
}

func TestMemoryList(t *testing.T) {
	testWaitingList(t, func(*testing.T) WaitingList { return NewMemoryList() })
}

func TestMemoryListExpiresOutcomes(t *testing.T) {
	ctx := context.Background()
	now := time.Now().UTC()
	l := NewMemoryList()
	ticket := uuid.New()
	require.NoError(t, l.Resolve(ctx, ticket, uuid.New(), now.Add(-time.Hour)))

	_, err := l.Expire(ctx, time.Time{}, now.Add(-time.Minute))
	require.NoError(t, err)
	_, err = l.Lookup(ctx, ticket)
	assert.ErrorIs(t, err, models.ErrTicketNotFound)
}

// TestRedisList needs a live Redis at TEST_REDIS_ADDR. Each subtest gets its own
// key prefix.
func TestRedisList(t *testing.T) {
	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("TEST_REDIS_ADDR not set")
	}
	rdb := redis.NewClient(&redis.Options{Addr: addr})
	t.Cleanup(func() { rdb.Close() })
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		t.Skipf("redis unavailable: %v", err)
	}

	testWaitingList(t, func(t *testing.T) WaitingList {
		prefix := "duel_test:" + uuid.NewString() + ":"
		t.Cleanup(func() {
			ctx := context.Background()
			keys, _ := rdb.Keys(ctx, prefix+"*").Result()
			if len(keys) > 0 {
				rdb.Del(ctx, keys...)
			}
		})
		return NewRedisList(rdb, prefix, time.Minute)
	})
}
