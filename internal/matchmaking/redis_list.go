// internal/matchmaking/redis_list.go
package matchmaking

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jason-s-yu/dsaduel/internal/models"
	"github.com/redis/go-redis/v9"
)

// RedisList is a WaitingList backed by a Redis list, so several API processes can
// share one queue. LPOP hands each entry to exactly one popper.
//
// Keys (all under prefix):
//
//	waiting          list of JSON WaitingEntry, oldest at the head
//	entry:<ticket>   the exact JSON stored in the list, for lookup and removal;
//	                 kept while a popped entry is being paired
//	outcome:<ticket> room id of a paired ticket, with a TTL
type RedisList struct {
	rdb        *redis.Client
	prefix     string
	outcomeTTL time.Duration

	// PairingTTL bounds how long a popped entry's key survives if its pairing
	// never resolves or requeues (a crashed process).
	PairingTTL time.Duration
}

// NewRedisList returns a list using rdb. Outcomes expire after outcomeTTL.
func NewRedisList(rdb *redis.Client, prefix string, outcomeTTL time.Duration) *RedisList {
	return &RedisList{rdb: rdb, prefix: prefix, outcomeTTL: outcomeTTL, PairingTTL: time.Minute}
}

// popScript pops the head and puts a TTL on its entry key in one step, so a
// popped entry can never lose its key without also leaving the list.
var popScript = redis.NewScript(`
local raw = redis.call('LPOP', KEYS[1])
if not raw then
	return false
end
local entry = cjson.decode(raw)
redis.call('EXPIRE', ARGV[1] .. entry.ticket, ARGV[2])
return raw
`)

func (l *RedisList) listKey() string { return l.prefix + "waiting" }

func (l *RedisList) entryKey(ticket uuid.UUID) string { return l.prefix + "entry:" + ticket.String() }

func (l *RedisList) outcomeKey(ticket uuid.UUID) string { return l.prefix + "outcome:" + ticket.String() }

func (l *RedisList) Enqueue(ctx context.Context, entry models.WaitingEntry) error {
	raw, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to marshal WaitingEntry: %w", err)
	}
	_, err = l.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.RPush(ctx, l.listKey(), raw)
		pipe.Set(ctx, l.entryKey(entry.Ticket), raw, 0)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to enqueue ticket %s: %w", entry.Ticket, err)
	}
	return nil
}

func (l *RedisList) PopOldest(ctx context.Context) (models.WaitingEntry, bool, error) {
	ttl := int64(l.PairingTTL / time.Second)
	if ttl < 1 {
		ttl = 1
	}
	raw, err := popScript.Run(ctx, l.rdb, []string{l.listKey()}, l.prefix+"entry:", ttl).Text()
	if errors.Is(err, redis.Nil) {
		return models.WaitingEntry{}, false, nil
	}
	if err != nil {
		return models.WaitingEntry{}, false, fmt.Errorf("failed to pop '%s': %w", l.listKey(), err)
	}
	var entry models.WaitingEntry
	if err := json.Unmarshal([]byte(raw), &entry); err != nil {
		return models.WaitingEntry{}, false, fmt.Errorf("invalid waiting entry %q: %w", raw, err)
	}
	return entry, true, nil
}

func (l *RedisList) Requeue(ctx context.Context, entry models.WaitingEntry) error {
	raw, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to marshal WaitingEntry: %w", err)
	}
	_, err = l.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.LPush(ctx, l.listKey(), raw)
		pipe.Set(ctx, l.entryKey(entry.Ticket), raw, 0)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to requeue ticket %s: %w", entry.Ticket, err)
	}
	return nil
}

// Resolve records the outcome and drops the entry key in one transaction, so a
// ticket is always either pending or paired to Lookup.
func (l *RedisList) Resolve(ctx context.Context, ticket, roomID uuid.UUID, _ time.Time) error {
	_, err := l.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, l.outcomeKey(ticket), roomID.String(), l.outcomeTTL)
		pipe.Del(ctx, l.entryKey(ticket))
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to record outcome for ticket %s: %w", ticket, err)
	}
	return nil
}

// Lookup reads the entry key before the outcome: Resolve swaps one for the other
// atomically, so a missing entry key means paired or unknown.
func (l *RedisList) Lookup(ctx context.Context, ticket uuid.UUID) (models.Ticket, error) {
	raw, err := l.rdb.Get(ctx, l.entryKey(ticket)).Result()
	switch {
	case err == nil:
		idx, err := l.rdb.LPos(ctx, l.listKey(), raw, redis.LPosArgs{}).Result()
		if errors.Is(err, redis.Nil) {
			// popped, pairing in flight
			return models.Ticket{Ticket: ticket, Status: models.TicketWaiting}, nil
		}
		if err != nil {
			return models.Ticket{}, fmt.Errorf("failed to LPOS ticket %s: %w", ticket, err)
		}
		return models.Ticket{Ticket: ticket, Status: models.TicketWaiting, Position: int(idx) + 1}, nil
	case !errors.Is(err, redis.Nil):
		return models.Ticket{}, fmt.Errorf("failed to read entry for ticket %s: %w", ticket, err)
	}

	roomStr, err := l.rdb.Get(ctx, l.outcomeKey(ticket)).Result()
	if errors.Is(err, redis.Nil) {
		return models.Ticket{}, fmt.Errorf("ticket %s: %w", ticket, models.ErrTicketNotFound)
	}
	if err != nil {
		return models.Ticket{}, fmt.Errorf("failed to read outcome for ticket %s: %w", ticket, err)
	}
	roomID, err := uuid.Parse(roomStr)
	if err != nil {
		return models.Ticket{}, fmt.Errorf("corrupt outcome for ticket %s: %w", ticket, err)
	}
	return models.Ticket{Ticket: ticket, Status: models.TicketPaired, RoomID: roomID}, nil
}

func (l *RedisList) Len(ctx context.Context) (int, error) {
	n, err := l.rdb.LLen(ctx, l.listKey()).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to LLEN '%s': %w", l.listKey(), err)
	}
	return int(n), nil
}

// Expire removes stale waiting entries. Outcome keys carry their own TTL, so
// outcomeCutoff is not needed here.
func (l *RedisList) Expire(ctx context.Context, waitingCutoff, _ time.Time) (int, error) {
	raws, err := l.rdb.LRange(ctx, l.listKey(), 0, -1).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to LRANGE '%s': %w", l.listKey(), err)
	}
	expired := 0
	for _, raw := range raws {
		var entry models.WaitingEntry
		if err := json.Unmarshal([]byte(raw), &entry); err != nil {
			continue
		}
		if !entry.JoinedAt.Before(waitingCutoff) {
			continue
		}
		removed, err := l.rdb.LRem(ctx, l.listKey(), 1, raw).Result()
		if err != nil {
			return expired, fmt.Errorf("failed to LREM ticket %s: %w", entry.Ticket, err)
		}
		if removed == 0 {
			continue // paired meanwhile
		}
		if err := l.rdb.Del(ctx, l.entryKey(entry.Ticket)).Err(); err != nil {
			return expired, fmt.Errorf("failed to clear entry key: %w", err)
		}
		expired++
	}
	return expired, nil
}
