// internal/historian/event.go
package historian

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// EventType names a kind of room activity.
type EventType string

const (
	EventRoomCreated EventType = "room_created"
	EventMessageSent EventType = "message_sent"
	EventEditorSaved EventType = "editor_saved"
)

// RoomEvent is one entry in a room's activity history.
type RoomEvent struct {
	RoomID    uuid.UUID      `json:"room_id"`
	Type      EventType      `json:"event_type"`
	Actor     string         `json:"actor,omitempty"`
	Payload   map[string]any `json:"payload,omitempty"`
	Timestamp int64          `json:"timestamp"` // epoch millis
}

// NewRoomEvent stamps an event with the current time.
func NewRoomEvent(roomID uuid.UUID, typ EventType, actor string, payload map[string]any) RoomEvent {
	return RoomEvent{
		RoomID:    roomID,
		Type:      typ,
		Actor:     actor,
		Payload:   payload,
		Timestamp: time.Now().UnixMilli(),
	}
}

// Publisher hands room events to the historian.
type Publisher interface {
	Publish(ctx context.Context, ev RoomEvent) error
}

// NopPublisher drops every event. Used when the historian is disabled.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, RoomEvent) error { return nil }

// RedisPublisher pushes events onto a Redis list that the historian drains.
type RedisPublisher struct {
	rdb   *redis.Client
	queue string
}

func NewRedisPublisher(rdb *redis.Client, queue string) *RedisPublisher {
	return &RedisPublisher{rdb: rdb, queue: queue}
}

// Publish serializes the event to JSON and RPUSHes it. It costs one round trip.
func (p *RedisPublisher) Publish(ctx context.Context, ev RoomEvent) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("failed to marshal RoomEvent: %w", err)
	}
	if err := p.rdb.RPush(ctx, p.queue, data).Err(); err != nil {
		return fmt.Errorf("failed to RPush to Redis list '%s': %w", p.queue, err)
	}
	return nil
}
