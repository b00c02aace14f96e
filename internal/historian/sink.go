// internal/historian/sink.go
package historian

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Sink persists a batch of events.
type Sink interface {
	InsertEvents(ctx context.Context, events []RoomEvent) error
}

// PostgresSink writes events to the room_events table.
type PostgresSink struct {
	db *pgxpool.Pool
}

func NewPostgresSink(db *pgxpool.Pool) *PostgresSink {
	return &PostgresSink{db: db}
}

// InsertEvents writes the whole batch in a single transaction.
func (s *PostgresSink) InsertEvents(ctx context.Context, events []RoomEvent) error {
	return pgx.BeginTxFunc(ctx, s.db, pgx.TxOptions{}, func(tx pgx.Tx) error {
		for _, ev := range events {
			payload, err := json.Marshal(ev.Payload)
			if err != nil {
				return err
			}
			_, err = tx.Exec(ctx, `
				INSERT INTO room_events (room_id, event_type, actor, payload, occurred_at)
				VALUES ($1, $2, $3, $4, $5)
			`, ev.RoomID, string(ev.Type), ev.Actor, payload, time.UnixMilli(ev.Timestamp).UTC())
			if err != nil {
				return fmt.Errorf("insert %s event for room %s: %w", ev.Type, ev.RoomID, err)
			}
		}
		return nil
	})
}
