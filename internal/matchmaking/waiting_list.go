// internal/matchmaking/waiting_list.go
package matchmaking

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jason-s-yu/dsaduel/internal/models"
)

// WaitingList is the FIFO of participants waiting for an opponent, plus the
// record of which tickets have already been paired into which room.
//
// PopOldest must be atomic: an entry is handed out to at most one caller. A popped
// entry stays answerable through Lookup (as waiting, without a position) until it
// is either Resolved or Requeued.
type WaitingList interface {
	Enqueue(ctx context.Context, entry models.WaitingEntry) error
	PopOldest(ctx context.Context) (models.WaitingEntry, bool, error)

	// Requeue puts an entry back at the head after an aborted pairing.
	Requeue(ctx context.Context, entry models.WaitingEntry) error

	// Resolve records that ticket was paired into roomID.
	Resolve(ctx context.Context, ticket, roomID uuid.UUID, at time.Time) error
	Lookup(ctx context.Context, ticket uuid.UUID) (models.Ticket, error)

	Len(ctx context.Context) (int, error)

	// Expire drops entries that joined before waitingCutoff and outcomes resolved
	// before outcomeCutoff. It returns the number of waiting entries dropped.
	Expire(ctx context.Context, waitingCutoff, outcomeCutoff time.Time) (int, error)
}
