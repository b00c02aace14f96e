// internal/matchmaking/memory_list.go
package matchmaking

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jason-s-yu/dsaduel/internal/models"
	"github.com/samber/lo"
)

type outcome struct {
	roomID     uuid.UUID
	resolvedAt time.Time
}

// MemoryList is a WaitingList held in process memory.
type MemoryList struct {
	mu       sync.Mutex
	entries  []models.WaitingEntry // oldest first
	pairing  map[uuid.UUID]models.WaitingEntry
	outcomes map[uuid.UUID]outcome
}

func NewMemoryList() *MemoryList {
	return &MemoryList{
		pairing:  make(map[uuid.UUID]models.WaitingEntry),
		outcomes: make(map[uuid.UUID]outcome),
	}
}

func (l *MemoryList) Enqueue(_ context.Context, entry models.WaitingEntry) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, entry)
	return nil
}

func (l *MemoryList) PopOldest(_ context.Context) (models.WaitingEntry, bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.entries) == 0 {
		return models.WaitingEntry{}, false, nil
	}
	head := l.entries[0]
	l.entries = l.entries[1:]
	l.pairing[head.Ticket] = head
	return head, true, nil
}

func (l *MemoryList) Requeue(_ context.Context, entry models.WaitingEntry) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.pairing, entry.Ticket)
	l.entries = append([]models.WaitingEntry{entry}, l.entries...)
	return nil
}

func (l *MemoryList) Resolve(_ context.Context, ticket, roomID uuid.UUID, at time.Time) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.pairing, ticket)
	l.outcomes[ticket] = outcome{roomID: roomID, resolvedAt: at}
	return nil
}

func (l *MemoryList) Lookup(_ context.Context, ticket uuid.UUID) (models.Ticket, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if o, ok := l.outcomes[ticket]; ok {
		return models.Ticket{Ticket: ticket, Status: models.TicketPaired, RoomID: o.roomID}, nil
	}
	if _, ok := l.pairing[ticket]; ok {
		return models.Ticket{Ticket: ticket, Status: models.TicketWaiting}, nil
	}
	_, idx, found := lo.FindIndexOf(l.entries, func(e models.WaitingEntry) bool {
		return e.Ticket == ticket
	})
	if !found {
		return models.Ticket{}, fmt.Errorf("ticket %s: %w", ticket, models.ErrTicketNotFound)
	}
	return models.Ticket{Ticket: ticket, Status: models.TicketWaiting, Position: idx + 1}, nil
}

func (l *MemoryList) Len(_ context.Context) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries), nil
}

func (l *MemoryList) Expire(_ context.Context, waitingCutoff, outcomeCutoff time.Time) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	before := len(l.entries)
	l.entries = lo.Filter(l.entries, func(e models.WaitingEntry, _ int) bool {
		return !e.JoinedAt.Before(waitingCutoff)
	})
	for ticket, o := range l.outcomes {
		if o.resolvedAt.Before(outcomeCutoff) {
			delete(l.outcomes, ticket)
		}
	}
	return before - len(l.entries), nil
}
