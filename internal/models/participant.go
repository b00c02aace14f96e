// internal/models/participant.go
package models

import (
	"time"

	"github.com/google/uuid"
)

// WaitingEntry is a participant sitting in the matchmaking queue. The Ticket is
// handed back to the caller so it can poll for the outcome of its join.
type WaitingEntry struct {
	Ticket   uuid.UUID `json:"ticket"`
	Name     string    `json:"name"`
	JoinedAt time.Time `json:"joined_at"`
}

// TicketStatus is the matchmaking state of a join ticket.
type TicketStatus string

const (
	TicketWaiting TicketStatus = "waiting"
	TicketPaired  TicketStatus = "paired"
)

// Ticket describes where a join request currently stands.
// Position is 1-based and only set while waiting; RoomID only once paired.
type Ticket struct {
	Ticket   uuid.UUID
	Status   TicketStatus
	RoomID   uuid.UUID
	Position int
}
