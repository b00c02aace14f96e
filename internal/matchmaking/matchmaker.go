// internal/matchmaking/matchmaker.go
package matchmaking

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jason-s-yu/dsaduel/internal/models"
	"github.com/jason-s-yu/dsaduel/internal/question"
	"github.com/jason-s-yu/dsaduel/internal/room"
	"github.com/sirupsen/logrus"
)

// JoinResult is the answer to a join request. A waiting caller gets a Ticket to
// poll; a paired caller gets the freshly created Room.
type JoinResult struct {
	Status models.TicketStatus
	Ticket uuid.UUID
	Room   *models.Room
}

// Matchmaker pairs participants two at a time, oldest waiter first.
//
// The whole pop, pick question, create room, resolve ticket sequence runs under mu,
// so two concurrent joins can never pair against the same waiting entry.
type Matchmaker struct {
	mu        sync.Mutex
	list      WaitingList
	rooms     room.Store
	questions question.Source
	log       logrus.FieldLogger

	// WaitTTL bounds how long an unpaired entry may sit in the queue, OutcomeTTL how
	// long a paired ticket stays answerable. Zero disables expiry.
	WaitTTL    time.Duration
	OutcomeTTL time.Duration

	Now       func() time.Time
	NewTicket func() uuid.UUID
}

// NewMatchmaker wires a matchmaker to its waiting list, room store and question source.
func NewMatchmaker(list WaitingList, rooms room.Store, questions question.Source, logger logrus.FieldLogger) *Matchmaker {
	return &Matchmaker{
		list:      list,
		rooms:     rooms,
		questions: questions,
		log:       logger,
		Now:       time.Now,
		NewTicket: uuid.New,
	}
}

// Join puts name in the queue, or pairs it with the oldest waiter if there is one.
// name must already be trimmed and non-empty.
//
// If no question or room can be produced, the waiter goes back to the head of the
// queue, the caller is not queued, and the error is returned.
func (m *Matchmaker) Join(ctx context.Context, name string) (JoinResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	waiter, ok, err := m.list.PopOldest(ctx)
	if err != nil {
		return JoinResult{}, fmt.Errorf("pop waiting entry: %w", err)
	}
	if !ok {
		entry := models.WaitingEntry{
			Ticket:   m.NewTicket(),
			Name:     name,
			JoinedAt: m.Now().UTC(),
		}
		if err := m.list.Enqueue(ctx, entry); err != nil {
			return JoinResult{}, fmt.Errorf("enqueue %q: %w", name, err)
		}
		m.log.WithFields(logrus.Fields{"name": name, "ticket": entry.Ticket}).Debug("participant waiting")
		return JoinResult{Status: models.TicketWaiting, Ticket: entry.Ticket}, nil
	}

	rm, err := m.pair(ctx, waiter, name)
	if err != nil {
		// The waiter goes back even when ctx itself failed the pairing.
		if rqErr := m.list.Requeue(context.WithoutCancel(ctx), waiter); rqErr != nil {
			m.log.WithError(rqErr).WithField("ticket", waiter.Ticket).Error("failed to requeue waiter after aborted pairing")
		}
		return JoinResult{}, err
	}

	m.log.WithFields(logrus.Fields{
		"room":         rm.ID,
		"participants": rm.Participants,
		"question":     rm.Question.Title,
	}).Info("participants paired")
	return JoinResult{Status: models.TicketPaired, Room: rm}, nil
}

func (m *Matchmaker) pair(ctx context.Context, waiter models.WaitingEntry, name string) (*models.Room, error) {
	q, err := m.questions.Random(ctx)
	if err != nil {
		return nil, fmt.Errorf("pick question: %w", err)
	}
	rm, err := m.rooms.Create(ctx, [2]string{waiter.Name, name}, q)
	if err != nil {
		return nil, fmt.Errorf("create room: %w", err)
	}
	if err := m.list.Resolve(context.WithoutCancel(ctx), waiter.Ticket, rm.ID, m.Now().UTC()); err != nil {
		// The room exists and both names are in it, so the waiter can still find it
		// through FindByParticipant.
		m.log.WithError(err).WithField("ticket", waiter.Ticket).Warn("failed to record pairing outcome")
	}
	return rm, nil
}

// Lookup reports the state of a ticket handed out by Join. It does not take mu: a
// ticket whose pairing is in flight reads as waiting from the list itself.
func (m *Matchmaker) Lookup(ctx context.Context, ticket uuid.UUID) (models.Ticket, error) {
	return m.list.Lookup(ctx, ticket)
}

// Waiting reports how many participants are queued.
func (m *Matchmaker) Waiting(ctx context.Context) (int, error) {
	return m.list.Len(ctx)
}

// Expire drops waiters and outcomes older than their TTLs.
func (m *Matchmaker) Expire(ctx context.Context) (int, error) {
	if m.WaitTTL <= 0 && m.OutcomeTTL <= 0 {
		return 0, nil
	}
	now := m.Now().UTC()
	waitingCutoff, outcomeCutoff := time.Time{}, time.Time{}
	if m.WaitTTL > 0 {
		waitingCutoff = now.Add(-m.WaitTTL)
	}
	if m.OutcomeTTL > 0 {
		outcomeCutoff = now.Add(-m.OutcomeTTL)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	return m.list.Expire(ctx, waitingCutoff, outcomeCutoff)
}
