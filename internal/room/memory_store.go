// internal/room/memory_store.go
package room

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jason-s-yu/dsaduel/internal/models"
)

// roomState is one room plus its chat log, guarded by its own mutex so that
// editor saves in one room never wait on another room.
type roomState struct {
	mu       sync.Mutex
	seq      uint64 // creation order, breaks CreatedAt ties
	room     models.Room
	messages []models.Message
}

// MemoryStore keeps rooms in process memory.
type MemoryStore struct {
	mu    sync.RWMutex // protects the rooms map and seq, not the rooms themselves
	rooms map[uuid.UUID]*roomState
	seq   uint64

	// Now and NewID are swapped out in tests.
	Now   func() time.Time
	NewID func() uuid.UUID
}

// NewMemoryStore returns an empty in-memory room store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		rooms: make(map[uuid.UUID]*roomState),
		Now:   time.Now,
		NewID: uuid.New,
	}
}

const maxIDAttempts = 8

// Create allocates a fresh id; a colliding id is simply drawn again.
func (s *MemoryStore) Create(_ context.Context, participants [2]string, q models.Question) (*models.Room, error) {
	now := s.Now().UTC()

	s.mu.Lock()
	defer s.mu.Unlock()

	for attempt := 0; attempt < maxIDAttempts; attempt++ {
		id := s.NewID()
		if _, taken := s.rooms[id]; taken {
			continue
		}
		s.seq++
		st := &roomState{
			seq: s.seq,
			room: models.Room{
				ID:           id,
				Participants: participants,
				Question:     q.Clone(),
				CreatedAt:    now,
				UpdatedAt:    now,
			},
			messages: []models.Message{},
		}
		s.rooms[id] = st
		return st.room.Clone(), nil
	}
	return nil, fmt.Errorf("could not allocate a unique room id after %d attempts", maxIDAttempts)
}

func (s *MemoryStore) lookup(id uuid.UUID) (*roomState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st, ok := s.rooms[id]
	if !ok {
		return nil, fmt.Errorf("room %s: %w", id, models.ErrRoomNotFound)
	}
	return st, nil
}

func (s *MemoryStore) Get(_ context.Context, id uuid.UUID) (*models.Room, error) {
	st, err := s.lookup(id)
	if err != nil {
		return nil, err
	}
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.room.Clone(), nil
}

func (s *MemoryStore) FindByParticipant(_ context.Context, name string) (*models.Room, error) {
	s.mu.RLock()
	var newest *roomState
	for _, st := range s.rooms {
		// Participants, CreatedAt and seq never change after Create.
		if !st.room.HasParticipant(name) {
			continue
		}
		if newest == nil || newerThan(st, newest) {
			newest = st
		}
	}
	s.mu.RUnlock()

	if newest == nil {
		return nil, fmt.Errorf("no room for participant %q: %w", name, models.ErrRoomNotFound)
	}
	newest.mu.Lock()
	defer newest.mu.Unlock()
	return newest.room.Clone(), nil
}

func newerThan(a, b *roomState) bool {
	if a.room.CreatedAt.Equal(b.room.CreatedAt) {
		return a.seq > b.seq
	}
	return a.room.CreatedAt.After(b.room.CreatedAt)
}

func (s *MemoryStore) SetEditorContent(_ context.Context, id uuid.UUID, content string) (int64, error) {
	st, err := s.lookup(id)
	if err != nil {
		return 0, err
	}
	st.mu.Lock()
	defer st.mu.Unlock()
	st.room.EditorContent = content
	st.room.EditorVersion++
	st.room.UpdatedAt = s.Now().UTC()
	return st.room.EditorVersion, nil
}

func (s *MemoryStore) DeleteIdle(_ context.Context, cutoff time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	removed := 0
	for id, st := range s.rooms {
		st.mu.Lock()
		idle := st.room.UpdatedAt.Before(cutoff)
		st.mu.Unlock()
		if idle {
			delete(s.rooms, id)
			removed++
		}
	}
	return removed, nil
}

// Len reports how many rooms are live.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.rooms)
}
