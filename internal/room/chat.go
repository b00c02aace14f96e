// internal/room/chat.go
package room

import (
	"context"

	"github.com/google/uuid"
	"github.com/jason-s-yu/dsaduel/internal/models"
)

// AppendMessage adds a message to the end of the room's chat log. SentAt is
// stamped here, under the room lock, so append order and timestamps agree.
func (s *MemoryStore) AppendMessage(_ context.Context, id uuid.UUID, sender, content string) (*models.Message, error) {
	st, err := s.lookup(id)
	if err != nil {
		return nil, err
	}
	st.mu.Lock()
	defer st.mu.Unlock()

	now := s.Now().UTC()
	msg := models.Message{Sender: sender, Content: content, SentAt: now}
	st.messages = append(st.messages, msg)
	st.room.UpdatedAt = now
	return &msg, nil
}

// ListMessages returns a copy of the whole chat log in append order.
func (s *MemoryStore) ListMessages(_ context.Context, id uuid.UUID) ([]models.Message, error) {
	st, err := s.lookup(id)
	if err != nil {
		return nil, err
	}
	st.mu.Lock()
	defer st.mu.Unlock()

	out := make([]models.Message, len(st.messages))
	copy(out, st.messages)
	return out, nil
}
