// internal/models/room.go
package models

import (
	"time"

	"github.com/google/uuid"
)

// Room is a duel shared by exactly two participants: one question, one code buffer
// and one chat log. Membership never changes after creation.
type Room struct {
	ID           uuid.UUID `json:"room_id"`
	Participants [2]string `json:"participants"`
	Question     Question  `json:"question"`

	// EditorContent is last-write-wins; EditorVersion counts saves.
	EditorContent string `json:"editor_content"`
	EditorVersion int64  `json:"editor_version"`

	CreatedAt time.Time `json:"created_at"`
	// UpdatedAt moves on every editor save or chat append. Idle expiry keys off it.
	UpdatedAt time.Time `json:"updated_at"`
}

// HasParticipant reports whether name is one of the two room members.
func (r *Room) HasParticipant(name string) bool {
	return r.Participants[0] == name || r.Participants[1] == name
}

// Clone returns a snapshot of the room that shares no mutable state with r.
func (r *Room) Clone() *Room {
	out := *r
	out.Question = r.Question.Clone()
	return &out
}
