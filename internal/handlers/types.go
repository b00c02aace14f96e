// internal/handlers/types.go
package handlers

import "strings"

type normalizer interface {
	Normalize()
}

type errorResponse struct {
	Error string `json:"error"`
}

type healthResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Waiting int    `json:"waiting"`
}

type seedResponse struct {
	Seeded  bool   `json:"seeded"`
	Message string `json:"message"`
}

type joinRequest struct {
	Name string `json:"name" validate:"required,max=64"`
}

func (r *joinRequest) Normalize() { r.Name = strings.TrimSpace(r.Name) }

type joinResponse struct {
	Status string `json:"status"`
	Ticket string `json:"ticket,omitempty"`
	RoomID string `json:"room_id,omitempty"`
}

type ticketResponse struct {
	Ticket   string `json:"ticket"`
	Status   string `json:"status"`
	RoomID   string `json:"room_id,omitempty"`
	Position int    `json:"position,omitempty"`
}

// sendMessageRequest keeps content as sent (pasted code keeps its indentation);
// notblank only rejects whitespace-only messages.
type sendMessageRequest struct {
	Sender  string `json:"sender" validate:"required,max=64"`
	Content string `json:"content" validate:"notblank,max=4000"`
}

func (r *sendMessageRequest) Normalize() { r.Sender = strings.TrimSpace(r.Sender) }

// setEditorRequest leaves content untouched: whitespace is code too.
type setEditorRequest struct {
	Content string `json:"content" validate:"max=500000"`
}

func (r *setEditorRequest) Normalize() {}

type setEditorResponse struct {
	OK            bool  `json:"ok"`
	EditorVersion int64 `json:"editor_version"`
}
