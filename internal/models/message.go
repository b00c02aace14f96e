// internal/models/message.go
package models

import "time"

// Message is a single chat line inside a room. Messages are append-only and are
// displayed in the order they were appended.
type Message struct {
	Sender  string    `json:"sender"`
	Content string    `json:"content"`
	SentAt  time.Time `json:"sent_at"`
}
