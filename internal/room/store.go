// internal/room/store.go
package room

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jason-s-yu/dsaduel/internal/models"
)

// Store owns rooms and their chat logs. Every method is atomic with respect to a
// single room; different rooms never contend with each other beyond the index.
// Reads return snapshots that reflect every write completed before the read began.
type Store interface {
	Create(ctx context.Context, participants [2]string, q models.Question) (*models.Room, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Room, error)

	// FindByParticipant returns the most recently created room listing name.
	// Display names are not unique, so with duplicates the newest room wins.
	FindByParticipant(ctx context.Context, name string) (*models.Room, error)

	// SetEditorContent replaces the shared buffer and returns the new version.
	SetEditorContent(ctx context.Context, id uuid.UUID, content string) (int64, error)

	AppendMessage(ctx context.Context, id uuid.UUID, sender, content string) (*models.Message, error)
	ListMessages(ctx context.Context, id uuid.UUID) ([]models.Message, error)

	// DeleteIdle removes rooms not updated since cutoff and reports how many went.
	DeleteIdle(ctx context.Context, cutoff time.Time) (int, error)
}
