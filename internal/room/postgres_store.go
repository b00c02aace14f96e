// internal/room/postgres_store.go
package room

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jason-s-yu/dsaduel/internal/models"
)

// PostgresStore keeps rooms in the rooms and room_messages tables.
// Row locks on rooms give the per-room atomicity the Store contract asks for.
type PostgresStore struct {
	db    *pgxpool.Pool
	Now   func() time.Time
	NewID func() uuid.UUID
}

func NewPostgresStore(db *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{db: db, Now: time.Now, NewID: uuid.New}
}

const roomColumns = `id, participant_a, participant_b, question, editor_content, editor_version, created_at, updated_at`

func scanRoom(row pgx.Row) (*models.Room, error) {
	var r models.Room
	var question []byte
	err := row.Scan(
		&r.ID,
		&r.Participants[0],
		&r.Participants[1],
		&question,
		&r.EditorContent,
		&r.EditorVersion,
		&r.CreatedAt,
		&r.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(question, &r.Question); err != nil {
		return nil, fmt.Errorf("decode question for room %s: %w", r.ID, err)
	}
	return &r, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

func (s *PostgresStore) Create(ctx context.Context, participants [2]string, q models.Question) (*models.Room, error) {
	question, err := json.Marshal(q)
	if err != nil {
		return nil, fmt.Errorf("encode question: %w", err)
	}
	now := s.Now().UTC()

	insertQ := `
		INSERT INTO rooms (id, participant_a, participant_b, question, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $5)
		RETURNING ` + roomColumns

	for attempt := 0; attempt < maxIDAttempts; attempt++ {
		id := s.NewID()
		room, err := scanRoom(s.db.QueryRow(ctx, insertQ, id, participants[0], participants[1], question, now))
		if isUniqueViolation(err) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("insert room: %w", err)
		}
		return room, nil
	}
	return nil, fmt.Errorf("could not allocate a unique room id after %d attempts", maxIDAttempts)
}

func (s *PostgresStore) Get(ctx context.Context, id uuid.UUID) (*models.Room, error) {
	q := `SELECT ` + roomColumns + ` FROM rooms WHERE id = $1`
	room, err := scanRoom(s.db.QueryRow(ctx, q, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("room %s: %w", id, models.ErrRoomNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("select room %s: %w", id, err)
	}
	return room, nil
}

func (s *PostgresStore) FindByParticipant(ctx context.Context, name string) (*models.Room, error) {
	q := `
		SELECT ` + roomColumns + `
		FROM rooms
		WHERE participant_a = $1 OR participant_b = $1
		ORDER BY created_at DESC, seq DESC
		LIMIT 1
	`
	room, err := scanRoom(s.db.QueryRow(ctx, q, name))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("no room for participant %q: %w", name, models.ErrRoomNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("find room for %q: %w", name, err)
	}
	return room, nil
}

func (s *PostgresStore) SetEditorContent(ctx context.Context, id uuid.UUID, content string) (int64, error) {
	q := `
		UPDATE rooms
		SET editor_content = $2, editor_version = editor_version + 1, updated_at = $3
		WHERE id = $1
		RETURNING editor_version
	`
	var version int64
	err := s.db.QueryRow(ctx, q, id, content, s.Now().UTC()).Scan(&version)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, fmt.Errorf("room %s: %w", id, models.ErrRoomNotFound)
	}
	if err != nil {
		return 0, fmt.Errorf("update editor for room %s: %w", id, err)
	}
	return version, nil
}

// AppendMessage touches the room row first. That takes the row lock, so appends to
// one room are serialized and the bigserial id follows commit order.
func (s *PostgresStore) AppendMessage(ctx context.Context, id uuid.UUID, sender, content string) (*models.Message, error) {
	msg := &models.Message{Sender: sender, Content: content}
	now := s.Now().UTC()
	err := pgx.BeginTxFunc(ctx, s.db, pgx.TxOptions{}, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `UPDATE rooms SET updated_at = $2 WHERE id = $1`, id, now)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return fmt.Errorf("room %s: %w", id, models.ErrRoomNotFound)
		}
		return tx.QueryRow(ctx, `
			INSERT INTO room_messages (room_id, sender, content, sent_at)
			VALUES ($1, $2, $3, $4)
			RETURNING sent_at
		`, id, sender, content, now).Scan(&msg.SentAt)
	})
	if err != nil {
		if errors.Is(err, models.ErrRoomNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("append message to room %s: %w", id, err)
	}
	return msg, nil
}

// ListMessages reads the existence check and the log from one snapshot.
func (s *PostgresStore) ListMessages(ctx context.Context, id uuid.UUID) ([]models.Message, error) {
	out := []models.Message{}
	opts := pgx.TxOptions{IsoLevel: pgx.RepeatableRead, AccessMode: pgx.ReadOnly}
	err := pgx.BeginTxFunc(ctx, s.db, opts, func(tx pgx.Tx) error {
		var exists bool
		if err := tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM rooms WHERE id = $1)`, id).Scan(&exists); err != nil {
			return err
		}
		if !exists {
			return fmt.Errorf("room %s: %w", id, models.ErrRoomNotFound)
		}
		rows, err := tx.Query(ctx, `
			SELECT sender, content, sent_at
			FROM room_messages
			WHERE room_id = $1
			ORDER BY id
		`, id)
		if err != nil {
			return err
		}
		defer rows.Close()
		for rows.Next() {
			var m models.Message
			if err := rows.Scan(&m.Sender, &m.Content, &m.SentAt); err != nil {
				return err
			}
			out = append(out, m)
		}
		return rows.Err()
	})
	if err != nil {
		if errors.Is(err, models.ErrRoomNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("list messages for room %s: %w", id, err)
	}
	return out, nil
}

func (s *PostgresStore) DeleteIdle(ctx context.Context, cutoff time.Time) (int, error) {
	tag, err := s.db.Exec(ctx, `DELETE FROM rooms WHERE updated_at < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("delete idle rooms: %w", err)
	}
	return int(tag.RowsAffected()), nil
}
