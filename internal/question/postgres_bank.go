// internal/question/postgres_bank.go
package question

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jason-s-yu/dsaduel/internal/models"
)

// PostgresBank stores questions in the questions table. See database.EnsureSchema.
type PostgresBank struct {
	db *pgxpool.Pool
}

func NewPostgresBank(db *pgxpool.Pool) *PostgresBank {
	return &PostgresBank{db: db}
}

// Seed inserts the catalogue when the table is empty. The table lock makes two
// concurrent seeds agree on a single winner.
func (b *PostgresBank) Seed(ctx context.Context) (bool, error) {
	qs, err := Catalogue()
	if err != nil {
		return false, err
	}
	seeded := false
	err = pgx.BeginTxFunc(ctx, b.db, pgx.TxOptions{}, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `LOCK TABLE questions IN SHARE ROW EXCLUSIVE MODE`); err != nil {
			return err
		}
		var n int
		if err := tx.QueryRow(ctx, `SELECT count(*) FROM questions`).Scan(&n); err != nil {
			return err
		}
		if n > 0 {
			return nil
		}
		for _, q := range qs {
			examples, err := json.Marshal(q.Examples)
			if err != nil {
				return err
			}
			_, err = tx.Exec(ctx, `
				INSERT INTO questions (title, difficulty, statement, examples)
				VALUES ($1, $2, $3, $4)
			`, q.Title, q.Difficulty, q.Statement, examples)
			if err != nil {
				return fmt.Errorf("insert question %q: %w", q.Title, err)
			}
		}
		seeded = true
		return nil
	})
	if err != nil {
		return false, err
	}
	return seeded, nil
}

func (b *PostgresBank) Count(ctx context.Context) (int, error) {
	var n int
	if err := b.db.QueryRow(ctx, `SELECT count(*) FROM questions`).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

// Random picks one question with ORDER BY random(). The table is small.
func (b *PostgresBank) Random(ctx context.Context) (models.Question, error) {
	var q models.Question
	var examples []byte
	err := b.db.QueryRow(ctx, `
		SELECT title, difficulty, statement, examples
		FROM questions
		ORDER BY random()
		LIMIT 1
	`).Scan(&q.Title, &q.Difficulty, &q.Statement, &examples)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.Question{}, fmt.Errorf("questions table is empty: %w", models.ErrQuestionUnavailable)
	}
	if err != nil {
		return models.Question{}, fmt.Errorf("select random question: %v: %w", err, models.ErrQuestionUnavailable)
	}
	if err := json.Unmarshal(examples, &q.Examples); err != nil {
		return models.Question{}, fmt.Errorf("decode examples for %q: %w", q.Title, err)
	}
	return q, nil
}
