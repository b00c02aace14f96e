// internal/question/memory_bank.go
package question

import (
	"context"
	"fmt"
	"math/rand"
	"sync"

	"github.com/jason-s-yu/dsaduel/internal/models"
)

// MemoryBank keeps questions in process memory.
type MemoryBank struct {
	mu        sync.RWMutex
	questions []models.Question
}

// NewMemoryBank returns a bank holding the given questions (possibly none).
func NewMemoryBank(qs ...models.Question) *MemoryBank {
	b := &MemoryBank{}
	for _, q := range qs {
		b.questions = append(b.questions, q.Clone())
	}
	return b
}

// Seed fills an empty bank with the embedded catalogue.
func (b *MemoryBank) Seed(_ context.Context) (bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.questions) > 0 {
		return false, nil
	}
	qs, err := Catalogue()
	if err != nil {
		return false, err
	}
	b.questions = qs
	return true, nil
}

func (b *MemoryBank) Count(_ context.Context) (int, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.questions), nil
}

// Random picks a question uniformly at random.
func (b *MemoryBank) Random(_ context.Context) (models.Question, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if len(b.questions) == 0 {
		return models.Question{}, fmt.Errorf("memory bank is empty: %w", models.ErrQuestionUnavailable)
	}
	return b.questions[rand.Intn(len(b.questions))].Clone(), nil
}
