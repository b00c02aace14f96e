// internal/question/source.go
package question

import (
	"context"
	_ "embed"
	"fmt"

	"github.com/jason-s-yu/dsaduel/internal/models"
	"gopkg.in/yaml.v3"
)

// Source supplies a question for a freshly paired room.
type Source interface {
	Random(ctx context.Context) (models.Question, error)
}

// Bank is a Source that can also be seeded with the sample catalogue.
type Bank interface {
	Source

	// Seed loads the sample catalogue if the bank is empty. It reports whether
	// anything was inserted; calling it on a populated bank is a no-op.
	Seed(ctx context.Context) (bool, error)
	Count(ctx context.Context) (int, error)
}

//go:embed questions.yaml
var catalogueYAML []byte

// Catalogue parses the embedded sample questions.
func Catalogue() ([]models.Question, error) {
	var qs []models.Question
	if err := yaml.Unmarshal(catalogueYAML, &qs); err != nil {
		return nil, fmt.Errorf("parse question catalogue: %w", err)
	}
	return qs, nil
}
