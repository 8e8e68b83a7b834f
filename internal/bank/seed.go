package bank

import (
	"context"
	_ "embed"

	"cyberquiz-service/internal/domain"
)

//go:embed seed/questions.json
var embeddedSeed []byte

// EmbeddedSeed serves the question set shipped with the binary.
type EmbeddedSeed struct{}

func (EmbeddedSeed) LoadSeed(_ context.Context) ([]domain.Question, error) {
	return decodeQuestions(embeddedSeed)
}

// StaticSeed is a fixed in-memory seed, useful in tests.
type StaticSeed struct {
	Questions []domain.Question
}

func (s StaticSeed) LoadSeed(_ context.Context) ([]domain.Question, error) {
	return s.Questions, nil
}
