package bank

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"cyberquiz-service/internal/domain"
	"cyberquiz-service/internal/infra/kv"
	"golang.org/x/sync/singleflight"
)

// SeedLoader supplies the default question set used when no bank has been
// persisted yet.
type SeedLoader interface {
	LoadSeed(ctx context.Context) ([]domain.Question, error)
}

// Bank stores the ordered question set under a single key. Reads tolerate a
// missing or corrupt value by falling back to the seed; writes replace the
// stored value wholesale.
type Bank struct {
	store kv.Store
	seed  SeedLoader
	sf    singleflight.Group
}

func New(store kv.Store, seed SeedLoader) *Bank {
	return &Bank{store: store, seed: seed}
}

// Load returns the persisted bank, seeding the store on first run. Read and
// seed failures are logged, never surfaced: the caller always gets the best
// available question set.
func (b *Bank) Load(ctx context.Context) []domain.Question {
	data, err := b.store.Get(ctx, kv.KeyQuestionBank)
	if err == nil {
		questions, decodeErr := decodeQuestions(data)
		if decodeErr == nil {
			return questions
		}
		log.Printf("question bank corrupt, falling back to seed: %v", decodeErr)
		return b.loadSeed(ctx, false)
	}
	if err != kv.ErrNotFound {
		log.Printf("question bank read failed, falling back to seed: %v", err)
		return b.loadSeed(ctx, false)
	}
	return b.loadSeed(ctx, true)
}

// loadSeed fetches the default set, deduplicating concurrent first-run
// loads. When writeThrough is set the seed is persisted so later loads hit
// the store directly.
func (b *Bank) loadSeed(ctx context.Context, writeThrough bool) []domain.Question {
	result, err, _ := b.sf.Do(kv.KeyQuestionBank, func() (interface{}, error) {
		questions, err := b.seed.LoadSeed(ctx)
		if err != nil {
			return nil, err
		}
		if writeThrough {
			if data, err := json.Marshal(questions); err == nil {
				if err := b.store.Set(ctx, kv.KeyQuestionBank, data); err != nil {
					log.Printf("seeding question bank failed: %v", err)
				}
			}
		}
		return questions, nil
	})
	if err != nil {
		log.Printf("seed load failed, serving empty bank: %v", err)
		return nil
	}
	return result.([]domain.Question)
}

// Replace validates the whole batch and persists it in a single write. If
// any question is invalid the previous bank is left fully intact. Returns
// the new question count.
func (b *Bank) Replace(ctx context.Context, questions []domain.Question) (int, error) {
	for i, q := range questions {
		if err := q.Validate(); err != nil {
			return 0, fmt.Errorf("question %d: %w", i+1, err)
		}
	}
	data, err := json.Marshal(questions)
	if err != nil {
		return 0, fmt.Errorf("encode question bank: %w", err)
	}
	if err := b.store.Set(ctx, kv.KeyQuestionBank, data); err != nil {
		return 0, fmt.Errorf("persist question bank: %w", err)
	}
	return len(questions), nil
}

// Delete removes the question at index. An out-of-range index is a no-op;
// callers reading a stale list lose nothing.
func (b *Bank) Delete(ctx context.Context, index int) error {
	questions := b.Load(ctx)
	if index < 0 || index >= len(questions) {
		return nil
	}
	questions = append(questions[:index], questions[index+1:]...)
	data, err := json.Marshal(questions)
	if err != nil {
		return fmt.Errorf("encode question bank: %w", err)
	}
	if err := b.store.Set(ctx, kv.KeyQuestionBank, data); err != nil {
		return fmt.Errorf("persist question bank: %w", err)
	}
	return nil
}

// ExportSnapshot produces the downloadable artifact for the current bank.
func (b *Bank) ExportSnapshot(ctx context.Context) ([]byte, error) {
	return encodeArtifact(b.Load(ctx))
}
