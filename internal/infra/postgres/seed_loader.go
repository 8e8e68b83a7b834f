package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"cyberquiz-service/internal/domain"
	"github.com/jackc/pgx/v4/pgxpool"
)

// SeedLoader reads the default question set from the question_banks table.
// It backs the bank on deployments that manage seed content centrally
// instead of shipping it with the binary.
type SeedLoader struct {
	pool   *pgxpool.Pool
	bankID string
}

func NewSeedLoader(pool *pgxpool.Pool, bankID string) *SeedLoader {
	if bankID == "" {
		bankID = "default"
	}
	return &SeedLoader{pool: pool, bankID: bankID}
}

func (l *SeedLoader) LoadSeed(ctx context.Context) ([]domain.Question, error) {
	var raw []byte
	err := l.pool.QueryRow(ctx, `SELECT data FROM question_banks WHERE id=$1`, l.bankID).Scan(&raw)
	if err != nil {
		return nil, fmt.Errorf("load seed bank: %w", err)
	}
	var questions []domain.Question
	if err := json.Unmarshal(raw, &questions); err != nil {
		return nil, fmt.Errorf("unmarshal seed bank: %w", err)
	}
	return questions, nil
}
