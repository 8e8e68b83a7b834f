package kv

import (
	"context"
	"errors"
)

// Keys of the durable values the service owns. Each key holds one serialized
// entity and is always overwritten whole, never patched.
const (
	KeyQuestionBank = "quizQuestions"
	KeyResultLog    = "quizResults"
	KeySchedule     = "testSettings"
	KeyAdminSession = "adminAuthData"
)

// ErrNotFound is returned when a key has no stored value.
var ErrNotFound = errors.New("kv: key not found")

// Store is a durable whole-value key-value store.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}
