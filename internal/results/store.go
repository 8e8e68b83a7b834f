package results

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"math"
	"sort"
	"strings"
	"sync"

	"cyberquiz-service/internal/domain"
	"cyberquiz-service/internal/infra/kv"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// SortOrder selects the projection ordering for queries.
type SortOrder string

const (
	SortScoreDesc SortOrder = "score"
	SortNameAsc   SortOrder = "name"
	SortDateDesc  SortOrder = "date"
)

// Filter narrows a query; both predicates are case-insensitive substring
// matches combined with AND, and an empty predicate matches everything.
type Filter struct {
	NameContains       string
	DepartmentContains string
}

// Stats is the reporting summary over the whole log.
type Stats struct {
	TotalAttempts int            `json:"totalAttempts"`
	AverageScore  int            `json:"averageScore"`
	ByDepartment  map[string]int `json:"byDepartment"`
}

// Store keeps the append-only result log under a single key. Entries are
// never overwritten, deduplicated, or deleted.
type Store struct {
	store kv.Store

	mu   sync.Mutex
	coll *collate.Collator
}

func NewStore(store kv.Store) *Store {
	return &Store{
		store: store,
		coll:  collate.New(language.Ukrainian),
	}
}

// Append adds a result to the end of the log. The write failure is returned
// so explicit save actions can surface a warning.
func (s *Store) Append(ctx context.Context, result domain.Result) error {
	entries := s.load(ctx)
	entries = append(entries, result)
	data, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("encode result log: %w", err)
	}
	if err := s.store.Set(ctx, kv.KeyResultLog, data); err != nil {
		return fmt.Errorf("persist result log: %w", err)
	}
	return nil
}

// Query returns a filtered, sorted projection of the log. Sorting is stable,
// so equal keys keep their insertion order; an unknown or empty order falls
// back to newest-first.
func (s *Store) Query(ctx context.Context, filter Filter, order SortOrder) []domain.Result {
	name := strings.ToLower(filter.NameContains)
	department := strings.ToLower(filter.DepartmentContains)

	var filtered []domain.Result
	for _, r := range s.load(ctx) {
		if !strings.Contains(strings.ToLower(r.FullName), name) {
			continue
		}
		if !strings.Contains(strings.ToLower(r.Department), department) {
			continue
		}
		filtered = append(filtered, r)
	}

	switch order {
	case SortScoreDesc:
		sort.SliceStable(filtered, func(i, j int) bool {
			return filtered[i].Score > filtered[j].Score
		})
	case SortNameAsc:
		s.mu.Lock()
		sort.SliceStable(filtered, func(i, j int) bool {
			return s.coll.CompareString(filtered[i].FullName, filtered[j].FullName) < 0
		})
		s.mu.Unlock()
	default:
		sort.SliceStable(filtered, func(i, j int) bool {
			return filtered[i].CompletedAt.After(filtered[j].CompletedAt)
		})
	}
	return filtered
}

// Stats summarizes the whole log for the reporting screen.
func (s *Store) Stats(ctx context.Context) Stats {
	results := s.load(ctx)
	return Stats{
		TotalAttempts: len(results),
		AverageScore:  AverageScore(results),
		ByDepartment:  AggregateByDepartment(results),
	}
}

// AggregateByDepartment counts completed attempts per department.
func AggregateByDepartment(results []domain.Result) map[string]int {
	counts := make(map[string]int, len(results))
	for _, r := range results {
		counts[r.Department]++
	}
	return counts
}

// AverageScore is the rounded mean percent score, 0 for an empty log.
func AverageScore(results []domain.Result) int {
	if len(results) == 0 {
		return 0
	}
	sum := 0
	for _, r := range results {
		sum += r.Score
	}
	return int(math.Round(float64(sum) / float64(len(results))))
}

// load reads the log, treating absence and corruption as an empty log.
func (s *Store) load(ctx context.Context) []domain.Result {
	data, err := s.store.Get(ctx, kv.KeyResultLog)
	if err != nil {
		if err != kv.ErrNotFound {
			log.Printf("result log read failed, treating as empty: %v", err)
		}
		return nil
	}
	var results []domain.Result
	if err := json.Unmarshal(data, &results); err != nil {
		log.Printf("result log corrupt, treating as empty: %v", err)
		return nil
	}
	return results
}
