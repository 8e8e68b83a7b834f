package app

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"cyberquiz-service/internal/bank"
	"cyberquiz-service/internal/domain"
	"cyberquiz-service/internal/infra/kv"
	"cyberquiz-service/internal/results"
)

// Service wires the session engine to the question bank, the schedule and
// the result log. It owns the single active attempt.
type Service struct {
	store   kv.Store
	bank    *bank.Bank
	results *results.Store
	engine  *Engine
	now     func() time.Time
}

func NewService(store kv.Store, questionBank *bank.Bank, resultStore *results.Store) *Service {
	return NewServiceWithEngine(store, questionBank, resultStore, NewEngine(), time.Now)
}

// NewServiceWithEngine is test-only for deterministic clocks and shuffles.
func NewServiceWithEngine(store kv.Store, questionBank *bank.Bank, resultStore *results.Store, engine *Engine, now func() time.Time) *Service {
	return &Service{
		store:   store,
		bank:    questionBank,
		results: resultStore,
		engine:  engine,
		now:     now,
	}
}

// Schedule returns the persisted availability schedule, falling back to the
// default disabled schedule on absence or corruption.
func (s *Service) Schedule(ctx context.Context) domain.Schedule {
	data, err := s.store.Get(ctx, kv.KeySchedule)
	if err != nil {
		if err != kv.ErrNotFound {
			log.Printf("schedule read failed, using default: %v", err)
		}
		return domain.DefaultSchedule()
	}
	schedule := domain.DefaultSchedule()
	if err := json.Unmarshal(data, &schedule); err != nil {
		log.Printf("schedule corrupt, using default: %v", err)
		return domain.DefaultSchedule()
	}
	return schedule
}

// Availability evaluates the current schedule.
func (s *Service) Availability(ctx context.Context) Evaluation {
	return EvaluateSchedule(s.Schedule(ctx), s.now())
}

// EnableSchedule validates and persists an enabled window.
func (s *Service) EnableSchedule(ctx context.Context, title string, startAt, endAt *time.Time) (domain.Schedule, error) {
	schedule, err := EnableSchedule(title, startAt, endAt, s.now())
	if err != nil {
		return domain.Schedule{}, err
	}
	if err := s.saveSchedule(ctx, schedule); err != nil {
		return domain.Schedule{}, err
	}
	return schedule, nil
}

// DisableSchedule persists the canonical disabled schedule, clearing the
// configured window. Callers confirm intent first.
func (s *Service) DisableSchedule(ctx context.Context) (domain.Schedule, error) {
	schedule := DisableSchedule()
	if err := s.saveSchedule(ctx, schedule); err != nil {
		return domain.Schedule{}, err
	}
	return schedule, nil
}

func (s *Service) saveSchedule(ctx context.Context, schedule domain.Schedule) error {
	data, err := json.Marshal(schedule)
	if err != nil {
		return fmt.Errorf("encode schedule: %w", err)
	}
	if err := s.store.Set(ctx, kv.KeySchedule, data); err != nil {
		return fmt.Errorf("persist schedule: %w", err)
	}
	return nil
}

// StartAttempt snapshots the bank and begins a new attempt, discarding any
// prior incomplete one.
func (s *Service) StartAttempt(ctx context.Context, fullName, department string) (Snapshot, error) {
	questions := s.bank.Load(ctx)
	availability := s.Availability(ctx)
	return s.engine.Start(questions, fullName, department, availability.Status)
}

// SelectAnswer records the answer for the current question.
func (s *Service) SelectAnswer(_ context.Context, index int) (Snapshot, error) {
	return s.engine.SelectAnswer(index)
}

// NextQuestion advances the attempt.
func (s *Service) NextQuestion(_ context.Context) (Snapshot, error) {
	return s.engine.GoNext()
}

// PreviousQuestion steps the attempt back.
func (s *Service) PreviousQuestion(_ context.Context) (Snapshot, error) {
	return s.engine.GoPrevious()
}

// Completed is the scored outcome handed back to the participant.
type Completed struct {
	Result  domain.Result `json:"result"`
	Tier    domain.Tier   `json:"tier"`
	Message string        `json:"message"`
}

// SubmitAttempt scores the attempt and appends the result to the log. When
// the log write fails the scored result is still returned alongside
// domain.ErrResultNotPersisted so the caller can show a warning.
func (s *Service) SubmitAttempt(ctx context.Context) (Completed, error) {
	result, err := s.engine.Submit()
	if err != nil {
		return Completed{}, err
	}
	tier := domain.TierForScore(result.Score)
	completed := Completed{Result: result, Tier: tier, Message: tier.Message()}
	if err := s.results.Append(ctx, result); err != nil {
		log.Printf("append result failed: %v", err)
		return completed, fmt.Errorf("%w: %v", domain.ErrResultNotPersisted, err)
	}
	return completed, nil
}

// AttemptSnapshot exposes the current attempt view.
func (s *Service) AttemptSnapshot(_ context.Context) (Snapshot, error) {
	return s.engine.Snapshot()
}
