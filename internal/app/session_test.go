package app

import (
	"errors"
	"fmt"
	"math/rand"
	"testing"
	"time"

	"cyberquiz-service/internal/domain"
)

func testEngine() *Engine {
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	return NewEngineWithClock(func() time.Time { return now }, rand.New(rand.NewSource(42)))
}

func testQuestions(n int) []domain.Question {
	questions := make([]domain.Question, n)
	for i := range questions {
		questions[i] = domain.Question{
			Text:         fmt.Sprintf("Питання %d", i+1),
			Answers:      []string{"А", "Б", "В", "Г"},
			CorrectIndex: i % domain.AnswerCount,
		}
	}
	return questions
}

func TestStartValidationOrder(t *testing.T) {
	engine := testEngine()
	questions := testQuestions(3)

	if _, err := engine.Start(questions, "Іваненко Іван", "Апарат", domain.StatusPending); !errors.Is(err, domain.ErrTestUnavailable) {
		t.Fatalf("expected unavailable, got %v", err)
	}
	if _, err := engine.Start(questions, "Іваненко Іван", domain.DepartmentPlaceholder, domain.StatusActive); !errors.Is(err, domain.ErrEmptyDepartment) {
		t.Fatalf("expected empty department, got %v", err)
	}
	if _, err := engine.Start(questions, "   ", "Апарат", domain.StatusActive); !errors.Is(err, domain.ErrEmptyName) {
		t.Fatalf("expected empty name, got %v", err)
	}
	if _, err := engine.Start(nil, "Іваненко Іван", "Апарат", domain.StatusActive); !errors.Is(err, domain.ErrNoQuestions) {
		t.Fatalf("expected no questions, got %v", err)
	}
}

func TestStartShufflesCopyOfBank(t *testing.T) {
	engine := testEngine()
	questions := testQuestions(10)

	snapshot, err := engine.Start(questions, "Іваненко Іван", "Апарат", domain.StatusActive)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if snapshot.State != StateInProgress || snapshot.Position != 0 || snapshot.Total != 10 {
		t.Fatalf("unexpected snapshot: %+v", snapshot)
	}
	if snapshot.Answer != domain.Unanswered {
		t.Fatalf("expected unanswered start, got %d", snapshot.Answer)
	}

	// The shuffled order is a permutation: same multiset, nothing lost or duplicated.
	seen := make(map[string]int)
	for i := 0; i < 10; i++ {
		s, err := engine.Snapshot()
		if err != nil {
			t.Fatalf("snapshot: %v", err)
		}
		seen[s.Question.Text]++
		if i < 9 {
			if _, err := engine.SelectAnswer(0); err != nil {
				t.Fatalf("select: %v", err)
			}
			if _, err := engine.GoNext(); err != nil {
				t.Fatalf("next: %v", err)
			}
		}
	}
	for _, q := range questions {
		if seen[q.Text] != 1 {
			t.Fatalf("question %q seen %d times", q.Text, seen[q.Text])
		}
	}

	// Mutating the source slice must not affect the in-flight attempt.
	questions[0].Text = "змінено"
	s, _ := engine.Snapshot()
	if s.Question.Text == "змінено" {
		t.Fatalf("attempt shares memory with the bank slice")
	}
}

func TestShuffleDistribution(t *testing.T) {
	// With 3 questions each one should land in first position about 1/3 of
	// the time. Loose bounds keep the test stable across seeds.
	engine := testEngine()
	questions := testQuestions(3)
	const runs = 1200

	firsts := make(map[string]int)
	for i := 0; i < runs; i++ {
		if _, err := engine.Start(questions, "Іваненко Іван", "Апарат", domain.StatusActive); err != nil {
			t.Fatalf("start: %v", err)
		}
		s, _ := engine.Snapshot()
		firsts[s.Question.Text]++
	}
	for _, q := range questions {
		count := firsts[q.Text]
		if count < runs/5 || count > runs/2 {
			t.Fatalf("question %q first %d/%d times, outside expected band", q.Text, count, runs)
		}
	}
}

func TestNavigationRules(t *testing.T) {
	engine := testEngine()
	if _, err := engine.Start(testQuestions(3), "Іваненко Іван", "Апарат", domain.StatusActive); err != nil {
		t.Fatalf("start: %v", err)
	}

	if _, err := engine.GoNext(); !errors.Is(err, domain.ErrUnanswered) {
		t.Fatalf("expected unanswered on next, got %v", err)
	}

	// Going back never requires an answer and clamps at the first question.
	s, err := engine.GoPrevious()
	if err != nil {
		t.Fatalf("previous: %v", err)
	}
	if s.Position != 0 {
		t.Fatalf("expected clamp at 0, got %d", s.Position)
	}

	if _, err := engine.SelectAnswer(1); err != nil {
		t.Fatalf("select: %v", err)
	}
	s, err = engine.GoNext()
	if err != nil {
		t.Fatalf("next: %v", err)
	}
	if s.Position != 1 {
		t.Fatalf("expected position 1, got %d", s.Position)
	}

	// Re-selecting overwrites; stepping back preserves the stored answer.
	if _, err := engine.SelectAnswer(2); err != nil {
		t.Fatalf("select: %v", err)
	}
	if _, err := engine.SelectAnswer(3); err != nil {
		t.Fatalf("reselect: %v", err)
	}
	s, _ = engine.GoPrevious()
	if s.Answer != 1 {
		t.Fatalf("expected preserved answer 1, got %d", s.Answer)
	}

	if _, err := engine.SelectAnswer(domain.AnswerCount); !errors.Is(err, domain.ErrAnswerOutOfRange) {
		t.Fatalf("expected out of range, got %v", err)
	}
	if _, err := engine.SelectAnswer(-1); !errors.Is(err, domain.ErrAnswerOutOfRange) {
		t.Fatalf("expected out of range, got %v", err)
	}
}

func TestGoNextClampsAtLastQuestion(t *testing.T) {
	engine := testEngine()
	if _, err := engine.Start(testQuestions(2), "Іваненко Іван", "Апарат", domain.StatusActive); err != nil {
		t.Fatalf("start: %v", err)
	}
	answerAndNext(t, engine)
	if _, err := engine.SelectAnswer(0); err != nil {
		t.Fatalf("select: %v", err)
	}
	s, err := engine.GoNext()
	if err != nil {
		t.Fatalf("next at last: %v", err)
	}
	if s.Position != 1 {
		t.Fatalf("expected to stay on last question, got %d", s.Position)
	}
}

func TestSubmitScoring(t *testing.T) {
	cases := []struct {
		correct   int
		wantScore int
		wantTier  domain.Tier
	}{
		{4, 80, domain.TierExcellent},
		{3, 60, domain.TierGood},
		{1, 20, domain.TierNeedsWork},
	}
	for _, tc := range cases {
		engine := testEngine()
		if _, err := engine.Start(testQuestions(5), "Петренко Марія", "Юридичне управління", domain.StatusActive); err != nil {
			t.Fatalf("start: %v", err)
		}

		answered := 0
		for i := 0; i < 5; i++ {
			s, _ := engine.Snapshot()
			answer := s.Question.CorrectIndex
			if answered >= tc.correct {
				answer = (answer + 1) % domain.AnswerCount
			}
			answered++
			if _, err := engine.SelectAnswer(answer); err != nil {
				t.Fatalf("select: %v", err)
			}
			if i < 4 {
				if _, err := engine.GoNext(); err != nil {
					t.Fatalf("next: %v", err)
				}
			}
		}

		result, err := engine.Submit()
		if err != nil {
			t.Fatalf("submit: %v", err)
		}
		if result.Correct != tc.correct || result.Incorrect != 5-tc.correct || result.Total != 5 {
			t.Fatalf("expected %d/5 correct, got %+v", tc.correct, result)
		}
		if result.Score != tc.wantScore {
			t.Fatalf("expected score %d, got %d", tc.wantScore, result.Score)
		}
		if domain.TierForScore(result.Score) != tc.wantTier {
			t.Fatalf("expected tier %s for score %d", tc.wantTier, result.Score)
		}
		if result.FullName != "Петренко Марія" || result.Department != "Юридичне управління" {
			t.Fatalf("participant not captured at start: %+v", result)
		}
	}
}

func TestSubmitRequiresLastAnswer(t *testing.T) {
	engine := testEngine()
	if _, err := engine.Start(testQuestions(2), "Іваненко Іван", "Апарат", domain.StatusActive); err != nil {
		t.Fatalf("start: %v", err)
	}
	answerAndNext(t, engine)

	// Last question unanswered: submit is rejected and the attempt stays live.
	if _, err := engine.Submit(); !errors.Is(err, domain.ErrUnanswered) {
		t.Fatalf("expected unanswered, got %v", err)
	}
	s, err := engine.Snapshot()
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	if s.State != StateInProgress {
		t.Fatalf("failed submit must not complete the attempt, state=%s", s.State)
	}

	if _, err := engine.SelectAnswer(0); err != nil {
		t.Fatalf("select: %v", err)
	}
	if _, err := engine.Submit(); err != nil {
		t.Fatalf("submit: %v", err)
	}

	// COMPLETED is terminal: no command except a fresh Start is accepted.
	if _, err := engine.SelectAnswer(0); !errors.Is(err, domain.ErrAttemptCompleted) {
		t.Fatalf("expected completed, got %v", err)
	}
	if _, err := engine.Submit(); !errors.Is(err, domain.ErrAttemptCompleted) {
		t.Fatalf("expected completed, got %v", err)
	}
}

func TestStartDiscardsPriorAttempt(t *testing.T) {
	engine := testEngine()
	if _, err := engine.Start(testQuestions(3), "Іваненко Іван", "Апарат", domain.StatusActive); err != nil {
		t.Fatalf("start: %v", err)
	}
	answerAndNext(t, engine)

	s, err := engine.Start(testQuestions(3), "Петренко Марія", "Апарат", domain.StatusActive)
	if err != nil {
		t.Fatalf("restart: %v", err)
	}
	if s.Position != 0 || s.Answer != domain.Unanswered {
		t.Fatalf("expected fresh attempt, got %+v", s)
	}
}

func TestCommandsWithoutAttempt(t *testing.T) {
	engine := testEngine()
	if _, err := engine.SelectAnswer(0); !errors.Is(err, domain.ErrNoAttempt) {
		t.Fatalf("expected no attempt, got %v", err)
	}
	if _, err := engine.Submit(); !errors.Is(err, domain.ErrNoAttempt) {
		t.Fatalf("expected no attempt, got %v", err)
	}
	if _, err := engine.Snapshot(); !errors.Is(err, domain.ErrNoAttempt) {
		t.Fatalf("expected no attempt, got %v", err)
	}
}

func answerAndNext(t *testing.T, engine *Engine) {
	t.Helper()
	if _, err := engine.SelectAnswer(0); err != nil {
		t.Fatalf("select: %v", err)
	}
	if _, err := engine.GoNext(); err != nil {
		t.Fatalf("next: %v", err)
	}
}
