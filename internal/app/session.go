package app

import (
	"math"
	"math/rand"
	"strings"
	"sync"
	"time"

	"cyberquiz-service/internal/domain"
)

// AttemptState is the lifecycle stage of a quiz attempt.
type AttemptState string

const (
	StateNotStarted AttemptState = "NOT_STARTED"
	StateInProgress AttemptState = "IN_PROGRESS"
	StateCompleted  AttemptState = "COMPLETED"
)

// attempt holds the mutable state of one traversal of the shuffled bank.
// Participant identity is captured at start and reused verbatim at submit.
type attempt struct {
	state      AttemptState
	questions  []domain.Question
	answers    []int
	pos        int
	fullName   string
	department string
	startedAt  time.Time
}

// Engine owns at most one quiz attempt at a time. Starting a new attempt
// discards any prior incomplete one; attempts are never persisted, only the
// Result derived at submission is.
type Engine struct {
	rnd *rand.Rand
	now func() time.Time

	mu      sync.Mutex
	current *attempt
}

func NewEngine() *Engine {
	return NewEngineWithClock(time.Now, rand.New(rand.NewSource(time.Now().UnixNano())))
}

// NewEngineWithClock allows deterministic timestamps and shuffles in tests.
func NewEngineWithClock(now func() time.Time, rnd *rand.Rand) *Engine {
	return &Engine{now: now, rnd: rnd}
}

// Snapshot is a read-only view of the attempt for rendering callers.
type Snapshot struct {
	State           AttemptState    `json:"state"`
	Position        int             `json:"position"`
	Total           int             `json:"total"`
	Question        domain.Question `json:"question"`
	Answer          int             `json:"answer"`
	ProgressPercent int             `json:"progressPercent"`
}

// Start begins a new attempt over a private shuffled copy of the bank.
// Validation order: availability, department, name, bank size.
func (e *Engine) Start(questions []domain.Question, fullName, department string, availability domain.AvailabilityStatus) (Snapshot, error) {
	if availability != domain.StatusActive {
		return Snapshot{}, domain.ErrTestUnavailable
	}
	if department == "" || department == domain.DepartmentPlaceholder {
		return Snapshot{}, domain.ErrEmptyDepartment
	}
	fullName = strings.TrimSpace(fullName)
	if fullName == "" {
		return Snapshot{}, domain.ErrEmptyName
	}
	if len(questions) == 0 {
		return Snapshot{}, domain.ErrNoQuestions
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	shuffled := e.shuffle(questions)
	answers := make([]int, len(shuffled))
	for i := range answers {
		answers[i] = domain.Unanswered
	}
	e.current = &attempt{
		state:      StateInProgress,
		questions:  shuffled,
		answers:    answers,
		fullName:   fullName,
		department: department,
		startedAt:  e.now(),
	}
	return e.snapshotLocked(), nil
}

// SelectAnswer records the answer for the current question, overwriting any
// previous selection at that position.
func (e *Engine) SelectAnswer(index int) (Snapshot, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	a, err := e.inProgressLocked()
	if err != nil {
		return Snapshot{}, err
	}
	if index < 0 || index >= len(a.questions[a.pos].Answers) {
		return Snapshot{}, domain.ErrAnswerOutOfRange
	}
	a.answers[a.pos] = index
	return e.snapshotLocked(), nil
}

// GoNext advances to the next question. The current question must be
// answered first; at the last question this is a no-op since submission is a
// separate explicit action.
func (e *Engine) GoNext() (Snapshot, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	a, err := e.inProgressLocked()
	if err != nil {
		return Snapshot{}, err
	}
	if a.answers[a.pos] == domain.Unanswered {
		return Snapshot{}, domain.ErrUnanswered
	}
	if a.pos < len(a.questions)-1 {
		a.pos++
	}
	return e.snapshotLocked(), nil
}

// GoPrevious steps back one question. Going backward never requires an
// answer and leaves the answer at the position left untouched.
func (e *Engine) GoPrevious() (Snapshot, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	a, err := e.inProgressLocked()
	if err != nil {
		return Snapshot{}, err
	}
	if a.pos > 0 {
		a.pos--
	}
	return e.snapshotLocked(), nil
}

// Submit scores the attempt and transitions it to COMPLETED. The last
// question must be answered; a rejected submit leaves the attempt untouched.
func (e *Engine) Submit() (domain.Result, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	a, err := e.inProgressLocked()
	if err != nil {
		return domain.Result{}, err
	}
	if a.answers[a.pos] == domain.Unanswered {
		return domain.Result{}, domain.ErrUnanswered
	}

	correct := 0
	for i, q := range a.questions {
		if a.answers[i] == q.CorrectIndex {
			correct++
		}
	}
	total := len(a.questions)
	a.state = StateCompleted

	return domain.Result{
		FullName:    a.fullName,
		Department:  a.department,
		Correct:     correct,
		Incorrect:   total - correct,
		Total:       total,
		Score:       int(math.Round(float64(correct) / float64(total) * 100)),
		CompletedAt: e.now(),
	}, nil
}

// Snapshot returns the current attempt view.
func (e *Engine) Snapshot() (Snapshot, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.current == nil {
		return Snapshot{}, domain.ErrNoAttempt
	}
	return e.snapshotLocked(), nil
}

func (e *Engine) inProgressLocked() (*attempt, error) {
	if e.current == nil {
		return nil, domain.ErrNoAttempt
	}
	if e.current.state != StateInProgress {
		return nil, domain.ErrAttemptCompleted
	}
	return e.current, nil
}

func (e *Engine) snapshotLocked() Snapshot {
	a := e.current
	return Snapshot{
		State:           a.state,
		Position:        a.pos,
		Total:           len(a.questions),
		Question:        a.questions[a.pos],
		Answer:          a.answers[a.pos],
		ProgressPercent: (a.pos + 1) * 100 / len(a.questions),
	}
}

// shuffle returns an unbiased Fisher-Yates permutation of a copied slice, so
// later bank edits cannot affect an in-flight attempt.
func (e *Engine) shuffle(questions []domain.Question) []domain.Question {
	shuffled := make([]domain.Question, len(questions))
	copy(shuffled, questions)
	for i := len(shuffled) - 1; i > 0; i-- {
		j := e.rnd.Intn(i + 1)
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	}
	return shuffled
}
