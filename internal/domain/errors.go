package domain

import "errors"

var (
	// ErrTestUnavailable is returned when the availability window rejects a new attempt.
	ErrTestUnavailable = errors.New("test is not available")
	// ErrEmptyDepartment is returned when no department was selected.
	ErrEmptyDepartment = errors.New("department not selected")
	// ErrEmptyName is returned when the participant name is blank.
	ErrEmptyName = errors.New("participant name is empty")
	// ErrNoQuestions is returned when the question bank is empty at start.
	ErrNoQuestions = errors.New("question bank is empty")

	// ErrNoAttempt indicates no attempt is in progress.
	ErrNoAttempt = errors.New("no attempt in progress")
	// ErrAttemptCompleted indicates the attempt already reached its terminal state.
	ErrAttemptCompleted = errors.New("attempt already completed")
	// ErrUnanswered indicates the current question has no selected answer yet.
	ErrUnanswered = errors.New("current question is unanswered")
	// ErrAnswerOutOfRange indicates a selected answer index outside the option range.
	ErrAnswerOutOfRange = errors.New("answer index out of range")
)

// Question validation failures.
var (
	ErrEmptyQuestionText = errors.New("question text is empty")
	ErrWrongAnswerCount  = errors.New("question must have exactly four answers")
	ErrEmptyAnswer       = errors.New("answer option is empty")
	ErrCorrectIndexRange = errors.New("correct answer index out of range")
)

// Schedule validation failures, checked in this order when enabling.
var (
	ErrMissingTitle      = errors.New("schedule title is required")
	ErrMissingStart      = errors.New("schedule start date is required")
	ErrMissingEnd        = errors.New("schedule end date is required")
	ErrStartNotBeforeEnd = errors.New("start date must be before end date")
	ErrStartNotFuture    = errors.New("start date must be in the future")
)

var (
	// ErrNotAuthorized is returned for admin operations without a valid gate session.
	ErrNotAuthorized = errors.New("admin authorization required")
	// ErrResultNotPersisted signals that a completed attempt was scored but the
	// result log write failed; the result itself is still valid.
	ErrResultNotPersisted = errors.New("result could not be persisted")
)
