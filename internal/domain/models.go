package domain

import (
	"strings"
	"time"
)

// AnswerCount is the fixed number of options per question.
const AnswerCount = 4

// Unanswered marks a question position with no selected answer yet.
const Unanswered = -1

// DefaultTitle is the schedule title restored when the test is disabled.
const DefaultTitle = "Тестування з кібербезпеки"

// DepartmentPlaceholder is the unselected value of the department input.
const DepartmentPlaceholder = "Оберіть підрозділ"

// Departments lists the organizational units participants choose from.
var Departments = []string{
	"Апарат",
	"Департамент комунікацій",
	"Департамент охорони здоров'я",
	"Департамент регіонального розвитку",
	"Департамент освіти і науки",
	"Департамент фінансів",
	"Департамент соціального захисту населення",
	"Департамент капітального будівництва",
	"Управління культури",
	"Управління молоді та спорту",
	"Управління екології та природних ресурсів",
	"Управління агропромислового розвитку",
	"Управління цивільного захисту населення",
	"Юридичне управління",
	"Служба у справах дітей",
	"Державний архів Чернівецької області",
	"Департамент систем життєзабезпечення",
	"Управління з питань ветеранської політики",
	"Управління цифрового розвитку, цифрових трансформацій і цифровізації",
	"Департамент оборонної роботи",
}

// Question is a single multiple-choice item with exactly four options.
type Question struct {
	Text         string   `json:"question"`
	ImageURL     string   `json:"image"`
	Answers      []string `json:"answers"`
	CorrectIndex int      `json:"correct"`
}

// Validate reports the first constraint a question violates, or nil.
func (q Question) Validate() error {
	if strings.TrimSpace(q.Text) == "" {
		return ErrEmptyQuestionText
	}
	if len(q.Answers) != AnswerCount {
		return ErrWrongAnswerCount
	}
	for _, a := range q.Answers {
		if strings.TrimSpace(a) == "" {
			return ErrEmptyAnswer
		}
	}
	if q.CorrectIndex < 0 || q.CorrectIndex >= AnswerCount {
		return ErrCorrectIndexRange
	}
	return nil
}

// Result is one completed attempt. Results are append-only and never mutated.
type Result struct {
	FullName    string    `json:"fullName"`
	Department  string    `json:"department"`
	Correct     int       `json:"correct"`
	Incorrect   int       `json:"incorrect"`
	Total       int       `json:"total"`
	Score       int       `json:"score"`
	CompletedAt time.Time `json:"date"`
}

// Schedule is the configured availability window for starting attempts.
type Schedule struct {
	IsEnabled bool       `json:"isActive"`
	StartAt   *time.Time `json:"startDate"`
	EndAt     *time.Time `json:"endDate"`
	Title     string     `json:"title"`
}

// DefaultSchedule returns the canonical disabled schedule.
func DefaultSchedule() Schedule {
	return Schedule{Title: DefaultTitle}
}

// AvailabilityStatus classifies whether attempts may start right now.
type AvailabilityStatus string

const (
	StatusDisabled AvailabilityStatus = "DISABLED"
	StatusPending  AvailabilityStatus = "PENDING"
	StatusActive   AvailabilityStatus = "ACTIVE"
	StatusExpired  AvailabilityStatus = "EXPIRED"
)

// AdminSession is a cached, time-limited record of an external authorization
// decision. It carries no verification of its own.
type AdminSession struct {
	Authorized bool           `json:"authorized"`
	GrantedAt  time.Time      `json:"timestamp"`
	UserData   map[string]any `json:"userData,omitempty"`
}

// Tier groups scores into the feedback bands shown after submission.
type Tier string

const (
	TierExcellent Tier = "excellent"
	TierGood      Tier = "good"
	TierNeedsWork Tier = "needs_work"
)

// TierForScore maps a percent score onto its feedback tier.
func TierForScore(score int) Tier {
	switch {
	case score >= 80:
		return TierExcellent
	case score >= 60:
		return TierGood
	default:
		return TierNeedsWork
	}
}

// Message returns the participant-facing text for the tier.
func (t Tier) Message() string {
	switch t {
	case TierExcellent:
		return "Відмінно! Ви добре розумієте основи кібербезпеки! 🎉"
	case TierGood:
		return "Добре! Але є над чим попрацювати. 💪"
	default:
		return "Потрібно серйозно вивчити основи кібербезпеки! 📚"
	}
}
