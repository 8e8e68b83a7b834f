package app

import (
	"strings"
	"time"

	"cyberquiz-service/internal/domain"
)

// Evaluation is the outcome of checking a schedule at a point in time.
type Evaluation struct {
	Status  domain.AvailabilityStatus `json:"status"`
	Message string                    `json:"message,omitempty"`
}

// EvaluateSchedule classifies the schedule relative to now. The statuses are
// mutually exclusive: a disabled schedule is always DISABLED, an enabled one
// is PENDING before its start bound, EXPIRED after its end bound, and ACTIVE
// otherwise (including when either bound is absent).
func EvaluateSchedule(s domain.Schedule, now time.Time) Evaluation {
	if !s.IsEnabled {
		return Evaluation{
			Status:  domain.StatusDisabled,
			Message: "Тест тимчасово вимкнений адміністратором.",
		}
	}
	if s.StartAt != nil && now.Before(*s.StartAt) {
		return Evaluation{
			Status:  domain.StatusPending,
			Message: "Тест буде доступний з " + FormatDateTime(*s.StartAt),
		}
	}
	if s.EndAt != nil && now.After(*s.EndAt) {
		return Evaluation{
			Status:  domain.StatusExpired,
			Message: "Тест завершився " + FormatDateTime(*s.EndAt),
		}
	}
	return Evaluation{Status: domain.StatusActive}
}

// EnableSchedule validates the window parameters and returns a new enabled
// schedule. Checks run in a fixed order: title, start presence, end presence,
// ordering, start in the future.
func EnableSchedule(title string, startAt, endAt *time.Time, now time.Time) (domain.Schedule, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return domain.Schedule{}, domain.ErrMissingTitle
	}
	if startAt == nil {
		return domain.Schedule{}, domain.ErrMissingStart
	}
	if endAt == nil {
		return domain.Schedule{}, domain.ErrMissingEnd
	}
	if !startAt.Before(*endAt) {
		return domain.Schedule{}, domain.ErrStartNotBeforeEnd
	}
	if !startAt.After(now) {
		return domain.Schedule{}, domain.ErrStartNotFuture
	}
	start := *startAt
	end := *endAt
	return domain.Schedule{
		IsEnabled: true,
		StartAt:   &start,
		EndAt:     &end,
		Title:     title,
	}, nil
}

// DisableSchedule returns the canonical disabled schedule. Disabling clears
// the dates and title, so callers confirm intent before invoking.
func DisableSchedule() domain.Schedule {
	return domain.DefaultSchedule()
}

// FormatDateTime renders a timestamp the way availability messages show it.
func FormatDateTime(t time.Time) string {
	return t.Format("02.01.2006, 15:04")
}
