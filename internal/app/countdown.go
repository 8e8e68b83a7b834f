package app

import (
	"context"
	"fmt"
	"sync"
	"time"

	"cyberquiz-service/internal/domain"
)

// Tick is one countdown update. While the schedule is PENDING it counts down
// to the start bound, while ACTIVE with an end bound it counts down to the
// end; otherwise the countdown fields are zero and Display is empty.
type Tick struct {
	Status  domain.AvailabilityStatus `json:"status"`
	Message string                    `json:"message,omitempty"`
	Label   string                    `json:"label,omitempty"`
	Days    int                       `json:"days"`
	Hours   int                       `json:"hours"`
	Minutes int                       `json:"minutes"`
	Seconds int                       `json:"seconds"`
	Display string                    `json:"display,omitempty"`
}

// ScheduleSource yields the current schedule for each evaluation.
type ScheduleSource func(ctx context.Context) domain.Schedule

// Countdown re-evaluates availability once per second and fans the result
// out to subscribers. Because every tick evaluates the schedule fresh, the
// status flips the instant a boundary passes rather than waiting for an
// external poll.
type Countdown struct {
	source   ScheduleSource
	now      func() time.Time
	interval time.Duration

	mu          sync.Mutex
	subscribers map[chan Tick]struct{}
}

func NewCountdown(source ScheduleSource) *Countdown {
	return NewCountdownWithClock(source, time.Now, time.Second)
}

// NewCountdownWithClock is test-only for deterministic ticks.
func NewCountdownWithClock(source ScheduleSource, now func() time.Time, interval time.Duration) *Countdown {
	return &Countdown{
		source:      source,
		now:         now,
		interval:    interval,
		subscribers: make(map[chan Tick]struct{}),
	}
}

// Run broadcasts ticks until the context is canceled. Each tick is a
// discrete, non-reentrant evaluation.
func (c *Countdown) Run(ctx context.Context) {
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.broadcast(c.Evaluate(ctx))
		}
	}
}

// Subscribe returns a channel of ticks, primed with the current evaluation.
// The caller must invoke cancel to avoid leaks.
func (c *Countdown) Subscribe(ctx context.Context) (<-chan Tick, func()) {
	ch := make(chan Tick, 8)

	c.mu.Lock()
	c.subscribers[ch] = struct{}{}
	c.mu.Unlock()

	ch <- c.Evaluate(ctx)

	cancel := func() {
		c.mu.Lock()
		if _, ok := c.subscribers[ch]; ok {
			delete(c.subscribers, ch)
			close(ch)
		}
		c.mu.Unlock()
	}
	return ch, cancel
}

// Evaluate computes a single countdown tick for the current schedule.
func (c *Countdown) Evaluate(ctx context.Context) Tick {
	schedule := c.source(ctx)
	now := c.now()
	eval := EvaluateSchedule(schedule, now)

	tick := Tick{Status: eval.Status, Message: eval.Message}

	var target *time.Time
	switch eval.Status {
	case domain.StatusPending:
		target = schedule.StartAt
		tick.Label = "До початку"
	case domain.StatusActive:
		target = schedule.EndAt
		tick.Label = "До завершення"
	}
	if target == nil {
		tick.Label = ""
		return tick
	}

	remaining := target.Sub(now)
	if remaining < 0 {
		remaining = 0
	}
	tick.Days, tick.Hours, tick.Minutes, tick.Seconds = splitDuration(remaining)
	tick.Display = fmt.Sprintf("%dд %dг %dхв %dс", tick.Days, tick.Hours, tick.Minutes, tick.Seconds)
	return tick
}

func (c *Countdown) broadcast(tick Tick) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for ch := range c.subscribers {
		select {
		case ch <- tick:
		default:
			// Drop the oldest tick so slow readers never block the loop.
			select {
			case <-ch:
			default:
			}
			ch <- tick
		}
	}
}

func splitDuration(d time.Duration) (days, hours, minutes, seconds int) {
	total := int(d / time.Second)
	days = total / 86400
	hours = total % 86400 / 3600
	minutes = total % 3600 / 60
	seconds = total % 60
	return days, hours, minutes, seconds
}
