package duration

import (
	"errors"
	"time"
)

// Deadline errors.
var (
	ErrInvalidBudget = errors.New("invalid time budget")
)

// Deadline tracks a single time budget from its start point.
// The zero value is an already-expired deadline with no budget.
type Deadline struct {
	start  time.Time
	budget time.Duration
}

// NewDeadline starts a deadline with the given budget.
// A zero or negative budget is rejected.
func NewDeadline(budget time.Duration) (Deadline, error) {
	if budget <= 0 {
		return Deadline{}, ErrInvalidBudget
	}
	return Deadline{
		start:  time.Now(),
		budget: budget,
	}, nil
}

// Budget returns the total budget the deadline started with.
func (d Deadline) Budget() time.Duration {
	return d.budget
}

// ExpiresAt returns when the deadline expires.
func (d Deadline) ExpiresAt() time.Time {
	return d.start.Add(d.budget)
}

// Remaining returns the time left, floored at zero.
func (d Deadline) Remaining() time.Duration {
	remaining := d.budget - time.Since(d.start)
	if remaining < 0 {
		return 0
	}
	return remaining
}

// Expired reports whether the budget has been used up.
func (d Deadline) Expired() bool {
	return time.Since(d.start) >= d.budget
}

// Elapsed returns the time consumed since the deadline started.
func (d Deadline) Elapsed() time.Duration {
	return time.Since(d.start)
}
