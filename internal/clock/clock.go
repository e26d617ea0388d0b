package clock

import (
	"sync"
	"time"
)

// Clock supplies the current instant to time-dependent ledger operations.
// Implementations must be monotonically non-decreasing.
type Clock interface {
	Now() time.Time
}

// System reads the operating system clock.
type System struct{}

// NewSystem returns a Clock backed by the OS wall clock.
func NewSystem() System {
	return System{}
}

func (System) Now() time.Time {
	return time.Now()
}

// Manual is a hand-advanced clock for tests and simulations. Time only
// moves forward; Advance with a negative duration is ignored.
type Manual struct {
	mu  sync.Mutex
	now time.Time
}

// NewManual returns a Manual clock starting at the given instant.
func NewManual(start time.Time) *Manual {
	return &Manual{now: start}
}

func (m *Manual) Now() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now
}

// Advance moves the clock forward by d.
func (m *Manual) Advance(d time.Duration) {
	if d < 0 {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.now = m.now.Add(d)
}
