package analytics

import (
	"sync"
	"time"
)

// GoalGate deduplicates the daily-goal notification so it fires at most
// once per local calendar day. The gate resets implicitly at midnight
// because the day key changes.
type GoalGate struct {
	mu       sync.Mutex
	firedDay string
}

// Fire reports whether a goal-reached notification should be emitted
// now. It returns true only the first time met is observed on a given
// day.
func (gate *GoalGate) Fire(now time.Time, met bool) bool {
	if !met {
		return false
	}
	day := now.Format(dayKey)

	gate.mu.Lock()
	defer gate.mu.Unlock()
	if gate.firedDay == day {
		return false
	}
	gate.firedDay = day
	return true
}
