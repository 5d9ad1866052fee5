package analytics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestGoalGateFiresOncePerDay(t *testing.T) {
	var gate GoalGate
	noon := time.Date(2026, 8, 12, 12, 0, 0, 0, time.UTC)

	assert.False(t, gate.Fire(noon, false))
	assert.True(t, gate.Fire(noon, true))
	assert.False(t, gate.Fire(noon, true))
	assert.False(t, gate.Fire(noon.Add(3*time.Hour), true))
}

func TestGoalGateResetsAtMidnight(t *testing.T) {
	var gate GoalGate
	evening := time.Date(2026, 8, 12, 23, 30, 0, 0, time.UTC)

	assert.True(t, gate.Fire(evening, true))
	assert.True(t, gate.Fire(evening.Add(time.Hour), true), "a new day opens the gate again")
}
