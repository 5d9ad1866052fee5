package timer

import "time"

// Phase represents the current state of the practice timer.
type Phase string

const (
	PhaseIdle           Phase = "idle"
	PhaseRunning        Phase = "running"
	PhaseManuallyPaused Phase = "paused"
	PhaseAutoPaused     Phase = "auto_paused"
)

// AutoPauseReason identifies which monitor triggered an automatic pause.
type AutoPauseReason string

const (
	ReasonIdle           AutoPauseReason = "idle"
	ReasonDistractingApp AutoPauseReason = "distracting_app"
)

// EventType defines the type of tracker event.
type EventType string

const (
	EventStateChange EventType = "state_change"
	EventTick        EventType = "tick"
	EventAutoPaused  EventType = "auto_paused"
	EventGoalReached EventType = "goal_reached"
)

// Event represents a tracker update for observers.
type Event struct {
	Type           EventType
	Phase          Phase
	Reason         AutoPauseReason
	ElapsedSeconds int64
	TodayMinutes   float64
	At             time.Time
}
