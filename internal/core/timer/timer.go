package timer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"masterly/internal/core/analytics"
	"masterly/internal/core/model"
)

// ErrProbeUnsupported indicates a platform probe is not available on
// this system. The corresponding auto-pause condition is disabled.
var ErrProbeUnsupported = errors.New("probe unsupported")

var (
	// ErrAlreadyRunning is returned by Start when a session is active.
	ErrAlreadyRunning = errors.New("timer already running")
	// ErrNotRunning is returned by Pause and Stop when no session is in
	// a phase that permits them.
	ErrNotRunning = errors.New("timer not running")
	// ErrNotPaused is returned by Resume outside of a manual pause.
	ErrNotPaused = errors.New("timer not paused")
)

// IdleProbe reports the duration of user inactivity.
type IdleProbe interface {
	IdleDuration() (time.Duration, error)
}

// ProcessProbe reports the names of currently running applications.
type ProcessProbe interface {
	Processes() ([]string, error)
}

// Ledger is the slice of the session store the tracker needs: appending
// completed sessions and reading history for the goal check.
type Ledger interface {
	Create(ctx context.Context, session model.Session) (model.Session, error)
	All(ctx context.Context) ([]model.Session, error)
}

// Config contains runtime options for Tracker.
type Config struct {
	TickInterval time.Duration
	// MaxTickGap is the largest wall-clock gap between consecutive
	// ticks treated as continuous running time. Larger gaps (system
	// sleep, suspended VM) are excluded from the session.
	MaxTickGap time.Duration
	Logger     *slog.Logger
}

// Status is a read-only snapshot of the tracker state.
type Status struct {
	Phase          Phase
	Reason         AutoPauseReason
	SessionID      string
	StartedAt      time.Time
	ElapsedSeconds int64
}

// Tracker is the state machine that owns the practice timer. It is the
// sole writer of timer state; commands and the tick loop serialize on
// one mutex.
type Tracker struct {
	mu       sync.Mutex
	settings model.Settings
	options  Config
	ledger   Ledger
	logger   *slog.Logger
	goal     analytics.GoalGate

	idleProbe    IdleProbe
	processProbe ProcessProbe

	phase        Phase
	reason       AutoPauseReason
	sessionID    string
	sessionStart time.Time
	segmentStart time.Time
	accumulated  time.Duration
	lastTick     time.Time

	events  []chan Event
	stopCh  chan struct{}
	running bool
	now     func() time.Time
}

// New creates a Tracker in the Idle phase.
func New(settings model.Settings, ledger Ledger, options Config) *Tracker {
	if options.TickInterval <= 0 {
		options.TickInterval = time.Second
	}
	if options.MaxTickGap <= 0 {
		options.MaxTickGap = 5 * options.TickInterval
	}
	if options.Logger == nil {
		options.Logger = slog.Default()
	}

	return &Tracker{
		settings: settings,
		options:  options,
		ledger:   ledger,
		logger:   options.Logger,
		phase:    PhaseIdle,
		stopCh:   make(chan struct{}),
		now:      time.Now,
	}
}

// SetIdleProbe injects the idle detection capability.
func (tracker *Tracker) SetIdleProbe(probe IdleProbe) {
	tracker.mu.Lock()
	defer tracker.mu.Unlock()
	tracker.idleProbe = probe
}

// SetProcessProbe injects the running-application capability.
func (tracker *Tracker) SetProcessProbe(probe ProcessProbe) {
	tracker.mu.Lock()
	defer tracker.mu.Unlock()
	tracker.processProbe = probe
}

// Subscribe registers a new observer channel. Delivery is lossy per
// subscriber: a full buffer drops the event rather than blocking the
// tick loop.
func (tracker *Tracker) Subscribe(buffer int) <-chan Event {
	if buffer <= 0 {
		buffer = 1
	}
	ch := make(chan Event, buffer)
	tracker.mu.Lock()
	tracker.events = append(tracker.events, ch)
	tracker.mu.Unlock()
	return ch
}

// Run launches the one-second tick loop. It is a no-op when the loop is
// already running.
func (tracker *Tracker) Run() {
	tracker.mu.Lock()
	if tracker.running {
		tracker.mu.Unlock()
		return
	}
	tracker.running = true
	tracker.mu.Unlock()

	go tracker.loop()
}

// Shutdown terminates the tick loop and closes observer channels. Any
// unstopped session is discarded; the ledger never holds an open-ended
// record.
func (tracker *Tracker) Shutdown() {
	tracker.mu.Lock()
	if !tracker.running {
		tracker.mu.Unlock()
		return
	}
	close(tracker.stopCh)
	tracker.running = false
	events := tracker.events
	tracker.events = nil
	tracker.mu.Unlock()

	for _, ch := range events {
		close(ch)
	}
}

// ApplySettings updates the runtime configuration used by subsequent
// ticks and sessions.
func (tracker *Tracker) ApplySettings(settings model.Settings) {
	tracker.mu.Lock()
	defer tracker.mu.Unlock()
	tracker.settings = settings
}

// Start begins a new practice session.
func (tracker *Tracker) Start() (Status, error) {
	tracker.mu.Lock()
	if tracker.phase != PhaseIdle {
		tracker.mu.Unlock()
		return Status{}, ErrAlreadyRunning
	}
	now := tracker.now()
	tracker.phase = PhaseRunning
	tracker.reason = ""
	tracker.sessionID = uuid.NewString()
	tracker.sessionStart = now
	tracker.segmentStart = now
	tracker.accumulated = 0
	tracker.lastTick = time.Time{}
	status := tracker.statusLocked(now)
	tracker.mu.Unlock()

	tracker.emit(Event{Type: EventStateChange, Phase: PhaseRunning, At: now})
	return status, nil
}

// Pause suspends the running session until Resume.
func (tracker *Tracker) Pause() (Status, error) {
	tracker.mu.Lock()
	if tracker.phase != PhaseRunning {
		tracker.mu.Unlock()
		return Status{}, ErrNotRunning
	}
	now := tracker.now()
	tracker.foldSegmentLocked(now)
	tracker.phase = PhaseManuallyPaused
	status := tracker.statusLocked(now)
	tracker.mu.Unlock()

	tracker.emit(Event{Type: EventStateChange, Phase: PhaseManuallyPaused, At: now})
	return status, nil
}

// Resume continues a manually paused session. Automatic pauses clear on
// their own once the triggering condition is gone.
func (tracker *Tracker) Resume() (Status, error) {
	tracker.mu.Lock()
	if tracker.phase != PhaseManuallyPaused {
		tracker.mu.Unlock()
		return Status{}, ErrNotPaused
	}
	now := tracker.now()
	tracker.phase = PhaseRunning
	tracker.segmentStart = now
	status := tracker.statusLocked(now)
	tracker.mu.Unlock()

	tracker.emit(Event{Type: EventStateChange, Phase: PhaseRunning, At: now})
	return status, nil
}

// Stop ends the session from any non-idle phase, persists the completed
// record and resets to Idle. On a persistence failure the in-memory
// state is kept so the call can be retried without losing elapsed time.
func (tracker *Tracker) Stop(ctx context.Context, reflection model.Reflection) (model.Session, error) {
	tracker.mu.Lock()
	if tracker.phase == PhaseIdle {
		tracker.mu.Unlock()
		return model.Session{}, ErrNotRunning
	}
	now := tracker.now()
	session := model.Session{
		ID:              tracker.sessionID,
		SkillName:       tracker.settings.SkillName,
		StartTime:       tracker.sessionStart,
		EndTime:         now,
		DurationMinutes: tracker.elapsedLocked(now).Seconds() / 60,
		Reflection:      reflection,
	}
	tracker.mu.Unlock()

	persisted, err := tracker.ledger.Create(ctx, session)
	if err != nil {
		return model.Session{}, fmt.Errorf("persist session: %w", err)
	}

	tracker.mu.Lock()
	tracker.phase = PhaseIdle
	tracker.reason = ""
	tracker.sessionID = ""
	tracker.sessionStart = time.Time{}
	tracker.segmentStart = time.Time{}
	tracker.accumulated = 0
	tracker.mu.Unlock()

	tracker.emit(Event{Type: EventStateChange, Phase: PhaseIdle, At: now})
	tracker.checkGoal(ctx, now)
	return persisted, nil
}

// Status returns a snapshot of the current timer state.
func (tracker *Tracker) Status() Status {
	tracker.mu.Lock()
	defer tracker.mu.Unlock()
	return tracker.statusLocked(tracker.now())
}

func (tracker *Tracker) statusLocked(now time.Time) Status {
	return Status{
		Phase:          tracker.phase,
		Reason:         tracker.reason,
		SessionID:      tracker.sessionID,
		StartedAt:      tracker.sessionStart,
		ElapsedSeconds: int64(tracker.elapsedLocked(now) / time.Second),
	}
}

func (tracker *Tracker) loop() {
	ticker := time.NewTicker(tracker.options.TickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-tracker.stopCh:
			return
		case tickTime := <-ticker.C:
			tracker.tick(tickTime)
		}
	}
}

// tick advances the state machine by one heartbeat. It detects clock
// anomalies, evaluates the idle and process monitors and applies
// auto-pause and auto-resume transitions.
func (tracker *Tracker) tick(tickTime time.Time) {
	tracker.mu.Lock()

	if tracker.phase == PhaseRunning && !tracker.lastTick.IsZero() {
		if gap := tickTime.Sub(tracker.lastTick); gap > tracker.options.MaxTickGap {
			// The gap is unaccounted time (system sleep, clock skew).
			// Keep what had accrued before it and restart the segment.
			// The segment can postdate the last tick after a Resume, so
			// the banked delta must never go negative.
			if banked := tracker.lastTick.Sub(tracker.segmentStart); banked > 0 {
				tracker.accumulated += banked
			}
			tracker.segmentStart = tickTime
			tracker.logger.Warn("clock anomaly: excluding gap between ticks",
				"gap", gap, "session_id", tracker.sessionID)
		}
	}
	tracker.lastTick = tickTime

	switch tracker.phase {
	case PhaseRunning:
		if reason, triggered := tracker.autoPauseReasonLocked(); triggered {
			tracker.foldSegmentLocked(tickTime)
			tracker.phase = PhaseAutoPaused
			tracker.reason = reason
			tracker.mu.Unlock()
			tracker.emit(Event{Type: EventAutoPaused, Phase: PhaseAutoPaused, Reason: reason, At: tickTime})
			return
		}
		elapsed := tracker.elapsedLocked(tickTime)
		tracker.mu.Unlock()
		tracker.emit(Event{
			Type:           EventTick,
			Phase:          PhaseRunning,
			ElapsedSeconds: int64(elapsed / time.Second),
			At:             tickTime,
		})
	case PhaseAutoPaused:
		if reason, triggered := tracker.autoPauseReasonLocked(); triggered {
			// Still away or still distracted; the cause may shift
			// while paused.
			tracker.reason = reason
			tracker.mu.Unlock()
			return
		}
		tracker.phase = PhaseRunning
		tracker.reason = ""
		tracker.segmentStart = tickTime
		tracker.mu.Unlock()
		tracker.emit(Event{Type: EventStateChange, Phase: PhaseRunning, At: tickTime})
	default:
		tracker.mu.Unlock()
	}
}

// autoPauseReasonLocked evaluates both interrupt sources. Idle is
// checked first: when both conditions hold it is the stronger signal of
// absence.
func (tracker *Tracker) autoPauseReasonLocked() (AutoPauseReason, bool) {
	if idle, ok := tracker.idleDurationLocked(); ok && idle >= tracker.settings.IdleTimeout() {
		return ReasonIdle, true
	}
	if tracker.settings.ProductivityModeEnabled {
		if processes, ok := tracker.processesLocked(); ok {
			distraction := EvaluateProcesses(processes, tracker.settings.AllowedApps, tracker.settings.BlockedApps)
			if distraction.IsDistracted() {
				return ReasonDistractingApp, true
			}
		}
	}
	return "", false
}

func (tracker *Tracker) idleDurationLocked() (time.Duration, bool) {
	if tracker.idleProbe == nil {
		return 0, false
	}
	idle, err := tracker.idleProbe.IdleDuration()
	if err != nil {
		if errors.Is(err, ErrProbeUnsupported) {
			tracker.idleProbe = nil
			tracker.logger.Info("idle detection unavailable, idle auto-pause disabled")
			return 0, false
		}
		tracker.logger.Debug("idle probe failed", "error", err)
		return 0, false
	}
	return idle, true
}

func (tracker *Tracker) processesLocked() ([]string, bool) {
	if tracker.processProbe == nil {
		return nil, false
	}
	processes, err := tracker.processProbe.Processes()
	if err != nil {
		if errors.Is(err, ErrProbeUnsupported) {
			tracker.processProbe = nil
			tracker.logger.Info("process detection unavailable, productivity auto-pause disabled")
			return nil, false
		}
		tracker.logger.Debug("process probe failed", "error", err)
		return nil, false
	}
	return processes, true
}

// foldSegmentLocked banks the elapsed time of the current running
// segment into the accumulated total.
func (tracker *Tracker) foldSegmentLocked(now time.Time) {
	if tracker.segmentStart.IsZero() {
		return
	}
	if elapsed := now.Sub(tracker.segmentStart); elapsed > 0 {
		tracker.accumulated += elapsed
	}
	tracker.segmentStart = time.Time{}
}

func (tracker *Tracker) elapsedLocked(now time.Time) time.Duration {
	elapsed := tracker.accumulated
	if tracker.phase == PhaseRunning && !tracker.segmentStart.IsZero() {
		if live := now.Sub(tracker.segmentStart); live > 0 {
			elapsed += live
		}
	}
	return elapsed
}

// checkGoal recomputes dashboard stats after a persisted stop and fires
// the goal-reached event at most once per local calendar day.
func (tracker *Tracker) checkGoal(ctx context.Context, now time.Time) {
	sessions, err := tracker.ledger.All(ctx)
	if err != nil {
		tracker.logger.Warn("goal check skipped", "error", err)
		return
	}
	tracker.mu.Lock()
	settings := tracker.settings
	tracker.mu.Unlock()

	stats := analytics.Compute(sessions, settings, now)
	if tracker.goal.Fire(now, stats.GoalReached) {
		tracker.emit(Event{
			Type:         EventGoalReached,
			Phase:        PhaseIdle,
			TodayMinutes: stats.TodayMinutes,
			At:           now,
		})
	}
}

func (tracker *Tracker) emit(event Event) {
	tracker.mu.Lock()
	defer tracker.mu.Unlock()
	tracker.emitLocked(event)
}

func (tracker *Tracker) emitLocked(event Event) {
	for _, ch := range tracker.events {
		select {
		case ch <- event:
		default:
		}
	}
}
