package cli

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"masterly/internal/core/model"
	"masterly/internal/core/timer"
	"masterly/internal/storage"
)

type stubLedger struct {
	sessions []model.Session
}

func (ledger *stubLedger) Create(_ context.Context, session model.Session) (model.Session, error) {
	ledger.sessions = append(ledger.sessions, session)
	return session, nil
}

func (ledger *stubLedger) All(_ context.Context) ([]model.Session, error) {
	return ledger.sessions, nil
}

func newCommandTracker(t *testing.T) *timer.Tracker {
	t.Helper()
	return timer.New(model.DefaultSettings(), &stubLedger{}, timer.Config{
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
}

func TestFormatElapsed(t *testing.T) {
	tests := []struct {
		seconds int64
		want    string
	}{
		{0, "00:00 min"},
		{59, "00:59 min"},
		{125, "02:05 min"},
		{3599, "59:59 min"},
		{3600, "01:00:00 h"},
		{3661, "01:01:01 h"},
		{86399, "23:59:59 h"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, formatElapsed(tt.seconds))
	}
}

func TestFormatMinutes(t *testing.T) {
	assert.Equal(t, "0.0 min", formatMinutes(0))
	assert.Equal(t, "30.5 min", formatMinutes(30.5))
	assert.Equal(t, "1h 30m", formatMinutes(90))
	assert.Equal(t, "2h 05m", formatMinutes(125))
}

func TestRenderEvent(t *testing.T) {
	at := time.Date(2026, 8, 12, 9, 0, 0, 0, time.UTC)

	t.Run("tick rewrites the line in place", func(t *testing.T) {
		var out strings.Builder
		renderEvent(&out, timer.Event{Type: timer.EventTick, ElapsedSeconds: 125, At: at})
		assert.Equal(t, "\r02:05 min ", out.String())
	})

	t.Run("auto-pause names the reason", func(t *testing.T) {
		var out strings.Builder
		renderEvent(&out, timer.Event{Type: timer.EventAutoPaused, Reason: timer.ReasonIdle, At: at})
		assert.Contains(t, out.String(), "no user activity")
	})

	t.Run("goal reached reports today's minutes", func(t *testing.T) {
		var out strings.Builder
		renderEvent(&out, timer.Event{Type: timer.EventGoalReached, TodayMinutes: 120, At: at})
		assert.Contains(t, out.String(), "120 minutes")
	})

	t.Run("state changes stay silent", func(t *testing.T) {
		var out strings.Builder
		renderEvent(&out, timer.Event{Type: timer.EventStateChange, Phase: timer.PhaseRunning, At: at})
		assert.Empty(t, out.String())
	})
}

func TestDescribeReason(t *testing.T) {
	assert.Equal(t, "no user activity", describeReason(timer.ReasonIdle))
	assert.Equal(t, "distracting application", describeReason(timer.ReasonDistractingApp))
}

func TestRunCommand(t *testing.T) {
	tracker := newCommandTracker(t)
	_, err := tracker.Start()
	require.NoError(t, err)

	var out strings.Builder
	runCommand(tracker, "p", &out)
	assert.Equal(t, timer.PhaseManuallyPaused, tracker.Status().Phase)
	assert.Contains(t, out.String(), "Paused")

	out.Reset()
	runCommand(tracker, "p", &out)
	assert.Contains(t, out.String(), "Cannot pause")

	out.Reset()
	runCommand(tracker, "r", &out)
	assert.Equal(t, timer.PhaseRunning, tracker.Status().Phase)
	assert.Contains(t, out.String(), "Resumed")

	out.Reset()
	runCommand(tracker, "x", &out)
	assert.Contains(t, out.String(), "Unknown command")
	assert.Equal(t, timer.PhaseRunning, tracker.Status().Phase)
}

func TestWatchCommandsReadsLineByLine(t *testing.T) {
	tracker := newCommandTracker(t)
	_, err := tracker.Start()
	require.NoError(t, err)

	var out strings.Builder
	watchCommands(tracker, strings.NewReader("pause\n\nresume\n"), &out)

	assert.Equal(t, timer.PhaseRunning, tracker.Status().Phase)
	assert.Contains(t, out.String(), "Paused")
	assert.Contains(t, out.String(), "Resumed")
}

func TestDrainPendingFlushesBufferedEvents(t *testing.T) {
	events := make(chan timer.Event, 2)
	events <- timer.Event{Type: timer.EventGoalReached, TodayMinutes: 60}

	var out strings.Builder
	drainPending(&out, events)
	assert.Contains(t, out.String(), "Daily goal met")
}

func TestTrackAnnouncesGoalAfterInterrupt(t *testing.T) {
	dir := t.TempDir()
	ledger, err := storage.OpenLedger(filepath.Join(dir, "masterly.db"))
	require.NoError(t, err)
	t.Cleanup(func() { ledger.Close() })

	settings := model.DefaultSettings()
	settings.DailyGoalMinutes = 1
	store := storage.NewSettingsStore(dir)
	require.NoError(t, store.Save(settings))

	// One earlier session today already clears the one-minute goal, so
	// the stop triggered by the interrupt must announce it.
	start := time.Now()
	_, err = ledger.Create(context.Background(), model.Session{
		SkillName:       settings.SkillName,
		StartTime:       start,
		EndTime:         start.Add(59 * time.Minute),
		DurationMinutes: 59,
	})
	require.NoError(t, err)

	application := &app{
		logger:        slog.New(slog.NewTextHandler(io.Discard, nil)),
		ledger:        ledger,
		settingsStore: store,
		now:           time.Now,
	}

	cmd := newTrackCmd(application)
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetIn(strings.NewReader(""))

	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()
	cmd.SetContext(ctx)

	require.NoError(t, cmd.RunE(cmd, nil))
	assert.Contains(t, out.String(), "Logged")
	assert.Contains(t, out.String(), "Daily goal met")
}
