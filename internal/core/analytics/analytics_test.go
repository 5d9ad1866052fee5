package analytics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"masterly/internal/core/model"
)

// 2026-08-12 is a Wednesday; the ISO week starts Monday 2026-08-10.
var testNow = time.Date(2026, 8, 12, 12, 0, 0, 0, time.UTC)

func session(start time.Time, minutes float64) model.Session {
	return model.Session{
		ID:              "s-" + start.Format("20060102-150405"),
		SkillName:       "Guitar",
		StartTime:       start,
		EndTime:         start.Add(time.Duration(minutes * float64(time.Minute))),
		DurationMinutes: minutes,
	}
}

func TestComputeWindows(t *testing.T) {
	sessions := []model.Session{
		session(time.Date(2026, 8, 12, 8, 0, 0, 0, time.UTC), 30),  // today
		session(time.Date(2026, 8, 11, 20, 0, 0, 0, time.UTC), 45), // this week
		session(time.Date(2026, 8, 1, 9, 0, 0, 0, time.UTC), 60),   // this month
		session(time.Date(2026, 7, 15, 9, 0, 0, 0, time.UTC), 120), // older
	}

	stats := Compute(sessions, model.DefaultSettings(), testNow)

	assert.InDelta(t, 30, stats.TodayMinutes, 0.001)
	assert.InDelta(t, 75, stats.WeekMinutes, 0.001)
	assert.InDelta(t, 135, stats.MonthMinutes, 0.001)
	assert.InDelta(t, 255, stats.TotalMinutes, 0.001)
}

func TestComputeIsIdempotent(t *testing.T) {
	sessions := []model.Session{
		session(time.Date(2026, 8, 12, 8, 0, 0, 0, time.UTC), 30),
		session(time.Date(2026, 8, 11, 8, 0, 0, 0, time.UTC), 45),
	}
	settings := model.DefaultSettings()

	first := Compute(sessions, settings, testNow)
	second := Compute(sessions, settings, testNow)
	assert.Equal(t, first, second)
}

func TestDailyGoalProgress(t *testing.T) {
	settings := model.DefaultSettings()
	settings.DailyGoalMinutes = 60

	t.Run("exactly met", func(t *testing.T) {
		sessions := []model.Session{
			session(time.Date(2026, 8, 12, 8, 0, 0, 0, time.UTC), 25),
			session(time.Date(2026, 8, 12, 10, 0, 0, 0, time.UTC), 35),
		}
		stats := Compute(sessions, settings, testNow)
		assert.InDelta(t, 1.0, stats.DailyGoalProgress, 0.0001)
		assert.True(t, stats.GoalReached)
	})

	t.Run("partially met", func(t *testing.T) {
		sessions := []model.Session{
			session(time.Date(2026, 8, 12, 8, 0, 0, 0, time.UTC), 30),
		}
		stats := Compute(sessions, settings, testNow)
		assert.InDelta(t, 0.5, stats.DailyGoalProgress, 0.0001)
		assert.False(t, stats.GoalReached)
	})

	t.Run("clamped above one", func(t *testing.T) {
		sessions := []model.Session{
			session(time.Date(2026, 8, 12, 8, 0, 0, 0, time.UTC), 240),
		}
		stats := Compute(sessions, settings, testNow)
		assert.InDelta(t, 1.0, stats.DailyGoalProgress, 0.0001)
	})
}

func TestTenThousandHourProgress(t *testing.T) {
	sessions := []model.Session{
		session(time.Date(2026, 8, 1, 8, 0, 0, 0, time.UTC), 300_000),
	}
	stats := Compute(sessions, model.DefaultSettings(), testNow)

	assert.InDelta(t, 0.5, stats.TenThousandHourProgress, 0.0001)
	assert.InDelta(t, 300_000, stats.RemainingMinutes, 0.001)
}

func TestStreakDays(t *testing.T) {
	day := func(offset int) time.Time {
		return time.Date(2026, 8, 12+offset, 9, 0, 0, 0, time.UTC)
	}

	tests := []struct {
		name     string
		sessions []model.Session
		want     int
	}{
		{
			name: "three consecutive days",
			sessions: []model.Session{
				session(day(-2), 30),
				session(day(-1), 30),
				session(day(0), 30),
			},
			want: 3,
		},
		{
			name: "gap breaks continuity",
			sessions: []model.Session{
				session(day(-2), 30),
				session(day(0), 30),
			},
			want: 1,
		},
		{
			name: "empty today defers to the run ending yesterday",
			sessions: []model.Session{
				session(day(-2), 30),
				session(day(-1), 30),
			},
			want: 2,
		},
		{
			name: "under one minute today does not count",
			sessions: []model.Session{
				session(day(-1), 30),
				session(day(0), 0.5),
			},
			want: 1,
		},
		{
			name: "no sessions",
			want: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stats := Compute(tt.sessions, model.DefaultSettings(), testNow)
			assert.Equal(t, tt.want, stats.StreakDays)
		})
	}
}

func TestDayBoundaryUsesLocalTimezone(t *testing.T) {
	location := time.FixedZone("UTC-5", -5*3600)
	now := time.Date(2026, 8, 12, 12, 0, 0, 0, location)

	// 03:00 UTC on the 12th is 22:00 on the 11th in UTC-5.
	sessions := []model.Session{
		session(time.Date(2026, 8, 12, 3, 0, 0, 0, time.UTC), 30),
	}
	stats := Compute(sessions, model.DefaultSettings(), now)

	assert.Zero(t, stats.TodayMinutes)
	assert.Equal(t, 1, stats.StreakDays, "yesterday's late session keeps the streak pending today")
}

func TestZeroDurationSessionsTolerated(t *testing.T) {
	sessions := []model.Session{
		session(time.Date(2026, 8, 12, 8, 0, 0, 0, time.UTC), 0),
		session(time.Date(2026, 8, 12, 9, 0, 0, 0, time.UTC), 15),
	}
	stats := Compute(sessions, model.DefaultSettings(), testNow)

	require.InDelta(t, 15, stats.TodayMinutes, 0.001)
	assert.Equal(t, 1, stats.StreakDays)
}
