// Package analytics derives dashboard statistics from the session
// ledger. Compute is a pure function of (sessions, settings, now); no
// state is kept between calls.
package analytics

import (
	"time"

	"masterly/internal/core/model"
)

const dayKey = "2006-01-02"

// Compute aggregates the full session history into a dashboard
// snapshot. Sessions are bucketed by their start time in now's
// location; the same location defines day, week and month boundaries.
// Minute sums use the stored duration values only, which are already
// net of pauses.
func Compute(sessions []model.Session, settings model.Settings, now time.Time) model.DashboardStats {
	location := now.Location()
	dayStart := startOfDay(now, location)
	weekStart := startOfISOWeek(dayStart)
	monthStart := time.Date(dayStart.Year(), dayStart.Month(), 1, 0, 0, 0, 0, location)

	dayEnd := dayStart.AddDate(0, 0, 1)
	weekEnd := weekStart.AddDate(0, 0, 7)
	monthEnd := monthStart.AddDate(0, 1, 0)

	var stats model.DashboardStats
	minutesByDay := make(map[string]float64)

	for _, session := range sessions {
		start := session.StartTime.In(location)
		minutes := session.DurationMinutes
		if minutes < 0 {
			continue
		}

		stats.TotalMinutes += minutes
		if within(start, dayStart, dayEnd) {
			stats.TodayMinutes += minutes
		}
		if within(start, weekStart, weekEnd) {
			stats.WeekMinutes += minutes
		}
		if within(start, monthStart, monthEnd) {
			stats.MonthMinutes += minutes
		}
		minutesByDay[start.Format(dayKey)] += minutes
	}

	stats.DailyGoalMinutes = settings.DailyGoalMinutes
	if settings.DailyGoalMinutes > 0 {
		stats.DailyGoalProgress = clampRatio(stats.TodayMinutes / float64(settings.DailyGoalMinutes))
	}
	stats.GoalReached = stats.TodayMinutes >= float64(settings.DailyGoalMinutes)

	stats.TenThousandHourProgress = clampRatio(stats.TotalMinutes / model.TenThousandHourMinutes)
	stats.RemainingMinutes = model.TenThousandHourMinutes - stats.TotalMinutes
	if stats.RemainingMinutes < 0 {
		stats.RemainingMinutes = 0
	}

	stats.StreakDays = streakDays(minutesByDay, dayStart)
	return stats
}

// streakDays counts consecutive practiced days (at least one logged
// minute) ending at today. A day without practice breaks the walk;
// today itself is pending rather than broken, so an empty today defers
// to the run ending yesterday.
func streakDays(minutesByDay map[string]float64, today time.Time) int {
	day := today
	if minutesByDay[day.Format(dayKey)] < 1 {
		day = day.AddDate(0, 0, -1)
	}

	streak := 0
	for minutesByDay[day.Format(dayKey)] >= 1 {
		streak++
		day = day.AddDate(0, 0, -1)
	}
	return streak
}

func startOfDay(now time.Time, location *time.Location) time.Time {
	local := now.In(location)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, location)
}

// startOfISOWeek returns the Monday of the week containing day.
func startOfISOWeek(dayStart time.Time) time.Time {
	offset := (int(dayStart.Weekday()) + 6) % 7
	return dayStart.AddDate(0, 0, -offset)
}

func within(t, start, end time.Time) bool {
	return !t.Before(start) && t.Before(end)
}

func clampRatio(ratio float64) float64 {
	switch {
	case ratio < 0:
		return 0
	case ratio > 1:
		return 1
	default:
		return ratio
	}
}
