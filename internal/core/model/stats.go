package model

// TenThousandHourMinutes is the mastery target in minutes.
const TenThousandHourMinutes = 10_000 * 60

// DashboardStats is the derived dashboard snapshot. It is recomputed on
// demand and never stored.
type DashboardStats struct {
	TodayMinutes float64 `json:"today_minutes"`
	WeekMinutes  float64 `json:"week_minutes"`
	MonthMinutes float64 `json:"month_minutes"`
	TotalMinutes float64 `json:"total_minutes"`

	DailyGoalMinutes  int     `json:"daily_goal_minutes"`
	DailyGoalProgress float64 `json:"daily_goal_progress"`
	GoalReached       bool    `json:"goal_reached"`

	TenThousandHourProgress float64 `json:"ten_thousand_hour_progress"`
	RemainingMinutes        float64 `json:"remaining_minutes"`

	StreakDays int `json:"streak_days"`
}
