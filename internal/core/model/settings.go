package model

import (
	"errors"
	"time"
)

// Settings is the singleton user configuration.
type Settings struct {
	SkillName               string
	DailyGoalMinutes        int
	IdleTimeoutMinutes      int
	ProductivityModeEnabled bool
	AllowedApps             []string
	BlockedApps             []string
	AutoBackupDir           string
}

// DefaultSettings returns the configuration used before the user saves
// anything.
func DefaultSettings() Settings {
	return Settings{
		SkillName:          "Deep Work",
		DailyGoalMinutes:   120,
		IdleTimeoutMinutes: 5,
	}
}

// Validate rejects settings that would disable goal tracking or idle
// detection entirely.
func (settings Settings) Validate() error {
	if settings.SkillName == "" {
		return errors.New("skill name must not be empty")
	}
	if settings.DailyGoalMinutes <= 0 {
		return errors.New("daily goal must be positive")
	}
	if settings.IdleTimeoutMinutes <= 0 {
		return errors.New("idle timeout must be positive")
	}
	return nil
}

// IdleTimeout returns the idle threshold as a duration.
func (settings Settings) IdleTimeout() time.Duration {
	return time.Duration(settings.IdleTimeoutMinutes) * time.Minute
}

// SettingsPatch is a partial settings update. Nil fields keep their
// current value.
type SettingsPatch struct {
	SkillName               *string
	DailyGoalMinutes        *int
	IdleTimeoutMinutes      *int
	ProductivityModeEnabled *bool
	AllowedApps             *[]string
	BlockedApps             *[]string
	AutoBackupDir           *string
}
