package storage

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"masterly/internal/core/model"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	store := NewSettingsStore(t.TempDir())

	settings, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, model.DefaultSettings(), settings)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	store := NewSettingsStore(t.TempDir())

	settings := model.Settings{
		SkillName:               "Jazz Piano",
		DailyGoalMinutes:        90,
		IdleTimeoutMinutes:      3,
		ProductivityModeEnabled: true,
		AllowedApps:             []string{"musescore", "metronome"},
		BlockedApps:             []string{"steam"},
		AutoBackupDir:           "/tmp/backups",
	}
	require.NoError(t, store.Save(settings))

	loaded, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, settings, loaded)
}

func TestSaveRejectsInvalidSettings(t *testing.T) {
	dir := t.TempDir()
	store := NewSettingsStore(dir)

	settings := model.DefaultSettings()
	settings.DailyGoalMinutes = 0
	assert.Error(t, store.Save(settings))

	_, err := os.Stat(filepath.Join(dir, settingsFileName))
	assert.True(t, os.IsNotExist(err), "a rejected save writes nothing")
}

func TestApplyMergesPatch(t *testing.T) {
	store := NewSettingsStore(t.TempDir())
	require.NoError(t, store.Save(model.DefaultSettings()))

	goal := 45
	enabled := true
	blocked := []string{"tiktok", "steam"}
	updated, err := store.Apply(model.SettingsPatch{
		DailyGoalMinutes:        &goal,
		ProductivityModeEnabled: &enabled,
		BlockedApps:             &blocked,
	})
	require.NoError(t, err)

	assert.Equal(t, 45, updated.DailyGoalMinutes)
	assert.True(t, updated.ProductivityModeEnabled)
	assert.Equal(t, blocked, updated.BlockedApps)
	assert.Equal(t, model.DefaultSettings().SkillName, updated.SkillName, "untouched fields keep their values")

	loaded, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, updated, loaded)
}

func TestApplyRejectsInvalidPatch(t *testing.T) {
	store := NewSettingsStore(t.TempDir())
	require.NoError(t, store.Save(model.DefaultSettings()))

	badGoal := -10
	_, err := store.Apply(model.SettingsPatch{DailyGoalMinutes: &badGoal})
	assert.Error(t, err)

	loaded, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, model.DefaultSettings(), loaded)
}

func TestLoadIgnoresInvalidFileValues(t *testing.T) {
	dir := t.TempDir()
	store := NewSettingsStore(dir)

	raw := "skill_name: \"\"\ndaily_goal_minutes: -5\nidle_timeout_minutes: 0\nproductivity_mode_enabled: true\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, settingsFileName), []byte(raw), 0o644))

	settings, err := store.Load()
	require.NoError(t, err)

	defaults := model.DefaultSettings()
	assert.Equal(t, defaults.SkillName, settings.SkillName)
	assert.Equal(t, defaults.DailyGoalMinutes, settings.DailyGoalMinutes)
	assert.Equal(t, defaults.IdleTimeoutMinutes, settings.IdleTimeoutMinutes)
	assert.True(t, settings.ProductivityModeEnabled)
}
