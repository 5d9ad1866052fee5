package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"masterly/internal/core/model"
)

const settingsFileName = "settings.yaml"

type yamlSettings struct {
	SkillName               string   `yaml:"skill_name"`
	DailyGoalMinutes        int      `yaml:"daily_goal_minutes"`
	IdleTimeoutMinutes      int      `yaml:"idle_timeout_minutes"`
	ProductivityModeEnabled bool     `yaml:"productivity_mode_enabled"`
	AllowedApps             []string `yaml:"allowed_apps"`
	BlockedApps             []string `yaml:"blocked_apps"`
	AutoBackupDir           string   `yaml:"auto_backup_dir"`
}

// SettingsStore persists the singleton configuration record as YAML.
type SettingsStore struct {
	path string
}

// NewSettingsStore returns a store rooted at dir.
func NewSettingsStore(dir string) *SettingsStore {
	return &SettingsStore{path: filepath.Join(dir, settingsFileName)}
}

// Load reads the settings file. If it does not exist, defaults are
// returned. Invalid values in the file fall back to their defaults
// rather than failing the load.
func (store *SettingsStore) Load() (model.Settings, error) {
	settings := model.DefaultSettings()

	rawData, err := os.ReadFile(store.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return settings, nil
		}
		return settings, fmt.Errorf("read settings file: %w", err)
	}

	var fileData yamlSettings
	if err := yaml.Unmarshal(rawData, &fileData); err != nil {
		return settings, fmt.Errorf("parse settings yaml: %w", err)
	}

	applyYamlSettings(&settings, fileData)
	return settings, nil
}

// Save validates and writes the settings. The write is atomic so a
// concurrent reader never observes a partial record.
func (store *SettingsStore) Save(settings model.Settings) error {
	if err := settings.Validate(); err != nil {
		return fmt.Errorf("invalid settings: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(store.path), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	fileData := yamlSettings{
		SkillName:               settings.SkillName,
		DailyGoalMinutes:        settings.DailyGoalMinutes,
		IdleTimeoutMinutes:      settings.IdleTimeoutMinutes,
		ProductivityModeEnabled: settings.ProductivityModeEnabled,
		AllowedApps:             settings.AllowedApps,
		BlockedApps:             settings.BlockedApps,
		AutoBackupDir:           settings.AutoBackupDir,
	}

	serialized, err := yaml.Marshal(fileData)
	if err != nil {
		return fmt.Errorf("marshal settings yaml: %w", err)
	}

	tempPath := store.path + ".tmp"
	if err := os.WriteFile(tempPath, serialized, 0o644); err != nil {
		return fmt.Errorf("write settings file: %w", err)
	}
	if err := os.Rename(tempPath, store.path); err != nil {
		return fmt.Errorf("replace settings file: %w", err)
	}

	return nil
}

// Apply merges a partial update into the stored settings, validates the
// result and persists it.
func (store *SettingsStore) Apply(patch model.SettingsPatch) (model.Settings, error) {
	settings, err := store.Load()
	if err != nil {
		return model.Settings{}, err
	}

	if patch.SkillName != nil {
		settings.SkillName = *patch.SkillName
	}
	if patch.DailyGoalMinutes != nil {
		settings.DailyGoalMinutes = *patch.DailyGoalMinutes
	}
	if patch.IdleTimeoutMinutes != nil {
		settings.IdleTimeoutMinutes = *patch.IdleTimeoutMinutes
	}
	if patch.ProductivityModeEnabled != nil {
		settings.ProductivityModeEnabled = *patch.ProductivityModeEnabled
	}
	if patch.AllowedApps != nil {
		settings.AllowedApps = *patch.AllowedApps
	}
	if patch.BlockedApps != nil {
		settings.BlockedApps = *patch.BlockedApps
	}
	if patch.AutoBackupDir != nil {
		settings.AutoBackupDir = *patch.AutoBackupDir
	}

	if err := store.Save(settings); err != nil {
		return model.Settings{}, err
	}
	return settings, nil
}

func applyYamlSettings(settings *model.Settings, fileData yamlSettings) {
	if fileData.SkillName != "" {
		settings.SkillName = fileData.SkillName
	}
	if fileData.DailyGoalMinutes > 0 {
		settings.DailyGoalMinutes = fileData.DailyGoalMinutes
	}
	if fileData.IdleTimeoutMinutes > 0 {
		settings.IdleTimeoutMinutes = fileData.IdleTimeoutMinutes
	}
	settings.ProductivityModeEnabled = fileData.ProductivityModeEnabled
	settings.AllowedApps = fileData.AllowedApps
	settings.BlockedApps = fileData.BlockedApps
	settings.AutoBackupDir = fileData.AutoBackupDir
}
