package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"masterly/internal/core/model"
)

func newSettingsCmd(application *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Show or change the tracker configuration",
	}
	cmd.AddCommand(newSettingsShowCmd(application), newSettingsSetCmd(application))
	return cmd
}

func newSettingsShowCmd(application *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the current settings",
		RunE: func(cmd *cobra.Command, _ []string) error {
			settings, err := application.settingsStore.Load()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Skill:             %s\n", settings.SkillName)
			fmt.Fprintf(out, "Daily goal:        %d min\n", settings.DailyGoalMinutes)
			fmt.Fprintf(out, "Idle timeout:      %d min\n", settings.IdleTimeoutMinutes)
			fmt.Fprintf(out, "Productivity mode: %t\n", settings.ProductivityModeEnabled)
			fmt.Fprintf(out, "Allowed apps:      %s\n", joinOrDash(settings.AllowedApps))
			fmt.Fprintf(out, "Blocked apps:      %s\n", joinOrDash(settings.BlockedApps))
			fmt.Fprintf(out, "Auto-backup dir:   %s\n", orDash(settings.AutoBackupDir))
			return nil
		},
	}
}

func newSettingsSetCmd(application *app) *cobra.Command {
	var (
		skill        string
		dailyGoal    int
		idleTimeout  int
		productivity bool
		allowed      []string
		blocked      []string
		backupDir    string
	)

	cmd := &cobra.Command{
		Use:   "set",
		Short: "Update one or more settings",
		RunE: func(cmd *cobra.Command, _ []string) error {
			var patch model.SettingsPatch
			if cmd.Flags().Changed("skill") {
				patch.SkillName = &skill
			}
			if cmd.Flags().Changed("daily-goal") {
				patch.DailyGoalMinutes = &dailyGoal
			}
			if cmd.Flags().Changed("idle-timeout") {
				patch.IdleTimeoutMinutes = &idleTimeout
			}
			if cmd.Flags().Changed("productivity") {
				patch.ProductivityModeEnabled = &productivity
			}
			if cmd.Flags().Changed("allow") {
				patch.AllowedApps = &allowed
			}
			if cmd.Flags().Changed("block") {
				patch.BlockedApps = &blocked
			}
			if cmd.Flags().Changed("backup-dir") {
				patch.AutoBackupDir = &backupDir
			}

			settings, err := application.settingsStore.Apply(patch)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Settings saved for %s.\n", settings.SkillName)
			return nil
		},
	}

	cmd.Flags().StringVar(&skill, "skill", "", "skill being practiced")
	cmd.Flags().IntVar(&dailyGoal, "daily-goal", 0, "daily goal in minutes")
	cmd.Flags().IntVar(&idleTimeout, "idle-timeout", 0, "idle auto-pause threshold in minutes")
	cmd.Flags().BoolVar(&productivity, "productivity", false, "enable productivity mode")
	cmd.Flags().StringSliceVar(&allowed, "allow", nil, "allowed application matchers (case-insensitive substrings)")
	cmd.Flags().StringSliceVar(&blocked, "block", nil, "blocked application matchers (case-insensitive substrings)")
	cmd.Flags().StringVar(&backupDir, "backup-dir", "", "directory for automatic database snapshots")
	return cmd
}

func joinOrDash(values []string) string {
	if len(values) == 0 {
		return "-"
	}
	return strings.Join(values, ", ")
}

func orDash(value string) string {
	if value == "" {
		return "-"
	}
	return value
}
