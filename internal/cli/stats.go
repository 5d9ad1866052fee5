package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"masterly/internal/core/analytics"
)

func newStatsCmd(application *app) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show dashboard statistics",
		RunE: func(cmd *cobra.Command, _ []string) error {
			settings, err := application.settingsStore.Load()
			if err != nil {
				return err
			}
			sessions, err := application.ledger.All(cmd.Context())
			if err != nil {
				return err
			}

			stats := analytics.Compute(sessions, settings, application.now())
			out := cmd.OutOrStdout()

			if asJSON {
				encoder := json.NewEncoder(out)
				encoder.SetIndent("", "  ")
				return encoder.Encode(stats)
			}

			fmt.Fprintf(out, "Skill:        %s\n", settings.SkillName)
			fmt.Fprintf(out, "Today:        %s\n", formatMinutes(stats.TodayMinutes))
			fmt.Fprintf(out, "This week:    %s\n", formatMinutes(stats.WeekMinutes))
			fmt.Fprintf(out, "This month:   %s\n", formatMinutes(stats.MonthMinutes))
			fmt.Fprintf(out, "All time:     %s\n", formatMinutes(stats.TotalMinutes))
			fmt.Fprintf(out, "Daily goal:   %s of %d min (%.0f%%)\n",
				formatMinutes(stats.TodayMinutes), stats.DailyGoalMinutes, stats.DailyGoalProgress*100)
			fmt.Fprintf(out, "Streak:       %d day(s)\n", stats.StreakDays)
			fmt.Fprintf(out, "10,000 hours: %.2f%% (%.0f min remaining)\n",
				stats.TenThousandHourProgress*100, stats.RemainingMinutes)
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print stats as JSON")
	return cmd
}
