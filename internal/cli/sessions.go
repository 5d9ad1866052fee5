package cli

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"masterly/internal/core/model"
)

func newSessionsCmd(application *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sessions",
		Short: "Inspect and edit recorded practice sessions",
	}
	cmd.AddCommand(
		newSessionsListCmd(application),
		newSessionsEditCmd(application),
		newSessionsDeleteCmd(application),
	)
	return cmd
}

func newSessionsListCmd(application *app) *cobra.Command {
	var (
		limit  int
		offset int
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recorded sessions, most recent first",
		RunE: func(cmd *cobra.Command, _ []string) error {
			sessions, err := application.ledger.List(cmd.Context(), limit, offset)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			if asJSON {
				encoder := json.NewEncoder(out)
				encoder.SetIndent("", "  ")
				return encoder.Encode(sessions)
			}

			if len(sessions) == 0 {
				fmt.Fprintln(out, "No sessions recorded yet.")
				return nil
			}
			for _, session := range sessions {
				fmt.Fprintf(out, "%s  %s  %-9s  %s\n",
					session.ID,
					session.StartTime.Local().Format("2006-01-02 15:04"),
					formatMinutes(session.DurationMinutes),
					session.SkillName)
				if session.Reflection.Practiced != "" {
					fmt.Fprintf(out, "    practiced: %s\n", session.Reflection.Practiced)
				}
				if session.Reflection.Notes != "" {
					fmt.Fprintf(out, "    notes: %s\n", session.Reflection.Notes)
				}
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "maximum number of sessions to show")
	cmd.Flags().IntVar(&offset, "offset", 0, "number of sessions to skip")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print sessions as JSON")
	return cmd
}

func newSessionsEditCmd(application *app) *cobra.Command {
	var (
		startFlag, endFlag                   string
		practiced, learned, nextFocus, notes string
	)

	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Edit a recorded session",
		Long:  "edit updates the given session. Changing either timestamp recomputes the stored duration from the new interval.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var patch model.SessionPatch

			if cmd.Flags().Changed("start") {
				start, err := time.Parse(time.RFC3339, startFlag)
				if err != nil {
					return fmt.Errorf("parse --start: %w", err)
				}
				patch.StartTime = &start
			}
			if cmd.Flags().Changed("end") {
				end, err := time.Parse(time.RFC3339, endFlag)
				if err != nil {
					return fmt.Errorf("parse --end: %w", err)
				}
				patch.EndTime = &end
			}
			if cmd.Flags().Changed("practiced") {
				patch.Practiced = &practiced
			}
			if cmd.Flags().Changed("learned") {
				patch.Learned = &learned
			}
			if cmd.Flags().Changed("next") {
				patch.NextFocus = &nextFocus
			}
			if cmd.Flags().Changed("notes") {
				patch.Notes = &notes
			}

			session, err := application.ledger.Update(cmd.Context(), args[0], patch)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated session %s (%s).\n",
				session.ID, formatMinutes(session.DurationMinutes))
			return nil
		},
	}

	cmd.Flags().StringVar(&startFlag, "start", "", "new start time (RFC 3339)")
	cmd.Flags().StringVar(&endFlag, "end", "", "new end time (RFC 3339)")
	cmd.Flags().StringVar(&practiced, "practiced", "", "what was practiced")
	cmd.Flags().StringVar(&learned, "learned", "", "what was learned")
	cmd.Flags().StringVar(&nextFocus, "next", "", "what to focus on next time")
	cmd.Flags().StringVar(&notes, "notes", "", "free-form session notes")
	return cmd
}

func newSessionsDeleteCmd(application *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a recorded session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := application.ledger.Delete(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted session %s.\n", args[0])
			return nil
		},
	}
}
