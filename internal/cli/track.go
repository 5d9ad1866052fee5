package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"masterly/internal/core/model"
	"masterly/internal/core/timer"
	"masterly/internal/platform"
)

func newTrackCmd(application *app) *cobra.Command {
	var (
		skill      string
		reflection model.Reflection
	)

	cmd := &cobra.Command{
		Use:   "track",
		Short: "Start a practice session and time it until interrupted",
		Long:  "track starts the practice timer in the foreground. The session auto-pauses on inactivity or, in productivity mode, when a blocked application is running, and resumes on its own once the condition clears. Type p to pause manually, r to resume, and press Ctrl-C to stop and record the session.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			settings, err := application.settingsStore.Load()
			if err != nil {
				return err
			}
			if skill != "" {
				settings.SkillName = skill
			}

			tracker := timer.New(settings, application.ledger, timer.Config{
				Logger: application.logger,
			})
			tracker.SetIdleProbe(platform.NewIdleProbe())
			tracker.SetProcessProbe(platform.NewProcessProbe())

			events := tracker.Subscribe(16)
			tracker.Run()
			defer tracker.Shutdown()

			if _, err := tracker.Start(); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Practicing %s. Type p to pause, r to resume, Ctrl-C to stop.\n", settings.SkillName)

			go watchCommands(tracker, cmd.InOrStdin(), out)

			ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

		watch:
			for {
				select {
				case <-ctx.Done():
					break watch
				case event, ok := <-events:
					if !ok {
						break watch
					}
					renderEvent(out, event)
				}
			}
			cancel()

			session, err := tracker.Stop(context.Background(), reflection)
			if err != nil {
				return fmt.Errorf("stop session: %w", err)
			}
			fmt.Fprintf(out, "\nLogged %s of %s practice.\n",
				formatMinutes(session.DurationMinutes), session.SkillName)

			// Stop emits its final events after the watch loop has
			// already exited; flush them so the goal announcement is
			// not lost in the subscriber buffer.
			drainPending(out, events)

			if settings.AutoBackupDir != "" {
				snapshot, err := application.ledger.BackupTo(settings.AutoBackupDir)
				if err != nil {
					application.logger.Warn("backup failed", "error", err)
				} else {
					application.logger.Info("backup saved", "path", snapshot)
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&skill, "skill", "", "override the configured skill name for this session")
	cmd.Flags().StringVar(&reflection.Practiced, "practiced", "", "what was practiced")
	cmd.Flags().StringVar(&reflection.Learned, "learned", "", "what was learned")
	cmd.Flags().StringVar(&reflection.NextFocus, "next", "", "what to focus on next time")
	cmd.Flags().StringVar(&reflection.Notes, "notes", "", "free-form session notes")

	return cmd
}

// watchCommands maps console input onto the manual timer commands while
// the watch loop owns the screen.
func watchCommands(tracker *timer.Tracker, in io.Reader, out io.Writer) {
	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		runCommand(tracker, strings.TrimSpace(scanner.Text()), out)
	}
}

func runCommand(tracker *timer.Tracker, input string, out io.Writer) {
	switch strings.ToLower(input) {
	case "":
	case "p", "pause":
		if _, err := tracker.Pause(); err != nil {
			fmt.Fprintf(out, "\nCannot pause: %v\n", err)
			return
		}
		fmt.Fprintln(out, "\nPaused. Type r to resume.")
	case "r", "resume":
		if _, err := tracker.Resume(); err != nil {
			fmt.Fprintf(out, "\nCannot resume: %v\n", err)
			return
		}
		fmt.Fprintln(out, "\nResumed.")
	default:
		fmt.Fprintf(out, "\nUnknown command %q. Type p to pause, r to resume.\n", input)
	}
}

// drainPending renders whatever is still buffered without blocking.
func drainPending(out io.Writer, events <-chan timer.Event) {
	for {
		select {
		case event, ok := <-events:
			if !ok {
				return
			}
			renderEvent(out, event)
		default:
			return
		}
	}
}

func renderEvent(out io.Writer, event timer.Event) {
	switch event.Type {
	case timer.EventTick:
		fmt.Fprintf(out, "\r%s ", formatElapsed(event.ElapsedSeconds))
	case timer.EventAutoPaused:
		fmt.Fprintf(out, "\nAuto-paused (%s). Tracking resumes when you are back.\n", describeReason(event.Reason))
	case timer.EventGoalReached:
		fmt.Fprintf(out, "\nDaily goal met: %.0f minutes logged today.\n", event.TodayMinutes)
	}
}

func describeReason(reason timer.AutoPauseReason) string {
	switch reason {
	case timer.ReasonIdle:
		return "no user activity"
	case timer.ReasonDistractingApp:
		return "distracting application"
	default:
		return string(reason)
	}
}

func formatElapsed(seconds int64) string {
	hours := seconds / 3600
	minutes := (seconds % 3600) / 60
	secs := seconds % 60
	if hours > 0 {
		return fmt.Sprintf("%02d:%02d:%02d h", hours, minutes, secs)
	}
	return fmt.Sprintf("%02d:%02d min", minutes, secs)
}

func formatMinutes(minutes float64) string {
	if minutes >= 60 {
		hours := int(minutes) / 60
		remainder := minutes - float64(hours*60)
		return fmt.Sprintf("%dh %02.0fm", hours, remainder)
	}
	return fmt.Sprintf("%.1f min", minutes)
}
