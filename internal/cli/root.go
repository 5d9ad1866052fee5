// Package cli wires the command tree around the tracker core and the
// local stores.
package cli

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"masterly/internal/storage"
)

const (
	appDirName = "masterly"
	dbFileName = "masterly.db"
)

type app struct {
	logger        *slog.Logger
	ledger        *storage.Ledger
	settingsStore *storage.SettingsStore
	now           func() time.Time
}

// Execute runs the root command.
func Execute() error {
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "masterly",
		Short:         "Deliberate-practice timer and progress tracker",
		Long:          "masterly times skill practice sessions, auto-pauses on inactivity or distracting applications, and tracks progress toward daily goals and the 10,000-hour mark.",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	application, err := wireApp()
	if err != nil {
		rootCmd.RunE = func(_ *cobra.Command, _ []string) error {
			return err
		}
		return rootCmd
	}

	rootCmd.AddCommand(
		newTrackCmd(application),
		newStatsCmd(application),
		newSessionsCmd(application),
		newSettingsCmd(application),
	)

	return rootCmd
}

func wireApp() (*app, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return nil, fmt.Errorf("resolve user config dir: %w", err)
	}
	dataDir := filepath.Join(configDir, appDirName)

	ledger, err := storage.OpenLedger(filepath.Join(dataDir, dbFileName))
	if err != nil {
		return nil, fmt.Errorf("open session ledger: %w", err)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	return &app{
		logger:        logger,
		ledger:        ledger,
		settingsStore: storage.NewSettingsStore(dataDir),
		now:           time.Now,
	}, nil
}
