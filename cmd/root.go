package cmd

import (
	"fmt"
	"os"

	"transit-catalog/core/logger"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// RootCmd represents the base command when called without any subcommands
var RootCmd = &cobra.Command{
	Use:   "transit-catalog",
	Short: "Versioned GTFS catalog",
	Long: `Transit Catalog imports GTFS snapshots into a versioned SQL catalog.
Agencies, routes and stops keep their surrogate ids while unchanged, and
every change is recorded as a new version with active_from/active_until.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func Execute() {
	if err := RootCmd.Execute(); err != nil {
		// Console encoding with ISO8601 timestamps for CLI output.
		cfg := &logger.Config{
			Level:  "debug",
			Format: "console",
		}

		l, logErr := logger.New(cfg)
		if logErr == nil {
			l.Error("command failed", zap.Error(err))
			_ = l.Sync()
		} else {
			fmt.Println(err)
		}
		os.Exit(1)
	}
}
