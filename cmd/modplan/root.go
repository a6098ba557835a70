package main

import (
	"os"

	"modplan/internal/version"

	"github.com/spf13/cobra"
)

var (
	// verboseFlag enables debug logging for all commands
	verboseFlag bool
)

var rootCmd = &cobra.Command{
	Use:   "modplan",
	Short: "modplan - ERP module planning from discovery interviews",
	Long: `modplan turns a discovery interview record into a validated ERP module
plan: it extracts requirement signals, lets domain agents propose modules,
merges competing proposals deterministically, resolves the dependency
closure against a versioned module registry, and writes the plan together
with configuration tasks, an implementation spec, and a full audit trail.`,
	Version: version.Info(),
}

func init() {
	rootCmd.SetVersionTemplate("modplan version {{.Version}}\n")
	rootCmd.PersistentFlags().BoolVar(&verboseFlag, "verbose", false,
		"Enable debug logging")
}

// resolveLogLevel determines the effective log level.
// Precedence: --verbose flag > MODPLAN_LOG_LEVEL env var > info
func resolveLogLevel() string {
	if verboseFlag {
		return "debug"
	}
	if env := os.Getenv("MODPLAN_LOG_LEVEL"); env != "" {
		return env
	}
	return "info"
}
