// Package cmd provides CLI commands for the metra assistant.
package cmd

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

var rootVerbose bool

// rootCmd is the base command all subcommands attach to.
var rootCmd = &cobra.Command{
	Use:   "metra",
	Short: "IEC 61968-9 ReadingType assistant",
	Long: `metra generates, validates, and manages IEC 61968-9 ReadingType
identifiers (16 numeric fields joined by '-').

The deterministic core works offline: semantic generation from Chinese
measurement descriptions, identifier validation, fuzzy search over the
field dictionaries and the code library. The chat command adds an LLM
conversation layer on top when an API key is configured.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&rootVerbose, "verbose", "v", false, "Enable debug logging")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// newLogger builds the process logger honoring the verbose flag.
func newLogger() *slog.Logger {
	level := slog.LevelInfo
	if rootVerbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}
