// Package cli implements the command-line interface for Wrench.
package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/torque-labs/wrench-cli/internal/core/ports/driving"
	"github.com/torque-labs/wrench-cli/internal/logger"
)

// version is the CLI version, overridden at build time via ldflags.
var version = "dev"

// Persistent flags.
var (
	verbose   bool
	configDir string
)

// Services the commands run against. Wired lazily on first use so
// commands that never touch a provider never dial one; tests swap
// these directly.
var (
	settingsService driving.SettingsService
	ingestService   driving.Ingestor
	askService      driving.Assistant
	libraryService  driving.Library
)

var rootCmd = &cobra.Command{
	Use:   "wrench",
	Short: "Workshop manual assistant",
	Long: `Wrench indexes equipment manuals (PDF, DOCX, Markdown, plain text)
into a local vector store and answers repair questions grounded in them.

Typical workflow:
  wrench ingest              index the manuals folder
  wrench ask "question"      one-shot question with sources
  wrench chat                interactive session`,
	SilenceUsage: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verbose)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&configDir, "config", "", "Config directory (default ~/.wrench)")
}

// Execute runs the root command with the given context.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}
