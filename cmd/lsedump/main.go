package main

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"lsedump/logger"
)

func main() {
	// Load environment variables
	godotenv.Load()

	// Initialize logger first
	logger.Init()

	rootCmd := &cobra.Command{
		Use:   "lsedump",
		Short: "Dump LSE share-chat posts for a user or a ticker",
		Long: `lsedump walks the London South East share-chat pages for one user
profile or one ticker symbol, page by page, and prints every post it
finds. With --save, posts are also written to a local SQLite database,
and posts seen in an earlier run are skipped.

Exactly one of --user or --ticker must be given.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runDump,
	}
	addDumpFlags(rootCmd)
	rootCmd.AddCommand(analyzeCmd())

	if err := rootCmd.Execute(); err != nil {
		logger.Default.Error().Err(err).Msg("Command failed")
		os.Exit(1)
	}
}
