package main

import (
	"github.com/spf13/cobra"
)

func newRootCommand() *cobra.Command {
	var (
		configFlag string
		dbFlag     string
	)

	ctx := newCommandContext(&configFlag, &dbFlag)

	rootCmd := &cobra.Command{
		Use:   "krdb",
		Short: "Learning card database maintenance",
		Long: `Learning card database maintenance.

The study app reads its flashcards from a SQLite database. krdb
creates that database with the baseline Hangul deck, imports converted
vocabulary decks, reports learning progress, and takes consistent
backups while the app is running.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringVarP(&configFlag, "config", "c", "", "Configuration file path")
	rootCmd.PersistentFlags().StringVar(&dbFlag, "db", "", "Database file (default: card_db from configuration)")

	rootCmd.AddCommand(newInitCommand(ctx))
	rootCmd.AddCommand(newImportCommand(ctx))
	rootCmd.AddCommand(newStatsCommand(ctx))
	rootCmd.AddCommand(newBackupCommand(ctx))

	return rootCmd
}
