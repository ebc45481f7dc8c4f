package main

import (
	"fmt"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/PheelaV/kr-notebook/internal/config"
	"github.com/PheelaV/kr-notebook/internal/report"
)

func newInitCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Create the learning database and seed the baseline deck",
		Long: `Create the learning database and seed the baseline deck.

The baseline deck holds the Hangul recognition and recall cards the
study app starts from, split into four tiers. A database that already
contains cards is left untouched.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			seeded, err := store.SeedBaseline(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Card database: %s\n", store.Path())
			if seeded == 0 {
				fmt.Fprintln(out, "Database already holds cards; nothing to seed")
				return nil
			}
			fmt.Fprintf(out, "Seeded %d baseline cards across tiers 1-4\n", seeded)
			return nil
		},
	}
}

func newImportCommand(ctx *commandContext) *cobra.Command {
	var packID string

	cmd := &cobra.Command{
		Use:   "import DECK",
		Short: "Import a cards.json deck",
		Long: `Import a cards.json deck.

DECK is a deck produced by 'krscrape vocabulary'. With --pack the
import is recorded under that id and refused if the same pack was
imported before, so re-running a deck cannot duplicate cards.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			input, err := config.ExpandPath(args[0])
			if err != nil {
				return err
			}

			store, err := ctx.openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			imported, err := store.ImportFile(cmd.Context(), input, strings.TrimSpace(packID))
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if packID != "" {
				fmt.Fprintf(out, "Imported %d cards from %s (pack %s)\n", imported, input, packID)
			} else {
				fmt.Fprintf(out, "Imported %d cards from %s\n", imported, input)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&packID, "pack", "", "Pack id recorded for idempotent imports")
	return cmd
}

func newStatsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show card counts and learning progress",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			o, err := store.Stats(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Card database: %s\n", store.Path())
			fmt.Fprintln(out)

			rows := make([][]string, 0, len(o.Tiers))
			for _, tier := range o.Tiers {
				rows = append(rows, []string{
					strconv.Itoa(tier.Tier),
					strconv.Itoa(tier.Total),
					strconv.Itoa(tier.New),
					strconv.Itoa(tier.Learned),
				})
			}
			fmt.Fprintln(out, report.Table(
				[]string{"Tier", "Cards", "New", "Learned"},
				rows,
				[]report.Alignment{report.AlignRight, report.AlignRight, report.AlignRight, report.AlignRight},
			))
			fmt.Fprintln(out)
			fmt.Fprintf(out, "Total: %d cards, %d learned, %d reviews\n", o.Cards, o.Learned, o.Reviews)

			if len(o.Packs) > 0 {
				fmt.Fprintln(out)
				fmt.Fprintln(out, "Packs:")
				for _, pack := range o.Packs {
					fmt.Fprintf(out, "  %s: %d cards (%s)\n", pack.ID, pack.Cards, pack.ImportedAt)
				}
			}

			if len(o.Settings) > 0 {
				keys := make([]string, 0, len(o.Settings))
				for key := range o.Settings {
					keys = append(keys, key)
				}
				sort.Strings(keys)
				fmt.Fprintln(out)
				fmt.Fprintln(out, "Settings:")
				for _, key := range keys {
					fmt.Fprintf(out, "  %s: %s\n", key, o.Settings[key])
				}
			}
			return nil
		},
	}
}

func newBackupCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "backup [TARGET]",
		Short: "Write a consistent copy of the database",
		Long: `Write a consistent copy of the database.

The copy is taken with VACUUM INTO, so it is compacted and safe to
take while the study app has the database open. TARGET defaults to a
timestamped file in a backups directory next to the database.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			var target string
			if len(args) == 1 {
				target, err = config.ExpandPath(args[0])
				if err != nil {
					return err
				}
			} else {
				target = defaultBackupTarget(store.Path(), time.Now())
			}

			if err := store.Backup(cmd.Context(), target); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Backup written to %s\n", target)
			return nil
		},
	}
}

func defaultBackupTarget(dbPath string, now time.Time) string {
	base := strings.TrimSuffix(filepath.Base(dbPath), filepath.Ext(dbPath))
	name := fmt.Sprintf("%s-%s.db", base, now.Format("20060102-150405"))
	return filepath.Join(filepath.Dir(dbPath), "backups", name)
}
