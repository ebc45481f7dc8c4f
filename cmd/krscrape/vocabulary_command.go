package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/PheelaV/kr-notebook/internal/config"
	"github.com/PheelaV/kr-notebook/internal/vocab"
)

func newVocabularyCommand(ctx *commandContext) *cobra.Command {
	var (
		outputFlag string
		tier       int
		noReverse  bool
	)

	cmd := &cobra.Command{
		Use:   "vocabulary INPUT",
		Short: "Convert a vocabulary JSON file into flashcards",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := ctx.ensureConfig(); err != nil {
				return err
			}

			input, err := config.ExpandPath(args[0])
			if err != nil {
				return err
			}
			if _, err := os.Stat(input); err != nil {
				return fmt.Errorf("vocabulary file not found: %s", input)
			}

			output := strings.TrimSpace(outputFlag)
			if output == "" {
				output = filepath.Join(filepath.Dir(input), "cards.json")
			} else if output, err = config.ExpandPath(output); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "Converting vocabulary to cards...")
			fmt.Fprintf(out, "  Input: %s\n", input)
			fmt.Fprintf(out, "  Output: %s\n", output)
			fmt.Fprintf(out, "  Tier: %d\n", tier)
			fmt.Fprintf(out, "  Reverse cards: %t\n", !noReverse)
			fmt.Fprintln(out)

			stats, err := vocab.ConvertFile(input, output, tier, !noReverse)
			if err != nil {
				return err
			}

			fmt.Fprintf(out, "Converted %d vocabulary entries\n", stats.Entries)
			fmt.Fprintf(out, "Created %d cards\n", stats.Cards)
			fmt.Fprintf(out, "Output: %s\n", stats.Output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&outputFlag, "output", "o", "", "Output path for the card file (default: cards.json beside the input)")
	cmd.Flags().IntVarP(&tier, "tier", "t", vocab.DefaultTier, "Tier assigned to generated cards")
	cmd.Flags().BoolVar(&noReverse, "no-reverse", false, "Skip English-to-Korean reverse cards")
	return cmd
}
