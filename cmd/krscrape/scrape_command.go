package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/PheelaV/kr-notebook/internal/lesson"
	"github.com/PheelaV/kr-notebook/internal/manifest"
	"github.com/PheelaV/kr-notebook/internal/report"
)

func newScrapeCommand(ctx *commandContext) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "scrape [1|2|3|all]",
		Short: "Download lesson pronunciation audio",
		Long: `Download lesson pronunciation audio.

Lesson 1 covers the basic consonant rows and vowel columns, lesson 2
the tense and aspirated consonants, lesson 3 the combined vowels and
diphthongs. Existing recordings are kept unless --force is given.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			selector := "all"
			if len(args) == 1 {
				selector = args[0]
			}
			names, err := scrapeSelection(selector)
			if err != nil {
				return err
			}

			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			scraper, err := ctx.newScraper()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			colorize := report.ShouldColorize(out)

			for i, name := range names {
				if i > 0 {
					fmt.Fprintln(out)
				}
				dir := cfg.LessonDir(name)
				fmt.Fprintln(out, scrapeHeadline(name))
				fmt.Fprintf(out, "Output: %s\n", dir)
				fmt.Fprintln(out)

				progress := func(current, total int, label string, ok bool) {
					status := report.Paint(report.KindOK, "OK", colorize)
					if !ok {
						status = report.Paint(report.KindError, "FAIL", colorize)
					}
					fmt.Fprintf(out, "  [%d/%d] %s ... %s\n", current, total, label, status)
				}

				m, err := scraper.Scrape(cmd.Context(), name, force, progress)
				if err != nil {
					return err
				}

				fmt.Fprintln(out)
				fmt.Fprintln(out, scrapeSummary(name, m))
				fmt.Fprintf(out, "Manifest saved to %s\n", filepath.Join(dir, manifest.FileName))
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "Re-download files even if they exist")
	return cmd
}

func scrapeSelection(selector string) ([]string, error) {
	if strings.TrimSpace(strings.ToLower(selector)) == "all" {
		return lesson.Names(), nil
	}
	name, ok := canonicalLessonName(selector)
	if !ok {
		return nil, fmt.Errorf("unknown lesson %q (expected 1, 2, 3, or all)", selector)
	}
	return []string{name}, nil
}

func scrapeHeadline(name string) string {
	switch name {
	case "lesson1":
		return "Scraping Lesson 1 pronunciation audio..."
	case "lesson2":
		return "Scraping Lesson 2 consonant audio..."
	case "lesson3":
		return "Scraping Lesson 3 vowel audio..."
	default:
		return "Scraping " + name + " audio..."
	}
}

func scrapeSummary(name string, m *manifest.Manifest) string {
	switch name {
	case "lesson2":
		return fmt.Sprintf("Downloaded %d row audio files.", len(m.Rows))
	case "lesson3":
		return fmt.Sprintf("Downloaded %d vowel row audio files (%d syllables).", len(m.Rows), len(m.SyllableTable))
	default:
		return fmt.Sprintf("Downloaded %d column + %d row audio files.", len(m.Columns), len(m.Rows))
	}
}
