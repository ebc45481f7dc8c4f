package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/PheelaV/kr-notebook/internal/manifest"
	"github.com/PheelaV/kr-notebook/internal/report"
	"github.com/PheelaV/kr-notebook/internal/segment"
)

func newSegmentCommand(ctx *commandContext) *cobra.Command {
	var (
		lessonFlag string
		pathFlag   string
		minSilence int
		threshold  float64
		padding    int
		reset      bool
	)

	cmd := &cobra.Command{
		Use:   "segment",
		Short: "Cut lesson recordings into per-syllable clips",
		Long: `Cut lesson recordings into per-syllable clips.

Silence detection finds the spoken syllables in each row and column
recording and writes one padded clip per syllable. Results are folded
back into the lesson manifest; recordings whose detected count does
not match the expected syllable list are reported at the end.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			targets, err := ctx.lessonTargets(lessonFlag, pathFlag)
			if err != nil {
				return err
			}
			engine, err := ctx.newEngine()
			if err != nil {
				return err
			}

			base := engine.BaseParams()
			flags := cmd.Flags()
			if flags.Changed("min-silence") {
				base.MinSilenceMS = minSilence
			}
			if flags.Changed("threshold") {
				base.ThresholdDBFS = threshold
			}
			if flags.Changed("padding") {
				base.PaddingMS = padding
			}

			out := cmd.OutOrStdout()
			colorize := report.ShouldColorize(out)

			suffix := ""
			if reset {
				suffix = " (reset)"
			}
			fmt.Fprintf(out, "Settings: min_silence=%dms, threshold=%gdBFS, padding=%dms%s\n",
				base.MinSilenceMS, base.ThresholdDBFS, base.PaddingMS, suffix)
			fmt.Fprintln(out)

			var mismatches []mismatchReport
			for _, target := range targets {
				fmt.Fprintln(out, report.SectionHeader(target.name, colorize))
				fmt.Fprintf(out, "Segmenting audio from: %s\n", target.dir)
				fmt.Fprintln(out)

				results, err := engine.SegmentBatch(cmd.Context(), target.dir, base, reset)
				if err != nil {
					if cmd.Context().Err() != nil {
						return err
					}
					fmt.Fprintf(out, "  %s\n", report.Paint(report.KindError, "Error: "+err.Error(), colorize))
					fmt.Fprintln(out)
					continue
				}

				files := 0
				totalExpected, totalSaved := 0, 0
				for _, res := range results {
					fmt.Fprintln(out, resultLine(res, colorize))
					if res.Err != nil {
						continue
					}
					files++
					totalExpected += res.Expected
					totalSaved += res.Saved()
					if res.Mismatch && res.Overrides == "" {
						mismatches = append(mismatches, mismatchReport{target: target, res: res})
					}
				}

				fmt.Fprintln(out)
				fmt.Fprintf(out, "  Complete: %d/%d syllables extracted from %d files.\n", totalSaved, totalExpected, files)
				fmt.Fprintf(out, "  Saved to: %s\n", filepath.Join(target.dir, "syllables"))
				fmt.Fprintln(out)
			}

			if len(mismatches) > 0 {
				printMismatches(cmd, ctx, mismatches, colorize)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&lessonFlag, "lesson", "l", "all", "Which lesson to segment (1, 2, 3, or all)")
	cmd.Flags().StringVarP(&pathFlag, "path", "p", "", "Lesson directory to segment (overrides --lesson)")
	cmd.Flags().IntVarP(&minSilence, "min-silence", "s", 200, "Minimum silence duration (ms) to split on")
	cmd.Flags().Float64VarP(&threshold, "threshold", "t", -40, "Silence threshold in dBFS (lower = more sensitive)")
	cmd.Flags().IntVarP(&padding, "padding", "P", 50, "Padding (ms) added before and after each clip")
	cmd.Flags().BoolVarP(&reset, "reset", "r", false, "Ignore stored per-recording overrides and persist this run's values")
	return cmd
}

// mismatchReport pairs a flagged recording with the lesson it came from
// so the summary can resolve its file and syllable list.
type mismatchReport struct {
	target lessonTarget
	res    segment.Result
}

// resultLine renders one recording outcome. Overridden recordings report
// OK with the applied tuning; an unresolved count mismatch is the red
// case operators need to chase.
func resultLine(res segment.Result, colorize bool) string {
	if res.Err != nil {
		return fmt.Sprintf("  %s: %s", res.Label, report.Paint(report.KindError, "Error: "+res.Err.Error(), colorize))
	}
	saved := res.Saved()
	var status string
	switch {
	case res.Mismatch && res.Overrides == "":
		status = report.Paint(report.KindError, "MISMATCH", colorize)
	case res.Overrides != "":
		status = report.Paint(report.KindInfo, "OK (override: "+res.Overrides+")", colorize)
	case saved == res.Expected:
		status = report.Paint(report.KindOK, "OK", colorize)
	default:
		status = report.Paint(report.KindWarn, "?", colorize)
	}
	return fmt.Sprintf("  %s: %d found, %d expected, %d saved ... %s", res.Label, res.Found, res.Expected, saved, status)
}

// printMismatches details every recording whose detected segment count
// disagrees with its syllable list, with the override command that would
// resolve a surplus.
func printMismatches(cmd *cobra.Command, ctx *commandContext, reports []mismatchReport, colorize bool) {
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, report.Paint(report.KindWarn, "Mismatches detected:", colorize))

	logger, _ := ctx.ensureLogger()
	manifests := map[string]*manifest.Manifest{}
	for _, mr := range reports {
		res := mr.res
		diff := res.Found - res.Expected

		fmt.Fprintf(out, "\n  %s:\n", res.Label)
		m := manifests[mr.target.dir]
		if m == nil {
			if loaded, err := manifest.NewStore(mr.target.dir, logger).Load(cmd.Context()); err == nil {
				m = loaded
				manifests[mr.target.dir] = m
			}
		}
		if m != nil {
			if ref, ok := m.FindSource(res.SourceKey); ok {
				fmt.Fprintf(out, "    File: %s\n", filepath.Base(ref.Source.File))
				fmt.Fprintf(out, "    Expected %d syllables: %s\n", res.Expected, strings.Join(ref.Source.Syllables, " "))
			}
		}
		fmt.Fprintf(out, "    Found %d segments (%+d)\n", res.Found, diff)
		if diff > 0 && mr.target.name != "custom" {
			suggestion := fmt.Sprintf("krscrape segment-source %s %s --skip-first %d", mr.target.name, res.SourceKey, diff)
			fmt.Fprintf(out, "    Suggestion: %s\n", report.Paint(report.KindInfo, suggestion, colorize))
		}
	}
}
