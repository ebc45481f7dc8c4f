package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newApplyManualCommand(ctx *commandContext) *cobra.Command {
	var (
		start   int64
		end     int64
		padding int
	)

	cmd := &cobra.Command{
		Use:   "apply-manual LESSON SYLLABLE",
		Short: "Apply hand-tuned segment timestamps for a syllable",
		Long: `Apply hand-tuned segment timestamps for a syllable.

LESSON is the lesson identifier (1, 2, 3, or lesson1 style).
SYLLABLE is the Korean character, e.g. '가' or '애'.

Re-extracts the syllable clip from the window given in milliseconds,
relative to the source recording, and stores the manual timing in the
manifest. The automatic baseline is kept so the correction can be
undone with reset-manual.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			target, err := ctx.lessonByArg(args[0])
			if err != nil {
				return err
			}
			engine, err := ctx.newEngine()
			if err != nil {
				return err
			}

			syllable := args[1]
			ok, err := engine.ApplyManual(cmd.Context(), target.dir, syllable, start, end, padding)
			if err != nil {
				return err
			}
			if ok {
				fmt.Fprintf(cmd.OutOrStdout(), "Applied manual segment for %s: %d-%dms (padding=%dms)\n", syllable, start, end, padding)
			}
			return nil
		},
	}

	cmd.Flags().Int64Var(&start, "start", 0, "Start time in milliseconds, relative to the source recording")
	cmd.Flags().Int64Var(&end, "end", 0, "End time in milliseconds")
	cmd.Flags().IntVarP(&padding, "padding", "P", 75, "Padding (ms) before and after the segment")
	_ = cmd.MarkFlagRequired("start")
	_ = cmd.MarkFlagRequired("end")
	return cmd
}

func newResetManualCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "reset-manual LESSON SYLLABLE",
		Short: "Reset a syllable's manual timestamps to the baseline",
		Long: `Reset a syllable's manual timestamps to the baseline.

LESSON is the lesson identifier (1, 2, 3, or lesson1 style).
SYLLABLE is the Korean character, e.g. '가' or '애'.

Re-extracts the syllable clip from the stored baseline window and
removes the manual timing from the manifest.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			target, err := ctx.lessonByArg(args[0])
			if err != nil {
				return err
			}
			engine, err := ctx.newEngine()
			if err != nil {
				return err
			}

			syllable := args[1]
			changed, err := engine.ResetManual(cmd.Context(), target.dir, syllable)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if changed {
				fmt.Fprintf(out, "Reset %s to baseline timestamps\n", syllable)
			} else {
				fmt.Fprintf(out, "No manual timing stored for %s\n", syllable)
			}
			return nil
		},
	}
}
