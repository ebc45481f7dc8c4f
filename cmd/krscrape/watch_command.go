package main

import (
	"errors"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/PheelaV/kr-notebook/internal/report"
	"github.com/PheelaV/kr-notebook/internal/segment"
	"github.com/PheelaV/kr-notebook/internal/watch"
)

func newWatchCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "watch LESSON",
		Short: "Re-segment recordings as they change on disk",
		Long: `Re-segment recordings as they change on disk.

Watches the lesson's row and column recordings and re-runs single
source segmentation whenever one is saved, so recordings can be tuned
in an audio editor with immediate feedback. One watcher per lesson;
stop with Ctrl-C.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			target, err := ctx.lessonByArg(args[0])
			if err != nil {
				return err
			}
			engine, err := ctx.newEngine()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}

			signalCtx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			out := cmd.OutOrStdout()
			colorize := report.ShouldColorize(out)

			w, err := watch.New(engine, logger, watch.WithResultFunc(func(res segment.Result, err error) {
				if err != nil {
					fmt.Fprintf(out, "  %s\n", report.Paint(report.KindError, "Error: "+err.Error(), colorize))
					return
				}
				fmt.Fprintln(out, resultLine(res, colorize))
			}))
			if err != nil {
				return err
			}
			if err := w.Start(signalCtx, target.dir); err != nil {
				if errors.Is(err, watch.ErrAlreadyWatching) {
					return fmt.Errorf("another watcher is already running for %s", target.name)
				}
				return err
			}
			fmt.Fprintf(out, "Watching %s recordings. Press Ctrl-C to stop.\n", target.name)

			<-signalCtx.Done()
			w.Stop()
			fmt.Fprintln(out, "Stopped.")
			return nil
		},
	}
}
