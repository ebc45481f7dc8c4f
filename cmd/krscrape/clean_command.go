package main

import (
	"bufio"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/PheelaV/kr-notebook/internal/config"
	"github.com/PheelaV/kr-notebook/internal/manifest"
)

func newCleanCommand(ctx *commandContext) *cobra.Command {
	var (
		pathFlag string
		assume   bool
	)

	cmd := &cobra.Command{
		Use:   "clean",
		Short: "Delete scraped audio and manifests",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			root := cfg.ScrapeRoot()
			if strings.TrimSpace(pathFlag) != "" {
				root, err = config.ExpandPath(pathFlag)
				if err != nil {
					return err
				}
			}

			out := cmd.OutOrStdout()
			audioCount, manifestCount := countScrapedContent(root)
			if audioCount == 0 && manifestCount == 0 {
				fmt.Fprintln(out, "No scraped content to clean.")
				return nil
			}

			fmt.Fprintf(out, "Will delete from: %s\n", root)
			fmt.Fprintf(out, "  - %d audio files\n", audioCount)
			fmt.Fprintf(out, "  - %d manifest files\n", manifestCount)

			if !assume {
				fmt.Fprint(out, "Continue? [y/N]: ")
				reader := bufio.NewReader(cmd.InOrStdin())
				answer, _ := reader.ReadString('\n')
				switch strings.ToLower(strings.TrimSpace(answer)) {
				case "y", "yes":
				default:
					fmt.Fprintln(out, "Aborted.")
					return nil
				}
			}

			if err := os.RemoveAll(root); err != nil {
				return fmt.Errorf("removing %s: %w", root, err)
			}
			fmt.Fprintln(out, "Scraped content removed.")
			return nil
		},
	}

	cmd.Flags().StringVarP(&pathFlag, "path", "p", "", "Scraped data root to clean (default: configured location)")
	cmd.Flags().BoolVarP(&assume, "yes", "y", false, "Skip the confirmation prompt")
	return cmd
}

func countScrapedContent(root string) (audio, manifests int) {
	_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return nil
		}
		name := d.Name()
		switch {
		case name == manifest.FileName:
			manifests++
		case strings.EqualFold(filepath.Ext(name), ".mp3"), strings.EqualFold(filepath.Ext(name), ".wav"):
			audio++
		}
		return nil
	})
	return audio, manifests
}
