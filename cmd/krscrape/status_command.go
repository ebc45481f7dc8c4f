package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/PheelaV/kr-notebook/internal/config"
	"github.com/PheelaV/kr-notebook/internal/deps"
	"github.com/PheelaV/kr-notebook/internal/lesson"
	"github.com/PheelaV/kr-notebook/internal/manifest"
	"github.com/PheelaV/kr-notebook/internal/report"
)

var lessonTitles = map[string]string{
	"lesson1": "Basic Consonants & Vowels",
	"lesson2": "Additional Consonants",
	"lesson3": "Diphthongs & Combined Vowels",
}

func newStatusCommand(ctx *commandContext) *cobra.Command {
	var pathFlag string

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show scraping and segmentation progress",
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
			colorize := report.ShouldColorize(out)

			if _, err := os.Stat(root); err != nil {
				fmt.Fprintln(out, "No scraped content found.")
				fmt.Fprintf(out, "Expected location: %s\n", root)
				fmt.Fprintln(out)
				fmt.Fprintln(out, "Run 'krscrape scrape' to download pronunciation audio.")
				return nil
			}

			fmt.Fprintf(out, "Scraped content in: %s\n", root)
			fmt.Fprintln(out)

			statuses := make([]lessonStatus, 0, len(lesson.Names()))
			for _, name := range lesson.Names() {
				statuses = append(statuses, collectLessonStatus(cmd, ctx, filepath.Join(root, name), name))
			}

			fmt.Fprintln(out, report.Table(
				[]string{"Lesson", "Scraped", "Audio files", "Segmented"},
				statusRows(statuses),
				[]report.Alignment{report.AlignLeft, report.AlignLeft, report.AlignRight, report.AlignRight},
			))
			fmt.Fprintln(out)

			for _, st := range statuses {
				printLessonStatus(out, st)
				fmt.Fprintln(out)
			}

			fmt.Fprintln(out, "Dependencies:")
			fmt.Fprintln(out, ffmpegStatusLine(cfg, colorize))
			return nil
		},
	}

	cmd.Flags().StringVarP(&pathFlag, "path", "p", "", "Scraped data root to inspect (default: configured location)")
	return cmd
}

// lessonStatus is everything the status report knows about one lesson.
type lessonStatus struct {
	name      string
	dir       string
	dirExists bool
	manifest  *manifest.Manifest
	rawAudio  int
	segmented int
	manual    int
}

func (s lessonStatus) title() string {
	if t, ok := lessonTitles[s.name]; ok {
		return fmt.Sprintf("Lesson %s (%s)", strings.TrimPrefix(s.name, "lesson"), t)
	}
	return s.name
}

func (s lessonStatus) number() string {
	return strings.TrimPrefix(s.name, "lesson")
}

func collectLessonStatus(cmd *cobra.Command, ctx *commandContext, dir, name string) lessonStatus {
	st := lessonStatus{name: name, dir: dir}
	if _, err := os.Stat(dir); err != nil {
		return st
	}
	st.dirExists = true

	logger, _ := ctx.ensureLogger()
	store := manifest.NewStore(dir, logger)
	if store.Exists() {
		if m, err := store.Load(cmd.Context()); err == nil {
			st.manifest = m
			for _, entry := range m.SyllableTable {
				if entry.Segment == nil {
					continue
				}
				if entry.Segment.Active() != nil {
					st.segmented++
				}
				if entry.Segment.Manual != nil {
					st.manual++
				}
			}
			return st
		}
	}

	for _, sub := range []string{"columns", "rows"} {
		st.rawAudio += countAudioFiles(filepath.Join(dir, sub))
	}
	return st
}

func countAudioFiles(dir string) int {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0
	}
	count := 0
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(entry.Name())) {
		case ".mp3", ".wav":
			count++
		}
	}
	return count
}

func statusRows(statuses []lessonStatus) [][]string {
	rows := make([][]string, 0, len(statuses))
	for _, st := range statuses {
		switch {
		case st.manifest != nil:
			m := st.manifest
			rows = append(rows, []string{
				st.name,
				m.ScrapedAt.UTC().Format("2006-01-02 15:04:05"),
				strconv.Itoa(len(m.Columns) + len(m.Rows)),
				fmt.Sprintf("%d/%d", st.segmented, len(m.SyllableTable)),
			})
		case st.dirExists:
			rows = append(rows, []string{st.name, "no manifest", strconv.Itoa(st.rawAudio), "-"})
		default:
			rows = append(rows, []string{st.name, "not scraped", "-", "-"})
		}
	}
	return rows
}

func printLessonStatus(out io.Writer, st lessonStatus) {
	if !st.dirExists {
		fmt.Fprintf(out, "%s: Not scraped\n", st.title())
		fmt.Fprintf(out, "  Run 'krscrape scrape %s' to download\n", st.number())
		return
	}
	if st.manifest == nil {
		fmt.Fprintf(out, "%s: %d audio files (no manifest)\n", st.title(), st.rawAudio)
		return
	}

	m := st.manifest
	fmt.Fprintf(out, "%s:\n", st.title())
	fmt.Fprintf(out, "  Scraped: %s\n", m.ScrapedAt.UTC().Format("2006-01-02 15:04:05"))

	var colLabels, rowLabels []string
	for _, ref := range m.SourcesInOrder() {
		if ref.Kind == manifest.KindColumn {
			colLabels = append(colLabels, ref.Label)
		} else {
			rowLabels = append(rowLabels, ref.Label)
		}
	}
	if len(colLabels) > 0 {
		fmt.Fprintf(out, "  Column audio (vowels): %d files\n", len(colLabels))
		fmt.Fprintf(out, "    %s\n", strings.Join(colLabels, " "))
	}
	if len(rowLabels) > 0 {
		rowKind := "consonants"
		if len(m.ConsonantsOrder) == 0 {
			rowKind = "vowels"
		}
		fmt.Fprintf(out, "  Row audio (%s): %d files\n", rowKind, len(rowLabels))
		fmt.Fprintf(out, "    %s\n", strings.Join(rowLabels, " "))
	}

	fmt.Fprintf(out, "  Individual syllables: %d/%d segmented\n", st.segmented, len(m.SyllableTable))
	if st.manual > 0 {
		fmt.Fprintf(out, "  Manual timings: %d\n", st.manual)
	}
	if st.segmented == 0 {
		if st.name == "lesson1" {
			fmt.Fprintln(out, "    Run 'krscrape segment' to extract individual syllables")
		} else {
			fmt.Fprintf(out, "    Run 'krscrape segment -l %s' to extract individual syllables\n", st.number())
		}
	}
}

func ffmpegStatusLine(cfg *config.Config, colorize bool) string {
	st := deps.CheckFFmpeg(cfg.FFmpegBinary())
	if !st.Available {
		msg := st.Detail
		if msg == "" {
			msg = "not found"
		}
		return report.StatusLine("FFmpeg", report.KindError, msg, colorize)
	}
	msg := st.Detail
	if msg == "" {
		msg = "available"
	}
	return report.StatusLine("FFmpeg", report.KindOK, msg, colorize)
}
