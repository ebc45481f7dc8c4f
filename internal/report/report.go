// Package report renders tables and status lines for the command line tools.
package report

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/mattn/go-isatty"
)

// Alignment selects how a table column lines up.
type Alignment int

const (
	AlignLeft Alignment = iota
	AlignRight
)

// Table renders headers and rows in the rounded style every command
// shares. Rows shorter than the header are padded with empty cells.
func Table(headers []string, rows [][]string, aligns []Alignment) string {
	columns := len(headers)
	if columns == 0 {
		return ""
	}

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)

	header := make(table.Row, columns)
	for i := 0; i < columns; i++ {
		header[i] = headers[i]
	}
	tw.AppendHeader(header)

	for _, row := range rows {
		r := make(table.Row, columns)
		for i := 0; i < columns; i++ {
			if i < len(row) {
				r[i] = row[i]
			} else {
				r[i] = ""
			}
		}
		tw.AppendRow(r)
	}

	columnConfigs := make([]table.ColumnConfig, 0, columns)
	for i := 0; i < columns; i++ {
		align := text.AlignLeft
		if i < len(aligns) && aligns[i] == AlignRight {
			align = text.AlignRight
		}
		columnConfigs = append(columnConfigs, table.ColumnConfig{
			Number:      i + 1,
			Align:       align,
			AlignHeader: text.AlignLeft,
		})
	}
	tw.SetColumnConfigs(columnConfigs)

	return tw.Render()
}

// Kind classifies a status line.
type Kind int

const (
	KindInfo Kind = iota
	KindOK
	KindWarn
	KindError
)

const (
	ansiReset  = "\x1b[0m"
	ansiBold   = "\x1b[1m"
	ansiRed    = "\x1b[31m"
	ansiGreen  = "\x1b[32m"
	ansiYellow = "\x1b[33m"
	ansiBlue   = "\x1b[34m"
)

const (
	statusLabelWidth = 20
	statusIndent     = "  "
)

// StatusLine formats one labelled status entry, optionally colorized.
func StatusLine(label string, kind Kind, message string, colorize bool) string {
	statusText := kindLabel(kind)
	if message != "" {
		statusText = fmt.Sprintf("[%s] %s", statusText, message)
	} else {
		statusText = fmt.Sprintf("[%s]", statusText)
	}
	base := fmt.Sprintf("%s%-*s %s", statusIndent, statusLabelWidth, label+":", statusText)
	if colorize {
		if color := kindColor(kind); color != "" {
			return color + base + ansiReset
		}
	}
	return base
}

// Paint wraps s in the ANSI color for kind when colorize is set. Status
// tokens inside progress lines use this where a full StatusLine would be
// too heavy.
func Paint(kind Kind, s string, colorize bool) string {
	if !colorize {
		return s
	}
	color := kindColor(kind)
	if color == "" {
		return s
	}
	return color + s + ansiReset
}

func kindLabel(kind Kind) string {
	switch kind {
	case KindOK:
		return "OK"
	case KindWarn:
		return "WARN"
	case KindError:
		return "ERROR"
	default:
		return "INFO"
	}
}

func kindColor(kind Kind) string {
	switch kind {
	case KindOK:
		return ansiGreen
	case KindWarn:
		return ansiYellow
	case KindError:
		return ansiRed
	case KindInfo:
		return ansiBlue
	default:
		return ""
	}
}

// SectionHeader renders the banner introducing one lesson's block of
// output, uppercased the way batch reports title lessons.
func SectionHeader(title string, colorize bool) string {
	line := fmt.Sprintf("=== %s ===", strings.ToUpper(strings.TrimSpace(title)))
	if colorize {
		line = ansiBold + line + ansiReset
	}
	return line
}

// ShouldColorize reports whether writer is an interactive terminal.
func ShouldColorize(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
