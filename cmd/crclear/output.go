package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
)

// summary is the human-readable form of a command report: one table and
// the plain lines printed under it.
type summary struct {
	title   string
	headers []string
	rows    [][]string
	numeric []int
	notes   []string
}

func (s *summary) note(format string, args ...any) {
	s.notes = append(s.notes, fmt.Sprintf(format, args...))
}

// printReport writes v as indented JSON when asJSON is set and the summary
// built by render otherwise.
func printReport(cmd *cobra.Command, asJSON bool, v any, render func() summary) error {
	out := cmd.OutOrStdout()
	if asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
	return render().write(out)
}

// write renders a boxed table on terminals and tab-separated rows elsewhere
// so that piped output stays easy to cut and sort.
func (s summary) write(w io.Writer) error {
	var b strings.Builder
	if isTerminal(w) {
		b.WriteString(s.boxed())
		b.WriteByte('\n')
	} else {
		for _, row := range append([][]string{s.headers}, s.rows...) {
			b.WriteString(strings.Join(row, "\t"))
			b.WriteByte('\n')
		}
	}
	for _, line := range s.notes {
		b.WriteString(line)
		b.WriteByte('\n')
	}
	_, err := io.WriteString(w, b.String())
	return err
}

func (s summary) boxed() string {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.SetTitle(s.title)
	tw.AppendHeader(toRow(s.headers, len(s.headers)))
	for _, row := range s.rows {
		tw.AppendRow(toRow(row, len(s.headers)))
	}
	configs := make([]table.ColumnConfig, 0, len(s.numeric))
	for _, col := range s.numeric {
		configs = append(configs, table.ColumnConfig{Number: col + 1, Align: text.AlignRight, AlignHeader: text.AlignLeft})
	}
	tw.SetColumnConfigs(configs)
	return tw.Render()
}

func toRow(cells []string, width int) table.Row {
	row := make(table.Row, width)
	for i := range row {
		if i < len(cells) {
			row[i] = cells[i]
		} else {
			row[i] = ""
		}
	}
	return row
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && (isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd()))
}
