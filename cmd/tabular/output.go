package main

import (
	"fmt"
	"io"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/mattn/go-isatty"

	"github.com/JonMunkholm/tabular/internal/csv"
)

type columnAlignment int

const (
	alignLeft columnAlignment = iota
	alignRight
)

func isTerminal(w io.Writer) bool {
	file, ok := w.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// render writes a table on terminals and CSV otherwise, unless the output
// flag forces one of them.
func (c *commandContext) render(w io.Writer, headers []string, rows [][]string, aligns []columnAlignment) error {
	switch c.output {
	case "csv":
		return renderCSV(w, headers, rows)
	case "table":
		_, err := fmt.Fprintln(w, renderTable(headers, rows, aligns))
		return err
	case "auto", "":
		if isTerminal(w) {
			_, err := fmt.Fprintln(w, renderTable(headers, rows, aligns))
			return err
		}
		return renderCSV(w, headers, rows)
	default:
		return fmt.Errorf("unknown output style %q (want auto, table or csv)", c.output)
	}
}

func renderCSV(w io.Writer, headers []string, rows [][]string) error {
	if len(headers) > 0 {
		if _, err := fmt.Fprintln(w, csv.Join(headers)); err != nil {
			return err
		}
	}
	for _, row := range rows {
		if _, err := fmt.Fprintln(w, csv.Join(row)); err != nil {
			return err
		}
	}
	return nil
}

func renderTable(headers []string, rows [][]string, aligns []columnAlignment) string {
	columns := len(headers)
	for _, row := range rows {
		if len(row) > columns {
			columns = len(row)
		}
	}
	if columns == 0 {
		return ""
	}

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)

	if len(headers) > 0 {
		header := make(table.Row, columns)
		for i := 0; i < columns; i++ {
			if i < len(headers) {
				header[i] = headers[i]
			} else {
				header[i] = ""
			}
		}
		tw.AppendHeader(header)
	}

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
		if i < len(aligns) && aligns[i] == alignRight {
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
