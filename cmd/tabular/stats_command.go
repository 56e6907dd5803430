package main

import (
	"strconv"
	"strings"

	"github.com/montanaflynn/stats"
	"github.com/spf13/cobra"

	"github.com/JonMunkholm/tabular/internal/core"
)

func newStatsCommand(ctx *commandContext) *cobra.Command {
	var sheet, columns string

	cmd := &cobra.Command{
		Use:   "stats <path-or-url>",
		Short: "Summarize the numeric columns of a document",
		Long: `Stats parses every value of the selected columns as a number and prints
count, blank and invalid counts, min, max, mean, median and standard
deviation. Without --columns every column with at least one number is shown.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := ctx.openDocument(cmd.Context(), args[0], sheet)
			if err != nil {
				return err
			}
			defer doc.Close()

			rows, err := doc.rows.Read(cmd.Context())
			if err != nil {
				return err
			}

			selected := splitColumns(columns)
			explicit := len(selected) > 0
			if !explicit && len(rows) > 0 {
				selected = rows[0].Headers()
			}

			var records [][]string
			for _, column := range selected {
				s := summarize(rows, column)
				if !explicit && s.count == 0 {
					continue
				}
				records = append(records, s.record())
			}

			headers := []string{"column", "count", "blank", "invalid", "min", "max", "mean", "median", "stddev"}
			aligns := []columnAlignment{alignLeft}
			for range headers[1:] {
				aligns = append(aligns, alignRight)
			}
			return ctx.render(cmd.OutOrStdout(), headers, records, aligns)
		},
	}

	cmd.Flags().StringVar(&sheet, "sheet", "", "Workbook sheet (default: the first sheet)")
	cmd.Flags().StringVar(&columns, "columns", "", "Comma-separated columns to summarize")
	return cmd
}

func splitColumns(s string) []string {
	var out []string
	for _, c := range strings.Split(s, ",") {
		if c = strings.TrimSpace(c); c != "" {
			out = append(out, c)
		}
	}
	return out
}

type columnSummary struct {
	column  string
	count   int
	blank   int
	invalid int
	values  stats.Float64Data
}

func summarize(rows []core.Row, column string) columnSummary {
	s := columnSummary{column: column}
	for _, row := range rows {
		text := row.String(column)
		if core.IsBlank(text) {
			s.blank++
			continue
		}
		v, err := core.ParseFloat8(strings.TrimSpace(text))
		if err != nil || !v.Valid {
			s.invalid++
			continue
		}
		s.values = append(s.values, v.Float64)
	}
	s.count = len(s.values)
	return s
}

func (s columnSummary) record() []string {
	out := []string{s.column, strconv.Itoa(s.count), strconv.Itoa(s.blank), strconv.Itoa(s.invalid)}
	measures := []func(stats.Float64Data) (float64, error){
		stats.Min,
		stats.Max,
		stats.Mean,
		stats.Median,
		stats.StandardDeviation,
	}
	for _, measure := range measures {
		out = append(out, formatMeasure(measure(s.values)))
	}
	return out
}

func formatMeasure(v float64, err error) string {
	if err != nil {
		return ""
	}
	if r, err := stats.Round(v, 4); err == nil {
		v = r
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}
