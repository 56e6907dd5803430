package main

import (
	"strconv"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/tabular/internal/core"
	"github.com/JonMunkholm/tabular/internal/workbook"
)

func newReadCommand(ctx *commandContext) *cobra.Command {
	var sheet string
	var raw bool
	var limit int

	cmd := &cobra.Command{
		Use:   "read <path-or-url>",
		Short: "Print the rows of a document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := ctx.openDocument(cmd.Context(), args[0], sheet)
			if err != nil {
				return err
			}
			defer doc.Close()

			if raw {
				records, err := doc.records(cmd.Context())
				if err != nil {
					return err
				}
				return ctx.render(cmd.OutOrStdout(), nil, truncate(records, limit), nil)
			}

			rows, err := doc.rows.Read(cmd.Context())
			if err != nil {
				return err
			}
			headers, data := rowsToRecords(rows)
			return ctx.render(cmd.OutOrStdout(), headers, truncate(data, limit), nil)
		},
	}

	cmd.Flags().StringVar(&sheet, "sheet", "", "Workbook sheet (default: the first sheet)")
	cmd.Flags().BoolVar(&raw, "raw", false, "Print every line as-is, the header included")
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "Print at most n rows (0 prints all)")
	return cmd
}

func rowsToRecords(rows []core.Row) ([]string, [][]string) {
	if len(rows) == 0 {
		return nil, nil
	}
	headers := rows[0].Headers()
	data := make([][]string, len(rows))
	for i, row := range rows {
		data[i] = row.Strings(headers)
	}
	return headers, data
}

func truncate(records [][]string, limit int) [][]string {
	if limit > 0 && len(records) > limit {
		return records[:limit]
	}
	return records
}

func newSheetsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "sheets <workbook>",
		Short: "List the sheets of a workbook with their row counts",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := workbook.FromConfig(ctx.cfg)
			var wb *workbook.Workbook
			var err error
			if isURL(args[0]) {
				wb, err = workbook.OpenURL(cmd.Context(), args[0], opts...)
			} else {
				wb, err = workbook.Open(args[0], opts...)
			}
			if err != nil {
				return err
			}
			defer wb.Close()

			var records [][]string
			for i, name := range wb.SheetNames() {
				s, err := wb.SheetAt(i)
				if err != nil {
					return err
				}
				count, err := s.RowCount()
				if err != nil {
					return err
				}
				records = append(records, []string{strconv.Itoa(i), name, strconv.Itoa(count)})
			}
			return ctx.render(cmd.OutOrStdout(), []string{"index", "sheet", "rows"}, records,
				[]columnAlignment{alignRight, alignLeft, alignRight})
		},
	}
}

func newFormatsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "formats",
		Short: "List the supported document formats",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var records [][]string
			for _, f := range core.Formats() {
				records = append(records, []string{f.Extension, string(f.Family), strconv.FormatBool(f.Writable)})
			}
			return ctx.render(cmd.OutOrStdout(), []string{"extension", "family", "writable"}, records, nil)
		},
	}
}
