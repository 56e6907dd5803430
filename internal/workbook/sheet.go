package workbook

import (
	"context"
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/JonMunkholm/tabular/internal/core"
)

// Sheet is one named sheet of a Workbook. Obtain it from Workbook.Sheet or
// Workbook.SheetAt.
type Sheet struct {
	wb      *Workbook
	name    string
	display core.DisplayNames
}

var _ core.RowSource = (*Sheet)(nil)
var _ core.RowSink = (*Sheet)(nil)

// Name returns the sheet name.
func (s *Sheet) Name() string { return s.name }

// Headers sets display names for the header row, keyed by column name.
func (s *Sheet) Headers(display map[string]string) *Sheet {
	s.display = core.DisplayNames(display).Clone()
	return s
}

func (s *Sheet) check(op string) error {
	if s.wb.closed {
		return core.InvalidArgument(op, "workbook %s is closed", s.wb.name)
	}
	return nil
}

func (s *Sheet) fail(op string, err error) error {
	return core.IOFailure(op, s.wb.name+"#"+s.name, err)
}

// rawGrid returns stored cell values with trailing empty rows dropped.
func (s *Sheet) rawGrid(op string) ([][]string, error) {
	grid, err := s.wb.file.GetRows(s.name, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, s.fail(op, err)
	}
	return grid, nil
}

// grid returns every row rendered as cell text.
func (s *Sheet) grid(ctx context.Context, op string) ([][]string, error) {
	raw, err := s.rawGrid(op)
	if err != nil {
		return nil, err
	}

	for r, row := range raw {
		if r%s.wb.opts.checkInterval == 0 {
			if err := ctx.Err(); err != nil {
				return nil, fmt.Errorf("%s %s: %w", op, s.name, err)
			}
		}
		for c, value := range row {
			if value == "" {
				continue
			}
			cell, err := excelize.CoordinatesToCellName(c+1, r+1)
			if err != nil {
				return nil, s.fail(op, err)
			}
			if row[c], err = s.wb.cellText(s.name, cell, value); err != nil {
				return nil, s.fail(op, err)
			}
		}
	}
	return raw, nil
}

// Read returns every data row keyed by the header row. Rows without any
// cells are skipped; short rows are padded with empty strings.
func (s *Sheet) Read(ctx context.Context) ([]core.Row, error) {
	const op = "read sheet"
	if err := s.check(op); err != nil {
		return nil, err
	}
	ctx = s.wb.context(ctx)

	grid, err := s.grid(ctx, op)
	if err != nil {
		return nil, err
	}
	rows := []core.Row{}
	if len(grid) == 0 {
		return rows, nil
	}

	headers := grid[0]
	for _, cells := range grid[1:] {
		if len(cells) == 0 {
			continue
		}
		rows = append(rows, core.ToRow(headers, cells))
	}
	s.wb.logger(ctx).Debug("sheet read", "sheet", s.name, "rows", len(rows))
	return rows, nil
}

// ReadWithoutHeaders returns every non-empty row as raw cell text, the
// header row included.
func (s *Sheet) ReadWithoutHeaders(ctx context.Context) ([][]string, error) {
	const op = "read sheet without headers"
	if err := s.check(op); err != nil {
		return nil, err
	}
	grid, err := s.grid(s.wb.context(ctx), op)
	if err != nil {
		return nil, err
	}

	records := [][]string{}
	for _, cells := range grid {
		if len(cells) > 0 {
			records = append(records, cells)
		}
	}
	return records, nil
}

// ReadWithHeaders treats every non-empty row as data keyed by headers.
func (s *Sheet) ReadWithHeaders(ctx context.Context, headers []string) ([]core.Row, error) {
	const op = "read sheet with headers"
	if err := core.ValidateHeaders(headers); err != nil {
		return nil, err
	}
	records, err := s.ReadWithoutHeaders(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	rows := make([]core.Row, len(records))
	for i, cells := range records {
		rows[i] = core.ToRow(headers, cells)
	}
	return rows, nil
}

// Write sets the header row from the first row's columns, mapped through the
// display names, and places rows after the last existing row. No rows clear
// the sheet below its header.
func (s *Sheet) Write(ctx context.Context, rows []core.Row) error {
	const op = "write sheet"
	if err := s.check(op); err != nil {
		return err
	}
	if len(rows) == 0 {
		return s.Clear()
	}
	ctx = s.wb.context(ctx)

	existing, err := s.rawGrid(op)
	if err != nil {
		return err
	}

	columns := rows[0].Headers()
	if err := s.writeHeader(op, s.display.Headers(columns)); err != nil {
		return err
	}

	start := len(existing) + 1
	if start < 2 {
		start = 2
	}
	identity := func(_ core.Row, column string) string { return column }
	if err := s.writeRows(ctx, op, rows, columns, identity, start); err != nil {
		return err
	}

	s.wb.logger(ctx).Debug("sheet written", "sheet", s.name, "rows", len(rows), "first_row", start)
	return s.resize(op, len(columns))
}

// Append places rows after the last existing row, positioned by the existing
// header. A sheet without rows is written instead.
func (s *Sheet) Append(ctx context.Context, rows []core.Row) error {
	const op = "append sheet"
	if err := s.check(op); err != nil {
		return err
	}
	if len(rows) == 0 {
		return nil
	}
	ctx = s.wb.context(ctx)

	grid, err := s.grid(ctx, op)
	if err != nil {
		return err
	}
	if len(grid) == 0 {
		return s.Write(ctx, rows)
	}

	header := grid[0]
	if err := s.writeRows(ctx, op, rows, header, s.display.Resolver(), len(grid)+1); err != nil {
		return err
	}

	s.wb.logger(ctx).Debug("rows appended", "sheet", s.name, "rows", len(rows), "first_row", len(grid)+1)
	return s.resize(op, len(header))
}

func (s *Sheet) writeHeader(op string, header []string) error {
	st, err := s.wb.ensureStyles()
	if err != nil {
		return s.fail(op, err)
	}
	for i, h := range header {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return s.fail(op, err)
		}
		if err := s.wb.file.SetCellStr(s.name, cell, h); err != nil {
			return s.fail(op, err)
		}
	}
	return s.styleRange(op, st.header, 1, 1, len(header))
}

// writeRows stores rows from row number start, one cell per header entry.
// resolve maps a header entry to the key read from each row.
func (s *Sheet) writeRows(ctx context.Context, op string, rows []core.Row, header []string, resolve func(core.Row, string) string, start int) error {
	st, err := s.wb.ensureStyles()
	if err != nil {
		return s.fail(op, err)
	}

	for i, row := range rows {
		if i%s.wb.opts.checkInterval == 0 {
			if err := ctx.Err(); err != nil {
				return fmt.Errorf("%s %s: %w", op, s.name, err)
			}
		}
		for j, h := range header {
			cell, err := excelize.CoordinatesToCellName(j+1, start+i)
			if err != nil {
				return s.fail(op, err)
			}
			v, _ := row.Get(resolve(row, h))
			if err := s.wb.setCell(s.name, cell, v); err != nil {
				return s.fail(op, err)
			}
		}
	}
	return s.styleRange(op, st.data, start, start+len(rows)-1, len(header))
}

func (s *Sheet) styleRange(op string, style, first, last, columns int) error {
	if columns == 0 {
		return nil
	}
	from, err := excelize.CoordinatesToCellName(1, first)
	if err != nil {
		return s.fail(op, err)
	}
	to, err := excelize.CoordinatesToCellName(columns, last)
	if err != nil {
		return s.fail(op, err)
	}
	if err := s.wb.file.SetCellStyle(s.name, from, to, style); err != nil {
		return s.fail(op, err)
	}
	return nil
}

func (s *Sheet) resize(op string, columns int) error {
	if !s.wb.opts.autoWidth {
		return nil
	}
	grid, err := s.rawGrid(op)
	if err != nil {
		return err
	}
	if err := s.wb.applyWidths(s.name, grid, columns); err != nil {
		return s.fail(op, err)
	}
	return nil
}

// Clear removes every row below the header.
func (s *Sheet) Clear() error {
	const op = "clear sheet"
	if err := s.check(op); err != nil {
		return err
	}
	grid, err := s.rawGrid(op)
	if err != nil {
		return err
	}
	for r := len(grid); r > 1; r-- {
		if err := s.wb.file.RemoveRow(s.name, r); err != nil {
			return s.fail(op, err)
		}
	}
	return nil
}

// RowCount returns the number of rows below the header, blank rows between
// data rows included.
func (s *Sheet) RowCount() (int, error) {
	const op = "row count"
	if err := s.check(op); err != nil {
		return 0, err
	}
	grid, err := s.rawGrid(op)
	if err != nil {
		return 0, err
	}
	if len(grid) == 0 {
		return 0, nil
	}
	return len(grid) - 1, nil
}
