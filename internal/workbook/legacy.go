package workbook

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/extrame/xls"
	"github.com/xuri/excelize/v2"

	"github.com/JonMunkholm/tabular/internal/core"
	"github.com/JonMunkholm/tabular/internal/logging"
)

// materializeLegacy reads a BIFF (.xls) workbook into an in-memory
// workbook. Every cell is stored as text.
func materializeLegacy(ctx context.Context, data []byte) (f *excelize.File, err error) {
	// The BIFF parser panics on some malformed streams.
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("parse BIFF workbook: %v", r)
		}
	}()

	book, err := xls.OpenReader(bytes.NewReader(data), "utf-8")
	if err != nil {
		return nil, fmt.Errorf("parse BIFF workbook: %w", err)
	}

	f = excelize.NewFile()
	sheets := newSheetAdder(f)
	logger := logging.FromContext(ctx)

	for i := 0; i < book.NumSheets(); i++ {
		ws := book.GetSheet(i)
		if ws == nil {
			continue
		}
		if err := sheets.add(ws.Name); err != nil {
			return nil, fmt.Errorf("sheet %q: %w", ws.Name, err)
		}

		cells := 0
		for r := 0; r <= int(ws.MaxRow); r++ {
			if r%100 == 0 {
				if err := ctx.Err(); err != nil {
					return nil, err
				}
			}
			row := legacyRow(ws, r)
			if row == nil {
				continue
			}
			for c := 0; c <= row.LastCol(); c++ {
				text := legacyText(row.Col(c))
				if text == "" {
					continue
				}
				cell, err := excelize.CoordinatesToCellName(c+1, r+1)
				if err != nil {
					return nil, err
				}
				if err := f.SetCellStr(ws.Name, cell, text); err != nil {
					return nil, err
				}
				cells++
			}
		}
		logger.Debug("legacy sheet materialized", "sheet", ws.Name, "rows", int(ws.MaxRow)+1, "cells", cells)
	}
	return f, nil
}

// sheetAdder adds sheets to a new file. The first sheet added takes over
// the placeholder sheet every new file starts with.
type sheetAdder struct {
	f           *excelize.File
	placeholder string
}

func newSheetAdder(f *excelize.File) *sheetAdder {
	return &sheetAdder{f: f, placeholder: f.GetSheetName(0)}
}

func (a *sheetAdder) add(name string) error {
	if a.placeholder != "" {
		if err := a.f.SetSheetName(a.placeholder, name); err != nil {
			return err
		}
		a.placeholder = ""
		return nil
	}
	_, err := a.f.NewSheet(name)
	return err
}

// legacyRow returns row r, or nil when the sheet has no such row.
func legacyRow(ws *xls.WorkSheet, r int) (row *xls.Row) {
	defer func() {
		if recover() != nil {
			row = nil
		}
	}()
	return ws.Row(r)
}

// legacyText normalizes the parser's cell text. Formula cells carry no
// cached value in this format reader.
func legacyText(s string) string {
	if s == "FormulaCol" {
		return ""
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.Format(core.DateTimeLayout)
	}
	return s
}
