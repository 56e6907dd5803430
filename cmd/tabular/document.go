package main

import (
	"context"
	"errors"
	"strings"

	"github.com/JonMunkholm/tabular/internal/core"
	"github.com/JonMunkholm/tabular/internal/remote"
	"github.com/JonMunkholm/tabular/internal/textdoc"
	"github.com/JonMunkholm/tabular/internal/workbook"
)

// document is a text document or one sheet of a workbook, seen through the
// operations the commands need.
type document struct {
	location string
	format   core.Format

	rows    core.RowSource
	sink    core.RowSink
	records func(ctx context.Context) ([][]string, error)
	flush   func(ctx context.Context) error
	close   func() error
}

func (d *document) Close() error {
	if d.close == nil {
		return nil
	}
	return d.close()
}

func isURL(location string) bool {
	lower := strings.ToLower(location)
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}

func detect(location string) (core.Format, error) {
	name := location
	if isURL(location) {
		p, err := remote.Path(location)
		if err != nil {
			return core.Format{}, err
		}
		name = p
	}
	return core.DetectFormat(name)
}

// openDocument opens location for reading. sheet selects a workbook sheet;
// empty means the first one.
func (c *commandContext) openDocument(ctx context.Context, location, sheet string) (*document, error) {
	format, err := detect(location)
	if err != nil {
		return nil, err
	}

	if format.Family == core.FamilyText {
		opts := textdoc.FromConfig(c.cfg)
		var doc *textdoc.Document
		if isURL(location) {
			doc, err = textdoc.OpenURL(ctx, location, opts...)
		} else {
			doc, err = textdoc.Open(location, opts...)
		}
		if err != nil {
			return nil, err
		}
		return c.textDocument(location, format, doc)
	}

	opts := workbook.FromConfig(c.cfg)
	var wb *workbook.Workbook
	if isURL(location) {
		wb, err = workbook.OpenURL(ctx, location, opts...)
	} else {
		wb, err = workbook.Open(location, opts...)
	}
	if err != nil {
		return nil, err
	}

	var s *workbook.Sheet
	if sheet == "" {
		s, err = wb.SheetAt(0)
	} else {
		s, err = wb.Sheet(sheet)
	}
	if err != nil {
		wb.Close()
		return nil, err
	}
	return c.sheetDocument(location, format, wb, s)
}

// createDocument opens location for writing, creating it when absent. An
// existing workbook keeps its other sheets unless fresh is set, in which case
// it is replaced on flush.
func (c *commandContext) createDocument(location, sheet string, fresh bool) (*document, error) {
	if isURL(location) {
		return nil, core.InvalidArgument("create", "%s: remote documents are read-only", location)
	}
	format, err := core.DetectFormat(location)
	if err != nil {
		return nil, err
	}

	if format.Family == core.FamilyText {
		doc, err := textdoc.Create(location, textdoc.FromConfig(c.cfg)...)
		if err != nil {
			return nil, err
		}
		return c.textDocument(location, format, doc)
	}

	opts := workbook.FromConfig(c.cfg)
	var wb *workbook.Workbook
	if fresh {
		wb, err = workbook.Create(location, opts...)
	} else {
		wb, err = workbook.Open(location, opts...)
		if errors.Is(err, core.ErrNotFound) {
			wb, err = workbook.Create(location, opts...)
		}
	}
	if err != nil {
		return nil, err
	}
	if sheet == "" {
		sheet = c.cfg.Workbook.DefaultSheet
	}
	s, err := wb.Sheet(sheet)
	if err != nil {
		wb.Close()
		return nil, err
	}
	return c.sheetDocument(location, format, wb, s)
}

func (c *commandContext) textDocument(location string, format core.Format, doc *textdoc.Document) (*document, error) {
	display, err := c.displayNames()
	if err != nil {
		doc.Close()
		return nil, err
	}
	doc.Headers(display)
	return &document{
		location: location,
		format:   format,
		rows:     doc,
		sink:     doc,
		records:  doc.ReadWithoutHeaders,
		flush:    func(context.Context) error { return nil },
		close:    doc.Close,
	}, nil
}

func (c *commandContext) sheetDocument(location string, format core.Format, wb *workbook.Workbook, s *workbook.Sheet) (*document, error) {
	display, err := c.displayNames()
	if err != nil {
		wb.Close()
		return nil, err
	}
	s.Headers(display)
	return &document{
		location: location,
		format:   format,
		rows:     s,
		sink:     s,
		records:  s.ReadWithoutHeaders,
		flush:    wb.Flush,
		close:    wb.Close,
	}, nil
}
