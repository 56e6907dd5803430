// Package workbook provides header-keyed access to spreadsheet workbooks.
//
// A Workbook holds named sheets. Each Sheet reads and writes rows the same
// way a text document does: the first row is the header, data rows follow.
// Header cells and data cells carry distinct styles, and column widths follow
// the content.
//
// .xlsx workbooks are read and written. Legacy .xls workbooks are read into
// memory and can be edited there, but never flushed back to disk.
//
// Workbooks are not safe for concurrent use.
package workbook

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"

	"github.com/JonMunkholm/tabular/internal/core"
	"github.com/JonMunkholm/tabular/internal/logging"
	"github.com/JonMunkholm/tabular/internal/remote"
)

var (
	formatXLSX = core.Format{Name: "xlsx", Extension: ".xlsx", Family: core.FamilyWorkbook, Writable: true}
	formatXLS  = core.Format{Name: "xls", Extension: ".xls", Family: core.FamilyWorkbook}
)

func init() {
	core.RegisterFormat(formatXLSX)
	core.RegisterFormat(formatXLS)
}

// Workbook is a handle on one spreadsheet file.
type Workbook struct {
	file   *excelize.File
	path   string // backing file; empty for buffered sources
	name   string
	format core.Format
	opts   options
	opID   string

	sheets   map[string]*Sheet
	styles   *styles
	dates    map[int]bool // style id -> date formatted
	date1904 bool

	// pristine is set while a created workbook holds only its placeholder
	// sheet; the first named sheet takes the placeholder's place.
	pristine bool
	closed   bool
}

func formatFor(op, name string) (core.Format, error) {
	f, err := core.DetectFormat(name)
	if err != nil {
		return core.Format{}, err
	}
	if f.Family != core.FamilyWorkbook {
		return core.Format{}, core.Unsupported(op, name, nil)
	}
	return f, nil
}

func newWorkbook(name string, format core.Format, opts []Option) *Workbook {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return &Workbook{
		name:   name,
		format: format,
		opts:   o,
		opID:   uuid.NewString(),
		sheets: make(map[string]*Sheet),
		dates:  make(map[int]bool),
	}
}

// Open loads an existing workbook.
func Open(path string, opts ...Option) (*Workbook, error) {
	const op = "open workbook"
	format, err := formatFor(op, path)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, core.NotFound(op, path, err)
		}
		return nil, core.IOFailure(op, path, err)
	}

	wb := newWorkbook(path, format, opts)
	wb.path = path
	if err := wb.load(context.Background(), op, data); err != nil {
		return nil, err
	}
	return wb, nil
}

// Create starts an empty workbook that is saved to path on Flush. Only
// writable formats can be created.
func Create(path string, opts ...Option) (*Workbook, error) {
	const op = "create workbook"
	format, err := formatFor(op, path)
	if err != nil {
		return nil, err
	}
	if !format.Writable {
		return nil, core.Unsupported(op, path, fmt.Errorf("%s workbooks are read-only", format.Name))
	}

	wb := newWorkbook(path, format, opts)
	wb.path = path
	wb.file = excelize.NewFile()
	wb.pristine = true
	if placeholder := wb.file.GetSheetName(0); placeholder != wb.opts.defaultSheet {
		if err := wb.file.SetSheetName(placeholder, wb.opts.defaultSheet); err != nil {
			return nil, core.InvalidArgument(op, "default sheet %q: %v", wb.opts.defaultSheet, err)
		}
	}
	return wb, nil
}

// OpenURL fetches a remote workbook with one blocking GET. The result is
// read-only.
func OpenURL(ctx context.Context, rawURL string, opts ...Option) (*Workbook, error) {
	const op = "open workbook url"
	p, err := remote.Path(rawURL)
	if err != nil {
		return nil, err
	}
	format, err := formatFor(op, p)
	if err != nil {
		return nil, err
	}

	wb := newWorkbook(rawURL, format, opts)
	ctx = wb.context(ctx)
	data, err := remote.Fetch(ctx, rawURL, wb.opts.remote)
	if err != nil {
		return nil, err
	}
	if err := wb.load(ctx, op, data); err != nil {
		return nil, err
	}
	return wb, nil
}

// OpenReader loads a workbook from r. name selects the format. The result is
// read-only.
func OpenReader(r io.Reader, name string, opts ...Option) (*Workbook, error) {
	const op = "open workbook reader"
	format, err := formatFor(op, name)
	if err != nil {
		return nil, err
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, core.IOFailure(op, name, err)
	}

	wb := newWorkbook(name, format, opts)
	if err := wb.load(context.Background(), op, data); err != nil {
		return nil, err
	}
	return wb, nil
}

func (wb *Workbook) load(ctx context.Context, op string, data []byte) error {
	ctx = wb.context(ctx)
	if wb.format.Name == formatXLS.Name {
		f, err := materializeLegacy(ctx, data)
		if err != nil {
			return core.IOFailure(op, wb.name, err)
		}
		wb.file = f
		return nil
	}

	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return core.IOFailure(op, wb.name, err)
	}
	wb.file = f
	if props, err := f.GetWorkbookProps(); err == nil && props.Date1904 != nil {
		wb.date1904 = *props.Date1904
	}
	return nil
}

func (wb *Workbook) context(ctx context.Context) context.Context {
	return logging.ContextWithOperation(ctx, wb.opID)
}

func (wb *Workbook) logger(ctx context.Context) *slog.Logger {
	return logging.WithFields(ctx, "source", wb.name, "format", wb.format.Name)
}

func (wb *Workbook) check(op string) error {
	if wb.closed {
		return core.InvalidArgument(op, "workbook %s is closed", wb.name)
	}
	return nil
}

// Name returns the path, URL or stream name of the workbook.
func (wb *Workbook) Name() string { return wb.name }

// Format returns the workbook's registered format.
func (wb *Workbook) Format() core.Format { return wb.format }

// Sheet returns the named sheet, creating it when absent. Repeated calls
// return the same *Sheet.
func (wb *Workbook) Sheet(name string) (*Sheet, error) {
	const op = "sheet"
	if err := wb.check(op); err != nil {
		return nil, err
	}
	if core.IsBlank(name) {
		return nil, core.InvalidArgument(op, "sheet name is blank")
	}
	if s, ok := wb.sheets[name]; ok {
		return s, nil
	}

	idx, err := wb.file.GetSheetIndex(name)
	if err != nil {
		return nil, core.InvalidArgument(op, "sheet %q: %v", name, err)
	}
	switch {
	case idx >= 0:
		wb.pristine = false
		// Sheet names match case-insensitively; keep the stored spelling.
		if stored := wb.file.GetSheetName(idx); stored != name {
			s, err := wb.Sheet(stored)
			if err == nil {
				wb.sheets[name] = s
			}
			return s, err
		}
	case wb.pristine:
		if err := wb.file.SetSheetName(wb.file.GetSheetName(0), name); err != nil {
			return nil, core.InvalidArgument(op, "sheet %q: %v", name, err)
		}
		wb.pristine = false
	default:
		if _, err := wb.file.NewSheet(name); err != nil {
			return nil, core.InvalidArgument(op, "sheet %q: %v", name, err)
		}
	}

	s := &Sheet{wb: wb, name: name}
	wb.sheets[name] = s
	return s, nil
}

// SheetAt returns the sheet at a zero-based position.
func (wb *Workbook) SheetAt(index int) (*Sheet, error) {
	const op = "sheet at"
	if err := wb.check(op); err != nil {
		return nil, err
	}
	names := wb.SheetNames()
	if index < 0 || index >= len(names) {
		return nil, core.InvalidArgument(op, "sheet index %d out of range [0, %d)", index, len(names))
	}
	return wb.Sheet(names[index])
}

// SheetNames lists sheet names in workbook order.
func (wb *Workbook) SheetNames() []string {
	if wb.closed || wb.pristine {
		return []string{}
	}
	return wb.file.GetSheetList()
}

// SheetCount returns the number of sheets.
func (wb *Workbook) SheetCount() int {
	return len(wb.SheetNames())
}

// ReadAll reads every sheet. The map is keyed by sheet name; names gives the
// workbook order.
func (wb *Workbook) ReadAll(ctx context.Context) (rows map[string][]core.Row, names []string, err error) {
	if err := wb.check("read all"); err != nil {
		return nil, nil, err
	}
	names = wb.SheetNames()
	rows = make(map[string][]core.Row, len(names))
	for _, name := range names {
		s, err := wb.Sheet(name)
		if err != nil {
			return nil, nil, err
		}
		if rows[name], err = s.Read(ctx); err != nil {
			return nil, nil, err
		}
	}
	return rows, names, nil
}

// Flush saves the workbook to its path, creating parent directories.
func (wb *Workbook) Flush(ctx context.Context) error {
	const op = "flush"
	if err := wb.check(op); err != nil {
		return err
	}
	if !wb.format.Writable {
		return core.Unsupported(op, wb.name, fmt.Errorf("legacy %s workbooks are read-only", wb.format.Extension))
	}
	if wb.path == "" {
		return core.InvalidArgument(op, "workbook %s is read-only", wb.name)
	}
	ctx = wb.context(ctx)
	logger := wb.logger(ctx)

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%s %s: %w", op, wb.name, err)
	}
	if err := os.MkdirAll(filepath.Dir(wb.path), 0o755); err != nil {
		logger.Error("workbook flush failed", "error", err)
		return core.IOFailure(op, wb.name, err)
	}
	if err := wb.file.SaveAs(wb.path); err != nil {
		logger.Error("workbook flush failed", "error", err)
		return core.IOFailure(op, wb.name, err)
	}
	logger.Debug("workbook flushed", "sheets", wb.SheetCount())
	return nil
}

// WriteTo encodes the workbook to w.
func (wb *Workbook) WriteTo(w io.Writer) (int64, error) {
	const op = "write workbook"
	if err := wb.check(op); err != nil {
		return 0, err
	}
	if !wb.format.Writable {
		return 0, core.Unsupported(op, wb.name, fmt.Errorf("legacy %s workbooks are read-only", wb.format.Extension))
	}
	n, err := wb.file.WriteTo(w)
	if err != nil {
		return n, core.IOFailure(op, wb.name, err)
	}
	return n, nil
}

// Close releases the workbook. It is safe to call more than once.
func (wb *Workbook) Close() error {
	if wb.closed {
		return nil
	}
	wb.closed = true
	wb.sheets = nil
	if err := wb.file.Close(); err != nil {
		return core.IOFailure("close workbook", wb.name, err)
	}
	return nil
}
