// Package textdoc provides header-keyed read, write and append over
// comma-separated text documents.
//
// A Document is bound to one source: a local path (read/write), a URL or an
// in-memory stream (read-only). The first logical line of a document is its
// header. Blank lines are skipped on read. Compressed variants (.csv.gz,
// .csv.zst, .csv.lz4) behave exactly like plain .csv.
//
// Documents are not safe for concurrent use.
package textdoc

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/JonMunkholm/tabular/internal/core"
	"github.com/JonMunkholm/tabular/internal/csv"
	"github.com/JonMunkholm/tabular/internal/logging"
	"github.com/JonMunkholm/tabular/internal/remote"
)

// Document is a handle on one text document.
type Document struct {
	path    string // backing file; empty for buffered sources
	name    string // path, URL or stream name
	codec   codec
	data    []byte // raw bytes of a buffered source
	display core.DisplayNames
	opts    options
	opID    string
	closed  bool
}

var _ core.RowSource = (*Document)(nil)
var _ core.RowSink = (*Document)(nil)

func newDocument(name string, c codec, opts []Option) *Document {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return &Document{name: name, codec: c, opts: o, opID: uuid.NewString()}
}

// Open binds an existing file. The extension selects the codec.
func Open(path string, opts ...Option) (*Document, error) {
	c, err := codecFor("open", path)
	if err != nil {
		return nil, err
	}
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, core.NotFound("open", path, err)
		}
		return nil, core.IOFailure("open", path, err)
	}
	d := newDocument(path, c, opts)
	d.path = path
	return d, nil
}

// Create binds a file that may not exist yet. Parent directories are created
// on the first write.
func Create(path string, opts ...Option) (*Document, error) {
	c, err := codecFor("create", path)
	if err != nil {
		return nil, err
	}
	d := newDocument(path, c, opts)
	d.path = path
	return d, nil
}

// OpenURL fetches a remote document with one blocking GET. The URL path
// selects the codec. The result is read-only.
func OpenURL(ctx context.Context, rawURL string, opts ...Option) (*Document, error) {
	p, err := remote.Path(rawURL)
	if err != nil {
		return nil, err
	}
	c, err := codecFor("open url", p)
	if err != nil {
		return nil, err
	}

	d := newDocument(rawURL, c, opts)
	body, err := remote.Fetch(d.context(ctx), rawURL, d.opts.remote)
	if err != nil {
		return nil, err
	}
	d.data = body
	return d, nil
}

// OpenReader buffers r in memory. name selects the codec; empty means plain
// text. The result is read-only.
func OpenReader(r io.Reader, name string, opts ...Option) (*Document, error) {
	c := codecs["csv"]
	if name != "" {
		var err error
		if c, err = codecFor("open reader", name); err != nil {
			return nil, err
		}
	} else {
		name = "stream"
	}

	body, err := io.ReadAll(r)
	if err != nil {
		return nil, core.IOFailure("open reader", name, err)
	}
	d := newDocument(name, c, opts)
	d.data = body
	return d, nil
}

// Headers sets display names for the header row, keyed by column name. They
// apply when writing a header only; data rows are always keyed by column name.
func (d *Document) Headers(display map[string]string) *Document {
	d.display = core.DisplayNames(display).Clone()
	return d
}

// Name returns the path, URL or stream name of the document.
func (d *Document) Name() string { return d.name }

// Format returns the document's registered format.
func (d *Document) Format() core.Format { return d.codec.format }

// Close releases buffered content. It is safe to call more than once.
func (d *Document) Close() error {
	d.closed = true
	d.data = nil
	return nil
}

func (d *Document) context(ctx context.Context) context.Context {
	return logging.ContextWithOperation(ctx, d.opID)
}

func (d *Document) check(op string, write bool) error {
	if d.closed {
		return core.InvalidArgument(op, "document %s is closed", d.name)
	}
	if write && d.path == "" {
		return core.InvalidArgument(op, "document %s is read-only", d.name)
	}
	return nil
}

// Read returns every data row keyed by the header line. Short rows are padded
// with empty strings. An empty document yields an empty slice.
func (d *Document) Read(ctx context.Context) ([]core.Row, error) {
	const op = "read"
	if err := d.check(op, false); err != nil {
		return nil, err
	}
	ctx = d.context(ctx)

	rows := []core.Row{}
	var headers []string
	err := d.scan(ctx, op, func(line string) {
		if headers == nil {
			headers = csv.Split(line)
			return
		}
		if core.IsBlank(line) {
			return
		}
		rows = append(rows, core.ToRow(headers, csv.Split(line)))
	})
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// ReadWithoutHeaders returns every non-blank line as raw fields, the header
// line included.
func (d *Document) ReadWithoutHeaders(ctx context.Context) ([][]string, error) {
	const op = "read without headers"
	if err := d.check(op, false); err != nil {
		return nil, err
	}
	ctx = d.context(ctx)

	records := [][]string{}
	err := d.scan(ctx, op, func(line string) {
		if !core.IsBlank(line) {
			records = append(records, csv.Split(line))
		}
	})
	if err != nil {
		return nil, err
	}
	return records, nil
}

// ReadWithHeaders treats every non-blank line as data keyed by headers.
func (d *Document) ReadWithHeaders(ctx context.Context, headers []string) ([]core.Row, error) {
	const op = "read with headers"
	if err := core.ValidateHeaders(headers); err != nil {
		return nil, err
	}
	if err := d.check(op, false); err != nil {
		return nil, err
	}
	ctx = d.context(ctx)

	rows := []core.Row{}
	err := d.scan(ctx, op, func(line string) {
		if !core.IsBlank(line) {
			rows = append(rows, core.ToRow(headers, csv.Split(line)))
		}
	})
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// Write replaces the document. The header comes from the first row's columns,
// mapped through the display names. No rows produce an empty document.
func (d *Document) Write(ctx context.Context, rows []core.Row) error {
	const op = "write"
	if err := d.check(op, true); err != nil {
		return err
	}
	ctx = d.context(ctx)

	var buf bytes.Buffer
	if len(rows) > 0 {
		columns := rows[0].Headers()
		writeLine(&buf, d.display.Headers(columns))
		for _, row := range rows {
			writeLine(&buf, row.Strings(columns))
		}
	}

	if err := d.store(ctx, op, buf.Bytes()); err != nil {
		return err
	}
	logging.WithFields(ctx, "source", d.name, "format", d.codec.format.Name).
		Debug("document written", "rows", len(rows), "bytes", buf.Len())
	return nil
}

// Append adds rows after the existing content, positioned by the existing
// header. A missing or blank document is written instead. A document whose
// first line is blank but which holds data is refused.
// Appending no rows to an existing document changes nothing.
func (d *Document) Append(ctx context.Context, rows []core.Row) error {
	const op = "append"
	if err := d.check(op, true); err != nil {
		return err
	}
	ctx = d.context(ctx)

	exists, err := d.exists(op)
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		if exists {
			return nil
		}
		return d.Write(ctx, nil)
	}

	var header []string
	if exists {
		if header, err = d.readHeader(ctx, op); err != nil {
			return err
		}
	}
	if header == nil {
		return d.Write(ctx, rows)
	}

	resolve := d.display.Resolver()
	var buf bytes.Buffer
	for _, row := range rows {
		values := make([]string, len(header))
		for i, h := range header {
			values[i] = row.String(resolve(row, h))
		}
		writeLine(&buf, values)
	}

	if d.codec.compressed() {
		err = d.appendCompressed(ctx, op, buf.Bytes())
	} else {
		err = d.appendPlain(ctx, op, buf.Bytes())
	}
	if err != nil {
		return err
	}
	logging.WithFields(ctx, "source", d.name, "format", d.codec.format.Name).
		Debug("rows appended", "rows", len(rows), "columns", len(header))
	return nil
}

func writeLine(buf *bytes.Buffer, fields []string) {
	buf.WriteString(csv.Join(fields))
	buf.WriteByte('\n')
}

// textStream is the decoded, sanitized text of a document.
type textStream struct {
	lines   *csv.LineReader
	counter *csv.CountingReader
	closers []io.Closer
}

func (s *textStream) Close() error {
	var first error
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i].Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// openText opens the decoded text. A missing file is ErrNotFound.
func (d *Document) openText(op string, sanitize bool) (*textStream, error) {
	s := &textStream{}

	var raw io.Reader
	if d.path == "" {
		raw = bytes.NewReader(d.data)
	} else {
		f, err := os.Open(d.path)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil, core.NotFound(op, d.name, err)
			}
			return nil, core.IOFailure(op, d.name, err)
		}
		s.closers = append(s.closers, f)
		raw = f

		info, err := f.Stat()
		if err != nil {
			s.Close()
			return nil, core.IOFailure(op, d.name, err)
		}
		if info.Size() == 0 {
			raw = bytes.NewReader(nil)
		}
	}

	if empty, ok := raw.(*bytes.Reader); !ok || empty.Len() > 0 {
		dec, err := d.codec.reader(raw)
		if err != nil {
			s.Close()
			return nil, core.IOFailure(op, d.name, fmt.Errorf("decode %s: %w", d.codec.format.Name, err))
		}
		s.closers = append(s.closers, dec)
		raw = dec
	}

	stream := csv.StreamOptions{}
	if sanitize {
		stream = d.opts.stream
	}
	s.counter = csv.Wrap(raw, stream)
	s.lines = csv.NewLineReader(s.counter)
	return s, nil
}

// scan feeds every logical line to fn, checking ctx periodically.
func (d *Document) scan(ctx context.Context, op string, fn func(line string)) error {
	logger := logging.WithFields(ctx, "source", d.name, "format", d.codec.format.Name)

	s, err := d.openText(op, true)
	if err != nil {
		return err
	}
	defer s.Close()

	for n := 0; ; n++ {
		if n%d.opts.checkInterval == 0 {
			if err := ctx.Err(); err != nil {
				return fmt.Errorf("%s %s: %w", op, d.name, err)
			}
		}
		line, err := s.lines.ReadLogicalLine()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			logger.Error("document read failed", "line", n+1, "error", err)
			return core.IOFailure(op, d.name, err)
		}
		fn(line)
	}

	logger.Debug("document scanned", "lines", s.lines.Lines(), "bytes", s.counter.BytesRead())
	return nil
}

// exists reports whether the backing file is present.
func (d *Document) exists(op string) (bool, error) {
	_, err := os.Stat(d.path)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, fs.ErrNotExist):
		return false, nil
	default:
		return false, core.IOFailure(op, d.name, err)
	}
}

// readHeader returns the fields of the first line, or nil when the document
// holds nothing but blank lines. A blank first line followed by content is an
// error: rewriting the document would lose that content.
func (d *Document) readHeader(ctx context.Context, op string) ([]string, error) {
	s, err := d.openText(op, true)
	if err != nil {
		return nil, err
	}
	defer s.Close()

	line, err := s.lines.ReadLogicalLine()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		logging.FromContext(ctx).Error("header read failed", "source", d.name, "error", err)
		return nil, core.IOFailure(op, d.name, err)
	}
	if !core.IsBlank(line) {
		return csv.Split(line), nil
	}

	for {
		line, err := s.lines.ReadLogicalLine()
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		if err != nil {
			logging.FromContext(ctx).Error("header read failed", "source", d.name, "error", err)
			return nil, core.IOFailure(op, d.name, err)
		}
		if !core.IsBlank(line) {
			return nil, core.InvalidArgument(op, "%s has no header row: the first line is blank", d.name)
		}
	}
}

// store replaces the file with payload encoded by the codec.
func (d *Document) store(ctx context.Context, op string, payload []byte) (err error) {
	fail := func(cause error) error {
		logging.FromContext(ctx).Error("document write failed", "source", d.name, "error", cause)
		return core.IOFailure(op, d.name, cause)
	}

	if dir := filepath.Dir(d.path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fail(err)
		}
	}

	f, err := os.Create(d.path)
	if err != nil {
		return fail(err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fail(cerr)
		}
	}()

	if len(payload) == 0 {
		return nil
	}

	w, err := d.codec.writer(f)
	if err != nil {
		return fail(err)
	}
	if _, err := w.Write(payload); err != nil {
		w.Close()
		return fail(err)
	}
	if err := w.Close(); err != nil {
		return fail(err)
	}
	return nil
}

// appendPlain writes payload at the end of a plain text file, adding the
// missing terminator of a last line written by another tool.
func (d *Document) appendPlain(ctx context.Context, op string, payload []byte) (err error) {
	fail := func(cause error) error {
		logging.FromContext(ctx).Error("document append failed", "source", d.name, "error", cause)
		return core.IOFailure(op, d.name, cause)
	}

	f, err := os.OpenFile(d.path, os.O_RDWR|os.O_APPEND, 0)
	if err != nil {
		return fail(err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fail(cerr)
		}
	}()

	info, err := f.Stat()
	if err != nil {
		return fail(err)
	}
	if size := info.Size(); size > 0 {
		last := make([]byte, 1)
		if _, err := f.ReadAt(last, size-1); err != nil {
			return fail(err)
		}
		if last[0] != '\n' && last[0] != '\r' {
			payload = append([]byte{'\n'}, payload...)
		}
	}

	if _, err := f.Write(payload); err != nil {
		return fail(err)
	}
	return nil
}

// appendCompressed rewrites a compressed document with payload added. The
// existing text is copied byte for byte.
func (d *Document) appendCompressed(ctx context.Context, op string, payload []byte) error {
	s, err := d.openText(op, false)
	if err != nil {
		return err
	}
	existing, err := io.ReadAll(s.counter)
	s.Close()
	if err != nil {
		logging.FromContext(ctx).Error("document read failed", "source", d.name, "error", err)
		return core.IOFailure(op, d.name, err)
	}

	if n := len(existing); n > 0 && existing[n-1] != '\n' && existing[n-1] != '\r' {
		existing = append(existing, '\n')
	}
	return d.store(ctx, op, append(existing, payload...))
}
