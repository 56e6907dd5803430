package core

import (
	"context"
	"slices"
)

// Row is one record: an ordered mapping from header name to scalar value.
//
// Keys are case-sensitive and unique. Values are nil, string, bool, integer
// and float types, time.Time, or any value FormatValue understands. A Row is
// never mutated after construction; accessors return copies.
type Row struct {
	headers []string
	values  []any
	index   map[string]int
}

// ToRow zips headers with values positionally. Missing trailing values become
// the empty string and values beyond the header count are dropped.
func ToRow(headers []string, values []string) Row {
	b := newRowBuilder(len(headers))
	for i, h := range headers {
		v := ""
		if i < len(values) {
			v = values[i]
		}
		b.put(h, v)
	}
	return b.row()
}

// NewRow zips headers with arbitrary scalar values. Missing trailing values
// become nil and values beyond the header count are dropped.
func NewRow(headers []string, values []any) Row {
	b := newRowBuilder(len(headers))
	for i, h := range headers {
		var v any
		if i < len(values) {
			v = values[i]
		}
		b.put(h, v)
	}
	return b.row()
}

// ValidateHeaders rejects a nil or empty header sequence.
// Required before any custom-header read.
func ValidateHeaders(headers []string) error {
	if len(headers) == 0 {
		return InvalidArgument("validate headers", "custom headers must not be empty")
	}
	return nil
}

// Headers returns the header names in order.
func (r Row) Headers() []string {
	return slices.Clone(r.headers)
}

// Values returns the values in header order.
func (r Row) Values() []any {
	return slices.Clone(r.values)
}

// Len returns the number of columns.
func (r Row) Len() int {
	return len(r.headers)
}

// Get returns the value stored under header.
func (r Row) Get(header string) (any, bool) {
	i, ok := r.index[header]
	if !ok {
		return nil, false
	}
	return r.values[i], true
}

// String returns the value under header rendered as text. Absent headers and
// nil values render as "".
func (r Row) String(header string) string {
	v, _ := r.Get(header)
	return FormatValue(v)
}

// Strings renders the values for headers in the given order.
func (r Row) Strings(headers []string) []string {
	out := make([]string, len(headers))
	for i, h := range headers {
		out[i] = r.String(h)
	}
	return out
}

// Map returns an unordered copy of the row.
func (r Row) Map() map[string]any {
	m := make(map[string]any, len(r.headers))
	for i, h := range r.headers {
		m[h] = r.values[i]
	}
	return m
}

// rowBuilder accumulates entries with insertion-order semantics: a repeated
// header keeps its first position and takes the latest value.
type rowBuilder struct {
	headers []string
	values  []any
	index   map[string]int
}

func newRowBuilder(capacity int) *rowBuilder {
	return &rowBuilder{
		headers: make([]string, 0, capacity),
		values:  make([]any, 0, capacity),
		index:   make(map[string]int, capacity),
	}
}

func (b *rowBuilder) put(header string, value any) {
	if i, ok := b.index[header]; ok {
		b.values[i] = value
		return
	}
	b.index[header] = len(b.headers)
	b.headers = append(b.headers, header)
	b.values = append(b.values, value)
}

func (b *rowBuilder) row() Row {
	return Row{headers: b.headers, values: b.values, index: b.index}
}

// RowBuilder builds a Row entry by entry. Used by the binder's write path.
type RowBuilder struct {
	b *rowBuilder
}

// NewRowBuilder returns an empty builder sized for capacity columns.
func NewRowBuilder(capacity int) *RowBuilder {
	return &RowBuilder{b: newRowBuilder(capacity)}
}

// Put appends header=value, or replaces the value of an existing header.
func (rb *RowBuilder) Put(header string, value any) *RowBuilder {
	rb.b.put(header, value)
	return rb
}

// Row finishes the builder. The builder must not be reused afterwards.
func (rb *RowBuilder) Row() Row {
	r := rb.b.row()
	rb.b = newRowBuilder(0)
	return r
}

// RowSource is anything that yields header-keyed rows: text documents and
// spreadsheet sheets.
type RowSource interface {
	Read(ctx context.Context) ([]Row, error)
}

// RowSink is anything that accepts header-keyed rows.
type RowSink interface {
	Write(ctx context.Context, rows []Row) error
	Append(ctx context.Context, rows []Row) error
}
