// Package core provides the shared model of the tabular codec.
//
// Everything that the text (CSV) documents and the spreadsheet workbooks have
// in common lives here, independent of any file layout:
//
//   - Rows: [Row] is one record as an ordered header-to-scalar mapping. Rows
//     are built with [ToRow] on read paths and [NewRow] on write paths and are
//     immutable afterwards.
//   - Formats: document kinds are registered by extension with
//     [RegisterFormat] and resolved with [DetectFormat]. An unknown extension
//     is always [ErrUnsupportedFormat], never a silent fallback.
//   - Coercion: the To* functions turn cell text into nullable pgtype values.
//     Blank or malformed input yields Valid=false rather than an error.
//   - Errors: structural failures carry one of the sentinel kinds
//     ([ErrInvalidArgument], [ErrNotFound], [ErrUnsupportedFormat], [ErrIO])
//     and can be mapped to support codes with [MapError].
//
// # Row Flow
//
// Read paths go line/cell grid -> []string -> [ToRow] -> optional binder.
// Write paths invert this:
//
//	row := core.NewRow([]string{"name", "age"}, []any{"Alice", 30})
//	row.String("age") // "30"
//
// # Error Handling
//
// Per-cell problems (unparseable numbers, unknown columns) never surface as
// errors from this package. They degrade a single value to NULL and are
// reported through logging.
package core
