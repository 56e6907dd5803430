package binder

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"

	"github.com/JonMunkholm/tabular/internal/core"
	"github.com/JonMunkholm/tabular/internal/logging"
)

// ContextCheckInterval is how many records are processed between checks for
// context cancellation.
const ContextCheckInterval = 100

// Encode converts records to rows. Columns follow declaration order and are
// keyed by the column override, else the field name. NULL values become nil.
func Encode[T any](schema *Schema[T], records []T) []core.Row {
	rows := make([]core.Row, len(records))
	for i := range records {
		b := core.NewRowBuilder(len(schema.fields))
		for _, f := range schema.fields {
			b.Put(f.ColumnName(), scalar(f.get(&records[i])))
		}
		rows[i] = b.Row()
	}
	return rows
}

// scalar unwraps pgtype values into plain row scalars.
func scalar(v any) any {
	switch x := v.(type) {
	case pgtype.Text:
		if x.Valid {
			return x.String
		}
	case pgtype.Int4:
		if x.Valid {
			return x.Int32
		}
	case pgtype.Int8:
		if x.Valid {
			return x.Int64
		}
	case pgtype.Float4:
		if x.Valid {
			return x.Float32
		}
	case pgtype.Float8:
		if x.Valid {
			return x.Float64
		}
	case pgtype.Bool:
		if x.Valid {
			return x.Bool
		}
	case pgtype.Numeric:
		if x.Valid {
			return x
		}
	case pgtype.Timestamp:
		if x.Valid {
			return x.Time
		}
	default:
		return v
	}
	return nil
}

// Decode converts rows to records with the lossy policy: columns that resolve
// to no field are skipped and cells that fail to parse leave the field NULL.
// Both are logged, neither is an error.
//
// mapping, if non-nil, maps a row column name to a field name and takes
// precedence over direct lookup. Only context cancellation fails the call.
func Decode[T any](ctx context.Context, schema *Schema[T], rows []core.Row, mapping map[string]string) ([]T, error) {
	return decode(ctx, schema, rows, mapping, nil)
}

// DecodeReport is Decode that also returns every swallowed problem.
func DecodeReport[T any](ctx context.Context, schema *Schema[T], rows []core.Row, mapping map[string]string) ([]T, *Report, error) {
	report := &Report{}
	records, err := decode(ctx, schema, rows, mapping, report)
	if err != nil {
		return nil, nil, err
	}
	return records, report, nil
}

func decode[T any](ctx context.Context, schema *Schema[T], rows []core.Row, mapping map[string]string, report *Report) ([]T, error) {
	logger := logging.FromContext(ctx)
	records := make([]T, len(rows))
	loggedDrop := make(map[string]bool)

	for i, row := range rows {
		if i%ContextCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}

		rec := &records[i]
		for _, col := range row.Headers() {
			raw, _ := row.Get(col)
			text := core.FormatValue(raw)

			key := col
			var (
				f  Field[T]
				ok bool
			)
			if target, mapped := mapping[col]; mapped {
				key = target
				f, ok = schema.resolve(target)
			}
			if !ok {
				f, ok = schema.resolve(col)
			}
			if !ok {
				if !loggedDrop[col] {
					loggedDrop[col] = true
					logger.Debug("column matches no field", "column", col, "lookup", key)
				}
				report.add(Issue{
					Kind:    DroppedColumn,
					Row:     i,
					Column:  col,
					Value:   text,
					Message: "no field for column",
				})
				continue
			}

			if err := f.set(rec, raw, text); err != nil {
				logger.Warn("cell coercion failed",
					"row", i, "column", col, "field", f.Name, "kind", f.Kind.String(), "value", text)
				report.add(Issue{
					Kind:    CoercionFailure,
					Row:     i,
					Column:  col,
					Field:   f.Name,
					Value:   text,
					Message: err.Error(),
				})
			}
		}
	}

	if report != nil {
		report.Rows = len(rows)
	}
	return records, nil
}
