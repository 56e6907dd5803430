package binder

import (
	"context"
	"fmt"

	"github.com/JonMunkholm/tabular/internal/core"
)

// ReadRecords reads every row from src and decodes it into records.
func ReadRecords[T any](ctx context.Context, src core.RowSource, schema *Schema[T], mapping map[string]string) ([]T, error) {
	rows, err := src.Read(ctx)
	if err != nil {
		return nil, err
	}
	records, err := Decode(ctx, schema, rows, mapping)
	if err != nil {
		return nil, fmt.Errorf("decode records: %w", err)
	}
	return records, nil
}

// ReadRecordsReport is ReadRecords that also returns the decode report.
func ReadRecordsReport[T any](ctx context.Context, src core.RowSource, schema *Schema[T], mapping map[string]string) ([]T, *Report, error) {
	rows, err := src.Read(ctx)
	if err != nil {
		return nil, nil, err
	}
	records, report, err := DecodeReport(ctx, schema, rows, mapping)
	if err != nil {
		return nil, nil, fmt.Errorf("decode records: %w", err)
	}
	return records, report, nil
}

// WriteRecords replaces the contents of sink with records.
func WriteRecords[T any](ctx context.Context, sink core.RowSink, schema *Schema[T], records []T) error {
	return sink.Write(ctx, Encode(schema, records))
}

// AppendRecords adds records after the existing contents of sink.
func AppendRecords[T any](ctx context.Context, sink core.RowSink, schema *Schema[T], records []T) error {
	return sink.Append(ctx, Encode(schema, records))
}
