package core

import (
	"errors"
	"reflect"
	"testing"
)

func TestToRow(t *testing.T) {
	tests := []struct {
		name       string
		headers    []string
		values     []string
		wantKeys   []string
		wantValues []any
	}{
		{
			name:       "exact width",
			headers:    []string{"name", "age"},
			values:     []string{"Alice", "30"},
			wantKeys:   []string{"name", "age"},
			wantValues: []any{"Alice", "30"},
		},
		{
			name:       "short row padded with empty strings",
			headers:    []string{"a", "b", "c"},
			values:     []string{"1"},
			wantKeys:   []string{"a", "b", "c"},
			wantValues: []any{"1", "", ""},
		},
		{
			name:       "extra values dropped",
			headers:    []string{"a"},
			values:     []string{"1", "2", "3"},
			wantKeys:   []string{"a"},
			wantValues: []any{"1"},
		},
		{
			name:       "duplicate header keeps first position and last value",
			headers:    []string{"x", "y", "x"},
			values:     []string{"1", "2", "3"},
			wantKeys:   []string{"x", "y"},
			wantValues: []any{"3", "2"},
		},
		{
			name:       "no headers",
			headers:    nil,
			values:     []string{"1"},
			wantKeys:   []string{},
			wantValues: []any{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			row := ToRow(tt.headers, tt.values)
			if got := row.Headers(); !reflect.DeepEqual(got, tt.wantKeys) {
				t.Errorf("Headers() = %v, want %v", got, tt.wantKeys)
			}
			if got := row.Values(); !reflect.DeepEqual(got, tt.wantValues) {
				t.Errorf("Values() = %v, want %v", got, tt.wantValues)
			}
			if row.Len() != len(tt.wantKeys) {
				t.Errorf("Len() = %d, want %d", row.Len(), len(tt.wantKeys))
			}
		})
	}
}

func TestNewRow(t *testing.T) {
	row := NewRow([]string{"name", "age", "note"}, []any{"Alice", 30})

	if got := row.String("age"); got != "30" {
		t.Errorf(`String("age") = %q, want "30"`, got)
	}
	v, ok := row.Get("note")
	if !ok || v != nil {
		t.Errorf(`Get("note") = %v, %v, want nil, true`, v, ok)
	}
	if _, ok := row.Get("Name"); ok {
		t.Error("keys should be case-sensitive")
	}
	if got := row.Strings([]string{"note", "name", "missing"}); !reflect.DeepEqual(got, []string{"", "Alice", ""}) {
		t.Errorf("Strings() = %v", got)
	}
}

func TestRowAccessorsReturnCopies(t *testing.T) {
	row := ToRow([]string{"a"}, []string{"1"})

	h := row.Headers()
	h[0] = "changed"
	vals := row.Values()
	vals[0] = "changed"
	m := row.Map()
	m["a"] = "changed"

	if row.Headers()[0] != "a" || row.String("a") != "1" {
		t.Error("mutating accessor results must not change the row")
	}
}

func TestRowBuilder(t *testing.T) {
	row := NewRowBuilder(2).Put("b", 1).Put("a", 2).Put("b", 3).Row()

	if got := row.Headers(); !reflect.DeepEqual(got, []string{"b", "a"}) {
		t.Errorf("Headers() = %v, want [b a]", got)
	}
	if got := row.String("b"); got != "3" {
		t.Errorf(`String("b") = %q, want "3"`, got)
	}
}

func TestValidateHeaders(t *testing.T) {
	tests := []struct {
		name    string
		headers []string
		wantErr bool
	}{
		{name: "nil", headers: nil, wantErr: true},
		{name: "empty", headers: []string{}, wantErr: true},
		{name: "one header", headers: []string{"a"}, wantErr: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateHeaders(tt.headers)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ValidateHeaders() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidArgument) {
				t.Errorf("error should be ErrInvalidArgument, got %v", err)
			}
		})
	}
}
