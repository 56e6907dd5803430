package core

import (
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
)

// ----------------------------------------------------------------------------
// Numeric Tests
// ----------------------------------------------------------------------------

func TestParseNumeric(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wantValid bool
		wantErr   bool
		wantText  string
	}{
		{name: "positive integer", input: "123", wantValid: true, wantText: "123"},
		{name: "zero", input: "0", wantValid: true, wantText: "0"},
		{name: "negative integer", input: "-456", wantValid: true, wantText: "-456"},
		{name: "trailing zeros in integer", input: "1000", wantValid: true, wantText: "1000"},
		{name: "decimal keeps scale", input: "1.50", wantValid: true, wantText: "1.50"},
		{name: "leading decimal point", input: ".99", wantValid: true, wantText: "0.99"},
		{name: "small negative fraction", input: "-0.005", wantValid: true, wantText: "-0.005"},
		{name: "blank is null without error", input: "   ", wantValid: false},
		{name: "empty is null without error", input: "", wantValid: false},
		{name: "letters are rejected", input: "abc", wantValid: false, wantErr: true},
		{name: "currency is rejected", input: "$12", wantValid: false, wantErr: true},
		{name: "exponent", input: "1e5", wantValid: true, wantText: "100000"},
		{name: "upper-case exponent with fraction", input: "1.5E3", wantValid: true, wantText: "1500"},
		{name: "negative exponent", input: "-2.5e-3", wantValid: true, wantText: "-0.0025"},
		{name: "explicit positive exponent", input: "+12.50e+1", wantValid: true, wantText: "125.0"},
		{name: "dangling exponent is rejected", input: "1.5e", wantValid: false, wantErr: true},
		{name: "exponent out of range", input: "1e99999999999", wantValid: false, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseNumeric(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseNumeric(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if got.Valid != tt.wantValid {
				t.Fatalf("ParseNumeric(%q).Valid = %v, want %v", tt.input, got.Valid, tt.wantValid)
			}
			if tt.wantValid {
				if s := FormatNumeric(got); s != tt.wantText {
					t.Errorf("FormatNumeric(ParseNumeric(%q)) = %q, want %q", tt.input, s, tt.wantText)
				}
			}
		})
	}
}

func TestParseIntegers(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		want4     int32
		valid4    bool
		want8     int64
		valid8    bool
		wantError bool
	}{
		{name: "plain", input: "42", want4: 42, valid4: true, want8: 42, valid8: true},
		{name: "negative", input: "-7", want4: -7, valid4: true, want8: -7, valid8: true},
		{name: "beyond int32", input: "3000000000", valid4: false, want8: 3000000000, valid8: true, wantError: true},
		{name: "decimal is not an integer", input: "1.5", wantError: true},
		{name: "surrounding space is malformed", input: " 5", wantError: true},
		{name: "blank", input: " \t "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			i4, err4 := ParseInt4(tt.input)
			if i4.Valid != tt.valid4 || i4.Int32 != tt.want4 {
				t.Errorf("ParseInt4(%q) = %+v, want {%d %v}", tt.input, i4, tt.want4, tt.valid4)
			}
			if tt.wantError && err4 == nil {
				t.Errorf("ParseInt4(%q) error = nil, want error", tt.input)
			}

			i8, _ := ParseInt8(tt.input)
			if i8.Valid != tt.valid8 || i8.Int64 != tt.want8 {
				t.Errorf("ParseInt8(%q) = %+v, want {%d %v}", tt.input, i8, tt.want8, tt.valid8)
			}
		})
	}
}

func TestParseFloats(t *testing.T) {
	f8, err := ParseFloat8("3.25")
	if err != nil || !f8.Valid || f8.Float64 != 3.25 {
		t.Errorf("ParseFloat8(3.25) = %+v, %v", f8, err)
	}
	f4, err := ParseFloat4("-0.5")
	if err != nil || !f4.Valid || f4.Float32 != -0.5 {
		t.Errorf("ParseFloat4(-0.5) = %+v, %v", f4, err)
	}
	if v := ToFloat8("abc"); v.Valid {
		t.Errorf("ToFloat8(abc) should be null")
	}
	if _, err := ParseFloat8("abc"); err == nil {
		t.Errorf("ParseFloat8(abc) should fail")
	}
}

// ----------------------------------------------------------------------------
// Bool Tests
// ----------------------------------------------------------------------------

func TestParseBool(t *testing.T) {
	tests := []struct {
		input     string
		wantValid bool
		wantBool  bool
		wantErr   bool
	}{
		{input: "true", wantValid: true, wantBool: true},
		{input: "TRUE", wantValid: true, wantBool: true},
		{input: "Yes", wantValid: true, wantBool: true},
		{input: "1", wantValid: true, wantBool: true},
		{input: " y ", wantValid: true, wantBool: true},
		{input: "false", wantValid: true, wantBool: false},
		{input: "N", wantValid: true, wantBool: false},
		{input: "0", wantValid: true, wantBool: false},
		{input: "", wantValid: false},
		{input: "maybe", wantValid: false, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseBool(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseBool(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if got.Valid != tt.wantValid || got.Bool != tt.wantBool {
				t.Errorf("ParseBool(%q) = %+v, want {%v %v}", tt.input, got, tt.wantBool, tt.wantValid)
			}
		})
	}
}

// ----------------------------------------------------------------------------
// Text and Timestamp Tests
// ----------------------------------------------------------------------------

func TestToText(t *testing.T) {
	if got := ToText("  "); got.Valid {
		t.Errorf("ToText(blank) should be null, got %+v", got)
	}
	if got := ToText(" padded "); !got.Valid || got.String != " padded " {
		t.Errorf("ToText should keep text verbatim, got %+v", got)
	}
}

func TestParseTimestamp(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    time.Time
		wantErr bool
	}{
		{name: "document layout", input: "2025-10-23 08:30:15", want: time.Date(2025, 10, 23, 8, 30, 15, 0, time.UTC)},
		{name: "iso with T", input: "2025-10-23T08:30:15", want: time.Date(2025, 10, 23, 8, 30, 15, 0, time.UTC)},
		{name: "date only", input: "2024-01-15", want: time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)},
		{name: "us date", input: "01/15/2024", want: time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)},
		{name: "two digit year", input: "1/15/24", want: time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)},
		{name: "garbage", input: "not a date", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseTimestamp(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseTimestamp(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if tt.wantErr {
				if got.Valid {
					t.Errorf("ParseTimestamp(%q) should be null on error", tt.input)
				}
				return
			}
			if !got.Valid || !got.Time.Equal(tt.want) {
				t.Errorf("ParseTimestamp(%q) = %v, want %v", tt.input, got.Time, tt.want)
			}
		})
	}
}

// ----------------------------------------------------------------------------
// FormatValue Tests
// ----------------------------------------------------------------------------

func TestFormatValue(t *testing.T) {
	tests := []struct {
		name  string
		input any
		want  string
	}{
		{name: "nil", input: nil, want: ""},
		{name: "string", input: "a,b", want: "a,b"},
		{name: "int", input: 30, want: "30"},
		{name: "int64", input: int64(-9000000000), want: "-9000000000"},
		{name: "bool", input: true, want: "true"},
		{name: "float has no exponent", input: 12345678901.5, want: "12345678901.5"},
		{name: "tiny float has no exponent", input: 0.00001, want: "0.00001"},
		{name: "float32", input: float32(1.1), want: "1.1"},
		{name: "time", input: time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC), want: "2025-01-02 03:04:05"},
		{name: "null text", input: pgtype.Text{}, want: ""},
		{name: "valid int4", input: pgtype.Int4{Int32: 9, Valid: true}, want: "9"},
		{name: "null numeric", input: pgtype.Numeric{}, want: ""},
		{name: "numeric", input: ToNumeric("12.340"), want: "12.340"},
		{name: "timestamp", input: ToTimestamp("2025-10-23 08:30:15"), want: "2025-10-23 08:30:15"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatValue(tt.input); got != tt.want {
				t.Errorf("FormatValue(%v) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}
