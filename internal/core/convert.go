package core

// convert.go provides coercion of cell text into nullable pgtype values.
//
// Cells arrive as text from both documents and workbooks. Every Parse*
// function follows the same contract:
//   - blank or whitespace-only input is NULL (Valid=false) and not an error
//   - malformed input is NULL plus a non-nil error describing the failure
//
// The To* wrappers drop the error for callers that only need the value.
// Numeric parsing does not trim: " 12" is malformed, matching strconv.

import (
	"fmt"
	"math"
	"math/big"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
)

// DateTimeLayout is the fixed text form of date values in every document.
const DateTimeLayout = "2006-01-02 15:04:05"

// numericRegex splits a decimal literal into its mantissa and exponent.
var numericRegex = regexp.MustCompile(`^[+-]?(\d+(?:\.\d*)?|\.\d+)([eE][+-]?\d+)?$`)

// TwoDigitYearPivot defines how 2-digit years are interpreted.
// Years more than this many years in the future are moved back a century.
var TwoDigitYearPivot = 20

var (
	timestampLayouts = []string{
		DateTimeLayout,
		"2006-01-02T15:04:05",
		time.RFC3339,
		time.RFC3339Nano,
		"2006-01-02 15:04",
		"2006/01/02 15:04:05",
	}
	fourDigitYearLayouts = []string{
		"2006-01-02", "2006/01/02", "2006.01.02",
		"1/2/2006", "01/02/2006", "1-2-2006", "01-02-2006", "1.2.2006", "01.02.2006",
		"Jan 2, 2006", "2 Jan 2006",
		"20060102",
	}
	twoDigitYearLayouts = []string{
		"1/2/06", "01/02/06", "1-2-06", "1.2.06", "01.02.06",
	}
)

// IsBlank reports whether s is empty after trimming whitespace.
func IsBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}

func coercionError(kind, s string, err error) error {
	if err != nil {
		return fmt.Errorf("invalid %s %q: %w", kind, s, err)
	}
	return fmt.Errorf("invalid %s %q", kind, s)
}

// ToText converts a cell to pgtype.Text. Blank cells are NULL; other text
// is kept verbatim, surrounding whitespace included.
func ToText(s string) pgtype.Text {
	if IsBlank(s) {
		return pgtype.Text{}
	}
	return pgtype.Text{String: s, Valid: true}
}

// ParseInt4 parses a 32-bit integer cell.
func ParseInt4(s string) (pgtype.Int4, error) {
	if IsBlank(s) {
		return pgtype.Int4{}, nil
	}
	n, err := strconv.ParseInt(s, 10, 32)
	if err != nil {
		return pgtype.Int4{}, coercionError("integer", s, err)
	}
	return pgtype.Int4{Int32: int32(n), Valid: true}, nil
}

// ToInt4 is ParseInt4 without the error.
func ToInt4(s string) pgtype.Int4 {
	v, _ := ParseInt4(s)
	return v
}

// ParseInt8 parses a 64-bit integer cell.
func ParseInt8(s string) (pgtype.Int8, error) {
	if IsBlank(s) {
		return pgtype.Int8{}, nil
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return pgtype.Int8{}, coercionError("long", s, err)
	}
	return pgtype.Int8{Int64: n, Valid: true}, nil
}

// ToInt8 is ParseInt8 without the error.
func ToInt8(s string) pgtype.Int8 {
	v, _ := ParseInt8(s)
	return v
}

// ParseFloat4 parses a single precision cell.
func ParseFloat4(s string) (pgtype.Float4, error) {
	if IsBlank(s) {
		return pgtype.Float4{}, nil
	}
	f, err := strconv.ParseFloat(s, 32)
	if err != nil {
		return pgtype.Float4{}, coercionError("float", s, err)
	}
	return pgtype.Float4{Float32: float32(f), Valid: true}, nil
}

// ToFloat4 is ParseFloat4 without the error.
func ToFloat4(s string) pgtype.Float4 {
	v, _ := ParseFloat4(s)
	return v
}

// ParseFloat8 parses a double precision cell.
func ParseFloat8(s string) (pgtype.Float8, error) {
	if IsBlank(s) {
		return pgtype.Float8{}, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return pgtype.Float8{}, coercionError("double", s, err)
	}
	return pgtype.Float8{Float64: f, Valid: true}, nil
}

// ToFloat8 is ParseFloat8 without the error.
func ToFloat8(s string) pgtype.Float8 {
	v, _ := ParseFloat8(s)
	return v
}

// ParseBool accepts true/false, yes/no, t/f, y/n and 1/0 in any case.
func ParseBool(s string) (pgtype.Bool, error) {
	if IsBlank(s) {
		return pgtype.Bool{}, nil
	}
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "t", "yes", "y", "1":
		return pgtype.Bool{Bool: true, Valid: true}, nil
	case "false", "f", "no", "n", "0":
		return pgtype.Bool{Bool: false, Valid: true}, nil
	default:
		return pgtype.Bool{}, coercionError("boolean", s, nil)
	}
}

// ToBool is ParseBool without the error.
func ToBool(s string) pgtype.Bool {
	v, _ := ParseBool(s)
	return v
}

// ParseNumeric parses an exact decimal cell. The scale of the input is kept,
// so "1.50" stays two fractional digits. Scientific notation is accepted.
func ParseNumeric(s string) (pgtype.Numeric, error) {
	if IsBlank(s) {
		return pgtype.Numeric{}, nil
	}
	m := numericRegex.FindStringSubmatch(s)
	if m == nil {
		return pgtype.Numeric{}, coercionError("number", s, nil)
	}
	mantissa, exponent := m[1], m[2]

	intPart, fracPart, _ := strings.Cut(mantissa, ".")
	digits, ok := new(big.Int).SetString(intPart+fracPart, 10)
	if !ok {
		return pgtype.Numeric{}, coercionError("number", s, nil)
	}
	if m[0][0] == '-' {
		digits.Neg(digits)
	}

	exp := -int64(len(fracPart))
	if exponent != "" {
		e, err := strconv.ParseInt(exponent[1:], 10, 32)
		if err != nil {
			return pgtype.Numeric{}, coercionError("number", s, err)
		}
		exp += e
	}
	if exp < math.MinInt32 || exp > math.MaxInt32 {
		return pgtype.Numeric{}, coercionError("number", s, nil)
	}
	return pgtype.Numeric{Int: digits, Exp: int32(exp), Valid: true}, nil
}

// ToNumeric is ParseNumeric without the error.
func ToNumeric(s string) pgtype.Numeric {
	v, _ := ParseNumeric(s)
	return v
}

// ParseTimestamp parses a date or date-time cell. The fixed document layout
// is tried first, then ISO variants, then common date-only layouts.
func ParseTimestamp(s string) (pgtype.Timestamp, error) {
	if IsBlank(s) {
		return pgtype.Timestamp{}, nil
	}
	s = strings.TrimSpace(s)

	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return pgtype.Timestamp{Time: t, Valid: true}, nil
		}
	}
	for _, layout := range fourDigitYearLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return pgtype.Timestamp{Time: t, Valid: true}, nil
		}
	}

	pivotYear := time.Now().Year() + TwoDigitYearPivot
	for _, layout := range twoDigitYearLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			if t.Year() > pivotYear {
				t = t.AddDate(-100, 0, 0)
			}
			return pgtype.Timestamp{Time: t, Valid: true}, nil
		}
	}

	return pgtype.Timestamp{}, coercionError("date", s, nil)
}

// ToTimestamp is ParseTimestamp without the error.
func ToTimestamp(s string) pgtype.Timestamp {
	v, _ := ParseTimestamp(s)
	return v
}

// FormatValue renders a scalar the way documents store it. nil and invalid
// pgtype values are "", times use DateTimeLayout, and floats are written as
// the shortest plain decimal without an exponent.
func FormatValue(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case bool:
		return strconv.FormatBool(x)
	case int:
		return strconv.Itoa(x)
	case int8:
		return strconv.FormatInt(int64(x), 10)
	case int16:
		return strconv.FormatInt(int64(x), 10)
	case int32:
		return strconv.FormatInt(int64(x), 10)
	case int64:
		return strconv.FormatInt(x, 10)
	case uint:
		return strconv.FormatUint(uint64(x), 10)
	case uint8:
		return strconv.FormatUint(uint64(x), 10)
	case uint16:
		return strconv.FormatUint(uint64(x), 10)
	case uint32:
		return strconv.FormatUint(uint64(x), 10)
	case uint64:
		return strconv.FormatUint(x, 10)
	case float32:
		return formatFloat(float64(x), 32)
	case float64:
		return formatFloat(x, 64)
	case time.Time:
		return x.Format(DateTimeLayout)
	case *time.Time:
		if x == nil {
			return ""
		}
		return x.Format(DateTimeLayout)
	case pgtype.Text:
		if !x.Valid {
			return ""
		}
		return x.String
	case pgtype.Int4:
		if !x.Valid {
			return ""
		}
		return strconv.FormatInt(int64(x.Int32), 10)
	case pgtype.Int8:
		if !x.Valid {
			return ""
		}
		return strconv.FormatInt(x.Int64, 10)
	case pgtype.Float4:
		if !x.Valid {
			return ""
		}
		return formatFloat(float64(x.Float32), 32)
	case pgtype.Float8:
		if !x.Valid {
			return ""
		}
		return formatFloat(x.Float64, 64)
	case pgtype.Bool:
		if !x.Valid {
			return ""
		}
		return strconv.FormatBool(x.Bool)
	case pgtype.Numeric:
		return FormatNumeric(x)
	case pgtype.Timestamp:
		if !x.Valid {
			return ""
		}
		return x.Time.Format(DateTimeLayout)
	case pgtype.Date:
		if !x.Valid {
			return ""
		}
		return x.Time.Format(DateTimeLayout)
	case fmt.Stringer:
		return x.String()
	default:
		return fmt.Sprint(v)
	}
}

func formatFloat(f float64, bitSize int) string {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return strconv.FormatFloat(f, 'g', -1, bitSize)
	}
	return strconv.FormatFloat(f, 'f', -1, bitSize)
}

// FormatNumeric renders an exact decimal in plain notation, keeping its scale.
func FormatNumeric(n pgtype.Numeric) string {
	if !n.Valid {
		return ""
	}
	if n.NaN {
		return "NaN"
	}
	switch n.InfinityModifier {
	case pgtype.Infinity:
		return "Infinity"
	case pgtype.NegativeInfinity:
		return "-Infinity"
	}
	if n.Int == nil {
		return "0"
	}

	digits := n.Int.String()
	neg := strings.HasPrefix(digits, "-")
	digits = strings.TrimPrefix(digits, "-")

	switch {
	case n.Exp > 0:
		digits += strings.Repeat("0", int(n.Exp))
	case n.Exp < 0:
		scale := int(-n.Exp)
		if len(digits) <= scale {
			digits = strings.Repeat("0", scale-len(digits)+1) + digits
		}
		digits = digits[:len(digits)-scale] + "." + digits[len(digits)-scale:]
	}

	if neg {
		return "-" + digits
	}
	return digits
}
