package workbook

import (
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/xuri/excelize/v2"

	"github.com/JonMunkholm/tabular/internal/core"
)

// cellText renders a raw cell value as text. Date formatted numbers become
// core.DateTimeLayout, other numbers print in plain decimal notation, and
// booleans print as true/false. Formula cells yield their cached value.
func (wb *Workbook) cellText(sheet, cell, raw string) (string, error) {
	if raw == "" {
		return "", nil
	}
	typ, err := wb.file.GetCellType(sheet, cell)
	if err != nil {
		return "", err
	}

	switch typ {
	case excelize.CellTypeBool:
		switch raw {
		case "1", "TRUE", "true":
			return "true", nil
		case "0", "FALSE", "false":
			return "false", nil
		}
		return raw, nil
	case excelize.CellTypeDate:
		return isoDateText(raw), nil
	case excelize.CellTypeUnset, excelize.CellTypeNumber:
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return raw, nil
		}
		date, err := wb.isDateCell(sheet, cell)
		if err != nil {
			return "", err
		}
		if date {
			if t, err := excelize.ExcelDateToTime(f, wb.date1904); err == nil {
				return t.Format(core.DateTimeLayout), nil
			}
		}
		return plainDecimal(raw, f), nil
	default:
		return raw, nil
	}
}

// plainDecimal keeps the stored digits unless they use an exponent.
func plainDecimal(raw string, f float64) string {
	if !strings.ContainsAny(raw, "eE") {
		return raw
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func isoDateText(raw string) string {
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04:05", "2006-01-02T15:04:05.999", "2006-01-02"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.Format(core.DateTimeLayout)
		}
	}
	return raw
}

// isDateCell reports whether the cell's number format shows a date or time.
// Results are cached per style.
func (wb *Workbook) isDateCell(sheet, cell string) (bool, error) {
	id, err := wb.file.GetCellStyle(sheet, cell)
	if err != nil {
		return false, err
	}
	if date, ok := wb.dates[id]; ok {
		return date, nil
	}
	date := false
	if style, err := wb.file.GetStyle(id); err == nil {
		date = isDateStyle(style)
	}
	wb.dates[id] = date
	return date, nil
}

func isDateStyle(style *excelize.Style) bool {
	if style.CustomNumFmt != nil {
		return isDatePattern(*style.CustomNumFmt)
	}
	n := style.NumFmt
	return (n >= 14 && n <= 22) || (n >= 27 && n <= 36) || (n >= 45 && n <= 47) || (n >= 50 && n <= 58)
}

// isDatePattern looks for date or time tokens outside quoted literals,
// escapes and bracketed sections.
func isDatePattern(code string) bool {
	var b strings.Builder
	inQuote, inBracket := false, false
	for i := 0; i < len(code); i++ {
		c := code[i]
		switch {
		case inQuote:
			inQuote = c != '"'
		case inBracket:
			inBracket = c != ']'
		case c == '"':
			inQuote = true
		case c == '[':
			inBracket = true
		case c == '\\' || c == '_' || c == '*':
			i++
		default:
			b.WriteByte(c)
		}
	}
	clean := strings.ToLower(b.String())
	if clean == "general" {
		return false
	}
	return strings.ContainsAny(clean, "ymdhs")
}

// cellValue converts a row value into what a cell stores: numbers stay
// numeric, booleans stay boolean, times become fixed text and NULLs become
// empty text.
func cellValue(v any) any {
	switch x := v.(type) {
	case nil:
		return ""
	case string, bool,
		int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64,
		float32, float64:
		return x
	case time.Time:
		return x.Format(core.DateTimeLayout)
	case *time.Time:
		if x == nil {
			return ""
		}
		return x.Format(core.DateTimeLayout)
	case pgtype.Int2:
		if x.Valid {
			return x.Int16
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
		if f, err := x.Float64Value(); err == nil && f.Valid {
			return f.Float64
		}
	default:
		return core.FormatValue(v)
	}
	return ""
}

// setCell stores v at cell.
func (wb *Workbook) setCell(sheet, cell string, v any) error {
	switch x := cellValue(v).(type) {
	case string:
		return wb.file.SetCellStr(sheet, cell, x)
	default:
		return wb.file.SetCellValue(sheet, cell, x)
	}
}
