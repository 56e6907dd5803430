// Package csv implements the comma-separated text codec: quote-aware field
// splitting and joining, and a reader that assembles logical records whose
// quoted fields span several physical lines.
//
// Wire format: comma separator, double-quote quoting, doubled-quote escape,
// "\n" or "\r\n" record terminators, UTF-8.
package csv

import "strings"

const (
	separator = ','
	quote     = '"'
)

// Split tokenizes one logical line into fields.
//
// A quote toggles quoting unless it is the first of a doubled quote inside a
// quoted field, which yields one literal quote. Commas outside quotes end a
// field. The last field is always emitted, so "" yields [""] and "a," yields
// ["a", ""]. Fields are never trimmed.
func Split(line string) []string {
	fields := make([]string, 0, strings.Count(line, ",")+1)
	var field strings.Builder
	inQuotes := false

	for i := 0; i < len(line); i++ {
		c := line[i]
		switch {
		case c == quote:
			if inQuotes && i+1 < len(line) && line[i+1] == quote {
				field.WriteByte(quote)
				i++
			} else {
				inQuotes = !inQuotes
			}
		case c == separator && !inQuotes:
			fields = append(fields, field.String())
			field.Reset()
		default:
			field.WriteByte(c)
		}
	}

	return append(fields, field.String())
}

// Join formats fields as one line. A field is quoted, with inner quotes
// doubled, iff it contains a comma, a quote, or a line break.
func Join(fields []string) string {
	var b strings.Builder
	for i, f := range fields {
		if i > 0 {
			b.WriteByte(separator)
		}
		b.WriteString(Quote(f))
	}
	return b.String()
}

// Quote returns f in its wire form.
func Quote(f string) string {
	if !needsQuoting(f) {
		return f
	}
	return `"` + strings.ReplaceAll(f, `"`, `""`) + `"`
}

func needsQuoting(f string) bool {
	return strings.ContainsAny(f, ",\"\n\r")
}
