package core

// DisplayNames maps column names to the text shown in a header row. Data
// values stay keyed by the column name.
type DisplayNames map[string]string

// Clone returns an independent copy.
func (d DisplayNames) Clone() DisplayNames {
	out := make(DisplayNames, len(d))
	for k, v := range d {
		out[k] = v
	}
	return out
}

// Header returns the header cell for column.
func (d DisplayNames) Header(column string) string {
	if name, ok := d[column]; ok {
		return name
	}
	return column
}

// Headers maps every column through Header.
func (d DisplayNames) Headers(columns []string) []string {
	out := make([]string, len(columns))
	for i, c := range columns {
		out[i] = d.Header(c)
	}
	return out
}

// Resolver returns a function mapping a persisted header cell back to the
// key a row uses for it. A row keyed by the header text wins; otherwise a
// display name resolves to its column.
func (d DisplayNames) Resolver() func(Row, string) string {
	reverse := make(map[string]string, len(d))
	for column, shown := range d {
		reverse[shown] = column
	}
	return func(row Row, header string) string {
		if _, ok := row.Get(header); ok {
			return header
		}
		if column, ok := reverse[header]; ok {
			return column
		}
		return header
	}
}
