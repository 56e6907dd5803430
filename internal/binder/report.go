package binder

import (
	"fmt"
	"strings"
)

// IssueKind classifies a lossy decode event.
type IssueKind int

const (
	// DroppedColumn is a row column that resolved to no field.
	DroppedColumn IssueKind = iota
	// CoercionFailure is a cell that could not be parsed into its field kind.
	CoercionFailure
)

func (k IssueKind) String() string {
	switch k {
	case DroppedColumn:
		return "dropped column"
	case CoercionFailure:
		return "coercion failure"
	default:
		return "issue"
	}
}

// Issue is one value problem that decoding degraded to NULL or skipped.
type Issue struct {
	Kind    IssueKind
	Row     int    // Zero-based index into the decoded rows
	Column  string // Row column name
	Field   string // Target field; empty for dropped columns
	Value   string // Cell text
	Message string // Human-readable detail
}

func (i Issue) Error() string {
	if i.Field != "" {
		return fmt.Sprintf("row %d, column %q -> %s: %s", i.Row, i.Column, i.Field, i.Message)
	}
	return fmt.Sprintf("row %d, column %q: %s", i.Row, i.Column, i.Message)
}

// Report lists everything a lossy decode swallowed. Decoding results are the
// same with or without a report; it only makes the losses visible.
type Report struct {
	Rows   int
	Issues []Issue
}

// OK reports whether nothing was lost.
func (r *Report) OK() bool {
	return len(r.Issues) == 0
}

// Dropped returns the distinct dropped column names in first-seen order.
func (r *Report) Dropped() []string {
	seen := make(map[string]bool)
	var cols []string
	for _, is := range r.Issues {
		if is.Kind == DroppedColumn && !seen[is.Column] {
			seen[is.Column] = true
			cols = append(cols, is.Column)
		}
	}
	return cols
}

// Failures returns only the coercion failures.
func (r *Report) Failures() []Issue {
	var out []Issue
	for _, is := range r.Issues {
		if is.Kind == CoercionFailure {
			out = append(out, is)
		}
	}
	return out
}

// Err returns the first issue as an error, or nil. Strict callers use this
// to turn the lossy policy into fail-on-first-problem.
func (r *Report) Err() error {
	if r.OK() {
		return nil
	}
	first := r.Issues[0]
	return &first
}

// Summary renders a one-line count of issues by kind.
func (r *Report) Summary() string {
	if r.OK() {
		return fmt.Sprintf("%d rows, no issues", r.Rows)
	}
	var parts []string
	if n := len(r.Dropped()); n > 0 {
		parts = append(parts, fmt.Sprintf("%d dropped columns", n))
	}
	if n := len(r.Failures()); n > 0 {
		parts = append(parts, fmt.Sprintf("%d coercion failures", n))
	}
	return fmt.Sprintf("%d rows, %s", r.Rows, strings.Join(parts, ", "))
}

func (r *Report) add(is Issue) {
	if r != nil {
		r.Issues = append(r.Issues, is)
	}
}
