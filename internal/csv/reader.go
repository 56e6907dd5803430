package csv

import (
	"bufio"
	"errors"
	"io"
	"strings"
)

// LineReader reads logical records from a character stream.
type LineReader struct {
	r     *bufio.Reader
	lines int
}

// NewLineReader wraps r. If r is already a *bufio.Reader it is used directly.
func NewLineReader(r io.Reader) *LineReader {
	br, ok := r.(*bufio.Reader)
	if !ok {
		br = bufio.NewReader(r)
	}
	return &LineReader{r: br}
}

// Lines returns the number of logical records returned so far.
func (lr *LineReader) Lines() int {
	return lr.lines
}

// ReadLogicalLine returns the next record without its terminator.
//
// Quoted fields may contain "\n" and "\r". Outside quotes "\n", "\r\n" and a
// lone "\r" each end the record; the "\r\n" pair is consumed as a unit. An
// immediately terminated line returns "". io.EOF is returned only when the
// stream was exhausted before any character was read.
func (lr *LineReader) ReadLogicalLine() (string, error) {
	var line strings.Builder
	inQuotes := false
	consumed := false

	for {
		c, _, err := lr.r.ReadRune()
		if err != nil {
			if errors.Is(err, io.EOF) {
				if !consumed {
					return "", io.EOF
				}
				lr.lines++
				return line.String(), nil
			}
			return "", err
		}
		consumed = true

		switch c {
		case quote:
			line.WriteRune(c)
			next, err := lr.peekRune()
			if err != nil {
				return "", err
			}
			if next == quote {
				// Doubled quote: literal content, quoting state unchanged.
				lr.r.ReadRune()
				line.WriteRune(quote)
			} else {
				inQuotes = !inQuotes
			}

		case '\n':
			if !inQuotes {
				lr.lines++
				return line.String(), nil
			}
			line.WriteRune(c)

		case '\r':
			if !inQuotes {
				next, err := lr.peekRune()
				if err != nil {
					return "", err
				}
				if next == '\n' {
					lr.r.ReadRune()
				}
				lr.lines++
				return line.String(), nil
			}
			line.WriteRune(c)

		default:
			line.WriteRune(c)
		}
	}
}

// peekRune looks at the next rune without consuming it. It returns -1 at end
// of input so callers can treat EOF as "neither quote nor newline".
func (lr *LineReader) peekRune() (rune, error) {
	next, _, err := lr.r.ReadRune()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return -1, nil
		}
		return 0, err
	}
	if err := lr.r.UnreadRune(); err != nil {
		return 0, err
	}
	return next, nil
}

// ReadAll returns every remaining logical record.
func (lr *LineReader) ReadAll() ([]string, error) {
	var lines []string
	for {
		line, err := lr.ReadLogicalLine()
		if errors.Is(err, io.EOF) {
			return lines, nil
		}
		if err != nil {
			return nil, err
		}
		lines = append(lines, line)
	}
}
