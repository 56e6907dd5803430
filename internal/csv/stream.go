package csv

// stream.go provides reader wrappers applied to every text source before
// records are assembled:
//
//   - SkipBOM drops a leading UTF-8 byte order mark written by Windows tools
//   - Sanitizer replaces invalid UTF-8 bytes with '?' without buffering the file
//   - CountingReader tracks bytes read for debug logging
//
// Wrap applies them in the required order.

import (
	"bufio"
	"bytes"
	"io"
	"unicode/utf8"
)

var bom = []byte{0xEF, 0xBB, 0xBF}

// SkipBOM returns a reader positioned after a leading UTF-8 BOM, if any.
func SkipBOM(r io.Reader) io.Reader {
	br := bufio.NewReader(r)
	head, _ := br.Peek(len(bom))
	if bytes.Equal(head, bom) {
		br.Discard(len(bom))
	}
	return br
}

// Sanitizer replaces invalid UTF-8 bytes with '?'. A multi-byte sequence cut
// by a read boundary is carried into the next Read.
type Sanitizer struct {
	r     io.Reader
	carry []byte
	buf   []byte
	out   []byte
	err   error
}

// NewSanitizer wraps r.
func NewSanitizer(r io.Reader) *Sanitizer {
	return &Sanitizer{r: r, buf: make([]byte, 32*1024)}
}

func (s *Sanitizer) Read(p []byte) (int, error) {
	for len(s.out) == 0 {
		if s.err != nil {
			if len(s.carry) > 0 {
				s.out = s.clean(s.carry, true)
				s.carry = nil
				continue
			}
			return 0, s.err
		}
		n, err := s.r.Read(s.buf)
		s.err = err
		if n == 0 {
			continue
		}
		chunk := append(s.carry, s.buf[:n]...)
		s.carry = nil
		s.out = s.clean(chunk, err != nil)
	}

	n := copy(p, s.out)
	s.out = s.out[n:]
	return n, nil
}

// clean rewrites data in place. Unless final, an incomplete trailing
// sequence is moved to carry.
func (s *Sanitizer) clean(data []byte, final bool) []byte {
	if !final {
		if cut := partialTail(data); cut > 0 {
			s.carry = append([]byte(nil), data[len(data)-cut:]...)
			data = data[:len(data)-cut]
		}
	}
	if utf8.Valid(data) {
		return data
	}

	w := 0
	for i := 0; i < len(data); {
		r, size := utf8.DecodeRune(data[i:])
		if r == utf8.RuneError && size == 1 {
			data[w] = '?'
			w++
			i++
			continue
		}
		w += copy(data[w:], data[i:i+size])
		i += size
	}
	return data[:w]
}

// partialTail returns the length of an incomplete sequence at the end of data.
func partialTail(data []byte) int {
	for i := 1; i <= utf8.UTFMax-1 && i <= len(data); i++ {
		b := data[len(data)-i]
		if utf8.RuneStart(b) {
			if b < utf8.RuneSelf {
				return 0
			}
			if !utf8.FullRune(data[len(data)-i:]) {
				return i
			}
			return 0
		}
	}
	return 0
}

// CountingReader counts bytes passed through it.
type CountingReader struct {
	r io.Reader
	n int64
}

// NewCountingReader wraps r.
func NewCountingReader(r io.Reader) *CountingReader {
	return &CountingReader{r: r}
}

func (c *CountingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	return n, err
}

// BytesRead returns the number of bytes read so far.
func (c *CountingReader) BytesRead() int64 {
	return c.n
}

// StreamOptions selects the wrappers applied by Wrap.
type StreamOptions struct {
	SkipBOM      bool
	SanitizeUTF8 bool
}

// Wrap applies BOM skipping, then sanitizing, then counting. The BOM must be
// removed before sanitizing and counting covers the bytes records see.
func Wrap(r io.Reader, opts StreamOptions) *CountingReader {
	if opts.SkipBOM {
		r = SkipBOM(r)
	}
	if opts.SanitizeUTF8 {
		r = NewSanitizer(r)
	}
	return NewCountingReader(r)
}
