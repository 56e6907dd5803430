package csv

import (
	"io"
	"strings"
	"testing"
	"testing/iotest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSkipBOM(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "with BOM", input: "\xEF\xBB\xBFa,b", want: "a,b"},
		{name: "without BOM", input: "a,b", want: "a,b"},
		{name: "BOM only", input: "\xEF\xBB\xBF", want: ""},
		{name: "short input", input: "a", want: "a"},
		{name: "empty", input: "", want: ""},
		{name: "partial BOM kept", input: "\xEF\xBBx", want: "\xEF\xBBx"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := io.ReadAll(SkipBOM(strings.NewReader(tt.input)))
			require.NoError(t, err)
			assert.Equal(t, tt.want, string(got))
		})
	}
}

func TestSanitizer(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "ascii untouched", input: "hello,world", want: "hello,world"},
		{name: "valid multibyte untouched", input: "café,日本", want: "café,日本"},
		{name: "invalid byte replaced", input: "a\xffb", want: "a?b"},
		{name: "truncated sequence at end", input: "ab\xe6\x97", want: "ab??"},
		{name: "lone continuation", input: "\x80x", want: "?x"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := io.ReadAll(NewSanitizer(strings.NewReader(tt.input)))
			require.NoError(t, err)
			assert.Equal(t, tt.want, string(got))
		})
	}
}

func TestSanitizerSplitSequence(t *testing.T) {
	// One byte per read forces every multi-byte rune across read boundaries.
	r := iotest.OneByteReader(strings.NewReader("日本語,ok\xff"))
	got, err := io.ReadAll(NewSanitizer(r))
	require.NoError(t, err)
	assert.Equal(t, "日本語,ok?", string(got))
}

func TestWrap(t *testing.T) {
	input := "\xEF\xBB\xBFname\n\xffx\n"
	cr := Wrap(strings.NewReader(input), StreamOptions{SkipBOM: true, SanitizeUTF8: true})

	lines, err := NewLineReader(cr).ReadAll()
	require.NoError(t, err)
	assert.Equal(t, []string{"name", "?x"}, lines)
	assert.Equal(t, int64(len("name\n?x\n")), cr.BytesRead())
}

func TestWrapPassthrough(t *testing.T) {
	input := "\xEF\xBB\xBFa"
	got, err := io.ReadAll(Wrap(strings.NewReader(input), StreamOptions{}))
	require.NoError(t, err)
	assert.Equal(t, input, string(got))
}
