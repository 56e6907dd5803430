package textdoc

import (
	"io"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"

	"github.com/JonMunkholm/tabular/internal/core"
)

// codec wraps the byte stream of one text format.
type codec struct {
	format core.Format
	reader func(io.Reader) (io.ReadCloser, error)
	writer func(io.Writer) (io.WriteCloser, error)
}

// compressed reports whether the on-disk bytes differ from the text.
func (c codec) compressed() bool {
	return c.format.Name != "csv"
}

var codecs = map[string]codec{}

func register(c codec) {
	core.RegisterFormat(c.format)
	codecs[c.format.Name] = c
}

func init() {
	register(codec{
		format: core.Format{Name: "csv", Extension: ".csv", Family: core.FamilyText, Writable: true},
		reader: func(r io.Reader) (io.ReadCloser, error) { return io.NopCloser(r), nil },
		writer: func(w io.Writer) (io.WriteCloser, error) { return nopWriteCloser{w}, nil },
	})
	register(codec{
		format: core.Format{Name: "csv.gz", Extension: ".csv.gz", Family: core.FamilyText, Writable: true},
		reader: func(r io.Reader) (io.ReadCloser, error) { return gzip.NewReader(r) },
		writer: func(w io.Writer) (io.WriteCloser, error) { return gzip.NewWriter(w), nil },
	})
	register(codec{
		format: core.Format{Name: "csv.zst", Extension: ".csv.zst", Family: core.FamilyText, Writable: true},
		reader: func(r io.Reader) (io.ReadCloser, error) {
			d, err := zstd.NewReader(r)
			if err != nil {
				return nil, err
			}
			return d.IOReadCloser(), nil
		},
		writer: func(w io.Writer) (io.WriteCloser, error) { return zstd.NewWriter(w) },
	})
	register(codec{
		format: core.Format{Name: "csv.lz4", Extension: ".csv.lz4", Family: core.FamilyText, Writable: true},
		reader: func(r io.Reader) (io.ReadCloser, error) { return io.NopCloser(lz4.NewReader(r)), nil },
		writer: func(w io.Writer) (io.WriteCloser, error) { return lz4.NewWriter(w), nil },
	})
}

type nopWriteCloser struct{ io.Writer }

func (nopWriteCloser) Close() error { return nil }

// codecFor resolves the codec of a name, or ErrUnsupportedFormat when the
// name is not a text format.
func codecFor(op, name string) (codec, error) {
	f, err := core.DetectFormat(name)
	if err != nil {
		return codec{}, err
	}
	c, ok := codecs[f.Name]
	if !ok || f.Family != core.FamilyText {
		return codec{}, core.Unsupported(op, name, nil)
	}
	return c, nil
}
