package textdoc

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonMunkholm/tabular/internal/core"
	"github.com/JonMunkholm/tabular/internal/csv"
)

func people() []core.Row {
	return []core.Row{
		core.NewRowBuilder(2).Put("name", "Alice").Put("age", 30).Row(),
		core.NewRowBuilder(2).Put("name", "Bob").Put("age", 25).Row(),
	}
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestReadKeyedByHeader(t *testing.T) {
	path := writeFile(t, "people.csv", "name,age,city\nAlice,30,Oslo\n\n  \nBob,25\n")

	doc, err := Open(path)
	require.NoError(t, err)
	defer doc.Close()

	rows, err := doc.Read(context.Background())
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, []string{"name", "age", "city"}, rows[0].Headers())
	assert.Equal(t, "Alice", rows[0].String("name"))
	assert.Equal(t, "Oslo", rows[0].String("city"))
	assert.Equal(t, "", rows[1].String("city"), "short rows are padded")
}

func TestReadQuotedFields(t *testing.T) {
	path := writeFile(t, "notes.csv", "id,note\r\n1,\"hello, world\"\r\n2,\"two\nlines\"\r\n3,\"say \"\"hi\"\"\"\r\n")

	doc, err := Open(path)
	require.NoError(t, err)

	rows, err := doc.Read(context.Background())
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "hello, world", rows[0].String("note"))
	assert.Equal(t, "two\nlines", rows[1].String("note"))
	assert.Equal(t, `say "hi"`, rows[2].String("note"))
}

func TestReadSkipsBOMAndSanitizes(t *testing.T) {
	path := writeFile(t, "bom.csv", "\xEF\xBB\xBFname\nA\xffB\n")

	doc, err := Open(path)
	require.NoError(t, err)
	rows, err := doc.Read(context.Background())
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "A?B", rows[0].String("name"))

	raw, err := Open(path, WithStream(csv.StreamOptions{}))
	require.NoError(t, err)
	records, err := raw.ReadWithoutHeaders(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "\ufeffname", records[0][0])
}

func TestReadEmptyDocument(t *testing.T) {
	path := writeFile(t, "empty.csv", "")

	doc, err := Open(path)
	require.NoError(t, err)

	rows, err := doc.Read(context.Background())
	require.NoError(t, err)
	assert.Empty(t, rows)
	assert.NotNil(t, rows)
}

func TestReadWithoutHeaders(t *testing.T) {
	path := writeFile(t, "raw.csv", "a,b\n\n1,2\n3\n")

	doc, err := Open(path)
	require.NoError(t, err)

	records, err := doc.ReadWithoutHeaders(context.Background())
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"a", "b"}, {"1", "2"}, {"3"}}, records)
}

func TestReadWithHeaders(t *testing.T) {
	path := writeFile(t, "data.csv", "Alice,30\nBob,25\n")

	doc, err := Open(path)
	require.NoError(t, err)

	rows, err := doc.ReadWithHeaders(context.Background(), []string{"name", "age"})
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Alice", rows[0].String("name"))
	assert.Equal(t, "25", rows[1].String("age"))

	_, err = doc.ReadWithHeaders(context.Background(), nil)
	assert.ErrorIs(t, err, core.ErrInvalidArgument)
}

func TestWriteThenRead(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "out.csv")
	ctx := context.Background()

	doc, err := Create(path)
	require.NoError(t, err)
	require.NoError(t, doc.Write(ctx, people()))

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "name,age\nAlice,30\nBob,25\n", string(content))

	rows, err := doc.Read(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Bob", rows[1].String("name"))
}

func TestWriteEmptyCreatesEmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.csv")
	ctx := context.Background()

	doc, err := Create(path)
	require.NoError(t, err)
	require.NoError(t, doc.Write(ctx, nil))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Zero(t, info.Size())

	rows, err := doc.Read(ctx)
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestWriteQuotesSpecialFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "quoted.csv")
	ctx := context.Background()

	doc, err := Create(path)
	require.NoError(t, err)
	row := core.NewRowBuilder(1).Put("note", "a, \"b\"\nc").Row()
	require.NoError(t, doc.Write(ctx, []core.Row{row}))

	rows, err := doc.Read(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "a, \"b\"\nc", rows[0].String("note"))
}

func TestWriteDisplayNames(t *testing.T) {
	path := filepath.Join(t.TempDir(), "display.csv")
	ctx := context.Background()

	doc, err := Create(path)
	require.NoError(t, err)
	doc.Headers(map[string]string{"name": "Name", "age": "Age"})

	row := core.NewRowBuilder(2).Put("name", "Alice").Put("age", "30").Row()
	require.NoError(t, doc.Write(ctx, []core.Row{row}))

	rows, err := doc.Read(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, map[string]any{"Name": "Alice", "Age": "30"}, rows[0].Map())
}

func TestAppendUsesExistingHeaderOrder(t *testing.T) {
	path := writeFile(t, "people.csv", "age,name\n40,Carol\n")
	ctx := context.Background()

	doc, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, doc.Append(ctx, people()))

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "age,name\n40,Carol\n30,Alice\n25,Bob\n", string(content))
}

func TestAppendRepairsMissingTerminator(t *testing.T) {
	path := writeFile(t, "people.csv", "name,age\nCarol,40")
	ctx := context.Background()

	doc, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, doc.Append(ctx, people()[:1]))

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "name,age\nCarol,40\nAlice,30\n", string(content))
}

func TestAppendThroughDisplayNames(t *testing.T) {
	path := filepath.Join(t.TempDir(), "display.csv")
	ctx := context.Background()

	doc, err := Create(path)
	require.NoError(t, err)
	doc.Headers(map[string]string{"name": "Name", "age": "Age"})

	require.NoError(t, doc.Append(ctx, people()[:1]))
	require.NoError(t, doc.Append(ctx, people()[1:]))

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "Name,Age\nAlice,30\nBob,25\n", string(content))
}

func TestAppendMissingOrHeaderless(t *testing.T) {
	ctx := context.Background()

	t.Run("missing file is written", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "new.csv")
		doc, err := Create(path)
		require.NoError(t, err)
		require.NoError(t, doc.Append(ctx, people()))

		content, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, "name,age\nAlice,30\nBob,25\n", string(content))
	})

	t.Run("blank first line is written", func(t *testing.T) {
		path := writeFile(t, "blank.csv", "\n")
		doc, err := Open(path)
		require.NoError(t, err)
		require.NoError(t, doc.Append(ctx, people()[:1]))

		content, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, "name,age\nAlice,30\n", string(content))
	})

	t.Run("blank first line before data is refused", func(t *testing.T) {
		path := writeFile(t, "gap.csv", "\n\nAlice,30\n")
		doc, err := Open(path)
		require.NoError(t, err)

		err = doc.Append(ctx, people()[:1])
		require.ErrorIs(t, err, core.ErrInvalidArgument)
		assert.Equal(t, "DOC002", core.MapError(err).Code)

		content, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, "\n\nAlice,30\n", string(content))
	})

	t.Run("no rows on existing file", func(t *testing.T) {
		path := writeFile(t, "keep.csv", "name\nAlice\n")
		doc, err := Open(path)
		require.NoError(t, err)
		require.NoError(t, doc.Append(ctx, nil))

		content, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, "name\nAlice\n", string(content))
	})

	t.Run("no rows on missing file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "none.csv")
		doc, err := Create(path)
		require.NoError(t, err)
		require.NoError(t, doc.Append(ctx, nil))

		info, err := os.Stat(path)
		require.NoError(t, err)
		assert.Zero(t, info.Size())
	})
}

func TestCompressedFormats(t *testing.T) {
	ctx := context.Background()

	for _, ext := range []string{".csv.gz", ".csv.zst", ".csv.lz4"} {
		t.Run(ext, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "people"+ext)

			doc, err := Create(path)
			require.NoError(t, err)
			assert.Equal(t, ext, doc.Format().Extension)

			require.NoError(t, doc.Write(ctx, people()[:1]))
			require.NoError(t, doc.Append(ctx, people()[1:]))

			reopened, err := Open(path)
			require.NoError(t, err)
			rows, err := reopened.Read(ctx)
			require.NoError(t, err)
			require.Len(t, rows, 2)
			assert.Equal(t, "Alice", rows[0].String("name"))
			assert.Equal(t, "25", rows[1].String("age"))
		})
	}
}

func TestOpenErrors(t *testing.T) {
	dir := t.TempDir()

	_, err := Open(filepath.Join(dir, "missing.csv"))
	assert.ErrorIs(t, err, core.ErrNotFound)

	_, err = Open(filepath.Join(dir, "missing.txt"))
	assert.ErrorIs(t, err, core.ErrUnsupportedFormat)

	_, err = Create(filepath.Join(dir, "report.xlsx"))
	assert.ErrorIs(t, err, core.ErrUnsupportedFormat)
}

func TestReadAfterRemoval(t *testing.T) {
	path := filepath.Join(t.TempDir(), "later.csv")

	doc, err := Create(path)
	require.NoError(t, err)

	_, err = doc.Read(context.Background())
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestOpenReader(t *testing.T) {
	ctx := context.Background()

	doc, err := OpenReader(strings.NewReader("name,age\nAlice,30\n"), "")
	require.NoError(t, err)
	assert.Equal(t, "stream", doc.Name())

	rows, err := doc.Read(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 1)

	err = doc.Write(ctx, people())
	assert.ErrorIs(t, err, core.ErrInvalidArgument)
	err = doc.Append(ctx, people())
	assert.ErrorIs(t, err, core.ErrInvalidArgument)
}

func TestOpenURL(t *testing.T) {
	r := chi.NewRouter()
	r.Get("/data/{name}", func(w http.ResponseWriter, r *http.Request) {
		if chi.URLParam(r, "name") != "people.csv" {
			http.NotFound(w, r)
			return
		}
		w.Write([]byte("name,age\nAlice,30\nBob,25\n"))
	})
	srv := httptest.NewServer(r)
	defer srv.Close()
	ctx := context.Background()

	doc, err := OpenURL(ctx, srv.URL+"/data/people.csv?v=1")
	require.NoError(t, err)
	rows, err := doc.Read(ctx)
	require.NoError(t, err)
	assert.Len(t, rows, 2)

	_, err = OpenURL(ctx, srv.URL+"/data/other.csv")
	assert.ErrorIs(t, err, core.ErrNotFound)

	_, err = OpenURL(ctx, srv.URL+"/data/people.pdf")
	assert.ErrorIs(t, err, core.ErrUnsupportedFormat)
}

func TestClose(t *testing.T) {
	path := writeFile(t, "people.csv", "name\nAlice\n")

	doc, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, doc.Close())
	require.NoError(t, doc.Close())

	_, err = doc.Read(context.Background())
	assert.ErrorIs(t, err, core.ErrInvalidArgument)
}

func TestReadCancelled(t *testing.T) {
	path := writeFile(t, "people.csv", "name\nAlice\n")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	doc, err := Open(path)
	require.NoError(t, err)

	_, err = doc.Read(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
