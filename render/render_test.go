package render

import (
	"bytes"
	"cine-grid/grid"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleLayout() grid.Layout {
	return grid.BuildLayout([]grid.Review{
		{Date: "2024-01-02", Title: "Dune", Rating: "5", Thumbnail: "https://img/dune.jpg", Link: "/someone/film/dune/"},
		{Date: "2024-01-03", Title: "Heat & Dust", Rating: "5", Rewatch: true, Thumbnail: "https://img/heat.jpg", Link: "/someone/film/heat/"},
		{Date: "2024-01-04", Title: "Jaws", Rating: "8", Thumbnail: "https://img/jaws.jpg", Link: "/someone/film/jaws/"},
		{Date: "2024-01-05", Title: "Unrated", Rating: ""},
	}, grid.LayoutOptions{})
}

func fixedNow() time.Time {
	return time.Date(2024, 6, 1, 15, 4, 0, 0, time.UTC)
}

func TestHTMLRender(t *testing.T) {
	var buf bytes.Buffer
	r := &HTML{Title: Title("someone", 2024), Now: fixedNow}
	require.NoError(t, r.Render(&buf, sampleLayout()))

	out := buf.String()
	assert.Contains(t, out, "someone&#39;s 2024 in ratings")
	assert.Equal(t, 10, strings.Count(out, `class="row"`))
	assert.Contains(t, out, "grid-template-columns: repeat(3, 1fr)")
	assert.Contains(t, out, "aspect-ratio: 70 / 105")
	assert.Contains(t, out, `href="https://letterboxd.com/someone/film/dune/"`)
	assert.Contains(t, out, `alt="Heat &amp; Dust"`)
	assert.Contains(t, out, `class="cell rewatch"`)
	assert.Contains(t, out, "3 rated film(s), 1 without a rating")
	assert.Contains(t, out, "June 1, 2024 at 3:04 PM")
	assert.NotContains(t, out, "ZgotmplZ")
}

func TestHTMLRenderEmpty(t *testing.T) {
	var buf bytes.Buffer
	r := &HTML{Title: "empty", Now: fixedNow}
	require.NoError(t, r.Render(&buf, grid.BuildLayout(nil, grid.LayoutOptions{})))

	out := buf.String()
	assert.NotContains(t, out, `class="row"`)
	assert.NotContains(t, out, `class="chart"`)
	assert.Contains(t, out, "0 rated film(s)")
}

func TestJSONRender(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, (&JSON{}).Render(&buf, sampleLayout()))

	var decoded grid.Layout
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, 3, decoded.Columns)
	assert.Len(t, decoded.Rows, 10)
	assert.Equal(t, grid.Bucket("10"), decoded.Rows[0].Label)
	assert.Equal(t, 1, decoded.Excluded)
}

func TestTextRender(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, (&Text{Title: "chart"}).Render(&buf, sampleLayout()))

	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "chart\n\n"))
	assert.Contains(t, out, " 5 | ## 2\n")
	assert.Contains(t, out, " 8 | #  1\n")
	assert.Contains(t, out, "10 |    0\n")
	assert.Contains(t, out, "3 rated, 1 excluded\n")
}

func TestForFormat(t *testing.T) {
	for format, contentType := range map[string]string{
		"html": "text/html",
		"json": "application/json",
		"text": "text/plain",
	} {
		r, err := ForFormat(format, Options{Title: "t"})
		require.NoError(t, err, format)
		assert.Equal(t, contentType, r.ContentType())
	}

	_, err := ForFormat("pdf", Options{})
	assert.Error(t, err)
}

func TestWriteFileReplacesOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "ratings.txt")
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte("stale"), 0644))

	require.NoError(t, WriteFile(path, &Text{}, sampleLayout()))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "stale")
	assert.Contains(t, string(data), "3 rated")

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp file left behind")
}

type failingRenderer struct{}

func (failingRenderer) Render(_ io.Writer, _ grid.Layout) error { return errors.New("render failed") }
func (failingRenderer) ContentType() string                    { return "text/plain" }

func TestWriteFileKeepsPreviousOutputOnError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ratings.html")
	require.NoError(t, os.WriteFile(path, []byte("previous"), 0644))

	err := WriteFile(path, failingRenderer{}, sampleLayout())
	require.Error(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "previous", string(data))
}
