package streamwriter

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/dev-console/harcapture/internal/harmodel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFlushProducesValidHARAtEveryStep(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.har")
	w := New(path, "harcapture", "0.1.0", "Chrome", "120.0", 0)

	require.NoError(t, w.Flush())
	h, err := harmodel.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "1.2", h.Log.Version)
	assert.Len(t, h.Log.Entries, 0)

	w.AddEntry(&harmodel.Entry{Request: &harmodel.Request{Method: "GET", URL: "http://x/"}})
	require.NoError(t, w.Flush())
	h, err = harmodel.ReadFile(path)
	require.NoError(t, err)
	require.Len(t, h.Log.Entries, 1)
	assert.Equal(t, "GET", h.Log.Entries[0].Request.Method)
}

func TestCompleteWritesAndClosesWriter(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.har")
	w := New(path, "harcapture", "0.1.0", "", "", 0)
	w.AddEntry(&harmodel.Entry{Request: &harmodel.Request{Method: "POST"}})
	require.NoError(t, w.Complete())

	_, err := os.Stat(path)
	require.NoError(t, err)

	err = w.Flush()
	assert.Error(t, err)
}

func TestGzipSuffixProducesGzippedFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.har.gz")
	w := New(path, "harcapture", "0.1.0", "", "", 0)
	w.AddEntry(&harmodel.Entry{Request: &harmodel.Request{Method: "GET"}})
	require.NoError(t, w.Complete())

	h, err := harmodel.ReadFile(path)
	require.NoError(t, err)
	require.Len(t, h.Log.Entries, 1)
}

func TestFlushTruncatesWhenOverSizeLimit(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.har")
	w := New(path, "harcapture", "0.1.0", "", "", 2000)
	for i := 0; i < 50; i++ {
		w.AddEntry(&harmodel.Entry{Request: &harmodel.Request{Method: "GET", URL: "http://example.com/some/long/path/to/pad/out/the/entry/size"}})
	}
	require.NoError(t, w.Flush())
	assert.True(t, w.Truncated())

	h, err := harmodel.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, h.Log.Comment, "truncated")
	assert.Less(t, len(h.Log.Entries), 50)
}
