package harbuilder

import (
	"testing"

	"github.com/dev-console/harcapture/internal/harmodel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddEntryThenGetHarReflectsIt(t *testing.T) {
	b := New("harcapture", "0.1.0", "Chrome", "120.0")
	b.AddEntry(&harmodel.Entry{StartedDateTime: "2026-01-01T00:00:00.000Z", Request: &harmodel.Request{Method: "GET", URL: "http://x/"}})

	h, err := b.GetHar()
	require.NoError(t, err)
	require.Len(t, h.Log.Entries, 1)
	assert.Equal(t, "GET", h.Log.Entries[0].Request.Method)
}

func TestGetHarReturnsIndependentObjectGraph(t *testing.T) {
	b := New("harcapture", "0.1.0", "Chrome", "120.0")
	b.AddEntry(&harmodel.Entry{Request: &harmodel.Request{Method: "GET"}})

	h1, err := b.GetHar()
	require.NoError(t, err)
	h1.Log.Entries[0].Request.Method = "MUTATED"

	h2, err := b.GetHar()
	require.NoError(t, err)
	assert.Equal(t, "GET", h2.Log.Entries[0].Request.Method)
}

func TestAddEntriesBatchAndEntryCount(t *testing.T) {
	b := New("harcapture", "0.1.0", "Chrome", "120.0")
	b.AddEntries([]*harmodel.Entry{{}, {}, {}})
	assert.Equal(t, 3, b.EntryCount())
}

func TestSetCommentSurvivesClone(t *testing.T) {
	b := New("harcapture", "0.1.0", "Chrome", "120.0")
	b.SetComment("summary: 3 requests, 1 redacted")
	h, err := b.GetHar()
	require.NoError(t, err)
	assert.Equal(t, "summary: 3 requests, 1 redacted", h.Log.Comment)
}
