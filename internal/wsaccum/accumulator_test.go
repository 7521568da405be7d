package wsaccum

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFlushSynthesizesSwitchingProtocolsEntry(t *testing.T) {
	a := New(10)
	now := time.Now()
	a.OnCreated("c1", "ws://example/socket", now, 100.0)
	a.AddFrame("c1", "send", 100.1, 1, "hello")
	a.AddFrame("c1", "receive", 100.2, 1, "world")
	a.Close("c1", 100.3)

	entry, ok := a.Flush("c1")
	require.True(t, ok)
	assert.Equal(t, 101, entry.Response.Status)
	assert.Equal(t, "ws://example/socket", entry.Request.URL)
	assert.Len(t, entry.WebSocketMessages, 2)
	assert.Equal(t, "send", entry.WebSocketMessages[0].Type)
	assert.Equal(t, "receive", entry.WebSocketMessages[1].Type)
}

func TestFlushIsIdempotent(t *testing.T) {
	a := New(10)
	a.OnCreated("c1", "ws://x", time.Now(), 1)
	_, ok := a.Flush("c1")
	require.True(t, ok)
	_, ok = a.Flush("c1")
	assert.False(t, ok)
}

func TestAddFrameEvictsOldestAtCapacity(t *testing.T) {
	a := New(2)
	a.OnCreated("c1", "ws://x", time.Now(), 0)
	a.AddFrame("c1", "send", 1, 1, "one")
	a.AddFrame("c1", "send", 2, 1, "two")
	a.AddFrame("c1", "send", 3, 1, "three")

	entry, ok := a.Flush("c1")
	require.True(t, ok)
	require.Len(t, entry.WebSocketMessages, 2)
	assert.Equal(t, "two", entry.WebSocketMessages[0].Data)
	assert.Equal(t, "three", entry.WebSocketMessages[1].Data)
	assert.Contains(t, entry.Comment, "evicted")
}

func TestFlushAllDrainsEveryOpenConnection(t *testing.T) {
	a := New(10)
	a.OnCreated("c1", "ws://a", time.Now(), 0)
	a.OnCreated("c2", "ws://b", time.Now(), 0)
	entries := a.FlushAll()
	assert.Len(t, entries, 2)
	assert.Equal(t, 0, a.ActiveCount())
}
