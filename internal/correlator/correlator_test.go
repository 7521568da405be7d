package correlator

import (
	"sync"
	"testing"
	"time"

	"github.com/dev-console/harcapture/internal/adapter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOnRequestSentThenResponseJoins(t *testing.T) {
	c := New()
	c.OnRequestSent("r1", adapter.Request{Method: "GET", URL: "http://x/"}, time.Now(), 1.0, nil)
	pe := c.OnResponseReceived("r1", adapter.ResponseMeta{Status: 200}, nil, "document")
	require.NotNil(t, pe)
	assert.Equal(t, "GET", pe.Request.Method)
	assert.Equal(t, 200, pe.Response.Status)
	assert.Equal(t, 1, c.PendingCount())
}

func TestOnLoadingFinishedDetaches(t *testing.T) {
	c := New()
	c.OnRequestSent("r1", adapter.Request{Method: "GET"}, time.Now(), 0, nil)
	c.OnResponseReceived("r1", adapter.ResponseMeta{Status: 200}, nil, "")
	pe := c.OnLoadingFinished("r1", 512)
	require.NotNil(t, pe)
	assert.True(t, pe.Finished)
	assert.Equal(t, int64(512), pe.EncodedDataLength)
	assert.Equal(t, 0, c.PendingCount())
}

func TestOnLoadingFinishedUnknownIDReturnsNil(t *testing.T) {
	c := New()
	assert.Nil(t, c.OnLoadingFinished("missing", 0))
}

func TestResponseBeforeRequestIsToleratedAndJoined(t *testing.T) {
	c := New()
	c.OnResponseReceived("r1", adapter.ResponseMeta{Status: 304}, nil, "")
	c.OnRequestSent("r1", adapter.Request{Method: "GET"}, time.Now(), 0, nil)
	pe := c.OnLoadingFinished("r1", 0)
	require.NotNil(t, pe)
	assert.Equal(t, 304, pe.Response.Status)
	assert.Equal(t, "GET", pe.Request.Method)
}

func TestDrainReturnsAllAndClearsTable(t *testing.T) {
	c := New()
	c.OnRequestSent("a", adapter.Request{}, time.Now(), 0, nil)
	c.OnRequestSent("b", adapter.Request{}, time.Now(), 0, nil)
	out := c.Drain()
	assert.Len(t, out, 2)
	assert.Equal(t, 0, c.PendingCount())
}

func TestConcurrentRequestResponsePairsDoNotRace(t *testing.T) {
	c := New()
	var wg sync.WaitGroup
	for i := 0; i < 200; i++ {
		id := string(rune('a' + i%26))
		wg.Add(2)
		go func() {
			defer wg.Done()
			c.OnRequestSent(id, adapter.Request{Method: "GET"}, time.Now(), 0, nil)
		}()
		go func() {
			defer wg.Done()
			c.OnResponseReceived(id, adapter.ResponseMeta{Status: 200}, nil, "")
		}()
	}
	wg.Wait()
}
