package orchestrator

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dev-console/harcapture/internal/adapter"
)

type fakePoller struct{}

func (fakePoller) PollEntries(ctx context.Context) ([]adapter.PerformanceLogEntry, error) {
	return nil, nil
}

type fakeDriver struct{}

func (fakeDriver) CDPContext() (context.Context, bool)  { return nil, false }
func (fakeDriver) LogPoller() (adapter.LogPoller, bool) { return fakePoller{}, true }

func startedOrchestrator(t *testing.T, opts CaptureOptions) *Orchestrator {
	t.Helper()
	opts.ForceSeleniumNetworkApi = true
	o, err := New(opts)
	require.NoError(t, err)
	require.NoError(t, o.Start(context.Background(), fakeDriver{}))
	return o
}

func TestStartWithForceSeleniumSelectsFallbackAdapter(t *testing.T) {
	o := startedOrchestrator(t, DefaultOptions())
	require.Equal(t, StateCapturing, o.lc.current())
	require.False(t, o.ad.SupportsWebSockets())
}

func TestStartTwiceFails(t *testing.T) {
	o := startedOrchestrator(t, DefaultOptions())
	err := o.Start(context.Background(), fakeDriver{})
	require.ErrorIs(t, err, ErrCaptureAlreadyStarted)
}

func TestPauseResumeIdempotent(t *testing.T) {
	o := startedOrchestrator(t, DefaultOptions())
	require.NoError(t, o.Pause())
	require.NoError(t, o.Pause())
	require.True(t, o.lc.isPaused())
	require.NoError(t, o.Resume())
	require.NoError(t, o.Resume())
	require.False(t, o.lc.isPaused())
}

func TestDisposeIdempotentAndImpliesStop(t *testing.T) {
	o := startedOrchestrator(t, DefaultOptions())
	require.NoError(t, o.Dispose(context.Background()))
	require.NoError(t, o.Dispose(context.Background()))
	require.Equal(t, StateDisposed, o.lc.current())
}

func TestBasicExchangeProducesEntryWithConsistentTiming(t *testing.T) {
	o := startedOrchestrator(t, DefaultOptions())

	wallTime := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	req := adapter.Request{Method: "GET", URL: "https://example.com/", HTTPVersion: "HTTP/1.1"}
	o.OnRequestWillBeSent("req1", req, wallTime, 0, nil)

	timing := &adapter.ResourceTiming{
		RequestTime: 1000.0,
		DNSStart: 0, DNSEnd: 10,
		ConnectStart: 10, ConnectEnd: 30,
		SSLStart: 15, SSLEnd: 30,
		SendStart: 30, SendEnd: 31,
		ReceiveHeadersEnd: 50,
		ResponseReceivedTime: 1000.060,
	}
	resp := adapter.ResponseMeta{Status: 200, StatusText: "OK", HTTPVersion: "HTTP/1.1", MimeType: "text/html"}
	o.OnResponseReceived("req1", resp, timing, "document")
	o.OnLoadingFinished("req1", 512)

	har, err := o.Stop(context.Background())
	require.NoError(t, err)
	require.Len(t, har.Log.Entries, 1)

	entry := har.Log.Entries[0]
	require.Equal(t, float64(60), entry.Time)
	require.Equal(t, float64(15), entry.Timings.SSL)
	require.Equal(t, float64(20), entry.Timings.Connect)
	require.Equal(t, float64(10), entry.Timings.DNS)
	require.Equal(t, float64(0), entry.Timings.Blocked)

	stats := o.Stats()
	require.Equal(t, int64(1), stats.RequestsSeen)
	require.Equal(t, int64(1), stats.EntriesEmitted)
}

func TestExcludedURLIsNotRegistered(t *testing.T) {
	opts := DefaultOptions()
	opts.UrlExcludePatterns = []string{"**/*.png"}
	o := startedOrchestrator(t, opts)

	o.OnRequestWillBeSent("req1", adapter.Request{Method: "GET", URL: "https://example.com/logo.png"}, time.Now(), 0, nil)
	require.Equal(t, int64(1), o.Stats().DroppedExcluded)
	require.Equal(t, 0, o.corr.PendingCount())
}

func TestPausedEntriesAreDroppedNotQueued(t *testing.T) {
	o := startedOrchestrator(t, DefaultOptions())
	require.NoError(t, o.Pause())

	o.OnRequestWillBeSent("req1", adapter.Request{Method: "GET", URL: "https://example.com/"}, time.Now(), 0, nil)
	resp := adapter.ResponseMeta{Status: 200, MimeType: "text/plain"}
	o.OnResponseReceived("req1", resp, nil, "document")
	o.OnLoadingFinished("req1", 0)

	har, err := o.Stop(context.Background())
	require.NoError(t, err)
	require.Empty(t, har.Log.Entries)
	require.Equal(t, int64(1), o.Stats().DroppedPaused)
}

func TestRedirectTerminatesPriorExchangeAsSeparateEntry(t *testing.T) {
	o := startedOrchestrator(t, DefaultOptions())

	o.OnRequestWillBeSent("req1", adapter.Request{Method: "GET", URL: "https://example.com/old"}, time.Now(), 0, nil)
	resp := adapter.ResponseMeta{Status: 302, MimeType: ""}
	o.OnResponseReceived("req1", resp, nil, "document")

	redirect := &adapter.RedirectResponse{Status: 302, StatusText: "Found", Location: "https://example.com/new"}
	o.OnRequestWillBeSent("req1", adapter.Request{Method: "GET", URL: "https://example.com/new"}, time.Now(), 0, redirect)

	resp2 := adapter.ResponseMeta{Status: 200, MimeType: "text/plain"}
	o.OnResponseReceived("req1", resp2, nil, "document")
	o.OnLoadingFinished("req1", 0)

	har, err := o.Stop(context.Background())
	require.NoError(t, err)
	require.Len(t, har.Log.Entries, 2)
	require.Equal(t, 302, har.Log.Entries[0].Response.Status)
	require.Equal(t, "https://example.com/new", har.Log.Entries[0].Response.RedirectURL)
	require.Equal(t, 200, har.Log.Entries[1].Response.Status)
}

func TestWebSocketCloseFlushesSyntheticEntry(t *testing.T) {
	o := startedOrchestrator(t, DefaultOptions())

	o.OnWebSocketCreated("ws1", "wss://example.com/socket")
	o.OnWebSocketWillSendHandshakeRequest("ws1", nil, time.Now(), 0)
	o.OnWebSocketHandshakeResponseReceived("ws1", 101, nil)
	o.OnWebSocketFrameSent("ws1", 1, 1, "hello")
	o.OnWebSocketFrameReceived("ws1", 2, 1, "world")
	o.OnWebSocketClosed("ws1", 3)

	har, err := o.Stop(context.Background())
	require.NoError(t, err)
	require.Len(t, har.Log.Entries, 1)
	require.Equal(t, "websocket", har.Log.Entries[0].ResourceType)
	require.Len(t, har.Log.Entries[0].WebSocketMessages, 2)
}

func TestStopAndSaveWritesFile(t *testing.T) {
	opts := DefaultOptions()
	opts.OutputFilePath = t.TempDir() + "/out.har"
	o := startedOrchestrator(t, opts)

	o.OnRequestWillBeSent("req1", adapter.Request{Method: "GET", URL: "https://example.com/"}, time.Now(), 0, nil)
	o.OnResponseReceived("req1", adapter.ResponseMeta{Status: 200, MimeType: "text/plain"}, nil, "document")
	o.OnLoadingFinished("req1", 0)

	require.NoError(t, o.StopAndSave(context.Background(), opts.OutputFilePath))
}
