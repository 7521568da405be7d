// pipeline.go — the event-to-entry pipeline, per §4.5 "Event-to-entry
// pipeline". Orchestrator implements adapter.Events directly: it is the
// sole subscriber the adapter talks to.
package orchestrator

import (
	"context"
	"time"

	"github.com/dev-console/harcapture/internal/adapter"
	"github.com/dev-console/harcapture/internal/bodypool"
	"github.com/dev-console/harcapture/internal/correlator"
	"github.com/dev-console/harcapture/internal/harmodel"
)

var _ adapter.Events = (*Orchestrator)(nil)

// OnRequestWillBeSent implements §4.5 pipeline steps 1-5 for the request
// half of an exchange.
func (o *Orchestrator) OnRequestWillBeSent(id string, req adapter.Request, wallTime time.Time, monotonicTs float64, redirect *adapter.RedirectResponse) {
	if redirect != nil {
		if prior := o.corr.TerminateRedirect(id); prior != nil {
			entry := buildRedirectEntry(prior, redirect)
			o.deliverEntry(entry)
		}
	}

	if !urlAllowed(req.URL, o.opts.UrlIncludePatterns, o.opts.UrlExcludePatterns) {
		o.stats.incExcluded()
		return
	}

	o.stats.incRequests()
	o.corr.OnRequestSent(id, req, wallTime, monotonicTs, redirect)
}

// OnResponseReceived attaches response metadata to the pending exchange.
// Completion happens at OnLoadingFinished/OnLoadingFailed — ResponseReceived
// in CDP carries only headers, not the terminal loaded/failed signal (see
// DESIGN.md's resolution of this ambiguity).
func (o *Orchestrator) OnResponseReceived(id string, resp adapter.ResponseMeta, timing *adapter.ResourceTiming, resourceType adapter.ResourceType) {
	o.stats.incResponses()
	o.corr.OnResponseReceived(id, resp, timing, resourceType)
}

// OnLoadingFinished completes and delivers the exchange for id.
func (o *Orchestrator) OnLoadingFinished(id string, encodedDataLength int64) {
	pe := o.corr.OnLoadingFinished(id, encodedDataLength)
	if pe == nil {
		o.stats.incCorrelationMiss()
		return
	}
	o.completeExchange(pe)
}

// OnLoadingFailed drops the pending exchange for id.
func (o *Orchestrator) OnLoadingFailed(id string, reason string) {
	pe := o.corr.OnLoadingFailed(id, reason)
	if pe == nil {
		o.stats.incCorrelationMiss()
		return
	}
	o.stats.incFailed()
}

func (o *Orchestrator) completeExchange(pe *correlator.PendingExchange) {
	if pe.Response == nil {
		// LoadingFinished without a prior ResponseReceived: nothing to
		// build an entry from. Count and drop.
		o.stats.incCorrelationMiss()
		return
	}

	harReq := buildRequest(pe.Request, o.redactor)
	harResp := buildResponse(*pe.Response, o.redactor)
	timings := mapTiming(pe.Timing)

	entry := &harmodel.Entry{
		StartedDateTime: formatWallTime(pe.WallTime),
		Time:            entryTotalMillis(timings),
		Request:         harReq,
		Response:        harResp,
		Cache:           &harmodel.Cache{},
		Timings:         &timings,
		ResourceType:    string(pe.ResourceType),
	}

	if shouldRetrieveBody(o.opts, pe.Response.Status, pe.Response.MimeType) {
		o.enqueueBodyFetch(pe.RequestID, entry)
		return
	}
	o.deliverEntry(entry)
}

func (o *Orchestrator) enqueueBodyFetch(requestID string, entry *harmodel.Entry) {
	o.bodyInFlight.Add(1)
	o.pool.Submit(o.bgCtx(), requestID, func(r bodypool.Result) {
		defer o.bodyInFlight.Done()
		if r.Err == nil {
			applyBody(entry, r.Text, r.IsBase64, o.opts.MaxResponseBodySize)
		}
		o.deliverEntry(entry)
	})
}

func applyBody(entry *harmodel.Entry, text string, isBase64 bool, maxSize int64) {
	size := int64(len(text))
	truncated := text
	if maxSize > 0 && int64(len(text)) > maxSize {
		truncated = text[:maxSize]
		size = maxSize
	}
	entry.Response.Content.Text = truncated
	entry.Response.Content.Size = size
	if isBase64 {
		entry.Response.Content.Encoding = "base64"
	}
	entry.Response.BodySize = size
	entry.ResponseBodySize = size
}

// deliverEntry applies the paused-drop rule, stamps the current page ref,
// and hands the entry to the sink.
func (o *Orchestrator) deliverEntry(entry *harmodel.Entry) {
	if o.lc.isPaused() {
		o.stats.incPausedDrop()
		return
	}
	entry.PageRef = o.pages.currentRef()
	o.sink.AddEntry(entry)
	o.stats.incEmitted()
	if err := o.sink.Commit(); err != nil {
		o.logger.Error().Err(err).Msg("sink commit failed")
	}
}

func (o *Orchestrator) bgCtx() context.Context {
	return context.Background()
}

// --- WebSocket events ---

func (o *Orchestrator) OnWebSocketCreated(id string, url string) {
	o.wsAcc.OnCreated(id, url, time.Now(), 0)
}

func (o *Orchestrator) OnWebSocketWillSendHandshakeRequest(id string, headers []adapter.Header, wallTime time.Time, monotonicTs float64) {
	o.wsAcc.OnHandshakeRequest(id, headers, wallTime, monotonicTs)
}

func (o *Orchestrator) OnWebSocketHandshakeResponseReceived(id string, status int, headers []adapter.Header) {
	o.wsAcc.OnHandshakeResponse(id, status, headers)
}

func (o *Orchestrator) OnWebSocketFrameSent(id string, monotonicTs float64, opcode int, payload string) {
	payload = o.redactWSPayload(payload)
	o.wsAcc.AddFrame(id, "send", monotonicTs, opcode, payload)
}

func (o *Orchestrator) OnWebSocketFrameReceived(id string, monotonicTs float64, opcode int, payload string) {
	payload = o.redactWSPayload(payload)
	o.wsAcc.AddFrame(id, "receive", monotonicTs, opcode, payload)
}

func (o *Orchestrator) redactWSPayload(payload string) string {
	if o.redactor == nil {
		return payload
	}
	return o.redactor.RedactWSPayload(o.bgCtx(), payload)
}

func (o *Orchestrator) OnWebSocketClosed(id string, monotonicTs float64) {
	o.wsAcc.Close(id, monotonicTs)
	if entry, ok := o.wsAcc.Flush(id); ok {
		o.deliverEntry(entry)
	}
}

// --- Page lifecycle (no entry emission; reserved for PageTimings
// enrichment by a future page.go extension) ---

func (o *Orchestrator) OnDOMContentEventFired(monotonicTs float64) {}
func (o *Orchestrator) OnLoadEventFired(monotonicTs float64)       {}
