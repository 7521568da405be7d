// Purpose: Defines the uniform, version-independent network-event interface
// that both the primary (CDP) and fallback (automation-client) adapters
// implement, per spec §4.1. Nothing above this package ever imports
// chromedp or cdproto directly — only this package and its two concrete
// adapters do.
package adapter

import (
	"context"
	"time"
)

// ResourceType is a coarse classification of the request (document, xhr,
// fetch, script, websocket, ...). Adapters populate it from the browser's
// native resource-type string; the orchestrator uses it only for the
// `_resourceType` HAR extension field and for the scope/MIME gate.
type ResourceType string

// RequestHeaders/ResponseHeaders are case-preserving ordered header sets.
// A slice (not a map) is used so that duplicate header names — legal in
// HTTP — survive the round trip into a HAR Request/Response.
type Header struct {
	Name  string
	Value string
}

// Request is the adapter's version-independent view of an HTTP request.
type Request struct {
	Method      string
	URL         string
	HTTPVersion string
	Headers     []Header
	PostData    string
	HasPostData bool
}

// ResponseMeta is the adapter's version-independent view of an HTTP
// response header frame (the body, if any, arrives separately via
// GetResponseBody).
type ResponseMeta struct {
	Status      int
	StatusText  string
	HTTPVersion string
	Headers     []Header
	MimeType    string
	RemoteIP    string
	FromCache   bool
}

// ResourceTiming carries the raw CDP ResourceTiming fields the primary
// adapter is able to supply. All offsets are milliseconds relative to
// RequestTime (itself a wall-clock Unix-seconds anchor), exactly as CDP
// defines them; -1 means "not available". The fallback adapter never
// populates this — timings there are orchestrator-measured wall time only.
type ResourceTiming struct {
	RequestTime         float64 // wall-clock anchor, seconds since epoch
	DNSStart            float64
	DNSEnd              float64
	ConnectStart        float64
	ConnectEnd          float64
	SSLStart            float64
	SSLEnd              float64
	SendStart           float64
	SendEnd             float64
	ReceiveHeadersEnd   float64
	ResponseReceivedTime float64 // wall-clock anchor, seconds since epoch
}

// RedirectResponse is populated on RequestWillBeSent when the browser is
// reporting the terminal response of a redirected request, per §4.5
// "Redirects".
type RedirectResponse struct {
	Status     int
	StatusText string
	Headers    []Header
	Location   string
}

// WSFrame is a single WebSocket frame event.
type WSFrame struct {
	Direction   string // "send" or "receive"
	MonotonicTs float64
	Opcode      int
	Payload     string
}

// Events is the callback surface an adapter invokes. The orchestrator
// implements this interface (or a thin adjunct that does) and registers it
// with Subscribe before calling EnableNetwork, per §4.1's "events published
// before enabling may be dropped" contract.
type Events interface {
	OnRequestWillBeSent(id string, req Request, wallTime time.Time, monotonicTs float64, redirect *RedirectResponse)
	OnResponseReceived(id string, resp ResponseMeta, timing *ResourceTiming, resourceType ResourceType)
	OnLoadingFinished(id string, encodedDataLength int64)
	OnLoadingFailed(id string, reason string)

	OnWebSocketCreated(id string, url string)
	OnWebSocketWillSendHandshakeRequest(id string, headers []Header, wallTime time.Time, monotonicTs float64)
	OnWebSocketHandshakeResponseReceived(id string, status int, headers []Header)
	OnWebSocketFrameSent(id string, monotonicTs float64, opcode int, payload string)
	OnWebSocketFrameReceived(id string, monotonicTs float64, opcode int, payload string)
	OnWebSocketClosed(id string, monotonicTs float64)

	OnDOMContentEventFired(monotonicTs float64)
	OnLoadEventFired(monotonicTs float64)
}

// BodyErrorKind enumerates the recoverable GetResponseBody failure modes
// named in §4.1.
type BodyErrorKind int

const (
	BodyErrorNone BodyErrorKind = iota
	BodyErrorNoSuchResource
	BodyErrorSizeExceeded
	BodyErrorSessionClosed
	BodyErrorOther
)

// BodyError wraps a recoverable body-retrieval failure with its kind, so
// callers (the body pool) can decide whether to log at a different level
// without string-matching.
type BodyError struct {
	Kind BodyErrorKind
	Err  error
}

func (e *BodyError) Error() string { return e.Err.Error() }
func (e *BodyError) Unwrap() error { return e.Err }

// Adapter is the uniform interface over a browser's native network-event
// source, per §4.1. Implementations: cdpAdapter (primary) and
// fallbackAdapter (Selenium/automation-client network API).
type Adapter interface {
	// Subscribe registers the orchestrator's event sink. Must be called
	// before EnableNetwork.
	Subscribe(ev Events)

	// EnableNetwork turns on network event delivery. Must be called after
	// Subscribe.
	EnableNetwork(ctx context.Context) error

	// DisableNetwork turns off network event delivery. Bounded by the
	// caller's context; a timeout here is recoverable (§7).
	DisableNetwork(ctx context.Context) error

	// GetResponseBody fetches a response body by requestId. Returns
	// (text, isBase64, error); error is a *BodyError for recoverable
	// failures.
	GetResponseBody(ctx context.Context, requestID string) (text string, isBase64 bool, err error)

	// SupportsWebSockets reports whether this adapter emits WebSocket
	// events at all (the fallback adapter does not, per §4.1).
	SupportsWebSockets() bool

	// Dispose unsubscribes all handlers and, where applicable, disables
	// the network domain. Must not error on an already-closed session and
	// must never close the underlying DevTools session itself (§5
	// "Shared-resource policy") — that session is driver-owned.
	Dispose(ctx context.Context) error
}
