// cdpadapter.go — primary browser adapter, driving an existing browser tab
// over the Chrome DevTools Protocol via chromedp/cdproto. Grounded in
// other_examples' tomasbasham-har-capture capture.go (chromedp.ListenTarget
// dispatch over a type switch) and tomasbasham-cdp main.go (minimal
// attach-to-existing-session usage), both of which pin exactly
// chromedp+cdproto as their only domain dependency.
package adapter

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
)

// CDPAdapter is the primary Adapter implementation. It does not own the
// chromedp context it is given — per §5 "Shared-resource policy", the
// DevTools session is driver-cached and must never be closed here.
type CDPAdapter struct {
	ctx     context.Context
	version NegotiatedVersion

	events    Events
	listening bool
}

// NewCDPAdapter constructs a primary adapter over an existing chromedp
// context (tabCtx), negotiating a protocol version from the browser's
// reported identity. Construction never talks to the network domain —
// that happens in EnableNetwork, per §4.1's subscribe-before-enable
// contract.
func NewCDPAdapter(ctx context.Context) (*CDPAdapter, error) {
	var product, protocolVersion string
	err := chromedp.Run(ctx, chromedp.ActionFunc(func(ctx context.Context) error {
		v, pv, _, _, _, err := browserVersion(ctx)
		product, protocolVersion = v, pv
		return err
	}))
	if err != nil {
		return nil, fmt.Errorf("adapter: negotiate version: %w", err)
	}
	return &CDPAdapter{
		ctx:     ctx,
		version: Negotiate(product, protocolVersion),
	}, nil
}

// browserVersion wraps the CDP Browser.getVersion command used during
// construction-time version negotiation.
func browserVersion(ctx context.Context) (product, protocolVersion, revision, userAgent, jsVersion string, err error) {
	return chromedp.FromContext(ctx).Browser.GetVersion(ctx)
}

func (a *CDPAdapter) Version() NegotiatedVersion { return a.version }

func (a *CDPAdapter) Subscribe(ev Events) {
	a.events = ev
	chromedp.ListenTarget(a.ctx, func(untyped interface{}) {
		// Never let a malformed/unexpected event crash the dispatch
		// loop (§5): recover and drop.
		defer func() { _ = recover() }()
		a.dispatch(untyped)
	})
}

func (a *CDPAdapter) dispatch(untyped interface{}) {
	ev := a.events
	if ev == nil {
		return
	}
	switch e := untyped.(type) {
	case *network.EventRequestWillBeSent:
		req := Request{
			Method:      e.Request.Method,
			URL:         e.Request.URL,
			HTTPVersion: "HTTP/1.1",
			Headers:     headersFromCDP(e.Request.Headers),
			HasPostData: e.Request.HasPostData,
		}
		if e.Request.PostData != "" {
			req.PostData = e.Request.PostData
		}
		var redirect *RedirectResponse
		if e.RedirectResponse != nil {
			redirect = &RedirectResponse{
				Status:     int(e.RedirectResponse.Status),
				StatusText: e.RedirectResponse.StatusText,
				Headers:    headersFromCDP(e.RedirectResponse.Headers),
				Location:   headerValue(e.RedirectResponse.Headers, "location"),
			}
		}
		var wallTime time.Time
		var ts float64
		if e.WallTime != nil {
			wallTime = e.WallTime.Time()
		}
		if e.Timestamp != nil {
			ts = float64(*e.Timestamp)
		}
		ev.OnRequestWillBeSent(string(e.RequestID), req, wallTime, ts, redirect)

	case *network.EventResponseReceived:
		r := e.Response
		resp := ResponseMeta{
			Status: int(r.Status), StatusText: r.StatusText, HTTPVersion: r.Protocol,
			Headers: headersFromCDP(r.Headers), MimeType: r.MimeType,
			RemoteIP: r.RemoteIPAddress, FromCache: r.FromDiskCache,
		}
		var timing *ResourceTiming
		if r.Timing != nil {
			t := r.Timing
			timing = &ResourceTiming{
				RequestTime: t.RequestTime, DNSStart: t.DNSStart, DNSEnd: t.DNSEnd,
				ConnectStart: t.ConnectStart, ConnectEnd: t.ConnectEnd,
				SSLStart: t.SslStart, SSLEnd: t.SslEnd,
				SendStart: t.SendStart, SendEnd: t.SendEnd,
				ReceiveHeadersEnd: t.ReceiveHeadersEnd,
			}
		}
		ev.OnResponseReceived(string(e.RequestID), resp, timing, ResourceType(e.Type.String()))

	case *network.EventLoadingFinished:
		ev.OnLoadingFinished(string(e.RequestID), int64(e.EncodedDataLength))

	case *network.EventLoadingFailed:
		ev.OnLoadingFailed(string(e.RequestID), e.ErrorText)

	case *network.EventWebSocketCreated:
		ev.OnWebSocketCreated(string(e.RequestID), e.URL)

	case *network.EventWebSocketWillSendHandshakeRequest:
		var wallTime time.Time
		if e.WallTime != nil {
			wallTime = e.WallTime.Time()
		}
		var ts float64
		if e.Timestamp != nil {
			ts = float64(*e.Timestamp)
		}
		ev.OnWebSocketWillSendHandshakeRequest(string(e.RequestID), headersFromCDP(e.Request.Headers), wallTime, ts)

	case *network.EventWebSocketHandshakeResponseReceived:
		ev.OnWebSocketHandshakeResponseReceived(string(e.RequestID), int(e.Response.Status), headersFromCDP(e.Response.Headers))

	case *network.EventWebSocketFrameSent:
		var ts float64
		if e.Timestamp != nil {
			ts = float64(*e.Timestamp)
		}
		ev.OnWebSocketFrameSent(string(e.RequestID), ts, int(e.Response.Opcode), e.Response.PayloadData)

	case *network.EventWebSocketFrameReceived:
		var ts float64
		if e.Timestamp != nil {
			ts = float64(*e.Timestamp)
		}
		ev.OnWebSocketFrameReceived(string(e.RequestID), ts, int(e.Response.Opcode), e.Response.PayloadData)

	case *network.EventWebSocketClosed:
		var ts float64
		if e.Timestamp != nil {
			ts = float64(*e.Timestamp)
		}
		ev.OnWebSocketClosed(string(e.RequestID), ts)

	case *page.EventLifecycleEvent:
		var ts float64
		if e.Timestamp != nil {
			ts = float64(*e.Timestamp)
		}
		switch e.Name {
		case "DOMContentLoaded":
			ev.OnDOMContentEventFired(ts)
		case "load":
			ev.OnLoadEventFired(ts)
		}
	}
}

func (a *CDPAdapter) EnableNetwork(ctx context.Context) error {
	a.listening = true
	return chromedp.Run(ctx, network.Enable(), page.Enable())
}

func (a *CDPAdapter) DisableNetwork(ctx context.Context) error {
	if !a.listening {
		return nil
	}
	a.listening = false
	return chromedp.Run(ctx, network.Disable())
}

func (a *CDPAdapter) GetResponseBody(ctx context.Context, requestID string) (string, bool, error) {
	var text string
	var isBase64 bool
	err := chromedp.Run(ctx, chromedp.ActionFunc(func(ctx context.Context) error {
		body, base64Encoded, err := network.GetResponseBody(network.RequestID(requestID)).Do(ctx)
		if err != nil {
			return classifyBodyError(err)
		}
		text, isBase64 = body, base64Encoded
		return nil
	}))
	if err != nil {
		var be *BodyError
		if errors.As(err, &be) {
			return "", false, be
		}
		return "", false, &BodyError{Kind: BodyErrorOther, Err: err}
	}
	return text, isBase64, nil
}

// classifyBodyError maps CDP's untyped protocol errors onto the
// recoverable §4.1 kinds by matching known substrings in the error text —
// cdproto does not expose structured error codes for these cases.
func classifyBodyError(err error) error {
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "no resource with given identifier"):
		return &BodyError{Kind: BodyErrorNoSuchResource, Err: err}
	case strings.Contains(msg, "too large") || strings.Contains(msg, "size"):
		return &BodyError{Kind: BodyErrorSizeExceeded, Err: err}
	case strings.Contains(msg, "closed") || strings.Contains(msg, "detached"):
		return &BodyError{Kind: BodyErrorSessionClosed, Err: err}
	default:
		return &BodyError{Kind: BodyErrorOther, Err: err}
	}
}

func (a *CDPAdapter) SupportsWebSockets() bool { return true }

// Dispose unsubscribes handlers and disables the network domain, bounded
// by ctx. It never closes the chromedp context itself — that context (and
// the DevTools session behind it) is owned by the caller's driver.
func (a *CDPAdapter) Dispose(ctx context.Context) error {
	a.events = nil
	return a.DisableNetwork(ctx)
}

func headersFromCDP(h network.Headers) []Header {
	if h == nil {
		return nil
	}
	out := make([]Header, 0, len(h))
	for k, v := range h {
		out = append(out, Header{Name: k, Value: fmt.Sprintf("%v", v)})
	}
	return out
}

func headerValue(h network.Headers, name string) string {
	for k, v := range h {
		if strings.EqualFold(k, name) {
			return fmt.Sprintf("%v", v)
		}
	}
	return ""
}
