// rawcdp.go — raw JSON-over-WebSocket CDP client, used when Negotiate
// reports UseRawWire (§4.1: "the adapter may fall back to a raw
// JSON-over-WebSocket path that speaks the CDP wire format directly,
// parsing events by their DevTools domain name").
//
// Grounded on the method/params envelope and id-correlated result channel
// pattern in other_examples' google-streaming_hdp devtools.go, rebuilt on
// gobwas/ws instead of gorilla/websocket — gobwas/ws is the websocket
// library chromedp itself depends on transitively, so the raw fallback
// path reuses a dependency the primary path already pulls in rather than
// adding a second competing websocket stack.
package adapter

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gobwas/ws"
	"github.com/gobwas/ws/wsutil"
)

type rawEnvelope struct {
	ID     int             `json:"id,omitempty"`
	Method string          `json:"method,omitempty"`
	Params json.RawMessage `json:"params,omitempty"`
	Result json.RawMessage `json:"result,omitempty"`
	Error  *rawCDPError    `json:"error,omitempty"`
}

type rawCDPError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// rawCDPClient is a minimal CDP command/event client speaking the wire
// protocol directly over a websocket connection, for browsers/sessions
// where no compile-time-known cdproto version negotiated successfully.
type rawCDPClient struct {
	conn   *wsConn
	nextID int64

	mu      sync.Mutex
	pending map[int]chan rawEnvelope

	events Events

	closeOnce sync.Once
	done      chan struct{}
}

// wsConn is a tiny seam over gobwas/ws so tests can substitute a fake.
type wsConn struct {
	writeMu sync.Mutex
	rw      wsReadWriter
}

type wsReadWriter interface {
	WriteFrame(f ws.Frame) error
	ReadFrame() (ws.Frame, error)
	Close() error
}

func newRawCDPClient(rw wsReadWriter, events Events) *rawCDPClient {
	return &rawCDPClient{
		conn:    &wsConn{rw: rw},
		pending: make(map[int]chan rawEnvelope),
		events:  events,
		done:    make(chan struct{}),
	}
}

// Run starts the read loop. It blocks until the connection closes or ctx
// is cancelled; callers run it in its own goroutine.
func (c *rawCDPClient) Run(ctx context.Context) {
	defer close(c.done)
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}
		frame, err := c.conn.rw.ReadFrame()
		if err != nil {
			return
		}
		if frame.Header.OpCode != ws.OpText {
			continue
		}
		payload := frame.Payload
		if frame.Header.Masked {
			ws.Cipher(payload, frame.Header.Mask, 0)
		}
		var env rawEnvelope
		if err := json.Unmarshal(payload, &env); err != nil {
			continue // malformed frame: dropped, not fatal (§5 "never throw into dispatch loop")
		}
		c.dispatch(env)
	}
}

func (c *rawCDPClient) dispatch(env rawEnvelope) {
	if env.ID != 0 {
		c.mu.Lock()
		ch, ok := c.pending[env.ID]
		delete(c.pending, env.ID)
		c.mu.Unlock()
		if ok {
			ch <- env
		}
		return
	}
	if env.Method == "" {
		return
	}
	dispatchRawEvent(c.events, env.Method, env.Params)
}

// Call sends a CDP command and waits for its matching result, or ctx
// cancellation.
func (c *rawCDPClient) Call(ctx context.Context, method string, params interface{}) (json.RawMessage, error) {
	id := int(atomic.AddInt64(&c.nextID, 1))
	var paramsRaw json.RawMessage
	if params != nil {
		raw, err := json.Marshal(params)
		if err != nil {
			return nil, fmt.Errorf("rawcdp: marshal params: %w", err)
		}
		paramsRaw = raw
	}
	data, err := json.Marshal(rawEnvelope{ID: id, Method: method, Params: paramsRaw})
	if err != nil {
		return nil, fmt.Errorf("rawcdp: marshal envelope: %w", err)
	}

	replyCh := make(chan rawEnvelope, 1)
	c.mu.Lock()
	c.pending[id] = replyCh
	c.mu.Unlock()

	c.conn.writeMu.Lock()
	writeErr := wsutil.WriteClientText(rawByteWriter{c.conn.rw}, data)
	c.conn.writeMu.Unlock()
	if writeErr != nil {
		c.mu.Lock()
		delete(c.pending, id)
		c.mu.Unlock()
		return nil, fmt.Errorf("rawcdp: write: %w", writeErr)
	}

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case env := <-replyCh:
		if env.Error != nil {
			return nil, fmt.Errorf("rawcdp: %s: %d %s", method, env.Error.Code, env.Error.Message)
		}
		return env.Result, nil
	case <-time.After(30 * time.Second):
		return nil, fmt.Errorf("rawcdp: %s: timed out waiting for reply", method)
	}
}

// Close shuts down the read loop and underlying connection. Idempotent.
func (c *rawCDPClient) Close() error {
	var err error
	c.closeOnce.Do(func() {
		err = c.conn.rw.Close()
	})
	return err
}

// rawByteWriter adapts our Close-capable read/writer to the plain
// io.Writer wsutil.WriteClientText expects.
type rawByteWriter struct{ rw wsReadWriter }

func (w rawByteWriter) Write(p []byte) (int, error) {
	if err := w.rw.WriteFrame(ws.NewTextFrame(p)); err != nil {
		return 0, err
	}
	return len(p), nil
}

// dispatchRawEvent parses a raw CDP event by its "Domain.eventName" method
// string and invokes the matching Events callback, reimplementing in the
// raw-wire path exactly the event set the primary (cdproto) adapter
// produces from typed events.
func dispatchRawEvent(ev Events, method string, params json.RawMessage) {
	switch method {
	case "Network.requestWillBeSent":
		var p struct {
			RequestID string  `json:"requestId"`
			Timestamp float64 `json:"timestamp"`
			WallTime  float64 `json:"wallTime"`
			Type      string  `json:"type"`
			Request   struct {
				Method      string            `json:"method"`
				URL         string            `json:"url"`
				Headers     map[string]string `json:"headers"`
				PostData    string            `json:"postData"`
				HasPostData bool              `json:"hasPostData"`
			} `json:"request"`
			RedirectResponse *struct {
				Status     int               `json:"status"`
				StatusText string            `json:"statusText"`
				Headers    map[string]string `json:"headers"`
				URL        string            `json:"url"`
			} `json:"redirectResponse"`
		}
		if json.Unmarshal(params, &p) != nil {
			return
		}
		req := Request{Method: p.Request.Method, URL: p.Request.URL, HTTPVersion: "HTTP/1.1",
			Headers: headersFromMap(p.Request.Headers), PostData: p.Request.PostData, HasPostData: p.Request.HasPostData}
		var redirect *RedirectResponse
		if p.RedirectResponse != nil {
			redirect = &RedirectResponse{
				Status: p.RedirectResponse.Status, StatusText: p.RedirectResponse.StatusText,
				Headers: headersFromMap(p.RedirectResponse.Headers),
			}
		}
		ev.OnRequestWillBeSent(p.RequestID, req, unixSeconds(p.WallTime), p.Timestamp, redirect)

	case "Network.responseReceived":
		var p struct {
			RequestID string  `json:"requestId"`
			Type      string  `json:"type"`
			Response  struct {
				Status      int               `json:"status"`
				StatusText  string            `json:"statusText"`
				Headers     map[string]string `json:"headers"`
				MimeType    string            `json:"mimeType"`
				RemoteIPAddress string        `json:"remoteIPAddress"`
				FromDiskCache   bool          `json:"fromDiskCache"`
				Timing      *struct {
					RequestTime          float64 `json:"requestTime"`
					DNSStart             float64 `json:"dnsStart"`
					DNSEnd               float64 `json:"dnsEnd"`
					ConnectStart         float64 `json:"connectStart"`
					ConnectEnd           float64 `json:"connectEnd"`
					SSLStart             float64 `json:"sslStart"`
					SSLEnd               float64 `json:"sslEnd"`
					SendStart            float64 `json:"sendStart"`
					SendEnd              float64 `json:"sendEnd"`
					ReceiveHeadersEnd    float64 `json:"receiveHeadersEnd"`
				} `json:"timing"`
			} `json:"response"`
		}
		if json.Unmarshal(params, &p) != nil {
			return
		}
		resp := ResponseMeta{
			Status: p.Response.Status, StatusText: p.Response.StatusText, HTTPVersion: "HTTP/1.1",
			Headers: headersFromMap(p.Response.Headers), MimeType: p.Response.MimeType,
			RemoteIP: p.Response.RemoteIPAddress, FromCache: p.Response.FromDiskCache,
		}
		var timing *ResourceTiming
		if t := p.Response.Timing; t != nil {
			timing = &ResourceTiming{
				RequestTime: t.RequestTime, DNSStart: t.DNSStart, DNSEnd: t.DNSEnd,
				ConnectStart: t.ConnectStart, ConnectEnd: t.ConnectEnd,
				SSLStart: t.SSLStart, SSLEnd: t.SSLEnd,
				SendStart: t.SendStart, SendEnd: t.SendEnd,
				ReceiveHeadersEnd: t.ReceiveHeadersEnd,
			}
		}
		ev.OnResponseReceived(p.RequestID, resp, timing, ResourceType(p.Type))

	case "Network.loadingFinished":
		var p struct {
			RequestID         string  `json:"requestId"`
			EncodedDataLength float64 `json:"encodedDataLength"`
		}
		if json.Unmarshal(params, &p) != nil {
			return
		}
		ev.OnLoadingFinished(p.RequestID, int64(p.EncodedDataLength))

	case "Network.loadingFailed":
		var p struct {
			RequestID string `json:"requestId"`
			ErrorText string `json:"errorText"`
		}
		if json.Unmarshal(params, &p) != nil {
			return
		}
		ev.OnLoadingFailed(p.RequestID, p.ErrorText)

	case "Network.webSocketCreated":
		var p struct {
			RequestID string `json:"requestId"`
			URL       string `json:"url"`
		}
		if json.Unmarshal(params, &p) != nil {
			return
		}
		ev.OnWebSocketCreated(p.RequestID, p.URL)

	case "Network.webSocketWillSendHandshakeRequest":
		var p struct {
			RequestID string  `json:"requestId"`
			Timestamp float64 `json:"timestamp"`
			WallTime  float64 `json:"wallTime"`
			Request   struct {
				Headers map[string]string `json:"headers"`
			} `json:"request"`
		}
		if json.Unmarshal(params, &p) != nil {
			return
		}
		ev.OnWebSocketWillSendHandshakeRequest(p.RequestID, headersFromMap(p.Request.Headers), unixSeconds(p.WallTime), p.Timestamp)

	case "Network.webSocketHandshakeResponseReceived":
		var p struct {
			RequestID string `json:"requestId"`
			Response  struct {
				Status  int               `json:"status"`
				Headers map[string]string `json:"headers"`
			} `json:"response"`
		}
		if json.Unmarshal(params, &p) != nil {
			return
		}
		ev.OnWebSocketHandshakeResponseReceived(p.RequestID, p.Response.Status, headersFromMap(p.Response.Headers))

	case "Network.webSocketFrameSent", "Network.webSocketFrameReceived":
		var p struct {
			RequestID string  `json:"requestId"`
			Timestamp float64 `json:"timestamp"`
			Response  struct {
				Opcode      float64 `json:"opcode"`
				PayloadData string  `json:"payloadData"`
			} `json:"response"`
		}
		if json.Unmarshal(params, &p) != nil {
			return
		}
		if method == "Network.webSocketFrameSent" {
			ev.OnWebSocketFrameSent(p.RequestID, p.Timestamp, int(p.Response.Opcode), p.Response.PayloadData)
		} else {
			ev.OnWebSocketFrameReceived(p.RequestID, p.Timestamp, int(p.Response.Opcode), p.Response.PayloadData)
		}

	case "Network.webSocketClosed":
		var p struct {
			RequestID string  `json:"requestId"`
			Timestamp float64 `json:"timestamp"`
		}
		if json.Unmarshal(params, &p) != nil {
			return
		}
		ev.OnWebSocketClosed(p.RequestID, p.Timestamp)

	case "Page.domContentEventFired":
		var p struct {
			Timestamp float64 `json:"timestamp"`
		}
		if json.Unmarshal(params, &p) != nil {
			return
		}
		ev.OnDOMContentEventFired(p.Timestamp)

	case "Page.loadEventFired":
		var p struct {
			Timestamp float64 `json:"timestamp"`
		}
		if json.Unmarshal(params, &p) != nil {
			return
		}
		ev.OnLoadEventFired(p.Timestamp)
	}
}

func headersFromMap(m map[string]string) []Header {
	out := make([]Header, 0, len(m))
	for k, v := range m {
		out = append(out, Header{Name: k, Value: v})
	}
	return out
}

func unixSeconds(s float64) time.Time {
	return time.Unix(0, int64(s*float64(time.Second)))
}
