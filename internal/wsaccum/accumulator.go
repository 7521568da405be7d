// accumulator.go — per-connection WebSocket frame buffering and HAR
// synthesis. Grounded in the teacher's internal/capture/websocket.go ring
// buffer with LRU eviction: here the ring is per-connection rather than
// global, capped at MaxFramesPerConnection with oldest-first eviction
// exactly like evictWSByCount trims wsEvents, and a FramesDropped counter
// plays the role the teacher's wsTotalAdded-vs-len(wsEvents) delta plays —
// a monotonic record of what eviction discarded.
package wsaccum

import (
	"strconv"
	"sync"
	"time"

	"github.com/dev-console/harcapture/internal/adapter"
	"github.com/dev-console/harcapture/internal/harmodel"
)

// DefaultMaxFrames bounds per-connection buffering. A connection with more
// frames than this has its oldest frames evicted first; FramesDropped
// records how many were lost so the eventual HAR entry's comment can say
// so.
const DefaultMaxFrames = 1000

// connection holds one WebSocket's accumulated state between its Created
// event and its Closed event (or Stop, whichever comes first).
type connection struct {
	id          string
	url         string
	createdAt   time.Time
	wallAnchor  time.Time // wall-clock corresponding to MonotonicAnchor
	monotonicAnchor float64

	handshakeReqHeaders  []adapter.Header
	handshakeRespStatus  int
	handshakeRespHeaders []adapter.Header

	frames        []adapter.WSFrame
	framesDropped int64

	closed   bool
	closedAt float64
}

// Accumulator tracks every live WebSocket connection in a capture session
// and can synthesize a HAR entry (synthetic 101 Switching Protocols
// request/response, per §4.3) for any connection on demand.
type Accumulator struct {
	maxFrames int

	mu    sync.Mutex
	conns map[string]*connection
}

// New constructs an Accumulator. maxFrames <= 0 uses DefaultMaxFrames.
func New(maxFrames int) *Accumulator {
	if maxFrames <= 0 {
		maxFrames = DefaultMaxFrames
	}
	return &Accumulator{maxFrames: maxFrames, conns: make(map[string]*connection)}
}

// OnCreated registers a new connection.
func (a *Accumulator) OnCreated(id, url string, wallAnchor time.Time, monotonicTs float64) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.conns[id] = &connection{id: id, url: url, createdAt: wallAnchor, wallAnchor: wallAnchor, monotonicAnchor: monotonicTs}
}

// OnHandshakeRequest records the client's upgrade request headers.
func (a *Accumulator) OnHandshakeRequest(id string, headers []adapter.Header, wallTime time.Time, monotonicTs float64) {
	a.mu.Lock()
	defer a.mu.Unlock()
	c := a.getOrCreateLocked(id, wallTime, monotonicTs)
	c.handshakeReqHeaders = headers
}

// OnHandshakeResponse records the server's upgrade response.
func (a *Accumulator) OnHandshakeResponse(id string, status int, headers []adapter.Header) {
	a.mu.Lock()
	defer a.mu.Unlock()
	c := a.getOrCreateLocked(id, time.Time{}, 0)
	c.handshakeRespStatus = status
	c.handshakeRespHeaders = headers
}

// AddFrame appends a frame to the connection's buffer, evicting the oldest
// frame first if the buffer is at capacity.
func (a *Accumulator) AddFrame(id, direction string, monotonicTs float64, opcode int, payload string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	c := a.getOrCreateLocked(id, time.Time{}, 0)
	if len(c.frames) >= a.maxFrames {
		c.frames = c.frames[1:]
		c.framesDropped++
	}
	c.frames = append(c.frames, adapter.WSFrame{Direction: direction, MonotonicTs: monotonicTs, Opcode: opcode, Payload: payload})
}

func (a *Accumulator) getOrCreateLocked(id string, wallAnchor time.Time, monotonicTs float64) *connection {
	c, ok := a.conns[id]
	if !ok {
		c = &connection{id: id, wallAnchor: wallAnchor, monotonicAnchor: monotonicTs}
		a.conns[id] = c
	}
	return c
}

// Close marks a connection closed at the given monotonic timestamp. It
// does not remove the connection from the table — Flush does that, so a
// caller that wants the synthetic entry must call Flush exactly once per
// connection.
func (a *Accumulator) Close(id string, monotonicTs float64) {
	a.mu.Lock()
	defer a.mu.Unlock()
	c, ok := a.conns[id]
	if !ok {
		return
	}
	c.closed = true
	c.closedAt = monotonicTs
}

// Flush synthesizes a HAR entry for connection id and removes it from the
// table. Calling Flush twice for the same id returns (nil, false) the
// second time — idempotent, per §4.3 "flush exactly once".
func (a *Accumulator) Flush(id string) (*harmodel.Entry, bool) {
	a.mu.Lock()
	c, ok := a.conns[id]
	if ok {
		delete(a.conns, id)
	}
	a.mu.Unlock()
	if !ok {
		return nil, false
	}
	return buildEntry(c), true
}

// FlushAll synthesizes entries for every still-open connection, for use at
// session Stop when some sockets never received a Closed event (§4.5
// "Stop flushes open WebSockets").
func (a *Accumulator) FlushAll() []*harmodel.Entry {
	a.mu.Lock()
	conns := make([]*connection, 0, len(a.conns))
	for _, c := range a.conns {
		conns = append(conns, c)
	}
	a.conns = make(map[string]*connection)
	a.mu.Unlock()

	entries := make([]*harmodel.Entry, 0, len(conns))
	for _, c := range conns {
		entries = append(entries, buildEntry(c))
	}
	return entries
}

// ActiveCount reports the number of connections not yet flushed.
func (a *Accumulator) ActiveCount() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.conns)
}

func buildEntry(c *connection) *harmodel.Entry {
	msgs := make([]harmodel.WebSocketMessage, 0, len(c.frames))
	for _, f := range c.frames {
		typ := "receive"
		if f.Direction == "send" {
			typ = "send"
		}
		msgs = append(msgs, harmodel.WebSocketMessage{
			Type: typ,
			Time: relativeMillis(c.monotonicAnchor, f.MonotonicTs),
			Opcode: f.Opcode,
			Data:   f.Payload,
		})
	}

	entry := &harmodel.Entry{
		StartedDateTime: c.wallAnchor.UTC().Format(rfc3339Milli),
		Time:            relativeMillis(c.monotonicAnchor, c.closedAt),
		Request: &harmodel.Request{
			Method:      "GET",
			URL:         c.url,
			HTTPVersion: "HTTP/1.1",
			Headers:     nameValuesFromHeaders(c.handshakeReqHeaders),
			HeadersSize: -1,
			BodySize:    0,
		},
		Response: &harmodel.Response{
			Status:      statusOrDefault(c.handshakeRespStatus),
			StatusText:  "Switching Protocols",
			HTTPVersion: "HTTP/1.1",
			Headers:     nameValuesFromHeaders(c.handshakeRespHeaders),
			Content:     &harmodel.Content{MimeType: "", Size: 0},
			HeadersSize: -1,
			BodySize:    0,
		},
		Cache: &harmodel.Cache{},
		Timings: &harmodel.Timings{
			Blocked: -1, DNS: -1, Connect: -1, Send: 0, Wait: 0, Receive: 0, SSL: -1,
		},
		ResourceType:      "websocket",
		WebSocketMessages: msgs,
	}
	if c.framesDropped > 0 {
		entry.Comment = droppedComment(c.framesDropped)
	}
	return entry
}

func statusOrDefault(s int) int {
	if s == 0 {
		return 101
	}
	return s
}

func nameValuesFromHeaders(h []adapter.Header) []harmodel.NameValue {
	out := make([]harmodel.NameValue, 0, len(h))
	for _, v := range h {
		out = append(out, harmodel.NameValue{Name: v.Name, Value: v.Value})
	}
	return out
}

func relativeMillis(anchor, ts float64) float64 {
	if anchor == 0 || ts == 0 {
		return 0
	}
	d := (ts - anchor) * 1000
	if d < 0 {
		return 0
	}
	return d
}

const rfc3339Milli = "2006-01-02T15:04:05.000Z07:00"

func droppedComment(n int64) string {
	if n == 1 {
		return "1 frame evicted before capacity"
	}
	return strconv.FormatInt(n, 10) + " frames evicted before capacity"
}
