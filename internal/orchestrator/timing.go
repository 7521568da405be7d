// timing.go — maps CDP's ResourceTiming (monotonic millisecond offsets
// relative to a requestTime wall-clock anchor) onto HAR's
// blocked/dns/connect/send/wait/receive/ssl breakdown, per §4.5 "Timing
// mapping (detailed)". ssl nests inside connect; it is never added into
// the entry's total time.
package orchestrator

import (
	"github.com/dev-console/harcapture/internal/adapter"
	"github.com/dev-console/harcapture/internal/harmodel"
)

// mapTiming implements the exact formulas from §4.5. A nil t (no timing
// information at all, e.g. from the fallback adapter) yields all-(-1)
// Timings with Send/Wait/Receive at 0, matching the HAR sentinel
// convention documented on harmodel.Timings.
func mapTiming(t *adapter.ResourceTiming) harmodel.Timings {
	if t == nil {
		return harmodel.Timings{Blocked: -1, DNS: -1, Connect: -1, SSL: -1, Send: 0, Wait: 0, Receive: 0}
	}

	dns := maybeDelta(t.DNSStart, t.DNSEnd)
	connect := maybeDelta(t.ConnectStart, t.ConnectEnd)
	ssl := maybeDelta(t.SSLStart, t.SSLEnd)
	send := zeroFloorDelta(t.SendStart, t.SendEnd)
	wait := zeroFloor(t.ReceiveHeadersEnd - t.SendEnd)

	var receive float64
	if t.ResponseReceivedTime > 0 && t.RequestTime > 0 {
		receive = zeroFloor((t.ResponseReceivedTime-t.RequestTime)*1000 - t.ReceiveHeadersEnd)
	}

	blocked := firstNonNegative(t.DNSStart, t.ConnectStart, t.SendStart)

	return harmodel.Timings{
		Blocked: blocked,
		DNS:     dns,
		Connect: connect,
		SSL:     ssl,
		Send:    send,
		Wait:    wait,
		Receive: receive,
	}
}

// entryTotalMillis sums blocked+dns+connect+send+wait+receive, treating
// -1 ("not applicable") as 0, and never adding ssl — it is nested inside
// connect, per §4.5.
func entryTotalMillis(t harmodel.Timings) float64 {
	return nonNegOrZero(t.Blocked) + nonNegOrZero(t.DNS) + nonNegOrZero(t.Connect) +
		nonNegOrZero(t.Send) + nonNegOrZero(t.Wait) + nonNegOrZero(t.Receive)
}

func nonNegOrZero(v float64) float64 {
	if v < 0 {
		return 0
	}
	return v
}

// maybeDelta returns max(0, end-start) if both are >= 0, else -1 (HAR's
// "not applicable" sentinel).
func maybeDelta(start, end float64) float64 {
	if start < 0 || end < 0 {
		return -1
	}
	return zeroFloor(end - start)
}

// zeroFloorDelta is maybeDelta's §4.5 "send" variant: 0 instead of -1
// when unavailable, because HAR's send field is never "not applicable"
// for an entry that reached ResponseReceived.
func zeroFloorDelta(start, end float64) float64 {
	if start < 0 || end < 0 {
		return 0
	}
	return zeroFloor(end - start)
}

func zeroFloor(v float64) float64 {
	if v < 0 {
		return 0
	}
	return v
}

// firstNonNegative returns the first value >= 0 among candidates, else -1.
func firstNonNegative(candidates ...float64) float64 {
	for _, c := range candidates {
		if c >= 0 {
			return c
		}
	}
	return -1
}
