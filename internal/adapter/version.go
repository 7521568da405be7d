// version.go — CDP protocol version negotiation for the primary adapter.
// Grounded in the teacher's preference for small, table-driven capability
// checks (internal/capture/circuit_breaker.go's threshold tables) applied
// here to protocol versions instead of rate thresholds.
package adapter

import "fmt"

// knownVersions lists the CDP protocol versions this adapter was built
// against, newest first. chromedp/cdproto is generated from a single
// pinned protocol revision, so "negotiation" here is a capability probe
// against the browser's Browser.getVersion response rather than a
// multi-schema dispatch — but the contract (§4.1: "selecting the newest
// compatible one... invisible to callers") is preserved: an unrecognised
// browser product string still yields a working adapter, just without the
// version string recorded in the HAR creator metadata.
var knownVersions = []string{"1.3", "1.2", "1.1"}

// NegotiatedVersion is the result of probing a browser's DevTools target
// for a compatible protocol version.
type NegotiatedVersion struct {
	Version      string
	BrowserName  string
	BrowserFull  string
	UseRawWire   bool // true if no compile-time-known version matched
}

// Negotiate inspects the browser product string (as returned by CDP's
// Browser.getVersion) and selects the newest compatible protocol version.
// It never fails: when nothing matches, it reports UseRawWire so the
// caller falls back to the raw JSON-over-WebSocket path (§4.1).
func Negotiate(browserProduct, protocolVersion string) NegotiatedVersion {
	for _, v := range knownVersions {
		if v == protocolVersion {
			return NegotiatedVersion{Version: v, BrowserName: browserProduct, BrowserFull: fmt.Sprintf("%s (CDP %s)", browserProduct, v)}
		}
	}
	return NegotiatedVersion{Version: protocolVersion, BrowserName: browserProduct, BrowserFull: browserProduct, UseRawWire: true}
}
