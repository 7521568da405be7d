// redaction_entries.go — HAR entry redaction additions layered on top of
// the existing pattern-based RedactionEngine. The engine above stays
// exactly as the teacher wrote it (secret-pattern regex scrubbing of MCP
// tool text); this file adds the structural redaction rules a capture
// library needs that the teacher's MCP-response use case never did:
// exact-match header/cookie names, glob query-param names, and a
// size/time-gated body pass that reuses the teacher's own Redact for the
// regex work.
package redaction

import (
	"context"
	"path"
	"strings"
	"time"
)

// BodyScanLimit is the largest body, in bytes, that EntryRedactor will run
// regex redaction against. Larger bodies are left untouched rather than
// risking a slow regex pass on, say, a multi-megabyte video response
// (§4.2 "512KiB body regex gate").
const BodyScanLimit = 512 * 1024

// BodyScanTimeout bounds how long the regex pass may run against one body
// before it's abandoned and the body is returned unredacted with a flag
// (§4.2 "100ms match timeout").
const BodyScanTimeout = 100 * time.Millisecond

// RedactionCounters tallies what EntryRedactor actually redacted across a
// capture session, surfaced in the capture summary (§4.5.2).
type RedactionCounters struct {
	HeadersRedacted     int64
	CookiesRedacted     int64
	QueryParamsRedacted int64
	BodyBytesRedacted   int64
	BodyBytesSkipped    int64 // over BodyScanLimit or timed out
	WSFramesRedacted    int64
}

// EntryRules configures which header/cookie/query-param names are
// redacted outright, and whether body/WS-payload regex redaction is
// enabled.
type EntryRules struct {
	// HeaderNames and CookieNames are matched case-insensitively, exact
	// match only (no globs — header/cookie names are a known, finite
	// set in practice).
	HeaderNames []string
	CookieNames []string

	// QueryParamGlobs are matched with '*' and '?' wildcards via
	// path.Match, against the query parameter's name.
	QueryParamGlobs []string

	RedactBodies       bool
	RedactWSPayloads   bool
}

// EntryRedactor applies EntryRules plus the wrapped pattern engine's body
// regex rules to HAR entry fields, accumulating RedactionCounters.
type EntryRedactor struct {
	rules  EntryRules
	engine *RedactionEngine

	headerSet map[string]bool
	cookieSet map[string]bool

	counters RedactionCounters
}

const redactedPlaceholder = "[REDACTED]"

// NewEntryRedactor builds an EntryRedactor. engine may be nil, in which
// case body/WS-payload regex redaction is skipped even if requested in
// rules.
func NewEntryRedactor(rules EntryRules, engine *RedactionEngine) *EntryRedactor {
	r := &EntryRedactor{rules: rules, engine: engine, headerSet: make(map[string]bool), cookieSet: make(map[string]bool)}
	for _, h := range rules.HeaderNames {
		r.headerSet[strings.ToLower(h)] = true
	}
	for _, c := range rules.CookieNames {
		r.cookieSet[strings.ToLower(c)] = true
	}
	return r
}

// RedactHeaderValue returns (redactedPlaceholder, true) if name matches an
// exact-match header rule, else (value, false).
func (r *EntryRedactor) RedactHeaderValue(name, value string) (string, bool) {
	if r.headerSet[strings.ToLower(name)] {
		r.counters.HeadersRedacted++
		return redactedPlaceholder, true
	}
	return value, false
}

// RedactCookieValue mirrors RedactHeaderValue for cookie names.
func (r *EntryRedactor) RedactCookieValue(name, value string) (string, bool) {
	if r.cookieSet[strings.ToLower(name)] {
		r.counters.CookiesRedacted++
		return redactedPlaceholder, true
	}
	return value, false
}

// RedactQueryParamValue checks name against every configured glob in
// order and redacts on first match.
func (r *EntryRedactor) RedactQueryParamValue(name, value string) (string, bool) {
	for _, g := range r.rules.QueryParamGlobs {
		if ok, _ := path.Match(g, name); ok {
			r.counters.QueryParamsRedacted++
			return redactedPlaceholder, true
		}
	}
	return value, false
}

// RedactBody runs the wrapped pattern engine's Redact against text, gated
// by BodyScanLimit and BodyScanTimeout. If text exceeds the size limit, or
// the regex pass does not finish within the timeout, the original text is
// returned unchanged and BodyBytesSkipped is incremented. A disabled rule
// set (RedactBodies=false) or a nil engine is also a no-op skip.
func (r *EntryRedactor) RedactBody(ctx context.Context, text string) string {
	if !r.rules.RedactBodies || r.engine == nil {
		return text
	}
	if len(text) > BodyScanLimit {
		r.counters.BodyBytesSkipped += int64(len(text))
		return text
	}

	scanCtx, cancel := context.WithTimeout(ctx, BodyScanTimeout)
	defer cancel()

	type result struct{ out string }
	done := make(chan result, 1)
	go func() {
		done <- result{out: r.engine.Redact(text)}
	}()

	select {
	case res := <-done:
		if res.out != text {
			r.counters.BodyBytesRedacted += int64(len(text))
		}
		return res.out
	case <-scanCtx.Done():
		r.counters.BodyBytesSkipped += int64(len(text))
		return text
	}
}

// RedactWSPayload applies the same gated regex pass to a single WebSocket
// frame payload.
func (r *EntryRedactor) RedactWSPayload(ctx context.Context, payload string) string {
	if !r.rules.RedactWSPayloads || r.engine == nil {
		return payload
	}
	out := r.RedactBody(ctx, payload)
	if out != payload {
		r.counters.WSFramesRedacted++
	}
	return out
}

// Counters returns a snapshot of the accumulated counts.
func (r *EntryRedactor) Counters() RedactionCounters {
	return r.counters
}
