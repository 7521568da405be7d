// Package harvalidate checks a finished HAR document against the HAR 1.2
// structural contract: required objects present, timings non-negative
// (aside from the documented -1 sentinel), and cross-references
// (Entry.PageRef -> Page.ID) resolvable. It is a read-only check — it
// never mutates the document it's handed.
package harvalidate

import (
	"errors"
	"fmt"

	"github.com/dev-console/harcapture/internal/harmodel"
)

// ErrInvalidHAR is wrapped by every error Validate returns; the returned
// *ValidationError carries the full list of violations in its message.
var ErrInvalidHAR = errors.New("harvalidate: document does not conform to HAR 1.2")

// ValidationError aggregates every rule violation found in one pass over
// the document, in the orchestrator's ValidationError style: one error
// per Validate call, not one per violation.
type ValidationError struct {
	Violations []string
}

func (e *ValidationError) Error() string {
	msg := fmt.Sprintf("invalid HAR document (%d violation(s)):", len(e.Violations))
	for _, v := range e.Violations {
		msg += " " + v + ";"
	}
	return msg
}

func (e *ValidationError) Unwrap() error { return ErrInvalidHAR }

// Validate checks h against the HAR 1.2 structural contract and returns
// a *ValidationError wrapping ErrInvalidHAR if any rule is violated, or
// nil if the document is well-formed.
func Validate(h *harmodel.HAR) error {
	var v []string

	if h == nil || h.Log == nil {
		return &ValidationError{Violations: []string{"document has no log object"}}
	}
	l := h.Log

	if l.Version == "" {
		v = append(v, "log.version is empty")
	}
	if l.Creator == nil {
		v = append(v, "log.creator is missing")
	} else if l.Creator.Name == "" {
		v = append(v, "log.creator.name is empty")
	}
	if l.Entries == nil {
		v = append(v, "log.entries is nil (must be an array, even if empty)")
	}

	pageIDs := make(map[string]bool, len(l.Pages))
	for i, p := range l.Pages {
		if p == nil {
			v = append(v, fmt.Sprintf("log.pages[%d] is nil", i))
			continue
		}
		if p.ID == "" {
			v = append(v, fmt.Sprintf("log.pages[%d].id is empty", i))
		}
		if p.StartedDateTime == "" {
			v = append(v, fmt.Sprintf("log.pages[%d].startedDateTime is empty", i))
		}
		if p.PageTimings == nil {
			v = append(v, fmt.Sprintf("log.pages[%d].pageTimings is missing", i))
		}
		pageIDs[p.ID] = true
	}

	for i, e := range l.Entries {
		v = append(v, validateEntry(i, e, pageIDs)...)
	}

	if len(v) == 0 {
		return nil
	}
	return &ValidationError{Violations: v}
}

func validateEntry(i int, e *harmodel.Entry, pageIDs map[string]bool) []string {
	var v []string
	prefix := fmt.Sprintf("log.entries[%d]", i)

	if e == nil {
		return []string{prefix + " is nil"}
	}
	if e.StartedDateTime == "" {
		v = append(v, prefix+".startedDateTime is empty")
	}
	if e.Time < 0 {
		v = append(v, prefix+".time is negative")
	}
	if e.PageRef != "" && !pageIDs[e.PageRef] {
		v = append(v, prefix+fmt.Sprintf(".pageref %q does not match any log.pages[].id", e.PageRef))
	}

	if e.Request == nil {
		v = append(v, prefix+".request is missing")
	} else {
		v = append(v, validateRequest(prefix, e.Request)...)
	}
	if e.Response == nil {
		v = append(v, prefix+".response is missing")
	} else {
		v = append(v, validateResponse(prefix, e.Response)...)
	}
	if e.Cache == nil {
		v = append(v, prefix+".cache is missing")
	}
	if e.Timings == nil {
		v = append(v, prefix+".timings is missing")
	} else {
		v = append(v, validateTimings(prefix, e.Timings)...)
	}

	if e.ResourceType == "websocket" && len(e.WebSocketMessages) == 0 {
		v = append(v, prefix+" is a websocket entry with no _webSocketMessages")
	}
	for j, m := range e.WebSocketMessages {
		if m.Type != "send" && m.Type != "receive" {
			v = append(v, fmt.Sprintf("%s._webSocketMessages[%d].type %q is neither \"send\" nor \"receive\"", prefix, j, m.Type))
		}
	}

	return v
}

func validateRequest(prefix string, r *harmodel.Request) []string {
	var v []string
	if r.Method == "" {
		v = append(v, prefix+".request.method is empty")
	}
	if r.URL == "" {
		v = append(v, prefix+".request.url is empty")
	}
	if r.Headers == nil {
		v = append(v, prefix+".request.headers is nil (must be an array, even if empty)")
	}
	if r.Cookies == nil {
		v = append(v, prefix+".request.cookies is nil (must be an array, even if empty)")
	}
	if r.QueryString == nil {
		v = append(v, prefix+".request.queryString is nil (must be an array, even if empty)")
	}
	return v
}

func validateResponse(prefix string, r *harmodel.Response) []string {
	var v []string
	if r.Status == 0 {
		v = append(v, prefix+".response.status is zero")
	}
	if r.Headers == nil {
		v = append(v, prefix+".response.headers is nil (must be an array, even if empty)")
	}
	if r.Cookies == nil {
		v = append(v, prefix+".response.cookies is nil (must be an array, even if empty)")
	}
	if r.Content == nil {
		v = append(v, prefix+".response.content is missing")
	} else if r.Content.MimeType == "" {
		v = append(v, prefix+".response.content.mimeType is empty")
	}
	return v
}

// validateTimings checks every field independently; -1 is the documented
// "not measured" sentinel and is valid everywhere a timing can appear.
func validateTimings(prefix string, t *harmodel.Timings) []string {
	var v []string
	fields := map[string]float64{
		"blocked": t.Blocked,
		"dns":     t.DNS,
		"connect": t.Connect,
		"send":    t.Send,
		"wait":    t.Wait,
		"receive": t.Receive,
		"ssl":     t.SSL,
	}
	for name, val := range fields {
		if val < -1 {
			v = append(v, fmt.Sprintf("%s.timings.%s is less than -1 (%v)", prefix, name, val))
		}
	}
	return v
}
