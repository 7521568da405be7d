// redirects.go — synthesizes the terminal HAR entry for a redirect hop,
// per §4.5 "Redirects": a RequestWillBeSent carrying a non-null
// redirectResponse terminates the previous exchange for this id with
// that redirect response; timings are zeroed because CDP supplies none
// for the redirect hop itself.
package orchestrator

import (
	"time"

	"github.com/dev-console/harcapture/internal/adapter"
	"github.com/dev-console/harcapture/internal/correlator"
	"github.com/dev-console/harcapture/internal/harmodel"
)

// buildRedirectEntry turns the prior pending exchange plus the redirect
// response CDP attached to the *new* RequestWillBeSent into a completed
// HAR entry for the hop that was redirected away from.
func buildRedirectEntry(pe *correlator.PendingExchange, redirect *adapter.RedirectResponse) *harmodel.Entry {
	return &harmodel.Entry{
		PageRef:         "",
		StartedDateTime: formatWallTime(pe.WallTime),
		Time:            0,
		Request:         buildRequest(pe.Request, nil),
		Response: &harmodel.Response{
			Status:      redirect.Status,
			StatusText:  redirect.StatusText,
			HTTPVersion: "HTTP/1.1",
			Headers:     nameValues(redirect.Headers),
			Content:     &harmodel.Content{Size: 0, MimeType: ""},
			RedirectURL: redirect.Location,
			HeadersSize: -1,
			BodySize:    0,
		},
		Cache: &harmodel.Cache{},
		Timings: &harmodel.Timings{
			Blocked: 0, DNS: -1, Connect: -1, SSL: -1, Send: 0, Wait: 0, Receive: 0,
		},
	}
}

func formatWallTime(t time.Time) string {
	if t.IsZero() {
		t = time.Now().UTC()
	}
	return t.UTC().Format("2006-01-02T15:04:05.000Z07:00")
}
