package harvalidate

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dev-console/harcapture/internal/harmodel"
)

func validEntry() *harmodel.Entry {
	return &harmodel.Entry{
		StartedDateTime: "2026-01-01T00:00:00.000Z",
		Time:            10,
		Request: &harmodel.Request{
			Method:      "GET",
			URL:         "https://example.com/",
			Headers:     []harmodel.NameValue{},
			Cookies:     []harmodel.Cookie{},
			QueryString: []harmodel.NameValue{},
		},
		Response: &harmodel.Response{
			Status:  200,
			Headers: []harmodel.NameValue{},
			Cookies: []harmodel.Cookie{},
			Content: &harmodel.Content{MimeType: "text/plain"},
		},
		Cache:   &harmodel.Cache{},
		Timings: &harmodel.Timings{Blocked: -1, DNS: -1, Connect: -1, Send: 1, Wait: 1, Receive: 1, SSL: -1},
	}
}

func TestValidateAcceptsWellFormedDocument(t *testing.T) {
	h := &harmodel.HAR{Log: harmodel.NewEmptyLog("harcapture", "1.0", "", "")}
	h.Log.Entries = []*harmodel.Entry{validEntry()}
	require.NoError(t, Validate(h))
}

func TestValidateRejectsNilLog(t *testing.T) {
	err := Validate(&harmodel.HAR{})
	require.Error(t, err)
}

func TestValidateCatchesMissingRequiredFields(t *testing.T) {
	h := &harmodel.HAR{Log: &harmodel.Log{}}
	err := Validate(h)
	require.Error(t, err)
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	require.ErrorIs(t, err, ErrInvalidHAR)
	require.Contains(t, ve.Violations, "log.version is empty")
	require.Contains(t, ve.Violations, "log.creator is missing")
	require.Contains(t, ve.Violations, "log.entries is nil (must be an array, even if empty)")
}

func TestValidateCatchesDanglingPageRef(t *testing.T) {
	h := &harmodel.HAR{Log: harmodel.NewEmptyLog("harcapture", "1.0", "", "")}
	entry := validEntry()
	entry.PageRef = "page-that-does-not-exist"
	h.Log.Entries = []*harmodel.Entry{entry}

	err := Validate(h)
	require.Error(t, err)
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	require.Contains(t, ve.Violations[0], "pageref")
}

func TestValidateCatchesMalformedWebSocketEntry(t *testing.T) {
	h := &harmodel.HAR{Log: harmodel.NewEmptyLog("harcapture", "1.0", "", "")}
	entry := validEntry()
	entry.ResourceType = "websocket"
	h.Log.Entries = []*harmodel.Entry{entry}

	err := Validate(h)
	require.Error(t, err)
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	found := false
	for _, v := range ve.Violations {
		if v == "log.entries[0] is a websocket entry with no _webSocketMessages" {
			found = true
		}
	}
	require.True(t, found)
}

func TestValidateAcceptsNegativeOneTimingSentinel(t *testing.T) {
	h := &harmodel.HAR{Log: harmodel.NewEmptyLog("harcapture", "1.0", "", "")}
	h.Log.Entries = []*harmodel.Entry{validEntry()}
	require.NoError(t, Validate(h))
}
