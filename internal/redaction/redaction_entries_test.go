package redaction

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedactHeaderValueExactMatch(t *testing.T) {
	r := NewEntryRedactor(EntryRules{HeaderNames: []string{"Authorization"}}, nil)
	v, redacted := r.RedactHeaderValue("authorization", "Bearer abc123")
	assert.True(t, redacted)
	assert.Equal(t, redactedPlaceholder, v)

	v, redacted = r.RedactHeaderValue("content-type", "application/json")
	assert.False(t, redacted)
	assert.Equal(t, "application/json", v)
}

func TestRedactCookieValueExactMatch(t *testing.T) {
	r := NewEntryRedactor(EntryRules{CookieNames: []string{"session_id"}}, nil)
	v, redacted := r.RedactCookieValue("SESSION_ID", "xyz")
	assert.True(t, redacted)
	assert.Equal(t, redactedPlaceholder, v)
}

func TestRedactQueryParamValueGlob(t *testing.T) {
	r := NewEntryRedactor(EntryRules{QueryParamGlobs: []string{"api_*", "token"}}, nil)
	v, redacted := r.RedactQueryParamValue("api_key", "secret")
	assert.True(t, redacted)
	assert.Equal(t, redactedPlaceholder, v)

	_, redacted = r.RedactQueryParamValue("page", "2")
	assert.False(t, redacted)
}

func TestRedactBodyUsesWrappedEngine(t *testing.T) {
	engine := NewRedactionEngine("")
	r := NewEntryRedactor(EntryRules{RedactBodies: true}, engine)
	out := r.RedactBody(context.Background(), "Authorization: Bearer sometoken123456")
	assert.Contains(t, out, "[REDACTED:bearer-token]")
	assert.Equal(t, int64(1), r.Counters().BodyBytesRedacted)
}

func TestRedactBodySkipsOverSizeLimit(t *testing.T) {
	engine := NewRedactionEngine("")
	r := NewEntryRedactor(EntryRules{RedactBodies: true}, engine)
	big := strings.Repeat("a", BodyScanLimit+1)
	out := r.RedactBody(context.Background(), big)
	assert.Equal(t, big, out)
	assert.Equal(t, int64(len(big)), r.Counters().BodyBytesSkipped)
}

func TestRedactBodyNoopWhenDisabled(t *testing.T) {
	r := NewEntryRedactor(EntryRules{RedactBodies: false}, NewRedactionEngine(""))
	out := r.RedactBody(context.Background(), "Bearer sometoken123456")
	assert.Equal(t, "Bearer sometoken123456", out)
}

func TestRedactWSPayloadIncrementsFrameCounter(t *testing.T) {
	engine := NewRedactionEngine("")
	r := NewEntryRedactor(EntryRules{RedactWSPayloads: true}, engine)
	out := r.RedactWSPayload(context.Background(), "token=abcdefghij0123456789")
	require.NotEqual(t, "token=abcdefghij0123456789", out)
	assert.Equal(t, int64(1), r.Counters().WSFramesRedacted)
}
