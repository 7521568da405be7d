package webdriver

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dev-console/harcapture/internal/adapter"
)

type fakePoller struct{}

func (fakePoller) PollEntries(ctx context.Context) ([]adapter.PerformanceLogEntry, error) {
	return nil, nil
}

func TestAttachRejectsUnrecognizedTarget(t *testing.T) {
	_, err := Attach(context.Background(), 42, DefaultOptions())
	require.Error(t, err)
}

func TestAttachWithLogPollerUsesFallback(t *testing.T) {
	opts := DefaultOptions()
	sess, err := Attach(context.Background(), fakePoller{}, opts)
	require.NoError(t, err)
	defer sess.Dispose(context.Background())

	require.NoError(t, sess.Pause())
	require.NoError(t, sess.Resume())

	har, err := sess.Stop(context.Background())
	require.NoError(t, err)
	require.NotNil(t, har.Log)
}

func TestAttachForceSeleniumSkipsDevToolsProbe(t *testing.T) {
	opts := DefaultOptions()
	opts.ForceSeleniumNetworkApi = true
	sess, err := Attach(context.Background(), fakePoller{}, opts)
	require.NoError(t, err)
	_, err = sess.Stop(context.Background())
	require.NoError(t, err)
}

func TestValidateAcceptsStoppedSessionHAR(t *testing.T) {
	sess, err := Attach(context.Background(), fakePoller{}, DefaultOptions())
	require.NoError(t, err)
	har, err := sess.Stop(context.Background())
	require.NoError(t, err)
	require.NoError(t, Validate(har))
}
