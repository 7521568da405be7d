// driver.go — adapter selection, per §4.5 "Adapter selection": try the
// primary CDP adapter unless ForceSeleniumNetworkApi is set or the
// driver doesn't expose a DevTools-capable context; fall back silently
// to the fallback adapter; fail Start only if neither is available.
package orchestrator

import (
	"context"
	"fmt"
	"time"

	"github.com/dev-console/harcapture/internal/adapter"
)

// Driver is the capability surface Start needs from whatever automation
// client the caller has already attached to a browser session. A real
// chromedp-backed driver satisfies CDPContext; a Selenium-style driver
// satisfies LogPoller instead (sometimes both, e.g. a chromedp session
// also willing to expose a performance-log poller as a last resort).
type Driver interface {
	// CDPContext returns a chromedp-compatible context and true if this
	// driver can be driven over the DevTools protocol.
	CDPContext() (context.Context, bool)

	// LogPoller returns a performance-log poller and true if this driver
	// can be driven via the fallback automation-client API.
	LogPoller() (adapter.LogPoller, bool)
}

const fallbackPollInterval = 250 * time.Millisecond

// selectAdapter implements §4.5's adapter selection algorithm.
func selectAdapter(ctx context.Context, d Driver, forceSelenium bool) (adapter.Adapter, string, error) {
	if !forceSelenium {
		if cdpCtx, ok := d.CDPContext(); ok {
			ad, err := adapter.NewCDPAdapter(cdpCtx)
			if err == nil {
				return ad, "", nil
			}
			if poller, ok := d.LogPoller(); ok {
				return adapter.NewFallbackAdapter(poller, fallbackPollInterval), fmt.Sprintf("primary adapter construction failed: %v", err), nil
			}
			return nil, "", fmt.Errorf("%w: primary construction failed (%v) and driver exposes no log poller", ErrNoCapableAdapter, err)
		}
	}

	if poller, ok := d.LogPoller(); ok {
		cause := "ForceSeleniumNetworkApi set"
		if !forceSelenium {
			cause = "driver not DevTools-capable"
		}
		return adapter.NewFallbackAdapter(poller, fallbackPollInterval), cause, nil
	}

	return nil, "", ErrNoCapableAdapter
}
