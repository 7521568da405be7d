// Package webdriver is the one public entry point embedding code talks
// to: Attach a capture session to an existing browser driver, then read
// the HAR back off the returned Session. Everything else — adapter
// selection, correlation, redaction, streaming — lives in internal/ and
// is deliberately not exported here.
package webdriver

import (
	"context"
	"fmt"

	"github.com/dev-console/harcapture/internal/adapter"
	"github.com/dev-console/harcapture/internal/harmodel"
	"github.com/dev-console/harcapture/internal/harvalidate"
	"github.com/dev-console/harcapture/internal/orchestrator"
)

// CaptureOptions is re-exported so callers never need to import
// internal/orchestrator directly.
type CaptureOptions = orchestrator.CaptureOptions

// DefaultOptions returns the documented option defaults.
func DefaultOptions() CaptureOptions { return orchestrator.DefaultOptions() }

// Stats is the capture summary snapshot returned by Session.Stats.
type Stats = orchestrator.Stats

// Session wraps one attached capture for the lifetime of a test or
// automation run.
type Session struct {
	o *orchestrator.Orchestrator
}

// driverAdapter resolves whichever concrete handle the caller passed
// into Attach into the orchestrator.Driver capability interface.
type driverAdapter struct {
	cdpCtx context.Context
	poller adapter.LogPoller
}

func (d driverAdapter) CDPContext() (context.Context, bool) {
	if d.cdpCtx != nil {
		return d.cdpCtx, true
	}
	return nil, false
}

func (d driverAdapter) LogPoller() (adapter.LogPoller, bool) {
	if d.poller != nil {
		return d.poller, true
	}
	return nil, false
}

// Attach starts a capture session against target, which must be either
// a chromedp-allocated context.Context (DevTools-capable) or something
// implementing adapter.LogPoller (a Selenium-style automation client
// exposing a performance log). opts.ForceSeleniumNetworkApi skips the
// DevTools probe even when target is a context.Context.
func Attach(ctx context.Context, target interface{}, opts CaptureOptions) (*Session, error) {
	var d driverAdapter
	switch t := target.(type) {
	case context.Context:
		d.cdpCtx = t
	case adapter.LogPoller:
		d.poller = t
	default:
		return nil, fmt.Errorf("webdriver: attach: target of type %T is neither a context.Context nor an adapter.LogPoller", target)
	}

	o, err := orchestrator.New(opts)
	if err != nil {
		return nil, fmt.Errorf("webdriver: attach: %w", err)
	}
	if err := o.Start(ctx, d); err != nil {
		return nil, fmt.Errorf("webdriver: attach: %w", err)
	}
	return &Session{o: o}, nil
}

// Pause drops subsequently completed entries without closing the
// session. Idempotent.
func (s *Session) Pause() error { return s.o.Pause() }

// Resume undoes Pause. Idempotent.
func (s *Session) Resume() error { return s.o.Resume() }

// NewPage starts a new logical page grouping; subsequent entries carry
// its ref until the next NewPage call. ref may be empty to auto-generate
// one, which is returned.
func (s *Session) NewPage(ref, title string) string { return s.o.NewPage(ref, title) }

// Stop ends the capture and returns the accumulated HAR document. In
// streaming mode (CaptureOptions.OutputFilePath set) the return value is
// metadata-only; read the output file for entries.
func (s *Session) Stop(ctx context.Context) (*harmodel.HAR, error) { return s.o.Stop(ctx) }

// StopAndSave stops the capture and writes the resulting HAR to path
// (gzip-compressed if path ends in ".gz").
func (s *Session) StopAndSave(ctx context.Context, path string) error {
	return s.o.StopAndSave(ctx, path)
}

// GetHAR returns an independent snapshot of the document captured so
// far, without stopping the session.
func (s *Session) GetHAR() (*harmodel.HAR, error) { return s.o.GetHar() }

// Validate checks h against the HAR 1.2 structural contract, returning
// nil if it conforms. Callers typically pass the result of Stop or
// GetHAR; in streaming mode, read the output file back with
// harmodel.ReadFile first since Stop/GetHAR only return metadata then.
func Validate(h *harmodel.HAR) error { return harvalidate.Validate(h) }

// Dispose releases the adapter. Idempotent; implies Stop if still
// capturing.
func (s *Session) Dispose(ctx context.Context) error { return s.o.Dispose(ctx) }

// Stats returns the current capture summary counters.
func (s *Session) Stats() Stats { return s.o.Stats() }
