// orchestrator.go — the public face of the core: owns and sequences the
// adapter, correlator, WebSocket accumulator, body pool, redactor, and
// sink, per §4.5. Mirrors the teacher's Capture struct in spirit (one
// coarse lock hierarchy, sub-components with their own locks) but the
// "coarse lock" here is the lifecycle state machine plus pageTracker;
// the hot entry-delivery path deliberately touches no orchestrator-level
// mutex at all, matching §5's "correlator does not contend on the
// orchestrator mutex".
package orchestrator

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/dev-console/harcapture/internal/adapter"
	"github.com/dev-console/harcapture/internal/bodypool"
	"github.com/dev-console/harcapture/internal/correlator"
	"github.com/dev-console/harcapture/internal/harbuilder"
	"github.com/dev-console/harcapture/internal/harmodel"
	"github.com/dev-console/harcapture/internal/obslog"
	"github.com/dev-console/harcapture/internal/redaction"
	"github.com/dev-console/harcapture/internal/streamwriter"
	"github.com/dev-console/harcapture/internal/wsaccum"
)

// bodyPoolDrainTimeout is the §4.4 "Shutdown" bound: Stop waits this long
// for in-flight body fetches before abandoning them.
const bodyPoolDrainTimeout = 10 * time.Second

// defaultBodyFetchRateLimit and bodyFetchBurstFactor bound how fast the
// body pool starts new GetResponseBody calls, independent of its width.
// A page with many subresources finishing at once would otherwise
// dispatch a burst of round trips over the same DevTools channel that
// request/response events flow over.
const (
	defaultBodyFetchRateLimit rate.Limit = 20
	bodyFetchBurstFactor                 = 3
)

// Orchestrator is the capture session. Construct with New, drive with
// Start/Pause/Resume/Stop/Dispose.
type Orchestrator struct {
	opts CaptureOptions

	ad   adapter.Adapter
	corr *correlator.Correlator
	wsAcc *wsaccum.Accumulator
	pool *bodypool.Pool

	builder *harbuilder.Builder   // non-nil in in-memory mode
	writer  *streamwriter.Writer  // non-nil in streaming mode
	sink    entrySink

	redactor *redaction.EntryRedactor

	lc    *lifecycle
	pages *pageTracker

	logger zerolog.Logger
	stats  statsCounters

	bodyInFlight sync.WaitGroup
}

// New constructs an Orchestrator, validating opts per §4.5 "Options
// validation". No adapter is selected yet — that happens in Start, which
// is given the driver to probe.
func New(opts CaptureOptions) (*Orchestrator, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	o := &Orchestrator{
		opts:  opts,
		corr:  correlator.New(),
		wsAcc: wsaccum.New(opts.MaxWebSocketFramesPerConnection),
		lc:    newLifecycle(),
		pages: newPageTracker(),
	}

	if opts.LogFilePath != "" {
		o.logger = obslog.New("orchestrator", opts.LogFilePath)
	} else {
		o.logger = obslog.New("orchestrator", "")
	}

	o.redactor = redaction.NewEntryRedactor(redaction.EntryRules{
		HeaderNames:      opts.SensitiveHeaders,
		CookieNames:      opts.SensitiveCookies,
		QueryParamGlobs:  opts.SensitiveQueryParams,
		RedactBodies:     len(opts.SensitiveBodyPatterns) > 0,
		RedactWSPayloads: len(opts.SensitiveBodyPatterns) > 0 && opts.CaptureTypes.has(CaptureWebSocket),
	}, bodyPatternEngine(opts.SensitiveBodyPatterns))

	if opts.IsStreaming() {
		outPath := opts.OutputFilePath
		if opts.EnableCompression && !hasGzSuffix(outPath) {
			outPath += ".gz"
		}
		o.writer = streamwriter.New(outPath, opts.CreatorName, "", opts.BrowserName, opts.BrowserVersion, opts.MaxOutputFileSize)
		o.sink = streamSink{o.writer}
	} else {
		o.builder = harbuilder.New(opts.CreatorName, "", opts.BrowserName, opts.BrowserVersion)
		o.sink = memorySink{o.builder}
	}

	if opts.CustomMetadata != nil {
		o.sink.SetCustom(opts.CustomMetadata)
	}

	return o, nil
}

func hasGzSuffix(p string) bool {
	return len(p) >= 3 && p[len(p)-3:] == ".gz"
}

func bodyPatternEngine(patterns []string) *redaction.RedactionEngine {
	if len(patterns) == 0 {
		return nil
	}
	// Built-in secret patterns run unconditionally; SensitiveBodyPatterns
	// supplements rather than replaces them.
	engine := redaction.NewRedactionEngine("")
	engine.AddPatterns(patterns)
	return engine
}

// Start selects an adapter for driver per §4.5 "Adapter selection",
// transitions Idle -> Capturing, subscribes to the adapter, optionally
// seeds an initial page, and enables network monitoring. Subscribe is
// called before EnableNetwork per §4.1's ordering contract.
func (o *Orchestrator) Start(ctx context.Context, driver Driver) error {
	if err := o.lc.start(); err != nil {
		return err
	}

	ad, fallbackCause, err := selectAdapter(ctx, driver, o.opts.ForceSeleniumNetworkApi)
	if err != nil {
		return fmt.Errorf("orchestrator: select adapter: %w", err)
	}
	if fallbackCause != "" {
		o.logger.Warn().Str("cause", fallbackCause).Msg("falling back to automation-client network API")
	}
	o.ad = ad
	o.pool = bodypool.New(ad, bodypool.DefaultWidth,
		bodypool.WithRateLimit(defaultBodyFetchRateLimit, bodypool.DefaultWidth*bodyFetchBurstFactor))

	if o.opts.InitialPageRef != "" || o.opts.InitialPageTitle != "" {
		o.NewPage(o.opts.InitialPageRef, o.opts.InitialPageTitle)
	}

	o.ad.Subscribe(o)
	if err := o.ad.EnableNetwork(ctx); err != nil {
		return fmt.Errorf("orchestrator: enable network: %w", err)
	}
	return nil
}

// Pause sets the drop flag; idempotent.
func (o *Orchestrator) Pause() error { return o.lc.pause() }

// Resume clears the drop flag; idempotent.
func (o *Orchestrator) Resume() error { return o.lc.resume() }

// NewPage creates a new HarPage and makes it the current page ref for
// subsequently completed entries, per §4.5 "Multi-page support".
func (o *Orchestrator) NewPage(ref, title string) string {
	page, resolvedRef := buildPage(ref, title, formatWallTime(time.Time{}))
	o.pages.setRef(resolvedRef)
	o.sink.AddPage(page)
	_ = o.sink.Commit()
	return resolvedRef
}

// Stop waits for the body pool, flushes open WebSocket connections, and
// returns the accumulated HAR (in-memory mode) — or nil in streaming
// mode, where GetHar only ever returns metadata (callers use StopAndSave
// or read the file directly).
func (o *Orchestrator) Stop(ctx context.Context) (*harmodel.HAR, error) {
	if err := o.lc.stop(); err != nil {
		return nil, err
	}

	disableCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := o.ad.DisableNetwork(disableCtx); err != nil {
		o.logger.Warn().Err(err).Msg("disable network timed out during stop")
	}

	o.pool.Close(bodyPoolDrainTimeout)

	for _, pe := range o.corr.Drain() {
		if pe.Response != nil {
			o.completeExchange(pe)
		} else {
			o.stats.incCorrelationMiss()
		}
	}

	for _, entry := range o.wsAcc.FlushAll() {
		o.deliverEntry(entry)
	}

	o.sink.SetComment(o.summaryComment())
	if err := o.sink.Commit(); err != nil {
		return nil, fmt.Errorf("orchestrator: final commit: %w", err)
	}

	if o.builder != nil {
		return o.builder.GetHar()
	}
	if err := o.writer.Complete(); err != nil {
		return nil, fmt.Errorf("orchestrator: complete stream writer: %w", err)
	}
	return nil, nil
}

// StopAndSave stops the capture and, in in-memory mode, writes the
// resulting HAR to path (gzip-compressed if path ends in .gz). In
// streaming mode the file at OutputFilePath already holds the capture;
// StopAndSave still honors an explicit path by writing the in-memory
// metadata-only snapshot there for API symmetry.
func (o *Orchestrator) StopAndSave(ctx context.Context, path string) error {
	h, err := o.Stop(ctx)
	if err != nil {
		return err
	}
	if h == nil {
		return nil
	}
	return harmodel.WriteFile(path, h)
}

// GetHar returns an independent snapshot of the current document, per §4.5
// "GetHar (snapshot)". In streaming mode only metadata is returned since
// entries already live on disk.
func (o *Orchestrator) GetHar() (*harmodel.HAR, error) {
	if o.builder != nil {
		return o.builder.GetHar()
	}
	return &harmodel.HAR{Log: harmodel.NewEmptyLog(o.opts.CreatorName, "", o.opts.BrowserName, o.opts.BrowserVersion)}, nil
}

// Dispose disposes the adapter, idempotently. Disposing while Capturing
// implies Stop first, per §4.5.
func (o *Orchestrator) Dispose(ctx context.Context) error {
	needsStop := o.lc.dispose()
	if needsStop {
		if _, err := o.Stop(ctx); err != nil {
			o.logger.Warn().Err(err).Msg("stop during dispose failed")
		}
	}
	if o.ad == nil {
		return nil
	}
	return o.ad.Dispose(ctx)
}

// Stats returns a snapshot of the capture counters, per §4.5.2.
func (o *Orchestrator) Stats() Stats { return o.stats.snapshot() }

// RedactionCounters returns a snapshot of what the redactor has scrubbed
// this session.
func (o *Orchestrator) RedactionCounters() redaction.RedactionCounters {
	if o.redactor == nil {
		return redaction.RedactionCounters{}
	}
	return o.redactor.Counters()
}

func (o *Orchestrator) summaryComment() string {
	s := o.Stats()
	return fmt.Sprintf("capture summary: requests=%d responses=%d entries=%d dropped_excluded=%d dropped_paused=%d dropped_failed=%d dropped_correlation=%d",
		s.RequestsSeen, s.ResponsesSeen, s.EntriesEmitted, s.DroppedExcluded, s.DroppedPaused, s.DroppedFailed, s.DroppedCorrelation)
}
