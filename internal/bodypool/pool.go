// pool.go — bounded worker pool for response-body retrieval.
//
// GetResponseBody is a blocking round trip over the same DevTools control
// channel that request/response events flow over; issuing one per
// in-flight request would starve event delivery under load. Pool bounds
// concurrent retrievals to a fixed width (default 3, per §4.4) the way the
// teacher's CircuitBreaker bounds event throughput rather than connection
// count — a width limiter, not a retry/backoff mechanism.
package bodypool

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/dev-console/harcapture/internal/adapter"
)

// DefaultWidth is the recommended worker count from §4.4.
const DefaultWidth = 3

// Fetcher is the subset of adapter.Adapter the pool needs.
type Fetcher interface {
	GetResponseBody(ctx context.Context, requestID string) (text string, isBase64 bool, err error)
}

// Result is delivered to a Job's callback once retrieval completes (with
// success or a recoverable error).
type Result struct {
	RequestID string
	Text      string
	IsBase64  bool
	Err       error
}

// Pool runs GetResponseBody calls through a fixed-width worker set,
// optionally gated by a token-bucket rate limiter — the width caps how
// many fetches run at once, the limiter caps how fast new ones start.
type Pool struct {
	fetcher Fetcher
	sem     chan struct{}
	limiter *rate.Limiter

	wg     sync.WaitGroup
	mu     sync.Mutex
	closed bool
}

// Option configures a Pool at construction time.
type Option func(*Pool)

// WithRateLimit gates Submit so new fetches start at most at r per
// second, with burst allowed immediately. A page with hundreds of
// subresources otherwise floods GetResponseBody calls the instant
// LoadingFinished fires for all of them; this smooths that burst out
// independently of the width limit. No limiter is installed by default.
func WithRateLimit(r rate.Limit, burst int) Option {
	return func(p *Pool) { p.limiter = rate.NewLimiter(r, burst) }
}

// New constructs a Pool with the given width. width <= 0 uses
// DefaultWidth.
func New(fetcher Fetcher, width int, opts ...Option) *Pool {
	if width <= 0 {
		width = DefaultWidth
	}
	p := &Pool{fetcher: fetcher, sem: make(chan struct{}, width)}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Submit schedules a body fetch for requestID and calls onDone with the
// result once it completes. Submit returns immediately; onDone runs on a
// pool worker goroutine, never on the caller's goroutine. Submit is a
// no-op after Close.
func (p *Pool) Submit(ctx context.Context, requestID string, onDone func(Result)) {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		if onDone != nil {
			onDone(Result{RequestID: requestID, Err: &adapter.BodyError{Kind: adapter.BodyErrorSessionClosed}})
		}
		return
	}
	p.wg.Add(1)
	p.mu.Unlock()

	go func() {
		defer p.wg.Done()

		if p.limiter != nil {
			if err := p.limiter.Wait(ctx); err != nil {
				if onDone != nil {
					onDone(Result{RequestID: requestID, Err: err})
				}
				return
			}
		}

		select {
		case p.sem <- struct{}{}:
		case <-ctx.Done():
			if onDone != nil {
				onDone(Result{RequestID: requestID, Err: ctx.Err()})
			}
			return
		}
		defer func() { <-p.sem }()

		text, isBase64, err := p.fetcher.GetResponseBody(ctx, requestID)
		if onDone != nil {
			onDone(Result{RequestID: requestID, Text: text, IsBase64: isBase64, Err: err})
		}
	}()
}

// Close marks the pool closed to new submissions and waits up to
// drainTimeout for in-flight jobs to finish, per §4.4's "Stop waits up to
// 10s for outstanding body fetches". Jobs still running when the timeout
// elapses are abandoned; their onDone callbacks may still fire later.
func (p *Pool) Close(drainTimeout time.Duration) {
	p.mu.Lock()
	p.closed = true
	p.mu.Unlock()

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(drainTimeout):
	}
}
