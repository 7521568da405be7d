package bodypool

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

type fakeFetcher struct {
	mu         sync.Mutex
	inFlight   int32
	maxSeen    int32
	delay      time.Duration
}

func (f *fakeFetcher) GetResponseBody(ctx context.Context, requestID string) (string, bool, error) {
	n := atomic.AddInt32(&f.inFlight, 1)
	defer atomic.AddInt32(&f.inFlight, -1)
	f.mu.Lock()
	if n > f.maxSeen {
		f.maxSeen = n
	}
	f.mu.Unlock()
	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	return "body:" + requestID, false, nil
}

func TestSubmitBoundsConcurrency(t *testing.T) {
	f := &fakeFetcher{delay: 20 * time.Millisecond}
	p := New(f, 2)
	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		p.Submit(context.Background(), "r", func(Result) { wg.Done() })
	}
	wg.Wait()
	assert.LessOrEqual(t, f.maxSeen, int32(2))
}

func TestSubmitDeliversResult(t *testing.T) {
	f := &fakeFetcher{}
	p := New(f, 3)
	resCh := make(chan Result, 1)
	p.Submit(context.Background(), "abc", func(r Result) { resCh <- r })
	r := <-resCh
	require.NoError(t, r.Err)
	assert.Equal(t, "body:abc", r.Text)
}

func TestCloseWaitsForInFlightThenReturns(t *testing.T) {
	f := &fakeFetcher{delay: 10 * time.Millisecond}
	p := New(f, 1)
	done := make(chan struct{})
	p.Submit(context.Background(), "x", func(Result) { close(done) })
	p.Close(time.Second)
	select {
	case <-done:
	default:
		t.Fatal("expected job to complete before Close returned")
	}
}

func TestWithRateLimitThrottlesDispatch(t *testing.T) {
	f := &fakeFetcher{}
	p := New(f, 10, WithRateLimit(rate.Limit(10), 1))

	start := time.Now()
	var wg sync.WaitGroup
	for i := 0; i < 3; i++ {
		wg.Add(1)
		p.Submit(context.Background(), "r", func(Result) { wg.Done() })
	}
	wg.Wait()
	assert.GreaterOrEqual(t, time.Since(start), 150*time.Millisecond)
}

func TestSubmitAfterCloseReturnsSessionClosedError(t *testing.T) {
	f := &fakeFetcher{}
	p := New(f, 1)
	p.Close(time.Second)
	resCh := make(chan Result, 1)
	p.Submit(context.Background(), "y", func(r Result) { resCh <- r })
	r := <-resCh
	assert.Error(t, r.Err)
}
