// stats.go — capture summary counters, the supplemental feature named in
// §4.5.2: grounded in the teacher's debug_logger.go/circuit_breaker.go
// pattern of a single aggregate logged at Stop, generalized here into a
// small atomic counter set surfaced through Stats().
package orchestrator

import "sync/atomic"

// Stats is a point-in-time snapshot of capture counters.
type Stats struct {
	RequestsSeen      int64
	ResponsesSeen     int64
	EntriesEmitted    int64
	DroppedExcluded   int64
	DroppedPaused     int64
	DroppedFailed     int64
	DroppedCorrelation int64
}

type statsCounters struct {
	requestsSeen       int64
	responsesSeen      int64
	entriesEmitted     int64
	droppedExcluded    int64
	droppedPaused      int64
	droppedFailed      int64
	droppedCorrelation int64
}

func (s *statsCounters) incRequests()       { atomic.AddInt64(&s.requestsSeen, 1) }
func (s *statsCounters) incResponses()      { atomic.AddInt64(&s.responsesSeen, 1) }
func (s *statsCounters) incEmitted()        { atomic.AddInt64(&s.entriesEmitted, 1) }
func (s *statsCounters) incExcluded()       { atomic.AddInt64(&s.droppedExcluded, 1) }
func (s *statsCounters) incPausedDrop()     { atomic.AddInt64(&s.droppedPaused, 1) }
func (s *statsCounters) incFailed()         { atomic.AddInt64(&s.droppedFailed, 1) }
func (s *statsCounters) incCorrelationMiss() { atomic.AddInt64(&s.droppedCorrelation, 1) }

func (s *statsCounters) snapshot() Stats {
	return Stats{
		RequestsSeen:       atomic.LoadInt64(&s.requestsSeen),
		ResponsesSeen:      atomic.LoadInt64(&s.responsesSeen),
		EntriesEmitted:     atomic.LoadInt64(&s.entriesEmitted),
		DroppedExcluded:    atomic.LoadInt64(&s.droppedExcluded),
		DroppedPaused:      atomic.LoadInt64(&s.droppedPaused),
		DroppedFailed:      atomic.LoadInt64(&s.droppedFailed),
		DroppedCorrelation: atomic.LoadInt64(&s.droppedCorrelation),
	}
}
