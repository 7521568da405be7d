// builder.go — in-memory HAR document state and the GetHar snapshot
// contract. Grounded in the teacher's internal/export/export_har.go
// field-by-field HAR assembly, generalized here from a one-shot exporter
// into a live, appendable sink that the orchestrator feeds entries into as
// the capture progresses.
package harbuilder

import (
	"sync"

	"github.com/dev-console/harcapture/internal/harmodel"
)

// Builder owns the live HAR document for one capture session. All
// mutating methods and GetHar are safe for concurrent use; mu guards the
// whole *harmodel.Log the way Capture.mu guards the teacher's ring
// buffers — callers must never retain a pointer into the Log returned by
// the non-snapshotting accessors.
type Builder struct {
	mu  sync.Mutex
	log *harmodel.Log
}

// New constructs a Builder with an empty log stamped with the given
// creator/browser identity.
func New(creatorName, creatorVersion, browserName, browserVersion string) *Builder {
	return &Builder{log: harmodel.NewEmptyLog(creatorName, creatorVersion, browserName, browserVersion)}
}

// AddPage appends a page descriptor (one per navigation, per §4.5 "AddPage
// on navigation").
func (b *Builder) AddPage(p *harmodel.Page) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.log.Pages = append(b.log.Pages, p)
}

// AddEntry appends a completed HAR entry.
func (b *Builder) AddEntry(e *harmodel.Entry) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.log.Entries = append(b.log.Entries, e)
}

// AddEntries appends a batch of entries in one lock acquisition, used when
// flushing several synthesized WebSocket entries at once.
func (b *Builder) AddEntries(entries []*harmodel.Entry) {
	if len(entries) == 0 {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.log.Entries = append(b.log.Entries, entries...)
}

// EntryCount reports the number of entries currently held.
func (b *Builder) EntryCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.log.Entries)
}

// GetHar returns a deep, independent copy of the current document — the
// caller may mutate the result freely without racing the builder's own
// append goroutine, per §8 testable property 5 ("GetHar returns an
// independent object graph on every call").
func (b *Builder) GetHar() (*harmodel.HAR, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return harmodel.Clone(&harmodel.HAR{Log: b.log})
}

// SetComment attaches a top-level comment to the log, used by the
// orchestrator to record the capture summary at Stop (§4.5.2).
func (b *Builder) SetComment(comment string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.log.Comment = comment
}

// SetCustom stamps the caller-supplied CustomMetadata onto the log's
// _custom extension field.
func (b *Builder) SetCustom(custom map[string]interface{}) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.log.Custom = custom
}
