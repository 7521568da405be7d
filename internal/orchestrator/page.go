// page.go — multi-page support, per §4.5 "Multi-page support": NewPage
// creates a HarPage and sets the current page ref; all subsequently
// completed entries carry that ref.
package orchestrator

import (
	"sync"

	"github.com/google/uuid"

	"github.com/dev-console/harcapture/internal/harmodel"
)

// pageTracker holds the current page reference under its own lock,
// separate from Orchestrator's main mutex — page changes are infrequent
// and reading the current ref must never contend with the hot
// entry-delivery path.
type pageTracker struct {
	mu  sync.RWMutex
	ref string
}

func newPageTracker() *pageTracker { return &pageTracker{} }

func (p *pageTracker) currentRef() string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.ref
}

func (p *pageTracker) setRef(ref string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.ref = ref
}

// newPageRef generates a page reference when the caller does not supply
// one, using google/uuid the way the teacher's session package mints
// opaque tokens for cross-request correlation.
func newPageRef() string {
	return "page_" + uuid.NewString()
}

// buildPage constructs a harmodel.Page for AddPage, defaulting the ref if
// empty.
func buildPage(ref, title, startedDateTime string) (*harmodel.Page, string) {
	if ref == "" {
		ref = newPageRef()
	}
	return &harmodel.Page{ID: ref, StartedDateTime: startedDateTime, Title: title, PageTimings: &harmodel.PageTimings{}}, ref
}
