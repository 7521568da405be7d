// sink.go — the two concrete destinations a finished entry can land in:
// the in-memory harbuilder.Builder, or the streamwriter.Writer. Both
// satisfy entrySink so pipeline.go never branches on capture mode itself.
package orchestrator

import (
	"github.com/dev-console/harcapture/internal/harbuilder"
	"github.com/dev-console/harcapture/internal/harmodel"
	"github.com/dev-console/harcapture/internal/streamwriter"
)

// entrySink is the minimal surface the pipeline needs from either sink
// implementation.
type entrySink interface {
	AddEntry(e *harmodel.Entry)
	AddPage(p *harmodel.Page)
	SetComment(c string)
	SetCustom(custom map[string]interface{})
	// Commit persists pending writes. A no-op for the in-memory sink;
	// for the streaming sink it is the per-append footer rewrite that
	// keeps the file valid HAR at rest (§4.6).
	Commit() error
}

type memorySink struct{ b *harbuilder.Builder }

func (m memorySink) AddEntry(e *harmodel.Entry)              { m.b.AddEntry(e) }
func (m memorySink) AddPage(p *harmodel.Page)                { m.b.AddPage(p) }
func (m memorySink) SetComment(c string)                     { m.b.SetComment(c) }
func (m memorySink) SetCustom(custom map[string]interface{}) { m.b.SetCustom(custom) }
func (m memorySink) Commit() error                           { return nil }

type streamSink struct{ w *streamwriter.Writer }

func (s streamSink) AddEntry(e *harmodel.Entry)              { s.w.AddEntry(e) }
func (s streamSink) AddPage(p *harmodel.Page)                { s.w.AddPage(p) }
func (s streamSink) SetComment(c string)                     { s.w.SetComment(c) }
func (s streamSink) SetCustom(custom map[string]interface{}) { s.w.SetCustom(custom) }
func (s streamSink) Commit() error                           { return s.w.Flush() }
