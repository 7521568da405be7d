// writer.go — incremental, crash-safe HAR file writer.
//
// A capture session can run for hours; holding the whole document in
// memory and writing it once at Stop risks losing everything on a crash.
// Writer instead rewrites the file on every Flush: header + all entries
// seen so far + a closing footer, so the file on disk is always a
// complete, parseable HAR document, never a half-written fragment. This
// mirrors the teacher's streaming package's "always-valid" framing for
// StreamState.Writer (types.go) but adapted to a file target and to HAR's
// structural constraints rather than newline-delimited JSON notifications.
package streamwriter

import (
	"bufio"
	"bytes"
	"compress/gzip"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/dev-console/harcapture/internal/harmodel"
)

// DefaultMaxOutputFileSize caps the written file at 512MiB before Writer
// stops accepting new entries and marks the document truncated (§4.6
// "graceful overflow").
const DefaultMaxOutputFileSize = 512 * 1024 * 1024

// Writer incrementally persists a HAR document to path. It is not safe
// for concurrent Flush calls from multiple goroutines; the orchestrator
// serializes all Flush calls through its own single capture goroutine.
type Writer struct {
	path          string
	gzip          bool
	maxSize       int64

	mu        sync.Mutex
	creator   *harmodel.Creator
	browser   *harmodel.Browser
	pages     []*harmodel.Page
	entries   []*harmodel.Entry
	comment   string
	custom    map[string]interface{}
	truncated bool
	closed    bool
}

// New constructs a Writer targeting path. Gzip compression is used when
// path ends in ".gz", matching harmodel.ReadFile/WriteFile's convention.
// maxSize <= 0 uses DefaultMaxOutputFileSize.
func New(path string, creatorName, creatorVersion, browserName, browserVersion string, maxSize int64) *Writer {
	if maxSize <= 0 {
		maxSize = DefaultMaxOutputFileSize
	}
	w := &Writer{
		path:    path,
		gzip:    strings.HasSuffix(path, ".gz"),
		maxSize: maxSize,
		creator: &harmodel.Creator{Name: creatorName, Version: creatorVersion},
	}
	if browserName != "" {
		w.browser = &harmodel.Browser{Name: browserName, Version: browserVersion}
	}
	return w
}

// AddPage records a page descriptor for the next flush.
func (w *Writer) AddPage(p *harmodel.Page) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.pages = append(w.pages, p)
}

// AddEntry records an entry for the next flush. Once the writer has
// marked the document truncated, further entries are silently dropped —
// the file already carries a comment recording that fact.
func (w *Writer) AddEntry(e *harmodel.Entry) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.truncated {
		return
	}
	w.entries = append(w.entries, e)
}

// SetComment sets the top-level log comment for subsequent flushes.
func (w *Writer) SetComment(comment string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.comment = comment
}

// SetCustom stamps the caller-supplied CustomMetadata onto the log's
// _custom extension field, once, before the first Flush.
func (w *Writer) SetCustom(custom map[string]interface{}) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.custom = custom
}

// Flush rewrites the output file from the accumulated state. If the
// resulting document would exceed maxSize, Flush instead writes the
// largest prefix of entries that fits, marks the document truncated, and
// all further AddEntry calls become no-ops.
func (w *Writer) Flush() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return fmt.Errorf("streamwriter: flush after close")
	}
	return w.writeLocked()
}

func (w *Writer) writeLocked() error {
	data, err := w.marshalLocked()
	if err != nil {
		return fmt.Errorf("streamwriter: marshal: %w", err)
	}

	if int64(len(data)) > w.maxSize && !w.truncated {
		w.truncated = true
		lo, hi := 0, len(w.entries)
		for lo < hi {
			mid := (lo + hi + 1) / 2
			trial := w.entries[:mid]
			saved := w.entries
			w.entries = trial
			d, err := w.marshalLocked()
			w.entries = saved
			if err == nil && int64(len(d)) <= w.maxSize {
				lo = mid
			} else {
				hi = mid - 1
			}
		}
		w.entries = w.entries[:lo]
		w.comment = appendTruncatedNote(w.comment)
		data, err = w.marshalLocked()
		if err != nil {
			return fmt.Errorf("streamwriter: marshal after truncation: %w", err)
		}
	}

	return w.writeFile(data)
}

func (w *Writer) marshalLocked() ([]byte, error) {
	log := &harmodel.Log{
		Version: "1.2",
		Creator: w.creator,
		Browser: w.browser,
		Pages:   w.pages,
		Entries: w.entries,
		Comment: w.comment,
		Custom:  w.custom,
	}
	return harmodel.Marshal(&harmodel.HAR{Log: log})
}

func (w *Writer) writeFile(data []byte) error {
	tmp := w.path + ".tmp"
	f, err := os.OpenFile(tmp, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("streamwriter: open temp file: %w", err)
	}

	bw := bufio.NewWriter(f)
	var writeErr error
	if w.gzip {
		var buf bytes.Buffer
		gw := gzip.NewWriter(&buf)
		if _, writeErr = gw.Write(data); writeErr == nil {
			writeErr = gw.Close()
		}
		if writeErr == nil {
			_, writeErr = bw.Write(buf.Bytes())
		}
	} else {
		_, writeErr = bw.Write(data)
	}
	if writeErr == nil {
		writeErr = bw.Flush()
	}
	closeErr := f.Close()
	if writeErr != nil {
		os.Remove(tmp)
		return fmt.Errorf("streamwriter: write temp file: %w", writeErr)
	}
	if closeErr != nil {
		os.Remove(tmp)
		return fmt.Errorf("streamwriter: close temp file: %w", closeErr)
	}
	if err := os.Rename(tmp, w.path); err != nil {
		return fmt.Errorf("streamwriter: rename temp file: %w", err)
	}
	return nil
}

// Truncated reports whether the last Flush had to drop entries to stay
// under maxSize.
func (w *Writer) Truncated() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.truncated
}

// Complete performs a final Flush and marks the writer closed — further
// AddEntry/Flush calls after Complete return an error rather than
// silently doing nothing, so a programming mistake surfaces immediately.
func (w *Writer) Complete() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return nil
	}
	err := w.writeLocked()
	w.closed = true
	return err
}

// Dispose releases in-memory state without writing again, used when a
// session is abandoned before Complete (e.g. Attach failed partway). It is
// idempotent.
func (w *Writer) Dispose() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.entries = nil
	w.pages = nil
	w.closed = true
}

func appendTruncatedNote(existing string) string {
	const note = "capture truncated: output file size limit reached"
	if existing == "" {
		return note
	}
	if strings.Contains(existing, note) {
		return existing
	}
	return existing + "; " + note
}
