// codec.go — JSON (and gzip-wrapped JSON) serialisation for HAR documents.
// The codec is deliberately dumb: it owns no capture state and is safe to
// call from any goroutine.
package harmodel

import (
	"bytes"
	"compress/gzip"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
)

// Marshal serialises a HAR document to indented JSON.
func Marshal(h *HAR) ([]byte, error) {
	return json.MarshalIndent(h, "", "  ")
}

// Unmarshal parses a HAR document from JSON.
func Unmarshal(data []byte) (*HAR, error) {
	var h HAR
	if err := json.Unmarshal(data, &h); err != nil {
		return nil, fmt.Errorf("harmodel: unmarshal: %w", err)
	}
	return &h, nil
}

// Clone returns an independent deep copy of h by round-tripping through
// JSON. Used by the in-memory builder to satisfy GetHar's "independent
// object graph" guarantee (§8 testable property 5).
func Clone(h *HAR) (*HAR, error) {
	data, err := Marshal(h)
	if err != nil {
		return nil, err
	}
	return Unmarshal(data)
}

// WriteFile writes a HAR document to path, gzip-compressing when the path
// ends in ".gz".
func WriteFile(path string, h *HAR) error {
	data, err := Marshal(h)
	if err != nil {
		return err
	}
	if strings.HasSuffix(path, ".gz") {
		var buf bytes.Buffer
		gw := gzip.NewWriter(&buf)
		if _, err := gw.Write(data); err != nil {
			return fmt.Errorf("harmodel: gzip write: %w", err)
		}
		if err := gw.Close(); err != nil {
			return fmt.Errorf("harmodel: gzip close: %w", err)
		}
		data = buf.Bytes()
	}
	return os.WriteFile(path, data, 0o644)
}

// ReadFile loads a HAR document from path, auto-detecting gzip by file
// extension (".gz") per §6 "serializer auto-detects .gz".
func ReadFile(path string) (*HAR, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("harmodel: read file: %w", err)
	}
	if strings.HasSuffix(path, ".gz") {
		gr, err := gzip.NewReader(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("harmodel: gzip reader: %w", err)
		}
		defer gr.Close()
		data, err = io.ReadAll(gr)
		if err != nil {
			return nil, fmt.Errorf("harmodel: gzip read: %w", err)
		}
	}
	return Unmarshal(data)
}
