// logger.go — structured logging backend shared by the orchestrator,
// adapters, and streaming writer. Wraps zerolog the way the teacher
// wraps os.Stderr fmt.Fprintf calls in internal/capture/websocket.go,
// but with structured fields instead of ad-hoc string formatting —
// zerolog is the pack's logging library of choice
// (streamspace-dev-streamspace/api/go.mod), not present in the teacher's
// own zero-dependency tree.
package obslog

import (
	"io"
	"os"

	"github.com/rs/zerolog"
)

// New builds a zerolog.Logger writing to w (os.Stderr if w is nil),
// tagged with component=name. When logFilePath is non-empty, logs are
// written there instead (truncated on open is not attempted — the file
// is appended to, matching LogFilePath's "diagnostic log file" framing
// in §6 rather than a rotate-on-start policy).
func New(name string, logFilePath string) zerolog.Logger {
	var w io.Writer = os.Stderr
	if logFilePath != "" {
		if f, err := os.OpenFile(logFilePath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644); err == nil {
			w = f
		}
	}
	return zerolog.New(w).With().Timestamp().Str("component", name).Logger()
}

// Discard returns a logger that drops everything, for tests that don't
// want diagnostic noise.
func Discard() zerolog.Logger {
	return zerolog.New(io.Discard)
}
