// errors.go — sentinel errors surfaced by the orchestrator, in the
// teacher's internal/mcp/errors.go style: exported `var Err... = errors.New(...)`
// values, wrapped with fmt.Errorf("...: %w", ...) at the call site rather
// than a custom error-code type.
package orchestrator

import "errors"

var (
	// ErrOptionsInvalid is returned by Start when CaptureOptions fails
	// validation. The returned error wraps this sentinel and carries the
	// full list of violations in its message.
	ErrOptionsInvalid = errors.New("orchestrator: capture options invalid")

	// ErrCaptureNotStarted is returned by any operation that requires the
	// Capturing or Paused state when the orchestrator is still Idle.
	ErrCaptureNotStarted = errors.New("orchestrator: capture not started")

	// ErrCaptureAlreadyStarted is returned by Start when called more than
	// once per orchestrator lifetime.
	ErrCaptureAlreadyStarted = errors.New("orchestrator: capture already started")

	// ErrDisposed is returned by any operation attempted after Dispose.
	ErrDisposed = errors.New("orchestrator: orchestrator disposed")

	// ErrNoCapableAdapter is returned by Start when neither the primary
	// nor the fallback adapter can be constructed for the given driver.
	ErrNoCapableAdapter = errors.New("orchestrator: no capable adapter for driver")

	// ErrStreamFileUnwritable is returned by Start when streaming mode is
	// engaged but the output file cannot be opened.
	ErrStreamFileUnwritable = errors.New("orchestrator: stream output file unwritable")
)

// ValidationError aggregates every CaptureOptions rule violation found
// during Start, per §4.5 "a single error aggregates all violations
// found".
type ValidationError struct {
	Violations []string
}

func (e *ValidationError) Error() string {
	msg := "invalid capture options:"
	for _, v := range e.Violations {
		msg += " " + v + ";"
	}
	return msg
}

func (e *ValidationError) Unwrap() error { return ErrOptionsInvalid }
