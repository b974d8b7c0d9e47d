package reactive

import (
	"errors"
	"fmt"
)

// ErrDisposedSignal is returned when a signal is read or written after
// disposal. The operation performs no graph mutation.
var ErrDisposedSignal = errors.New("reflow: signal disposed")

// ErrCyclicDependency is returned when a read would add a dependency edge
// that closes a cycle in the reactive graph. The edge is rejected and the
// reader observes the last known value.
var ErrCyclicDependency = errors.New("reflow: cyclic dependency rejected")

// ErrDisposedComputation is returned when a disposed computation is reset
// or otherwise operated on.
var ErrDisposedComputation = errors.New("reflow: computation disposed")

// ErrFlushReentered is returned when Flush is called while a flush is
// already running. Writes made during a flush join the in-progress run;
// they never start a nested one.
var ErrFlushReentered = errors.New("reflow: flush re-entered")

// ErrOrderingViolation indicates the scheduler observed a depth-ordering
// contradiction mid-flush. This is an internal invariant failure; the
// flush aborts rather than committing an inconsistent tree.
var ErrOrderingViolation = errors.New("reflow: flush ordering invariant violated")

// ComputationError wraps a failure from an application computation body
// (render or effect). It is reported to the error collaborator; the flush
// that produced it continues with the remaining dirty set.
type ComputationError struct {
	Computation ComputationID
	Err         error
}

// Error implements the error interface.
func (e *ComputationError) Error() string {
	return fmt.Sprintf("reflow: computation %d failed: %v", e.Computation, e.Err)
}

// Unwrap returns the underlying error.
func (e *ComputationError) Unwrap() error {
	return e.Err
}
