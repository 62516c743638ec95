package gerrors

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// TransportError reports a failure to reach a node at all. It is the only
// error kind the orchestrator retries.
type TransportError struct {
	Node string
	Err  error
}

func (e *TransportError) Error() string {
	if e.Node == "" {
		return fmt.Sprintf("transport error: %v", e.Err)
	}
	return fmt.Sprintf("transport error on %s: %v", e.Node, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// IsTransport reports whether err is or wraps a TransportError.
func IsTransport(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}

// ParseError reports node output that could not be turned into a typed
// record. It indicates format drift and is never retried; the offending
// fragment is preserved for the log.
type ParseError struct {
	Kind     string
	Fragment string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("cannot parse %s output near %q", e.Kind, e.Fragment)
}

// SemanticRejection means the cluster understood and refused the request.
// The reason is surfaced verbatim and the request is never retried.
type SemanticRejection struct {
	Reason string
}

func (e *SemanticRejection) Error() string {
	return "cluster rejected request: " + e.Reason
}

// InvalidTransition reports a volume lifecycle transition that is not
// permitted. It is raised locally, before any cluster contact.
type InvalidTransition struct {
	Volume string
	From   string
	To     string
}

func (e *InvalidTransition) Error() string {
	return fmt.Sprintf("volume %s: invalid transition %s -> %s", e.Volume, e.From, e.To)
}

// InvalidTopology reports a request whose brick layout cannot form a valid
// volume, for example a brick count that is not a multiple of the replica
// count. Raised locally.
type InvalidTopology struct {
	Reason string
}

func (e *InvalidTopology) Error() string {
	return "invalid topology: " + e.Reason
}

// BrickConflict reports a brick path that is already assigned to another
// volume.
type BrickConflict struct {
	Brick  string
	Volume string
}

func (e *BrickConflict) Error() string {
	return fmt.Sprintf("brick %s is already used by volume %s", e.Brick, e.Volume)
}

// PeerUnreachable reports that a peer could not be contacted even after the
// bounded retry budget was spent.
type PeerUnreachable struct {
	Address string
	Err     error
}

func (e *PeerUnreachable) Error() string {
	return fmt.Sprintf("peer %s unreachable: %v", e.Address, e.Err)
}

func (e *PeerUnreachable) Unwrap() error { return e.Err }

// ProbeTimeout reports that a probed peer did not reach the connected state
// within the poll budget.
type ProbeTimeout struct {
	Address string
	Waited  time.Duration
}

func (e *ProbeTimeout) Error() string {
	return fmt.Sprintf("peer %s did not connect within %s", e.Address, e.Waited)
}

// PartialFailure reports a multi-step operation that stopped partway.
// Completed steps are not rolled back; the cluster offers no transactions,
// so the contract is to report exactly how far the operation got.
type PartialFailure struct {
	Op         string
	Completed  []string
	FailedStep string
	Cause      error
}

func (e *PartialFailure) Error() string {
	return fmt.Sprintf("%s: step %s failed after [%s]: %v",
		e.Op, e.FailedStep, strings.Join(e.Completed, ", "), e.Cause)
}

func (e *PartialFailure) Unwrap() error { return e.Cause }

// OperationTimedOut reports that an operation's poll budget was exceeded
// before the post-condition could be confirmed. LastState is the last state
// observed for the affected entity.
type OperationTimedOut struct {
	Op        string
	LastState string
}

func (e *OperationTimedOut) Error() string {
	return fmt.Sprintf("%s timed out, last observed state: %s", e.Op, e.LastState)
}
