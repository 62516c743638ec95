package api

import "strings"

// RebalanceState is the reported state of a rebalance job on one node.
type RebalanceState uint16

const (
	// RebalanceNotStarted means no job has run on the node.
	RebalanceNotStarted RebalanceState = iota
	// RebalanceInProgress means the job is running.
	RebalanceInProgress
	// RebalanceCompleted means the job finished successfully.
	RebalanceCompleted
	// RebalanceFailed means the job aborted.
	RebalanceFailed
	// RebalanceStopped means the job was stopped by request.
	RebalanceStopped
	// RebalanceUnrecognized is set for tokens this client does not know.
	RebalanceUnrecognized
)

func (s RebalanceState) String() string {
	switch s {
	case RebalanceNotStarted:
		return "not started"
	case RebalanceInProgress:
		return "in progress"
	case RebalanceCompleted:
		return "completed"
	case RebalanceFailed:
		return "failed"
	case RebalanceStopped:
		return "stopped"
	case RebalanceUnrecognized:
		return "unrecognized"
	default:
		return "invalid RebalanceState"
	}
}

// ParseRebalanceState maps a rebalance status token onto a RebalanceState.
func ParseRebalanceState(token string) RebalanceState {
	switch strings.ToLower(strings.TrimSpace(token)) {
	case "not started":
		return RebalanceNotStarted
	case "in progress":
		return RebalanceInProgress
	case "completed":
		return RebalanceCompleted
	case "failed":
		return RebalanceFailed
	case "stopped":
		return RebalanceStopped
	default:
		return RebalanceUnrecognized
	}
}

// RebalanceNodeStatus is the progress of a rebalance job on a single node.
// Counters are best effort; unparsable values are left zero.
type RebalanceNodeStatus struct {
	Node       string         `json:"node"`
	Rebalanced uint64         `json:"rebalanced"`
	Size       uint64         `json:"size"`
	Scanned    uint64         `json:"scanned"`
	Failures   uint64         `json:"failures"`
	Skipped    uint64         `json:"skipped"`
	State      RebalanceState `json:"state"`
	StateRaw   string         `json:"state-raw,omitempty"`
	Runtime    string         `json:"runtime,omitempty"`
}
