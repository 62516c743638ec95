// Package api contains the typed records that describe cluster state. The
// parser produces these records from raw node output and the topology model
// stores them; they carry no behaviour beyond state token handling.
package api

import (
	"strings"
	"time"

	"github.com/pborman/uuid"
)

// PeerState is the membership state of a peer.
type PeerState uint16

const (
	// PeerUnknown is used when the cluster did not report a state.
	PeerUnknown PeerState = iota
	// PeerProbing covers the handshake states between probe and acceptance.
	PeerProbing
	// PeerConnected means the peer is an accepted, reachable member.
	PeerConnected
	// PeerDisconnected means the peer is a member but currently unreachable.
	PeerDisconnected
	// PeerRejected means the peer was refused membership.
	PeerRejected
	// PeerUnrecognized is set for state tokens this client does not know.
	// The verbatim token is preserved in Peer.StateRaw.
	PeerUnrecognized
)

func (s PeerState) String() string {
	switch s {
	case PeerUnknown:
		return "unknown"
	case PeerProbing:
		return "probing"
	case PeerConnected:
		return "connected"
	case PeerDisconnected:
		return "disconnected"
	case PeerRejected:
		return "rejected"
	case PeerUnrecognized:
		return "unrecognized"
	default:
		return "invalid PeerState"
	}
}

// ParsePeerState maps a state token from peer status output onto a PeerState.
// Tokens introduced by newer cluster versions map to PeerUnrecognized so that
// they never fail a parse.
func ParsePeerState(token string) PeerState {
	switch strings.ToLower(strings.TrimSpace(token)) {
	case "connected", "peer in cluster", "connected to peer",
		"accepted peer request", "peer is connected and accepted":
		return PeerConnected
	case "disconnected", "peer detach in progress":
		return PeerDisconnected
	case "establishing connection", "probe sent to peer",
		"probe received from peer", "sent and received peer request":
		return PeerProbing
	case "peer rejected":
		return PeerRejected
	case "", "unknown":
		return PeerUnknown
	default:
		return PeerUnrecognized
	}
}

// Peer represents a node participating in the cluster management membership.
//
// ID is unique within a topology snapshot. Hostname may change without the
// identity changing.
type Peer struct {
	ID       uuid.UUID `json:"id"`
	Hostname string    `json:"hostname"`
	State    PeerState `json:"state"`
	// StateRaw holds the state token exactly as the cluster reported it.
	StateRaw string    `json:"state-raw,omitempty"`
	LastSeen time.Time `json:"last-seen"`
}
