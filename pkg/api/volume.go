package api

import (
	"strings"

	"github.com/pborman/uuid"
)

// VolState is the lifecycle state of a volume.
type VolState uint16

const (
	// VolUnknown means the state could not be confirmed on a fresh fetch.
	// It is explicitly not the same as deleted.
	VolUnknown VolState = iota
	// VolCreated is a volume that has been created but never started.
	VolCreated
	// VolStarted is a running volume.
	VolStarted
	// VolStopped is a stopped volume, excluding newly created ones.
	VolStopped
	// VolDeleting is a volume whose deletion has been issued but not yet
	// confirmed absent by a status fetch.
	VolDeleting
	// VolUnrecognized is set for state tokens this client does not know.
	VolUnrecognized
)

func (s VolState) String() string {
	switch s {
	case VolUnknown:
		return "unknown"
	case VolCreated:
		return "created"
	case VolStarted:
		return "started"
	case VolStopped:
		return "stopped"
	case VolDeleting:
		return "deleting"
	case VolUnrecognized:
		return "unrecognized"
	default:
		return "invalid VolState"
	}
}

// ParseVolState maps a volume status token onto a VolState. Unknown tokens
// map to VolUnrecognized, never an error.
func ParseVolState(token string) VolState {
	switch strings.ToLower(strings.TrimSpace(token)) {
	case "created":
		return VolCreated
	case "started":
		return VolStarted
	case "stopped":
		return VolStopped
	case "deleting":
		return VolDeleting
	case "", "unknown":
		return VolUnknown
	default:
		return VolUnrecognized
	}
}

// VolType is the distribution scheme of a volume.
type VolType uint16

const (
	// Distribute is a plain distribute volume
	Distribute VolType = iota
	// Replicate is a plain replicate volume
	Replicate
	// Disperse is a plain erasure coded volume
	Disperse
	// DistReplicate is a distribute-replicate volume
	DistReplicate
	// DistDisperse is a distribute-'erasure coded' volume
	DistDisperse
	// UnknownVolType is set for type tokens this client does not know.
	UnknownVolType
)

func (t VolType) String() string {
	switch t {
	case Distribute:
		return "Distribute"
	case Replicate:
		return "Replicate"
	case Disperse:
		return "Disperse"
	case DistReplicate:
		return "Distributed-Replicate"
	case DistDisperse:
		return "Distributed-Disperse"
	default:
		return "unknown"
	}
}

// ParseVolType maps a volume type token onto a VolType.
func ParseVolType(token string) VolType {
	switch strings.ToLower(strings.TrimSpace(token)) {
	case "distribute":
		return Distribute
	case "replicate":
		return Replicate
	case "disperse":
		return Disperse
	case "distributed-replicate":
		return DistReplicate
	case "distributed-disperse":
		return DistDisperse
	default:
		return UnknownVolType
	}
}

// Replicated reports whether volumes of this type carry replica sets.
func (t VolType) Replicated() bool {
	return t == Replicate || t == DistReplicate
}

// Dispersed reports whether volumes of this type carry disperse sets.
func (t VolType) Dispersed() bool {
	return t == Disperse || t == DistDisperse
}

// BrickStatus is the reported availability of a brick process.
type BrickStatus uint16

const (
	// BrickUnknown is used when no status information was available.
	BrickUnknown BrickStatus = iota
	// BrickOnline means the brick process is up.
	BrickOnline
	// BrickOffline means the brick process is down.
	BrickOffline
)

func (s BrickStatus) String() string {
	switch s {
	case BrickOnline:
		return "online"
	case BrickOffline:
		return "offline"
	default:
		return "unknown"
	}
}

// Brick is a filesystem directory on a peer, the atomic unit of storage
// exported to a volume. The peer reference is weak: a brick may outlive its
// peer's topology entry, which is a detectable inconsistency, not a fault.
type Brick struct {
	PeerID   uuid.UUID   `json:"peer-id,omitempty"`
	Hostname string      `json:"hostname"`
	Path     string      `json:"path"`
	Status   BrickStatus `json:"status"`
	Port     int         `json:"port,omitempty"`
	Pid      int         `json:"pid,omitempty"`
	// Size and Used are best effort and may be zero.
	Size uint64 `json:"size,omitempty"`
	Used uint64 `json:"used,omitempty"`
}

func (b Brick) String() string {
	return b.Hostname + ":" + b.Path
}

// Volume is a logical storage unit composed of one or more bricks under a
// distribution/replication scheme.
type Volume struct {
	ID            uuid.UUID         `json:"id"`
	Name          string            `json:"name"`
	Type          VolType           `json:"type"`
	State         VolState          `json:"state"`
	StateRaw      string            `json:"state-raw,omitempty"`
	Transport     string            `json:"transport,omitempty"`
	DistCount     int               `json:"dist-count,omitempty"`
	ReplicaCount  int               `json:"replica-count,omitempty"`
	DisperseCount int               `json:"disperse-count,omitempty"`
	Options       map[string]string `json:"options,omitempty"`
	Bricks        []Brick           `json:"bricks"`
}

// HasBrick reports whether the volume contains the given host:path brick.
func (v *Volume) HasBrick(hostname, path string) bool {
	for _, b := range v.Bricks {
		if b.Hostname == hostname && b.Path == path {
			return true
		}
	}
	return false
}
