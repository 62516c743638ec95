// Package topology holds the in-memory model of the cluster: every peer,
// volume and brick known at a point in time. The model is the only shared
// mutable state in the system. It exclusively owns its records; callers get
// deep copies and never references into the model. The true state lives in
// the remote cluster, so nothing here is ever persisted.
package topology

import (
	"sort"
	"sync"
	"time"

	"github.com/gluster/glustermgmt/pkg/api"
)

// Snapshot is an immutable view of all peers and volumes known at a point in
// time, tagged with the fetch timestamp of the newest record in it.
type Snapshot struct {
	Peers     []api.Peer
	Volumes   []api.Volume
	FetchedAt time.Time
}

// PeerByHostname returns the peer with the given hostname, or nil.
func (s Snapshot) PeerByHostname(hostname string) *api.Peer {
	for i := range s.Peers {
		if s.Peers[i].Hostname == hostname {
			return &s.Peers[i]
		}
	}
	return nil
}

// Volume returns the volume with the given name, or nil.
func (s Snapshot) Volume(name string) *api.Volume {
	for i := range s.Volumes {
		if s.Volumes[i].Name == name {
			return &s.Volumes[i]
		}
	}
	return nil
}

// BrickOwner returns the volume owning the given host:path brick, or nil.
func (s Snapshot) BrickOwner(hostname, path string) *api.Volume {
	for i := range s.Volumes {
		if s.Volumes[i].HasBrick(hostname, path) {
			return &s.Volumes[i]
		}
	}
	return nil
}

// Delta carries freshly fetched records into the model. A Full delta is a
// complete cluster listing: peers absent from it are dropped and volumes
// absent from it become state indeterminate. Deleted entries are only for
// deletions the cluster explicitly confirmed.
type Delta struct {
	Peers          []api.Peer
	Volumes        []api.Volume
	DeletedVolumes []string
	DeletedPeers   []string
	FetchedAt      time.Time
	Full           bool
}

type peerEntry struct {
	peer api.Peer
	seen time.Time
}

type volumeEntry struct {
	vol  api.Volume
	seen time.Time
}

// Model merges topology snapshots using last-write-wins by fetch timestamp
// per entity. Merging is idempotent and commutative for records carrying
// equal or newer timestamps. Reads copy, writes serialize.
type Model struct {
	mu      sync.RWMutex
	peers   map[string]peerEntry
	volumes map[string]volumeEntry
	fetched time.Time
}

// New returns an empty Model.
func New() *Model {
	return &Model{
		peers:   make(map[string]peerEntry),
		volumes: make(map[string]volumeEntry),
	}
}

// Apply merges a delta into the model. Records older than what the model
// already holds for the same entity are discarded.
func (m *Model) Apply(d Delta) {
	if d.FetchedAt.IsZero() {
		d.FetchedAt = time.Now()
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	for _, p := range d.Peers {
		key := p.ID.String()
		if e, ok := m.peers[key]; ok && d.FetchedAt.Before(e.seen) {
			continue
		}
		if p.LastSeen.IsZero() {
			p.LastSeen = d.FetchedAt
		}
		m.peers[key] = peerEntry{peer: copyPeer(p), seen: d.FetchedAt}
	}

	for _, v := range d.Volumes {
		if e, ok := m.volumes[v.Name]; ok && d.FetchedAt.Before(e.seen) {
			continue
		}
		m.volumes[v.Name] = volumeEntry{vol: copyVolume(v), seen: d.FetchedAt}
	}

	for _, name := range d.DeletedVolumes {
		if e, ok := m.volumes[name]; ok && d.FetchedAt.Before(e.seen) {
			continue
		}
		delete(m.volumes, name)
	}

	for _, id := range d.DeletedPeers {
		if e, ok := m.peers[id]; ok && d.FetchedAt.Before(e.seen) {
			continue
		}
		delete(m.peers, id)
	}

	if d.Full {
		// peers absent from a complete listing have left the pool
		for key, e := range m.peers {
			if e.seen.Before(d.FetchedAt) {
				delete(m.peers, key)
			}
		}
		// volumes absent from a complete listing are state
		// indeterminate, not deleted; deletion must be explicit
		for name, e := range m.volumes {
			if e.seen.Before(d.FetchedAt) {
				e.vol.State = api.VolUnknown
				e.vol.StateRaw = ""
				e.seen = d.FetchedAt
				m.volumes[name] = e
			}
		}
	}

	if d.FetchedAt.After(m.fetched) {
		m.fetched = d.FetchedAt
	}
}

// Current returns an immutable snapshot of the model, sorted for stable
// iteration.
func (m *Model) Current() Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s := Snapshot{FetchedAt: m.fetched}
	for _, e := range m.peers {
		s.Peers = append(s.Peers, copyPeer(e.peer))
	}
	for _, e := range m.volumes {
		s.Volumes = append(s.Volumes, copyVolume(e.vol))
	}
	sort.Slice(s.Peers, func(i, j int) bool {
		return s.Peers[i].ID.String() < s.Peers[j].ID.String()
	})
	sort.Slice(s.Volumes, func(i, j int) bool {
		return s.Volumes[i].Name < s.Volumes[j].Name
	})
	return s
}

func copyPeer(p api.Peer) api.Peer {
	c := p
	if p.ID != nil {
		c.ID = append([]byte(nil), p.ID...)
	}
	return c
}

func copyVolume(v api.Volume) api.Volume {
	c := v
	if v.ID != nil {
		c.ID = append([]byte(nil), v.ID...)
	}
	if v.Options != nil {
		c.Options = make(map[string]string, len(v.Options))
		for k, val := range v.Options {
			c.Options[k] = val
		}
	}
	if v.Bricks != nil {
		c.Bricks = make([]api.Brick, len(v.Bricks))
		copy(c.Bricks, v.Bricks)
		for i := range c.Bricks {
			if v.Bricks[i].PeerID != nil {
				c.Bricks[i].PeerID = append([]byte(nil), v.Bricks[i].PeerID...)
			}
		}
	}
	return c
}
