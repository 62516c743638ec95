package topology

import (
	"fmt"
	"sort"

	"github.com/gluster/glustermgmt/pkg/api"
)

// ChangeKind classifies a single topology change.
type ChangeKind uint16

const (
	Added ChangeKind = iota
	Removed
	StateChanged
)

func (k ChangeKind) String() string {
	switch k {
	case Added:
		return "added"
	case Removed:
		return "removed"
	case StateChanged:
		return "state-changed"
	}
	return "invalid"
}

// Change describes one difference between two snapshots.
type Change struct {
	Kind   ChangeKind
	Entity string // "peer", "volume" or "brick"
	ID     string // peer UUID, volume name, or volume/host:path for bricks
	Old    string
	New    string
}

func (c Change) String() string {
	switch c.Kind {
	case StateChanged:
		return fmt.Sprintf("%s %s: %s -> %s", c.Entity, c.ID, c.Old, c.New)
	default:
		return fmt.Sprintf("%s %s %s", c.Entity, c.ID, c.Kind)
	}
}

// Diff reports what changed between two snapshots, ordered peers first,
// then volumes, then bricks, each sorted by ID.
func Diff(old, cur Snapshot) []Change {
	var changes []Change
	changes = append(changes, diffPeers(old.Peers, cur.Peers)...)
	changes = append(changes, diffVolumes(old.Volumes, cur.Volumes)...)
	return changes
}

func diffPeers(old, cur []api.Peer) []Change {
	prev := make(map[string]api.Peer, len(old))
	for _, p := range old {
		prev[p.ID.String()] = p
	}
	next := make(map[string]api.Peer, len(cur))
	for _, p := range cur {
		next[p.ID.String()] = p
	}

	var changes []Change
	for id, p := range next {
		o, ok := prev[id]
		if !ok {
			changes = append(changes, Change{Kind: Added, Entity: "peer", ID: id, New: p.State.String()})
			continue
		}
		if o.State != p.State || o.StateRaw != p.StateRaw {
			changes = append(changes, Change{
				Kind:   StateChanged,
				Entity: "peer",
				ID:     id,
				Old:    o.State.String(),
				New:    p.State.String(),
			})
		}
	}
	for id, o := range prev {
		if _, ok := next[id]; !ok {
			changes = append(changes, Change{Kind: Removed, Entity: "peer", ID: id, Old: o.State.String()})
		}
	}
	sortChanges(changes)
	return changes
}

func diffVolumes(old, cur []api.Volume) []Change {
	prev := make(map[string]api.Volume, len(old))
	for _, v := range old {
		prev[v.Name] = v
	}
	next := make(map[string]api.Volume, len(cur))
	for _, v := range cur {
		next[v.Name] = v
	}

	var changes []Change
	var brickChanges []Change
	for name, v := range next {
		o, ok := prev[name]
		if !ok {
			changes = append(changes, Change{Kind: Added, Entity: "volume", ID: name, New: v.State.String()})
			continue
		}
		if o.State != v.State {
			changes = append(changes, Change{
				Kind:   StateChanged,
				Entity: "volume",
				ID:     name,
				Old:    o.State.String(),
				New:    v.State.String(),
			})
		}
		brickChanges = append(brickChanges, diffBricks(name, o.Bricks, v.Bricks)...)
	}
	for name, o := range prev {
		if _, ok := next[name]; !ok {
			changes = append(changes, Change{Kind: Removed, Entity: "volume", ID: name, Old: o.State.String()})
		}
	}
	sortChanges(changes)
	sortChanges(brickChanges)
	return append(changes, brickChanges...)
}

func diffBricks(volume string, old, cur []api.Brick) []Change {
	prev := make(map[string]api.Brick, len(old))
	for _, b := range old {
		prev[b.String()] = b
	}
	next := make(map[string]api.Brick, len(cur))
	for _, b := range cur {
		next[b.String()] = b
	}

	var changes []Change
	for key, b := range next {
		o, ok := prev[key]
		if !ok {
			changes = append(changes, Change{
				Kind:   Added,
				Entity: "brick",
				ID:     volume + "/" + key,
				New:    b.Status.String(),
			})
			continue
		}
		if o.Status != b.Status {
			changes = append(changes, Change{
				Kind:   StateChanged,
				Entity: "brick",
				ID:     volume + "/" + key,
				Old:    o.Status.String(),
				New:    b.Status.String(),
			})
		}
	}
	for key, o := range prev {
		if _, ok := next[key]; !ok {
			changes = append(changes, Change{
				Kind:   Removed,
				Entity: "brick",
				ID:     volume + "/" + key,
				Old:    o.Status.String(),
			})
		}
	}
	return changes
}

func sortChanges(changes []Change) {
	sort.Slice(changes, func(i, j int) bool {
		if changes[i].ID != changes[j].ID {
			return changes[i].ID < changes[j].ID
		}
		return changes[i].Kind < changes[j].Kind
	})
}
