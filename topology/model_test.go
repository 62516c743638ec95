package topology

import (
	"testing"
	"time"

	"github.com/gluster/glustermgmt/pkg/api"

	"github.com/google/go-cmp/cmp"
	"github.com/pborman/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	peer1ID = uuid.Parse("afbd338e-881b-4557-8764-52e259885ca3")
	peer2ID = uuid.Parse("fa3b031a-c4ef-43c5-892d-4b909bc5cd5d")

	t1 = time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	t2 = t1.Add(time.Minute)
	t3 = t1.Add(2 * time.Minute)
)

func fullDelta(at time.Time, peers []api.Peer, vols []api.Volume) Delta {
	return Delta{Peers: peers, Volumes: vols, FetchedAt: at, Full: true}
}

func TestModelApplyIdempotent(t *testing.T) {
	d := fullDelta(t1,
		[]api.Peer{{ID: peer1ID, Hostname: "10.0.3.207", State: api.PeerConnected}},
		[]api.Volume{{Name: "v1", State: api.VolStarted}})

	m := New()
	m.Apply(d)
	first := m.Current()
	m.Apply(d)
	second := m.Current()

	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("reapplying the same delta changed the model:\n%s", diff)
	}
}

func TestModelApplyMonotonic(t *testing.T) {
	older := fullDelta(t1,
		[]api.Peer{{ID: peer1ID, Hostname: "10.0.3.207", State: api.PeerProbing}},
		[]api.Volume{{Name: "v1", State: api.VolCreated}})
	newer := fullDelta(t2,
		[]api.Peer{{ID: peer1ID, Hostname: "10.0.3.207", State: api.PeerConnected}},
		[]api.Volume{{Name: "v1", State: api.VolStarted}})

	inOrder := New()
	inOrder.Apply(older)
	inOrder.Apply(newer)

	newerOnly := New()
	newerOnly.Apply(newer)

	if diff := cmp.Diff(newerOnly.Current(), inOrder.Current()); diff != "" {
		t.Errorf("old-then-new differs from new alone:\n%s", diff)
	}

	// a stale delta arriving late must not regress the model
	inOrder.Apply(older)
	if diff := cmp.Diff(newerOnly.Current(), inOrder.Current()); diff != "" {
		t.Errorf("stale delta regressed the model:\n%s", diff)
	}
}

func TestModelFullDeltaDropsAbsentPeers(t *testing.T) {
	m := New()
	m.Apply(fullDelta(t1, []api.Peer{
		{ID: peer1ID, Hostname: "10.0.3.207", State: api.PeerConnected},
		{ID: peer2ID, Hostname: "10.0.3.208", State: api.PeerConnected},
	}, nil))

	m.Apply(fullDelta(t2, []api.Peer{
		{ID: peer1ID, Hostname: "10.0.3.207", State: api.PeerConnected},
	}, nil))

	s := m.Current()
	require.Len(t, s.Peers, 1)
	assert.Equal(t, "10.0.3.207", s.Peers[0].Hostname)
}

func TestModelFullDeltaMarksAbsentVolumesUnknown(t *testing.T) {
	m := New()
	m.Apply(fullDelta(t1, nil, []api.Volume{
		{Name: "v1", State: api.VolStarted, StateRaw: "Started"},
	}))

	// v1 missing from a complete listing: state indeterminate, not deleted
	m.Apply(fullDelta(t2, nil, []api.Volume{{Name: "v2", State: api.VolCreated}}))

	s := m.Current()
	require.Len(t, s.Volumes, 2)
	v1 := s.Volume("v1")
	require.NotNil(t, v1)
	assert.Equal(t, api.VolUnknown, v1.State)
	assert.Empty(t, v1.StateRaw)
}

func TestModelExplicitDeletion(t *testing.T) {
	m := New()
	m.Apply(fullDelta(t1, nil, []api.Volume{{Name: "v1", State: api.VolStopped}}))

	m.Apply(Delta{DeletedVolumes: []string{"v1"}, FetchedAt: t2})
	assert.Nil(t, m.Current().Volume("v1"))

	// a stale deletion must not remove a newer record
	m.Apply(Delta{Volumes: []api.Volume{{Name: "v2", State: api.VolStarted}}, FetchedAt: t3})
	m.Apply(Delta{DeletedVolumes: []string{"v2"}, FetchedAt: t2})
	assert.NotNil(t, m.Current().Volume("v2"))
}

func TestModelCurrentIsACopy(t *testing.T) {
	m := New()
	m.Apply(fullDelta(t1, nil, []api.Volume{{
		Name:    "v1",
		State:   api.VolStarted,
		Options: map[string]string{"nfs.disable": "on"},
		Bricks:  []api.Brick{{Hostname: "10.0.3.207", Path: "/export/b1"}},
	}}))

	s := m.Current()
	s.Volumes[0].Options["nfs.disable"] = "off"
	s.Volumes[0].Bricks[0].Path = "/tampered"

	fresh := m.Current()
	assert.Equal(t, "on", fresh.Volumes[0].Options["nfs.disable"])
	assert.Equal(t, "/export/b1", fresh.Volumes[0].Bricks[0].Path)
}

func TestSnapshotLookupsOnValue(t *testing.T) {
	m := New()
	m.Apply(fullDelta(t1,
		[]api.Peer{{ID: peer1ID, Hostname: "10.0.3.207", State: api.PeerConnected}},
		[]api.Volume{{Name: "v1", State: api.VolStarted, Bricks: []api.Brick{
			{Hostname: "10.0.3.207", Path: "/export/b1"},
		}}}))

	// lookups chain directly off Current()'s return value
	require.NotNil(t, m.Current().PeerByHostname("10.0.3.207"))
	require.NotNil(t, m.Current().Volume("v1"))
	owner := m.Current().BrickOwner("10.0.3.207", "/export/b1")
	require.NotNil(t, owner)
	assert.Equal(t, "v1", owner.Name)

	assert.Nil(t, m.Current().PeerByHostname("10.0.3.209"))
	assert.Nil(t, m.Current().Volume("v2"))
	assert.Nil(t, m.Current().BrickOwner("10.0.3.207", "/export/other"))
}

func TestModelPeerLastSeen(t *testing.T) {
	m := New()
	m.Apply(fullDelta(t1, []api.Peer{{ID: peer1ID, Hostname: "10.0.3.207"}}, nil))
	s := m.Current()
	require.Len(t, s.Peers, 1)
	assert.Equal(t, t1, s.Peers[0].LastSeen)
}

func TestDiff(t *testing.T) {
	old := Snapshot{
		Peers: []api.Peer{
			{ID: peer1ID, Hostname: "10.0.3.207", State: api.PeerConnected},
			{ID: peer2ID, Hostname: "10.0.3.208", State: api.PeerConnected},
		},
		Volumes: []api.Volume{
			{Name: "v1", State: api.VolStarted, Bricks: []api.Brick{
				{Hostname: "10.0.3.207", Path: "/export/b1", Status: api.BrickOnline},
			}},
			{Name: "gone", State: api.VolStopped},
		},
	}
	cur := Snapshot{
		Peers: []api.Peer{
			{ID: peer1ID, Hostname: "10.0.3.207", State: api.PeerConnected},
			{ID: peer2ID, Hostname: "10.0.3.208", State: api.PeerDisconnected},
		},
		Volumes: []api.Volume{
			{Name: "v1", State: api.VolStarted, Bricks: []api.Brick{
				{Hostname: "10.0.3.207", Path: "/export/b1", Status: api.BrickOffline},
			}},
			{Name: "v2", State: api.VolCreated},
		},
	}

	want := []Change{
		{Kind: StateChanged, Entity: "peer", ID: peer2ID.String(), Old: "connected", New: "disconnected"},
		{Kind: Removed, Entity: "volume", ID: "gone", Old: "stopped"},
		{Kind: Added, Entity: "volume", ID: "v2", New: "created"},
		{Kind: StateChanged, Entity: "brick", ID: "v1/10.0.3.207:/export/b1", Old: "online", New: "offline"},
	}
	assert.Equal(t, want, Diff(old, cur))
}

func TestDiffEmpty(t *testing.T) {
	s := Snapshot{
		Peers:   []api.Peer{{ID: peer1ID, State: api.PeerConnected}},
		Volumes: []api.Volume{{Name: "v1", State: api.VolStarted}},
	}
	assert.Empty(t, Diff(s, s))
}
