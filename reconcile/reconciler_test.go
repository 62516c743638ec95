package reconcile

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/gluster/glustermgmt/executor"
	"github.com/gluster/glustermgmt/pkg/api"
	"github.com/gluster/glustermgmt/pkg/gerrors"
	"github.com/gluster/glustermgmt/topology"

	"github.com/heketi/tests"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scriptExec answers each command from a canned output map keyed on the
// command string. Unknown commands are a transport failure; commands in the
// failures map answer with exit 1.
type scriptExec struct {
	outputs  map[string]string
	failures map[string]string
	calls    []string
}

func (s *scriptExec) Execute(ctx context.Context, node string, cmd executor.CommandSpec) (executor.Result, error) {
	s.calls = append(s.calls, cmd.String())
	if msg, ok := s.failures[cmd.String()]; ok {
		return executor.Result{Output: []byte(msg), ExitCode: 1}, nil
	}
	out, ok := s.outputs[cmd.String()]
	if !ok {
		return executor.Result{}, &gerrors.TransportError{Node: node, Err: errors.New("no script entry")}
	}
	return executor.Result{Output: []byte(out)}, nil
}

const poolListOut = "UUID\t\t\t\t\tHostname \tState\n" +
	"afbd338e-881b-4557-8764-52e259885ca3\t10.0.3.207\tConnected\n" +
	"fa3b031a-c4ef-43c5-892d-4b909bc5cd5d\t10.0.3.208\tConnected\n"

const volumeInfoOut = `Volume Name: v1
Type: Replicate
Volume ID: cae6868d-b080-4ea3-927b-93b5f1e3fe69
Status: Started
Number of Bricks: 1 x 2 = 2
Transport-type: tcp
Bricks:
Brick1: 10.0.3.207:/export/b1
Brick2: 10.0.3.208:/export/b1
`

const volumeStatusOut = `Status of volume: v1
Gluster process                             TCP Port  RDMA Port  Online  Pid
------------------------------------------------------------------------------
Brick 10.0.3.207:/export/b1                 49152     0          Y       14228
Brick 10.0.3.208:/export/b1                 49152     0          N       14446
`

func newTestReconciler(outputs map[string]string) (*Reconciler, *scriptExec) {
	exec := &scriptExec{outputs: outputs}
	pool := executor.NewPool(exec, []string{"10.0.3.207"})
	return New(pool, topology.New()), exec
}

func TestRefresh(t *testing.T) {
	r, _ := newTestReconciler(map[string]string{
		"pool list":     poolListOut,
		"volume info":   volumeInfoOut,
		"volume status": volumeStatusOut,
	})

	snap, err := r.Refresh(context.Background())
	require.NoError(t, err)

	require.Len(t, snap.Peers, 2)
	assert.Equal(t, "10.0.3.207", snap.Peers[0].Hostname)

	require.Len(t, snap.Volumes, 1)
	v := snap.Volumes[0]
	assert.Equal(t, api.VolStarted, v.State)
	require.Len(t, v.Bricks, 2)
	assert.Equal(t, api.BrickOnline, v.Bricks[0].Status)
	assert.Equal(t, 49152, v.Bricks[0].Port)
	assert.Equal(t, api.BrickOffline, v.Bricks[1].Status)
}

func TestRefreshBrickStatusBestEffort(t *testing.T) {
	// volume status unavailable: volume records still land in the model
	r, _ := newTestReconciler(map[string]string{
		"pool list":   poolListOut,
		"volume info": volumeInfoOut,
	})

	snap, err := r.Refresh(context.Background())
	require.NoError(t, err)
	require.Len(t, snap.Volumes, 1)
	assert.Equal(t, api.BrickUnknown, snap.Volumes[0].Bricks[0].Status)
}

func TestRefreshMarksAbsentVolumesUnknown(t *testing.T) {
	r, exec := newTestReconciler(map[string]string{
		"pool list":     poolListOut,
		"volume info":   volumeInfoOut,
		"volume status": volumeStatusOut,
	})

	base := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	defer tests.Patch(&timeNow, func() time.Time { return base }).Restore()
	_, err := r.Refresh(context.Background())
	require.NoError(t, err)

	// the next full listing no longer carries v1
	exec.outputs["volume info"] = "No volumes present\n"
	defer tests.Patch(&timeNow, func() time.Time { return base.Add(time.Minute) }).Restore()
	snap, err := r.Refresh(context.Background())
	require.NoError(t, err)

	v1 := snap.Volume("v1")
	require.NotNil(t, v1)
	assert.Equal(t, api.VolUnknown, v1.State)
}

func TestRefreshVolume(t *testing.T) {
	r, _ := newTestReconciler(map[string]string{
		"volume info v1": volumeInfoOut,
		"volume status":  volumeStatusOut,
	})

	v, err := r.RefreshVolume(context.Background(), "v1")
	require.NoError(t, err)
	assert.Equal(t, "v1", v.Name)
	assert.Equal(t, api.VolStarted, v.State)

	assert.Equal(t, api.VolStarted, r.Model().Current().Volume("v1").State)
}

func TestRefreshVolumeNotFound(t *testing.T) {
	r, _ := newTestReconciler(map[string]string{
		"pool list":      poolListOut,
		"volume info":    volumeInfoOut,
		"volume status":  volumeStatusOut,
		"volume info v1": "Volume v1 does not exist\n",
	})

	base := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	defer tests.Patch(&timeNow, func() time.Time { return base }).Restore()
	_, err := r.Refresh(context.Background())
	require.NoError(t, err)

	defer tests.Patch(&timeNow, func() time.Time { return base.Add(time.Minute) }).Restore()
	_, err = r.RefreshVolume(context.Background(), "v1")
	assert.ErrorIs(t, err, gerrors.ErrVolNotFound)

	// absence is indeterminate state, not deletion
	v1 := r.Model().Current().Volume("v1")
	require.NotNil(t, v1)
	assert.Equal(t, api.VolUnknown, v1.State)
}

func TestConfirmVolumeAbsent(t *testing.T) {
	r, _ := newTestReconciler(map[string]string{
		"pool list":      poolListOut,
		"volume info":    volumeInfoOut,
		"volume status":  volumeStatusOut,
		"volume info v1": "Volume v1 does not exist\n",
	})

	base := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	defer tests.Patch(&timeNow, func() time.Time { return base }).Restore()
	_, err := r.Refresh(context.Background())
	require.NoError(t, err)

	defer tests.Patch(&timeNow, func() time.Time { return base.Add(time.Minute) }).Restore()
	gone, err := r.ConfirmVolumeAbsent(context.Background(), "v1")
	require.NoError(t, err)
	assert.True(t, gone)
	assert.Nil(t, r.Model().Current().Volume("v1"))
}

func TestConfirmVolumeAbsentStillPresent(t *testing.T) {
	r, _ := newTestReconciler(map[string]string{
		"volume info v1": volumeInfoOut,
	})

	gone, err := r.ConfirmVolumeAbsent(context.Background(), "v1")
	require.NoError(t, err)
	assert.False(t, gone)
}

func TestRefreshTransportErrorPropagates(t *testing.T) {
	r, _ := newTestReconciler(map[string]string{})
	_, err := r.Refresh(context.Background())
	assert.True(t, gerrors.IsTransport(err))
}

func TestRefreshPeers(t *testing.T) {
	r, exec := newTestReconciler(map[string]string{
		"pool list": poolListOut,
	})

	peers, err := r.RefreshPeers(context.Background())
	require.NoError(t, err)
	require.Len(t, peers, 2)
	assert.Equal(t, []string{"pool list"}, exec.calls)
	assert.Len(t, r.Model().Current().Peers, 2)
}

const peerStatusOut = `Number of Peers: 1

Hostname: 10.0.3.208
Uuid: fa3b031a-c4ef-43c5-892d-4b909bc5cd5d
State: Peer in Cluster (Connected)
`

func TestRefreshPeersPoolListUnsupported(t *testing.T) {
	// clusters predating `pool list` refuse it; `peer status` still answers
	r, exec := newTestReconciler(map[string]string{
		"peer status": peerStatusOut,
	})
	exec.failures = map[string]string{
		"pool list": "unrecognized word: pool (position 0)\n",
	}

	peers, err := r.RefreshPeers(context.Background())
	require.NoError(t, err)
	require.Len(t, peers, 1)
	assert.Equal(t, "10.0.3.208", peers[0].Hostname)
	assert.Equal(t, api.PeerConnected, peers[0].State)
	assert.Equal(t, []string{"pool list", "peer status"}, exec.calls)
}

func TestVolumeNames(t *testing.T) {
	r, exec := newTestReconciler(map[string]string{
		"volume list": "v1\nv2\n",
	})

	names, err := r.VolumeNames(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"v1", "v2"}, names)
	assert.Equal(t, []string{"volume list"}, exec.calls)

	// a name-only listing never touches the model
	assert.Empty(t, r.Model().Current().Volumes)
}
