package parser

import (
	"testing"

	"github.com/gluster/glustermgmt/pkg/api"
	"github.com/gluster/glustermgmt/pkg/gerrors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// peer status output reflowed by the transport; records do not align with
// line boundaries
const peerStatusReflowed = `Number of Peers: 3 Hostname: 10.0.3.207
Uuid: afbd338e-881b-4557-8764-52e259885ca3 State: Peer in Cluster (Connected)
Hostname: 10.0.3.208 Uuid: fa3b031a-c4ef-43c5-892d-4b909bc5cd5d
State: Peer in Cluster (Connected) Hostname: 10.0.3.209
Uuid: 5f45e89a-23c1-41dd-b0cd-fd9cf37f1520 State: Peer in Cluster (Connected)`

const peerStatusBlocks = `Number of Peers: 2

Hostname: 10.0.3.207
Uuid: afbd338e-881b-4557-8764-52e259885ca3
State: Peer in Cluster (Connected)

Hostname: 10.0.3.208
Uuid: fa3b031a-c4ef-43c5-892d-4b909bc5cd5d
State: Peer Rejected (Disconnected)

`

func TestParsePeerStatus(t *testing.T) {
	peers, err := ParsePeerStatus([]byte(peerStatusReflowed))
	require.NoError(t, err)
	require.Len(t, peers, 3)

	assert.Equal(t, "afbd338e-881b-4557-8764-52e259885ca3", peers[0].ID.String())
	assert.Equal(t, "10.0.3.207", peers[0].Hostname)
	assert.Equal(t, api.PeerConnected, peers[0].State)
	assert.Equal(t, "10.0.3.208", peers[1].Hostname)
	assert.Equal(t, "10.0.3.209", peers[2].Hostname)
	assert.Equal(t, "5f45e89a-23c1-41dd-b0cd-fd9cf37f1520", peers[2].ID.String())
}

func TestParsePeerStatusBlocks(t *testing.T) {
	peers, err := ParsePeerStatus([]byte(peerStatusBlocks))
	require.NoError(t, err)
	require.Len(t, peers, 2)

	assert.Equal(t, api.PeerConnected, peers[0].State)
	assert.Equal(t, "Peer in Cluster (Connected)", peers[0].StateRaw)
	assert.Equal(t, api.PeerRejected, peers[1].State)
}

func TestParsePeerStatusMissingState(t *testing.T) {
	raw := "Hostname: 10.0.3.207\nUuid: afbd338e-881b-4557-8764-52e259885ca3\n"
	peers, err := ParsePeerStatus([]byte(raw))
	require.NoError(t, err)
	require.Len(t, peers, 1)
	assert.Equal(t, api.PeerUnknown, peers[0].State)
}

func TestParsePeerStatusUnrecognizedState(t *testing.T) {
	raw := "Hostname: 10.0.3.207\n" +
		"Uuid: afbd338e-881b-4557-8764-52e259885ca3\n" +
		"State: Quorum Renegotiation (Syncing)\n"
	peers, err := ParsePeerStatus([]byte(raw))
	require.NoError(t, err)
	require.Len(t, peers, 1)
	assert.Equal(t, api.PeerUnrecognized, peers[0].State)
	assert.Equal(t, "Quorum Renegotiation (Syncing)", peers[0].StateRaw)
}

func TestParsePeerStatusBadUUID(t *testing.T) {
	raw := "Hostname: 10.0.3.207\nUuid: not-a-uuid\nState: Peer in Cluster (Connected)\n"
	_, err := ParsePeerStatus([]byte(raw))
	require.Error(t, err)
	var pe *gerrors.ParseError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, "peer-status", pe.Kind)
}

func TestParsePoolList(t *testing.T) {
	raw := "UUID\t\t\t\t\tHostname \tState\n" +
		"afbd338e-881b-4557-8764-52e259885ca3\t10.0.3.207\tConnected\n" +
		"fa3b031a-c4ef-43c5-892d-4b909bc5cd5d\tlocalhost\tConnected\n\n"
	peers, err := ParsePoolList([]byte(raw))
	require.NoError(t, err)
	require.Len(t, peers, 2)
	assert.Equal(t, "10.0.3.207", peers[0].Hostname)
	assert.Equal(t, api.PeerConnected, peers[0].State)
	assert.Equal(t, "localhost", peers[1].Hostname)
}

func TestRejectionReason(t *testing.T) {
	out := "volume create: v1: failed: Brick 10.0.3.207:/export/b1 is already part of a volume"
	assert.Equal(t, "Brick 10.0.3.207:/export/b1 is already part of a volume", RejectionReason(out))
	assert.Equal(t, "no reason given", RejectionReason("  \n"))
	assert.Equal(t, "some other error", RejectionReason("some other error\n"))
}
