package parser

import (
	"testing"

	"github.com/gluster/glustermgmt/pkg/api"
	"github.com/gluster/glustermgmt/pkg/gerrors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const volumeInfoReplicate = `

Volume Name: test
Type: Replicate
Volume ID: cae6868d-b080-4ea3-927b-93b5f1e3fe69
Status: Started
Number of Bricks: 1 x 2 = 2
Transport-type: tcp
Bricks:
Brick1: 172.31.41.135:/mnt/xvdf
Brick2: 172.31.26.65:/mnt/xvdf
Options Reconfigured:
features.inode-quota: off
features.quota: off
transport.address-family: inet
performance.readdir-ahead: on
nfs.disable: on
`

func TestParseVolumeInfo(t *testing.T) {
	vols, err := ParseVolumeInfo([]byte(volumeInfoReplicate))
	require.NoError(t, err)
	require.Len(t, vols, 1)

	v := vols[0]
	assert.Equal(t, "test", v.Name)
	assert.Equal(t, api.Replicate, v.Type)
	assert.Equal(t, "cae6868d-b080-4ea3-927b-93b5f1e3fe69", v.ID.String())
	assert.Equal(t, api.VolStarted, v.State)
	assert.Equal(t, "tcp", v.Transport)
	assert.Equal(t, 1, v.DistCount)
	assert.Equal(t, 2, v.ReplicaCount)

	require.Len(t, v.Bricks, 2)
	assert.Equal(t, "172.31.41.135", v.Bricks[0].Hostname)
	assert.Equal(t, "/mnt/xvdf", v.Bricks[0].Path)
	assert.Equal(t, api.BrickUnknown, v.Bricks[0].Status)

	assert.Equal(t, map[string]string{
		"features.inode-quota":      "off",
		"features.quota":            "off",
		"transport.address-family":  "inet",
		"performance.readdir-ahead": "on",
		"nfs.disable":               "on",
	}, v.Options)
}

func TestParseVolumeInfoMultiple(t *testing.T) {
	raw := `Volume Name: a
Type: Distribute
Volume ID: cae6868d-b080-4ea3-927b-93b5f1e3fe69
Status: Created
Number of Bricks: 1
Bricks:
Brick1: 10.0.0.1:/export/a

Volume Name: b
Type: Distributed-Disperse
Volume ID: 5f45e89a-23c1-41dd-b0cd-fd9cf37f1520
Status: Stopped
Number of Bricks: 2 x (2 + 1) = 6
`
	vols, err := ParseVolumeInfo([]byte(raw))
	require.NoError(t, err)
	require.Len(t, vols, 2)

	assert.Equal(t, api.VolCreated, vols[0].State)
	assert.Equal(t, 1, vols[0].DistCount)

	assert.Equal(t, api.DistDisperse, vols[1].Type)
	assert.Equal(t, api.VolStopped, vols[1].State)
	assert.Equal(t, 2, vols[1].DistCount)
	assert.Equal(t, 3, vols[1].DisperseCount)
}

func TestParseVolumeInfoMissingOptionalFields(t *testing.T) {
	raw := "Volume Name: bare\nType: Replicate\n"
	vols, err := ParseVolumeInfo([]byte(raw))
	require.NoError(t, err)
	require.Len(t, vols, 1)
	assert.Equal(t, api.VolUnknown, vols[0].State)
	assert.Empty(t, vols[0].Transport)
	assert.Empty(t, vols[0].Bricks)
}

func TestParseVolumeInfoUnrecognizedTokens(t *testing.T) {
	raw := "Volume Name: odd\nType: Tiered\nStatus: Migrating\n"
	vols, err := ParseVolumeInfo([]byte(raw))
	require.NoError(t, err)
	require.Len(t, vols, 1)
	assert.Equal(t, api.UnknownVolType, vols[0].Type)
	assert.Equal(t, api.VolUnrecognized, vols[0].State)
	assert.Equal(t, "Migrating", vols[0].StateRaw)
}

func TestParseVolumeInfoBadID(t *testing.T) {
	raw := "Volume Name: broken\nVolume ID: zzzz\n"
	_, err := ParseVolumeInfo([]byte(raw))
	var pe *gerrors.ParseError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, "volume-info", pe.Kind)
	assert.Equal(t, "zzzz", pe.Fragment)
}

func TestParseVolumeInfoAbsent(t *testing.T) {
	vols, err := ParseVolumeInfo([]byte("No volumes present\n"))
	require.NoError(t, err)
	assert.Empty(t, vols)

	_, err = ParseVolumeInfo([]byte("Volume v1 does not exist\n"))
	assert.ErrorIs(t, err, gerrors.ErrVolNotFound)
}

func TestParseVolumeList(t *testing.T) {
	names := ParseVolumeList([]byte("\nv1\nv2\n\n"))
	assert.Equal(t, []string{"v1", "v2"}, names)
	assert.Empty(t, ParseVolumeList([]byte("No volumes present\n")))
}
