package parser

import (
	"strings"

	"github.com/gluster/glustermgmt/pkg/api"
	"github.com/gluster/glustermgmt/pkg/gerrors"

	"github.com/pborman/uuid"
)

// ParsePeerStatus parses `peer status` output. Records look like
//
//	Hostname: 10.0.3.207
//	Uuid: afbd338e-881b-4557-8764-52e259885ca3
//	State: Peer in Cluster (Connected)
//
// but field layout varies between cluster versions and records may flow
// across lines, so the parse splits on the Hostname marker rather than on
// line boundaries.
func ParsePeerStatus(raw []byte) ([]api.Peer, error) {
	blocks := strings.Split(string(raw), "Hostname:")

	var peers []api.Peer
	// blocks[0] is the "Number of Peers: N" preamble
	for _, blk := range blocks[1:] {
		fields := strings.Fields(blk)
		if len(fields) == 0 {
			continue
		}
		hostname := fields[0]

		id, err := peerUUID(blk)
		if err != nil {
			return nil, err
		}

		detail, token := peerStateTokens(blk)
		state := api.ParsePeerState(detail)
		if state == api.PeerUnrecognized && token != "" {
			// fall back on the short token in parentheses
			state = api.ParsePeerState(token)
		}

		stateRaw := detail
		if token != "" {
			stateRaw = detail + " (" + token + ")"
		}

		peers = append(peers, api.Peer{
			ID:       id,
			Hostname: hostname,
			State:    state,
			StateRaw: stateRaw,
		})
	}
	return peers, nil
}

// peerUUID extracts and validates the Uuid field of one peer block. Identity
// is the one field the model cannot do without.
func peerUUID(blk string) (uuid.UUID, error) {
	i := strings.Index(blk, "Uuid:")
	if i < 0 {
		return nil, &gerrors.ParseError{Kind: "peer-status", Fragment: snippet(blk)}
	}
	fields := strings.Fields(blk[i+len("Uuid:"):])
	if len(fields) == 0 {
		return nil, &gerrors.ParseError{Kind: "peer-status", Fragment: snippet(blk)}
	}
	id := uuid.Parse(fields[0])
	if id == nil {
		return nil, &gerrors.ParseError{Kind: "peer-status", Fragment: fields[0]}
	}
	return id, nil
}

// peerStateTokens returns the state detail ("Peer in Cluster") and the short
// token in parentheses ("Connected"), either of which may be absent.
func peerStateTokens(blk string) (detail, token string) {
	i := strings.Index(blk, "State:")
	if i < 0 {
		return "", ""
	}
	rest := blk[i+len("State:"):]
	if nl := strings.IndexByte(rest, '\n'); nl >= 0 {
		// state may flow onto the same line as the next record's
		// fields only when output was reflowed; a newline still ends it
		rest = rest[:nl]
	}
	rest = strings.TrimSpace(rest)

	if open := strings.IndexByte(rest, '('); open >= 0 {
		detail = strings.TrimSpace(rest[:open])
		token = strings.TrimSpace(rest[open+1:])
		if end := strings.IndexByte(token, ')'); end >= 0 {
			token = token[:end]
		}
		return detail, token
	}
	return rest, ""
}

// ParsePoolList parses `pool list` output, which includes the local node:
//
//	UUID					Hostname	State
//	afbd338e-881b-4557-8764-52e259885ca3	10.0.3.207	Connected
//
// Lines not led by a UUID (headers, banners) are skipped.
func ParsePoolList(raw []byte) ([]api.Peer, error) {
	var peers []api.Peer
	for _, line := range strings.Split(string(raw), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 2 {
			continue
		}
		id := uuid.Parse(fields[0])
		if id == nil {
			continue
		}

		p := api.Peer{ID: id, Hostname: fields[1]}
		if len(fields) > 2 {
			tok := strings.Join(fields[2:], " ")
			p.State = api.ParsePeerState(tok)
			p.StateRaw = tok
		}
		peers = append(peers, p)
	}
	return peers, nil
}
