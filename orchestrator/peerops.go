package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gluster/glustermgmt/executor"
	"github.com/gluster/glustermgmt/parser"
	"github.com/gluster/glustermgmt/pkg/api"
	"github.com/gluster/glustermgmt/pkg/gerrors"
	"github.com/gluster/glustermgmt/topology"

	log "github.com/sirupsen/logrus"
)

// ProbePeer adds a host to the trusted pool and waits until the pool reports
// it connected. Probing an address that is already a connected member is a
// no-op returning the existing record. On a confirmation timeout the
// half-joined entry is dropped from the model and ProbeTimeout is returned;
// the pool itself may still finish the join later.
func (o *Orchestrator) ProbePeer(ctx context.Context, address string) (*api.Peer, error) {
	o.peerMu.Lock()
	defer o.peerMu.Unlock()
	expOps.Add("peer-probe", 1)

	peers, err := o.rec.RefreshPeers(ctx)
	if err != nil {
		return nil, &gerrors.PeerUnreachable{Address: address, Err: err}
	}
	for i := range peers {
		if peers[i].Hostname == address && peers[i].State == api.PeerConnected {
			return &peers[i], nil
		}
	}

	res, err := o.execRetry(ctx, executor.Command("peer", "probe", address))
	if err != nil {
		return nil, &gerrors.PeerUnreachable{Address: address, Err: err}
	}
	if !res.Success() {
		expRejected.Add(1)
		return nil, &gerrors.PeerUnreachable{
			Address: address,
			Err:     errors.New(parser.RejectionReason(res.CombinedOutput())),
		}
	}

	start := time.Now()
	var probed *api.Peer
	err = o.poll(ctx, "peer probe "+address, func(ctx context.Context) (bool, string, error) {
		fresh, err := o.rec.RefreshPeers(ctx)
		if err != nil {
			return false, "", err
		}
		for i := range fresh {
			if fresh[i].Hostname != address {
				continue
			}
			if fresh[i].State == api.PeerConnected {
				probed = &fresh[i]
				return true, "connected", nil
			}
			return false, fresh[i].State.String(), nil
		}
		return false, "absent", nil
	})
	if err != nil {
		var timedOut *gerrors.OperationTimedOut
		if errors.As(err, &timedOut) {
			// never leave a peer the pool has not confirmed in the model
			o.dropPeer(address)
			return nil, &gerrors.ProbeTimeout{Address: address, Waited: time.Since(start)}
		}
		return nil, &gerrors.PeerUnreachable{Address: address, Err: err}
	}

	log.WithField("address", address).Info("peer joined the pool")
	return probed, nil
}

// DetachPeer removes a host from the trusted pool. A peer hosting bricks of
// any known volume is refused locally before the cluster is contacted.
func (o *Orchestrator) DetachPeer(ctx context.Context, address string) error {
	o.peerMu.Lock()
	defer o.peerMu.Unlock()
	expOps.Add("peer-detach", 1)

	snap, err := o.rec.Refresh(ctx)
	if err != nil {
		return err
	}
	if snap.PeerByHostname(address) == nil {
		return gerrors.ErrPeerNotFound
	}
	for i := range snap.Volumes {
		for _, b := range snap.Volumes[i].Bricks {
			if b.Hostname == address {
				return &gerrors.InvalidTopology{
					Reason: fmt.Sprintf("peer %s hosts brick %s of volume %s",
						address, b.Path, snap.Volumes[i].Name),
				}
			}
		}
	}

	res, err := o.execRetry(ctx, executor.Command("peer", "detach", address))
	if err != nil {
		return err
	}
	if !res.Success() {
		expRejected.Add(1)
		return &gerrors.SemanticRejection{Reason: parser.RejectionReason(res.CombinedOutput())}
	}

	err = o.poll(ctx, "peer detach "+address, func(ctx context.Context) (bool, string, error) {
		fresh, err := o.rec.RefreshPeers(ctx)
		if err != nil {
			return false, "", err
		}
		for i := range fresh {
			if fresh[i].Hostname == address {
				return false, fresh[i].State.String(), nil
			}
		}
		return true, "absent", nil
	})
	if err != nil {
		return err
	}

	o.dropPeer(address)
	log.WithField("address", address).Info("peer left the pool")
	return nil
}

// dropPeer removes a peer record from the model by hostname.
func (o *Orchestrator) dropPeer(address string) {
	snap := o.rec.Model().Current()
	p := snap.PeerByHostname(address)
	if p == nil {
		return
	}
	o.rec.Model().Apply(topology.Delta{
		DeletedPeers: []string{p.ID.String()},
		FetchedAt:    time.Now(),
	})
}
