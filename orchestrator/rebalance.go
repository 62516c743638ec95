package orchestrator

import (
	"context"

	"github.com/gluster/glustermgmt/executor"
	"github.com/gluster/glustermgmt/parser"
	"github.com/gluster/glustermgmt/pkg/api"
	"github.com/gluster/glustermgmt/pkg/gerrors"

	log "github.com/sirupsen/logrus"
)

// RebalanceHandle tracks a rebalance started on one volume.
type RebalanceHandle struct {
	orch   *Orchestrator
	Volume string
}

// Rebalance returns a handle for a rebalance already running on the
// cluster, for status queries and stops across client restarts.
func (o *Orchestrator) Rebalance(name string) *RebalanceHandle {
	return &RebalanceHandle{orch: o, Volume: name}
}

// StartRebalance kicks off data rebalancing on a started volume and returns
// a handle for progress queries. The rebalance itself runs on the cluster;
// dropping the handle does not affect it.
func (o *Orchestrator) StartRebalance(ctx context.Context, name string) (*RebalanceHandle, error) {
	unlock := o.lockVolume(name)
	defer unlock()
	expOps.Add("rebalance-start", 1)

	vol, err := o.rec.RefreshVolume(ctx, name)
	if err != nil {
		return nil, err
	}
	if vol.State != api.VolStarted {
		return nil, gerrors.ErrVolNotStarted
	}

	res, err := o.execRetry(ctx, executor.Command("volume", "rebalance", name, "start"))
	if err != nil {
		return nil, err
	}
	if !res.Success() {
		expRejected.Add(1)
		return nil, &gerrors.SemanticRejection{Reason: parser.RejectionReason(res.CombinedOutput())}
	}

	log.WithField("volume", name).Info("rebalance started")
	return &RebalanceHandle{orch: o, Volume: name}, nil
}

// Status fetches per-node rebalance progress.
func (h *RebalanceHandle) Status(ctx context.Context) ([]api.RebalanceNodeStatus, error) {
	res, err := h.orch.execRetry(ctx, executor.Command("volume", "rebalance", h.Volume, "status"))
	if err != nil {
		return nil, err
	}
	if !res.Success() {
		return nil, &gerrors.SemanticRejection{Reason: parser.RejectionReason(res.CombinedOutput())}
	}
	return parser.ParseRebalanceStatus(res.Output), nil
}

// Done reports whether every node finished, one way or another.
func (h *RebalanceHandle) Done(ctx context.Context) (bool, error) {
	nodes, err := h.Status(ctx)
	if err != nil {
		return false, err
	}
	for _, n := range nodes {
		switch n.State {
		case api.RebalanceInProgress, api.RebalanceNotStarted:
			return false, nil
		}
	}
	return len(nodes) > 0, nil
}

// Stop halts an in-progress rebalance.
func (h *RebalanceHandle) Stop(ctx context.Context) error {
	expOps.Add("rebalance-stop", 1)

	res, err := h.orch.execRetry(ctx, executor.Command("volume", "rebalance", h.Volume, "stop"))
	if err != nil {
		return err
	}
	if !res.Success() {
		return &gerrors.SemanticRejection{Reason: parser.RejectionReason(res.CombinedOutput())}
	}
	log.WithField("volume", h.Volume).Info("rebalance stopped")
	return nil
}
