// Package reconcile refreshes the topology model from the cluster. A refresh
// fetches authoritative listings over the executor, parses them and merges
// the result into the model. Fetches hitting different nodes may observe the
// cluster at different moments; the model's merge rules absorb that.
package reconcile

import (
	"context"
	"errors"
	"time"

	"github.com/gluster/glustermgmt/executor"
	"github.com/gluster/glustermgmt/parser"
	"github.com/gluster/glustermgmt/pkg/api"
	"github.com/gluster/glustermgmt/pkg/gerrors"
	"github.com/gluster/glustermgmt/topology"

	log "github.com/sirupsen/logrus"
)

// for tests
var timeNow = time.Now

// Reconciler owns the fetch-parse-merge cycle between the cluster and the
// topology model.
type Reconciler struct {
	pool  *executor.Pool
	model *topology.Model
}

// New returns a Reconciler writing into the given model.
func New(pool *executor.Pool, model *topology.Model) *Reconciler {
	return &Reconciler{pool: pool, model: model}
}

// Model returns the topology model the reconciler maintains.
func (r *Reconciler) Model() *topology.Model {
	return r.model
}

// Refresh fetches the complete cluster topology and merges it into the
// model as a full listing: peers absent from the fetch are dropped,
// volumes absent from it become state indeterminate.
func (r *Reconciler) Refresh(ctx context.Context) (topology.Snapshot, error) {
	fetchedAt := timeNow()

	peers, err := r.fetchPeers(ctx)
	if err != nil {
		return topology.Snapshot{}, err
	}

	volumes, err := r.fetchVolumes(ctx)
	if err != nil {
		return topology.Snapshot{}, err
	}

	if err := r.mergeBrickStatus(ctx, volumes); err != nil {
		// brick availability is best effort; volume records stand on
		// their own
		log.WithError(err).Debug("brick status unavailable")
	}

	r.model.Apply(topology.Delta{
		Peers:     peers,
		Volumes:   volumes,
		FetchedAt: fetchedAt,
		Full:      true,
	})

	snap := r.model.Current()
	log.WithFields(log.Fields{
		"peers":   len(snap.Peers),
		"volumes": len(snap.Volumes),
	}).Debug("topology refreshed")
	return snap, nil
}

// RefreshPeers fetches only the peer listing and merges it into the model.
func (r *Reconciler) RefreshPeers(ctx context.Context) ([]api.Peer, error) {
	fetchedAt := timeNow()
	peers, err := r.fetchPeers(ctx)
	if err != nil {
		return nil, err
	}
	r.model.Apply(topology.Delta{Peers: peers, FetchedAt: fetchedAt})
	return peers, nil
}

// RefreshVolume fetches a single volume and merges it into the model. If the
// cluster reports the volume as absent the model entry is marked state
// indeterminate and ErrVolNotFound is returned.
func (r *Reconciler) RefreshVolume(ctx context.Context, name string) (*api.Volume, error) {
	fetchedAt := timeNow()

	res, err := r.pool.Run(ctx, executor.Command("volume", "info", name))
	if err != nil {
		return nil, err
	}

	vols, err := parser.ParseVolumeInfo(res.Output)
	if errors.Is(err, gerrors.ErrVolNotFound) {
		if cur := r.model.Current().Volume(name); cur != nil {
			unknown := *cur
			unknown.State = api.VolUnknown
			unknown.StateRaw = ""
			r.model.Apply(topology.Delta{Volumes: []api.Volume{unknown}, FetchedAt: fetchedAt})
		}
		return nil, gerrors.ErrVolNotFound
	}
	if err != nil {
		return nil, err
	}
	if len(vols) == 0 {
		return nil, gerrors.ErrVolNotFound
	}

	if err := r.mergeBrickStatus(ctx, vols); err != nil {
		log.WithError(err).WithField("volume", name).Debug("brick status unavailable")
	}
	r.model.Apply(topology.Delta{Volumes: vols, FetchedAt: fetchedAt})
	return &vols[0], nil
}

// ConfirmVolumeAbsent fetches the volume and, if the cluster reports it
// gone, removes it from the model as an explicitly confirmed deletion. It
// reports whether absence was confirmed.
func (r *Reconciler) ConfirmVolumeAbsent(ctx context.Context, name string) (bool, error) {
	fetchedAt := timeNow()

	res, err := r.pool.Run(ctx, executor.Command("volume", "info", name))
	if err != nil {
		return false, err
	}

	_, err = parser.ParseVolumeInfo(res.Output)
	if errors.Is(err, gerrors.ErrVolNotFound) {
		r.model.Apply(topology.Delta{DeletedVolumes: []string{name}, FetchedAt: fetchedAt})
		return true, nil
	}
	return false, err
}

func (r *Reconciler) fetchPeers(ctx context.Context) ([]api.Peer, error) {
	res, err := r.pool.Run(ctx, executor.Command("pool", "list"))
	if err != nil {
		return nil, err
	}
	if res.Success() {
		return parser.ParsePoolList(res.Output)
	}

	// older clusters do not know `pool list`; `peer status` reports the
	// same pool minus the answering node
	log.Debug("pool list refused, falling back to peer status")
	res, err = r.pool.Run(ctx, executor.Command("peer", "status"))
	if err != nil {
		return nil, err
	}
	return parser.ParsePeerStatus(res.Output)
}

// VolumeNames fetches just the names of the cluster's volumes. Cheaper than
// a full refresh; nothing is merged into the model.
func (r *Reconciler) VolumeNames(ctx context.Context) ([]string, error) {
	res, err := r.pool.Run(ctx, executor.Command("volume", "list"))
	if err != nil {
		return nil, err
	}
	return parser.ParseVolumeList(res.Output), nil
}

func (r *Reconciler) fetchVolumes(ctx context.Context) ([]api.Volume, error) {
	res, err := r.pool.Run(ctx, executor.Command("volume", "info"))
	if err != nil {
		return nil, err
	}
	return parser.ParseVolumeInfo(res.Output)
}

// mergeBrickStatus overlays live brick availability onto volume records.
// Only started volumes report status; bricks without a status row keep
// BrickUnknown.
func (r *Reconciler) mergeBrickStatus(ctx context.Context, volumes []api.Volume) error {
	var started bool
	for i := range volumes {
		if volumes[i].State == api.VolStarted {
			started = true
			break
		}
	}
	if !started {
		return nil
	}

	res, err := r.pool.Run(ctx, executor.Command("volume", "status"))
	if err != nil {
		return err
	}

	status := make(map[string]api.Brick)
	for _, b := range parser.ParseVolumeStatus(res.Output) {
		status[b.String()] = b
	}

	for i := range volumes {
		if volumes[i].State != api.VolStarted {
			continue
		}
		for j := range volumes[i].Bricks {
			b := &volumes[i].Bricks[j]
			if live, ok := status[b.String()]; ok {
				b.Status = live.Status
				b.Port = live.Port
				b.Pid = live.Pid
			}
		}
	}
	return nil
}
