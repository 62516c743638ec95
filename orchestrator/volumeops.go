package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/gluster/glustermgmt/executor"
	"github.com/gluster/glustermgmt/parser"
	"github.com/gluster/glustermgmt/pkg/api"
	"github.com/gluster/glustermgmt/pkg/gerrors"
	"github.com/gluster/glustermgmt/topology"

	log "github.com/sirupsen/logrus"
)

var volNameRE = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

// CreateRequest describes a volume to create. Bricks are host:path specs.
type CreateRequest struct {
	Name          string
	Bricks        []string
	ReplicaCount  int
	DisperseCount int
	Transport     string
	Options       map[string]string
	Force         bool
}

// Validate checks the request locally and returns the parsed brick specs.
// No cluster contact happens here.
func (req *CreateRequest) Validate() ([]api.Brick, error) {
	if req.Name == "" {
		return nil, gerrors.ErrEmptyVolName
	}
	if !volNameRE.MatchString(req.Name) {
		return nil, gerrors.ErrInvalidVolName
	}
	if len(req.Bricks) == 0 {
		return nil, gerrors.ErrEmptyBrickList
	}

	bricks, err := parseBrickSpecs(req.Bricks)
	if err != nil {
		return nil, err
	}

	if req.ReplicaCount > 0 && len(bricks)%req.ReplicaCount != 0 {
		return nil, &gerrors.InvalidTopology{
			Reason: fmt.Sprintf("brick count %d is not a multiple of replica count %d",
				len(bricks), req.ReplicaCount),
		}
	}
	if req.DisperseCount > 0 && len(bricks)%req.DisperseCount != 0 {
		return nil, &gerrors.InvalidTopology{
			Reason: fmt.Sprintf("brick count %d is not a multiple of disperse count %d",
				len(bricks), req.DisperseCount),
		}
	}
	if req.ReplicaCount > 0 && req.DisperseCount > 0 {
		return nil, &gerrors.InvalidTopology{
			Reason: "replica and disperse counts are mutually exclusive",
		}
	}
	return bricks, nil
}

func parseBrickSpecs(specs []string) ([]api.Brick, error) {
	bricks := make([]api.Brick, 0, len(specs))
	seen := make(map[string]bool, len(specs))
	for _, spec := range specs {
		host, path, ok := strings.Cut(spec, ":")
		if !ok || host == "" || !strings.HasPrefix(path, "/") {
			return nil, fmt.Errorf("invalid brick %q, expected host:/path", spec)
		}
		if seen[spec] {
			return nil, gerrors.ErrDuplicateBrickPath
		}
		seen[spec] = true
		bricks = append(bricks, api.Brick{Hostname: host, Path: path})
	}
	return bricks, nil
}

// checkBrickConflicts rejects bricks already owned by a known volume.
func checkBrickConflicts(snap topology.Snapshot, name string, bricks []api.Brick) error {
	for _, b := range bricks {
		owner := snap.BrickOwner(b.Hostname, b.Path)
		if owner != nil && owner.Name != name {
			return &gerrors.BrickConflict{Brick: b.String(), Volume: owner.Name}
		}
	}
	return nil
}

// CreateVolume creates a volume and confirms it exists on the cluster. The
// request is validated twice: against the possibly stale local model first,
// then against a fresh refresh before the command is issued. Requested options are applied after creation; a volume left behind
// with only some options applied is reported as a partial failure, never
// rolled back.
func (o *Orchestrator) CreateVolume(ctx context.Context, req CreateRequest) (*api.Volume, error) {
	bricks, err := req.Validate()
	if err != nil {
		return nil, err
	}

	unlock := o.lockVolume(req.Name)
	defer unlock()
	expOps.Add("volume-create", 1)

	// stale-model precheck, no cluster contact
	snap := o.Topology()
	if v := snap.Volume(req.Name); v != nil && v.State != api.VolUnknown {
		return nil, gerrors.ErrVolExists
	}
	if err := checkBrickConflicts(snap, req.Name, bricks); err != nil {
		return nil, err
	}

	fresh, err := o.rec.Refresh(ctx)
	if err != nil {
		return nil, err
	}
	if fresh.Volume(req.Name) != nil {
		return nil, gerrors.ErrVolExists
	}
	if err := checkBrickConflicts(fresh, req.Name, bricks); err != nil {
		return nil, err
	}

	var created *api.Volume
	plan := Plan{Op: "volume create " + req.Name}
	plan.Steps = append(plan.Steps, Step{
		Name: "create",
		Do: func(ctx context.Context) error {
			res, err := o.execRetry(ctx, createCommand(req))
			if err != nil {
				return err
			}
			if !res.Success() {
				expRejected.Add(1)
				return &gerrors.SemanticRejection{Reason: parser.RejectionReason(res.CombinedOutput())}
			}
			return o.poll(ctx, "volume create "+req.Name, func(ctx context.Context) (bool, string, error) {
				v, err := o.rec.RefreshVolume(ctx, req.Name)
				if errors.Is(err, gerrors.ErrVolNotFound) {
					return false, "absent", nil
				}
				if err != nil {
					return false, "", err
				}
				created = v
				return true, v.State.String(), nil
			})
		},
	})
	for _, key := range sortedKeys(req.Options) {
		key, value := key, req.Options[key]
		plan.Steps = append(plan.Steps, Step{
			Name: "set " + key,
			Do: func(ctx context.Context) error {
				return o.setOption(ctx, req.Name, key, value)
			},
		})
	}

	if err := plan.Run(ctx); err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{
		"volume": req.Name,
		"bricks": len(bricks),
	}).Info("volume created")
	return created, nil
}

func createCommand(req CreateRequest) executor.CommandSpec {
	args := []string{"volume", "create", req.Name}
	if req.ReplicaCount > 0 {
		args = append(args, "replica", strconv.Itoa(req.ReplicaCount))
	}
	if req.DisperseCount > 0 {
		args = append(args, "disperse", strconv.Itoa(req.DisperseCount))
	}
	if req.Transport != "" {
		args = append(args, "transport", req.Transport)
	}
	args = append(args, req.Bricks...)
	if req.Force {
		args = append(args, "force")
	}
	return executor.Command(args...)
}

// StartVolume starts a volume and confirms it is running.
func (o *Orchestrator) StartVolume(ctx context.Context, name string, force bool) error {
	unlock := o.lockVolume(name)
	defer unlock()
	expOps.Add("volume-start", 1)

	// stale-model precheck
	if v := o.Topology().Volume(name); v != nil {
		if v.State == api.VolStarted {
			return gerrors.ErrVolAlreadyStarted
		}
		if err := checkTransition(name, v.State, api.VolStarted); err != nil {
			return err
		}
	}

	vol, err := o.rec.RefreshVolume(ctx, name)
	if err != nil {
		return err
	}
	if vol.State == api.VolStarted {
		return gerrors.ErrVolAlreadyStarted
	}
	if err := checkTransition(name, vol.State, api.VolStarted); err != nil {
		return err
	}

	args := []string{"volume", "start", name}
	if force {
		args = append(args, "force")
	}
	res, err := o.execRetry(ctx, executor.Command(args...))
	if err != nil {
		return err
	}
	if !res.Success() {
		expRejected.Add(1)
		return &gerrors.SemanticRejection{Reason: parser.RejectionReason(res.CombinedOutput())}
	}

	return o.poll(ctx, "volume start "+name, o.checkVolumeState(name, api.VolStarted))
}

// StopVolume stops a running volume and confirms it is down.
func (o *Orchestrator) StopVolume(ctx context.Context, name string, force bool) error {
	unlock := o.lockVolume(name)
	defer unlock()
	expOps.Add("volume-stop", 1)

	if v := o.Topology().Volume(name); v != nil {
		if err := checkStoppable(name, v.State); err != nil {
			return err
		}
	}

	vol, err := o.rec.RefreshVolume(ctx, name)
	if err != nil {
		return err
	}
	if err := checkStoppable(name, vol.State); err != nil {
		return err
	}

	args := []string{"volume", "stop", name}
	if force {
		args = append(args, "force")
	}
	res, err := o.execRetry(ctx, executor.Command(args...))
	if err != nil {
		return err
	}
	if !res.Success() {
		expRejected.Add(1)
		return &gerrors.SemanticRejection{Reason: parser.RejectionReason(res.CombinedOutput())}
	}

	return o.poll(ctx, "volume stop "+name, o.checkVolumeState(name, api.VolStopped))
}

func checkStoppable(name string, state api.VolState) error {
	switch state {
	case api.VolStopped:
		return gerrors.ErrVolAlreadyStopped
	case api.VolCreated:
		return gerrors.ErrVolNotStarted
	}
	return checkTransition(name, state, api.VolStopped)
}

// DeleteVolume deletes a stopped or never-started volume and confirms the
// cluster no longer knows it. Deletion of a started volume is refused
// locally.
func (o *Orchestrator) DeleteVolume(ctx context.Context, name string) error {
	unlock := o.lockVolume(name)
	defer unlock()
	expOps.Add("volume-delete", 1)

	if v := o.Topology().Volume(name); v != nil {
		if err := checkTransition(name, v.State, api.VolDeleting); err != nil {
			return err
		}
	}

	vol, err := o.rec.RefreshVolume(ctx, name)
	if err != nil {
		return err
	}
	if err := checkTransition(name, vol.State, api.VolDeleting); err != nil {
		return err
	}

	// record the in-flight deletion until a fetch confirms absence
	pending := *vol
	pending.State = api.VolDeleting
	pending.StateRaw = ""
	o.rec.Model().Apply(topology.Delta{Volumes: []api.Volume{pending}})

	res, err := o.execRetry(ctx, executor.Command("volume", "delete", name))
	if err != nil {
		return err
	}
	if !res.Success() {
		expRejected.Add(1)
		return &gerrors.SemanticRejection{Reason: parser.RejectionReason(res.CombinedOutput())}
	}

	err = o.poll(ctx, "volume delete "+name, func(ctx context.Context) (bool, string, error) {
		gone, err := o.rec.ConfirmVolumeAbsent(ctx, name)
		if err != nil {
			return false, "", err
		}
		if gone {
			return true, "absent", nil
		}
		return false, api.VolDeleting.String(), nil
	})
	if err != nil {
		return err
	}

	log.WithField("volume", name).Info("volume deleted")
	return nil
}

// SetVolumeOptions applies options to an existing volume one at a time, in
// key order. A mid-sequence failure reports which options were applied.
func (o *Orchestrator) SetVolumeOptions(ctx context.Context, name string, options map[string]string) error {
	if len(options) == 0 {
		return nil
	}

	unlock := o.lockVolume(name)
	defer unlock()
	expOps.Add("volume-set", 1)

	if _, err := o.rec.RefreshVolume(ctx, name); err != nil {
		return err
	}

	plan := Plan{Op: "volume set " + name}
	for _, key := range sortedKeys(options) {
		key, value := key, options[key]
		plan.Steps = append(plan.Steps, Step{
			Name: "set " + key,
			Do: func(ctx context.Context) error {
				return o.setOption(ctx, name, key, value)
			},
		})
	}
	if err := plan.Run(ctx); err != nil {
		return err
	}

	// pick up the applied options
	_, err := o.rec.RefreshVolume(ctx, name)
	return err
}

func (o *Orchestrator) setOption(ctx context.Context, name, key, value string) error {
	res, err := o.execRetry(ctx, executor.Command("volume", "set", name, key, value))
	if err != nil {
		return err
	}
	if !res.Success() {
		expRejected.Add(1)
		return &gerrors.SemanticRejection{Reason: parser.RejectionReason(res.CombinedOutput())}
	}
	return nil
}

// ExpandVolume adds bricks to an existing volume and confirms they appear in
// its brick list. An optional replica count changes the replication level.
func (o *Orchestrator) ExpandVolume(ctx context.Context, name string, brickSpecs []string, replica int, force bool) error {
	if len(brickSpecs) == 0 {
		return gerrors.ErrEmptyBrickList
	}
	bricks, err := parseBrickSpecs(brickSpecs)
	if err != nil {
		return err
	}

	unlock := o.lockVolume(name)
	defer unlock()
	expOps.Add("volume-expand", 1)

	fresh, err := o.rec.Refresh(ctx)
	if err != nil {
		return err
	}
	if fresh.Volume(name) == nil {
		return gerrors.ErrVolNotFound
	}
	if err := checkBrickConflicts(fresh, name, bricks); err != nil {
		return err
	}

	args := []string{"volume", "add-brick", name}
	if replica > 0 {
		args = append(args, "replica", strconv.Itoa(replica))
	}
	args = append(args, brickSpecs...)
	if force {
		args = append(args, "force")
	}
	res, err := o.execRetry(ctx, executor.Command(args...))
	if err != nil {
		return err
	}
	if !res.Success() {
		expRejected.Add(1)
		return &gerrors.SemanticRejection{Reason: parser.RejectionReason(res.CombinedOutput())}
	}

	return o.poll(ctx, "volume add-brick "+name, func(ctx context.Context) (bool, string, error) {
		v, err := o.rec.RefreshVolume(ctx, name)
		if err != nil {
			return false, "", err
		}
		for _, b := range bricks {
			if !v.HasBrick(b.Hostname, b.Path) {
				return false, fmt.Sprintf("%d bricks", len(v.Bricks)), nil
			}
		}
		return true, fmt.Sprintf("%d bricks", len(v.Bricks)), nil
	})
}

// ShrinkVolume removes bricks from an existing volume and confirms they are
// gone from its brick list. The removal is committed immediately; data held
// only on the removed bricks is not migrated first. An optional replica
// count lowers the replication level.
func (o *Orchestrator) ShrinkVolume(ctx context.Context, name string, brickSpecs []string, replica int) error {
	if len(brickSpecs) == 0 {
		return gerrors.ErrEmptyBrickList
	}
	bricks, err := parseBrickSpecs(brickSpecs)
	if err != nil {
		return err
	}

	unlock := o.lockVolume(name)
	defer unlock()
	expOps.Add("volume-shrink", 1)

	vol, err := o.rec.RefreshVolume(ctx, name)
	if err != nil {
		return err
	}
	for _, b := range bricks {
		if !vol.HasBrick(b.Hostname, b.Path) {
			return &gerrors.InvalidTopology{
				Reason: fmt.Sprintf("brick %s is not part of volume %s", b.String(), name),
			}
		}
	}
	if len(bricks) >= len(vol.Bricks) {
		return &gerrors.InvalidTopology{
			Reason: fmt.Sprintf("removing %d of %d bricks would leave volume %s empty",
				len(bricks), len(vol.Bricks), name),
		}
	}

	args := []string{"volume", "remove-brick", name}
	if replica > 0 {
		args = append(args, "replica", strconv.Itoa(replica))
	}
	args = append(args, brickSpecs...)
	args = append(args, "force")
	res, err := o.execRetry(ctx, executor.Command(args...))
	if err != nil {
		return err
	}
	if !res.Success() {
		expRejected.Add(1)
		return &gerrors.SemanticRejection{Reason: parser.RejectionReason(res.CombinedOutput())}
	}

	return o.poll(ctx, "volume remove-brick "+name, func(ctx context.Context) (bool, string, error) {
		v, err := o.rec.RefreshVolume(ctx, name)
		if err != nil {
			return false, "", err
		}
		for _, b := range bricks {
			if v.HasBrick(b.Hostname, b.Path) {
				return false, fmt.Sprintf("%d bricks", len(v.Bricks)), nil
			}
		}
		return true, fmt.Sprintf("%d bricks", len(v.Bricks)), nil
	})
}

// checkVolumeState builds a poll check confirming a volume reached a state.
func (o *Orchestrator) checkVolumeState(name string, want api.VolState) func(context.Context) (bool, string, error) {
	return func(ctx context.Context) (bool, string, error) {
		v, err := o.rec.RefreshVolume(ctx, name)
		if errors.Is(err, gerrors.ErrVolNotFound) {
			return false, "absent", nil
		}
		if err != nil {
			return false, "", err
		}
		return v.State == want, v.State.String(), nil
	}
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
