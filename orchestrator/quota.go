package orchestrator

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/gluster/glustermgmt/executor"
	"github.com/gluster/glustermgmt/parser"
	"github.com/gluster/glustermgmt/pkg/api"
	"github.com/gluster/glustermgmt/pkg/gerrors"

	log "github.com/sirupsen/logrus"
)

// quotaOption is the volume option the cluster flips when quota enforcement
// is turned on or off.
const quotaOption = "features.quota"

// QuotasEnabled reports whether quota enforcement is on for the volume,
// judged from its options.
func QuotasEnabled(v *api.Volume) bool {
	return v.Options[quotaOption] == "on"
}

// EnableQuota turns on quota enforcement for a volume and confirms the
// cluster reports it enabled. Enabling twice is a no-op.
func (o *Orchestrator) EnableQuota(ctx context.Context, name string) error {
	unlock := o.lockVolume(name)
	defer unlock()
	expOps.Add("quota-enable", 1)

	vol, err := o.rec.RefreshVolume(ctx, name)
	if err != nil {
		return err
	}
	if QuotasEnabled(vol) {
		return nil
	}

	res, err := o.execRetry(ctx, executor.Command("volume", "quota", name, "enable"))
	if err != nil {
		return err
	}
	if !res.Success() {
		expRejected.Add(1)
		return &gerrors.SemanticRejection{Reason: parser.RejectionReason(res.CombinedOutput())}
	}

	err = o.poll(ctx, "quota enable "+name, o.checkQuotaOption(name, true))
	if err != nil {
		return err
	}
	log.WithField("volume", name).Info("quota enforcement enabled")
	return nil
}

// DisableQuota turns off quota enforcement for a volume and confirms the
// cluster reports it disabled. Existing limits are discarded by the cluster.
func (o *Orchestrator) DisableQuota(ctx context.Context, name string) error {
	unlock := o.lockVolume(name)
	defer unlock()
	expOps.Add("quota-disable", 1)

	vol, err := o.rec.RefreshVolume(ctx, name)
	if err != nil {
		return err
	}
	if !QuotasEnabled(vol) {
		return nil
	}

	res, err := o.execRetry(ctx, executor.Command("volume", "quota", name, "disable"))
	if err != nil {
		return err
	}
	if !res.Success() {
		expRejected.Add(1)
		return &gerrors.SemanticRejection{Reason: parser.RejectionReason(res.CombinedOutput())}
	}

	err = o.poll(ctx, "quota disable "+name, o.checkQuotaOption(name, false))
	if err != nil {
		return err
	}
	log.WithField("volume", name).Info("quota enforcement disabled")
	return nil
}

// ListQuotas returns the configured quotas of a volume. A volume without
// quotas configured lists as empty.
func (o *Orchestrator) ListQuotas(ctx context.Context, name string) ([]api.Quota, error) {
	expOps.Add("quota-list", 1)

	res, err := o.execRetry(ctx, executor.Command("volume", "quota", name, "list"))
	if err != nil {
		return nil, err
	}
	if !res.Success() {
		expRejected.Add(1)
		return nil, &gerrors.SemanticRejection{Reason: parser.RejectionReason(res.CombinedOutput())}
	}
	return parser.ParseQuotaList(res.Output), nil
}

// AddQuota sets a usage limit in bytes on a directory of the volume and
// confirms the limit is listed.
func (o *Orchestrator) AddQuota(ctx context.Context, name, path string, limit uint64) error {
	if !strings.HasPrefix(path, "/") {
		return fmt.Errorf("invalid quota path %q, expected an absolute path", path)
	}
	if limit == 0 {
		return fmt.Errorf("quota limit must be positive")
	}

	unlock := o.lockVolume(name)
	defer unlock()
	expOps.Add("quota-add", 1)

	if _, err := o.rec.RefreshVolume(ctx, name); err != nil {
		return err
	}

	cmd := executor.Command("volume", "quota", name, "limit-usage", path, strconv.FormatUint(limit, 10))
	res, err := o.execRetry(ctx, cmd)
	if err != nil {
		return err
	}
	if !res.Success() {
		expRejected.Add(1)
		return &gerrors.SemanticRejection{Reason: parser.RejectionReason(res.CombinedOutput())}
	}

	return o.poll(ctx, "quota limit "+name+":"+path, func(ctx context.Context) (bool, string, error) {
		quotas, err := o.ListQuotas(ctx, name)
		if err != nil {
			return false, "", err
		}
		for _, q := range quotas {
			if q.Path == path {
				return true, "listed", nil
			}
		}
		return false, "absent", nil
	})
}

// RemoveQuota drops the usage limit on a directory of the volume and
// confirms it is no longer listed.
func (o *Orchestrator) RemoveQuota(ctx context.Context, name, path string) error {
	unlock := o.lockVolume(name)
	defer unlock()
	expOps.Add("quota-remove", 1)

	if _, err := o.rec.RefreshVolume(ctx, name); err != nil {
		return err
	}

	res, err := o.execRetry(ctx, executor.Command("volume", "quota", name, "remove", path))
	if err != nil {
		return err
	}
	if !res.Success() {
		expRejected.Add(1)
		return &gerrors.SemanticRejection{Reason: parser.RejectionReason(res.CombinedOutput())}
	}

	return o.poll(ctx, "quota remove "+name+":"+path, func(ctx context.Context) (bool, string, error) {
		quotas, err := o.ListQuotas(ctx, name)
		if err != nil {
			return false, "", err
		}
		for _, q := range quotas {
			if q.Path == path {
				return false, "listed", nil
			}
		}
		return true, "absent", nil
	})
}

// checkQuotaOption builds a poll check confirming quota enforcement reached
// the wanted setting.
func (o *Orchestrator) checkQuotaOption(name string, want bool) func(context.Context) (bool, string, error) {
	return func(ctx context.Context) (bool, string, error) {
		v, err := o.rec.RefreshVolume(ctx, name)
		if err != nil {
			return false, "", err
		}
		state := v.Options[quotaOption]
		if state == "" {
			state = "unset"
		}
		return QuotasEnabled(v) == want, state, nil
	}
}
