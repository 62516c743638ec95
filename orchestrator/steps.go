package orchestrator

import (
	"context"

	"github.com/gluster/glustermgmt/pkg/gerrors"

	log "github.com/sirupsen/logrus"
)

// Step is one named unit of a multi-step operation.
type Step struct {
	Name string
	Do   func(context.Context) error
}

// Plan is an ordered sequence of steps with no rollback. A failure mid-plan
// leaves the earlier steps applied; the error reports exactly how far the
// plan got so the caller can reconcile and decide.
type Plan struct {
	Op    string
	Steps []Step
}

// Run executes the plan in order. When a step fails after others completed,
// the error is a *gerrors.PartialFailure naming the completed steps.
func (p *Plan) Run(ctx context.Context) error {
	var completed []string
	for _, s := range p.Steps {
		logger := log.WithFields(log.Fields{"op": p.Op, "step": s.Name})
		logger.Debug("running step")

		if err := s.Do(ctx); err != nil {
			if len(completed) == 0 {
				return err
			}
			logger.WithError(err).Error("step failed mid-plan")
			return &gerrors.PartialFailure{
				Op:         p.Op,
				Completed:  completed,
				FailedStep: s.Name,
				Cause:      err,
			}
		}
		completed = append(completed, s.Name)
	}
	return nil
}
