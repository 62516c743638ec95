package orchestrator

import (
	"github.com/gluster/glustermgmt/pkg/api"
	"github.com/gluster/glustermgmt/pkg/gerrors"
)

// validTransitions encodes the volume lifecycle. VolUnknown is absent on
// purpose: an indeterminate local state never blocks an operation, the
// pre-operation refresh settles it.
var validTransitions = map[api.VolState][]api.VolState{
	api.VolCreated: {api.VolStarted, api.VolDeleting},
	api.VolStarted: {api.VolStopped},
	api.VolStopped: {api.VolStarted, api.VolDeleting},
}

// checkTransition validates a lifecycle transition against the locally known
// state. It is a pure lookup; rejections here never contact the cluster.
func checkTransition(name string, from, to api.VolState) error {
	if from == api.VolUnknown || from == api.VolUnrecognized {
		return nil
	}
	for _, allowed := range validTransitions[from] {
		if allowed == to {
			return nil
		}
	}
	return &gerrors.InvalidTransition{
		Volume: name,
		From:   from.String(),
		To:     to.String(),
	}
}
