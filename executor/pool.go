package executor

import (
	"context"
	"errors"

	"github.com/gluster/glustermgmt/pkg/gerrors"

	log "github.com/sirupsen/logrus"
)

// Pool runs a command against the first reachable node of a configured set.
// Only transport failures rotate to the next node; a node that answers, even
// with a refusal, settles the command.
type Pool struct {
	Exec  Executor
	Nodes []string
}

// NewPool returns a Pool over the given executor and node addresses.
func NewPool(exec Executor, nodes []string) *Pool {
	return &Pool{Exec: exec, Nodes: nodes}
}

// Run executes cmd against the pool.
func (p *Pool) Run(ctx context.Context, cmd CommandSpec) (Result, error) {
	if len(p.Nodes) == 0 {
		return Result{}, &gerrors.TransportError{Err: errors.New("no cluster nodes configured")}
	}

	var lastErr error
	for _, node := range p.Nodes {
		res, err := p.Exec.Execute(ctx, node, cmd)
		if err == nil {
			return res, nil
		}
		if !gerrors.IsTransport(err) {
			return res, err
		}
		log.WithFields(log.Fields{
			"node":    node,
			"command": cmd.String(),
		}).WithError(err).Debug("node unreachable, trying next")
		lastErr = err

		if ctx.Err() != nil {
			break
		}
	}
	return Result{}, lastErr
}
