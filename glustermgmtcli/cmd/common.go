package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/gluster/glustermgmt/executor"
	"github.com/gluster/glustermgmt/orchestrator"
	"github.com/gluster/glustermgmt/pkg/gerrors"
	"github.com/gluster/glustermgmt/reconcile"
	"github.com/gluster/glustermgmt/topology"

	"github.com/spf13/viper"
)

// Exit codes by failure class, so scripts can tell a refusal from an
// unreachable cluster.
const (
	exitUsage     = 1
	exitTransport = 2
	exitRejected  = 3
	exitTimedOut  = 4
	exitPartial   = 5
)

var orch *orchestrator.Orchestrator

var errNoNodes = `No cluster nodes reachable. Please check if
- the nodes given with --nodes are running glusterd and reachable from this node.
- the gluster binary is installed and on PATH.
`

func initOrchestrator() {
	local := executor.NewLocal()
	local.Binary = viper.GetString("gluster-binary")

	pool := executor.NewPool(local, viper.GetStringSlice("nodes"))
	rec := reconcile.New(pool, topology.New())
	orch = orchestrator.New(pool, rec, orchestrator.Options{
		PollInterval: viper.GetDuration("poll-interval"),
		OpTimeout:    viper.GetDuration("timeout"),
	})
}

// opCtx returns the context bounding one command invocation.
func opCtx() (context.Context, context.CancelFunc) {
	timeout := viper.GetDuration("timeout")
	if timeout <= 0 {
		timeout = 2 * time.Minute
	}
	// leave room for confirmation polling on top of command runs
	return context.WithTimeout(context.Background(), 2*timeout)
}

// exitCode maps an operation error onto the CLI failure classes.
func exitCode(err error) int {
	var (
		rejected *gerrors.SemanticRejection
		timedOut *gerrors.OperationTimedOut
		probeTO  *gerrors.ProbeTimeout
		partial  *gerrors.PartialFailure
	)
	switch {
	case gerrors.IsTransport(err):
		return exitTransport
	case errors.As(err, &rejected):
		return exitRejected
	case errors.As(err, &timedOut), errors.As(err, &probeTO):
		return exitTimedOut
	case errors.As(err, &partial):
		return exitPartial
	}
	return exitUsage
}

func failure(msg string, err error) {
	w := os.Stderr

	fmt.Fprintf(w, "%s\n", msg)
	if err == nil {
		os.Exit(exitUsage)
	}

	fmt.Fprintf(w, "\nError: %s\n", err)
	if gerrors.IsTransport(err) {
		fmt.Fprint(w, "\n", errNoNodes)
	}

	var partial *gerrors.PartialFailure
	if errors.As(err, &partial) {
		fmt.Fprintf(w, "\nCompleted steps: %v\nFailed step: %s\n", partial.Completed, partial.FailedStep)
		fmt.Fprint(w, "The cluster was left partially modified. Inspect and reconcile before retrying.\n")
	}

	os.Exit(exitCode(err))
}
