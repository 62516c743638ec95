// Package orchestrator turns management intents into cluster operations:
// issue the command, then confirm the outcome against fresh topology, because
// a command's exit status is a claim, not a confirmation. Commands are never
// assumed idempotent; only transport failures are retried.
package orchestrator

import (
	"context"
	"expvar"
	"sync"
	"time"

	"github.com/gluster/glustermgmt/executor"
	"github.com/gluster/glustermgmt/pkg/backoff"
	"github.com/gluster/glustermgmt/pkg/gerrors"
	"github.com/gluster/glustermgmt/reconcile"
	"github.com/gluster/glustermgmt/topology"

	log "github.com/sirupsen/logrus"
)

var (
	expOps       = expvar.NewMap("orchestrator.operations")
	expRetries   = expvar.NewInt("orchestrator.transport-retries")
	expRejected  = expvar.NewInt("orchestrator.rejections")
	expConfirmed = expvar.NewInt("orchestrator.confirmations")
)

// Options tune orchestration timing.
type Options struct {
	// PollInterval is the delay between post-condition checks.
	PollInterval time.Duration
	// OpTimeout bounds a single operation end to end, including
	// confirmation polling.
	OpTimeout time.Duration
	// NewBackOff supplies the retry schedule for transport failures.
	NewBackOff func() *backoff.BackOff
}

// DefaultOptions returns the stock timing configuration.
func DefaultOptions() Options {
	return Options{
		PollInterval: time.Second,
		OpTimeout:    2 * time.Minute,
		NewBackOff:   backoff.Default,
	}
}

func (o *Options) sanitize() {
	if o.PollInterval <= 0 {
		o.PollInterval = time.Second
	}
	if o.OpTimeout <= 0 {
		o.OpTimeout = 2 * time.Minute
	}
	if o.NewBackOff == nil {
		o.NewBackOff = backoff.Default
	}
}

// Orchestrator coordinates cluster operations over a node pool and keeps the
// topology model consistent with their outcomes. Operations on the same
// volume serialize; operations on different volumes may run concurrently.
type Orchestrator struct {
	pool *executor.Pool
	rec  *reconcile.Reconciler
	opts Options

	mu       sync.Mutex
	volLocks map[string]*sync.Mutex

	// peerMu serializes pool membership changes
	peerMu sync.Mutex
}

// New returns an Orchestrator over the given pool and reconciler.
func New(pool *executor.Pool, rec *reconcile.Reconciler, opts Options) *Orchestrator {
	opts.sanitize()
	return &Orchestrator{
		pool:     pool,
		rec:      rec,
		opts:     opts,
		volLocks: make(map[string]*sync.Mutex),
	}
}

// Topology returns a snapshot of the current topology model.
func (o *Orchestrator) Topology() topology.Snapshot {
	return o.rec.Model().Current()
}

// Refresh re-fetches the complete cluster topology.
func (o *Orchestrator) Refresh(ctx context.Context) (topology.Snapshot, error) {
	return o.rec.Refresh(ctx)
}

// VolumeNames fetches just the cluster's volume names, without refreshing
// the model.
func (o *Orchestrator) VolumeNames(ctx context.Context) ([]string, error) {
	return o.rec.VolumeNames(ctx)
}

// lockVolume takes the per-volume mutex and returns its unlock.
func (o *Orchestrator) lockVolume(name string) func() {
	o.mu.Lock()
	l, ok := o.volLocks[name]
	if !ok {
		l = &sync.Mutex{}
		o.volLocks[name] = l
	}
	o.mu.Unlock()

	l.Lock()
	return l.Unlock
}

// execRetry runs a command against the pool, retrying transport failures on
// a bounded backoff schedule. Any answer from a node, refusals included,
// ends the retries: the command may have taken effect.
func (o *Orchestrator) execRetry(ctx context.Context, cmd executor.CommandSpec) (executor.Result, error) {
	b := o.opts.NewBackOff()
	for {
		res, err := o.pool.Run(ctx, cmd)
		if err == nil || !gerrors.IsTransport(err) {
			return res, err
		}

		wait, ok := b.Next()
		if !ok {
			return executor.Result{}, err
		}
		expRetries.Add(1)
		log.WithFields(log.Fields{
			"command": cmd.String(),
			"wait":    wait,
			"attempt": b.Attempts(),
		}).WithError(err).Warn("transport failure, retrying")

		select {
		case <-time.After(wait):
		case <-ctx.Done():
			// cancellation abandons the wait; the cluster may still
			// apply the command
			return executor.Result{}, &gerrors.TransportError{Err: ctx.Err()}
		}
	}
}

// poll runs check at the configured interval until it reports done, fails,
// or the operation deadline passes. check returns the state it observed, for
// the timeout report.
func (o *Orchestrator) poll(ctx context.Context, op string, check func(context.Context) (bool, string, error)) error {
	deadline := time.Now().Add(o.opts.OpTimeout)
	ticker := time.NewTicker(o.opts.PollInterval)
	defer ticker.Stop()

	lastState := "unknown"
	for {
		done, state, err := check(ctx)
		if err != nil {
			return err
		}
		if state != "" {
			lastState = state
		}
		if done {
			expConfirmed.Add(1)
			return nil
		}
		if time.Now().After(deadline) {
			return &gerrors.OperationTimedOut{Op: op, LastState: lastState}
		}

		select {
		case <-ticker.C:
		case <-ctx.Done():
			return &gerrors.TransportError{Err: ctx.Err()}
		}
	}
}
