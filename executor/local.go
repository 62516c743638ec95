package executor

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
	"time"

	"github.com/gluster/glustermgmt/pkg/gerrors"

	log "github.com/sirupsen/logrus"
)

const defaultBinary = "gluster"

// Local invokes the gluster CLI binary on this host. Commands for a remote
// node are routed through the CLI's --remote-host option.
type Local struct {
	// Binary is the CLI to invoke. Defaults to "gluster".
	Binary string
	// Timeout caps a single invocation when the context carries no
	// deadline of its own.
	Timeout time.Duration
}

// NewLocal returns a Local executor with defaults applied.
func NewLocal() *Local {
	return &Local{Binary: defaultBinary, Timeout: 30 * time.Second}
}

// Execute runs one command against one node.
func (l *Local) Execute(ctx context.Context, node string, cmd CommandSpec) (Result, error) {
	binary := l.Binary
	if binary == "" {
		binary = defaultBinary
	}

	if _, ok := ctx.Deadline(); !ok && l.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, l.Timeout)
		defer cancel()
	}

	// --mode=script suppresses interactive confirmation prompts
	args := []string{"--mode=script"}
	if node != "" {
		args = append(args, "--remote-host="+node)
	}
	args = append(args, cmd.Args...)

	var stdout, stderr bytes.Buffer
	c := exec.CommandContext(ctx, binary, args...)
	c.Stdout = &stdout
	c.Stderr = &stderr

	log.WithFields(log.Fields{
		"node":    node,
		"command": cmd.String(),
	}).Debug("executing cluster command")

	err := c.Run()
	if err == nil {
		return Result{Output: stdout.Bytes(), Stderr: stderr.Bytes()}, nil
	}

	if ctx.Err() != nil {
		return Result{}, &gerrors.TransportError{Node: node, Err: ctx.Err()}
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		// The node answered and refused; not a transport failure.
		return Result{
			Output:   stdout.Bytes(),
			Stderr:   stderr.Bytes(),
			ExitCode: exitErr.ExitCode(),
		}, nil
	}

	return Result{}, &gerrors.TransportError{Node: node, Err: err}
}
