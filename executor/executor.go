// Package executor defines the node executor contract: run one management
// command against one cluster node and return the raw output. The transport
// behind an implementation is its own business; callers only see Result or a
// gerrors.TransportError.
package executor

import (
	"context"
	"strings"
)

// CommandSpec is a single management command, e.g. ["volume", "info", "v1"].
type CommandSpec struct {
	Args []string
}

// Command builds a CommandSpec from its arguments.
func Command(args ...string) CommandSpec {
	return CommandSpec{Args: args}
}

func (c CommandSpec) String() string {
	return strings.Join(c.Args, " ")
}

// Result is the raw outcome of a command that reached a node. A non-zero
// ExitCode is not a transport failure; the node answered, it just refused.
type Result struct {
	Output   []byte
	Stderr   []byte
	ExitCode int
}

// Success reports whether the node indicated success.
func (r Result) Success() bool {
	return r.ExitCode == 0
}

// CombinedOutput returns stdout followed by stderr, for rejection messages
// that clusters print to either stream.
func (r Result) CombinedOutput() string {
	return strings.TrimSpace(string(r.Output) + "\n" + string(r.Stderr))
}

// Executor executes one command against one cluster node. Implementations
// must honor the caller-supplied context deadline and return
// *gerrors.TransportError when the node could not be reached at all.
type Executor interface {
	Execute(ctx context.Context, node string, cmd CommandSpec) (Result, error)
}
