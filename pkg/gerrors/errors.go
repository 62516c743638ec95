// Package gerrors defines the error taxonomy shared by the parser, the
// reconciler and the orchestrator. Sentinel errors cover local precondition
// failures; the structured types in taxonomy.go carry enough context for a
// caller to decide on safe manual remediation.
package gerrors

import "errors"

// Sentinel errors for conditions detected locally, before or without
// contacting the cluster.
var (
	ErrVolNotFound        = errors.New("volume not found")
	ErrVolExists          = errors.New("volume already exists")
	ErrVolAlreadyStarted  = errors.New("volume already started")
	ErrVolAlreadyStopped  = errors.New("volume already stopped")
	ErrVolNotStarted      = errors.New("volume not started")
	ErrEmptyVolName       = errors.New("volume name is empty")
	ErrInvalidVolName     = errors.New("volume name is invalid")
	ErrEmptyBrickList     = errors.New("brick list is empty")
	ErrDuplicateBrickPath = errors.New("duplicate brick path in request")
	ErrPeerNotFound       = errors.New("peer not found")
)
