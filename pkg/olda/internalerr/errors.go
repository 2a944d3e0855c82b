// Package internalerr holds sentinel errors shared across the olda engine.
package internalerr

import "errors"

// Sentinel errors for common failure modes of the particle filter.
var (
	ErrDegenerateDistribution = errors.New("degenerate distribution: all weights zero or empty")
	ErrEmptyDistribution      = errors.New("empty distribution")
	ErrParticleCollapse       = errors.New("particle collapse: all weights zero after reweight")
	ErrAssignmentMissing      = errors.New("assignment missing: no ancestor defines this position")
	ErrReservoirSlotOutOfRange = errors.New("reservoir slot out of range")
	ErrInvalidConfig          = errors.New("invalid configuration")
)
