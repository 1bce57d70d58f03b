package tct

import "errors"

var (
	// ErrCapacityExceeded reports an insert or finalization that would
	// overflow a tier. It is recoverable by finalizing the parent tier,
	// unless the eternity tier itself is saturated.
	ErrCapacityExceeded = errors.New("tier capacity exceeded")

	// ErrAlreadyFinalized reports an append or finalization attempted
	// against a tier instance that has already been finalized.
	// Finalization is a one way transition, never a no-op.
	ErrAlreadyFinalized = errors.New("tier is already finalized")

	// ErrNotFound reports a witness request for a position that was
	// never assigned by an insert.
	ErrNotFound = errors.New("no commitment was inserted at the position")

	// ErrForgotten reports a witness request for a position whose
	// retained data, or that of an ancestor subtree, has been
	// discarded. The digest is still part of the root but the full
	// path can no longer be reconstructed.
	ErrForgotten = errors.New("the commitment at the position has been forgotten")
)

var (
	ErrDigestSize       = errors.New("digest has the wrong size")
	ErrPositionRange    = errors.New("packed position value out of range")
	ErrTierSpecInvalid  = errors.New("tier heights must each be between 1 and 8")
	ErrPathLength       = errors.New("authentication path has the wrong number of levels")
	ErrPathBytesInvalid = errors.New("serialized authentication path is malformed")
	ErrVerifyFailed     = errors.New("authentication path does not recompute the root")
	ErrSnapshotInvalid  = errors.New("exported tree state is inconsistent")
)
