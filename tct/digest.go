package tct

import (
	"encoding/hex"
	"fmt"
)

// DigestBytes is the size of every digest in the tree: leaf
// commitments, interior node hashes and tier roots are all exactly
// this many bytes.
const DigestBytes = 32

// Digest is an opaque fixed size hash value. Equality is byte exact.
// Leaf digests are produced by an external commitment function and are
// opaque to this package; interior digests are produced by an Engine.
type Digest [DigestBytes]byte

// NewDigest copies b into a Digest. The length must be exactly
// DigestBytes.
func NewDigest(b []byte) (Digest, error) {
	var d Digest
	if len(b) != DigestBytes {
		return d, fmt.Errorf("%w: got %d bytes, want %d", ErrDigestSize, len(b), DigestBytes)
	}
	copy(d[:], b)
	return d, nil
}

// Bytes returns the digest value as a fresh slice.
func (d Digest) Bytes() []byte {
	out := make([]byte, DigestBytes)
	copy(out, d[:])
	return out
}

func (d Digest) String() string {
	return hex.EncodeToString(d[:])
}

// Engine combines up to four child digests into a parent digest. It
// is the single external collaborator of the tree: implementations
// must be deterministic, collision resistant, and domain separated by
// level so a parent at one level can never be confused with a parent
// at another.
//
// Level runs from 1 (parents of leaf commitments) up to the total tree
// depth (the eternity root). Empty slots are passed to Combine as the
// engine's Empty constant.
type Engine interface {
	// Combine returns the parent digest of the four children at the
	// given level.
	Combine(level uint8, children [4]Digest) Digest

	// Empty returns the fixed public constant representing an unused
	// slot. It must be distinct from any valid commitment digest and
	// from any Combine output.
	Empty() Digest
}
