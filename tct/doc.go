// Package tct implements a tiered commitment tree: an append only,
// position addressed merkle structure for state commitments in a
// privacy preserving ledger.
//
// # Motivation for the tiered structure
//
// A shielded ledger records every state commitment ever created in a
// single global accumulator so that spend proofs can demonstrate
// membership without revealing which commitment is being spent. The
// accumulator must support three things that are usually in tension:
//
//  1. Cheap incremental appends, because commitments arrive with every
//     transaction.
//  2. Witness (authentication path) generation for any commitment the
//     holder cares about, against the single global root.
//  3. Aggressive discarding of everything the holder does not care
//     about, without invalidating the root or any retained witness.
//
// The tree is quaternary and is composed of three nested tiers, each a
// fixed height quaternary tree: commitments fill a block, finalized
// block roots fill an epoch, and finalized epoch roots fill the top
// (eternity) tier. With the default tier heights of 8 the full
// structure is 24 levels deep and each authentication path carries
// exactly three sibling digests per level.
//
// Tiering means the working set is always one open block and one open
// epoch; everything beneath a finalization boundary is immutable and
// can be represented by a single digest once its leaf data has been
// forgotten. Forgetting is a pure data release: a leaf's digest always
// remains part of the root, only the ability to produce its witness is
// given up.
//
// The hash function is supplied by the caller as an Engine. Empty
// slots hash as the engine's fixed empty constant, and combining is
// domain separated by level, so paths at one level cannot be replayed
// at another.
//
// A Tree is a single writer, shared reader resource. It performs no
// locking of its own; callers coordinate one mutator at a time, and
// any number of readers may call Witness and Root against a stable
// snapshot.
package tct
