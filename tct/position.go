package tct

import "fmt"

// Position addresses one leaf slot for the lifetime of the tree. It is
// the three base-65536 digits of a single monotonically increasing
// insertion index: the epoch the commitment was inserted in, the block
// within that epoch, and the commitment's offset within the block.
//
// Positions are assigned in strictly increasing order and are never
// reassigned or reused, even after the leaf has been forgotten.
type Position struct {
	Epoch      uint16
	Block      uint16
	Commitment uint16
}

// positionIndexBits is the width of the packed position form; the top
// 16 bits of the uint64 are unused.
const positionIndexBits = 48

// Index packs the position into its 64 bit wire form: the epoch in
// bits 32..47, the block in bits 16..31 and the commitment offset in
// the low 16 bits.
func (p Position) Index() uint64 {
	return uint64(p.Epoch)<<32 | uint64(p.Block)<<16 | uint64(p.Commitment)
}

// PositionFromIndex unpacks a 64 bit packed position. Values with any
// of the top 16 bits set are rejected.
func PositionFromIndex(index uint64) (Position, error) {
	if index>>positionIndexBits != 0 {
		return Position{}, fmt.Errorf("%w: %#x", ErrPositionRange, index)
	}
	return Position{
		Epoch:      uint16(index >> 32),
		Block:      uint16(index >> 16),
		Commitment: uint16(index),
	}, nil
}

func (p Position) String() string {
	return fmt.Sprintf("(%d,%d,%d)", p.Epoch, p.Block, p.Commitment)
}

// slot returns the child slot index (0..3) selected by the position at
// the given level, counting levels from 1 at the leaf parents up to
// spec.Depth() at the root. This is the base-4 digit decomposition of
// the per tier offsets: the commitment offset selects slots within the
// block tier, the block offset within the epoch tier, and the epoch
// offset within the eternity tier.
func (p Position) slot(spec TierSpec, level uint8) uint8 {
	switch {
	case level <= spec.BlockHeight:
		return uint8(p.Commitment>>(2*(level-1))) & 3
	case level <= spec.BlockHeight+spec.EpochHeight:
		return uint8(p.Block>>(2*(level-spec.BlockHeight-1))) & 3
	default:
		return uint8(p.Epoch>>(2*(level-spec.BlockHeight-spec.EpochHeight-1))) & 3
	}
}
