package tct

import "fmt"

// TierSpec fixes the height of each tier. The visible wire schema
// implies 24 levels split 8/8/8 but does not pin the boundaries, so
// the split is configurable; every height must be between 1 and 8 so
// that per tier offsets fit the 16 bit fields of Position.
type TierSpec struct {
	BlockHeight    uint8
	EpochHeight    uint8
	EternityHeight uint8
}

// DefaultTierSpec is the 8/8/8 split: 65,536 commitments per block,
// 65,536 blocks per epoch, 65,536 epochs, 24 levels in total.
var DefaultTierSpec = TierSpec{BlockHeight: 8, EpochHeight: 8, EternityHeight: 8}

func (s TierSpec) check() error {
	for _, h := range []uint8{s.BlockHeight, s.EpochHeight, s.EternityHeight} {
		if h < 1 || h > 8 {
			return fmt.Errorf("%w: got %d/%d/%d", ErrTierSpecInvalid, s.BlockHeight, s.EpochHeight, s.EternityHeight)
		}
	}
	return nil
}

// Depth is the total number of levels on any leaf to root path.
func (s TierSpec) Depth() uint8 {
	return s.BlockHeight + s.EpochHeight + s.EternityHeight
}

// BlockCapacity is the number of commitment slots in one block.
func (s TierSpec) BlockCapacity() uint64 { return 1 << (2 * uint(s.BlockHeight)) }

// EpochCapacity is the number of block slots in one epoch.
func (s TierSpec) EpochCapacity() uint64 { return 1 << (2 * uint(s.EpochHeight)) }

// EternityCapacity is the number of epoch slots in the eternity tier.
func (s TierSpec) EternityCapacity() uint64 { return 1 << (2 * uint(s.EternityHeight)) }

// Option configures a Tree at construction time.
type Option func(*treeOptions)

type treeOptions struct {
	spec TierSpec
}

// WithTierSpec overrides the default 8/8/8 tier heights.
func WithTierSpec(spec TierSpec) Option {
	return func(o *treeOptions) {
		o.spec = spec
	}
}
