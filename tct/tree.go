package tct

import "fmt"

// block is one commitment tier instance. Its leaves are the raw
// commitment digests inserted at consecutive positions.
type block struct {
	tier *tier
}

// epoch is one epoch tier instance. The tier's leaves are the roots of
// finalized blocks; blocks holds the block instances themselves, one
// per block ever opened in this epoch, for as long as any of their
// leaf data is retained.
type epoch struct {
	tier   *tier
	blocks []*block
}

// Tree composes the block, epoch and eternity tiers into one logical
// commitment structure. It owns all node and leaf storage exclusively.
//
// The tree always keeps exactly one epoch open with one block open
// inside it, except when a tier has been driven to saturation: an
// epoch whose every block slot is finalized has no open block until
// the epoch itself is finalized, and a tree whose every epoch slot is
// finalized accepts no further mutation at all.
//
// Tree performs no internal locking: callers enforce the single
// writer, shared reader discipline externally.
type Tree struct {
	eng      Engine
	spec     TierSpec
	eternity *tier
	epochs   []*epoch
}

// New creates an empty tree: one open, empty epoch containing one
// open, empty block.
func New(eng Engine, opts ...Option) (*Tree, error) {
	o := treeOptions{spec: DefaultTierSpec}
	for _, opt := range opts {
		opt(&o)
	}
	if err := o.spec.check(); err != nil {
		return nil, err
	}
	t := &Tree{
		eng:      eng,
		spec:     o.spec,
		eternity: newTier(o.spec.EternityHeight, o.spec.BlockHeight+o.spec.EpochHeight+1),
	}
	t.epochs = append(t.epochs, t.newEpoch())
	return t, nil
}

// Spec returns the tier heights the tree was built with.
func (t *Tree) Spec() TierSpec { return t.spec }

func (t *Tree) newEpoch() *epoch {
	ep := &epoch{tier: newTier(t.spec.EpochHeight, t.spec.BlockHeight+1)}
	ep.blocks = append(ep.blocks, t.newBlock())
	return ep
}

func (t *Tree) newBlock() *block {
	return &block{tier: newTier(t.spec.BlockHeight, 1)}
}

// openEpoch returns the current open epoch, or nil when the eternity
// tier is saturated.
func (t *Tree) openEpoch() (*epoch, int) {
	if len(t.epochs) == 0 {
		return nil, 0
	}
	last := len(t.epochs) - 1
	ep := t.epochs[last]
	if ep.tier.state == tierFinalized {
		return nil, 0
	}
	return ep, last
}

// openBlock returns the epoch's open block, or nil when every block
// slot in the epoch has been finalized.
func (ep *epoch) openBlock() (*block, int) {
	if len(ep.blocks) == 0 {
		return nil, 0
	}
	last := len(ep.blocks) - 1
	blk := ep.blocks[last]
	if blk.tier.state == tierFinalized {
		return nil, 0
	}
	return blk, last
}

// Insert appends a commitment to the open block's next free slot and
// returns the assigned position. The position is never reassigned or
// reused, even after the commitment is forgotten.
func (t *Tree) Insert(commitment Digest) (Position, error) {
	ep, eIdx := t.openEpoch()
	if ep == nil {
		return Position{}, fmt.Errorf("%w: the eternity tier is saturated", ErrCapacityExceeded)
	}
	blk, bIdx := ep.openBlock()
	if blk == nil {
		return Position{}, fmt.Errorf(
			"%w: epoch %d holds %d finalized blocks, finalize the epoch first",
			ErrCapacityExceeded, eIdx, len(ep.blocks))
	}
	cIdx, err := blk.tier.append(commitment)
	if err != nil {
		return Position{}, fmt.Errorf("%w: block %d of epoch %d is full, finalize the block first",
			ErrCapacityExceeded, bIdx, eIdx)
	}
	return Position{Epoch: uint16(eIdx), Block: uint16(bIdx), Commitment: uint16(cIdx)}, nil
}

// FinalizeBlock closes the open block, folds its root into the open
// epoch's next leaf slot, and opens a fresh block while slots remain.
// It returns the finalized block root.
func (t *Tree) FinalizeBlock() (Digest, error) {
	ep, eIdx := t.openEpoch()
	if ep == nil {
		return Digest{}, fmt.Errorf("%w: the eternity tier is saturated", ErrCapacityExceeded)
	}
	blk, _ := ep.openBlock()
	if blk == nil {
		return Digest{}, fmt.Errorf(
			"%w: epoch %d is out of block slots, finalize the epoch first", ErrCapacityExceeded, eIdx)
	}
	root, err := blk.tier.finalize(t.eng)
	if err != nil {
		return Digest{}, err
	}
	// The open block existed, so the epoch tier has a free slot.
	if _, err := ep.tier.append(root); err != nil {
		return Digest{}, err
	}
	if uint64(len(ep.blocks)) < t.spec.EpochCapacity() {
		ep.blocks = append(ep.blocks, t.newBlock())
	}
	return root, nil
}

// FinalizeEpoch closes the open epoch, folding any still open block
// first, appends the epoch root to the eternity tier, and opens a
// fresh epoch while epoch slots remain. It returns the finalized
// epoch root.
func (t *Tree) FinalizeEpoch() (Digest, error) {
	ep, _ := t.openEpoch()
	if ep == nil {
		return Digest{}, fmt.Errorf("%w: the eternity tier is saturated", ErrCapacityExceeded)
	}
	if blk, _ := ep.openBlock(); blk != nil {
		root, err := blk.tier.finalize(t.eng)
		if err != nil {
			return Digest{}, err
		}
		if _, err := ep.tier.append(root); err != nil {
			return Digest{}, err
		}
	}
	root, err := ep.tier.finalize(t.eng)
	if err != nil {
		return Digest{}, err
	}
	if _, err := t.eternity.append(root); err != nil {
		return Digest{}, err
	}
	if uint64(len(t.epochs)) < t.spec.EternityCapacity() {
		t.epochs = append(t.epochs, t.newEpoch())
	}
	return root, nil
}

// Root returns the current eternity root. It is a pure function of
// the insert/finalize/forget history; the only mutation is cache
// population along paths invalidated since the last call.
func (t *Tree) Root() Digest {
	ep, _ := t.openEpoch()
	if ep == nil {
		return t.eternity.rootDigest(t.eng)
	}
	return t.eternity.rootWith(t.eng, t.openEpochRoot(ep))
}

// openEpochRoot is the live root of the open epoch, including the
// live root of its open block.
func (t *Tree) openEpochRoot(ep *epoch) Digest {
	blk, _ := ep.openBlock()
	if blk == nil {
		return ep.tier.rootDigest(t.eng)
	}
	return ep.tier.rootWith(t.eng, blk.tier.rootDigest(t.eng))
}

// Frontier returns the position the next Insert would be assigned.
// The second result is false when no insertion is currently possible:
// either the open epoch is out of block slots or the whole tree is
// saturated.
func (t *Tree) Frontier() (Position, bool) {
	ep, eIdx := t.openEpoch()
	if ep == nil {
		return Position{}, false
	}
	blk, bIdx := ep.openBlock()
	if blk == nil || uint64(len(blk.tier.leaves)) == t.spec.BlockCapacity() {
		return Position{}, false
	}
	return Position{Epoch: uint16(eIdx), Block: uint16(bIdx), Commitment: uint16(len(blk.tier.leaves))}, true
}

// locate resolves a position to its block, distinguishing positions
// that were never assigned from positions whose data has been pruned.
func (t *Tree) locate(pos Position) (*epoch, *block, error) {
	if int(pos.Epoch) >= len(t.epochs) {
		return nil, nil, fmt.Errorf("%w: %s", ErrNotFound, pos)
	}
	ep := t.epochs[pos.Epoch]
	if ep.tier.pruned {
		return nil, nil, fmt.Errorf("%w: epoch %d has been pruned", ErrForgotten, pos.Epoch)
	}
	if int(pos.Block) >= len(ep.blocks) {
		return nil, nil, fmt.Errorf("%w: %s", ErrNotFound, pos)
	}
	blk := ep.blocks[pos.Block]
	if blk.tier.pruned {
		return nil, nil, fmt.Errorf("%w: block %d of epoch %d has been pruned", ErrForgotten, pos.Block, pos.Epoch)
	}
	if int(pos.Commitment) >= len(blk.tier.leaves) {
		return nil, nil, fmt.Errorf("%w: %s", ErrNotFound, pos)
	}
	return ep, blk, nil
}

// LeafDigest returns the commitment digest recorded at the position.
// Like Witness it fails with ErrForgotten once the data is discarded.
func (t *Tree) LeafDigest(pos Position) (Digest, error) {
	_, blk, err := t.locate(pos)
	if err != nil {
		return Digest{}, err
	}
	slot := blk.tier.leaves[pos.Commitment]
	if !slot.retained {
		return Digest{}, fmt.Errorf("%w: %s", ErrForgotten, pos)
	}
	return slot.digest, nil
}

// Forget discards the retained data for the position while keeping its
// digest in place, so the root and every other retained witness are
// unaffected. When a finalized block's every leaf is forgotten the
// whole block is pruned to its root, and likewise a finalized epoch
// whose every block is pruned. Idempotent; returns true if the
// position was ever assigned.
func (t *Tree) Forget(pos Position) bool {
	if int(pos.Epoch) >= len(t.epochs) {
		return false
	}
	ep := t.epochs[pos.Epoch]
	if ep.tier.pruned {
		return true
	}
	if int(pos.Block) >= len(ep.blocks) {
		return false
	}
	blk := ep.blocks[pos.Block]
	if blk.tier.pruned {
		return true
	}
	if int(pos.Commitment) >= len(blk.tier.leaves) {
		return false
	}
	blk.tier.leaves[pos.Commitment].retained = false

	if blk.tier.state == tierFinalized && blk.tier.allForgotten() {
		blk.tier.prune()
	}
	if ep.tier.state == tierFinalized {
		for _, b := range ep.blocks {
			if !b.tier.pruned {
				return true
			}
		}
		ep.tier.prune()
		ep.blocks = nil
	}
	return true
}

// Witness produces the authentication path from the commitment at pos
// to the current eternity root: Depth levels of three sibling digests,
// tier boundaries invisible. The path verifies against Root() for as
// long as no further mutation occurs.
func (t *Tree) Witness(pos Position) (*AuthPath, error) {
	ep, blk, err := t.locate(pos)
	if err != nil {
		return nil, err
	}
	if !blk.tier.leaves[pos.Commitment].retained {
		return nil, fmt.Errorf("%w: %s", ErrForgotten, pos)
	}

	depth := int(t.spec.Depth())
	steps := make([]PathStep, 0, depth)
	steps = append(steps, blk.tier.witnessSteps(t.eng, int(pos.Commitment), nil)...)

	// Within the epoch tier the open block, if any, logically occupies
	// the slot after the finalized block roots; the target may be that
	// very slot when pos addresses a commitment in the open block.
	var virtual *Digest
	if ob, _ := ep.openBlock(); ob != nil {
		d := ob.tier.rootDigest(t.eng)
		virtual = &d
	}
	steps = append(steps, ep.tier.witnessSteps(t.eng, int(pos.Block), virtual)...)

	virtual = nil
	if oe, _ := t.openEpoch(); oe != nil {
		d := t.openEpochRoot(oe)
		virtual = &d
	}
	steps = append(steps, t.eternity.witnessSteps(t.eng, int(pos.Epoch), virtual)...)

	path := &AuthPath{Position: pos, Steps: steps}
	return path, nil
}
