package tct

import (
	"bytes"
	"fmt"
)

// Export is the persisted form of a tree: tier heights, finalized tier
// roots, and the retained leaf digests plus retained-flag bitmaps of
// every unpruned block, keyed by position through the nesting order.
// Pruned subtrees are stored as their root alone; their leaf data is
// omitted entirely. The integer-keyed CBOR tags match the checkpoint
// codec's deterministic encoding.
type Export struct {
	BlockHeight    uint8         `cbor:"1,keyasint"`
	EpochHeight    uint8         `cbor:"2,keyasint"`
	EternityHeight uint8         `cbor:"3,keyasint"`
	Epochs         []EpochRecord `cbor:"4,keyasint"`
}

// EpochRecord is one epoch tier instance. Root is set once the epoch
// is finalized; Blocks is empty once the epoch is pruned.
type EpochRecord struct {
	Finalized bool          `cbor:"1,keyasint"`
	Pruned    bool          `cbor:"2,keyasint"`
	Root      []byte        `cbor:"3,keyasint,omitempty"`
	Blocks    []BlockRecord `cbor:"4,keyasint,omitempty"`
}

// BlockRecord is one block tier instance. Leaves holds every leaf
// digest in slot order (forgotten leaves keep their digest, it is
// still part of the root); Retained is the per slot liveness bitmap.
type BlockRecord struct {
	Finalized bool     `cbor:"1,keyasint"`
	Pruned    bool     `cbor:"2,keyasint"`
	Root      []byte   `cbor:"3,keyasint,omitempty"`
	Leaves    [][]byte `cbor:"4,keyasint,omitempty"`
	Retained  []byte   `cbor:"5,keyasint,omitempty"`
}

func retainedBit(bitmap []byte, i int) bool {
	return i/8 < len(bitmap) && bitmap[i/8]&(1<<(i%8)) != 0
}

// Export captures the tree's full persistable state. The result is
// independent of the tree and safe to hold across later mutations.
func (t *Tree) Export() *Export {
	x := &Export{
		BlockHeight:    t.spec.BlockHeight,
		EpochHeight:    t.spec.EpochHeight,
		EternityHeight: t.spec.EternityHeight,
		Epochs:         make([]EpochRecord, 0, len(t.epochs)),
	}
	for _, ep := range t.epochs {
		er := EpochRecord{
			Finalized: ep.tier.state == tierFinalized,
			Pruned:    ep.tier.pruned,
		}
		if er.Finalized {
			er.Root = ep.tier.root.Bytes()
		}
		for _, blk := range ep.blocks {
			br := BlockRecord{
				Finalized: blk.tier.state == tierFinalized,
				Pruned:    blk.tier.pruned,
			}
			if br.Finalized {
				br.Root = blk.tier.root.Bytes()
			}
			if !blk.tier.pruned {
				n := len(blk.tier.leaves)
				br.Leaves = make([][]byte, n)
				br.Retained = make([]byte, (n+7)/8)
				for i, slot := range blk.tier.leaves {
					br.Leaves[i] = slot.digest.Bytes()
					if slot.retained {
						br.Retained[i/8] |= 1 << (i % 8)
					}
				}
			}
			er.Blocks = append(er.Blocks, br)
		}
		x.Epochs = append(x.Epochs, er)
	}
	return x
}

// Restore rebuilds a tree from exported state, recomputing and cross
// checking every finalized root that still has its leaf data. Any
// mismatch, or any shape the lifecycle could not have produced, fails
// with ErrSnapshotInvalid: a wrong root must never be reconstructed
// silently.
func Restore(eng Engine, x *Export) (*Tree, error) {
	spec := TierSpec{
		BlockHeight:    x.BlockHeight,
		EpochHeight:    x.EpochHeight,
		EternityHeight: x.EternityHeight,
	}
	if err := spec.check(); err != nil {
		return nil, err
	}
	if len(x.Epochs) == 0 || uint64(len(x.Epochs)) > spec.EternityCapacity() {
		return nil, fmt.Errorf("%w: %d epoch records", ErrSnapshotInvalid, len(x.Epochs))
	}
	t := &Tree{
		eng:      eng,
		spec:     spec,
		eternity: newTier(spec.EternityHeight, spec.BlockHeight+spec.EpochHeight+1),
	}
	for i, er := range x.Epochs {
		lastEpoch := i == len(x.Epochs)-1
		if !er.Finalized && !lastEpoch {
			return nil, fmt.Errorf("%w: epoch %d is open but not the most recent", ErrSnapshotInvalid, i)
		}
		ep, err := t.restoreEpoch(i, er)
		if err != nil {
			return nil, err
		}
		t.epochs = append(t.epochs, ep)
	}
	// The lifecycle opens a fresh epoch immediately after finalization
	// while eternity slots remain, so a final finalized epoch implies a
	// saturated tree.
	if last := x.Epochs[len(x.Epochs)-1]; last.Finalized && uint64(len(x.Epochs)) < spec.EternityCapacity() {
		return nil, fmt.Errorf("%w: no open epoch in an unsaturated tree", ErrSnapshotInvalid)
	}
	return t, nil
}

func (t *Tree) restoreEpoch(i int, er EpochRecord) (*epoch, error) {
	if er.Pruned {
		if !er.Finalized || len(er.Blocks) != 0 {
			return nil, fmt.Errorf("%w: pruned epoch %d must be finalized with no block data", ErrSnapshotInvalid, i)
		}
		root, err := NewDigest(er.Root)
		if err != nil {
			return nil, fmt.Errorf("%w: epoch %d root: %v", ErrSnapshotInvalid, i, err)
		}
		ep := &epoch{tier: newTier(t.spec.EpochHeight, t.spec.BlockHeight+1)}
		ep.tier.state = tierFinalized
		ep.tier.prune()
		ep.tier.root = root
		if _, err := t.eternity.append(root); err != nil {
			return nil, err
		}
		return ep, nil
	}

	if len(er.Blocks) == 0 || uint64(len(er.Blocks)) > t.spec.EpochCapacity() {
		return nil, fmt.Errorf("%w: epoch %d has %d block records", ErrSnapshotInvalid, i, len(er.Blocks))
	}
	ep := &epoch{tier: newTier(t.spec.EpochHeight, t.spec.BlockHeight+1)}
	for j, br := range er.Blocks {
		lastBlock := j == len(er.Blocks)-1
		if !br.Finalized && (!lastBlock || er.Finalized) {
			return nil, fmt.Errorf("%w: block %d of epoch %d is open out of order", ErrSnapshotInvalid, j, i)
		}
		blk, err := t.restoreBlock(i, j, br)
		if err != nil {
			return nil, err
		}
		ep.blocks = append(ep.blocks, blk)
		if br.Finalized {
			if _, err := ep.tier.append(blk.tier.root); err != nil {
				return nil, err
			}
		}
	}
	if er.Finalized {
		root, err := ep.tier.finalize(t.eng)
		if err != nil {
			return nil, err
		}
		if !bytes.Equal(root[:], er.Root) {
			return nil, fmt.Errorf("%w: epoch %d root does not recompute", ErrSnapshotInvalid, i)
		}
		if _, err := t.eternity.append(root); err != nil {
			return nil, err
		}
	} else if last := er.Blocks[len(er.Blocks)-1]; last.Finalized && uint64(len(er.Blocks)) < t.spec.EpochCapacity() {
		return nil, fmt.Errorf("%w: no open block in unsaturated open epoch %d", ErrSnapshotInvalid, i)
	}
	return ep, nil
}

func (t *Tree) restoreBlock(i, j int, br BlockRecord) (*block, error) {
	blk := &block{tier: newTier(t.spec.BlockHeight, 1)}
	if br.Pruned {
		if !br.Finalized || len(br.Leaves) != 0 {
			return nil, fmt.Errorf("%w: pruned block %d of epoch %d must be finalized with no leaf data", ErrSnapshotInvalid, j, i)
		}
		root, err := NewDigest(br.Root)
		if err != nil {
			return nil, fmt.Errorf("%w: block %d of epoch %d root: %v", ErrSnapshotInvalid, j, i, err)
		}
		blk.tier.state = tierFinalized
		blk.tier.prune()
		blk.tier.root = root
		return blk, nil
	}

	if uint64(len(br.Leaves)) > t.spec.BlockCapacity() {
		return nil, fmt.Errorf("%w: block %d of epoch %d has %d leaves", ErrSnapshotInvalid, j, i, len(br.Leaves))
	}
	for ci, lb := range br.Leaves {
		d, err := NewDigest(lb)
		if err != nil {
			return nil, fmt.Errorf("%w: leaf %d of block %d epoch %d: %v", ErrSnapshotInvalid, ci, j, i, err)
		}
		blk.tier.leaves = append(blk.tier.leaves, leafSlot{digest: d, retained: retainedBit(br.Retained, ci)})
	}
	if br.Finalized {
		root, err := blk.tier.finalize(t.eng)
		if err != nil {
			return nil, err
		}
		if !bytes.Equal(root[:], br.Root) {
			return nil, fmt.Errorf("%w: block %d of epoch %d root does not recompute", ErrSnapshotInvalid, j, i)
		}
	}
	return blk, nil
}
