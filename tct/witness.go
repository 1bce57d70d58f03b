package tct

import (
	"bytes"
	"fmt"
)

// PathStep carries the three sibling digests for one level of an
// authentication path, in ascending child slot order with the path's
// own slot excluded. Verifiers outside this package depend on exactly
// this ordering.
type PathStep struct {
	Siblings [3]Digest
}

// AuthPath is the witness for one commitment: the position it was
// inserted at and one PathStep per level from the leaf to the
// eternity root. With the default tier heights it is 24 steps, the
// first 8 within the block, the next 8 within the epoch (the
// finalized block root standing as the leaf) and the last 8 within
// the eternity tier.
type AuthPath struct {
	Position Position
	Steps    []PathStep
}

// RecomputeRoot folds the leaf digest up through the sibling set,
// selecting the path's slot at each level from the position's base-4
// digits, and returns the resulting root.
func (p *AuthPath) RecomputeRoot(eng Engine, spec TierSpec, leaf Digest) (Digest, error) {
	depth := spec.Depth()
	if len(p.Steps) != int(depth) {
		return Digest{}, fmt.Errorf("%w: got %d steps, want %d", ErrPathLength, len(p.Steps), depth)
	}
	cur := leaf
	for level := uint8(1); level <= depth; level++ {
		slot := p.Position.slot(spec, level)
		step := p.Steps[level-1]
		var children [4]Digest
		si := 0
		for k := uint8(0); k < 4; k++ {
			if k == slot {
				children[k] = cur
				continue
			}
			children[k] = step.Siblings[si]
			si++
		}
		cur = eng.Combine(level, children)
	}
	return cur, nil
}

// VerifyInclusion reports whether the path proves that leaf is
// committed at path.Position under root. On failure the error wraps
// ErrVerifyFailed.
func VerifyInclusion(eng Engine, spec TierSpec, path *AuthPath, root Digest, leaf Digest) (bool, error) {
	got, err := path.RecomputeRoot(eng, spec, leaf)
	if err != nil {
		return false, err
	}
	if !bytes.Equal(got[:], root[:]) {
		return false, fmt.Errorf("%w: recomputed %s, want %s", ErrVerifyFailed, got, root)
	}
	return true, nil
}
