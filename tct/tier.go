package tct

// tierState is the one way lifecycle of a tier instance.
type tierState uint8

const (
	tierOpen tierState = iota
	tierFinalized
)

// leafSlot holds one appended leaf digest plus its liveness flag. For
// the block tier the digest is a raw commitment and retained reports
// whether the witness data is still held; for the epoch and eternity
// tiers the digest is a finalized child root and retained is unused.
type leafSlot struct {
	digest   Digest
	retained bool
}

// tier is one fixed height quaternary tree. Interior digests are held
// in cells, one row per level above the leaves, and are recomputed
// lazily: dirty is the lowest leaf index whose ancestor cells are
// stale. A subtree slot that has never held a leaf hashes as the
// engine's empty constant, so rows are only as wide as the leaves
// require.
//
// Once pruned, everything except the root digest is released; the tier
// remains addressable but can no longer serve witnesses.
type tier struct {
	height uint8
	base   uint8 // absolute level of the first combine above the leaves
	state  tierState
	leaves []leafSlot
	cells  [][]Digest
	dirty  int
	pruned bool
	root   Digest // valid once finalized or pruned, cache otherwise
}

func newTier(height, base uint8) *tier {
	return &tier{height: height, base: base}
}

func (t *tier) capacity() uint64 {
	return 1 << (2 * uint(t.height))
}

// append adds a leaf in the next free slot and returns its index. The
// previously computed cells to the left of the new leaf stay valid.
func (t *tier) append(d Digest) (int, error) {
	if t.state == tierFinalized {
		return 0, ErrAlreadyFinalized
	}
	i := len(t.leaves)
	if uint64(i) == t.capacity() {
		return 0, ErrCapacityExceeded
	}
	t.leaves = append(t.leaves, leafSlot{digest: d, retained: true})
	return i, nil
}

// finalize closes the tier and fixes its root. One way: a second call
// is an error, never a no-op.
func (t *tier) finalize(eng Engine) (Digest, error) {
	if t.state == tierFinalized {
		return Digest{}, ErrAlreadyFinalized
	}
	root := t.rootDigest(eng)
	t.state = tierFinalized
	t.root = root
	return root, nil
}

// prune releases the leaf and cell storage of a finalized tier,
// keeping only the root digest.
func (t *tier) prune() {
	t.leaves = nil
	t.cells = nil
	t.dirty = 0
	t.pruned = true
}

func (t *tier) allForgotten() bool {
	for i := range t.leaves {
		if t.leaves[i].retained {
			return false
		}
	}
	return true
}

// childDigest reads the digest of node ci at the given child level: 0
// addresses the leaves, higher levels address the cell rows. Slots
// beyond the populated width have never held a leaf and are empty.
func (t *tier) childDigest(childLevel, ci int, empty Digest) Digest {
	if childLevel == 0 {
		if ci < len(t.leaves) {
			return t.leaves[ci].digest
		}
		return empty
	}
	if childLevel-1 >= len(t.cells) {
		return empty
	}
	row := t.cells[childLevel-1]
	if ci >= len(row) {
		return empty
	}
	return row[ci]
}

// refresh folds any stale suffix of the leaves back up through the
// cell rows. Appends only ever invalidate cells on the right hand
// frontier, so the amortized cost per append is constant per level.
func (t *tier) refresh(eng Engine) {
	n := len(t.leaves)
	if t.pruned || n == 0 || t.dirty == n {
		return
	}
	empty := eng.Empty()
	width := n
	for h := 0; h < int(t.height); h++ {
		width = (width + 3) / 4
		if h == len(t.cells) {
			t.cells = append(t.cells, make([]Digest, 0, width))
		}
		row := t.cells[h]
		for len(row) < width {
			row = append(row, Digest{})
		}
		for j := t.dirty >> (2 * uint(h+1)); j < width; j++ {
			var children [4]Digest
			for k := 0; k < 4; k++ {
				children[k] = t.childDigest(h, j*4+k, empty)
			}
			row[j] = eng.Combine(t.base+uint8(h), children)
		}
		t.cells[h] = row
	}
	t.dirty = n
	t.root = t.cells[t.height-1][0]
}

// rootDigest returns the tier root, recomputing stale cells first. A
// tier that has never held a leaf is an empty subtree and hashes as
// the empty constant.
func (t *tier) rootDigest(eng Engine) Digest {
	if t.pruned {
		return t.root
	}
	if t.state == tierFinalized {
		// Nothing may mutate a finalized tier; a stale cache here means
		// the root can no longer be trusted, which is fatal.
		if t.dirty != len(t.leaves) {
			panic("tct: finalized tier has a stale digest cache")
		}
		return t.root
	}
	if len(t.leaves) == 0 {
		return eng.Empty()
	}
	t.refresh(eng)
	return t.root
}

// rootWith returns the root the tier would have if the live digest of
// its open child subtree occupied the next free slot. An empty open
// child is indistinguishable from an unused slot.
func (t *tier) rootWith(eng Engine, extra Digest) Digest {
	empty := eng.Empty()
	if extra == empty {
		return t.rootDigest(eng)
	}
	t.refresh(eng)
	carry := extra
	idx := len(t.leaves)
	for h := 0; h < int(t.height); h++ {
		g := idx &^ 3
		var children [4]Digest
		for k := 0; k < 4; k++ {
			ci := g + k
			if ci == idx {
				children[k] = carry
				continue
			}
			children[k] = t.childDigest(h, ci, empty)
		}
		carry = eng.Combine(t.base+uint8(h), children)
		idx >>= 2
	}
	return carry
}

// witnessSteps collects the per level sibling triples for the leaf at
// target, siblings in ascending slot order with the path's own slot
// excluded. virtual, when non-nil, is the live root of the open child
// subtree logically occupying slot len(leaves); passing target equal
// to len(leaves) witnesses down into that open child.
func (t *tier) witnessSteps(eng Engine, target int, virtual *Digest) []PathStep {
	empty := eng.Empty()
	if virtual != nil && *virtual == empty {
		virtual = nil
	}
	t.refresh(eng)

	vIdx := -1
	var carry Digest
	if virtual != nil {
		vIdx = len(t.leaves)
		carry = *virtual
	}
	if target > len(t.leaves) || (target == len(t.leaves) && virtual == nil) {
		panic("tct: witness target beyond the tier frontier")
	}

	steps := make([]PathStep, t.height)
	own := target
	for h := 0; h < int(t.height); h++ {
		g := own &^ 3
		si := 0
		for k := 0; k < 4; k++ {
			ci := g + k
			if ci == own {
				continue
			}
			if vIdx >= 0 && ci == vIdx {
				steps[h].Siblings[si] = carry
			} else {
				steps[h].Siblings[si] = t.childDigest(h, ci, empty)
			}
			si++
		}
		// Fold the open child's column up one level so it can appear as
		// a sibling, or continue the path, at the next level.
		if vIdx >= 0 {
			vg := vIdx &^ 3
			var children [4]Digest
			for k := 0; k < 4; k++ {
				ci := vg + k
				if ci == vIdx {
					children[k] = carry
					continue
				}
				children[k] = t.childDigest(h, ci, empty)
			}
			carry = eng.Combine(t.base+uint8(h), children)
			vIdx >>= 2
		}
		own >>= 2
	}
	return steps
}
