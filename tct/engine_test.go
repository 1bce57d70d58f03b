package tct

import (
	"crypto/sha256"
	"encoding/binary"
)

// testEngine is a self contained sha256 engine for exercising the tree
// logic. The construction mirrors the production engines: a prefixed,
// level separated combine and a fixed tagged empty constant.
type testEngine struct {
	empty Digest
}

func newTestEngine() *testEngine {
	return &testEngine{empty: sha256.Sum256([]byte("test empty slot"))}
}

func (e *testEngine) Combine(level uint8, children [4]Digest) Digest {
	h := sha256.New()
	h.Write([]byte{0x01, level})
	for i := range children {
		h.Write(children[i][:])
	}
	var d Digest
	copy(d[:], h.Sum(nil))
	return d
}

func (e *testEngine) Empty() Digest {
	return e.empty
}

// testCommitments returns n distinct leaf digests from a seeded
// stream. They are arbitrary values, not Combine outputs.
func testCommitments(seed uint64, n int) []Digest {
	out := make([]Digest, n)
	var buf [16]byte
	binary.BigEndian.PutUint64(buf[:8], seed)
	for i := range out {
		binary.BigEndian.PutUint64(buf[8:], uint64(i))
		out[i] = sha256.Sum256(buf[:])
	}
	return out
}

// naiveRoot recomputes the eternity root of the default 8/8/8 tree by
// direct recursion over the full 24 level quaternary tree: a subtree
// containing no commitments hashes as the empty constant, everything
// else combines its four children level by level. With the default
// spec the packed position index is exactly the 24 digit base-4 path,
// so the leaf map can be keyed by Position.Index().
//
// This is the tier-free definition of the structure; the tree's
// composed block/epoch/eternity arithmetic must agree with it exactly.
func naiveRoot(eng Engine, leaves map[uint64]Digest) Digest {
	return naiveNode(eng, leaves, DefaultTierSpec.Depth(), 0)
}

func naiveNode(eng Engine, leaves map[uint64]Digest, level uint8, prefix uint64) Digest {
	if level == 0 {
		if d, ok := leaves[prefix]; ok {
			return d
		}
		return eng.Empty()
	}
	// Subtrees holding no commitments hash as the empty constant at
	// every level.
	lo := prefix << (2 * uint(level))
	hi := (prefix + 1) << (2 * uint(level))
	occupied := false
	for index := range leaves {
		if index >= lo && index < hi {
			occupied = true
			break
		}
	}
	if !occupied {
		return eng.Empty()
	}
	var children [4]Digest
	for k := uint64(0); k < 4; k++ {
		children[k] = naiveNode(eng, leaves, level-1, prefix<<2|k)
	}
	return eng.Combine(level, children)
}
